package catalog

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"amsvault/internal/store"
)

// JikanRateLimit is Jikan's published per-second request allowance.
const JikanRateLimit = 3

type jikanImages struct {
	JPG struct {
		ImageURL      string `json:"image_url"`
		LargeImageURL string `json:"large_image_url"`
	} `json:"jpg"`
}

type jikanAnime struct {
	MalID        int64       `json:"mal_id"`
	Title        string      `json:"title"`
	TitleEnglish string      `json:"title_english"`
	Synopsis     string      `json:"synopsis"`
	Status       string      `json:"status"`
	Episodes     int         `json:"episodes"`
	Images       jikanImages `json:"images"`
}

type jikanManga struct {
	MalID        int64       `json:"mal_id"`
	Title        string      `json:"title"`
	TitleEnglish string      `json:"title_english"`
	Type         string      `json:"type"`
	Synopsis     string      `json:"synopsis"`
	Status       string      `json:"status"`
	Chapters     int         `json:"chapters"`
	Volumes      int         `json:"volumes"`
	Images       jikanImages `json:"images"`
}

func (a jikanAnime) candidate() Candidate {
	return Candidate{
		ExternalID:   a.MalID,
		Name:         firstNonEmpty(untitled, a.Title, a.TitleEnglish),
		Source:       store.SourceAnime,
		Description:  description(a.Synopsis),
		Status:       normalizeStatus(a.Status),
		MainPicture:  store.Picture{Medium: a.Images.JPG.ImageURL, Large: a.Images.JPG.LargeImageURL},
		TotalEpisode: max(a.Episodes, 0),
		TotalSeason:  1,
	}
}

func (m jikanManga) candidate() Candidate {
	source := store.SourceManga
	if strings.EqualFold(strings.TrimSpace(m.Type), "manhwa") {
		source = store.SourceManhwa
	}
	return Candidate{
		ExternalID:   m.MalID,
		Name:         firstNonEmpty(untitled, m.Title, m.TitleEnglish),
		Source:       source,
		Description:  description(m.Synopsis),
		Status:       normalizeStatus(m.Status),
		MainPicture:  store.Picture{Medium: m.Images.JPG.ImageURL, Large: m.Images.JPG.LargeImageURL},
		TotalChapter: max(m.Chapters, 0),
		TotalVolume:  max(m.Volumes, 0),
	}
}

// JikanAnime searches anime on Jikan (MyAnimeList).
type JikanAnime struct {
	Client *Client
}

func (j *JikanAnime) Name() string { return "Jikan anime" }

func (j *JikanAnime) Search(ctx context.Context, query string, limit int) ([]Candidate, error) {
	var resp struct {
		Data []jikanAnime `json:"data"`
	}
	q := url.Values{"q": {query}, "limit": {strconv.Itoa(limit)}}
	if err := j.Client.getJSON(ctx, "/anime", q, &resp); err != nil {
		return nil, err
	}
	out := make([]Candidate, 0, len(resp.Data))
	for _, a := range resp.Data {
		out = append(out, a.candidate())
	}
	return out, nil
}

func (j *JikanAnime) Lookup(ctx context.Context, id int64) (Candidate, error) {
	var resp struct {
		Data *jikanAnime `json:"data"`
	}
	if err := j.Client.getJSON(ctx, fmt.Sprintf("/anime/%d", id), nil, &resp); err != nil {
		return Candidate{}, err
	}
	if resp.Data == nil {
		return Candidate{}, fmt.Errorf("anime %d: empty response", id)
	}
	return resp.Data.candidate(), nil
}

// JikanManga searches manga and manhwa on Jikan (MyAnimeList).
type JikanManga struct {
	Client *Client
}

func (j *JikanManga) Name() string { return "Jikan manga" }

func (j *JikanManga) Search(ctx context.Context, query string, limit int) ([]Candidate, error) {
	var resp struct {
		Data []jikanManga `json:"data"`
	}
	q := url.Values{"q": {query}, "limit": {strconv.Itoa(limit)}}
	if err := j.Client.getJSON(ctx, "/manga", q, &resp); err != nil {
		return nil, err
	}
	out := make([]Candidate, 0, len(resp.Data))
	for _, m := range resp.Data {
		out = append(out, m.candidate())
	}
	return out, nil
}

func (j *JikanManga) Lookup(ctx context.Context, id int64) (Candidate, error) {
	var resp struct {
		Data *jikanManga `json:"data"`
	}
	if err := j.Client.getJSON(ctx, fmt.Sprintf("/manga/%d", id), nil, &resp); err != nil {
		return Candidate{}, err
	}
	if resp.Data == nil {
		return Candidate{}, fmt.Errorf("manga %d: empty response", id)
	}
	return resp.Data.candidate(), nil
}
