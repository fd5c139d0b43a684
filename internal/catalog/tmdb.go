package catalog

import (
	"context"
	"fmt"
	"net/url"

	"amsvault/internal/store"
)

// TMDBRateLimit keeps well under TMDB's per-second ceiling.
const TMDBRateLimit = 20

type tmdbShow struct {
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	OriginalName     string `json:"original_name"`
	Overview         string `json:"overview"`
	Status           string `json:"status"`
	PosterPath       string `json:"poster_path"`
	NumberOfSeasons  int    `json:"number_of_seasons"`
	NumberOfEpisodes int    `json:"number_of_episodes"`
}

// TMDB searches TV series on The Movie Database.
type TMDB struct {
	Client   *Client
	APIKey   string
	Language string
	// ImageBaseURL prefixes poster paths, e.g. https://image.tmdb.org/t/p.
	ImageBaseURL string
}

func (t *TMDB) Name() string { return "TMDB" }

func (t *TMDB) params(extra url.Values) url.Values {
	q := url.Values{"api_key": {t.APIKey}}
	if t.Language != "" {
		q.Set("language", t.Language)
	}
	for k, v := range extra {
		q[k] = v
	}
	return q
}

func (t *TMDB) candidate(s tmdbShow) Candidate {
	c := Candidate{
		ExternalID:   s.ID,
		Name:         firstNonEmpty(untitled, s.Name, s.OriginalName),
		Source:       store.SourceSeries,
		Description:  description(s.Overview),
		Status:       normalizeStatus(s.Status),
		TotalEpisode: max(s.NumberOfEpisodes, 0),
		TotalSeason:  max(s.NumberOfSeasons, 0),
	}
	if s.PosterPath != "" {
		c.MainPicture = store.Picture{
			Medium: t.ImageBaseURL + "/w300" + s.PosterPath,
			Large:  t.ImageBaseURL + "/w500" + s.PosterPath,
		}
	}
	return c
}

// Search has no server-side limit parameter; results are capped here.
func (t *TMDB) Search(ctx context.Context, query string, limit int) ([]Candidate, error) {
	var resp struct {
		Results []tmdbShow `json:"results"`
	}
	if err := t.Client.getJSON(ctx, "/search/tv", t.params(url.Values{"query": {query}}), &resp); err != nil {
		return nil, err
	}
	shows := resp.Results
	if limit > 0 && len(shows) > limit {
		shows = shows[:limit]
	}
	out := make([]Candidate, 0, len(shows))
	for _, s := range shows {
		out = append(out, t.candidate(s))
	}
	return out, nil
}

func (t *TMDB) Lookup(ctx context.Context, id int64) (Candidate, error) {
	var show tmdbShow
	if err := t.Client.getJSON(ctx, fmt.Sprintf("/tv/%d", id), t.params(nil), &show); err != nil {
		return Candidate{}, err
	}
	if show.ID == 0 {
		return Candidate{}, fmt.Errorf("series %d: empty response", id)
	}
	return t.candidate(show), nil
}
