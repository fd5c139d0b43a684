// Package catalog searches external catalogs and normalizes their records
// into one candidate shape.
package catalog

import (
	"strings"

	"amsvault/internal/store"
)

// Category narrows a search.
type Category string

const (
	CategoryAll    Category = "all"
	CategoryAnime  Category = "anime"
	CategoryManga  Category = "manga"
	CategoryManhwa Category = "manhwa"
	CategorySeries Category = "series"
)

// ParseCategory accepts the category names case-insensitively; empty means all.
func ParseCategory(s string) (Category, bool) {
	switch c := Category(strings.ToLower(strings.TrimSpace(s))); c {
	case "":
		return CategoryAll, true
	case CategoryAll, CategoryAnime, CategoryManga, CategoryManhwa, CategorySeries:
		return c, true
	}
	return "", false
}

// Matches reports whether a story of the given source belongs to the category.
func (c Category) Matches(source store.Source) bool {
	if c == CategoryAll || c == "" {
		return true
	}
	return store.Source(c) == source
}

// Candidate is a search result, either from a provider or from the local store.
type Candidate struct {
	// ExternalID is the provider's id; zero when unknown.
	ExternalID int64
	// LocalID is the story id in the local store; zero for provider results.
	LocalID      int64
	Name         string
	Source       store.Source
	Description  string
	Status       store.StoryStatus
	MainPicture  store.Picture
	TotalEpisode int
	TotalSeason  int
	TotalChapter int
	TotalVolume  int
}

func (c Candidate) IsLocal() bool { return c.LocalID > 0 }

// StoryInput converts the candidate into a story to be created locally. The
// external id becomes the story's mal_id.
func (c Candidate) StoryInput() store.StoryInput {
	in := store.StoryInput{
		Name:         c.Name,
		Source:       c.Source,
		Description:  c.Description,
		TotalSeason:  c.TotalSeason,
		TotalEpisode: c.TotalEpisode,
		TotalVolume:  c.TotalVolume,
		TotalChapter: c.TotalChapter,
		Status:       c.Status,
		MainPicture:  c.MainPicture,
	}
	if in.Source == "" {
		in.Source = store.SourceAnime
	}
	if c.ExternalID > 0 {
		id := c.ExternalID
		in.MalID = &id
	}
	return in
}

// FromStory wraps a local story as a candidate.
func FromStory(s store.Story) Candidate {
	c := Candidate{
		LocalID:      s.ID,
		Name:         s.Name,
		Source:       s.Source,
		Description:  s.Description,
		Status:       s.Status,
		MainPicture:  s.MainPicture,
		TotalEpisode: s.TotalEpisode,
		TotalSeason:  s.TotalSeason,
		TotalChapter: s.TotalChapter,
		TotalVolume:  s.TotalVolume,
	}
	if s.MalID != nil {
		c.ExternalID = *s.MalID
	}
	return c
}
