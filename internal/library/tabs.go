package library

import (
	"strings"

	"amsvault/internal/store"
)

// Tabs groups a user's bookmarks the way they are listed: manga and manhwa
// together, anime alone, and everything else as series.
type Tabs struct {
	Anime  []store.BookmarkWithStory
	Manga  []store.BookmarkWithStory
	Series []store.BookmarkWithStory
}

// Partition keeps the input order within each tab.
func Partition(list []store.BookmarkWithStory) Tabs {
	var t Tabs
	for _, b := range list {
		switch b.Story.Source {
		case store.SourceAnime:
			t.Anime = append(t.Anime, b)
		case store.SourceManga, store.SourceManhwa:
			t.Manga = append(t.Manga, b)
		default:
			t.Series = append(t.Series, b)
		}
	}
	return t
}

// FilterBookmarks keeps bookmarks with the given status (any when empty) whose
// story name contains substring, compared case-insensitively.
func FilterBookmarks(list []store.BookmarkWithStory, status store.BookmarkStatus, substring string) []store.BookmarkWithStory {
	needle := store.FoldName(substring)
	var out []store.BookmarkWithStory
	for _, b := range list {
		if status != "" && b.Status != status {
			continue
		}
		if needle != "" && !strings.Contains(store.FoldName(b.Story.Name), needle) {
			continue
		}
		out = append(out, b)
	}
	return out
}
