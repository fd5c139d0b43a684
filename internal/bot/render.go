package bot

import (
	"fmt"
	"html"
	"strings"

	"amsvault/internal/appcopy"
	"amsvault/internal/catalog"
	"amsvault/internal/library"
	"amsvault/internal/store"
)

func renderResults(query string, items []catalog.Candidate) reply {
	if len(items) == 0 {
		return reply{text: fmt.Sprintf(appcopy.Copy.Info.SearchEmpty, html.EscapeString(query))}
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf(appcopy.Copy.Info.SearchHeader, html.EscapeString(query)))
	b.WriteString("\n\n")
	for i, c := range items {
		b.WriteString(fmt.Sprintf(appcopy.Copy.Labels.ResultItem, i+1, html.EscapeString(c.Name), c.Source))
		if c.IsLocal() {
			b.WriteString(appcopy.Copy.Labels.ResultLocal)
		}
		b.WriteString("\n")
	}
	return reply{text: strings.TrimRight(b.String(), "\n"), markup: resultsKeyboard(items)}
}

func progressLine(b store.BookmarkWithStory) string {
	l := appcopy.Copy.Labels
	if b.Story.Source.IsReadable() {
		return fmt.Sprintf(l.ProgressVol+" "+l.ProgressCh, b.CurrentVolume, b.CurrentChapter)
	}
	return fmt.Sprintf(l.ProgressSeason+" "+l.ProgressEp, b.CurrentSeason, b.CurrentEpisode)
}

// renderBookmarks lists the tabs in a fixed order; tab restricts the output
// to one of them when set.
func renderBookmarks(list []store.BookmarkWithStory, tab string) reply {
	tabs := library.Partition(list)
	sections := []struct {
		key   string
		title string
		items []store.BookmarkWithStory
	}{
		{tabAnime, appcopy.Copy.Labels.TabAnime, tabs.Anime},
		{tabManga, appcopy.Copy.Labels.TabManga, tabs.Manga},
		{tabSeries, appcopy.Copy.Labels.TabSeries, tabs.Series},
	}

	var b strings.Builder
	var shown []store.BookmarkWithStory
	b.WriteString(appcopy.Copy.Info.ListHeader)
	for _, s := range sections {
		if (tab != "" && tab != s.key) || len(s.items) == 0 {
			continue
		}
		b.WriteString(fmt.Sprintf(appcopy.Copy.Info.ListTab, s.title, len(s.items)))
		for _, bm := range s.items {
			b.WriteString("\n")
			b.WriteString(fmt.Sprintf(appcopy.Copy.Labels.BookmarkItem, bm.ID, html.EscapeString(bm.Story.Name), bm.Status, progressLine(bm)))
		}
		shown = append(shown, s.items...)
	}
	if len(shown) == 0 {
		return reply{text: appcopy.Copy.Info.ListEmpty}
	}
	return reply{text: b.String(), markup: bookmarksKeyboard(shown)}
}
