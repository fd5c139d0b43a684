package updater

import (
	"strings"
	"testing"

	"amsvault/internal/store"
)

func TestFormatReleaseMessageHTML_EscapesDynamicContent(t *testing.T) {
	msg := FormatReleaseMessageHTML(Result{
		Title:         `My <b>story</b> & friends`,
		Source:        store.SourceManga,
		PreviousTotal: 10,
		CurrentTotal:  11,
	})

	if strings.Contains(msg, "<b>story</b>") {
		t.Fatalf("message should escape HTML, got: %q", msg)
	}
	if !strings.Contains(msg, "&lt;b&gt;story&lt;/b&gt; &amp; friends") {
		t.Fatalf("expected escaped title, got: %q", msg)
	}
	if !strings.Contains(msg, "<b>1</b> new chapter.") {
		t.Fatalf("expected singular chapter count, got: %q", msg)
	}
}

func TestFormatReleaseMessageHTML_PluralEpisodes(t *testing.T) {
	msg := FormatReleaseMessageHTML(Result{Title: "Bleach", Source: store.SourceAnime, PreviousTotal: 2, CurrentTotal: 5})
	if !strings.Contains(msg, "<b>3</b> new episodes.") {
		t.Fatalf("expected plural episode count, got: %q", msg)
	}
}
