package store

import (
	"errors"
	"testing"
)

func TestStatusVocabulary(t *testing.T) {
	if DefaultBookmarkStatus(SourceManhwa) != StatusReading || DefaultBookmarkStatus(SourceSeries) != StatusWatching {
		t.Fatal("unexpected default statuses")
	}
	tests := []struct {
		status BookmarkStatus
		source Source
		want   bool
	}{
		{StatusReading, SourceManga, true},
		{StatusReading, SourceAnime, false},
		{StatusWatching, SourceSeries, true},
		{StatusWatching, SourceManhwa, false},
		{StatusPlan, SourceManhwa, true},
		{"paused", SourceAnime, false},
	}
	for _, tt := range tests {
		if got := tt.status.ValidFor(tt.source); got != tt.want {
			t.Fatalf("%q.ValidFor(%q) = %v, want %v", tt.status, tt.source, got, tt.want)
		}
	}
}

func TestStoryInputNormalize(t *testing.T) {
	in, err := StoryInput{Name: "  Dark ", TotalEpisode: -3}.Normalize()
	if err != nil {
		t.Fatalf("Normalize(): %v", err)
	}
	if in.Name != "Dark" || in.Source != SourceSeries || in.Status != StoryOngoing || in.TotalEpisode != 0 {
		t.Fatalf("normalized = %+v", in)
	}
	if _, err := (StoryInput{Name: " "}).Normalize(); !errors.Is(err, ErrInvalid) {
		t.Fatalf("blank name err=%v, want ErrInvalid", err)
	}
}

func TestBookmarkUpdate(t *testing.T) {
	neg := -1
	if err := (BookmarkUpdate{CurrentChapter: &neg}).Validate(); !errors.Is(err, ErrInvalid) {
		t.Fatalf("negative counter err=%v", err)
	}
	empty := BookmarkStatus("")
	if err := (BookmarkUpdate{Status: &empty}).Validate(); !errors.Is(err, ErrInvalid) {
		t.Fatalf("empty status err=%v", err)
	}
	if !(BookmarkUpdate{}).IsEmpty() {
		t.Fatal("zero update should be empty")
	}

	ep := 4
	b := Bookmark{CurrentEpisode: 1, CurrentVolume: 2}
	BookmarkUpdate{CurrentEpisode: &ep}.Apply(&b)
	if b.CurrentEpisode != 4 || b.CurrentVolume != 2 {
		t.Fatalf("Apply() = %+v", b)
	}
}

func TestFoldName(t *testing.T) {
	if FoldName(" ÉCOLE ") != FoldName("école") {
		t.Fatal("FoldName should ignore case and surrounding space")
	}
}
