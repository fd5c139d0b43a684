package updater

import (
	"context"
	"errors"
	"testing"

	"amsvault/internal/catalog"
	"amsvault/internal/store"
)

type fakeStore struct {
	tracked []store.TrackedStory
	marks   map[int64]int
	sets    int
}

func (s *fakeStore) ListTrackedStories(context.Context) ([]store.TrackedStory, error) {
	return s.tracked, nil
}

func (s *fakeStore) GetReleaseMark(_ context.Context, storyID int64) (int, bool, error) {
	v, ok := s.marks[storyID]
	return v, ok, nil
}

func (s *fakeStore) SetReleaseMark(_ context.Context, storyID int64, total int) error {
	if s.marks == nil {
		s.marks = map[int64]int{}
	}
	s.marks[storyID] = total
	s.sets++
	return nil
}

type fakeCatalog struct {
	byID map[int64]catalog.Candidate
	fail map[int64]bool
}

func (c *fakeCatalog) Lookup(_ context.Context, _ store.Source, id int64) (catalog.Candidate, error) {
	if c.fail[id] {
		return catalog.Candidate{}, errors.New("provider down")
	}
	return c.byID[id], nil
}

func tracked(id, malID int64, source store.Source, episodes, chapters int, owners ...int64) store.TrackedStory {
	return store.TrackedStory{
		Story: store.Story{
			ID: id, MalID: &malID, Name: "Story", Source: source,
			TotalEpisode: episodes, TotalChapter: chapters,
		},
		Owners: owners,
	}
}

func TestUpdateOne_UsesStoryTotalAsFirstBaseline(t *testing.T) {
	st := &fakeStore{tracked: []store.TrackedStory{tracked(1, 501, store.SourceAnime, 12, 0, 7)}}
	cat := &fakeCatalog{byID: map[int64]catalog.Candidate{501: {TotalEpisode: 14}}}

	u := New(st, cat)
	res, err := u.UpdateOne(context.Background(), 1)
	if err != nil {
		t.Fatalf("UpdateOne(): %v", err)
	}
	if !res.HasNews() || res.NewReleases() != 2 {
		t.Fatalf("result=%+v, want 2 new releases", res)
	}
	if st.marks[1] != 14 {
		t.Fatalf("mark=%d, want 14", st.marks[1])
	}

	// Second run with the same remote total reports nothing new and writes nothing.
	res, err = u.UpdateOne(context.Background(), 1)
	if err != nil {
		t.Fatalf("UpdateOne(): %v", err)
	}
	if res.HasNews() {
		t.Fatalf("second run reported news: %+v", res)
	}
	if st.sets != 1 {
		t.Fatalf("SetReleaseMark calls=%d, want 1", st.sets)
	}
}

func TestUpdateOne_ReadableSourcesCompareChapters(t *testing.T) {
	st := &fakeStore{
		tracked: []store.TrackedStory{tracked(2, 2, store.SourceManga, 0, 100)},
		marks:   map[int64]int{2: 110},
	}
	cat := &fakeCatalog{byID: map[int64]catalog.Candidate{2: {TotalChapter: 111, TotalEpisode: 500}}}

	res, err := New(st, cat).UpdateOne(context.Background(), 2)
	if err != nil {
		t.Fatalf("UpdateOne(): %v", err)
	}
	if res.PreviousTotal != 110 || res.CurrentTotal != 111 {
		t.Fatalf("totals=%d->%d, want 110->111", res.PreviousTotal, res.CurrentTotal)
	}
}

func TestUpdateOne_UnknownRemoteTotalKeepsMark(t *testing.T) {
	st := &fakeStore{
		tracked: []store.TrackedStory{tracked(3, 3, store.SourceAnime, 0, 0)},
		marks:   map[int64]int{3: 20},
	}
	cat := &fakeCatalog{byID: map[int64]catalog.Candidate{3: {TotalEpisode: 0}}}

	res, err := New(st, cat).UpdateOne(context.Background(), 3)
	if err != nil {
		t.Fatalf("UpdateOne(): %v", err)
	}
	if res.HasNews() {
		t.Fatalf("unexpected news: %+v", res)
	}
	if st.marks[3] != 20 || st.sets != 0 {
		t.Fatalf("mark=%d sets=%d, want 20 and 0", st.marks[3], st.sets)
	}
}

func TestUpdateOne_Missing(t *testing.T) {
	_, err := New(&fakeStore{}, &fakeCatalog{}).UpdateOne(context.Background(), 9)
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("err=%v, want ErrNotFound", err)
	}
}

func TestUpdateAll_ContinuesPastFailures(t *testing.T) {
	st := &fakeStore{tracked: []store.TrackedStory{
		tracked(1, 10, store.SourceAnime, 1, 0, 1),
		tracked(2, 20, store.SourceAnime, 1, 0, 2),
	}}
	cat := &fakeCatalog{
		byID: map[int64]catalog.Candidate{20: {TotalEpisode: 3}},
		fail: map[int64]bool{10: true},
	}

	results, err := New(st, cat).UpdateAll(context.Background())
	if err != nil {
		t.Fatalf("UpdateAll(): %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("results=%d, want 2", len(results))
	}
	if results[0].Err == nil || results[0].HasNews() {
		t.Fatalf("first result=%+v, want error", results[0])
	}
	if !results[1].HasNews() || results[1].Owners[0] != 2 {
		t.Fatalf("second result=%+v, want news for owner 2", results[1])
	}
}
