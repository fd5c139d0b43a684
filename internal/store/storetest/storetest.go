// Package storetest is a conformance suite run against every store.Store backend.
package storetest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"amsvault/internal/store"
)

// Factory opens an empty store that uses now as its time source. The store is
// closed by the factory's own cleanup.
type Factory func(t *testing.T, now func() time.Time) store.Store

// Clock is a deterministic time source that advances one second per call.
type Clock struct {
	mu sync.Mutex
	t  time.Time
}

func NewClock() *Clock {
	return &Clock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

// Run executes the suite.
func Run(t *testing.T, open Factory) {
	tests := []struct {
		name string
		fn   func(t *testing.T, s store.Store)
	}{
		{"CreateUser_RejectsDuplicateEmail", testDuplicateEmail},
		{"AuthenticateUser", testAuthenticate},
		{"CreateStory_AppliesDefaults", testStoryDefaults},
		{"SearchStoriesByName", testSearchStories},
		{"CreateBookmark_DefaultStatusPerSource", testBookmarkDefaultStatus},
		{"CreateBookmark_UniquePerUserAndStory", testBookmarkUnique},
		{"CreateBookmark_MissingStory", testBookmarkMissingStory},
		{"UpdateBookmark_Partial", testUpdatePartial},
		{"UpdateBookmark_MissingID", testUpdateMissing},
		{"GetBookmarksByUser_OrderedByUpdate", testBookmarkOrdering},
		{"GetBookmarksByUser_IsolatesUsers", testBookmarkIsolation},
		{"DeleteStory_Cascades", testDeleteStoryCascade},
		{"DeleteUser_Cascades", testDeleteUserCascade},
		{"DeleteBookmark", testDeleteBookmark},
		{"ClearAll_ResetsCounters", testClearAll},
		{"ReleaseMarks", testReleaseMarks},
		{"SeedInitialData", testSeed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := NewClock()
			tt.fn(t, open(t, clock.Now))
		})
	}
}

func mustUser(t *testing.T, s store.Store, name, email string) store.User {
	t.Helper()
	u, err := s.CreateUser(context.Background(), name, email, "secret")
	require.NoError(t, err, "CreateUser(%s)", email)
	return u
}

func mustStory(t *testing.T, s store.Store, in store.StoryInput) int64 {
	t.Helper()
	id, err := s.CreateStory(context.Background(), in)
	require.NoError(t, err, "CreateStory(%s)", in.Name)
	return id
}

func mustBookmark(t *testing.T, s store.Store, userID, storyID int64) int64 {
	t.Helper()
	id, err := s.CreateBookmark(context.Background(), store.BookmarkInput{UserID: userID, StoryID: storyID})
	require.NoError(t, err, "CreateBookmark(%d, %d)", userID, storyID)
	return id
}

func testDuplicateEmail(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := mustUser(t, s, "Ana", "ana@example.com")
	assert.Positive(t, u.ID)
	assert.NotEqual(t, "secret", u.PasswordHash)

	_, err := s.CreateUser(ctx, "Other", "ana@example.com", "x")
	assert.ErrorIs(t, err, store.ErrDuplicateEmail)

	n, err := s.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func testAuthenticate(t *testing.T, s store.Store) {
	ctx := context.Background()
	created := mustUser(t, s, "Ana", "ana@example.com")

	u, err := s.AuthenticateUser(ctx, "ana@example.com", "secret")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, created.ID, u.ID)
	assert.Equal(t, "Ana", u.Name)

	u, err = s.AuthenticateUser(ctx, "ana@example.com", "wrong")
	require.NoError(t, err)
	assert.Nil(t, u)

	u, err = s.AuthenticateUser(ctx, "nobody@example.com", "secret")
	require.NoError(t, err)
	assert.Nil(t, u)

	u, err = s.GetUserByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, u)
}

func testStoryDefaults(t *testing.T, s store.Store) {
	ctx := context.Background()
	malID := int64(501)
	id := mustStory(t, s, store.StoryInput{Name: "Bleach", Source: store.SourceAnime, MalID: &malID})

	got, err := s.GetStoryByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Bleach", got.Name)
	assert.Equal(t, store.SourceAnime, got.Source)
	assert.Equal(t, store.StoryOngoing, got.Status)
	assert.Zero(t, got.TotalSeason)
	assert.Zero(t, got.TotalEpisode)
	assert.Zero(t, got.TotalVolume)
	assert.Zero(t, got.TotalChapter)
	require.NotNil(t, got.MalID)
	assert.Equal(t, int64(501), *got.MalID)
	assert.False(t, got.CreatedAt.IsZero())

	missing, err := s.GetStoryByID(ctx, id+100)
	require.NoError(t, err)
	assert.Nil(t, missing)

	_, err = s.CreateStory(ctx, store.StoryInput{Name: "   "})
	assert.ErrorIs(t, err, store.ErrInvalid)
}

func testSearchStories(t *testing.T, s store.Store) {
	ctx := context.Background()
	mustStory(t, s, store.StoryInput{Name: "Naruto Shippuden", Source: store.SourceAnime})
	mustStory(t, s, store.StoryInput{Name: "Boruto", Source: store.SourceAnime})
	mustStory(t, s, store.StoryInput{Name: "Naruto", Source: store.SourceManga})
	mustStory(t, s, store.StoryInput{Name: "École du Ciel", Source: store.SourceSeries})

	names := func(stories []store.Story) []string {
		out := make([]string, 0, len(stories))
		for _, st := range stories {
			out = append(out, st.Name)
		}
		return out
	}

	got, err := s.SearchStoriesByName(ctx, "nArUtO")
	require.NoError(t, err)
	assert.Equal(t, []string{"Naruto", "Naruto Shippuden"}, names(got))

	got, err = s.SearchStoriesByName(ctx, "RUTO")
	require.NoError(t, err)
	assert.Equal(t, []string{"Boruto", "Naruto", "Naruto Shippuden"}, names(got))

	got, err = s.SearchStoriesByName(ctx, "école")
	require.NoError(t, err)
	assert.Equal(t, []string{"École du Ciel"}, names(got))

	got, err = s.SearchStoriesByName(ctx, "")
	require.NoError(t, err)
	assert.Len(t, got, 4)

	got, err = s.SearchStoriesByName(ctx, "bleach")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func testBookmarkDefaultStatus(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := mustUser(t, s, "Ana", "ana@example.com")

	cases := map[store.Source]store.BookmarkStatus{
		store.SourceAnime:  store.StatusWatching,
		store.SourceManga:  store.StatusReading,
		store.SourceManhwa: store.StatusReading,
		store.SourceSeries: store.StatusWatching,
	}
	for source, want := range cases {
		storyID := mustStory(t, s, store.StoryInput{Name: "Story " + string(source), Source: source})
		id := mustBookmark(t, s, u.ID, storyID)
		b, err := s.GetBookmark(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, b)
		assert.Equal(t, want, b.Status, "source %s", source)
		assert.Zero(t, b.CurrentEpisode)
		assert.Zero(t, b.CurrentChapter)
	}

	storyID := mustStory(t, s, store.StoryInput{Name: "Explicit", Source: store.SourceAnime})
	id, err := s.CreateBookmark(ctx, store.BookmarkInput{UserID: u.ID, StoryID: storyID, Status: store.StatusPlan, CurrentEpisode: 3})
	require.NoError(t, err)
	b, err := s.GetBookmark(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, store.StatusPlan, b.Status)
	assert.Equal(t, 3, b.CurrentEpisode)
}

func testBookmarkUnique(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := mustUser(t, s, "Ana", "ana@example.com")
	storyID := mustStory(t, s, store.StoryInput{Name: "Bleach", Source: store.SourceAnime})
	mustBookmark(t, s, u.ID, storyID)

	_, err := s.CreateBookmark(ctx, store.BookmarkInput{UserID: u.ID, StoryID: storyID, Status: store.StatusPlan})
	assert.ErrorIs(t, err, store.ErrBookmarkExists)

	list, err := s.GetBookmarksByUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func testBookmarkMissingStory(t *testing.T, s store.Store) {
	u := mustUser(t, s, "Ana", "ana@example.com")
	_, err := s.CreateBookmark(context.Background(), store.BookmarkInput{UserID: u.ID, StoryID: 999})
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, err, store.ErrStoryNotFound)

	storyID := mustStory(t, s, store.StoryInput{Name: "Bleach", Source: store.SourceAnime})
	_, err = s.CreateBookmark(context.Background(), store.BookmarkInput{UserID: u.ID + 100, StoryID: storyID})
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, err, store.ErrUserNotFound)
}

func testUpdatePartial(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := mustUser(t, s, "Ana", "ana@example.com")
	storyID := mustStory(t, s, store.StoryInput{Name: "Bleach", Source: store.SourceAnime})
	id, err := s.CreateBookmark(ctx, store.BookmarkInput{UserID: u.ID, StoryID: storyID, CurrentSeason: 1, CurrentEpisode: 4})
	require.NoError(t, err)
	before, err := s.GetBookmark(ctx, id)
	require.NoError(t, err)

	ep := 12
	require.NoError(t, s.UpdateBookmark(ctx, id, store.BookmarkUpdate{CurrentEpisode: &ep}))

	after, err := s.GetBookmark(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 12, after.CurrentEpisode)
	assert.Equal(t, 1, after.CurrentSeason)
	assert.Equal(t, store.StatusWatching, after.Status)
	assert.True(t, after.UpdatedAt.After(before.UpdatedAt), "updated_at must advance")
	assert.Equal(t, before.CreatedAt, after.CreatedAt)

	// An empty update still refreshes updated_at.
	require.NoError(t, s.UpdateBookmark(ctx, id, store.BookmarkUpdate{}))
	again, err := s.GetBookmark(ctx, id)
	require.NoError(t, err)
	assert.True(t, again.UpdatedAt.After(after.UpdatedAt))

	neg := -1
	assert.ErrorIs(t, s.UpdateBookmark(ctx, id, store.BookmarkUpdate{CurrentSeason: &neg}), store.ErrInvalid)
}

func testUpdateMissing(t *testing.T, s store.Store) {
	status := store.StatusCompleted
	err := s.UpdateBookmark(context.Background(), 42, store.BookmarkUpdate{Status: &status})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func testBookmarkOrdering(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := mustUser(t, s, "Ana", "ana@example.com")
	a := mustBookmark(t, s, u.ID, mustStory(t, s, store.StoryInput{Name: "A", Source: store.SourceAnime}))
	b := mustBookmark(t, s, u.ID, mustStory(t, s, store.StoryInput{Name: "B", Source: store.SourceManga}))
	c := mustBookmark(t, s, u.ID, mustStory(t, s, store.StoryInput{Name: "C", Source: store.SourceSeries}))

	one := 1
	for _, id := range []int64{b, c, a} {
		require.NoError(t, s.UpdateBookmark(ctx, id, store.BookmarkUpdate{CurrentEpisode: &one}))
	}

	list, err := s.GetBookmarksByUser(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []int64{a, c, b}, []int64{list[0].ID, list[1].ID, list[2].ID})
	assert.Equal(t, "A", list[0].Story.Name)
	assert.Equal(t, store.SourceSeries, list[1].Story.Source)
}

func testBookmarkIsolation(t *testing.T, s store.Store) {
	ctx := context.Background()
	ana := mustUser(t, s, "Ana", "ana@example.com")
	bob := mustUser(t, s, "Bob", "bob@example.com")
	storyID := mustStory(t, s, store.StoryInput{Name: "Bleach", Source: store.SourceAnime})
	mustBookmark(t, s, ana.ID, storyID)
	mustBookmark(t, s, bob.ID, storyID)

	list, err := s.GetBookmarksByUser(ctx, ana.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, ana.ID, list[0].UserID)

	list, err = s.GetBookmarksByUser(ctx, 12345)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func testDeleteStoryCascade(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := mustUser(t, s, "Ana", "ana@example.com")
	storyID := mustStory(t, s, store.StoryInput{Name: "Bleach", Source: store.SourceAnime})
	bookmarkID := mustBookmark(t, s, u.ID, storyID)

	require.NoError(t, s.DeleteStory(ctx, storyID))

	b, err := s.GetBookmark(ctx, bookmarkID)
	require.NoError(t, err)
	assert.Nil(t, b)
	list, err := s.GetBookmarksByUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, list)

	assert.ErrorIs(t, s.DeleteStory(ctx, storyID), store.ErrNotFound)
}

func testDeleteUserCascade(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := mustUser(t, s, "Ana", "ana@example.com")
	storyID := mustStory(t, s, store.StoryInput{Name: "Bleach", Source: store.SourceAnime})
	bookmarkID := mustBookmark(t, s, u.ID, storyID)

	require.NoError(t, s.DeleteUser(ctx, u.ID))

	b, err := s.GetBookmark(ctx, bookmarkID)
	require.NoError(t, err)
	assert.Nil(t, b)
	story, err := s.GetStoryByID(ctx, storyID)
	require.NoError(t, err)
	assert.NotNil(t, story, "stories outlive their bookmarks")

	// The email is free again.
	mustUser(t, s, "Ana", "ana@example.com")
}

func testDeleteBookmark(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := mustUser(t, s, "Ana", "ana@example.com")
	storyID := mustStory(t, s, store.StoryInput{Name: "Bleach", Source: store.SourceAnime})
	id := mustBookmark(t, s, u.ID, storyID)

	require.NoError(t, s.DeleteBookmark(ctx, id))
	assert.ErrorIs(t, s.DeleteBookmark(ctx, id), store.ErrNotFound)

	// The pair can be bookmarked again.
	mustBookmark(t, s, u.ID, storyID)
}

func testClearAll(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := mustUser(t, s, "Ana", "ana@example.com")
	storyID := mustStory(t, s, store.StoryInput{Name: "Bleach", Source: store.SourceAnime})
	mustBookmark(t, s, u.ID, storyID)
	mustUser(t, s, "Bob", "bob@example.com")

	require.NoError(t, s.ClearAll(ctx))

	n, err := s.CountUsers(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	stories, err := s.SearchStoriesByName(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, stories)

	again := mustUser(t, s, "Ana", "ana@example.com")
	assert.Equal(t, int64(1), again.ID)
	assert.Equal(t, int64(1), mustStory(t, s, store.StoryInput{Name: "Bleach", Source: store.SourceAnime}))
}

func testReleaseMarks(t *testing.T, s store.Store) {
	ctx := context.Background()
	ana := mustUser(t, s, "Ana", "ana@example.com")
	bob := mustUser(t, s, "Bob", "bob@example.com")
	mal := int64(21)
	tracked := mustStory(t, s, store.StoryInput{Name: "One Piece", Source: store.SourceAnime, MalID: &mal, TotalEpisode: 1000})
	local := mustStory(t, s, store.StoryInput{Name: "Home Video", Source: store.SourceSeries})
	mustStory(t, s, store.StoryInput{Name: "Unwatched", Source: store.SourceAnime, MalID: &mal})
	mustBookmark(t, s, bob.ID, tracked)
	mustBookmark(t, s, ana.ID, tracked)
	mustBookmark(t, s, ana.ID, local)

	list, err := s.ListTrackedStories(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, tracked, list[0].ID)
	assert.ElementsMatch(t, []int64{ana.ID, bob.ID}, list[0].Owners)
	assert.Equal(t, 1000, list[0].ReleaseTotal())

	_, ok, err := s.GetReleaseMark(ctx, tracked)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.SetReleaseMark(ctx, tracked, 1001))
	require.NoError(t, s.SetReleaseMark(ctx, tracked, 1002))
	total, ok, err := s.GetReleaseMark(ctx, tracked)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1002, total)

	assert.ErrorIs(t, s.SetReleaseMark(ctx, 999, 1), store.ErrNotFound)

	require.NoError(t, s.DeleteStory(ctx, tracked))
	_, ok, err = s.GetReleaseMark(ctx, tracked)
	require.NoError(t, err)
	assert.False(t, ok)
}

func testSeed(t *testing.T, s store.Store) {
	ctx := context.Background()
	seeded, err := store.SeedInitialData(ctx, s)
	require.NoError(t, err)
	assert.True(t, seeded)

	u, err := s.AuthenticateUser(ctx, store.SeedUserEmail, store.SeedUserPassword)
	require.NoError(t, err)
	require.NotNil(t, u)

	stories, err := s.SearchStoriesByName(ctx, "")
	require.NoError(t, err)
	assert.Len(t, stories, 8)

	seeded, err = store.SeedInitialData(ctx, s)
	require.NoError(t, err)
	assert.False(t, seeded)
}
