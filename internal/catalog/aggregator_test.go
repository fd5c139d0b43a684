package catalog

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"amsvault/internal/apperr"
	"amsvault/internal/store"
)

type fakeProvider struct {
	name    string
	results []Candidate
	err     error
	calls   atomic.Int32
	limit   atomic.Int32
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Search(_ context.Context, _ string, limit int) ([]Candidate, error) {
	f.calls.Add(1)
	f.limit.Store(int32(limit))
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

func (f *fakeProvider) Lookup(_ context.Context, id int64) (Candidate, error) {
	if f.err != nil {
		return Candidate{}, f.err
	}
	for _, c := range f.results {
		if c.ExternalID == id {
			return c, nil
		}
	}
	return Candidate{}, errors.New("not found")
}

func names(cs []Candidate) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.Name)
	}
	return out
}

func newFakes() (*fakeProvider, *fakeProvider, *fakeProvider) {
	anime := &fakeProvider{name: "anime", results: []Candidate{
		{ExternalID: 269, Name: "Bleach", Source: store.SourceAnime},
	}}
	manga := &fakeProvider{name: "manga", results: []Candidate{
		{ExternalID: 12, Name: "Bleach", Source: store.SourceManga},
		{ExternalID: 13, Name: "Tower of God", Source: store.SourceManhwa},
	}}
	series := &fakeProvider{name: "series", results: []Candidate{
		{ExternalID: 1396, Name: "Breaking Bad", Source: store.SourceSeries},
	}}
	return anime, manga, series
}

func TestAggregator_AllConcatenatesInProviderOrder(t *testing.T) {
	anime, manga, series := newFakes()
	a := NewAggregator(anime, manga, series, Options{})

	got := a.Search(context.Background(), "b", CategoryAll)
	assert.Equal(t, []string{"Bleach", "Bleach", "Tower of God", "Breaking Bad"}, names(got))
	assert.Equal(t, int32(DefaultLimit), anime.limit.Load())
}

func TestAggregator_PartialFailure(t *testing.T) {
	anime, manga, series := newFakes()
	series.err = errors.New("TMDB returned 500")
	a := NewAggregator(anime, manga, series, Options{})

	got := a.Search(context.Background(), "b", CategoryAll)
	assert.Equal(t, []string{"Bleach", "Bleach", "Tower of God"}, names(got))

	anime.err = errors.New("timeout")
	manga.err = errors.New("bad json")
	assert.Empty(t, a.Search(context.Background(), "b", CategoryAll))
}

// hangingProvider answers only when its context ends.
type hangingProvider struct{ fakeProvider }

func (h *hangingProvider) Search(ctx context.Context, _ string, _ int) ([]Candidate, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestAggregator_HungProviderIsCutOff(t *testing.T) {
	anime, _, series := newFakes()
	a := NewAggregator(anime, &hangingProvider{fakeProvider{name: "manga"}}, series, Options{ProviderTimeout: 50 * time.Millisecond, CacheSize: 4})

	start := time.Now()
	got := a.Search(context.Background(), "b", CategoryAll)
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, []string{"Bleach", "Breaking Bad"}, names(got))

	// A cut-off search is not cached.
	a.Search(context.Background(), "b", CategoryAll)
	assert.Equal(t, int32(2), anime.calls.Load())
}

func TestAggregator_ProviderDeadlineEndsBeforeCallers(t *testing.T) {
	anime, _, series := newFakes()
	a := NewAggregator(anime, &hangingProvider{fakeProvider{name: "manga"}}, series, Options{})

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	got := a.Search(ctx, "b", CategoryAll)
	require.NoError(t, ctx.Err(), "providers should give up before the caller's deadline")
	assert.Equal(t, []string{"Bleach", "Breaking Bad"}, names(got))
}

func TestAggregator_CategoryRouting(t *testing.T) {
	tests := []struct {
		category Category
		want     []string
	}{
		{CategoryAnime, []string{"Bleach"}},
		{CategoryManga, []string{"Bleach", "Tower of God"}},
		{CategoryManhwa, []string{"Bleach", "Tower of God"}},
		{CategorySeries, []string{"Breaking Bad"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.category), func(t *testing.T) {
			anime, manga, series := newFakes()
			a := NewAggregator(anime, manga, series, Options{})
			assert.Equal(t, tt.want, names(a.Search(context.Background(), "b", tt.category)))
		})
	}
}

func TestAggregator_CapsPerProvider(t *testing.T) {
	anime, manga, series := newFakes()
	a := NewAggregator(anime, manga, series, Options{Limit: 1})

	got := a.Search(context.Background(), "b", CategoryManga)
	assert.Equal(t, []string{"Bleach"}, names(got))
	assert.Equal(t, int32(1), manga.limit.Load())
}

func TestAggregator_BlankQueryMakesNoRequests(t *testing.T) {
	anime, manga, series := newFakes()
	a := NewAggregator(anime, manga, series, Options{})

	assert.Empty(t, a.Search(context.Background(), "   ", CategoryAll))
	assert.Zero(t, anime.calls.Load()+manga.calls.Load()+series.calls.Load())
}

func TestAggregator_CachesSuccessfulSearches(t *testing.T) {
	anime, manga, series := newFakes()
	a := NewAggregator(anime, manga, series, Options{CacheSize: 8, CacheTTL: time.Minute})

	first := a.Search(context.Background(), "Bleach", CategoryAnime)
	second := a.Search(context.Background(), "  bleach ", CategoryAnime)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), anime.calls.Load())

	// Callers may edit their copy without touching the cache.
	second[0].Name = "edited"
	third := a.Search(context.Background(), "bleach", CategoryAnime)
	assert.Equal(t, "Bleach", third[0].Name)
}

func TestAggregator_DoesNotCacheFailures(t *testing.T) {
	anime, manga, series := newFakes()
	anime.err = errors.New("down")
	a := NewAggregator(anime, manga, series, Options{CacheSize: 8, CacheTTL: time.Minute})

	assert.Empty(t, a.Search(context.Background(), "bleach", CategoryAnime))
	anime.err = nil
	assert.Equal(t, []string{"Bleach"}, names(a.Search(context.Background(), "bleach", CategoryAnime)))
	assert.Equal(t, int32(2), anime.calls.Load())
}

func TestAggregator_Lookup(t *testing.T) {
	anime, manga, series := newFakes()
	a := NewAggregator(anime, manga, series, Options{})

	got, err := a.Lookup(context.Background(), store.SourceManhwa, 13)
	require.NoError(t, err)
	assert.Equal(t, "Tower of God", got.Name)

	series.err = errors.New("down")
	_, err = a.Lookup(context.Background(), store.SourceSeries, 1396)
	assert.True(t, apperr.Is(err, apperr.KindProviderUnavailable))
}

func TestCandidate_StoryInputRoundTrip(t *testing.T) {
	c := Candidate{ExternalID: 501, Name: "Bleach", Source: store.SourceAnime, TotalEpisode: 366}
	in := c.StoryInput()
	require.NotNil(t, in.MalID)
	assert.Equal(t, int64(501), *in.MalID)
	assert.Equal(t, 366, in.TotalEpisode)

	back := FromStory(store.Story{ID: 7, MalID: in.MalID, Name: in.Name, Source: in.Source})
	assert.True(t, back.IsLocal())
	assert.Equal(t, int64(501), back.ExternalID)

	assert.Nil(t, Candidate{Name: "Local only"}.StoryInput().MalID)
}

func TestParseCategory(t *testing.T) {
	for in, want := range map[string]Category{"": CategoryAll, "Anime": CategoryAnime, "manhwa": CategoryManhwa} {
		got, ok := ParseCategory(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got)
	}
	_, ok := ParseCategory("movies")
	assert.False(t, ok)

	assert.True(t, CategoryAll.Matches(store.SourceSeries))
	assert.True(t, CategoryManhwa.Matches(store.SourceManhwa))
	assert.False(t, CategoryManga.Matches(store.SourceManhwa))
}
