package catalog

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/errgroup"

	"amsvault/internal/apperr"
	"amsvault/internal/logger"
	"amsvault/internal/store"
)

const (
	DefaultLimit = 10
	// DefaultProviderTimeout bounds one provider call when the caller sets no
	// tighter deadline.
	DefaultProviderTimeout = 8 * time.Second
)

// Provider is one external catalog.
type Provider interface {
	Name() string
	Search(ctx context.Context, query string, limit int) ([]Candidate, error)
	Lookup(ctx context.Context, externalID int64) (Candidate, error)
}

type Options struct {
	// Limit caps results per provider. Defaults to DefaultLimit.
	Limit int
	// CacheSize is the number of (category, query) results kept; 0 disables caching.
	CacheSize int
	CacheTTL  time.Duration
	// ProviderTimeout bounds each provider call. Defaults to DefaultProviderTimeout.
	ProviderTimeout time.Duration
}

// Aggregator fans a query out to the providers of a category and concatenates
// their results. A failing provider contributes an empty list.
type Aggregator struct {
	anime  Provider
	manga  Provider
	series Provider
	limit  int
	cache  *expirable.LRU[string, []Candidate]

	providerTimeout time.Duration
}

func NewAggregator(anime, manga, series Provider, opts Options) *Aggregator {
	a := &Aggregator{anime: anime, manga: manga, series: series, limit: opts.Limit, providerTimeout: opts.ProviderTimeout}
	if a.limit <= 0 {
		a.limit = DefaultLimit
	}
	if a.providerTimeout <= 0 {
		a.providerTimeout = DefaultProviderTimeout
	}
	if opts.CacheSize > 0 {
		a.cache = expirable.NewLRU[string, []Candidate](opts.CacheSize, nil, opts.CacheTTL)
	}
	return a
}

func (a *Aggregator) providers(category Category) []Provider {
	var ps []Provider
	switch category {
	case CategoryAnime:
		ps = []Provider{a.anime}
	case CategoryManga, CategoryManhwa:
		ps = []Provider{a.manga}
	case CategorySeries:
		ps = []Provider{a.series}
	default:
		ps = []Provider{a.anime, a.manga, a.series}
	}
	return slices.DeleteFunc(ps, func(p Provider) bool { return p == nil })
}

// providerContext gives a provider call its own deadline, ending before the
// caller's so a hung provider is cut off while the others' results are still used.
func (a *Aggregator) providerContext(ctx context.Context) (context.Context, context.CancelFunc) {
	d := a.providerTimeout
	if deadline, ok := ctx.Deadline(); ok {
		d = min(d, time.Until(deadline)*4/5)
	}
	return context.WithTimeout(ctx, d)
}

func cacheKey(category Category, query string) string {
	return string(category) + "|" + store.FoldName(query)
}

// Search returns the candidates for query in provider order: anime, manga, series.
// It never fails; an empty or blank query returns nil without any request.
func (a *Aggregator) Search(ctx context.Context, query string, category Category) []Candidate {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	if category == "" {
		category = CategoryAll
	}

	key := cacheKey(category, query)
	if a.cache != nil {
		if hit, ok := a.cache.Get(key); ok {
			return slices.Clone(hit)
		}
	}

	providers := a.providers(category)
	results := make([][]Candidate, len(providers))
	failed := make([]bool, len(providers))

	var g errgroup.Group
	for i, p := range providers {
		g.Go(func() error {
			pctx, cancel := a.providerContext(ctx)
			defer cancel()
			got, err := p.Search(pctx, query, a.limit)
			if err != nil {
				failed[i] = true
				perr := apperr.ProviderUnavailable(p.Name(), err)
				logger.LogMsg(logger.LogWarning, "[%s] %s search for %q failed: %v", perr.Kind, p.Name(), query, perr.Cause)
				return nil
			}
			if len(got) > a.limit {
				got = got[:a.limit]
			}
			results[i] = got
			return nil
		})
	}
	_ = g.Wait()

	out := slices.Concat(results...)
	if a.cache != nil && !slices.Contains(failed, true) {
		a.cache.Add(key, slices.Clone(out))
	}
	return out
}

// Lookup fetches one record by its provider id.
func (a *Aggregator) Lookup(ctx context.Context, source store.Source, externalID int64) (Candidate, error) {
	var p Provider
	switch source {
	case store.SourceAnime:
		p = a.anime
	case store.SourceManga, store.SourceManhwa:
		p = a.manga
	default:
		p = a.series
	}
	if p == nil {
		return Candidate{}, apperr.ProviderUnavailable(string(source), fmt.Errorf("no provider configured"))
	}
	c, err := p.Lookup(ctx, externalID)
	if err != nil {
		return Candidate{}, apperr.ProviderUnavailable(p.Name(), err)
	}
	return c, nil
}
