package library

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"amsvault/internal/catalog"
	"amsvault/internal/logger"
	"amsvault/internal/store"
)

// Search merges external and local matches for query, drops duplicates and
// hides titles the signed-in user already bookmarked. It never fails: when the
// combined search errors or exceeds the timeout, it falls back to local stories
// alone, and to an empty list when that fails too.
func (s *Service) Search(ctx context.Context, query string, category catalog.Category) *Results {
	query = strings.TrimSpace(query)
	if query == "" {
		return NewResults(nil)
	}
	if category == "" {
		category = catalog.CategoryAll
	}

	items, err := s.searchBounded(ctx, query, category)
	if err != nil {
		logger.LogMsg(logger.LogWarning, "Search for %q failed, using local results: %v", query, err)
		items, err = s.searchLocal(ctx, query, category)
		if err != nil {
			logger.LogMsg(logger.LogError, "Local search for %q failed: %v", query, err)
			return NewResults(nil)
		}
	}
	return NewResults(items)
}

type searchOutcome struct {
	items []catalog.Candidate
	err   error
}

// searchBounded abandons the combined search once the timeout expires, even
// if a provider ignores cancellation.
func (s *Service) searchBounded(ctx context.Context, query string, category catalog.Category) ([]catalog.Candidate, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	done := make(chan searchOutcome, 1)
	go func() {
		items, err := s.searchCombined(ctx, query, category)
		done <- searchOutcome{items: items, err: err}
	}()

	select {
	case out := <-done:
		return out.items, out.err
	case <-ctx.Done():
		return nil, fmt.Errorf("search abandoned: %w", ctx.Err())
	}
}

func (s *Service) searchCombined(ctx context.Context, query string, category catalog.Category) ([]catalog.Candidate, error) {
	var (
		external []catalog.Candidate
		local    []store.Story
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if s.searcher != nil {
			external = s.searcher.Search(gctx, query, category)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		local, err = s.store.SearchStoriesByName(gctx, query)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("local search: %w", err)
	}

	merged := Merge(external, localCandidates(local, category))
	return s.excludeBookmarked(ctx, merged), nil
}

func (s *Service) searchLocal(ctx context.Context, query string, category catalog.Category) ([]catalog.Candidate, error) {
	local, err := s.store.SearchStoriesByName(ctx, query)
	if err != nil {
		return nil, err
	}
	return s.excludeBookmarked(ctx, Dedup(localCandidates(local, category))), nil
}

// excludeBookmarked hides the signed-in user's bookmarked titles. If the
// bookmarks cannot be read, items are returned unfiltered.
func (s *Service) excludeBookmarked(ctx context.Context, items []catalog.Candidate) []catalog.Candidate {
	if s.session == nil {
		return items
	}
	u := s.session.CurrentUser()
	if u == nil {
		return items
	}
	list, err := s.store.GetBookmarksByUser(ctx, u.ID)
	if err != nil {
		logger.LogMsg(logger.LogWarning, "Could not load bookmarks of user %d, results not filtered: %v", u.ID, err)
		return items
	}
	return ExcludeNames(items, bookmarkedNames(list))
}
