package library

import (
	"slices"
	"sync"

	"amsvault/internal/catalog"
	"amsvault/internal/store"
)

func nameKey(name string) string {
	return store.FoldName(name)
}

// Merge puts external candidates ahead of local ones and removes duplicates.
func Merge(external, local []catalog.Candidate) []catalog.Candidate {
	return Dedup(slices.Concat(external, local))
}

// Dedup keeps the first candidate for each case-folded name. Source is not
// part of the key: an anime and a manga with the same title collapse into one.
func Dedup(items []catalog.Candidate) []catalog.Candidate {
	seen := make(map[string]struct{}, len(items))
	out := make([]catalog.Candidate, 0, len(items))
	for _, c := range items {
		k := nameKey(c.Name)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, c)
	}
	return out
}

// ExcludeNames drops candidates whose folded name is in names.
func ExcludeNames(items []catalog.Candidate, names map[string]struct{}) []catalog.Candidate {
	if len(names) == 0 {
		return items
	}
	return slices.DeleteFunc(slices.Clone(items), func(c catalog.Candidate) bool {
		_, ok := names[nameKey(c.Name)]
		return ok
	})
}

func bookmarkedNames(list []store.BookmarkWithStory) map[string]struct{} {
	names := make(map[string]struct{}, len(list))
	for _, b := range list {
		if k := nameKey(b.Story.Name); k != "" {
			names[k] = struct{}{}
		}
	}
	return names
}

func localCandidates(stories []store.Story, category catalog.Category) []catalog.Candidate {
	out := make([]catalog.Candidate, 0, len(stories))
	for _, st := range stories {
		if category.Matches(st.Source) {
			out = append(out, catalog.FromStory(st))
		}
	}
	return out
}

// Results is the list shown to the user after a search. Favoriting an item
// removes it from the list.
type Results struct {
	mu    sync.Mutex
	items []catalog.Candidate
}

func NewResults(items []catalog.Candidate) *Results {
	return &Results{items: slices.Clone(items)}
}

// Items returns a copy of the current list.
func (r *Results) Items() []catalog.Candidate {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.items)
}

func (r *Results) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

// At returns the i-th item, zero-based.
func (r *Results) At(i int) (catalog.Candidate, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i < 0 || i >= len(r.items) {
		return catalog.Candidate{}, false
	}
	return r.items[i], true
}

// Remove drops every item sharing c's case-folded name and reports whether any was removed.
func (r *Results) Remove(c catalog.Candidate) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := nameKey(c.Name)
	before := len(r.items)
	r.items = slices.DeleteFunc(r.items, func(it catalog.Candidate) bool { return nameKey(it.Name) == k })
	return len(r.items) != before
}
