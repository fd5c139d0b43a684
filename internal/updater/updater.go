// Package updater checks bookmarked stories against their catalog for new
// episodes or chapters.
package updater

import (
	"context"
	"fmt"

	"amsvault/internal/catalog"
	"amsvault/internal/store"
)

type Store interface {
	ListTrackedStories(ctx context.Context) ([]store.TrackedStory, error)
	GetReleaseMark(ctx context.Context, storyID int64) (total int, ok bool, err error)
	SetReleaseMark(ctx context.Context, storyID int64, total int) error
}

type Catalog interface {
	Lookup(ctx context.Context, source store.Source, externalID int64) (catalog.Candidate, error)
}

type Updater struct {
	store   Store
	catalog Catalog
}

// Result is the outcome of checking one story.
type Result struct {
	StoryID       int64
	Title         string
	Source        store.Source
	PreviousTotal int
	CurrentTotal  int
	Owners        []int64
	Err           error
}

// HasNews reports whether the catalog total grew since the last check.
func (r Result) HasNews() bool {
	return r.Err == nil && r.CurrentTotal > r.PreviousTotal
}

// NewReleases is the number of episodes or chapters released since the last check.
func (r Result) NewReleases() int {
	if !r.HasNews() {
		return 0
	}
	return r.CurrentTotal - r.PreviousTotal
}

func New(store Store, c Catalog) *Updater {
	return &Updater{
		store:   store,
		catalog: c,
	}
}

// UpdateAll checks every story that someone bookmarked and that has an
// external id. A failing story is reported in its Result and does not stop
// the others.
func (u *Updater) UpdateAll(ctx context.Context) ([]Result, error) {
	tracked, err := u.store.ListTrackedStories(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(tracked))
	for _, t := range tracked {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res, err := u.updateStory(ctx, t)
		if err != nil {
			res = Result{
				StoryID: t.ID,
				Title:   t.Name,
				Source:  t.Source,
				Owners:  t.Owners,
				Err:     err,
			}
		}
		results = append(results, res)
	}

	return results, nil
}

// UpdateOne checks a single tracked story.
func (u *Updater) UpdateOne(ctx context.Context, storyID int64) (Result, error) {
	tracked, err := u.store.ListTrackedStories(ctx)
	if err != nil {
		return Result{}, err
	}
	for _, t := range tracked {
		if t.ID == storyID {
			return u.updateStory(ctx, t)
		}
	}
	return Result{}, fmt.Errorf("story %d: %w", storyID, store.ErrNotFound)
}

func (u *Updater) updateStory(ctx context.Context, t store.TrackedStory) (Result, error) {
	if t.MalID == nil {
		return Result{}, fmt.Errorf("story %d has no external id", t.ID)
	}

	previous, ok, err := u.store.GetReleaseMark(ctx, t.ID)
	if err != nil {
		return Result{}, err
	}
	if !ok {
		previous = t.ReleaseTotal()
	}

	remote, err := u.catalog.Lookup(ctx, t.Source, *t.MalID)
	if err != nil {
		return Result{}, err
	}
	current := releaseTotal(t.Source, remote)

	// The mark only moves forward. Providers report 0 while the total is unknown.
	if current > previous {
		if err := u.store.SetReleaseMark(ctx, t.ID, current); err != nil {
			return Result{}, err
		}
	}

	return Result{
		StoryID:       t.ID,
		Title:         t.Name,
		Source:        t.Source,
		PreviousTotal: previous,
		CurrentTotal:  current,
		Owners:        t.Owners,
	}, nil
}

func releaseTotal(source store.Source, c catalog.Candidate) int {
	if source.IsReadable() {
		return c.TotalChapter
	}
	return c.TotalEpisode
}
