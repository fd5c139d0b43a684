package kvstore

import (
	"context"
	"fmt"
	"slices"

	"amsvault/internal/store"
)

func (s *Store) ListTrackedStories(ctx context.Context) ([]store.TrackedStory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stories, err := load[storyRecord](ctx, s.engine, keyStories)
	if err != nil {
		return nil, err
	}
	bookmarks, err := load[bookmarkRecord](ctx, s.engine, keyBookmarks)
	if err != nil {
		return nil, err
	}
	owners := make(map[int64][]int64)
	for _, b := range bookmarks {
		owners[b.StoryID] = append(owners[b.StoryID], b.UserID)
	}

	var out []store.TrackedStory
	for _, r := range stories {
		if r.MalID == nil || len(owners[r.ID]) == 0 {
			continue
		}
		ids := owners[r.ID]
		slices.Sort(ids)
		out = append(out, store.TrackedStory{Story: r.toStory(), Owners: ids})
	}
	slices.SortFunc(out, func(a, b store.TrackedStory) int { return cmpID(a.ID, b.ID) })
	return out, nil
}

func (s *Store) GetReleaseMark(ctx context.Context, storyID int64) (int, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	marks, err := load[releaseRecord](ctx, s.engine, keyReleaseChecks)
	if err != nil {
		return 0, false, err
	}
	for _, m := range marks {
		if m.StoryID == storyID {
			return m.SeenTotal, true, nil
		}
	}
	return 0, false, nil
}

func (s *Store) SetReleaseMark(ctx context.Context, storyID int64, total int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stories, err := load[storyRecord](ctx, s.engine, keyStories)
	if err != nil {
		return err
	}
	if !slices.ContainsFunc(stories, func(r storyRecord) bool { return r.ID == storyID }) {
		return fmt.Errorf("story %d: %w", storyID, store.ErrNotFound)
	}
	marks, err := load[releaseRecord](ctx, s.engine, keyReleaseChecks)
	if err != nil {
		return err
	}
	rec := releaseRecord{StoryID: storyID, SeenTotal: total, CheckedAt: s.now().UTC()}
	if i := slices.IndexFunc(marks, func(m releaseRecord) bool { return m.StoryID == storyID }); i >= 0 {
		marks[i] = rec
	} else {
		marks = append(marks, rec)
	}
	return save(ctx, s.engine, keyReleaseChecks, marks)
}
