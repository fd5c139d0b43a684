package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"amsvault/internal/store"
)

// ListTrackedStories returns bookmarked stories that carry an external id,
// each with the ids of the users who bookmarked it.
func (db *DB) ListTrackedStories(ctx context.Context) ([]store.TrackedStory, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+storyColumns("s")+`, b.user_id
		FROM stories s
		INNER JOIN bookmarks b ON b.story_id = s.id
		WHERE s.mal_id IS NOT NULL
		ORDER BY s.id, b.user_id
	`)
	if err != nil {
		return nil, fmt.Errorf("list tracked stories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []store.TrackedStory
	for rows.Next() {
		var (
			s      store.Story
			userID int64
		)
		dest, finish := storyDest(&s)
		if err := rows.Scan(append(dest, &userID)...); err != nil {
			return nil, err
		}
		if err := finish(); err != nil {
			return nil, err
		}
		if n := len(out); n > 0 && out[n-1].ID == s.ID {
			out[n-1].Owners = append(out[n-1].Owners, userID)
			continue
		}
		out = append(out, store.TrackedStory{Story: s, Owners: []int64{userID}})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (db *DB) GetReleaseMark(ctx context.Context, storyID int64) (int, bool, error) {
	var total int
	err := db.QueryRowContext(ctx, "SELECT seen_total FROM release_checks WHERE story_id = ?", storyID).Scan(&total)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("get release mark: %w", err)
	}
	return total, true, nil
}

func (db *DB) SetReleaseMark(ctx context.Context, storyID int64, total int) error {
	db.writeMu.Lock()
	defer db.writeMu.Unlock()

	_, err := db.ExecContext(ctx, `
		INSERT INTO release_checks (story_id, seen_total, checked_at) VALUES (?, ?, ?)
		ON CONFLICT (story_id) DO UPDATE SET
			seen_total = excluded.seen_total,
			checked_at = excluded.checked_at
	`, storyID, total, formatTime(db.now()))
	if isForeignKeyViolation(err) {
		return fmt.Errorf("story %d: %w", storyID, store.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("set release mark: %w", err)
	}
	return nil
}
