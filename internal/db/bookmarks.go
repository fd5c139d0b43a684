package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"amsvault/internal/store"
)

const bookmarkColumns = `b.id, b.user_id, b.story_id, b.status,
	COALESCE(b.current_season, 0), COALESCE(b.current_episode, 0),
	COALESCE(b.current_volume, 0), COALESCE(b.current_chapter, 0),
	COALESCE(b.created_at, ''), COALESCE(b.updated_at, '')`

func bookmarkDest(b *store.Bookmark) ([]any, func() error) {
	var status, createdAt, updatedAt string
	dest := []any{
		&b.ID, &b.UserID, &b.StoryID, &status,
		&b.CurrentSeason, &b.CurrentEpisode, &b.CurrentVolume, &b.CurrentChapter,
		&createdAt, &updatedAt,
	}
	finish := func() error {
		b.Status = store.BookmarkStatus(status)
		var err error
		if b.CreatedAt, err = scanTime(createdAt); err != nil {
			return err
		}
		b.UpdatedAt, err = scanTime(updatedAt)
		return err
	}
	return dest, finish
}

func (db *DB) CreateBookmark(ctx context.Context, in store.BookmarkInput) (int64, error) {
	db.writeMu.Lock()
	defer db.writeMu.Unlock()

	var source string
	err := db.QueryRowContext(ctx, "SELECT source FROM stories WHERE id = ?", in.StoryID).Scan(&source)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("story %d: %w", in.StoryID, store.ErrStoryNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("lookup story: %w", err)
	}
	in = in.Normalize(store.Source(source))

	now := formatTime(db.now())
	res, err := db.ExecContext(ctx, `
		INSERT INTO bookmarks (
			user_id, story_id, status,
			current_season, current_episode, current_volume, current_chapter,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, in.UserID, in.StoryID, string(in.Status),
		in.CurrentSeason, in.CurrentEpisode, in.CurrentVolume, in.CurrentChapter,
		now, now)
	switch {
	case err == nil:
	case isUniqueViolation(err):
		return 0, store.ErrBookmarkExists
	case isForeignKeyViolation(err):
		return 0, fmt.Errorf("user %d: %w", in.UserID, store.ErrUserNotFound)
	default:
		return 0, fmt.Errorf("insert bookmark: %w", err)
	}
	return res.LastInsertId()
}

func (db *DB) GetBookmark(ctx context.Context, id int64) (*store.Bookmark, error) {
	var b store.Bookmark
	dest, finish := bookmarkDest(&b)
	err := db.QueryRowContext(ctx, "SELECT "+bookmarkColumns+" FROM bookmarks b WHERE b.id = ?", id).Scan(dest...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get bookmark: %w", err)
	}
	if err := finish(); err != nil {
		return nil, err
	}
	return &b, nil
}

// UpdateBookmark writes only the fields set in update and always refreshes updated_at.
func (db *DB) UpdateBookmark(ctx context.Context, id int64, update store.BookmarkUpdate) error {
	if err := update.Validate(); err != nil {
		return err
	}

	var (
		sets []string
		args []any
	)
	if update.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, string(*update.Status))
	}
	if update.CurrentSeason != nil {
		sets = append(sets, "current_season = ?")
		args = append(args, *update.CurrentSeason)
	}
	if update.CurrentEpisode != nil {
		sets = append(sets, "current_episode = ?")
		args = append(args, *update.CurrentEpisode)
	}
	if update.CurrentVolume != nil {
		sets = append(sets, "current_volume = ?")
		args = append(args, *update.CurrentVolume)
	}
	if update.CurrentChapter != nil {
		sets = append(sets, "current_chapter = ?")
		args = append(args, *update.CurrentChapter)
	}

	db.writeMu.Lock()
	defer db.writeMu.Unlock()

	sets = append(sets, "updated_at = ?")
	args = append(args, formatTime(db.now()), id)

	res, err := db.ExecContext(ctx, "UPDATE bookmarks SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return fmt.Errorf("update bookmark: %w", err)
	}
	return affectedOne(res)
}

// GetBookmarksByUser joins bookmarks with their stories, most recently updated first.
func (db *DB) GetBookmarksByUser(ctx context.Context, userID int64) ([]store.BookmarkWithStory, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+bookmarkColumns+`, `+storyColumns("s")+`
		FROM bookmarks b
		INNER JOIN stories s ON s.id = b.story_id
		WHERE b.user_id = ?
		ORDER BY b.updated_at DESC, b.id DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list bookmarks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []store.BookmarkWithStory
	for rows.Next() {
		var item store.BookmarkWithStory
		bDest, bFinish := bookmarkDest(&item.Bookmark)
		sDest, sFinish := storyDest(&item.Story)
		if err := rows.Scan(append(bDest, sDest...)...); err != nil {
			return nil, err
		}
		if err := bFinish(); err != nil {
			return nil, err
		}
		if err := sFinish(); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (db *DB) DeleteBookmark(ctx context.Context, id int64) error {
	db.writeMu.Lock()
	defer db.writeMu.Unlock()

	res, err := db.ExecContext(ctx, "DELETE FROM bookmarks WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete bookmark: %w", err)
	}
	return affectedOne(res)
}
