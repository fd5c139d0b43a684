package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"amsvault/internal/store"
)

func storyColumns(alias string) string {
	p := ""
	if alias != "" {
		p = alias + "."
	}
	cols := []string{
		p + "id",
		p + "mal_id",
		p + "name",
		p + "source",
		"COALESCE(" + p + "description, '')",
		"COALESCE(" + p + "total_season, 0)",
		"COALESCE(" + p + "total_episode, 0)",
		"COALESCE(" + p + "total_volume, 0)",
		"COALESCE(" + p + "total_chapter, 0)",
		"COALESCE(" + p + "status, 'ongoing')",
		"COALESCE(" + p + "main_picture_medium, '')",
		"COALESCE(" + p + "main_picture_large, '')",
		"COALESCE(" + p + "created_at, '')",
	}
	return strings.Join(cols, ", ")
}

// storyDest returns scan targets matching storyColumns plus a finish func that
// copies the nullable and time fields into s.
func storyDest(s *store.Story) ([]any, func() error) {
	var (
		malID     sql.NullInt64
		source    string
		status    string
		createdAt string
	)
	dest := []any{
		&s.ID, &malID, &s.Name, &source, &s.Description,
		&s.TotalSeason, &s.TotalEpisode, &s.TotalVolume, &s.TotalChapter,
		&status, &s.MainPicture.Medium, &s.MainPicture.Large, &createdAt,
	}
	finish := func() error {
		if malID.Valid {
			v := malID.Int64
			s.MalID = &v
		}
		s.Source = store.Source(source)
		s.Status = store.StoryStatus(status)
		t, err := scanTime(createdAt)
		if err != nil {
			return err
		}
		s.CreatedAt = t
		return nil
	}
	return dest, finish
}

func scanStory(row scanner) (store.Story, error) {
	var s store.Story
	dest, finish := storyDest(&s)
	if err := row.Scan(dest...); err != nil {
		return store.Story{}, err
	}
	return s, finish()
}

func (db *DB) CreateStory(ctx context.Context, in store.StoryInput) (int64, error) {
	in, err := in.Normalize()
	if err != nil {
		return 0, err
	}

	db.writeMu.Lock()
	defer db.writeMu.Unlock()

	res, err := db.ExecContext(ctx, `
		INSERT INTO stories (
			mal_id, name, source, description,
			total_season, total_episode, total_volume, total_chapter,
			status, main_picture_medium, main_picture_large, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, in.MalID, in.Name, string(in.Source), in.Description,
		in.TotalSeason, in.TotalEpisode, in.TotalVolume, in.TotalChapter,
		string(in.Status), in.MainPicture.Medium, in.MainPicture.Large, formatTime(db.now()))
	if err != nil {
		return 0, fmt.Errorf("insert story: %w", err)
	}
	return res.LastInsertId()
}

func (db *DB) GetStoryByID(ctx context.Context, id int64) (*store.Story, error) {
	row := db.QueryRowContext(ctx, "SELECT "+storyColumns("")+" FROM stories WHERE id = ?", id)
	s, err := scanStory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get story: %w", err)
	}
	return &s, nil
}

// SearchStoriesByName matches substring case-insensitively and orders by name.
func (db *DB) SearchStoriesByName(ctx context.Context, substring string) ([]store.Story, error) {
	rows, err := db.QueryContext(ctx,
		"SELECT "+storyColumns("")+" FROM stories WHERE instr(casefold(name), ?) > 0 ORDER BY name, id",
		store.FoldName(substring))
	if err != nil {
		return nil, fmt.Errorf("search stories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []store.Story
	for rows.Next() {
		s, err := scanStory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteStory removes the story together with its bookmarks and release mark.
func (db *DB) DeleteStory(ctx context.Context, id int64) error {
	db.writeMu.Lock()
	defer db.writeMu.Unlock()

	res, err := db.ExecContext(ctx, "DELETE FROM stories WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete story: %w", err)
	}
	return affectedOne(res)
}
