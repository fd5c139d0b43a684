package library

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"amsvault/internal/apperr"
	"amsvault/internal/logger"
	"amsvault/internal/store"
)

// UpdateProgress applies a partial update to one of the signed-in user's
// bookmarks. A status must belong to the vocabulary of the story's source.
func (s *Service) UpdateProgress(ctx context.Context, bookmarkID int64, update store.BookmarkUpdate) error {
	b, u, err := s.ownedBookmark(ctx, bookmarkID)
	if err != nil {
		return err
	}
	if update.IsEmpty() {
		return nil
	}
	if err := update.Validate(); err != nil {
		return apperr.Validation("Progress values cannot be negative and the status cannot be empty")
	}
	if update.Status != nil {
		st, err := s.store.GetStoryByID(ctx, b.StoryID)
		if err != nil {
			return apperr.FromStore(err, "Story")
		}
		if st == nil {
			return apperr.NotFound("Story")
		}
		if !update.Status.ValidFor(st.Source) {
			return apperr.Validation(fmt.Sprintf("Status %q is not available for %s", *update.Status, st.Source))
		}
	}
	if err := s.store.UpdateBookmark(ctx, b.ID, update); err != nil {
		return apperr.FromStore(err, "Bookmark")
	}
	logger.LogMsg(logger.LogInfo, "User %d updated bookmark %d", u.ID, b.ID)
	return nil
}

// Field is one of the progress counters of a bookmark.
type Field string

const (
	FieldSeason  Field = "season"
	FieldEpisode Field = "episode"
	FieldVolume  Field = "volume"
	FieldChapter Field = "chapter"
)

// ParseField accepts a field name in any case, singular or plural.
func ParseField(s string) (Field, error) {
	s = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "s")
	switch f := Field(s); f {
	case FieldSeason, FieldEpisode, FieldVolume, FieldChapter:
		return f, nil
	}
	return "", apperr.Validation(fmt.Sprintf("Unknown field %q", s))
}

var ErrDraftClosed = errors.New("progress draft already committed or discarded")

// ProgressDraft collects edits to a bookmark in memory. Nothing is written
// until Commit, which issues a single update.
type ProgressDraft struct {
	svc *Service

	mu       sync.Mutex
	original store.Bookmark
	current  store.Bookmark
	closed   bool
}

// EditProgress starts a draft for one of the signed-in user's bookmarks.
func (s *Service) EditProgress(ctx context.Context, bookmarkID int64) (*ProgressDraft, error) {
	b, _, err := s.ownedBookmark(ctx, bookmarkID)
	if err != nil {
		return nil, err
	}
	return &ProgressDraft{svc: s, original: *b, current: *b}, nil
}

func (d *ProgressDraft) BookmarkID() int64 { return d.original.ID }

func field(b *store.Bookmark, f Field) *int {
	switch f {
	case FieldSeason:
		return &b.CurrentSeason
	case FieldEpisode:
		return &b.CurrentEpisode
	case FieldVolume:
		return &b.CurrentVolume
	case FieldChapter:
		return &b.CurrentChapter
	}
	return nil
}

// Set replaces a counter. Negative values are clamped to zero.
func (d *ProgressDraft) Set(f Field, v int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if p := field(&d.current, f); p != nil {
		*p = max(v, 0)
	}
}

// Adjust adds delta to a counter without going below zero.
func (d *ProgressDraft) Adjust(f Field, delta int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if p := field(&d.current, f); p != nil {
		*p = max(*p+delta, 0)
	}
}

func (d *ProgressDraft) SetStatus(status store.BookmarkStatus) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.current.Status = status
}

func (d *ProgressDraft) Value(f Field) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	if p := field(&d.current, f); p != nil {
		return *p
	}
	return 0
}

// Pending returns the update Commit would send.
func (d *ProgressDraft) Pending() store.BookmarkUpdate {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pendingLocked()
}

func (d *ProgressDraft) pendingLocked() store.BookmarkUpdate {
	var u store.BookmarkUpdate
	if d.current.Status != d.original.Status {
		st := d.current.Status
		u.Status = &st
	}
	for _, f := range []Field{FieldSeason, FieldEpisode, FieldVolume, FieldChapter} {
		cur, orig := *field(&d.current, f), *field(&d.original, f)
		if cur == orig {
			continue
		}
		v := cur
		switch f {
		case FieldSeason:
			u.CurrentSeason = &v
		case FieldEpisode:
			u.CurrentEpisode = &v
		case FieldVolume:
			u.CurrentVolume = &v
		case FieldChapter:
			u.CurrentChapter = &v
		}
	}
	return u
}

// Commit writes the pending changes. A draft can be committed once; a failed
// commit leaves it open so the caller may retry.
func (d *ProgressDraft) Commit(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrDraftClosed
	}
	if err := d.svc.UpdateProgress(ctx, d.original.ID, d.pendingLocked()); err != nil {
		return err
	}
	d.closed = true
	return nil
}

// Discard drops the pending changes without writing.
func (d *ProgressDraft) Discard() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	d.current = d.original
}
