// Package store defines the local persistence contract shared by the SQLite
// and key-value backends: users, catalog stories and the bookmarks joining them.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/cases"
)

var (
	ErrNotFound       = errors.New("store: not found")
	ErrDuplicateEmail = errors.New("store: email already registered")
	ErrBookmarkExists = errors.New("store: bookmark already exists")
	ErrInvalid        = errors.New("store: invalid input")
	ErrUnavailable    = errors.New("store: unavailable")

	// ErrUserNotFound and ErrStoryNotFound name the missing side of a bookmark.
	// Both match ErrNotFound.
	ErrUserNotFound  = fmt.Errorf("%w: user", ErrNotFound)
	ErrStoryNotFound = fmt.Errorf("%w: story", ErrNotFound)
)

// SchemaVersion is the version of the persisted layout written by both backends.
const SchemaVersion = 2

// Store is the local store. Every method is atomic with respect to the
// collections it touches.
type Store interface {
	CreateUser(ctx context.Context, name, email, password string) (User, error)
	// AuthenticateUser returns nil, nil when the credentials do not match.
	AuthenticateUser(ctx context.Context, email, password string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	CountUsers(ctx context.Context) (int, error)
	DeleteUser(ctx context.Context, id int64) error

	CreateStory(ctx context.Context, in StoryInput) (int64, error)
	GetStoryByID(ctx context.Context, id int64) (*Story, error)
	SearchStoriesByName(ctx context.Context, substring string) ([]Story, error)
	DeleteStory(ctx context.Context, id int64) error

	CreateBookmark(ctx context.Context, in BookmarkInput) (int64, error)
	GetBookmark(ctx context.Context, id int64) (*Bookmark, error)
	UpdateBookmark(ctx context.Context, id int64, update BookmarkUpdate) error
	GetBookmarksByUser(ctx context.Context, userID int64) ([]BookmarkWithStory, error)
	DeleteBookmark(ctx context.Context, id int64) error

	ReleaseLog

	ClearAll(ctx context.Context) error
	Close() error
}

// ReleaseLog keeps the per-story watermark used by the release watch.
type ReleaseLog interface {
	ListTrackedStories(ctx context.Context) ([]TrackedStory, error)
	GetReleaseMark(ctx context.Context, storyID int64) (total int, ok bool, err error)
	SetReleaseMark(ctx context.Context, storyID int64, total int) error
}

// HashPassword hashes a password for storage.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the stored hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// NormalizeEmail trims surrounding whitespace. Emails are otherwise compared exactly.
func NormalizeEmail(email string) string {
	return strings.TrimSpace(email)
}

// FoldName returns the case-folded form used for case-insensitive name matching.
func FoldName(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}
