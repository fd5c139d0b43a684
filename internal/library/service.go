// Package library reconciles catalog search results with the local store and
// manages the signed-in user's bookmarks.
package library

import (
	"context"
	"time"

	"amsvault/internal/apperr"
	"amsvault/internal/catalog"
	"amsvault/internal/session"
	"amsvault/internal/store"
)

const DefaultSearchTimeout = 10 * time.Second

// Store is the part of the local store the service uses.
type Store interface {
	CreateStory(ctx context.Context, in store.StoryInput) (int64, error)
	DeleteStory(ctx context.Context, id int64) error
	GetStoryByID(ctx context.Context, id int64) (*store.Story, error)
	SearchStoriesByName(ctx context.Context, substring string) ([]store.Story, error)
	CreateBookmark(ctx context.Context, in store.BookmarkInput) (int64, error)
	GetBookmark(ctx context.Context, id int64) (*store.Bookmark, error)
	UpdateBookmark(ctx context.Context, id int64, update store.BookmarkUpdate) error
	GetBookmarksByUser(ctx context.Context, userID int64) ([]store.BookmarkWithStory, error)
	DeleteBookmark(ctx context.Context, id int64) error
}

// Searcher queries the external catalogs. It never fails; an unavailable
// provider simply contributes nothing.
type Searcher interface {
	Search(ctx context.Context, query string, category catalog.Category) []catalog.Candidate
}

type Service struct {
	store    Store
	searcher Searcher
	session  *session.Session
	timeout  time.Duration
}

type Option func(*Service)

// WithSearchTimeout bounds how long Search waits before falling back to local results.
func WithSearchTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func New(st Store, searcher Searcher, sess *session.Session, opts ...Option) *Service {
	s := &Service{store: st, searcher: searcher, session: sess, timeout: DefaultSearchTimeout}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Session() *session.Session { return s.session }

func (s *Service) requireUser() (*store.User, error) {
	if s.session == nil {
		return nil, apperr.Unauthenticated()
	}
	u := s.session.CurrentUser()
	if u == nil {
		return nil, apperr.Unauthenticated()
	}
	return u, nil
}

// ownedBookmark loads a bookmark of the signed-in user. Bookmarks of other
// users are reported as not found.
func (s *Service) ownedBookmark(ctx context.Context, id int64) (*store.Bookmark, *store.User, error) {
	u, err := s.requireUser()
	if err != nil {
		return nil, nil, err
	}
	b, err := s.store.GetBookmark(ctx, id)
	if err != nil {
		return nil, nil, apperr.FromStore(err, "Bookmark")
	}
	if b == nil || b.UserID != u.ID {
		return nil, nil, apperr.NotFound("Bookmark")
	}
	return b, u, nil
}
