package kvstore

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"amsvault/internal/store"
)

const (
	keyUsers         = "users"
	keyStories       = "stories"
	keyBookmarks     = "bookmarks"
	keyReleaseChecks = "release_checks"
	keySchemaVersion = "meta:schema_version"

	counterPrefix = "counter:"
)

// Store implements store.Store over an Engine.
type Store struct {
	engine Engine
	mu     sync.Mutex
	now    func() time.Time
}

var _ store.Store = (*Store)(nil)

type Option func(*Store)

// WithClock overrides the time source used for created_at/updated_at.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Open checks the engine, stamps or verifies the schema version and returns the store.
// Engine failures are reported as store.ErrUnavailable.
func Open(ctx context.Context, engine Engine, opts ...Option) (*Store, error) {
	s := &Store{engine: engine, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	raw, ok, err := engine.Get(ctx, keySchemaVersion)
	if err != nil {
		return nil, fmt.Errorf("read schema version: %w: %w", store.ErrUnavailable, err)
	}
	if ok {
		v, err := strconv.Atoi(string(raw))
		if err != nil {
			return nil, fmt.Errorf("schema version %q: %w", raw, store.ErrUnavailable)
		}
		if v > store.SchemaVersion {
			return nil, fmt.Errorf("schema version %d is newer than supported %d: %w", v, store.SchemaVersion, store.ErrUnavailable)
		}
	}
	if err := engine.Set(ctx, keySchemaVersion, []byte(strconv.Itoa(store.SchemaVersion))); err != nil {
		return nil, fmt.Errorf("write schema version: %w: %w", store.ErrUnavailable, err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.engine.Close()
}

// SchemaVersion reports the persisted schema version.
func (s *Store) SchemaVersion(ctx context.Context) (int, error) {
	raw, ok, err := s.engine.Get(ctx, keySchemaVersion)
	if err != nil || !ok {
		return 0, err
	}
	return strconv.Atoi(string(raw))
}

func load[T any](ctx context.Context, e Engine, key string) ([]T, error) {
	raw, ok, err := e.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	if !ok || len(raw) == 0 {
		return nil, nil
	}
	var out []T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return out, nil
}

func save[T any](ctx context.Context, e Engine, key string, items []T) error {
	if items == nil {
		items = []T{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := e.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

func (s *Store) nextID(ctx context.Context, collection string) (int64, error) {
	id, err := s.engine.Incr(ctx, counterPrefix+collection)
	if err != nil {
		return 0, fmt.Errorf("next %s id: %w", collection, err)
	}
	return id, nil
}

// Users

func (s *Store) CreateUser(ctx context.Context, name, email, password string) (store.User, error) {
	name = strings.TrimSpace(name)
	email = store.NormalizeEmail(email)
	if name == "" || email == "" || password == "" {
		return store.User{}, store.ErrInvalid
	}
	hash, err := store.HashPassword(password)
	if err != nil {
		return store.User{}, fmt.Errorf("hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := load[userRecord](ctx, s.engine, keyUsers)
	if err != nil {
		return store.User{}, err
	}
	for _, u := range users {
		if u.Email == email {
			return store.User{}, store.ErrDuplicateEmail
		}
	}
	id, err := s.nextID(ctx, keyUsers)
	if err != nil {
		return store.User{}, err
	}
	rec := userRecord{ID: id, Name: name, Email: email, PasswordHash: hash, CreatedAt: s.now().UTC()}
	if err := save(ctx, s.engine, keyUsers, append(users, rec)); err != nil {
		return store.User{}, err
	}
	return rec.toUser(), nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*store.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := load[userRecord](ctx, s.engine, keyUsers)
	if err != nil {
		return nil, err
	}
	email = store.NormalizeEmail(email)
	for _, r := range users {
		if r.Email == email {
			u := r.toUser()
			return &u, nil
		}
	}
	return nil, nil
}

func (s *Store) AuthenticateUser(ctx context.Context, email, password string) (*store.User, error) {
	u, err := s.GetUserByEmail(ctx, email)
	if err != nil || u == nil {
		return nil, err
	}
	if !store.CheckPassword(u.PasswordHash, password) {
		return nil, nil
	}
	return u, nil
}

func (s *Store) CountUsers(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := load[userRecord](ctx, s.engine, keyUsers)
	return len(users), err
}

func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := load[userRecord](ctx, s.engine, keyUsers)
	if err != nil {
		return err
	}
	i := slices.IndexFunc(users, func(u userRecord) bool { return u.ID == id })
	if i < 0 {
		return store.ErrNotFound
	}
	bookmarks, err := load[bookmarkRecord](ctx, s.engine, keyBookmarks)
	if err != nil {
		return err
	}
	bookmarks = slices.DeleteFunc(bookmarks, func(b bookmarkRecord) bool { return b.UserID == id })
	if err := save(ctx, s.engine, keyBookmarks, bookmarks); err != nil {
		return err
	}
	return save(ctx, s.engine, keyUsers, slices.Delete(users, i, i+1))
}

// Stories

func (s *Store) CreateStory(ctx context.Context, in store.StoryInput) (int64, error) {
	in, err := in.Normalize()
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stories, err := load[storyRecord](ctx, s.engine, keyStories)
	if err != nil {
		return 0, err
	}
	id, err := s.nextID(ctx, keyStories)
	if err != nil {
		return 0, err
	}
	if err := save(ctx, s.engine, keyStories, append(stories, newStoryRecord(id, in, s.now().UTC()))); err != nil {
		return 0, err
	}
	return id, nil
}

func (s *Store) GetStoryByID(ctx context.Context, id int64) (*store.Story, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stories, err := load[storyRecord](ctx, s.engine, keyStories)
	if err != nil {
		return nil, err
	}
	for _, r := range stories {
		if r.ID == id {
			st := r.toStory()
			return &st, nil
		}
	}
	return nil, nil
}

func (s *Store) SearchStoriesByName(ctx context.Context, substring string) ([]store.Story, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stories, err := load[storyRecord](ctx, s.engine, keyStories)
	if err != nil {
		return nil, err
	}
	needle := store.FoldName(substring)
	var out []store.Story
	for _, r := range stories {
		if strings.Contains(store.FoldName(r.Name), needle) {
			out = append(out, r.toStory())
		}
	}
	slices.SortStableFunc(out, func(a, b store.Story) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return cmpID(a.ID, b.ID)
	})
	return out, nil
}

func (s *Store) DeleteStory(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stories, err := load[storyRecord](ctx, s.engine, keyStories)
	if err != nil {
		return err
	}
	i := slices.IndexFunc(stories, func(r storyRecord) bool { return r.ID == id })
	if i < 0 {
		return store.ErrNotFound
	}
	bookmarks, err := load[bookmarkRecord](ctx, s.engine, keyBookmarks)
	if err != nil {
		return err
	}
	marks, err := load[releaseRecord](ctx, s.engine, keyReleaseChecks)
	if err != nil {
		return err
	}
	bookmarks = slices.DeleteFunc(bookmarks, func(b bookmarkRecord) bool { return b.StoryID == id })
	marks = slices.DeleteFunc(marks, func(m releaseRecord) bool { return m.StoryID == id })
	if err := save(ctx, s.engine, keyBookmarks, bookmarks); err != nil {
		return err
	}
	if err := save(ctx, s.engine, keyReleaseChecks, marks); err != nil {
		return err
	}
	return save(ctx, s.engine, keyStories, slices.Delete(stories, i, i+1))
}

// Bookmarks

func (s *Store) CreateBookmark(ctx context.Context, in store.BookmarkInput) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stories, err := load[storyRecord](ctx, s.engine, keyStories)
	if err != nil {
		return 0, err
	}
	si := slices.IndexFunc(stories, func(r storyRecord) bool { return r.ID == in.StoryID })
	if si < 0 {
		return 0, fmt.Errorf("story %d: %w", in.StoryID, store.ErrStoryNotFound)
	}
	users, err := load[userRecord](ctx, s.engine, keyUsers)
	if err != nil {
		return 0, err
	}
	if !slices.ContainsFunc(users, func(u userRecord) bool { return u.ID == in.UserID }) {
		return 0, fmt.Errorf("user %d: %w", in.UserID, store.ErrUserNotFound)
	}
	bookmarks, err := load[bookmarkRecord](ctx, s.engine, keyBookmarks)
	if err != nil {
		return 0, err
	}
	if slices.ContainsFunc(bookmarks, func(b bookmarkRecord) bool {
		return b.UserID == in.UserID && b.StoryID == in.StoryID
	}) {
		return 0, store.ErrBookmarkExists
	}

	in = in.Normalize(store.Source(stories[si].Source))
	id, err := s.nextID(ctx, keyBookmarks)
	if err != nil {
		return 0, err
	}
	now := s.now().UTC()
	rec := bookmarkRecord{
		ID:             id,
		UserID:         in.UserID,
		StoryID:        in.StoryID,
		Status:         string(in.Status),
		CurrentSeason:  in.CurrentSeason,
		CurrentEpisode: in.CurrentEpisode,
		CurrentVolume:  in.CurrentVolume,
		CurrentChapter: in.CurrentChapter,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := save(ctx, s.engine, keyBookmarks, append(bookmarks, rec)); err != nil {
		return 0, err
	}
	return id, nil
}

func (s *Store) GetBookmark(ctx context.Context, id int64) (*store.Bookmark, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bookmarks, err := load[bookmarkRecord](ctx, s.engine, keyBookmarks)
	if err != nil {
		return nil, err
	}
	for _, r := range bookmarks {
		if r.ID == id {
			b := r.toBookmark()
			return &b, nil
		}
	}
	return nil, nil
}

func (s *Store) UpdateBookmark(ctx context.Context, id int64, update store.BookmarkUpdate) error {
	if err := update.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	bookmarks, err := load[bookmarkRecord](ctx, s.engine, keyBookmarks)
	if err != nil {
		return err
	}
	i := slices.IndexFunc(bookmarks, func(r bookmarkRecord) bool { return r.ID == id })
	if i < 0 {
		return store.ErrNotFound
	}
	bookmarks[i].apply(update)
	bookmarks[i].UpdatedAt = s.now().UTC()
	return save(ctx, s.engine, keyBookmarks, bookmarks)
}

func (s *Store) GetBookmarksByUser(ctx context.Context, userID int64) ([]store.BookmarkWithStory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bookmarks, err := load[bookmarkRecord](ctx, s.engine, keyBookmarks)
	if err != nil {
		return nil, err
	}
	stories, err := load[storyRecord](ctx, s.engine, keyStories)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]storyRecord, len(stories))
	for _, r := range stories {
		byID[r.ID] = r
	}

	var out []store.BookmarkWithStory
	for _, b := range bookmarks {
		if b.UserID != userID {
			continue
		}
		st, ok := byID[b.StoryID]
		if !ok {
			continue
		}
		out = append(out, store.BookmarkWithStory{Bookmark: b.toBookmark(), Story: st.toStory()})
	}
	slices.SortStableFunc(out, func(a, b store.BookmarkWithStory) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		return cmpID(b.ID, a.ID)
	})
	return out, nil
}

func (s *Store) DeleteBookmark(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	bookmarks, err := load[bookmarkRecord](ctx, s.engine, keyBookmarks)
	if err != nil {
		return err
	}
	i := slices.IndexFunc(bookmarks, func(r bookmarkRecord) bool { return r.ID == id })
	if i < 0 {
		return store.ErrNotFound
	}
	return save(ctx, s.engine, keyBookmarks, slices.Delete(bookmarks, i, i+1))
}

// ClearAll removes every collection and resets the id counters.
func (s *Store) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.engine.Delete(ctx,
		keyUsers, keyStories, keyBookmarks, keyReleaseChecks,
		counterPrefix+keyUsers, counterPrefix+keyStories, counterPrefix+keyBookmarks,
	)
}

func cmpID(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
