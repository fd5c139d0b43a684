// Package session holds the signed-in user for one front end (one device, one
// chat). There is no process-wide current user; each front end owns a Session.
package session

import (
	"context"
	"strings"
	"sync"

	"amsvault/internal/apperr"
	"amsvault/internal/store"
)

// UserStore is the part of the local store a session needs.
type UserStore interface {
	CreateUser(ctx context.Context, name, email, password string) (store.User, error)
	AuthenticateUser(ctx context.Context, email, password string) (*store.User, error)
}

type Session struct {
	users UserStore

	mu      sync.RWMutex
	current *store.User
}

func New(users UserStore) *Session {
	return &Session{users: users}
}

// CurrentUser returns a copy of the signed-in user, or nil.
func (s *Session) CurrentUser() *store.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	u := *s.current
	return &u
}

func (s *Session) IsAuthenticated() bool {
	return s.CurrentUser() != nil
}

// SignIn authenticates and makes the user current. A mismatch leaves any
// existing session untouched.
func (s *Session) SignIn(ctx context.Context, email, password string) (*store.User, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, apperr.Validation("Email and password are required")
	}
	u, err := s.users.AuthenticateUser(ctx, email, password)
	if err != nil {
		return nil, apperr.FromStore(err, "User")
	}
	if u == nil {
		return nil, apperr.InvalidCredentials()
	}
	s.set(u)
	return s.CurrentUser(), nil
}

// SignUp registers a new user and signs them in.
func (s *Session) SignUp(ctx context.Context, name, email, password string) (*store.User, error) {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(email) == "" || password == "" {
		return nil, apperr.Validation("Name, email and password are required")
	}
	u, err := s.users.CreateUser(ctx, name, email, password)
	if err != nil {
		return nil, apperr.FromStore(err, "User")
	}
	s.set(&u)
	return s.CurrentUser(), nil
}

func (s *Session) SignOut() {
	s.set(nil)
}

func (s *Session) set(u *store.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u == nil {
		s.current = nil
		return
	}
	cp := *u
	s.current = &cp
}
