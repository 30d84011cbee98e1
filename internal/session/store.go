// Package session holds the currently authenticated user.
package session

import (
	"sync"

	"github.com/and161185/debtdesk/internal/model"
)

// Store is the single source of truth for "who is logged in". Constructed
// once at startup and passed to everything that needs it. Every Set is a full
// replace; there are no merge semantics.
type Store struct {
	mu   sync.RWMutex
	user *model.User
}

// New returns an empty store.
func New() *Store { return &Store{} }

// Set replaces the current user.
func (s *Store) Set(u model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cpy := u
	s.user = &cpy
}

// Clear removes the current user.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
}

// Current returns a copy of the current user, or false when nobody is logged in.
func (s *Store) Current() (model.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return model.User{}, false
	}
	return *s.user, true
}

// IsAuthenticated reports whether a user record is present.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}
