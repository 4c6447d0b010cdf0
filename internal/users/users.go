// Package users keeps the process-wide registry of anonymous users. A user is
// identified by a private id (kept in a cookie) and a public id that other
// players see.
package users

import (
	"cmp"
	"slices"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/coder/quartz"
	"github.com/google/uuid"
)

// User is one browser across all games
type User struct {
	ID         string
	PublicID   string
	Name       string
	LastActive time.Time
}

// Registry stores every user seen by the server
type Registry struct {
	mu         sync.RWMutex
	users      map[string]*User
	byPublicID map[string]*User
	minName    int
	maxName    int
	clock      quartz.Clock
}

// NewRegistry creates an empty registry applying the given name length limits
func NewRegistry(minName, maxName int, clock quartz.Clock) *Registry {
	return &Registry{
		users:      make(map[string]*User),
		byPublicID: make(map[string]*User),
		minName:    minName,
		maxName:    maxName,
		clock:      clock,
	}
}

// Touch returns a copy of the user with the given private id, registering a
// new user when the id is unknown or empty. The user is marked active.
func (r *Registry) Touch(id string) User {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok || id == "" {
		u = r.add()
	}
	u.LastActive = r.clock.Now()
	return *u
}

func (r *Registry) add() *User {
	u := &User{
		ID:       uuid.NewString(),
		PublicID: uuid.NewString(),
	}
	u.Name = "player." + u.PublicID[:4]
	r.users[u.ID] = u
	r.byPublicID[u.PublicID] = u
	return u
}

// Get returns the user with the given private id
func (r *Registry) Get(id string) (User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return User{}, false
	}
	return *u, true
}

// ByPublicID returns the user with the given public id
func (r *Registry) ByPublicID(publicID string) (User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byPublicID[publicID]
	if !ok {
		return User{}, false
	}
	return *u, true
}

// SetName renames a user and returns the resulting name. Names shorter than
// the minimum are ignored and longer ones are truncated.
func (r *Registry) SetName(id, name string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return "", false
	}
	if utf8.RuneCountInString(name) >= r.minName {
		u.Name = truncate(name, r.maxName)
	}
	return u.Name, true
}

// List returns all users, most recently active first
func (r *Registry) List() []User {
	r.mu.RLock()
	out := make([]User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, *u)
	}
	r.mu.RUnlock()

	slices.SortFunc(out, func(a, b User) int {
		return cmp.Or(b.LastActive.Compare(a.LastActive), cmp.Compare(a.Name, b.Name))
	})
	return out
}

// Len returns the number of registered users
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
