// Package memory is an in-process Store used for development and tests.
// Its filtering goes through core.Filter, the reference semantics the SQL
// stores mirror.
package memory

import (
	"context"
	"sync"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

type Store struct {
	mu     sync.RWMutex
	users  []core.User
	ledger map[core.Kind][]core.Transaction
	nextID map[string]int64
}

var _ storage.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		ledger: make(map[core.Kind][]core.Transaction),
		nextID: make(map[string]int64),
	}
}

func (s *Store) id(key string) int64 {
	s.nextID[key]++
	return s.nextID[key]
}

func (s *Store) Ping(context.Context) error { return nil }
func (s *Store) Close() error               { return nil }

func (s *Store) CreateUser(_ context.Context, u *core.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Username == u.Username {
			return core.ErrDuplicateUsername
		}
	}
	u.ID = s.id("users")
	u.CreatedAt = time.Now().UTC()
	s.users = append(s.users, *u)
	return nil
}

func (s *Store) UserByUsername(_ context.Context, username string) (*core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Username == username {
			out := u
			return &out, nil
		}
	}
	return nil, core.ErrNotFound
}

func (s *Store) UserByID(_ context.Context, id int64) (*core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.ID == id {
			out := u
			return &out, nil
		}
	}
	return nil, core.ErrNotFound
}

func (s *Store) CreateTransaction(_ context.Context, t *core.Transaction) error {
	if !t.Kind.Valid() {
		return core.ErrInvalidKind
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasUser(t.UserID) {
		return core.ErrNotFound
	}
	t.ID = s.id(string(t.Kind))
	t.CreatedAt = time.Now().UTC()
	s.ledger[t.Kind] = append(s.ledger[t.Kind], *t)
	return nil
}

func (s *Store) hasUser(id int64) bool {
	for _, u := range s.users {
		if u.ID == id {
			return true
		}
	}
	return false
}

func (s *Store) Transaction(_ context.Context, kind core.Kind, id int64) (*core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.index(kind, id)
	if i < 0 {
		return nil, core.ErrNotFound
	}
	out := s.ledger[kind][i]
	return &out, nil
}

func (s *Store) UpdateTransaction(_ context.Context, t *core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(t.Kind, t.ID)
	if i < 0 || s.ledger[t.Kind][i].UserID != t.UserID {
		return core.ErrNotFound
	}
	cur := &s.ledger[t.Kind][i]
	cur.Category = t.Category
	cur.Amount = t.Amount
	cur.Date = t.Date
	cur.Description = t.Description
	t.CreatedAt = cur.CreatedAt
	return nil
}

func (s *Store) DeleteTransaction(_ context.Context, kind core.Kind, userID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(kind, id)
	if i < 0 || s.ledger[kind][i].UserID != userID {
		return core.ErrNotFound
	}
	rows := s.ledger[kind]
	s.ledger[kind] = append(rows[:i:i], rows[i+1:]...)
	return nil
}

func (s *Store) ListTransactions(_ context.Context, kind core.Kind, f core.Filter) ([]core.Transaction, error) {
	if !kind.Valid() {
		return nil, core.ErrInvalidKind
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return f.Apply(s.ledger[kind]), nil
}

func (s *Store) index(kind core.Kind, id int64) int {
	for i, t := range s.ledger[kind] {
		if t.ID == id {
			return i
		}
	}
	return -1
}
