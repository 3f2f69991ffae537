package app

import (
	"context"
	"errors"
	"sync"

	"payroll/internal/console/domain"

	"github.com/sirupsen/logrus"
)

const maxStaleRetries = 3

// ErrStale is returned when every fetch attempt was overtaken by an
// invalidation.
var ErrStale = errors.New("user list changed while loading, try again")

// Store is the read replica of the user list. Every invalidation bumps the
// generation; a fetch started under an older generation is discarded.
type Store struct {
	backend Backend
	log     logrus.FieldLogger

	mu         sync.Mutex
	generation uint64
	users      []domain.User
	loaded     bool
}

func NewStore(backend Backend, log logrus.FieldLogger) *Store {
	return &Store{backend: backend, log: log}
}

// Generation is the current cache generation.
func (s *Store) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// Invalidate drops the cached list and starts a new generation.
func (s *Store) Invalidate() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.users = nil
	s.loaded = false
	return s.generation
}

// Snapshot returns the cached list without a network call.
func (s *Store) Snapshot() ([]domain.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return nil, false
	}
	return cloneUsers(s.users), true
}

// Fetch always requests the list from the backend and stores it when the
// generation is unchanged. A response that lost the race is retried.
func (s *Store) Fetch(ctx context.Context) ([]domain.User, error) {
	for attempt := 0; attempt < maxStaleRetries; attempt++ {
		gen := s.Generation()
		users, err := s.backend.ListUsers(ctx)
		if err != nil {
			return nil, err
		}

		s.mu.Lock()
		if s.generation != gen {
			s.mu.Unlock()
			s.log.WithFields(logrus.Fields{"fetched": gen, "current": s.Generation()}).Debug("discarding stale user list")
			continue
		}
		s.users = cloneUsers(users)
		s.loaded = true
		s.mu.Unlock()
		return cloneUsers(users), nil
	}
	return nil, ErrStale
}

// Users returns the cached list, fetching it on first use.
func (s *Store) Users(ctx context.Context) ([]domain.User, error) {
	if users, ok := s.Snapshot(); ok {
		return users, nil
	}
	return s.Fetch(ctx)
}

func cloneUsers(users []domain.User) []domain.User {
	if users == nil {
		return nil
	}
	out := make([]domain.User, len(users))
	for i, u := range users {
		u.PayrollHistory = append([]domain.PayrollRecord(nil), u.PayrollHistory...)
		out[i] = u
	}
	return out
}
