package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Matchmaker/internal/profile"
)

// MemoryStore keeps everything in process memory. It is used when no
// database is configured.
type MemoryStore struct {
	mu       sync.RWMutex
	actions  map[string]Action
	profiles []profile.Profile
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{actions: make(map[string]Action), now: time.Now}
}

func (s *MemoryStore) UpsertAction(_ context.Context, a *Action) error {
	if err := a.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.actions[a.Key()]; ok {
		a.ID = prev.ID
	} else {
		a.ID = uuid.New()
	}
	now := s.now().UTC()
	a.UpdatedAt = &now
	s.actions[a.Key()] = *a
	return nil
}

func (s *MemoryStore) ListActions(_ context.Context) ([]Action, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Action, 0, len(s.actions))
	for _, a := range s.actions {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FromID != out[j].FromID {
			return out[i].FromID < out[j].FromID
		}
		return out[i].ToID < out[j].ToID
	})
	return out, nil
}

func (s *MemoryStore) ListProfiles(_ context.Context) ([]profile.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]profile.Profile(nil), s.profiles...), nil
}

func (s *MemoryStore) SaveProfiles(_ context.Context, profiles []profile.Profile, overwrite bool) (int, error) {
	if err := profile.ValidateAll(profiles); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if overwrite {
		s.profiles = mergeProfiles(nil, profiles)
	} else {
		s.profiles = mergeProfiles(s.profiles, profiles)
	}
	return len(s.profiles), nil
}

func (s *MemoryStore) ResetProfiles(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles = nil
	return nil
}

func (s *MemoryStore) Close() error { return nil }
