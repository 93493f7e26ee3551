// internal/registry/memory.go
package registry

import (
	"context"
	"sync"

	apperrors "activities-api/internal/common/errors"
)

// MemoryStore is the default in-process registry. One mutex guards the
// whole map: the registry is small and mutations are list appends, so
// per-activity locking buys nothing.
type MemoryStore struct {
	mu         sync.RWMutex
	activities map[string]Activity
	cfg        Config
}

// NewMemoryStore builds a store over a copy of seed. Each instance owns
// its state, so tests get a fresh registry per construction.
func NewMemoryStore(seed map[string]Activity, cfg Config) *MemoryStore {
	activities := make(map[string]Activity, len(seed))
	for name, act := range seed {
		activities[name] = act.Clone()
	}
	return &MemoryStore{
		activities: activities,
		cfg:        cfg,
	}
}

func (s *MemoryStore) List(ctx context.Context) (map[string]Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]Activity, len(s.activities))
	for name, act := range s.activities {
		out[name] = act.Clone()
	}
	return out, nil
}

func (s *MemoryStore) Signup(ctx context.Context, activity, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	act, exists := s.activities[activity]
	if !exists {
		return apperrors.NewActivityNotFoundError(activity)
	}
	if act.HasParticipant(email) {
		return apperrors.NewAlreadySignedUpError(email, activity)
	}
	if s.cfg.EnforceCapacity && len(act.Participants) >= act.MaxParticipants {
		return apperrors.NewActivityFullError(activity, act.MaxParticipants)
	}

	act.Participants = append(act.Participants, email)
	s.activities[activity] = act
	return nil
}

func (s *MemoryStore) Unregister(ctx context.Context, activity, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	act, exists := s.activities[activity]
	if !exists {
		return apperrors.NewActivityNotFoundError(activity)
	}

	for i, p := range act.Participants {
		if p == email {
			act.Participants = append(act.Participants[:i], act.Participants[i+1:]...)
			s.activities[activity] = act
			return nil
		}
	}
	return apperrors.NewNotSignedUpError(email, activity)
}
