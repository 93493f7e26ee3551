// internal/registry/redis.go
package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	apperrors "activities-api/internal/common/errors"

	"github.com/redis/go-redis/v9"
)

const (
	registryKey  = "activities:registry"
	maxTxRetries = 5
)

// RedisStore keeps the registry in one hash, one field per activity
// holding the JSON-encoded record. Mutations run under WATCH so a
// concurrent write to the hash retries the read-modify-write.
type RedisStore struct {
	client *redis.Client
	cfg    Config
}

func NewRedisStore(client *redis.Client, cfg Config) *RedisStore {
	return &RedisStore{client: client, cfg: cfg}
}

// SeedIfEmpty populates the hash when it holds no activities.
func (s *RedisStore) SeedIfEmpty(ctx context.Context, seed map[string]Activity) error {
	size, err := s.client.HLen(ctx, registryKey).Result()
	if err != nil {
		return fmt.Errorf("check registry size: %w", err)
	}
	if size > 0 {
		return nil
	}

	fields := make(map[string]interface{}, len(seed))
	for name, act := range seed {
		data, err := json.Marshal(act)
		if err != nil {
			return fmt.Errorf("encode activity %q: %w", name, err)
		}
		fields[name] = data
	}
	if err := s.client.HSet(ctx, registryKey, fields).Err(); err != nil {
		return fmt.Errorf("seed registry: %w", err)
	}
	return nil
}

func (s *RedisStore) List(ctx context.Context) (map[string]Activity, error) {
	raw, err := s.client.HGetAll(ctx, registryKey).Result()
	if err != nil {
		return nil, apperrors.NewStoreUnavailableError(err)
	}

	out := make(map[string]Activity, len(raw))
	for name, data := range raw {
		var act Activity
		if err := json.Unmarshal([]byte(data), &act); err != nil {
			return nil, apperrors.NewStoreUnavailableError(fmt.Errorf("decode activity %q: %w", name, err))
		}
		if act.Participants == nil {
			act.Participants = []string{}
		}
		out[name] = act
	}
	return out, nil
}

func (s *RedisStore) Signup(ctx context.Context, activity, email string) error {
	return s.mutate(ctx, activity, func(act *Activity) error {
		if act.HasParticipant(email) {
			return apperrors.NewAlreadySignedUpError(email, activity)
		}
		if s.cfg.EnforceCapacity && len(act.Participants) >= act.MaxParticipants {
			return apperrors.NewActivityFullError(activity, act.MaxParticipants)
		}
		act.Participants = append(act.Participants, email)
		return nil
	})
}

func (s *RedisStore) Unregister(ctx context.Context, activity, email string) error {
	return s.mutate(ctx, activity, func(act *Activity) error {
		for i, p := range act.Participants {
			if p == email {
				act.Participants = append(act.Participants[:i], act.Participants[i+1:]...)
				return nil
			}
		}
		return apperrors.NewNotSignedUpError(email, activity)
	})
}

// mutate runs apply on the named activity inside an optimistic
// transaction and writes the result back.
func (s *RedisStore) mutate(ctx context.Context, activity string, apply func(*Activity) error) error {
	txf := func(tx *redis.Tx) error {
		data, err := tx.HGet(ctx, registryKey, activity).Result()
		if errors.Is(err, redis.Nil) {
			return apperrors.NewActivityNotFoundError(activity)
		}
		if err != nil {
			return apperrors.NewStoreUnavailableError(err)
		}

		var act Activity
		if err := json.Unmarshal([]byte(data), &act); err != nil {
			return apperrors.NewStoreUnavailableError(fmt.Errorf("decode activity %q: %w", activity, err))
		}

		if err := apply(&act); err != nil {
			return err
		}

		updated, err := json.Marshal(act)
		if err != nil {
			return apperrors.NewStoreUnavailableError(err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, registryKey, activity, updated)
			return nil
		})
		return err
	}

	for i := 0; i < maxTxRetries; i++ {
		err := s.client.Watch(ctx, txf, registryKey)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return apperrors.NewStoreUnavailableError(fmt.Errorf("registry mutation for %q lost %d optimistic transactions", activity, maxTxRetries))
}
