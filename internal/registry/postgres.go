// internal/registry/postgres.go
package registry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	apperrors "activities-api/internal/common/errors"
)

// PostgresStore persists the registry in two tables: activities and
// activity_participants. Participant order is the insertion order of the
// serial id column. Mutations lock the activity row so concurrent
// signups can't produce duplicates or phantom removals.
type PostgresStore struct {
	db  *sql.DB
	cfg Config
}

func NewPostgresStore(db *sql.DB, cfg Config) *PostgresStore {
	return &PostgresStore{db: db, cfg: cfg}
}

// EnsureSchema creates the registry tables if they don't exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS activities (
			name TEXT PRIMARY KEY,
			description TEXT NOT NULL,
			schedule TEXT NOT NULL,
			max_participants INT NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("create activities table: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS activity_participants (
			id BIGSERIAL PRIMARY KEY,
			activity_name TEXT NOT NULL REFERENCES activities(name) ON DELETE CASCADE,
			email TEXT NOT NULL,
			UNIQUE (activity_name, email)
		)`)
	if err != nil {
		return fmt.Errorf("create activity_participants table: %w", err)
	}
	return nil
}

// SeedIfEmpty inserts the seed set when the activities table is empty.
// Restarts keep accumulated signups.
func (s *PostgresStore) SeedIfEmpty(ctx context.Context, seed map[string]Activity) error {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM activities`).Scan(&count); err != nil {
		return fmt.Errorf("count activities: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed tx: %w", err)
	}
	defer tx.Rollback()

	for name, act := range seed {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO activities (name, description, schedule, max_participants)
			VALUES ($1, $2, $3, $4)`,
			name, act.Description, act.Schedule, act.MaxParticipants,
		); err != nil {
			return fmt.Errorf("seed activity %q: %w", name, err)
		}
		for _, email := range act.Participants {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO activity_participants (activity_name, email)
				VALUES ($1, $2)`,
				name, email,
			); err != nil {
				return fmt.Errorf("seed participant %q for %q: %w", email, name, err)
			}
		}
	}

	return tx.Commit()
}

func (s *PostgresStore) List(ctx context.Context) (map[string]Activity, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, description, schedule, max_participants FROM activities`)
	if err != nil {
		return nil, apperrors.NewStoreUnavailableError(err)
	}
	defer rows.Close()

	out := make(map[string]Activity)
	for rows.Next() {
		var name string
		var act Activity
		if err := rows.Scan(&name, &act.Description, &act.Schedule, &act.MaxParticipants); err != nil {
			return nil, apperrors.NewStoreUnavailableError(err)
		}
		act.Participants = []string{}
		out[name] = act
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStoreUnavailableError(err)
	}

	prows, err := s.db.QueryContext(ctx, `
		SELECT activity_name, email FROM activity_participants ORDER BY id`)
	if err != nil {
		return nil, apperrors.NewStoreUnavailableError(err)
	}
	defer prows.Close()

	for prows.Next() {
		var name, email string
		if err := prows.Scan(&name, &email); err != nil {
			return nil, apperrors.NewStoreUnavailableError(err)
		}
		if act, exists := out[name]; exists {
			act.Participants = append(act.Participants, email)
			out[name] = act
		}
	}
	if err := prows.Err(); err != nil {
		return nil, apperrors.NewStoreUnavailableError(err)
	}

	return out, nil
}

func (s *PostgresStore) Signup(ctx context.Context, activity, email string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.NewStoreUnavailableError(err)
	}
	defer tx.Rollback()

	var maxParticipants int
	err = tx.QueryRowContext(ctx, `
		SELECT max_participants FROM activities WHERE name = $1 FOR UPDATE`,
		activity).Scan(&maxParticipants)
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.NewActivityNotFoundError(activity)
	}
	if err != nil {
		return apperrors.NewStoreUnavailableError(err)
	}

	var signedUp bool
	err = tx.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM activity_participants
			WHERE activity_name = $1 AND email = $2
		)`, activity, email).Scan(&signedUp)
	if err != nil {
		return apperrors.NewStoreUnavailableError(err)
	}
	if signedUp {
		return apperrors.NewAlreadySignedUpError(email, activity)
	}

	if s.cfg.EnforceCapacity {
		var count int
		err = tx.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM activity_participants WHERE activity_name = $1`,
			activity).Scan(&count)
		if err != nil {
			return apperrors.NewStoreUnavailableError(err)
		}
		if count >= maxParticipants {
			return apperrors.NewActivityFullError(activity, maxParticipants)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO activity_participants (activity_name, email)
		VALUES ($1, $2)`, activity, email); err != nil {
		return apperrors.NewStoreUnavailableError(err)
	}

	if err := tx.Commit(); err != nil {
		return apperrors.NewStoreUnavailableError(err)
	}
	return nil
}

func (s *PostgresStore) Unregister(ctx context.Context, activity, email string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.NewStoreUnavailableError(err)
	}
	defer tx.Rollback()

	var exists bool
	err = tx.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM activities WHERE name = $1)`,
		activity).Scan(&exists)
	if err != nil {
		return apperrors.NewStoreUnavailableError(err)
	}
	if !exists {
		return apperrors.NewActivityNotFoundError(activity)
	}

	result, err := tx.ExecContext(ctx, `
		DELETE FROM activity_participants
		WHERE activity_name = $1 AND email = $2`, activity, email)
	if err != nil {
		return apperrors.NewStoreUnavailableError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewStoreUnavailableError(err)
	}
	if affected == 0 {
		return apperrors.NewNotSignedUpError(email, activity)
	}

	if err := tx.Commit(); err != nil {
		return apperrors.NewStoreUnavailableError(err)
	}
	return nil
}
