// internal/registry/postgres_test.go
package registry

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	apperrors "activities-api/internal/common/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

// ==========================
// List Tests
// ==========================

func TestPostgresStore_List(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectQuery(`SELECT name, description, schedule, max_participants FROM activities`).
		WillReturnRows(sqlmock.NewRows([]string{"name", "description", "schedule", "max_participants"}).
			AddRow("Chess Club", "Learn chess", "Fridays, 3:30 PM - 5:00 PM", 12).
			AddRow("Drama Club", "Put on plays", "Mondays, 4:00 PM - 5:30 PM", 20))

	mock.ExpectQuery(`SELECT activity_name, email FROM activity_participants ORDER BY id`).
		WillReturnRows(sqlmock.NewRows([]string{"activity_name", "email"}).
			AddRow("Chess Club", "michael@mergington.edu").
			AddRow("Chess Club", "daniel@mergington.edu"))

	store := NewPostgresStore(db, Config{})
	activities, err := store.List(context.Background())
	require.NoError(t, err)

	assert.Len(t, activities, 2)
	assert.Equal(t, []string{"michael@mergington.edu", "daniel@mergington.edu"},
		activities["Chess Club"].Participants)
	assert.Equal(t, []string{}, activities["Drama Club"].Participants,
		"activity without participants gets an empty list, not null")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_List_QueryError(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectQuery(`SELECT name, description, schedule, max_participants FROM activities`).
		WillReturnError(errors.New("connection refused"))

	store := NewPostgresStore(db, Config{})
	_, err := store.List(context.Background())
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeStoreUnavailable))

	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// Signup Tests
// ==========================

func TestPostgresStore_Signup_Success(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT max_participants FROM activities WHERE name = \$1 FOR UPDATE`).
		WithArgs("Chess Club").
		WillReturnRows(sqlmock.NewRows([]string{"max_participants"}).AddRow(12))
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("Chess Club", "test.student@mergington.edu").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(`INSERT INTO activity_participants`).
		WithArgs("Chess Club", "test.student@mergington.edu").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	store := NewPostgresStore(db, Config{})
	err := store.Signup(context.Background(), "Chess Club", "test.student@mergington.edu")
	assert.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Signup_ActivityNotFound(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT max_participants FROM activities WHERE name = \$1 FOR UPDATE`).
		WithArgs("Nonexistent Activity").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	store := NewPostgresStore(db, Config{})
	err := store.Signup(context.Background(), "Nonexistent Activity", "test@mergington.edu")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeActivityNotFound))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Signup_Duplicate(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT max_participants FROM activities WHERE name = \$1 FOR UPDATE`).
		WithArgs("Chess Club").
		WillReturnRows(sqlmock.NewRows([]string{"max_participants"}).AddRow(12))
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("Chess Club", "michael@mergington.edu").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectRollback()

	store := NewPostgresStore(db, Config{})
	err := store.Signup(context.Background(), "Chess Club", "michael@mergington.edu")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeAlreadySignedUp))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Signup_CapacityEnforced(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT max_participants FROM activities WHERE name = \$1 FOR UPDATE`).
		WithArgs("Tiny Club").
		WillReturnRows(sqlmock.NewRows([]string{"max_participants"}).AddRow(1))
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("Tiny Club", "second@mergington.edu").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM activity_participants WHERE activity_name = \$1`).
		WithArgs("Tiny Club").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	store := NewPostgresStore(db, Config{EnforceCapacity: true})
	err := store.Signup(context.Background(), "Tiny Club", "second@mergington.edu")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeActivityFull))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Signup_InsertError(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT max_participants FROM activities WHERE name = \$1 FOR UPDATE`).
		WithArgs("Chess Club").
		WillReturnRows(sqlmock.NewRows([]string{"max_participants"}).AddRow(12))
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("Chess Club", "test@mergington.edu").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(`INSERT INTO activity_participants`).
		WithArgs("Chess Club", "test@mergington.edu").
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	store := NewPostgresStore(db, Config{})
	err := store.Signup(context.Background(), "Chess Club", "test@mergington.edu")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeStoreUnavailable))

	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// Unregister Tests
// ==========================

func TestPostgresStore_Unregister_Success(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM activities WHERE name = \$1\)`).
		WithArgs("Programming Class").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectExec(`DELETE FROM activity_participants`).
		WithArgs("Programming Class", "temp.student@mergington.edu").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	store := NewPostgresStore(db, Config{})
	err := store.Unregister(context.Background(), "Programming Class", "temp.student@mergington.edu")
	assert.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Unregister_NotSignedUp(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM activities WHERE name = \$1\)`).
		WithArgs("Tennis Club").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectExec(`DELETE FROM activity_participants`).
		WithArgs("Tennis Club", "not.signed.up@mergington.edu").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	store := NewPostgresStore(db, Config{})
	err := store.Unregister(context.Background(), "Tennis Club", "not.signed.up@mergington.edu")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeNotSignedUp))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Unregister_ActivityNotFound(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM activities WHERE name = \$1\)`).
		WithArgs("Nonexistent Activity").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectRollback()

	store := NewPostgresStore(db, Config{})
	err := store.Unregister(context.Background(), "Nonexistent Activity", "test@mergington.edu")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeActivityNotFound))

	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// Seeding Tests
// ==========================

func TestPostgresStore_SeedIfEmpty_SkipsWhenPopulated(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM activities`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(9))

	store := NewPostgresStore(db, Config{})
	err := store.SeedIfEmpty(context.Background(), DefaultSeed())
	assert.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SeedIfEmpty_InsertsSeed(t *testing.T) {
	db, mock := setupMockDB(t)

	seed := map[string]Activity{
		"Chess Club": {
			Description:     "Learn chess",
			Schedule:        "Fridays, 3:30 PM - 5:00 PM",
			MaxParticipants: 12,
			Participants:    []string{"michael@mergington.edu"},
		},
	}

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM activities`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO activities`).
		WithArgs("Chess Club", "Learn chess", "Fridays, 3:30 PM - 5:00 PM", 12).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO activity_participants`).
		WithArgs("Chess Club", "michael@mergington.edu").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	store := NewPostgresStore(db, Config{})
	err := store.SeedIfEmpty(context.Background(), seed)
	assert.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}
