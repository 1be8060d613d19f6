package repository

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockGuestRepo(t *testing.T) (*GuestRepository, sqlmock.Sqlmock) {
	t.Helper()
	database, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return NewGuestRepository(database), mock
}

// A guest UPDATE that matches no row is a missing id, not a state
// conflict.
func TestGuestUpdateUnknownID(t *testing.T) {
	repo, mock := newMockGuestRepo(t)

	mock.ExpectExec(`UPDATE guest_users`).
		WithArgs(42, "Ana Reyes", "ana@example.com", "09170000000").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(42, "Ana Reyes", "ana@example.com", "09170000000")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGuestDeactivateUnknownID(t *testing.T) {
	repo, mock := newMockGuestRepo(t)

	mock.ExpectExec(`UPDATE guest_users SET active = FALSE`).
		WithArgs(42).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Deactivate(42), ErrNotFound)
}

func TestGuestUpdate(t *testing.T) {
	repo, mock := newMockGuestRepo(t)

	mock.ExpectExec(`UPDATE guest_users`).
		WithArgs(7, "Ana Reyes", "", "").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Update(7, "Ana Reyes", "", ""))
	assert.NoError(t, mock.ExpectationsWereMet())
}
