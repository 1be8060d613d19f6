package repository

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"villamarea/internal/db"
)

func newMockJobRepo(t *testing.T) (*JobRepository, sqlmock.Sqlmock) {
	t.Helper()
	database, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return NewJobRepository(database, NewEventRepository(database)), mock
}

func TestGetExpirablePendingIDs(t *testing.T) {
	repo, mock := newMockJobRepo(t)

	cutoff := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT id FROM reservations`).
		WithArgs(db.StatusPendingPayment, cutoff).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1).AddRow(8))

	ids, err := repo.GetExpirablePendingIDs(cutoff)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 8}, ids)
}

// The status UPDATE and its audit event commit together; a row that left
// the expected status between SELECT and UPDATE rolls both back.
func TestExpireOneCommitsUpdateAndEvent(t *testing.T) {
	repo, mock := newMockJobRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE reservations`).
		WithArgs(8, db.StatusExpired, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO reservation_events`).
		WithArgs(8, "system", "reservation_expired", nil).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.ExpireOne(8))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExpireOneRowAlreadyMoved(t *testing.T) {
	repo, mock := newMockJobRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE reservations`).
		WithArgs(8, db.StatusExpired, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	assert.ErrorIs(t, repo.ExpireOne(8), ErrInvalidState)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExpireOneEventFailureRollsBack(t *testing.T) {
	repo, mock := newMockJobRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE reservations`).
		WithArgs(8, db.StatusExpired, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO reservation_events`).
		WithArgs(8, "system", "reservation_expired", nil).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	assert.Error(t, repo.ExpireOne(8))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkCheckedOutOne(t *testing.T) {
	repo, mock := newMockJobRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE reservations`).
		WithArgs(3, db.StatusCheckedOut, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO reservation_events`).
		WithArgs(3, "system", "reservation_auto_checked_out", nil).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.MarkCheckedOutOne(3))
}
