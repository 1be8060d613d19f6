package repository

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"villamarea/internal/db"
)

func newMockRepo(t *testing.T) (*ReservationRepository, sqlmock.Sqlmock) {
	t.Helper()
	database, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return NewReservationRepository(database), mock
}

func TestCountActiveOverlap(t *testing.T) {
	repo, mock := newMockRepo(t)

	checkIn := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)
	checkOut := time.Date(2026, 2, 12, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM reservations`).
		WithArgs(0, sqlmock.AnyArg(), checkIn, checkOut).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	count, err := repo.CountActiveOverlap(0, checkIn, checkOut)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// The scan locks every overlapping active row but reports only the ones
// already claiming the range. An unclaimed pending competitor is held by
// the row lock, not treated as a conflict.
func TestLockOverlappingReportsOnlyClaimedRows(t *testing.T) {
	repo, mock := newMockRepo(t)

	checkIn := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)
	checkOut := time.Date(2026, 2, 12, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id, \(date_locked OR downpayment_verified\)`).
		WithArgs(7, sqlmock.AnyArg(), checkIn, checkOut).
		WillReturnRows(sqlmock.NewRows([]string{"id", "claimed"}).
			AddRow(3, true).
			AddRow(5, false).
			AddRow(9, true))
	mock.ExpectRollback()

	tx, err := repo.DB.Begin()
	require.NoError(t, err)
	defer tx.Rollback()

	ids, err := repo.LockOverlapping(tx, 7, checkIn, checkOut)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 9}, ids)
}

func TestLockOverlappingNoCompetitors(t *testing.T) {
	repo, mock := newMockRepo(t)

	checkIn := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)
	checkOut := time.Date(2026, 2, 12, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id, \(date_locked OR downpayment_verified\)`).
		WithArgs(7, sqlmock.AnyArg(), checkIn, checkOut).
		WillReturnRows(sqlmock.NewRows([]string{"id", "claimed"}))
	mock.ExpectRollback()

	tx, err := repo.DB.Begin()
	require.NoError(t, err)
	defer tx.Rollback()

	ids, err := repo.LockOverlapping(tx, 7, checkIn, checkOut)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestVerifyDownpaymentTx(t *testing.T) {
	repo, mock := newMockRepo(t)

	lockedUntil := time.Date(2026, 2, 13, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE reservations`).
		WithArgs(7, db.StatusConfirmed, lockedUntil, db.StatusPendingPayment, db.StatusPendingConfirmation).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := repo.DB.Begin()
	require.NoError(t, err)

	require.NoError(t, repo.VerifyDownpaymentTx(tx, 7, lockedUntil))
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

// A guarded UPDATE that matches no row means the reservation changed
// status between read and write. That must surface as ErrInvalidState,
// not a silent no-op.
func TestVerifyDownpaymentTxWrongState(t *testing.T) {
	repo, mock := newMockRepo(t)

	lockedUntil := time.Date(2026, 2, 13, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE reservations`).
		WithArgs(7, db.StatusConfirmed, lockedUntil, db.StatusPendingPayment, db.StatusPendingConfirmation).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	tx, err := repo.DB.Begin()
	require.NoError(t, err)
	defer tx.Rollback()

	assert.ErrorIs(t, repo.VerifyDownpaymentTx(tx, 7, lockedUntil), ErrInvalidState)
}

func TestMarkDownpaymentPaidBySession(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`UPDATE reservations`).
		WithArgs("cs_test_123", db.StatusPendingConfirmation, "pi_456", db.StatusPendingPayment).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(12))

	id, err := repo.MarkDownpaymentPaidBySession("cs_test_123", "pi_456")
	require.NoError(t, err)
	assert.Equal(t, 12, id)
}

func TestMarkDownpaymentPaidBySessionUnknown(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`UPDATE reservations`).
		WithArgs("cs_unknown", db.StatusPendingConfirmation, "pi_456", db.StatusPendingPayment).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.MarkDownpaymentPaidBySession("cs_unknown", "pi_456")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCheckOutWritesBill(t *testing.T) {
	repo, mock := newMockRepo(t)

	at := time.Date(2026, 1, 2, 8, 30, 0, 0, time.UTC)
	mock.ExpectExec(`UPDATE reservations`).
		WithArgs(4, db.StatusCompleted, 3, 1500, 300, 10500, 1700, at, db.StatusCheckedIn).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.CheckOut(4, CheckOutUpdate{
		OvertimeHours:   3,
		OvertimeCharges: 1500,
		DamageCharges:   300,
		FinalAmount:     10500,
		BondReturned:    1700,
		At:              at,
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkNoShowRequiresConfirmed(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`UPDATE reservations`).
		WithArgs(4, db.StatusNoShow, db.StatusConfirmed).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.MarkNoShow(4), ErrInvalidState)
}
