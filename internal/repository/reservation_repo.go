package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/lib/pq"

	"villamarea/internal/db"
)

var (
	// ErrNotFound is returned when no reservation matches the lookup.
	ErrNotFound = errors.New("reservation not found")
	// ErrInvalidState is returned when a guarded UPDATE matched no row,
	// meaning the reservation left the expected status concurrently.
	ErrInvalidState = errors.New("reservation is not in the expected state")
)

const reservationColumns = `
	id, code, guest_name, guest_email, guest_phone, booking_type,
	check_in_date, check_out_date, check_in_time, check_out_time, status,
	total_amount, downpayment_amount, remaining_balance,
	downpayment_paid, downpayment_verified, full_payment_paid, full_payment_verified,
	date_locked, locked_until, security_bond, damage_charges,
	overtime_hours, overtime_charges, bond_returned,
	rebooking_requested, rebooking_new_check_in, rebooking_new_check_out, rebooking_approved,
	admin_notes, stripe_session_id, stripe_payment_intent_id,
	actual_check_in, actual_check_out, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanReservation(row rowScanner) (*db.Reservation, error) {
	var res db.Reservation
	err := row.Scan(
		&res.ID, &res.Code, &res.GuestName, &res.GuestEmail, &res.GuestPhone, &res.BookingType,
		&res.CheckInDate, &res.CheckOutDate, &res.CheckInTime, &res.CheckOutTime, &res.Status,
		&res.TotalAmount, &res.DownpaymentAmount, &res.RemainingBalance,
		&res.DownpaymentPaid, &res.DownpaymentVerified, &res.FullPaymentPaid, &res.FullPaymentVerified,
		&res.DateLocked, &res.LockedUntil, &res.SecurityBond, &res.DamageCharges,
		&res.OvertimeHours, &res.OvertimeCharges, &res.BondReturned,
		&res.RebookingRequested, &res.RebookingNewCheckIn, &res.RebookingNewCheckOut, &res.RebookingApproved,
		&res.AdminNotes, &res.StripeSessionID, &res.StripePaymentIntent,
		&res.ActualCheckIn, &res.ActualCheckOut, &res.CreatedAt, &res.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error scanning reservation: %w", err)
	}
	return &res, nil
}

type ReservationRepository struct {
	DB *sql.DB
}

func NewReservationRepository(database *sql.DB) *ReservationRepository {
	return &ReservationRepository{DB: database}
}

func (r *ReservationRepository) Create(res *db.Reservation) error {
	query := `
		INSERT INTO reservations
		(code, guest_name, guest_email, guest_phone, booking_type,
		 check_in_date, check_out_date, check_in_time, status,
		 total_amount, downpayment_amount, remaining_balance, stripe_session_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at, updated_at`
	return r.DB.QueryRow(query,
		res.Code,
		res.GuestName,
		res.GuestEmail,
		res.GuestPhone,
		res.BookingType,
		res.CheckInDate,
		res.CheckOutDate,
		res.CheckInTime,
		res.Status,
		res.TotalAmount,
		res.DownpaymentAmount,
		res.RemainingBalance,
		res.StripeSessionID,
	).Scan(&res.ID, &res.CreatedAt, &res.UpdatedAt)
}

// SetStripeSession attaches the checkout session opened for the
// downpayment to a freshly created reservation.
func (r *ReservationRepository) SetStripeSession(id int, sessionID string) error {
	query := `UPDATE reservations SET stripe_session_id = $2, updated_at = NOW() WHERE id = $1`
	result, err := r.DB.Exec(query, id, sessionID)
	if err != nil {
		return fmt.Errorf("error attaching checkout session: %w", err)
	}
	return requireOneRow(result)
}

func (r *ReservationRepository) GetByID(id int) (*db.Reservation, error) {
	query := `SELECT` + reservationColumns + ` FROM reservations WHERE id = $1`
	return scanReservation(r.DB.QueryRow(query, id))
}

func (r *ReservationRepository) GetByCode(code string) (*db.Reservation, error) {
	query := `SELECT` + reservationColumns + ` FROM reservations WHERE code = $1`
	return scanReservation(r.DB.QueryRow(query, code))
}

// GetByCodeAndEmail is the guest-facing lookup. The email match keeps one
// guest from reading another guest's reservation by guessing codes.
func (r *ReservationRepository) GetByCodeAndEmail(code, email string) (*db.Reservation, error) {
	query := `SELECT` + reservationColumns + ` FROM reservations WHERE code = $1 AND guest_email = $2`
	return scanReservation(r.DB.QueryRow(query, code, email))
}

func (r *ReservationRepository) GetByStripeSessionID(sessionID string) (*db.Reservation, error) {
	query := `SELECT` + reservationColumns + ` FROM reservations WHERE stripe_session_id = $1`
	return scanReservation(r.DB.QueryRow(query, sessionID))
}

func (r *ReservationRepository) List(status, date, guestEmail string) ([]db.Reservation, error) {
	query := `SELECT` + reservationColumns + ` FROM reservations WHERE 1=1`
	args := []interface{}{}
	idx := 1

	if status != "" {
		query += " AND status = $" + strconv.Itoa(idx)
		args = append(args, status)
		idx++
	}
	if date != "" {
		query += " AND check_in_date = $" + strconv.Itoa(idx)
		args = append(args, date)
		idx++
	}
	if guestEmail != "" {
		query += " AND guest_email = $" + strconv.Itoa(idx)
		args = append(args, guestEmail)
		idx++
	}
	query += " ORDER BY check_in_date DESC, id DESC"

	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing reservations: %w", err)
	}
	defer rows.Close()

	var reservations []db.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		reservations = append(reservations, *res)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating reservations: %w", err)
	}
	return reservations, nil
}

// activeStatuses are the statuses that claim a date range.
var activeStatuses = []string{db.StatusPendingConfirmation, db.StatusConfirmed, db.StatusCheckedIn}

// CountActiveOverlap is the non-locking probe used by the public
// availability endpoint. Transactional transitions use LockOverlapping
// instead.
func (r *ReservationRepository) CountActiveOverlap(excludeID int, checkIn, checkOut time.Time) (int, error) {
	query := `
		SELECT COUNT(*) FROM reservations
		WHERE id <> $1
		  AND status = ANY($2)
		  AND (date_locked OR downpayment_verified)
		  AND check_in_date < $4
		  AND check_out_date > $3`
	var count int
	err := r.DB.QueryRow(query, excludeID, pq.Array(activeStatuses), checkIn, checkOut).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error counting overlapping reservations: %w", err)
	}
	return count, nil
}

// GetByIDForUpdate loads a reservation inside tx and row-locks it.
func (r *ReservationRepository) GetByIDForUpdate(tx *sql.Tx, id int) (*db.Reservation, error) {
	query := `SELECT` + reservationColumns + ` FROM reservations WHERE id = $1 FOR UPDATE`
	return scanReservation(tx.QueryRow(query, id))
}

// LockOverlapping row-locks every active reservation overlapping
// [checkIn, checkOut) and returns the ids of those already claiming the
// range (date_locked or downpayment_verified). The FOR UPDATE scan must
// cover all active competitors, not only the claiming ones: a concurrent
// verification of a still-unclaimed row has to block on this lock and
// re-check after commit, otherwise two pending reservations could both be
// confirmed for the same dates. Only claimed rows count as conflicts, so
// an unverified pending never blocks a confirmation outright.
func (r *ReservationRepository) LockOverlapping(tx *sql.Tx, excludeID int, checkIn, checkOut time.Time) ([]int, error) {
	query := `
		SELECT id, (date_locked OR downpayment_verified) AS claimed
		FROM reservations
		WHERE id <> $1
		  AND status = ANY($2)
		  AND check_in_date < $4
		  AND check_out_date > $3
		ORDER BY id
		FOR UPDATE`
	rows, err := tx.Query(query, excludeID, pq.Array(activeStatuses), checkIn, checkOut)
	if err != nil {
		return nil, fmt.Errorf("error locking overlapping reservations: %w", err)
	}
	defer rows.Close()

	var claimed []int
	for rows.Next() {
		var id int
		var isClaimed bool
		if err := rows.Scan(&id, &isClaimed); err != nil {
			return nil, fmt.Errorf("error scanning overlapping reservation: %w", err)
		}
		if isClaimed {
			claimed = append(claimed, id)
		}
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating overlapping reservations: %w", err)
	}
	return claimed, nil
}

// VerifyDownpaymentTx confirms the reservation and locks its dates. The
// status guard keeps a concurrently mutated row from being confirmed twice.
func (r *ReservationRepository) VerifyDownpaymentTx(tx *sql.Tx, id int, lockedUntil time.Time) error {
	query := `
		UPDATE reservations
		SET status = $2, downpayment_paid = TRUE, downpayment_verified = TRUE,
		    date_locked = TRUE, locked_until = $3, updated_at = NOW()
		WHERE id = $1 AND status IN ($4, $5)`
	result, err := tx.Exec(query, id, db.StatusConfirmed, lockedUntil,
		db.StatusPendingPayment, db.StatusPendingConfirmation)
	if err != nil {
		return fmt.Errorf("error verifying downpayment: %w", err)
	}
	return requireOneRow(result)
}

func (r *ReservationRepository) VerifyFullPayment(id int) error {
	query := `
		UPDATE reservations
		SET full_payment_paid = TRUE, full_payment_verified = TRUE,
		    remaining_balance = 0, updated_at = NOW()
		WHERE id = $1 AND status IN ($2, $3)`
	result, err := r.DB.Exec(query, id, db.StatusConfirmed, db.StatusCheckedIn)
	if err != nil {
		return fmt.Errorf("error verifying full payment: %w", err)
	}
	return requireOneRow(result)
}

// MarkDownpaymentPaidBySession records the Stripe downpayment and moves
// the reservation to pending_confirmation. Returns the reservation id.
func (r *ReservationRepository) MarkDownpaymentPaidBySession(sessionID, paymentIntentID string) (int, error) {
	query := `
		UPDATE reservations
		SET status = $2, downpayment_paid = TRUE,
		    stripe_payment_intent_id = NULLIF($3, ''), updated_at = NOW()
		WHERE stripe_session_id = $1 AND status = $4
		RETURNING id`
	var id int
	err := r.DB.QueryRow(query, sessionID, db.StatusPendingConfirmation, paymentIntentID, db.StatusPendingPayment).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("error recording downpayment: %w", err)
	}
	return id, nil
}

// CancelByPaymentIntent cancels the reservation tied to a refunded charge.
func (r *ReservationRepository) CancelByPaymentIntent(paymentIntentID string) (int, error) {
	query := `
		UPDATE reservations
		SET status = $2, date_locked = FALSE, updated_at = NOW()
		WHERE stripe_payment_intent_id = $1
		  AND status NOT IN ($3, $4, $5)
		RETURNING id`
	var id int
	err := r.DB.QueryRow(query, paymentIntentID, db.StatusCanceled,
		db.StatusCompleted, db.StatusCanceled, db.StatusExpired).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("error canceling by payment intent: %w", err)
	}
	return id, nil
}

func (r *ReservationRepository) RequestRebooking(id int, newCheckIn, newCheckOut time.Time) error {
	query := `
		UPDATE reservations
		SET rebooking_requested = TRUE, rebooking_new_check_in = $2,
		    rebooking_new_check_out = $3, rebooking_approved = NULL, updated_at = NOW()
		WHERE id = $1 AND status = $4`
	result, err := r.DB.Exec(query, id, newCheckIn, newCheckOut, db.StatusConfirmed)
	if err != nil {
		return fmt.Errorf("error requesting rebooking: %w", err)
	}
	return requireOneRow(result)
}

// ApplyRebookingTx moves the stay to the approved dates and relocks them.
func (r *ReservationRepository) ApplyRebookingTx(tx *sql.Tx, id int, newCheckIn, newCheckOut, lockedUntil time.Time) error {
	query := `
		UPDATE reservations
		SET check_in_date = $2, check_out_date = $3,
		    date_locked = TRUE, locked_until = $4,
		    rebooking_requested = FALSE, rebooking_approved = $5,
		    rebooking_new_check_in = NULL, rebooking_new_check_out = NULL,
		    updated_at = NOW()
		WHERE id = $1 AND status = $6 AND rebooking_requested`
	result, err := tx.Exec(query, id, newCheckIn, newCheckOut, lockedUntil,
		db.RebookingApproved, db.StatusConfirmed)
	if err != nil {
		return fmt.Errorf("error applying rebooking: %w", err)
	}
	return requireOneRow(result)
}

func (r *ReservationRepository) RejectRebooking(id int) error {
	query := `
		UPDATE reservations
		SET rebooking_requested = FALSE, rebooking_approved = $2, updated_at = NOW()
		WHERE id = $1 AND rebooking_requested`
	result, err := r.DB.Exec(query, id, db.RebookingRejected)
	if err != nil {
		return fmt.Errorf("error rejecting rebooking: %w", err)
	}
	return requireOneRow(result)
}

func (r *ReservationRepository) CheckIn(id, securityBond int, at time.Time) error {
	query := `
		UPDATE reservations
		SET status = $2, security_bond = $3, actual_check_in = $4, updated_at = NOW()
		WHERE id = $1 AND status = $5`
	result, err := r.DB.Exec(query, id, db.StatusCheckedIn, securityBond, at, db.StatusConfirmed)
	if err != nil {
		return fmt.Errorf("error checking in: %w", err)
	}
	return requireOneRow(result)
}

// CheckOutUpdate carries the bill computed at check-out.
type CheckOutUpdate struct {
	OvertimeHours   int
	OvertimeCharges int
	DamageCharges   int
	FinalAmount     int
	BondReturned    int
	At              time.Time
}

func (r *ReservationRepository) CheckOut(id int, u CheckOutUpdate) error {
	query := `
		UPDATE reservations
		SET status = $2, overtime_hours = $3, overtime_charges = $4,
		    damage_charges = $5, total_amount = $6, bond_returned = $7,
		    actual_check_out = $8, date_locked = FALSE, updated_at = NOW()
		WHERE id = $1 AND status = $9`
	result, err := r.DB.Exec(query, id, db.StatusCompleted,
		u.OvertimeHours, u.OvertimeCharges, u.DamageCharges, u.FinalAmount, u.BondReturned,
		u.At, db.StatusCheckedIn)
	if err != nil {
		return fmt.Errorf("error checking out: %w", err)
	}
	return requireOneRow(result)
}

// MarkNoShow forfeits the stay. The downpayment stays on the row, which
// is the forfeiture: nothing is refunded.
func (r *ReservationRepository) MarkNoShow(id int) error {
	query := `
		UPDATE reservations
		SET status = $2, date_locked = FALSE, updated_at = NOW()
		WHERE id = $1 AND status = $3`
	result, err := r.DB.Exec(query, id, db.StatusNoShow, db.StatusConfirmed)
	if err != nil {
		return fmt.Errorf("error marking no-show: %w", err)
	}
	return requireOneRow(result)
}

func (r *ReservationRepository) Cancel(id int) error {
	query := `
		UPDATE reservations
		SET status = $2, date_locked = FALSE, updated_at = NOW()
		WHERE id = $1 AND status NOT IN ($3, $4, $5, $6)`
	result, err := r.DB.Exec(query, id, db.StatusCanceled,
		db.StatusCompleted, db.StatusCanceled, db.StatusExpired, db.StatusNoShow)
	if err != nil {
		return fmt.Errorf("error canceling reservation: %w", err)
	}
	return requireOneRow(result)
}

func (r *ReservationRepository) UpdateGuestInfo(id int, name, email, phone, adminNotes string) error {
	query := `
		UPDATE reservations
		SET guest_name = COALESCE(NULLIF($2, ''), guest_name),
		    guest_email = COALESCE(NULLIF($3, ''), guest_email),
		    guest_phone = COALESCE(NULLIF($4, ''), guest_phone),
		    admin_notes = COALESCE(NULLIF($5, ''), admin_notes),
		    updated_at = NOW()
		WHERE id = $1`
	result, err := r.DB.Exec(query, id, name, email, phone, adminNotes)
	if err != nil {
		return fmt.Errorf("error updating reservation: %w", err)
	}
	return requireOneRow(result)
}

func requireOneRow(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading rows affected: %w", err)
	}
	if affected == 0 {
		return ErrInvalidState
	}
	return nil
}
