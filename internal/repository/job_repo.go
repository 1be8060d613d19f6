package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"villamarea/internal/db"
)

// systemActor is recorded on audit events written by the cron jobs.
const systemActor = "system"

// JobRepository holds the batch queries behind the cron jobs. Each row is
// mutated in its own transaction so one bad row cannot roll back the rest
// of the batch.
type JobRepository struct {
	DB     *sql.DB
	Events *EventRepository
}

func NewJobRepository(database *sql.DB, events *EventRepository) *JobRepository {
	return &JobRepository{DB: database, Events: events}
}

// GetExpirablePendingIDs returns pending_payment reservations with no
// downpayment whose creation cutoff or date lock has passed.
func (r *JobRepository) GetExpirablePendingIDs(createdBefore time.Time) ([]int, error) {
	query := `
		SELECT id FROM reservations
		WHERE status = $1
		  AND NOT downpayment_paid
		  AND (created_at < $2 OR (locked_until IS NOT NULL AND locked_until < NOW()))
		ORDER BY id`
	return r.queryIDs(query, db.StatusPendingPayment, createdBefore)
}

// ExpireOne expires a single reservation and unlocks its dates.
func (r *JobRepository) ExpireOne(id int) error {
	return r.transitionOne(id, db.StatusExpired, "reservation_expired",
		[]string{db.StatusPendingPayment})
}

// GetCompletableConfirmedIDs returns confirmed, fully paid reservations
// whose check-in date has passed.
func (r *JobRepository) GetCompletableConfirmedIDs() ([]int, error) {
	query := `
		SELECT id FROM reservations
		WHERE status = $1
		  AND full_payment_paid
		  AND check_in_date < CURRENT_DATE
		ORDER BY id`
	return r.queryIDs(query, db.StatusConfirmed)
}

// CompleteOne completes a single reservation and unlocks its dates.
func (r *JobRepository) CompleteOne(id int) error {
	return r.transitionOne(id, db.StatusCompleted, "reservation_auto_completed",
		[]string{db.StatusConfirmed})
}

// GetOverdueCheckedInIDs returns checked_in reservations whose check-out
// date has passed without a manual check-out.
func (r *JobRepository) GetOverdueCheckedInIDs() ([]int, error) {
	query := `
		SELECT id FROM reservations
		WHERE status = $1
		  AND check_out_date < CURRENT_DATE
		ORDER BY id`
	return r.queryIDs(query, db.StatusCheckedIn)
}

// MarkCheckedOutOne moves an overdue stay to checked_out.
func (r *JobRepository) MarkCheckedOutOne(id int) error {
	return r.transitionOne(id, db.StatusCheckedOut, "reservation_auto_checked_out",
		[]string{db.StatusCheckedIn})
}

func (r *JobRepository) queryIDs(query string, args ...interface{}) ([]int, error) {
	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying reservation ids: %w", err)
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning reservation id: %w", err)
		}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating reservation ids: %w", err)
	}
	return ids, nil
}

// transitionOne updates the status and clears the date lock in one
// transaction together with the audit event. The fromStatuses guard keeps
// a row that changed between the batch SELECT and this UPDATE untouched.
func (r *JobRepository) transitionOne(id int, toStatus, action string, fromStatuses []string) error {
	tx, err := r.DB.Begin()
	if err != nil {
		return fmt.Errorf("error beginning transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE reservations
		SET status = $2, date_locked = FALSE, updated_at = NOW()
		WHERE id = $1 AND status = ANY($3)`
	result, err := tx.Exec(query, id, toStatus, pq.Array(fromStatuses))
	if err != nil {
		return fmt.Errorf("error updating reservation %d: %w", id, err)
	}
	if err := requireOneRow(result); err != nil {
		return err
	}
	if err := r.Events.InsertTx(tx, id, systemActor, action, nil); err != nil {
		return err
	}
	return tx.Commit()
}
