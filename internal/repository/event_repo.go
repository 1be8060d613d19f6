package repository

import (
	"database/sql"
	"fmt"

	"villamarea/internal/db"
)

// EventRepository writes and reads the append-only reservation audit
// trail. Events are never updated or deleted.
type EventRepository struct {
	DB *sql.DB
}

func NewEventRepository(database *sql.DB) *EventRepository {
	return &EventRepository{DB: database}
}

type sqlExecutor interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
}

func (r *EventRepository) insert(ex sqlExecutor, reservationID int, actor, action string, detail []byte) error {
	query := `
		INSERT INTO reservation_events (reservation_id, actor, action, detail, occurred_at)
		VALUES ($1, $2, $3, $4, NOW())`
	var detailArg interface{}
	if len(detail) > 0 {
		detailArg = detail
	}
	if _, err := ex.Exec(query, reservationID, actor, action, detailArg); err != nil {
		return fmt.Errorf("error inserting reservation event: %w", err)
	}
	return nil
}

func (r *EventRepository) Insert(reservationID int, actor, action string, detail []byte) error {
	return r.insert(r.DB, reservationID, actor, action, detail)
}

// InsertTx writes the event in the same transaction as the transition it
// records, so a rolled-back transition leaves no audit row.
func (r *EventRepository) InsertTx(tx *sql.Tx, reservationID int, actor, action string, detail []byte) error {
	return r.insert(tx, reservationID, actor, action, detail)
}

func (r *EventRepository) ListByReservation(reservationID int) ([]db.ReservationEvent, error) {
	query := `
		SELECT id, reservation_id, actor, action, detail, occurred_at
		FROM reservation_events
		WHERE reservation_id = $1
		ORDER BY occurred_at, id`
	rows, err := r.DB.Query(query, reservationID)
	if err != nil {
		return nil, fmt.Errorf("error listing reservation events: %w", err)
	}
	defer rows.Close()

	var events []db.ReservationEvent
	for rows.Next() {
		var ev db.ReservationEvent
		var detail sql.NullString
		if err := rows.Scan(&ev.ID, &ev.ReservationID, &ev.Actor, &ev.Action, &detail, &ev.OccurredAt); err != nil {
			return nil, fmt.Errorf("error scanning reservation event: %w", err)
		}
		if detail.Valid {
			ev.Detail = []byte(detail.String)
		}
		events = append(events, ev)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating reservation events: %w", err)
	}
	return events, nil
}
