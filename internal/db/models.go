package db

import (
	"database/sql"
	"encoding/json"
	"time"
)

// Reservation lifecycle statuses.
const (
	StatusPendingPayment      = "pending_payment"
	StatusPendingConfirmation = "pending_confirmation"
	StatusConfirmed           = "confirmed"
	StatusCheckedIn           = "checked_in"
	StatusCheckedOut          = "checked_out"
	StatusCompleted           = "completed"
	StatusCanceled            = "canceled"
	StatusExpired             = "expired"
	StatusNoShow              = "no_show"
)

// Booking types.
const (
	BookingDaytime     = "daytime"
	BookingNighttime   = "nighttime"
	BookingTwentyTwoHr = "22hours"
)

// Rebooking decision values stored in rebooking_approved.
const (
	RebookingApproved = 1
	RebookingRejected = -1
)

type Reservation struct {
	ID                   int
	Code                 string
	GuestName            string
	GuestEmail           string
	GuestPhone           string
	BookingType          string
	CheckInDate          time.Time
	CheckOutDate         time.Time
	CheckInTime          string
	CheckOutTime         sql.NullString
	Status               string
	TotalAmount          int
	DownpaymentAmount    int
	RemainingBalance     int
	DownpaymentPaid      bool
	DownpaymentVerified  bool
	FullPaymentPaid      bool
	FullPaymentVerified  bool
	DateLocked           bool
	LockedUntil          sql.NullTime
	SecurityBond         int
	DamageCharges        int
	OvertimeHours        int
	OvertimeCharges      int
	BondReturned         int
	RebookingRequested   bool
	RebookingNewCheckIn  sql.NullTime
	RebookingNewCheckOut sql.NullTime
	RebookingApproved    sql.NullInt16
	AdminNotes           sql.NullString
	StripeSessionID      sql.NullString
	StripePaymentIntent  sql.NullString
	ActualCheckIn        sql.NullTime
	ActualCheckOut       sql.NullTime
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// Active reports whether the reservation currently claims its dates.
func (r *Reservation) Active() bool {
	switch r.Status {
	case StatusPendingConfirmation, StatusConfirmed, StatusCheckedIn:
		return true
	}
	return false
}

type StaffAccount struct {
	ID           int
	Name         string
	Email        string
	PasswordHash string
	Role         string // admin or staff
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type GuestUser struct {
	ID        int
	Name      string
	Email     string
	Phone     string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Room struct {
	ID       int
	Name     string
	Capacity int
	Active   bool
}

// ReservationEvent is one row of the append-only audit trail.
type ReservationEvent struct {
	ID            int
	ReservationID int
	Actor         string
	Action        string
	Detail        json.RawMessage
	OccurredAt    time.Time
}
