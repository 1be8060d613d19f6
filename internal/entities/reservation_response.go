package entities

import (
	"encoding/json"
	"time"

	"villamarea/internal/db"
)

const dateLayout = "2006-01-02"

type ReservationResponse struct {
	ID                   int       `json:"id"`
	Code                 string    `json:"code"`
	GuestName            string    `json:"guest_name"`
	GuestEmail           string    `json:"guest_email"`
	GuestPhone           string    `json:"guest_phone"`
	BookingType          string    `json:"booking_type"`
	CheckInDate          string    `json:"check_in_date"`
	CheckOutDate         string    `json:"check_out_date"`
	CheckInTime          string    `json:"check_in_time,omitempty"`
	Status               string    `json:"status"`
	TotalAmount          int       `json:"total_amount"`
	DownpaymentAmount    int       `json:"downpayment_amount"`
	RemainingBalance     int       `json:"remaining_balance"`
	DownpaymentPaid      bool      `json:"downpayment_paid"`
	DownpaymentVerified  bool      `json:"downpayment_verified"`
	FullPaymentPaid      bool      `json:"full_payment_paid"`
	FullPaymentVerified  bool      `json:"full_payment_verified"`
	DateLocked           bool      `json:"date_locked"`
	LockedUntil          string    `json:"locked_until,omitempty"`
	SecurityBond         int       `json:"security_bond"`
	DamageCharges        int       `json:"damage_charges"`
	OvertimeHours        int       `json:"overtime_hours"`
	OvertimeCharges      int       `json:"overtime_charges"`
	BondReturned         int       `json:"bond_returned"`
	RebookingRequested   bool      `json:"rebooking_requested"`
	RebookingNewCheckIn  string    `json:"rebooking_new_check_in,omitempty"`
	RebookingNewCheckOut string    `json:"rebooking_new_check_out,omitempty"`
	RebookingApproved    *int      `json:"rebooking_approved"`
	AdminNotes           string    `json:"admin_notes,omitempty"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// FromReservation shapes a database row into the JSON surface.
func FromReservation(r *db.Reservation) ReservationResponse {
	resp := ReservationResponse{
		ID:                  r.ID,
		Code:                r.Code,
		GuestName:           r.GuestName,
		GuestEmail:          r.GuestEmail,
		GuestPhone:          r.GuestPhone,
		BookingType:         r.BookingType,
		CheckInDate:         r.CheckInDate.Format(dateLayout),
		CheckOutDate:        r.CheckOutDate.Format(dateLayout),
		CheckInTime:         r.CheckInTime,
		Status:              r.Status,
		TotalAmount:         r.TotalAmount,
		DownpaymentAmount:   r.DownpaymentAmount,
		RemainingBalance:    r.RemainingBalance,
		DownpaymentPaid:     r.DownpaymentPaid,
		DownpaymentVerified: r.DownpaymentVerified,
		FullPaymentPaid:     r.FullPaymentPaid,
		FullPaymentVerified: r.FullPaymentVerified,
		DateLocked:          r.DateLocked,
		SecurityBond:        r.SecurityBond,
		DamageCharges:       r.DamageCharges,
		OvertimeHours:       r.OvertimeHours,
		OvertimeCharges:     r.OvertimeCharges,
		BondReturned:        r.BondReturned,
		RebookingRequested:  r.RebookingRequested,
		CreatedAt:           r.CreatedAt,
		UpdatedAt:           r.UpdatedAt,
	}
	if r.LockedUntil.Valid {
		resp.LockedUntil = r.LockedUntil.Time.Format(dateLayout)
	}
	if r.RebookingNewCheckIn.Valid {
		resp.RebookingNewCheckIn = r.RebookingNewCheckIn.Time.Format(dateLayout)
	}
	if r.RebookingNewCheckOut.Valid {
		resp.RebookingNewCheckOut = r.RebookingNewCheckOut.Time.Format(dateLayout)
	}
	if r.RebookingApproved.Valid {
		v := int(r.RebookingApproved.Int16)
		resp.RebookingApproved = &v
	}
	if r.AdminNotes.Valid {
		resp.AdminNotes = r.AdminNotes.String
	}
	return resp
}

type ReservationsList struct {
	Total        int                   `json:"total"`
	Reservations []ReservationResponse `json:"reservations"`
}

type ReservationEventResponse struct {
	ID         int             `json:"id"`
	Actor      string          `json:"actor"`
	Action     string          `json:"action"`
	Detail     json.RawMessage `json:"detail,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// CheckOutResult is the bill computed at check-out time.
type CheckOutResult struct {
	Code             string `json:"code"`
	ExpectedCheckOut string `json:"expected_check_out"`
	ActualCheckOut   string `json:"actual_check_out"`
	OvertimeHours    int    `json:"overtime_hours"`
	OvertimeCharges  int    `json:"overtime_charges"`
	DamageCharges    int    `json:"damage_charges"`
	FinalAmount      int    `json:"final_amount"`
	BondReturned     int    `json:"bond_returned"`
}
