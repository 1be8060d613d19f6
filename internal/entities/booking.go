package entities

// BookingRequest is the public booking payload. Dates are "2006-01-02",
// times "15:04".
type BookingRequest struct {
	GuestName    string `json:"guest_name" validate:"required"`
	GuestEmail   string `json:"guest_email" validate:"required,email"`
	GuestPhone   string `json:"guest_phone" validate:"required"`
	BookingType  string `json:"booking_type" validate:"required,oneof=daytime nighttime 22hours"`
	CheckInDate  string `json:"check_in_date" validate:"required,datetime=2006-01-02"`
	CheckOutDate string `json:"check_out_date" validate:"required,datetime=2006-01-02"`
	CheckInTime  string `json:"check_in_time" validate:"omitempty,datetime=15:04"`
}

// BookingResponse returns the reservation code plus the Stripe checkout
// session for the downpayment.
type BookingResponse struct {
	Code              string `json:"code"`
	Status            string `json:"status"`
	TotalAmount       int    `json:"total_amount"`
	DownpaymentAmount int    `json:"downpayment_amount"`
	RemainingBalance  int    `json:"remaining_balance"`
	CheckoutURL       string `json:"checkout_url,omitempty"`
	SessionID         string `json:"session_id,omitempty"`
}

type AvailabilityRequest struct {
	CheckInDate  string `json:"check_in_date" validate:"required,datetime=2006-01-02"`
	CheckOutDate string `json:"check_out_date" validate:"required,datetime=2006-01-02"`
}

type AvailabilityResponse struct {
	Available    bool   `json:"available"`
	CheckInDate  string `json:"check_in_date"`
	CheckOutDate string `json:"check_out_date"`
	Message      string `json:"message,omitempty"`
}

type RebookingRequest struct {
	GuestEmail      string `json:"guest_email" validate:"required,email"`
	NewCheckInDate  string `json:"new_check_in_date" validate:"required,datetime=2006-01-02"`
	NewCheckOutDate string `json:"new_check_out_date" validate:"required,datetime=2006-01-02"`
}
