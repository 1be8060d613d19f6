package entities

import (
	"time"

	"villamarea/internal/db"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token string `json:"token"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type StaffRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"omitempty,min=8"`
	Role     string `json:"role" validate:"required,oneof=admin staff"`
	Active   *bool  `json:"active"`
}

type StaffResponse struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

func FromStaffAccount(a *db.StaffAccount) StaffResponse {
	return StaffResponse{
		ID:        a.ID,
		Name:      a.Name,
		Email:     a.Email,
		Role:      a.Role,
		Active:    a.Active,
		CreatedAt: a.CreatedAt,
	}
}

type GuestUserRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone" validate:"required"`
}

type GuestUserResponse struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

func FromGuestUser(g *db.GuestUser) GuestUserResponse {
	return GuestUserResponse{
		ID:        g.ID,
		Name:      g.Name,
		Email:     g.Email,
		Phone:     g.Phone,
		Active:    g.Active,
		CreatedAt: g.CreatedAt,
	}
}

type RoomRequest struct {
	Name     string `json:"name" validate:"required"`
	Capacity int    `json:"capacity" validate:"required,gt=0"`
	Active   *bool  `json:"active"`
}

type RoomResponse struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
	Active   bool   `json:"active"`
}

// Admin-side reservation operations.

type VerifyPaymentRequest struct {
	PaymentType string `json:"payment_type" validate:"required,oneof=downpayment full"`
}

type CheckInRequest struct {
	SecurityBond int `json:"security_bond" validate:"gte=0"`
}

type CheckOutRequest struct {
	DamageCharges int    `json:"damage_charges" validate:"gte=0"`
	Notes         string `json:"notes"`
}

type CancelRequest struct {
	Refund bool   `json:"refund"`
	Reason string `json:"reason"`
}

type AdminReservationUpdate struct {
	GuestName  string `json:"guest_name" validate:"omitempty"`
	GuestEmail string `json:"guest_email" validate:"omitempty,email"`
	GuestPhone string `json:"guest_phone"`
	AdminNotes string `json:"admin_notes"`
}
