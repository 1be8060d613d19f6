package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"villamarea/internal/entities"
	"villamarea/internal/service"
)

// GuestReservationHandler serves the public booking surface.
type GuestReservationHandler struct {
	Service *service.ReservationService
}

func NewGuestReservationHandler(svc *service.ReservationService) *GuestReservationHandler {
	return &GuestReservationHandler{Service: svc}
}

func (h *GuestReservationHandler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	var req entities.AvailabilityRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	resp, err := h.Service.CheckAvailability(&req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *GuestReservationHandler) CreateReservation(w http.ResponseWriter, r *http.Request) {
	var req entities.BookingRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	resp, err := h.Service.CreateBooking(&req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"success":     true,
		"message":     "Reservation created, downpayment pending",
		"reservation": resp,
	})
}

// GetReservation looks a reservation up by code. The guest must supply
// the email the booking was made with.
func (h *GuestReservationHandler) GetReservation(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	email := r.URL.Query().Get("email")
	if email == "" {
		respondError(w, http.StatusBadRequest, "email query parameter is required")
		return
	}
	res, err := h.Service.GetByCodeAndEmail(code, email)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, entities.FromReservation(res))
}

func (h *GuestReservationHandler) RequestRebooking(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	var req entities.RebookingRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if err := h.Service.RequestRebooking(code, &req); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Rebooking requested, awaiting approval",
	})
}
