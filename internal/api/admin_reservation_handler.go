package api

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"villamarea/internal/auth"
	"villamarea/internal/entities"
	"villamarea/internal/service"
)

type AdminReservationHandler struct {
	Service *service.ReservationService
}

func NewAdminReservationHandler(svc *service.ReservationService) *AdminReservationHandler {
	return &AdminReservationHandler{Service: svc}
}

func reservationID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid ID")
		return 0, false
	}
	return id, true
}

func principal(w http.ResponseWriter, r *http.Request) (auth.Principal, bool) {
	p, ok := auth.FromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
	}
	return p, ok
}

func (h *AdminReservationHandler) List(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	date := r.URL.Query().Get("date")
	guestEmail := r.URL.Query().Get("guest_email")

	reservations, err := h.Service.List(status, date, guestEmail)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	out := make([]entities.ReservationResponse, 0, len(reservations))
	for i := range reservations {
		out = append(out, entities.FromReservation(&reservations[i]))
	}
	respondJSON(w, http.StatusOK, entities.ReservationsList{Total: len(out), Reservations: out})
}

func (h *AdminReservationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := reservationID(w, r)
	if !ok {
		return
	}
	res, err := h.Service.GetByID(id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, entities.FromReservation(res))
}

func (h *AdminReservationHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := reservationID(w, r)
	if !ok {
		return
	}
	p, ok := principal(w, r)
	if !ok {
		return
	}
	var req entities.AdminReservationUpdate
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if err := h.Service.UpdateGuestInfo(id, &req, p); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "Reservation updated"})
}

func (h *AdminReservationHandler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := reservationID(w, r)
	if !ok {
		return
	}
	p, ok := principal(w, r)
	if !ok {
		return
	}
	var req entities.VerifyPaymentRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	res, err := h.Service.VerifyPayment(id, req.PaymentType, p)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"message":     "Payment verified",
		"reservation": entities.FromReservation(res),
	})
}

func (h *AdminReservationHandler) ApproveRebooking(w http.ResponseWriter, r *http.Request) {
	id, ok := reservationID(w, r)
	if !ok {
		return
	}
	p, ok := principal(w, r)
	if !ok {
		return
	}
	res, err := h.Service.ApproveRebooking(id, p)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"message":     "Rebooking approved",
		"reservation": entities.FromReservation(res),
	})
}

func (h *AdminReservationHandler) RejectRebooking(w http.ResponseWriter, r *http.Request) {
	id, ok := reservationID(w, r)
	if !ok {
		return
	}
	p, ok := principal(w, r)
	if !ok {
		return
	}
	if err := h.Service.RejectRebooking(id, p); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "Rebooking rejected"})
}

func (h *AdminReservationHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	id, ok := reservationID(w, r)
	if !ok {
		return
	}
	p, ok := principal(w, r)
	if !ok {
		return
	}
	var req entities.CheckInRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if err := h.Service.CheckIn(id, req.SecurityBond, p); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "Guest checked in"})
}

func (h *AdminReservationHandler) CheckOut(w http.ResponseWriter, r *http.Request) {
	id, ok := reservationID(w, r)
	if !ok {
		return
	}
	p, ok := principal(w, r)
	if !ok {
		return
	}
	var req entities.CheckOutRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	result, err := h.Service.CheckOut(id, req.DamageCharges, req.Notes, p)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Guest checked out",
		"bill":    result,
	})
}

func (h *AdminReservationHandler) MarkNoShow(w http.ResponseWriter, r *http.Request) {
	id, ok := reservationID(w, r)
	if !ok {
		return
	}
	p, ok := principal(w, r)
	if !ok {
		return
	}
	if err := h.Service.MarkNoShow(id, p); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "Reservation marked as no-show"})
}

func (h *AdminReservationHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := reservationID(w, r)
	if !ok {
		return
	}
	p, ok := principal(w, r)
	if !ok {
		return
	}
	var req entities.CancelRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if err := h.Service.Cancel(id, req.Refund, req.Reason, p); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "Reservation canceled"})
}

func (h *AdminReservationHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	id, ok := reservationID(w, r)
	if !ok {
		return
	}
	events, err := h.Service.ListEvents(id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	out := make([]entities.ReservationEventResponse, 0, len(events))
	for _, ev := range events {
		out = append(out, entities.ReservationEventResponse{
			ID:         ev.ID,
			Actor:      ev.Actor,
			Action:     ev.Action,
			Detail:     ev.Detail,
			OccurredAt: ev.OccurredAt,
		})
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "events": out})
}
