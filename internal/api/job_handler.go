package api

import (
	"net/http"

	"villamarea/internal/service"
)

// JobHandler exposes the maintenance jobs over HTTP so an external
// scheduler can trigger them. Mounted behind the API key middleware.
type JobHandler struct {
	Service *service.JobService
}

func NewJobHandler(svc *service.JobService) *JobHandler {
	return &JobHandler{Service: svc}
}

func (h *JobHandler) ExpireReservations(w http.ResponseWriter, r *http.Request) {
	expired, err := h.Service.ExpireReservations()
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"expired": expired,
	})
}

func (h *JobHandler) AutoCompleteReservations(w http.ResponseWriter, r *http.Request) {
	completed, checkedOut, err := h.Service.AutoCompleteReservations()
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"completed":   completed,
		"checked_out": checkedOut,
	})
}
