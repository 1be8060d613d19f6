package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"villamarea/internal/entities"
	"villamarea/internal/repository"
	"villamarea/internal/service"
)

// GuestUserHandler is the admin-side CRUD over guest users.
type GuestUserHandler struct {
	Service *service.GuestService
}

func NewGuestUserHandler(svc *service.GuestService) *GuestUserHandler {
	return &GuestUserHandler{Service: svc}
}

func (h *GuestUserHandler) List(w http.ResponseWriter, r *http.Request) {
	guests, err := h.Service.List(r.URL.Query().Get("search"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	out := make([]entities.GuestUserResponse, 0, len(guests))
	for i := range guests {
		out = append(out, entities.FromGuestUser(&guests[i]))
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "guests": out})
}

func (h *GuestUserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid ID")
		return
	}
	guest, err := h.Service.GetByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Guest not found")
			return
		}
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, entities.FromGuestUser(guest))
}

func (h *GuestUserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req entities.GuestUserRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	guest, err := h.Service.Create(&req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"guest":   entities.FromGuestUser(guest),
	})
}

func (h *GuestUserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid ID")
		return
	}
	var req entities.GuestUserRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if err := h.Service.Update(id, &req); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Guest not found")
			return
		}
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "Guest updated"})
}

func (h *GuestUserHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid ID")
		return
	}
	if err := h.Service.Deactivate(id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Guest not found")
			return
		}
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "Guest deactivated"})
}
