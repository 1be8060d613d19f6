package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"villamarea/internal/auth"
	"villamarea/internal/entities"
	"villamarea/internal/service"
)

type AdminAuthHandler struct {
	service service.AdminAuthService
}

func NewAdminAuthHandler(svc service.AdminAuthService) *AdminAuthHandler {
	return &AdminAuthHandler{service: svc}
}

func (h *AdminAuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req entities.LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	resp, err := h.service.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			// One message for every failure mode, so the response does
			// not reveal which field was wrong.
			respondError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"token":   resp.Token,
		"name":    resp.Name,
		"email":   resp.Email,
		"role":    resp.Role,
	})
}

// Me returns the principal resolved from the token.
func (h *AdminAuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.FromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"id":      principal.ID,
		"email":   principal.Email,
		"role":    principal.Role,
	})
}

func (h *AdminAuthHandler) ListStaff(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.service.ListStaff()
	if err != nil {
		respondServiceError(w, err)
		return
	}
	out := make([]entities.StaffResponse, 0, len(accounts))
	for i := range accounts {
		out = append(out, entities.FromStaffAccount(&accounts[i]))
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "staff": out})
}

func (h *AdminAuthHandler) CreateStaff(w http.ResponseWriter, r *http.Request) {
	var req entities.StaffRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	account, err := h.service.CreateStaff(&req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"staff":   entities.FromStaffAccount(account),
	})
}

func (h *AdminAuthHandler) UpdateStaff(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid ID")
		return
	}
	var req entities.StaffRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if err := h.service.UpdateStaff(id, &req); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "Staff account updated"})
}

func (h *AdminAuthHandler) DeactivateStaff(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid ID")
		return
	}
	if err := h.service.DeactivateStaff(id); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "Staff account deactivated"})
}
