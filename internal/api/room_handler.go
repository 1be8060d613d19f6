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

type RoomHandler struct {
	Service *service.RoomService
}

func NewRoomHandler(svc *service.RoomService) *RoomHandler {
	return &RoomHandler{Service: svc}
}

func (h *RoomHandler) List(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.Service.List()
	if err != nil {
		respondServiceError(w, err)
		return
	}
	out := make([]entities.RoomResponse, 0, len(rooms))
	for _, room := range rooms {
		out = append(out, entities.RoomResponse{
			ID:       room.ID,
			Name:     room.Name,
			Capacity: room.Capacity,
			Active:   room.Active,
		})
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "rooms": out})
}

func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req entities.RoomRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	room, err := h.Service.Create(&req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"room": entities.RoomResponse{
			ID:       room.ID,
			Name:     room.Name,
			Capacity: room.Capacity,
			Active:   room.Active,
		},
	})
}

func (h *RoomHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid ID")
		return
	}
	var req entities.RoomRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if err := h.Service.Update(id, &req); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Room not found")
			return
		}
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "Room updated"})
}
