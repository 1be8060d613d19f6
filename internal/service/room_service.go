package service

import (
	"villamarea/internal/db"
	"villamarea/internal/entities"
	"villamarea/internal/repository"
)

type RoomService struct {
	Repo *repository.RoomRepository
}

func NewRoomService(repo *repository.RoomRepository) *RoomService {
	return &RoomService{Repo: repo}
}

func (s *RoomService) List() ([]db.Room, error) {
	return s.Repo.List()
}

func (s *RoomService) Create(req *entities.RoomRequest) (*db.Room, error) {
	return s.Repo.Create(req.Name, req.Capacity)
}

func (s *RoomService) Update(id int, req *entities.RoomRequest) error {
	room, err := s.Repo.GetByID(id)
	if err != nil {
		return err
	}
	active := room.Active
	if req.Active != nil {
		active = *req.Active
	}
	return s.Repo.Update(id, req.Name, req.Capacity, active)
}
