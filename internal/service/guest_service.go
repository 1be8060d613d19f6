package service

import (
	"villamarea/internal/db"
	"villamarea/internal/entities"
	"villamarea/internal/repository"
)

type GuestService struct {
	Repo *repository.GuestRepository
}

func NewGuestService(repo *repository.GuestRepository) *GuestService {
	return &GuestService{Repo: repo}
}

func (s *GuestService) List(search string) ([]db.GuestUser, error) {
	return s.Repo.List(search)
}

func (s *GuestService) GetByID(id int) (*db.GuestUser, error) {
	return s.Repo.GetByID(id)
}

func (s *GuestService) Create(req *entities.GuestUserRequest) (*db.GuestUser, error) {
	return s.Repo.Create(req.Name, req.Email, req.Phone)
}

func (s *GuestService) Update(id int, req *entities.GuestUserRequest) error {
	return s.Repo.Update(id, req.Name, req.Email, req.Phone)
}

func (s *GuestService) Deactivate(id int) error {
	return s.Repo.Deactivate(id)
}
