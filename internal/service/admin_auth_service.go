package service

import (
	"errors"

	"golang.org/x/crypto/bcrypt"

	"villamarea/internal/apperrors"
	"villamarea/internal/auth"
	"villamarea/internal/db"
	"villamarea/internal/entities"
	"villamarea/internal/repository"
)

// ErrInvalidCredentials is deliberately uniform: wrong email, wrong
// password and deactivated accounts all produce the same message.
var ErrInvalidCredentials = errors.New("invalid credentials")

// noAccountHash is compared when no usable account matches, so the
// unknown-email path costs a bcrypt round like the wrong-password path.
var noAccountHash = []byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")

type AdminAuthService interface {
	Login(email, password string) (*entities.LoginResponse, error)
	ListStaff() ([]db.StaffAccount, error)
	CreateStaff(req *entities.StaffRequest) (*db.StaffAccount, error)
	UpdateStaff(id int, req *entities.StaffRequest) error
	DeactivateStaff(id int) error
}

type adminAuthService struct {
	repo   repository.StaffRepository
	tokens *auth.TokenService
}

func NewAdminAuthService(repo repository.StaffRepository, tokens *auth.TokenService) AdminAuthService {
	return &adminAuthService{repo: repo, tokens: tokens}
}

func (s *adminAuthService) Login(email, password string) (*entities.LoginResponse, error) {
	account, err := s.repo.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if account == nil || !account.Active {
		bcrypt.CompareHashAndPassword(noAccountHash, []byte(password))
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateToken(account.ID, account.Email, account.Role)
	if err != nil {
		return nil, err
	}
	return &entities.LoginResponse{
		Token: token,
		Name:  account.Name,
		Email: account.Email,
		Role:  account.Role,
	}, nil
}

func (s *adminAuthService) ListStaff() ([]db.StaffAccount, error) {
	return s.repo.List()
}

func (s *adminAuthService) CreateStaff(req *entities.StaffRequest) (*db.StaffAccount, error) {
	if req.Password == "" {
		return nil, apperrors.Invalid("password is required")
	}
	existing, err := s.repo.GetByEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.Conflict("An account with this email already exists")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return s.repo.Create(req.Name, req.Email, string(hash), req.Role)
}

func (s *adminAuthService) UpdateStaff(id int, req *entities.StaffRequest) error {
	account, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if account == nil {
		return apperrors.NotFound("Staff account not found")
	}
	active := account.Active
	if req.Active != nil {
		active = *req.Active
	}
	if err := s.repo.Update(id, req.Name, req.Role, active); err != nil {
		return err
	}
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		return s.repo.UpdatePasswordHash(id, string(hash))
	}
	return nil
}

func (s *adminAuthService) DeactivateStaff(id int) error {
	account, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if account == nil {
		return apperrors.NotFound("Staff account not found")
	}
	return s.repo.Deactivate(id)
}
