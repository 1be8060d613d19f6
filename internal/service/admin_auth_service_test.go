package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"villamarea/internal/apperrors"
	"villamarea/internal/auth"
	"villamarea/internal/db"
	"villamarea/internal/entities"
)

type fakeStaffRepo struct {
	byEmail map[string]*db.StaffAccount
	byID    map[int]*db.StaffAccount
	created []string
}

func (f *fakeStaffRepo) GetByEmail(email string) (*db.StaffAccount, error) {
	return f.byEmail[email], nil
}

func (f *fakeStaffRepo) GetByID(id int) (*db.StaffAccount, error) {
	return f.byID[id], nil
}

func (f *fakeStaffRepo) List() ([]db.StaffAccount, error) {
	var out []db.StaffAccount
	for _, a := range f.byID {
		out = append(out, *a)
	}
	return out, nil
}

func (f *fakeStaffRepo) Create(name, email, passwordHash, role string) (*db.StaffAccount, error) {
	f.created = append(f.created, email)
	return &db.StaffAccount{ID: 99, Name: name, Email: email, PasswordHash: passwordHash, Role: role, Active: true}, nil
}

func (f *fakeStaffRepo) Update(id int, name, role string, active bool) error { return nil }

func (f *fakeStaffRepo) UpdatePasswordHash(id int, passwordHash string) error { return nil }

func (f *fakeStaffRepo) Deactivate(id int) error { return nil }

func staffAccount(t *testing.T, password string, active bool) *db.StaffAccount {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &db.StaffAccount{
		ID:           1,
		Name:         "Ana Reyes",
		Email:        "ana@example.com",
		PasswordHash: string(hash),
		Role:         auth.RoleAdmin,
		Active:       active,
	}
}

func newAuthService(repo *fakeStaffRepo) AdminAuthService {
	return NewAdminAuthService(repo, auth.NewTokenService("test-secret", time.Hour))
}

func TestLoginSuccess(t *testing.T) {
	account := staffAccount(t, "s3cret", true)
	svc := newAuthService(&fakeStaffRepo{byEmail: map[string]*db.StaffAccount{account.Email: account}})

	resp, err := svc.Login("ana@example.com", "s3cret")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "Ana Reyes", resp.Name)
	assert.Equal(t, auth.RoleAdmin, resp.Role)
}

// Every failure mode must surface the same error, so a caller cannot
// probe which emails have accounts.
func TestLoginFailuresAreUniform(t *testing.T) {
	account := staffAccount(t, "s3cret", true)
	inactive := staffAccount(t, "s3cret", false)
	inactive.Email = "gone@example.com"

	svc := newAuthService(&fakeStaffRepo{byEmail: map[string]*db.StaffAccount{
		account.Email:  account,
		inactive.Email: inactive,
	}})

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"unknown email", "nobody@example.com", "s3cret"},
		{"wrong password", "ana@example.com", "wrong"},
		{"deactivated account", "gone@example.com", "s3cret"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(tt.email, tt.password)
			assert.ErrorIs(t, err, ErrInvalidCredentials)
		})
	}
}

func TestCreateStaffDuplicateEmail(t *testing.T) {
	account := staffAccount(t, "s3cret", true)
	repo := &fakeStaffRepo{byEmail: map[string]*db.StaffAccount{account.Email: account}}
	svc := newAuthService(repo)

	_, err := svc.CreateStaff(&entities.StaffRequest{
		Name:     "Other",
		Email:    account.Email,
		Password: "pw123456",
		Role:     auth.RoleStaff,
	})
	var httpErr *apperrors.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, 409, httpErr.Code)
	assert.Empty(t, repo.created)
}

func TestCreateStaffHashesPassword(t *testing.T) {
	repo := &fakeStaffRepo{byEmail: map[string]*db.StaffAccount{}}
	svc := newAuthService(repo)

	created, err := svc.CreateStaff(&entities.StaffRequest{
		Name:     "New Staff",
		Email:    "new@example.com",
		Password: "pw123456",
		Role:     auth.RoleStaff,
	})
	require.NoError(t, err)
	assert.NotEqual(t, "pw123456", created.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("pw123456")))
}

func TestUpdateStaffNotFound(t *testing.T) {
	svc := newAuthService(&fakeStaffRepo{byID: map[int]*db.StaffAccount{}})

	err := svc.UpdateStaff(42, &entities.StaffRequest{Name: "X"})
	var httpErr *apperrors.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, 404, httpErr.Code)
}
