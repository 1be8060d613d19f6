package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"villamarea/internal/db"
)

// StaffRepository stores admin/staff accounts. An interface so the auth
// service can be tested without a database.
type StaffRepository interface {
	GetByEmail(email string) (*db.StaffAccount, error)
	GetByID(id int) (*db.StaffAccount, error)
	List() ([]db.StaffAccount, error)
	Create(name, email, passwordHash, role string) (*db.StaffAccount, error)
	Update(id int, name, role string, active bool) error
	UpdatePasswordHash(id int, passwordHash string) error
	Deactivate(id int) error
}

type staffRepository struct {
	db *sql.DB
}

func NewStaffRepository(database *sql.DB) StaffRepository {
	return &staffRepository{db: database}
}

const staffColumns = `id, name, email, password_hash, role, active, created_at, updated_at`

func scanStaff(row rowScanner) (*db.StaffAccount, error) {
	var a db.StaffAccount
	err := row.Scan(&a.ID, &a.Name, &a.Email, &a.PasswordHash, &a.Role, &a.Active, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error scanning staff account: %w", err)
	}
	return &a, nil
}

func (r *staffRepository) GetByEmail(email string) (*db.StaffAccount, error) {
	query := `SELECT ` + staffColumns + ` FROM staff_accounts WHERE email = $1`
	return scanStaff(r.db.QueryRow(query, email))
}

func (r *staffRepository) GetByID(id int) (*db.StaffAccount, error) {
	query := `SELECT ` + staffColumns + ` FROM staff_accounts WHERE id = $1`
	return scanStaff(r.db.QueryRow(query, id))
}

func (r *staffRepository) List() ([]db.StaffAccount, error) {
	query := `SELECT ` + staffColumns + ` FROM staff_accounts ORDER BY name`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("error listing staff accounts: %w", err)
	}
	defer rows.Close()

	var accounts []db.StaffAccount
	for rows.Next() {
		a, err := scanStaff(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *a)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating staff accounts: %w", err)
	}
	return accounts, nil
}

func (r *staffRepository) Create(name, email, passwordHash, role string) (*db.StaffAccount, error) {
	query := `
		INSERT INTO staff_accounts (name, email, password_hash, role, active)
		VALUES ($1, $2, $3, $4, TRUE)
		RETURNING ` + staffColumns
	return scanStaff(r.db.QueryRow(query, name, email, passwordHash, role))
}

func (r *staffRepository) Update(id int, name, role string, active bool) error {
	query := `
		UPDATE staff_accounts
		SET name = COALESCE(NULLIF($2, ''), name),
		    role = COALESCE(NULLIF($3, ''), role),
		    active = $4, updated_at = NOW()
		WHERE id = $1`
	_, err := r.db.Exec(query, id, name, role, active)
	if err != nil {
		return fmt.Errorf("error updating staff account: %w", err)
	}
	return nil
}

func (r *staffRepository) UpdatePasswordHash(id int, passwordHash string) error {
	query := `UPDATE staff_accounts SET password_hash = $2, updated_at = NOW() WHERE id = $1`
	_, err := r.db.Exec(query, id, passwordHash)
	if err != nil {
		return fmt.Errorf("error updating staff password: %w", err)
	}
	return nil
}

// Deactivate disables login without deleting the row; the account stays
// referenced by the audit trail.
func (r *staffRepository) Deactivate(id int) error {
	query := `UPDATE staff_accounts SET active = FALSE, updated_at = NOW() WHERE id = $1`
	_, err := r.db.Exec(query, id)
	if err != nil {
		return fmt.Errorf("error deactivating staff account: %w", err)
	}
	return nil
}
