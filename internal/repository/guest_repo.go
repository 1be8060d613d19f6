package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"villamarea/internal/db"
)

type GuestRepository struct {
	DB *sql.DB
}

func NewGuestRepository(database *sql.DB) *GuestRepository {
	return &GuestRepository{DB: database}
}

const guestColumns = `id, name, email, phone, active, created_at, updated_at`

func scanGuest(row rowScanner) (*db.GuestUser, error) {
	var g db.GuestUser
	err := row.Scan(&g.ID, &g.Name, &g.Email, &g.Phone, &g.Active, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error scanning guest user: %w", err)
	}
	return &g, nil
}

func (r *GuestRepository) GetByID(id int) (*db.GuestUser, error) {
	query := `SELECT ` + guestColumns + ` FROM guest_users WHERE id = $1`
	return scanGuest(r.DB.QueryRow(query, id))
}

func (r *GuestRepository) List(search string) ([]db.GuestUser, error) {
	query := `SELECT ` + guestColumns + ` FROM guest_users WHERE 1=1`
	args := []interface{}{}
	idx := 1

	if search != "" {
		query += " AND (name ILIKE $" + strconv.Itoa(idx) + " OR email ILIKE $" + strconv.Itoa(idx) + ")"
		args = append(args, "%"+search+"%")
		idx++
	}
	query += " ORDER BY name"

	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing guest users: %w", err)
	}
	defer rows.Close()

	var guests []db.GuestUser
	for rows.Next() {
		g, err := scanGuest(rows)
		if err != nil {
			return nil, err
		}
		guests = append(guests, *g)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating guest users: %w", err)
	}
	return guests, nil
}

func (r *GuestRepository) Create(name, email, phone string) (*db.GuestUser, error) {
	query := `
		INSERT INTO guest_users (name, email, phone, active)
		VALUES ($1, $2, $3, TRUE)
		RETURNING ` + guestColumns
	return scanGuest(r.DB.QueryRow(query, name, email, phone))
}

func (r *GuestRepository) Update(id int, name, email, phone string) error {
	query := `
		UPDATE guest_users
		SET name = COALESCE(NULLIF($2, ''), name),
		    email = COALESCE(NULLIF($3, ''), email),
		    phone = COALESCE(NULLIF($4, ''), phone),
		    updated_at = NOW()
		WHERE id = $1`
	result, err := r.DB.Exec(query, id, name, email, phone)
	if err != nil {
		return fmt.Errorf("error updating guest user: %w", err)
	}
	return requireFound(result)
}

func (r *GuestRepository) Deactivate(id int) error {
	query := `UPDATE guest_users SET active = FALSE, updated_at = NOW() WHERE id = $1`
	result, err := r.DB.Exec(query, id)
	if err != nil {
		return fmt.Errorf("error deactivating guest user: %w", err)
	}
	return requireFound(result)
}

// requireFound is the lookup counterpart of requireOneRow: an UPDATE that
// matched no row means the id does not exist, not that a state guard held.
func requireFound(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
