package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"villamarea/internal/db"
)

type RoomRepository struct {
	DB *sql.DB
}

func NewRoomRepository(database *sql.DB) *RoomRepository {
	return &RoomRepository{DB: database}
}

func (r *RoomRepository) List() ([]db.Room, error) {
	rows, err := r.DB.Query(`SELECT id, name, capacity, active FROM room_inventory ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("error listing rooms: %w", err)
	}
	defer rows.Close()

	var rooms []db.Room
	for rows.Next() {
		var room db.Room
		if err := rows.Scan(&room.ID, &room.Name, &room.Capacity, &room.Active); err != nil {
			return nil, fmt.Errorf("error scanning room: %w", err)
		}
		rooms = append(rooms, room)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating rooms: %w", err)
	}
	return rooms, nil
}

func (r *RoomRepository) Create(name string, capacity int) (*db.Room, error) {
	var room db.Room
	err := r.DB.QueryRow(`
		INSERT INTO room_inventory (name, capacity, active)
		VALUES ($1, $2, TRUE)
		RETURNING id, name, capacity, active`, name, capacity).
		Scan(&room.ID, &room.Name, &room.Capacity, &room.Active)
	if err != nil {
		return nil, fmt.Errorf("error creating room: %w", err)
	}
	return &room, nil
}

func (r *RoomRepository) Update(id int, name string, capacity int, active bool) error {
	result, err := r.DB.Exec(`
		UPDATE room_inventory
		SET name = COALESCE(NULLIF($2, ''), name), capacity = $3, active = $4
		WHERE id = $1`, id, name, capacity, active)
	if err != nil {
		return fmt.Errorf("error updating room: %w", err)
	}
	return requireFound(result)
}

func (r *RoomRepository) GetByID(id int) (*db.Room, error) {
	var room db.Room
	err := r.DB.QueryRow(`SELECT id, name, capacity, active FROM room_inventory WHERE id = $1`, id).
		Scan(&room.ID, &room.Name, &room.Capacity, &room.Active)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error querying room: %w", err)
	}
	return &room, nil
}
