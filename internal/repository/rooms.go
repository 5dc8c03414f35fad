package repository

import (
	"context"
	"time"

	"github.com/mednet-dev/surgery-scheduler/backend/internal/domain"
)

func (r *Repository) CreateRoom(room *domain.Room) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		INSERT INTO rooms (id, room_type, nurse_count, morning_shift, night_shift, graveyard_shift)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	args := []any{room.ID, room.RoomType, room.NurseCount, room.MorningShift, room.NightShift, room.GraveyardShift}
	if _, err := r.dbpool.ExecContext(ctx, query, args...); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetRoomByID(id string) (*domain.Room, error) {
	query := `
		SELECT room_type, nurse_count, morning_shift, night_shift, graveyard_shift
		FROM rooms WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	room := &domain.Room{
		ID: id,
	}

	dst := []any{&room.RoomType, &room.NurseCount, &room.MorningShift, &room.NightShift, &room.GraveyardShift}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return room, nil
}

func (r *Repository) GetAllRooms() ([]*domain.Room, error) {
	query := `
		SELECT id, room_type, nurse_count, morning_shift, night_shift, graveyard_shift
		FROM rooms ORDER BY id
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rooms := make([]*domain.Room, 0)
	for rows.Next() {
		room := &domain.Room{}
		dst := []any{&room.ID, &room.RoomType, &room.NurseCount, &room.MorningShift, &room.NightShift, &room.GraveyardShift}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return rooms, nil
}

func (r *Repository) UpdateRoom(room *domain.Room) error {
	query := `
		UPDATE rooms
		SET
			room_type = $1,
			nurse_count = $2,
			morning_shift = $3,
			night_shift = $4,
			graveyard_shift = $5
		WHERE id = $6
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{room.RoomType, room.NurseCount, room.MorningShift, room.NightShift, room.GraveyardShift, room.ID}
	if _, err := r.dbpool.ExecContext(ctx, query, args...); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteRoom(id string) error {
	query := `
		DELETE FROM rooms WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	return nil
}
