package repository

import (
	"context"
	"time"

	"github.com/mednet-dev/surgery-scheduler/backend/internal/domain"
)

func (r *Repository) CreateSurgery(surgery *domain.Surgery) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		INSERT INTO surgeries (id, doctor_id, assistant_doctor_id, room_type, surgery_date, duration, nurse_count, status)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, $8)
		RETURNING created_at
	`

	args := []any{
		surgery.SurgeryID,
		surgery.DoctorID,
		surgery.AssistantDoctorID,
		surgery.RoomType,
		surgery.SurgeryDate,
		surgery.Duration,
		surgery.NurseCount,
		domain.SurgeryStatusPending,
	}

	var createdAt time.Time
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&createdAt); err != nil {
		return err
	}
	surgery.CreatedAt = &createdAt
	surgery.Status = domain.SurgeryStatusPending

	return nil
}

func (r *Repository) GetSurgeryByID(id string) (*domain.Surgery, error) {
	query := `
		SELECT doctor_id, COALESCE(assistant_doctor_id, ''), room_type, surgery_date, duration, nurse_count, created_at, status, COALESCE(diagnostic_note, '')
		FROM surgeries WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	surgery := &domain.Surgery{
		SurgeryID: id,
	}

	var createdAt time.Time
	dst := []any{&surgery.DoctorID, &surgery.AssistantDoctorID, &surgery.RoomType, &surgery.SurgeryDate, &surgery.Duration, &surgery.NurseCount, &createdAt, &surgery.Status, &surgery.DiagnosticNote}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}
	surgery.CreatedAt = &createdAt

	return surgery, nil
}

func (r *Repository) GetSurgeriesByStatus(status domain.SurgeryStatus) ([]*domain.Surgery, error) {
	query := `
		SELECT id, doctor_id, COALESCE(assistant_doctor_id, ''), room_type, surgery_date, duration, nurse_count, created_at, status, COALESCE(diagnostic_note, '')
		FROM surgeries WHERE status = $1 ORDER BY created_at
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	surgeries := make([]*domain.Surgery, 0)
	for rows.Next() {
		surgery := &domain.Surgery{}
		var createdAt time.Time
		dst := []any{&surgery.SurgeryID, &surgery.DoctorID, &surgery.AssistantDoctorID, &surgery.RoomType, &surgery.SurgeryDate, &surgery.Duration, &surgery.NurseCount, &createdAt, &surgery.Status, &surgery.DiagnosticNote}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		surgery.CreatedAt = &createdAt
		surgeries = append(surgeries, surgery)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return surgeries, nil
}
