package repository

import (
	"context"
	"time"

	"github.com/mednet-dev/surgery-scheduler/backend/internal/domain"
)

func (r *Repository) CreateDoctor(doctor *domain.Doctor) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		INSERT INTO doctors (id, full_name, username)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`

	if err := r.dbpool.QueryRowContext(ctx, query, doctor.ID, doctor.FullName, doctor.Username).Scan(&doctor.CreatedAt); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetDoctorByID(id string) (*domain.Doctor, error) {
	query := `
		SELECT full_name, username, created_at FROM doctors WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	doctor := &domain.Doctor{
		ID: id,
	}

	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(&doctor.FullName, &doctor.Username, &doctor.CreatedAt); err != nil {
		return nil, err
	}

	return doctor, nil
}

func (r *Repository) GetAllDoctors() ([]*domain.Doctor, error) {
	query := `
		SELECT id, full_name, username, created_at FROM doctors ORDER BY id
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	doctors := make([]*domain.Doctor, 0)
	for rows.Next() {
		doctor := &domain.Doctor{}
		if err := rows.Scan(&doctor.ID, &doctor.FullName, &doctor.Username, &doctor.CreatedAt); err != nil {
			return nil, err
		}
		doctors = append(doctors, doctor)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return doctors, nil
}

// UpsertRosterEntry 写入医师某个星期几的排班类型，已存在时覆盖
func (r *Repository) UpsertRosterEntry(doctorID string, weekday time.Weekday, scheduleType domain.ScheduleType) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		INSERT INTO doctor_rosters (doctor_id, weekday, schedule_type)
		VALUES ($1, $2, $3)
		ON CONFLICT (doctor_id, weekday) DO UPDATE SET schedule_type = EXCLUDED.schedule_type
	`

	if _, err := r.dbpool.ExecContext(ctx, query, doctorID, int(weekday), scheduleType); err != nil {
		return err
	}

	return nil
}

// GetDoctorRosters 读取全部医师的每周排班表，组装成排程器需要的查询结构
func (r *Repository) GetDoctorRosters() (domain.DoctorRoster, error) {
	query := `
		SELECT doctor_id, weekday, schedule_type FROM doctor_rosters
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rosters := make(domain.DoctorRoster)
	for rows.Next() {
		var doctorID string
		var weekday int
		var scheduleType domain.ScheduleType
		if err := rows.Scan(&doctorID, &weekday, &scheduleType); err != nil {
			return nil, err
		}
		if _, exists := rosters[doctorID]; !exists {
			rosters[doctorID] = make(map[time.Weekday]domain.ScheduleType)
		}
		rosters[doctorID][time.Weekday(weekday)] = scheduleType
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return rosters, nil
}
