package repository

import (
	"context"
	"time"

	"github.com/mednet-dev/surgery-scheduler/backend/internal/domain"
)

// InsertRunWithResults 在一个事务中写入运行记录、全部排程结果以及手术状态变更，
// 保证运行记录和结果要么全部落库要么全部回滚
func (r *Repository) InsertRunWithResults(run *domain.SchedulingRun, results []*domain.ScheduleResult, failed []*domain.Surgery) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		INSERT INTO scheduling_runs (triggered_by, surgery_count, success_count, failed_count, started_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, version
	`

	args := []any{run.TriggeredBy, run.SurgeryCount, run.SuccessCount, run.FailedCount, run.StartedAt, run.FinishedAt}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&run.ID, &run.CreatedAt, &run.Version); err != nil {
		return err
	}

	for _, result := range results {
		query := `
			INSERT INTO schedule_results (run_id, surgery_id, room_id, scheduled_date, start_time, end_time, cleanup_end_time, primary_shift, is_cross_shift, priority_score, allocation_score, diagnostic_note)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NULLIF($12, ''))
		`

		args := []any{
			run.ID,
			result.SurgeryID,
			result.RoomID,
			result.ScheduledDate,
			result.StartTime,
			result.EndTime,
			result.CleanupEndTime,
			result.PrimaryShift,
			result.IsCrossShift,
			result.PriorityScore,
			result.AllocationScore,
			result.DiagnosticNote,
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}

		query = `UPDATE surgeries SET status = $1, diagnostic_note = NULL WHERE id = $2`
		if _, err := tx.ExecContext(ctx, query, domain.SurgeryStatusScheduled, result.SurgeryID); err != nil {
			return err
		}
	}

	for _, surgery := range failed {
		query := `UPDATE surgeries SET status = $1, diagnostic_note = NULLIF($2, '') WHERE id = $3`
		if _, err := tx.ExecContext(ctx, query, domain.SurgeryStatusFailed, surgery.DiagnosticNote, surgery.SurgeryID); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetScheduleResultsByDate(date time.Time) ([]*domain.ScheduleResult, error) {
	query := `
		SELECT surgery_id, room_id, scheduled_date, start_time, end_time, cleanup_end_time, primary_shift, is_cross_shift, priority_score, allocation_score, COALESCE(diagnostic_note, '')
		FROM schedule_results WHERE scheduled_date = $1
		ORDER BY room_id, start_time
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]*domain.ScheduleResult, 0)
	for rows.Next() {
		result := &domain.ScheduleResult{}
		dst := []any{&result.SurgeryID, &result.RoomID, &result.ScheduledDate, &result.StartTime, &result.EndTime, &result.CleanupEndTime, &result.PrimaryShift, &result.IsCrossShift, &result.PriorityScore, &result.AllocationScore, &result.DiagnosticNote}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		results = append(results, result)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return results, nil
}

func (r *Repository) GetLatestRun() (*domain.SchedulingRun, error) {
	query := `
		SELECT id, triggered_by, surgery_count, success_count, failed_count, started_at, finished_at, created_at, version
		FROM scheduling_runs ORDER BY id DESC LIMIT 1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	run := &domain.SchedulingRun{}
	dst := []any{&run.ID, &run.TriggeredBy, &run.SurgeryCount, &run.SuccessCount, &run.FailedCount, &run.StartedAt, &run.FinishedAt, &run.CreatedAt, &run.Version}
	if err := r.dbpool.QueryRowContext(ctx, query).Scan(dst...); err != nil {
		return nil, err
	}

	return run, nil
}
