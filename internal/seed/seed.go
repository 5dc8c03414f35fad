package seed

import (
	"log/slog"
	"time"

	"github.com/mednet-dev/surgery-scheduler/backend/internal/config"
	"github.com/mednet-dev/surgery-scheduler/backend/internal/domain"
	"github.com/mednet-dev/surgery-scheduler/backend/internal/repository"
	"github.com/mednet-dev/surgery-scheduler/backend/internal/utils"
)

// SeedDemoData 插入一套完整的演示数据：医师及其每周排班表、手术室和一批待排手术。
// 手术日期取下一个工作日，保证大部分医师当天有排班记录
func SeedDemoData(r *repository.Repository, cfg *config.Config) {
	doctors := make([]*domain.Doctor, 0, cfg.Seed.DoctorCount)
	for i := 1; i <= cfg.Seed.DoctorCount; i++ {
		doctor := utils.GenerateRandomDoctor(i)
		if err := r.CreateDoctor(doctor); err != nil {
			slog.Error("插入医师失败", "id", doctor.ID, "error", err)
			continue
		}

		for weekday, scheduleType := range utils.GenerateRandomWeeklyRoster() {
			if err := r.UpsertRosterEntry(doctor.ID, weekday, scheduleType); err != nil {
				slog.Error("插入医师排班表失败", "id", doctor.ID, "weekday", int(weekday), "error", err)
			}
		}

		doctors = append(doctors, doctor)
	}
	slog.Info("插入医师成功", "count", len(doctors))

	if len(doctors) == 0 {
		slog.Error("没有任何医师插入成功，跳过后续数据")
		return
	}

	roomCount := 0
	for i := 1; i <= cfg.Seed.RoomCount; i++ {
		room := utils.GenerateRandomRoom(i)
		if err := r.CreateRoom(room); err != nil {
			slog.Error("插入手术室失败", "id", room.ID, "error", err)
			continue
		}
		roomCount++
	}
	slog.Info("插入手术室成功", "count", roomCount)

	surgeryDate := nextWorkday(time.Now())
	surgeryCount := 0
	for i := 1; i <= cfg.Seed.SurgeryCount; i++ {
		surgery := utils.GenerateRandomSurgery(i, doctors, surgeryDate)
		if err := r.CreateSurgery(surgery); err != nil {
			slog.Error("插入手术失败", "id", surgery.SurgeryID, "error", err)
			continue
		}
		surgeryCount++
	}
	slog.Info("插入手术成功", "count", surgeryCount, "date", surgeryDate.Format("2006-01-02"))
}

func nextWorkday(from time.Time) time.Time {
	day := from.AddDate(0, 0, 1)
	for day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
		day = day.AddDate(0, 0, 1)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
}
