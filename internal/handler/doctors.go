package handler

import (
	"net/http"
	"time"

	"github.com/mednet-dev/surgery-scheduler/backend/internal/domain"
)

func (h *Handler) CreateDoctor(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID       string `json:"id" validate:"required"`
		FullName string `json:"fullName" validate:"required"`
		Username string `json:"username" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	doctor := &domain.Doctor{
		ID:       req.ID,
		FullName: req.FullName,
		Username: req.Username,
	}

	if err := h.repository.CreateDoctor(doctor); err != nil {
		h.repositoryError(w, r, err, map[string]string{
			"doctors_pkey":         "医师编号已存在",
			"doctors_username_key": "医师用户名已存在",
		})
		return
	}

	h.successResponse(w, r, "创建医师成功", doctor)
}

func (h *Handler) GetAllDoctors(w http.ResponseWriter, r *http.Request) {
	doctors, err := h.repository.GetAllDoctors()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取医师列表成功", doctors)
}

func (h *Handler) GetDoctor(w http.ResponseWriter, r *http.Request) {
	doctor := r.Context().Value(DoctorInfoCtx).(*domain.Doctor)
	h.successResponse(w, r, "获取医师成功", doctor)
}

// UpdateDoctorRoster 整体覆盖医师一周的排班类型，键为星期几（0 = 周日）
func (h *Handler) UpdateDoctorRoster(w http.ResponseWriter, r *http.Request) {
	doctor := r.Context().Value(DoctorInfoCtx).(*domain.Doctor)

	var req struct {
		Roster map[int]string `json:"roster" validate:"required,min=1"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	for weekday, scheduleType := range req.Roster {
		if weekday < 0 || weekday > 6 {
			h.errorResponse(w, r, "星期几必须在 0 到 6 之间")
			return
		}
		switch domain.ScheduleType(scheduleType) {
		case domain.ScheduleTypeA, domain.ScheduleTypeB, domain.ScheduleTypeC, domain.ScheduleTypeD, domain.ScheduleTypeE:
		default:
			h.errorResponse(w, r, "无效的排班类型: "+scheduleType)
			return
		}
	}

	for weekday, scheduleType := range req.Roster {
		if err := h.repository.UpsertRosterEntry(doctor.ID, time.Weekday(weekday), domain.ScheduleType(scheduleType)); err != nil {
			h.internalServerError(w, r, err)
			return
		}
	}

	h.successResponse(w, r, "更新医师排班表成功", nil)
}
