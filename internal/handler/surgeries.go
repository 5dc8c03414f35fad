package handler

import (
	"net/http"
	"time"

	"github.com/mednet-dev/surgery-scheduler/backend/internal/domain"
)

func (h *Handler) CreateSurgery(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID                string  `json:"id" validate:"required"`
		DoctorID          string  `json:"doctorID" validate:"required"`
		AssistantDoctorID string  `json:"assistantDoctorID"`
		RoomType          string  `json:"roomType" validate:"required"`
		SurgeryDate       string  `json:"surgeryDate" validate:"required"`
		Duration          float64 `json:"duration" validate:"required,gt=0"`
		NurseCount        int     `json:"nurseCount" validate:"required,gt=0"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	surgeryDate, err := time.Parse("2006-01-02", req.SurgeryDate)
	if err != nil {
		h.errorResponse(w, r, "手术日期格式错误，应为 YYYY-MM-DD")
		return
	}

	if req.AssistantDoctorID == req.DoctorID {
		h.errorResponse(w, r, "助理医师不能和主刀医师相同")
		return
	}

	surgery := &domain.Surgery{
		SurgeryID:         req.ID,
		DoctorID:          req.DoctorID,
		AssistantDoctorID: req.AssistantDoctorID,
		RoomType:          req.RoomType,
		SurgeryDate:       surgeryDate,
		Duration:          req.Duration,
		NurseCount:        req.NurseCount,
	}

	if err := h.repository.CreateSurgery(surgery); err != nil {
		h.repositoryError(w, r, err, map[string]string{
			"surgeries_pkey":                     "手术编号已存在",
			"surgeries_doctor_id_fkey":           "主刀医师不存在",
			"surgeries_assistant_doctor_id_fkey": "助理医师不存在",
		})
		return
	}

	// 入队并在达到阈值时同步触发一次排程
	h.trigger.Enqueue(r.Context(), surgery)

	h.successResponse(w, r, "创建手术成功", surgery)
}

func (h *Handler) GetSurgeriesByStatus(w http.ResponseWriter, r *http.Request) {
	status := domain.SurgeryStatus(r.URL.Query().Get("status"))
	if status == "" {
		status = domain.SurgeryStatusPending
	}

	switch status {
	case domain.SurgeryStatusPending, domain.SurgeryStatusScheduled, domain.SurgeryStatusFailed:
	default:
		h.errorResponse(w, r, "无效的手术状态: "+string(status))
		return
	}

	surgeries, err := h.repository.GetSurgeriesByStatus(status)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取手术列表成功", surgeries)
}

func (h *Handler) GetSurgery(w http.ResponseWriter, r *http.Request) {
	surgery := r.Context().Value(SurgeryInfoCtx).(*domain.Surgery)
	h.successResponse(w, r, "获取手术成功", surgery)
}
