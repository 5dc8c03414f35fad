package handler

import (
	"net/http"

	"github.com/mednet-dev/surgery-scheduler/backend/internal/domain"
)

func (h *Handler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID             string `json:"id" validate:"required"`
		RoomType       string `json:"roomType" validate:"required"`
		NurseCount     int    `json:"nurseCount" validate:"required,gt=0"`
		MorningShift   bool   `json:"morningShift"`
		NightShift     bool   `json:"nightShift"`
		GraveyardShift bool   `json:"graveyardShift"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	room := &domain.Room{
		ID:             req.ID,
		RoomType:       req.RoomType,
		NurseCount:     req.NurseCount,
		MorningShift:   req.MorningShift,
		NightShift:     req.NightShift,
		GraveyardShift: req.GraveyardShift,
	}

	if room.OpenShiftCount() == 0 {
		h.errorResponse(w, r, "手术室至少需要开放一个班次")
		return
	}

	if err := h.repository.CreateRoom(room); err != nil {
		h.repositoryError(w, r, err, map[string]string{
			"rooms_pkey": "手术室编号已存在",
		})
		return
	}

	h.successResponse(w, r, "创建手术室成功", room)
}

func (h *Handler) GetAllRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.repository.GetAllRooms()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取手术室列表成功", rooms)
}

func (h *Handler) GetRoom(w http.ResponseWriter, r *http.Request) {
	room := r.Context().Value(RoomInfoCtx).(*domain.Room)
	h.successResponse(w, r, "获取手术室成功", room)
}

func (h *Handler) UpdateRoom(w http.ResponseWriter, r *http.Request) {
	room := r.Context().Value(RoomInfoCtx).(*domain.Room)

	var req struct {
		RoomType       *string `json:"roomType"`
		NurseCount     *int    `json:"nurseCount" validate:"omitempty,gt=0"`
		MorningShift   *bool   `json:"morningShift"`
		NightShift     *bool   `json:"nightShift"`
		GraveyardShift *bool   `json:"graveyardShift"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if req.RoomType != nil {
		room.RoomType = *req.RoomType
	}
	if req.NurseCount != nil {
		room.NurseCount = *req.NurseCount
	}
	if req.MorningShift != nil {
		room.MorningShift = *req.MorningShift
	}
	if req.NightShift != nil {
		room.NightShift = *req.NightShift
	}
	if req.GraveyardShift != nil {
		room.GraveyardShift = *req.GraveyardShift
	}

	if room.OpenShiftCount() == 0 {
		h.errorResponse(w, r, "手术室至少需要开放一个班次")
		return
	}

	if err := h.repository.UpdateRoom(room); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "更新手术室成功", room)
}

func (h *Handler) DeleteRoom(w http.ResponseWriter, r *http.Request) {
	room := r.Context().Value(RoomInfoCtx).(*domain.Room)

	if err := h.repository.DeleteRoom(room.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "删除手术室成功", nil)
}
