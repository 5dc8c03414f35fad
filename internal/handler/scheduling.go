package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mednet-dev/surgery-scheduler/backend/internal/domain"
	"github.com/mednet-dev/surgery-scheduler/backend/internal/scheduler"
)

// 最近一次运行摘要的 redis key，由运行器在每次运行结束后写入
const LatestRunCacheKey = "scheduling:latest_run"

// RunStandaloneScheduling 以独立模式执行一次排程：
// 全部输入（手术、手术室、已有排程、医师排班表、参数）都来自请求体，不读写数据库
func (h *Handler) RunStandaloneScheduling(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Surgeries         []*domain.Surgery        `json:"surgeries" validate:"required,min=1"`
		Rooms             []*domain.Room           `json:"rooms" validate:"required,min=1"`
		ExistingSchedules []*domain.ScheduleResult `json:"existingSchedules"`
		DoctorRosters     domain.DoctorRoster      `json:"doctorRosters"`
		Config            *scheduler.Config        `json:"config"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	cfg := req.Config
	if cfg == nil {
		cfg = scheduler.DefaultConfig()
	}

	sched, err := scheduler.New(cfg)
	if err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	results, failed, failureReasons, err := sched.Schedule(req.Surgeries, req.Rooms, req.ExistingSchedules, req.DoctorRosters)
	if err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	h.successResponse(w, r, "排程完成", map[string]any{
		"results":        results,
		"failed":         failed,
		"failureReasons": failureReasons,
	})
}

// TriggerScheduling 手动触发一次后台排程运行，运行在后台执行，接口立即返回
func (h *Handler) TriggerScheduling(w http.ResponseWriter, r *http.Request) {
	if h.trigger.Running() {
		h.errorResponse(w, r, "已有排程运行在进行中")
		return
	}

	go h.trigger.RunNow(context.WithoutCancel(r.Context()))

	h.successResponse(w, r, "已触发排程运行", nil)
}

func (h *Handler) GetSchedulingStatus(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{
		"pendingCount": h.trigger.PendingCount(),
		"running":      h.trigger.Running(),
		"latestRun":    nil,
	}

	// 优先读缓存，缓存未命中时回退到数据库
	ctx, cancel := context.WithTimeout(r.Context(), time.Duration(h.config.Redis.OperationExpiration)*time.Second)
	defer cancel()

	cached, err := h.redisClient.Get(ctx, LatestRunCacheKey).Result()
	switch {
	case err == nil:
		var run domain.SchedulingRun
		if err := json.Unmarshal([]byte(cached), &run); err == nil {
			status["latestRun"] = &run
		}
	case errors.Is(err, redis.Nil):
		run, err := h.repository.GetLatestRun()
		switch {
		case err == nil:
			status["latestRun"] = run
		case errors.Is(err, sql.ErrNoRows):
			// 还没有任何运行记录
		default:
			h.internalServerError(w, r, err)
			return
		}
	default:
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取排程状态成功", status)
}

func (h *Handler) GetScheduleResults(w http.ResponseWriter, r *http.Request) {
	dateParam := r.URL.Query().Get("date")
	if dateParam == "" {
		h.errorResponse(w, r, "缺少 date 参数")
		return
	}

	date, err := time.Parse("2006-01-02", dateParam)
	if err != nil {
		h.errorResponse(w, r, "日期格式错误，应为 YYYY-MM-DD")
		return
	}

	results, err := h.repository.GetScheduleResultsByDate(date)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取排程结果成功", results)
}
