package scheduler

import (
	"github.com/mednet-dev/surgery-scheduler/backend/internal/domain"
)

// RejectReason 候选时段被拒绝的类型化原因
type RejectReason string

const (
	RejectShiftClosed       RejectReason = "shift_closed"       // 手术室在该班次不开放
	RejectPastShiftBoundary RejectReason = "past_shift_boundary" // 无夜班手术室的手术不得在 16:00 之后结束
	RejectDoctorUnavailable RejectReason = "doctor_unavailable"  // 医师周排班表不允许该班次
	RejectDoctorConflict    RejectReason = "doctor_conflict"     // 与主刀医师已有手术冲突（含休息缓冲）
	RejectAssistantConflict RejectReason = "assistant_conflict"  // 与助理医师已有手术冲突（含休息缓冲）
	RejectRoomConflict      RejectReason = "room_conflict"       // 与手术室已有占用重叠

	// 以下不是单个候选时段的拒绝原因，而是整台手术的失败分类
	ReasonNoEligibleRoom RejectReason = "no_eligible_room"
	ReasonNoFeasibleSlot RejectReason = "no_feasible_slot"
	ReasonInvalidSurgery RejectReason = "invalid_surgery"
	ReasonInternalError  RejectReason = "internal_error"
)

// surgeonRelated 医师相关的原因在失败摘要中优先级最高，
// 因为医师是三类资源中最不可替代的
func (r RejectReason) surgeonRelated() bool {
	switch r {
	case RejectDoctorConflict, RejectDoctorUnavailable, RejectAssistantConflict:
		return true
	}
	return false
}

// Slot 一个通过了全部约束检查的候选时段
type Slot struct {
	Start        int // 从午夜开始的分钟数
	End          int // Start + 手术时长，可能超过 1440（跨午夜）
	CleanupEnd   int // End + 清洁时间
	Shift        domain.Shift
	IsCrossShift bool
}

// ConstraintEngine 可行性判定器：给定候选开始时间和当前资源占用状态，
// 判断能否接受，拒绝时返回类型化原因。
// 检查按顺序短路执行，每次只返回第一个不满足的原因
type ConstraintEngine struct {
	cfg     *Config
	rosters domain.DoctorRoster
}

func NewConstraintEngine(cfg *Config, rosters domain.DoctorRoster) *ConstraintEngine {
	return &ConstraintEngine{cfg: cfg, rosters: rosters}
}

// Feasible 检查手术在指定手术室、指定开始时间能否落位。
// 成功返回 (*Slot, "")，失败返回 (nil, 原因)
func (e *ConstraintEngine) Feasible(surgery *domain.Surgery, room *domain.Room, start int, occ *ResourceOccupancy) (*Slot, RejectReason) {
	end := start + DurationToMinutes(surgery.Duration)
	cleanupEnd := end + e.cfg.CleanupMinutes

	startShift := ShiftOf(start)
	endShift := ShiftOf(end)

	// 1. 手术室在开始时间所在班次必须开放
	if !room.ShiftOpen(startShift) {
		return nil, RejectShiftClosed
	}

	// 2. 无夜班手术室的手术不得在 16:00 之后结束
	if !e.cfg.DisableShiftBoundary && !room.NightShift && end >= 16*60 {
		return nil, RejectPastShiftBoundary
	}

	// 3. 医师周排班表检查：跨班次手术要求两个班次都可用。
	//    排班表没有该医师或该天的记录时不做限制
	if scheduleType, ok := e.rosters.TypeFor(surgery.DoctorID, surgery.SurgeryDate); ok {
		if !scheduleType.Allows(startShift) {
			return nil, RejectDoctorUnavailable
		}
		if endShift != startShift && !scheduleType.Allows(endShift) {
			return nil, RejectDoctorUnavailable
		}
	}

	dateKey := surgery.DateKey()
	buffer := e.cfg.DoctorRestBufferMinutes

	// 4. 主刀医师冲突：已有占用两侧各扩展休息缓冲后不得与候选窗口重叠。
	//    缓冲只加在已有占用上，候选窗口按原样比较
	for _, occupied := range occ.doctorIntervals(surgery.DoctorID, dateKey) {
		if Overlaps(start, end, occupied.start-buffer, occupied.end+buffer) {
			return nil, RejectDoctorConflict
		}
	}

	// 5. 助理医师冲突：规则与主刀相同
	if surgery.AssistantDoctorID != "" {
		for _, occupied := range occ.assistantIntervals(surgery.AssistantDoctorID, dateKey) {
			if Overlaps(start, end, occupied.start-buffer, occupied.end+buffer) {
				return nil, RejectAssistantConflict
			}
		}
	}

	// 6. 手术室冲突：候选 [start, cleanupEnd) 不得与已有占用重叠
	for _, occupied := range occ.roomIntervals(room.ID, dateKey) {
		if Overlaps(start, cleanupEnd, occupied.start, occupied.end) {
			return nil, RejectRoomConflict
		}
	}

	return &Slot{
		Start:        start,
		End:          end,
		CleanupEnd:   cleanupEnd,
		Shift:        startShift,
		IsCrossShift: startShift != endShift,
	}, ""
}
