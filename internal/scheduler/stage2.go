package scheduler

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/mednet-dev/surgery-scheduler/backend/internal/domain"
)

// delayedEndMinute 结束时间落在 17:00 之后（或落在夜班）的排程视为延迟
const delayedEndMinute = 17 * 60

// scanOutcome 单间手术室的扫描结果：找到的第一个可行时段（可能为 nil）
// 和扫描过程中出现过的去重拒绝原因（保持首次出现的顺序）
type scanOutcome struct {
	slot    *Slot
	reasons []RejectReason
}

// Stage2Placer 第二阶段：按优先级降序贪婪插入。
// 逐台手术在第一阶段分配的手术室内按 30 分钟粒度找最早可行时段；
// 无解或时段过晚时启动救援，在同类型的备选手术室中另寻更早的时段。
// 单台手术的状态流转为 待排 → 搜索 → {成功 | 延迟被救回(换房成功) | 延迟接受 | 失败}。
// 本阶段天然串行：每次提交都会修改占用状态，后续判定依赖它
type Stage2Placer struct {
	cfg       *Config
	engine    *ConstraintEngine
	scorer    *PriorityScorer
	rooms     []*domain.Room
	roomsByID map[string]*domain.Room
	occupancy *ResourceOccupancy
}

func NewStage2Placer(cfg *Config, engine *ConstraintEngine, scorer *PriorityScorer, rooms []*domain.Room, occupancy *ResourceOccupancy) *Stage2Placer {
	roomsByID := make(map[string]*domain.Room, len(rooms))
	for _, room := range rooms {
		roomsByID[room.ID] = room
	}

	return &Stage2Placer{
		cfg:       cfg,
		engine:    engine,
		scorer:    scorer,
		rooms:     rooms,
		roomsByID: roomsByID,
		occupancy: occupancy,
	}
}

// Place 消费第一阶段的分配结果，返回成功排程、失败手术和失败原因。
// 单台手术的意外错误只会导致该手术失败，不会中断整个批次
func (p *Stage2Placer) Place(surgeries []*domain.Surgery, alloc *Allocation) ([]*domain.ScheduleResult, []*domain.Surgery, map[string]string) {
	type scored struct {
		surgery *domain.Surgery
		score   float64
	}

	ordered := make([]scored, 0, len(surgeries))
	for _, surgery := range surgeries {
		ordered = append(ordered, scored{surgery: surgery, score: p.scorer.Score(surgery)})
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].score != ordered[j].score {
			return ordered[i].score > ordered[j].score
		}
		return ordered[i].surgery.SurgeryID < ordered[j].surgery.SurgeryID
	})

	results := make([]*domain.ScheduleResult, 0, len(ordered))
	failed := make([]*domain.Surgery, 0)
	failureReasons := make(map[string]string)

	for _, item := range ordered {
		result, reason := p.placeOne(item.surgery, item.score, alloc)
		if result != nil {
			results = append(results, result)
			continue
		}
		failed = append(failed, item.surgery)
		failureReasons[item.surgery.SurgeryID] = reason
	}

	slog.Info("第二阶段完成", "success", len(results), "failed", len(failed))
	return results, failed, failureReasons
}

// placeOne 单台手术的完整状态机，panic 被捕获并转为该手术失败
func (p *Stage2Placer) placeOne(surgery *domain.Surgery, priorityScore float64, alloc *Allocation) (result *domain.ScheduleResult, failReason string) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("排程单台手术时发生意外错误", "surgeryID", surgery.SurgeryID, "panic", r)
			result = nil
			failReason = string(ReasonInternalError)
		}
	}()

	if surgery.Duration <= 0 || surgery.NurseCount <= 0 || surgery.SurgeryDate.IsZero() {
		return nil, string(ReasonInvalidSurgery)
	}

	roomID, ok := alloc.RoomFor(surgery.SurgeryID)
	if !ok {
		return nil, string(ReasonNoEligibleRoom)
	}
	room, ok := p.roomsByID[roomID]
	if !ok {
		return nil, string(ReasonNoEligibleRoom)
	}

	primary := p.scanRoom(surgery, room)
	delayed := primary.slot != nil && p.isDelayed(primary.slot)

	chosenRoom := room
	chosen := primary.slot
	note := ""

	if primary.slot == nil || delayed {
		// 救援：在同类型的备选手术室中另寻时段，保留结束最早的方案；
		// 结束时间相同的备选按调用方给定的手术室顺序取第一个
		altRoom, altSlot := p.rescue(surgery, room)

		switch {
		case primary.slot == nil && altSlot != nil:
			chosenRoom, chosen = altRoom, altSlot
			note = fmt.Sprintf("原手术室 %s 无可行时段，已换至 %s", room.ID, altRoom.ID)
		case delayed && altSlot != nil && altSlot.End < primary.slot.End:
			chosenRoom, chosen = altRoom, altSlot
			note = fmt.Sprintf("原手术室 %s 仅有延迟时段(%s 结束)，已换至 %s", room.ID, FormatClock(primary.slot.End), altRoom.ID)
		case delayed:
			// 救不回来就接受延迟时段，并保留此前的拒绝记录作为解释
			note = "仅找到延迟时段: " + joinReasons(primary.reasons)
		}
	}

	if chosen == nil {
		return nil, summarizeReasons(primary.reasons)
	}

	if note == "" && len(primary.reasons) > 0 {
		// 成功但更早的候选被拒绝过，保留原因集合便于诊断
		note = "更早时段不可用: " + joinReasons(primary.reasons)
	}

	p.occupancy.Commit(surgery, chosenRoom.ID, chosen)

	return &domain.ScheduleResult{
		SurgeryID:       surgery.SurgeryID,
		RoomID:          chosenRoom.ID,
		ScheduledDate:   surgery.SurgeryDate,
		StartTime:       FormatClock(chosen.Start),
		EndTime:         FormatClock(chosen.End),
		CleanupEndTime:  FormatClock(chosen.CleanupEnd),
		PrimaryShift:    chosen.Shift,
		IsCrossShift:    chosen.IsCrossShift,
		PriorityScore:   priorityScore,
		AllocationScore: alloc.Score,
		DiagnosticNote:  note,
	}, ""
}

// scanRoom 从最早开放时间起按粒度逐格调用约束引擎，取第一个可行时段
func (p *Stage2Placer) scanRoom(surgery *domain.Surgery, room *domain.Room) scanOutcome {
	outcome := scanOutcome{}
	seen := make(map[RejectReason]bool)

	scanEnd := 20 * 60
	if room.NightShift {
		scanEnd = 24 * 60
	}

	for start := p.cfg.DayStartMinute; start < scanEnd; start += p.cfg.SlotGranularityMinutes {
		slot, reason := p.engine.Feasible(surgery, room, start, p.occupancy)
		if slot != nil {
			outcome.slot = slot
			return outcome
		}
		if !seen[reason] {
			seen[reason] = true
			outcome.reasons = append(outcome.reasons, reason)
		}
	}

	return outcome
}

func (p *Stage2Placer) isDelayed(slot *Slot) bool {
	return slot.End >= delayedEndMinute || slot.Shift == domain.ShiftNight
}

// rescue 枚举满足类型和护士数要求的备选手术室（排除原手术室），
// 返回结束时间最早的可行方案
func (p *Stage2Placer) rescue(surgery *domain.Surgery, original *domain.Room) (*domain.Room, *Slot) {
	var bestRoom *domain.Room
	var bestSlot *Slot

	for _, room := range p.rooms {
		if room.ID == original.ID || room.RoomType != surgery.RoomType || room.NurseCount < surgery.NurseCount {
			continue
		}

		outcome := p.scanRoom(surgery, room)
		if outcome.slot == nil {
			continue
		}
		if bestSlot == nil || outcome.slot.End < bestSlot.End {
			bestRoom = room
			bestSlot = outcome.slot
		}
	}

	return bestRoom, bestSlot
}

func joinReasons(reasons []RejectReason) string {
	parts := make([]string, len(reasons))
	for i, r := range reasons {
		parts[i] = string(r)
	}
	return strings.Join(parts, ", ")
}

// summarizeReasons 失败摘要：医师相关原因最不可替代所以排最前，
// 之后最多再附两个其他原因
func summarizeReasons(reasons []RejectReason) string {
	if len(reasons) == 0 {
		return string(ReasonNoFeasibleSlot)
	}

	ordered := make([]RejectReason, 0, len(reasons))
	for _, r := range reasons {
		if r.surgeonRelated() {
			ordered = append(ordered, r)
		}
	}
	for _, r := range reasons {
		if !r.surgeonRelated() {
			ordered = append(ordered, r)
		}
	}

	if len(ordered) > 3 {
		ordered = ordered[:3]
	}

	if len(ordered) == 1 {
		return string(ordered[0])
	}
	return string(ordered[0]) + " (另有: " + joinReasons(ordered[1:]) + ")"
}
