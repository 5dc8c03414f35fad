package scheduler

import (
	"github.com/mednet-dev/surgery-scheduler/backend/internal/domain"
)

// interval 半开区间 [start, end)，单位为从午夜开始的分钟数
type interval struct {
	start int
	end   int
}

// ResourceOccupancy 一次排程运行内的资源占用状态，
// 分别跟踪手术室、主刀医师和助理医师三条独立的时间线。
// 键为 resourceID + "|" + 日期，随着第二阶段逐台提交而单调增长，
// 运行结束后即丢弃。
//
// 手术室区间以清洁结束时间为边界；医师/助理区间同样记录到清洁结束，
// 约束检查时再在已有区间两侧扩展休息缓冲（见 ConstraintEngine）
type ResourceOccupancy struct {
	rooms      map[string][]interval
	doctors    map[string][]interval
	assistants map[string][]interval
}

func NewResourceOccupancy() *ResourceOccupancy {
	return &ResourceOccupancy{
		rooms:      make(map[string][]interval),
		doctors:    make(map[string][]interval),
		assistants: make(map[string][]interval),
	}
}

func occupancyKey(resourceID, dateKey string) string {
	return resourceID + "|" + dateKey
}

func (o *ResourceOccupancy) roomIntervals(roomID, dateKey string) []interval {
	return o.rooms[occupancyKey(roomID, dateKey)]
}

func (o *ResourceOccupancy) doctorIntervals(doctorID, dateKey string) []interval {
	return o.doctors[occupancyKey(doctorID, dateKey)]
}

func (o *ResourceOccupancy) assistantIntervals(assistantID, dateKey string) []interval {
	return o.assistants[occupancyKey(assistantID, dateKey)]
}

// Commit 提交一台已排程手术的资源占用
func (o *ResourceOccupancy) Commit(surgery *domain.Surgery, roomID string, slot *Slot) {
	dateKey := surgery.DateKey()

	roomKey := occupancyKey(roomID, dateKey)
	o.rooms[roomKey] = append(o.rooms[roomKey], interval{start: slot.Start, end: slot.CleanupEnd})

	doctorKey := occupancyKey(surgery.DoctorID, dateKey)
	o.doctors[doctorKey] = append(o.doctors[doctorKey], interval{start: slot.Start, end: slot.CleanupEnd})

	if surgery.AssistantDoctorID != "" {
		assistantKey := occupancyKey(surgery.AssistantDoctorID, dateKey)
		o.assistants[assistantKey] = append(o.assistants[assistantKey], interval{start: slot.Start, end: slot.CleanupEnd})
	}
}

// SeedExisting 用已有排程初始化手术室占用。
// 已有排程中没有医师信息，因此只能占用手术室时间线
func (o *ResourceOccupancy) SeedExisting(existing []*domain.ScheduleResult) error {
	for _, result := range existing {
		start, err := ParseClock(result.StartTime)
		if err != nil {
			return err
		}
		cleanupEnd, err := ParseClock(result.CleanupEndTime)
		if err != nil {
			return err
		}
		// 清洁结束回绕到次日凌晨时还原为当日的延长分钟数
		if cleanupEnd < start {
			cleanupEnd += minutesPerDay
		}

		key := occupancyKey(result.RoomID, result.DateKey())
		o.rooms[key] = append(o.rooms[key], interval{start: start, end: cleanupEnd})
	}

	return nil
}
