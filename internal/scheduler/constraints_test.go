package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mednet-dev/surgery-scheduler/backend/internal/domain"
)

var testDate = time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)

func testSurgery(id, doctorID string, duration float64) *domain.Surgery {
	return &domain.Surgery{
		SurgeryID:   id,
		DoctorID:    doctorID,
		RoomType:    "普外",
		SurgeryDate: testDate,
		Duration:    duration,
		NurseCount:  2,
		Status:      domain.SurgeryStatusPending,
	}
}

func testRoom(id string, morning, night bool) *domain.Room {
	return &domain.Room{
		ID:           id,
		RoomType:     "普外",
		NurseCount:   3,
		MorningShift: morning,
		NightShift:   night,
	}
}

func rosterFor(doctorID string, scheduleType domain.ScheduleType) domain.DoctorRoster {
	return domain.DoctorRoster{
		doctorID: {testDate.Weekday(): scheduleType},
	}
}

func TestFeasibleSuccess(t *testing.T) {
	engine := NewConstraintEngine(DefaultConfig(), nil)
	surgery := testSurgery("S1", "D001", 2.0)
	room := testRoom("R1", true, true)

	slot, reason := engine.Feasible(surgery, room, 8*60, NewResourceOccupancy())
	require.Empty(t, reason)
	require.NotNil(t, slot)

	assert.Equal(t, 480, slot.Start)
	assert.Equal(t, 600, slot.End)
	assert.Equal(t, 630, slot.CleanupEnd)
	assert.Equal(t, domain.ShiftMorning, slot.Shift)
	assert.False(t, slot.IsCrossShift)
}

func TestFeasibleShiftClosed(t *testing.T) {
	engine := NewConstraintEngine(DefaultConfig(), nil)
	surgery := testSurgery("S1", "D001", 1.0)
	room := testRoom("R1", true, false)

	_, reason := engine.Feasible(surgery, room, 16*60, NewResourceOccupancy())
	assert.Equal(t, RejectShiftClosed, reason)

	_, reason = engine.Feasible(surgery, room, 6*60, NewResourceOccupancy())
	assert.Equal(t, RejectShiftClosed, reason)
}

func TestFeasiblePastShiftBoundary(t *testing.T) {
	surgery := testSurgery("S1", "D001", 2.0)
	room := testRoom("R1", true, false)

	// 14:30 开始的 2 小时手术 16:30 结束，无夜班手术室不允许
	engine := NewConstraintEngine(DefaultConfig(), nil)
	_, reason := engine.Feasible(surgery, room, 14*60+30, NewResourceOccupancy())
	assert.Equal(t, RejectPastShiftBoundary, reason)

	// 关闭班次边界约束后同一时段可行
	relaxed := DefaultConfig()
	relaxed.DisableShiftBoundary = true
	engine = NewConstraintEngine(relaxed, nil)
	slot, reason := engine.Feasible(surgery, room, 14*60+30, NewResourceOccupancy())
	require.Empty(t, reason)
	assert.True(t, slot.IsCrossShift)

	// 有夜班的手术室不受边界约束影响
	engine = NewConstraintEngine(DefaultConfig(), nil)
	slot, reason = engine.Feasible(surgery, testRoom("R2", true, true), 14*60+30, NewResourceOccupancy())
	require.Empty(t, reason)
	assert.Equal(t, 16*60+30, slot.End)
}

func TestPartialConfigKeepsShiftBoundary(t *testing.T) {
	surgery := testSurgery("S1", "D001", 5.0)
	room := testRoom("R1", true, false)

	// 只设置部分字段的配置补齐后边界检查必须仍然生效
	partial := (&Config{Seed: 1}).Normalize()
	require.NoError(t, partial.Validate())

	engine := NewConstraintEngine(partial, nil)
	_, reason := engine.Feasible(surgery, room, 12*60, NewResourceOccupancy())
	assert.Equal(t, RejectPastShiftBoundary, reason)
}

func TestFeasibleDoctorUnavailable(t *testing.T) {
	surgery := testSurgery("S1", "D001", 2.0)
	room := testRoom("R1", true, true)

	tests := []struct {
		name         string
		scheduleType domain.ScheduleType
		start        int
		want         RejectReason
	}{
		{"C 类医师不可上夜班", domain.ScheduleTypeC, 17 * 60, RejectDoctorUnavailable},
		{"C 类医师跨班次也被拒绝", domain.ScheduleTypeC, 15 * 60, RejectDoctorUnavailable},
		{"C 类医师早班可行", domain.ScheduleTypeC, 8 * 60, ""},
		{"B 类医师不可上早班", domain.ScheduleTypeB, 8 * 60, RejectDoctorUnavailable},
		{"A 类医师全天可行", domain.ScheduleTypeA, 15 * 60, ""},
		{"D 类医师全天不可用", domain.ScheduleTypeD, 8 * 60, RejectDoctorUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := NewConstraintEngine(DefaultConfig(), rosterFor("D001", tt.scheduleType))
			_, reason := engine.Feasible(surgery, room, tt.start, NewResourceOccupancy())
			assert.Equal(t, tt.want, reason)
		})
	}
}

func TestFeasibleDoctorConflictWithRestBuffer(t *testing.T) {
	engine := NewConstraintEngine(DefaultConfig(), nil)
	room := testRoom("R1", true, true)

	occ := NewResourceOccupancy()
	occ.Commit(testSurgery("S1", "D001", 2.0), "R1", &Slot{Start: 480, End: 600, CleanupEnd: 630})

	next := testSurgery("S2", "D001", 2.0)

	// 已有占用到清洁结束 10:30，两侧各加 60 分钟缓冲后为 [07:00, 11:30)
	_, reason := engine.Feasible(next, testRoom("R2", true, true), 11*60, NewResourceOccupancy())
	require.Empty(t, reason)

	_, reason = engine.Feasible(next, testRoom("R2", true, true), 11*60, occ)
	assert.Equal(t, RejectDoctorConflict, reason)

	slot, reason := engine.Feasible(next, testRoom("R2", true, true), 11*60+30, occ)
	require.Empty(t, reason)
	assert.Equal(t, 11*60+30, slot.Start)

	// 同医师不同手术室也冲突
	_, reason = engine.Feasible(next, room, 9*60, occ)
	assert.Equal(t, RejectDoctorConflict, reason)
}

func TestFeasibleAssistantConflict(t *testing.T) {
	engine := NewConstraintEngine(DefaultConfig(), nil)

	first := testSurgery("S1", "D001", 2.0)
	first.AssistantDoctorID = "D009"

	occ := NewResourceOccupancy()
	occ.Commit(first, "R1", &Slot{Start: 480, End: 600, CleanupEnd: 630})

	next := testSurgery("S2", "D002", 2.0)
	next.AssistantDoctorID = "D009"

	_, reason := engine.Feasible(next, testRoom("R2", true, true), 9*60, occ)
	assert.Equal(t, RejectAssistantConflict, reason)

	// 没有共享助理时不受影响
	next.AssistantDoctorID = ""
	_, reason = engine.Feasible(next, testRoom("R2", true, true), 9*60, occ)
	assert.Empty(t, reason)
}

func TestFeasibleRoomConflict(t *testing.T) {
	engine := NewConstraintEngine(DefaultConfig(), nil)
	room := testRoom("R1", true, true)

	occ := NewResourceOccupancy()
	occ.Commit(testSurgery("S1", "D001", 2.0), "R1", &Slot{Start: 480, End: 600, CleanupEnd: 630})

	next := testSurgery("S2", "D002", 2.0)

	// 候选窗口含清洁时间，10:00 开始会与 [08:00, 10:30) 的占用重叠
	_, reason := engine.Feasible(next, room, 10*60, occ)
	assert.Equal(t, RejectRoomConflict, reason)

	// 前一台清洁结束后立即开始可行
	slot, reason := engine.Feasible(next, room, 10*60+30, occ)
	require.Empty(t, reason)
	assert.Equal(t, 10*60+30, slot.Start)
}
