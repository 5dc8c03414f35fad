package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mednet-dev/surgery-scheduler/backend/internal/domain"
)

func newTestPlacer(cfg *Config, rosters domain.DoctorRoster, rooms []*domain.Room, occ *ResourceOccupancy) *Stage2Placer {
	return NewStage2Placer(cfg, NewConstraintEngine(cfg, rosters), NewPriorityScorer(cfg, rosters), rooms, occ)
}

func allocTo(pairs map[string]string) *Allocation {
	shifts := make(map[string]domain.Shift, len(pairs))
	for id := range pairs {
		shifts[id] = domain.ShiftMorning
	}
	return &Allocation{Rooms: pairs, SuggestedShifts: shifts}
}

func seededOccupancy(t *testing.T, existing ...*domain.ScheduleResult) *ResourceOccupancy {
	t.Helper()
	occ := NewResourceOccupancy()
	require.NoError(t, occ.SeedExisting(existing))
	return occ
}

func TestPlaceEarliestSlot(t *testing.T) {
	cfg := DefaultConfig()
	rooms := []*domain.Room{testRoom("R1", true, true)}
	placer := newTestPlacer(cfg, nil, rooms, NewResourceOccupancy())

	results, failed, reasons := placer.Place([]*domain.Surgery{testSurgery("S1", "D001", 2.0)}, allocTo(map[string]string{"S1": "R1"}))

	require.Len(t, results, 1)
	assert.Empty(t, failed)
	assert.Empty(t, reasons)

	result := results[0]
	assert.Equal(t, "R1", result.RoomID)
	assert.Equal(t, "08:00", result.StartTime)
	assert.Equal(t, "10:00", result.EndTime)
	assert.Equal(t, "10:30", result.CleanupEndTime)
	assert.Equal(t, domain.ShiftMorning, result.PrimaryShift)
	assert.False(t, result.IsCrossShift)
	assert.Empty(t, result.DiagnosticNote)
}

func TestPlaceOrdersByPriority(t *testing.T) {
	cfg := DefaultConfig()
	rooms := []*domain.Room{testRoom("R1", true, true)}
	placer := newTestPlacer(cfg, nil, rooms, NewResourceOccupancy())

	surgeries := []*domain.Surgery{
		testSurgery("S1", "D001", 6.0),
		testSurgery("S2", "D002", 1.0),
	}
	results, failed, _ := placer.Place(surgeries, allocTo(map[string]string{"S1": "R1", "S2": "R1"}))

	require.Len(t, results, 2)
	assert.Empty(t, failed)

	// 短手术优先级更高，先插入拿到最早时段
	byID := map[string]*domain.ScheduleResult{}
	for _, r := range results {
		byID[r.SurgeryID] = r
	}
	assert.Equal(t, "08:00", byID["S2"].StartTime)
	assert.Equal(t, "09:30", byID["S1"].StartTime)
}

func TestPlaceRescueWhenPrimaryRoomFull(t *testing.T) {
	cfg := DefaultConfig()
	rooms := []*domain.Room{testRoom("R1", true, true), testRoom("R2", true, true)}
	occ := seededOccupancy(t, &domain.ScheduleResult{
		SurgeryID:      "X1",
		RoomID:         "R1",
		ScheduledDate:  testDate,
		StartTime:      "08:00",
		EndTime:        "23:29",
		CleanupEndTime: "23:59",
	})
	placer := newTestPlacer(cfg, nil, rooms, occ)

	results, failed, _ := placer.Place([]*domain.Surgery{testSurgery("S1", "D001", 4.0)}, allocTo(map[string]string{"S1": "R1"}))

	require.Len(t, results, 1)
	assert.Empty(t, failed)
	assert.Equal(t, "R2", results[0].RoomID)
	assert.Equal(t, "08:00", results[0].StartTime)
	assert.Contains(t, results[0].DiagnosticNote, "原手术室 R1 无可行时段，已换至 R2")
}

func TestPlaceRescuesDelayedSlot(t *testing.T) {
	cfg := DefaultConfig()
	rooms := []*domain.Room{testRoom("R1", true, true), testRoom("R2", true, true)}
	occ := seededOccupancy(t, &domain.ScheduleResult{
		SurgeryID:      "X1",
		RoomID:         "R1",
		ScheduledDate:  testDate,
		StartTime:      "08:00",
		EndTime:        "13:30",
		CleanupEndTime: "14:00",
	})
	placer := newTestPlacer(cfg, nil, rooms, occ)

	// R1 最早可行时段 14:00 开始 18:00 结束，属于延迟；R2 空闲，换房后 12:00 结束
	results, failed, _ := placer.Place([]*domain.Surgery{testSurgery("S1", "D001", 4.0)}, allocTo(map[string]string{"S1": "R1"}))

	require.Len(t, results, 1)
	assert.Empty(t, failed)
	assert.Equal(t, "R2", results[0].RoomID)
	assert.Equal(t, "08:00", results[0].StartTime)
	assert.Equal(t, "12:00", results[0].EndTime)
	assert.Contains(t, results[0].DiagnosticNote, "原手术室 R1 仅有延迟时段(18:00 结束)，已换至 R2")
}

func TestPlaceAcceptsDelayedWithoutAlternative(t *testing.T) {
	cfg := DefaultConfig()
	rooms := []*domain.Room{testRoom("R1", true, true)}
	occ := seededOccupancy(t, &domain.ScheduleResult{
		SurgeryID:      "X1",
		RoomID:         "R1",
		ScheduledDate:  testDate,
		StartTime:      "08:00",
		EndTime:        "13:30",
		CleanupEndTime: "14:00",
	})
	placer := newTestPlacer(cfg, nil, rooms, occ)

	results, failed, _ := placer.Place([]*domain.Surgery{testSurgery("S1", "D001", 4.0)}, allocTo(map[string]string{"S1": "R1"}))

	require.Len(t, results, 1)
	assert.Empty(t, failed)
	assert.Equal(t, "R1", results[0].RoomID)
	assert.Equal(t, "14:00", results[0].StartTime)
	assert.Equal(t, "18:00", results[0].EndTime)
	assert.Contains(t, results[0].DiagnosticNote, "仅找到延迟时段")
	assert.Contains(t, results[0].DiagnosticNote, string(RejectRoomConflict))
}

func TestPlaceFailsWhenDoctorUnavailable(t *testing.T) {
	cfg := DefaultConfig()
	rooms := []*domain.Room{testRoom("R1", true, true)}
	placer := newTestPlacer(cfg, rosterFor("D001", domain.ScheduleTypeD), rooms, NewResourceOccupancy())

	results, failed, reasons := placer.Place([]*domain.Surgery{testSurgery("S1", "D001", 2.0)}, allocTo(map[string]string{"S1": "R1"}))

	assert.Empty(t, results)
	require.Len(t, failed, 1)
	assert.Equal(t, "S1", failed[0].SurgeryID)
	assert.Equal(t, string(RejectDoctorUnavailable), reasons["S1"])
}

func TestPlaceNoEligibleRoom(t *testing.T) {
	cfg := DefaultConfig()
	placer := newTestPlacer(cfg, nil, []*domain.Room{testRoom("R1", true, true)}, NewResourceOccupancy())

	_, failed, reasons := placer.Place([]*domain.Surgery{testSurgery("S1", "D001", 2.0)}, allocTo(map[string]string{}))

	require.Len(t, failed, 1)
	assert.Equal(t, string(ReasonNoEligibleRoom), reasons["S1"])
}

func TestPlaceInvalidSurgery(t *testing.T) {
	cfg := DefaultConfig()
	placer := newTestPlacer(cfg, nil, []*domain.Room{testRoom("R1", true, true)}, NewResourceOccupancy())

	surgery := testSurgery("S1", "D001", 0)
	_, failed, reasons := placer.Place([]*domain.Surgery{surgery}, allocTo(map[string]string{"S1": "R1"}))

	require.Len(t, failed, 1)
	assert.Equal(t, string(ReasonInvalidSurgery), reasons["S1"])
}

func TestSummarizeReasons(t *testing.T) {
	assert.Equal(t, string(ReasonNoFeasibleSlot), summarizeReasons(nil))
	assert.Equal(t, "room_conflict", summarizeReasons([]RejectReason{RejectRoomConflict}))

	// 医师相关原因置前，最多保留三个
	got := summarizeReasons([]RejectReason{RejectRoomConflict, RejectShiftClosed, RejectDoctorConflict, RejectAssistantConflict})
	assert.Equal(t, "doctor_conflict (另有: assistant_conflict, room_conflict)", got)
}
