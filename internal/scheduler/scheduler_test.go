package scheduler

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mednet-dev/surgery-scheduler/backend/internal/domain"
)

func newTestScheduler(t *testing.T) *Scheduler {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Seed = 1
	s, err := New(cfg)
	require.NoError(t, err)
	return s
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CrossoverRate = rate(2.0)
	_, err := New(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "交叉概率")

	// nil 配置回退到默认值
	s, err := New(nil)
	require.NoError(t, err)
	require.NotNil(t, s)
}

func TestScheduleSingleSurgery(t *testing.T) {
	s := newTestScheduler(t)

	surgeries := []*domain.Surgery{testSurgery("S1", "D001", 2.0)}
	rooms := []*domain.Room{testRoom("R1", true, true)}

	results, failed, reasons, err := s.Schedule(surgeries, rooms, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, failed)
	assert.Empty(t, reasons)
	require.Len(t, results, 1)

	result := results[0]
	assert.Equal(t, "S1", result.SurgeryID)
	assert.Equal(t, "R1", result.RoomID)
	assert.Equal(t, "08:00", result.StartTime)
	assert.Equal(t, "10:00", result.EndTime)
	assert.Equal(t, "10:30", result.CleanupEndTime)
	assert.Equal(t, domain.ShiftMorning, result.PrimaryShift)
	assert.False(t, result.IsCrossShift)
	assert.Equal(t, testDate, result.ScheduledDate)
}

func TestScheduleSameDoctorRestBuffer(t *testing.T) {
	s := newTestScheduler(t)

	surgeries := []*domain.Surgery{
		testSurgery("S1", "D001", 5.0),
		testSurgery("S2", "D001", 5.0),
	}
	rooms := []*domain.Room{testRoom("R1", true, true)}

	results, failed, _, err := s.Schedule(surgeries, rooms, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, failed)
	require.Len(t, results, 2)

	byID := map[string]*domain.ScheduleResult{}
	for _, r := range results {
		byID[r.SurgeryID] = r
	}

	// 第一台 08:00-13:00，清洁到 13:30，加 60 分钟休息缓冲后
	// 第二台最早只能从对齐到粒度的 14:30 开始
	assert.Equal(t, "08:00", byID["S1"].StartTime)
	assert.Equal(t, "14:30", byID["S2"].StartTime)
	assert.Equal(t, "19:30", byID["S2"].EndTime)
	assert.Equal(t, domain.ShiftMorning, byID["S2"].PrimaryShift)
	assert.True(t, byID["S2"].IsCrossShift)
}

func TestScheduleNoEligibleRoom(t *testing.T) {
	s := newTestScheduler(t)

	surgery := testSurgery("S1", "D001", 2.0)
	surgery.RoomType = "心外"
	rooms := []*domain.Room{testRoom("R1", true, true)}

	results, failed, reasons, err := s.Schedule([]*domain.Surgery{surgery}, rooms, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, results)
	require.Len(t, failed, 1)
	assert.Equal(t, string(ReasonNoEligibleRoom), reasons["S1"])
}

func TestScheduleRespectsExistingResults(t *testing.T) {
	s := newTestScheduler(t)

	existing := []*domain.ScheduleResult{{
		SurgeryID:      "X1",
		RoomID:         "R1",
		ScheduledDate:  testDate,
		StartTime:      "08:00",
		EndTime:        "10:00",
		CleanupEndTime: "10:30",
	}}

	surgeries := []*domain.Surgery{testSurgery("S1", "D001", 2.0)}
	rooms := []*domain.Room{testRoom("R1", true, true)}

	results, failed, _, err := s.Schedule(surgeries, rooms, existing, nil)
	require.NoError(t, err)
	assert.Empty(t, failed)
	require.Len(t, results, 1)
	assert.Equal(t, "10:30", results[0].StartTime)
}

func TestScheduleEmptySurgeries(t *testing.T) {
	s := newTestScheduler(t)

	results, failed, reasons, err := s.Schedule(nil, nil, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Empty(t, failed)
	assert.Empty(t, reasons)
}

func TestScheduleEmptyRooms(t *testing.T) {
	s := newTestScheduler(t)

	_, _, _, err := s.Schedule([]*domain.Surgery{testSurgery("S1", "D001", 2.0)}, nil, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "手术室列表不能为空")
}

func TestScheduleDeterministicWithSeed(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Seed = 42
	s, err := New(cfg)
	require.NoError(t, err)

	surgeries := make([]*domain.Surgery, 10)
	for i := range surgeries {
		surgeries[i] = testSurgery(fmt.Sprintf("S%02d", i+1), fmt.Sprintf("D%03d", i%3+1), float64(i%4)+1)
	}
	rooms := []*domain.Room{
		testRoom("R1", true, true),
		testRoom("R2", true, false),
		testRoom("R3", true, true),
	}

	first, firstFailed, _, err := s.Schedule(surgeries, rooms, nil, nil)
	require.NoError(t, err)

	second, secondFailed, _, err := s.Schedule(surgeries, rooms, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, firstFailed, secondFailed)
}

func TestScheduleResultsSatisfyResourceInvariants(t *testing.T) {
	s := newTestScheduler(t)

	surgeries := make([]*domain.Surgery, 16)
	for i := range surgeries {
		surgeries[i] = testSurgery(fmt.Sprintf("S%02d", i+1), fmt.Sprintf("D%03d", i%5+1), float64(i%3)+1.5)
	}
	rooms := []*domain.Room{
		testRoom("R1", true, true),
		testRoom("R2", true, true),
		testRoom("R3", true, false),
	}

	// Schedule 内部已做不变量自检，这里验证高负载批次也能无错通过
	results, failed, reasons, err := s.Schedule(surgeries, rooms, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, len(surgeries), len(results)+len(failed))
	assert.Len(t, reasons, len(failed))

	for _, r := range results {
		assert.NotEmpty(t, r.StartTime, r.SurgeryID)
		assert.NotEmpty(t, r.RoomID, r.SurgeryID)
	}
}
