package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mednet-dev/surgery-scheduler/backend/internal/domain"
)

func TestPriorityScoreWeightedSum(t *testing.T) {
	scorer := NewPriorityScorer(DefaultConfig(), nil)
	surgery := testSurgery("S1", "D001", 1.0)

	// 时长 0.5、碎片 1.0、无排班表 0.8、无创建时间 0.5
	want := 0.4*0.5 + 0.3*1.0 + 0.2*0.8 + 0.1*0.5
	assert.InDelta(t, want, scorer.Score(surgery), 1e-9)
}

func TestPriorityFragmentScore(t *testing.T) {
	scorer := NewPriorityScorer(DefaultConfig(), nil)

	// 占用总时长 = 手术时长 + 0.5 小时清洁
	tests := []struct {
		duration float64
		want     float64
	}{
		{1.5, 1.0},
		{3.5, 0.75},
		{5.5, 0.5},
		{7.0, 0.25},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, scorer.fragmentScore(testSurgery("S1", "D001", tt.duration)))
	}
}

func TestPriorityDoctorScore(t *testing.T) {
	tests := []struct {
		scheduleType domain.ScheduleType
		want         float64
	}{
		{domain.ScheduleTypeA, 1.0},
		{domain.ScheduleTypeB, 0.5},
		{domain.ScheduleTypeC, 0.5},
		{domain.ScheduleTypeD, 0.0},
		{domain.ScheduleTypeE, 0.0},
	}

	for _, tt := range tests {
		scorer := NewPriorityScorer(DefaultConfig(), rosterFor("D001", tt.scheduleType))
		assert.Equal(t, tt.want, scorer.doctorScore(testSurgery("S1", "D001", 2.0)))
	}

	scorer := NewPriorityScorer(DefaultConfig(), nil)
	assert.Equal(t, 0.8, scorer.doctorScore(testSurgery("S1", "D001", 2.0)))
}

func TestPriorityWaitingScore(t *testing.T) {
	scorer := NewPriorityScorer(DefaultConfig(), nil)

	surgery := testSurgery("S1", "D001", 2.0)
	assert.Equal(t, 0.5, scorer.waitingScore(surgery))

	created := time.Now().Add(-15 * 24 * time.Hour)
	surgery.CreatedAt = &created
	assert.InDelta(t, 0.5, scorer.waitingScore(surgery), 0.01)

	// 等待 30 天以上封顶为 1
	longAgo := time.Now().Add(-90 * 24 * time.Hour)
	surgery.CreatedAt = &longAgo
	assert.Equal(t, 1.0, scorer.waitingScore(surgery))
}

func TestPriorityShorterSurgeryFirst(t *testing.T) {
	scorer := NewPriorityScorer(DefaultConfig(), nil)

	short := testSurgery("S1", "D001", 1.0)
	long := testSurgery("S2", "D001", 6.0)
	assert.Greater(t, scorer.Score(short), scorer.Score(long))
}
