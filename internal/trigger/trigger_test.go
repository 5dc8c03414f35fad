package trigger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mednet-dev/surgery-scheduler/backend/internal/domain"
)

// recordingRunner 记录每次运行收到的批次，可注入失败
type recordingRunner struct {
	mu      sync.Mutex
	causes  []string
	batches [][]*domain.Surgery
	err     error
}

func (r *recordingRunner) run(ctx context.Context, cause string, surgeries []*domain.Surgery) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.causes = append(r.causes, cause)
	r.batches = append(r.batches, surgeries)
	return r.err
}

func (r *recordingRunner) runCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.causes)
}

func pendingSurgery(id string) *domain.Surgery {
	return &domain.Surgery{
		SurgeryID:   id,
		DoctorID:    "D001",
		RoomType:    "普外",
		SurgeryDate: time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC),
		Duration:    2.0,
		NurseCount:  2,
		Status:      domain.SurgeryStatusPending,
	}
}

func TestEnqueueTriggersAtThreshold(t *testing.T) {
	runner := &recordingRunner{}
	trig := New(3, time.Hour, time.Minute, runner.run, nil)
	ctx := context.Background()

	trig.Enqueue(ctx, pendingSurgery("S1"))
	trig.Enqueue(ctx, pendingSurgery("S2"))
	assert.Equal(t, 0, runner.runCount())
	assert.Equal(t, 2, trig.PendingCount())

	trig.Enqueue(ctx, pendingSurgery("S3"))
	require.Equal(t, 1, runner.runCount())
	assert.Equal(t, "threshold", runner.causes[0])
	assert.Len(t, runner.batches[0], 3)
	assert.Equal(t, 0, trig.PendingCount())
}

func TestTickTriggersOnAge(t *testing.T) {
	runner := &recordingRunner{}
	trig := New(100, 0, time.Minute, runner.run, nil)
	ctx := context.Background()

	// 队列为空时 Tick 不触发
	trig.Tick(ctx)
	assert.Equal(t, 0, runner.runCount())

	trig.Enqueue(ctx, pendingSurgery("S1"))
	trig.Tick(ctx)
	require.Equal(t, 1, runner.runCount())
	assert.Equal(t, "timer", runner.causes[0])
	assert.Len(t, runner.batches[0], 1)
}

func TestTickRespectsAgeThreshold(t *testing.T) {
	runner := &recordingRunner{}
	trig := New(100, time.Hour, time.Minute, runner.run, nil)
	ctx := context.Background()

	trig.Enqueue(ctx, pendingSurgery("S1"))
	trig.Tick(ctx)
	assert.Equal(t, 0, runner.runCount())
	assert.Equal(t, 1, trig.PendingCount())
}

func TestRunNowBypassesThresholds(t *testing.T) {
	runner := &recordingRunner{}
	trig := New(100, time.Hour, time.Minute, runner.run, nil)
	ctx := context.Background()

	trig.Enqueue(ctx, pendingSurgery("S1"))
	trig.RunNow(ctx)
	require.Equal(t, 1, runner.runCount())
	assert.Equal(t, "manual", runner.causes[0])

	// 队列为空时立即触发也不调用 runner
	trig.RunNow(ctx)
	assert.Equal(t, 1, runner.runCount())
}

func TestFailedRunRequeuesBatch(t *testing.T) {
	runner := &recordingRunner{err: errors.New("数据库连接失败")}
	trig := New(2, time.Hour, time.Minute, runner.run, nil)
	ctx := context.Background()

	trig.Enqueue(ctx, pendingSurgery("S1"))
	trig.Enqueue(ctx, pendingSurgery("S2"))
	require.Equal(t, 1, runner.runCount())
	assert.Equal(t, 2, trig.PendingCount())

	// 失败批次回到队首，重试时保持原顺序
	runner.mu.Lock()
	runner.err = nil
	runner.mu.Unlock()

	trig.RunNow(ctx)
	require.Equal(t, 2, runner.runCount())
	require.Len(t, runner.batches[1], 2)
	assert.Equal(t, "S1", runner.batches[1][0].SurgeryID)
	assert.Equal(t, "S2", runner.batches[1][1].SurgeryID)
	assert.Equal(t, 0, trig.PendingCount())
}

func TestInFlightGuardIgnoresReentrantTrigger(t *testing.T) {
	var trig *Trigger
	nested := 0

	runner := func(ctx context.Context, cause string, surgeries []*domain.Surgery) error {
		// 运行期间再触发应被忽略，不会递归执行
		nested++
		if nested == 1 {
			trig.Enqueue(ctx, pendingSurgery("S9"))
			trig.RunNow(ctx)
		}
		return nil
	}

	trig = New(1, time.Hour, time.Minute, runner, nil)
	trig.Enqueue(context.Background(), pendingSurgery("S1"))

	assert.Equal(t, 1, nested)
	assert.Equal(t, 1, trig.PendingCount())
	assert.False(t, trig.Running())
}

func TestConcurrentEnqueueRunsOnce(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	runs := 0
	var mu sync.Mutex

	runner := func(ctx context.Context, cause string, surgeries []*domain.Surgery) error {
		mu.Lock()
		runs++
		first := runs == 1
		mu.Unlock()
		if first {
			close(started)
			<-release
		}
		return nil
	}

	trig := New(1, time.Hour, time.Minute, runner, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		trig.Enqueue(ctx, pendingSurgery("S1"))
	}()

	<-started
	assert.True(t, trig.Running())

	// 运行期间的触发被忽略，手术留在队列里
	for i := 0; i < 5; i++ {
		trig.Enqueue(ctx, pendingSurgery(fmt.Sprintf("S%d", i+2)))
	}
	close(release)
	wg.Wait()

	mu.Lock()
	assert.Equal(t, 1, runs)
	mu.Unlock()
	assert.Equal(t, 5, trig.PendingCount())
}
