package trigger

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mednet-dev/surgery-scheduler/backend/internal/domain"
)

// 跨副本运行锁的 redis key
const runLockKey = "scheduling:run_lock"

// Runner 执行一次排程运行，由调用方注入（通常包装 scheduler.Schedule 加上持久化）。
// cause 取值 threshold / timer / manual，写入运行记录
type Runner func(ctx context.Context, cause string, surgeries []*domain.Surgery) error

// Trigger 维护待排手术队列，在数量达到阈值或最早一台手术等待超时时触发一次排程运行。
// 运行在调用 Enqueue / Tick 的 goroutine 中同步执行，Trigger 自身不持有后台线程；
// 定时调用 Tick 的 goroutine 由 cmd/api 负责。
// 同一时刻最多只有一次运行：本进程内用原子标志保证，跨副本用 redis SetNX 锁保证。
type Trigger struct {
	countThreshold int
	ageThreshold   time.Duration
	lockExpiration time.Duration
	runner         Runner
	redisClient    *redis.Client // 为 nil 时只做进程内互斥

	inFlight atomic.Bool

	mu       sync.Mutex
	pending  []*domain.Surgery
	oldestAt time.Time
}

func New(countThreshold int, ageThreshold, lockExpiration time.Duration, runner Runner, rdb *redis.Client) *Trigger {
	return &Trigger{
		countThreshold: countThreshold,
		ageThreshold:   ageThreshold,
		lockExpiration: lockExpiration,
		runner:         runner,
		redisClient:    rdb,
	}
}

// Enqueue 把一台手术加入待排队列，队列长度达到阈值时立刻触发一次运行
func (t *Trigger) Enqueue(ctx context.Context, surgery *domain.Surgery) {
	t.mu.Lock()
	if len(t.pending) == 0 {
		t.oldestAt = time.Now()
	}
	t.pending = append(t.pending, surgery)
	count := len(t.pending)
	t.mu.Unlock()

	if count >= t.countThreshold {
		t.tryRun(ctx, "threshold")
	}
}

// Tick 检查最早入队的手术是否等待超时，超时则触发一次运行
func (t *Trigger) Tick(ctx context.Context) {
	t.mu.Lock()
	expired := len(t.pending) > 0 && time.Since(t.oldestAt) >= t.ageThreshold
	t.mu.Unlock()

	if expired {
		t.tryRun(ctx, "timer")
	}
}

// RunNow 不检查任何阈值立即触发一次运行，供手动触发接口使用
func (t *Trigger) RunNow(ctx context.Context) {
	t.tryRun(ctx, "manual")
}

// PendingCount 返回当前待排队列长度
func (t *Trigger) PendingCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending)
}

// Running 返回本进程是否有运行在进行中
func (t *Trigger) Running() bool {
	return t.inFlight.Load()
}

func (t *Trigger) tryRun(ctx context.Context, cause string) {
	// 已有运行在进行中时忽略本次触发，队列继续累积等待下一次运行
	if !t.inFlight.CompareAndSwap(false, true) {
		slog.Info("已有排程运行在进行中，忽略本次触发", "cause", cause)
		return
	}
	defer t.inFlight.Store(false)

	if t.redisClient != nil {
		ok, err := t.redisClient.SetNX(ctx, runLockKey, time.Now().Format(time.RFC3339), t.lockExpiration).Result()
		if err != nil {
			slog.Error("获取排程运行锁失败", "error", err)
			return
		}
		if !ok {
			slog.Info("其他副本正在运行排程，忽略本次触发", "cause", cause)
			return
		}
		defer func() {
			if err := t.redisClient.Del(context.WithoutCancel(ctx), runLockKey).Err(); err != nil {
				slog.Error("释放排程运行锁失败", "error", err)
			}
		}()
	}

	t.mu.Lock()
	batch := t.pending
	t.pending = nil
	t.mu.Unlock()

	if len(batch) == 0 {
		return
	}

	slog.Info("触发排程运行", "cause", cause, "count", len(batch))
	if err := t.runner(ctx, cause, batch); err != nil {
		slog.Error("排程运行失败，手术重新入队", "error", err, "count", len(batch))
		// 失败的批次放回队首，等待下一次触发重试
		t.mu.Lock()
		if len(t.pending) == 0 {
			t.oldestAt = time.Now().Add(-t.ageThreshold)
		}
		t.pending = append(batch, t.pending...)
		t.mu.Unlock()
	}
}
