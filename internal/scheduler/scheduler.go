package scheduler

import (
	"errors"
	"log/slog"
	"math/rand"
	"time"

	"github.com/mednet-dev/surgery-scheduler/backend/internal/domain"
	"github.com/mednet-dev/surgery-scheduler/backend/internal/utils"
)

// Scheduler 两阶段手术排程器。
// 第一阶段用遗传算法决定每台手术用哪间手术室，
// 第二阶段按优先级贪婪安排具体时段并在过晚时换房救援。
// 一次调用内部是单线程的，固定随机种子时结果确定
type Scheduler struct {
	cfg *Config
}

// New 校验配置并创建排程器，非法配置在运行前整体拒绝
func New(cfg *Config) (*Scheduler, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	} else {
		cfg = cfg.Normalize()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Scheduler{cfg: cfg}, nil
}

func (s *Scheduler) rng() *rand.Rand {
	seed := s.cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// AllocateRooms 单独执行第一阶段，用于诊断和测试
func (s *Scheduler) AllocateRooms(surgeries []*domain.Surgery, rooms []*domain.Room) (*Allocation, error) {
	if len(surgeries) == 0 {
		return &Allocation{Rooms: map[string]string{}, SuggestedShifts: map[string]domain.Shift{}}, nil
	}
	if len(rooms) == 0 {
		return nil, errors.New("手术列表非空时手术室列表不能为空")
	}

	return NewStage1Allocator(s.cfg, surgeries, rooms, s.rng()).Allocate(), nil
}

// Schedule 执行完整的两阶段排程。
// 返回成功排程列表、失败手术列表和按手术 ID 索引的失败原因。
// existing 中的已有排程会预先占用手术室时间线；rosters 可为 nil
func (s *Scheduler) Schedule(
	surgeries []*domain.Surgery,
	rooms []*domain.Room,
	existing []*domain.ScheduleResult,
	rosters domain.DoctorRoster,
) ([]*domain.ScheduleResult, []*domain.Surgery, map[string]string, error) {
	if len(surgeries) == 0 {
		return []*domain.ScheduleResult{}, []*domain.Surgery{}, map[string]string{}, nil
	}
	if len(rooms) == 0 {
		return nil, nil, nil, errors.New("手术列表非空时手术室列表不能为空")
	}

	started := time.Now()
	slog.Info("开始排程", "surgeries", len(surgeries), "rooms", len(rooms), "existing", len(existing))

	// 第一阶段：手术室分配
	alloc := NewStage1Allocator(s.cfg, surgeries, rooms, s.rng()).Allocate()

	// 第二阶段：时段安排
	occupancy := NewResourceOccupancy()
	if err := occupancy.SeedExisting(existing); err != nil {
		return nil, nil, nil, err
	}

	engine := NewConstraintEngine(s.cfg, rosters)
	scorer := NewPriorityScorer(s.cfg, rosters)
	placer := NewStage2Placer(s.cfg, engine, scorer, rooms, occupancy)

	results, failed, failureReasons := placer.Place(surgeries, alloc)

	// 对最终结果做一次不变量校验，违反约束说明实现有误
	if err := utils.ValidateScheduleResults(results, surgeries, s.cfg.CleanupMinutes, s.cfg.DoctorRestBufferMinutes); err != nil {
		return nil, nil, nil, err
	}

	slog.Info("排程完成",
		"success", len(results),
		"failed", len(failed),
		"duration", time.Since(started),
	)

	return results, failed, failureReasons, nil
}
