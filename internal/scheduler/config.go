package scheduler

import (
	"fmt"
)

// FitnessWeights 第一阶段适应度的权重集合。
// 前三项是基础分的加权项，后三项是惩罚项系数
type FitnessWeights struct {
	Utilization float64 `json:"utilization"`
	Balance     float64 `json:"balance"`
	RoomCount   float64 `json:"roomCount"`
	Overtime    float64 `json:"overtime"`
	Split       float64 `json:"split"`
	Waste       float64 `json:"waste"`
}

// AHPWeights 第二阶段插入顺序的优先级权重
type AHPWeights struct {
	Duration float64 `json:"duration"`
	Fragment float64 `json:"fragment"`
	Doctor   float64 `json:"doctor"`
	Waiting  float64 `json:"waiting"`
}

// Config 排程器的全部可调参数，两个阶段共用一份，按值传入。
// 所有字段都有默认值，未设置的字段在 Normalize 中补齐。
// 三个概率用指针区分"未设置"和"显式设为 0"，0 是合法的 GA 配置
type Config struct {
	GAPopulation             int            `json:"gaPopulation"`
	GAGenerations            int            `json:"gaGenerations"`
	CrossoverRate            *float64       `json:"crossoverRate"`
	MutationRate             *float64       `json:"mutationRate"`
	ElitismRate              *float64       `json:"elitismRate"`
	TournamentSize           int            `json:"tournamentSize"`
	NoImprovementGenerations int            `json:"noImprovementGenerations"` // 连续多少代没有改进就提前停止
	FitnessWeights           FitnessWeights `json:"fitnessWeights"`
	AHPWeights               AHPWeights     `json:"ahpWeights"`
	DoctorRestBufferMinutes  int            `json:"doctorRestBufferMinutes"`
	CleanupMinutes           int            `json:"cleanupMinutes"`
	SlotGranularityMinutes   int            `json:"slotGranularityMinutes"`
	DayStartMinute           int            `json:"dayStartMinute"` // 最早候选开始时间，默认 08:00
	// DisableShiftBoundary 为 true 时关闭"无夜班手术室的手术不得在 16:00 之后结束"的检查，
	// 零值保持检查生效
	DisableShiftBoundary bool  `json:"disableShiftBoundary"`
	Seed                 int64 `json:"seed"` // 0 表示用当前时间做种子
}

func rate(v float64) *float64 {
	return &v
}

func rateString(p *float64) string {
	if p == nil {
		return "nil"
	}
	return fmt.Sprintf("%f", *p)
}

func DefaultConfig() *Config {
	return &Config{
		GAPopulation:             50,
		GAGenerations:            100,
		CrossoverRate:            rate(0.8),
		MutationRate:             rate(0.2),
		ElitismRate:              rate(0.1),
		TournamentSize:           3,
		NoImprovementGenerations: 25,
		FitnessWeights: FitnessWeights{
			Utilization: 0.35,
			Balance:     0.45,
			RoomCount:   0.20,
			Overtime:    5.0,
			Split:       3.0,
			Waste:       0.5,
		},
		AHPWeights: AHPWeights{
			Duration: 0.4,
			Fragment: 0.3,
			Doctor:   0.2,
			Waiting:  0.1,
		},
		DoctorRestBufferMinutes: 60,
		CleanupMinutes:          30,
		SlotGranularityMinutes:  30,
		DayStartMinute:          8 * 60,
	}
}

// Normalize 用默认值补齐未设置的字段，返回补齐后的副本。
// 指针字段只在为 nil 时补齐，显式设为 0 的概率原样保留
func (c *Config) Normalize() *Config {
	def := DefaultConfig()
	out := *c

	if out.GAPopulation == 0 {
		out.GAPopulation = def.GAPopulation
	}
	if out.GAGenerations == 0 {
		out.GAGenerations = def.GAGenerations
	}
	if out.CrossoverRate == nil {
		out.CrossoverRate = def.CrossoverRate
	}
	if out.MutationRate == nil {
		out.MutationRate = def.MutationRate
	}
	if out.ElitismRate == nil {
		out.ElitismRate = def.ElitismRate
	}
	if out.TournamentSize == 0 {
		out.TournamentSize = def.TournamentSize
	}
	if out.NoImprovementGenerations == 0 {
		out.NoImprovementGenerations = def.NoImprovementGenerations
	}
	if out.FitnessWeights == (FitnessWeights{}) {
		out.FitnessWeights = def.FitnessWeights
	}
	if out.AHPWeights == (AHPWeights{}) {
		out.AHPWeights = def.AHPWeights
	}
	if out.DoctorRestBufferMinutes == 0 {
		out.DoctorRestBufferMinutes = def.DoctorRestBufferMinutes
	}
	if out.CleanupMinutes == 0 {
		out.CleanupMinutes = def.CleanupMinutes
	}
	if out.SlotGranularityMinutes == 0 {
		out.SlotGranularityMinutes = def.SlotGranularityMinutes
	}
	if out.DayStartMinute == 0 {
		out.DayStartMinute = def.DayStartMinute
	}

	return &out
}

// Validate 在排程开始前拒绝非法配置，整次调用直接失败而不是跑一半
func (c *Config) Validate() error {
	if c.GAPopulation <= 0 {
		return fmt.Errorf("种群大小必须为正数: %d", c.GAPopulation)
	}
	if c.GAGenerations <= 0 {
		return fmt.Errorf("迭代次数必须为正数: %d", c.GAGenerations)
	}
	if c.CrossoverRate == nil || *c.CrossoverRate < 0 || *c.CrossoverRate > 1 {
		return fmt.Errorf("交叉概率必须在 [0, 1] 内: %v", rateString(c.CrossoverRate))
	}
	if c.MutationRate == nil || *c.MutationRate < 0 || *c.MutationRate > 1 {
		return fmt.Errorf("变异概率必须在 [0, 1] 内: %v", rateString(c.MutationRate))
	}
	if c.ElitismRate == nil || *c.ElitismRate < 0 || *c.ElitismRate >= 1 {
		return fmt.Errorf("精英比例必须在 [0, 1) 内: %v", rateString(c.ElitismRate))
	}
	if c.TournamentSize <= 0 {
		return fmt.Errorf("锦标赛大小必须为正数: %d", c.TournamentSize)
	}

	for name, w := range map[string]float64{
		"utilization": c.FitnessWeights.Utilization,
		"balance":     c.FitnessWeights.Balance,
		"roomCount":   c.FitnessWeights.RoomCount,
		"overtime":    c.FitnessWeights.Overtime,
		"split":       c.FitnessWeights.Split,
		"waste":       c.FitnessWeights.Waste,
		"duration":    c.AHPWeights.Duration,
		"fragment":    c.AHPWeights.Fragment,
		"doctor":      c.AHPWeights.Doctor,
		"waiting":     c.AHPWeights.Waiting,
	} {
		if w < 0 {
			return fmt.Errorf("权重 %s 不能为负数: %f", name, w)
		}
	}

	if c.DoctorRestBufferMinutes < 0 {
		return fmt.Errorf("医师休息缓冲不能为负数: %d", c.DoctorRestBufferMinutes)
	}
	if c.CleanupMinutes <= 0 {
		return fmt.Errorf("清洁时间必须为正数: %d", c.CleanupMinutes)
	}
	if c.SlotGranularityMinutes <= 0 {
		return fmt.Errorf("时段粒度必须为正数: %d", c.SlotGranularityMinutes)
	}
	if c.DayStartMinute < 0 || c.DayStartMinute >= minutesPerDay {
		return fmt.Errorf("每日开始时间超出范围: %d", c.DayStartMinute)
	}

	return nil
}

// cleanupHours 清洁时间换算为小时，适应度计算会频繁用到
func (c *Config) cleanupHours() float64 {
	return float64(c.CleanupMinutes) / 60
}
