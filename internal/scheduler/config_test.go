package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeFillsUnsetFields(t *testing.T) {
	cfg := (&Config{GAPopulation: 20, Seed: 7}).Normalize()
	def := DefaultConfig()

	assert.Equal(t, 20, cfg.GAPopulation)
	assert.Equal(t, int64(7), cfg.Seed)
	assert.Equal(t, def.GAGenerations, cfg.GAGenerations)
	require.NotNil(t, cfg.CrossoverRate)
	assert.Equal(t, *def.CrossoverRate, *cfg.CrossoverRate)
	assert.Equal(t, def.FitnessWeights, cfg.FitnessWeights)
	assert.Equal(t, def.AHPWeights, cfg.AHPWeights)
	assert.Equal(t, def.CleanupMinutes, cfg.CleanupMinutes)
	assert.Equal(t, def.SlotGranularityMinutes, cfg.SlotGranularityMinutes)
	assert.Equal(t, def.DayStartMinute, cfg.DayStartMinute)

	// 部分配置不会意外关闭班次边界检查
	assert.False(t, cfg.DisableShiftBoundary)
}

func TestNormalizeKeepsExplicitZeroRates(t *testing.T) {
	cfg := (&Config{MutationRate: rate(0), ElitismRate: rate(0)}).Normalize()

	require.NotNil(t, cfg.MutationRate)
	assert.Equal(t, 0.0, *cfg.MutationRate)
	require.NotNil(t, cfg.ElitismRate)
	assert.Equal(t, 0.0, *cfg.ElitismRate)
	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	tests := []struct {
		name    string
		mutate  func(*Config)
		message string
	}{
		{"种群大小为零", func(c *Config) { c.GAPopulation = 0 }, "种群大小"},
		{"迭代次数为负", func(c *Config) { c.GAGenerations = -1 }, "迭代次数"},
		{"交叉概率越界", func(c *Config) { c.CrossoverRate = rate(1.5) }, "交叉概率"},
		{"交叉概率缺失", func(c *Config) { c.CrossoverRate = nil }, "交叉概率"},
		{"变异概率越界", func(c *Config) { c.MutationRate = rate(-0.1) }, "变异概率"},
		{"精英比例为一", func(c *Config) { c.ElitismRate = rate(1.0) }, "精英比例"},
		{"锦标赛大小为零", func(c *Config) { c.TournamentSize = 0 }, "锦标赛大小"},
		{"负权重", func(c *Config) { c.AHPWeights.Waiting = -0.1 }, "权重"},
		{"负休息缓冲", func(c *Config) { c.DoctorRestBufferMinutes = -1 }, "休息缓冲"},
		{"清洁时间为零", func(c *Config) { c.CleanupMinutes = 0 }, "清洁时间"},
		{"时段粒度为零", func(c *Config) { c.SlotGranularityMinutes = 0 }, "时段粒度"},
		{"开始时间越界", func(c *Config) { c.DayStartMinute = 24 * 60 }, "开始时间"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}
