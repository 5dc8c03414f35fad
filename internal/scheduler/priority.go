package scheduler

import (
	"time"

	"github.com/mednet-dev/surgery-scheduler/backend/internal/domain"
)

// PriorityScorer 计算手术的 AHP 优先分数，用于第二阶段的插入顺序。
// 四个因子都落在 [0, 1] 内，加权和有界可比：
// 短手术、医师空闲多、等待久的手术先插入
type PriorityScorer struct {
	cfg     *Config
	rosters domain.DoctorRoster
	now     time.Time
}

func NewPriorityScorer(cfg *Config, rosters domain.DoctorRoster) *PriorityScorer {
	return &PriorityScorer{cfg: cfg, rosters: rosters, now: time.Now()}
}

func (p *PriorityScorer) Score(surgery *domain.Surgery) float64 {
	w := p.cfg.AHPWeights

	return w.Duration*p.durationScore(surgery) +
		w.Fragment*p.fragmentScore(surgery) +
		w.Doctor*p.doctorScore(surgery) +
		w.Waiting*p.waitingScore(surgery)
}

// durationScore 短手术优先
func (p *PriorityScorer) durationScore(surgery *domain.Surgery) float64 {
	return 1 / (1 + surgery.Duration)
}

// fragmentScore 碎片填补能力：占用总时长（含清洁）越短，
// 越容易塞进班表的零碎空档
func (p *PriorityScorer) fragmentScore(surgery *domain.Surgery) float64 {
	total := surgery.Duration + p.cfg.cleanupHours()
	switch {
	case total <= 2:
		return 1.0
	case total <= 4:
		return 0.75
	case total <= 6:
		return 0.5
	default:
		return 0.25
	}
}

// doctorScore 医师可用性：按周排班表折算当天的可用班次比例，
// 没有排班表时取 0.8
func (p *PriorityScorer) doctorScore(surgery *domain.Surgery) float64 {
	scheduleType, ok := p.rosters.TypeFor(surgery.DoctorID, surgery.SurgeryDate)
	if !ok {
		return 0.8
	}

	switch scheduleType {
	case domain.ScheduleTypeA:
		return 1.0
	case domain.ScheduleTypeB, domain.ScheduleTypeC:
		return 0.5
	default:
		return 0.0
	}
}

// waitingScore 等待天数按 30 天封顶归一化，没有创建时间时取 0.5
func (p *PriorityScorer) waitingScore(surgery *domain.Surgery) float64 {
	if surgery.CreatedAt == nil {
		return 0.5
	}

	waitingDays := p.now.Sub(*surgery.CreatedAt).Hours() / 24
	if waitingDays < 0 {
		waitingDays = 0
	}

	score := waitingDays / 30
	if score > 1 {
		score = 1
	}
	return score
}
