package scheduler

import (
	"math"

	"github.com/mednet-dev/surgery-scheduler/backend/internal/domain"
)

// FitnessEvaluator 对一个完整的手术室分配个体打分。
// 必须是 (个体, 手术, 手术室, 权重) 的纯函数：不做 I/O，不依赖隐藏状态，
// GA 每次运行会调用它数千次
type FitnessEvaluator struct {
	cfg       *Config
	surgeries []*domain.Surgery
	roomsByID map[string]*domain.Room
}

func NewFitnessEvaluator(cfg *Config, surgeries []*domain.Surgery, roomsByID map[string]*domain.Room) *FitnessEvaluator {
	return &FitnessEvaluator{cfg: cfg, surgeries: surgeries, roomsByID: roomsByID}
}

/**
 * 适应度 = max(0, 基础分 - 惩罚项)
 * 基础分 = 100 × (w_util·利用率分 + w_bal·均衡分 + w_cnt·房间数分)
 * 惩罚项:
 * 		1. 加班惩罚: Σ max(0, 时数-8)^1.5 × W_overtime
 * 		2. 医师分散惩罚: 同一医师同一天被拆到 ≥2 间手术室
 * 		3. 护士浪费惩罚: 手术室护士容量超出手术需求的部分
 */
func (f *FitnessEvaluator) Evaluate(ind *individual) float64 {
	w := f.cfg.FitnessWeights
	cleanup := f.cfg.cleanupHours()

	// 按 (手术室, 日期) 累计占用时数（含清洁）
	roomDateHours := make(map[string]float64)
	roomsUsed := make(map[string]bool)
	doctorRooms := make(map[string]map[string]bool) // (医师|日期) -> 用到的手术室集合
	wastePenalty := 0.0

	for i, g := range ind.genes {
		if g.roomID == "" {
			continue
		}
		surgery := f.surgeries[i]
		hours := surgery.Duration + cleanup

		roomDateHours[occupancyKey(g.roomID, surgery.DateKey())] += hours
		roomsUsed[g.roomID] = true

		doctorKey := occupancyKey(surgery.DoctorID, surgery.DateKey())
		if doctorRooms[doctorKey] == nil {
			doctorRooms[doctorKey] = make(map[string]bool)
		}
		doctorRooms[doctorKey][g.roomID] = true

		if room, ok := f.roomsByID[g.roomID]; ok && room.NurseCount > surgery.NurseCount {
			wastePenalty += float64(room.NurseCount-surgery.NurseCount) * hours * w.Waste
		}
	}

	if len(roomDateHours) == 0 {
		return 0
	}

	totalHours := 0.0
	overtimePenalty := 0.0
	for _, hours := range roomDateHours {
		totalHours += hours
		if hours > domain.HoursPerShift {
			overtimePenalty += math.Pow(hours-domain.HoursPerShift, 1.5) * w.Overtime
		}
	}

	idealRoomCount := int(math.Ceil(totalHours / domain.HoursPerShift))
	if idealRoomCount < 1 {
		idealRoomCount = 1
	}
	actualRoomCount := len(roomsUsed)

	base := 100 * (w.Utilization*f.utilizationScore(totalHours, actualRoomCount, idealRoomCount) +
		w.Balance*f.balanceScore(roomDateHours, actualRoomCount) +
		w.RoomCount*f.roomCountScore(actualRoomCount, idealRoomCount))

	splitPenalty := 0.0
	for _, rooms := range doctorRooms {
		if len(rooms) >= 2 {
			splitPenalty += float64(len(rooms)-1) * w.Split
		}
	}

	fitness := base - overtimePenalty - splitPenalty - wastePenalty
	if fitness < 0 {
		return 0
	}
	return fitness
}

// utilizationScore 房间开得太少按比例打折，开够了按时数利用率计
func (f *FitnessEvaluator) utilizationScore(totalHours float64, actual, ideal int) float64 {
	if actual < ideal {
		return float64(actual) / float64(ideal) * 0.5
	}
	score := totalHours / (float64(actual) * domain.HoursPerShift)
	if score > 1 {
		return 1
	}
	return score
}

// balanceScore 房间时数标准差的倒数，只用一间手术室时取 0.5
func (f *FitnessEvaluator) balanceScore(roomDateHours map[string]float64, actualRoomCount int) float64 {
	if actualRoomCount <= 1 {
		return 0.5
	}

	mean := 0.0
	for _, hours := range roomDateHours {
		mean += hours
	}
	mean /= float64(len(roomDateHours))

	variance := 0.0
	for _, hours := range roomDateHours {
		variance += math.Pow(hours-mean, 2)
	}
	variance /= float64(len(roomDateHours))

	return 1 / (1 + math.Sqrt(variance)/2)
}

func (f *FitnessEvaluator) roomCountScore(actual, ideal int) float64 {
	score := 1 - math.Abs(float64(actual-ideal))/float64(ideal)*0.5
	if score < 0 {
		return 0
	}
	return score
}
