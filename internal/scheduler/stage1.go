package scheduler

import (
	"log/slog"
	"math/rand"
	"sort"

	"github.com/mednet-dev/surgery-scheduler/backend/internal/domain"
)

// packingTarget 建构启发式的单房单日装箱目标区间（小时）
const (
	packingTargetLow  = 7.5
	packingTargetHigh = 8.0
)

// Stage1Allocator 第一阶段：建构启发式产生初始分配，再用遗传算法优化。
// 优化目标是全局房时利用率、负载均衡、避免加班和医师集中度（见 FitnessEvaluator）。
// 固定随机种子时结果是确定的
type Stage1Allocator struct {
	cfg       *Config
	surgeries []*domain.Surgery
	rooms     []*domain.Room
	roomsByID map[string]*domain.Room
	eligible  [][]*domain.Room // 与手术列表同序的候选手术室（类型和护士数匹配，保持输入顺序）
	evaluator *FitnessEvaluator
	rng       *rand.Rand
}

func NewStage1Allocator(cfg *Config, surgeries []*domain.Surgery, rooms []*domain.Room, rng *rand.Rand) *Stage1Allocator {
	roomsByID := make(map[string]*domain.Room, len(rooms))
	for _, room := range rooms {
		roomsByID[room.ID] = room
	}

	eligible := make([][]*domain.Room, len(surgeries))
	for i, surgery := range surgeries {
		for _, room := range rooms {
			if room.RoomType == surgery.RoomType && room.NurseCount >= surgery.NurseCount {
				eligible[i] = append(eligible[i], room)
			}
		}
	}

	return &Stage1Allocator{
		cfg:       cfg,
		surgeries: surgeries,
		rooms:     rooms,
		roomsByID: roomsByID,
		eligible:  eligible,
		evaluator: NewFitnessEvaluator(cfg, surgeries, roomsByID),
		rng:       rng,
	}
}

// Allocate 执行完整的第一阶段，返回历代最优个体对应的分配方案
func (a *Stage1Allocator) Allocate() *Allocation {
	if len(a.surgeries) == 0 {
		return &Allocation{Rooms: map[string]string{}, SuggestedShifts: map[string]domain.Shift{}}
	}

	initial := a.constructive()
	best := a.evolve(initial)
	return best.toAllocation()
}

// constructive 建构启发式：按时长降序逐台分配，
// 让每间手术室的单日负载尽量贴近 7.5~8 小时的装箱目标，
// 优先复用已经部分填充的手术室而不是新开一间
func (a *Stage1Allocator) constructive() *individual {
	order := make([]int, len(a.surgeries))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(x, y int) bool {
		sx, sy := a.surgeries[order[x]], a.surgeries[order[y]]
		if sx.Duration != sy.Duration {
			return sx.Duration > sy.Duration
		}
		return sx.SurgeryID < sy.SurgeryID
	})

	genes := make([]gene, len(a.surgeries))
	loads := make(map[string]float64) // (手术室, 日期) -> 已分配时数

	for _, idx := range order {
		surgery := a.surgeries[idx]
		genes[idx] = gene{surgeryID: surgery.SurgeryID, suggestedShift: domain.ShiftMorning}

		candidates := a.eligible[idx]
		if len(candidates) == 0 {
			continue
		}

		required := surgery.Duration + a.cfg.cleanupHours()
		var best *domain.Room
		bestDist := 0.0
		bestFilled := false

		for _, room := range candidates {
			load := loads[occupancyKey(room.ID, surgery.DateKey())]
			newLoad := load + required
			if newLoad > room.DailyCapacityHours() {
				continue
			}

			dist := packingDistance(newLoad)
			filled := load > 0
			if best == nil || dist < bestDist || (dist == bestDist && filled && !bestFilled) {
				best = room
				bestDist = dist
				bestFilled = filled
			}
		}

		// 所有候选都会超出物理班次容量时，退而求其次选负载最低的，
		// 同负载时优先有夜班的手术室
		if best == nil {
			for _, room := range candidates {
				load := loads[occupancyKey(room.ID, surgery.DateKey())]
				if best == nil {
					best = room
					bestDist = load
					continue
				}
				if load < bestDist || (load == bestDist && room.NightShift && !best.NightShift) {
					best = room
					bestDist = load
				}
			}
		}

		genes[idx].roomID = best.ID
		loads[occupancyKey(best.ID, surgery.DateKey())] += required
	}

	ind := &individual{genes: genes}
	ind.fitness = a.evaluator.Evaluate(ind)
	return ind
}

// packingDistance 距离 7.5~8 小时目标区间的偏差，落在区间内为 0
func packingDistance(load float64) float64 {
	switch {
	case load < packingTargetLow:
		return packingTargetLow - load
	case load > packingTargetHigh:
		return load - packingTargetHigh
	default:
		return 0
	}
}

// evolve 遗传算法主循环：精英保留 + 锦标赛选择 + 单点交叉 + 变异，
// 连续 NoImprovementGenerations 代没有新的历史最优就提前停止。
// 历史最优同分时保留先出现的个体
func (a *Stage1Allocator) evolve(initial *individual) *individual {
	popSize := a.cfg.GAPopulation

	pop := make([]*individual, popSize)
	pop[0] = initial.clone()
	for i := 1; i < popSize; i++ {
		pop[i] = a.randomIndividual(initial)
		pop[i].fitness = a.evaluator.Evaluate(pop[i])
	}

	best := a.argmax(pop).clone()
	staleGenerations := 0

	for gen := 0; gen < a.cfg.GAGenerations; gen++ {
		// 保留精英
		sort.SliceStable(pop, func(i, j int) bool {
			return pop[i].fitness > pop[j].fitness
		})

		eliteCount := int(float64(popSize) * (*a.cfg.ElitismRate))
		newPop := make([]*individual, 0, popSize)
		for i := 0; i < eliteCount && i < popSize; i++ {
			newPop = append(newPop, pop[i].clone())
		}

		// 剩余名额由锦标赛选择产生，再做交叉和变异
		for len(newPop) < popSize {
			p1 := a.tournament(pop)
			p2 := a.tournament(pop)

			if a.rng.Float64() < *a.cfg.CrossoverRate {
				a.singlePointCrossover(p1, p2)
			}

			a.mutate(p1)
			a.mutate(p2)

			newPop = append(newPop, p1)
			if len(newPop) < popSize {
				newPop = append(newPop, p2)
			}
		}

		pop = newPop
		for _, ind := range pop {
			ind.fitness = a.evaluator.Evaluate(ind)
		}

		genBest := a.argmax(pop)
		if genBest.fitness > best.fitness {
			best = genBest.clone()
			staleGenerations = 0
			slog.Debug("第一阶段出现新的最优解", "generation", gen, "fitness", best.fitness)
		} else {
			staleGenerations++
			if staleGenerations >= a.cfg.NoImprovementGenerations {
				slog.Debug("第一阶段提前收敛", "generation", gen, "fitness", best.fitness)
				break
			}
		}
	}

	return best
}

// randomIndividual 随机个体，每个基因有一定概率直接沿用初始解
func (a *Stage1Allocator) randomIndividual(initial *individual) *individual {
	genes := make([]gene, len(a.surgeries))
	for i, surgery := range a.surgeries {
		genes[i] = gene{surgeryID: surgery.SurgeryID, suggestedShift: domain.ShiftMorning}

		if a.rng.Float64() < 0.3 {
			genes[i] = initial.genes[i]
			continue
		}

		if candidates := a.eligible[i]; len(candidates) > 0 {
			genes[i].roomID = candidates[a.rng.Intn(len(candidates))].ID
			genes[i].suggestedShift = a.randomSuggestedShift()
		}
	}
	return &individual{genes: genes}
}

func (a *Stage1Allocator) randomSuggestedShift() domain.Shift {
	if a.rng.Float64() < 0.5 {
		return domain.ShiftMorning
	}
	return domain.ShiftNight
}

// tournament 锦标赛选择：随机取 TournamentSize 个个体，返回其中最优者的拷贝
func (a *Stage1Allocator) tournament(pop []*individual) *individual {
	winner := pop[a.rng.Intn(len(pop))]
	for i := 1; i < a.cfg.TournamentSize; i++ {
		contender := pop[a.rng.Intn(len(pop))]
		if contender.fitness > winner.fitness {
			winner = contender
		}
	}
	return winner.clone()
}

// singlePointCrossover 交叉点在基因序列上均匀选取，原地交换两个个体的后半段
func (a *Stage1Allocator) singlePointCrossover(p1, p2 *individual) {
	if len(p1.genes) < 2 {
		return
	}

	point := a.rng.Intn(len(p1.genes)-1) + 1
	for i := point; i < len(p1.genes); i++ {
		p1.genes[i], p2.genes[i] = p2.genes[i], p1.genes[i]
	}
}

// mutate 每个基因独立地以 MutationRate 概率重掷到一间合法手术室，
// 其中一半概率偏向当前个体中负载最低的候选
func (a *Stage1Allocator) mutate(ind *individual) {
	var loads map[string]float64

	for i := range ind.genes {
		if a.rng.Float64() >= *a.cfg.MutationRate {
			continue
		}

		candidates := a.eligible[i]
		if len(candidates) == 0 {
			continue
		}

		if a.rng.Float64() < 0.5 {
			if loads == nil {
				loads = a.individualLoads(ind)
			}
			ind.genes[i].roomID = a.leastLoaded(candidates, a.surgeries[i], loads).ID
		} else {
			ind.genes[i].roomID = candidates[a.rng.Intn(len(candidates))].ID
		}
		ind.genes[i].suggestedShift = a.randomSuggestedShift()
	}
}

func (a *Stage1Allocator) individualLoads(ind *individual) map[string]float64 {
	loads := make(map[string]float64)
	for i, g := range ind.genes {
		if g.roomID == "" {
			continue
		}
		loads[occupancyKey(g.roomID, a.surgeries[i].DateKey())] += a.surgeries[i].Duration + a.cfg.cleanupHours()
	}
	return loads
}

func (a *Stage1Allocator) leastLoaded(candidates []*domain.Room, surgery *domain.Surgery, loads map[string]float64) *domain.Room {
	best := candidates[0]
	bestLoad := loads[occupancyKey(best.ID, surgery.DateKey())]
	for _, room := range candidates[1:] {
		if load := loads[occupancyKey(room.ID, surgery.DateKey())]; load < bestLoad {
			best = room
			bestLoad = load
		}
	}
	return best
}

func (a *Stage1Allocator) argmax(pop []*individual) *individual {
	best := pop[0]
	for _, ind := range pop[1:] {
		if ind.fitness > best.fitness {
			best = ind
		}
	}
	return best
}
