package scheduler

import "github.com/mednet-dev/surgery-scheduler/backend/internal/domain"

// gene 表示对某台手术的手术室分配决策
type gene struct {
	surgeryID      string
	roomID         string // 为空表示没有符合条件的手术室
	suggestedShift domain.Shift
}

// individual 第一阶段 GA 的个体：每台手术一个基因，与手术列表同序
type individual struct {
	genes   []gene
	fitness float64
}

// clone 深拷贝，防止繁殖过程中精英个体的基因被修改
func (ind *individual) clone() *individual {
	genes := make([]gene, len(ind.genes))
	copy(genes, ind.genes)
	return &individual{genes: genes, fitness: ind.fitness}
}

// Allocation 第一阶段的输出：手术到手术室的映射，
// 附带非约束性的建议班次和 GA 比较用的分数
type Allocation struct {
	Rooms           map[string]string       `json:"rooms"`
	SuggestedShifts map[string]domain.Shift `json:"suggestedShifts"`
	Score           float64                 `json:"score"`
}

// RoomFor 查询手术被分配到的手术室
func (a *Allocation) RoomFor(surgeryID string) (string, bool) {
	roomID, ok := a.Rooms[surgeryID]
	if !ok || roomID == "" {
		return "", false
	}
	return roomID, true
}

func (ind *individual) toAllocation() *Allocation {
	alloc := &Allocation{
		Rooms:           make(map[string]string, len(ind.genes)),
		SuggestedShifts: make(map[string]domain.Shift, len(ind.genes)),
		Score:           ind.fitness,
	}
	for _, g := range ind.genes {
		if g.roomID == "" {
			continue
		}
		alloc.Rooms[g.surgeryID] = g.roomID
		alloc.SuggestedShifts[g.surgeryID] = g.suggestedShift
	}
	return alloc
}
