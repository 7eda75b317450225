package planner

import (
	"sort"

	"github.com/LENAX/plan-engine/pkg/core/block"
)

// snapshotIndex 单次运行内的图索引
// 前置关系用 id -> 前置id 表达，后续列表是由前置关系一次性派生的反向索引
type snapshotIndex struct {
	byID       map[int64]*block.Block
	pending    []*block.Block    // 未完成的Block，按ID升序
	successors map[int64][]int64 // id -> 未完成后续工序ID（升序）
}

func newSnapshotIndex(blocks []*block.Block) *snapshotIndex {
	idx := &snapshotIndex{
		byID:       make(map[int64]*block.Block, len(blocks)),
		pending:    make([]*block.Block, 0, len(blocks)),
		successors: make(map[int64][]int64),
	}
	for _, b := range blocks {
		idx.byID[b.ID] = b
		if !b.Completed {
			idx.pending = append(idx.pending, b)
		}
	}
	sort.Slice(idx.pending, func(i, j int) bool { return idx.pending[i].ID < idx.pending[j].ID })

	for _, b := range idx.pending {
		if b.PredecessorID != nil {
			pred := *b.PredecessorID
			idx.successors[pred] = append(idx.successors[pred], b.ID)
		}
	}
	return idx
}

// resetPlans 清空所有未完成Block的旧计划时间
func (idx *snapshotIndex) resetPlans() {
	for _, b := range idx.pending {
		b.ClearPlan()
	}
}

// unscheduled 返回未排程的未完成Block ID
func (idx *snapshotIndex) unscheduled(done map[int64]bool) []int64 {
	ids := make([]int64, 0)
	for _, b := range idx.pending {
		if !done[b.ID] {
			ids = append(ids, b.ID)
		}
	}
	return ids
}
