// Package dag 工序前置关系图：循环依赖校验与整体一致性审计
package dag

import (
	"github.com/LENAX/plan-engine/pkg/core/block"
)

// PredecessorLookup 前置关系只读视图（对外导出）
type PredecessorLookup interface {
	// Predecessor 返回id的前置工序
	// exists: id是否存在于图中；hasPred: 是否有前置工序
	Predecessor(id int64) (predID int64, hasPred bool, exists bool)
	// Len 图中工序数量
	Len() int
}

// Links 基于map的前置关系（blockID -> 前置blockID，0表示无前置）
type Links map[int64]*int64

// Predecessor 实现PredecessorLookup
func (l Links) Predecessor(id int64) (int64, bool, bool) {
	pred, ok := l[id]
	if !ok {
		return 0, false, false
	}
	if pred == nil {
		return 0, false, true
	}
	return *pred, true, true
}

// Len 实现PredecessorLookup
func (l Links) Len() int {
	return len(l)
}

// LinksFromBlocks 从Block快照构建前置关系
func LinksFromBlocks(blocks []*block.Block) Links {
	links := make(Links, len(blocks))
	for _, b := range blocks {
		if b.PredecessorID != nil {
			pred := *b.PredecessorID
			links[b.ID] = &pred
		} else {
			links[b.ID] = nil
		}
	}
	return links
}

// WouldCreateCycle 判断将blockID的前置设为proposedPredecessorID是否会形成循环依赖（对外导出）
// 自依赖直接返回true；否则沿proposedPredecessorID的前置链向上查找，
// 若某个节点的前置就是blockID则形成环。链条结束或遇到未知ID返回false。
// 纯读操作，无副作用。
func WouldCreateCycle(blockID, proposedPredecessorID int64, links PredecessorLookup) bool {
	if blockID == proposedPredecessorID {
		return true
	}

	current := proposedPredecessorID
	// 链长不会超过节点数，上限保证已有数据损坏时也能结束
	for steps := 0; steps <= links.Len(); steps++ {
		pred, hasPred, exists := links.Predecessor(current)
		if !exists || !hasPred {
			return false
		}
		if pred == blockID {
			return true
		}
		current = pred
	}
	return false
}
