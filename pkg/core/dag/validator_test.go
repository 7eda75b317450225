package dag

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/LENAX/plan-engine/pkg/core/block"
)

func chain(ids ...int64) []*block.Block {
	blocks := make([]*block.Block, 0, len(ids))
	for i, id := range ids {
		b := &block.Block{ID: id}
		if i > 0 {
			b.PredecessorID = block.Int64(ids[i-1])
		}
		blocks = append(blocks, b)
	}
	return blocks
}

func TestWouldCreateCycle_SelfDependency(t *testing.T) {
	links := LinksFromBlocks(chain(1, 2, 3))
	assert.True(t, WouldCreateCycle(2, 2, links))
	// 即使节点不存在，自依赖也必须拒绝
	assert.True(t, WouldCreateCycle(42, 42, links))
}

func TestWouldCreateCycle_ChainPassesThroughBlock(t *testing.T) {
	// 5 <- 7 <- 9 ：9的前置链经过5
	links := LinksFromBlocks(chain(5, 7, 9))
	assert.True(t, WouldCreateCycle(5, 9, links))
	assert.True(t, WouldCreateCycle(5, 7, links))
	assert.True(t, WouldCreateCycle(7, 9, links))
}

func TestWouldCreateCycle_ForestPreserved(t *testing.T) {
	blocks := append(chain(1, 2, 3), chain(10, 11)...)
	links := LinksFromBlocks(blocks)

	// 把另一条链挂到当前链下，仍然是森林
	assert.False(t, WouldCreateCycle(10, 3, links))
	assert.False(t, WouldCreateCycle(3, 11, links))
	// 重新指向自己已有的前置
	assert.False(t, WouldCreateCycle(3, 1, links))
	// 新建工序（尚未入库的ID）
	assert.False(t, WouldCreateCycle(100, 3, links))
}

func TestWouldCreateCycle_UnknownPredecessor(t *testing.T) {
	links := LinksFromBlocks(chain(1, 2))
	assert.False(t, WouldCreateCycle(1, 99, links))
}

func TestWouldCreateCycle_CorruptDataTerminates(t *testing.T) {
	// 已有数据中存在1 <-> 2的环，校验不涉及该环的节点时必须终止
	links := Links{
		1: block.Int64(2),
		2: block.Int64(1),
		3: nil,
	}
	assert.False(t, WouldCreateCycle(3, 1, links))
}

func TestWouldCreateCycle_ExhaustiveOnSmallForest(t *testing.T) {
	// 1 <- 2 <- 3, 1 <- 4, 5 独立
	blocks := []*block.Block{
		{ID: 1},
		{ID: 2, PredecessorID: block.Int64(1)},
		{ID: 3, PredecessorID: block.Int64(2)},
		{ID: 4, PredecessorID: block.Int64(1)},
		{ID: 5},
	}
	links := LinksFromBlocks(blocks)

	ancestors := map[int64][]int64{
		1: {},
		2: {1},
		3: {2, 1},
		4: {1},
		5: {},
	}
	isAncestorOrSelf := func(candidate, of int64) bool {
		if candidate == of {
			return true
		}
		for _, a := range ancestors[candidate] {
			if a == of {
				return true
			}
		}
		return false
	}

	for op := int64(1); op <= 5; op++ {
		for pred := int64(1); pred <= 5; pred++ {
			// 当且仅当op是pred本身或pred的祖先时成环
			expected := isAncestorOrSelf(pred, op)
			assert.Equal(t, expected, WouldCreateCycle(op, pred, links), "op=%d pred=%d", op, pred)
		}
	}
}
