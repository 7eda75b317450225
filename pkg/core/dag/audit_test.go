package dag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LENAX/plan-engine/pkg/core/block"
)

func TestAudit_CleanForest(t *testing.T) {
	blocks := append(chain(1, 2, 3), chain(10, 11)...)

	report := Audit(blocks)
	require.NotNil(t, report)
	assert.True(t, report.OK())
	assert.Equal(t, 5, report.Blocks)
	assert.Equal(t, 3, report.Edges)
	assert.Equal(t, []int64{1, 10}, report.Roots)
}

func TestAudit_MissingPredecessor(t *testing.T) {
	blocks := []*block.Block{
		{ID: 1},
		{ID: 2, PredecessorID: block.Int64(404)},
	}

	report := Audit(blocks)
	require.Len(t, report.Issues, 1)
	assert.Equal(t, int64(2), report.Issues[0].BlockID)
	assert.Equal(t, int64(404), report.Issues[0].PredecessorID)
	assert.False(t, report.OK())
}

func TestAudit_CycleReportedOnce(t *testing.T) {
	blocks := []*block.Block{
		{ID: 1, PredecessorID: block.Int64(3)},
		{ID: 2, PredecessorID: block.Int64(1)},
		{ID: 3, PredecessorID: block.Int64(2)},
		{ID: 4},
	}

	report := Audit(blocks)
	require.Len(t, report.Issues, 1)
	// 按ID升序加边：3->1、1->2 成功，2->3 闭合环被拒绝
	assert.Equal(t, int64(3), report.Issues[0].BlockID)
	assert.Equal(t, 2, report.Edges)
}

func TestAudit_SelfLoop(t *testing.T) {
	blocks := []*block.Block{
		{ID: 7, PredecessorID: block.Int64(7)},
	}

	report := Audit(blocks)
	require.Len(t, report.Issues, 1)
	assert.Equal(t, int64(7), report.Issues[0].BlockID)
	assert.Equal(t, 0, report.Edges)
}
