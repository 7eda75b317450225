package transfer

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LENAX/plan-engine/pkg/core/block"
)

func TestWriteThenReadBlocks(t *testing.T) {
	start := time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC)
	finish := start.Add(10 * time.Hour)
	blocks := []*block.Block{
		{
			ID:           1,
			Name:         "Découpe; tôle",
			QtyToProduce: 10,
			QtyProduced:  10,
			PlannedHours: block.Float64(10),
			WorkCenterID: block.Int64(3),
			Completed:    true,
			PlannedStart: &start, PlannedFinish: &finish,
		},
		{
			ID:            2,
			Name:          "Soudure",
			QtyToProduce:  4.5,
			PlannedWeeks:  block.Float64(0.5),
			PredecessorID: block.Int64(1),
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteBlocks(&buf, blocks))
	assert.True(t, strings.HasPrefix(buf.String(), "id;name;qty_to_produce"))

	got, err := ReadBlocks(&buf)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "Découpe; tôle", got[0].Name)
	assert.True(t, got[0].Completed)
	require.NotNil(t, got[0].PlannedStart)
	assert.True(t, start.Equal(*got[0].PlannedStart))
	assert.Equal(t, int64(3), *got[0].WorkCenterID)

	assert.Equal(t, int64(2), got[1].ID)
	assert.Equal(t, 4.5, got[1].QtyToProduce)
	assert.Nil(t, got[1].PlannedHours)
	assert.Equal(t, 0.5, *got[1].PlannedWeeks)
	assert.Equal(t, int64(1), *got[1].PredecessorID)
	assert.Nil(t, got[1].PlannedStart)
}

func TestReadBlocks_BOMAndDecimalComma(t *testing.T) {
	input := "\ufeffName;Planned_Hours;Completed;Predecessor_ID\n" +
		"Peinture;2,5;oui;\n" +
		";;;\n" +
		"Emballage;;non;0\n"

	got, err := ReadBlocks(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "Peinture", got[0].Name)
	assert.Equal(t, int64(0), got[0].ID)
	assert.Equal(t, 2.5, *got[0].PlannedHours)
	assert.True(t, got[0].Completed)

	assert.Equal(t, "Emballage", got[1].Name)
	assert.False(t, got[1].Completed)
	assert.Nil(t, got[1].PredecessorID, "0表示没有前置")
}

func TestReadBlocks_Errors(t *testing.T) {
	t.Run("空文件", func(t *testing.T) {
		_, err := ReadBlocks(strings.NewReader(""))
		assert.ErrorIs(t, err, ErrEmptyFile)
	})

	t.Run("缺少name列", func(t *testing.T) {
		_, err := ReadBlocks(strings.NewReader("id;planned_hours\n1;2\n"))
		assert.ErrorIs(t, err, ErrMissingColumn)
	})

	t.Run("数值错误带行号", func(t *testing.T) {
		_, err := ReadBlocks(strings.NewReader("name;planned_hours\nA;1\nB;abc\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "第3行")
		assert.Contains(t, err.Error(), ColPlannedHours)
	})

	t.Run("NaN和Inf被拒绝", func(t *testing.T) {
		for _, v := range []string{"NaN", "Inf", "-inf"} {
			_, err := ReadBlocks(strings.NewReader("name;planned_weeks\nA;" + v + "\n"))
			assert.ErrorIs(t, err, ErrNonFinite, v)
		}
	})

	t.Run("布尔值错误", func(t *testing.T) {
		_, err := ReadBlocks(strings.NewReader("name;completed\nA;peut-être\n"))
		assert.Error(t, err)
	})

	t.Run("时间格式错误", func(t *testing.T) {
		_, err := ReadBlocks(strings.NewReader("name;planned_start\nA;demain\n"))
		assert.Error(t, err)
	})
}

func TestReadBlocks_DateOnly(t *testing.T) {
	got, err := ReadBlocks(strings.NewReader("name;planned_start\nA;2024-05-01\n"))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), *got[0].PlannedStart)
}
