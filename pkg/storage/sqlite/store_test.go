package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LENAX/plan-engine/pkg/core/block"
	"github.com/LENAX/plan-engine/pkg/storage"
	"github.com/LENAX/plan-engine/pkg/storage/sqlstore"
)

// setupTestStore 创建临时文件数据库
func setupTestStore(t *testing.T) *sqlstore.Store {
	dbFile := filepath.Join(t.TempDir(), "plan_engine_test.db")
	store, err := NewStoreFromDSN(dbFile)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_BlockCRUD(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	b := &block.Block{
		Name:         "车削",
		QtyToProduce: 10,
		PlannedHours: block.Float64(2.5),
		WorkCenterID: block.Int64(3),
	}
	require.NoError(t, store.CreateBlock(ctx, b))
	assert.NotZero(t, b.ID)

	loaded, err := store.GetBlock(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "车削", loaded.Name)
	require.NotNil(t, loaded.PlannedHours)
	assert.Equal(t, 2.5, *loaded.PlannedHours)
	assert.Nil(t, loaded.PlannedWeeks)
	assert.Nil(t, loaded.PredecessorID)
	assert.False(t, loaded.Completed)

	loaded.QtyProduced = 10
	loaded.Completed = true
	require.NoError(t, store.UpdateBlock(ctx, loaded))

	again, err := store.GetBlock(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, again.Completed)
	assert.Equal(t, 10.0, again.QtyProduced)

	require.NoError(t, store.DeleteBlock(ctx, b.ID))
	_, err = store.GetBlock(ctx, b.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.ErrorIs(t, store.DeleteBlock(ctx, b.ID), storage.ErrNotFound)
	assert.ErrorIs(t, store.UpdateBlock(ctx, &block.Block{ID: 999, Name: "x"}), storage.ErrNotFound)
}

func TestStore_DeleteDetachesSuccessors(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	first := &block.Block{Name: "下料"}
	require.NoError(t, store.CreateBlock(ctx, first))
	second := &block.Block{Name: "焊接", PredecessorID: block.Int64(first.ID)}
	require.NoError(t, store.CreateBlock(ctx, second))

	require.NoError(t, store.DeleteBlock(ctx, first.ID))

	loaded, err := store.GetBlock(ctx, second.ID)
	require.NoError(t, err)
	assert.Nil(t, loaded.PredecessorID)
}

func TestStore_ListBlocks(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	names := []string{"Usinage A", "usinage B", "Peinture", "Montage", "USINAGE C"}
	for i, name := range names {
		b := &block.Block{Name: name, QtyToProduce: float64(i), ManufacturingOrder: block.Int64(int64(i%2 + 1))}
		require.NoError(t, store.CreateBlock(ctx, b))
	}

	t.Run("名称过滤不区分大小写", func(t *testing.T) {
		items, total, err := store.ListBlocks(ctx, storage.BlockFilter{Query: "usinage", Size: 10})
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		assert.Len(t, items, 3)
	})

	t.Run("按数量倒序分页", func(t *testing.T) {
		items, total, err := store.ListBlocks(ctx, storage.BlockFilter{OrderBy: "qty_to_produce", Desc: true, Page: 2, Size: 2})
		require.NoError(t, err)
		assert.Equal(t, 5, total)
		require.Len(t, items, 2)
		assert.Equal(t, "Peinture", items[0].Name)
		assert.Equal(t, "usinage B", items[1].Name)
	})

	t.Run("工单过滤", func(t *testing.T) {
		items, total, err := store.ListBlocks(ctx, storage.BlockFilter{OrderID: block.Int64(2), Size: 10})
		require.NoError(t, err)
		assert.Equal(t, 2, total)
		for _, b := range items {
			require.NotNil(t, b.ManufacturingOrder)
			assert.Equal(t, int64(2), *b.ManufacturingOrder)
		}
	})

	t.Run("未知排序字段退回按ID", func(t *testing.T) {
		items, _, err := store.ListBlocks(ctx, storage.BlockFilter{OrderBy: "name; DROP TABLE blocks", Size: 100})
		require.NoError(t, err)
		require.Len(t, items, 5)
		assert.Equal(t, "Usinage A", items[0].Name)
	})

	t.Run("完成状态过滤", func(t *testing.T) {
		done := false
		_, total, err := store.ListBlocks(ctx, storage.BlockFilter{Completed: &done})
		require.NoError(t, err)
		assert.Equal(t, 5, total)
	})
}

func TestStore_ApplyPlanAndStats(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	a := &block.Block{Name: "A", PlannedHours: block.Float64(2)}
	b := &block.Block{Name: "B", Completed: true}
	require.NoError(t, store.CreateBlock(ctx, a))
	require.NoError(t, store.CreateBlock(ctx, b))

	start := time.Date(2025, 12, 15, 8, 0, 0, 0, time.UTC)
	a.SetPlan(start, start.Add(2*time.Hour))
	require.NoError(t, store.ApplyPlan(ctx, []*block.Block{a}))

	loaded, err := store.GetBlock(ctx, a.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded.PlannedStart)
	assert.True(t, start.Equal(*loaded.PlannedStart))
	assert.True(t, start.Add(2*time.Hour).Equal(*loaded.PlannedFinish))

	stats, err := store.BlockStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, storage.BlockStats{Total: 2, Planned: 1, Completed: 1}, stats)

	a.ClearPlan()
	require.NoError(t, store.ApplyPlan(ctx, []*block.Block{a}))
	loaded, err = store.GetBlock(ctx, a.ID)
	require.NoError(t, err)
	assert.Nil(t, loaded.PlannedStart)
}

func TestStore_PredecessorLinks(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	a := &block.Block{Name: "A"}
	require.NoError(t, store.CreateBlock(ctx, a))
	b := &block.Block{Name: "B", PredecessorID: block.Int64(a.ID)}
	require.NoError(t, store.CreateBlock(ctx, b))

	links, err := store.PredecessorLinks(ctx)
	require.NoError(t, err)
	assert.Len(t, links, 2)
	assert.Nil(t, links[a.ID])
	require.NotNil(t, links[b.ID])
	assert.Equal(t, a.ID, *links[b.ID])
}

func TestStore_UpsertBlocks(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	existing := &block.Block{Name: "旧名称"}
	require.NoError(t, store.CreateBlock(ctx, existing))

	imported := []*block.Block{
		{ID: existing.ID, Name: "新名称", QtyToProduce: 4},
		{ID: 50, Name: "指定ID"},
		{Name: "自动ID"},
	}
	require.NoError(t, store.UpsertBlocks(ctx, imported))

	all, err := store.AllBlocks(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "新名称", all[0].Name)
	assert.Equal(t, 4.0, all[0].QtyToProduce)
	assert.Equal(t, int64(50), all[1].ID)
	assert.Greater(t, imported[2].ID, int64(50))
}

func TestStore_WorkCentersAndArticles(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	wc := &block.WorkCenter{Code: "CN-01", Name: "数控车床", Capacity: 1}
	require.NoError(t, store.CreateWorkCenter(ctx, wc))
	assert.NotZero(t, wc.ID)

	err := store.CreateWorkCenter(ctx, &block.WorkCenter{Code: "CN-01", Name: "重复"})
	assert.ErrorIs(t, err, storage.ErrDuplicateCode)

	wc.Name = "数控车床2"
	require.NoError(t, store.UpdateWorkCenter(ctx, wc))
	loaded, err := store.GetWorkCenter(ctx, wc.ID)
	require.NoError(t, err)
	assert.Equal(t, "数控车床2", loaded.Name)

	b := &block.Block{Name: "车削", WorkCenterID: block.Int64(wc.ID)}
	require.NoError(t, store.CreateBlock(ctx, b))
	require.NoError(t, store.DeleteWorkCenter(ctx, wc.ID))
	detached, err := store.GetBlock(ctx, b.ID)
	require.NoError(t, err)
	assert.Nil(t, detached.WorkCenterID)

	list, err := store.ListWorkCenters(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	art := &block.Article{Code: "ART-1", Designation: "法兰"}
	require.NoError(t, store.CreateArticle(ctx, art))
	art.Designation = "法兰盘"
	require.NoError(t, store.UpdateArticle(ctx, art))
	arts, err := store.ListArticles(ctx)
	require.NoError(t, err)
	require.Len(t, arts, 1)
	assert.Equal(t, "法兰盘", arts[0].Designation)
	require.NoError(t, store.DeleteArticle(ctx, art.ID))
	_, err = store.GetArticle(ctx, art.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStore_RoutingCodesAndOrders(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	art := &block.Article{Code: "ART-2", Designation: "支架"}
	require.NoError(t, store.CreateArticle(ctx, art))

	rc := &block.RoutingCode{Code: "DT-100", ArticleID: art.ID}
	require.NoError(t, store.CreateRoutingCode(ctx, rc))
	assert.NotZero(t, rc.ID)
	assert.ErrorIs(t, store.CreateRoutingCode(ctx, &block.RoutingCode{Code: "DT-100", ArticleID: art.ID}), storage.ErrDuplicateCode)
	assert.ErrorIs(t, store.DeleteArticle(ctx, art.ID), storage.ErrInUse, "物料被工艺路线引用")

	rc.Code = "DT-101"
	require.NoError(t, store.UpdateRoutingCode(ctx, rc))
	loadedRC, err := store.GetRoutingCode(ctx, rc.ID)
	require.NoError(t, err)
	assert.Equal(t, "DT-101", loadedRC.Code)

	start := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	due := start.Add(30 * 24 * time.Hour)
	order := &block.Order{Code: "OF-1", RoutingCodeID: block.Int64(rc.ID), StartDate: &start, DueDate: &due, Mode: block.ModeRETRO}
	require.NoError(t, store.CreateOrder(ctx, order))
	assert.ErrorIs(t, store.CreateOrder(ctx, &block.Order{Code: "OF-1", Mode: block.ModeASAP}), storage.ErrDuplicateCode)
	assert.ErrorIs(t, store.DeleteRoutingCode(ctx, rc.ID), storage.ErrInUse, "工艺路线被订单引用")

	loaded, err := store.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, block.ModeRETRO, loaded.Mode)
	require.NotNil(t, loaded.DueDate)
	assert.True(t, due.Equal(*loaded.DueDate))
	assert.Equal(t, rc.ID, *loaded.RoutingCodeID)

	order.StartDate = nil
	order.Mode = block.ModeASAP
	require.NoError(t, store.UpdateOrder(ctx, order))
	loaded, err = store.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Nil(t, loaded.StartDate)
	assert.Equal(t, block.ModeASAP, loaded.Mode)

	b := &block.Block{Name: "折弯", ManufacturingOrder: block.Int64(order.ID)}
	require.NoError(t, store.CreateBlock(ctx, b))
	require.NoError(t, store.DeleteOrder(ctx, order.ID))
	detached, err := store.GetBlock(ctx, b.ID)
	require.NoError(t, err)
	assert.Nil(t, detached.ManufacturingOrder)
	assert.ErrorIs(t, store.DeleteOrder(ctx, order.ID), storage.ErrNotFound)

	require.NoError(t, store.DeleteRoutingCode(ctx, rc.ID))
	require.NoError(t, store.DeleteArticle(ctx, art.ID))
	codes, err := store.ListRoutingCodes(ctx)
	require.NoError(t, err)
	assert.Empty(t, codes)
	orders, err := store.ListOrders(ctx)
	require.NoError(t, err)
	assert.Empty(t, orders)
}
