package engine

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/LENAX/plan-engine/pkg/core/block"
	"github.com/LENAX/plan-engine/pkg/core/dag"
	"github.com/LENAX/plan-engine/pkg/core/realtime"
	"github.com/LENAX/plan-engine/pkg/core/transfer"
)

// ExportCSV 把全部工序按ID升序写成CSV
func (e *Engine) ExportCSV(ctx context.Context, w io.Writer) error {
	blocks, err := e.repo.AllBlocks(ctx)
	if err != nil {
		return fmt.Errorf("加载工序失败: %w", err)
	}
	return transfer.WriteBlocks(w, blocks)
}

// ImportCSV 解析CSV并批量导入，返回导入条数
func (e *Engine) ImportCSV(ctx context.Context, r io.Reader) (int, error) {
	blocks, err := transfer.ReadBlocks(r)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidBlock, err)
	}
	return e.ImportBlocks(ctx, blocks)
}

// ImportBlocks 批量导入工序：有ID的覆盖，没有ID的新建
// 导入后的前置关系若形成循环依赖则整体拒绝；指向不存在工序的前置保留，排程时计入未排程
func (e *Engine) ImportBlocks(ctx context.Context, blocks []*block.Block) (int, error) {
	for i, b := range blocks {
		if err := validateBlock(b); err != nil {
			return 0, fmt.Errorf("第%d条: %w", i+1, err)
		}
	}

	e.runMu.Lock()
	defer e.runMu.Unlock()

	links, err := e.repo.PredecessorLinks(ctx)
	if err != nil {
		return 0, fmt.Errorf("加载前置关系失败: %w", err)
	}
	if err := checkImportCycles(links, blocks); err != nil {
		return 0, err
	}

	if err := e.repo.UpsertBlocks(ctx, blocks); err != nil {
		return 0, fmt.Errorf("导入工序失败: %w", err)
	}

	log.Printf("✅ [规划引擎] 已导入 %d 个工序", len(blocks))
	e.publish(ctx, realtime.NewEvent(realtime.EventBlocksImport, realtime.ImportPayload{Count: len(blocks)}))
	return len(blocks), nil
}

// checkImportCycles 先摘掉被覆盖工序原有的前置，再逐条加入导入的前置并检测成环
// 新建工序（ID为0）还没有被任何工序引用，不会成环
func checkImportCycles(links dag.Links, blocks []*block.Block) error {
	for _, b := range blocks {
		if b.ID > 0 {
			links[b.ID] = nil
		}
	}
	for _, b := range blocks {
		if b.ID <= 0 || b.PredecessorID == nil {
			continue
		}
		pred := *b.PredecessorID
		if dag.WouldCreateCycle(b.ID, pred, links) {
			return fmt.Errorf("%w: 工序 %d 不能以 %d 作为前置", ErrCycle, b.ID, pred)
		}
		links[b.ID] = &pred
	}
	return nil
}
