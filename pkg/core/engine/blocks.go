package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"

	"github.com/LENAX/plan-engine/pkg/core/block"
	"github.com/LENAX/plan-engine/pkg/core/dag"
	"github.com/LENAX/plan-engine/pkg/core/realtime"
	"github.com/LENAX/plan-engine/pkg/storage"
)

// GetBlock 查询工序
func (e *Engine) GetBlock(ctx context.Context, id int64) (*block.Block, error) {
	return e.repo.GetBlock(ctx, id)
}

// ListBlocks 条件分页查询工序
func (e *Engine) ListBlocks(ctx context.Context, filter storage.BlockFilter) ([]*block.Block, int, error) {
	filter.Normalize()
	return e.repo.ListBlocks(ctx, filter)
}

// CreateBlock 新建工序
// 计划时间只由排程写入，新建时忽略；新建工序不可能被别的工序引用，因此无需环检测
func (e *Engine) CreateBlock(ctx context.Context, b *block.Block) error {
	if err := validateBlock(b); err != nil {
		return err
	}
	b.ID = 0
	b.ClearPlan()

	e.runMu.Lock()
	defer e.runMu.Unlock()

	if b.PredecessorID != nil {
		if err := e.requirePredecessor(ctx, *b.PredecessorID); err != nil {
			return err
		}
	}
	if b.Completed {
		if err := e.checkClosing(ctx, b); err != nil {
			return err
		}
	}

	if err := e.repo.CreateBlock(ctx, b); err != nil {
		return fmt.Errorf("创建工序失败: %w", err)
	}
	log.Printf("✅ [规划引擎] 工序已创建: ID=%d, Name=%s", b.ID, b.Name)
	e.publish(ctx, realtime.NewEvent(realtime.EventBlockCreated, realtime.BlockPayload{BlockID: b.ID, Block: b}))
	return nil
}

// UpdateBlock 部分更新工序
// 修改前置时检查前置存在且不会形成循环依赖；标记完成时检查关闭条件
func (e *Engine) UpdateBlock(ctx context.Context, id int64, patch block.Patch) (*block.Block, error) {
	e.runMu.Lock()
	defer e.runMu.Unlock()

	existing, err := e.repo.GetBlock(ctx, id)
	if err != nil {
		return nil, err
	}
	updated := patch.Apply(existing)
	if err := validateBlock(updated); err != nil {
		return nil, err
	}

	if patch.ChangesPredecessor() {
		predID := *updated.PredecessorID
		if predID != id {
			if err := e.requirePredecessor(ctx, predID); err != nil {
				return nil, err
			}
		}
		cyclic, err := e.wouldCreateCycle(ctx, id, predID)
		if err != nil {
			return nil, err
		}
		if cyclic {
			return nil, fmt.Errorf("%w: 工序 %d 不能以 %d 作为前置", ErrCycle, id, predID)
		}
	}
	if patch.Closes() && !existing.Completed {
		if err := e.checkClosing(ctx, updated); err != nil {
			return nil, err
		}
	}

	if err := e.repo.UpdateBlock(ctx, updated); err != nil {
		return nil, fmt.Errorf("更新工序失败: %w", err)
	}
	e.publish(ctx, realtime.NewEvent(realtime.EventBlockUpdated, realtime.BlockPayload{BlockID: id, Block: updated}))
	return updated, nil
}

// ReplaceBlock 整体替换工序的可编辑字段，未提供的可空字段被清空
func (e *Engine) ReplaceBlock(ctx context.Context, id int64, b *block.Block) (*block.Block, error) {
	return e.UpdateBlock(ctx, id, block.ReplacePatch(b))
}

// DeleteBlock 删除工序，其后续工序的前置被置空
func (e *Engine) DeleteBlock(ctx context.Context, id int64) error {
	e.runMu.Lock()
	defer e.runMu.Unlock()

	if err := e.repo.DeleteBlock(ctx, id); err != nil {
		return err
	}
	log.Printf("✅ [规划引擎] 工序已删除: ID=%d", id)
	e.publish(ctx, realtime.NewEvent(realtime.EventBlockDeleted, realtime.BlockPayload{BlockID: id}))
	return nil
}

// ValidateNewEdge 判断把blockID的前置设为predID是否会形成循环依赖
func (e *Engine) ValidateNewEdge(ctx context.Context, blockID, predID int64) (bool, error) {
	return e.wouldCreateCycle(ctx, blockID, predID)
}

func (e *Engine) wouldCreateCycle(ctx context.Context, blockID, predID int64) (bool, error) {
	links, err := e.repo.PredecessorLinks(ctx)
	if err != nil {
		return false, fmt.Errorf("加载前置关系失败: %w", err)
	}
	return dag.WouldCreateCycle(blockID, predID, links), nil
}

func (e *Engine) requirePredecessor(ctx context.Context, predID int64) error {
	if _, err := e.repo.GetBlock(ctx, predID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%w: ID=%d", ErrPredecessorNotFound, predID)
		}
		return fmt.Errorf("查询前置工序失败: %w", err)
	}
	return nil
}

// checkClosing 关闭条件：前置工序存在且已完成，产出数量不少于需求数量
func (e *Engine) checkClosing(ctx context.Context, b *block.Block) error {
	if b.PredecessorID != nil {
		pred, err := e.repo.GetBlock(ctx, *b.PredecessorID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return fmt.Errorf("%w: 前置工序 %d 不存在", ErrClosingRule, *b.PredecessorID)
			}
			return fmt.Errorf("查询前置工序失败: %w", err)
		}
		if !pred.Completed {
			return fmt.Errorf("%w: 前置工序 %d（%s）尚未完成", ErrClosingRule, pred.ID, pred.Name)
		}
	}
	if b.QtyProduced < b.QtyToProduce {
		return fmt.Errorf("%w: 产出数量 %g 小于需求数量 %g", ErrClosingRule, b.QtyProduced, b.QtyToProduce)
	}
	return nil
}

func validateBlock(b *block.Block) error {
	b.Name = strings.TrimSpace(b.Name)
	switch {
	case b.Name == "":
		return fmt.Errorf("%w: 名称不能为空", ErrInvalidBlock)
	case b.QtyToProduce < 0 || b.QtyProduced < 0:
		return fmt.Errorf("%w: 数量不能为负", ErrInvalidBlock)
	case !finite(b.QtyToProduce) || !finite(b.QtyProduced):
		return fmt.Errorf("%w: 数量必须是有限数值", ErrInvalidBlock)
	case invalidHours(b.PlannedHours, 1) || invalidHours(b.SpentHours, 1):
		return fmt.Errorf("%w: 工时必须在 0 到 %.0f 小时之间", ErrInvalidBlock, block.MaxHours)
	case invalidHours(b.PlannedWeeks, block.HoursPerWeek):
		return fmt.Errorf("%w: 周工期必须在 0 到 %.0f 周之间", ErrInvalidBlock, block.MaxHours/block.HoursPerWeek)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// invalidHours v按factor折算成小时后为负、非有限值或超出time.Duration范围
func invalidHours(v *float64, factor float64) bool {
	if v == nil {
		return false
	}
	if !finite(*v) || *v < 0 {
		return true
	}
	return *v*factor >= block.MaxHours
}
