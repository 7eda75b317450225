package engine

import (
	"context"
	"fmt"
	"log"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/LENAX/plan-engine/pkg/core/block"
	"github.com/LENAX/plan-engine/pkg/core/dag"
	"github.com/LENAX/plan-engine/pkg/core/planner"
	"github.com/LENAX/plan-engine/pkg/core/realtime"
)

// 排程触发来源
const (
	TriggerAPI  = "api"
	TriggerCron = "cron"
	TriggerCLI  = "cli"
)

// RunRequest 排程运行参数
type RunRequest struct {
	Direction planner.Direction
	// Anchor 正排为开始时间（为空取当前时间），倒排为交付时间（必填）
	Anchor  *time.Time
	Trigger string
}

// RunReport 一次排程运行的报告（对外导出）
type RunReport struct {
	RunID     string    `json:"run_id"`
	Trigger   string    `json:"trigger"`
	StartedAt time.Time `json:"started_at"`
	ElapsedMs int64     `json:"elapsed_ms"`
	Warning   string    `json:"warning,omitempty"`
	*planner.Result
}

// PlanningStatus 排程进度统计
type PlanningStatus struct {
	Total     int     `json:"total"`
	Planned   int     `json:"planned"`
	Completed int     `json:"completed"`
	Progress  float64 `json:"progress"` // 已完成百分比，保留一位小数
}

// RunSchedule 加载全部工序快照，按方向排程，并在一个事务中写回未完成工序的计划时间
// 同一引擎上的运行互斥；部分工序无法排程时仍提交其余结果，并在报告中给出Warning
func (e *Engine) RunSchedule(ctx context.Context, req RunRequest) (*RunReport, error) {
	if req.Direction == "" {
		req.Direction = e.DefaultDirection()
	}
	if req.Trigger == "" {
		req.Trigger = TriggerAPI
	}

	e.runMu.Lock()
	defer e.runMu.Unlock()

	startedAt := time.Now()
	blocks, err := e.repo.AllBlocks(ctx)
	if err != nil {
		return nil, fmt.Errorf("加载工序快照失败: %w", err)
	}

	result, err := e.planner.Run(req.Direction, req.Anchor, blocks)
	if err != nil {
		return nil, err
	}

	pending := make([]*block.Block, 0, result.Total)
	for _, b := range blocks {
		if !b.Completed {
			pending = append(pending, b)
		}
	}
	if err := e.repo.ApplyPlan(ctx, pending); err != nil {
		return nil, fmt.Errorf("保存排程结果失败: %w", err)
	}

	report := &RunReport{
		RunID:     uuid.NewString(),
		Trigger:   req.Trigger,
		StartedAt: startedAt,
		ElapsedMs: time.Since(startedAt).Milliseconds(),
		Warning:   result.Warning(),
		Result:    result,
	}
	e.results.Set(string(result.Direction), report, e.cacheTTL)

	if result.Partial() {
		log.Printf("⚠️ [规划引擎] 排程部分完成: RunID=%s, Direction=%s, %s", report.RunID, result.Direction, report.Warning)
	} else {
		log.Printf("✅ [规划引擎] 排程完成: RunID=%s, Direction=%s, Scheduled=%d, Trigger=%s",
			report.RunID, result.Direction, result.Scheduled, report.Trigger)
	}

	e.publish(ctx, realtime.NewEvent(realtime.EventPlanningCompleted, realtime.PlanningPayload{
		RunID:       report.RunID,
		Direction:   string(result.Direction),
		Anchor:      result.Anchor,
		Total:       result.Total,
		Scheduled:   result.Scheduled,
		Unscheduled: result.Unscheduled,
		Trigger:     report.Trigger,
	}).WithCorrelationID(report.RunID))

	return report, nil
}

// LastResult 返回某个方向最近一次排程报告（缓存过期或尚未运行返回false）
func (e *Engine) LastResult(direction planner.Direction) (*RunReport, bool) {
	return e.results.Get(string(direction))
}

// PlanningView 按名称排序返回全部工序及其计划时间
func (e *Engine) PlanningView(ctx context.Context) ([]*block.Block, error) {
	blocks, err := e.repo.AllBlocks(ctx)
	if err != nil {
		return nil, fmt.Errorf("加载工序失败: %w", err)
	}
	sort.SliceStable(blocks, func(i, j int) bool {
		if blocks[i].Name != blocks[j].Name {
			return blocks[i].Name < blocks[j].Name
		}
		return blocks[i].ID < blocks[j].ID
	})
	return blocks, nil
}

// Status 返回排程进度统计
func (e *Engine) Status(ctx context.Context) (*PlanningStatus, error) {
	stats, err := e.repo.BlockStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("统计工序失败: %w", err)
	}
	status := &PlanningStatus{
		Total:     stats.Total,
		Planned:   stats.Planned,
		Completed: stats.Completed,
	}
	if stats.Total > 0 {
		status.Progress = math.Round(float64(stats.Completed)/float64(stats.Total)*1000) / 10
	}
	return status, nil
}

// Integrity 审计整个前置关系图
func (e *Engine) Integrity(ctx context.Context) (*dag.AuditReport, error) {
	blocks, err := e.repo.AllBlocks(ctx)
	if err != nil {
		return nil, fmt.Errorf("加载工序失败: %w", err)
	}
	return dag.Audit(blocks), nil
}
