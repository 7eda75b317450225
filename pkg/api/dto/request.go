package dto

import (
	"fmt"
	"strings"
	"time"

	"github.com/LENAX/plan-engine/pkg/core/block"
	"github.com/LENAX/plan-engine/pkg/storage"
)

// BlockListQuery 工序列表查询请求
type BlockListQuery struct {
	Q            string `form:"q"`
	Completed    *bool  `form:"completed"`
	WorkCenterID *int64 `form:"work_center_id"`
	OrderID      *int64 `form:"order_id"`
	OrderBy      string `form:"order_by"`
	OrderDir     string `form:"order_dir" binding:"omitempty,oneof=asc desc ASC DESC"`
	Page         int    `form:"page" binding:"omitempty,min=1"`
	Size         int    `form:"size" binding:"omitempty,min=1,max=100"`
}

// ToFilter 转换为存储层过滤条件
func (q *BlockListQuery) ToFilter() storage.BlockFilter {
	filter := storage.BlockFilter{
		Query:        strings.TrimSpace(q.Q),
		Completed:    q.Completed,
		WorkCenterID: q.WorkCenterID,
		OrderID:      q.OrderID,
		OrderBy:      q.OrderBy,
		Desc:         strings.EqualFold(q.OrderDir, "desc"),
		Page:         q.Page,
		Size:         q.Size,
	}
	filter.Normalize()
	return filter
}

// CreateBlockRequest 新建工序请求
type CreateBlockRequest struct {
	Name          string   `json:"name" binding:"required"`
	QtyToProduce  float64  `json:"qty_to_produce" binding:"omitempty,min=0"`
	QtyProduced   float64  `json:"qty_produced" binding:"omitempty,min=0"`
	PlannedHours  *float64 `json:"planned_hours"`
	SpentHours    *float64 `json:"spent_hours"`
	PlannedWeeks  *float64 `json:"planned_weeks"`
	WorkCenterID  *int64   `json:"work_center_id"`
	OrderID       *int64   `json:"order_id"`
	PredecessorID *int64   `json:"predecessor_id"`
	Completed     bool     `json:"completed"`
}

// ToBlock 转换为领域对象
func (r *CreateBlockRequest) ToBlock() *block.Block {
	return &block.Block{
		Name:               r.Name,
		QtyToProduce:       r.QtyToProduce,
		QtyProduced:        r.QtyProduced,
		PlannedHours:       r.PlannedHours,
		SpentHours:         r.SpentHours,
		PlannedWeeks:       r.PlannedWeeks,
		WorkCenterID:       r.WorkCenterID,
		ManufacturingOrder: r.OrderID,
		PredecessorID:      r.PredecessorID,
		Completed:          r.Completed,
	}
}

// PlanningModeQuery 排程模式查询参数
type PlanningModeQuery struct {
	Mode string `form:"mode" binding:"omitempty,oneof=asap retro ASAP RETRO forward backward"`
}

// RunPlanningRequest 排程运行请求
// 时间支持RFC3339或YYYY-MM-DD（按UTC零点）
type RunPlanningRequest struct {
	StartDate string `json:"start_date"`
	DueDate   string `json:"due_date"`
}

// Anchor 按方向返回锚点时间：正排取start_date，倒排取due_date，未填返回nil
func (r *RunPlanningRequest) Anchor(backward bool) (*time.Time, error) {
	raw := r.StartDate
	field := "start_date"
	if backward {
		raw, field = r.DueDate, "due_date"
	}
	return parseTime(field, raw)
}

// parseTime 解析可选时间，空串返回nil；统一转为UTC
func parseTime(field, raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, fmt.Errorf("%s 格式无效: %q", field, raw)
}

// CycleCheckQuery 前置关系校验参数
type CycleCheckQuery struct {
	PredecessorID int64 `form:"predecessor_id" binding:"required"`
}

// WorkCenterRequest 工作中心新建/更新请求
type WorkCenterRequest struct {
	Code     string  `json:"code" binding:"required"`
	Name     string  `json:"name" binding:"required"`
	Capacity float64 `json:"capacity" binding:"omitempty,min=0"`
}

// ArticleRequest 物料新建/更新请求
type ArticleRequest struct {
	Code        string `json:"code" binding:"required"`
	Designation string `json:"designation" binding:"required"`
}

// RoutingCodeRequest 工艺路线新建/更新请求
type RoutingCodeRequest struct {
	Code      string `json:"code" binding:"required"`
	ArticleID int64  `json:"article_id" binding:"required,min=1"`
}

// OrderRequest 制造订单新建/更新请求，时间格式同RunPlanningRequest
type OrderRequest struct {
	Code          string `json:"code" binding:"required"`
	RoutingCodeID *int64 `json:"routing_code_id"`
	StartDate     string `json:"start_date"`
	DueDate       string `json:"due_date"`
	Mode          string `json:"mode" binding:"omitempty,oneof=asap retro ASAP RETRO"`
}

// ToOrder 转换为领域对象
func (r *OrderRequest) ToOrder() (*block.Order, error) {
	start, err := parseTime("start_date", r.StartDate)
	if err != nil {
		return nil, err
	}
	due, err := parseTime("due_date", r.DueDate)
	if err != nil {
		return nil, err
	}
	return &block.Order{
		Code:          r.Code,
		RoutingCodeID: r.RoutingCodeID,
		StartDate:     start,
		DueDate:       due,
		Mode:          r.Mode,
	}, nil
}
