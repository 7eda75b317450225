package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/LENAX/plan-engine/pkg/api/dto"
	"github.com/LENAX/plan-engine/pkg/core/engine"
	"github.com/LENAX/plan-engine/pkg/core/planner"
)

// PlanningHandler 排程API处理器
type PlanningHandler struct {
	engine *engine.Engine
}

// NewPlanningHandler 创建PlanningHandler
func NewPlanningHandler(eng *engine.Engine) *PlanningHandler {
	return &PlanningHandler{engine: eng}
}

// direction 解析mode参数，缺省使用配置的默认模式
func (h *PlanningHandler) direction(c *gin.Context) (planner.Direction, bool) {
	var query dto.PlanningModeQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		badRequest(c, "mode必须是asap或retro: %v", err)
		return "", false
	}
	if query.Mode == "" {
		return h.engine.DefaultDirection(), true
	}
	d, err := planner.ParseDirection(query.Mode)
	if err != nil {
		writeError(c, err)
		return "", false
	}
	return d, true
}

// Run 执行一次排程
// POST /api/v1/planning/run?mode=asap|retro  body: {"start_date": "..."} 或 {"due_date": "..."}
func (h *PlanningHandler) Run(c *gin.Context) {
	direction, ok := h.direction(c)
	if !ok {
		return
	}

	var req dto.RunPlanningRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, "请求体错误: %v", err)
		return
	}
	anchor, err := req.Anchor(direction == planner.Backward)
	if err != nil {
		badRequest(c, "%v", err)
		return
	}

	report, err := h.engine.RunSchedule(c.Request.Context(), engine.RunRequest{
		Direction: direction,
		Anchor:    anchor,
		Trigger:   engine.TriggerAPI,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(report))
}

// View 按名称排序列出全部工序及其计划时间
// GET /api/v1/planning
func (h *PlanningHandler) View(c *gin.Context) {
	blocks, err := h.engine.PlanningView(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(blocks))
}

// Status 排程进度统计
// GET /api/v1/planning/status
func (h *PlanningHandler) Status(c *gin.Context) {
	status, err := h.engine.Status(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(status))
}

// Last 最近一次排程报告
// GET /api/v1/planning/last?mode=asap|retro
func (h *PlanningHandler) Last(c *gin.Context) {
	direction, ok := h.direction(c)
	if !ok {
		return
	}
	report, found := h.engine.LastResult(direction)
	if !found {
		c.JSON(http.StatusNotFound, dto.NewErrorResponse(http.StatusNotFound, "尚无排程结果"))
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(report))
}

// Integrity 前置关系图审计
// GET /api/v1/planning/integrity
func (h *PlanningHandler) Integrity(c *gin.Context) {
	report, err := h.engine.Integrity(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(report))
}
