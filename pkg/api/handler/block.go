package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/LENAX/plan-engine/pkg/api/dto"
	"github.com/LENAX/plan-engine/pkg/core/block"
	"github.com/LENAX/plan-engine/pkg/core/engine"
)

// BlockHandler 工序API处理器
type BlockHandler struct {
	engine *engine.Engine
}

// NewBlockHandler 创建BlockHandler
func NewBlockHandler(eng *engine.Engine) *BlockHandler {
	return &BlockHandler{engine: eng}
}

// List 条件分页查询工序
// GET /api/v1/blocks?q=&completed=&work_center_id=&order_id=&order_by=&order_dir=&page=&size=
func (h *BlockHandler) List(c *gin.Context) {
	var query dto.BlockListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		badRequest(c, "查询参数错误: %v", err)
		return
	}

	filter := query.ToFilter()
	items, total, err := h.engine.ListBlocks(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(dto.ListResponse[*block.Block]{
		Total:   total,
		Page:    filter.Page,
		Size:    filter.Size,
		Items:   items,
		HasMore: filter.Offset()+len(items) < total,
	}))
}

// Get 获取工序
// GET /api/v1/blocks/:id
func (h *BlockHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	b, err := h.engine.GetBlock(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(b))
}

// Create 新建工序
// POST /api/v1/blocks
func (h *BlockHandler) Create(c *gin.Context) {
	var req dto.CreateBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "请求体错误: %v", err)
		return
	}
	b := req.ToBlock()
	if err := h.engine.CreateBlock(c.Request.Context(), b); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(b))
}

// Update 部分更新工序；字段缺省保持不变，可空字段传null表示清空
// PATCH /api/v1/blocks/:id
func (h *BlockHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var patch block.Patch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, "请求体错误: %v", err)
		return
	}
	b, err := h.engine.UpdateBlock(c.Request.Context(), id, patch)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(b))
}

// Replace 整体替换工序；请求体与新建相同，缺省字段取零值或清空
// PUT /api/v1/blocks/:id
func (h *BlockHandler) Replace(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.CreateBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "请求体错误: %v", err)
		return
	}
	b, err := h.engine.ReplaceBlock(c.Request.Context(), id, req.ToBlock())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(b))
}

// Delete 删除工序
// DELETE /api/v1/blocks/:id
func (h *BlockHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.engine.DeleteBlock(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(map[string]int64{"deleted": id}))
}

// CycleCheck 判断把predecessor_id设为前置是否会形成循环依赖
// GET /api/v1/blocks/:id/cycle-check?predecessor_id=
func (h *BlockHandler) CycleCheck(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var query dto.CycleCheckQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		badRequest(c, "查询参数错误: %v", err)
		return
	}
	cyclic, err := h.engine.ValidateNewEdge(c.Request.Context(), id, query.PredecessorID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(dto.CycleCheckResponse{
		BlockID:          id,
		PredecessorID:    query.PredecessorID,
		WouldCreateCycle: cyclic,
	}))
}
