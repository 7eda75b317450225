package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/LENAX/plan-engine/pkg/api/dto"
	"github.com/LENAX/plan-engine/pkg/core/block"
	"github.com/LENAX/plan-engine/pkg/core/engine"
)

// ResourceHandler 工作中心与物料API处理器
type ResourceHandler struct {
	engine *engine.Engine
}

// NewResourceHandler 创建ResourceHandler
func NewResourceHandler(eng *engine.Engine) *ResourceHandler {
	return &ResourceHandler{engine: eng}
}

// ListWorkCenters GET /api/v1/work-centers
func (h *ResourceHandler) ListWorkCenters(c *gin.Context) {
	items, err := h.engine.ListWorkCenters(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(dto.ListResponse[*block.WorkCenter]{
		Total: len(items),
		Items: items,
	}))
}

// GetWorkCenter GET /api/v1/work-centers/:id
func (h *ResourceHandler) GetWorkCenter(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	wc, err := h.engine.GetWorkCenter(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(wc))
}

// CreateWorkCenter POST /api/v1/work-centers
func (h *ResourceHandler) CreateWorkCenter(c *gin.Context) {
	var req dto.WorkCenterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "请求体错误: %v", err)
		return
	}
	wc := &block.WorkCenter{Code: req.Code, Name: req.Name, Capacity: req.Capacity}
	if err := h.engine.CreateWorkCenter(c.Request.Context(), wc); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(wc))
}

// UpdateWorkCenter PUT /api/v1/work-centers/:id
func (h *ResourceHandler) UpdateWorkCenter(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.WorkCenterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "请求体错误: %v", err)
		return
	}
	wc := &block.WorkCenter{ID: id, Code: req.Code, Name: req.Name, Capacity: req.Capacity}
	if err := h.engine.UpdateWorkCenter(c.Request.Context(), wc); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(wc))
}

// DeleteWorkCenter DELETE /api/v1/work-centers/:id
func (h *ResourceHandler) DeleteWorkCenter(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.engine.DeleteWorkCenter(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(map[string]int64{"deleted": id}))
}

// ListArticles GET /api/v1/articles
func (h *ResourceHandler) ListArticles(c *gin.Context) {
	items, err := h.engine.ListArticles(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(dto.ListResponse[*block.Article]{
		Total: len(items),
		Items: items,
	}))
}

// GetArticle GET /api/v1/articles/:id
func (h *ResourceHandler) GetArticle(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	a, err := h.engine.GetArticle(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(a))
}

// CreateArticle POST /api/v1/articles
func (h *ResourceHandler) CreateArticle(c *gin.Context) {
	var req dto.ArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "请求体错误: %v", err)
		return
	}
	a := &block.Article{Code: req.Code, Designation: req.Designation}
	if err := h.engine.CreateArticle(c.Request.Context(), a); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(a))
}

// UpdateArticle PUT /api/v1/articles/:id
func (h *ResourceHandler) UpdateArticle(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.ArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "请求体错误: %v", err)
		return
	}
	a := &block.Article{ID: id, Code: req.Code, Designation: req.Designation}
	if err := h.engine.UpdateArticle(c.Request.Context(), a); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(a))
}

// DeleteArticle DELETE /api/v1/articles/:id
func (h *ResourceHandler) DeleteArticle(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.engine.DeleteArticle(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(map[string]int64{"deleted": id}))
}
