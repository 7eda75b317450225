package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/LENAX/plan-engine/pkg/api/dto"
	"github.com/LENAX/plan-engine/pkg/core/block"
	"github.com/LENAX/plan-engine/pkg/core/engine"
	"github.com/LENAX/plan-engine/pkg/storage"
)

// OrderHandler 工艺路线与制造订单API处理器
type OrderHandler struct {
	engine *engine.Engine
}

// NewOrderHandler 创建OrderHandler
func NewOrderHandler(eng *engine.Engine) *OrderHandler {
	return &OrderHandler{engine: eng}
}

// ListRoutingCodes GET /api/v1/routing-codes
func (h *OrderHandler) ListRoutingCodes(c *gin.Context) {
	items, err := h.engine.ListRoutingCodes(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(dto.ListResponse[*block.RoutingCode]{
		Total: len(items),
		Items: items,
	}))
}

// GetRoutingCode GET /api/v1/routing-codes/:id
func (h *OrderHandler) GetRoutingCode(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	rc, err := h.engine.GetRoutingCode(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(rc))
}

// CreateRoutingCode POST /api/v1/routing-codes
func (h *OrderHandler) CreateRoutingCode(c *gin.Context) {
	var req dto.RoutingCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "请求体错误: %v", err)
		return
	}
	rc := &block.RoutingCode{Code: req.Code, ArticleID: req.ArticleID}
	if err := h.engine.CreateRoutingCode(c.Request.Context(), rc); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(rc))
}

// UpdateRoutingCode PUT /api/v1/routing-codes/:id
func (h *OrderHandler) UpdateRoutingCode(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.RoutingCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "请求体错误: %v", err)
		return
	}
	rc := &block.RoutingCode{ID: id, Code: req.Code, ArticleID: req.ArticleID}
	if err := h.engine.UpdateRoutingCode(c.Request.Context(), rc); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(rc))
}

// DeleteRoutingCode DELETE /api/v1/routing-codes/:id
func (h *OrderHandler) DeleteRoutingCode(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.engine.DeleteRoutingCode(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(map[string]int64{"deleted": id}))
}

// ListOrders GET /api/v1/orders
func (h *OrderHandler) ListOrders(c *gin.Context) {
	items, err := h.engine.ListOrders(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(dto.ListResponse[*block.Order]{
		Total: len(items),
		Items: items,
	}))
}

// GetOrder GET /api/v1/orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	o, err := h.engine.GetOrder(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(o))
}

// CreateOrder POST /api/v1/orders
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	o, ok := bindOrder(c)
	if !ok {
		return
	}
	if err := h.engine.CreateOrder(c.Request.Context(), o); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(o))
}

// UpdateOrder PUT /api/v1/orders/:id
func (h *OrderHandler) UpdateOrder(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	o, ok := bindOrder(c)
	if !ok {
		return
	}
	o.ID = id
	if err := h.engine.UpdateOrder(c.Request.Context(), o); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(o))
}

// DeleteOrder DELETE /api/v1/orders/:id
func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.engine.DeleteOrder(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(map[string]int64{"deleted": id}))
}

// ListOrderBlocks 订单下的工序，按ID升序
// GET /api/v1/orders/:id/blocks
func (h *OrderHandler) ListOrderBlocks(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if _, err := h.engine.GetOrder(ctx, id); err != nil {
		writeError(c, err)
		return
	}
	filter := storage.BlockFilter{OrderID: &id, Size: storage.MaxPageSize}
	items, total, err := h.engine.ListBlocks(ctx, filter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(dto.ListResponse[*block.Block]{
		Total:   total,
		Page:    1,
		Size:    storage.MaxPageSize,
		Items:   items,
		HasMore: total > len(items),
	}))
}

func bindOrder(c *gin.Context) (*block.Order, bool) {
	var req dto.OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "请求体错误: %v", err)
		return nil, false
	}
	o, err := req.ToOrder()
	if err != nil {
		badRequest(c, "%v", err)
		return nil, false
	}
	return o, true
}
