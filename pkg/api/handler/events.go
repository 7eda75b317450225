package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/LENAX/plan-engine/pkg/api/dto"
	"github.com/LENAX/plan-engine/pkg/core/realtime"
)

// EventsHandler 事件推送处理器
type EventsHandler struct {
	hub *realtime.Hub
}

// NewEventsHandler 创建EventsHandler，hub为nil时推送不可用
func NewEventsHandler(hub *realtime.Hub) *EventsHandler {
	return &EventsHandler{hub: hub}
}

// Stream 升级为websocket并推送排程事件
// GET /ws/events
func (h *EventsHandler) Stream(c *gin.Context) {
	if h.hub == nil {
		c.JSON(http.StatusServiceUnavailable, dto.NewErrorResponse(http.StatusServiceUnavailable, "事件总线未启用"))
		return
	}
	h.hub.ServeWS(c.Writer, c.Request)
}
