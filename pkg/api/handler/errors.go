// Package handler HTTP API处理器
package handler

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/LENAX/plan-engine/pkg/api/dto"
	"github.com/LENAX/plan-engine/pkg/core/engine"
	"github.com/LENAX/plan-engine/pkg/core/planner"
	"github.com/LENAX/plan-engine/pkg/storage"
)

// statusFor 领域错误到HTTP状态码的映射
func statusFor(err error) int {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrCycle),
		errors.Is(err, storage.ErrDuplicateCode),
		errors.Is(err, storage.ErrInUse):
		return http.StatusConflict
	case errors.Is(err, engine.ErrPredecessorNotFound),
		errors.Is(err, engine.ErrClosingRule),
		errors.Is(err, engine.ErrInvalidBlock),
		errors.Is(err, engine.ErrInvalidResource),
		errors.Is(err, planner.ErrDueDateRequired),
		errors.Is(err, planner.ErrUnknownDirection):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeError 按错误类型写出响应，5xx额外记录日志
func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Printf("❌ [API] %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(status, dto.NewErrorResponse(status, err.Error()))
}

// badRequest 写出400响应
func badRequest(c *gin.Context, format string, args ...interface{}) {
	c.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, fmt.Sprintf(format, args...)))
}

// parseID 解析路径中的正整数ID，失败时写出400并返回false
func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "ID无效: %s", c.Param("id"))
		return 0, false
	}
	return id, true
}
