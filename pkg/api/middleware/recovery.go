// Package middleware gin中间件
package middleware

import (
	"fmt"
	"log"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/LENAX/plan-engine/pkg/api/dto"
)

// IncidentHeader panic事件编号响应头，日志中使用同一编号
const IncidentHeader = "X-Incident-ID"

// Recovery 捕获handler中的panic，返回500并记录事件编号
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			incident := uuid.NewString()
			log.Printf("❌ [API] panic %s %s (incident=%s): %v\n%s",
				c.Request.Method, c.Request.URL.Path, incident, rec, debug.Stack())
			c.Header(IncidentHeader, incident)
			c.AbortWithStatusJSON(http.StatusInternalServerError, dto.NewErrorResponse(
				http.StatusInternalServerError,
				fmt.Sprintf("服务器内部错误 (incident=%s)", incident),
			))
		}()
		c.Next()
	}
}
