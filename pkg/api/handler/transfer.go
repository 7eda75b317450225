package handler

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/LENAX/plan-engine/pkg/api/dto"
	"github.com/LENAX/plan-engine/pkg/core/engine"
)

// TransferHandler CSV导入导出处理器
type TransferHandler struct {
	engine *engine.Engine
}

// NewTransferHandler 创建TransferHandler
func NewTransferHandler(eng *engine.Engine) *TransferHandler {
	return &TransferHandler{engine: eng}
}

// Export 导出全部工序
// GET /api/v1/transfer/blocks.csv
func (h *TransferHandler) Export(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.engine.ExportCSV(c.Request.Context(), &buf); err != nil {
		writeError(c, err)
		return
	}
	filename := fmt.Sprintf("blocks-%s.csv", time.Now().Format("20060102-150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// Import 导入工序；支持multipart字段file，或直接以请求体上传CSV
// POST /api/v1/transfer/blocks
func (h *TransferHandler) Import(c *gin.Context) {
	var src io.Reader = c.Request.Body
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fh, err := c.FormFile("file")
		if err != nil {
			badRequest(c, "缺少上传文件file: %v", err)
			return
		}
		f, err := fh.Open()
		if err != nil {
			badRequest(c, "读取上传文件失败: %v", err)
			return
		}
		defer f.Close()
		src = f
	}

	n, err := h.engine.ImportCSV(c.Request.Context(), src)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(dto.ImportResponse{Imported: n}))
}
