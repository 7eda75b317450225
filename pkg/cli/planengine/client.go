// Package planengine 排程引擎HTTP API客户端
package planengine

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/LENAX/plan-engine/pkg/api/dto"
	"github.com/LENAX/plan-engine/pkg/core/block"
	"github.com/LENAX/plan-engine/pkg/core/dag"
	"github.com/LENAX/plan-engine/pkg/core/engine"
)

// APIError 服务端返回的业务错误
type APIError struct {
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// PlanEngine HTTP API客户端
type PlanEngine struct {
	baseURL    string
	httpClient *http.Client
}

// New 创建PlanEngine客户端
func New(baseURL string) *PlanEngine {
	return &PlanEngine{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// ListOptions 工序列表查询参数
type ListOptions struct {
	Query     string
	Completed *bool
	OrderBy   string
	Desc      bool
	Page      int
	Size      int
}

func (o ListOptions) values() url.Values {
	params := url.Values{}
	if o.Query != "" {
		params.Set("q", o.Query)
	}
	if o.Completed != nil {
		params.Set("completed", strconv.FormatBool(*o.Completed))
	}
	if o.OrderBy != "" {
		params.Set("order_by", o.OrderBy)
	}
	if o.Desc {
		params.Set("order_dir", "desc")
	}
	if o.Page > 0 {
		params.Set("page", strconv.Itoa(o.Page))
	}
	if o.Size > 0 {
		params.Set("size", strconv.Itoa(o.Size))
	}
	return params
}

// ========== Block API ==========

// ListBlocks 条件分页查询工序
func (p *PlanEngine) ListBlocks(opts ListOptions) (*dto.ListResponse[*block.Block], error) {
	path := "/api/v1/blocks"
	if params := opts.values(); len(params) > 0 {
		path += "?" + params.Encode()
	}
	var resp dto.APIResponse[dto.ListResponse[*block.Block]]
	if err := p.do(http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// GetBlock 获取工序
func (p *PlanEngine) GetBlock(id int64) (*block.Block, error) {
	var resp dto.APIResponse[*block.Block]
	if err := p.do(http.MethodGet, fmt.Sprintf("/api/v1/blocks/%d", id), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// CompleteBlock 关闭工序；produced不为空时同时更新产出数量
func (p *PlanEngine) CompleteBlock(id int64, produced *float64) (*block.Block, error) {
	body := map[string]interface{}{"completed": true}
	if produced != nil {
		body["qty_produced"] = *produced
	}
	var resp dto.APIResponse[*block.Block]
	if err := p.do(http.MethodPatch, fmt.Sprintf("/api/v1/blocks/%d", id), body, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// ========== Planning API ==========

// RunPlanning 执行排程；mode为asap时date是开始时间，retro时是交付时间
func (p *PlanEngine) RunPlanning(mode, date string) (*engine.RunReport, error) {
	req := dto.RunPlanningRequest{}
	if mode == "retro" {
		req.DueDate = date
	} else {
		req.StartDate = date
	}
	path := "/api/v1/planning/run"
	if mode != "" {
		path += "?mode=" + url.QueryEscape(mode)
	}
	var resp dto.APIResponse[*engine.RunReport]
	if err := p.do(http.MethodPost, path, req, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// Status 排程进度统计
func (p *PlanEngine) Status() (*engine.PlanningStatus, error) {
	var resp dto.APIResponse[*engine.PlanningStatus]
	if err := p.do(http.MethodGet, "/api/v1/planning/status", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// Integrity 前置关系图审计
func (p *PlanEngine) Integrity() (*dag.AuditReport, error) {
	var resp dto.APIResponse[*dag.AuditReport]
	if err := p.do(http.MethodGet, "/api/v1/planning/integrity", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// ========== Health API ==========

// Health 健康检查
func (p *PlanEngine) Health() (*dto.HealthResponse, error) {
	var resp dto.APIResponse[dto.HealthResponse]
	if err := p.do(http.MethodGet, "/health", nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// ========== HTTP Methods ==========

// envelope 只解析响应的code/message
type envelope struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (p *PlanEngine) do(method, path string, body, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("序列化请求体失败: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, p.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("创建请求失败: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP请求失败: %w", err)
	}
	defer resp.Body.Close()
	return p.parseResponse(resp, result)
}

func (p *PlanEngine) parseResponse(resp *http.Response, result interface{}) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("读取响应体失败: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("解析响应失败: %w, body: %s", err, string(body))
	}
	if env.Code != 0 {
		return &APIError{Code: env.Code, Message: env.Message}
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("解析响应失败: %w, body: %s", err, string(body))
	}
	return nil
}
