package dto

// APIResponse 通用API响应结构
type APIResponse[T any] struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    T      `json:"data,omitempty"`
}

// NewSuccessResponse 创建成功响应
func NewSuccessResponse[T any](data T) APIResponse[T] {
	return APIResponse[T]{
		Code:    0,
		Message: "success",
		Data:    data,
	}
}

// NewErrorResponse 创建错误响应
func NewErrorResponse(code int, message string) APIResponse[any] {
	return APIResponse[any]{
		Code:    code,
		Message: message,
	}
}

// ListResponse 列表响应
type ListResponse[T any] struct {
	Total   int  `json:"total"`
	Page    int  `json:"page,omitempty"`
	Size    int  `json:"size,omitempty"`
	Items   []T  `json:"items"`
	HasMore bool `json:"has_more"`
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	Uptime    string `json:"uptime"`
	Database  string `json:"database"`
	Timestamp string `json:"timestamp"`
}

// ImportResponse CSV导入响应
type ImportResponse struct {
	Imported int `json:"imported"`
}

// CycleCheckResponse 前置关系校验响应
type CycleCheckResponse struct {
	BlockID          int64 `json:"block_id"`
	PredecessorID    int64 `json:"predecessor_id"`
	WouldCreateCycle bool  `json:"would_create_cycle"`
}
