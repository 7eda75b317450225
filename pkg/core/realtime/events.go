// Package realtime 排程领域事件：通过watermill事件总线发布，并经websocket推送给前端
package realtime

import (
	"time"

	"github.com/google/uuid"
)

// EventType 事件类型
type EventType string

const (
	// Block事件
	EventBlockCreated EventType = "block.created"  // Block新建
	EventBlockUpdated EventType = "block.updated"  // Block更新
	EventBlockDeleted EventType = "block.deleted"  // Block删除
	EventBlocksImport EventType = "block.imported" // 批量导入

	// 排程事件
	EventPlanningCompleted EventType = "planning.completed" // 一次排程运行完成
)

// AllEventTypes 总线上注册的全部事件类型
var AllEventTypes = []EventType{
	EventBlockCreated,
	EventBlockUpdated,
	EventBlockDeleted,
	EventBlocksImport,
	EventPlanningCompleted,
}

// Event 领域事件基础结构
type Event struct {
	ID            string            `json:"id"`             // 事件ID（UUID）
	Type          EventType         `json:"type"`           // 事件类型
	Timestamp     time.Time         `json:"timestamp"`      // 事件时间
	Payload       interface{}       `json:"payload"`        // 事件负载
	Metadata      map[string]string `json:"metadata"`       // 元数据
	CorrelationID string            `json:"correlation_id"` // 关联ID（排程运行ID等）
}

// NewEvent 创建事件
func NewEvent(eventType EventType, payload interface{}) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now(),
		Payload:   payload,
		Metadata:  make(map[string]string),
	}
}

// WithMetadata 添加元数据
func (e *Event) WithMetadata(key, value string) *Event {
	if e.Metadata == nil {
		e.Metadata = make(map[string]string)
	}
	e.Metadata[key] = value
	return e
}

// WithCorrelationID 设置关联ID
func (e *Event) WithCorrelationID(correlationID string) *Event {
	e.CorrelationID = correlationID
	return e
}

// BlockPayload Block变更事件负载
type BlockPayload struct {
	BlockID int64       `json:"block_id"`
	Block   interface{} `json:"block,omitempty"` // 删除事件为空
}

// ImportPayload 批量导入事件负载
type ImportPayload struct {
	Count int `json:"count"`
}

// PlanningPayload 排程完成事件负载
type PlanningPayload struct {
	RunID       string    `json:"run_id"`
	Direction   string    `json:"direction"`
	Anchor      time.Time `json:"anchor"`
	Total       int       `json:"total"`
	Scheduled   int       `json:"scheduled"`
	Unscheduled []int64   `json:"unscheduled"`
	Trigger     string    `json:"trigger"` // api / cron / cli
}

// EventHandler 事件处理器函数类型
type EventHandler func(event *Event) error

// SubscriptionID 订阅ID类型
type SubscriptionID string
