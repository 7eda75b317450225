package planner

import (
	"errors"
	"fmt"
	"time"
)

// Direction 排程方向
type Direction string

const (
	// Forward 正排（ASAP）：从开始时间向后推
	Forward Direction = "forward"
	// Backward 倒排（RETRO）：从交付时间向前推
	Backward Direction = "backward"
)

// ErrDueDateRequired 倒排缺少交付时间
var ErrDueDateRequired = errors.New("倒排（RETRO）必须提供交付时间")

// ErrUnknownDirection 不支持的排程方向
var ErrUnknownDirection = errors.New("排程方向必须是 forward 或 backward")

// ParseDirection 解析排程方向，兼容 asap/retro 写法
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "forward", "asap", "ASAP", "":
		return Forward, nil
	case "backward", "retro", "RETRO":
		return Backward, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownDirection, s)
	}
}

// Entry 单个Block的排程结果
type Entry struct {
	ID     int64     `json:"id"`
	Start  time.Time `json:"start"`
	Finish time.Time `json:"finish"`
}

// Result 一次排程运行的结果（对外导出）
type Result struct {
	Direction   Direction `json:"direction"`
	Anchor      time.Time `json:"anchor"`       // 正排为开始时间，倒排为交付时间
	Total       int       `json:"total"`        // 参与排程（未完成）的Block数
	Scheduled   int       `json:"scheduled"`    // 成功排程数
	Entries     []Entry   `json:"entries"`      // 按排程顺序
	Unscheduled []int64   `json:"unscheduled"`  // 未能排程的Block ID（升序）
}

// Partial 是否有Block未能排程
func (r *Result) Partial() bool {
	return r.Scheduled < r.Total
}

// Warning 部分排程时给用户的提示，否则为空
func (r *Result) Warning() string {
	if !r.Partial() {
		return ""
	}
	return fmt.Sprintf("%d/%d 个工序无法排程，请检查缺失的前置工序或循环依赖: %v",
		r.Total-r.Scheduled, r.Total, r.Unscheduled)
}
