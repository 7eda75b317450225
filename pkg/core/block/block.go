// Package block 定义生产工序（Block）及其关联的工作中心、物料等领域对象
package block

import (
	"math"
	"time"
)

// HoursPerWeek 一周折算的小时数（周工期换算使用）
const HoursPerWeek = 7 * 24

// MaxHours time.Duration能表示的最大小时数，约292年
const MaxHours = float64(math.MaxInt64) / float64(time.Hour)

// MaxDuration 工序时长上限，超出的工时按此截断
const MaxDuration = time.Duration(math.MaxInt64)

// Block 生产工序（对外导出）
// 一个Block最多只有一个直接前置工序，可以有多个后续工序；
// 共享同一工作中心（WorkCenterID）的Block在时间上不允许重叠。
type Block struct {
	ID                 int64      `json:"id"`
	Name               string     `json:"name"`
	QtyToProduce       float64    `json:"qty_to_produce"`
	QtyProduced        float64    `json:"qty_produced"`
	PlannedHours       *float64   `json:"planned_hours,omitempty"` // 计划工时（小时），优先于PlannedWeeks
	SpentHours         *float64   `json:"spent_hours,omitempty"`
	PlannedWeeks       *float64   `json:"planned_weeks,omitempty"` // 计划工期（周）
	WorkCenterID       *int64     `json:"work_center_id,omitempty"`
	ManufacturingOrder *int64     `json:"order_id,omitempty"`
	PredecessorID      *int64     `json:"predecessor_id,omitempty"`
	Completed          bool       `json:"completed"`
	PlannedStart       *time.Time `json:"planned_start,omitempty"`
	PlannedFinish      *time.Time `json:"planned_finish,omitempty"`
}

// Duration 返回工序时长
// 优先使用计划工时，其次使用周工期（周 × 7 × 24小时），都为空时为0；
// 负值和NaN按0处理，超过MaxHours按MaxDuration处理
func (b *Block) Duration() time.Duration {
	hours := b.TotalHours()
	switch {
	case math.IsNaN(hours) || hours <= 0:
		return 0
	case hours >= MaxHours:
		return MaxDuration
	}
	return time.Duration(hours * float64(time.Hour))
}

// TotalHours 返回折算后的工时（未做截断）
func (b *Block) TotalHours() float64 {
	switch {
	case b.PlannedHours != nil:
		return *b.PlannedHours
	case b.PlannedWeeks != nil:
		return *b.PlannedWeeks * HoursPerWeek
	}
	return 0
}

// HasPredecessor 是否存在前置工序
func (b *Block) HasPredecessor() bool {
	return b.PredecessorID != nil
}

// HasWorkCenter 是否分配了工作中心
func (b *Block) HasWorkCenter() bool {
	return b.WorkCenterID != nil
}

// ClearPlan 清空计划时间
func (b *Block) ClearPlan() {
	b.PlannedStart = nil
	b.PlannedFinish = nil
}

// SetPlan 设置计划开始/结束时间
func (b *Block) SetPlan(start, finish time.Time) {
	s, f := start, finish
	b.PlannedStart = &s
	b.PlannedFinish = &f
}

// Clone 深拷贝Block（指针字段单独复制）
func (b *Block) Clone() *Block {
	c := *b
	c.PlannedHours = cloneFloat(b.PlannedHours)
	c.SpentHours = cloneFloat(b.SpentHours)
	c.PlannedWeeks = cloneFloat(b.PlannedWeeks)
	c.WorkCenterID = cloneInt(b.WorkCenterID)
	c.ManufacturingOrder = cloneInt(b.ManufacturingOrder)
	c.PredecessorID = cloneInt(b.PredecessorID)
	c.PlannedStart = cloneTime(b.PlannedStart)
	c.PlannedFinish = cloneTime(b.PlannedFinish)
	return &c
}

// Int64 返回指向v的指针
func Int64(v int64) *int64 { return &v }

// Float64 返回指向v的指针
func Float64(v float64) *float64 { return &v }

func cloneFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneInt(p *int64) *int64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneTime(p *time.Time) *time.Time {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
