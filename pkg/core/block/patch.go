package block

import (
	"bytes"
	"encoding/json"
)

// OptionalInt64 可区分"未提供"与"显式置空"的整数字段（PATCH语义）
type OptionalInt64 struct {
	Set   bool
	Value *int64
}

// UnmarshalJSON 字段出现即视为Set，null表示置空
func (o *OptionalInt64) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(data, []byte("null")) {
		o.Value = nil
		return nil
	}
	var v int64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// SetInt64 构造一个已设置的OptionalInt64，v为nil表示置空
func SetInt64(v *int64) OptionalInt64 {
	return OptionalInt64{Set: true, Value: v}
}

// OptionalFloat64 可区分"未提供"与"显式置空"的浮点字段
type OptionalFloat64 struct {
	Set   bool
	Value *float64
}

// UnmarshalJSON 字段出现即视为Set，null表示置空
func (o *OptionalFloat64) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(data, []byte("null")) {
		o.Value = nil
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// SetFloat64 构造一个已设置的OptionalFloat64
func SetFloat64(v *float64) OptionalFloat64 {
	return OptionalFloat64{Set: true, Value: v}
}

// Patch Block部分更新
type Patch struct {
	Name               *string         `json:"name"`
	QtyToProduce       *float64        `json:"qty_to_produce"`
	QtyProduced        *float64        `json:"qty_produced"`
	PlannedHours       OptionalFloat64 `json:"planned_hours"`
	SpentHours         OptionalFloat64 `json:"spent_hours"`
	PlannedWeeks       OptionalFloat64 `json:"planned_weeks"`
	WorkCenterID       OptionalInt64   `json:"work_center_id"`
	ManufacturingOrder OptionalInt64   `json:"order_id"`
	PredecessorID      OptionalInt64   `json:"predecessor_id"`
	Completed          *bool           `json:"completed"`
}

// Apply 把Patch应用到Block的副本上并返回副本
func (p *Patch) Apply(b *Block) *Block {
	c := b.Clone()
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.QtyToProduce != nil {
		c.QtyToProduce = *p.QtyToProduce
	}
	if p.QtyProduced != nil {
		c.QtyProduced = *p.QtyProduced
	}
	if p.PlannedHours.Set {
		c.PlannedHours = cloneFloat(p.PlannedHours.Value)
	}
	if p.SpentHours.Set {
		c.SpentHours = cloneFloat(p.SpentHours.Value)
	}
	if p.PlannedWeeks.Set {
		c.PlannedWeeks = cloneFloat(p.PlannedWeeks.Value)
	}
	if p.WorkCenterID.Set {
		c.WorkCenterID = cloneInt(p.WorkCenterID.Value)
	}
	if p.ManufacturingOrder.Set {
		c.ManufacturingOrder = cloneInt(p.ManufacturingOrder.Value)
	}
	if p.PredecessorID.Set {
		c.PredecessorID = cloneInt(p.PredecessorID.Value)
	}
	if p.Completed != nil {
		c.Completed = *p.Completed
	}
	return c
}

// ChangesPredecessor 是否把前置改为一个非空值
func (p *Patch) ChangesPredecessor() bool {
	return p.PredecessorID.Set && p.PredecessorID.Value != nil
}

// Closes 是否把Block标记为完成
func (p *Patch) Closes() bool {
	return p.Completed != nil && *p.Completed
}

// ReplacePatch 用b的全部可编辑字段构造Patch（PUT整体替换语义）
// 计划开始/结束时间由排程维护，不在其中
func ReplacePatch(b *Block) Patch {
	name, toProduce, produced, completed := b.Name, b.QtyToProduce, b.QtyProduced, b.Completed
	return Patch{
		Name:               &name,
		QtyToProduce:       &toProduce,
		QtyProduced:        &produced,
		PlannedHours:       SetFloat64(cloneFloat(b.PlannedHours)),
		SpentHours:         SetFloat64(cloneFloat(b.SpentHours)),
		PlannedWeeks:       SetFloat64(cloneFloat(b.PlannedWeeks)),
		WorkCenterID:       SetInt64(cloneInt(b.WorkCenterID)),
		ManufacturingOrder: SetInt64(cloneInt(b.ManufacturingOrder)),
		PredecessorID:      SetInt64(cloneInt(b.PredecessorID)),
		Completed:          &completed,
	}
}
