package dao

import (
	"database/sql"
	"time"
)

// BlockDAO block表的数据访问对象（内部使用）
type BlockDAO struct {
	ID            int64           `db:"id"`
	Name          string          `db:"name"`
	QtyToProduce  float64         `db:"qty_to_produce"`
	QtyProduced   float64         `db:"qty_produced"`
	PlannedHours  sql.NullFloat64 `db:"planned_hours"`
	SpentHours    sql.NullFloat64 `db:"spent_hours"`
	PlannedWeeks  sql.NullFloat64 `db:"planned_weeks"`
	WorkCenterID  sql.NullInt64   `db:"work_center_id"`
	OrderID       sql.NullInt64   `db:"order_id"`
	PredecessorID sql.NullInt64   `db:"predecessor_id"`
	Completed     bool            `db:"completed"`
	PlannedStart  sql.NullTime    `db:"planned_start"`
	PlannedFinish sql.NullTime    `db:"planned_finish"`
	CreateTime    time.Time       `db:"create_time"`
	UpdateTime    time.Time       `db:"update_time"`
}

// BlockLinkDAO 前置关系投影（只读取id和predecessor_id）
type BlockLinkDAO struct {
	ID            int64         `db:"id"`
	PredecessorID sql.NullInt64 `db:"predecessor_id"`
}
