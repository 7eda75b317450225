package sqlstore

import (
	"database/sql"
	"time"

	"github.com/LENAX/plan-engine/pkg/core/block"
	"github.com/LENAX/plan-engine/pkg/storage/dao"
)

func blockToDAO(b *block.Block, now time.Time) *dao.BlockDAO {
	return &dao.BlockDAO{
		ID:            b.ID,
		Name:          b.Name,
		QtyToProduce:  b.QtyToProduce,
		QtyProduced:   b.QtyProduced,
		PlannedHours:  nullFloat(b.PlannedHours),
		SpentHours:    nullFloat(b.SpentHours),
		PlannedWeeks:  nullFloat(b.PlannedWeeks),
		WorkCenterID:  nullInt(b.WorkCenterID),
		OrderID:       nullInt(b.ManufacturingOrder),
		PredecessorID: nullInt(b.PredecessorID),
		Completed:     b.Completed,
		PlannedStart:  nullTime(b.PlannedStart),
		PlannedFinish: nullTime(b.PlannedFinish),
		CreateTime:    now,
		UpdateTime:    now,
	}
}

func daoToBlock(d *dao.BlockDAO) *block.Block {
	return &block.Block{
		ID:                 d.ID,
		Name:               d.Name,
		QtyToProduce:       d.QtyToProduce,
		QtyProduced:        d.QtyProduced,
		PlannedHours:       floatPtr(d.PlannedHours),
		SpentHours:         floatPtr(d.SpentHours),
		PlannedWeeks:       floatPtr(d.PlannedWeeks),
		WorkCenterID:       intPtr(d.WorkCenterID),
		ManufacturingOrder: intPtr(d.OrderID),
		PredecessorID:      intPtr(d.PredecessorID),
		Completed:          d.Completed,
		PlannedStart:       timePtr(d.PlannedStart),
		PlannedFinish:      timePtr(d.PlannedFinish),
	}
}

func nullFloat(p *float64) sql.NullFloat64 {
	if p == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *p, Valid: true}
}

func nullInt(p *int64) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *p, Valid: true}
}

// nullTime 统一以UTC写入
func nullTime(p *time.Time) sql.NullTime {
	if p == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: p.UTC(), Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func intPtr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	i := v.Int64
	return &i
}

func timePtr(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time.UTC()
	return &t
}

func orderToDAO(o *block.Order) *dao.OrderDAO {
	return &dao.OrderDAO{
		ID:            o.ID,
		Code:          o.Code,
		RoutingCodeID: nullInt(o.RoutingCodeID),
		StartDate:     nullTime(o.StartDate),
		DueDate:       nullTime(o.DueDate),
		Mode:          o.Mode,
	}
}

func daoToOrder(d *dao.OrderDAO) *block.Order {
	return &block.Order{
		ID:            d.ID,
		Code:          d.Code,
		RoutingCodeID: intPtr(d.RoutingCodeID),
		StartDate:     timePtr(d.StartDate),
		DueDate:       timePtr(d.DueDate),
		Mode:          d.Mode,
	}
}
