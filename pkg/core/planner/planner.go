// Package planner 工序排程引擎：正排（ASAP）与倒排（RETRO）
//
// 排程在内存快照上进行：调用方加载所有Block，排程直接写入每个未完成Block的
// PlannedStart/PlannedFinish，并返回Result，由调用方在一个事务中持久化。
// Planner本身不持有锁也不在调用之间保存状态，同一数据集上的多次运行需由调用方串行化。
package planner

import (
	"time"

	"github.com/LENAX/plan-engine/pkg/core/block"
)

// Planner 排程器（对外导出）
type Planner struct {
	now func() time.Time
}

// Option Planner选项
type Option func(*Planner)

// WithClock 设置正排未指定开始时间时使用的时钟
func WithClock(now func() time.Time) Option {
	return func(p *Planner) {
		p.now = now
	}
}

// New 创建Planner
func New(opts ...Option) *Planner {
	p := &Planner{now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run 按方向执行一次排程
// 正排anchor为空时使用当前时间；倒排anchor为空返回ErrDueDateRequired
func (p *Planner) Run(direction Direction, anchor *time.Time, blocks []*block.Block) (*Result, error) {
	switch direction {
	case Forward:
		base := p.now()
		if anchor != nil {
			base = *anchor
		}
		return p.ScheduleForward(blocks, base), nil
	case Backward:
		if anchor == nil {
			return nil, ErrDueDateRequired
		}
		return p.ScheduleBackward(blocks, *anchor), nil
	default:
		return nil, ErrUnknownDirection
	}
}

// ScheduleForward 正排（ASAP）
//
// 就绪条件：没有前置，或前置已在本次运行中排定，或前置已完成（取其PlannedFinish，没有则取base）。
// 开始时间 = max(前置结束时间或base, 工作中心空闲时间)，结束时间 = 开始 + 时长。
// 多个Block同时就绪时按ID升序处理。前置不存在或处于环中的Block不会就绪，计入Unscheduled。
func (p *Planner) ScheduleForward(blocks []*block.Block, base time.Time) *Result {
	idx := newSnapshotIndex(blocks)
	idx.resetPlans()

	result := &Result{
		Direction: Forward,
		Anchor:    base,
		Total:     len(idx.pending),
		Entries:   make([]Entry, 0, len(idx.pending)),
	}

	finishOf := make(map[int64]time.Time, len(idx.pending))
	machineFreeAt := make(map[int64]time.Time)
	done := make(map[int64]bool, len(idx.pending))

	ready := newForwardQueue()
	for _, b := range idx.pending {
		if b.PredecessorID == nil {
			ready.push(readyItem{id: b.ID})
			continue
		}
		pred, ok := idx.byID[*b.PredecessorID]
		if ok && pred.Completed {
			ready.push(readyItem{id: b.ID})
		}
		// 前置未完成：等待前置排定后由后续索引唤醒；前置不存在：永不就绪
	}

	for {
		item, ok := ready.pop()
		if !ok {
			break
		}
		b := idx.byID[item.id]

		start := base
		if b.PredecessorID != nil {
			if f, scheduled := finishOf[*b.PredecessorID]; scheduled {
				start = f
			} else if pred := idx.byID[*b.PredecessorID]; pred.PlannedFinish != nil {
				start = *pred.PlannedFinish
			}
		}
		if b.WorkCenterID != nil {
			if free, busy := machineFreeAt[*b.WorkCenterID]; busy && free.After(start) {
				start = free
			}
		}
		finish := start.Add(b.Duration())

		b.SetPlan(start, finish)
		finishOf[b.ID] = finish
		if b.WorkCenterID != nil {
			machineFreeAt[*b.WorkCenterID] = finish
		}
		done[b.ID] = true
		result.Entries = append(result.Entries, Entry{ID: b.ID, Start: start, Finish: finish})

		for _, succ := range idx.successors[b.ID] {
			if !done[succ] {
				ready.push(readyItem{id: succ})
			}
		}
	}

	result.Scheduled = len(result.Entries)
	result.Unscheduled = idx.unscheduled(done)
	return result
}

// ScheduleBackward 倒排（RETRO）
//
// 没有未完成后续工序的Block在due结束；其余Block在所有未完成后续工序排定后，
// 以后续工序最早开始时间作为结束时间。开始 = 结束 - 时长。
// 工作中心约束与正排对称：记录每个工作中心已占用区间的最早开始时间，
// 结束时间不得晚于该时间；就绪Block按结束时间降序、ID升序处理。
func (p *Planner) ScheduleBackward(blocks []*block.Block, due time.Time) *Result {
	idx := newSnapshotIndex(blocks)
	idx.resetPlans()

	result := &Result{
		Direction: Backward,
		Anchor:    due,
		Total:     len(idx.pending),
		Entries:   make([]Entry, 0, len(idx.pending)),
	}

	remaining := make(map[int64]int, len(idx.pending))
	latestFinish := make(map[int64]time.Time, len(idx.pending))
	machineBusyFrom := make(map[int64]time.Time)
	done := make(map[int64]bool, len(idx.pending))

	ready := newBackwardQueue()
	for _, b := range idx.pending {
		remaining[b.ID] = len(idx.successors[b.ID])
		if remaining[b.ID] == 0 {
			ready.push(readyItem{id: b.ID, key: due})
		}
	}

	for {
		item, ok := ready.pop()
		if !ok {
			break
		}
		b := idx.byID[item.id]

		finish := item.key
		if b.WorkCenterID != nil {
			if busy, used := machineBusyFrom[*b.WorkCenterID]; used && busy.Before(finish) {
				finish = busy
			}
		}
		start := finish.Add(-b.Duration())

		b.SetPlan(start, finish)
		if b.WorkCenterID != nil {
			machineBusyFrom[*b.WorkCenterID] = start
		}
		done[b.ID] = true
		result.Entries = append(result.Entries, Entry{ID: b.ID, Start: start, Finish: finish})

		if b.PredecessorID == nil {
			continue
		}
		predID := *b.PredecessorID
		pred, ok := idx.byID[predID]
		if !ok || pred.Completed || done[predID] {
			continue
		}
		if lf, seen := latestFinish[predID]; !seen || start.Before(lf) {
			latestFinish[predID] = start
		}
		remaining[predID]--
		if remaining[predID] == 0 {
			ready.push(readyItem{id: predID, key: latestFinish[predID]})
		}
	}

	result.Scheduled = len(result.Entries)
	result.Unscheduled = idx.unscheduled(done)
	return result
}
