package planner

import (
	"time"

	"github.com/emirpasic/gods/queues/priorityqueue"
)

// readyItem 就绪队列元素
type readyItem struct {
	id  int64
	key time.Time // 倒排时为前置约束推出的结束时间；正排不使用
}

// readyQueue 就绪队列（Kahn算法的候选集合），出队顺序确定
type readyQueue struct {
	q *priorityqueue.Queue
}

// newForwardQueue 正排：按ID升序出队
func newForwardQueue() *readyQueue {
	return &readyQueue{q: priorityqueue.NewWith(func(a, b interface{}) int {
		return compareID(a.(readyItem).id, b.(readyItem).id)
	})}
}

// newBackwardQueue 倒排：按结束时间降序出队，相同则按ID升序
func newBackwardQueue() *readyQueue {
	return &readyQueue{q: priorityqueue.NewWith(func(a, b interface{}) int {
		x, y := a.(readyItem), b.(readyItem)
		switch {
		case x.key.After(y.key):
			return -1
		case x.key.Before(y.key):
			return 1
		}
		return compareID(x.id, y.id)
	})}
}

func (r *readyQueue) push(item readyItem) {
	r.q.Enqueue(item)
}

func (r *readyQueue) pop() (readyItem, bool) {
	v, ok := r.q.Dequeue()
	if !ok {
		return readyItem{}, false
	}
	return v.(readyItem), true
}

func compareID(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
