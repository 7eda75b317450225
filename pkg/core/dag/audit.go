package dag

import (
	"fmt"
	"sort"
	"strconv"

	godag "github.com/begmaroman/go-dag"

	"github.com/LENAX/plan-engine/pkg/core/block"
)

// vertex go-dag节点（实现Identifiable接口）
type vertex struct {
	blockID int64
}

// ID 实现 go-dag 的 Identifiable 接口
func (v *vertex) ID() string {
	return strconv.FormatInt(v.blockID, 10)
}

// AuditIssue 一条有问题的前置关系
type AuditIssue struct {
	BlockID       int64  `json:"block_id"`
	PredecessorID int64  `json:"predecessor_id"`
	Reason        string `json:"reason"`
}

// AuditReport 前置关系图审计结果（对外导出）
type AuditReport struct {
	Blocks int          `json:"blocks"`
	Edges  int          `json:"edges"`
	Roots  []int64      `json:"roots"`
	Issues []AuditIssue `json:"issues"`
}

// OK 图中不存在循环或悬空引用
func (r *AuditReport) OK() bool {
	return len(r.Issues) == 0
}

// Audit 将整个快照加载进go-dag，报告被拒绝（成环）或指向不存在工序的前置关系（对外导出）
// 按ID升序加边，因此同一个环中ID最大的那条边会被报告
func Audit(blocks []*block.Block) *AuditReport {
	sorted := make([]*block.Block, len(blocks))
	copy(sorted, blocks)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	report := &AuditReport{
		Blocks: len(sorted),
		Roots:  make([]int64, 0),
		Issues: make([]AuditIssue, 0),
	}

	d := godag.NewDAG[*vertex]()
	known := make(map[int64]bool, len(sorted))
	for _, b := range sorted {
		if _, err := d.AddVertex(&vertex{blockID: b.ID}); err != nil {
			report.Issues = append(report.Issues, AuditIssue{
				BlockID: b.ID,
				Reason:  fmt.Sprintf("添加节点失败: %v", err),
			})
			continue
		}
		known[b.ID] = true
	}

	for _, b := range sorted {
		if b.PredecessorID == nil || !known[b.ID] {
			continue
		}
		pred := *b.PredecessorID
		if !known[pred] {
			report.Issues = append(report.Issues, AuditIssue{
				BlockID:       b.ID,
				PredecessorID: pred,
				Reason:        "前置工序不存在",
			})
			continue
		}
		// 前置 -> 后续
		src := strconv.FormatInt(pred, 10)
		dst := strconv.FormatInt(b.ID, 10)
		if err := d.AddEdge(src, dst); err != nil {
			report.Issues = append(report.Issues, AuditIssue{
				BlockID:       b.ID,
				PredecessorID: pred,
				Reason:        fmt.Sprintf("检测到循环依赖: %v", err),
			})
			continue
		}
		report.Edges++
	}

	for id := range d.GetRoots() {
		if n, err := strconv.ParseInt(id, 10, 64); err == nil {
			report.Roots = append(report.Roots, n)
		}
	}
	sort.Slice(report.Roots, func(i, j int) bool { return report.Roots[i] < report.Roots[j] })

	return report
}
