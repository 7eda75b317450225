package storage

import (
	"context"
	"errors"
	"strings"

	"github.com/LENAX/plan-engine/pkg/core/block"
	"github.com/LENAX/plan-engine/pkg/core/dag"
)

// ErrNotFound 记录不存在
var ErrNotFound = errors.New("记录不存在")

// ErrDuplicateCode 工作中心、物料、工艺路线或订单编码已存在
var ErrDuplicateCode = errors.New("编码已存在")

// ErrInUse 记录仍被其他记录引用，不能删除
var ErrInUse = errors.New("记录仍被引用")

// 分页默认值与上限
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// BlockSortColumns 允许排序的字段（请求参数 -> 列名）
var BlockSortColumns = map[string]string{
	"id":             "id",
	"name":           "name",
	"qty_to_produce": "qty_to_produce",
	"qty_produced":   "qty_produced",
	"planned_hours":  "planned_hours",
	"spent_hours":    "spent_hours",
	"planned_weeks":  "planned_weeks",
	"work_center_id": "work_center_id",
	"order_id":       "order_id",
	"completed":      "completed",
	"planned_start":  "planned_start",
	"planned_finish": "planned_finish",
}

// BlockFilter Block列表查询条件（对外导出）
type BlockFilter struct {
	Query        string // 名称包含（不区分大小写）
	Completed    *bool
	WorkCenterID *int64
	OrderID      *int64
	OrderBy      string // 见BlockSortColumns，未知字段按id排序
	Desc         bool
	Page         int // 从1开始
	Size         int // 1..MaxPageSize
}

// Normalize 修正分页与排序参数
func (f *BlockFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Size > MaxPageSize {
		f.Size = MaxPageSize
	}
	if f.Size < 1 {
		f.Size = 1
	}
	if _, ok := BlockSortColumns[f.OrderBy]; !ok {
		f.OrderBy = "id"
	}
	f.Query = strings.TrimSpace(f.Query)
}

// Offset 返回分页偏移量
func (f *BlockFilter) Offset() int {
	return (f.Page - 1) * f.Size
}

// BlockStats 排程进度统计
type BlockStats struct {
	Total     int `json:"total" db:"total"`
	Planned   int `json:"planned" db:"planned"`
	Completed int `json:"completed" db:"completed"`
}

// BlockRepository Block存储接口（对外导出）
type BlockRepository interface {
	// CreateBlock 新建Block，成功后回填ID
	CreateBlock(ctx context.Context, b *block.Block) error
	// GetBlock 根据ID查询，不存在返回ErrNotFound
	GetBlock(ctx context.Context, id int64) (*block.Block, error)
	// UpdateBlock 更新全部字段
	UpdateBlock(ctx context.Context, b *block.Block) error
	// DeleteBlock 删除Block，并解除其后续工序对它的前置引用
	DeleteBlock(ctx context.Context, id int64) error
	// ListBlocks 条件查询，返回当前页与总数
	ListBlocks(ctx context.Context, filter BlockFilter) ([]*block.Block, int, error)
	// AllBlocks 按ID升序返回全部Block（排程快照）
	AllBlocks(ctx context.Context) ([]*block.Block, error)
	// PredecessorLinks 返回全部前置关系（依赖校验使用）
	PredecessorLinks(ctx context.Context) (dag.Links, error)
	// ApplyPlan 在一个事务中写入给定Block的计划开始/结束时间
	ApplyPlan(ctx context.Context, blocks []*block.Block) error
	// UpsertBlocks 批量导入：有ID的按ID覆盖，没有ID的新建
	UpsertBlocks(ctx context.Context, blocks []*block.Block) error
	// BlockStats 统计总数、已排程数、已完成数
	BlockStats(ctx context.Context) (BlockStats, error)
}

// WorkCenterRepository 工作中心存储接口（对外导出）
type WorkCenterRepository interface {
	CreateWorkCenter(ctx context.Context, wc *block.WorkCenter) error
	GetWorkCenter(ctx context.Context, id int64) (*block.WorkCenter, error)
	UpdateWorkCenter(ctx context.Context, wc *block.WorkCenter) error
	DeleteWorkCenter(ctx context.Context, id int64) error
	ListWorkCenters(ctx context.Context) ([]*block.WorkCenter, error)
}

// ArticleRepository 物料存储接口（对外导出）
type ArticleRepository interface {
	CreateArticle(ctx context.Context, a *block.Article) error
	GetArticle(ctx context.Context, id int64) (*block.Article, error)
	UpdateArticle(ctx context.Context, a *block.Article) error
	// DeleteArticle 仍有工艺路线引用时返回ErrInUse
	DeleteArticle(ctx context.Context, id int64) error
	ListArticles(ctx context.Context) ([]*block.Article, error)
}

// RoutingCodeRepository 工艺路线存储接口（对外导出）
type RoutingCodeRepository interface {
	CreateRoutingCode(ctx context.Context, rc *block.RoutingCode) error
	GetRoutingCode(ctx context.Context, id int64) (*block.RoutingCode, error)
	UpdateRoutingCode(ctx context.Context, rc *block.RoutingCode) error
	// DeleteRoutingCode 仍有订单引用时返回ErrInUse
	DeleteRoutingCode(ctx context.Context, id int64) error
	ListRoutingCodes(ctx context.Context) ([]*block.RoutingCode, error)
}

// OrderRepository 制造订单存储接口（对外导出）
type OrderRepository interface {
	CreateOrder(ctx context.Context, o *block.Order) error
	GetOrder(ctx context.Context, id int64) (*block.Order, error)
	UpdateOrder(ctx context.Context, o *block.Order) error
	// DeleteOrder 删除订单，其工序的order_id被置空
	DeleteOrder(ctx context.Context, id int64) error
	ListOrders(ctx context.Context) ([]*block.Order, error)
}

// PlanningRepository 排程聚合存储（对外导出）
// 由各数据库实现统一提供
type PlanningRepository interface {
	BlockRepository
	WorkCenterRepository
	ArticleRepository
	RoutingCodeRepository
	OrderRepository
	// Ping 检查数据库连接
	Ping(ctx context.Context) error
	// Close 关闭数据库连接
	Close() error
}
