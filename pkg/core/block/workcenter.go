package block

import "time"

// WorkCenter 工作中心（机器/负荷中心）
// 同一时刻只能处理一个Block
type WorkCenter struct {
	ID       int64   `json:"id"`
	Code     string  `json:"code"`
	Name     string  `json:"name"`
	Capacity float64 `json:"capacity"`
}

// Article 物料
type Article struct {
	ID          int64  `json:"id"`
	Code        string `json:"code"`
	Designation string `json:"designation"`
}

// 订单排程模式
const (
	ModeASAP  = "asap"
	ModeRETRO = "retro"
)

// RoutingCode 工艺路线编码（DT），归属于一个物料
type RoutingCode struct {
	ID        int64  `json:"id"`
	Code      string `json:"code"`
	ArticleID int64  `json:"article_id"`
}

// Order 制造订单（OF），按工艺路线生产，其工序是order_id指向它的Block
// Mode为asap时StartDate是排程起点，为retro时DueDate是交付时间
type Order struct {
	ID            int64      `json:"id"`
	Code          string     `json:"code"`
	RoutingCodeID *int64     `json:"routing_code_id,omitempty"`
	StartDate     *time.Time `json:"start_date,omitempty"`
	DueDate       *time.Time `json:"due_date,omitempty"`
	Mode          string     `json:"mode"`
}
