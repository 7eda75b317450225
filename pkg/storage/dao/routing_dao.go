package dao

import "database/sql"

// RoutingCodeDAO routing_code表的数据访问对象（内部使用）
type RoutingCodeDAO struct {
	ID        int64  `db:"id"`
	Code      string `db:"code"`
	ArticleID int64  `db:"article_id"`
}

// OrderDAO manufacturing_order表的数据访问对象（内部使用）
type OrderDAO struct {
	ID            int64         `db:"id"`
	Code          string        `db:"code"`
	RoutingCodeID sql.NullInt64 `db:"routing_code_id"`
	StartDate     sql.NullTime  `db:"start_date"`
	DueDate       sql.NullTime  `db:"due_date"`
	Mode          string        `db:"mode"`
}
