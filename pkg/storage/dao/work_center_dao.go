package dao

// WorkCenterDAO work_center表的数据访问对象（内部使用）
type WorkCenterDAO struct {
	ID       int64   `db:"id"`
	Code     string  `db:"code"`
	Name     string  `db:"name"`
	Capacity float64 `db:"capacity"`
}

// ArticleDAO article表的数据访问对象（内部使用）
type ArticleDAO struct {
	ID          int64  `db:"id"`
	Code        string `db:"code"`
	Designation string `db:"designation"`
}
