package storage

// Dialect SQL方言接口（对外导出）
// 封装不同数据库的SQL语法差异
type Dialect interface {
	// Name 返回方言名称（如 "sqlite", "mysql", "postgres"）
	Name() string

	// DriverName 返回database/sql驱动名（sqlx.Open使用）
	DriverName() string

	// UpsertSQL 返回INSERT或UPDATE的SQL语句（使用:name命名参数）
	// tableName: 表名
	// columns: 列名列表
	// conflictColumn: 冲突判断列（通常是主键）
	// updateColumns: 需要更新的列（不含主键）
	UpsertSQL(tableName string, columns []string, conflictColumn string, updateColumns []string) string

	// CreateTableSQL 对通用DDL做方言修正（如MySQL的ENGINE声明）
	CreateTableSQL(schema string) string

	// ConfigureDB 配置数据库连接（如SQLite的PRAGMA）
	// 返回需要执行的SQL语句列表
	ConfigureDB() []string

	// AutoIncrementKeyword 返回自增主键定义
	// SQLite: INTEGER PRIMARY KEY AUTOINCREMENT
	// MySQL: BIGINT PRIMARY KEY AUTO_INCREMENT
	// PostgreSQL: BIGSERIAL PRIMARY KEY
	AutoIncrementKeyword() string

	// ReturningID 插入后是否需要通过 RETURNING id 取回主键
	// PostgreSQL的驱动不支持LastInsertId
	ReturningID() bool

	// BooleanType 返回布尔类型
	// SQLite: INTEGER
	// MySQL: TINYINT(1)
	// PostgreSQL: BOOLEAN
	BooleanType() string

	// VarcharType 返回可建索引的字符串类型
	// SQLite: TEXT
	// MySQL/PostgreSQL: VARCHAR(n)
	VarcharType(size int) string

	// TextType 返回文本类型
	TextType() string

	// TimestampType 返回时间戳类型
	// SQLite/MySQL: DATETIME
	// PostgreSQL: TIMESTAMP
	TimestampType() string

	// FloatType 返回浮点类型
	// SQLite: REAL
	// MySQL: DOUBLE
	// PostgreSQL: DOUBLE PRECISION
	FloatType() string
}
