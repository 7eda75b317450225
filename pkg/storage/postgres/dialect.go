package postgres

import (
	"fmt"
	"strings"

	"github.com/LENAX/plan-engine/pkg/storage"
)

// PostgresDialect PostgreSQL方言实现（对外导出）
type PostgresDialect struct{}

// NewPostgresDialect 创建PostgreSQL方言实例
func NewPostgresDialect() *PostgresDialect {
	return &PostgresDialect{}
}

// Name 返回方言名称
func (d *PostgresDialect) Name() string {
	return "postgres"
}

// DriverName 返回驱动名（lib/pq）
// sqlx据此把 ? 占位符重绑定为 $1, $2, ...
func (d *PostgresDialect) DriverName() string {
	return "postgres"
}

// UpsertSQL 返回PostgreSQL的UPSERT语句（使用ON CONFLICT DO UPDATE）
func (d *PostgresDialect) UpsertSQL(tableName string, columns []string, conflictColumn string, updateColumns []string) string {
	namedPlaceholders := make([]string, len(columns))
	for i, col := range columns {
		namedPlaceholders[i] = ":" + col
	}

	// 构建ON CONFLICT DO UPDATE子句
	updateParts := make([]string, len(updateColumns))
	for i, col := range updateColumns {
		updateParts[i] = fmt.Sprintf("%s = EXCLUDED.%s", col, col)
	}

	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO UPDATE SET %s",
		tableName,
		strings.Join(columns, ", "),
		strings.Join(namedPlaceholders, ", "),
		conflictColumn,
		strings.Join(updateParts, ", "),
	)
}

// CreateTableSQL PostgreSQL使用通用DDL
func (d *PostgresDialect) CreateTableSQL(schema string) string {
	return schema
}

// CreateIndexSQL 返回建索引语句
func (d *PostgresDialect) CreateIndexSQL(name, table, column string) string {
	return fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s(%s)", name, table, column)
}

// SyncSequenceSQL 按显式ID导入后把自增序列推进到当前最大ID
func (d *PostgresDialect) SyncSequenceSQL(table string) string {
	return fmt.Sprintf(
		"SELECT setval(pg_get_serial_sequence('%s', 'id'), COALESCE((SELECT MAX(id) FROM %s), 1))",
		table, table,
	)
}

// ConfigureDB TIMESTAMPTZ按绝对时间存储，无需会话配置
func (d *PostgresDialect) ConfigureDB() []string {
	return nil
}

// AutoIncrementKeyword 返回PostgreSQL自增关键字
func (d *PostgresDialect) AutoIncrementKeyword() string {
	return "BIGSERIAL PRIMARY KEY"
}

// ReturningID lib/pq不支持LastInsertId
func (d *PostgresDialect) ReturningID() bool {
	return true
}

// BooleanType 返回PostgreSQL布尔类型
func (d *PostgresDialect) BooleanType() string {
	return "BOOLEAN"
}

// VarcharType 返回PostgreSQL变长字符串类型
func (d *PostgresDialect) VarcharType(size int) string {
	return fmt.Sprintf("VARCHAR(%d)", size)
}

// TextType 返回PostgreSQL文本类型
func (d *PostgresDialect) TextType() string {
	return "TEXT"
}

// TimestampType 返回PostgreSQL时间戳类型
func (d *PostgresDialect) TimestampType() string {
	return "TIMESTAMPTZ"
}

// FloatType 返回PostgreSQL浮点类型
func (d *PostgresDialect) FloatType() string {
	return "DOUBLE PRECISION"
}

// 确保实现接口
var _ storage.Dialect = (*PostgresDialect)(nil)
