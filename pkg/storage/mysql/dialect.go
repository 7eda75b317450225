package mysql

import (
	"fmt"
	"strings"

	"github.com/LENAX/plan-engine/pkg/storage"
)

// MySQLDialect MySQL方言实现（对外导出）
type MySQLDialect struct{}

// NewMySQLDialect 创建MySQL方言实例
func NewMySQLDialect() *MySQLDialect {
	return &MySQLDialect{}
}

// Name 返回方言名称
func (d *MySQLDialect) Name() string {
	return "mysql"
}

// DriverName 返回驱动名
func (d *MySQLDialect) DriverName() string {
	return "mysql"
}

// UpsertSQL 返回MySQL的UPSERT语句（使用ON DUPLICATE KEY UPDATE）
func (d *MySQLDialect) UpsertSQL(tableName string, columns []string, conflictColumn string, updateColumns []string) string {
	namedPlaceholders := make([]string, len(columns))
	for i, col := range columns {
		namedPlaceholders[i] = ":" + col
	}

	// 构建ON DUPLICATE KEY UPDATE子句
	updateParts := make([]string, len(updateColumns))
	for i, col := range updateColumns {
		updateParts[i] = fmt.Sprintf("%s = VALUES(%s)", col, col)
	}

	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) ON DUPLICATE KEY UPDATE %s",
		tableName,
		strings.Join(columns, ", "),
		strings.Join(namedPlaceholders, ", "),
		strings.Join(updateParts, ", "),
	)
}

// CreateTableSQL 为建表语句追加引擎与字符集声明
func (d *MySQLDialect) CreateTableSQL(schema string) string {
	if strings.Contains(schema, "ENGINE=") || !strings.Contains(schema, "CREATE TABLE") {
		return schema
	}
	return strings.TrimRight(strings.TrimSpace(schema), ";") + " ENGINE=InnoDB DEFAULT CHARSET=utf8mb4"
}

// SQLMode 会话级sql_mode，由NormalizeDSN写入DSN参数，对连接池中每个连接生效
const SQLMode = "'STRICT_TRANS_TABLES,NO_ZERO_IN_DATE,NO_ZERO_DATE,ERROR_FOR_DIVISION_BY_ZERO,NO_ENGINE_SUBSTITUTION'"

// ConfigureDB MySQL的会话配置通过DSN参数下发，这里无需额外语句
func (d *MySQLDialect) ConfigureDB() []string {
	return nil
}

// AutoIncrementKeyword 返回MySQL自增关键字
func (d *MySQLDialect) AutoIncrementKeyword() string {
	return "BIGINT PRIMARY KEY AUTO_INCREMENT"
}

// ReturningID MySQL支持LastInsertId
func (d *MySQLDialect) ReturningID() bool {
	return false
}

// BooleanType 返回MySQL布尔类型
func (d *MySQLDialect) BooleanType() string {
	return "TINYINT(1)"
}

// VarcharType 返回MySQL变长字符串类型
func (d *MySQLDialect) VarcharType(size int) string {
	return fmt.Sprintf("VARCHAR(%d)", size)
}

// TextType 返回MySQL文本类型
func (d *MySQLDialect) TextType() string {
	return "TEXT"
}

// TimestampType 返回MySQL时间戳类型
func (d *MySQLDialect) TimestampType() string {
	return "DATETIME(3)"
}

// FloatType 返回MySQL浮点类型
func (d *MySQLDialect) FloatType() string {
	return "DOUBLE"
}

// 确保实现接口
var _ storage.Dialect = (*MySQLDialect)(nil)
