// Package mysql MySQL存储
package mysql

import (
	"fmt"
	"time"

	driver "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"github.com/LENAX/plan-engine/pkg/storage/sqlstore"
)

// NormalizeDSN 规范化DSN（对外导出）
// dsn格式: user:password@tcp(host:port)/dbname
// 强制 parseTime=true（DATETIME扫描为time.Time）、loc=UTC、clientFoundRows=true（值未变化的UPDATE也计为命中）
func NormalizeDSN(dsn string) (string, error) {
	cfg, err := driver.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("解析MySQL DSN失败: %w", err)
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	cfg.ClientFoundRows = true
	if cfg.Params == nil {
		cfg.Params = make(map[string]string)
	}
	cfg.Params["sql_mode"] = SQLMode
	return cfg.FormatDSN(), nil
}

// NewStore 基于已打开的连接创建Store（对外导出）
func NewStore(db *sqlx.DB) (*sqlstore.Store, error) {
	return sqlstore.New(db, NewMySQLDialect())
}

// NewStoreFromDSN 通过DSN创建Store（对外导出）
func NewStoreFromDSN(dsn string) (*sqlstore.Store, error) {
	normalized, err := NormalizeDSN(dsn)
	if err != nil {
		return nil, err
	}

	dialect := NewMySQLDialect()
	db, err := sqlstore.Open(dialect, normalized)
	if err != nil {
		return nil, err
	}

	store, err := sqlstore.New(db, dialect)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("创建MySQL存储失败: %w", err)
	}
	return store, nil
}
