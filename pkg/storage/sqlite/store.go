// Package sqlite SQLite存储（默认存储，单文件部署）
package sqlite

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/LENAX/plan-engine/pkg/storage/sqlstore"
)

// NewStore 基于已打开的连接创建Store（对外导出）
func NewStore(db *sqlx.DB) (*sqlstore.Store, error) {
	return sqlstore.New(db, NewSQLiteDialect())
}

// NewStoreFromDSN 通过DSN创建Store（对外导出）
// 内存库（:memory: 或 mode=memory）限制为单连接，否则每个连接各自是一个空库
func NewStoreFromDSN(dsn string) (*sqlstore.Store, error) {
	if err := ensureDir(dsn); err != nil {
		return nil, err
	}
	dialect := NewSQLiteDialect()
	db, err := sqlstore.Open(dialect, dsn)
	if err != nil {
		return nil, err
	}
	if strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
	}

	store, err := sqlstore.New(db, dialect)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("创建SQLite存储失败: %w", err)
	}
	return store, nil
}

// ensureDir 文件库所在目录不存在时创建
func ensureDir(dsn string) error {
	path := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" || path == ":memory:" || strings.Contains(dsn, "mode=memory") {
		return nil
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("创建数据库目录失败: %w", err)
	}
	return nil
}
