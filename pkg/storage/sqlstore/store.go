// Package sqlstore 基于sqlx的通用存储实现，SQLite/MySQL/PostgreSQL通过Dialect共用同一套代码
package sqlstore

import (
	"context"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"

	"github.com/LENAX/plan-engine/pkg/storage"
)

// SequenceSyncer 按显式ID写入后需要同步自增序列的方言（PostgreSQL）
type SequenceSyncer interface {
	SyncSequenceSQL(table string) string
}

// IndexCreator 支持 CREATE INDEX IF NOT EXISTS 的方言
type IndexCreator interface {
	CreateIndexSQL(name, table, column string) string
}

// Store 排程数据存储（对外导出）
type Store struct {
	db      *sqlx.DB
	dialect storage.Dialect
}

// Open 打开数据库连接并执行方言配置
func Open(dialect storage.Dialect, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("打开数据库失败: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("数据库连接失败: %w", err)
	}

	for _, stmt := range dialect.ConfigureDB() {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("配置%s失败: %w", dialect.Name(), err)
		}
	}
	return db, nil
}

// New 创建Store并初始化表结构
func New(db *sqlx.DB, dialect storage.Dialect) (*Store, error) {
	s := &Store{db: db, dialect: dialect}
	if err := s.initSchema(); err != nil {
		return nil, fmt.Errorf("初始化表结构失败: %w", err)
	}
	log.Printf("✅ [存储] %s 表结构就绪", dialect.Name())
	return s, nil
}

// GetDB 获取底层数据库连接（对外导出）
func (s *Store) GetDB() *sqlx.DB {
	return s.db
}

// Dialect 返回当前方言
func (s *Store) Dialect() storage.Dialect {
	return s.dialect
}

// Ping 检查数据库连接
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close 关闭数据库连接（对外导出）
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// initSchema 初始化数据库表结构
func (s *Store) initSchema() error {
	d := s.dialect

	createWorkCenterSQL := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS work_center (
		id %s,
		code %s NOT NULL UNIQUE,
		name %s NOT NULL,
		capacity %s NOT NULL
	)`, d.AutoIncrementKeyword(), d.VarcharType(64), d.VarcharType(255), d.FloatType())

	createArticleSQL := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS article (
		id %s,
		code %s NOT NULL UNIQUE,
		designation %s NOT NULL
	)`, d.AutoIncrementKeyword(), d.VarcharType(64), d.TextType())

	createRoutingCodeSQL := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS routing_code (
		id %s,
		code %s NOT NULL UNIQUE,
		article_id BIGINT NOT NULL
	)`, d.AutoIncrementKeyword(), d.VarcharType(64))

	createOrderSQL := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS manufacturing_order (
		id %s,
		code %s NOT NULL UNIQUE,
		routing_code_id BIGINT,
		start_date %s NULL,
		due_date %s NULL,
		mode %s NOT NULL
	)`, d.AutoIncrementKeyword(), d.VarcharType(64), d.TimestampType(), d.TimestampType(), d.VarcharType(16))

	createBlockSQL := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS blocks (
		id %[1]s,
		name %[2]s NOT NULL,
		qty_to_produce %[3]s NOT NULL,
		qty_produced %[3]s NOT NULL,
		planned_hours %[3]s,
		spent_hours %[3]s,
		planned_weeks %[3]s,
		work_center_id BIGINT,
		order_id BIGINT,
		predecessor_id BIGINT,
		completed %[4]s NOT NULL,
		planned_start %[5]s NULL,
		planned_finish %[5]s NULL,
		create_time %[5]s NOT NULL,
		update_time %[5]s NOT NULL
	)`, d.AutoIncrementKeyword(), d.VarcharType(255), d.FloatType(), d.BooleanType(), d.TimestampType())

	for _, schema := range []string{createWorkCenterSQL, createArticleSQL, createRoutingCodeSQL, createOrderSQL, createBlockSQL} {
		if _, err := s.db.Exec(d.CreateTableSQL(schema)); err != nil {
			return fmt.Errorf("创建表失败: %w", err)
		}
	}

	if ic, ok := d.(IndexCreator); ok {
		indexes := [][3]string{
			{"idx_blocks_predecessor_id", "blocks", "predecessor_id"},
			{"idx_blocks_work_center_id", "blocks", "work_center_id"},
			{"idx_blocks_order_id", "blocks", "order_id"},
			{"idx_routing_code_article_id", "routing_code", "article_id"},
			{"idx_order_routing_code_id", "manufacturing_order", "routing_code_id"},
		}
		for _, idx := range indexes {
			if _, err := s.db.Exec(ic.CreateIndexSQL(idx[0], idx[1], idx[2])); err != nil {
				return fmt.Errorf("创建索引%s失败: %w", idx[0], err)
			}
		}
	}
	return nil
}

// insert 执行命名参数INSERT并返回新ID
func (s *Store) insert(ctx context.Context, ext sqlx.ExtContext, query string, arg interface{}) (int64, error) {
	q, args, err := sqlx.Named(query, arg)
	if err != nil {
		return 0, err
	}
	q = ext.Rebind(q)

	if s.dialect.ReturningID() {
		var id int64
		if err := ext.QueryRowxContext(ctx, q+" RETURNING id", args...).Scan(&id); err != nil {
			return 0, err
		}
		return id, nil
	}

	res, err := ext.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// syncSequence 显式ID写入后同步自增序列
func (s *Store) syncSequence(ctx context.Context, tx *sqlx.Tx, table string) error {
	syncer, ok := s.dialect.(SequenceSyncer)
	if !ok {
		return nil
	}
	if _, err := tx.ExecContext(ctx, syncer.SyncSequenceSQL(table)); err != nil {
		return fmt.Errorf("同步%s自增序列失败: %w", table, err)
	}
	return nil
}

// checkAffected 更新/删除未命中任何行时返回ErrNotFound
func checkAffected(res interface{ RowsAffected() (int64, error) }) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

var _ storage.PlanningRepository = (*Store)(nil)
