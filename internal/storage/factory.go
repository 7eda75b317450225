package storage

import (
	"fmt"

	"github.com/LENAX/plan-engine/pkg/storage"
	"github.com/LENAX/plan-engine/pkg/storage/mysql"
	"github.com/LENAX/plan-engine/pkg/storage/postgres"
	pkgsqlite "github.com/LENAX/plan-engine/pkg/storage/sqlite"
)

// DatabaseFactory 数据库工厂接口（内部使用）
type DatabaseFactory interface {
	// Repository 返回排程聚合存储
	Repository() storage.PlanningRepository
	// Close 关闭数据库连接
	Close() error
}

// NewDatabaseFactory 创建数据库工厂（内部方法）
// dbType: 数据库类型（sqlite/mysql/postgres）
// dsn: 数据库连接字符串
func NewDatabaseFactory(dbType, dsn string) (DatabaseFactory, error) {
	var (
		repo storage.PlanningRepository
		err  error
	)
	switch dbType {
	case "sqlite", "sqlite3", "":
		repo, err = pkgsqlite.NewStoreFromDSN(dsn)
	case "mysql":
		repo, err = mysql.NewStoreFromDSN(dsn)
	case "postgres", "postgresql":
		repo, err = postgres.NewStoreFromDSN(dsn)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", dbType)
	}
	if err != nil {
		return nil, fmt.Errorf("create %s repository failed: %w", dbType, err)
	}
	return &factory{repo: repo}, nil
}

// factory 统一的数据库工厂实现（内部实现）
type factory struct {
	repo storage.PlanningRepository
}

func (f *factory) Repository() storage.PlanningRepository {
	return f.repo
}

func (f *factory) Close() error {
	return f.repo.Close()
}
