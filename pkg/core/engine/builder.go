package engine

import (
	"errors"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"

	internalstorage "github.com/LENAX/plan-engine/internal/storage"
	"github.com/LENAX/plan-engine/pkg/config"
	"github.com/LENAX/plan-engine/pkg/core/cache"
	"github.com/LENAX/plan-engine/pkg/core/planner"
	"github.com/LENAX/plan-engine/pkg/core/realtime"
)

// dbProvider 暴露底层连接池的存储实现
type dbProvider interface {
	GetDB() *sqlx.DB
}

// EngineBuilder 排程引擎构建器（对外导出）
type EngineBuilder struct {
	engineConfigPath string
	cfg              *config.EngineConfig
	planner          *planner.Planner
	eventBus         bool
	busDebug         bool
	err              error
}

// NewEngineBuilder 创建构建器，配置路径为空时使用默认配置
func NewEngineBuilder(engineConfigPath string) *EngineBuilder {
	return &EngineBuilder{
		engineConfigPath: engineConfigPath,
		eventBus:         true,
	}
}

// WithConfig 直接使用已加载的配置，忽略配置路径
func (b *EngineBuilder) WithConfig(cfg *config.EngineConfig) *EngineBuilder {
	if b.err != nil {
		return b
	}
	if cfg == nil {
		b.err = errors.New("engine config cannot be nil")
		return b
	}
	b.cfg = cfg
	return b
}

// WithPlanner 使用自定义Planner
func (b *EngineBuilder) WithPlanner(p *planner.Planner) *EngineBuilder {
	if b.err != nil {
		return b
	}
	if p == nil {
		b.err = errors.New("planner cannot be nil")
		return b
	}
	b.planner = p
	return b
}

// WithoutEventBus 不创建事件总线（不发布事件，也无法推送websocket）
func (b *EngineBuilder) WithoutEventBus() *EngineBuilder {
	b.eventBus = false
	return b
}

// WithEventBusDebug 打开watermill调试日志
func (b *EngineBuilder) WithEventBusDebug() *EngineBuilder {
	b.busDebug = true
	return b
}

// Build 加载并校验配置，初始化存储、事件总线和结果缓存，创建引擎
func (b *EngineBuilder) Build() (*Engine, error) {
	if b.err != nil {
		return nil, b.err
	}

	cfg := b.cfg
	if cfg == nil {
		loaded, err := config.LoadFrameworkConfig(b.engineConfigPath)
		if err != nil {
			return nil, fmt.Errorf("load engine config failed: %w", err)
		}
		cfg = loaded
	} else {
		cfg.ApplyDefaults()
	}
	if err := config.ValidateFrameworkConfig(cfg); err != nil {
		return nil, fmt.Errorf("validate engine config failed: %w", err)
	}

	factory, err := internalstorage.NewDatabaseFactory(cfg.GetDatabaseType(), cfg.GetDatabaseDSN())
	if err != nil {
		return nil, fmt.Errorf("init storage failed: %w", err)
	}
	repo := factory.Repository()
	configurePool(cfg, repo)

	opts := []Option{WithConfig(cfg)}
	if b.planner != nil {
		opts = append(opts, WithPlanner(b.planner))
	}

	cacheCfg := cfg.PlanEngine.Storage.Cache
	if cacheCfg.Enabled {
		opts = append(opts, WithResultCache(
			cache.NewMemoryResultCache[*RunReport](cacheCfg.CleanInterval),
			cacheCfg.DefaultTTL,
		))
	}

	if b.eventBus {
		bus, err := realtime.NewEventBus(realtime.WithDebugLog(b.busDebug, false))
		if err != nil {
			_ = factory.Close()
			return nil, fmt.Errorf("create event bus failed: %w", err)
		}
		opts = append(opts, WithEventBus(bus))
	}

	eng := NewEngine(repo, opts...)
	log.Printf("✅ [规划引擎] 构建完成: Instance=%s, Database=%s, DefaultMode=%s",
		cfg.PlanEngine.General.InstanceName, cfg.GetDatabaseType(), cfg.GetDefaultMode())
	return eng, nil
}

// configurePool 按配置设置连接池；SQLite保持存储自身的设置（内存库只能有一个连接）
func configurePool(cfg *config.EngineConfig, repo interface{}) {
	switch cfg.GetDatabaseType() {
	case "sqlite", "sqlite3", "":
		return
	}
	p, ok := repo.(dbProvider)
	if !ok {
		return
	}
	dbCfg := cfg.PlanEngine.Storage.Database
	db := p.GetDB()
	db.SetMaxOpenConns(dbCfg.MaxOpenConns)
	db.SetMaxIdleConns(dbCfg.MaxIdleConns)
	db.SetConnMaxLifetime(dbCfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(dbCfg.ConnMaxIdleTime)
}
