// Package engine 排程引擎：把工序存储、排程器、事件总线和定时重排组合在一起
package engine

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/LENAX/plan-engine/pkg/config"
	"github.com/LENAX/plan-engine/pkg/core/cache"
	"github.com/LENAX/plan-engine/pkg/core/planner"
	"github.com/LENAX/plan-engine/pkg/core/realtime"
	"github.com/LENAX/plan-engine/pkg/storage"
)

// DefaultResultTTL 排程结果缓存的默认有效期
const DefaultResultTTL = time.Hour

// Engine 排程引擎（对外导出）
type Engine struct {
	repo     storage.PlanningRepository
	planner  *planner.Planner
	bus      *realtime.EventBus
	results  *cache.MemoryResultCache[*RunReport]
	cacheTTL time.Duration
	cfg      *config.EngineConfig

	// runMu 串行化排程运行与所有会改变前置关系或计划时间的写操作
	runMu sync.Mutex

	cronScheduler *CronScheduler
	mu            sync.RWMutex
	running       bool
	stopped       bool
}

// Option Engine选项
type Option func(*Engine)

// WithPlanner 使用自定义Planner（例如固定时钟）
func WithPlanner(p *planner.Planner) Option {
	return func(e *Engine) {
		e.planner = p
	}
}

// WithEventBus 设置事件总线，为空时不发布事件
func WithEventBus(bus *realtime.EventBus) Option {
	return func(e *Engine) {
		e.bus = bus
	}
}

// WithResultCache 设置排程结果缓存
func WithResultCache(c *cache.MemoryResultCache[*RunReport], ttl time.Duration) Option {
	return func(e *Engine) {
		e.results = c
		if ttl > 0 {
			e.cacheTTL = ttl
		}
	}
}

// WithConfig 设置引擎配置
func WithConfig(cfg *config.EngineConfig) Option {
	return func(e *Engine) {
		e.cfg = cfg
	}
}

// NewEngine 创建排程引擎（对外导出）
func NewEngine(repo storage.PlanningRepository, opts ...Option) *Engine {
	e := &Engine{
		repo:     repo,
		cacheTTL: DefaultResultTTL,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.planner == nil {
		e.planner = planner.New()
	}
	if e.results == nil {
		e.results = cache.NewMemoryResultCache[*RunReport](0)
	}
	e.cronScheduler = NewCronScheduler(e)
	return e
}

// Start 启动引擎：配置了定时重排时注册并启动Cron调度器
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stopped {
		return ErrStopped
	}
	if e.running {
		return nil
	}

	if err := e.repo.Ping(ctx); err != nil {
		return fmt.Errorf("数据库连接检查失败: %w", err)
	}

	if e.cfg != nil && e.cfg.AutoReplanEnabled() {
		if err := e.cronScheduler.RegisterAutoReplan(e.cfg.PlanEngine.Planning.AutoReplanCron); err != nil {
			return err
		}
	}
	e.cronScheduler.Start()

	e.running = true
	log.Println("✅ [规划引擎] 已启动")
	return nil
}

// Stop 停止引擎并释放总线、缓存和数据库连接
// 未启动过的引擎同样释放资源；停止后不能再次启动
func (e *Engine) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stopped {
		return nil
	}
	e.stopped = true
	e.running = false

	e.cronScheduler.Stop()
	// 等待进行中的排程写完
	e.runMu.Lock()
	defer e.runMu.Unlock()

	if e.bus != nil {
		if err := e.bus.Close(); err != nil {
			log.Printf("⚠️ [规划引擎] 关闭事件总线失败: %v", err)
		}
	}
	e.results.Close()

	if err := e.repo.Close(); err != nil {
		return fmt.Errorf("关闭数据库失败: %w", err)
	}
	log.Println("✅ [规划引擎] 已停止")
	return nil
}

// IsRunning 引擎是否已启动
func (e *Engine) IsRunning() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.running
}

// EventBus 返回事件总线（可能为nil）
func (e *Engine) EventBus() *realtime.EventBus {
	return e.bus
}

// Config 返回引擎配置（可能为nil）
func (e *Engine) Config() *config.EngineConfig {
	return e.cfg
}

// Ping 检查存储可用性
func (e *Engine) Ping(ctx context.Context) error {
	return e.repo.Ping(ctx)
}

// DefaultDirection 配置的默认排程方向
func (e *Engine) DefaultDirection() planner.Direction {
	if e.cfg == nil {
		return planner.Forward
	}
	d, err := planner.ParseDirection(e.cfg.GetDefaultMode())
	if err != nil {
		return planner.Forward
	}
	return d
}

// publish 发布事件；没有总线或发布失败只记录日志
func (e *Engine) publish(ctx context.Context, event *realtime.Event) {
	if e.bus == nil {
		return
	}
	if err := e.bus.Publish(ctx, event); err != nil {
		log.Printf("⚠️ [规划引擎] 发布事件失败: Type=%s, Error=%v", event.Type, err)
	}
}
