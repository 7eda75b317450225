package engine

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/LENAX/plan-engine/pkg/config"
	"github.com/LENAX/plan-engine/pkg/core/planner"
)

// AutoReplanJob 定时正排任务名
const AutoReplanJob = "auto-replan"

// CronJob 定时任务函数
type CronJob func(ctx context.Context) error

// CronScheduler 定时调度器（对外导出）
type CronScheduler struct {
	cron    *cron.Cron
	engine  *Engine
	entries map[string]cron.EntryID // 任务名 -> cron.EntryID映射
	mu      sync.RWMutex
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewCronScheduler 创建定时调度器（对外导出）
func NewCronScheduler(eng *Engine) *CronScheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &CronScheduler{
		cron:    cron.New(cron.WithParser(config.CronParser)), // 支持秒级精度
		engine:  eng,
		entries: make(map[string]cron.EntryID),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// RegisterJob 按Cron表达式注册任务（对外导出）
func (cs *CronScheduler) RegisterJob(name, cronExpr string, job CronJob) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if _, exists := cs.entries[name]; exists {
		return fmt.Errorf("任务 %s 已注册到定时调度器", name)
	}
	if cronExpr == "" {
		return fmt.Errorf("任务 %s 未设置Cron表达式", name)
	}
	if _, err := config.CronParser.Parse(cronExpr); err != nil {
		return fmt.Errorf("任务 %s 的Cron表达式无效: %w", name, err)
	}

	entryID, err := cs.cron.AddFunc(cronExpr, func() {
		cs.trigger(name, job)
	})
	if err != nil {
		return fmt.Errorf("添加Cron任务失败: %w", err)
	}
	cs.entries[name] = entryID

	log.Printf("✅ [Cron调度器] 已注册任务: Name=%s, CronExpr=%s", name, cronExpr)
	return nil
}

// RegisterAutoReplan 注册定时正排：以触发时刻为开始时间重排全部未完成工序
func (cs *CronScheduler) RegisterAutoReplan(cronExpr string) error {
	return cs.RegisterJob(AutoReplanJob, cronExpr, func(ctx context.Context) error {
		_, err := cs.engine.RunSchedule(ctx, RunRequest{
			Direction: planner.Forward,
			Trigger:   TriggerCron,
		})
		return err
	})
}

// UnregisterJob 取消注册任务（对外导出）
func (cs *CronScheduler) UnregisterJob(name string) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	entryID, exists := cs.entries[name]
	if !exists {
		return fmt.Errorf("任务 %s 未注册到定时调度器", name)
	}
	cs.cron.Remove(entryID)
	delete(cs.entries, name)

	log.Printf("✅ [Cron调度器] 已取消注册任务: Name=%s", name)
	return nil
}

// trigger 执行任务（内部方法）
func (cs *CronScheduler) trigger(name string, job CronJob) {
	log.Printf("🕐 [Cron调度器] 触发任务: Name=%s", name)
	if err := job(cs.ctx); err != nil {
		log.Printf("❌ [Cron调度器] 任务执行失败: Name=%s, Error=%v", name, err)
		return
	}
	log.Printf("✅ [Cron调度器] 任务执行完成: Name=%s", name)
}

// Start 启动定时调度器（对外导出）
func (cs *CronScheduler) Start() {
	cs.cron.Start()
	log.Println("✅ [Cron调度器] 已启动")
}

// Stop 停止定时调度器，等待正在执行的任务结束（对外导出）
func (cs *CronScheduler) Stop() {
	<-cs.cron.Stop().Done()
	cs.cancel()
	log.Println("✅ [Cron调度器] 已停止")
}

// GetRegisteredJobs 获取已注册的任务名（对外导出）
func (cs *CronScheduler) GetRegisteredJobs() []string {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	names := make([]string, 0, len(cs.entries))
	for name := range cs.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
