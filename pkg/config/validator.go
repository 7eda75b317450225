package config

import (
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/LENAX/plan-engine/pkg/core/planner"
)

// CronParser 定时重排表达式解析器（6位，含秒）
var CronParser = cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// ValidateFrameworkConfig 校验引擎配置
func ValidateFrameworkConfig(cfg *EngineConfig) error {
	if cfg == nil {
		return fmt.Errorf("配置不能为空")
	}

	// 校验General
	if cfg.PlanEngine.General.InstanceName == "" {
		return fmt.Errorf("instance_name不能为空")
	}
	if cfg.PlanEngine.General.LogLevel != "" {
		validLevels := map[string]bool{
			"debug": true,
			"info":  true,
			"warn":  true,
			"error": true,
		}
		if !validLevels[cfg.PlanEngine.General.LogLevel] {
			return fmt.Errorf("log_level必须是debug/info/warn/error之一")
		}
	}

	// 校验Storage.Database
	validDBTypes := map[string]bool{
		"sqlite":     true,
		"postgres":   true,
		"postgresql": true,
		"mysql":      true,
	}
	if !validDBTypes[cfg.PlanEngine.Storage.Database.Type] {
		return fmt.Errorf("database.type必须是sqlite/mysql/postgres之一")
	}
	if cfg.PlanEngine.Storage.Database.DSN == "" {
		return fmt.Errorf("database.dsn不能为空")
	}
	if cfg.PlanEngine.Storage.Database.MaxIdleConns > cfg.PlanEngine.Storage.Database.MaxOpenConns {
		return fmt.Errorf("max_idle_conns不能大于max_open_conns")
	}

	// 校验Server
	if cfg.PlanEngine.Server.Port <= 0 || cfg.PlanEngine.Server.Port > 65535 {
		return fmt.Errorf("server.port必须在1-65535之间")
	}

	// 校验Planning
	if _, err := planner.ParseDirection(cfg.PlanEngine.Planning.DefaultMode); err != nil {
		return fmt.Errorf("planning.default_mode无效: %w", err)
	}
	if cfg.AutoReplanEnabled() {
		if _, err := CronParser.Parse(cfg.PlanEngine.Planning.AutoReplanCron); err != nil {
			return fmt.Errorf("planning.auto_replan_cron无效: %w", err)
		}
	}
	return nil
}
