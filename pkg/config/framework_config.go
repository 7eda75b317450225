package config

import (
	"time"
)

// EngineConfig 排程引擎配置（对外导出）
type EngineConfig struct {
	PlanEngine struct {
		General struct {
			InstanceName string `yaml:"instance_name"`
			LogLevel     string `yaml:"log_level"`
			Env          string `yaml:"env"`
		} `yaml:"general"`
		Storage struct {
			Database struct {
				Type            string        `yaml:"type"`
				DSN             string        `yaml:"dsn"`
				MaxOpenConns    int           `yaml:"max_open_conns"`
				MaxIdleConns    int           `yaml:"max_idle_conns"`
				ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
				ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time"`
			} `yaml:"database"`
			Cache struct {
				Enabled       bool          `yaml:"enabled"`
				DefaultTTL    time.Duration `yaml:"default_ttl"`
				CleanInterval time.Duration `yaml:"clean_interval"`
			} `yaml:"cache"`
		} `yaml:"storage"`
		Server struct {
			Host            string        `yaml:"host"`
			Port            int           `yaml:"port"`
			ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
		} `yaml:"server"`
		Planning struct {
			DefaultMode    string `yaml:"default_mode"`     // asap / retro
			AutoReplanCron string `yaml:"auto_replan_cron"` // 为空表示不自动重排（6位，含秒）
		} `yaml:"planning"`
	} `yaml:"plan-engine"`
}

// GetDatabaseType 获取数据库类型
func (c *EngineConfig) GetDatabaseType() string {
	return c.PlanEngine.Storage.Database.Type
}

// GetDatabaseDSN 获取数据库DSN
func (c *EngineConfig) GetDatabaseDSN() string {
	return c.PlanEngine.Storage.Database.DSN
}

// GetDefaultMode 获取默认排程模式
func (c *EngineConfig) GetDefaultMode() string {
	if c.PlanEngine.Planning.DefaultMode == "" {
		return "asap"
	}
	return c.PlanEngine.Planning.DefaultMode
}

// AutoReplanEnabled 是否配置了定时重排
func (c *EngineConfig) AutoReplanEnabled() bool {
	return c.PlanEngine.Planning.AutoReplanCron != ""
}

// ApplyDefaults 应用默认值
func (c *EngineConfig) ApplyDefaults() {
	// General默认值
	if c.PlanEngine.General.InstanceName == "" {
		c.PlanEngine.General.InstanceName = "plan-engine"
	}
	if c.PlanEngine.General.LogLevel == "" {
		c.PlanEngine.General.LogLevel = "info"
	}
	if c.PlanEngine.General.Env == "" {
		c.PlanEngine.General.Env = "dev"
	}

	// Database默认值
	if c.PlanEngine.Storage.Database.Type == "" {
		c.PlanEngine.Storage.Database.Type = "sqlite"
	}
	if c.PlanEngine.Storage.Database.DSN == "" && c.PlanEngine.Storage.Database.Type == "sqlite" {
		c.PlanEngine.Storage.Database.DSN = "./data/plan-engine.db"
	}
	if c.PlanEngine.Storage.Database.MaxOpenConns <= 0 {
		c.PlanEngine.Storage.Database.MaxOpenConns = 10
	}
	if c.PlanEngine.Storage.Database.MaxIdleConns <= 0 {
		c.PlanEngine.Storage.Database.MaxIdleConns = 5
	}
	if c.PlanEngine.Storage.Database.ConnMaxLifetime <= 0 {
		c.PlanEngine.Storage.Database.ConnMaxLifetime = 2 * time.Hour
	}
	if c.PlanEngine.Storage.Database.ConnMaxIdleTime <= 0 {
		c.PlanEngine.Storage.Database.ConnMaxIdleTime = 1 * time.Hour
	}

	// Cache默认值
	if c.PlanEngine.Storage.Cache.DefaultTTL <= 0 {
		c.PlanEngine.Storage.Cache.DefaultTTL = 1 * time.Hour
	}
	if c.PlanEngine.Storage.Cache.CleanInterval <= 0 {
		c.PlanEngine.Storage.Cache.CleanInterval = 30 * time.Minute
	}

	// Server默认值
	if c.PlanEngine.Server.Host == "" {
		c.PlanEngine.Server.Host = "0.0.0.0"
	}
	if c.PlanEngine.Server.Port <= 0 {
		c.PlanEngine.Server.Port = 8080
	}
	if c.PlanEngine.Server.ShutdownTimeout <= 0 {
		c.PlanEngine.Server.ShutdownTimeout = 10 * time.Second
	}

	// Planning默认值
	if c.PlanEngine.Planning.DefaultMode == "" {
		c.PlanEngine.Planning.DefaultMode = "asap"
	}
}
