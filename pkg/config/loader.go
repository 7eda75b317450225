package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFrameworkConfig 加载引擎配置文件
// 支持 ${VAR} 形式的环境变量替换；path为空时返回默认配置
func LoadFrameworkConfig(path string) (*EngineConfig, error) {
	cfg := &EngineConfig{}
	if path == "" {
		cfg.ApplyDefaults()
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	cfg.ApplyDefaults()
	return cfg, nil
}
