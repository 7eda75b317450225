// Package api 排程引擎HTTP API
package api

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/LENAX/plan-engine/pkg/core/engine"
	"github.com/LENAX/plan-engine/pkg/core/realtime"
)

// ServerConfig API服务器配置
type ServerConfig struct {
	Host         string        // 监听地址
	Port         int           // 监听端口
	ReadTimeout  time.Duration // 读取超时
	WriteTimeout time.Duration // 写入超时
}

// DefaultServerConfig 默认服务器配置
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:         "0.0.0.0",
		Port:         8080,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// APIServer HTTP API服务器
type APIServer struct {
	engine     *engine.Engine
	hub        *realtime.Hub
	httpServer *http.Server
	config     ServerConfig
	version    string
}

// NewAPIServer 创建API服务器；引擎带事件总线时同时创建websocket推送中心
func NewAPIServer(eng *engine.Engine, config ServerConfig, version string) *APIServer {
	s := &APIServer{
		engine:  eng,
		config:  config,
		version: version,
	}
	if bus := eng.EventBus(); bus != nil {
		s.hub = realtime.NewHub(bus)
	}
	s.httpServer = &http.Server{
		Addr:        s.Addr(),
		Handler:     SetupRouter(eng, s.hub, version),
		ReadTimeout: config.ReadTimeout,
		// websocket连接不受WriteTimeout影响，由Hub自行设置写超时
		WriteTimeout: config.WriteTimeout,
	}
	return s
}

// Handler 返回路由（测试使用）
func (s *APIServer) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start 启动服务器，阻塞直到服务器关闭
func (s *APIServer) Start() error {
	log.Printf("🚀 Plan Engine API Server starting on %s", s.Addr())

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server listen failed: %w", err)
	}
	return nil
}

// Shutdown 优雅关闭服务器
func (s *APIServer) Shutdown(ctx context.Context) error {
	log.Println("🛑 Shutting down API Server...")

	if s.hub != nil {
		s.hub.Close()
	}
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Println("✅ API Server stopped")
	return nil
}

// Addr 获取服务器地址
func (s *APIServer) Addr() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}
