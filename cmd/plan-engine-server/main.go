package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/LENAX/plan-engine/pkg/api"
	"github.com/LENAX/plan-engine/pkg/core/engine"
)

var (
	Version   = "0.3.0"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

func main() {
	// 命令行参数（host/port未指定时使用配置文件）
	configPath := flag.String("config", "", "引擎配置文件路径（为空使用默认配置）")
	host := flag.String("host", "", "监听地址")
	port := flag.Int("port", 0, "监听端口")
	flag.Parse()

	log.Printf("Plan Engine Server v%s (commit=%s, built=%s)", Version, GitCommit, BuildTime)
	if *configPath != "" {
		log.Printf("配置文件: %s", *configPath)
	}

	// 1. 构建Engine
	eng, err := engine.NewEngineBuilder(*configPath).Build()
	if err != nil {
		log.Fatalf("创建Engine失败: %v", err)
	}

	// 2. 启动Engine
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := eng.Start(ctx); err != nil {
		_ = eng.Stop()
		log.Fatalf("启动Engine失败: %v", err)
	}

	// 3. 创建API服务器
	serverCfg := eng.Config().PlanEngine.Server
	config := api.DefaultServerConfig()
	config.Host = serverCfg.Host
	config.Port = serverCfg.Port
	if *host != "" {
		config.Host = *host
	}
	if *port > 0 {
		config.Port = *port
	}
	apiServer := api.NewAPIServer(eng, config, Version)

	// 4. 启动API服务器，收到中断信号后优雅关闭
	g, gctx := errgroup.WithContext(ctx)
	g.Go(apiServer.Start)
	g.Go(func() error {
		<-gctx.Done()
		log.Println("正在关闭服务...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), serverCfg.ShutdownTimeout)
		defer cancel()
		return apiServer.Shutdown(shutdownCtx)
	})

	log.Printf("✅ Plan Engine Server started on %s", apiServer.Addr())

	if err := g.Wait(); err != nil {
		log.Printf("API服务器错误: %v", err)
	}
	if err := eng.Stop(); err != nil {
		log.Printf("停止Engine失败: %v", err)
	}
	log.Println("✅ 服务已停止")
}
