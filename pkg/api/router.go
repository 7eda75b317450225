package api

import (
	"github.com/gin-gonic/gin"

	"github.com/LENAX/plan-engine/pkg/api/handler"
	"github.com/LENAX/plan-engine/pkg/api/middleware"
	"github.com/LENAX/plan-engine/pkg/core/engine"
	"github.com/LENAX/plan-engine/pkg/core/realtime"
)

// SetupRouter 设置路由；hub为nil时 /ws/events 返回503
func SetupRouter(eng *engine.Engine, hub *realtime.Hub, version string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// 全局中间件
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.CORS())

	blockHandler := handler.NewBlockHandler(eng)
	planningHandler := handler.NewPlanningHandler(eng)
	resourceHandler := handler.NewResourceHandler(eng)
	orderHandler := handler.NewOrderHandler(eng)
	transferHandler := handler.NewTransferHandler(eng)
	eventsHandler := handler.NewEventsHandler(hub)
	healthHandler := handler.NewHealthHandler(eng, version)

	// 健康检查路由（不带前缀）
	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)
	router.GET("/ws/events", eventsHandler.Stream)

	v1 := router.Group("/api/v1")
	{
		blocks := v1.Group("/blocks")
		{
			blocks.GET("", blockHandler.List)
			blocks.POST("", blockHandler.Create)
			blocks.GET("/:id", blockHandler.Get)
			blocks.PATCH("/:id", blockHandler.Update)
			blocks.PUT("/:id", blockHandler.Replace)
			blocks.DELETE("/:id", blockHandler.Delete)
			blocks.GET("/:id/cycle-check", blockHandler.CycleCheck)
		}

		planning := v1.Group("/planning")
		{
			planning.GET("", planningHandler.View)
			planning.POST("/run", planningHandler.Run)
			planning.GET("/status", planningHandler.Status)
			planning.GET("/last", planningHandler.Last)
			planning.GET("/integrity", planningHandler.Integrity)
		}

		workCenters := v1.Group("/work-centers")
		{
			workCenters.GET("", resourceHandler.ListWorkCenters)
			workCenters.POST("", resourceHandler.CreateWorkCenter)
			workCenters.GET("/:id", resourceHandler.GetWorkCenter)
			workCenters.PUT("/:id", resourceHandler.UpdateWorkCenter)
			workCenters.DELETE("/:id", resourceHandler.DeleteWorkCenter)
		}

		articles := v1.Group("/articles")
		{
			articles.GET("", resourceHandler.ListArticles)
			articles.POST("", resourceHandler.CreateArticle)
			articles.GET("/:id", resourceHandler.GetArticle)
			articles.PUT("/:id", resourceHandler.UpdateArticle)
			articles.DELETE("/:id", resourceHandler.DeleteArticle)
		}

		routingCodes := v1.Group("/routing-codes")
		{
			routingCodes.GET("", orderHandler.ListRoutingCodes)
			routingCodes.POST("", orderHandler.CreateRoutingCode)
			routingCodes.GET("/:id", orderHandler.GetRoutingCode)
			routingCodes.PUT("/:id", orderHandler.UpdateRoutingCode)
			routingCodes.DELETE("/:id", orderHandler.DeleteRoutingCode)
		}

		orders := v1.Group("/orders")
		{
			orders.GET("", orderHandler.ListOrders)
			orders.POST("", orderHandler.CreateOrder)
			orders.GET("/:id", orderHandler.GetOrder)
			orders.PUT("/:id", orderHandler.UpdateOrder)
			orders.DELETE("/:id", orderHandler.DeleteOrder)
			orders.GET("/:id/blocks", orderHandler.ListOrderBlocks)
		}

		transfer := v1.Group("/transfer")
		{
			transfer.GET("/blocks.csv", transferHandler.Export)
			transfer.POST("/blocks", transferHandler.Import)
		}
	}

	return router
}
