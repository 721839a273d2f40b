package analytics

import (
	"gas_marketplace/internal/domain/analytics/handler"
	"gas_marketplace/internal/domain/analytics/repository"
	"gas_marketplace/internal/domain/analytics/service"
	"gas_marketplace/internal/pkg/middleware"
	"gas_marketplace/internal/pkg/registry"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

// AnalyticsModule 统计模块
type AnalyticsModule struct{}

func init() {
	registry.Register(&AnalyticsModule{})
}

func (m *AnalyticsModule) Name() string {
	return "analytics"
}

func (m *AnalyticsModule) Priority() int {
	// 纯读侧，最后初始化
	return 60
}

func (m *AnalyticsModule) Init(ctx *registry.ModuleContext) error {
	// 聚合查询绕开 ORM，复用同一个连接池
	sqlDB, err := ctx.DB.DB()
	if err != nil {
		return err
	}
	db := sqlx.NewDb(sqlDB, "postgres")

	analyticsRepo := repository.NewAnalyticsRepository(db)
	analyticsService := service.NewAnalyticsService(analyticsRepo, ctx.Redis)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsService)

	setupRoutes(ctx.Router, analyticsHandler)
	return nil
}

func setupRoutes(r *gin.Engine, h *handler.AnalyticsHandler) {
	vendor := r.Group("/vendor")
	vendor.Use(middleware.AuthMiddleware(), middleware.RequireActor("vendor"))
	{
		vendor.GET("/stats", h.MyStats)
	}

	vendors := r.Group("/vendors")
	vendors.Use(middleware.AuthMiddleware())
	{
		vendors.GET("/:id/reviews/summary", h.ReviewSummary)
		vendors.GET("/:id/analytics", h.Dashboard)
	}
}
