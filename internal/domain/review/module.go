package review

import (
	"gas_marketplace/internal/domain/account"
	orderRepo "gas_marketplace/internal/domain/order/repository"
	"gas_marketplace/internal/domain/review/handler"
	"gas_marketplace/internal/domain/review/repository"
	"gas_marketplace/internal/domain/review/service"
	"gas_marketplace/internal/pkg/middleware"
	"gas_marketplace/internal/pkg/registry"

	"github.com/gin-gonic/gin"
)

// ReviewModule 评价模块
type ReviewModule struct{}

func init() {
	registry.Register(&ReviewModule{})
}

func (m *ReviewModule) Name() string {
	return "review"
}

func (m *ReviewModule) Priority() int {
	// 依赖账号和订单模块
	return 40
}

func (m *ReviewModule) Init(ctx *registry.ModuleContext) error {
	reviewRepo := repository.NewReviewRepository(ctx.DB)
	reviewService := service.NewReviewService(reviewRepo,
		orderRepo.NewOrderRepository(ctx.DB), account.SharedService)
	reviewHandler := handler.NewReviewHandler(reviewService)

	setupRoutes(ctx.Router, reviewHandler)
	return nil
}

func setupRoutes(r *gin.Engine, h *handler.ReviewHandler) {
	reviews := r.Group("/reviews")
	reviews.Use(middleware.AuthMiddleware(), middleware.RequireActor("user"))
	{
		reviews.POST("", h.Create)
	}

	// 商家评价对所有登录账号可见
	vendors := r.Group("/vendors")
	vendors.Use(middleware.AuthMiddleware())
	{
		vendors.GET("/:id/reviews", h.ListByVendor)
	}
}
