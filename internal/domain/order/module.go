package order

import (
	"gas_marketplace/internal/domain/account"
	"gas_marketplace/internal/domain/order/handler"
	"gas_marketplace/internal/domain/order/repository"
	"gas_marketplace/internal/domain/order/service"
	"gas_marketplace/internal/pkg/middleware"
	"gas_marketplace/internal/pkg/registry"

	"github.com/gin-gonic/gin"
)

// OrderModule 订单模块
type OrderModule struct{}

func init() {
	registry.Register(&OrderModule{})
}

func (m *OrderModule) Name() string {
	return "order"
}

func (m *OrderModule) Priority() int {
	// 依赖账号模块
	return 10
}

func (m *OrderModule) Init(ctx *registry.ModuleContext) error {
	orderRepo := repository.NewOrderRepository(ctx.DB)
	orderService := service.NewOrderService(orderRepo, account.SharedService, ctx.Mailer)
	orderHandler := handler.NewOrderHandler(orderService)

	setupRoutes(ctx.Router, orderHandler)

	SharedService = orderService
	return nil
}

// SharedService 供支付/钱包/评价模块复用
var SharedService service.OrderService

func setupRoutes(r *gin.Engine, h *handler.OrderHandler) {
	orders := r.Group("/orders")
	orders.Use(middleware.AuthMiddleware(), middleware.RequireActor("user"))
	{
		orders.POST("", h.PlaceOrder)
		orders.GET("", h.ListMine)
		orders.POST("/:id/cancel", h.Cancel)
	}

	// 详情对订单相关方开放，不限定角色
	detail := r.Group("/orders")
	detail.Use(middleware.AuthMiddleware())
	{
		detail.GET("/:id", h.Get)
	}

	vendor := r.Group("/vendor/orders")
	vendor.Use(middleware.AuthMiddleware(), middleware.RequireActor("vendor"))
	{
		vendor.GET("/pending", h.ListPending)
		vendor.POST("/:id/decision", h.Decide)
	}

	rider := r.Group("/rider/orders")
	rider.Use(middleware.AuthMiddleware(), middleware.RequireActor("rider"))
	{
		rider.GET("/active", h.ListActive)
		rider.POST("/:id/assign", h.Assign)
		rider.POST("/:id/complete", h.Complete)
	}
}
