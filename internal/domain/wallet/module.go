package wallet

import (
	orderRepo "gas_marketplace/internal/domain/order/repository"
	"gas_marketplace/internal/domain/wallet/handler"
	"gas_marketplace/internal/domain/wallet/repository"
	"gas_marketplace/internal/domain/wallet/service"
	"gas_marketplace/internal/pkg/middleware"
	"gas_marketplace/internal/pkg/registry"

	"github.com/gin-gonic/gin"
)

// WalletModule 钱包模块
type WalletModule struct{}

func init() {
	registry.Register(&WalletModule{})
}

func (m *WalletModule) Name() string {
	return "wallet"
}

func (m *WalletModule) Priority() int {
	// 依赖订单模块
	return 30
}

func (m *WalletModule) Init(ctx *registry.ModuleContext) error {
	walletRepository := repository.NewWalletRepository(ctx.DB)
	walletService := service.NewWalletService(walletRepository, orderRepo.NewOrderRepository(ctx.DB))
	walletHandler := handler.NewWalletHandler(walletService)

	setupRoutes(ctx.Router, walletHandler)
	return nil
}

func setupRoutes(r *gin.Engine, h *handler.WalletHandler) {
	g := r.Group("/wallet")
	g.Use(middleware.AuthMiddleware(), middleware.RequireActor("vendor", "rider"))
	{
		g.GET("", h.GetWallet)
		g.GET("/transactions", h.ListTransactions)
		g.POST("/withdraw", h.Withdraw)
	}

	// 结算由后台或定时任务触发，这里放给任何已登录账号的管理路径
	settle := r.Group("/wallet/orders")
	settle.Use(middleware.AuthMiddleware())
	{
		settle.POST("/:id/distribute", h.DistributeFunds)
	}
}
