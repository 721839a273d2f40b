package account

import (
	"gas_marketplace/internal/domain/account/handler"
	"gas_marketplace/internal/domain/account/repository"
	"gas_marketplace/internal/domain/account/service"
	walletRepo "gas_marketplace/internal/domain/wallet/repository"
	"gas_marketplace/internal/pkg/middleware"
	"gas_marketplace/internal/pkg/otp"
	"gas_marketplace/internal/pkg/registry"

	"github.com/gin-gonic/gin"
)

// AccountModule 账号模块
type AccountModule struct{}

func init() {
	// 自动注册模块
	registry.Register(&AccountModule{})
}

func (m *AccountModule) Name() string {
	return "account"
}

func (m *AccountModule) Priority() int {
	// 账号模块优先级最高，其他模块都依赖它
	return 1
}

func (m *AccountModule) Init(ctx *registry.ModuleContext) error {
	// 1. 依赖注入
	accountRepo := repository.NewAccountRepository(ctx.DB)
	otpService := otp.NewService(ctx.Redis)
	wallets := walletRepo.NewWalletRepository(ctx.DB)
	accountService := service.NewAccountService(accountRepo, otpService, ctx.Mailer, wallets)
	accountHandler := handler.NewAccountHandler(accountService)

	// 2. 路由注册
	setupRoutes(ctx.Router, accountHandler)

	// 订单、评价模块通过 registry 共享账号服务
	SharedService = accountService

	return nil
}

// SharedService 跨模块使用的账号服务实例，account 模块最先初始化
var SharedService service.AccountService

func setupRoutes(r *gin.Engine, h *handler.AccountHandler) {
	// 公开路由
	authGroup := r.Group("/auth/:actor")
	{
		authGroup.POST("", h.Register)
		authGroup.POST("/login", h.Login)
		authGroup.POST("/verify-otp", h.VerifyOTP)
		authGroup.POST("/resend-otp", h.ResendOTP)
		authGroup.POST("/forgot-password", h.ForgotPassword)
		authGroup.POST("/reset-password", h.ResetPassword)
	}

	// 受保护的路由
	accountGroup := r.Group("/accounts")
	accountGroup.Use(middleware.AuthMiddleware())
	{
		accountGroup.GET("/me", h.Me)
		accountGroup.PUT("/me", h.UpdateMe)
		accountGroup.PUT("/me/password", h.ChangePassword)
		accountGroup.PUT("/me/availability",
			middleware.RequireActor("vendor", "rider"), h.SetAvailability)
	}
}
