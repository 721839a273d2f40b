package kyc

import (
	"gas_marketplace/internal/domain/kyc/handler"
	"gas_marketplace/internal/domain/kyc/repository"
	"gas_marketplace/internal/domain/kyc/service"
	"gas_marketplace/internal/pkg/middleware"
	"gas_marketplace/internal/pkg/registry"

	"github.com/gin-gonic/gin"
)

// KycModule 实名审核模块
type KycModule struct{}

func init() {
	registry.Register(&KycModule{})
}

func (m *KycModule) Name() string {
	return "kyc"
}

func (m *KycModule) Priority() int {
	return 50
}

func (m *KycModule) Init(ctx *registry.ModuleContext) error {
	kycRepo := repository.NewKycRepository(ctx.DB)
	kycService := service.NewKycService(kycRepo)
	kycHandler := handler.NewKycHandler(kycService)

	setupRoutes(ctx.Router, kycHandler)
	return nil
}

func setupRoutes(r *gin.Engine, h *handler.KycHandler) {
	g := r.Group("/kyc")
	g.Use(middleware.AuthMiddleware(), middleware.RequireActor("vendor", "rider"))
	{
		g.POST("", h.Submit)
		g.PUT("", h.Update)
		g.GET("", h.Get)
	}

	// 审核入口，运营后台调用
	review := r.Group("/kyc")
	review.Use(middleware.AuthMiddleware())
	{
		review.POST("/:id/review", h.Review)
	}
}
