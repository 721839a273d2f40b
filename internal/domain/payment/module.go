package payment

import (
	"gas_marketplace/internal/domain/account"
	orderRepo "gas_marketplace/internal/domain/order/repository"
	"gas_marketplace/internal/domain/payment/handler"
	"gas_marketplace/internal/domain/payment/model"
	"gas_marketplace/internal/domain/payment/repository"
	"gas_marketplace/internal/domain/payment/service"
	"gas_marketplace/internal/domain/payment/strategy"
	"gas_marketplace/internal/pkg/middleware"
	"gas_marketplace/internal/pkg/registry"
	"gas_marketplace/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PaymentModule 支付模块
type PaymentModule struct{}

func init() {
	registry.Register(&PaymentModule{})
}

func (m *PaymentModule) Name() string {
	return "payment"
}

func (m *PaymentModule) Priority() int {
	// 依赖订单模块
	return 20
}

func (m *PaymentModule) Init(ctx *registry.ModuleContext) error {
	paymentRepo := repository.NewPaymentRepository(ctx.DB)
	paymentService := service.NewPaymentService(paymentRepo,
		orderRepo.NewOrderRepository(ctx.DB), account.SharedService, ctx.Mailer)

	// 渠道按配置可用性注册，缺配置的渠道不上线
	if s, err := strategy.NewGatewayStrategy(); err == nil {
		paymentService.RegisterStrategy(model.ChannelCard, s)
	} else {
		logger.Log.Warn("card gateway channel disabled", zap.Error(err))
	}
	if s, err := strategy.NewAlipayStrategy(); err == nil {
		paymentService.RegisterStrategy(model.ChannelAlipay, s)
	} else {
		logger.Log.Warn("alipay channel disabled", zap.Error(err))
	}
	if s, err := strategy.NewWechatStrategy(); err == nil {
		paymentService.RegisterStrategy(model.ChannelWechat, s)
	} else {
		logger.Log.Warn("wechat channel disabled", zap.Error(err))
	}

	paymentHandler := handler.NewPaymentHandler(paymentService)
	setupRoutes(ctx.Router, paymentHandler)
	return nil
}

func setupRoutes(r *gin.Engine, h *handler.PaymentHandler) {
	payments := r.Group("/payments")
	payments.Use(middleware.AuthMiddleware(), middleware.RequireActor("user"))
	{
		payments.POST("/initialize", h.Initialize)
		payments.GET("/:reference", h.Verify)
	}

	// 回调是渠道服务端来的，不走登录态，靠验签保护
	notify := r.Group("/payments/notify")
	{
		notify.POST("/card", h.GatewayNotify)
		notify.POST("/alipay", h.AlipayNotify)
		notify.POST("/wechat", h.WechatNotify)
	}
}
