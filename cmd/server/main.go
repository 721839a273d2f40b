package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "gas_marketplace/docs"
	_ "gas_marketplace/internal/domain/account"
	_ "gas_marketplace/internal/domain/analytics"
	_ "gas_marketplace/internal/domain/kyc"
	_ "gas_marketplace/internal/domain/order"
	_ "gas_marketplace/internal/domain/payment"
	_ "gas_marketplace/internal/domain/review"
	_ "gas_marketplace/internal/domain/wallet"

	"gas_marketplace/internal/pkg/common"
	"gas_marketplace/internal/pkg/config"
	"gas_marketplace/internal/pkg/mailer"
	"gas_marketplace/internal/pkg/middleware"
	"gas_marketplace/internal/pkg/push"
	"gas_marketplace/internal/pkg/registry"
	"gas_marketplace/internal/pkg/uploader"
	"gas_marketplace/pkg/database"
	"gas_marketplace/pkg/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// @title Gas Marketplace API
// @version 1.0
// @description 气瓶配送平台：下单、接单、配送、支付与结算
// @BasePath /
func main() {
	config.LoadConfig()

	logger.Init(config.GlobalConfig.App.Debug)
	defer logger.Sync()

	if config.GlobalConfig.Server.Mode != "" {
		gin.SetMode(config.GlobalConfig.Server.Mode)
	}

	db := database.InitDatabase()
	rdb := database.InitRedis()

	mail := mailer.NewSMTPMailer(2, 256)
	defer mail.Close()

	// 可选外设：缺配置就降级，不拦启动
	if err := uploader.InitUploader(); err != nil {
		logger.Log.Warn("object storage disabled", zap.Error(err))
	}
	if svc, err := push.NewAliyunPushService(); err == nil {
		push.GlobalPushService = svc
	} else {
		logger.Log.Warn("push service disabled", zap.Error(err))
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.Default())
	r.Use(middleware.TraceMiddleware())
	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.RateLimitMiddleware())
	r.Use(middleware.MetricsMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.POST("/upload", middleware.AuthMiddleware(), common.UploadFile)

	if err := registry.InitModules(&registry.ModuleContext{
		DB:     db,
		Redis:  rdb,
		Router: r,
		Mailer: mail,
	}); err != nil {
		logger.Log.Fatal("module initialization failed", zap.Error(err))
	}

	srv := &http.Server{
		Addr:    ":" + config.GlobalConfig.Server.Port,
		Handler: r,
	}

	go func() {
		logger.Log.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("forced shutdown", zap.Error(err))
	}
}
