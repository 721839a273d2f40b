package handler

import (
	"gas_marketplace/internal/domain/analytics/service"
	"gas_marketplace/internal/pkg/middleware"
	"gas_marketplace/pkg/response"

	"github.com/gin-gonic/gin"
)

// AnalyticsHandler 统计接口
type AnalyticsHandler struct {
	analyticsService service.AnalyticsService
}

// NewAnalyticsHandler 创建统计处理器
func NewAnalyticsHandler(s service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: s}
}

// MyStats 商家查看自己的订单统计
// @Summary 商家订单统计
// @Tags analytics
// @Success 200 {object} response.Response
// @Router /vendor/stats [get]
func (h *AnalyticsHandler) MyStats(c *gin.Context) {
	stats, err := h.analyticsService.GetOrderStats(middleware.AccountID(c))
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, stats)
}

// ReviewSummary 商家评分汇总
// @Summary 商家评分汇总
// @Tags analytics
// @Param id path string true "商家账号 ID"
// @Success 200 {object} response.Response
// @Router /vendors/{id}/reviews/summary [get]
func (h *AnalyticsHandler) ReviewSummary(c *gin.Context) {
	summary, err := h.analyticsService.GetReviewSummary(c.Param("id"))
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, summary)
}

// Dashboard 商家看板
// @Summary 商家看板
// @Tags analytics
// @Param id path string true "商家账号 ID"
// @Success 200 {object} response.Response
// @Router /vendors/{id}/analytics [get]
func (h *AnalyticsHandler) Dashboard(c *gin.Context) {
	dashboard, err := h.analyticsService.GetVendorDashboard(c.Param("id"))
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, dashboard)
}
