package handler

import (
	"net/http"

	"gas_marketplace/internal/domain/payment/model"
	"gas_marketplace/internal/domain/payment/service"
	"gas_marketplace/internal/pkg/middleware"
	"gas_marketplace/pkg/response"

	"github.com/gin-gonic/gin"
)

// PaymentHandler 支付接口
type PaymentHandler struct {
	paymentService service.PaymentService
}

// NewPaymentHandler 创建支付处理器
func NewPaymentHandler(s service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: s}
}

type initializeRequest struct {
	OrderID string `json:"orderId" binding:"required,uuid"`
	Channel string `json:"channel" binding:"required,oneof=card alipay wechat"`
}

// Initialize 为订单发起支付
// @Summary 发起支付
// @Tags payment
// @Accept json
// @Produce json
// @Param input body initializeRequest true "支付请求"
// @Success 200 {object} response.Response
// @Router /payments/initialize [post]
func (h *PaymentHandler) Initialize(c *gin.Context) {
	var req initializeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "invalid payment payload")
		return
	}

	result, err := h.paymentService.InitializePayment(middleware.AccountID(c), req.OrderID, req.Channel)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, result)
}

// Verify 查询支付单状态
// @Summary 查询支付状态
// @Tags payment
// @Param reference path string true "支付单号"
// @Success 200 {object} response.Response
// @Router /payments/{reference} [get]
func (h *PaymentHandler) Verify(c *gin.Context) {
	payment, err := h.paymentService.VerifyPayment(middleware.AccountID(c), c.Param("reference"))
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, payment)
}

// GatewayNotify 收银网关回调，query 或表单里带 reference
// @Summary 网关回调
// @Tags payment
// @Router /payments/notify/card [post]
func (h *PaymentHandler) GatewayNotify(c *gin.Context) {
	c.Request.ParseForm()
	if err := h.paymentService.HandleNotify(model.ChannelCard, c.Request.Form); err != nil {
		c.String(http.StatusBadRequest, "fail")
		return
	}
	c.String(http.StatusOK, "ok")
}

// AlipayNotify 支付宝回调
// @Summary 支付宝回调
// @Tags payment
// @Router /payments/notify/alipay [post]
func (h *PaymentHandler) AlipayNotify(c *gin.Context) {
	// 支付宝回调是 POST Form 格式
	c.Request.ParseForm()
	if err := h.paymentService.HandleNotify(model.ChannelAlipay, c.Request.Form); err != nil {
		c.String(http.StatusOK, "fail") // 告诉支付宝处理失败，它会重试
		return
	}
	c.String(http.StatusOK, "success")
}

// WechatNotify 微信支付回调
// @Summary 微信支付回调
// @Tags payment
// @Router /payments/notify/wechat [post]
func (h *PaymentHandler) WechatNotify(c *gin.Context) {
	// 微信回调是 JSON 且要验 Header 里的签名，整个 *http.Request 交给渠道处理
	if err := h.paymentService.HandleNotify(model.ChannelWechat, c.Request); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": "FAIL", "message": err.Error()})
		return
	}
	c.Status(http.StatusOK)
}
