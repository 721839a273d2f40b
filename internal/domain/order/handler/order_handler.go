package handler

import (
	"net/http"
	"time"

	"gas_marketplace/internal/domain/order/service"
	"gas_marketplace/internal/pkg/middleware"
	"gas_marketplace/pkg/response"
	"gas_marketplace/pkg/utils"

	"github.com/gin-gonic/gin"
)

// OrderHandler 订单处理器
type OrderHandler struct {
	service service.OrderService
}

func NewOrderHandler(service service.OrderService) *OrderHandler {
	return &OrderHandler{service: service}
}

// PlaceOrderInput 下单输入
type PlaceOrderInput struct {
	GasType         string     `json:"gasType" binding:"required"`
	Quantity        int        `json:"quantity" binding:"required,gt=0"`
	DeliveryAddress string     `json:"deliveryAddress" binding:"required"`
	ScheduledTime   *time.Time `json:"scheduledTime"`
}

// DecisionInput 商家接单/拒单输入
type DecisionInput struct {
	Action           string `json:"action" binding:"required,oneof=accept reject"`
	RejectionMessage string `json:"rejectionMessage"`
}

// PlaceOrder 下单
// @Summary 顾客下单
// @Tags Order
// @Accept json
// @Produce json
// @Param input body PlaceOrderInput true "Order"
// @Success 200 {object} response.Response
// @Router /orders [post]
func (h *OrderHandler) PlaceOrder(c *gin.Context) {
	var input PlaceOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	order, err := h.service.PlaceOrder(middleware.AccountID(c), service.PlaceOrderInput{
		GasType:         input.GasType,
		Quantity:        input.Quantity,
		DeliveryAddress: input.DeliveryAddress,
		ScheduledTime:   input.ScheduledTime,
	})
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, order)
}

// Decide 商家接单/拒单
func (h *OrderHandler) Decide(c *gin.Context) {
	var input DecisionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	order, err := h.service.Decide(middleware.AccountID(c), c.Param("id"), input.Action, input.RejectionMessage)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, order)
}

// Assign 骑手抢单
func (h *OrderHandler) Assign(c *gin.Context) {
	order, err := h.service.AssignRider(middleware.AccountID(c), c.Param("id"))
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, order)
}

// Complete 骑手确认送达
func (h *OrderHandler) Complete(c *gin.Context) {
	order, err := h.service.Complete(middleware.AccountID(c), c.Param("id"))
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, order)
}

// Cancel 顾客取消订单
func (h *OrderHandler) Cancel(c *gin.Context) {
	if err := h.service.Cancel(middleware.AccountID(c), c.Param("id")); err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, gin.H{"message": "order cancelled"})
}

// Get 订单详情
func (h *OrderHandler) Get(c *gin.Context) {
	order, err := h.service.GetOrder(middleware.AccountID(c), c.GetString(middleware.CtxActor), c.Param("id"))
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, order)
}

// ListMine 顾客订单列表
func (h *OrderHandler) ListMine(c *gin.Context) {
	var p utils.Pagination
	_ = c.ShouldBindQuery(&p)
	offset, limit := p.GetPageOffset()

	orders, total, err := h.service.ListMine(middleware.AccountID(c), offset, limit)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, utils.PageResult{List: orders, Total: total, Page: p.Page, Limit: p.Limit})
}

// ListPending 商家接单池
func (h *OrderHandler) ListPending(c *gin.Context) {
	var p utils.Pagination
	_ = c.ShouldBindQuery(&p)
	offset, limit := p.GetPageOffset()

	orders, total, err := h.service.ListPending(offset, limit)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, utils.PageResult{List: orders, Total: total, Page: p.Page, Limit: p.Limit})
}

// ListActive 骑手进行中的配送
func (h *OrderHandler) ListActive(c *gin.Context) {
	orders, err := h.service.ListActiveForRider(middleware.AccountID(c))
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, orders)
}
