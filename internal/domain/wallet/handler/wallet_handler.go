package handler

import (
	"net/http"

	"gas_marketplace/internal/domain/wallet/service"
	"gas_marketplace/internal/pkg/middleware"
	"gas_marketplace/pkg/response"
	"gas_marketplace/pkg/utils"

	"github.com/gin-gonic/gin"
)

// WalletHandler 钱包接口
type WalletHandler struct {
	walletService service.WalletService
}

// NewWalletHandler 创建钱包处理器
func NewWalletHandler(walletService service.WalletService) *WalletHandler {
	return &WalletHandler{walletService: walletService}
}

// DistributeFunds 把订单分成结算到商家和骑手钱包
// @Summary 订单资金结算
// @Tags wallet
// @Param id path string true "订单 ID"
// @Success 200 {object} response.Response
// @Router /wallet/orders/{id}/distribute [post]
func (h *WalletHandler) DistributeFunds(c *gin.Context) {
	if err := h.walletService.DistributeFunds(c.Param("id")); err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, gin.H{"message": "funds distributed"})
}

// GetWallet 查询当前账号的钱包余额
// @Summary 查询钱包
// @Tags wallet
// @Success 200 {object} response.Response
// @Router /wallet [get]
func (h *WalletHandler) GetWallet(c *gin.Context) {
	wallet, err := h.walletService.GetWallet(middleware.AccountID(c))
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, wallet)
}

// ListTransactions 分页查询钱包流水
// @Summary 钱包流水
// @Tags wallet
// @Success 200 {object} response.Response
// @Router /wallet/transactions [get]
func (h *WalletHandler) ListTransactions(c *gin.Context) {
	var page utils.Pagination
	if err := c.ShouldBindQuery(&page); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "invalid pagination parameters")
		return
	}
	offset, limit := page.GetPageOffset()

	txs, total, err := h.walletService.ListTransactions(middleware.AccountID(c), offset, limit)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, utils.PageResult{
		List:  txs,
		Total: total,
		Page:  page.Page,
		Limit: page.Limit,
	})
}

type withdrawRequest struct {
	Amount float64 `json:"amount" binding:"required,gt=0"`
}

// Withdraw 提现
// @Summary 钱包提现
// @Tags wallet
// @Success 200 {object} response.Response
// @Router /wallet/withdraw [post]
func (h *WalletHandler) Withdraw(c *gin.Context) {
	var req withdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "invalid withdrawal payload")
		return
	}

	wallet, err := h.walletService.Withdraw(middleware.AccountID(c), req.Amount)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, wallet)
}
