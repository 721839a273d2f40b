package handler

import (
	"net/http"

	"gas_marketplace/internal/domain/review/service"
	"gas_marketplace/internal/pkg/middleware"
	"gas_marketplace/pkg/response"
	"gas_marketplace/pkg/utils"

	"github.com/gin-gonic/gin"
)

// ReviewHandler 评价接口
type ReviewHandler struct {
	reviewService service.ReviewService
}

// NewReviewHandler 创建评价处理器
func NewReviewHandler(s service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: s}
}

type createReviewRequest struct {
	OrderID string `json:"orderId" binding:"required,uuid"`
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"required,max=1000"`
}

// Create 提交评价
// @Summary 评价商家
// @Tags review
// @Accept json
// @Produce json
// @Param input body createReviewRequest true "评价内容"
// @Success 200 {object} response.Response
// @Router /reviews [post]
func (h *ReviewHandler) Create(c *gin.Context) {
	var req createReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "invalid review payload")
		return
	}

	review, err := h.reviewService.CreateReview(middleware.AccountID(c), service.CreateReviewInput{
		OrderID: req.OrderID,
		Rating:  req.Rating,
		Comment: req.Comment,
	})
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, review)
}

// ListByVendor 商家评价列表
// @Summary 商家评价列表
// @Tags review
// @Param id path string true "商家账号 ID"
// @Success 200 {object} response.Response
// @Router /vendors/{id}/reviews [get]
func (h *ReviewHandler) ListByVendor(c *gin.Context) {
	var page utils.Pagination
	if err := c.ShouldBindQuery(&page); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "invalid pagination parameters")
		return
	}
	offset, limit := page.GetPageOffset()

	reviews, total, err := h.reviewService.ListByVendor(c.Param("id"), offset, limit)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, utils.PageResult{
		List:  reviews,
		Total: total,
		Page:  page.Page,
		Limit: page.Limit,
	})
}
