package handler

import (
	"mime/multipart"
	"net/http"

	"gas_marketplace/internal/domain/kyc/service"
	"gas_marketplace/internal/pkg/middleware"
	"gas_marketplace/pkg/response"

	"github.com/gin-gonic/gin"
)

// KycHandler 实名审核接口
type KycHandler struct {
	kycService service.KycService
}

// NewKycHandler 创建实名审核处理器
func NewKycHandler(s service.KycService) *KycHandler {
	return &KycHandler{kycService: s}
}

func fileOrNil(c *gin.Context, field string) *multipart.FileHeader {
	file, err := c.FormFile(field)
	if err != nil {
		return nil
	}
	return file
}

func bindSubmitInput(c *gin.Context) service.SubmitInput {
	return service.SubmitInput{
		IDDocument: fileOrNil(c, "id_document"),
		Selfie:     fileOrNil(c, "selfie"),
		License:    fileOrNil(c, "license"),
	}
}

// Submit 首次提交材料
// @Summary 提交实名材料
// @Tags kyc
// @Accept multipart/form-data
// @Success 200 {object} response.Response
// @Router /kyc [post]
func (h *KycHandler) Submit(c *gin.Context) {
	submission, err := h.kycService.Submit(
		middleware.AccountID(c), middleware.Actor(c), bindSubmitInput(c))
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, submission)
}

// Update 审核通过前更新材料
// @Summary 更新实名材料
// @Tags kyc
// @Accept multipart/form-data
// @Success 200 {object} response.Response
// @Router /kyc [put]
func (h *KycHandler) Update(c *gin.Context) {
	submission, err := h.kycService.Update(middleware.AccountID(c), bindSubmitInput(c))
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, submission)
}

// Get 查询自己的审核状态
// @Summary 查询审核状态
// @Tags kyc
// @Success 200 {object} response.Response
// @Router /kyc [get]
func (h *KycHandler) Get(c *gin.Context) {
	submission, err := h.kycService.Get(middleware.AccountID(c))
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, submission)
}

type reviewRequest struct {
	Decision string `json:"decision" binding:"required,oneof=approved rejected"`
	Note     string `json:"note" binding:"max=500"`
}

// Review 审核结论
// @Summary 审核实名材料
// @Tags kyc
// @Param id path string true "提交记录 ID"
// @Success 200 {object} response.Response
// @Router /kyc/{id}/review [post]
func (h *KycHandler) Review(c *gin.Context) {
	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "invalid review payload")
		return
	}

	if err := h.kycService.Review(c.Param("id"), req.Decision, req.Note); err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, gin.H{"message": "review recorded"})
}
