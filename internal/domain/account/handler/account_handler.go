package handler

import (
	"net/http"

	"gas_marketplace/internal/domain/account/model"
	"gas_marketplace/internal/domain/account/service"
	"gas_marketplace/internal/pkg/middleware"
	"gas_marketplace/pkg/response"

	"github.com/gin-gonic/gin"
)

// AccountHandler 账号处理器
type AccountHandler struct {
	service service.AccountService
}

// NewAccountHandler 创建处理器
func NewAccountHandler(service service.AccountService) *AccountHandler {
	return &AccountHandler{service: service}
}

// RegisterInput 注册输入
type RegisterInput struct {
	FullName    string `json:"fullName" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	PhoneNumber string `json:"phoneNumber" binding:"required"`
	Password    string `json:"password" binding:"required,min=8"`

	BusinessName  string  `json:"businessName"`
	Address       string  `json:"address"`
	UnitPrice     float64 `json:"unitPrice"`
	VehicleNumber string  `json:"vehicleNumber"`
}

// LoginInput 登录输入
type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// OTPInput 验证码校验输入
type OTPInput struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required,len=6"`
}

// EmailInput 只带邮箱的输入
type EmailInput struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordInput 重置密码输入
type ResetPasswordInput struct {
	Email       string `json:"email" binding:"required,email"`
	Code        string `json:"code" binding:"required,len=6"`
	NewPassword string `json:"newPassword" binding:"required,min=8"`
}

// ChangePasswordInput 修改密码输入
type ChangePasswordInput struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=8"`
}

// UpdateProfileInput 资料更新输入
type UpdateProfileInput struct {
	FullName      string  `json:"fullName"`
	AvatarURL     string  `json:"avatarUrl"`
	BusinessName  string  `json:"businessName"`
	Address       string  `json:"address"`
	UnitPrice     float64 `json:"unitPrice"`
	VehicleNumber string  `json:"vehicleNumber"`
}

// AvailabilityInput 在售/在线状态输入
type AvailabilityInput struct {
	Available *bool `json:"available" binding:"required"`
}

func actorParam(c *gin.Context) (string, bool) {
	actor := c.Param("actor")
	if !model.ValidActor(actor) {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "actor must be one of user, vendor, rider")
		return "", false
	}
	return actor, true
}

// Register 注册账号
// @Summary 注册账号（user/vendor/rider 共用）
// @Tags Auth
// @Accept json
// @Produce json
// @Param actor path string true "user | vendor | rider"
// @Param input body RegisterInput true "Profile"
// @Success 200 {object} response.Response
// @Router /auth/{actor} [post]
func (h *AccountHandler) Register(c *gin.Context) {
	actor, ok := actorParam(c)
	if !ok {
		return
	}

	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	err := h.service.Register(actor, service.RegisterInput{
		FullName:      input.FullName,
		Email:         input.Email,
		PhoneNumber:   input.PhoneNumber,
		Password:      input.Password,
		BusinessName:  input.BusinessName,
		Address:       input.Address,
		UnitPrice:     input.UnitPrice,
		VehicleNumber: input.VehicleNumber,
	})
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, gin.H{"message": "registration successful, check your email for the verification code"})
}

// VerifyOTP 校验邮箱验证码
func (h *AccountHandler) VerifyOTP(c *gin.Context) {
	actor, ok := actorParam(c)
	if !ok {
		return
	}

	var input OTPInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	if err := h.service.VerifyOTP(actor, input.Email, input.Code); err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, gin.H{"message": "account verified"})
}

// Login 登录
// @Summary 登录，签发 Bearer token
// @Tags Auth
// @Accept json
// @Produce json
// @Param actor path string true "user | vendor | rider"
// @Param input body LoginInput true "Credentials"
// @Success 200 {object} response.Response
// @Router /auth/{actor}/login [post]
func (h *AccountHandler) Login(c *gin.Context) {
	actor, ok := actorParam(c)
	if !ok {
		return
	}

	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	token, account, err := h.service.Login(actor, input.Email, input.Password)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, gin.H{"token": token, "account": account})
}

// ResendOTP 重发验证码
func (h *AccountHandler) ResendOTP(c *gin.Context) {
	actor, ok := actorParam(c)
	if !ok {
		return
	}

	var input EmailInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	if err := h.service.ResendOTP(actor, input.Email); err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, gin.H{"message": "verification code sent"})
}

// ForgotPassword 找回密码
func (h *AccountHandler) ForgotPassword(c *gin.Context) {
	actor, ok := actorParam(c)
	if !ok {
		return
	}

	var input EmailInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	if err := h.service.ForgotPassword(actor, input.Email); err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, gin.H{"message": "password reset code sent"})
}

// ResetPassword 重置密码
func (h *AccountHandler) ResetPassword(c *gin.Context) {
	actor, ok := actorParam(c)
	if !ok {
		return
	}

	var input ResetPasswordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	if err := h.service.ResetPassword(actor, input.Email, input.Code, input.NewPassword); err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, gin.H{"message": "password updated"})
}

// ChangePassword 登录态修改密码
func (h *AccountHandler) ChangePassword(c *gin.Context) {
	var input ChangePasswordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	if err := h.service.ChangePassword(middleware.AccountID(c), input.OldPassword, input.NewPassword); err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, gin.H{"message": "password updated"})
}

// Me 当前账号信息
func (h *AccountHandler) Me(c *gin.Context) {
	account, err := h.service.GetAccount(middleware.AccountID(c))
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, account)
}

// UpdateMe 更新当前账号资料
func (h *AccountHandler) UpdateMe(c *gin.Context) {
	var input UpdateProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	account, err := h.service.UpdateProfile(middleware.AccountID(c), service.UpdateProfileInput{
		FullName:      input.FullName,
		AvatarURL:     input.AvatarURL,
		BusinessName:  input.BusinessName,
		Address:       input.Address,
		UnitPrice:     input.UnitPrice,
		VehicleNumber: input.VehicleNumber,
	})
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, account)
}

// SetAvailability 商家/骑手切换在售、在线状态
func (h *AccountHandler) SetAvailability(c *gin.Context) {
	var input AvailabilityInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	actor := c.GetString(middleware.CtxActor)
	if err := h.service.SetAvailability(middleware.AccountID(c), actor, *input.Available); err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, gin.H{"available": *input.Available})
}
