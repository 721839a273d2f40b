package service

import (
	"errors"
	"fmt"

	"gas_marketplace/internal/domain/account/model"
	"gas_marketplace/internal/domain/account/repository"
	"gas_marketplace/internal/pkg/mailer"
	"gas_marketplace/internal/pkg/otp"
	"gas_marketplace/pkg/apperr"
	"gas_marketplace/pkg/response"
	"gas_marketplace/pkg/utils"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// RegisterInput 注册输入，角色相关字段只在对应角色下生效
type RegisterInput struct {
	FullName    string
	Email       string
	PhoneNumber string
	Password    string

	// vendor
	BusinessName string
	Address      string
	UnitPrice    float64

	// rider
	VehicleNumber string
}

// UpdateProfileInput 资料更新输入
type UpdateProfileInput struct {
	FullName  string
	AvatarURL string

	BusinessName string
	Address      string
	UnitPrice    float64

	VehicleNumber string
}

// WalletProvisioner 账号验证通过后开通钱包。由 wallet 模块实现，
// 这样结算时钱包缺失就是真正的数据异常而不是惰性初始化没跑到
type WalletProvisioner interface {
	EnsureWallet(ownerID, ownerType string) error
}

// AccountService 统一身份服务：user / vendor / rider 共用同一套流程
type AccountService interface {
	Register(actor string, input RegisterInput) error
	VerifyOTP(actor, email, code string) error
	Login(actor, email, password string) (string, *model.Account, error)
	ResendOTP(actor, email string) error
	ForgotPassword(actor, email string) error
	ResetPassword(actor, email, code, newPassword string) error
	ChangePassword(accountID, oldPassword, newPassword string) error

	GetAccount(id string) (*model.Account, error)
	UpdateProfile(id string, input UpdateProfileInput) (*model.Account, error)
	SetAvailability(accountID, actor string, available bool) error

	// 供订单/评价模块使用
	FirstAvailableVendor() (*model.Account, error)
	AvailableRiders() ([]model.Account, error)
	UpdateVendorRating(accountID string, average float64) error
}

type accountService struct {
	repo    repository.AccountRepository
	otp     otp.Service
	mail    mailer.Mailer
	wallets WalletProvisioner
}

// NewAccountService 创建账号服务
func NewAccountService(repo repository.AccountRepository, otpSvc otp.Service, mail mailer.Mailer, wallets WalletProvisioner) AccountService {
	return &accountService{repo: repo, otp: otpSvc, mail: mail, wallets: wallets}
}

// Register 创建未验证账号并下发验证码
func (s *accountService) Register(actor string, input RegisterInput) error {
	if !model.ValidActor(actor) {
		return apperr.Validation("unknown actor type")
	}

	exists, err := s.repo.EmailOrPhoneExists(input.Email, input.PhoneNumber)
	if err != nil {
		return err
	}
	if exists {
		return apperr.Conflict("an account with this email or phone number already exists").
			WithCode(response.ErrAccountExists)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	account := &model.Account{
		ActorType:   actor,
		FullName:    input.FullName,
		Email:       input.Email,
		PhoneNumber: input.PhoneNumber,
		Password:    string(hash),
	}

	switch actor {
	case model.ActorVendor:
		if input.UnitPrice <= 0 {
			return apperr.Validation("unit price must be positive")
		}
		account.VendorProfile = &model.VendorProfile{
			BusinessName: input.BusinessName,
			Address:      input.Address,
			UnitPrice:    input.UnitPrice,
		}
	case model.ActorRider:
		account.RiderProfile = &model.RiderProfile{
			VehicleNumber: input.VehicleNumber,
		}
	}

	if err := s.repo.Create(account); err != nil {
		return err
	}

	s.issueAndSend(otp.PurposeVerify, actor, account.Email, account.FullName)
	return nil
}

// VerifyOTP 验证邮箱验证码，成功后激活账号并开通钱包（vendor/rider）
func (s *accountService) VerifyOTP(actor, email, code string) error {
	account, err := s.findAccount(actor, email)
	if err != nil {
		return err
	}

	if account.IsVerified {
		return apperr.Conflict("account is already verified")
	}

	if err := s.otp.Verify(otp.PurposeVerify, actor, email, code); err != nil {
		return err
	}

	if err := s.repo.MarkVerified(account.ID); err != nil {
		return err
	}

	// 商家和骑手会收款，验证即开钱包；结算阶段不做惰性创建
	if actor == model.ActorVendor || actor == model.ActorRider {
		if err := s.wallets.EnsureWallet(account.ID, actor); err != nil {
			return err
		}
	}

	s.mail.Enqueue(email, "Welcome aboard",
		fmt.Sprintf("<p>Hi %s,</p><p>Your account has been verified. Welcome to the marketplace.</p>", account.FullName))
	return nil
}

// Login 校验凭证并签发 token
func (s *accountService) Login(actor, email, password string) (string, *model.Account, error) {
	account, err := s.findAccount(actor, email)
	if err != nil {
		return "", nil, err
	}

	if !account.IsVerified {
		return "", nil, apperr.Forbidden("account is not verified, complete OTP verification first").
			WithCode(response.ErrNotVerified)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.Password), []byte(password)); err != nil {
		return "", nil, apperr.Unauthorized("invalid credentials").WithCode(response.ErrAuthFailed)
	}

	token, _, err := utils.GenerateToken(account.ID, account.ActorType)
	if err != nil {
		return "", nil, err
	}

	return token, account, nil
}

// ResendOTP 重发验证码
func (s *accountService) ResendOTP(actor, email string) error {
	account, err := s.findAccount(actor, email)
	if err != nil {
		return err
	}

	if account.IsVerified {
		return apperr.Conflict("account is already verified")
	}

	code, err := s.otp.Issue(otp.PurposeVerify, actor, email)
	if err != nil {
		return err
	}
	s.sendOTPMail(email, account.FullName, code)
	return nil
}

// ForgotPassword 下发密码重置验证码
func (s *accountService) ForgotPassword(actor, email string) error {
	account, err := s.findAccount(actor, email)
	if err != nil {
		return err
	}

	code, err := s.otp.Issue(otp.PurposeReset, actor, email)
	if err != nil {
		return err
	}

	s.mail.Enqueue(email, "Password reset code",
		fmt.Sprintf("<p>Hi %s,</p><p>Your password reset code is <b>%s</b>. It expires in 5 minutes.</p>",
			account.FullName, code))
	return nil
}

// ResetPassword 用重置验证码设置新密码
func (s *accountService) ResetPassword(actor, email, code, newPassword string) error {
	account, err := s.findAccount(actor, email)
	if err != nil {
		return err
	}

	if err := s.otp.Verify(otp.PurposeReset, actor, email, code); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.repo.UpdatePassword(account.ID, string(hash))
}

// ChangePassword 登录态下修改密码
func (s *accountService) ChangePassword(accountID, oldPassword, newPassword string) error {
	account, err := s.repo.GetByID(accountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("account not found").WithCode(response.ErrAccountNotFound)
		}
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.Password), []byte(oldPassword)); err != nil {
		return apperr.Unauthorized("current password is incorrect").WithCode(response.ErrAuthFailed)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.repo.UpdatePassword(account.ID, string(hash))
}

func (s *accountService) GetAccount(id string) (*model.Account, error) {
	account, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("account not found").WithCode(response.ErrAccountNotFound)
		}
		return nil, err
	}
	return account, nil
}

// UpdateProfile 更新账号及角色资料
func (s *accountService) UpdateProfile(id string, input UpdateProfileInput) (*model.Account, error) {
	account, err := s.GetAccount(id)
	if err != nil {
		return nil, err
	}

	if input.FullName != "" {
		account.FullName = input.FullName
	}
	if input.AvatarURL != "" {
		account.AvatarURL = input.AvatarURL
	}

	if account.VendorProfile != nil {
		if input.BusinessName != "" {
			account.VendorProfile.BusinessName = input.BusinessName
		}
		if input.Address != "" {
			account.VendorProfile.Address = input.Address
		}
		if input.UnitPrice > 0 {
			account.VendorProfile.UnitPrice = input.UnitPrice
		}
	}
	if account.RiderProfile != nil && input.VehicleNumber != "" {
		account.RiderProfile.VehicleNumber = input.VehicleNumber
	}

	if err := s.repo.Update(account); err != nil {
		return nil, err
	}
	return account, nil
}

func (s *accountService) SetAvailability(accountID, actor string, available bool) error {
	return s.repo.SetAvailability(accountID, actor, available)
}

func (s *accountService) FirstAvailableVendor() (*model.Account, error) {
	return s.repo.FirstAvailableVendor()
}

func (s *accountService) AvailableRiders() ([]model.Account, error) {
	return s.repo.AvailableRiders()
}

func (s *accountService) UpdateVendorRating(accountID string, average float64) error {
	return s.repo.UpdateVendorRating(accountID, average)
}

// findAccount 按角色+邮箱查账号，统一 NotFound 语义
func (s *accountService) findAccount(actor, email string) (*model.Account, error) {
	if !model.ValidActor(actor) {
		return nil, apperr.Validation("unknown actor type")
	}
	account, err := s.repo.GetByEmail(actor, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("account not found").WithCode(response.ErrAccountNotFound)
		}
		return nil, err
	}
	return account, nil
}

// issueAndSend 下发验证码邮件，发信失败不影响主流程
func (s *accountService) issueAndSend(purpose, actor, email, name string) {
	code, err := s.otp.Issue(purpose, actor, email)
	if err != nil {
		// 注册本身已成功，验证码可以走重发接口补发
		return
	}
	s.sendOTPMail(email, name, code)
}

func (s *accountService) sendOTPMail(email, name, code string) {
	s.mail.Enqueue(email, "Your verification code",
		fmt.Sprintf("<p>Hi %s,</p><p>Your verification code is <b>%s</b>. It expires in 5 minutes.</p>",
			name, code))
}
