package service

import (
	"testing"

	"gas_marketplace/internal/domain/account/model"
	"gas_marketplace/internal/pkg/config"
	"gas_marketplace/internal/pkg/otp"
	"gas_marketplace/pkg/apperr"
	"gas_marketplace/pkg/logger"
	"gas_marketplace/pkg/response"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func init() {
	logger.Init(true)
	config.GlobalConfig.JWT.Secret = "test-secret-test-secret-test-secret!"
	config.GlobalConfig.JWT.UserExpireHours = 2
	config.GlobalConfig.JWT.VendorExpireHours = 24
	config.GlobalConfig.JWT.RiderExpireHours = 24
}

// MockAccountRepository 账号仓库 mock
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) Create(account *model.Account) error {
	return m.Called(account).Error(0)
}

func (m *MockAccountRepository) GetByID(id string) (*model.Account, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Account), args.Error(1)
}

func (m *MockAccountRepository) GetByEmail(actor, email string) (*model.Account, error) {
	args := m.Called(actor, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Account), args.Error(1)
}

func (m *MockAccountRepository) EmailOrPhoneExists(email, phone string) (bool, error) {
	args := m.Called(email, phone)
	return args.Bool(0), args.Error(1)
}

func (m *MockAccountRepository) Update(account *model.Account) error {
	return m.Called(account).Error(0)
}

func (m *MockAccountRepository) UpdatePassword(id, passwordHash string) error {
	return m.Called(id, passwordHash).Error(0)
}

func (m *MockAccountRepository) MarkVerified(id string) error {
	return m.Called(id).Error(0)
}

func (m *MockAccountRepository) SetAvailability(accountID, actor string, available bool) error {
	return m.Called(accountID, actor, available).Error(0)
}

func (m *MockAccountRepository) FirstAvailableVendor() (*model.Account, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Account), args.Error(1)
}

func (m *MockAccountRepository) AvailableRiders() ([]model.Account, error) {
	args := m.Called()
	return args.Get(0).([]model.Account), args.Error(1)
}

func (m *MockAccountRepository) UpdateVendorRating(accountID string, average float64) error {
	return m.Called(accountID, average).Error(0)
}

// MockOTPService 验证码服务 mock
type MockOTPService struct {
	mock.Mock
}

func (m *MockOTPService) Issue(purpose, actor, email string) (string, error) {
	args := m.Called(purpose, actor, email)
	return args.String(0), args.Error(1)
}

func (m *MockOTPService) Verify(purpose, actor, email, code string) error {
	return m.Called(purpose, actor, email, code).Error(0)
}

// MockMailer 邮件 mock
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Enqueue(to, subject, html string) {
	m.Called(to, subject, html)
}

func (m *MockMailer) Close() {
	m.Called()
}

// MockWalletProvisioner 钱包开通 mock
type MockWalletProvisioner struct {
	mock.Mock
}

func (m *MockWalletProvisioner) EnsureWallet(ownerID, ownerType string) error {
	return m.Called(ownerID, ownerType).Error(0)
}

type testDeps struct {
	repo    *MockAccountRepository
	otp     *MockOTPService
	mail    *MockMailer
	wallets *MockWalletProvisioner
}

func newTestService() (AccountService, testDeps) {
	deps := testDeps{
		repo:    new(MockAccountRepository),
		otp:     new(MockOTPService),
		mail:    new(MockMailer),
		wallets: new(MockWalletProvisioner),
	}
	return NewAccountService(deps.repo, deps.otp, deps.mail, deps.wallets), deps
}

func verifiedAccount(actor, password string) *model.Account {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	a := &model.Account{
		ActorType:   actor,
		FullName:    "Ada Obi",
		Email:       "ada@example.com",
		PhoneNumber: "+2348010000001",
		Password:    string(hash),
		IsVerified:  true,
	}
	a.ID = "acc-1"
	return a
}

func TestRegister(t *testing.T) {
	input := RegisterInput{
		FullName:    "Ada Obi",
		Email:       "ada@example.com",
		PhoneNumber: "+2348010000001",
		Password:    "s3cret-pass",
	}

	t.Run("creates unverified customer and sends code", func(t *testing.T) {
		svc, deps := newTestService()

		deps.repo.On("EmailOrPhoneExists", input.Email, input.PhoneNumber).Return(false, nil)
		deps.repo.On("Create", mock.AnythingOfType("*model.Account")).Return(nil)
		deps.otp.On("Issue", otp.PurposeVerify, "user", input.Email).Return("482915", nil)
		deps.mail.On("Enqueue", input.Email, mock.AnythingOfType("string"),
			mock.AnythingOfType("string")).Return()

		err := svc.Register("user", input)

		assert.NoError(t, err)
		deps.mail.AssertNumberOfCalls(t, "Enqueue", 1)
	})

	t.Run("duplicate email or phone conflicts", func(t *testing.T) {
		svc, deps := newTestService()

		deps.repo.On("EmailOrPhoneExists", input.Email, input.PhoneNumber).Return(true, nil)

		err := svc.Register("user", input)

		assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
		var appErr *apperr.Error
		assert.ErrorAs(t, err, &appErr)
		assert.Equal(t, response.ErrAccountExists, appErr.Code)
		deps.repo.AssertNotCalled(t, "Create", mock.Anything)
	})

	t.Run("vendor without a positive unit price is rejected", func(t *testing.T) {
		svc, deps := newTestService()

		deps.repo.On("EmailOrPhoneExists", input.Email, input.PhoneNumber).Return(false, nil)

		vendorInput := input
		vendorInput.BusinessName = "Ada Gas"
		err := svc.Register("vendor", vendorInput)

		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	})

	t.Run("unknown actor", func(t *testing.T) {
		svc, _ := newTestService()

		err := svc.Register("admin", input)

		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	})
}

func TestVerifyOTP(t *testing.T) {
	t.Run("valid code activates account and opens vendor wallet", func(t *testing.T) {
		svc, deps := newTestService()

		account := verifiedAccount("vendor", "pw")
		account.IsVerified = false
		deps.repo.On("GetByEmail", "vendor", account.Email).Return(account, nil)
		deps.otp.On("Verify", otp.PurposeVerify, "vendor", account.Email, "482915").Return(nil)
		deps.repo.On("MarkVerified", account.ID).Return(nil)
		deps.wallets.On("EnsureWallet", account.ID, "vendor").Return(nil)
		deps.mail.On("Enqueue", account.Email, mock.AnythingOfType("string"),
			mock.AnythingOfType("string")).Return()

		err := svc.VerifyOTP("vendor", account.Email, "482915")

		assert.NoError(t, err)
		deps.wallets.AssertCalled(t, "EnsureWallet", account.ID, "vendor")
	})

	t.Run("customers get no wallet", func(t *testing.T) {
		svc, deps := newTestService()

		account := verifiedAccount("user", "pw")
		account.IsVerified = false
		deps.repo.On("GetByEmail", "user", account.Email).Return(account, nil)
		deps.otp.On("Verify", otp.PurposeVerify, "user", account.Email, "482915").Return(nil)
		deps.repo.On("MarkVerified", account.ID).Return(nil)
		deps.mail.On("Enqueue", account.Email, mock.AnythingOfType("string"),
			mock.AnythingOfType("string")).Return()

		err := svc.VerifyOTP("user", account.Email, "482915")

		assert.NoError(t, err)
		deps.wallets.AssertNotCalled(t, "EnsureWallet", mock.Anything, mock.Anything)
	})

	t.Run("wrong code surfaces the otp error", func(t *testing.T) {
		svc, deps := newTestService()

		account := verifiedAccount("user", "pw")
		account.IsVerified = false
		deps.repo.On("GetByEmail", "user", account.Email).Return(account, nil)
		deps.otp.On("Verify", otp.PurposeVerify, "user", account.Email, "000000").
			Return(apperr.Validation("invalid verification code").WithCode(response.ErrOTPInvalid))

		err := svc.VerifyOTP("user", account.Email, "000000")

		var appErr *apperr.Error
		assert.ErrorAs(t, err, &appErr)
		assert.Equal(t, response.ErrOTPInvalid, appErr.Code)
		deps.repo.AssertNotCalled(t, "MarkVerified", mock.Anything)
	})

	t.Run("already verified account conflicts", func(t *testing.T) {
		svc, deps := newTestService()

		account := verifiedAccount("user", "pw")
		deps.repo.On("GetByEmail", "user", account.Email).Return(account, nil)

		err := svc.VerifyOTP("user", account.Email, "482915")

		assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	})
}

func TestLogin(t *testing.T) {
	t.Run("issues a token for verified credentials", func(t *testing.T) {
		svc, deps := newTestService()

		account := verifiedAccount("user", "s3cret-pass")
		deps.repo.On("GetByEmail", "user", account.Email).Return(account, nil)

		token, got, err := svc.Login("user", account.Email, "s3cret-pass")

		assert.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.Equal(t, account.ID, got.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		svc, deps := newTestService()

		account := verifiedAccount("user", "s3cret-pass")
		deps.repo.On("GetByEmail", "user", account.Email).Return(account, nil)

		_, _, err := svc.Login("user", account.Email, "wrong")

		assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
		var appErr *apperr.Error
		assert.ErrorAs(t, err, &appErr)
		assert.Equal(t, response.ErrAuthFailed, appErr.Code)
	})

	t.Run("unverified account is rejected", func(t *testing.T) {
		svc, deps := newTestService()

		account := verifiedAccount("user", "s3cret-pass")
		account.IsVerified = false
		deps.repo.On("GetByEmail", "user", account.Email).Return(account, nil)

		_, _, err := svc.Login("user", account.Email, "s3cret-pass")

		assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
		var appErr *apperr.Error
		assert.ErrorAs(t, err, &appErr)
		assert.Equal(t, response.ErrNotVerified, appErr.Code)
	})

	t.Run("unknown email", func(t *testing.T) {
		svc, deps := newTestService()

		deps.repo.On("GetByEmail", "user", "ghost@example.com").
			Return(nil, gorm.ErrRecordNotFound)

		_, _, err := svc.Login("user", "ghost@example.com", "whatever")

		assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	})

	t.Run("customer email through the vendor door is not found", func(t *testing.T) {
		svc, deps := newTestService()

		customer := verifiedAccount("user", "pw")
		deps.repo.On("GetByEmail", "vendor", customer.Email).
			Return(nil, gorm.ErrRecordNotFound)

		_, _, err := svc.Login("vendor", customer.Email, "pw")

		assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
		deps.repo.AssertCalled(t, "GetByEmail", "vendor", customer.Email)
	})
}

func TestResendOTP(t *testing.T) {
	t.Run("resends for unverified account", func(t *testing.T) {
		svc, deps := newTestService()

		account := verifiedAccount("user", "pw")
		account.IsVerified = false
		deps.repo.On("GetByEmail", "user", account.Email).Return(account, nil)
		deps.otp.On("Issue", otp.PurposeVerify, "user", account.Email).Return("771204", nil)
		deps.mail.On("Enqueue", account.Email, mock.AnythingOfType("string"),
			mock.AnythingOfType("string")).Return()

		assert.NoError(t, svc.ResendOTP("user", account.Email))
	})

	t.Run("verified account cannot request a new code", func(t *testing.T) {
		svc, deps := newTestService()

		account := verifiedAccount("user", "pw")
		deps.repo.On("GetByEmail", "user", account.Email).Return(account, nil)

		err := svc.ResendOTP("user", account.Email)

		assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
		deps.otp.AssertNotCalled(t, "Issue", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestResetPassword(t *testing.T) {
	t.Run("valid reset code updates the hash", func(t *testing.T) {
		svc, deps := newTestService()

		account := verifiedAccount("user", "old-pass")
		deps.repo.On("GetByEmail", "user", account.Email).Return(account, nil)
		deps.otp.On("Verify", otp.PurposeReset, "user", account.Email, "118822").Return(nil)
		deps.repo.On("UpdatePassword", account.ID, mock.AnythingOfType("string")).Return(nil)

		err := svc.ResetPassword("user", account.Email, "118822", "new-pass")

		assert.NoError(t, err)
		deps.repo.AssertCalled(t, "UpdatePassword", account.ID, mock.AnythingOfType("string"))
	})

	t.Run("expired code blocks the reset", func(t *testing.T) {
		svc, deps := newTestService()

		account := verifiedAccount("user", "old-pass")
		deps.repo.On("GetByEmail", "user", account.Email).Return(account, nil)
		deps.otp.On("Verify", otp.PurposeReset, "user", account.Email, "118822").
			Return(apperr.Validation("verification code expired").WithCode(response.ErrOTPExpired))

		err := svc.ResetPassword("user", account.Email, "118822", "new-pass")

		var appErr *apperr.Error
		assert.ErrorAs(t, err, &appErr)
		assert.Equal(t, response.ErrOTPExpired, appErr.Code)
		deps.repo.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything)
	})
}

func TestChangePassword(t *testing.T) {
	t.Run("wrong current password", func(t *testing.T) {
		svc, deps := newTestService()

		account := verifiedAccount("user", "current")
		deps.repo.On("GetByID", account.ID).Return(account, nil)

		err := svc.ChangePassword(account.ID, "nope", "next")

		assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
	})
}
