package service

import (
	"regexp"
	"testing"

	accountModel "gas_marketplace/internal/domain/account/model"
	accountService "gas_marketplace/internal/domain/account/service"
	"gas_marketplace/internal/domain/order/model"
	"gas_marketplace/internal/pkg/config"
	"gas_marketplace/pkg/apperr"
	"gas_marketplace/pkg/logger"
	"gas_marketplace/pkg/response"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

func init() {
	logger.Init(true)
	config.GlobalConfig.Pricing.DeliveryFee = 2500
	config.GlobalConfig.Pricing.RiderShareRatio = 0.05
	config.GlobalConfig.Pricing.Currency = "NGN"
}

// MockOrderRepository 订单仓库 mock
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Create(order *model.Order) error {
	return m.Called(order).Error(0)
}

func (m *MockOrderRepository) GetByID(id string) (*model.Order, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderRepository) ListByUser(userID string, offset, limit int) ([]model.Order, int64, error) {
	args := m.Called(userID, offset, limit)
	return args.Get(0).([]model.Order), args.Get(1).(int64), args.Error(2)
}

func (m *MockOrderRepository) ListPending(offset, limit int) ([]model.Order, int64, error) {
	args := m.Called(offset, limit)
	return args.Get(0).([]model.Order), args.Get(1).(int64), args.Error(2)
}

func (m *MockOrderRepository) ListActiveByRider(riderID string) ([]model.Order, error) {
	args := m.Called(riderID)
	return args.Get(0).([]model.Order), args.Error(1)
}

func (m *MockOrderRepository) Accept(orderID, vendorID string) (int64, error) {
	args := m.Called(orderID, vendorID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) Reject(orderID, vendorID, message string) (int64, error) {
	args := m.Called(orderID, vendorID, message)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) AssignRider(orderID, riderID string) (int64, error) {
	args := m.Called(orderID, riderID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) Complete(orderID, riderID string) (int64, error) {
	args := m.Called(orderID, riderID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) CancelByUser(orderID, userID string) (int64, error) {
	args := m.Called(orderID, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) MarkPaid(orderID string) (int64, error) {
	args := m.Called(orderID)
	return args.Get(0).(int64), args.Error(1)
}

// MockAccountService 账号服务 mock
type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) Register(actor string, input accountService.RegisterInput) error {
	return m.Called(actor, input).Error(0)
}

func (m *MockAccountService) VerifyOTP(actor, email, code string) error {
	return m.Called(actor, email, code).Error(0)
}

func (m *MockAccountService) Login(actor, email, password string) (string, *accountModel.Account, error) {
	args := m.Called(actor, email, password)
	if args.Get(1) == nil {
		return args.String(0), nil, args.Error(2)
	}
	return args.String(0), args.Get(1).(*accountModel.Account), args.Error(2)
}

func (m *MockAccountService) ResendOTP(actor, email string) error {
	return m.Called(actor, email).Error(0)
}

func (m *MockAccountService) ForgotPassword(actor, email string) error {
	return m.Called(actor, email).Error(0)
}

func (m *MockAccountService) ResetPassword(actor, email, code, newPassword string) error {
	return m.Called(actor, email, code, newPassword).Error(0)
}

func (m *MockAccountService) ChangePassword(accountID, oldPassword, newPassword string) error {
	return m.Called(accountID, oldPassword, newPassword).Error(0)
}

func (m *MockAccountService) GetAccount(id string) (*accountModel.Account, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*accountModel.Account), args.Error(1)
}

func (m *MockAccountService) UpdateProfile(id string, input accountService.UpdateProfileInput) (*accountModel.Account, error) {
	args := m.Called(id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*accountModel.Account), args.Error(1)
}

func (m *MockAccountService) SetAvailability(accountID, actor string, available bool) error {
	return m.Called(accountID, actor, available).Error(0)
}

func (m *MockAccountService) FirstAvailableVendor() (*accountModel.Account, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*accountModel.Account), args.Error(1)
}

func (m *MockAccountService) AvailableRiders() ([]accountModel.Account, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]accountModel.Account), args.Error(1)
}

func (m *MockAccountService) UpdateVendorRating(accountID string, average float64) error {
	return m.Called(accountID, average).Error(0)
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

func availableVendor() *accountModel.Account {
	a := &accountModel.Account{
		ActorType: accountModel.ActorVendor,
		FullName:  "Chi Gas Supplies",
		Email:     "chi@example.com",
		VendorProfile: &accountModel.VendorProfile{
			BusinessName: "Chi Gas",
			Address:      "12 Depot Road",
			UnitPrice:    650,
			IsAvailable:  true,
		},
	}
	a.ID = "vendor-1"
	return a
}

func TestPlaceOrder(t *testing.T) {
	t.Run("prices from vendor listing and snapshots the split", func(t *testing.T) {
		orders := new(MockOrderRepository)
		accounts := new(MockAccountService)
		svc := NewOrderService(orders, accounts, new(MockMailer))

		accounts.On("FirstAvailableVendor").Return(availableVendor(), nil)
		orders.On("Create", mock.AnythingOfType("*model.Order")).Return(nil)

		order, err := svc.PlaceOrder("user-1", PlaceOrderInput{
			GasType:         "LPG",
			Quantity:        12,
			DeliveryAddress: "3 Marina Close",
		})

		assert.NoError(t, err)
		assert.Equal(t, 650.0, order.UnitPrice)
		assert.Equal(t, 7800.0, order.TotalPrice)
		assert.Equal(t, 2500.0, order.DeliveryFee)
		assert.Equal(t, 7410.0, order.VendorEarning)
		assert.Equal(t, 2890.0, order.RiderEarning)
		assert.Equal(t, model.StatusPending, order.Status)
		assert.Equal(t, model.PaymentUnpaid, order.PaymentStatus)
		assert.Equal(t, "12 Depot Road", order.PickupAddress)
		assert.Regexp(t, regexp.MustCompile(`^REF-\d{8}-\d{3}$`), order.OrderNumber)
	})

	t.Run("no vendor available", func(t *testing.T) {
		orders := new(MockOrderRepository)
		accounts := new(MockAccountService)
		svc := NewOrderService(orders, accounts, new(MockMailer))

		accounts.On("FirstAvailableVendor").Return(nil, gorm.ErrRecordNotFound)

		_, err := svc.PlaceOrder("user-1", PlaceOrderInput{
			GasType: "LPG", Quantity: 5, DeliveryAddress: "3 Marina Close",
		})

		assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
		var appErr *apperr.Error
		assert.ErrorAs(t, err, &appErr)
		assert.Equal(t, response.ErrNoVendor, appErr.Code)
		orders.AssertNotCalled(t, "Create", mock.Anything)
	})

	t.Run("non positive quantity", func(t *testing.T) {
		svc := NewOrderService(new(MockOrderRepository), new(MockAccountService), new(MockMailer))

		_, err := svc.PlaceOrder("user-1", PlaceOrderInput{Quantity: 0})

		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	})
}

func acceptedOrder(vendorID string) *model.Order {
	o := &model.Order{
		OrderNumber:     "REF-20260830-042",
		UserID:          "user-1",
		Status:          model.StatusActive,
		DeliveryAddress: "3 Marina Close",
	}
	if vendorID != "" {
		o.VendorID = &vendorID
	}
	o.ID = "order-1"
	return o
}

func TestDecide(t *testing.T) {
	t.Run("accept binds the vendor and notifies", func(t *testing.T) {
		orders := new(MockOrderRepository)
		accounts := new(MockAccountService)
		mail := new(MockMailer)
		svc := NewOrderService(orders, accounts, mail)

		orders.On("Accept", "order-1", "vendor-1").Return(int64(1), nil)
		orders.On("GetByID", "order-1").Return(acceptedOrder("vendor-1"), nil)
		customer := &accountModel.Account{FullName: "Ada Obi", Email: "ada@example.com"}
		customer.ID = "user-1"
		accounts.On("GetAccount", "user-1").Return(customer, nil)
		rider := accountModel.Account{FullName: "Bode", Email: "bode@example.com"}
		rider.ID = "rider-1"
		accounts.On("AvailableRiders").Return([]accountModel.Account{rider}, nil)
		mail.On("Enqueue", mock.AnythingOfType("string"), mock.AnythingOfType("string"),
			mock.AnythingOfType("string")).Return()

		order, err := svc.Decide("vendor-1", "order-1", model.DecisionAccept, "")

		assert.NoError(t, err)
		assert.Equal(t, model.StatusActive, order.Status)
		// 顾客一封，骑手一封
		mail.AssertNumberOfCalls(t, "Enqueue", 2)
	})

	t.Run("losing vendor learns the order is taken", func(t *testing.T) {
		orders := new(MockOrderRepository)
		svc := NewOrderService(orders, new(MockAccountService), new(MockMailer))

		orders.On("Accept", "order-1", "vendor-2").Return(int64(0), nil)
		orders.On("GetByID", "order-1").Return(acceptedOrder("vendor-1"), nil)

		_, err := svc.Decide("vendor-2", "order-1", model.DecisionAccept, "")

		assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
		var appErr *apperr.Error
		assert.ErrorAs(t, err, &appErr)
		assert.Equal(t, response.ErrOrderTaken, appErr.Code)
	})

	t.Run("cancelled order cannot be accepted", func(t *testing.T) {
		orders := new(MockOrderRepository)
		svc := NewOrderService(orders, new(MockAccountService), new(MockMailer))

		cancelled := acceptedOrder("")
		cancelled.Status = model.StatusCancelled
		orders.On("Accept", "order-1", "vendor-1").Return(int64(0), nil)
		orders.On("GetByID", "order-1").Return(cancelled, nil)

		_, err := svc.Decide("vendor-1", "order-1", model.DecisionAccept, "")

		assert.Equal(t, apperr.KindInvalidState, apperr.KindOf(err))
	})

	t.Run("lost conditional update on a still-pending order asks for a retry", func(t *testing.T) {
		orders := new(MockOrderRepository)
		svc := NewOrderService(orders, new(MockAccountService), new(MockMailer))

		pending := acceptedOrder("")
		pending.Status = model.StatusPending
		orders.On("Accept", "order-1", "vendor-1").Return(int64(0), nil)
		orders.On("GetByID", "order-1").Return(pending, nil)

		_, err := svc.Decide("vendor-1", "order-1", model.DecisionAccept, "")

		assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	})

	t.Run("reject requires a message", func(t *testing.T) {
		svc := NewOrderService(new(MockOrderRepository), new(MockAccountService), new(MockMailer))

		_, err := svc.Decide("vendor-1", "order-1", model.DecisionReject, "")

		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	})

	t.Run("unknown action", func(t *testing.T) {
		svc := NewOrderService(new(MockOrderRepository), new(MockAccountService), new(MockMailer))

		_, err := svc.Decide("vendor-1", "order-1", "maybe", "")

		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	})
}

func TestAssignRider(t *testing.T) {
	t.Run("first rider wins", func(t *testing.T) {
		orders := new(MockOrderRepository)
		svc := NewOrderService(orders, new(MockAccountService), new(MockMailer))

		assigned := acceptedOrder("vendor-1")
		riderID := "rider-1"
		assigned.RiderID = &riderID
		orders.On("AssignRider", "order-1", "rider-1").Return(int64(1), nil)
		orders.On("GetByID", "order-1").Return(assigned, nil)

		order, err := svc.AssignRider("rider-1", "order-1")

		assert.NoError(t, err)
		assert.Equal(t, "rider-1", *order.RiderID)
	})

	t.Run("second rider is turned away", func(t *testing.T) {
		orders := new(MockOrderRepository)
		svc := NewOrderService(orders, new(MockAccountService), new(MockMailer))

		taken := acceptedOrder("vendor-1")
		riderID := "rider-1"
		taken.RiderID = &riderID
		orders.On("AssignRider", "order-1", "rider-2").Return(int64(0), nil)
		orders.On("GetByID", "order-1").Return(taken, nil)

		_, err := svc.AssignRider("rider-2", "order-1")

		assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
	})
}

func TestComplete(t *testing.T) {
	t.Run("only the assigned rider completes", func(t *testing.T) {
		orders := new(MockOrderRepository)
		svc := NewOrderService(orders, new(MockAccountService), new(MockMailer))

		taken := acceptedOrder("vendor-1")
		riderID := "rider-1"
		taken.RiderID = &riderID
		orders.On("Complete", "order-1", "rider-2").Return(int64(0), nil)
		orders.On("GetByID", "order-1").Return(taken, nil)

		_, err := svc.Complete("rider-2", "order-1")

		assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
	})

	t.Run("a delivered order cannot be completed again", func(t *testing.T) {
		orders := new(MockOrderRepository)
		svc := NewOrderService(orders, new(MockAccountService), new(MockMailer))

		done := acceptedOrder("vendor-1")
		riderID := "rider-1"
		done.RiderID = &riderID
		done.Status = model.StatusCompleted
		orders.On("Complete", "order-1", "rider-1").Return(int64(0), nil)
		orders.On("GetByID", "order-1").Return(done, nil)

		_, err := svc.Complete("rider-1", "order-1")

		assert.Equal(t, apperr.KindInvalidState, apperr.KindOf(err))
	})
}

func TestCancel(t *testing.T) {
	t.Run("active order can no longer be cancelled", func(t *testing.T) {
		orders := new(MockOrderRepository)
		svc := NewOrderService(orders, new(MockAccountService), new(MockMailer))

		orders.On("CancelByUser", "order-1", "user-1").Return(int64(0), nil)
		orders.On("GetByID", "order-1").Return(acceptedOrder("vendor-1"), nil)

		err := svc.Cancel("user-1", "order-1")

		assert.Equal(t, apperr.KindInvalidState, apperr.KindOf(err))
	})
}

func TestGetOrder(t *testing.T) {
	t.Run("outsider is rejected", func(t *testing.T) {
		orders := new(MockOrderRepository)
		svc := NewOrderService(orders, new(MockAccountService), new(MockMailer))

		orders.On("GetByID", "order-1").Return(acceptedOrder("vendor-1"), nil)

		_, err := svc.GetOrder("stranger", "user", "order-1")

		assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
	})

	t.Run("assigned rider can read the order", func(t *testing.T) {
		orders := new(MockOrderRepository)
		svc := NewOrderService(orders, new(MockAccountService), new(MockMailer))

		taken := acceptedOrder("vendor-1")
		riderID := "rider-1"
		taken.RiderID = &riderID
		orders.On("GetByID", "order-1").Return(taken, nil)

		order, err := svc.GetOrder("rider-1", "rider", "order-1")

		assert.NoError(t, err)
		assert.Equal(t, "order-1", order.ID)
	})
}
