package service

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	accountService "gas_marketplace/internal/domain/account/service"
	"gas_marketplace/internal/domain/order/model"
	"gas_marketplace/internal/domain/order/repository"
	"gas_marketplace/internal/pkg/config"
	"gas_marketplace/internal/pkg/mailer"
	"gas_marketplace/internal/pkg/push"
	"gas_marketplace/pkg/apperr"
	"gas_marketplace/pkg/logger"
	"gas_marketplace/pkg/metrics"
	"gas_marketplace/pkg/response"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PlaceOrderInput 下单输入
type PlaceOrderInput struct {
	GasType         string
	Quantity        int
	DeliveryAddress string
	ScheduledTime   *time.Time
}

// OrderService 订单服务接口
type OrderService interface {
	PlaceOrder(userID string, input PlaceOrderInput) (*model.Order, error)
	Decide(vendorID, orderID, action, message string) (*model.Order, error)
	AssignRider(riderID, orderID string) (*model.Order, error)
	Complete(riderID, orderID string) (*model.Order, error)
	Cancel(userID, orderID string) error

	GetOrder(accountID, actor, orderID string) (*model.Order, error)
	ListMine(userID string, offset, limit int) ([]model.Order, int64, error)
	ListPending(offset, limit int) ([]model.Order, int64, error)
	ListActiveForRider(riderID string) ([]model.Order, error)
}

type orderService struct {
	repo     repository.OrderRepository
	accounts accountService.AccountService
	mail     mailer.Mailer
}

// NewOrderService 创建订单服务
func NewOrderService(repo repository.OrderRepository, accounts accountService.AccountService, mail mailer.Mailer) OrderService {
	return &orderService{repo: repo, accounts: accounts, mail: mail}
}

// PlaceOrder 下单：取第一个在售商家定价，运费固定，分成即时算好落库
func (s *orderService) PlaceOrder(userID string, input PlaceOrderInput) (*model.Order, error) {
	if input.Quantity <= 0 {
		return nil, apperr.Validation("quantity must be positive")
	}

	vendor, err := s.accounts.FirstAvailableVendor()
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("no vendor is available right now").WithCode(response.ErrNoVendor)
		}
		return nil, err
	}

	pricing := config.GlobalConfig.Pricing
	unitPrice := vendor.VendorProfile.UnitPrice
	totalPrice := unitPrice * float64(input.Quantity)
	vendorEarning, riderEarning := model.ComputeEarnings(totalPrice, pricing.DeliveryFee, pricing.RiderShareRatio)

	order := &model.Order{
		UserID:          userID,
		GasType:         input.GasType,
		Quantity:        input.Quantity,
		UnitPrice:       unitPrice,
		TotalPrice:      totalPrice,
		DeliveryFee:     pricing.DeliveryFee,
		VendorEarning:   vendorEarning,
		RiderEarning:    riderEarning,
		PickupAddress:   vendor.VendorProfile.Address,
		DeliveryAddress: input.DeliveryAddress,
		ScheduledTime:   input.ScheduledTime,
		Status:          model.StatusPending,
		PaymentStatus:   model.PaymentUnpaid,
	}

	// 单号是 REF-日期-三位随机数，撞号概率不高但存在，重试几次
	for attempt := 0; attempt < 3; attempt++ {
		order.OrderNumber = generateOrderNumber()
		if err = s.repo.Create(order); err == nil {
			break
		}
	}
	if err != nil {
		return nil, err
	}

	metrics.Default.OrdersPlacedTotal.Inc()
	return order, nil
}

// Decide 商家接单/拒单。首个接单商家通过条件更新绑定订单
func (s *orderService) Decide(vendorID, orderID, action, message string) (*model.Order, error) {
	switch action {
	case model.DecisionAccept:
		affected, err := s.repo.Accept(orderID, vendorID)
		if err != nil {
			return nil, err
		}
		if affected == 0 {
			return nil, s.explainDecisionFailure(vendorID, orderID)
		}

		order, err := s.repo.GetByID(orderID)
		if err != nil {
			return nil, err
		}
		s.notifyAccepted(order)
		metrics.Default.OrdersByDecision.WithLabelValues(model.DecisionAccept).Inc()
		return order, nil

	case model.DecisionReject:
		if message == "" {
			return nil, apperr.Validation("a rejection message is required")
		}
		affected, err := s.repo.Reject(orderID, vendorID, message)
		if err != nil {
			return nil, err
		}
		if affected == 0 {
			return nil, s.explainDecisionFailure(vendorID, orderID)
		}

		order, err := s.repo.GetByID(orderID)
		if err != nil {
			return nil, err
		}
		s.notifyRejected(order)
		metrics.Default.OrdersByDecision.WithLabelValues(model.DecisionReject).Inc()
		return order, nil
	}

	return nil, apperr.Validation("action must be accept or reject")
}

// explainDecisionFailure 条件更新没生效时回查订单，给出确切的失败原因
func (s *orderService) explainDecisionFailure(vendorID, orderID string) error {
	order, err := s.repo.GetByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("order not found").WithCode(response.ErrOrderNotFound)
		}
		return err
	}

	if order.VendorID != nil && *order.VendorID != vendorID {
		return apperr.Forbidden("order has already been taken by another vendor").
			WithCode(response.ErrOrderTaken)
	}
	if !model.CanTransition(order.Status, model.StatusActive) {
		return apperr.InvalidState(fmt.Sprintf("order is %s, only pending orders can be decided", order.Status)).
			WithCode(response.ErrOrderState)
	}
	// 状态还允许流转但条件更新没赢，说明撞上了并发修改
	return apperr.Conflict("order changed concurrently, please retry")
}

// AssignRider 骑手抢单
func (s *orderService) AssignRider(riderID, orderID string) (*model.Order, error) {
	affected, err := s.repo.AssignRider(orderID, riderID)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		order, err := s.repo.GetByID(orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperr.NotFound("order not found").WithCode(response.ErrOrderNotFound)
			}
			return nil, err
		}
		if order.RiderID != nil {
			return nil, apperr.Forbidden("order has already been taken by another rider").
				WithCode(response.ErrOrderTaken)
		}
		return nil, apperr.InvalidState("only active orders can be picked up").
			WithCode(response.ErrOrderState)
	}
	return s.repo.GetByID(orderID)
}

// Complete 骑手确认送达
func (s *orderService) Complete(riderID, orderID string) (*model.Order, error) {
	affected, err := s.repo.Complete(orderID, riderID)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		order, err := s.repo.GetByID(orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperr.NotFound("order not found").WithCode(response.ErrOrderNotFound)
			}
			return nil, err
		}
		if !model.CanTransition(order.Status, model.StatusCompleted) {
			return nil, apperr.InvalidState("only active orders can be completed").
				WithCode(response.ErrOrderState)
		}
		return nil, apperr.Forbidden("order is not assigned to you")
	}

	order, err := s.repo.GetByID(orderID)
	if err != nil {
		return nil, err
	}

	if user, uerr := s.accounts.GetAccount(order.UserID); uerr == nil {
		s.mail.Enqueue(user.Email, "Your order has been delivered",
			fmt.Sprintf("<p>Hi %s,</p><p>Order <b>%s</b> has been delivered. Enjoy!</p>",
				user.FullName, order.OrderNumber))
	}
	return order, nil
}

// Cancel 顾客取消还未被接的订单
func (s *orderService) Cancel(userID, orderID string) error {
	affected, err := s.repo.CancelByUser(orderID, userID)
	if err != nil {
		return err
	}
	if affected == 0 {
		order, err := s.repo.GetByID(orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("order not found").WithCode(response.ErrOrderNotFound)
			}
			return err
		}
		if order.UserID != userID {
			return apperr.Forbidden("order does not belong to you")
		}
		return apperr.InvalidState("only pending orders can be cancelled").
			WithCode(response.ErrOrderState)
	}
	return nil
}

// GetOrder 订单详情，只有订单相关方能看
func (s *orderService) GetOrder(accountID, actor, orderID string) (*model.Order, error) {
	order, err := s.repo.GetByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("order not found").WithCode(response.ErrOrderNotFound)
		}
		return nil, err
	}

	owned := order.UserID == accountID ||
		(order.VendorID != nil && *order.VendorID == accountID) ||
		(order.RiderID != nil && *order.RiderID == accountID)
	if !owned {
		return nil, apperr.Forbidden("order does not belong to you")
	}
	return order, nil
}

func (s *orderService) ListMine(userID string, offset, limit int) ([]model.Order, int64, error) {
	return s.repo.ListByUser(userID, offset, limit)
}

func (s *orderService) ListPending(offset, limit int) ([]model.Order, int64, error) {
	return s.repo.ListPending(offset, limit)
}

func (s *orderService) ListActiveForRider(riderID string) ([]model.Order, error) {
	return s.repo.ListActiveByRider(riderID)
}

// notifyAccepted 接单后通知顾客和所有在线骑手。通知都是 best-effort
func (s *orderService) notifyAccepted(order *model.Order) {
	if user, err := s.accounts.GetAccount(order.UserID); err == nil {
		s.mail.Enqueue(user.Email, "Your order has been accepted",
			fmt.Sprintf("<p>Hi %s,</p><p>Order <b>%s</b> has been accepted and is being prepared for delivery.</p>",
				user.FullName, order.OrderNumber))
	}

	riders, err := s.accounts.AvailableRiders()
	if err != nil {
		logger.Log.Warn("failed to load riders for order broadcast",
			zap.String("order", order.OrderNumber), zap.Error(err))
		return
	}

	for _, rider := range riders {
		s.mail.Enqueue(rider.Email, "New delivery available",
			fmt.Sprintf("<p>Hi %s,</p><p>Order <b>%s</b> to %s is ready for pickup.</p>",
				rider.FullName, order.OrderNumber, order.DeliveryAddress))

		if push.GlobalPushService != nil {
			go push.GlobalPushService.PushToAccount(rider.ID, "New delivery available",
				fmt.Sprintf("Order %s is ready for pickup", order.OrderNumber),
				map[string]string{"orderId": order.ID})
		}
	}
}

func (s *orderService) notifyRejected(order *model.Order) {
	if user, err := s.accounts.GetAccount(order.UserID); err == nil {
		s.mail.Enqueue(user.Email, "Your order was declined",
			fmt.Sprintf("<p>Hi %s,</p><p>Order <b>%s</b> was declined: %s</p>",
				user.FullName, order.OrderNumber, order.RejectionMessage))
	}
}

// generateOrderNumber 结构化单号 REF-YYYYMMDD-NNN
func generateOrderNumber() string {
	n, err := rand.Int(rand.Reader, big.NewInt(1000))
	serial := int64(0)
	if err == nil {
		serial = n.Int64()
	}
	return fmt.Sprintf("REF-%s-%03d", time.Now().Format("20060102"), serial)
}
