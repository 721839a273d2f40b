package service

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/big"
	"time"

	accountService "gas_marketplace/internal/domain/account/service"
	orderModel "gas_marketplace/internal/domain/order/model"
	orderRepo "gas_marketplace/internal/domain/order/repository"
	"gas_marketplace/internal/domain/payment/model"
	"gas_marketplace/internal/domain/payment/repository"
	"gas_marketplace/internal/domain/payment/strategy"
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

// InitializeResult 支付发起结果
type InitializeResult struct {
	Payment  *model.Payment `json:"payment"`
	PayParam string         `json:"payParam"` // 跳转 URL 或客户端拉起串
}

// PaymentService 支付服务
type PaymentService interface {
	// InitializePayment 为订单创建支付单并向渠道发起支付
	InitializePayment(userID, orderID, channel string) (*InitializeResult, error)

	// HandleNotify 渠道回调入口，允许重复投递
	HandleNotify(channel string, params interface{}) error

	// VerifyPayment 按支付单号查询当前状态
	VerifyPayment(userID, reference string) (*model.Payment, error)

	RegisterStrategy(channel string, s strategy.PaymentStrategy)
}

type paymentService struct {
	repo       repository.PaymentRepository
	orders     orderRepo.OrderRepository
	accounts   accountService.AccountService
	mail       mailer.Mailer
	strategies map[string]strategy.PaymentStrategy
}

// NewPaymentService 创建支付服务
func NewPaymentService(repo repository.PaymentRepository, orders orderRepo.OrderRepository,
	accounts accountService.AccountService, mail mailer.Mailer) PaymentService {
	return &paymentService{
		repo:       repo,
		orders:     orders,
		accounts:   accounts,
		mail:       mail,
		strategies: make(map[string]strategy.PaymentStrategy),
	}
}

// RegisterStrategy 注册支付策略
func (s *paymentService) RegisterStrategy(channel string, strat strategy.PaymentStrategy) {
	s.strategies[channel] = strat
}

func (s *paymentService) InitializePayment(userID, orderID, channel string) (*InitializeResult, error) {
	strat, ok := s.strategies[channel]
	if !ok {
		return nil, apperr.Validation("unsupported payment channel: " + channel)
	}

	order, err := s.orders.GetByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("order not found").WithCode(response.ErrOrderNotFound)
		}
		return nil, err
	}
	// 别人的订单当不存在处理，不向外暴露订单号是否有效
	if order.UserID != userID {
		return nil, apperr.NotFound("order not found").WithCode(response.ErrOrderNotFound)
	}
	if order.PaymentStatus == orderModel.PaymentPaid {
		return nil, apperr.Conflict("order is already paid").WithCode(response.ErrAlreadyPaid)
	}

	amount := order.TotalPrice + order.DeliveryFee
	if amount <= 0 {
		return nil, apperr.Validation("order amount must be positive")
	}

	account, err := s.accounts.GetAccount(userID)
	if err != nil {
		return nil, err
	}

	payment := &model.Payment{
		OrderID:   order.ID,
		UserID:    userID,
		Reference: newReference(),
		Amount:    amount,
		Currency:  config.GlobalConfig.Pricing.Currency,
		Channel:   channel,
		Status:    model.StatusPending,
	}
	if err := s.repo.Create(payment); err != nil {
		return nil, err
	}

	payParam, err := strat.Initialize(payment, strategy.Customer{
		Email: account.Email,
		Name:  account.FullName,
	})
	if err != nil {
		// 渠道侧没下去，支付单留在 pending，客户重试会拿到新单
		return nil, err
	}

	return &InitializeResult{Payment: payment, PayParam: payParam}, nil
}

func (s *paymentService) HandleNotify(channel string, params interface{}) error {
	strat, ok := s.strategies[channel]
	if !ok {
		return apperr.Validation("unsupported payment channel: " + channel)
	}

	reference, amount, success, err := strat.Notify(params)
	if err != nil {
		return apperr.Upstream("payment notification rejected", err).WithCode(response.ErrGateway)
	}

	payment, err := s.repo.GetByReference(reference)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("unknown payment reference")
		}
		return err
	}

	payload, _ := json.Marshal(map[string]interface{}{
		"channel": channel, "amount": amount, "success": success,
	})

	if !success {
		rows, err := s.repo.MarkStatus(reference, model.StatusFailed, nil, string(payload))
		if err != nil {
			return err
		}
		if rows > 0 {
			metrics.Default.PaymentsTotal.WithLabelValues(channel, model.StatusFailed).Inc()
		}
		return nil
	}

	// 渠道上报金额与支付单不符，宁可留在 pending 人工对账
	if math.Abs(amount-payment.Amount) > 0.01 {
		logger.Log.Error("payment amount mismatch",
			zap.String("reference", reference),
			zap.Float64("expected", payment.Amount),
			zap.Float64("reported", amount))
		return apperr.Conflict("payment amount mismatch")
	}

	now := time.Now()
	rows, err := s.repo.MarkStatus(reference, model.StatusSuccess, &now, string(payload))
	if err != nil {
		return err
	}
	if rows == 0 {
		// 重复回调，之前已经处理过
		return nil
	}

	metrics.Default.PaymentsTotal.WithLabelValues(channel, model.StatusSuccess).Inc()

	if _, err := s.orders.MarkPaid(payment.OrderID); err != nil {
		logger.Log.Error("failed to flip order payment status",
			zap.String("order", payment.OrderID), zap.Error(err))
		return err
	}

	s.sendReceipt(payment)
	return nil
}

func (s *paymentService) VerifyPayment(userID, reference string) (*model.Payment, error) {
	payment, err := s.repo.GetByReference(reference)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("payment not found")
		}
		return nil, err
	}
	// 同订单一样，别人的支付单按不存在处理
	if payment.UserID != userID {
		return nil, apperr.NotFound("payment not found").WithCode(response.ErrPaymentNotFound)
	}
	return payment, nil
}

// sendReceipt 回执邮件和推送都不阻塞回调应答
func (s *paymentService) sendReceipt(payment *model.Payment) {
	account, err := s.accounts.GetAccount(payment.UserID)
	if err != nil {
		logger.Log.Warn("receipt skipped, account lookup failed",
			zap.String("user", payment.UserID), zap.Error(err))
		return
	}

	s.mail.Enqueue(account.Email, "Payment received",
		fmt.Sprintf("<p>Hi %s,</p><p>We received your payment of %s %.2f (ref %s). Your order is on its way.</p>",
			account.FullName, payment.Currency, payment.Amount, payment.Reference))

	if push.GlobalPushService != nil {
		go push.GlobalPushService.PushToAccount(payment.UserID, "Payment received",
			fmt.Sprintf("Payment of %s %.2f confirmed", payment.Currency, payment.Amount), nil)
	}
}

// newReference 支付单号：毫秒时间戳加随机后缀，列上有唯一索引兜底
func newReference() string {
	n, _ := rand.Int(rand.Reader, big.NewInt(10000))
	return fmt.Sprintf("PAY-%d-%04d", time.Now().UnixMilli(), n.Int64())
}
