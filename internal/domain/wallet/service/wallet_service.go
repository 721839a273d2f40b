package service

import (
	"errors"

	orderModel "gas_marketplace/internal/domain/order/model"
	orderRepo "gas_marketplace/internal/domain/order/repository"
	"gas_marketplace/internal/domain/wallet/model"
	"gas_marketplace/internal/domain/wallet/repository"
	"gas_marketplace/pkg/apperr"
	"gas_marketplace/pkg/logger"
	"gas_marketplace/pkg/metrics"
	"gas_marketplace/pkg/response"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// WalletService 钱包结算服务
type WalletService interface {
	// DistributeFunds 按下单时算好的分成给商家和骑手入账，对每个订单只执行一次
	DistributeFunds(orderID string) error
	GetWallet(ownerID string) (*model.Wallet, error)
	ListTransactions(ownerID string, offset, limit int) ([]model.Transaction, int64, error)
	Withdraw(ownerID string, amount float64) (*model.Wallet, error)
}

type walletService struct {
	repo   repository.WalletRepository
	orders orderRepo.OrderRepository
}

// NewWalletService 创建钱包服务
func NewWalletService(repo repository.WalletRepository, orders orderRepo.OrderRepository) WalletService {
	return &walletService{repo: repo, orders: orders}
}

// DistributeFunds 结算前逐项校验，再做事务内的幂等入账
func (s *walletService) DistributeFunds(orderID string) error {
	order, err := s.orders.GetByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("order not found").WithCode(response.ErrOrderNotFound)
		}
		return err
	}

	if order.PaymentStatus != orderModel.PaymentPaid {
		return apperr.InvalidState("order has not been paid").WithCode(response.ErrNotPaid)
	}
	if order.Status != orderModel.StatusCompleted {
		return apperr.InvalidState("only completed orders can be settled").WithCode(response.ErrOrderState)
	}
	if order.SettledAt != nil {
		return apperr.Conflict("order has already been settled").WithCode(response.ErrAlreadySettled)
	}
	if order.VendorID == nil || order.RiderID == nil {
		return apperr.InvalidState("order has no vendor or rider bound").WithCode(response.ErrOrderState)
	}

	if err := s.repo.Settle(order); err != nil {
		switch {
		case errors.Is(err, repository.ErrAlreadySettled):
			// 两个结算请求赛跑时输家走到这里
			return apperr.Conflict("order has already been settled").WithCode(response.ErrAlreadySettled)
		case errors.Is(err, repository.ErrWalletMissing):
			return apperr.NotFound("wallet not found for vendor or rider").WithCode(response.ErrWalletNotFound)
		}
		return err
	}

	metrics.Default.SettlementsTotal.Inc()
	logger.Log.Info("order settled",
		zap.String("order", order.OrderNumber),
		zap.Float64("vendor_earning", order.VendorEarning),
		zap.Float64("rider_earning", order.RiderEarning))
	return nil
}

func (s *walletService) GetWallet(ownerID string) (*model.Wallet, error) {
	wallet, err := s.repo.GetByOwner(ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("wallet not found").WithCode(response.ErrWalletNotFound)
		}
		return nil, err
	}
	return wallet, nil
}

func (s *walletService) ListTransactions(ownerID string, offset, limit int) ([]model.Transaction, int64, error) {
	wallet, err := s.GetWallet(ownerID)
	if err != nil {
		return nil, 0, err
	}
	return s.repo.ListTransactions(wallet.ID, offset, limit)
}

func (s *walletService) Withdraw(ownerID string, amount float64) (*model.Wallet, error) {
	if amount <= 0 {
		return nil, apperr.Validation("withdrawal amount must be positive")
	}

	wallet, err := s.repo.Withdraw(ownerID, amount)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrWalletMissing):
			return nil, apperr.NotFound("wallet not found").WithCode(response.ErrWalletNotFound)
		case errors.Is(err, repository.ErrInsufficientFund):
			return nil, apperr.InvalidState("insufficient balance").WithCode(response.ErrInsufficientFund)
		}
		return nil, err
	}
	return wallet, nil
}
