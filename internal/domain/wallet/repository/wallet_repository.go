package repository

import (
	"errors"
	"fmt"
	"time"

	orderModel "gas_marketplace/internal/domain/order/model"
	"gas_marketplace/internal/domain/wallet/model"

	"gorm.io/gorm"
)

// 结算阶段的底层失败原因，service 层翻译成业务错误
var (
	ErrWalletMissing    = errors.New("wallet does not exist")
	ErrAlreadySettled   = errors.New("order already settled")
	ErrInsufficientFund = errors.New("insufficient balance")
)

// WalletRepository 接口定义
type WalletRepository interface {
	EnsureWallet(ownerID, ownerType string) error
	GetByOwner(ownerID string) (*model.Wallet, error)
	ListTransactions(walletID string, offset, limit int) ([]model.Transaction, int64, error)

	// Settle 在单个事务里完成：结算标记、两笔入账、两条流水。
	// 任何一步失败整体回滚
	Settle(order *orderModel.Order) error

	// Withdraw 余额充足时扣减并记流水
	Withdraw(ownerID string, amount float64) (*model.Wallet, error)
}

type walletRepository struct {
	db *gorm.DB
}

// NewWalletRepository 创建新的仓库实例
func NewWalletRepository(db *gorm.DB) WalletRepository {
	return &walletRepository{db: db}
}

// EnsureWallet 账号验证通过时开钱包，幂等
func (r *walletRepository) EnsureWallet(ownerID, ownerType string) error {
	wallet := model.Wallet{OwnerID: ownerID, OwnerType: ownerType}
	return r.db.Where("owner_id = ?", ownerID).FirstOrCreate(&wallet).Error
}

func (r *walletRepository) GetByOwner(ownerID string) (*model.Wallet, error) {
	var wallet model.Wallet
	if err := r.db.Where("owner_id = ?", ownerID).First(&wallet).Error; err != nil {
		return nil, err
	}
	return &wallet, nil
}

func (r *walletRepository) ListTransactions(walletID string, offset, limit int) ([]model.Transaction, int64, error) {
	var txs []model.Transaction
	var total int64

	q := r.db.Model(&model.Transaction{}).Where("wallet_id = ?", walletID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&txs).Error; err != nil {
		return nil, 0, err
	}
	return txs, total, nil
}

// Settle 钱包结算。幂等性靠 orders.settled_at 上的条件更新：
// 并发或重复调用时只有第一个事务能把标记从 NULL 翻过来
func (r *walletRepository) Settle(order *orderModel.Order) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&orderModel.Order{}).
			Where("id = ? AND settled_at IS NULL AND status = ? AND payment_status = ?",
				order.ID, orderModel.StatusCompleted, orderModel.PaymentPaid).
			Update("settled_at", time.Now())
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrAlreadySettled
		}

		if err := r.credit(tx, *order.VendorID, order.VendorEarning,
			order.OrderNumber, "vendor earning for order "+order.OrderNumber); err != nil {
			return err
		}
		if err := r.credit(tx, *order.RiderID, order.RiderEarning,
			order.OrderNumber, "rider earning for order "+order.OrderNumber); err != nil {
			return err
		}

		return nil
	})
}

// credit 原子入账并追加流水。钱包不存在不补建，直接报错回滚
func (r *walletRepository) credit(tx *gorm.DB, ownerID string, amount float64, reference, description string) error {
	var wallet model.Wallet
	if err := tx.Where("owner_id = ?", ownerID).First(&wallet).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("owner %s: %w", ownerID, ErrWalletMissing)
		}
		return err
	}

	result := tx.Model(&model.Wallet{}).
		Where("id = ?", wallet.ID).
		UpdateColumn("balance", gorm.Expr("balance + ?", amount))
	if result.Error != nil {
		return result.Error
	}

	return tx.Create(&model.Transaction{
		WalletID:    wallet.ID,
		Type:        model.TypeCredit,
		Amount:      amount,
		Reference:   reference,
		Description: description,
	}).Error
}

// Withdraw 带余额守卫的扣减，防止并发提现把余额打负
func (r *walletRepository) Withdraw(ownerID string, amount float64) (*model.Wallet, error) {
	var wallet model.Wallet
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("owner_id = ?", ownerID).First(&wallet).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrWalletMissing
			}
			return err
		}

		result := tx.Model(&model.Wallet{}).
			Where("id = ? AND balance >= ?", wallet.ID, amount).
			UpdateColumn("balance", gorm.Expr("balance - ?", amount))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrInsufficientFund
		}

		return tx.Create(&model.Transaction{
			WalletID:    wallet.ID,
			Type:        model.TypeDebit,
			Amount:      amount,
			Reference:   fmt.Sprintf("WD-%d", time.Now().UnixMilli()),
			Description: "wallet withdrawal",
		}).Error
	})
	if err != nil {
		return nil, err
	}

	return r.GetByOwner(ownerID)
}
