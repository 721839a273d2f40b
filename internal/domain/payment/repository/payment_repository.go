package repository

import (
	"time"

	"gas_marketplace/internal/domain/payment/model"

	"gorm.io/gorm"
)

// PaymentRepository 接口定义
type PaymentRepository interface {
	Create(payment *model.Payment) error
	GetByReference(reference string) (*model.Payment, error)

	// MarkStatus 只允许 pending 态翻转，重复回调影响行数为 0
	MarkStatus(reference, status string, paidAt *time.Time, payload string) (int64, error)
}

type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository 创建新的仓库实例
func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(payment *model.Payment) error {
	return r.db.Create(payment).Error
}

func (r *paymentRepository) GetByReference(reference string) (*model.Payment, error) {
	var payment model.Payment
	if err := r.db.Where("reference = ?", reference).First(&payment).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) MarkStatus(reference, status string, paidAt *time.Time, payload string) (int64, error) {
	updates := map[string]interface{}{"status": status}
	if paidAt != nil {
		updates["paid_at"] = paidAt
	}
	if payload != "" {
		updates["provider_payload"] = payload
	}
	result := r.db.Model(&model.Payment{}).
		Where("reference = ? AND status = ?", reference, model.StatusPending).
		Updates(updates)
	return result.RowsAffected, result.Error
}
