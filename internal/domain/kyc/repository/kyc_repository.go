package repository

import (
	"gas_marketplace/internal/domain/kyc/model"

	"gorm.io/gorm"
)

// KycRepository 接口定义
type KycRepository interface {
	Create(submission *model.Submission) error
	GetByAccount(accountID string) (*model.Submission, error)
	GetByID(id string) (*model.Submission, error)
	Update(submission *model.Submission) error

	// SetStatus 审核结论只在 pending 态落下
	SetStatus(id, status, note string) (int64, error)
}

type kycRepository struct {
	db *gorm.DB
}

// NewKycRepository 创建新的仓库实例
func NewKycRepository(db *gorm.DB) KycRepository {
	return &kycRepository{db: db}
}

func (r *kycRepository) Create(submission *model.Submission) error {
	return r.db.Create(submission).Error
}

func (r *kycRepository) GetByAccount(accountID string) (*model.Submission, error) {
	var submission model.Submission
	if err := r.db.Where("account_id = ?", accountID).First(&submission).Error; err != nil {
		return nil, err
	}
	return &submission, nil
}

func (r *kycRepository) GetByID(id string) (*model.Submission, error) {
	var submission model.Submission
	if err := r.db.Where("id = ?", id).First(&submission).Error; err != nil {
		return nil, err
	}
	return &submission, nil
}

func (r *kycRepository) Update(submission *model.Submission) error {
	return r.db.Save(submission).Error
}

func (r *kycRepository) SetStatus(id, status, note string) (int64, error) {
	result := r.db.Model(&model.Submission{}).
		Where("id = ? AND status = ?", id, model.StatusPending).
		Updates(map[string]interface{}{
			"status":        status,
			"reviewer_note": note,
		})
	return result.RowsAffected, result.Error
}
