package repository

import (
	"gas_marketplace/internal/domain/account/model"

	"gorm.io/gorm"
)

// AccountRepository 接口定义
type AccountRepository interface {
	Create(account *model.Account) error
	GetByID(id string) (*model.Account, error)
	GetByEmail(actor, email string) (*model.Account, error)
	EmailOrPhoneExists(email, phone string) (bool, error)
	Update(account *model.Account) error
	UpdatePassword(id, passwordHash string) error
	MarkVerified(id string) error
	SetAvailability(accountID, actor string, available bool) error
	FirstAvailableVendor() (*model.Account, error)
	AvailableRiders() ([]model.Account, error)
	UpdateVendorRating(accountID string, average float64) error
}

type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository 创建新的仓库实例
func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db}
}

// Create 创建账号及角色 profile（同一事务）
func (r *accountRepository) Create(account *model.Account) error {
	return r.db.Create(account).Error
}

func (r *accountRepository) GetByID(id string) (*model.Account, error) {
	var account model.Account
	err := r.db.Preload("VendorProfile").Preload("RiderProfile").
		Where("id = ?", id).First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *accountRepository) GetByEmail(actor, email string) (*model.Account, error) {
	var account model.Account
	err := r.db.Preload("VendorProfile").Preload("RiderProfile").
		Where("actor_type = ? AND email = ?", actor, email).First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *accountRepository) EmailOrPhoneExists(email, phone string) (bool, error) {
	var count int64
	err := r.db.Model(&model.Account{}).
		Where("email = ? OR phone_number = ?", email, phone).
		Count(&count).Error
	return count > 0, err
}

func (r *accountRepository) Update(account *model.Account) error {
	return r.db.Save(account).Error
}

func (r *accountRepository) UpdatePassword(id, passwordHash string) error {
	return r.db.Model(&model.Account{}).Where("id = ?", id).
		Update("password", passwordHash).Error
}

func (r *accountRepository) MarkVerified(id string) error {
	return r.db.Model(&model.Account{}).Where("id = ?", id).
		Update("is_verified", true).Error
}

func (r *accountRepository) SetAvailability(accountID, actor string, available bool) error {
	switch actor {
	case model.ActorVendor:
		return r.db.Model(&model.VendorProfile{}).
			Where("account_id = ?", accountID).
			Update("is_available", available).Error
	case model.ActorRider:
		return r.db.Model(&model.RiderProfile{}).
			Where("account_id = ?", accountID).
			Update("is_available", available).Error
	}
	return nil
}

// FirstAvailableVendor 订单派发用：取第一个在售商家
func (r *accountRepository) FirstAvailableVendor() (*model.Account, error) {
	var account model.Account
	err := r.db.Preload("VendorProfile").
		Joins("JOIN vendor_profiles ON vendor_profiles.account_id = accounts.id").
		Where("accounts.actor_type = ? AND accounts.is_verified = ? AND vendor_profiles.is_available = ?",
			model.ActorVendor, true, true).
		Order("accounts.created_at").
		First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// AvailableRiders 接单通知用：所有在线骑手
func (r *accountRepository) AvailableRiders() ([]model.Account, error) {
	var riders []model.Account
	err := r.db.
		Joins("JOIN rider_profiles ON rider_profiles.account_id = accounts.id").
		Where("accounts.actor_type = ? AND accounts.is_verified = ? AND rider_profiles.is_available = ?",
			model.ActorRider, true, true).
		Find(&riders).Error
	return riders, err
}

func (r *accountRepository) UpdateVendorRating(accountID string, average float64) error {
	return r.db.Model(&model.VendorProfile{}).
		Where("account_id = ?", accountID).
		Update("average_rating", average).Error
}
