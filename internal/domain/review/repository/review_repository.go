package repository

import (
	"gas_marketplace/internal/domain/review/model"

	"gorm.io/gorm"
)

// ReviewRepository 接口定义
type ReviewRepository interface {
	Create(review *model.Review) error
	ExistsByUserAndVendor(userID, vendorID string) (bool, error)
	ListByVendor(vendorID string, offset, limit int) ([]model.Review, int64, error)

	// AverageRating 对商家的全量评分求均值，无评价时返回 0
	AverageRating(vendorID string) (float64, error)
}

type reviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository 创建新的仓库实例
func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) Create(review *model.Review) error {
	return r.db.Create(review).Error
}

func (r *reviewRepository) ExistsByUserAndVendor(userID, vendorID string) (bool, error) {
	var count int64
	err := r.db.Model(&model.Review{}).
		Where("user_id = ? AND vendor_id = ?", userID, vendorID).
		Count(&count).Error
	return count > 0, err
}

func (r *reviewRepository) ListByVendor(vendorID string, offset, limit int) ([]model.Review, int64, error) {
	var reviews []model.Review
	var total int64

	q := r.db.Model(&model.Review{}).Where("vendor_id = ?", vendorID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&reviews).Error; err != nil {
		return nil, 0, err
	}
	return reviews, total, nil
}

func (r *reviewRepository) AverageRating(vendorID string) (float64, error) {
	var avg *float64
	err := r.db.Model(&model.Review{}).
		Where("vendor_id = ?", vendorID).
		Select("AVG(rating)").Scan(&avg).Error
	if err != nil || avg == nil {
		return 0, err
	}
	return *avg, nil
}
