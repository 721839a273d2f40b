package service

import (
	"errors"
	"math"
	"strings"

	accountService "gas_marketplace/internal/domain/account/service"
	orderModel "gas_marketplace/internal/domain/order/model"
	orderRepo "gas_marketplace/internal/domain/order/repository"
	"gas_marketplace/internal/domain/review/model"
	"gas_marketplace/internal/domain/review/repository"
	"gas_marketplace/pkg/apperr"
	"gas_marketplace/pkg/logger"
	"gas_marketplace/pkg/response"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CreateReviewInput 评价输入
type CreateReviewInput struct {
	OrderID string
	Rating  int
	Comment string
}

// ReviewService 评价服务
type ReviewService interface {
	// CreateReview 只有完成过订单的顾客能评对应商家，且只能评一次
	CreateReview(userID string, input CreateReviewInput) (*model.Review, error)
	ListByVendor(vendorID string, offset, limit int) ([]model.Review, int64, error)
}

type reviewService struct {
	repo     repository.ReviewRepository
	orders   orderRepo.OrderRepository
	accounts accountService.AccountService
}

// NewReviewService 创建评价服务
func NewReviewService(repo repository.ReviewRepository, orders orderRepo.OrderRepository,
	accounts accountService.AccountService) ReviewService {
	return &reviewService{repo: repo, orders: orders, accounts: accounts}
}

func (s *reviewService) CreateReview(userID string, input CreateReviewInput) (*model.Review, error) {
	if input.Rating < 1 || input.Rating > 5 {
		return nil, apperr.Validation("rating must be between 1 and 5")
	}
	if strings.TrimSpace(input.Comment) == "" {
		return nil, apperr.Validation("a review comment is required")
	}

	order, err := s.orders.GetByID(input.OrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("order not found").WithCode(response.ErrOrderNotFound)
		}
		return nil, err
	}
	if order.UserID != userID {
		return nil, apperr.Forbidden("order belongs to another customer")
	}
	if order.Status != orderModel.StatusCompleted || order.VendorID == nil {
		return nil, apperr.Forbidden("only completed orders can be reviewed").
			WithCode(response.ErrReviewForbidden)
	}

	vendorID := *order.VendorID
	exists, err := s.repo.ExistsByUserAndVendor(userID, vendorID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperr.Conflict("vendor already reviewed").WithCode(response.ErrReviewExists)
	}

	review := &model.Review{
		UserID:   userID,
		VendorID: vendorID,
		OrderID:  order.ID,
		Rating:   input.Rating,
		Comment:  input.Comment,
	}
	if err := s.repo.Create(review); err != nil {
		return nil, err
	}

	// 全量重算均值，读多写少的评价流量扛得住
	avg, err := s.repo.AverageRating(vendorID)
	if err == nil {
		avg = math.Round(avg*100) / 100
		if err := s.accounts.UpdateVendorRating(vendorID, avg); err != nil {
			logger.Log.Warn("vendor rating refresh failed",
				zap.String("vendor", vendorID), zap.Error(err))
		}
	}

	return review, nil
}

func (s *reviewService) ListByVendor(vendorID string, offset, limit int) ([]model.Review, int64, error) {
	return s.repo.ListByVendor(vendorID, offset, limit)
}
