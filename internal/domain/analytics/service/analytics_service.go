package service

import (
	"context"
	"encoding/json"
	"time"

	"gas_marketplace/internal/domain/analytics/repository"
	"gas_marketplace/pkg/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// 看板缓存时长。聚合 SQL 不便宜，5 分钟内的数字够新鲜
const dashboardTTL = 5 * time.Minute

// VendorDashboard 商家看板：订单与评分聚合
type VendorDashboard struct {
	Orders  *repository.OrderStats    `json:"orders"`
	Reviews *repository.ReviewSummary `json:"reviews"`
}

// AnalyticsService 读侧统计服务
type AnalyticsService interface {
	GetOrderStats(vendorID string) (*repository.OrderStats, error)
	GetReviewSummary(vendorID string) (*repository.ReviewSummary, error)

	// GetVendorDashboard 聚合订单与评分，结果走 Redis cache-aside
	GetVendorDashboard(vendorID string) (*VendorDashboard, error)
}

type analyticsService struct {
	repo  repository.AnalyticsRepository
	redis *redis.Client
}

// NewAnalyticsService 创建统计服务
func NewAnalyticsService(repo repository.AnalyticsRepository, rdb *redis.Client) AnalyticsService {
	return &analyticsService{repo: repo, redis: rdb}
}

func (s *analyticsService) GetOrderStats(vendorID string) (*repository.OrderStats, error) {
	return s.repo.GetOrderStats(vendorID)
}

func (s *analyticsService) GetReviewSummary(vendorID string) (*repository.ReviewSummary, error) {
	return s.repo.GetReviewSummary(vendorID)
}

func (s *analyticsService) GetVendorDashboard(vendorID string) (*VendorDashboard, error) {
	ctx := context.Background()
	key := "analytics:dashboard:" + vendorID

	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, key).Result(); err == nil {
			var dashboard VendorDashboard
			if json.Unmarshal([]byte(cached), &dashboard) == nil {
				return &dashboard, nil
			}
		}
	}

	orders, err := s.repo.GetOrderStats(vendorID)
	if err != nil {
		return nil, err
	}
	reviews, err := s.repo.GetReviewSummary(vendorID)
	if err != nil {
		return nil, err
	}

	dashboard := &VendorDashboard{Orders: orders, Reviews: reviews}

	if s.redis != nil {
		payload, _ := json.Marshal(dashboard)
		if err := s.redis.Set(ctx, key, payload, dashboardTTL).Err(); err != nil {
			// 缓存写失败不影响返回
			logger.Log.Warn("dashboard cache write failed",
				zap.String("vendor", vendorID), zap.Error(err))
		}
	}

	return dashboard, nil
}
