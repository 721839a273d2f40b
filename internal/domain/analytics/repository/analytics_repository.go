package repository

import (
	"math"

	"github.com/jmoiron/sqlx"
)

// OrderStats 商家订单看板数字
type OrderStats struct {
	Pending   int64 `json:"pending"`
	Active    int64 `json:"active"`
	Completed int64 `json:"completed"`
	Cancelled int64 `json:"cancelled"`

	// 当月已支付订单的流水（商品 + 运费）
	MonthlyRevenue float64 `json:"monthlyRevenue"`
}

// ReviewSummary 商家评分汇总
type ReviewSummary struct {
	Total     int64           `json:"total"`
	Average   float64         `json:"average"` // 两位小数
	Histogram map[int64]int64 `json:"histogram"`
}

// AnalyticsRepository 读侧聚合，绕开 ORM 直接写 SQL
type AnalyticsRepository interface {
	GetOrderStats(vendorID string) (*OrderStats, error)
	GetReviewSummary(vendorID string) (*ReviewSummary, error)
}

type analyticsRepository struct {
	db *sqlx.DB
}

// NewAnalyticsRepository 创建聚合仓库
func NewAnalyticsRepository(db *sqlx.DB) AnalyticsRepository {
	return &analyticsRepository{db: db}
}

const orderCountsQuery = `
SELECT status, COUNT(*) AS count
FROM orders
WHERE vendor_id = $1
GROUP BY status`

const monthlyRevenueQuery = `
SELECT COALESCE(SUM(total_price + delivery_fee), 0) AS revenue
FROM orders
WHERE vendor_id = $1
  AND payment_status = 'paid'
  AND date_trunc('month', created_at) = date_trunc('month', now())`

func (r *analyticsRepository) GetOrderStats(vendorID string) (*OrderStats, error) {
	rows := []struct {
		Status string `db:"status"`
		Count  int64  `db:"count"`
	}{}
	if err := r.db.Select(&rows, orderCountsQuery, vendorID); err != nil {
		return nil, err
	}

	stats := &OrderStats{}
	for _, row := range rows {
		switch row.Status {
		case "pending":
			stats.Pending = row.Count
		case "active":
			stats.Active = row.Count
		case "completed":
			stats.Completed = row.Count
		case "cancelled":
			stats.Cancelled = row.Count
		}
	}

	if err := r.db.Get(&stats.MonthlyRevenue, monthlyRevenueQuery, vendorID); err != nil {
		return nil, err
	}
	return stats, nil
}

const ratingHistogramQuery = `
SELECT rating, COUNT(*) AS count
FROM reviews
WHERE vendor_id = $1
GROUP BY rating`

func (r *analyticsRepository) GetReviewSummary(vendorID string) (*ReviewSummary, error) {
	rows := []struct {
		Rating int64 `db:"rating"`
		Count  int64 `db:"count"`
	}{}
	if err := r.db.Select(&rows, ratingHistogramQuery, vendorID); err != nil {
		return nil, err
	}

	summary := &ReviewSummary{
		Histogram: map[int64]int64{1: 0, 2: 0, 3: 0, 4: 0, 5: 0},
	}
	var sum int64
	for _, row := range rows {
		summary.Histogram[row.Rating] = row.Count
		summary.Total += row.Count
		sum += row.Rating * row.Count
	}
	if summary.Total > 0 {
		summary.Average = math.Round(float64(sum)/float64(summary.Total)*100) / 100
	}
	return summary, nil
}
