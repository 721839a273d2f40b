package repository

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepo(t *testing.T) (AnalyticsRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewAnalyticsRepository(sqlx.NewDb(db, "postgres")), mock
}

func TestGetOrderStats(t *testing.T) {
	t.Run("maps status counts and monthly revenue", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectQuery(orderCountsQuery).
			WithArgs("vendor-1").
			WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).
				AddRow("pending", 2).
				AddRow("active", 1).
				AddRow("completed", 7).
				AddRow("cancelled", 3))
		mock.ExpectQuery(monthlyRevenueQuery).
			WithArgs("vendor-1").
			WillReturnRows(sqlmock.NewRows([]string{"revenue"}).AddRow(72100.0))

		stats, err := repo.GetOrderStats("vendor-1")

		assert.NoError(t, err)
		assert.Equal(t, int64(2), stats.Pending)
		assert.Equal(t, int64(1), stats.Active)
		assert.Equal(t, int64(7), stats.Completed)
		assert.Equal(t, int64(3), stats.Cancelled)
		assert.Equal(t, 72100.0, stats.MonthlyRevenue)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("vendor without orders gets zeroes", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectQuery(orderCountsQuery).
			WithArgs("vendor-2").
			WillReturnRows(sqlmock.NewRows([]string{"status", "count"}))
		mock.ExpectQuery(monthlyRevenueQuery).
			WithArgs("vendor-2").
			WillReturnRows(sqlmock.NewRows([]string{"revenue"}).AddRow(0.0))

		stats, err := repo.GetOrderStats("vendor-2")

		assert.NoError(t, err)
		assert.Equal(t, &OrderStats{}, stats)
	})
}

func TestGetReviewSummary(t *testing.T) {
	t.Run("histogram and two decimal average", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		// 评分序列 [5,5,4,3,5]
		mock.ExpectQuery(ratingHistogramQuery).
			WithArgs("vendor-1").
			WillReturnRows(sqlmock.NewRows([]string{"rating", "count"}).
				AddRow(3, 1).
				AddRow(4, 1).
				AddRow(5, 3))

		summary, err := repo.GetReviewSummary("vendor-1")

		assert.NoError(t, err)
		assert.Equal(t, int64(5), summary.Total)
		assert.Equal(t, 4.4, summary.Average)
		assert.Equal(t, map[int64]int64{1: 0, 2: 0, 3: 1, 4: 1, 5: 3}, summary.Histogram)
	})

	t.Run("no reviews means zero average", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectQuery(ratingHistogramQuery).
			WithArgs("vendor-2").
			WillReturnRows(sqlmock.NewRows([]string{"rating", "count"}))

		summary, err := repo.GetReviewSummary("vendor-2")

		assert.NoError(t, err)
		assert.Equal(t, int64(0), summary.Total)
		assert.Equal(t, 0.0, summary.Average)
	})
}
