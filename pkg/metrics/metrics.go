package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector 指标收集器
type Collector struct {
	// HTTP 指标
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// 业务指标
	OrdersPlacedTotal    prometheus.Counter
	OrdersByDecision     *prometheus.CounterVec
	PaymentsTotal        *prometheus.CounterVec
	SettlementsTotal     prometheus.Counter
	OTPIssuedTotal       *prometheus.CounterVec
	MailQueueDepth       prometheus.Gauge
}

// Default 全局收集器实例
var Default = NewCollector()

// NewCollector 创建指标收集器
func NewCollector() *Collector {
	return &Collector{
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),

		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		OrdersPlacedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "orders_placed_total",
				Help: "Total number of orders placed",
			},
		),

		OrdersByDecision: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "orders_vendor_decisions_total",
				Help: "Vendor accept/reject decisions",
			},
			[]string{"decision"},
		),

		PaymentsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payments_total",
				Help: "Payment transitions by channel and status",
			},
			[]string{"channel", "status"},
		),

		SettlementsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "wallet_settlements_total",
				Help: "Total number of settled orders",
			},
		),

		OTPIssuedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "otp_issued_total",
				Help: "OTP codes issued by purpose",
			},
			[]string{"purpose"},
		),

		MailQueueDepth: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "mail_queue_depth",
				Help: "Pending messages in the outbound mail queue",
			},
		),
	}
}
