package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// TradeMetrics 交易链路指标
type TradeMetrics struct {
	// HTTP 指标
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// 交易指标
	OrdersCreatedTotal     prometheus.Counter
	PaymentConfirmTotal    *prometheus.CounterVec // result: approved / failed / retryable / rejected
	GatewayCallDuration    *prometheus.HistogramVec
	DeliveryArrivedTotal   prometheus.Counter
	WithdrawalsTotal       *prometheus.CounterVec // phase: pre_fulfillment / return
	ExpiredOrdersReclaimed prometheus.Counter
}

var (
	global *TradeMetrics
	once   sync.Once
)

// Get 获取全局指标实例
func Get() *TradeMetrics {
	once.Do(func() {
		global = &TradeMetrics{
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
					Help:    "HTTP request latency",
					Buckets: prometheus.DefBuckets,
				},
				[]string{"method", "endpoint"},
			),
			OrdersCreatedTotal: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "trade_orders_created_total",
					Help: "Orders created (inventory reserved, awaiting payment)",
				},
			),
			PaymentConfirmTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "trade_payment_confirm_total",
					Help: "Payment confirm attempts by result",
				},
				[]string{"result"},
			),
			GatewayCallDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "trade_gateway_call_duration_seconds",
					Help:    "External payment gateway call latency",
					Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
				},
				[]string{"op"},
			),
			DeliveryArrivedTotal: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "trade_delivery_arrived_total",
					Help: "Deliveries that reached ARRIVED",
				},
			),
			WithdrawalsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "trade_withdrawals_total",
					Help: "Completed withdrawals by phase",
				},
				[]string{"phase"},
			),
			ExpiredOrdersReclaimed: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "trade_expired_orders_reclaimed_total",
					Help: "PENDING orders reclaimed by the expiration sweep",
				},
			),
		}
	})
	return global
}
