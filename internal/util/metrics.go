package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Total number of orders created",
	})

	OrdersFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_failed_total",
		Help: "Total number of failed order operations",
	}, []string{"reason"})

	OrderStatusTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "order_status_transitions_total",
		Help: "Total number of order status transitions",
	}, []string{"to_status"})

	RiskScoresAssigned = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "risk_scores_assigned",
		Help:    "Distribution of base risk scores assigned at order creation",
		Buckets: prometheus.LinearBuckets(0, 10, 11),
	})

	HighRiskOrdersTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "high_risk_orders_total",
		Help: "Total number of COD orders scored in the high risk tier",
	})

	CustomerRiskAlertsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "customer_risk_alerts_total",
		Help: "Total number of customer risk alerts emitted",
	})

	CustomerRiskReplaysTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "customer_risk_replays_total",
		Help: "Total number of customer risk replays computed",
	})

	DashboardComputeLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "dashboard_compute_latency_seconds",
		Help:    "Latency of dashboard aggregation",
		Buckets: prometheus.DefBuckets,
	})

	DashboardCacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dashboard_cache_hits_total",
		Help: "Total number of dashboard snapshot cache hits",
	})

	DashboardCacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dashboard_cache_misses_total",
		Help: "Total number of dashboard snapshot cache misses",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
