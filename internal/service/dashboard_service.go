package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cod-dashboard/internal/analytics"
	"cod-dashboard/internal/models"
	"cod-dashboard/internal/redisclient"
	"cod-dashboard/internal/store"
	"cod-dashboard/internal/util"

	"go.uber.org/zap"
)

// Dashboard is the full derived snapshot for one user and range.
type Dashboard struct {
	Range           analytics.DateRange       `json:"range"`
	Stats           analytics.OverviewStats   `json:"stats"`
	RiskStats       analytics.RiskStats       `json:"risk_stats"`
	Geo             analytics.GeoRiskStats    `json:"geo"`
	Products        analytics.ProductBreakdown `json:"products"`
	Channels        analytics.ChannelBreakdown `json:"channels"`
	Customers       analytics.CustomerStats   `json:"customers"`
	OrdersSeries    []analytics.TimePoint     `json:"orders_series"`
	RevenueSeries   []analytics.RevenuePoint  `json:"revenue_series"`
	TopProducts     []analytics.ProductSlice  `json:"top_products"`
	ProvinceRevenue []models.ProvinceRevenue  `json:"province_revenue"`
}

const topProductsLimit = 5

// DashboardService resolves a date range, fetches the raw orders and
// runs the reducer set. Snapshots are cached briefly in Redis; the
// reducers themselves stay pure.
type DashboardService struct {
	store    *store.Store
	redis    *redisclient.Client
	cacheTTL time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(store *store.Store, redis *redisclient.Client, cacheTTL time.Duration) *DashboardService {
	return &DashboardService{
		store:    store,
		redis:    redis,
		cacheTTL: cacheTTL,
		logger:   util.GetLogger(),
		now:      time.Now,
	}
}

// GetDashboard computes (or serves from cache) the dashboard snapshot
// for a symbolic range.
func (s *DashboardService) GetDashboard(ctx context.Context, userID int64, kind analytics.RangeKind, customFrom, customTo string) (*Dashboard, error) {
	ctx, span := util.StartSpan(ctx, "DashboardService.GetDashboard")
	defer span.End()

	cacheKey := fmt.Sprintf("%s:%s:%s", kind, customFrom, customTo)
	if payload, err := s.redis.GetDashboardSnapshot(ctx, userID, cacheKey); err == nil {
		var cached Dashboard
		if err := json.Unmarshal(payload, &cached); err == nil {
			util.DashboardCacheHitsTotal.Inc()
			return &cached, nil
		}
	}
	util.DashboardCacheMissesTotal.Inc()

	start := time.Now()
	defer func() {
		util.DashboardComputeLatency.Observe(time.Since(start).Seconds())
	}()

	dateRange := analytics.ResolveRange(kind, customFrom, customTo, s.now())

	inRange, err := s.store.ListOrdersForRange(ctx, userID, dateRange.From, dateRange.To)
	if err != nil {
		return nil, fmt.Errorf("failed to load orders for range: %w", err)
	}

	history, err := s.store.ListOrdersByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order history: %w", err)
	}

	provinceRevenue, err := s.store.GetProvinceRevenue(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load province revenue: %w", err)
	}

	dashboard := &Dashboard{
		Range:           dateRange,
		Stats:           analytics.ComputeStats(inRange),
		RiskStats:       analytics.ComputeRiskStats(inRange),
		Geo:             analytics.ComputeGeoRiskStats(inRange),
		Products:        analytics.ComputeProductStats(inRange),
		Channels:        analytics.ComputeChannelStats(inRange),
		Customers:       analytics.ComputeCustomerStats(inRange, history, dateRange.From),
		OrdersSeries:    analytics.BuildOrdersDashboard(inRange),
		RevenueSeries:   analytics.BuildRevenueDashboard(inRange),
		TopProducts:     analytics.BuildTopProductsChart(inRange, topProductsLimit),
		ProvinceRevenue: provinceRevenue,
	}

	if payload, err := json.Marshal(dashboard); err == nil {
		if err := s.redis.SetDashboardSnapshot(ctx, userID, cacheKey, payload, s.cacheTTL); err != nil {
			s.logger.Warn("Failed to cache dashboard snapshot",
				zap.Int64("user_id", userID),
				zap.Error(err))
		}
	}

	return dashboard, nil
}
