package analytics

import (
	"testing"
	"time"

	"cod-dashboard/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(v float64) *float64 { return &v }

func timePtr(t time.Time) *time.Time { return &t }

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func TestComputeStatsEmptyInput(t *testing.T) {
	stats := ComputeStats(nil)

	assert.Equal(t, 0, stats.TotalOrders)
	assert.Equal(t, int64(0), stats.GrossRevenue)
	assert.Equal(t, float64(0), stats.AvgOrderValue)
	assert.Equal(t, float64(0), stats.ConversionRate)
	assert.Equal(t, float64(0), stats.CancelRate)
}

func TestComputeStatsRevenueFollowsPaidAt(t *testing.T) {
	orders := []models.Order{
		// Paid then completed: paid_at survives the status advance.
		{Amount: 200000, PaymentMethod: "COD", Status: models.StatusCompleted,
			PaidAt: timePtr(day(2)), RefundedAmount: 10000, SellerShippingPaid: 20000, OrderDate: day(2)},
		{Amount: 300000, PaymentMethod: "COD", Status: models.StatusOrderPaid,
			PaidAt: timePtr(day(3)), OrderDate: day(3)},
		// Never paid: contributes nothing to revenue.
		{Amount: 500000, PaymentMethod: "COD", Status: models.StatusCustomerCancelled, OrderDate: day(4)},
	}

	stats := ComputeStats(orders)

	assert.Equal(t, 2, stats.PaidOrders)
	assert.Equal(t, int64(500000), stats.GrossRevenue)
	assert.Equal(t, int64(470000), stats.NetRevenue)
	assert.Equal(t, float64(250000), stats.AvgOrderValue)
}

func TestComputeStatsConservation(t *testing.T) {
	orders := []models.Order{
		{PaymentMethod: "COD", Status: models.StatusPendingReview},
		{PaymentMethod: "", Status: models.StatusOrderPaid},
		{PaymentMethod: "cod", Status: models.StatusCustomerCancelled},
		{PaymentMethod: "bank_transfer", Status: models.StatusCompleted},
		{PaymentMethod: "prepaid", Status: models.StatusDelivering},
	}

	stats := ComputeStats(orders)

	assert.Equal(t, stats.TotalOrders, stats.CODOrders+stats.PrepaidOrders)
	assert.Equal(t, 3, stats.CODOrders)
	assert.Equal(t, 2, stats.PrepaidOrders)
}

func TestComputeStatsRatesWithinBounds(t *testing.T) {
	orders := []models.Order{
		{PaymentMethod: "COD", Status: models.StatusOrderPaid},
		{PaymentMethod: "COD", Status: models.StatusCustomerCancelled},
		{PaymentMethod: "COD", Status: models.StatusCustomerUnreachable},
	}

	stats := ComputeStats(orders)

	assert.GreaterOrEqual(t, stats.ConversionRate, float64(0))
	assert.LessOrEqual(t, stats.ConversionRate, float64(100))
	assert.Equal(t, 33.3, stats.ConversionRate)
	assert.Equal(t, 66.7, stats.CancelRate)
}

func TestComputeStatsConfirmedIsNotSuccess(t *testing.T) {
	orders := []models.Order{
		{PaymentMethod: "COD", Status: models.StatusCustomerConfirmed},
	}

	stats := ComputeStats(orders)

	assert.Equal(t, 1, stats.ConfirmedOrders)
	assert.Equal(t, 0, stats.SuccessOrders)
}

func TestComputeStatsIdempotent(t *testing.T) {
	orders := []models.Order{
		{Amount: 100000, PaymentMethod: "COD", Status: models.StatusOrderPaid,
			PaidAt: timePtr(day(1)), RiskLevel: models.RiskLevelLow, OrderDate: day(1)},
		{Amount: 900000, PaymentMethod: "momo", Status: models.StatusCustomerCancelled, OrderDate: day(2)},
	}

	first := ComputeStats(orders)
	second := ComputeStats(orders)

	assert.Equal(t, first, second)
}

func TestComputeRiskStatsNilAvgWhenUnscored(t *testing.T) {
	orders := []models.Order{
		{PaymentMethod: "COD", Status: models.StatusPendingReview},
		{PaymentMethod: "prepaid", Status: models.StatusOrderPaid, RiskScore: floatPtr(80)},
	}

	stats := ComputeRiskStats(orders)

	// No COD order carries a score: nil, not zero. Callers render N/A.
	assert.Nil(t, stats.AvgRiskScore)
	assert.Equal(t, 0, stats.ScoredOrders)
}

func TestComputeRiskStatsAverageAndTiers(t *testing.T) {
	orders := []models.Order{
		{PaymentMethod: "COD", RiskScore: floatPtr(10)},
		{PaymentMethod: "COD", RiskScore: floatPtr(50)},
		{PaymentMethod: "COD", RiskScore: floatPtr(90)},
		{PaymentMethod: "COD"}, // unscored, ignored
	}

	stats := ComputeRiskStats(orders)

	require.NotNil(t, stats.AvgRiskScore)
	assert.Equal(t, 50.0, *stats.AvgRiskScore)
	assert.Equal(t, 3, stats.ScoredOrders)
	assert.Equal(t, 1, stats.LowCount)
	assert.Equal(t, 1, stats.MediumCount)
	assert.Equal(t, 1, stats.HighCount)
}

func TestComputeRiskStatsRoundsToOneDecimal(t *testing.T) {
	orders := []models.Order{
		{PaymentMethod: "COD", RiskScore: floatPtr(10)},
		{PaymentMethod: "COD", RiskScore: floatPtr(25)},
		{PaymentMethod: "COD", RiskScore: floatPtr(30)},
	}

	stats := ComputeRiskStats(orders)

	require.NotNil(t, stats.AvgRiskScore)
	assert.Equal(t, 21.7, *stats.AvgRiskScore)
}
