package analytics

import (
	"testing"
	"time"

	"cod-dashboard/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrdersDashboardDayBuckets(t *testing.T) {
	orders := []models.Order{
		{OrderDate: day(1), Status: models.StatusOrderPaid},
		{OrderDate: day(1), Status: models.StatusCustomerCancelled},
		{OrderDate: day(3), Status: models.StatusCompleted},
	}

	points := BuildOrdersDashboard(orders)

	require.Len(t, points, 2)
	assert.Equal(t, "2024-01-01", points[0].Bucket)
	assert.Equal(t, 2, points[0].Orders)
	assert.Equal(t, 1, points[0].SuccessOrders)
	assert.Equal(t, 1, points[0].FailedOrders)
	// Jan 2 has no orders and no synthetic zero row.
	assert.Equal(t, "2024-01-03", points[1].Bucket)
}

func TestOrdersDashboardMonthBucketsOverSixtyDays(t *testing.T) {
	orders := []models.Order{
		{OrderDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{OrderDate: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
	}

	points := BuildOrdersDashboard(orders)

	require.Len(t, points, 2)
	assert.Equal(t, "2024-01", points[0].Bucket)
	assert.Equal(t, "2024-03", points[1].Bucket)
}

func TestOrdersDashboardSkipsZeroDates(t *testing.T) {
	orders := []models.Order{
		{OrderDate: day(1)},
		{}, // no order_date, no created_at: skipped, not crashed on
	}

	points := BuildOrdersDashboard(orders)

	require.Len(t, points, 1)
	assert.Equal(t, 1, points[0].Orders)
}

func TestOrdersDashboardFallsBackToCreatedAt(t *testing.T) {
	orders := []models.Order{
		{CreatedAt: day(7)},
	}

	points := BuildOrdersDashboard(orders)

	require.Len(t, points, 1)
	assert.Equal(t, "2024-01-07", points[0].Bucket)
}

func TestRevenueDashboardOnlyCountsPaidOrders(t *testing.T) {
	orders := []models.Order{
		{OrderDate: day(1), Amount: 100000, PaidAt: timePtr(day(1)),
			RefundedAmount: 10000, SellerShippingPaid: 5000},
		{OrderDate: day(1), Amount: 999999}, // unpaid
	}

	points := BuildRevenueDashboard(orders)

	require.Len(t, points, 1)
	assert.Equal(t, 1, points[0].PaidOrders)
	assert.Equal(t, int64(100000), points[0].GrossRevenue)
	assert.Equal(t, int64(85000), points[0].NetRevenue)
}

func TestTopProductsChartRanksByRevenueAndLimits(t *testing.T) {
	orders := []models.Order{
		{Product: "Serum", Amount: 100000, PaidAt: timePtr(day(1)), OrderDate: day(1)},
		{Product: "Toner", Amount: 300000, PaidAt: timePtr(day(1)), OrderDate: day(1)},
		{Product: "Mask", Amount: 200000, PaidAt: timePtr(day(1)), OrderDate: day(1)},
	}

	slices := BuildTopProductsChart(orders, 2)

	require.Len(t, slices, 2)
	assert.Equal(t, "Toner", slices[0].Product)
	assert.Equal(t, "Mask", slices[1].Product)
}

func TestTopProductsChartTieKeepsFirstEncountered(t *testing.T) {
	orders := []models.Order{
		{Product: "Serum", Amount: 100000, PaidAt: timePtr(day(1)), OrderDate: day(1)},
		{Product: "Toner", Amount: 100000, PaidAt: timePtr(day(1)), OrderDate: day(1)},
	}

	slices := BuildTopProductsChart(orders, 0)

	require.Len(t, slices, 2)
	assert.Equal(t, "Serum", slices[0].Product)
}

func TestTimeSeriesEmptyInput(t *testing.T) {
	assert.Empty(t, BuildOrdersDashboard(nil))
	assert.Empty(t, BuildRevenueDashboard(nil))
	assert.Empty(t, BuildTopProductsChart(nil, 5))
}
