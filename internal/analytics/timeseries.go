package analytics

import (
	"sort"

	"cod-dashboard/internal/models"
)

// Spans longer than this many days bucket by month instead of day.
const monthBucketThresholdDays = 60

// TimePoint is one bucket of the orders time series.
type TimePoint struct {
	Bucket        string `json:"bucket"`
	Orders        int    `json:"orders"`
	SuccessOrders int    `json:"success_orders"`
	FailedOrders  int    `json:"failed_orders"`
}

// RevenuePoint is one bucket of the revenue time series.
type RevenuePoint struct {
	Bucket       string `json:"bucket"`
	GrossRevenue int64  `json:"gross_revenue"`
	NetRevenue   int64  `json:"net_revenue"`
	PaidOrders   int    `json:"paid_orders"`
}

// ProductSlice is one row of the top-products chart.
type ProductSlice struct {
	Product     string `json:"product"`
	Orders      int    `json:"orders"`
	PaidRevenue int64  `json:"paid_revenue"`
}

// BuildOrdersDashboard buckets order counts by day, or by month when
// the observed span exceeds 60 days. Buckets with no orders are simply
// absent; orders with a zero business date are skipped.
func BuildOrdersDashboard(orders []models.Order) []TimePoint {
	layout := bucketLayout(orders)

	index := make(map[string]int)
	points := make([]TimePoint, 0)
	for i := range orders {
		o := &orders[i]
		d := businessDate(o)
		if d.IsZero() {
			continue
		}
		key := d.Format(layout)

		idx, ok := index[key]
		if !ok {
			idx = len(points)
			index[key] = idx
			points = append(points, TimePoint{Bucket: key})
		}
		points[idx].Orders++
		switch models.Classify(o.Status) {
		case models.ClassSuccess:
			points[idx].SuccessOrders++
		case models.ClassCustomerFail:
			points[idx].FailedOrders++
		}
	}

	sort.Slice(points, func(i, j int) bool { return points[i].Bucket < points[j].Bucket })
	return points
}

// BuildRevenueDashboard buckets paid revenue the same way as
// BuildOrdersDashboard. Only orders with paid_at set contribute.
func BuildRevenueDashboard(orders []models.Order) []RevenuePoint {
	layout := bucketLayout(orders)

	index := make(map[string]int)
	points := make([]RevenuePoint, 0)
	for i := range orders {
		o := &orders[i]
		if o.PaidAt == nil {
			continue
		}
		d := businessDate(o)
		if d.IsZero() {
			continue
		}
		key := d.Format(layout)

		idx, ok := index[key]
		if !ok {
			idx = len(points)
			index[key] = idx
			points = append(points, RevenuePoint{Bucket: key})
		}
		points[idx].PaidOrders++
		points[idx].GrossRevenue += o.Amount
		points[idx].NetRevenue += o.Amount - o.RefundedAmount - o.SellerShippingPaid
	}

	sort.Slice(points, func(i, j int) bool { return points[i].Bucket < points[j].Bucket })
	return points
}

// BuildTopProductsChart ranks products by paid revenue, keeping at most
// limit rows. The sort is stable so revenue ties keep first-encounter
// order.
func BuildTopProductsChart(orders []models.Order, limit int) []ProductSlice {
	index := make(map[string]int)
	slices := make([]ProductSlice, 0)
	for i := range orders {
		o := &orders[i]
		if o.Product == "" {
			continue
		}

		idx, ok := index[o.Product]
		if !ok {
			idx = len(slices)
			index[o.Product] = idx
			slices = append(slices, ProductSlice{Product: o.Product})
		}
		slices[idx].Orders++
		if o.PaidAt != nil {
			slices[idx].PaidRevenue += o.Amount
		}
	}

	sort.SliceStable(slices, func(i, j int) bool {
		return slices[i].PaidRevenue > slices[j].PaidRevenue
	})
	if limit > 0 && len(slices) > limit {
		slices = slices[:limit]
	}
	return slices
}

// bucketLayout picks day or month granularity from the observed span of
// valid business dates.
func bucketLayout(orders []models.Order) string {
	var minSet bool
	var minDate, maxDate int64
	for i := range orders {
		d := businessDate(&orders[i])
		if d.IsZero() {
			continue
		}
		u := d.Unix()
		if !minSet {
			minDate, maxDate = u, u
			minSet = true
			continue
		}
		if u < minDate {
			minDate = u
		}
		if u > maxDate {
			maxDate = u
		}
	}

	const daySeconds = 24 * 60 * 60
	if minSet && (maxDate-minDate) > monthBucketThresholdDays*daySeconds {
		return "2006-01"
	}
	return "2006-01-02"
}
