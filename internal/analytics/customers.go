package analytics

import (
	"time"

	"cod-dashboard/internal/models"
)

// CustomerStats splits the customers active in a range into new and
// returning.
type CustomerStats struct {
	TotalCustomers     int     `json:"total_customers"`
	NewCustomers       int     `json:"new_customers"`
	ReturningCustomers int     `json:"returning_customers"`
	ReturningRate      float64 `json:"returning_rate"`
}

// ComputeCustomerStats classifies each distinct phone active in the
// range: returning when its earliest order across all time predates the
// range start, new otherwise. history must be the full order list for
// the user, not just the in-range slice; blank phones are skipped.
func ComputeCustomerStats(inRange []models.Order, history []models.Order, from time.Time) CustomerStats {
	earliest := make(map[string]time.Time)
	for i := range history {
		o := &history[i]
		if o.Phone == "" {
			continue
		}
		d := businessDate(o)
		if d.IsZero() {
			continue
		}
		if cur, ok := earliest[o.Phone]; !ok || d.Before(cur) {
			earliest[o.Phone] = d
		}
	}

	var stats CustomerStats
	seen := make(map[string]bool)
	for i := range inRange {
		o := &inRange[i]
		if o.Phone == "" || seen[o.Phone] {
			continue
		}
		seen[o.Phone] = true
		stats.TotalCustomers++

		first, ok := earliest[o.Phone]
		if ok && first.Before(from) {
			stats.ReturningCustomers++
		} else {
			stats.NewCustomers++
		}
	}

	stats.ReturningRate = rate(stats.ReturningCustomers, stats.TotalCustomers)
	return stats
}

// businessDate prefers order_date and falls back to created_at, the
// same precedence the range filter uses.
func businessDate(o *models.Order) time.Time {
	if !o.OrderDate.IsZero() {
		return o.OrderDate
	}
	return o.CreatedAt
}
