// Package analytics holds the pure aggregation reducers behind the
// dashboard. Every reducer takes an order slice already filtered to a
// date range, never mutates it, and returns a plain derived value, so
// repeated calls over the same input produce identical output.
package analytics

import (
	"math"

	"cod-dashboard/internal/models"
)

// RiskLevelCounts counts orders per risk tier.
type RiskLevelCounts struct {
	Low    int `json:"low"`
	Medium int `json:"medium"`
	High   int `json:"high"`
}

// OverviewStats is the top-of-dashboard KPI block.
type OverviewStats struct {
	TotalOrders     int             `json:"total_orders"`
	CODOrders       int             `json:"cod_orders"`
	PrepaidOrders   int             `json:"prepaid_orders"`
	SuccessOrders   int             `json:"success_orders"`
	FailedOrders    int             `json:"failed_orders"`
	PendingOrders   int             `json:"pending_orders"`
	ConfirmedOrders int             `json:"confirmed_orders"`
	PaidOrders      int             `json:"paid_orders"`
	GrossRevenue    int64           `json:"gross_revenue"`
	NetRevenue      int64           `json:"net_revenue"`
	AvgOrderValue   float64         `json:"avg_order_value"`
	ConversionRate  float64         `json:"conversion_rate"`
	CancelRate      float64         `json:"cancel_rate"`
	RiskLevelCounts RiskLevelCounts `json:"risk_level_counts"`
}

// ComputeStats derives the overall KPIs for a range of orders.
//
// Gross revenue sums amount over orders whose paid_at is set (the
// timestamp, not the status: a COMPLETED order that was paid earlier
// still counts). Net revenue subtracts refunds and seller-paid
// shipping. The cancel rate (boom rate) is over COD orders only.
func ComputeStats(orders []models.Order) OverviewStats {
	var stats OverviewStats

	var codCancelled int
	for i := range orders {
		o := &orders[i]
		stats.TotalOrders++

		cod := models.IsCOD(o.PaymentMethod)
		if cod {
			stats.CODOrders++
		} else {
			stats.PrepaidOrders++
		}

		switch models.Classify(o.Status) {
		case models.ClassSuccess:
			stats.SuccessOrders++
		case models.ClassCustomerFail:
			stats.FailedOrders++
			if cod {
				codCancelled++
			}
		case models.ClassPending:
			stats.PendingOrders++
		}
		if o.Status == models.StatusCustomerConfirmed {
			stats.ConfirmedOrders++
		}

		if o.PaidAt != nil {
			stats.PaidOrders++
			stats.GrossRevenue += o.Amount
			stats.NetRevenue += o.Amount - o.RefundedAmount - o.SellerShippingPaid
		}

		switch o.RiskLevel {
		case models.RiskLevelLow:
			stats.RiskLevelCounts.Low++
		case models.RiskLevelMedium:
			stats.RiskLevelCounts.Medium++
		case models.RiskLevelHigh:
			stats.RiskLevelCounts.High++
		}
	}

	if stats.PaidOrders > 0 {
		stats.AvgOrderValue = float64(stats.GrossRevenue) / float64(stats.PaidOrders)
	}
	stats.ConversionRate = rate(stats.SuccessOrders, stats.TotalOrders)
	stats.CancelRate = rate(codCancelled, stats.CODOrders)

	return stats
}

// RiskStats summarizes base risk scores over COD orders.
type RiskStats struct {
	ScoredOrders int      `json:"scored_orders"`
	AvgRiskScore *float64 `json:"avg_risk_score"`
	LowCount     int      `json:"low_count"`
	MediumCount  int      `json:"medium_count"`
	HighCount    int      `json:"high_count"`
}

// ComputeRiskStats averages risk_score over COD orders that have one.
// AvgRiskScore stays nil when nothing is scored; callers render "N/A",
// not "0".
func ComputeRiskStats(orders []models.Order) RiskStats {
	var stats RiskStats

	var sum float64
	for i := range orders {
		o := &orders[i]
		if !models.IsCOD(o.PaymentMethod) || o.RiskScore == nil {
			continue
		}
		stats.ScoredOrders++
		sum += *o.RiskScore

		switch models.RiskLevelForScore(*o.RiskScore) {
		case models.RiskLevelLow:
			stats.LowCount++
		case models.RiskLevelMedium:
			stats.MediumCount++
		case models.RiskLevelHigh:
			stats.HighCount++
		}
	}

	if stats.ScoredOrders > 0 {
		avg := round1(sum / float64(stats.ScoredOrders))
		stats.AvgRiskScore = &avg
	}
	return stats
}

// rate computes a percentage rounded to one decimal, 0 when the
// denominator is 0. Never NaN, never Inf.
func rate(num, den int) float64 {
	if den <= 0 {
		return 0
	}
	return round1(float64(num) / float64(den) * 100)
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
