package analytics

import "cod-dashboard/internal/models"

// Minimum-volume gates: a group must have at least this many COD orders
// before it can be reported as a "top" or "worst" extremum. Small
// samples produce noisy rates.
const (
	minCODOrdersForExtremum      = 10
	minCODOrdersForWorstProvince = 50
)

// GroupStats is the shared per-group aggregate for province, product and
// channel breakdowns.
type GroupStats struct {
	Key            string  `json:"key"`
	Orders         int     `json:"orders"`
	PaidRevenue    int64   `json:"paid_revenue"`
	SuccessOrders  int     `json:"success_orders"`
	CODOrders      int     `json:"cod_orders"`
	CODCancelled   int     `json:"cod_cancelled"`
	CancelRate     float64 `json:"cancel_rate"`
	ConversionRate float64 `json:"conversion_rate"`
}

// GeoRiskStats is the province breakdown.
type GeoRiskStats struct {
	Provinces []GroupStats `json:"provinces"`
	// WorstBoomProvince is the gated worst cancel-rate province, nil
	// when no province clears the volume gate.
	WorstBoomProvince *GroupStats `json:"worst_boom_province,omitempty"`
}

// ProductBreakdown is the per-product view.
type ProductBreakdown struct {
	Products     []GroupStats `json:"products"`
	TopProduct   *GroupStats  `json:"top_product,omitempty"`
	WorstProduct *GroupStats  `json:"worst_product,omitempty"`
}

// ChannelBreakdown is the per-channel view.
type ChannelBreakdown struct {
	Channels              []GroupStats `json:"channels"`
	TopChannel            *GroupStats  `json:"top_channel,omitempty"`
	BestConversionChannel *GroupStats  `json:"best_conversion_channel,omitempty"`
}

// ComputeGeoRiskStats groups orders by province. The worst boom
// province needs at least 50 COD orders to qualify; ties keep the first
// encountered province.
func ComputeGeoRiskStats(orders []models.Order) GeoRiskStats {
	groups := groupBy(orders, func(o *models.Order) string { return o.Province })

	var worst *GroupStats
	for i := range groups {
		g := &groups[i]
		if g.CODOrders < minCODOrdersForWorstProvince {
			continue
		}
		if worst == nil || g.CancelRate > worst.CancelRate {
			worst = g
		}
	}
	return GeoRiskStats{Provinces: groups, WorstBoomProvince: copyGroup(worst)}
}

// ComputeProductStats groups orders by product. Extrema are gated at 10
// COD orders: top by paid revenue, worst by cancel rate.
func ComputeProductStats(orders []models.Order) ProductBreakdown {
	groups := groupBy(orders, func(o *models.Order) string { return o.Product })

	var top, worst *GroupStats
	for i := range groups {
		g := &groups[i]
		if g.CODOrders < minCODOrdersForExtremum {
			continue
		}
		if top == nil || g.PaidRevenue > top.PaidRevenue {
			top = g
		}
		if worst == nil || g.CancelRate > worst.CancelRate {
			worst = g
		}
	}
	return ProductBreakdown{Products: groups, TopProduct: copyGroup(top), WorstProduct: copyGroup(worst)}
}

// ComputeChannelStats groups orders by channel. Extrema are gated at 10
// COD orders: top by paid revenue, best by conversion rate.
func ComputeChannelStats(orders []models.Order) ChannelBreakdown {
	groups := groupBy(orders, func(o *models.Order) string { return o.Channel })

	var top, best *GroupStats
	for i := range groups {
		g := &groups[i]
		if g.CODOrders < minCODOrdersForExtremum {
			continue
		}
		if top == nil || g.PaidRevenue > top.PaidRevenue {
			top = g
		}
		if best == nil || g.ConversionRate > best.ConversionRate {
			best = g
		}
	}
	return ChannelBreakdown{Channels: groups, TopChannel: copyGroup(top), BestConversionChannel: copyGroup(best)}
}

// groupBy accumulates per-key aggregates. Groups keep first-encounter
// order so extremum selection over them is stable under ties.
func groupBy(orders []models.Order, keyOf func(*models.Order) string) []GroupStats {
	index := make(map[string]int)
	groups := make([]GroupStats, 0)

	for i := range orders {
		o := &orders[i]
		key := keyOf(o)

		idx, ok := index[key]
		if !ok {
			idx = len(groups)
			index[key] = idx
			groups = append(groups, GroupStats{Key: key})
		}
		g := &groups[idx]

		g.Orders++
		if models.Classify(o.Status) == models.ClassSuccess {
			g.SuccessOrders++
		}
		if o.PaidAt != nil {
			g.PaidRevenue += o.Amount
		}
		if models.IsCOD(o.PaymentMethod) {
			g.CODOrders++
			if models.Classify(o.Status) == models.ClassCustomerFail {
				g.CODCancelled++
			}
		}
	}

	for i := range groups {
		g := &groups[i]
		g.CancelRate = rate(g.CODCancelled, g.CODOrders)
		g.ConversionRate = rate(g.SuccessOrders, g.Orders)
	}
	return groups
}

// copyGroup detaches an extremum from the backing slice so callers can
// hold it without pinning the whole breakdown.
func copyGroup(g *GroupStats) *GroupStats {
	if g == nil {
		return nil
	}
	out := *g
	return &out
}
