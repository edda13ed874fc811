package risk

import (
	"sort"
	"time"

	"cod-dashboard/internal/models"
)

// Replay deltas.
const (
	deltaSuccess        = -5
	deltaSuccessBig     = -10
	deltaCustomerFail   = 20
	bigSuccessThreshold = 1_000_000
)

// ReplayCustomer recomputes a phone's risk by replaying its full order
// history in chronological order. It is a pure fold: the result depends
// only on the inputs, never on the order the caller happened to pass
// the slice in, and nothing is cached or persisted.
//
// The base score is the mean risk_score of the phone's COD orders that
// have one (50 when none do). Each order then shifts the running score:
// -5 on success (-10 for amounts of 1,000,000 and up), +20 on customer
// failure, 0 otherwise. If the phone was blacklisted strictly before an
// order was created and that order was not rejected, its delta doubles:
// the shop ignored a known-blacklisted customer, so the penalty - or
// the reward - counts twice. The running score is only clamped to
// [0,100] after the last order.
func ReplayCustomer(phone string, history []models.Order, blacklistedAt *time.Time) models.CustomerRiskRecord {
	record := models.CustomerRiskRecord{
		Phone:       phone,
		OrderCount:  len(history),
		Blacklisted: blacklistedAt != nil,
	}

	var scoreSum float64
	var scored int
	for i := range history {
		o := &history[i]
		if models.IsCOD(o.PaymentMethod) && o.RiskScore != nil {
			scoreSum += *o.RiskScore
			scored++
		}
	}
	if scored > 0 {
		record.BaseRiskScore = scoreSum / float64(scored)
	} else {
		record.BaseRiskScore = 50
	}

	// Sort internally; the replay must not trust caller ordering.
	chronological := make([]*models.Order, len(history))
	for i := range history {
		chronological[i] = &history[i]
	}
	sort.SliceStable(chronological, func(i, j int) bool {
		return chronological[i].CreatedAt.Before(chronological[j].CreatedAt)
	})

	current := record.BaseRiskScore
	for _, o := range chronological {
		var delta float64
		switch models.Classify(o.Status) {
		case models.ClassSuccess:
			delta = deltaSuccess
			if o.Amount >= bigSuccessThreshold {
				delta = deltaSuccessBig
			}
		case models.ClassCustomerFail:
			delta = deltaCustomerFail
		}

		if blacklistedAt != nil && blacklistedAt.Before(o.CreatedAt) &&
			o.Status != models.StatusOrderRejected {
			delta *= 2
		}

		current += delta
	}

	record.CustomerRiskScore = Clamp(current, 0, 100)
	record.CustomerRiskLevel = models.RiskLevelForScore(record.CustomerRiskScore)
	return record
}

// BlacklistIndex maps each phone to its earliest blacklist entry time.
// Duplicate entries keep the earliest timestamp.
func BlacklistIndex(entries []models.BlacklistEntry) map[string]time.Time {
	index := make(map[string]time.Time, len(entries))
	for i := range entries {
		e := &entries[i]
		if cur, ok := index[e.Phone]; !ok || e.CreatedAt.Before(cur) {
			index[e.Phone] = e.CreatedAt
		}
	}
	return index
}

// BlacklistedAt looks a phone up in an index, returning nil when absent.
func BlacklistedAt(index map[string]time.Time, phone string) *time.Time {
	if t, ok := index[phone]; ok {
		return &t
	}
	return nil
}
