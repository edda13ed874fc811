// Package risk scores COD orders at creation and replays per-customer
// risk over full order history. Both computations are deterministic:
// identical inputs always produce identical scores.
package risk

import (
	"fmt"
	"regexp"
	"strings"

	"cod-dashboard/internal/models"
)

// EngineVersion tags assessments so stored scores can be traced back to
// the rule set that produced them.
const EngineVersion = "v1"

// Rule weights for the base score.
const (
	pointsBlacklisted    = 60
	pointsVeryHighAmount = 25
	pointsHighAmount     = 15
	pointsPerPriorFail   = 10
	maxPriorFailPoints   = 30
	pointsInvalidPhone   = 20
	pointsRepeatedPhone  = 10
	pointsNoAddress      = 10

	highAmountThreshold     = 1_000_000
	veryHighAmountThreshold = 5_000_000
)

// OrderInput is the candidate order the engine evaluates.
type OrderInput struct {
	PaymentMethod string
	Amount        int64
	Phone         string
	Product       string
	Address       string
}

// Assessment is the engine's verdict on a candidate order.
type Assessment struct {
	Score   float64  `json:"score"`
	Level   string   `json:"level"`
	Reasons []string `json:"reasons"`
	Version string   `json:"version"`
}

// Vietnamese mobile numbers: leading zero then 9 or 10 digits.
var phonePattern = regexp.MustCompile(`^0\d{9,10}$`)

// ScoreOrder evaluates the base risk of a COD order from the blacklist,
// the order itself and the phone's past orders. Non-COD orders are not
// scored. The score is clamped to [0,100] and reasons are non-empty
// whenever the score is positive. Missing optional fields never error;
// they simply fail to trigger their rule.
func ScoreOrder(in OrderInput, blacklisted bool, history []models.Order) Assessment {
	a := Assessment{Version: EngineVersion, Reasons: []string{}}
	if !models.IsCOD(in.PaymentMethod) {
		return a
	}

	add := func(points float64, reason string) {
		a.Score += points
		a.Reasons = append(a.Reasons, reason)
	}

	if blacklisted {
		add(pointsBlacklisted, "phone is on the blacklist")
	}

	switch {
	case in.Amount >= veryHighAmountThreshold:
		add(pointsVeryHighAmount, fmt.Sprintf("order amount %d exceeds %d", in.Amount, veryHighAmountThreshold))
	case in.Amount >= highAmountThreshold:
		add(pointsHighAmount, fmt.Sprintf("order amount %d exceeds %d", in.Amount, highAmountThreshold))
	}

	if fails := countPriorFails(history); fails > 0 {
		points := float64(fails * pointsPerPriorFail)
		if points > maxPriorFailPoints {
			points = maxPriorFailPoints
		}
		add(points, fmt.Sprintf("customer failed %d previous orders", fails))
	}

	if phone := strings.TrimSpace(in.Phone); phone != "" {
		if !phonePattern.MatchString(phone) {
			add(pointsInvalidPhone, "phone number format is invalid")
		} else if repeatedDigits(phone) {
			add(pointsRepeatedPhone, "phone number is a repeated digit sequence")
		}
	}

	if strings.TrimSpace(in.Address) == "" {
		add(pointsNoAddress, "no delivery address")
	}

	a.Score = Clamp(a.Score, 0, 100)
	a.Level = models.RiskLevelForScore(a.Score)
	return a
}

func countPriorFails(history []models.Order) int {
	n := 0
	for i := range history {
		if models.Classify(history[i].Status) == models.ClassCustomerFail {
			n++
		}
	}
	return n
}

// repeatedDigits reports whether every digit after the leading zero is
// the same, e.g. 0999999999.
func repeatedDigits(phone string) bool {
	rest := phone[1:]
	for i := 1; i < len(rest); i++ {
		if rest[i] != rest[0] {
			return false
		}
	}
	return len(rest) > 0
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
