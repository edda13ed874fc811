package risk

import (
	"testing"
	"time"

	"cod-dashboard/internal/models"

	"github.com/stretchr/testify/assert"
)

func floatPtr(v float64) *float64 { return &v }

func at(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func TestReplayBaseScoreDefaultsToFifty(t *testing.T) {
	history := []models.Order{
		{PaymentMethod: "COD", Status: models.StatusPendingReview, CreatedAt: at(1)},
	}

	record := ReplayCustomer("0900000001", history, nil)

	assert.Equal(t, 50.0, record.BaseRiskScore)
	assert.Equal(t, 50.0, record.CustomerRiskScore)
}

func TestReplayBaseScoreIsMeanOfCODScores(t *testing.T) {
	history := []models.Order{
		{PaymentMethod: "COD", RiskScore: floatPtr(20), Status: models.StatusPendingReview, CreatedAt: at(1)},
		{PaymentMethod: "COD", RiskScore: floatPtr(40), Status: models.StatusPendingReview, CreatedAt: at(2)},
		// Prepaid score must not enter the base.
		{PaymentMethod: "prepaid", RiskScore: floatPtr(100), Status: models.StatusPendingReview, CreatedAt: at(3)},
	}

	record := ReplayCustomer("0900000001", history, nil)

	assert.Equal(t, 30.0, record.BaseRiskScore)
}

func TestReplayDeltas(t *testing.T) {
	history := []models.Order{
		{PaymentMethod: "COD", RiskScore: floatPtr(50), Status: models.StatusCompleted,
			Amount: 500_000, CreatedAt: at(1)},
		{PaymentMethod: "COD", Status: models.StatusOrderPaid,
			Amount: 1_000_000, CreatedAt: at(2)},
		{PaymentMethod: "COD", Status: models.StatusCustomerCancelled, CreatedAt: at(3)},
		{PaymentMethod: "COD", Status: models.StatusDelivering, CreatedAt: at(4)},
	}

	record := ReplayCustomer("0900000001", history, nil)

	// 50 - 5 (success) - 10 (big success) + 20 (fail) + 0 = 55
	assert.Equal(t, 55.0, record.CustomerRiskScore)
	assert.Equal(t, models.RiskLevelMedium, record.CustomerRiskLevel)
}

func TestReplayBlacklistMultiplierDoublesFailure(t *testing.T) {
	blacklistedAt := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	history := []models.Order{
		{PaymentMethod: "COD", RiskScore: floatPtr(50), Status: models.StatusCustomerCancelled,
			CreatedAt: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
	}

	record := ReplayCustomer("0900000001", history, &blacklistedAt)

	// +20 doubled to +40 over the base of 50.
	assert.Equal(t, 90.0, record.CustomerRiskScore)
}

func TestReplayNoMultiplierWhenOrderPredatesBlacklist(t *testing.T) {
	blacklistedAt := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	history := []models.Order{
		{PaymentMethod: "COD", RiskScore: floatPtr(50), Status: models.StatusCustomerCancelled,
			CreatedAt: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
	}

	record := ReplayCustomer("0900000001", history, &blacklistedAt)

	assert.Equal(t, 70.0, record.CustomerRiskScore)
}

func TestReplayStrictlyBeforeComparison(t *testing.T) {
	ts := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	history := []models.Order{
		{PaymentMethod: "COD", RiskScore: floatPtr(50), Status: models.StatusCustomerCancelled,
			CreatedAt: ts},
	}

	// Blacklist entry at exactly the order's created_at: no multiplier.
	record := ReplayCustomer("0900000001", history, &ts)

	assert.Equal(t, 70.0, record.CustomerRiskScore)
}

func TestReplayRejectedOrderNeverDoubled(t *testing.T) {
	blacklistedAt := at(1)
	history := []models.Order{
		{PaymentMethod: "COD", RiskScore: floatPtr(50), Status: models.StatusOrderRejected,
			CreatedAt: at(2)},
	}

	record := ReplayCustomer("0900000001", history, &blacklistedAt)

	// The shop did reject the blacklisted customer: plain +20.
	assert.Equal(t, 70.0, record.CustomerRiskScore)
}

func TestReplayMultiplierDoublesRewardsToo(t *testing.T) {
	blacklistedAt := at(1)
	history := []models.Order{
		{PaymentMethod: "COD", RiskScore: floatPtr(50), Status: models.StatusCompleted,
			Amount: 2_000_000, CreatedAt: at(2)},
	}

	record := ReplayCustomer("0900000001", history, &blacklistedAt)

	// -10 doubled to -20: accepting a blacklisted customer's good
	// order is rewarded twice as much, as shipped.
	assert.Equal(t, 30.0, record.CustomerRiskScore)
}

func TestReplayClampsToBounds(t *testing.T) {
	blacklistedAt := at(1)
	history := make([]models.Order, 0, 50)
	for i := 0; i < 50; i++ {
		history = append(history, models.Order{
			PaymentMethod: "COD",
			Status:        models.StatusCustomerCancelled,
			CreatedAt:     at(2).Add(time.Duration(i) * time.Hour),
		})
	}

	record := ReplayCustomer("0900000001", history, &blacklistedAt)

	assert.Equal(t, 100.0, record.CustomerRiskScore)
	assert.Equal(t, models.RiskLevelHigh, record.CustomerRiskLevel)
}

func TestReplayIgnoresCallerOrdering(t *testing.T) {
	blacklistedAt := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	a := models.Order{PaymentMethod: "COD", RiskScore: floatPtr(50),
		Status: models.StatusCompleted, Amount: 2_000_000, CreatedAt: at(2)}
	b := models.Order{PaymentMethod: "COD",
		Status: models.StatusCustomerCancelled, CreatedAt: at(10)}

	forward := ReplayCustomer("0900000001", []models.Order{a, b}, &blacklistedAt)
	reversed := ReplayCustomer("0900000001", []models.Order{b, a}, &blacklistedAt)

	assert.Equal(t, forward.CustomerRiskScore, reversed.CustomerRiskScore)
}

func TestReplayDoesNotMutateInput(t *testing.T) {
	history := []models.Order{
		{PaymentMethod: "COD", Status: models.StatusCompleted, CreatedAt: at(3)},
		{PaymentMethod: "COD", Status: models.StatusCustomerCancelled, CreatedAt: at(1)},
	}
	snapshot := make([]models.Order, len(history))
	copy(snapshot, history)

	ReplayCustomer("0900000001", history, nil)

	assert.Equal(t, snapshot, history)
}

func TestBlacklistIndexKeepsEarliestEntry(t *testing.T) {
	entries := []models.BlacklistEntry{
		{Phone: "0900000001", CreatedAt: at(5)},
		{Phone: "0900000001", CreatedAt: at(2)},
		{Phone: "0900000001", CreatedAt: at(9)},
	}

	index := BlacklistIndex(entries)

	assert.Equal(t, at(2), index["0900000001"])
}

func TestBlacklistedAtAbsentPhone(t *testing.T) {
	assert.Nil(t, BlacklistedAt(map[string]time.Time{}, "0900000001"))
}
