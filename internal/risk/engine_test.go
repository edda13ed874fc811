package risk

import (
	"testing"

	"cod-dashboard/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestScoreOrderDeterministic(t *testing.T) {
	in := OrderInput{
		PaymentMethod: "COD",
		Amount:        1_500_000,
		Phone:         "0912345678",
		Address:       "12 Nguyễn Trãi, Hà Nội",
	}
	history := []models.Order{
		{Status: models.StatusCustomerCancelled},
	}

	first := ScoreOrder(in, false, history)
	second := ScoreOrder(in, false, history)

	assert.Equal(t, first, second)
}

func TestScoreOrderNonCODNotScored(t *testing.T) {
	a := ScoreOrder(OrderInput{PaymentMethod: "bank_transfer", Amount: 10_000_000}, true, nil)

	assert.Equal(t, float64(0), a.Score)
	assert.Empty(t, a.Reasons)
	assert.Equal(t, models.RiskLevelNone, a.Level)
}

func TestScoreOrderClampedAtHundred(t *testing.T) {
	history := []models.Order{
		{Status: models.StatusCustomerCancelled},
		{Status: models.StatusCustomerUnreachable},
		{Status: models.StatusOrderRejected},
		{Status: models.StatusCustomerCancelled},
	}
	// Every rule fires: blacklist, very high amount, fail history,
	// invalid phone, missing address.
	a := ScoreOrder(OrderInput{
		PaymentMethod: "COD",
		Amount:        10_000_000,
		Phone:         "123",
	}, true, history)

	assert.Equal(t, float64(100), a.Score)
	assert.Equal(t, models.RiskLevelHigh, a.Level)
}

func TestScoreOrderReasonsNonEmptyWhenPositive(t *testing.T) {
	a := ScoreOrder(OrderInput{
		PaymentMethod: "COD",
		Amount:        2_000_000,
		Phone:         "0912345678",
		Address:       "somewhere",
	}, false, nil)

	assert.Greater(t, a.Score, float64(0))
	assert.NotEmpty(t, a.Reasons)
	assert.Equal(t, EngineVersion, a.Version)
}

func TestScoreOrderMissingOptionalFieldsDoNotError(t *testing.T) {
	// No phone, no address, no product: rules simply fail to trigger
	// their phone checks, nothing panics.
	assert.NotPanics(t, func() {
		a := ScoreOrder(OrderInput{PaymentMethod: "", Amount: 50000}, false, nil)
		assert.GreaterOrEqual(t, a.Score, float64(0))
		assert.LessOrEqual(t, a.Score, float64(100))
	})
}

func TestScoreOrderBlacklistDominates(t *testing.T) {
	clean := ScoreOrder(OrderInput{
		PaymentMethod: "COD", Amount: 50000, Phone: "0912345678", Address: "x",
	}, false, nil)
	flagged := ScoreOrder(OrderInput{
		PaymentMethod: "COD", Amount: 50000, Phone: "0912345678", Address: "x",
	}, true, nil)

	assert.Greater(t, flagged.Score, clean.Score)
	assert.Contains(t, flagged.Reasons, "phone is on the blacklist")
}

func TestScoreOrderPriorFailPointsCapped(t *testing.T) {
	many := make([]models.Order, 10)
	for i := range many {
		many[i] = models.Order{Status: models.StatusCustomerCancelled}
	}

	few := ScoreOrder(OrderInput{PaymentMethod: "COD", Amount: 1, Phone: "0912345678", Address: "x"},
		false, many[:3])
	lots := ScoreOrder(OrderInput{PaymentMethod: "COD", Amount: 1, Phone: "0912345678", Address: "x"},
		false, many)

	assert.Equal(t, few.Score, lots.Score)
}

func TestScoreOrderRepeatedDigitPhone(t *testing.T) {
	a := ScoreOrder(OrderInput{
		PaymentMethod: "COD", Amount: 1, Phone: "0999999999", Address: "x",
	}, false, nil)

	assert.Contains(t, a.Reasons, "phone number is a repeated digit sequence")
}
