package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		status string
		want   StatusClass
	}{
		{StatusOrderPaid, ClassSuccess},
		{StatusCompleted, ClassSuccess},
		{StatusCustomerCancelled, ClassCustomerFail},
		{StatusCustomerUnreachable, ClassCustomerFail},
		{StatusOrderRejected, ClassCustomerFail},
		{StatusPendingReview, ClassPending},
		{StatusVerificationRequired, ClassPending},
		{StatusConfirmationSent, ClassPending},
		{StatusCustomerConfirmed, ClassOther},
		{StatusDelivering, ClassOther},
		{StatusReturned, ClassOther},
		{StatusExchanged, ClassOther},
		{"SOMETHING_ELSE", ClassOther},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, Classify(tc.status), "status %s", tc.status)
	}
}

func TestIsCOD(t *testing.T) {
	assert.True(t, IsCOD(""))
	assert.True(t, IsCOD("  "))
	assert.True(t, IsCOD("COD"))
	assert.True(t, IsCOD("cod"))
	assert.True(t, IsCOD("CoD"))
	assert.False(t, IsCOD("bank_transfer"))
	assert.False(t, IsCOD("momo"))
}

func TestNormalizePaymentMethod(t *testing.T) {
	assert.Equal(t, PaymentMethodCOD, NormalizePaymentMethod(""))
	assert.Equal(t, PaymentMethodCOD, NormalizePaymentMethod("cod"))
	assert.Equal(t, PaymentMethodPrepaid, NormalizePaymentMethod("momo"))
}

func TestRiskLevelForScoreThresholds(t *testing.T) {
	assert.Equal(t, RiskLevelLow, RiskLevelForScore(0))
	assert.Equal(t, RiskLevelLow, RiskLevelForScore(30))
	assert.Equal(t, RiskLevelMedium, RiskLevelForScore(30.1))
	assert.Equal(t, RiskLevelMedium, RiskLevelForScore(70))
	assert.Equal(t, RiskLevelHigh, RiskLevelForScore(70.1))
	assert.Equal(t, RiskLevelHigh, RiskLevelForScore(100))
}

func TestRiskLevelMonotonic(t *testing.T) {
	rank := map[string]int{RiskLevelLow: 0, RiskLevelMedium: 1, RiskLevelHigh: 2}

	prev := 0
	for score := 0.0; score <= 100; score += 0.5 {
		cur := rank[RiskLevelForScore(score)]
		assert.GreaterOrEqual(t, cur, prev, "score %f", score)
		prev = cur
	}
}

func TestIsValidStatus(t *testing.T) {
	assert.True(t, IsValidStatus(StatusOrderPaid))
	assert.True(t, IsValidStatus(StatusExchanged))
	assert.False(t, IsValidStatus("PAID"))
	assert.False(t, IsValidStatus(""))
}
