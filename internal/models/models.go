package models

import (
	"strings"
	"time"
)

// Order represents a customer order. Monetary fields are VND, integer
// denominated. Lifecycle timestamps are set exactly once: downstream
// "has this order ever been X" checks consult the timestamp, never the
// current status, because status can advance past that state.
type Order struct {
	ID                   int64      `db:"id" json:"id"`
	UserID               int64      `db:"user_id" json:"user_id"`
	Code                 string     `db:"order_id" json:"order_id"`
	CustomerName         string     `db:"customer_name" json:"customer_name"`
	Phone                string     `db:"phone" json:"phone"`
	Address              string     `db:"address" json:"address"`
	Amount               int64      `db:"amount" json:"amount"`
	PaymentMethod        string     `db:"payment_method" json:"payment_method"`
	Status               string     `db:"status" json:"status"`
	RiskScore            *float64   `db:"risk_score" json:"risk_score,omitempty"`
	RiskLevel            string     `db:"risk_level" json:"risk_level,omitempty"`
	DiscountAmount       int64      `db:"discount_amount" json:"discount_amount"`
	ShippingFee          int64      `db:"shipping_fee" json:"shipping_fee"`
	Channel              string     `db:"channel" json:"channel"`
	Source               string     `db:"source" json:"source"`
	OrderDate            time.Time  `db:"order_date" json:"order_date"`
	CreatedAt            time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time  `db:"updated_at" json:"updated_at"`
	RefundedAmount       int64      `db:"refunded_amount" json:"refunded_amount"`
	CustomerShippingPaid int64      `db:"customer_shipping_paid" json:"customer_shipping_paid"`
	SellerShippingPaid   int64      `db:"seller_shipping_paid" json:"seller_shipping_paid"`
	PaidAt               *time.Time `db:"paid_at" json:"paid_at,omitempty"`
	CustomerConfirmedAt  *time.Time `db:"customer_confirmed_at" json:"customer_confirmed_at,omitempty"`
	ConfirmationSentAt   *time.Time `db:"confirmation_sent_at" json:"confirmation_sent_at,omitempty"`
	CancelledAt          *time.Time `db:"cancelled_at" json:"cancelled_at,omitempty"`
	ShippedAt            *time.Time `db:"shipped_at" json:"shipped_at,omitempty"`
	CompletedAt          *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	Province             string     `db:"province" json:"province"`
	District             string     `db:"district" json:"district"`
	Product              string     `db:"product" json:"product"`
	ProductID            *int64     `db:"product_id" json:"product_id,omitempty"`
}

// BlacklistEntry flags a phone number as high-risk for one user.
type BlacklistEntry struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	Phone     string    `db:"phone" json:"phone"`
	Reason    string    `db:"reason" json:"reason,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ProvinceRevenue is the store's pre-aggregated paid revenue per province.
type ProvinceRevenue struct {
	Province     string `db:"province" json:"province"`
	TotalRevenue int64  `db:"total_revenue" json:"total_revenue"`
}

// Order statuses
const (
	StatusPendingReview        = "PENDING_REVIEW"
	StatusVerificationRequired = "VERIFICATION_REQUIRED"
	StatusConfirmationSent     = "ORDER_CONFIRMATION_SENT"
	StatusCustomerConfirmed    = "CUSTOMER_CONFIRMED"
	StatusCustomerCancelled    = "CUSTOMER_CANCELLED"
	StatusCustomerUnreachable  = "CUSTOMER_UNREACHABLE"
	StatusOrderPaid            = "ORDER_PAID"
	StatusOrderRejected        = "ORDER_REJECTED"
	StatusDelivering           = "DELIVERING"
	StatusCompleted            = "COMPLETED"
	StatusReturned             = "RETURNED"
	StatusExchanged            = "EXCHANGED"
)

var allStatuses = map[string]bool{
	StatusPendingReview:        true,
	StatusVerificationRequired: true,
	StatusConfirmationSent:     true,
	StatusCustomerConfirmed:    true,
	StatusCustomerCancelled:    true,
	StatusCustomerUnreachable:  true,
	StatusOrderPaid:            true,
	StatusOrderRejected:        true,
	StatusDelivering:           true,
	StatusCompleted:            true,
	StatusReturned:             true,
	StatusExchanged:            true,
}

// IsValidStatus reports whether s is a known order status.
func IsValidStatus(s string) bool {
	return allStatuses[s]
}

// StatusClass is the canonical classification of an order status.
// Every reducer and the risk replay consult this single mapping so the
// success/fail/pending sets cannot drift apart.
type StatusClass int

const (
	ClassOther StatusClass = iota
	ClassSuccess
	ClassCustomerFail
	ClassPending
)

// Classify maps a status to its class. Unknown statuses are ClassOther.
func Classify(status string) StatusClass {
	switch status {
	case StatusOrderPaid, StatusCompleted:
		return ClassSuccess
	case StatusCustomerCancelled, StatusCustomerUnreachable, StatusOrderRejected:
		return ClassCustomerFail
	case StatusPendingReview, StatusVerificationRequired, StatusConfirmationSent:
		return ClassPending
	default:
		return ClassOther
	}
}

// IsCOD reports whether a payment method means cash-on-delivery.
// Blank is treated as COD (the default for this business).
func IsCOD(paymentMethod string) bool {
	pm := strings.TrimSpace(paymentMethod)
	return pm == "" || strings.EqualFold(pm, "COD")
}

// Payment methods (normalized)
const (
	PaymentMethodCOD     = "COD"
	PaymentMethodPrepaid = "prepaid"
)

// NormalizePaymentMethod canonicalizes a payment method to "COD" or
// "prepaid" for storage.
func NormalizePaymentMethod(paymentMethod string) string {
	if IsCOD(paymentMethod) {
		return PaymentMethodCOD
	}
	return PaymentMethodPrepaid
}

// Risk levels
const (
	RiskLevelNone   = ""
	RiskLevelLow    = "low"
	RiskLevelMedium = "medium"
	RiskLevelHigh   = "high"
)

// RiskLevelForScore maps a score to its tier: low <=30, medium <=70,
// high above.
func RiskLevelForScore(score float64) string {
	switch {
	case score <= 30:
		return RiskLevelLow
	case score <= 70:
		return RiskLevelMedium
	default:
		return RiskLevelHigh
	}
}

// CustomerRiskRecord is derived per phone by the risk replay. It is a
// pure function of order history and is never persisted.
type CustomerRiskRecord struct {
	Phone             string  `json:"phone"`
	OrderCount        int     `json:"order_count"`
	BaseRiskScore     float64 `json:"base_risk_score"`
	CustomerRiskScore float64 `json:"customer_risk_score"`
	CustomerRiskLevel string  `json:"customer_risk_level"`
	Blacklisted       bool    `json:"blacklisted"`
}
