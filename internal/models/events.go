package models

import "time"

// Event types
const (
	EventTypeOrderCreated       = "ORDER_CREATED"
	EventTypeOrderStatusChanged = "ORDER_STATUS_CHANGED"
	EventTypeOrderRiskScored    = "ORDER_RISK_SCORED"
	EventTypeCustomerRiskAlert  = "CUSTOMER_RISK_ALERT"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderCreatedEvent published when an order is created
type OrderCreatedEvent struct {
	BaseEvent
	OrderID       int64  `json:"order_id"`
	UserID        int64  `json:"user_id"`
	Code          string `json:"code"`
	Phone         string `json:"phone"`
	Amount        int64  `json:"amount"`
	PaymentMethod string `json:"payment_method"`
	Status        string `json:"status"`
}

// OrderStatusChangedEvent published on every lifecycle transition
type OrderStatusChangedEvent struct {
	BaseEvent
	OrderID    int64  `json:"order_id"`
	UserID     int64  `json:"user_id"`
	Phone      string `json:"phone"`
	FromStatus string `json:"from_status"`
	ToStatus   string `json:"to_status"`
}

// OrderRiskScoredEvent published when the risk engine scores a COD order
type OrderRiskScoredEvent struct {
	BaseEvent
	OrderID   int64    `json:"order_id"`
	UserID    int64    `json:"user_id"`
	Phone     string   `json:"phone"`
	RiskScore float64  `json:"risk_score"`
	RiskLevel string   `json:"risk_level"`
	Reasons   []string `json:"reasons"`
}

// CustomerRiskAlertEvent published when a replayed customer score
// crosses into the high tier
type CustomerRiskAlertEvent struct {
	BaseEvent
	UserID            int64   `json:"user_id"`
	Phone             string  `json:"phone"`
	CustomerRiskScore float64 `json:"customer_risk_score"`
	CustomerRiskLevel string  `json:"customer_risk_level"`
	TriggerOrderID    int64   `json:"trigger_order_id"`
}
