package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cod-dashboard/internal/broker"
	"cod-dashboard/internal/models"
	"cod-dashboard/internal/redisclient"
	"cod-dashboard/internal/risk"
	"cod-dashboard/internal/store"
	"cod-dashboard/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderService handles order business logic
type OrderService struct {
	store          *store.Store
	redis          *redisclient.Client
	eventPublisher *broker.EventPublisher
	logger         *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(
	store *store.Store,
	redis *redisclient.Client,
	eventPublisher *broker.EventPublisher,
) *OrderService {
	return &OrderService{
		store:          store,
		redis:          redis,
		eventPublisher: eventPublisher,
		logger:         util.GetLogger(),
	}
}

// CreateOrderRequest represents a request to create an order
type CreateOrderRequest struct {
	UserID         int64      `json:"user_id" binding:"required"`
	Code           string     `json:"order_id,omitempty"`
	CustomerName   string     `json:"customer_name" binding:"required"`
	Phone          string     `json:"phone" binding:"required"`
	Address        string     `json:"address,omitempty"`
	Amount         int64      `json:"amount" binding:"required,min=1"`
	PaymentMethod  string     `json:"payment_method,omitempty"`
	DiscountAmount int64      `json:"discount_amount,omitempty"`
	ShippingFee    int64      `json:"shipping_fee,omitempty"`
	Channel        string     `json:"channel,omitempty"`
	Source         string     `json:"source,omitempty"`
	Province       string     `json:"province,omitempty"`
	District       string     `json:"district,omitempty"`
	Product        string     `json:"product,omitempty"`
	ProductID      *int64     `json:"product_id,omitempty"`
	OrderDate      *time.Time `json:"order_date,omitempty"`
	IdempotencyKey string     `json:"idempotency_key,omitempty"`
}

// CreateOrderResponse represents the response after creating an order
type CreateOrderResponse struct {
	OrderID   int64    `json:"order_id"`
	Code      string   `json:"code"`
	Status    string   `json:"status"`
	RiskScore *float64 `json:"risk_score,omitempty"`
	RiskLevel string   `json:"risk_level,omitempty"`
}

// CreateOrder creates a new order. COD orders are scored by the risk
// engine before insert; the score is set once at creation and never
// recomputed for the order itself.
func (s *OrderService) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*CreateOrderResponse, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.CreateOrder")
	defer span.End()

	if req.IdempotencyKey == "" {
		req.IdempotencyKey = uuid.New().String()
	}

	if code, err := s.redis.GetIdempotencyValue(ctx, req.IdempotencyKey); err == nil && code != "" {
		existing, err := s.store.GetOrderByCode(ctx, req.UserID, code)
		if err == nil {
			s.logger.Info("Duplicate order request detected",
				zap.String("idempotency_key", req.IdempotencyKey),
				zap.Int64("order_id", existing.ID))
			return &CreateOrderResponse{
				OrderID:   existing.ID,
				Code:      existing.Code,
				Status:    existing.Status,
				RiskScore: existing.RiskScore,
				RiskLevel: existing.RiskLevel,
			}, nil
		}
	}

	order := &models.Order{
		UserID:         req.UserID,
		Code:           req.Code,
		CustomerName:   req.CustomerName,
		Phone:          strings.TrimSpace(req.Phone),
		Address:        req.Address,
		Amount:         req.Amount,
		PaymentMethod:  models.NormalizePaymentMethod(req.PaymentMethod),
		Status:         models.StatusPendingReview,
		DiscountAmount: req.DiscountAmount,
		ShippingFee:    req.ShippingFee,
		Channel:        req.Channel,
		Source:         req.Source,
		Province:       req.Province,
		District:       req.District,
		Product:        req.Product,
		ProductID:      req.ProductID,
	}
	if req.OrderDate != nil {
		order.OrderDate = *req.OrderDate
	} else {
		order.OrderDate = time.Now()
	}
	if order.Code == "" {
		order.Code = generateOrderCode()
	}

	var assessment *risk.Assessment
	if models.IsCOD(order.PaymentMethod) {
		a, err := s.scoreOrder(ctx, order)
		if err != nil {
			util.OrdersFailedTotal.WithLabelValues("risk_scoring").Inc()
			return nil, fmt.Errorf("failed to score order: %w", err)
		}
		assessment = a
		order.RiskScore = &a.Score
		order.RiskLevel = a.Level
	}

	if err := s.store.CreateOrder(ctx, order); err != nil {
		util.OrdersFailedTotal.WithLabelValues("db_error").Inc()
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	util.OrdersCreatedTotal.Inc()
	s.logger.Info("Order created",
		zap.Int64("order_id", order.ID),
		zap.String("code", order.Code),
		zap.String("payment_method", order.PaymentMethod))

	if err := s.redis.SetIdempotencyKey(ctx, req.IdempotencyKey, order.Code, 24*time.Hour); err != nil {
		s.logger.Warn("Failed to store idempotency key", zap.Error(err))
	}
	s.invalidateDashboard(ctx, order.UserID)

	event := &models.OrderCreatedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderCreated,
			Timestamp: time.Now(),
		},
		OrderID:       order.ID,
		UserID:        order.UserID,
		Code:          order.Code,
		Phone:         order.Phone,
		Amount:        order.Amount,
		PaymentMethod: order.PaymentMethod,
		Status:        order.Status,
	}
	if err := s.eventPublisher.PublishOrderCreated(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderCreated event", zap.Error(err))
	}

	if assessment != nil {
		scoredEvent := &models.OrderRiskScoredEvent{
			BaseEvent: models.BaseEvent{
				EventID:   uuid.New().String(),
				EventType: models.EventTypeOrderRiskScored,
				Timestamp: time.Now(),
			},
			OrderID:   order.ID,
			UserID:    order.UserID,
			Phone:     order.Phone,
			RiskScore: assessment.Score,
			RiskLevel: assessment.Level,
			Reasons:   assessment.Reasons,
		}
		if err := s.eventPublisher.PublishOrderRiskScored(ctx, scoredEvent); err != nil {
			s.logger.Error("Failed to publish OrderRiskScored event", zap.Error(err))
		}
	}

	return &CreateOrderResponse{
		OrderID:   order.ID,
		Code:      order.Code,
		Status:    order.Status,
		RiskScore: order.RiskScore,
		RiskLevel: order.RiskLevel,
	}, nil
}

// scoreOrder runs the risk engine over the candidate order, the user's
// blacklist and the phone's past orders.
func (s *OrderService) scoreOrder(ctx context.Context, order *models.Order) (*risk.Assessment, error) {
	blacklisted, err := s.store.IsBlacklisted(ctx, order.UserID, order.Phone)
	if err != nil {
		return nil, err
	}

	history, err := s.store.ListOrdersByPhone(ctx, order.UserID, order.Phone)
	if err != nil {
		return nil, err
	}

	a := risk.ScoreOrder(risk.OrderInput{
		PaymentMethod: order.PaymentMethod,
		Amount:        order.Amount,
		Phone:         order.Phone,
		Product:       order.Product,
		Address:       order.Address,
	}, blacklisted, history)

	util.RiskScoresAssigned.Observe(a.Score)
	if a.Level == models.RiskLevelHigh {
		util.HighRiskOrdersTotal.Inc()
	}
	return &a, nil
}

// GetOrder retrieves an order by ID, scoped to a user
func (s *OrderService) GetOrder(ctx context.Context, userID, orderID int64) (*models.Order, error) {
	order, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, fmt.Errorf("order not found: %d", orderID)
	}
	return order, nil
}

// ListOrders retrieves a user's orders for a resolved date range
func (s *OrderService) ListOrders(ctx context.Context, userID int64, from, to time.Time) ([]models.Order, error) {
	return s.store.ListOrdersForRange(ctx, userID, from, to)
}

// UpdateOrderRequest carries the editable order fields
type UpdateOrderRequest struct {
	Code                 *string    `json:"order_id,omitempty"`
	CustomerName         *string    `json:"customer_name,omitempty"`
	Phone                *string    `json:"phone,omitempty"`
	Address              *string    `json:"address,omitempty"`
	Amount               *int64     `json:"amount,omitempty"`
	PaymentMethod        *string    `json:"payment_method,omitempty"`
	DiscountAmount       *int64     `json:"discount_amount,omitempty"`
	ShippingFee          *int64     `json:"shipping_fee,omitempty"`
	Channel              *string    `json:"channel,omitempty"`
	Source               *string    `json:"source,omitempty"`
	Province             *string    `json:"province,omitempty"`
	District             *string    `json:"district,omitempty"`
	Product              *string    `json:"product,omitempty"`
	ProductID            *int64     `json:"product_id,omitempty"`
	OrderDate            *time.Time `json:"order_date,omitempty"`
	RefundedAmount       *int64     `json:"refunded_amount,omitempty"`
	CustomerShippingPaid *int64     `json:"customer_shipping_paid,omitempty"`
	SellerShippingPaid   *int64     `json:"seller_shipping_paid,omitempty"`
}

// UpdateOrder applies a partial edit to an order. The risk score is
// immutable after creation; edits never touch it.
func (s *OrderService) UpdateOrder(ctx context.Context, userID, orderID int64, req *UpdateOrderRequest) (*models.Order, error) {
	order, err := s.GetOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}

	applyString := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	applyInt := func(dst *int64, src *int64) {
		if src != nil {
			*dst = *src
		}
	}

	applyString(&order.Code, req.Code)
	applyString(&order.CustomerName, req.CustomerName)
	applyString(&order.Phone, req.Phone)
	applyString(&order.Address, req.Address)
	applyInt(&order.Amount, req.Amount)
	applyInt(&order.DiscountAmount, req.DiscountAmount)
	applyInt(&order.ShippingFee, req.ShippingFee)
	applyString(&order.Channel, req.Channel)
	applyString(&order.Source, req.Source)
	applyString(&order.Province, req.Province)
	applyString(&order.District, req.District)
	applyString(&order.Product, req.Product)
	applyInt(&order.RefundedAmount, req.RefundedAmount)
	applyInt(&order.CustomerShippingPaid, req.CustomerShippingPaid)
	applyInt(&order.SellerShippingPaid, req.SellerShippingPaid)
	if req.PaymentMethod != nil {
		order.PaymentMethod = models.NormalizePaymentMethod(*req.PaymentMethod)
	}
	if req.ProductID != nil {
		order.ProductID = req.ProductID
	}
	if req.OrderDate != nil {
		order.OrderDate = *req.OrderDate
	}

	if err := s.store.UpdateOrder(ctx, order); err != nil {
		util.OrdersFailedTotal.WithLabelValues("db_error").Inc()
		return nil, fmt.Errorf("failed to update order: %w", err)
	}

	s.invalidateDashboard(ctx, userID)
	return order, nil
}

// DeleteOrder removes an order
func (s *OrderService) DeleteOrder(ctx context.Context, userID, orderID int64) error {
	if err := s.store.DeleteOrder(ctx, userID, orderID); err != nil {
		return err
	}
	s.invalidateDashboard(ctx, userID)
	return nil
}

// ApplyStatus advances an order through its lifecycle. The store stamps
// the matching timestamp exactly once; the transition is published so
// the risk alert worker sees customer failures.
func (s *OrderService) ApplyStatus(ctx context.Context, userID, orderID int64, status string) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.ApplyStatus")
	defer span.End()

	if !models.IsValidStatus(status) {
		return nil, fmt.Errorf("unknown order status: %s", status)
	}

	order, err := s.GetOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	fromStatus := order.Status

	if err := s.store.UpdateOrderStatus(ctx, orderID, status); err != nil {
		util.OrdersFailedTotal.WithLabelValues("db_error").Inc()
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	util.OrderStatusTransitionsTotal.WithLabelValues(status).Inc()
	s.logger.Info("Order status changed",
		zap.Int64("order_id", orderID),
		zap.String("from", fromStatus),
		zap.String("to", status))

	s.invalidateDashboard(ctx, userID)

	event := &models.OrderStatusChangedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderStatusChanged,
			Timestamp: time.Now(),
		},
		OrderID:    orderID,
		UserID:     userID,
		Phone:      order.Phone,
		FromStatus: fromStatus,
		ToStatus:   status,
	}
	if err := s.eventPublisher.PublishOrderStatusChanged(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderStatusChanged event", zap.Error(err))
	}

	return s.store.GetOrderByID(ctx, orderID)
}

func (s *OrderService) invalidateDashboard(ctx context.Context, userID int64) {
	if err := s.redis.InvalidateDashboard(ctx, userID); err != nil {
		s.logger.Warn("Failed to invalidate dashboard cache",
			zap.Int64("user_id", userID),
			zap.Error(err))
	}
}

func generateOrderCode() string {
	return "ORD-" + strings.ToUpper(uuid.New().String()[:8])
}
