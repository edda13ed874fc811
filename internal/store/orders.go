package store

import (
	"context"
	"fmt"
	"time"

	"cod-dashboard/internal/models"
)

// dashboardProjection is the fixed column set the analytics layer reads.
const dashboardProjection = `
	id, user_id, order_id, customer_name, phone, address, amount,
	payment_method, status, risk_score, risk_level, discount_amount,
	shipping_fee, channel, source, order_date, created_at,
	refunded_amount, customer_shipping_paid, seller_shipping_paid,
	paid_at, customer_confirmed_at, province, product`

// CreateOrder creates a new order
func (s *Store) CreateOrder(ctx context.Context, order *models.Order) error {
	query := `
		INSERT INTO orders (
			user_id, order_id, customer_name, phone, address, amount,
			payment_method, status, risk_score, risk_level,
			discount_amount, shipping_fee, channel, source, order_date,
			province, district, product, product_id
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18, $19
		)
		RETURNING id, created_at, updated_at`

	return s.db.GetContext(ctx, order, query,
		order.UserID, order.Code, order.CustomerName, order.Phone, order.Address,
		order.Amount, order.PaymentMethod, order.Status, order.RiskScore,
		order.RiskLevel, order.DiscountAmount, order.ShippingFee, order.Channel,
		order.Source, order.OrderDate, order.Province, order.District,
		order.Product, order.ProductID)
}

// GetOrderByID retrieves an order by ID
func (s *Store) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order, "SELECT * FROM orders WHERE id = $1", id)
	if err != nil {
		return nil, notFound(err, "order", id)
	}
	return &order, nil
}

// GetOrderByCode retrieves an order by its human-facing code
func (s *Store) GetOrderByCode(ctx context.Context, userID int64, code string) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order,
		"SELECT * FROM orders WHERE user_id = $1 AND order_id = $2", userID, code)
	if err != nil {
		return nil, notFound(err, "order", code)
	}
	return &order, nil
}

// ListOrdersForRange retrieves a user's orders with order_date inclusive
// between from and to, with the fixed dashboard projection.
func (s *Store) ListOrdersForRange(ctx context.Context, userID int64, from, to time.Time) ([]models.Order, error) {
	var orders []models.Order
	query := fmt.Sprintf(`
		SELECT %s FROM orders
		WHERE user_id = $1 AND order_date >= $2 AND order_date <= $3
		ORDER BY order_date`, dashboardProjection)
	err := s.db.SelectContext(ctx, &orders, query, userID, from, to)
	return orders, err
}

// ListOrdersByUser retrieves all of a user's orders, oldest first.
// The customer risk replay needs full history, not a date slice.
func (s *Store) ListOrdersByUser(ctx context.Context, userID int64) ([]models.Order, error) {
	var orders []models.Order
	query := fmt.Sprintf(`
		SELECT %s FROM orders
		WHERE user_id = $1
		ORDER BY created_at`, dashboardProjection)
	err := s.db.SelectContext(ctx, &orders, query, userID)
	return orders, err
}

// ListOrdersByPhone retrieves all orders for one phone across all time
func (s *Store) ListOrdersByPhone(ctx context.Context, userID int64, phone string) ([]models.Order, error) {
	var orders []models.Order
	query := fmt.Sprintf(`
		SELECT %s FROM orders
		WHERE user_id = $1 AND phone = $2
		ORDER BY created_at`, dashboardProjection)
	err := s.db.SelectContext(ctx, &orders, query, userID, phone)
	return orders, err
}

// UpdateOrder updates the mutable fields of an order
func (s *Store) UpdateOrder(ctx context.Context, order *models.Order) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE orders SET
			order_id = $1, customer_name = $2, phone = $3, address = $4,
			amount = $5, payment_method = $6, discount_amount = $7,
			shipping_fee = $8, channel = $9, source = $10, order_date = $11,
			province = $12, district = $13, product = $14, product_id = $15,
			refunded_amount = $16, customer_shipping_paid = $17,
			seller_shipping_paid = $18, updated_at = NOW()
		WHERE id = $19`,
		order.Code, order.CustomerName, order.Phone, order.Address,
		order.Amount, order.PaymentMethod, order.DiscountAmount,
		order.ShippingFee, order.Channel, order.Source, order.OrderDate,
		order.Province, order.District, order.Product, order.ProductID,
		order.RefundedAmount, order.CustomerShippingPaid,
		order.SellerShippingPaid, order.ID)
	return err
}

// DeleteOrder removes an order
func (s *Store) DeleteOrder(ctx context.Context, userID, orderID int64) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM orders WHERE id = $1 AND user_id = $2", orderID, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("order not found: %d", orderID)
	}
	return nil
}

// lifecycleColumns maps a status to the timestamp column it stamps.
var lifecycleColumns = map[string]string{
	models.StatusConfirmationSent:    "confirmation_sent_at",
	models.StatusCustomerConfirmed:   "customer_confirmed_at",
	models.StatusCustomerCancelled:   "cancelled_at",
	models.StatusCustomerUnreachable: "cancelled_at",
	models.StatusOrderRejected:       "cancelled_at",
	models.StatusOrderPaid:           "paid_at",
	models.StatusDelivering:          "shipped_at",
	models.StatusCompleted:           "completed_at",
}

// UpdateOrderStatus advances an order's status and stamps the matching
// lifecycle timestamp. COALESCE keeps a timestamp at its first value:
// once set it is never reset, even if the status passes through again.
func (s *Store) UpdateOrderStatus(ctx context.Context, orderID int64, status string) error {
	col, ok := lifecycleColumns[status]
	if !ok {
		_, err := s.db.ExecContext(ctx,
			"UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2",
			status, orderID)
		return err
	}

	query := fmt.Sprintf(
		"UPDATE orders SET status = $1, %s = COALESCE(%s, NOW()), updated_at = NOW() WHERE id = $2",
		col, col)
	_, err := s.db.ExecContext(ctx, query, status, orderID)
	return err
}
