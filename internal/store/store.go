package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"cod-dashboard/internal/models"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

type Store struct {
	db *sqlx.DB
}

// NewStore creates a new database store
func NewStore(databaseURL string) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// GetDB returns the underlying database connection
func (s *Store) GetDB() *sqlx.DB {
	return s.db
}

// GetBlacklist retrieves all blacklist entries for a user, unfiltered by
// date. The risk replay needs the full list with creation timestamps.
func (s *Store) GetBlacklist(ctx context.Context, userID int64) ([]models.BlacklistEntry, error) {
	var entries []models.BlacklistEntry
	err := s.db.SelectContext(ctx, &entries,
		"SELECT * FROM blacklist WHERE user_id = $1 ORDER BY created_at", userID)
	return entries, err
}

// AddBlacklistEntry adds a phone to a user's blacklist
func (s *Store) AddBlacklistEntry(ctx context.Context, entry *models.BlacklistEntry) error {
	query := `
		INSERT INTO blacklist (user_id, phone, reason)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	return s.db.GetContext(ctx, entry, query, entry.UserID, entry.Phone, entry.Reason)
}

// RemoveBlacklistEntry removes a phone from a user's blacklist
func (s *Store) RemoveBlacklistEntry(ctx context.Context, userID int64, phone string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM blacklist WHERE user_id = $1 AND phone = $2", userID, phone)
	return err
}

// IsBlacklisted checks whether a phone is on a user's blacklist
func (s *Store) IsBlacklisted(ctx context.Context, userID int64, phone string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM blacklist WHERE user_id = $1 AND phone = $2)",
		userID, phone)
	return exists, err
}

// GetProvinceRevenue returns paid revenue per province, pre-aggregated
// by the database, ordered highest first.
func (s *Store) GetProvinceRevenue(ctx context.Context, userID int64) ([]models.ProvinceRevenue, error) {
	var rows []models.ProvinceRevenue
	err := s.db.SelectContext(ctx, &rows, `
		SELECT province, COALESCE(SUM(amount), 0) AS total_revenue
		FROM orders
		WHERE user_id = $1 AND paid_at IS NOT NULL AND province <> ''
		GROUP BY province
		ORDER BY total_revenue DESC`, userID)
	return rows, err
}

// GetEarliestOrderDates returns, per phone, the earliest order_date across
// all time for a user. Used to classify customers as new vs returning.
func (s *Store) GetEarliestOrderDates(ctx context.Context, userID int64) (map[string]time.Time, error) {
	rows, err := s.db.QueryxContext(ctx, `
		SELECT phone, MIN(order_date) AS first_order
		FROM orders
		WHERE user_id = $1 AND phone <> ''
		GROUP BY phone`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	earliest := make(map[string]time.Time)
	for rows.Next() {
		var phone string
		var first time.Time
		if err := rows.Scan(&phone, &first); err != nil {
			return nil, err
		}
		earliest[phone] = first
	}
	return earliest, rows.Err()
}

// IsEventProcessed checks if an event has been processed
func (s *Store) IsEventProcessed(ctx context.Context, eventID string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM processed_events WHERE event_id = $1)", eventID)
	return exists, err
}

// MarkEventProcessed marks an event as processed
func (s *Store) MarkEventProcessed(ctx context.Context, eventID, eventType string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO processed_events (event_id, event_type) VALUES ($1, $2) ON CONFLICT (event_id) DO NOTHING",
		eventID, eventType)
	return err
}

// notFound wraps sql.ErrNoRows into a readable error
func notFound(err error, what string, key interface{}) error {
	if err == sql.ErrNoRows {
		return fmt.Errorf("%s not found: %v", what, key)
	}
	return err
}
