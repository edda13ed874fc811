package service

import (
	"context"
	"fmt"
	"sort"

	"cod-dashboard/internal/models"
	"cod-dashboard/internal/risk"
	"cod-dashboard/internal/store"
	"cod-dashboard/internal/util"

	"go.uber.org/zap"
)

// CustomerService derives per-customer risk records and manages the
// blacklist. Risk records are recomputed from full order history on
// every call; they are never stored.
type CustomerService struct {
	store  *store.Store
	logger *zap.Logger
}

// NewCustomerService creates a new customer service
func NewCustomerService(store *store.Store) *CustomerService {
	return &CustomerService{
		store:  store,
		logger: util.GetLogger(),
	}
}

// ListCustomerRisk replays every customer of a user, returning records
// sorted by risk score, highest first.
func (s *CustomerService) ListCustomerRisk(ctx context.Context, userID int64) ([]models.CustomerRiskRecord, error) {
	ctx, span := util.StartSpan(ctx, "CustomerService.ListCustomerRisk")
	defer span.End()

	history, err := s.store.ListOrdersByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order history: %w", err)
	}

	blacklist, err := s.store.GetBlacklist(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load blacklist: %w", err)
	}
	blacklistIndex := risk.BlacklistIndex(blacklist)

	byPhone := make(map[string][]models.Order)
	phones := make([]string, 0)
	for i := range history {
		o := history[i]
		if o.Phone == "" {
			continue
		}
		if _, ok := byPhone[o.Phone]; !ok {
			phones = append(phones, o.Phone)
		}
		byPhone[o.Phone] = append(byPhone[o.Phone], o)
	}

	records := make([]models.CustomerRiskRecord, 0, len(phones))
	for _, phone := range phones {
		record := risk.ReplayCustomer(phone, byPhone[phone], risk.BlacklistedAt(blacklistIndex, phone))
		records = append(records, record)
		util.CustomerRiskReplaysTotal.Inc()
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CustomerRiskScore > records[j].CustomerRiskScore
	})
	return records, nil
}

// GetCustomerRisk replays a single phone's history
func (s *CustomerService) GetCustomerRisk(ctx context.Context, userID int64, phone string) (*models.CustomerRiskRecord, error) {
	ctx, span := util.StartSpan(ctx, "CustomerService.GetCustomerRisk")
	defer span.End()

	history, err := s.store.ListOrdersByPhone(ctx, userID, phone)
	if err != nil {
		return nil, fmt.Errorf("failed to load orders for phone: %w", err)
	}

	blacklist, err := s.store.GetBlacklist(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load blacklist: %w", err)
	}

	record := risk.ReplayCustomer(phone, history,
		risk.BlacklistedAt(risk.BlacklistIndex(blacklist), phone))
	util.CustomerRiskReplaysTotal.Inc()
	return &record, nil
}

// Blacklist adds a phone to a user's blacklist
func (s *CustomerService) Blacklist(ctx context.Context, userID int64, phone, reason string) (*models.BlacklistEntry, error) {
	entry := &models.BlacklistEntry{
		UserID: userID,
		Phone:  phone,
		Reason: reason,
	}
	if err := s.store.AddBlacklistEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to blacklist phone: %w", err)
	}

	s.logger.Info("Phone blacklisted",
		zap.Int64("user_id", userID),
		zap.String("phone", phone))
	return entry, nil
}

// Unblacklist removes a phone from a user's blacklist
func (s *CustomerService) Unblacklist(ctx context.Context, userID int64, phone string) error {
	return s.store.RemoveBlacklistEntry(ctx, userID, phone)
}

// ListBlacklist returns a user's blacklist entries
func (s *CustomerService) ListBlacklist(ctx context.Context, userID int64) ([]models.BlacklistEntry, error) {
	return s.store.GetBlacklist(ctx, userID)
}
