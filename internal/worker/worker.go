package worker

import (
	"context"
	"log"
	"time"

	"cod-dashboard/internal/broker"
	"cod-dashboard/internal/models"
	"cod-dashboard/internal/service"
	"cod-dashboard/internal/store"
	"cod-dashboard/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RiskAlertWorker watches order status transitions. When a customer
// fails an order, it replays that customer's full history and emits an
// alert if the replayed score lands in the high tier.
type RiskAlertWorker struct {
	consumer        *broker.Consumer
	eventHandler    *broker.EventHandler
	store           *store.Store
	customerService *service.CustomerService
	eventPublisher  *broker.EventPublisher
	alertThreshold  float64
	logger          *zap.Logger
}

// NewRiskAlertWorker creates a new risk alert worker
func NewRiskAlertWorker(
	consumer *broker.Consumer,
	store *store.Store,
	customerService *service.CustomerService,
	eventPublisher *broker.EventPublisher,
	alertThreshold float64,
) *RiskAlertWorker {
	w := &RiskAlertWorker{
		consumer:        consumer,
		store:           store,
		customerService: customerService,
		eventPublisher:  eventPublisher,
		alertThreshold:  alertThreshold,
		logger:          util.GetLogger(),
	}

	eventHandler := broker.NewEventHandler()
	eventHandler.OnOrderStatusChanged(w.handleStatusChanged)
	w.eventHandler = eventHandler

	return w
}

// Start starts the worker
func (w *RiskAlertWorker) Start(ctx context.Context) error {
	log.Println("Starting risk alert worker...")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *RiskAlertWorker) Stop() error {
	log.Println("Stopping risk alert worker...")
	return w.consumer.Close()
}

// handleStatusChanged reacts to lifecycle transitions. Only customer
// failures can push a score up, so other transitions are ignored.
func (w *RiskAlertWorker) handleStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error {
	if models.Classify(event.ToStatus) != models.ClassCustomerFail {
		return nil
	}
	if event.Phone == "" {
		return nil
	}

	processed, err := w.store.IsEventProcessed(ctx, event.EventID)
	if err != nil {
		return err
	}
	if processed {
		w.logger.Info("Event already processed", zap.String("event_id", event.EventID))
		return nil
	}

	record, err := w.customerService.GetCustomerRisk(ctx, event.UserID, event.Phone)
	if err != nil {
		return err
	}

	if record.CustomerRiskScore >= w.alertThreshold {
		w.logger.Warn("Customer crossed risk threshold",
			zap.String("phone", event.Phone),
			zap.Float64("score", record.CustomerRiskScore),
			zap.String("level", record.CustomerRiskLevel))

		alert := &models.CustomerRiskAlertEvent{
			BaseEvent: models.BaseEvent{
				EventID:   uuid.New().String(),
				EventType: models.EventTypeCustomerRiskAlert,
				Timestamp: time.Now(),
			},
			UserID:            event.UserID,
			Phone:             event.Phone,
			CustomerRiskScore: record.CustomerRiskScore,
			CustomerRiskLevel: record.CustomerRiskLevel,
			TriggerOrderID:    event.OrderID,
		}
		if err := w.eventPublisher.PublishCustomerRiskAlert(ctx, alert); err != nil {
			w.logger.Error("Failed to publish CustomerRiskAlert event", zap.Error(err))
		}
		util.CustomerRiskAlertsTotal.Inc()
	}

	if err := w.store.MarkEventProcessed(ctx, event.EventID, event.EventType); err != nil {
		w.logger.Error("Failed to mark event processed", zap.Error(err))
	}
	return nil
}
