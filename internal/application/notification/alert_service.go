package notification

import (
	"context"

	"github.com/google/uuid"
	"github.com/quickcart/backend/internal/domain/notification"
	"go.uber.org/zap"
)

// AlertService manages the seller notification feed. Alerts are persistent
// and pull-based: there is no countdown and no competition, the seller reads
// the feed and dismisses entries at their own pace.
type AlertService struct {
	alertRepo notification.AlertRepository
	logger    *zap.Logger
}

// NewAlertService creates a new AlertService
func NewAlertService(alertRepo notification.AlertRepository, logger *zap.Logger) *AlertService {
	return &AlertService{
		alertRepo: alertRepo,
		logger:    logger,
	}
}

// Raise appends an alert to the seller feed
func (s *AlertService) Raise(ctx context.Context, orderID uuid.UUID, kind notification.AlertKind, message string) (*AlertResponse, error) {
	alert, err := notification.NewSellerAlert(orderID, kind, message)
	if err != nil {
		return nil, err
	}
	if err := s.alertRepo.Save(ctx, alert); err != nil {
		return nil, err
	}
	s.logger.Info("seller alert raised",
		zap.String("order_id", orderID.String()),
		zap.String("kind", kind.String()),
	)
	response := ToAlertResponse(alert)
	return &response, nil
}

// OpenAlerts lists alerts the seller has not acknowledged yet, newest first
func (s *AlertService) OpenAlerts(ctx context.Context) ([]AlertResponse, error) {
	alerts, err := s.alertRepo.FindOpen(ctx)
	if err != nil {
		return nil, err
	}
	responses := make([]AlertResponse, len(alerts))
	for i := range alerts {
		responses[i] = ToAlertResponse(&alerts[i])
	}
	return responses, nil
}

// OrderAlerts lists all alerts raised for one order, newest first
func (s *AlertService) OrderAlerts(ctx context.Context, orderID uuid.UUID) ([]AlertResponse, error) {
	alerts, err := s.alertRepo.FindByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	responses := make([]AlertResponse, len(alerts))
	for i := range alerts {
		responses[i] = ToAlertResponse(&alerts[i])
	}
	return responses, nil
}

// Acknowledge dismisses an alert. Idempotent: acknowledging twice keeps the
// first acknowledgement time.
func (s *AlertService) Acknowledge(ctx context.Context, alertID uuid.UUID) (*AlertResponse, error) {
	alert, err := s.alertRepo.FindByID(ctx, alertID)
	if err != nil {
		return nil, err
	}
	alert.Acknowledge()
	if err := s.alertRepo.Save(ctx, alert); err != nil {
		return nil, err
	}
	response := ToAlertResponse(alert)
	return &response, nil
}
