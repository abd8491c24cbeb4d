package notification

import (
	"context"

	"github.com/google/uuid"
)

// AlertRepository persists seller alerts
type AlertRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*SellerAlert, error)
	Save(ctx context.Context, alert *SellerAlert) error
	// FindOpen lists alerts not yet acknowledged, newest first
	FindOpen(ctx context.Context) ([]SellerAlert, error)
	// FindByOrder lists all alerts for one order, newest first
	FindByOrder(ctx context.Context, orderID uuid.UUID) ([]SellerAlert, error)
}
