package notification

import (
	"time"

	"github.com/google/uuid"
	"github.com/quickcart/backend/internal/domain/shared"
)

// AlertKind categorizes seller alerts by what happened to the order
type AlertKind string

const (
	AlertKindNewOrder        AlertKind = "NEW_ORDER"
	AlertKindOrderAssigned   AlertKind = "ORDER_ASSIGNED"
	AlertKindOrderUnassigned AlertKind = "ORDER_UNASSIGNED"
)

// IsValid checks if the kind is a valid AlertKind
func (k AlertKind) IsValid() bool {
	switch k {
	case AlertKindNewOrder, AlertKindOrderAssigned, AlertKindOrderUnassigned:
		return true
	}
	return false
}

// String returns the string representation of AlertKind
func (k AlertKind) String() string {
	return string(k)
}

// SellerAlert is a persistent entry in the seller notification feed. Unlike
// the partner dispatch offer there is no race and no deadline: the alert
// stays open until the seller explicitly acknowledges it.
type SellerAlert struct {
	shared.BaseEntity
	OrderID        uuid.UUID
	Kind           AlertKind
	Message        string
	Acknowledged   bool
	AcknowledgedAt *time.Time
}

// NewSellerAlert creates an open alert for the seller feed
func NewSellerAlert(orderID uuid.UUID, kind AlertKind, message string) (*SellerAlert, error) {
	if orderID == uuid.Nil {
		return nil, shared.ErrInvalidInput
	}
	if !kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_ALERT_KIND", "Unknown alert kind")
	}
	if message == "" {
		return nil, shared.NewDomainError("INVALID_ALERT_MESSAGE", "Alert message cannot be empty")
	}
	return &SellerAlert{
		BaseEntity: shared.NewBaseEntity(),
		OrderID:    orderID,
		Kind:       kind,
		Message:    message,
	}, nil
}

// Acknowledge dismisses the alert. Idempotent: acknowledging an already
// dismissed alert keeps the original acknowledgement time.
func (a *SellerAlert) Acknowledge() {
	if a.Acknowledged {
		return
	}
	now := time.Now()
	a.Acknowledged = true
	a.AcknowledgedAt = &now
	a.UpdatedAt = now
}
