package notification

import (
	"time"

	"github.com/google/uuid"
	"github.com/quickcart/backend/internal/domain/notification"
)

// AlertResponse is one entry of the seller notification feed
type AlertResponse struct {
	ID             uuid.UUID  `json:"id"`
	OrderID        uuid.UUID  `json:"order_id"`
	Kind           string     `json:"kind"`
	Message        string     `json:"message"`
	Acknowledged   bool       `json:"acknowledged"`
	AcknowledgedAt *time.Time `json:"acknowledged_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// ToAlertResponse converts a domain alert to its response DTO
func ToAlertResponse(alert *notification.SellerAlert) AlertResponse {
	return AlertResponse{
		ID:             alert.ID,
		OrderID:        alert.OrderID,
		Kind:           alert.Kind.String(),
		Message:        alert.Message,
		Acknowledged:   alert.Acknowledged,
		AcknowledgedAt: alert.AcknowledgedAt,
		CreatedAt:      alert.CreatedAt,
	}
}
