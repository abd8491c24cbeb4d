package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/quickcart/backend/internal/domain/notification"
)

// SellerAlertModel is the persistence model for seller alerts
type SellerAlertModel struct {
	BaseModel
	OrderID        uuid.UUID `gorm:"type:uuid;not null;index"`
	Kind           string    `gorm:"type:varchar(32);not null"`
	Message        string    `gorm:"type:text;not null"`
	Acknowledged   bool      `gorm:"not null;default:false;index"`
	AcknowledgedAt *time.Time
}

// TableName returns the table name for SellerAlertModel
func (SellerAlertModel) TableName() string {
	return "seller_alerts"
}

// ToDomain converts the model to a domain SellerAlert
func (m *SellerAlertModel) ToDomain() *notification.SellerAlert {
	return &notification.SellerAlert{
		BaseEntity:     m.BaseModel.ToDomain(),
		OrderID:        m.OrderID,
		Kind:           notification.AlertKind(m.Kind),
		Message:        m.Message,
		Acknowledged:   m.Acknowledged,
		AcknowledgedAt: m.AcknowledgedAt,
	}
}

// SellerAlertModelFromDomain converts a domain SellerAlert to the model
func SellerAlertModelFromDomain(alert *notification.SellerAlert) *SellerAlertModel {
	model := &SellerAlertModel{
		OrderID:        alert.OrderID,
		Kind:           alert.Kind.String(),
		Message:        alert.Message,
		Acknowledged:   alert.Acknowledged,
		AcknowledgedAt: alert.AcknowledgedAt,
	}
	model.FromDomainBaseEntity(alert.BaseEntity)
	return model
}
