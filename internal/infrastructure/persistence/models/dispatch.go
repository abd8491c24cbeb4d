package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/quickcart/backend/internal/domain/dispatch"
	"github.com/shopspring/decimal"
)

// DispatchOrderModel is the persistence model for dispatch orders
type DispatchOrderModel struct {
	AggregateModel
	OrderNumber       string          `gorm:"type:varchar(64);not null;uniqueIndex"`
	Status            string          `gorm:"type:varchar(32);not null;index"`
	AssignedPartnerID *uuid.UUID      `gorm:"type:uuid;index"`
	DispatchDeadline  *time.Time      `gorm:"index"`
	DispatchAttempt   int             `gorm:"not null;default:0"`
	EarningsEstimate  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	DropoffSummary    string          `gorm:"type:text"`
	AssignedAt        *time.Time
	CompletedAt       *time.Time
}

// TableName returns the table name for DispatchOrderModel
func (DispatchOrderModel) TableName() string {
	return "dispatch_orders"
}

// ToDomain converts the model to a domain Order
func (m *DispatchOrderModel) ToDomain() *dispatch.Order {
	order := &dispatch.Order{
		OrderNumber:       m.OrderNumber,
		Status:            dispatch.OrderStatus(m.Status),
		AssignedPartnerID: m.AssignedPartnerID,
		DispatchDeadline:  m.DispatchDeadline,
		DispatchAttempt:   m.DispatchAttempt,
		EarningsEstimate:  m.EarningsEstimate,
		DropoffSummary:    m.DropoffSummary,
		AssignedAt:        m.AssignedAt,
		CompletedAt:       m.CompletedAt,
	}
	m.PopulateAggregateRoot(&order.BaseAggregateRoot)
	return order
}

// DispatchOrderModelFromDomain converts a domain Order to the model
func DispatchOrderModelFromDomain(order *dispatch.Order) *DispatchOrderModel {
	model := &DispatchOrderModel{
		OrderNumber:       order.OrderNumber,
		Status:            order.Status.String(),
		AssignedPartnerID: order.AssignedPartnerID,
		DispatchDeadline:  order.DispatchDeadline,
		DispatchAttempt:   order.DispatchAttempt,
		EarningsEstimate:  order.EarningsEstimate,
		DropoffSummary:    order.DropoffSummary,
		AssignedAt:        order.AssignedAt,
		CompletedAt:       order.CompletedAt,
	}
	model.FromDomainAggregateRoot(order.BaseAggregateRoot)
	return model
}

// DeliveryPartnerModel is the persistence model for delivery partners
type DeliveryPartnerModel struct {
	BaseModel
	Name           string  `gorm:"type:varchar(255);not null"`
	OnlineStatus   bool    `gorm:"not null;default:false;index"`
	MessagingToken *string `gorm:"type:varchar(512)"`
	LastOnlineAt   *time.Time
}

// TableName returns the table name for DeliveryPartnerModel
func (DeliveryPartnerModel) TableName() string {
	return "delivery_partners"
}

// ToDomain converts the model to a domain Partner
func (m *DeliveryPartnerModel) ToDomain() *dispatch.Partner {
	return &dispatch.Partner{
		BaseEntity:     m.BaseModel.ToDomain(),
		Name:           m.Name,
		OnlineStatus:   m.OnlineStatus,
		MessagingToken: m.MessagingToken,
		LastOnlineAt:   m.LastOnlineAt,
	}
}

// DeliveryPartnerModelFromDomain converts a domain Partner to the model
func DeliveryPartnerModelFromDomain(partner *dispatch.Partner) *DeliveryPartnerModel {
	model := &DeliveryPartnerModel{
		Name:           partner.Name,
		OnlineStatus:   partner.OnlineStatus,
		MessagingToken: partner.MessagingToken,
		LastOnlineAt:   partner.LastOnlineAt,
	}
	model.FromDomainBaseEntity(partner.BaseEntity)
	return model
}

// ClaimAttemptModel is the persistence model for the claim audit log.
// Rows are append-only; there is no update path.
type ClaimAttemptModel struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key"`
	OrderID         uuid.UUID `gorm:"type:uuid;not null;index"`
	PartnerID       uuid.UUID `gorm:"type:uuid;not null;index"`
	DispatchAttempt int       `gorm:"not null"`
	SubmittedAt     time.Time `gorm:"not null"`
	Outcome         string    `gorm:"type:varchar(32);not null"`
	CreatedAt       time.Time `gorm:"not null"`
}

// TableName returns the table name for ClaimAttemptModel
func (ClaimAttemptModel) TableName() string {
	return "claim_attempts"
}

// ToDomain converts the model to a domain ClaimAttempt
func (m *ClaimAttemptModel) ToDomain() *dispatch.ClaimAttempt {
	return &dispatch.ClaimAttempt{
		ID:              m.ID,
		OrderID:         m.OrderID,
		PartnerID:       m.PartnerID,
		DispatchAttempt: m.DispatchAttempt,
		SubmittedAt:     m.SubmittedAt,
		Outcome:         dispatch.ClaimOutcome(m.Outcome),
		CreatedAt:       m.CreatedAt,
	}
}

// ClaimAttemptModelFromDomain converts a domain ClaimAttempt to the model
func ClaimAttemptModelFromDomain(attempt *dispatch.ClaimAttempt) *ClaimAttemptModel {
	return &ClaimAttemptModel{
		ID:              attempt.ID,
		OrderID:         attempt.OrderID,
		PartnerID:       attempt.PartnerID,
		DispatchAttempt: attempt.DispatchAttempt,
		SubmittedAt:     attempt.SubmittedAt,
		Outcome:         attempt.Outcome.String(),
		CreatedAt:       attempt.CreatedAt,
	}
}
