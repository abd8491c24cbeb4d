package dispatch

import (
	"time"

	"github.com/google/uuid"
	"github.com/quickcart/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeOrder = "DispatchOrder"

// Event type constants
const (
	EventTypeOrderReceived   = "DispatchOrderReceived"
	EventTypeOrderOffered    = "DispatchOrderOffered"
	EventTypeOrderAssigned   = "DispatchOrderAssigned"
	EventTypeOrderUnassigned = "DispatchOrderUnassigned"
	EventTypeOfferExpired    = "DispatchOfferExpired"
)

// OrderReceivedEvent is raised when an order is registered as ready for dispatch
type OrderReceivedEvent struct {
	shared.BaseDomainEvent
	OrderID          uuid.UUID       `json:"order_id"`
	OrderNumber      string          `json:"order_number"`
	EarningsEstimate decimal.Decimal `json:"earnings_estimate"`
}

// NewOrderReceivedEvent creates a new OrderReceivedEvent
func NewOrderReceivedEvent(order *Order) *OrderReceivedEvent {
	return &OrderReceivedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeOrderReceived, AggregateTypeOrder, order.ID),
		OrderID:          order.ID,
		OrderNumber:      order.OrderNumber,
		EarningsEstimate: order.EarningsEstimate,
	}
}

// EventType returns the event type name
func (e *OrderReceivedEvent) EventType() string {
	return EventTypeOrderReceived
}

// OrderOfferedEvent is raised when an order enters OFFERED for one attempt
type OrderOfferedEvent struct {
	shared.BaseDomainEvent
	OrderID             uuid.UUID   `json:"order_id"`
	OrderNumber         string      `json:"order_number"`
	DispatchAttempt     int         `json:"dispatch_attempt"`
	Deadline            time.Time   `json:"deadline"`
	CandidatePartnerIDs []uuid.UUID `json:"candidate_partner_ids"`
}

// NewOrderOfferedEvent creates a new OrderOfferedEvent
func NewOrderOfferedEvent(order *Order, candidateIDs []uuid.UUID) *OrderOfferedEvent {
	e := &OrderOfferedEvent{
		BaseDomainEvent:     shared.NewBaseDomainEvent(EventTypeOrderOffered, AggregateTypeOrder, order.ID),
		OrderID:             order.ID,
		OrderNumber:         order.OrderNumber,
		DispatchAttempt:     order.DispatchAttempt,
		CandidatePartnerIDs: candidateIDs,
	}
	if order.DispatchDeadline != nil {
		e.Deadline = *order.DispatchDeadline
	}
	return e
}

// EventType returns the event type name
func (e *OrderOfferedEvent) EventType() string {
	return EventTypeOrderOffered
}

// OrderAssignedEvent is raised when arbitration admits a winning claim
type OrderAssignedEvent struct {
	shared.BaseDomainEvent
	OrderID         uuid.UUID `json:"order_id"`
	OrderNumber     string    `json:"order_number"`
	PartnerID       uuid.UUID `json:"partner_id"`
	DispatchAttempt int       `json:"dispatch_attempt"`
}

// NewOrderAssignedEvent creates a new OrderAssignedEvent
func NewOrderAssignedEvent(order *Order, partnerID uuid.UUID) *OrderAssignedEvent {
	return &OrderAssignedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderAssigned, AggregateTypeOrder, order.ID),
		OrderID:         order.ID,
		OrderNumber:     order.OrderNumber,
		PartnerID:       partnerID,
		DispatchAttempt: order.DispatchAttempt,
	}
}

// EventType returns the event type name
func (e *OrderAssignedEvent) EventType() string {
	return EventTypeOrderAssigned
}

// OrderUnassignedEvent is raised when an order is parked for operator handling
type OrderUnassignedEvent struct {
	shared.BaseDomainEvent
	OrderID         uuid.UUID `json:"order_id"`
	OrderNumber     string    `json:"order_number"`
	DispatchAttempt int       `json:"dispatch_attempt"`
	Reason          string    `json:"reason"`
}

// NewOrderUnassignedEvent creates a new OrderUnassignedEvent
func NewOrderUnassignedEvent(order *Order, reason string) *OrderUnassignedEvent {
	return &OrderUnassignedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderUnassigned, AggregateTypeOrder, order.ID),
		OrderID:         order.ID,
		OrderNumber:     order.OrderNumber,
		DispatchAttempt: order.DispatchAttempt,
		Reason:          reason,
	}
}

// EventType returns the event type name
func (e *OrderUnassignedEvent) EventType() string {
	return EventTypeOrderUnassigned
}

// OfferExpiredEvent is raised when an offer deadline fires with no winner
type OfferExpiredEvent struct {
	shared.BaseDomainEvent
	OrderID         uuid.UUID `json:"order_id"`
	DispatchAttempt int       `json:"dispatch_attempt"`
}

// NewOfferExpiredEvent creates a new OfferExpiredEvent
func NewOfferExpiredEvent(orderID uuid.UUID, dispatchAttempt int) *OfferExpiredEvent {
	return &OfferExpiredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOfferExpired, AggregateTypeOrder, orderID),
		OrderID:         orderID,
		DispatchAttempt: dispatchAttempt,
	}
}

// EventType returns the event type name
func (e *OfferExpiredEvent) EventType() string {
	return EventTypeOfferExpired
}
