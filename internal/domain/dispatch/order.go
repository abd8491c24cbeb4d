package dispatch

import (
	"time"

	"github.com/google/uuid"
	"github.com/quickcart/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// OrderStatus represents the dispatch status of an order
type OrderStatus string

const (
	OrderStatusReadyForDispatch OrderStatus = "READY_FOR_DISPATCH"
	OrderStatusOffered          OrderStatus = "OFFERED"
	OrderStatusAssigned         OrderStatus = "ASSIGNED"
	OrderStatusUnassigned       OrderStatus = "UNASSIGNED"
	OrderStatusCompleted        OrderStatus = "COMPLETED"
)

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusReadyForDispatch, OrderStatusOffered, OrderStatusAssigned,
		OrderStatusUnassigned, OrderStatusCompleted:
		return true
	}
	return false
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status.
// OFFERED -> OFFERED covers re-dispatch after an expired attempt.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	switch s {
	case OrderStatusReadyForDispatch:
		return target == OrderStatusOffered || target == OrderStatusUnassigned
	case OrderStatusOffered:
		return target == OrderStatusOffered || target == OrderStatusAssigned || target == OrderStatusUnassigned
	case OrderStatusAssigned:
		return target == OrderStatusCompleted
	case OrderStatusUnassigned:
		return target == OrderStatusOffered
	case OrderStatusCompleted:
		return false // Terminal state
	}
	return false
}

// Order is the dispatch view of an order: the single shared mutable resource
// of the dispatch subsystem. assignedPartnerID is non-nil if and only if the
// status is ASSIGNED.
type Order struct {
	shared.BaseAggregateRoot
	OrderNumber       string
	Status            OrderStatus
	AssignedPartnerID *uuid.UUID
	DispatchDeadline  *time.Time
	DispatchAttempt   int
	EarningsEstimate  decimal.Decimal
	DropoffSummary    string
	AssignedAt        *time.Time
	CompletedAt       *time.Time
}

// NewOrder registers an order as ready for dispatch
func NewOrder(orderNumber string, earningsEstimate decimal.Decimal, dropoffSummary string) (*Order, error) {
	if orderNumber == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot be empty")
	}
	if earningsEstimate.IsNegative() {
		return nil, shared.NewDomainError("INVALID_EARNINGS", "Earnings estimate cannot be negative")
	}

	order := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderNumber:       orderNumber,
		Status:            OrderStatusReadyForDispatch,
		DispatchAttempt:   0,
		EarningsEstimate:  earningsEstimate,
		DropoffSummary:    dropoffSummary,
	}
	order.AddDomainEvent(NewOrderReceivedEvent(order))
	return order, nil
}

// BeginOffer transitions the order to OFFERED with a fresh deadline and the
// next attempt number. Valid from READY_FOR_DISPATCH, UNASSIGNED (operator
// retry) and OFFERED (re-dispatch after an expired attempt).
func (o *Order) BeginOffer(deadline time.Time, candidateIDs []uuid.UUID) error {
	if !o.Status.CanTransitionTo(OrderStatusOffered) {
		return shared.ErrInvalidState
	}
	if !deadline.After(time.Now()) {
		return shared.NewDomainError("INVALID_DEADLINE", "Dispatch deadline must be in the future")
	}

	o.Status = OrderStatusOffered
	o.DispatchDeadline = &deadline
	o.DispatchAttempt++
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
	o.AddDomainEvent(NewOrderOfferedEvent(o, candidateIDs))
	return nil
}

// Assign records the winning partner. Valid only while OFFERED; the
// persistence layer enforces the same precondition atomically so that
// concurrent claims cannot both pass this check.
func (o *Order) Assign(partnerID uuid.UUID) error {
	if o.Status != OrderStatusOffered {
		if o.Status == OrderStatusAssigned {
			return shared.ErrAlreadyAssigned
		}
		return shared.ErrInvalidState
	}
	if partnerID == uuid.Nil {
		return shared.NewDomainError("INVALID_PARTNER", "Partner ID cannot be empty")
	}

	now := time.Now()
	o.Status = OrderStatusAssigned
	o.AssignedPartnerID = &partnerID
	o.DispatchDeadline = nil
	o.AssignedAt = &now
	o.UpdatedAt = now
	o.IncrementVersion()
	o.AddDomainEvent(NewOrderAssignedEvent(o, partnerID))
	return nil
}

// MarkUnassigned parks the order for operator handling: either no candidates
// were eligible or all dispatch attempts expired unclaimed.
func (o *Order) MarkUnassigned(reason string) error {
	if !o.Status.CanTransitionTo(OrderStatusUnassigned) {
		return shared.ErrInvalidState
	}

	o.Status = OrderStatusUnassigned
	o.DispatchDeadline = nil
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
	o.AddDomainEvent(NewOrderUnassignedEvent(o, reason))
	return nil
}

// Complete marks an assigned order as delivered
func (o *Order) Complete() error {
	if o.Status != OrderStatusAssigned {
		return shared.ErrInvalidState
	}

	now := time.Now()
	o.Status = OrderStatusCompleted
	o.CompletedAt = &now
	o.UpdatedAt = now
	o.IncrementVersion()
	return nil
}

// DeadlinePassed reports whether the current offer deadline has elapsed
func (o *Order) DeadlinePassed(now time.Time) bool {
	return o.DispatchDeadline != nil && now.After(*o.DispatchDeadline)
}

// CheckInvariants validates the assignment invariant. Used by tests and by
// repositories after state-changing updates.
func (o *Order) CheckInvariants() error {
	assigned := o.Status == OrderStatusAssigned
	hasPartner := o.AssignedPartnerID != nil
	if assigned != hasPartner {
		return shared.NewDomainError("INVARIANT_VIOLATION", "assignedPartnerId must be set exactly when status is ASSIGNED")
	}
	if assigned && o.DispatchDeadline != nil {
		return shared.NewDomainError("INVARIANT_VIOLATION", "dispatchDeadline must be cleared on assignment")
	}
	return nil
}
