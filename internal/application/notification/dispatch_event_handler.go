package notification

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/quickcart/backend/internal/domain/dispatch"
	"github.com/quickcart/backend/internal/domain/notification"
	"github.com/quickcart/backend/internal/domain/shared"
	"github.com/quickcart/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// DispatchEventHandler translates dispatch lifecycle events into seller
// alerts. It runs on the in-process event bus, decoupled from the dispatch
// write path: a failed alert write never affects arbitration.
type DispatchEventHandler struct {
	alerts *AlertService
	logger *zap.Logger
}

// NewDispatchEventHandler creates a new DispatchEventHandler
func NewDispatchEventHandler(alerts *AlertService, logger *zap.Logger) *DispatchEventHandler {
	return &DispatchEventHandler{
		alerts: alerts,
		logger: logger,
	}
}

// EventTypes returns the dispatch events that produce seller alerts
func (h *DispatchEventHandler) EventTypes() []string {
	return []string{
		dispatch.EventTypeOrderReceived,
		dispatch.EventTypeOrderAssigned,
		dispatch.EventTypeOrderUnassigned,
	}
}

// Handle processes one dispatch event
func (h *DispatchEventHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *dispatch.OrderReceivedEvent:
		return h.raise(ctx, e.OrderID, notification.AlertKindNewOrder,
			fmt.Sprintf("New order %s received and queued for dispatch", e.OrderNumber))
	case *dispatch.OrderAssignedEvent:
		return h.raise(ctx, e.OrderID, notification.AlertKindOrderAssigned,
			fmt.Sprintf("Order %s was accepted by a delivery partner", e.OrderNumber))
	case *dispatch.OrderUnassignedEvent:
		return h.raise(ctx, e.OrderID, notification.AlertKindOrderUnassigned,
			fmt.Sprintf("Order %s could not be assigned: %s", e.OrderNumber, e.Reason))
	default:
		h.logger.Debug("ignoring event", zap.String("event_type", event.EventType()))
		return nil
	}
}

func (h *DispatchEventHandler) raise(ctx context.Context, orderID uuid.UUID, kind notification.AlertKind, message string) error {
	if _, err := h.alerts.Raise(ctx, orderID, kind, message); err != nil {
		// Correlate with the dispatch span that published the event, if any
		logger.WithTraceContext(ctx, h.logger).Error("failed to raise seller alert",
			zap.String("order_id", orderID.String()),
			zap.String("kind", kind.String()),
			zap.Error(err),
		)
		return err
	}
	return nil
}
