package dispatch

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/quickcart/backend/internal/domain/dispatch"
	"github.com/quickcart/backend/internal/domain/shared"
	"github.com/quickcart/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Config holds dispatch tuning knobs
type Config struct {
	// CandidateLimit caps how many partners receive one offer round
	CandidateLimit int
	// OfferWindow is the accept/decline window; it matches the alarm
	// countdown shown on the partner device
	OfferWindow time.Duration
	// MaxAttempts bounds re-dispatch rounds before the order is parked
	// as UNASSIGNED for operator handling
	MaxAttempts int
}

// DefaultConfig returns the default dispatch configuration
func DefaultConfig() Config {
	return Config{
		CandidateLimit: 3,
		OfferWindow:    30 * time.Second,
		MaxAttempts:    3,
	}
}

// DispatcherService owns the offer lifecycle: candidate selection, the
// durable READY -> OFFERED transition, offer pushes and expiry handling.
// The order must be durably OFFERED with its deadline recorded before any
// push goes out, so a claim racing the send loop is still arbitrated
// against committed state.
type DispatcherService struct {
	orderRepo      dispatch.OrderRepository
	registry       *PartnerRegistryService
	push           PushSender
	supervisor     *TimeoutSupervisor
	eventPublisher shared.EventPublisher
	cfg            Config
	logger         *zap.Logger
}

// NewDispatcherService creates a new DispatcherService and registers itself
// as the supervisor's expiry handler
func NewDispatcherService(
	orderRepo dispatch.OrderRepository,
	registry *PartnerRegistryService,
	push PushSender,
	supervisor *TimeoutSupervisor,
	cfg Config,
	logger *zap.Logger,
) *DispatcherService {
	s := &DispatcherService{
		orderRepo:  orderRepo,
		registry:   registry,
		push:       push,
		supervisor: supervisor,
		cfg:        cfg,
		logger:     logger,
	}
	supervisor.SetExpiryHandler(s.HandleExpiry)
	return s
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *DispatcherService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// RegisterOrder registers a ready-for-dispatch order from order management
func (s *DispatcherService) RegisterOrder(ctx context.Context, req RegisterOrderRequest) (*OrderResponse, error) {
	if existing, err := s.orderRepo.FindByOrderNumber(ctx, req.OrderNumber); err == nil && existing != nil {
		return nil, shared.ErrAlreadyExists
	}

	order, err := dispatch.NewOrder(req.OrderNumber, req.EarningsEstimate, req.DropoffSummary)
	if err != nil {
		return nil, err
	}
	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, order)

	response := ToOrderResponse(order)
	return &response, nil
}

// GetOrder returns the dispatch view of one order
func (s *DispatcherService) GetOrder(ctx context.Context, orderID uuid.UUID) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	response := ToOrderResponse(order)
	return &response, nil
}

// UnassignedOrders lists orders parked for operator handling
func (s *DispatcherService) UnassignedOrders(ctx context.Context) ([]OrderResponse, error) {
	orders, err := s.orderRepo.FindUnassigned(ctx)
	if err != nil {
		return nil, err
	}
	responses := make([]OrderResponse, len(orders))
	for i := range orders {
		responses[i] = ToOrderResponse(&orders[i])
	}
	return responses, nil
}

// Dispatch starts an offer round for an order that is ready for dispatch
// (or parked UNASSIGNED, for operator retries). Returns nil when the order
// went straight to UNASSIGNED because no candidate was eligible.
func (s *DispatcherService) Dispatch(ctx context.Context, orderID uuid.UUID) (*OfferResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "dispatch", "dispatch_order")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrOrderID, orderID.String())

	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span,
		telemetry.SpanAttrOrderNumber, order.OrderNumber,
		telemetry.SpanAttrOrderStatus, order.Status.String(),
	)
	if !order.Status.CanTransitionTo(dispatch.OrderStatusOffered) {
		telemetry.RecordError(span, shared.ErrInvalidState)
		return nil, shared.ErrInvalidState
	}

	offer, err := s.offer(ctx, order)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if offer != nil {
		telemetry.SetAttribute(span, telemetry.SpanAttrDispatchAttempt, offer.DispatchAttempt)
	}
	return offer, nil
}

// offer runs one offer round: select candidates, durably transition to
// OFFERED, arm the deadline, then push. Push failures never roll the
// transition back.
func (s *DispatcherService) offer(ctx context.Context, order *dispatch.Order) (*OfferResponse, error) {
	pickup := PickupContext{OrderID: order.ID, DropoffSummary: order.DropoffSummary}
	candidates, err := s.registry.EligibleCandidates(ctx, pickup, s.cfg.CandidateLimit)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		if err := s.park(ctx, order, "no eligible candidates"); err != nil {
			return nil, err
		}
		return nil, nil
	}

	candidateIDs := make([]uuid.UUID, len(candidates))
	for i, p := range candidates {
		candidateIDs[i] = p.ID
	}

	deadline := time.Now().Add(s.cfg.OfferWindow)
	ok, err := s.orderRepo.MarkOffered(ctx, order.ID, order.DispatchAttempt, order.DispatchAttempt+1, deadline)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Raced with a claim or a concurrent dispatcher; the row decides.
		return nil, shared.ErrConcurrencyConflict
	}

	fresh, err := s.orderRepo.FindByID(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	offer := dispatch.NewDispatchOffer(fresh, candidateIDs)
	s.publish(ctx, dispatch.NewOrderOfferedEvent(fresh, candidateIDs))
	s.supervisor.Schedule(fresh.ID, fresh.DispatchAttempt, deadline)

	for _, candidate := range candidates {
		if candidate.MessagingToken == nil {
			continue
		}
		if err := s.push.Send(ctx, *candidate.MessagingToken, offer); err != nil {
			// Best-effort: remaining candidates still get the offer, and
			// the messaging transport owns retries.
			s.logger.Warn("offer push failed",
				zap.String("order_id", order.ID.String()),
				zap.String("partner_id", candidate.ID.String()),
				zap.Int("dispatch_attempt", offer.DispatchAttempt),
				zap.Error(err),
			)
		}
	}

	s.logger.Info("order offered",
		zap.String("order_id", order.ID.String()),
		zap.Int("dispatch_attempt", offer.DispatchAttempt),
		zap.Int("candidates", len(candidateIDs)),
		zap.Time("deadline", deadline),
	)

	response := ToOfferResponse(offer)
	return &response, nil
}

// HandleExpiry is the supervisor callback for a fired offer deadline. It is
// idempotent: the order row is re-read and every transition is conditional,
// so a double fire or a late fire after assignment is a no-op.
func (s *DispatcherService) HandleExpiry(ctx context.Context, orderID uuid.UUID, dispatchAttempt int) {
	ctx, span := telemetry.StartServiceSpan(ctx, "dispatch", "handle_expiry")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrOrderID, orderID.String(),
		telemetry.SpanAttrDispatchAttempt, dispatchAttempt,
	)

	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		telemetry.RecordError(span, err)
		s.logger.Error("expiry check failed to load order",
			zap.String("order_id", orderID.String()),
			zap.Error(err),
		)
		return
	}
	telemetry.SetAttribute(span, telemetry.SpanAttrOrderStatus, order.Status.String())
	if order.Status != dispatch.OrderStatusOffered || order.DispatchAttempt != dispatchAttempt {
		// Claimed, re-dispatched or parked before the timer fired.
		telemetry.AddEvent(span, "offer_already_resolved")
		return
	}

	s.publish(ctx, dispatch.NewOfferExpiredEvent(orderID, dispatchAttempt))

	if dispatchAttempt >= s.cfg.MaxAttempts {
		if err := s.park(ctx, order, "dispatch window expired with no claim"); err != nil {
			telemetry.RecordError(span, err)
			s.logger.Error("failed to park expired order",
				zap.String("order_id", orderID.String()),
				zap.Error(err),
			)
		}
		return
	}

	if _, err := s.offer(ctx, order); err != nil {
		telemetry.RecordError(span, err)
		s.logger.Error("re-dispatch failed",
			zap.String("order_id", orderID.String()),
			zap.Int("expired_attempt", dispatchAttempt),
			zap.Error(err),
		)
	}
}

// ResumeOutstandingOffers re-arms a deadline timer for every order left
// OFFERED by the previous process. Timers live only in memory: without this
// scan a restart leaves those orders OFFERED forever, since late claims are
// rejected by the deadline guard but nothing re-dispatches or parks the
// order. Deadlines already in the past fire immediately through the normal
// expiry path. Run once at startup, before traffic is served.
func (s *DispatcherService) ResumeOutstandingOffers(ctx context.Context) (int, error) {
	orders, err := s.orderRepo.FindOffered(ctx)
	if err != nil {
		return 0, err
	}
	for i := range orders {
		order := &orders[i]
		deadline := time.Now()
		if order.DispatchDeadline != nil {
			deadline = *order.DispatchDeadline
		}
		s.supervisor.Schedule(order.ID, order.DispatchAttempt, deadline)
		s.logger.Info("resumed offer deadline",
			zap.String("order_id", order.ID.String()),
			zap.Int("dispatch_attempt", order.DispatchAttempt),
			zap.Time("deadline", deadline),
		)
	}
	return len(orders), nil
}

// park moves the order to UNASSIGNED. From OFFERED the transition is the
// conditional ReleaseExpired update so a concurrently winning claim takes
// precedence; from READY_FOR_DISPATCH the plain save is race-free because
// no offer is outstanding.
func (s *DispatcherService) park(ctx context.Context, order *dispatch.Order, reason string) error {
	if order.Status == dispatch.OrderStatusOffered {
		ok, err := s.orderRepo.ReleaseExpired(ctx, order.ID, order.DispatchAttempt)
		if err != nil {
			return err
		}
		if !ok {
			// A claim won between the deadline firing and this release.
			return nil
		}
		fresh, err := s.orderRepo.FindByID(ctx, order.ID)
		if err != nil {
			return err
		}
		s.publish(ctx, dispatch.NewOrderUnassignedEvent(fresh, reason))
		s.logger.Warn("order unassigned",
			zap.String("order_id", order.ID.String()),
			zap.String("reason", reason),
		)
		return nil
	}

	if err := order.MarkUnassigned(reason); err != nil {
		return err
	}
	if err := s.orderRepo.Save(ctx, order); err != nil {
		return err
	}
	s.publishEvents(ctx, order)
	s.logger.Warn("order unassigned",
		zap.String("order_id", order.ID.String()),
		zap.String("reason", reason),
	)
	return nil
}

func (s *DispatcherService) publishEvents(ctx context.Context, order *dispatch.Order) {
	if s.eventPublisher == nil {
		order.ClearDomainEvents()
		return
	}
	events := order.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Error("failed to publish domain events", zap.Error(err))
	}
	order.ClearDomainEvents()
}

func (s *DispatcherService) publish(ctx context.Context, event shared.DomainEvent) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, event); err != nil {
		s.logger.Error("failed to publish domain event",
			zap.String("event_type", event.EventType()),
			zap.Error(err),
		)
	}
}
