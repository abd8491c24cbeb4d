package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/quickcart/backend/internal/domain/dispatch"
	"github.com/quickcart/backend/internal/domain/shared"
	"github.com/quickcart/backend/internal/infrastructure/logger"
	"github.com/quickcart/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// outcomeTTL bounds how long a decided claim outcome is kept for idempotent
// client retries. Well past any offer window.
const outcomeTTL = 10 * time.Minute

// ClaimService is the claim arbitrator: the authoritative owner of "who owns
// this order". The win path is a single atomic conditional update in the
// order repository; everything else here is classification and best-effort
// audit logging.
type ClaimService struct {
	orderRepo      dispatch.OrderRepository
	attemptRepo    dispatch.ClaimAttemptRepository
	outcomes       ClaimOutcomeStore
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewClaimService creates a new ClaimService. The outcome store is optional;
// without it idempotent client retries are re-arbitrated, which is safe but
// re-reads the order row.
func NewClaimService(
	orderRepo dispatch.OrderRepository,
	attemptRepo dispatch.ClaimAttemptRepository,
	outcomes ClaimOutcomeStore,
	logger *zap.Logger,
) *ClaimService {
	return &ClaimService{
		orderRepo:   orderRepo,
		attemptRepo: attemptRepo,
		outcomes:    outcomes,
		logger:      logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *ClaimService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

func claimKey(orderID, partnerID uuid.UUID, dispatchAttempt int) string {
	return fmt.Sprintf("claim:%s:%d:%s", orderID, dispatchAttempt, partnerID)
}

// SubmitClaim arbitrates one accept submission. Exactly one concurrent
// caller per (order, attempt) receives WON; all others receive a LOST_*
// outcome. Losing is a normal result, not an error: the error return is for
// infrastructure failures only.
func (s *ClaimService) SubmitClaim(ctx context.Context, orderID, partnerID uuid.UUID, dispatchAttempt int) (dispatch.ClaimOutcome, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "claim", "submit")
	defer span.End()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrOrderID, orderID.String(),
		telemetry.SpanAttrPartnerID, partnerID.String(),
		telemetry.SpanAttrDispatchAttempt, dispatchAttempt,
	)

	ctx, log := logger.WithOrderID(ctx, s.logger, orderID.String())
	ctx, log = logger.WithPartnerID(ctx, log, partnerID.String())

	key := claimKey(orderID, partnerID, dispatchAttempt)
	if s.outcomes != nil {
		outcome, found, err := s.outcomes.Lookup(ctx, key)
		if err != nil {
			// The store is an optimization; on failure fall through and
			// re-arbitrate against the order row, which is safe.
			log.Warn("failed to look up claim outcome", zap.Error(err))
		} else if found {
			// Idempotent retry of an already-decided submission.
			telemetry.SetAttribute(span, telemetry.SpanAttrClaimOutcome, string(outcome))
			return outcome, nil
		}
	}

	submittedAt := time.Now()
	won, err := s.orderRepo.ClaimForPartner(ctx, orderID, partnerID, dispatchAttempt)
	if err != nil {
		telemetry.RecordError(span, err)
		return "", err
	}

	var outcome dispatch.ClaimOutcome
	if won {
		outcome = dispatch.ClaimOutcomeWon
		if order, ferr := s.orderRepo.FindByID(ctx, orderID); ferr == nil {
			s.publish(ctx, dispatch.NewOrderAssignedEvent(order, partnerID))
		}
		telemetry.AddEvent(span, "order_assigned",
			telemetry.SpanAttrDispatchAttempt, dispatchAttempt,
		)
		log.Info("claim won", zap.Int("dispatch_attempt", dispatchAttempt))
	} else {
		outcome, err = s.classifyLoss(ctx, orderID, dispatchAttempt)
		if err != nil {
			telemetry.RecordError(span, err)
			return "", err
		}
	}
	telemetry.SetAttribute(span, telemetry.SpanAttrClaimOutcome, string(outcome))

	// Audit and idempotency records are written after the decision and must
	// never affect it.
	s.recordAttempt(ctx, orderID, partnerID, dispatchAttempt, submittedAt, outcome)
	if s.outcomes != nil {
		if err := s.outcomes.Remember(ctx, key, outcome, outcomeTTL); err != nil {
			log.Warn("failed to record claim outcome", zap.Error(err))
		}
	}
	return outcome, nil
}

// classifyLoss explains a failed conditional update from the order's
// post-decision state
func (s *ClaimService) classifyLoss(ctx context.Context, orderID uuid.UUID, dispatchAttempt int) (dispatch.ClaimOutcome, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return "", err
	}
	switch {
	case order.DispatchAttempt > dispatchAttempt:
		// The device was showing an offer that was already re-dispatched.
		return dispatch.ClaimOutcomeLostOfferSuperseded, nil
	case order.Status == dispatch.OrderStatusAssigned:
		return dispatch.ClaimOutcomeLostAlreadyAssigned, nil
	default:
		// UNASSIGNED, or the deadline guard rejected the update.
		return dispatch.ClaimOutcomeLostExpired, nil
	}
}

// AuditTrail returns the append-only claim log for one order
func (s *ClaimService) AuditTrail(ctx context.Context, orderID uuid.UUID) ([]ClaimAttemptResponse, error) {
	attempts, err := s.attemptRepo.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	responses := make([]ClaimAttemptResponse, len(attempts))
	for i := range attempts {
		responses[i] = ToClaimAttemptResponse(&attempts[i])
	}
	return responses, nil
}

func (s *ClaimService) recordAttempt(ctx context.Context, orderID, partnerID uuid.UUID, dispatchAttempt int, submittedAt time.Time, outcome dispatch.ClaimOutcome) {
	attempt, err := dispatch.NewClaimAttempt(orderID, partnerID, dispatchAttempt, submittedAt, outcome)
	if err != nil {
		s.logger.Warn("invalid claim attempt record", zap.Error(err))
		return
	}
	if err := s.attemptRepo.Append(ctx, attempt); err != nil {
		s.logger.Warn("failed to append claim attempt",
			zap.String("order_id", orderID.String()),
			zap.Error(err),
		)
	}
}

func (s *ClaimService) publish(ctx context.Context, event shared.DomainEvent) {
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
