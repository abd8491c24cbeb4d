package dispatch

import (
	"context"

	"github.com/google/uuid"
	"github.com/quickcart/backend/internal/domain/dispatch"
	"go.uber.org/zap"
)

// PartnerRegistryService tracks partner online status and messaging tokens,
// and selects dispatch candidates. Registry state changes are local and
// best-effort: an invalid token is only discovered when a push fails.
type PartnerRegistryService struct {
	partnerRepo dispatch.PartnerRepository
	ranker      CandidateRanker
	logger      *zap.Logger
}

// NewPartnerRegistryService creates a new PartnerRegistryService
func NewPartnerRegistryService(partnerRepo dispatch.PartnerRepository, ranker CandidateRanker, logger *zap.Logger) *PartnerRegistryService {
	return &PartnerRegistryService{
		partnerRepo: partnerRepo,
		ranker:      ranker,
		logger:      logger,
	}
}

// Register creates a new partner record, initially offline
func (s *PartnerRegistryService) Register(ctx context.Context, name string) (*PartnerResponse, error) {
	partner, err := dispatch.NewPartner(name)
	if err != nil {
		return nil, err
	}
	if err := s.partnerRepo.Save(ctx, partner); err != nil {
		return nil, err
	}
	response := ToPartnerResponse(partner)
	return &response, nil
}

// SetOnline marks the partner online and stores its messaging token,
// making it eligible for future dispatch selection
func (s *PartnerRegistryService) SetOnline(ctx context.Context, partnerID uuid.UUID, token string) error {
	partner, err := s.partnerRepo.FindByID(ctx, partnerID)
	if err != nil {
		return err
	}
	if err := partner.SetOnline(token); err != nil {
		return err
	}
	if err := s.partnerRepo.Save(ctx, partner); err != nil {
		return err
	}
	s.logger.Info("partner online",
		zap.String("partner_id", partnerID.String()),
	)
	return nil
}

// SetOffline marks the partner offline. Idempotent.
func (s *PartnerRegistryService) SetOffline(ctx context.Context, partnerID uuid.UUID) error {
	partner, err := s.partnerRepo.FindByID(ctx, partnerID)
	if err != nil {
		return err
	}
	partner.SetOffline()
	if err := s.partnerRepo.Save(ctx, partner); err != nil {
		return err
	}
	s.logger.Info("partner offline",
		zap.String("partner_id", partnerID.String()),
	)
	return nil
}

// RefreshToken rotates the messaging token without a status change
func (s *PartnerRegistryService) RefreshToken(ctx context.Context, partnerID uuid.UUID, token string) error {
	partner, err := s.partnerRepo.FindByID(ctx, partnerID)
	if err != nil {
		return err
	}
	if err := partner.RefreshToken(token); err != nil {
		return err
	}
	return s.partnerRepo.Save(ctx, partner)
}

// GetByID returns one partner
func (s *PartnerRegistryService) GetByID(ctx context.Context, partnerID uuid.UUID) (*PartnerResponse, error) {
	partner, err := s.partnerRepo.FindByID(ctx, partnerID)
	if err != nil {
		return nil, err
	}
	response := ToPartnerResponse(partner)
	return &response, nil
}

// EligibleCandidates returns up to limit online partners ranked by the
// injected heuristic. Offline partners are never returned, stale tokens or
// not.
func (s *PartnerRegistryService) EligibleCandidates(ctx context.Context, pickup PickupContext, limit int) ([]dispatch.Partner, error) {
	online, err := s.partnerRepo.FindOnline(ctx)
	if err != nil {
		return nil, err
	}

	dispatchable := make([]dispatch.Partner, 0, len(online))
	for _, p := range online {
		if p.Dispatchable() {
			dispatchable = append(dispatchable, p)
		}
	}

	ranked := dispatchable
	if s.ranker != nil {
		ranked = s.ranker.Rank(ctx, dispatchable, pickup)
	}
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}
