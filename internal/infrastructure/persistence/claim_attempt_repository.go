package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/quickcart/backend/internal/domain/dispatch"
	"github.com/quickcart/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormClaimAttemptRepository implements dispatch.ClaimAttemptRepository
// using GORM. The table is append-only; nothing here updates or deletes.
type GormClaimAttemptRepository struct {
	db *gorm.DB
}

// NewGormClaimAttemptRepository creates a new GormClaimAttemptRepository
func NewGormClaimAttemptRepository(db *gorm.DB) *GormClaimAttemptRepository {
	return &GormClaimAttemptRepository{db: db}
}

// Append records one decided claim submission
func (r *GormClaimAttemptRepository) Append(ctx context.Context, attempt *dispatch.ClaimAttempt) error {
	model := models.ClaimAttemptModelFromDomain(attempt)
	return r.db.WithContext(ctx).Create(model).Error
}

// ListByOrder lists all claim attempts for one order in submission order
func (r *GormClaimAttemptRepository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]dispatch.ClaimAttempt, error) {
	var attemptModels []models.ClaimAttemptModel
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("submitted_at ASC").
		Find(&attemptModels).Error; err != nil {
		return nil, err
	}

	attempts := make([]dispatch.ClaimAttempt, len(attemptModels))
	for i, model := range attemptModels {
		attempts[i] = *model.ToDomain()
	}
	return attempts, nil
}

var _ dispatch.ClaimAttemptRepository = (*GormClaimAttemptRepository)(nil)
