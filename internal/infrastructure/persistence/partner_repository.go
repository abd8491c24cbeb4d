package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/quickcart/backend/internal/domain/dispatch"
	"github.com/quickcart/backend/internal/domain/shared"
	"github.com/quickcart/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormPartnerRepository implements dispatch.PartnerRepository using GORM
type GormPartnerRepository struct {
	db *gorm.DB
}

// NewGormPartnerRepository creates a new GormPartnerRepository
func NewGormPartnerRepository(db *gorm.DB) *GormPartnerRepository {
	return &GormPartnerRepository{db: db}
}

// FindByID finds a delivery partner by its ID
func (r *GormPartnerRepository) FindByID(ctx context.Context, id uuid.UUID) (*dispatch.Partner, error) {
	var model models.DeliveryPartnerModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save saves a delivery partner (insert or update)
func (r *GormPartnerRepository) Save(ctx context.Context, partner *dispatch.Partner) error {
	model := models.DeliveryPartnerModelFromDomain(partner)
	return r.db.WithContext(ctx).Save(model).Error
}

// FindOnline returns all partners currently marked online
func (r *GormPartnerRepository) FindOnline(ctx context.Context) ([]dispatch.Partner, error) {
	var partnerModels []models.DeliveryPartnerModel
	if err := r.db.WithContext(ctx).
		Where("online_status = ?", true).
		Order("last_online_at DESC").
		Find(&partnerModels).Error; err != nil {
		return nil, err
	}

	partners := make([]dispatch.Partner, len(partnerModels))
	for i, model := range partnerModels {
		partners[i] = *model.ToDomain()
	}
	return partners, nil
}

var _ dispatch.PartnerRepository = (*GormPartnerRepository)(nil)
