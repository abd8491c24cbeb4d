package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/quickcart/backend/internal/domain/dispatch"
	"github.com/quickcart/backend/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupClaimAttemptTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.ClaimAttemptModel{})
	require.NoError(t, err)

	return db
}

func TestGormClaimAttemptRepository_AppendAndList(t *testing.T) {
	db := setupClaimAttemptTestDB(t)
	repo := NewGormClaimAttemptRepository(db)
	ctx := context.Background()

	orderID := uuid.New()
	winner := uuid.New()
	loser := uuid.New()
	base := time.Now()

	first, err := dispatch.NewClaimAttempt(orderID, winner, 1, base, dispatch.ClaimOutcomeWon)
	require.NoError(t, err)
	second, err := dispatch.NewClaimAttempt(orderID, loser, 1, base.Add(50*time.Millisecond), dispatch.ClaimOutcomeLostAlreadyAssigned)
	require.NoError(t, err)
	unrelated, err := dispatch.NewClaimAttempt(uuid.New(), loser, 1, base, dispatch.ClaimOutcomeLostExpired)
	require.NoError(t, err)

	require.NoError(t, repo.Append(ctx, first))
	require.NoError(t, repo.Append(ctx, second))
	require.NoError(t, repo.Append(ctx, unrelated))

	attempts, err := repo.ListByOrder(ctx, orderID)
	require.NoError(t, err)
	require.Len(t, attempts, 2)

	// Submission order preserved
	assert.Equal(t, winner, attempts[0].PartnerID)
	assert.Equal(t, dispatch.ClaimOutcomeWon, attempts[0].Outcome)
	assert.Equal(t, loser, attempts[1].PartnerID)
	assert.Equal(t, dispatch.ClaimOutcomeLostAlreadyAssigned, attempts[1].Outcome)
}

func TestGormClaimAttemptRepository_ListEmptyOrder(t *testing.T) {
	db := setupClaimAttemptTestDB(t)
	repo := NewGormClaimAttemptRepository(db)

	attempts, err := repo.ListByOrder(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Empty(t, attempts)
}
