package dispatch

import (
	"context"
	"sort"
	"testing"

	"github.com/google/uuid"
	"github.com/quickcart/backend/internal/domain/dispatch"
	"github.com/quickcart/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newRegistryFixture(t *testing.T, ranker CandidateRanker) (*PartnerRegistryService, *memPartnerRepo) {
	t.Helper()
	repo := newMemPartnerRepo()
	return NewPartnerRegistryService(repo, ranker, zap.NewNop()), repo
}

func TestPartnerRegistryService_RegisterStartsOffline(t *testing.T) {
	service, _ := newRegistryFixture(t, nil)

	resp, err := service.Register(context.Background(), "Dana")
	require.NoError(t, err)
	assert.Equal(t, "Dana", resp.Name)
	assert.False(t, resp.OnlineStatus)
	assert.False(t, resp.HasToken)
}

func TestPartnerRegistryService_SetOnline(t *testing.T) {
	service, repo := newRegistryFixture(t, nil)
	created, err := service.Register(context.Background(), "Dana")
	require.NoError(t, err)

	require.NoError(t, service.SetOnline(context.Background(), created.ID, "token-1"))

	partner, err := repo.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.True(t, partner.OnlineStatus)
	require.NotNil(t, partner.MessagingToken)
	assert.Equal(t, "token-1", *partner.MessagingToken)
	assert.NotNil(t, partner.LastOnlineAt)
}

func TestPartnerRegistryService_SetOnline_EmptyTokenRejected(t *testing.T) {
	service, _ := newRegistryFixture(t, nil)
	created, err := service.Register(context.Background(), "Dana")
	require.NoError(t, err)

	err = service.SetOnline(context.Background(), created.ID, "")
	require.Error(t, err)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_TOKEN", domainErr.Code)
}

func TestPartnerRegistryService_SetOffline_Idempotent(t *testing.T) {
	service, repo := newRegistryFixture(t, nil)
	created, err := service.Register(context.Background(), "Dana")
	require.NoError(t, err)
	require.NoError(t, service.SetOnline(context.Background(), created.ID, "token-1"))

	require.NoError(t, service.SetOffline(context.Background(), created.ID))
	require.NoError(t, service.SetOffline(context.Background(), created.ID))

	partner, err := repo.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.False(t, partner.OnlineStatus)
}

func TestPartnerRegistryService_RefreshToken_KeepsStatus(t *testing.T) {
	service, repo := newRegistryFixture(t, nil)
	created, err := service.Register(context.Background(), "Dana")
	require.NoError(t, err)
	require.NoError(t, service.SetOnline(context.Background(), created.ID, "token-1"))
	require.NoError(t, service.SetOffline(context.Background(), created.ID))

	require.NoError(t, service.RefreshToken(context.Background(), created.ID, "token-2"))

	partner, err := repo.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.False(t, partner.OnlineStatus, "token rotation must not change the status")
	require.NotNil(t, partner.MessagingToken)
	assert.Equal(t, "token-2", *partner.MessagingToken)
}

func TestPartnerRegistryService_UnknownPartner(t *testing.T) {
	service, _ := newRegistryFixture(t, nil)

	err := service.SetOnline(context.Background(), uuid.New(), "token-1")
	assert.ErrorIs(t, err, shared.ErrNotFound)
	err = service.SetOffline(context.Background(), uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
	_, err = service.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestPartnerRegistryService_EligibleCandidates_OnlyDispatchable(t *testing.T) {
	service, _ := newRegistryFixture(t, nil)
	online, err := service.Register(context.Background(), "Dana")
	require.NoError(t, err)
	require.NoError(t, service.SetOnline(context.Background(), online.ID, "token-dana"))

	offline, err := service.Register(context.Background(), "Eli")
	require.NoError(t, err)
	require.NoError(t, service.SetOnline(context.Background(), offline.ID, "token-eli"))
	require.NoError(t, service.SetOffline(context.Background(), offline.ID))

	candidates, err := service.EligibleCandidates(context.Background(), PickupContext{OrderID: uuid.New()}, 10)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, online.ID, candidates[0].ID)
}

func TestPartnerRegistryService_EligibleCandidates_RankerAndLimit(t *testing.T) {
	byName := CandidateRankerFunc(func(ctx context.Context, candidates []dispatch.Partner, pickup PickupContext) []dispatch.Partner {
		sort.Slice(candidates, func(i, j int) bool {
			return candidates[i].Name < candidates[j].Name
		})
		return candidates
	})
	service, _ := newRegistryFixture(t, byName)

	for _, name := range []string{"Cleo", "Ana", "Bo"} {
		created, err := service.Register(context.Background(), name)
		require.NoError(t, err)
		require.NoError(t, service.SetOnline(context.Background(), created.ID, "token-"+name))
	}

	candidates, err := service.EligibleCandidates(context.Background(), PickupContext{OrderID: uuid.New()}, 2)
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Equal(t, "Ana", candidates[0].Name)
	assert.Equal(t, "Bo", candidates[1].Name)
}
