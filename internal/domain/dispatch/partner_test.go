package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPartner(t *testing.T) {
	t.Run("creates offline partner", func(t *testing.T) {
		partner, err := NewPartner("Rider A")
		require.NoError(t, err)
		assert.False(t, partner.OnlineStatus)
		assert.Nil(t, partner.MessagingToken)
		assert.False(t, partner.Dispatchable())
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := NewPartner("")
		require.Error(t, err)
	})
}

func TestPartner_SetOnline(t *testing.T) {
	t.Run("stores token and marks online", func(t *testing.T) {
		partner, err := NewPartner("Rider A")
		require.NoError(t, err)

		require.NoError(t, partner.SetOnline("tok-1"))

		assert.True(t, partner.OnlineStatus)
		require.NotNil(t, partner.MessagingToken)
		assert.Equal(t, "tok-1", *partner.MessagingToken)
		assert.True(t, partner.Dispatchable())
	})

	t.Run("overwrites a previous token", func(t *testing.T) {
		partner, err := NewPartner("Rider A")
		require.NoError(t, err)
		require.NoError(t, partner.SetOnline("tok-1"))

		require.NoError(t, partner.SetOnline("tok-2"))
		assert.Equal(t, "tok-2", *partner.MessagingToken)
	})

	t.Run("rejects empty token", func(t *testing.T) {
		partner, err := NewPartner("Rider A")
		require.NoError(t, err)
		assert.Error(t, partner.SetOnline(""))
	})
}

func TestPartner_SetOffline(t *testing.T) {
	partner, err := NewPartner("Rider A")
	require.NoError(t, err)
	require.NoError(t, partner.SetOnline("tok-1"))

	partner.SetOffline()
	assert.False(t, partner.OnlineStatus)
	assert.False(t, partner.Dispatchable())

	// Idempotent
	partner.SetOffline()
	assert.False(t, partner.OnlineStatus)
}

func TestPartner_RefreshToken(t *testing.T) {
	t.Run("rotates token without status change", func(t *testing.T) {
		partner, err := NewPartner("Rider A")
		require.NoError(t, err)
		require.NoError(t, partner.SetOnline("tok-1"))
		partner.SetOffline()

		require.NoError(t, partner.RefreshToken("tok-3"))

		assert.Equal(t, "tok-3", *partner.MessagingToken)
		assert.False(t, partner.OnlineStatus, "token rotation must not flip status")
	})

	t.Run("rejects empty token", func(t *testing.T) {
		partner, err := NewPartner("Rider A")
		require.NoError(t, err)
		assert.Error(t, partner.RefreshToken(""))
	})
}
