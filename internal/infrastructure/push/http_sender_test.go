package push

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/quickcart/backend/internal/domain/dispatch"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testOffer() *dispatch.DispatchOffer {
	return &dispatch.DispatchOffer{
		OrderID:          uuid.New(),
		OrderNumber:      "ORD-42",
		DispatchAttempt:  2,
		Deadline:         time.Now().Add(30 * time.Second),
		EarningsEstimate: decimal.NewFromFloat(7.50),
		DropoffSummary:   "2 bags, Elm St 14",
	}
}

func TestHTTPSender_Send(t *testing.T) {
	offer := testOffer()
	var got pushMessage

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "Bearer secret-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(pushResponse{Accepted: true})
	}))
	defer server.Close()

	sender, err := NewHTTPSender(&Config{
		Endpoint:       server.URL,
		APIKey:         "secret-key",
		TimeoutSeconds: 5,
	})
	require.NoError(t, err)

	require.NoError(t, sender.Send(context.Background(), "device-token-1", offer))
	assert.Equal(t, "device-token-1", got.Token)
	assert.Equal(t, "dispatch_offer", got.Kind)
	assert.Equal(t, offer.OrderID.String(), got.OrderID)
	assert.Equal(t, "ORD-42", got.OrderNumber)
	assert.Equal(t, 2, got.DispatchAttempt)
	assert.Equal(t, "7.50", got.EarningsEstimate)
}

func TestHTTPSender_GatewayRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(pushResponse{Accepted: false, Message: "unknown token"})
	}))
	defer server.Close()

	sender, err := NewHTTPSender(&Config{Endpoint: server.URL, TimeoutSeconds: 5})
	require.NoError(t, err)

	err = sender.Send(context.Background(), "bad-token", testOffer())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPushGateway)
	assert.Contains(t, err.Error(), "unknown token")
}

func TestHTTPSender_GatewayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	sender, err := NewHTTPSender(&Config{Endpoint: server.URL, TimeoutSeconds: 5})
	require.NoError(t, err)

	err = sender.Send(context.Background(), "device-token-1", testOffer())
	assert.ErrorIs(t, err, ErrPushGateway)
}

func TestHTTPSender_GatewayUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	sender, err := NewHTTPSender(&Config{Endpoint: server.URL, TimeoutSeconds: 1})
	require.NoError(t, err)

	err = sender.Send(context.Background(), "device-token-1", testOffer())
	assert.ErrorIs(t, err, ErrPushGateway)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr string
	}{
		{
			name:   "valid",
			config: &Config{Endpoint: "https://push.internal", TimeoutSeconds: 5},
		},
		{
			name:    "missing endpoint",
			config:  &Config{TimeoutSeconds: 5},
			wantErr: "endpoint is required",
		},
		{
			name:    "zero timeout",
			config:  &Config{Endpoint: "https://push.internal"},
			wantErr: "timeout_seconds must be positive",
		},
		{
			name:    "nil config",
			config:  nil,
			wantErr: "config is nil",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLogSender_Send(t *testing.T) {
	sender := NewLogSender(zap.NewNop())
	assert.NoError(t, sender.Send(context.Background(), "device-token-1", testOffer()))
}
