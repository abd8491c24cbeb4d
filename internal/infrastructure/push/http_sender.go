package push

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	appdispatch "github.com/quickcart/backend/internal/application/dispatch"
	"github.com/quickcart/backend/internal/domain/dispatch"
)

// maxResponseSize is the maximum allowed response size from the gateway (1MB)
const maxResponseSize = 1 * 1024 * 1024

// ErrPushGateway indicates the messaging gateway rejected or failed a send
var ErrPushGateway = errors.New("push: gateway request failed")

// HTTPSender delivers dispatch offers through an HTTP device messaging
// gateway. Sends are fire-and-forget from the dispatcher's point of view;
// the gateway owns retries and device-level delivery.
type HTTPSender struct {
	config     *Config
	httpClient *http.Client
}

// NewHTTPSender creates a sender for the configured messaging gateway
func NewHTTPSender(config *Config) (*HTTPSender, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &HTTPSender{
		config: config,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
	}, nil
}

// pushMessage is the gateway wire format for one offer notification
type pushMessage struct {
	Token            string    `json:"token"`
	Kind             string    `json:"kind"`
	OrderID          string    `json:"order_id"`
	OrderNumber      string    `json:"order_number"`
	DispatchAttempt  int       `json:"dispatch_attempt"`
	Deadline         time.Time `json:"deadline"`
	EarningsEstimate string    `json:"earnings_estimate"`
	DropoffSummary   string    `json:"dropoff_summary"`
}

type pushResponse struct {
	Accepted bool   `json:"accepted"`
	Message  string `json:"message"`
}

// Send delivers one offer to one device token
func (s *HTTPSender) Send(ctx context.Context, token string, offer *dispatch.DispatchOffer) error {
	msg := pushMessage{
		Token:            token,
		Kind:             "dispatch_offer",
		OrderID:          offer.OrderID.String(),
		OrderNumber:      offer.OrderNumber,
		DispatchAttempt:  offer.DispatchAttempt,
		Deadline:         offer.Deadline,
		EarningsEstimate: offer.EarningsEstimate.StringFixed(2),
		DropoffSummary:   offer.DropoffSummary,
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("push: failed to encode message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.Endpoint+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("push: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.config.APIKey)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPushGateway, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("push: failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return fmt.Errorf("%w: HTTP %d", ErrPushGateway, resp.StatusCode)
	}

	var parsed pushResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return fmt.Errorf("push: failed to parse response: %w", err)
	}
	if !parsed.Accepted {
		return fmt.Errorf("%w: %s", ErrPushGateway, parsed.Message)
	}
	return nil
}

var _ appdispatch.PushSender = (*HTTPSender)(nil)
