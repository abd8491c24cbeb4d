package alarm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
)

// maxResponseSize caps how much of a claim response is read (1MB)
const maxResponseSize = 1 * 1024 * 1024

// ErrClaimTransport indicates the claim submission never reached a decision:
// the caller must retry the identical submission.
var ErrClaimTransport = errors.New("alarm: claim submission transport failure")

// ClaimSubmitter submits one accept claim and returns the arbitration
// outcome. An error return means no decision was received.
type ClaimSubmitter interface {
	Submit(ctx context.Context, orderID, partnerID uuid.UUID, dispatchAttempt int) (ClaimResult, error)
}

// ClientConfig configures the dispatch API client
type ClientConfig struct {
	BaseURL        string
	TimeoutSeconds int
}

// Validate checks the client configuration
func (c *ClientConfig) Validate() error {
	if c.BaseURL == "" {
		return errors.New("alarm: base URL is required")
	}
	if _, err := url.Parse(c.BaseURL); err != nil {
		return fmt.Errorf("alarm: invalid base URL: %w", err)
	}
	if c.TimeoutSeconds <= 0 {
		return errors.New("alarm: timeout must be positive")
	}
	return nil
}

// ClaimClient submits claims to the dispatch HTTP API. A 200 and a 409 are
// both decisions; only transport failures and unexpected statuses surface as
// errors for the retry loop.
type ClaimClient struct {
	config     *ClientConfig
	httpClient *http.Client
}

// NewClaimClient creates a new ClaimClient with the given configuration
func NewClaimClient(config *ClientConfig) (*ClaimClient, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &ClaimClient{
		config: config,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
	}, nil
}

type claimRequest struct {
	PartnerID       uuid.UUID `json:"partner_id"`
	DispatchAttempt int       `json:"dispatch_attempt"`
}

type claimEnvelope struct {
	Success bool `json:"success"`
	Data    *struct {
		Outcome string `json:"outcome"`
	} `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Submit posts the accept claim for one (order, attempt)
func (c *ClaimClient) Submit(ctx context.Context, orderID, partnerID uuid.UUID, dispatchAttempt int) (ClaimResult, error) {
	body, err := json.Marshal(claimRequest{
		PartnerID:       partnerID,
		DispatchAttempt: dispatchAttempt,
	})
	if err != nil {
		return ClaimResult{}, err
	}

	endpoint := fmt.Sprintf("%s/api/v1/partner/orders/%s/accept", c.config.BaseURL, orderID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return ClaimResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ClaimResult{}, fmt.Errorf("%w: %v", ErrClaimTransport, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return ClaimResult{}, fmt.Errorf("%w: %v", ErrClaimTransport, err)
	}

	var envelope claimEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return ClaimResult{}, fmt.Errorf("%w: malformed response: %v", ErrClaimTransport, err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		if envelope.Data == nil || envelope.Data.Outcome == "" {
			return ClaimResult{}, fmt.Errorf("%w: missing outcome", ErrClaimTransport)
		}
		return ClaimResult{Outcome: envelope.Data.Outcome}, nil
	case http.StatusConflict:
		if envelope.Error == nil || envelope.Error.Code == "" {
			return ClaimResult{}, fmt.Errorf("%w: missing loss code", ErrClaimTransport)
		}
		return ClaimResult{Outcome: envelope.Error.Code}, nil
	default:
		return ClaimResult{}, fmt.Errorf("%w: unexpected status %d", ErrClaimTransport, resp.StatusCode)
	}
}
