package push

import "errors"

// Config holds the settings for the device messaging gateway
type Config struct {
	// Endpoint is the base URL of the messaging gateway
	Endpoint string
	// APIKey authenticates this service against the gateway
	APIKey string
	// TimeoutSeconds is the HTTP request timeout
	TimeoutSeconds int
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("push: config is nil")
	}
	if c.Endpoint == "" {
		return errors.New("push: endpoint is required")
	}
	if c.TimeoutSeconds <= 0 {
		return errors.New("push: timeout_seconds must be positive")
	}
	return nil
}
