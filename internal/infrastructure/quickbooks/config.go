package quickbooks

import (
	"fmt"
	"strings"
)

// API base URLs per environment
const (
	SandboxBaseURL    = "https://sandbox-quickbooks.api.intuit.com/v3/company"
	ProductionBaseURL = "https://quickbooks.api.intuit.com/v3/company"

	authURL  = "https://appcenter.intuit.com/connect/oauth2"
	tokenURL = "https://oauth.platform.intuit.com/oauth2/v1/tokens/bearer"
)

// Config holds connection settings for the QuickBooks Online API
type Config struct {
	// Enabled turns the integration on. When false, push attempts return
	// ErrSyncDisabled without making any network calls.
	Enabled bool `mapstructure:"enabled"`
	// ClientID and ClientSecret identify the connected app
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	// RedirectURL receives the OAuth authorization callback
	RedirectURL string `mapstructure:"redirect_url"`
	// Environment selects sandbox or production
	Environment string `mapstructure:"environment"`
	// BaseURL overrides the API endpoint, mainly for tests
	BaseURL string `mapstructure:"base_url"`
	// TokenURL overrides the OAuth token endpoint, mainly for tests
	TokenURL string `mapstructure:"token_url"`
	// TimeoutSeconds bounds each HTTP call
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

// ApplyDefaults fills unset fields with sensible defaults
func (c *Config) ApplyDefaults() {
	if c.Environment == "" {
		c.Environment = "sandbox"
	}
	if c.BaseURL == "" {
		if c.Environment == "production" {
			c.BaseURL = ProductionBaseURL
		} else {
			c.BaseURL = SandboxBaseURL
		}
	}
	if c.TokenURL == "" {
		c.TokenURL = tokenURL
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 30
	}
}

// Validate checks the configuration for a usable integration
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if strings.TrimSpace(c.ClientID) == "" || strings.TrimSpace(c.ClientSecret) == "" {
		return fmt.Errorf("quickbooks: client_id and client_secret are required when enabled")
	}
	if c.Environment != "sandbox" && c.Environment != "production" {
		return fmt.Errorf("quickbooks: environment must be sandbox or production, got %q", c.Environment)
	}
	return nil
}
