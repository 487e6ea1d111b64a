package clickup

import (
	"fmt"
	"strings"
)

// DefaultBaseURL is the production ClickUp API endpoint
const DefaultBaseURL = "https://api.clickup.com/api/v2"

// Config holds connection settings for the ClickUp API
type Config struct {
	// Enabled turns the integration on. When false, sync attempts return
	// ErrSyncDisabled without making any network calls.
	Enabled bool `mapstructure:"enabled"`
	// APIToken is the personal or service token sent in the Authorization header
	APIToken string `mapstructure:"api_token"`
	// BaseURL overrides the API endpoint, mainly for tests
	BaseURL string `mapstructure:"base_url"`
	// WebhookSecret verifies inbound webhook signatures
	WebhookSecret string `mapstructure:"webhook_secret"`
	// CustomerListID is the list holding customer tasks
	CustomerListID string `mapstructure:"customer_list_id"`
	// ContactListID is the list holding contact tasks
	ContactListID string `mapstructure:"contact_list_id"`
	// LeadListID is the list holding lead (project) tasks
	LeadListID string `mapstructure:"lead_list_id"`
	// TimeoutSeconds bounds each HTTP call
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

// ApplyDefaults fills unset fields with sensible defaults
func (c *Config) ApplyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
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
	if strings.TrimSpace(c.APIToken) == "" {
		return fmt.Errorf("clickup: api_token is required when enabled")
	}
	if c.CustomerListID == "" || c.ContactListID == "" || c.LeadListID == "" {
		return fmt.Errorf("clickup: customer_list_id, contact_list_id and lead_list_id are required when enabled")
	}
	return nil
}
