package quickbooks

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/oauth2"

	domsync "github.com/fenestra/backend/internal/domain/sync"
)

// ProviderName keys the stored token row for this integration
const ProviderName = "quickbooks"

// refreshWindow triggers a proactive refresh before the access token expires
const refreshWindow = 5 * time.Minute

// scopeAccounting is the only scope the integration needs
const scopeAccounting = "com.intuit.quickbooks.accounting"

// TokenManager owns the OAuth2 lifecycle: authorization, exchange, storage
// and proactive refresh
type TokenManager struct {
	config *Config
	oauth  *oauth2.Config
	repo   domsync.OAuthTokenRepository
}

// NewTokenManager wires the OAuth2 flow to the token repository
func NewTokenManager(config *Config, repo domsync.OAuthTokenRepository) *TokenManager {
	return &TokenManager{
		config: config,
		oauth: &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			RedirectURL:  config.RedirectURL,
			Scopes:       []string{scopeAccounting},
			Endpoint: oauth2.Endpoint{
				AuthURL:  authURL,
				TokenURL: config.TokenURL,
			},
		},
		repo: repo,
	}
}

// AuthCodeURL builds the authorization URL the user visits to connect the
// company file. State must be verified on callback.
func (m *TokenManager) AuthCodeURL(state string) string {
	return m.oauth.AuthCodeURL(state)
}

// Exchange trades the callback code for tokens and persists them together
// with the company (realm) ID
func (m *TokenManager) Exchange(ctx context.Context, code, realmID string) error {
	tok, err := m.oauth.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("quickbooks: code exchange failed: %w", err)
	}
	return m.repo.Save(ctx, &domsync.OAuthToken{
		Provider:     ProviderName,
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
		Expiry:       tok.Expiry,
		RealmID:      realmID,
		UpdatedAt:    time.Now(),
	})
}

// AccessToken returns a valid access token and the realm ID, refreshing
// proactively when the stored token expires within the refresh window.
// Returns ErrAuthExpired when no token is stored or the refresh is rejected.
func (m *TokenManager) AccessToken(ctx context.Context) (string, string, error) {
	stored, err := m.repo.Find(ctx, ProviderName)
	if err != nil {
		return "", "", fmt.Errorf("%w: no stored token", domsync.ErrAuthExpired)
	}

	if !stored.ExpiresWithin(refreshWindow) {
		return stored.AccessToken, stored.RealmID, nil
	}
	return m.refresh(ctx, stored)
}

// ForceRefresh refreshes regardless of expiry. Used after a 401 in case the
// token was revoked server side.
func (m *TokenManager) ForceRefresh(ctx context.Context) (string, string, error) {
	stored, err := m.repo.Find(ctx, ProviderName)
	if err != nil {
		return "", "", fmt.Errorf("%w: no stored token", domsync.ErrAuthExpired)
	}
	return m.refresh(ctx, stored)
}

func (m *TokenManager) refresh(ctx context.Context, stored *domsync.OAuthToken) (string, string, error) {
	if stored.RefreshToken == "" {
		return "", "", fmt.Errorf("%w: no refresh token", domsync.ErrAuthExpired)
	}

	// TokenSource with an already-expired token forces the refresh grant
	src := m.oauth.TokenSource(ctx, &oauth2.Token{
		RefreshToken: stored.RefreshToken,
		Expiry:       time.Now().Add(-time.Minute),
	})
	tok, err := src.Token()
	if err != nil {
		return "", "", fmt.Errorf("%w: refresh rejected: %v", domsync.ErrAuthExpired, err)
	}

	stored.AccessToken = tok.AccessToken
	if tok.RefreshToken != "" {
		stored.RefreshToken = tok.RefreshToken
	}
	stored.TokenType = tok.TokenType
	stored.Expiry = tok.Expiry
	stored.UpdatedAt = time.Now()
	if err := m.repo.Save(ctx, stored); err != nil {
		return "", "", fmt.Errorf("quickbooks: failed to persist refreshed token: %w", err)
	}
	return stored.AccessToken, stored.RealmID, nil
}

// Disconnect removes the stored credentials
func (m *TokenManager) Disconnect(ctx context.Context) error {
	return m.repo.Delete(ctx, ProviderName)
}
