package sync

import (
	"context"
	"time"
)

// OAuthToken holds the stored credential set for one external provider.
// A single row per provider; Save replaces any previous token.
type OAuthToken struct {
	Provider     string    `json:"provider" gorm:"type:varchar(32);primaryKey"`
	AccessToken  string    `json:"-" gorm:"type:text"`
	RefreshToken string    `json:"-" gorm:"type:text"`
	TokenType    string    `json:"token_type" gorm:"type:varchar(32)"`
	Expiry       time.Time `json:"expiry"`
	// RealmID is the QuickBooks company identifier bound to the token
	RealmID   string    `json:"realm_id,omitempty" gorm:"type:varchar(64)"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the table name for GORM
func (OAuthToken) TableName() string {
	return "oauth_tokens"
}

// ExpiresWithin reports whether the access token expires within d from now.
// A zero expiry is treated as already expired.
func (t *OAuthToken) ExpiresWithin(d time.Duration) bool {
	if t.Expiry.IsZero() {
		return true
	}
	return time.Now().Add(d).After(t.Expiry)
}

// OAuthTokenRepository persists provider credentials
type OAuthTokenRepository interface {
	Find(ctx context.Context, provider string) (*OAuthToken, error)
	Save(ctx context.Context, token *OAuthToken) error
	Delete(ctx context.Context, provider string) error
}
