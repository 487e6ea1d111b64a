package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/fenestra/backend/internal/domain/shared"
	domsync "github.com/fenestra/backend/internal/domain/sync"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOAuthTokenRepository persists provider credential sets, one row per
// provider
type GormOAuthTokenRepository struct {
	db *gorm.DB
}

// NewGormOAuthTokenRepository creates a new GormOAuthTokenRepository
func NewGormOAuthTokenRepository(db *gorm.DB) *GormOAuthTokenRepository {
	return &GormOAuthTokenRepository{db: db}
}

// Find returns the stored token for a provider
func (r *GormOAuthTokenRepository) Find(ctx context.Context, provider string) (*domsync.OAuthToken, error) {
	var token domsync.OAuthToken
	if err := r.db.WithContext(ctx).
		Where("provider = ?", provider).
		First(&token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &token, nil
}

// Save upserts the token for its provider
func (r *GormOAuthTokenRepository) Save(ctx context.Context, token *domsync.OAuthToken) error {
	token.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "provider"}},
			UpdateAll: true,
		}).
		Create(token).Error
}

// Delete removes the stored token for a provider
func (r *GormOAuthTokenRepository) Delete(ctx context.Context, provider string) error {
	result := r.db.WithContext(ctx).Delete(&domsync.OAuthToken{}, "provider = ?", provider)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormOAuthTokenRepository implements OAuthTokenRepository
var _ domsync.OAuthTokenRepository = (*GormOAuthTokenRepository)(nil)
