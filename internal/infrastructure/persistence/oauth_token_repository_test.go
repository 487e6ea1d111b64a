package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/fenestra/backend/internal/domain/shared"
	domsync "github.com/fenestra/backend/internal/domain/sync"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTokenTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&domsync.OAuthToken{})
	require.NoError(t, err)

	return db
}

func TestGormOAuthTokenRepository(t *testing.T) {
	db := setupTokenTestDB(t)
	repo := NewGormOAuthTokenRepository(db)
	ctx := context.Background()

	t.Run("returns ErrNotFound when no token stored", func(t *testing.T) {
		_, err := repo.Find(ctx, "quickbooks")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("saves and finds a token", func(t *testing.T) {
		token := &domsync.OAuthToken{
			Provider:     "quickbooks",
			AccessToken:  "access-1",
			RefreshToken: "refresh-1",
			TokenType:    "bearer",
			Expiry:       time.Now().Add(time.Hour),
			RealmID:      "9130350000000",
		}
		require.NoError(t, repo.Save(ctx, token))

		found, err := repo.Find(ctx, "quickbooks")
		require.NoError(t, err)
		assert.Equal(t, "access-1", found.AccessToken)
		assert.Equal(t, "9130350000000", found.RealmID)
		assert.False(t, found.UpdatedAt.IsZero())
	})

	t.Run("save replaces the previous token for the provider", func(t *testing.T) {
		token := &domsync.OAuthToken{
			Provider:     "quickbooks",
			AccessToken:  "access-2",
			RefreshToken: "refresh-2",
			TokenType:    "bearer",
			Expiry:       time.Now().Add(2 * time.Hour),
			RealmID:      "9130350000000",
		}
		require.NoError(t, repo.Save(ctx, token))

		found, err := repo.Find(ctx, "quickbooks")
		require.NoError(t, err)
		assert.Equal(t, "access-2", found.AccessToken)
		assert.Equal(t, "refresh-2", found.RefreshToken)
	})

	t.Run("deletes a token", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, "quickbooks"))

		_, err := repo.Find(ctx, "quickbooks")
		assert.ErrorIs(t, err, shared.ErrNotFound)

		err = repo.Delete(ctx, "quickbooks")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
