package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/fenestra/backend/internal/domain/crm"
	"github.com/fenestra/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupContactTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&crm.Customer{}, &crm.Contact{})
	require.NoError(t, err)

	return db
}

func mustNewContact(t *testing.T, customerID uuid.UUID, firstName, lastName string) *crm.Contact {
	t.Helper()
	contact, err := crm.NewContact(customerID, firstName, lastName)
	require.NoError(t, err)
	return contact
}

func TestGormContactRepository_SaveAndFind(t *testing.T) {
	db := setupContactTestDB(t)
	repo := NewGormContactRepository(db)
	ctx := context.Background()
	customerID := uuid.New()

	t.Run("saves and finds by ID", func(t *testing.T) {
		contact := mustNewContact(t, customerID, "Dana", "Reyes")
		require.NoError(t, repo.Save(ctx, contact))

		found, err := repo.FindByID(ctx, contact.ID)
		require.NoError(t, err)
		assert.Equal(t, "Dana", found.FirstName)
		assert.Equal(t, "Reyes", found.LastName)
		assert.Equal(t, customerID, found.CustomerID)
	})

	t.Run("returns ErrNotFound for missing contact", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormContactRepository_FindByCustomer(t *testing.T) {
	db := setupContactTestDB(t)
	repo := NewGormContactRepository(db)
	ctx := context.Background()

	owner := uuid.New()
	other := uuid.New()

	for _, name := range [][2]string{{"Ana", "Berg"}, {"Carl", "Dorn"}} {
		contact := mustNewContact(t, owner, name[0], name[1])
		require.NoError(t, repo.Save(ctx, contact))
	}
	stranger := mustNewContact(t, other, "Eve", "Frost")
	require.NoError(t, repo.Save(ctx, stranger))

	contacts, err := repo.FindByCustomer(ctx, owner, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Len(t, contacts, 2)
	for _, c := range contacts {
		assert.Equal(t, owner, c.CustomerID)
	}

	count, err := repo.Count(ctx, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestGormContactRepository_SyncLink(t *testing.T) {
	db := setupContactTestDB(t)
	repo := NewGormContactRepository(db)
	ctx := context.Background()

	contact := mustNewContact(t, uuid.New(), "Gil", "Hart")
	require.NoError(t, repo.Save(ctx, contact))

	syncedAt := time.Now()
	require.NoError(t, repo.UpdateSyncLink(ctx, contact.ID, "task_contact1", syncedAt))

	found, err := repo.FindByExternalID(ctx, "task_contact1")
	require.NoError(t, err)
	assert.Equal(t, contact.ID, found.ID)
	assert.True(t, found.IsLinked())

	require.NoError(t, repo.ClearSyncLink(ctx, contact.ID))
	_, err = repo.FindByExternalID(ctx, "task_contact1")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormContactRepository_Delete(t *testing.T) {
	db := setupContactTestDB(t)
	repo := NewGormContactRepository(db)
	ctx := context.Background()

	contact := mustNewContact(t, uuid.New(), "Ira", "Jones")
	require.NoError(t, repo.Save(ctx, contact))

	require.NoError(t, repo.Delete(ctx, contact.ID))
	err := repo.Delete(ctx, contact.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
