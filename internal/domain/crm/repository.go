package crm

import (
	"context"
	"time"

	"github.com/fenestra/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CustomerRepository defines the interface for customer persistence
type CustomerRepository interface {
	// FindByID finds a customer by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Customer, error)

	// FindByCode finds a customer by its code
	FindByCode(ctx context.Context, code string) (*Customer, error)

	// FindByExternalID finds the customer linked to an external CRM task
	FindByExternalID(ctx context.Context, externalID string) (*Customer, error)

	// FindByName finds a customer by exact name match
	FindByName(ctx context.Context, name string) (*Customer, error)

	// FindAll finds all customers matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Customer, error)

	// Count counts customers matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// Save creates or updates a customer
	Save(ctx context.Context, customer *Customer) error

	// Delete deletes a customer
	Delete(ctx context.Context, id uuid.UUID) error

	// UpdateSyncLink sets the external ID and last-synced timestamp.
	// This is the only write path for sync link fields.
	UpdateSyncLink(ctx context.Context, id uuid.UUID, externalID string, syncedAt time.Time) error

	// ClearSyncLink removes the external link (external-side deletion)
	ClearSyncLink(ctx context.Context, id uuid.UUID) error
}

// ContactRepository defines the interface for contact persistence
type ContactRepository interface {
	// FindByID finds a contact by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Contact, error)

	// FindByExternalID finds the contact linked to an external CRM task
	FindByExternalID(ctx context.Context, externalID string) (*Contact, error)

	// FindByCustomer finds all contacts belonging to a customer
	FindByCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) ([]Contact, error)

	// FindAll finds all contacts matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Contact, error)

	// Count counts contacts matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// Save creates or updates a contact
	Save(ctx context.Context, contact *Contact) error

	// Delete deletes a contact
	Delete(ctx context.Context, id uuid.UUID) error

	// UpdateSyncLink sets the external ID and last-synced timestamp
	UpdateSyncLink(ctx context.Context, id uuid.UUID, externalID string, syncedAt time.Time) error

	// ClearSyncLink removes the external link (external-side deletion)
	ClearSyncLink(ctx context.Context, id uuid.UUID) error
}

// ProjectRepository defines the interface for project persistence
type ProjectRepository interface {
	// FindByID finds a project by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Project, error)

	// FindByNumber finds a project by its number
	FindByNumber(ctx context.Context, number string) (*Project, error)

	// FindByExternalID finds the project linked to an external CRM task
	FindByExternalID(ctx context.Context, externalID string) (*Project, error)

	// FindByCustomer finds all projects belonging to a customer
	FindByCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) ([]Project, error)

	// FindAll finds all projects matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Project, error)

	// Count counts projects matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// Save creates or updates a project
	Save(ctx context.Context, project *Project) error

	// Delete deletes a project
	Delete(ctx context.Context, id uuid.UUID) error

	// UpdateSyncLink sets the external ID and last-synced timestamp
	UpdateSyncLink(ctx context.Context, id uuid.UUID, externalID string, syncedAt time.Time) error

	// ClearSyncLink removes the external link (external-side deletion)
	ClearSyncLink(ctx context.Context, id uuid.UUID) error
}
