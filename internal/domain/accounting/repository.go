package accounting

import (
	"context"
	"time"

	"github.com/fenestra/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// InvoiceRepository defines the interface for invoice persistence
type InvoiceRepository interface {
	// FindByID finds an invoice by its ID, lines included
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)

	// FindByNumber finds an invoice by its number
	FindByNumber(ctx context.Context, number string) (*Invoice, error)

	// FindByExternalID finds the invoice linked to an accounting record
	FindByExternalID(ctx context.Context, externalID string) (*Invoice, error)

	// FindAll finds all invoices matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Invoice, error)

	// Count counts invoices matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// Save creates or updates an invoice with its lines
	Save(ctx context.Context, invoice *Invoice) error

	// Delete deletes an invoice and its lines
	Delete(ctx context.Context, id uuid.UUID) error

	// UpdateSyncLink sets the external ID and last-synced timestamp
	UpdateSyncLink(ctx context.Context, id uuid.UUID, externalID string, syncedAt time.Time) error

	// ClearSyncLink removes the external link
	ClearSyncLink(ctx context.Context, id uuid.UUID) error
}

// PurchaseOrderRepository defines the interface for purchase order persistence
type PurchaseOrderRepository interface {
	// FindByID finds a purchase order by its ID, lines included
	FindByID(ctx context.Context, id uuid.UUID) (*PurchaseOrder, error)

	// FindByNumber finds a purchase order by its number
	FindByNumber(ctx context.Context, number string) (*PurchaseOrder, error)

	// FindByExternalID finds the order linked to an accounting record
	FindByExternalID(ctx context.Context, externalID string) (*PurchaseOrder, error)

	// FindAll finds all purchase orders matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]PurchaseOrder, error)

	// Count counts purchase orders matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// Save creates or updates a purchase order with its lines
	Save(ctx context.Context, order *PurchaseOrder) error

	// Delete deletes a purchase order and its lines
	Delete(ctx context.Context, id uuid.UUID) error

	// UpdateSyncLink sets the external ID and last-synced timestamp
	UpdateSyncLink(ctx context.Context, id uuid.UUID, externalID string, syncedAt time.Time) error

	// ClearSyncLink removes the external link
	ClearSyncLink(ctx context.Context, id uuid.UUID) error
}
