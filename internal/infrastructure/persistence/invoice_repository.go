package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/fenestra/backend/internal/domain/accounting"
	"github.com/fenestra/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InvoiceSortFields lists the sortable invoice columns.
var InvoiceSortFields = sortFields(
	"id", "created_at", "updated_at",
	"number", "status", "issue_date", "due_date", "customer_id", "last_synced_at",
)

// GormInvoiceRepository implements InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// FindByID finds an invoice by its ID, lines included
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*accounting.Invoice, error) {
	var invoice accounting.Invoice
	if err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("line_num ASC") }).
		First(&invoice, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &invoice, nil
}

// FindByNumber finds an invoice by its number
func (r *GormInvoiceRepository) FindByNumber(ctx context.Context, number string) (*accounting.Invoice, error) {
	var invoice accounting.Invoice
	if err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("line_num ASC") }).
		Where("number = ?", strings.ToUpper(number)).
		First(&invoice).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &invoice, nil
}

// FindByExternalID finds the invoice linked to an accounting record
func (r *GormInvoiceRepository) FindByExternalID(ctx context.Context, externalID string) (*accounting.Invoice, error) {
	if externalID == "" {
		return nil, shared.NewDomainError("INVALID_EXTERNAL_ID", "External ID cannot be empty")
	}
	var invoice accounting.Invoice
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("external_id = ?", externalID).
		First(&invoice).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &invoice, nil
}

// FindAll finds all invoices matching the filter
func (r *GormInvoiceRepository) FindAll(ctx context.Context, filter shared.Filter) ([]accounting.Invoice, error) {
	var invoices []accounting.Invoice
	query := r.applyFilter(r.db.WithContext(ctx).Model(&accounting.Invoice{}).Preload("Lines"), filter)

	if err := query.Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

// Count counts invoices matching the filter
func (r *GormInvoiceRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&accounting.Invoice{}), filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates an invoice with its lines. Removed lines are
// deleted so the stored set always matches the aggregate.
func (r *GormInvoiceRepository) Save(ctx context.Context, invoice *accounting.Invoice) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(invoice).Error; err != nil {
			return err
		}
		keep := make([]uuid.UUID, 0, len(invoice.Lines))
		for i := range invoice.Lines {
			keep = append(keep, invoice.Lines[i].ID)
		}
		del := tx.Where("invoice_id = ?", invoice.ID)
		if len(keep) > 0 {
			del = del.Where("id NOT IN ?", keep)
		}
		return del.Delete(&accounting.InvoiceLine{}).Error
	})
}

// Delete deletes an invoice and its lines
func (r *GormInvoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("invoice_id = ?", id).Delete(&accounting.InvoiceLine{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&accounting.Invoice{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// UpdateSyncLink sets the external ID and last-synced timestamp. The row's
// updated_at is deliberately left alone so a sync write is never mistaken
// for a local edit.
func (r *GormInvoiceRepository) UpdateSyncLink(ctx context.Context, id uuid.UUID, externalID string, syncedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&accounting.Invoice{}).
		Where("id = ?", id).
		UpdateColumns(map[string]interface{}{
			"external_id":    externalID,
			"last_synced_at": syncedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ClearSyncLink removes the external link
func (r *GormInvoiceRepository) ClearSyncLink(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&accounting.Invoice{}).
		Where("id = ?", id).
		UpdateColumns(map[string]interface{}{
			"external_id":    nil,
			"last_synced_at": nil,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// applyFilter applies filter options to the query
func (r *GormInvoiceRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	// Apply pagination
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	// Apply ordering
	if filter.OrderBy != "" {
		orderBy := ValidateSortField(filter.OrderBy, InvoiceSortFields, "created_at")
		query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
	} else {
		query = query.Order("created_at DESC")
	}

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormInvoiceRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("number LIKE ? OR notes LIKE ?", searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "customer_id":
			query = query.Where("customer_id = ?", value)
		case "linked":
			if value == true {
				query = query.Where("external_id IS NOT NULL")
			} else {
				query = query.Where("external_id IS NULL")
			}
		}
	}

	return query
}

// Ensure GormInvoiceRepository implements InvoiceRepository
var _ accounting.InvoiceRepository = (*GormInvoiceRepository)(nil)
