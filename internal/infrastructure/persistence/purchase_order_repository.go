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

// PurchaseOrderSortFields lists the sortable purchase order columns.
var PurchaseOrderSortFields = sortFields(
	"id", "created_at", "updated_at",
	"number", "vendor_name", "status", "order_date", "last_synced_at",
)

// GormPurchaseOrderRepository implements PurchaseOrderRepository using GORM
type GormPurchaseOrderRepository struct {
	db *gorm.DB
}

// NewGormPurchaseOrderRepository creates a new GormPurchaseOrderRepository
func NewGormPurchaseOrderRepository(db *gorm.DB) *GormPurchaseOrderRepository {
	return &GormPurchaseOrderRepository{db: db}
}

// FindByID finds a purchase order by its ID, lines included
func (r *GormPurchaseOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*accounting.PurchaseOrder, error) {
	var order accounting.PurchaseOrder
	if err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("line_num ASC") }).
		First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindByNumber finds a purchase order by its number
func (r *GormPurchaseOrderRepository) FindByNumber(ctx context.Context, number string) (*accounting.PurchaseOrder, error) {
	var order accounting.PurchaseOrder
	if err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("line_num ASC") }).
		Where("number = ?", strings.ToUpper(number)).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindByExternalID finds the order linked to an accounting record
func (r *GormPurchaseOrderRepository) FindByExternalID(ctx context.Context, externalID string) (*accounting.PurchaseOrder, error) {
	if externalID == "" {
		return nil, shared.NewDomainError("INVALID_EXTERNAL_ID", "External ID cannot be empty")
	}
	var order accounting.PurchaseOrder
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("external_id = ?", externalID).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindAll finds all purchase orders matching the filter
func (r *GormPurchaseOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]accounting.PurchaseOrder, error) {
	var orders []accounting.PurchaseOrder
	query := r.applyFilter(r.db.WithContext(ctx).Model(&accounting.PurchaseOrder{}).Preload("Lines"), filter)

	if err := query.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// Count counts purchase orders matching the filter
func (r *GormPurchaseOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&accounting.PurchaseOrder{}), filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a purchase order with its lines. Removed lines
// are deleted so the stored set always matches the aggregate.
func (r *GormPurchaseOrderRepository) Save(ctx context.Context, order *accounting.PurchaseOrder) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(order).Error; err != nil {
			return err
		}
		keep := make([]uuid.UUID, 0, len(order.Lines))
		for i := range order.Lines {
			keep = append(keep, order.Lines[i].ID)
		}
		del := tx.Where("purchase_order_id = ?", order.ID)
		if len(keep) > 0 {
			del = del.Where("id NOT IN ?", keep)
		}
		return del.Delete(&accounting.PurchaseOrderLine{}).Error
	})
}

// Delete deletes a purchase order and its lines
func (r *GormPurchaseOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("purchase_order_id = ?", id).Delete(&accounting.PurchaseOrderLine{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&accounting.PurchaseOrder{}, "id = ?", id)
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
func (r *GormPurchaseOrderRepository) UpdateSyncLink(ctx context.Context, id uuid.UUID, externalID string, syncedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&accounting.PurchaseOrder{}).
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
func (r *GormPurchaseOrderRepository) ClearSyncLink(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&accounting.PurchaseOrder{}).
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
func (r *GormPurchaseOrderRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	// Apply pagination
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	// Apply ordering
	if filter.OrderBy != "" {
		orderBy := ValidateSortField(filter.OrderBy, PurchaseOrderSortFields, "created_at")
		query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
	} else {
		query = query.Order("created_at DESC")
	}

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormPurchaseOrderRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("number LIKE ? OR vendor_name LIKE ?", searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
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

// Ensure GormPurchaseOrderRepository implements PurchaseOrderRepository
var _ accounting.PurchaseOrderRepository = (*GormPurchaseOrderRepository)(nil)
