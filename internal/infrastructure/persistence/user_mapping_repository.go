package persistence

import (
	"context"
	"errors"

	"github.com/fenestra/backend/internal/domain/crm"
	"github.com/fenestra/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormUserMappingRepository implements UserMappingRepository using GORM
type GormUserMappingRepository struct {
	db *gorm.DB
}

// NewGormUserMappingRepository creates a new GormUserMappingRepository
func NewGormUserMappingRepository(db *gorm.DB) *GormUserMappingRepository {
	return &GormUserMappingRepository{db: db}
}

// FindByUserID finds the mapping for a local user
func (r *GormUserMappingRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*crm.UserMapping, error) {
	var mapping crm.UserMapping
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&mapping).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &mapping, nil
}

// FindByExternalUserID finds the mapping for an external user
func (r *GormUserMappingRepository) FindByExternalUserID(ctx context.Context, externalUserID string) (*crm.UserMapping, error) {
	if externalUserID == "" {
		return nil, shared.NewDomainError("INVALID_EXTERNAL_USER", "External user ID cannot be empty")
	}
	var mapping crm.UserMapping
	if err := r.db.WithContext(ctx).
		Where("external_user_id = ?", externalUserID).
		First(&mapping).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &mapping, nil
}

// FindAll returns all user mappings
func (r *GormUserMappingRepository) FindAll(ctx context.Context) ([]crm.UserMapping, error) {
	var mappings []crm.UserMapping
	if err := r.db.WithContext(ctx).
		Order("display_name ASC").
		Find(&mappings).Error; err != nil {
		return nil, err
	}
	return mappings, nil
}

// Save creates or updates a mapping
func (r *GormUserMappingRepository) Save(ctx context.Context, mapping *crm.UserMapping) error {
	return r.db.WithContext(ctx).Save(mapping).Error
}

// Delete deletes a mapping
func (r *GormUserMappingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&crm.UserMapping{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormUserMappingRepository implements UserMappingRepository
var _ crm.UserMappingRepository = (*GormUserMappingRepository)(nil)
