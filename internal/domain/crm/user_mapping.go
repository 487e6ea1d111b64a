package crm

import (
	"context"

	"github.com/fenestra/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// UserMapping links a local user to the matching user account in the
// external CRM, used to translate task assignees in both directions.
type UserMapping struct {
	shared.BaseEntity
	UserID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	ExternalUserID string    `gorm:"type:varchar(64);not null;uniqueIndex"`
	DisplayName    string    `gorm:"type:varchar(200)"`
}

// TableName returns the table name for GORM
func (UserMapping) TableName() string {
	return "user_mappings"
}

// NewUserMapping creates a new user mapping
func NewUserMapping(userID uuid.UUID, externalUserID, displayName string) (*UserMapping, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	if externalUserID == "" {
		return nil, shared.NewDomainError("INVALID_EXTERNAL_USER", "External user ID cannot be empty")
	}
	return &UserMapping{
		BaseEntity:     shared.NewBaseEntity(),
		UserID:         userID,
		ExternalUserID: externalUserID,
		DisplayName:    displayName,
	}, nil
}

// UserMappingRepository defines the interface for user mapping persistence
type UserMappingRepository interface {
	// FindByUserID finds the mapping for a local user
	FindByUserID(ctx context.Context, userID uuid.UUID) (*UserMapping, error)

	// FindByExternalUserID finds the mapping for an external user
	FindByExternalUserID(ctx context.Context, externalUserID string) (*UserMapping, error)

	// FindAll returns all user mappings
	FindAll(ctx context.Context) ([]UserMapping, error)

	// Save creates or updates a mapping
	Save(ctx context.Context, mapping *UserMapping) error

	// Delete deletes a mapping
	Delete(ctx context.Context, id uuid.UUID) error
}
