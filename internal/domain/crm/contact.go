package crm

import (
	"strings"
	"time"

	"github.com/fenestra/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Contact represents a person associated with a customer account.
// Every contact requires an owning customer: the CRM side enforces the
// same rule, so an inbound sync without a resolvable account is skipped.
type Contact struct {
	shared.BaseAggregateRoot
	FirstName  string    `gorm:"type:varchar(100);not null"`
	LastName   string    `gorm:"type:varchar(100)"`
	Email      string    `gorm:"type:varchar(200);index"`
	Phone      string    `gorm:"type:varchar(50)"`
	Title      string    `gorm:"type:varchar(100)"`
	CustomerID uuid.UUID `gorm:"type:uuid;not null;index"`

	// Sync link fields, owned by the sync engine.
	ExternalID   *string    `gorm:"type:varchar(64);uniqueIndex"`
	LastSyncedAt *time.Time `gorm:""`
}

// TableName returns the table name for GORM
func (Contact) TableName() string {
	return "contacts"
}

// NewContact creates a new contact linked to a customer
func NewContact(customerID uuid.UUID, firstName, lastName string) (*Contact, error) {
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Contact requires a customer")
	}
	if strings.TrimSpace(firstName) == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Contact first name cannot be empty")
	}
	if len(firstName) > 100 || len(lastName) > 100 {
		return nil, shared.NewDomainError("INVALID_NAME", "Contact name cannot exceed 100 characters")
	}

	contact := &Contact{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		FirstName:         strings.TrimSpace(firstName),
		LastName:          strings.TrimSpace(lastName),
		CustomerID:        customerID,
	}

	contact.AddDomainEvent(NewContactCreatedEvent(contact))

	return contact, nil
}

// DisplayName returns the contact's full display name.
// Empty parts are filtered; the remainder is joined with a single space.
func (c *Contact) DisplayName() string {
	parts := make([]string, 0, 2)
	if c.FirstName != "" {
		parts = append(parts, c.FirstName)
	}
	if c.LastName != "" {
		parts = append(parts, c.LastName)
	}
	return strings.Join(parts, " ")
}

// SetName updates the contact's name
func (c *Contact) SetName(firstName, lastName string) error {
	if strings.TrimSpace(firstName) == "" {
		return shared.NewDomainError("INVALID_NAME", "Contact first name cannot be empty")
	}
	if len(firstName) > 100 || len(lastName) > 100 {
		return shared.NewDomainError("INVALID_NAME", "Contact name cannot exceed 100 characters")
	}
	c.FirstName = strings.TrimSpace(firstName)
	c.LastName = strings.TrimSpace(lastName)
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	c.AddDomainEvent(NewContactUpdatedEvent(c))
	return nil
}

// SetDetails updates the contact's email, phone and title
func (c *Contact) SetDetails(email, phone, title string) error {
	if email != "" {
		if err := validateEmail(email); err != nil {
			return err
		}
	}
	if phone != "" {
		if err := validatePhone(phone); err != nil {
			return err
		}
	}
	if title != "" && len(title) > 100 {
		return shared.NewDomainError("INVALID_TITLE", "Title cannot exceed 100 characters")
	}
	c.Email = email
	c.Phone = phone
	c.Title = title
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return nil
}

// Reassign moves the contact to a different customer
func (c *Contact) Reassign(customerID uuid.UUID) error {
	if customerID == uuid.Nil {
		return shared.NewDomainError("INVALID_CUSTOMER", "Contact requires a customer")
	}
	c.CustomerID = customerID
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	c.AddDomainEvent(NewContactUpdatedEvent(c))
	return nil
}

// IsLinked returns true if the contact is linked to an external CRM task
func (c *Contact) IsLinked() bool {
	return c.ExternalID != nil && *c.ExternalID != ""
}
