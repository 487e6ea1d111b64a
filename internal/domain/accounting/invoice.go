package accounting

import (
	"strings"
	"time"

	"github.com/fenestra/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceStatus represents the lifecycle state of an invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft InvoiceStatus = "draft"
	InvoiceStatusSent  InvoiceStatus = "sent"
	InvoiceStatusPaid  InvoiceStatus = "paid"
	InvoiceStatusVoid  InvoiceStatus = "void"
)

// IsValid returns true if the status is a known value
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusPaid, InvoiceStatusVoid:
		return true
	default:
		return false
	}
}

// Invoice is a customer invoice. It carries just enough detail to be
// pushed to the accounting system; payment application and ledger effects
// live there, not here.
type Invoice struct {
	shared.BaseAggregateRoot
	Number     string        `gorm:"type:varchar(50);not null;uniqueIndex"`
	CustomerID uuid.UUID     `gorm:"type:uuid;not null;index"`
	ProjectID  *uuid.UUID    `gorm:"type:uuid;index"`
	Status     InvoiceStatus `gorm:"type:varchar(20);not null;default:'draft'"`
	IssueDate  time.Time     `gorm:""`
	DueDate    *time.Time    `gorm:""`
	Notes      string        `gorm:"type:text"`
	Lines      []InvoiceLine `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`

	// Sync link fields, owned by the sync engine.
	ExternalID   *string    `gorm:"type:varchar(64);uniqueIndex"`
	LastSyncedAt *time.Time `gorm:""`
}

// TableName returns the table name for GORM
func (Invoice) TableName() string {
	return "invoices"
}

// InvoiceLine is one billed line on an invoice
type InvoiceLine struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	InvoiceID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	LineNum     int             `gorm:"not null"`
	Description string          `gorm:"type:varchar(500)"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:1"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (InvoiceLine) TableName() string {
	return "invoice_lines"
}

// Amount returns the line total
func (l *InvoiceLine) Amount() decimal.Decimal {
	return l.Quantity.Mul(l.UnitPrice)
}

// NewInvoice creates a draft invoice for a customer
func NewInvoice(number string, customerID uuid.UUID) (*Invoice, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return nil, shared.NewDomainError("INVALID_NUMBER", "Invoice number cannot be empty")
	}
	if len(number) > 50 {
		return nil, shared.NewDomainError("INVALID_NUMBER", "Invoice number cannot exceed 50 characters")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Invoice requires a customer")
	}
	return &Invoice{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Number:            strings.ToUpper(number),
		CustomerID:        customerID,
		Status:            InvoiceStatusDraft,
		IssueDate:         time.Now(),
	}, nil
}

// AddLine appends a billed line
func (i *Invoice) AddLine(description string, quantity, unitPrice decimal.Decimal) error {
	if quantity.IsNegative() || quantity.IsZero() {
		return shared.NewDomainError("INVALID_QUANTITY", "Line quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Line price cannot be negative")
	}
	i.Lines = append(i.Lines, InvoiceLine{
		ID:          uuid.New(),
		InvoiceID:   i.ID,
		LineNum:     len(i.Lines) + 1,
		Description: description,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
	})
	i.UpdatedAt = time.Now()
	i.IncrementVersion()
	return nil
}

// Total returns the sum of all line amounts
func (i *Invoice) Total() decimal.Decimal {
	total := decimal.Zero
	for idx := range i.Lines {
		total = total.Add(i.Lines[idx].Amount())
	}
	return total
}

// SetStatus moves the invoice to a new status
func (i *Invoice) SetStatus(status InvoiceStatus) error {
	if !status.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Invalid invoice status")
	}
	i.Status = status
	i.UpdatedAt = time.Now()
	i.IncrementVersion()
	return nil
}

// SetDueDate sets the payment due date
func (i *Invoice) SetDueDate(date *time.Time) {
	i.DueDate = date
	i.UpdatedAt = time.Now()
	i.IncrementVersion()
}

// IsLinked returns true if the invoice is linked to an accounting record
func (i *Invoice) IsLinked() bool {
	return i.ExternalID != nil && *i.ExternalID != ""
}
