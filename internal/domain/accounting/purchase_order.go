package accounting

import (
	"strings"
	"time"

	"github.com/fenestra/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PurchaseOrderStatus represents the lifecycle state of a purchase order
type PurchaseOrderStatus string

const (
	PurchaseOrderStatusOpen   PurchaseOrderStatus = "open"
	PurchaseOrderStatusClosed PurchaseOrderStatus = "closed"
)

// PurchaseOrder is an order placed with a supplier. Vendors are free text
// here; the accounting push resolves or creates the matching vendor record
// on the accounting side by name.
type PurchaseOrder struct {
	shared.BaseAggregateRoot
	Number     string              `gorm:"type:varchar(50);not null;uniqueIndex"`
	VendorName string              `gorm:"type:varchar(200);not null"`
	ProjectID  *uuid.UUID          `gorm:"type:uuid;index"`
	Status     PurchaseOrderStatus `gorm:"type:varchar(20);not null;default:'open'"`
	OrderDate  time.Time           `gorm:""`
	Notes      string              `gorm:"type:text"`
	Lines      []PurchaseOrderLine `gorm:"foreignKey:PurchaseOrderID;constraint:OnDelete:CASCADE"`

	// Sync link fields, owned by the sync engine.
	ExternalID   *string    `gorm:"type:varchar(64);uniqueIndex"`
	LastSyncedAt *time.Time `gorm:""`
}

// TableName returns the table name for GORM
func (PurchaseOrder) TableName() string {
	return "purchase_orders"
}

// PurchaseOrderLine is one ordered line on a purchase order
type PurchaseOrderLine struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	PurchaseOrderID uuid.UUID       `gorm:"type:uuid;not null;index"`
	LineNum         int             `gorm:"not null"`
	Description     string          `gorm:"type:varchar(500)"`
	Quantity        decimal.Decimal `gorm:"type:decimal(18,4);not null;default:1"`
	UnitPrice       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (PurchaseOrderLine) TableName() string {
	return "purchase_order_lines"
}

// Amount returns the line total
func (l *PurchaseOrderLine) Amount() decimal.Decimal {
	return l.Quantity.Mul(l.UnitPrice)
}

// NewPurchaseOrder creates an open purchase order for a vendor
func NewPurchaseOrder(number, vendorName string) (*PurchaseOrder, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return nil, shared.NewDomainError("INVALID_NUMBER", "Purchase order number cannot be empty")
	}
	if len(number) > 50 {
		return nil, shared.NewDomainError("INVALID_NUMBER", "Purchase order number cannot exceed 50 characters")
	}
	vendorName = strings.TrimSpace(vendorName)
	if vendorName == "" {
		return nil, shared.NewDomainError("INVALID_VENDOR", "Purchase order requires a vendor name")
	}
	return &PurchaseOrder{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Number:            strings.ToUpper(number),
		VendorName:        vendorName,
		Status:            PurchaseOrderStatusOpen,
		OrderDate:         time.Now(),
	}, nil
}

// AddLine appends an ordered line
func (p *PurchaseOrder) AddLine(description string, quantity, unitPrice decimal.Decimal) error {
	if quantity.IsNegative() || quantity.IsZero() {
		return shared.NewDomainError("INVALID_QUANTITY", "Line quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Line price cannot be negative")
	}
	p.Lines = append(p.Lines, PurchaseOrderLine{
		ID:              uuid.New(),
		PurchaseOrderID: p.ID,
		LineNum:         len(p.Lines) + 1,
		Description:     description,
		Quantity:        quantity,
		UnitPrice:       unitPrice,
	})
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// Total returns the sum of all line amounts
func (p *PurchaseOrder) Total() decimal.Decimal {
	total := decimal.Zero
	for idx := range p.Lines {
		total = total.Add(p.Lines[idx].Amount())
	}
	return total
}

// Close marks the order as fulfilled
func (p *PurchaseOrder) Close() {
	p.Status = PurchaseOrderStatusClosed
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// IsLinked returns true if the order is linked to an accounting record
func (p *PurchaseOrder) IsLinked() bool {
	return p.ExternalID != nil && *p.ExternalID != ""
}
