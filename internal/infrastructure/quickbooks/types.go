package quickbooks

import (
	"github.com/shopspring/decimal"
)

// Ref points at another QuickBooks entity by ID
type Ref struct {
	Value string `json:"value"`
	Name  string `json:"name,omitempty"`
}

// Address is a physical address block
type Address struct {
	ID    string `json:"Id,omitempty"`
	Line1 string `json:"Line1,omitempty"`
	Line2 string `json:"Line2,omitempty"`
	City  string `json:"City,omitempty"`
	// CountrySubDivisionCode is the state or province
	CountrySubDivisionCode string `json:"CountrySubDivisionCode,omitempty"`
	PostalCode             string `json:"PostalCode,omitempty"`
	Country                string `json:"Country,omitempty"`
}

// Email wraps an email address
type Email struct {
	Address string `json:"Address,omitempty"`
}

// Phone wraps a free-form phone number
type Phone struct {
	FreeFormNumber string `json:"FreeFormNumber,omitempty"`
}

// MetaData carries entity timestamps
type MetaData struct {
	CreateTime      string `json:"CreateTime,omitempty"`
	LastUpdatedTime string `json:"LastUpdatedTime,omitempty"`
}

// Customer is a QuickBooks customer
type Customer struct {
	ID           string           `json:"Id,omitempty"`
	SyncToken    string           `json:"SyncToken,omitempty"`
	DisplayName  string           `json:"DisplayName,omitempty"`
	CompanyName  string           `json:"CompanyName,omitempty"`
	GivenName    string           `json:"GivenName,omitempty"`
	FamilyName   string           `json:"FamilyName,omitempty"`
	PrimaryEmail *Email           `json:"PrimaryEmailAddr,omitempty"`
	PrimaryPhone *Phone           `json:"PrimaryPhone,omitempty"`
	BillAddr     *Address         `json:"BillAddr,omitempty"`
	ShipAddr     *Address         `json:"ShipAddr,omitempty"`
	Balance      *decimal.Decimal `json:"Balance,omitempty"`
	Active       *bool            `json:"Active,omitempty"`
	Notes        string           `json:"Notes,omitempty"`
	Sparse       bool             `json:"sparse,omitempty"`
	MetaData     *MetaData        `json:"MetaData,omitempty"`
}

// Vendor is a QuickBooks vendor
type Vendor struct {
	ID           string    `json:"Id,omitempty"`
	SyncToken    string    `json:"SyncToken,omitempty"`
	DisplayName  string    `json:"DisplayName,omitempty"`
	CompanyName  string    `json:"CompanyName,omitempty"`
	PrimaryEmail *Email    `json:"PrimaryEmailAddr,omitempty"`
	PrimaryPhone *Phone    `json:"PrimaryPhone,omitempty"`
	BillAddr     *Address  `json:"BillAddr,omitempty"`
	AcctNum      string    `json:"AcctNum,omitempty"`
	Active       *bool     `json:"Active,omitempty"`
	Sparse       bool      `json:"sparse,omitempty"`
	MetaData     *MetaData `json:"MetaData,omitempty"`
}

// Item is a QuickBooks product or service item
type Item struct {
	ID          string           `json:"Id,omitempty"`
	SyncToken   string           `json:"SyncToken,omitempty"`
	Name        string           `json:"Name,omitempty"`
	Sku         string           `json:"Sku,omitempty"`
	Description string           `json:"Description,omitempty"`
	Type        string           `json:"Type,omitempty"` // Inventory, NonInventory, Service
	UnitPrice   *decimal.Decimal `json:"UnitPrice,omitempty"`
	IncomeAcct  *Ref             `json:"IncomeAccountRef,omitempty"`
	ExpenseAcct *Ref             `json:"ExpenseAccountRef,omitempty"`
	Active      *bool            `json:"Active,omitempty"`
	Sparse      bool             `json:"sparse,omitempty"`
	MetaData    *MetaData        `json:"MetaData,omitempty"`
}

// Line is one line on a transaction document
type Line struct {
	ID          string           `json:"Id,omitempty"`
	LineNum     int              `json:"LineNum,omitempty"`
	Description string           `json:"Description,omitempty"`
	Amount      decimal.Decimal  `json:"Amount"`
	DetailType  string           `json:"DetailType"`
	SalesItem   *SalesItemDetail `json:"SalesItemLineDetail,omitempty"`
	ItemBased   *ItemBasedDetail `json:"ItemBasedExpenseLineDetail,omitempty"`
}

// SalesItemDetail prices an item line on invoices and estimates
type SalesItemDetail struct {
	ItemRef   *Ref             `json:"ItemRef,omitempty"`
	Qty       *decimal.Decimal `json:"Qty,omitempty"`
	UnitPrice *decimal.Decimal `json:"UnitPrice,omitempty"`
}

// ItemBasedDetail prices an item line on purchase orders
type ItemBasedDetail struct {
	ItemRef   *Ref             `json:"ItemRef,omitempty"`
	Qty       *decimal.Decimal `json:"Qty,omitempty"`
	UnitPrice *decimal.Decimal `json:"UnitPrice,omitempty"`
}

// Invoice is a QuickBooks invoice
type Invoice struct {
	ID          string           `json:"Id,omitempty"`
	SyncToken   string           `json:"SyncToken,omitempty"`
	DocNumber   string           `json:"DocNumber,omitempty"`
	CustomerRef *Ref             `json:"CustomerRef,omitempty"`
	TxnDate     string           `json:"TxnDate,omitempty"`
	DueDate     string           `json:"DueDate,omitempty"`
	Lines       []Line           `json:"Line,omitempty"`
	TotalAmt    *decimal.Decimal `json:"TotalAmt,omitempty"`
	Balance     *decimal.Decimal `json:"Balance,omitempty"`
	PrivateNote string           `json:"PrivateNote,omitempty"`
	Sparse      bool             `json:"sparse,omitempty"`
	MetaData    *MetaData        `json:"MetaData,omitempty"`
}

// Estimate is a QuickBooks estimate (quote)
type Estimate struct {
	ID          string           `json:"Id,omitempty"`
	SyncToken   string           `json:"SyncToken,omitempty"`
	DocNumber   string           `json:"DocNumber,omitempty"`
	CustomerRef *Ref             `json:"CustomerRef,omitempty"`
	TxnDate     string           `json:"TxnDate,omitempty"`
	TxnStatus   string           `json:"TxnStatus,omitempty"` // Pending, Accepted, Closed, Rejected
	Lines       []Line           `json:"Line,omitempty"`
	TotalAmt    *decimal.Decimal `json:"TotalAmt,omitempty"`
	PrivateNote string           `json:"PrivateNote,omitempty"`
	Sparse      bool             `json:"sparse,omitempty"`
	MetaData    *MetaData        `json:"MetaData,omitempty"`
}

// PurchaseOrder is a QuickBooks purchase order
type PurchaseOrder struct {
	ID          string           `json:"Id,omitempty"`
	SyncToken   string           `json:"SyncToken,omitempty"`
	DocNumber   string           `json:"DocNumber,omitempty"`
	VendorRef   *Ref             `json:"VendorRef,omitempty"`
	TxnDate     string           `json:"TxnDate,omitempty"`
	POStatus    string           `json:"POStatus,omitempty"` // Open, Closed
	Lines       []Line           `json:"Line,omitempty"`
	TotalAmt    *decimal.Decimal `json:"TotalAmt,omitempty"`
	PrivateNote string           `json:"PrivateNote,omitempty"`
	Sparse      bool             `json:"sparse,omitempty"`
	MetaData    *MetaData        `json:"MetaData,omitempty"`
}
