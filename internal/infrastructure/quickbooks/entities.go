package quickbooks

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// Every update below refetches the entity first: QuickBooks rejects writes
// whose SyncToken does not match the current server-side revision, so the
// fresh token is carried into the sparse update.

// ---------------------------------------------------------------------------
// Customer
// ---------------------------------------------------------------------------

// GetCustomer fetches one customer by ID
func (c *Client) GetCustomer(ctx context.Context, id string) (*Customer, error) {
	var resp struct {
		Customer Customer `json:"Customer"`
	}
	if err := c.request(ctx, http.MethodGet, "/customer/"+id, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Customer, nil
}

// FindCustomerByName looks a customer up by display name. Returns nil when
// no match exists.
func (c *Client) FindCustomerByName(ctx context.Context, name string) (*Customer, error) {
	var resp struct {
		QueryResponse struct {
			Customer []Customer `json:"Customer"`
		} `json:"QueryResponse"`
	}
	q := fmt.Sprintf("select * from Customer where DisplayName = '%s'", escapeQuery(name))
	if err := c.query(ctx, q, &resp); err != nil {
		return nil, err
	}
	if len(resp.QueryResponse.Customer) == 0 {
		return nil, nil
	}
	return &resp.QueryResponse.Customer[0], nil
}

// CreateCustomer creates a customer
func (c *Client) CreateCustomer(ctx context.Context, customer *Customer) (*Customer, error) {
	var resp struct {
		Customer Customer `json:"Customer"`
	}
	if err := c.request(ctx, http.MethodPost, "/customer", customer, &resp); err != nil {
		return nil, err
	}
	return &resp.Customer, nil
}

// UpdateCustomer applies a sparse update with a freshly fetched SyncToken
func (c *Client) UpdateCustomer(ctx context.Context, customer *Customer) (*Customer, error) {
	current, err := c.GetCustomer(ctx, customer.ID)
	if err != nil {
		return nil, err
	}
	customer.SyncToken = current.SyncToken
	customer.Sparse = true

	var resp struct {
		Customer Customer `json:"Customer"`
	}
	if err := c.request(ctx, http.MethodPost, "/customer", customer, &resp); err != nil {
		return nil, err
	}
	return &resp.Customer, nil
}

// ---------------------------------------------------------------------------
// Vendor
// ---------------------------------------------------------------------------

// GetVendor fetches one vendor by ID
func (c *Client) GetVendor(ctx context.Context, id string) (*Vendor, error) {
	var resp struct {
		Vendor Vendor `json:"Vendor"`
	}
	if err := c.request(ctx, http.MethodGet, "/vendor/"+id, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Vendor, nil
}

// FindVendorByName looks a vendor up by display name. Returns nil when no
// match exists.
func (c *Client) FindVendorByName(ctx context.Context, name string) (*Vendor, error) {
	var resp struct {
		QueryResponse struct {
			Vendor []Vendor `json:"Vendor"`
		} `json:"QueryResponse"`
	}
	q := fmt.Sprintf("select * from Vendor where DisplayName = '%s'", escapeQuery(name))
	if err := c.query(ctx, q, &resp); err != nil {
		return nil, err
	}
	if len(resp.QueryResponse.Vendor) == 0 {
		return nil, nil
	}
	return &resp.QueryResponse.Vendor[0], nil
}

// CreateVendor creates a vendor
func (c *Client) CreateVendor(ctx context.Context, vendor *Vendor) (*Vendor, error) {
	var resp struct {
		Vendor Vendor `json:"Vendor"`
	}
	if err := c.request(ctx, http.MethodPost, "/vendor", vendor, &resp); err != nil {
		return nil, err
	}
	return &resp.Vendor, nil
}

// UpdateVendor applies a sparse update with a freshly fetched SyncToken
func (c *Client) UpdateVendor(ctx context.Context, vendor *Vendor) (*Vendor, error) {
	current, err := c.GetVendor(ctx, vendor.ID)
	if err != nil {
		return nil, err
	}
	vendor.SyncToken = current.SyncToken
	vendor.Sparse = true

	var resp struct {
		Vendor Vendor `json:"Vendor"`
	}
	if err := c.request(ctx, http.MethodPost, "/vendor", vendor, &resp); err != nil {
		return nil, err
	}
	return &resp.Vendor, nil
}

// ---------------------------------------------------------------------------
// Item
// ---------------------------------------------------------------------------

// GetItem fetches one item by ID
func (c *Client) GetItem(ctx context.Context, id string) (*Item, error) {
	var resp struct {
		Item Item `json:"Item"`
	}
	if err := c.request(ctx, http.MethodGet, "/item/"+id, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Item, nil
}

// FindItemByName looks an item up by name. Returns nil when no match exists.
func (c *Client) FindItemByName(ctx context.Context, name string) (*Item, error) {
	var resp struct {
		QueryResponse struct {
			Item []Item `json:"Item"`
		} `json:"QueryResponse"`
	}
	q := fmt.Sprintf("select * from Item where Name = '%s'", escapeQuery(name))
	if err := c.query(ctx, q, &resp); err != nil {
		return nil, err
	}
	if len(resp.QueryResponse.Item) == 0 {
		return nil, nil
	}
	return &resp.QueryResponse.Item[0], nil
}

// CreateItem creates an item
func (c *Client) CreateItem(ctx context.Context, item *Item) (*Item, error) {
	var resp struct {
		Item Item `json:"Item"`
	}
	if err := c.request(ctx, http.MethodPost, "/item", item, &resp); err != nil {
		return nil, err
	}
	return &resp.Item, nil
}

// UpdateItem applies a sparse update with a freshly fetched SyncToken
func (c *Client) UpdateItem(ctx context.Context, item *Item) (*Item, error) {
	current, err := c.GetItem(ctx, item.ID)
	if err != nil {
		return nil, err
	}
	item.SyncToken = current.SyncToken
	item.Sparse = true

	var resp struct {
		Item Item `json:"Item"`
	}
	if err := c.request(ctx, http.MethodPost, "/item", item, &resp); err != nil {
		return nil, err
	}
	return &resp.Item, nil
}

// ---------------------------------------------------------------------------
// Invoice
// ---------------------------------------------------------------------------

// GetInvoice fetches one invoice by ID
func (c *Client) GetInvoice(ctx context.Context, id string) (*Invoice, error) {
	var resp struct {
		Invoice Invoice `json:"Invoice"`
	}
	if err := c.request(ctx, http.MethodGet, "/invoice/"+id, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Invoice, nil
}

// CreateInvoice creates an invoice
func (c *Client) CreateInvoice(ctx context.Context, invoice *Invoice) (*Invoice, error) {
	var resp struct {
		Invoice Invoice `json:"Invoice"`
	}
	if err := c.request(ctx, http.MethodPost, "/invoice", invoice, &resp); err != nil {
		return nil, err
	}
	return &resp.Invoice, nil
}

// UpdateInvoice applies a sparse update with a freshly fetched SyncToken
func (c *Client) UpdateInvoice(ctx context.Context, invoice *Invoice) (*Invoice, error) {
	current, err := c.GetInvoice(ctx, invoice.ID)
	if err != nil {
		return nil, err
	}
	invoice.SyncToken = current.SyncToken
	invoice.Sparse = true

	var resp struct {
		Invoice Invoice `json:"Invoice"`
	}
	if err := c.request(ctx, http.MethodPost, "/invoice", invoice, &resp); err != nil {
		return nil, err
	}
	return &resp.Invoice, nil
}

// ---------------------------------------------------------------------------
// Estimate
// ---------------------------------------------------------------------------

// GetEstimate fetches one estimate by ID
func (c *Client) GetEstimate(ctx context.Context, id string) (*Estimate, error) {
	var resp struct {
		Estimate Estimate `json:"Estimate"`
	}
	if err := c.request(ctx, http.MethodGet, "/estimate/"+id, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Estimate, nil
}

// FindEstimateByDocNumber looks an estimate up by document number. Returns
// nil when no match exists.
func (c *Client) FindEstimateByDocNumber(ctx context.Context, docNumber string) (*Estimate, error) {
	var resp struct {
		QueryResponse struct {
			Estimate []Estimate `json:"Estimate"`
		} `json:"QueryResponse"`
	}
	q := fmt.Sprintf("select * from Estimate where DocNumber = '%s'", escapeQuery(docNumber))
	if err := c.query(ctx, q, &resp); err != nil {
		return nil, err
	}
	if len(resp.QueryResponse.Estimate) == 0 {
		return nil, nil
	}
	return &resp.QueryResponse.Estimate[0], nil
}

// CreateEstimate creates an estimate
func (c *Client) CreateEstimate(ctx context.Context, estimate *Estimate) (*Estimate, error) {
	var resp struct {
		Estimate Estimate `json:"Estimate"`
	}
	if err := c.request(ctx, http.MethodPost, "/estimate", estimate, &resp); err != nil {
		return nil, err
	}
	return &resp.Estimate, nil
}

// UpdateEstimate applies a sparse update with a freshly fetched SyncToken
func (c *Client) UpdateEstimate(ctx context.Context, estimate *Estimate) (*Estimate, error) {
	current, err := c.GetEstimate(ctx, estimate.ID)
	if err != nil {
		return nil, err
	}
	estimate.SyncToken = current.SyncToken
	estimate.Sparse = true

	var resp struct {
		Estimate Estimate `json:"Estimate"`
	}
	if err := c.request(ctx, http.MethodPost, "/estimate", estimate, &resp); err != nil {
		return nil, err
	}
	return &resp.Estimate, nil
}

// ---------------------------------------------------------------------------
// Purchase Order
// ---------------------------------------------------------------------------

// GetPurchaseOrder fetches one purchase order by ID
func (c *Client) GetPurchaseOrder(ctx context.Context, id string) (*PurchaseOrder, error) {
	var resp struct {
		PurchaseOrder PurchaseOrder `json:"PurchaseOrder"`
	}
	if err := c.request(ctx, http.MethodGet, "/purchaseorder/"+id, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.PurchaseOrder, nil
}

// CreatePurchaseOrder creates a purchase order
func (c *Client) CreatePurchaseOrder(ctx context.Context, po *PurchaseOrder) (*PurchaseOrder, error) {
	var resp struct {
		PurchaseOrder PurchaseOrder `json:"PurchaseOrder"`
	}
	if err := c.request(ctx, http.MethodPost, "/purchaseorder", po, &resp); err != nil {
		return nil, err
	}
	return &resp.PurchaseOrder, nil
}

// UpdatePurchaseOrder applies a sparse update with a freshly fetched SyncToken
func (c *Client) UpdatePurchaseOrder(ctx context.Context, po *PurchaseOrder) (*PurchaseOrder, error) {
	current, err := c.GetPurchaseOrder(ctx, po.ID)
	if err != nil {
		return nil, err
	}
	po.SyncToken = current.SyncToken
	po.Sparse = true

	var resp struct {
		PurchaseOrder PurchaseOrder `json:"PurchaseOrder"`
	}
	if err := c.request(ctx, http.MethodPost, "/purchaseorder", po, &resp); err != nil {
		return nil, err
	}
	return &resp.PurchaseOrder, nil
}

// escapeQuery escapes single quotes for the QuickBooks query grammar
func escapeQuery(s string) string {
	return strings.ReplaceAll(s, "'", "\\'")
}
