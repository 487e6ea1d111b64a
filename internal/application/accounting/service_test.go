package accounting

import (
	"context"
	"fmt"
	gosync "sync"
	"testing"
	"time"

	domacct "github.com/fenestra/backend/internal/domain/accounting"
	"github.com/fenestra/backend/internal/domain/crm"
	"github.com/fenestra/backend/internal/domain/shared"
	domsync "github.com/fenestra/backend/internal/domain/sync"
	"github.com/fenestra/backend/internal/infrastructure/quickbooks"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// ---------------------------------------------------------------------------
// fakes
// ---------------------------------------------------------------------------

type fakeInvoiceRepo struct {
	mu       gosync.Mutex
	invoices map[uuid.UUID]*domacct.Invoice
}

func newFakeInvoiceRepo() *fakeInvoiceRepo {
	return &fakeInvoiceRepo{invoices: make(map[uuid.UUID]*domacct.Invoice)}
}

var _ domacct.InvoiceRepository = (*fakeInvoiceRepo)(nil)

func (r *fakeInvoiceRepo) FindByID(_ context.Context, id uuid.UUID) (*domacct.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if inv, ok := r.invoices[id]; ok {
		cp := *inv
		return &cp, nil
	}
	return nil, shared.ErrNotFound
}

func (r *fakeInvoiceRepo) FindByNumber(_ context.Context, number string) (*domacct.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, inv := range r.invoices {
		if inv.Number == number {
			cp := *inv
			return &cp, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeInvoiceRepo) FindByExternalID(_ context.Context, externalID string) (*domacct.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, inv := range r.invoices {
		if inv.ExternalID != nil && *inv.ExternalID == externalID {
			cp := *inv
			return &cp, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeInvoiceRepo) FindAll(context.Context, shared.Filter) ([]domacct.Invoice, error) {
	return nil, nil
}

func (r *fakeInvoiceRepo) Count(context.Context, shared.Filter) (int64, error) {
	return int64(len(r.invoices)), nil
}

func (r *fakeInvoiceRepo) Save(_ context.Context, invoice *domacct.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *invoice
	r.invoices[invoice.ID] = &cp
	return nil
}

func (r *fakeInvoiceRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.invoices, id)
	return nil
}

func (r *fakeInvoiceRepo) UpdateSyncLink(_ context.Context, id uuid.UUID, externalID string, syncedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invoices[id]
	if !ok {
		return shared.ErrNotFound
	}
	inv.ExternalID = &externalID
	inv.LastSyncedAt = &syncedAt
	return nil
}

func (r *fakeInvoiceRepo) ClearSyncLink(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invoices[id]
	if !ok {
		return shared.ErrNotFound
	}
	inv.ExternalID = nil
	inv.LastSyncedAt = nil
	return nil
}

type fakeOrderRepo struct {
	mu     gosync.Mutex
	orders map[uuid.UUID]*domacct.PurchaseOrder
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[uuid.UUID]*domacct.PurchaseOrder)}
}

var _ domacct.PurchaseOrderRepository = (*fakeOrderRepo)(nil)

func (r *fakeOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*domacct.PurchaseOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if po, ok := r.orders[id]; ok {
		cp := *po
		return &cp, nil
	}
	return nil, shared.ErrNotFound
}

func (r *fakeOrderRepo) FindByNumber(_ context.Context, number string) (*domacct.PurchaseOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, po := range r.orders {
		if po.Number == number {
			cp := *po
			return &cp, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeOrderRepo) FindByExternalID(_ context.Context, externalID string) (*domacct.PurchaseOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, po := range r.orders {
		if po.ExternalID != nil && *po.ExternalID == externalID {
			cp := *po
			return &cp, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeOrderRepo) FindAll(context.Context, shared.Filter) ([]domacct.PurchaseOrder, error) {
	return nil, nil
}

func (r *fakeOrderRepo) Count(context.Context, shared.Filter) (int64, error) {
	return int64(len(r.orders)), nil
}

func (r *fakeOrderRepo) Save(_ context.Context, order *domacct.PurchaseOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *order
	r.orders[order.ID] = &cp
	return nil
}

func (r *fakeOrderRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.orders, id)
	return nil
}

func (r *fakeOrderRepo) UpdateSyncLink(_ context.Context, id uuid.UUID, externalID string, syncedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	po, ok := r.orders[id]
	if !ok {
		return shared.ErrNotFound
	}
	po.ExternalID = &externalID
	po.LastSyncedAt = &syncedAt
	return nil
}

func (r *fakeOrderRepo) ClearSyncLink(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	po, ok := r.orders[id]
	if !ok {
		return shared.ErrNotFound
	}
	po.ExternalID = nil
	po.LastSyncedAt = nil
	return nil
}

type fakeAccountRepo struct {
	mu        gosync.Mutex
	customers map[uuid.UUID]*crm.Customer
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{customers: make(map[uuid.UUID]*crm.Customer)}
}

var _ crm.CustomerRepository = (*fakeAccountRepo)(nil)

func (r *fakeAccountRepo) FindByID(_ context.Context, id uuid.UUID) (*crm.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.customers[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, shared.ErrNotFound
}

func (r *fakeAccountRepo) FindByCode(_ context.Context, code string) (*crm.Customer, error) {
	return nil, shared.ErrNotFound
}

func (r *fakeAccountRepo) FindByExternalID(_ context.Context, externalID string) (*crm.Customer, error) {
	return nil, shared.ErrNotFound
}

func (r *fakeAccountRepo) FindByName(_ context.Context, name string) (*crm.Customer, error) {
	return nil, shared.ErrNotFound
}

func (r *fakeAccountRepo) FindAll(context.Context, shared.Filter) ([]crm.Customer, error) {
	return nil, nil
}

func (r *fakeAccountRepo) Count(context.Context, shared.Filter) (int64, error) {
	return int64(len(r.customers)), nil
}

func (r *fakeAccountRepo) Save(_ context.Context, customer *crm.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *customer
	r.customers[customer.ID] = &cp
	return nil
}

func (r *fakeAccountRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.customers, id)
	return nil
}

func (r *fakeAccountRepo) UpdateSyncLink(_ context.Context, id uuid.UUID, externalID string, syncedAt time.Time) error {
	return nil
}

func (r *fakeAccountRepo) ClearSyncLink(_ context.Context, id uuid.UUID) error {
	return nil
}

type fakeLeadRepo struct {
	mu       gosync.Mutex
	projects map[uuid.UUID]*crm.Project
}

func newFakeLeadRepo() *fakeLeadRepo {
	return &fakeLeadRepo{projects: make(map[uuid.UUID]*crm.Project)}
}

var _ crm.ProjectRepository = (*fakeLeadRepo)(nil)

func (r *fakeLeadRepo) FindByID(_ context.Context, id uuid.UUID) (*crm.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.projects[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, shared.ErrNotFound
}

func (r *fakeLeadRepo) FindByNumber(_ context.Context, number string) (*crm.Project, error) {
	return nil, shared.ErrNotFound
}

func (r *fakeLeadRepo) FindByExternalID(_ context.Context, externalID string) (*crm.Project, error) {
	return nil, shared.ErrNotFound
}

func (r *fakeLeadRepo) FindByCustomer(context.Context, uuid.UUID, shared.Filter) ([]crm.Project, error) {
	return nil, nil
}

func (r *fakeLeadRepo) FindAll(context.Context, shared.Filter) ([]crm.Project, error) {
	return nil, nil
}

func (r *fakeLeadRepo) Count(context.Context, shared.Filter) (int64, error) {
	return int64(len(r.projects)), nil
}

func (r *fakeLeadRepo) Save(_ context.Context, project *crm.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *project
	r.projects[project.ID] = &cp
	return nil
}

func (r *fakeLeadRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.projects, id)
	return nil
}

func (r *fakeLeadRepo) UpdateSyncLink(_ context.Context, id uuid.UUID, externalID string, syncedAt time.Time) error {
	return nil
}

func (r *fakeLeadRepo) ClearSyncLink(_ context.Context, id uuid.UUID) error {
	return nil
}

type fakeLogRepo struct {
	mu      gosync.Mutex
	entries []*domsync.LogEntry
}

var _ domsync.LogRepository = (*fakeLogRepo)(nil)

func (r *fakeLogRepo) Append(_ context.Context, entry *domsync.LogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	return nil
}

func (r *fakeLogRepo) FindRecentForEntity(context.Context, domsync.EntityType, uuid.UUID, int) ([]*domsync.LogEntry, error) {
	return nil, nil
}

func (r *fakeLogRepo) FindFailed(context.Context, time.Time, int) ([]*domsync.LogEntry, error) {
	return nil, nil
}

func (r *fakeLogRepo) FindRecent(context.Context, int) ([]*domsync.LogEntry, error) {
	return nil, nil
}

func (r *fakeLogRepo) CountByOutcome(context.Context, time.Time) (map[domsync.Outcome]int64, error) {
	return nil, nil
}

func (r *fakeLogRepo) all() []*domsync.LogEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domsync.LogEntry, len(r.entries))
	copy(out, r.entries)
	return out
}

func (r *fakeLogRepo) byType(entityType domsync.EntityType) []*domsync.LogEntry {
	var out []*domsync.LogEntry
	for _, e := range r.all() {
		if e.EntityType == entityType {
			out = append(out, e)
		}
	}
	return out
}

// fakeQBOClient holds remote state keyed the way the push service looks
// it up: customers and vendors by display name, items by name, estimates
// by document number.
type fakeQBOClient struct {
	mu      gosync.Mutex
	enabled bool
	nextID  int

	customers map[string]*quickbooks.Customer
	vendors   map[string]*quickbooks.Vendor
	items     map[string]*quickbooks.Item
	invoices  map[string]*quickbooks.Invoice
	estimates map[string]*quickbooks.Estimate
	orders    map[string]*quickbooks.PurchaseOrder

	createdCustomers int
	createdVendors   int
	createdItems     int
	updatedInvoices  int
	updatedOrders    int
	updatedEstimates int

	findErr   error
	createErr error
	updateErr error
}

var _ AccountingClient = (*fakeQBOClient)(nil)

func newFakeQBOClient() *fakeQBOClient {
	return &fakeQBOClient{
		enabled:   true,
		customers: make(map[string]*quickbooks.Customer),
		vendors:   make(map[string]*quickbooks.Vendor),
		items:     make(map[string]*quickbooks.Item),
		invoices:  make(map[string]*quickbooks.Invoice),
		estimates: make(map[string]*quickbooks.Estimate),
		orders:    make(map[string]*quickbooks.PurchaseOrder),
	}
}

func (c *fakeQBOClient) id() string {
	c.nextID++
	return fmt.Sprintf("%d", c.nextID)
}

func (c *fakeQBOClient) IsEnabled() bool { return c.enabled }

func (c *fakeQBOClient) FindCustomerByName(_ context.Context, name string) (*quickbooks.Customer, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.findErr != nil {
		return nil, c.findErr
	}
	if cust, ok := c.customers[name]; ok {
		cp := *cust
		return &cp, nil
	}
	return nil, nil
}

func (c *fakeQBOClient) CreateCustomer(_ context.Context, customer *quickbooks.Customer) (*quickbooks.Customer, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.createErr != nil {
		return nil, c.createErr
	}
	cp := *customer
	cp.ID = c.id()
	c.customers[cp.DisplayName] = &cp
	c.createdCustomers++
	return &cp, nil
}

func (c *fakeQBOClient) UpdateCustomer(_ context.Context, customer *quickbooks.Customer) (*quickbooks.Customer, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.updateErr != nil {
		return nil, c.updateErr
	}
	cp := *customer
	cp.Sparse = true
	c.customers[cp.DisplayName] = &cp
	return &cp, nil
}

func (c *fakeQBOClient) FindVendorByName(_ context.Context, name string) (*quickbooks.Vendor, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.findErr != nil {
		return nil, c.findErr
	}
	if v, ok := c.vendors[name]; ok {
		cp := *v
		return &cp, nil
	}
	return nil, nil
}

func (c *fakeQBOClient) CreateVendor(_ context.Context, vendor *quickbooks.Vendor) (*quickbooks.Vendor, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.createErr != nil {
		return nil, c.createErr
	}
	cp := *vendor
	cp.ID = c.id()
	c.vendors[cp.DisplayName] = &cp
	c.createdVendors++
	return &cp, nil
}

func (c *fakeQBOClient) FindItemByName(_ context.Context, name string) (*quickbooks.Item, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.findErr != nil {
		return nil, c.findErr
	}
	if item, ok := c.items[name]; ok {
		cp := *item
		return &cp, nil
	}
	return nil, nil
}

func (c *fakeQBOClient) CreateItem(_ context.Context, item *quickbooks.Item) (*quickbooks.Item, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.createErr != nil {
		return nil, c.createErr
	}
	cp := *item
	cp.ID = c.id()
	c.items[cp.Name] = &cp
	c.createdItems++
	return &cp, nil
}

func (c *fakeQBOClient) CreateInvoice(_ context.Context, invoice *quickbooks.Invoice) (*quickbooks.Invoice, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.createErr != nil {
		return nil, c.createErr
	}
	cp := *invoice
	cp.ID = c.id()
	c.invoices[cp.ID] = &cp
	return &cp, nil
}

func (c *fakeQBOClient) UpdateInvoice(_ context.Context, invoice *quickbooks.Invoice) (*quickbooks.Invoice, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.updateErr != nil {
		return nil, c.updateErr
	}
	if _, ok := c.invoices[invoice.ID]; !ok {
		return nil, &quickbooks.APIError{StatusCode: 404}
	}
	cp := *invoice
	cp.Sparse = true
	c.invoices[cp.ID] = &cp
	c.updatedInvoices++
	return &cp, nil
}

func (c *fakeQBOClient) FindEstimateByDocNumber(_ context.Context, docNumber string) (*quickbooks.Estimate, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.findErr != nil {
		return nil, c.findErr
	}
	if est, ok := c.estimates[docNumber]; ok {
		cp := *est
		return &cp, nil
	}
	return nil, nil
}

func (c *fakeQBOClient) CreateEstimate(_ context.Context, estimate *quickbooks.Estimate) (*quickbooks.Estimate, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.createErr != nil {
		return nil, c.createErr
	}
	cp := *estimate
	cp.ID = c.id()
	c.estimates[cp.DocNumber] = &cp
	return &cp, nil
}

func (c *fakeQBOClient) UpdateEstimate(_ context.Context, estimate *quickbooks.Estimate) (*quickbooks.Estimate, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.updateErr != nil {
		return nil, c.updateErr
	}
	cp := *estimate
	cp.Sparse = true
	c.estimates[cp.DocNumber] = &cp
	c.updatedEstimates++
	return &cp, nil
}

func (c *fakeQBOClient) CreatePurchaseOrder(_ context.Context, po *quickbooks.PurchaseOrder) (*quickbooks.PurchaseOrder, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.createErr != nil {
		return nil, c.createErr
	}
	cp := *po
	cp.ID = c.id()
	c.orders[cp.ID] = &cp
	return &cp, nil
}

func (c *fakeQBOClient) UpdatePurchaseOrder(_ context.Context, po *quickbooks.PurchaseOrder) (*quickbooks.PurchaseOrder, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.updateErr != nil {
		return nil, c.updateErr
	}
	cp := *po
	cp.Sparse = true
	c.orders[cp.ID] = &cp
	c.updatedOrders++
	return &cp, nil
}

// ---------------------------------------------------------------------------
// harness
// ---------------------------------------------------------------------------

type pushHarness struct {
	service  *Service
	invoices *fakeInvoiceRepo
	orders   *fakeOrderRepo
	accounts *fakeAccountRepo
	leads    *fakeLeadRepo
	logs     *fakeLogRepo
	client   *fakeQBOClient
}

func newPushHarness(t *testing.T) *pushHarness {
	t.Helper()
	h := &pushHarness{
		invoices: newFakeInvoiceRepo(),
		orders:   newFakeOrderRepo(),
		accounts: newFakeAccountRepo(),
		leads:    newFakeLeadRepo(),
		logs:     &fakeLogRepo{},
		client:   newFakeQBOClient(),
	}
	h.service = NewService(h.invoices, h.orders, h.accounts, h.leads, h.logs, h.client, zap.NewNop())
	return h
}

func (h *pushHarness) seedAccount(t *testing.T) *crm.Customer {
	t.Helper()
	customer, err := crm.NewCustomer("ACME", "Acme Glazing")
	require.NoError(t, err)
	require.NoError(t, customer.SetContact("Jane Doe", "555-0100", "jane@acme.test"))
	require.NoError(t, h.accounts.Save(context.Background(), customer))
	return customer
}

func (h *pushHarness) seedInvoice(t *testing.T, customerID uuid.UUID) *domacct.Invoice {
	t.Helper()
	invoice, err := domacct.NewInvoice("INV-1001", customerID)
	require.NoError(t, err)
	require.NoError(t, invoice.AddLine("Curtain wall panels", decimal.NewFromInt(12), decimal.NewFromInt(850)))
	require.NoError(t, h.invoices.Save(context.Background(), invoice))
	return invoice
}

// ---------------------------------------------------------------------------
// invoice push
// ---------------------------------------------------------------------------

func TestPushInvoice_CreatesRemoteInvoiceAndLinks(t *testing.T) {
	h := newPushHarness(t)
	ctx := context.Background()
	customer := h.seedAccount(t)
	invoice := h.seedInvoice(t, customer.ID)

	result := h.service.PushInvoice(ctx, invoice.ID)
	require.True(t, result.Success)
	assert.Equal(t, domsync.ActionCreated, result.Action)

	stored, err := h.invoices.FindByID(ctx, invoice.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.ExternalID)
	assert.Equal(t, result.ExternalID, *stored.ExternalID)
	assert.NotNil(t, stored.LastSyncedAt)

	// the billed customer and the default item were created remotely
	assert.Equal(t, 1, h.client.createdCustomers)
	assert.Equal(t, 1, h.client.createdItems)

	remote := h.client.invoices[result.ExternalID]
	require.NotNil(t, remote)
	assert.Equal(t, "INV-1001", remote.DocNumber)
	require.Len(t, remote.Lines, 1)
	assert.Equal(t, "SalesItemLineDetail", remote.Lines[0].DetailType)
	assert.True(t, decimal.NewFromInt(10200).Equal(remote.Lines[0].Amount))

	entries := h.logs.byType(domsync.EntityTypeInvoice)
	require.Len(t, entries, 1)
	assert.Equal(t, domsync.DirectionERPToQuickBooks, entries[0].Direction)
	assert.Equal(t, domsync.OutcomeSuccess, entries[0].Outcome)
}

func TestPushInvoice_UpdatesLinkedInvoice(t *testing.T) {
	h := newPushHarness(t)
	ctx := context.Background()
	customer := h.seedAccount(t)
	invoice := h.seedInvoice(t, customer.ID)

	first := h.service.PushInvoice(ctx, invoice.ID)
	require.True(t, first.Success)

	second := h.service.PushInvoice(ctx, invoice.ID)
	require.True(t, second.Success)
	assert.Equal(t, domsync.ActionUpdated, second.Action)
	assert.Equal(t, first.ExternalID, second.ExternalID)
	assert.Equal(t, 1, h.client.updatedInvoices)
	assert.Len(t, h.client.invoices, 1)
}

func TestPushInvoice_ReusesExistingRemoteCustomer(t *testing.T) {
	h := newPushHarness(t)
	ctx := context.Background()
	customer := h.seedAccount(t)
	invoice := h.seedInvoice(t, customer.ID)

	h.client.customers["Acme Glazing"] = &quickbooks.Customer{ID: "77", DisplayName: "Acme Glazing"}

	result := h.service.PushInvoice(ctx, invoice.ID)
	require.True(t, result.Success)
	assert.Zero(t, h.client.createdCustomers)

	remote := h.client.invoices[result.ExternalID]
	require.NotNil(t, remote)
	require.NotNil(t, remote.CustomerRef)
	assert.Equal(t, "77", remote.CustomerRef.Value)
}

func TestPushInvoice_RemoteCustomerCreationGetsOwnLogEntry(t *testing.T) {
	h := newPushHarness(t)
	ctx := context.Background()
	customer := h.seedAccount(t)
	invoice := h.seedInvoice(t, customer.ID)

	result := h.service.PushInvoice(ctx, invoice.ID)
	require.True(t, result.Success)

	customerEntries := h.logs.byType(domsync.EntityTypeCustomer)
	require.Len(t, customerEntries, 1)
	assert.Equal(t, domsync.ActionCreated, customerEntries[0].Action)
	assert.Equal(t, domsync.DirectionERPToQuickBooks, customerEntries[0].Direction)

	itemEntries := h.logs.byType(domsync.EntityTypeItem)
	require.Len(t, itemEntries, 1)
}

func TestPushInvoice_CreateFailureIsLogged(t *testing.T) {
	h := newPushHarness(t)
	ctx := context.Background()
	customer := h.seedAccount(t)
	invoice := h.seedInvoice(t, customer.ID)

	// resolve the remote dependencies first so only the invoice write fails
	h.client.customers["Acme Glazing"] = &quickbooks.Customer{ID: "77", DisplayName: "Acme Glazing"}
	h.client.items[defaultServiceItem] = &quickbooks.Item{ID: "9", Name: defaultServiceItem}
	h.client.createErr = assert.AnError

	result := h.service.PushInvoice(ctx, invoice.ID)
	require.False(t, result.Success)

	stored, err := h.invoices.FindByID(ctx, invoice.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.ExternalID)

	entries := h.logs.byType(domsync.EntityTypeInvoice)
	require.Len(t, entries, 1)
	assert.Equal(t, domsync.OutcomeFailed, entries[0].Outcome)
}

func TestPushInvoice_UnknownInvoiceIsLogged(t *testing.T) {
	h := newPushHarness(t)

	result := h.service.PushInvoice(context.Background(), uuid.New())
	require.False(t, result.Success)

	entries := h.logs.byType(domsync.EntityTypeInvoice)
	require.Len(t, entries, 1)
	assert.Equal(t, domsync.OutcomeFailed, entries[0].Outcome)
}

// ---------------------------------------------------------------------------
// purchase order push
// ---------------------------------------------------------------------------

func TestPushPurchaseOrder_CreatesVendorByName(t *testing.T) {
	h := newPushHarness(t)
	ctx := context.Background()

	po, err := domacct.NewPurchaseOrder("PO-3001", "Apex Glass Supply")
	require.NoError(t, err)
	require.NoError(t, po.AddLine("Tempered glass 6mm", decimal.NewFromInt(40), decimal.NewFromInt(65)))
	require.NoError(t, h.orders.Save(ctx, po))

	result := h.service.PushPurchaseOrder(ctx, po.ID)
	require.True(t, result.Success)
	assert.Equal(t, domsync.ActionCreated, result.Action)
	assert.Equal(t, 1, h.client.createdVendors)

	remote := h.client.orders[result.ExternalID]
	require.NotNil(t, remote)
	assert.Equal(t, "Open", remote.POStatus)
	require.Len(t, remote.Lines, 1)
	assert.Equal(t, "ItemBasedExpenseLineDetail", remote.Lines[0].DetailType)

	stored, err := h.orders.FindByID(ctx, po.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.ExternalID)

	vendorEntries := h.logs.byType(domsync.EntityTypeVendor)
	require.Len(t, vendorEntries, 1)
	assert.Equal(t, domsync.ActionCreated, vendorEntries[0].Action)
}

func TestPushPurchaseOrder_ReusesVendorAndUpdatesWhenLinked(t *testing.T) {
	h := newPushHarness(t)
	ctx := context.Background()

	po, err := domacct.NewPurchaseOrder("PO-3001", "Apex Glass Supply")
	require.NoError(t, err)
	require.NoError(t, h.orders.Save(ctx, po))

	first := h.service.PushPurchaseOrder(ctx, po.ID)
	require.True(t, first.Success)

	po.Close()
	require.NoError(t, po.AddLine("Sealant", decimal.NewFromInt(10), decimal.NewFromInt(12)))
	// keep the stored sync link when re-saving the aggregate
	stored, err := h.orders.FindByID(ctx, po.ID)
	require.NoError(t, err)
	po.ExternalID = stored.ExternalID
	po.LastSyncedAt = stored.LastSyncedAt
	require.NoError(t, h.orders.Save(ctx, po))

	second := h.service.PushPurchaseOrder(ctx, po.ID)
	require.True(t, second.Success)
	assert.Equal(t, domsync.ActionUpdated, second.Action)
	assert.Equal(t, 1, h.client.createdVendors)
	assert.Equal(t, 1, h.client.updatedOrders)
	assert.Equal(t, "Closed", h.client.orders[second.ExternalID].POStatus)
}

// ---------------------------------------------------------------------------
// customer push
// ---------------------------------------------------------------------------

func TestPushCustomer_CreatesThenUpdatesByDisplayName(t *testing.T) {
	h := newPushHarness(t)
	ctx := context.Background()
	customer := h.seedAccount(t)

	first := h.service.PushCustomer(ctx, customer.ID)
	require.True(t, first.Success)
	assert.Equal(t, domsync.ActionCreated, first.Action)

	second := h.service.PushCustomer(ctx, customer.ID)
	require.True(t, second.Success)
	assert.Equal(t, domsync.ActionUpdated, second.Action)
	assert.Equal(t, first.ExternalID, second.ExternalID)
	assert.Equal(t, 1, h.client.createdCustomers)

	remote := h.client.customers["Acme Glazing"]
	require.NotNil(t, remote)
	require.NotNil(t, remote.PrimaryEmail)
	assert.Equal(t, "jane@acme.test", remote.PrimaryEmail.Address)
}

// ---------------------------------------------------------------------------
// estimate push
// ---------------------------------------------------------------------------

func (h *pushHarness) seedLead(t *testing.T, customerID *uuid.UUID) *crm.Project {
	t.Helper()
	project, err := crm.NewProject("PR-2001", "Office Tower Facade")
	require.NoError(t, err)
	require.NoError(t, project.SetEstimatedValue(decimal.NewFromInt(48000)))
	if customerID != nil {
		require.NoError(t, project.LinkCustomer(*customerID))
	}
	require.NoError(t, h.leads.Save(context.Background(), project))
	return project
}

func TestPushEstimate_CreatesEstimateKeyedByProjectNumber(t *testing.T) {
	h := newPushHarness(t)
	ctx := context.Background()
	customer := h.seedAccount(t)
	project := h.seedLead(t, &customer.ID)

	result := h.service.PushEstimate(ctx, project.ID)
	require.True(t, result.Success)
	assert.Equal(t, domsync.ActionCreated, result.Action)

	remote := h.client.estimates["PR-2001"]
	require.NotNil(t, remote)
	assert.Equal(t, "Pending", remote.TxnStatus)
	require.Len(t, remote.Lines, 1)
	assert.True(t, decimal.NewFromInt(48000).Equal(remote.Lines[0].Amount))

	entries := h.logs.byType(domsync.EntityTypeEstimate)
	require.Len(t, entries, 1)
	assert.Equal(t, domsync.OutcomeSuccess, entries[0].Outcome)
}

func TestPushEstimate_SecondPushUpdatesInPlace(t *testing.T) {
	h := newPushHarness(t)
	ctx := context.Background()
	customer := h.seedAccount(t)
	project := h.seedLead(t, &customer.ID)

	first := h.service.PushEstimate(ctx, project.ID)
	require.True(t, first.Success)

	second := h.service.PushEstimate(ctx, project.ID)
	require.True(t, second.Success)
	assert.Equal(t, domsync.ActionUpdated, second.Action)
	assert.Equal(t, 1, h.client.updatedEstimates)
	assert.Len(t, h.client.estimates, 1)
}

func TestPushEstimate_ProjectWithoutCustomerIsSkipped(t *testing.T) {
	h := newPushHarness(t)
	ctx := context.Background()
	project := h.seedLead(t, nil)

	result := h.service.PushEstimate(ctx, project.ID)
	require.False(t, result.Success)
	assert.Equal(t, domsync.OutcomeSkipped, result.Outcome)

	assert.Empty(t, h.client.estimates)
	entries := h.logs.byType(domsync.EntityTypeEstimate)
	require.Len(t, entries, 1)
	assert.Equal(t, domsync.OutcomeSkipped, entries[0].Outcome)
}

// ---------------------------------------------------------------------------
// trigger
// ---------------------------------------------------------------------------

type recordingQueue struct {
	mu   gosync.Mutex
	jobs []string
}

func (q *recordingQueue) Submit(name string, _ domsync.EntityType, _ domsync.Direction, _ func(ctx context.Context) domsync.Result) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = append(q.jobs, name)
	return true
}

func (q *recordingQueue) names() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]string, len(q.jobs))
	copy(out, q.jobs)
	return out
}

func TestTrigger_QueuesWorkWhenEnabled(t *testing.T) {
	h := newPushHarness(t)
	queue := &recordingQueue{}
	trigger := NewTrigger(h.service, queue, zap.NewNop())

	trigger.RequestInvoicePush(uuid.New())
	trigger.RequestPurchaseOrderPush(uuid.New())
	trigger.RequestCustomerPush(uuid.New())
	trigger.RequestEstimatePush(uuid.New())

	assert.Equal(t, []string{"push invoice", "push purchase order", "push customer", "push estimate"}, queue.names())
}

func TestTrigger_DisabledIntegrationDropsRequests(t *testing.T) {
	h := newPushHarness(t)
	h.client.enabled = false
	queue := &recordingQueue{}
	trigger := NewTrigger(h.service, queue, zap.NewNop())

	trigger.RequestInvoicePush(uuid.New())
	trigger.RequestEstimatePush(uuid.New())

	assert.Empty(t, queue.names())
}
