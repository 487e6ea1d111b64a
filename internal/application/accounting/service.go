package accounting

import (
	"context"
	"fmt"
	gosync "sync"
	"time"

	"github.com/fenestra/backend/internal/domain/accounting"
	"github.com/fenestra/backend/internal/domain/crm"
	domsync "github.com/fenestra/backend/internal/domain/sync"
	"github.com/fenestra/backend/internal/infrastructure/quickbooks"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// defaultServiceItem is the catch-all item transaction lines are booked
// against. Line-level product mapping is out of scope; QuickBooks still
// requires every line to reference an item.
const defaultServiceItem = "Services"

// AccountingClient is the slice of the QuickBooks client the push service
// uses. Narrowed to an interface so the service can be tested against a
// fake.
type AccountingClient interface {
	IsEnabled() bool
	FindCustomerByName(ctx context.Context, name string) (*quickbooks.Customer, error)
	CreateCustomer(ctx context.Context, customer *quickbooks.Customer) (*quickbooks.Customer, error)
	UpdateCustomer(ctx context.Context, customer *quickbooks.Customer) (*quickbooks.Customer, error)
	FindVendorByName(ctx context.Context, name string) (*quickbooks.Vendor, error)
	CreateVendor(ctx context.Context, vendor *quickbooks.Vendor) (*quickbooks.Vendor, error)
	FindItemByName(ctx context.Context, name string) (*quickbooks.Item, error)
	CreateItem(ctx context.Context, item *quickbooks.Item) (*quickbooks.Item, error)
	CreateInvoice(ctx context.Context, invoice *quickbooks.Invoice) (*quickbooks.Invoice, error)
	UpdateInvoice(ctx context.Context, invoice *quickbooks.Invoice) (*quickbooks.Invoice, error)
	FindEstimateByDocNumber(ctx context.Context, docNumber string) (*quickbooks.Estimate, error)
	CreateEstimate(ctx context.Context, estimate *quickbooks.Estimate) (*quickbooks.Estimate, error)
	UpdateEstimate(ctx context.Context, estimate *quickbooks.Estimate) (*quickbooks.Estimate, error)
	CreatePurchaseOrder(ctx context.Context, po *quickbooks.PurchaseOrder) (*quickbooks.PurchaseOrder, error)
	UpdatePurchaseOrder(ctx context.Context, po *quickbooks.PurchaseOrder) (*quickbooks.PurchaseOrder, error)
}

var _ AccountingClient = (*quickbooks.Client)(nil)

// Service pushes local records into QuickBooks. Pushes are one-directional:
// the local record is the source of truth and the accounting copy follows.
// Every push attempt, whatever its outcome, produces exactly one sync log
// entry for the entity pushed; remote customers, vendors and items created
// along the way get their own entries.
type Service struct {
	invoices  accounting.InvoiceRepository
	orders    accounting.PurchaseOrderRepository
	customers crm.CustomerRepository
	projects  crm.ProjectRepository
	logs      domsync.LogRepository
	client    AccountingClient
	logger    *zap.Logger

	// itemMu guards itemRef, the lazily resolved default item
	itemMu  gosync.Mutex
	itemRef *quickbooks.Ref
}

// NewService wires the accounting push service
func NewService(
	invoices accounting.InvoiceRepository,
	orders accounting.PurchaseOrderRepository,
	customers crm.CustomerRepository,
	projects crm.ProjectRepository,
	logs domsync.LogRepository,
	client AccountingClient,
	logger *zap.Logger,
) *Service {
	return &Service{
		invoices:  invoices,
		orders:    orders,
		customers: customers,
		projects:  projects,
		logs:      logs,
		client:    client,
		logger:    logger,
	}
}

// Enabled reports whether the accounting integration is turned on
func (s *Service) Enabled() bool {
	return s.client.IsEnabled()
}

// record appends one log entry for a completed attempt. A log write failure
// must never fail the push it describes, so it is only logged.
func (s *Service) record(ctx context.Context, entityType domsync.EntityType, result domsync.Result) {
	entry := domsync.NewLogEntry(entityType, domsync.DirectionERPToQuickBooks, result)
	if err := s.logs.Append(ctx, entry); err != nil {
		s.logger.Error("failed to append sync log entry",
			zap.String("entity_type", entityType.String()),
			zap.String("outcome", result.Outcome.String()),
			zap.Error(err))
	}
}

// PushCustomer pushes one customer account to QuickBooks, matching on
// display name. The accounting side keys customers by name, so an existing
// record with the same display name is updated in place.
func (s *Service) PushCustomer(ctx context.Context, customerID uuid.UUID) domsync.Result {
	customer, err := s.customers.FindByID(ctx, customerID)
	if err != nil {
		result := domsync.FailedResult(fmt.Errorf("load customer: %w", err))
		s.record(ctx, domsync.EntityTypeCustomer, result)
		return result
	}

	qbo := customerPayload(customer)
	existing, err := s.client.FindCustomerByName(ctx, customer.Name)
	if err != nil {
		result := domsync.FailedResult(err)
		s.record(ctx, domsync.EntityTypeCustomer, result)
		return result
	}

	var pushed *quickbooks.Customer
	action := domsync.ActionCreated
	if existing != nil {
		qbo.ID = existing.ID
		pushed, err = s.client.UpdateCustomer(ctx, qbo)
		action = domsync.ActionUpdated
	} else {
		pushed, err = s.client.CreateCustomer(ctx, qbo)
	}
	if err != nil {
		result := domsync.FailedResult(err)
		s.record(ctx, domsync.EntityTypeCustomer, result)
		return result
	}

	result := domsync.SuccessResult(action, customer.ID, pushed.ID)
	s.record(ctx, domsync.EntityTypeCustomer, result)
	return result
}

// PushInvoice pushes one invoice to QuickBooks. The billed customer is
// resolved by display name and created when missing; a linked invoice is
// sparse-updated, an unlinked one created and linked.
func (s *Service) PushInvoice(ctx context.Context, invoiceID uuid.UUID) domsync.Result {
	invoice, err := s.invoices.FindByID(ctx, invoiceID)
	if err != nil {
		result := domsync.FailedResult(fmt.Errorf("load invoice: %w", err))
		s.record(ctx, domsync.EntityTypeInvoice, result)
		return result
	}

	customer, err := s.customers.FindByID(ctx, invoice.CustomerID)
	if err != nil {
		result := domsync.FailedResult(fmt.Errorf("load billed customer: %w", err))
		result.EntityID = &invoice.ID
		s.record(ctx, domsync.EntityTypeInvoice, result)
		return result
	}

	customerRef, err := s.ensureCustomer(ctx, customer)
	if err != nil {
		result := domsync.FailedResult(err)
		result.EntityID = &invoice.ID
		s.record(ctx, domsync.EntityTypeInvoice, result)
		return result
	}

	itemRef, err := s.ensureItem(ctx)
	if err != nil {
		result := domsync.FailedResult(err)
		result.EntityID = &invoice.ID
		s.record(ctx, domsync.EntityTypeInvoice, result)
		return result
	}

	qbo := &quickbooks.Invoice{
		DocNumber:   invoice.Number,
		CustomerRef: customerRef,
		TxnDate:     txnDate(invoice.IssueDate),
		Lines:       salesLines(invoice.Lines, itemRef),
		PrivateNote: invoice.Notes,
	}
	if invoice.DueDate != nil {
		qbo.DueDate = txnDate(*invoice.DueDate)
	}

	var pushed *quickbooks.Invoice
	action := domsync.ActionCreated
	if invoice.IsLinked() {
		qbo.ID = *invoice.ExternalID
		pushed, err = s.client.UpdateInvoice(ctx, qbo)
		action = domsync.ActionUpdated
	} else {
		pushed, err = s.client.CreateInvoice(ctx, qbo)
	}
	if err != nil {
		result := domsync.FailedResult(err)
		result.EntityID = &invoice.ID
		s.record(ctx, domsync.EntityTypeInvoice, result)
		return result
	}

	if err := s.invoices.UpdateSyncLink(ctx, invoice.ID, pushed.ID, time.Now()); err != nil {
		result := domsync.FailedResult(fmt.Errorf("persist sync link: %w", err))
		result.EntityID = &invoice.ID
		result.ExternalID = pushed.ID
		s.record(ctx, domsync.EntityTypeInvoice, result)
		return result
	}

	result := domsync.SuccessResult(action, invoice.ID, pushed.ID)
	s.record(ctx, domsync.EntityTypeInvoice, result)
	return result
}

// PushPurchaseOrder pushes one purchase order to QuickBooks. The vendor is
// resolved from the order's free-text vendor name and created when missing.
func (s *Service) PushPurchaseOrder(ctx context.Context, orderID uuid.UUID) domsync.Result {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		result := domsync.FailedResult(fmt.Errorf("load purchase order: %w", err))
		s.record(ctx, domsync.EntityTypePurchaseOrder, result)
		return result
	}

	vendorRef, err := s.ensureVendor(ctx, order.VendorName)
	if err != nil {
		result := domsync.FailedResult(err)
		result.EntityID = &order.ID
		s.record(ctx, domsync.EntityTypePurchaseOrder, result)
		return result
	}

	itemRef, err := s.ensureItem(ctx)
	if err != nil {
		result := domsync.FailedResult(err)
		result.EntityID = &order.ID
		s.record(ctx, domsync.EntityTypePurchaseOrder, result)
		return result
	}

	qbo := &quickbooks.PurchaseOrder{
		DocNumber:   order.Number,
		VendorRef:   vendorRef,
		TxnDate:     txnDate(order.OrderDate),
		POStatus:    poStatus(order.Status),
		Lines:       expenseLines(order.Lines, itemRef),
		PrivateNote: order.Notes,
	}

	var pushed *quickbooks.PurchaseOrder
	action := domsync.ActionCreated
	if order.IsLinked() {
		qbo.ID = *order.ExternalID
		pushed, err = s.client.UpdatePurchaseOrder(ctx, qbo)
		action = domsync.ActionUpdated
	} else {
		pushed, err = s.client.CreatePurchaseOrder(ctx, qbo)
	}
	if err != nil {
		result := domsync.FailedResult(err)
		result.EntityID = &order.ID
		s.record(ctx, domsync.EntityTypePurchaseOrder, result)
		return result
	}

	if err := s.orders.UpdateSyncLink(ctx, order.ID, pushed.ID, time.Now()); err != nil {
		result := domsync.FailedResult(fmt.Errorf("persist sync link: %w", err))
		result.EntityID = &order.ID
		result.ExternalID = pushed.ID
		s.record(ctx, domsync.EntityTypePurchaseOrder, result)
		return result
	}

	result := domsync.SuccessResult(action, order.ID, pushed.ID)
	s.record(ctx, domsync.EntityTypePurchaseOrder, result)
	return result
}

// PushEstimate pushes a project's quote snapshot to QuickBooks as an
// estimate keyed by the project number. The project's ExternalID column
// belongs to the CRM link, so estimates are matched by document number
// instead of a stored link.
func (s *Service) PushEstimate(ctx context.Context, projectID uuid.UUID) domsync.Result {
	project, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		result := domsync.FailedResult(fmt.Errorf("load project: %w", err))
		s.record(ctx, domsync.EntityTypeEstimate, result)
		return result
	}
	if !project.HasCustomer() {
		result := domsync.SkippedResult("project has no customer account")
		result.EntityID = &project.ID
		s.record(ctx, domsync.EntityTypeEstimate, result)
		return result
	}

	customer, err := s.customers.FindByID(ctx, *project.CustomerID)
	if err != nil {
		result := domsync.FailedResult(fmt.Errorf("load customer account: %w", err))
		result.EntityID = &project.ID
		s.record(ctx, domsync.EntityTypeEstimate, result)
		return result
	}

	customerRef, err := s.ensureCustomer(ctx, customer)
	if err != nil {
		result := domsync.FailedResult(err)
		result.EntityID = &project.ID
		s.record(ctx, domsync.EntityTypeEstimate, result)
		return result
	}

	itemRef, err := s.ensureItem(ctx)
	if err != nil {
		result := domsync.FailedResult(err)
		result.EntityID = &project.ID
		s.record(ctx, domsync.EntityTypeEstimate, result)
		return result
	}

	value := project.EstimatedValue
	qty := decimal.NewFromInt(1)
	qbo := &quickbooks.Estimate{
		DocNumber:   project.Number,
		CustomerRef: customerRef,
		TxnDate:     txnDate(time.Now()),
		TxnStatus:   "Pending",
		PrivateNote: project.Notes,
		Lines: []quickbooks.Line{{
			LineNum:     1,
			Description: project.Name,
			Amount:      value,
			DetailType:  "SalesItemLineDetail",
			SalesItem: &quickbooks.SalesItemDetail{
				ItemRef:   itemRef,
				Qty:       &qty,
				UnitPrice: &value,
			},
		}},
	}

	existing, err := s.client.FindEstimateByDocNumber(ctx, project.Number)
	if err != nil {
		result := domsync.FailedResult(err)
		result.EntityID = &project.ID
		s.record(ctx, domsync.EntityTypeEstimate, result)
		return result
	}

	var pushed *quickbooks.Estimate
	action := domsync.ActionCreated
	if existing != nil {
		qbo.ID = existing.ID
		pushed, err = s.client.UpdateEstimate(ctx, qbo)
		action = domsync.ActionUpdated
	} else {
		pushed, err = s.client.CreateEstimate(ctx, qbo)
	}
	if err != nil {
		result := domsync.FailedResult(err)
		result.EntityID = &project.ID
		s.record(ctx, domsync.EntityTypeEstimate, result)
		return result
	}

	result := domsync.SuccessResult(action, project.ID, pushed.ID)
	s.record(ctx, domsync.EntityTypeEstimate, result)
	return result
}

// ensureCustomer resolves the QuickBooks customer matching a local account
// by display name, creating it when missing. A creation gets its own log
// entry since it writes a distinct remote entity.
func (s *Service) ensureCustomer(ctx context.Context, customer *crm.Customer) (*quickbooks.Ref, error) {
	existing, err := s.client.FindCustomerByName(ctx, customer.Name)
	if err != nil {
		return nil, fmt.Errorf("resolve customer %q: %w", customer.Name, err)
	}
	if existing != nil {
		return &quickbooks.Ref{Value: existing.ID, Name: existing.DisplayName}, nil
	}

	created, err := s.client.CreateCustomer(ctx, customerPayload(customer))
	if err != nil {
		return nil, fmt.Errorf("create customer %q: %w", customer.Name, err)
	}
	s.record(ctx, domsync.EntityTypeCustomer,
		domsync.SuccessResult(domsync.ActionCreated, customer.ID, created.ID))
	return &quickbooks.Ref{Value: created.ID, Name: created.DisplayName}, nil
}

// ensureVendor resolves a vendor by display name, creating it when missing
func (s *Service) ensureVendor(ctx context.Context, name string) (*quickbooks.Ref, error) {
	existing, err := s.client.FindVendorByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("resolve vendor %q: %w", name, err)
	}
	if existing != nil {
		return &quickbooks.Ref{Value: existing.ID, Name: existing.DisplayName}, nil
	}

	created, err := s.client.CreateVendor(ctx, &quickbooks.Vendor{DisplayName: name})
	if err != nil {
		return nil, fmt.Errorf("create vendor %q: %w", name, err)
	}
	result := domsync.Result{
		Success:    true,
		Outcome:    domsync.OutcomeSuccess,
		Action:     domsync.ActionCreated,
		ExternalID: created.ID,
	}
	s.record(ctx, domsync.EntityTypeVendor, result)
	return &quickbooks.Ref{Value: created.ID, Name: created.DisplayName}, nil
}

// ensureItem resolves the default service item, creating it on first use.
// The ref is cached for the life of the process.
func (s *Service) ensureItem(ctx context.Context) (*quickbooks.Ref, error) {
	s.itemMu.Lock()
	defer s.itemMu.Unlock()
	if s.itemRef != nil {
		return s.itemRef, nil
	}

	existing, err := s.client.FindItemByName(ctx, defaultServiceItem)
	if err != nil {
		return nil, fmt.Errorf("resolve item %q: %w", defaultServiceItem, err)
	}
	if existing != nil {
		s.itemRef = &quickbooks.Ref{Value: existing.ID, Name: existing.Name}
		return s.itemRef, nil
	}

	created, err := s.client.CreateItem(ctx, &quickbooks.Item{
		Name: defaultServiceItem,
		Type: "Service",
	})
	if err != nil {
		return nil, fmt.Errorf("create item %q: %w", defaultServiceItem, err)
	}
	result := domsync.Result{
		Success:    true,
		Outcome:    domsync.OutcomeSuccess,
		Action:     domsync.ActionCreated,
		ExternalID: created.ID,
	}
	s.record(ctx, domsync.EntityTypeItem, result)
	s.itemRef = &quickbooks.Ref{Value: created.ID, Name: created.Name}
	return s.itemRef, nil
}

// customerPayload maps a local customer account onto the accounting shape
func customerPayload(customer *crm.Customer) *quickbooks.Customer {
	qbo := &quickbooks.Customer{
		DisplayName: customer.Name,
		CompanyName: customer.Name,
		Notes:       customer.Notes,
	}
	if customer.Email != "" {
		qbo.PrimaryEmail = &quickbooks.Email{Address: customer.Email}
	}
	if customer.Phone != "" {
		qbo.PrimaryPhone = &quickbooks.Phone{FreeFormNumber: customer.Phone}
	}
	if customer.Address != "" {
		qbo.BillAddr = &quickbooks.Address{Line1: customer.Address}
	}
	return qbo
}

// salesLines maps invoice lines onto the accounting shape
func salesLines(lines []accounting.InvoiceLine, itemRef *quickbooks.Ref) []quickbooks.Line {
	out := make([]quickbooks.Line, 0, len(lines))
	for i := range lines {
		line := &lines[i]
		qty := line.Quantity
		price := line.UnitPrice
		out = append(out, quickbooks.Line{
			LineNum:     line.LineNum,
			Description: line.Description,
			Amount:      line.Amount(),
			DetailType:  "SalesItemLineDetail",
			SalesItem: &quickbooks.SalesItemDetail{
				ItemRef:   itemRef,
				Qty:       &qty,
				UnitPrice: &price,
			},
		})
	}
	return out
}

// expenseLines maps purchase order lines onto the accounting shape
func expenseLines(lines []accounting.PurchaseOrderLine, itemRef *quickbooks.Ref) []quickbooks.Line {
	out := make([]quickbooks.Line, 0, len(lines))
	for i := range lines {
		line := &lines[i]
		qty := line.Quantity
		price := line.UnitPrice
		out = append(out, quickbooks.Line{
			LineNum:     line.LineNum,
			Description: line.Description,
			Amount:      line.Amount(),
			DetailType:  "ItemBasedExpenseLineDetail",
			ItemBased: &quickbooks.ItemBasedDetail{
				ItemRef:   itemRef,
				Qty:       &qty,
				UnitPrice: &price,
			},
		})
	}
	return out
}

// poStatus maps the local order status onto the accounting value
func poStatus(status accounting.PurchaseOrderStatus) string {
	if status == accounting.PurchaseOrderStatusClosed {
		return "Closed"
	}
	return "Open"
}

// txnDate formats a transaction date the way the accounting API expects
func txnDate(t time.Time) string {
	return t.Format("2006-01-02")
}
