package handler

import (
	"time"

	appacct "github.com/fenestra/backend/internal/application/accounting"
	"github.com/fenestra/backend/internal/domain/accounting"
	"github.com/fenestra/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceHandler handles invoice endpoints
type InvoiceHandler struct {
	BaseHandler
	invoices accounting.InvoiceRepository
	trigger  *appacct.Trigger
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(invoices accounting.InvoiceRepository, trigger *appacct.Trigger) *InvoiceHandler {
	return &InvoiceHandler{invoices: invoices, trigger: trigger}
}

// LineRequest is one line item in an invoice or purchase order request
type LineRequest struct {
	Description string `json:"description" binding:"max=500"`
	Quantity    string `json:"quantity" binding:"required"`
	UnitPrice   string `json:"unit_price" binding:"required"`
}

// CreateInvoiceRequest is the request body for creating an invoice
type CreateInvoiceRequest struct {
	Number     string        `json:"number" binding:"required,min=1,max=50"`
	CustomerID string        `json:"customer_id" binding:"required,uuid"`
	ProjectID  *string       `json:"project_id" binding:"omitempty,uuid"`
	DueDate    *string       `json:"due_date" binding:"omitempty,datetime=2006-01-02"`
	Notes      string        `json:"notes"`
	Lines      []LineRequest `json:"lines" binding:"required,min=1,dive"`
}

// UpdateInvoiceRequest is the request body for updating an invoice
type UpdateInvoiceRequest struct {
	Status  *string       `json:"status" binding:"omitempty,oneof=draft sent paid void"`
	DueDate *string       `json:"due_date" binding:"omitempty,datetime=2006-01-02"`
	Notes   *string       `json:"notes"`
	Lines   []LineRequest `json:"lines" binding:"omitempty,min=1,dive"`
}

// InvoiceLineResponse is the wire shape of an invoice line
type InvoiceLineResponse struct {
	LineNum     int    `json:"line_num"`
	Description string `json:"description,omitempty"`
	Quantity    string `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	Amount      string `json:"amount"`
}

// InvoiceResponse is the wire shape of an invoice
type InvoiceResponse struct {
	ID           string                `json:"id"`
	Number       string                `json:"number"`
	CustomerID   string                `json:"customer_id"`
	ProjectID    *string               `json:"project_id,omitempty"`
	Status       string                `json:"status"`
	IssueDate    time.Time             `json:"issue_date"`
	DueDate      *time.Time            `json:"due_date,omitempty"`
	Notes        string                `json:"notes,omitempty"`
	Total        string                `json:"total"`
	Lines        []InvoiceLineResponse `json:"lines"`
	ExternalID   *string               `json:"external_id,omitempty"`
	LastSyncedAt *time.Time            `json:"last_synced_at,omitempty"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

func toInvoiceResponse(inv *accounting.Invoice) InvoiceResponse {
	resp := InvoiceResponse{
		ID:           inv.ID.String(),
		Number:       inv.Number,
		CustomerID:   inv.CustomerID.String(),
		Status:       string(inv.Status),
		IssueDate:    inv.IssueDate,
		DueDate:      inv.DueDate,
		Notes:        inv.Notes,
		Total:        inv.Total().String(),
		Lines:        make([]InvoiceLineResponse, 0, len(inv.Lines)),
		ExternalID:   inv.ExternalID,
		LastSyncedAt: inv.LastSyncedAt,
		CreatedAt:    inv.CreatedAt,
		UpdatedAt:    inv.UpdatedAt,
	}
	if inv.ProjectID != nil {
		s := inv.ProjectID.String()
		resp.ProjectID = &s
	}
	for i := range inv.Lines {
		line := &inv.Lines[i]
		resp.Lines = append(resp.Lines, InvoiceLineResponse{
			LineNum:     line.LineNum,
			Description: line.Description,
			Quantity:    line.Quantity.String(),
			UnitPrice:   line.UnitPrice.String(),
			Amount:      line.Amount().String(),
		})
	}
	return resp
}

func parseLine(req LineRequest) (qty, price decimal.Decimal, err error) {
	qty, err = decimal.NewFromString(req.Quantity)
	if err != nil {
		return
	}
	price, err = decimal.NewFromString(req.UnitPrice)
	return
}

// Create handles POST /invoices
func (h *InvoiceHandler) Create(c *gin.Context) {
	var req CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		h.BadRequest(c, "invalid customer ID")
		return
	}
	invoice, err := accounting.NewInvoice(req.Number, customerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if req.ProjectID != nil {
		projectID, parseErr := uuid.Parse(*req.ProjectID)
		if parseErr != nil {
			h.BadRequest(c, "invalid project ID")
			return
		}
		invoice.ProjectID = &projectID
	}
	if req.DueDate != nil {
		date, parseErr := time.Parse("2006-01-02", *req.DueDate)
		if parseErr != nil {
			h.BadRequest(c, "invalid due date")
			return
		}
		invoice.SetDueDate(&date)
	}
	invoice.Notes = req.Notes
	for _, line := range req.Lines {
		qty, price, parseErr := parseLine(line)
		if parseErr != nil {
			h.BadRequest(c, "invalid line amount")
			return
		}
		if err := invoice.AddLine(line.Description, qty, price); err != nil {
			h.HandleError(c, err)
			return
		}
	}

	if err := h.invoices.Save(c.Request.Context(), invoice); err != nil {
		h.HandleError(c, err)
		return
	}
	h.trigger.RequestInvoicePush(invoice.ID)

	h.Created(c, toInvoiceResponse(invoice))
}

// Get handles GET /invoices/:id
func (h *InvoiceHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.BadRequest(c, "invalid invoice ID")
		return
	}

	invoice, err := h.invoices.FindByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toInvoiceResponse(invoice))
}

// List handles GET /invoices
func (h *InvoiceHandler) List(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindingError(c, err)
		return
	}
	filter := req.Filter()
	if status := c.Query("status"); status != "" {
		filter.Filters["status"] = status
	}
	if customerID := c.Query("customer_id"); customerID != "" {
		filter.Filters["customer_id"] = customerID
	}

	ctx := c.Request.Context()
	invoices, err := h.invoices.FindAll(ctx, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	total, err := h.invoices.Count(ctx, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	out := make([]InvoiceResponse, 0, len(invoices))
	for i := range invoices {
		out = append(out, toInvoiceResponse(&invoices[i]))
	}
	h.SuccessWithMeta(c, out, total, filter.Page, filter.PageSize)
}

// Update handles PUT /invoices/:id. Replacing lines rebuilds the full
// line set; partial line edits are not supported.
func (h *InvoiceHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.BadRequest(c, "invalid invoice ID")
		return
	}
	var req UpdateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	ctx := c.Request.Context()
	invoice, err := h.invoices.FindByID(ctx, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if req.Status != nil {
		if err := invoice.SetStatus(accounting.InvoiceStatus(*req.Status)); err != nil {
			h.HandleError(c, err)
			return
		}
	}
	if req.DueDate != nil {
		date, parseErr := time.Parse("2006-01-02", *req.DueDate)
		if parseErr != nil {
			h.BadRequest(c, "invalid due date")
			return
		}
		invoice.SetDueDate(&date)
	}
	if req.Notes != nil {
		invoice.Notes = *req.Notes
	}
	if req.Lines != nil {
		invoice.Lines = nil
		for _, line := range req.Lines {
			qty, price, parseErr := parseLine(line)
			if parseErr != nil {
				h.BadRequest(c, "invalid line amount")
				return
			}
			if err := invoice.AddLine(line.Description, qty, price); err != nil {
				h.HandleError(c, err)
				return
			}
		}
	}

	if err := h.invoices.Save(ctx, invoice); err != nil {
		h.HandleError(c, err)
		return
	}
	h.trigger.RequestInvoicePush(invoice.ID)

	h.Success(c, toInvoiceResponse(invoice))
}

// Delete handles DELETE /invoices/:id. The accounting copy is left in
// place; only the local record and its link are removed.
func (h *InvoiceHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.BadRequest(c, "invalid invoice ID")
		return
	}

	if err := h.invoices.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// RegisterRoutes registers invoice routes on the API group
func (h *InvoiceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	invoices := rg.Group("/invoices")
	invoices.POST("", h.Create)
	invoices.GET("", h.List)
	invoices.GET("/:id", h.Get)
	invoices.PUT("/:id", h.Update)
	invoices.DELETE("/:id", h.Delete)
}
