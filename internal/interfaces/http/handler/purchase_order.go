package handler

import (
	"time"

	appacct "github.com/fenestra/backend/internal/application/accounting"
	"github.com/fenestra/backend/internal/domain/accounting"
	"github.com/fenestra/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PurchaseOrderHandler handles purchase order endpoints
type PurchaseOrderHandler struct {
	BaseHandler
	orders  accounting.PurchaseOrderRepository
	trigger *appacct.Trigger
}

// NewPurchaseOrderHandler creates a new PurchaseOrderHandler
func NewPurchaseOrderHandler(orders accounting.PurchaseOrderRepository, trigger *appacct.Trigger) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{orders: orders, trigger: trigger}
}

// CreatePurchaseOrderRequest is the request body for creating a purchase order
type CreatePurchaseOrderRequest struct {
	Number     string        `json:"number" binding:"required,min=1,max=50"`
	VendorName string        `json:"vendor_name" binding:"required,min=1,max=200"`
	ProjectID  *string       `json:"project_id" binding:"omitempty,uuid"`
	Notes      string        `json:"notes"`
	Lines      []LineRequest `json:"lines" binding:"required,min=1,dive"`
}

// UpdatePurchaseOrderRequest is the request body for updating a purchase order
type UpdatePurchaseOrderRequest struct {
	Status *string       `json:"status" binding:"omitempty,oneof=open closed"`
	Notes  *string       `json:"notes"`
	Lines  []LineRequest `json:"lines" binding:"omitempty,min=1,dive"`
}

// PurchaseOrderLineResponse is the wire shape of a purchase order line
type PurchaseOrderLineResponse struct {
	LineNum     int    `json:"line_num"`
	Description string `json:"description,omitempty"`
	Quantity    string `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	Amount      string `json:"amount"`
}

// PurchaseOrderResponse is the wire shape of a purchase order
type PurchaseOrderResponse struct {
	ID           string                      `json:"id"`
	Number       string                      `json:"number"`
	VendorName   string                      `json:"vendor_name"`
	ProjectID    *string                     `json:"project_id,omitempty"`
	Status       string                      `json:"status"`
	OrderDate    time.Time                   `json:"order_date"`
	Notes        string                      `json:"notes,omitempty"`
	Total        string                      `json:"total"`
	Lines        []PurchaseOrderLineResponse `json:"lines"`
	ExternalID   *string                     `json:"external_id,omitempty"`
	LastSyncedAt *time.Time                  `json:"last_synced_at,omitempty"`
	CreatedAt    time.Time                   `json:"created_at"`
	UpdatedAt    time.Time                   `json:"updated_at"`
}

func toPurchaseOrderResponse(po *accounting.PurchaseOrder) PurchaseOrderResponse {
	resp := PurchaseOrderResponse{
		ID:           po.ID.String(),
		Number:       po.Number,
		VendorName:   po.VendorName,
		Status:       string(po.Status),
		OrderDate:    po.OrderDate,
		Notes:        po.Notes,
		Total:        po.Total().String(),
		Lines:        make([]PurchaseOrderLineResponse, 0, len(po.Lines)),
		ExternalID:   po.ExternalID,
		LastSyncedAt: po.LastSyncedAt,
		CreatedAt:    po.CreatedAt,
		UpdatedAt:    po.UpdatedAt,
	}
	if po.ProjectID != nil {
		s := po.ProjectID.String()
		resp.ProjectID = &s
	}
	for i := range po.Lines {
		line := &po.Lines[i]
		resp.Lines = append(resp.Lines, PurchaseOrderLineResponse{
			LineNum:     line.LineNum,
			Description: line.Description,
			Quantity:    line.Quantity.String(),
			UnitPrice:   line.UnitPrice.String(),
			Amount:      line.Amount().String(),
		})
	}
	return resp
}

// Create handles POST /purchase-orders
func (h *PurchaseOrderHandler) Create(c *gin.Context) {
	var req CreatePurchaseOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	order, err := accounting.NewPurchaseOrder(req.Number, req.VendorName)
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
		order.ProjectID = &projectID
	}
	order.Notes = req.Notes
	for _, line := range req.Lines {
		qty, price, parseErr := parseLine(line)
		if parseErr != nil {
			h.BadRequest(c, "invalid line amount")
			return
		}
		if err := order.AddLine(line.Description, qty, price); err != nil {
			h.HandleError(c, err)
			return
		}
	}

	if err := h.orders.Save(c.Request.Context(), order); err != nil {
		h.HandleError(c, err)
		return
	}
	h.trigger.RequestPurchaseOrderPush(order.ID)

	h.Created(c, toPurchaseOrderResponse(order))
}

// Get handles GET /purchase-orders/:id
func (h *PurchaseOrderHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.BadRequest(c, "invalid purchase order ID")
		return
	}

	order, err := h.orders.FindByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toPurchaseOrderResponse(order))
}

// List handles GET /purchase-orders
func (h *PurchaseOrderHandler) List(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindingError(c, err)
		return
	}
	filter := req.Filter()
	if status := c.Query("status"); status != "" {
		filter.Filters["status"] = status
	}

	ctx := c.Request.Context()
	orders, err := h.orders.FindAll(ctx, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	total, err := h.orders.Count(ctx, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	out := make([]PurchaseOrderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, toPurchaseOrderResponse(&orders[i]))
	}
	h.SuccessWithMeta(c, out, total, filter.Page, filter.PageSize)
}

// Update handles PUT /purchase-orders/:id
func (h *PurchaseOrderHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.BadRequest(c, "invalid purchase order ID")
		return
	}
	var req UpdatePurchaseOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	ctx := c.Request.Context()
	order, err := h.orders.FindByID(ctx, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if req.Status != nil && *req.Status == string(accounting.PurchaseOrderStatusClosed) {
		order.Close()
	}
	if req.Notes != nil {
		order.Notes = *req.Notes
	}
	if req.Lines != nil {
		order.Lines = nil
		for _, line := range req.Lines {
			qty, price, parseErr := parseLine(line)
			if parseErr != nil {
				h.BadRequest(c, "invalid line amount")
				return
			}
			if err := order.AddLine(line.Description, qty, price); err != nil {
				h.HandleError(c, err)
				return
			}
		}
	}

	if err := h.orders.Save(ctx, order); err != nil {
		h.HandleError(c, err)
		return
	}
	h.trigger.RequestPurchaseOrderPush(order.ID)

	h.Success(c, toPurchaseOrderResponse(order))
}

// Delete handles DELETE /purchase-orders/:id
func (h *PurchaseOrderHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.BadRequest(c, "invalid purchase order ID")
		return
	}

	if err := h.orders.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// RegisterRoutes registers purchase order routes on the API group
func (h *PurchaseOrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	orders := rg.Group("/purchase-orders")
	orders.POST("", h.Create)
	orders.GET("", h.List)
	orders.GET("/:id", h.Get)
	orders.PUT("/:id", h.Update)
	orders.DELETE("/:id", h.Delete)
}
