package handler

import (
	"time"

	"github.com/fenestra/backend/internal/application/crmsync"
	"github.com/fenestra/backend/internal/domain/crm"
	domsync "github.com/fenestra/backend/internal/domain/sync"
	"github.com/fenestra/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// CustomerHandler handles customer account endpoints. Writes commit locally
// first, then request a CRM sync; the response never waits for the push.
type CustomerHandler struct {
	BaseHandler
	customers crm.CustomerRepository
	trigger   *crmsync.Trigger
}

// NewCustomerHandler creates a new CustomerHandler
func NewCustomerHandler(customers crm.CustomerRepository, trigger *crmsync.Trigger) *CustomerHandler {
	return &CustomerHandler{customers: customers, trigger: trigger}
}

// CreateCustomerRequest is the request body for creating a customer
type CreateCustomerRequest struct {
	Code        string `json:"code" binding:"required,min=1,max=50"`
	Name        string `json:"name" binding:"required,min=1,max=200"`
	ContactName string `json:"contact_name" binding:"max=100"`
	Phone       string `json:"phone" binding:"max=50"`
	Email       string `json:"email" binding:"omitempty,email,max=200"`
	Address     string `json:"address" binding:"max=500"`
	Notes       string `json:"notes"`
}

// UpdateCustomerRequest is the request body for updating a customer
type UpdateCustomerRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=200"`
	ContactName *string `json:"contact_name" binding:"omitempty,max=100"`
	Phone       *string `json:"phone" binding:"omitempty,max=50"`
	Email       *string `json:"email" binding:"omitempty,email,max=200"`
	Address     *string `json:"address" binding:"omitempty,max=500"`
	Status      *string `json:"status" binding:"omitempty,oneof=active prospect inactive"`
	Notes       *string `json:"notes"`
}

// CustomerResponse is the wire shape of a customer account
type CustomerResponse struct {
	ID           string     `json:"id"`
	Code         string     `json:"code"`
	Name         string     `json:"name"`
	Status       string     `json:"status"`
	ContactName  string     `json:"contact_name,omitempty"`
	Phone        string     `json:"phone,omitempty"`
	Email        string     `json:"email,omitempty"`
	Address      string     `json:"address,omitempty"`
	Notes        string     `json:"notes,omitempty"`
	ExternalID   *string    `json:"external_id,omitempty"`
	LastSyncedAt *time.Time `json:"last_synced_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func toCustomerResponse(c *crm.Customer) CustomerResponse {
	return CustomerResponse{
		ID:           c.ID.String(),
		Code:         c.Code,
		Name:         c.Name,
		Status:       string(c.Status),
		ContactName:  c.ContactName,
		Phone:        c.Phone,
		Email:        c.Email,
		Address:      c.Address,
		Notes:        c.Notes,
		ExternalID:   c.ExternalID,
		LastSyncedAt: c.LastSyncedAt,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

// Create handles POST /customers
func (h *CustomerHandler) Create(c *gin.Context) {
	var req CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	customer, err := crm.NewCustomer(req.Code, req.Name)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if err := customer.SetContact(req.ContactName, req.Phone, req.Email); err != nil {
		h.HandleError(c, err)
		return
	}
	if err := customer.SetAddress(req.Address); err != nil {
		h.HandleError(c, err)
		return
	}
	customer.SetNotes(req.Notes)

	if err := h.customers.Save(c.Request.Context(), customer); err != nil {
		h.HandleError(c, err)
		return
	}
	h.trigger.RequestCustomerSync(customer.ID)

	h.Created(c, toCustomerResponse(customer))
}

// Get handles GET /customers/:id
func (h *CustomerHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.BadRequest(c, "invalid customer ID")
		return
	}

	customer, err := h.customers.FindByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toCustomerResponse(customer))
}

// List handles GET /customers
func (h *CustomerHandler) List(c *gin.Context) {
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
	customers, err := h.customers.FindAll(ctx, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	total, err := h.customers.Count(ctx, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	out := make([]CustomerResponse, 0, len(customers))
	for i := range customers {
		out = append(out, toCustomerResponse(&customers[i]))
	}
	h.SuccessWithMeta(c, out, total, filter.Page, filter.PageSize)
}

// Update handles PUT /customers/:id
func (h *CustomerHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.BadRequest(c, "invalid customer ID")
		return
	}
	var req UpdateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	ctx := c.Request.Context()
	customer, err := h.customers.FindByID(ctx, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if req.Name != nil {
		if err := customer.Update(*req.Name); err != nil {
			h.HandleError(c, err)
			return
		}
	}
	if req.ContactName != nil || req.Phone != nil || req.Email != nil {
		contactName := customer.ContactName
		phone := customer.Phone
		email := customer.Email
		if req.ContactName != nil {
			contactName = *req.ContactName
		}
		if req.Phone != nil {
			phone = *req.Phone
		}
		if req.Email != nil {
			email = *req.Email
		}
		if err := customer.SetContact(contactName, phone, email); err != nil {
			h.HandleError(c, err)
			return
		}
	}
	if req.Address != nil {
		if err := customer.SetAddress(*req.Address); err != nil {
			h.HandleError(c, err)
			return
		}
	}
	if req.Status != nil {
		if err := customer.SetStatus(crm.CustomerStatus(*req.Status)); err != nil {
			h.HandleError(c, err)
			return
		}
	}
	if req.Notes != nil {
		customer.SetNotes(*req.Notes)
	}

	if err := h.customers.Save(ctx, customer); err != nil {
		h.HandleError(c, err)
		return
	}
	h.trigger.RequestCustomerSync(customer.ID)

	h.Success(c, toCustomerResponse(customer))
}

// Delete handles DELETE /customers/:id. A linked external task gets a
// best-effort delete after the local row is gone.
func (h *CustomerHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.BadRequest(c, "invalid customer ID")
		return
	}

	ctx := c.Request.Context()
	customer, err := h.customers.FindByID(ctx, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if err := h.customers.Delete(ctx, id); err != nil {
		h.HandleError(c, err)
		return
	}
	if customer.IsLinked() {
		h.trigger.RequestExternalDelete(domsync.EntityTypeCustomer, *customer.ExternalID)
	}

	h.NoContent(c)
}

// RegisterRoutes registers customer routes on the API group
func (h *CustomerHandler) RegisterRoutes(rg *gin.RouterGroup) {
	customers := rg.Group("/customers")
	customers.POST("", h.Create)
	customers.GET("", h.List)
	customers.GET("/:id", h.Get)
	customers.PUT("/:id", h.Update)
	customers.DELETE("/:id", h.Delete)
}
