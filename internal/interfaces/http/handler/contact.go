package handler

import (
	"time"

	"github.com/fenestra/backend/internal/application/crmsync"
	"github.com/fenestra/backend/internal/domain/crm"
	domsync "github.com/fenestra/backend/internal/domain/sync"
	"github.com/fenestra/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ContactHandler handles contact endpoints
type ContactHandler struct {
	BaseHandler
	contacts crm.ContactRepository
	trigger  *crmsync.Trigger
}

// NewContactHandler creates a new ContactHandler
func NewContactHandler(contacts crm.ContactRepository, trigger *crmsync.Trigger) *ContactHandler {
	return &ContactHandler{contacts: contacts, trigger: trigger}
}

// CreateContactRequest is the request body for creating a contact
type CreateContactRequest struct {
	CustomerID string `json:"customer_id" binding:"required,uuid"`
	FirstName  string `json:"first_name" binding:"required,min=1,max=100"`
	LastName   string `json:"last_name" binding:"max=100"`
	Email      string `json:"email" binding:"omitempty,email,max=200"`
	Phone      string `json:"phone" binding:"max=50"`
	Title      string `json:"title" binding:"max=100"`
}

// UpdateContactRequest is the request body for updating a contact
type UpdateContactRequest struct {
	FirstName  *string `json:"first_name" binding:"omitempty,min=1,max=100"`
	LastName   *string `json:"last_name" binding:"omitempty,max=100"`
	Email      *string `json:"email" binding:"omitempty,email,max=200"`
	Phone      *string `json:"phone" binding:"omitempty,max=50"`
	Title      *string `json:"title" binding:"omitempty,max=100"`
	CustomerID *string `json:"customer_id" binding:"omitempty,uuid"`
}

// ContactResponse is the wire shape of a contact
type ContactResponse struct {
	ID           string     `json:"id"`
	CustomerID   string     `json:"customer_id"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name,omitempty"`
	DisplayName  string     `json:"display_name"`
	Email        string     `json:"email,omitempty"`
	Phone        string     `json:"phone,omitempty"`
	Title        string     `json:"title,omitempty"`
	ExternalID   *string    `json:"external_id,omitempty"`
	LastSyncedAt *time.Time `json:"last_synced_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func toContactResponse(c *crm.Contact) ContactResponse {
	return ContactResponse{
		ID:           c.ID.String(),
		CustomerID:   c.CustomerID.String(),
		FirstName:    c.FirstName,
		LastName:     c.LastName,
		DisplayName:  c.DisplayName(),
		Email:        c.Email,
		Phone:        c.Phone,
		Title:        c.Title,
		ExternalID:   c.ExternalID,
		LastSyncedAt: c.LastSyncedAt,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

// Create handles POST /contacts
func (h *ContactHandler) Create(c *gin.Context) {
	var req CreateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}
	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		h.BadRequest(c, "invalid customer ID")
		return
	}

	contact, err := crm.NewContact(customerID, req.FirstName, req.LastName)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if err := contact.SetDetails(req.Email, req.Phone, req.Title); err != nil {
		h.HandleError(c, err)
		return
	}

	if err := h.contacts.Save(c.Request.Context(), contact); err != nil {
		h.HandleError(c, err)
		return
	}
	h.trigger.RequestContactSync(contact.ID)

	h.Created(c, toContactResponse(contact))
}

// Get handles GET /contacts/:id
func (h *ContactHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.BadRequest(c, "invalid contact ID")
		return
	}

	contact, err := h.contacts.FindByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toContactResponse(contact))
}

// List handles GET /contacts, optionally scoped to one customer
func (h *ContactHandler) List(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindingError(c, err)
		return
	}
	filter := req.Filter()

	ctx := c.Request.Context()
	var (
		contacts []crm.Contact
		err      error
	)
	if customerIDStr := c.Query("customer_id"); customerIDStr != "" {
		customerID, parseErr := uuid.Parse(customerIDStr)
		if parseErr != nil {
			h.BadRequest(c, "invalid customer ID")
			return
		}
		filter.Filters["customer_id"] = customerID
		contacts, err = h.contacts.FindByCustomer(ctx, customerID, filter)
	} else {
		contacts, err = h.contacts.FindAll(ctx, filter)
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}
	total, err := h.contacts.Count(ctx, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	out := make([]ContactResponse, 0, len(contacts))
	for i := range contacts {
		out = append(out, toContactResponse(&contacts[i]))
	}
	h.SuccessWithMeta(c, out, total, filter.Page, filter.PageSize)
}

// Update handles PUT /contacts/:id
func (h *ContactHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.BadRequest(c, "invalid contact ID")
		return
	}
	var req UpdateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	ctx := c.Request.Context()
	contact, err := h.contacts.FindByID(ctx, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if req.FirstName != nil || req.LastName != nil {
		firstName := contact.FirstName
		lastName := contact.LastName
		if req.FirstName != nil {
			firstName = *req.FirstName
		}
		if req.LastName != nil {
			lastName = *req.LastName
		}
		if err := contact.SetName(firstName, lastName); err != nil {
			h.HandleError(c, err)
			return
		}
	}
	if req.Email != nil || req.Phone != nil || req.Title != nil {
		email := contact.Email
		phone := contact.Phone
		title := contact.Title
		if req.Email != nil {
			email = *req.Email
		}
		if req.Phone != nil {
			phone = *req.Phone
		}
		if req.Title != nil {
			title = *req.Title
		}
		if err := contact.SetDetails(email, phone, title); err != nil {
			h.HandleError(c, err)
			return
		}
	}
	if req.CustomerID != nil {
		customerID, parseErr := uuid.Parse(*req.CustomerID)
		if parseErr != nil {
			h.BadRequest(c, "invalid customer ID")
			return
		}
		if err := contact.Reassign(customerID); err != nil {
			h.HandleError(c, err)
			return
		}
	}

	if err := h.contacts.Save(ctx, contact); err != nil {
		h.HandleError(c, err)
		return
	}
	h.trigger.RequestContactSync(contact.ID)

	h.Success(c, toContactResponse(contact))
}

// Delete handles DELETE /contacts/:id
func (h *ContactHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.BadRequest(c, "invalid contact ID")
		return
	}

	ctx := c.Request.Context()
	contact, err := h.contacts.FindByID(ctx, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if err := h.contacts.Delete(ctx, id); err != nil {
		h.HandleError(c, err)
		return
	}
	if contact.IsLinked() {
		h.trigger.RequestExternalDelete(domsync.EntityTypeContact, *contact.ExternalID)
	}

	h.NoContent(c)
}

// RegisterRoutes registers contact routes on the API group
func (h *ContactHandler) RegisterRoutes(rg *gin.RouterGroup) {
	contacts := rg.Group("/contacts")
	contacts.POST("", h.Create)
	contacts.GET("", h.List)
	contacts.GET("/:id", h.Get)
	contacts.PUT("/:id", h.Update)
	contacts.DELETE("/:id", h.Delete)
}
