package handler

import (
	"time"

	"github.com/fenestra/backend/internal/application/accounting"
	"github.com/fenestra/backend/internal/application/crmsync"
	"github.com/fenestra/backend/internal/domain/crm"
	domsync "github.com/fenestra/backend/internal/domain/sync"
	"github.com/fenestra/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProjectHandler handles project (lead) endpoints
type ProjectHandler struct {
	BaseHandler
	projects   crm.ProjectRepository
	trigger    *crmsync.Trigger
	accounting *accounting.Trigger
}

// NewProjectHandler creates a new ProjectHandler
func NewProjectHandler(projects crm.ProjectRepository, trigger *crmsync.Trigger, accountingTrigger *accounting.Trigger) *ProjectHandler {
	return &ProjectHandler{projects: projects, trigger: trigger, accounting: accountingTrigger}
}

// CreateProjectRequest is the request body for creating a project
type CreateProjectRequest struct {
	Number         string   `json:"number" binding:"required,min=1,max=50"`
	Name           string   `json:"name" binding:"required,min=1,max=200"`
	CustomerID     *string  `json:"customer_id" binding:"omitempty,uuid"`
	ProspectName   string   `json:"prospect_name" binding:"max=200"`
	SiteAddress    string   `json:"site_address" binding:"max=500"`
	EstimatedValue *float64 `json:"estimated_value" binding:"omitempty,gte=0"`
	TargetDate     *string  `json:"target_date" binding:"omitempty,datetime=2006-01-02"`
	Notes          string   `json:"notes"`
}

// UpdateProjectRequest is the request body for updating a project
type UpdateProjectRequest struct {
	Name           *string  `json:"name" binding:"omitempty,min=1,max=200"`
	Stage          *string  `json:"stage" binding:"omitempty,oneof=new quoting quoted won lost on_hold"`
	CustomerID     *string  `json:"customer_id" binding:"omitempty,uuid"`
	ProspectName   *string  `json:"prospect_name" binding:"omitempty,max=200"`
	SiteAddress    *string  `json:"site_address" binding:"omitempty,max=500"`
	EstimatedValue *float64 `json:"estimated_value" binding:"omitempty,gte=0"`
	TargetDate     *string  `json:"target_date" binding:"omitempty,datetime=2006-01-02"`
	OwnerID        *string  `json:"owner_id" binding:"omitempty,uuid"`
}

// ProjectResponse is the wire shape of a project
type ProjectResponse struct {
	ID             string     `json:"id"`
	Number         string     `json:"number"`
	Name           string     `json:"name"`
	Stage          string     `json:"stage"`
	CustomerID     *string    `json:"customer_id,omitempty"`
	ProspectName   string     `json:"prospect_name,omitempty"`
	SiteAddress    string     `json:"site_address,omitempty"`
	EstimatedValue string     `json:"estimated_value"`
	TargetDate     *time.Time `json:"target_date,omitempty"`
	OwnerID        *string    `json:"owner_id,omitempty"`
	Notes          string     `json:"notes,omitempty"`
	ExternalID     *string    `json:"external_id,omitempty"`
	LastSyncedAt   *time.Time `json:"last_synced_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func toProjectResponse(p *crm.Project) ProjectResponse {
	resp := ProjectResponse{
		ID:             p.ID.String(),
		Number:         p.Number,
		Name:           p.Name,
		Stage:          p.Stage.String(),
		ProspectName:   p.ProspectName,
		SiteAddress:    p.SiteAddress,
		EstimatedValue: p.EstimatedValue.String(),
		TargetDate:     p.TargetDate,
		Notes:          p.Notes,
		ExternalID:     p.ExternalID,
		LastSyncedAt:   p.LastSyncedAt,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
	if p.CustomerID != nil {
		s := p.CustomerID.String()
		resp.CustomerID = &s
	}
	if p.OwnerID != nil {
		s := p.OwnerID.String()
		resp.OwnerID = &s
	}
	return resp
}

// Create handles POST /projects
func (h *ProjectHandler) Create(c *gin.Context) {
	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	project, err := crm.NewProject(req.Number, req.Name)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if err := h.applyProjectFields(project, req); err != nil {
		h.HandleError(c, err)
		return
	}

	if err := h.projects.Save(c.Request.Context(), project); err != nil {
		h.HandleError(c, err)
		return
	}
	h.trigger.RequestProjectSync(project.ID)

	h.Created(c, toProjectResponse(project))
}

func (h *ProjectHandler) applyProjectFields(project *crm.Project, req CreateProjectRequest) error {
	if req.CustomerID != nil {
		customerID, err := uuid.Parse(*req.CustomerID)
		if err != nil {
			return err
		}
		if err := project.LinkCustomer(customerID); err != nil {
			return err
		}
	} else if req.ProspectName != "" {
		if err := project.SetProspectName(req.ProspectName); err != nil {
			return err
		}
	}
	if req.SiteAddress != "" {
		if err := project.SetSiteAddress(req.SiteAddress); err != nil {
			return err
		}
	}
	if req.EstimatedValue != nil {
		if err := project.SetEstimatedValue(decimal.NewFromFloat(*req.EstimatedValue)); err != nil {
			return err
		}
	}
	if req.TargetDate != nil {
		date, err := time.Parse("2006-01-02", *req.TargetDate)
		if err != nil {
			return err
		}
		project.SetTargetDate(&date)
	}
	if req.Notes != "" {
		project.Notes = req.Notes
	}
	return nil
}

// Get handles GET /projects/:id
func (h *ProjectHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.BadRequest(c, "invalid project ID")
		return
	}

	project, err := h.projects.FindByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toProjectResponse(project))
}

// List handles GET /projects
func (h *ProjectHandler) List(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindingError(c, err)
		return
	}
	filter := req.Filter()
	if stage := c.Query("stage"); stage != "" {
		filter.Filters["stage"] = stage
	}

	ctx := c.Request.Context()
	projects, err := h.projects.FindAll(ctx, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	total, err := h.projects.Count(ctx, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	out := make([]ProjectResponse, 0, len(projects))
	for i := range projects {
		out = append(out, toProjectResponse(&projects[i]))
	}
	h.SuccessWithMeta(c, out, total, filter.Page, filter.PageSize)
}

// Update handles PUT /projects/:id. A stage change to quoted also pushes
// the project's quote snapshot to accounting as an estimate.
func (h *ProjectHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.BadRequest(c, "invalid project ID")
		return
	}
	var req UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	ctx := c.Request.Context()
	project, err := h.projects.FindByID(ctx, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	quoted := false
	if req.Name != nil {
		if err := project.Update(*req.Name); err != nil {
			h.HandleError(c, err)
			return
		}
	}
	if req.Stage != nil {
		stage := crm.ProjectStage(*req.Stage)
		if err := project.SetStage(stage); err != nil {
			h.HandleError(c, err)
			return
		}
		quoted = stage == crm.ProjectStageQuoted
	}
	if req.CustomerID != nil {
		customerID, parseErr := uuid.Parse(*req.CustomerID)
		if parseErr != nil {
			h.BadRequest(c, "invalid customer ID")
			return
		}
		if err := project.LinkCustomer(customerID); err != nil {
			h.HandleError(c, err)
			return
		}
	}
	if req.ProspectName != nil {
		if err := project.SetProspectName(*req.ProspectName); err != nil {
			h.HandleError(c, err)
			return
		}
	}
	if req.SiteAddress != nil {
		if err := project.SetSiteAddress(*req.SiteAddress); err != nil {
			h.HandleError(c, err)
			return
		}
	}
	if req.EstimatedValue != nil {
		if err := project.SetEstimatedValue(decimal.NewFromFloat(*req.EstimatedValue)); err != nil {
			h.HandleError(c, err)
			return
		}
	}
	if req.TargetDate != nil {
		date, parseErr := time.Parse("2006-01-02", *req.TargetDate)
		if parseErr != nil {
			h.BadRequest(c, "invalid target date")
			return
		}
		project.SetTargetDate(&date)
	}
	if req.OwnerID != nil {
		ownerID, parseErr := uuid.Parse(*req.OwnerID)
		if parseErr != nil {
			h.BadRequest(c, "invalid owner ID")
			return
		}
		project.SetOwner(&ownerID)
	}

	if err := h.projects.Save(ctx, project); err != nil {
		h.HandleError(c, err)
		return
	}
	h.trigger.RequestProjectSync(project.ID)
	if quoted && h.accounting != nil {
		h.accounting.RequestEstimatePush(project.ID)
	}

	h.Success(c, toProjectResponse(project))
}

// Delete handles DELETE /projects/:id
func (h *ProjectHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.BadRequest(c, "invalid project ID")
		return
	}

	ctx := c.Request.Context()
	project, err := h.projects.FindByID(ctx, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if err := h.projects.Delete(ctx, id); err != nil {
		h.HandleError(c, err)
		return
	}
	if project.IsLinked() {
		h.trigger.RequestExternalDelete(domsync.EntityTypeProject, *project.ExternalID)
	}

	h.NoContent(c)
}

// RegisterRoutes registers project routes on the API group
func (h *ProjectHandler) RegisterRoutes(rg *gin.RouterGroup) {
	projects := rg.Group("/projects")
	projects.POST("", h.Create)
	projects.GET("", h.List)
	projects.GET("/:id", h.Get)
	projects.PUT("/:id", h.Update)
	projects.DELETE("/:id", h.Delete)
}
