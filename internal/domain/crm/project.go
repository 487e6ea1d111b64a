package crm

import (
	"strings"
	"time"

	"github.com/fenestra/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProjectStage represents the sales stage of a project
type ProjectStage string

const (
	ProjectStageNew     ProjectStage = "new"
	ProjectStageQuoting ProjectStage = "quoting"
	ProjectStageQuoted  ProjectStage = "quoted"
	ProjectStageWon     ProjectStage = "won"
	ProjectStageLost    ProjectStage = "lost"
	ProjectStageOnHold  ProjectStage = "on_hold"
)

// IsValid returns true if the stage is a known value
func (s ProjectStage) IsValid() bool {
	switch s {
	case ProjectStageNew, ProjectStageQuoting, ProjectStageQuoted,
		ProjectStageWon, ProjectStageLost, ProjectStageOnHold:
		return true
	default:
		return false
	}
}

// String returns the string representation of ProjectStage
func (s ProjectStage) String() string {
	return string(s)
}

// Project represents a quoting/manufacturing project. In the external CRM
// it is tracked as a lead. A project may reference a customer account; an
// early-stage project may instead carry only a free-text prospect name.
type Project struct {
	shared.BaseAggregateRoot
	Number         string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name           string          `gorm:"type:varchar(200);not null"`
	Stage          ProjectStage    `gorm:"type:varchar(20);not null;default:'new'"`
	CustomerID     *uuid.UUID      `gorm:"type:uuid;index"`
	ProspectName   string          `gorm:"type:varchar(200)"`
	SiteAddress    string          `gorm:"type:text"`
	EstimatedValue decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TargetDate     *time.Time      `gorm:""`
	OwnerID        *uuid.UUID      `gorm:"type:uuid;index"`
	Notes          string          `gorm:"type:text"`

	// Sync link fields, owned by the sync engine.
	ExternalID   *string    `gorm:"type:varchar(64);uniqueIndex"`
	LastSyncedAt *time.Time `gorm:""`
}

// TableName returns the table name for GORM
func (Project) TableName() string {
	return "projects"
}

// NewProject creates a new project with required fields
func NewProject(number, name string) (*Project, error) {
	if strings.TrimSpace(number) == "" {
		return nil, shared.NewDomainError("INVALID_NUMBER", "Project number cannot be empty")
	}
	if len(number) > 50 {
		return nil, shared.NewDomainError("INVALID_NUMBER", "Project number cannot exceed 50 characters")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Project name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_NAME", "Project name cannot exceed 200 characters")
	}

	project := &Project{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Number:            strings.ToUpper(number),
		Name:              name,
		Stage:             ProjectStageNew,
		EstimatedValue:    decimal.Zero,
	}

	project.AddDomainEvent(NewProjectCreatedEvent(project))

	return project, nil
}

// Update updates the project's basic information
func (p *Project) Update(name string) error {
	if strings.TrimSpace(name) == "" {
		return shared.NewDomainError("INVALID_NAME", "Project name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Project name cannot exceed 200 characters")
	}
	p.Name = name
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	p.AddDomainEvent(NewProjectUpdatedEvent(p))
	return nil
}

// SetStage moves the project to a new sales stage
func (p *Project) SetStage(stage ProjectStage) error {
	if !stage.IsValid() {
		return shared.NewDomainError("INVALID_STAGE", "Invalid project stage")
	}
	p.Stage = stage
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	p.AddDomainEvent(NewProjectUpdatedEvent(p))
	return nil
}

// LinkCustomer associates the project with a customer account
func (p *Project) LinkCustomer(customerID uuid.UUID) error {
	if customerID == uuid.Nil {
		return shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	p.CustomerID = &customerID
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// SetProspectName records a free-text prospect name for projects that
// do not have a customer account yet
func (p *Project) SetProspectName(name string) error {
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Prospect name cannot exceed 200 characters")
	}
	p.ProspectName = strings.TrimSpace(name)
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// SetEstimatedValue sets the estimated contract value
func (p *Project) SetEstimatedValue(value decimal.Decimal) error {
	if value.IsNegative() {
		return shared.NewDomainError("INVALID_VALUE", "Estimated value cannot be negative")
	}
	p.EstimatedValue = value
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// SetTargetDate sets the target completion date
func (p *Project) SetTargetDate(date *time.Time) {
	p.TargetDate = date
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// SetOwner assigns the project to a local user
func (p *Project) SetOwner(userID *uuid.UUID) {
	p.OwnerID = userID
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// SetSiteAddress sets the job-site address
func (p *Project) SetSiteAddress(address string) error {
	if len(address) > 500 {
		return shared.NewDomainError("INVALID_ADDRESS", "Site address cannot exceed 500 characters")
	}
	p.SiteAddress = address
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// HasCustomer returns true if the project is linked to a customer account
func (p *Project) HasCustomer() bool {
	return p.CustomerID != nil && *p.CustomerID != uuid.Nil
}

// IsLinked returns true if the project is linked to an external CRM task
func (p *Project) IsLinked() bool {
	return p.ExternalID != nil && *p.ExternalID != ""
}
