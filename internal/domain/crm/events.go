package crm

import (
	"github.com/fenestra/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constants
const (
	AggregateTypeCustomer = "Customer"
	AggregateTypeContact  = "Contact"
	AggregateTypeProject  = "Project"
)

// Event type constants
const (
	EventTypeCustomerCreated = "CustomerCreated"
	EventTypeCustomerUpdated = "CustomerUpdated"
	EventTypeCustomerDeleted = "CustomerDeleted"
	EventTypeContactCreated  = "ContactCreated"
	EventTypeContactUpdated  = "ContactUpdated"
	EventTypeContactDeleted  = "ContactDeleted"
	EventTypeProjectCreated  = "ProjectCreated"
	EventTypeProjectUpdated  = "ProjectUpdated"
	EventTypeProjectDeleted  = "ProjectDeleted"
)

// CustomerCreatedEvent is published when a new customer is created
type CustomerCreatedEvent struct {
	shared.BaseDomainEvent
	CustomerID uuid.UUID `json:"customer_id"`
	Code       string    `json:"code"`
	Name       string    `json:"name"`
}

// NewCustomerCreatedEvent creates a new CustomerCreatedEvent
func NewCustomerCreatedEvent(customer *Customer) *CustomerCreatedEvent {
	return &CustomerCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCustomerCreated, customer.ID, AggregateTypeCustomer),
		CustomerID:      customer.ID,
		Code:            customer.Code,
		Name:            customer.Name,
	}
}

// CustomerUpdatedEvent is published when a customer is updated
type CustomerUpdatedEvent struct {
	shared.BaseDomainEvent
	CustomerID uuid.UUID `json:"customer_id"`
	Name       string    `json:"name"`
}

// NewCustomerUpdatedEvent creates a new CustomerUpdatedEvent
func NewCustomerUpdatedEvent(customer *Customer) *CustomerUpdatedEvent {
	return &CustomerUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCustomerUpdated, customer.ID, AggregateTypeCustomer),
		CustomerID:      customer.ID,
		Name:            customer.Name,
	}
}

// CustomerDeletedEvent is published when a customer is deleted
type CustomerDeletedEvent struct {
	shared.BaseDomainEvent
	CustomerID uuid.UUID `json:"customer_id"`
	ExternalID string    `json:"external_id,omitempty"`
}

// NewCustomerDeletedEvent creates a new CustomerDeletedEvent
func NewCustomerDeletedEvent(customer *Customer) *CustomerDeletedEvent {
	evt := &CustomerDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCustomerDeleted, customer.ID, AggregateTypeCustomer),
		CustomerID:      customer.ID,
	}
	if customer.ExternalID != nil {
		evt.ExternalID = *customer.ExternalID
	}
	return evt
}

// ContactCreatedEvent is published when a new contact is created
type ContactCreatedEvent struct {
	shared.BaseDomainEvent
	ContactID  uuid.UUID `json:"contact_id"`
	CustomerID uuid.UUID `json:"customer_id"`
}

// NewContactCreatedEvent creates a new ContactCreatedEvent
func NewContactCreatedEvent(contact *Contact) *ContactCreatedEvent {
	return &ContactCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeContactCreated, contact.ID, AggregateTypeContact),
		ContactID:       contact.ID,
		CustomerID:      contact.CustomerID,
	}
}

// ContactUpdatedEvent is published when a contact is updated
type ContactUpdatedEvent struct {
	shared.BaseDomainEvent
	ContactID uuid.UUID `json:"contact_id"`
}

// NewContactUpdatedEvent creates a new ContactUpdatedEvent
func NewContactUpdatedEvent(contact *Contact) *ContactUpdatedEvent {
	return &ContactUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeContactUpdated, contact.ID, AggregateTypeContact),
		ContactID:       contact.ID,
	}
}

// ContactDeletedEvent is published when a contact is deleted
type ContactDeletedEvent struct {
	shared.BaseDomainEvent
	ContactID  uuid.UUID `json:"contact_id"`
	ExternalID string    `json:"external_id,omitempty"`
}

// NewContactDeletedEvent creates a new ContactDeletedEvent
func NewContactDeletedEvent(contact *Contact) *ContactDeletedEvent {
	evt := &ContactDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeContactDeleted, contact.ID, AggregateTypeContact),
		ContactID:       contact.ID,
	}
	if contact.ExternalID != nil {
		evt.ExternalID = *contact.ExternalID
	}
	return evt
}

// ProjectCreatedEvent is published when a new project is created
type ProjectCreatedEvent struct {
	shared.BaseDomainEvent
	ProjectID uuid.UUID `json:"project_id"`
	Number    string    `json:"number"`
}

// NewProjectCreatedEvent creates a new ProjectCreatedEvent
func NewProjectCreatedEvent(project *Project) *ProjectCreatedEvent {
	return &ProjectCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProjectCreated, project.ID, AggregateTypeProject),
		ProjectID:       project.ID,
		Number:          project.Number,
	}
}

// ProjectUpdatedEvent is published when a project is updated
type ProjectUpdatedEvent struct {
	shared.BaseDomainEvent
	ProjectID uuid.UUID    `json:"project_id"`
	Stage     ProjectStage `json:"stage"`
}

// NewProjectUpdatedEvent creates a new ProjectUpdatedEvent
func NewProjectUpdatedEvent(project *Project) *ProjectUpdatedEvent {
	return &ProjectUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProjectUpdated, project.ID, AggregateTypeProject),
		ProjectID:       project.ID,
		Stage:           project.Stage,
	}
}

// ProjectDeletedEvent is published when a project is deleted
type ProjectDeletedEvent struct {
	shared.BaseDomainEvent
	ProjectID  uuid.UUID `json:"project_id"`
	ExternalID string    `json:"external_id,omitempty"`
}

// NewProjectDeletedEvent creates a new ProjectDeletedEvent
func NewProjectDeletedEvent(project *Project) *ProjectDeletedEvent {
	evt := &ProjectDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProjectDeleted, project.ID, AggregateTypeProject),
		ProjectID:       project.ID,
	}
	if project.ExternalID != nil {
		evt.ExternalID = *project.ExternalID
	}
	return evt
}
