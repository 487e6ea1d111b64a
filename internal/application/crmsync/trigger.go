package crmsync

import (
	"context"
	"errors"
	"strings"

	"github.com/fenestra/backend/internal/domain/crm"
	"github.com/fenestra/backend/internal/domain/shared"
	domsync "github.com/fenestra/backend/internal/domain/sync"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Trigger is the fire-and-forget entry point the write paths call after a
// local change commits. Requests are queued and executed by the
// dispatcher's workers; the caller's request never waits on the external
// API. When the integration is disabled requests are silently dropped:
// purely local operation is a supported mode, not an error.
type Trigger struct {
	service    *Service
	dispatcher *Dispatcher
	logger     *zap.Logger
}

// NewTrigger wires the trigger layer
func NewTrigger(service *Service, dispatcher *Dispatcher, logger *zap.Logger) *Trigger {
	return &Trigger{service: service, dispatcher: dispatcher, logger: logger}
}

// RequestCustomerSync queues an outbound push for a customer
func (t *Trigger) RequestCustomerSync(customerID uuid.UUID) {
	if !t.enabled("customer", customerID) {
		return
	}
	t.dispatcher.enqueue(job{
		name:       "push customer " + customerID.String(),
		entityType: domsync.EntityTypeCustomer,
		run: func(ctx context.Context) domsync.Result {
			return t.service.SyncCustomerToClickUp(ctx, customerID)
		},
	})
}

// RequestContactSync queues an outbound push for a contact
func (t *Trigger) RequestContactSync(contactID uuid.UUID) {
	if !t.enabled("contact", contactID) {
		return
	}
	t.dispatcher.enqueue(job{
		name:       "push contact " + contactID.String(),
		entityType: domsync.EntityTypeContact,
		run: func(ctx context.Context) domsync.Result {
			return t.service.SyncContactToClickUp(ctx, contactID)
		},
	})
}

// RequestProjectSync queues an outbound push for a project, preceded by
// the linked-account chain
func (t *Trigger) RequestProjectSync(projectID uuid.UUID) {
	if !t.enabled("project", projectID) {
		return
	}
	t.dispatcher.enqueue(job{
		name:       "push project " + projectID.String(),
		entityType: domsync.EntityTypeProject,
		run: func(ctx context.Context) domsync.Result {
			return t.service.SyncProjectWithAccount(ctx, projectID)
		},
	})
}

// RequestExternalDelete queues a best-effort deletion of the external task
// after a local entity was deleted. The local delete has already
// committed; a failure here only leaves an orphan task behind.
func (t *Trigger) RequestExternalDelete(entityType domsync.EntityType, externalID string) {
	if externalID == "" {
		return
	}
	if !t.service.Enabled() {
		return
	}
	t.dispatcher.enqueue(job{
		name:       "delete task " + externalID,
		entityType: entityType,
		run: func(ctx context.Context) domsync.Result {
			return t.service.DeleteExternalTask(ctx, entityType, externalID)
		},
	})
}

func (t *Trigger) enabled(kind string, id uuid.UUID) bool {
	if t.service.Enabled() {
		return true
	}
	t.logger.Debug("sync disabled, dropping request",
		zap.String("entity", kind),
		zap.String("id", id.String()))
	return false
}

// ---------------------------------------------------------------------------
// Project push chain
// ---------------------------------------------------------------------------

// SyncProjectWithAccount pushes a project after making sure its account
// side exists in the CRM:
//
//   - a linked customer that has no external task is pushed first
//   - a project with only a prospect name gets a prospect customer
//     created, linked and pushed
//
// An account-side failure is logged but does not stop the lead push; the
// relationship field simply fails best-effort until the account syncs.
func (s *Service) SyncProjectWithAccount(ctx context.Context, projectID uuid.UUID) domsync.Result {
	if err := s.ensureLinkedAccount(ctx, projectID); err != nil {
		s.logger.Warn("account chain failed, pushing lead anyway",
			zap.String("project_id", projectID.String()),
			zap.Error(err))
	}
	return s.SyncProjectToClickUp(ctx, projectID)
}

func (s *Service) ensureLinkedAccount(ctx context.Context, projectID uuid.UUID) error {
	project, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return err
	}

	var customer *crm.Customer
	switch {
	case project.HasCustomer():
		customer, err = s.customers.FindByID(ctx, *project.CustomerID)
		if err != nil {
			return err
		}
		if customer.IsLinked() {
			return nil
		}
	case project.ProspectName != "":
		customer, err = s.findOrCreateProspect(ctx, project)
		if err != nil {
			return err
		}
		if customer.IsLinked() {
			return nil
		}
	default:
		return nil
	}

	result := s.SyncCustomerToClickUp(ctx, customer.ID)
	if !result.Success {
		return errors.New("customer push failed: " + result.Error)
	}
	return nil
}

// findOrCreateProspect resolves a project's free-text prospect name to a
// customer, reusing an existing customer with the same name before
// creating a prospect record. The project is linked either way.
func (s *Service) findOrCreateProspect(ctx context.Context, project *crm.Project) (*crm.Customer, error) {
	customer, err := s.customers.FindByName(ctx, project.ProspectName)
	if errors.Is(err, shared.ErrNotFound) {
		customer, err = crm.NewProspectCustomer(prospectCustomerCode(), project.ProspectName)
		if err != nil {
			return nil, err
		}
		if err := s.customers.Save(ctx, customer); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	if err := project.LinkCustomer(customer.ID); err != nil {
		return nil, err
	}
	if err := s.projects.Save(ctx, project); err != nil {
		return nil, err
	}
	return customer, nil
}

// prospectCustomerCode generates a code for a customer created from a
// prospect name. Prospect names are free text, so the code comes from a
// fresh UUID rather than the name.
func prospectCustomerCode() string {
	return "CU-" + strings.ToUpper(uuid.New().String()[:8])
}

// DeleteExternalTask removes the external task for an already-deleted
// local entity
func (s *Service) DeleteExternalTask(ctx context.Context, entityType domsync.EntityType, externalID string) domsync.Result {
	var result domsync.Result
	if err := s.client.DeleteTask(ctx, externalID); err != nil {
		result = domsync.FailedResult(err)
	} else {
		result = domsync.Result{
			Success:    true,
			Outcome:    domsync.OutcomeSuccess,
			Action:     domsync.ActionDeleted,
			ExternalID: externalID,
		}
	}
	result.ExternalID = externalID
	s.record(ctx, entityType, domsync.DirectionERPToClickUp, result)
	return result
}
