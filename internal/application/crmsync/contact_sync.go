package crmsync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fenestra/backend/internal/domain/crm"
	"github.com/fenestra/backend/internal/domain/shared"
	domsync "github.com/fenestra/backend/internal/domain/sync"
	"github.com/fenestra/backend/internal/infrastructure/clickup"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SyncContactToClickUp pushes one contact to the CRM. The task name is the
// contact's display name; the owning customer is pushed as a relationship
// field when the customer itself is linked.
func (s *Service) SyncContactToClickUp(ctx context.Context, contactID uuid.UUID) domsync.Result {
	result := s.pushContact(ctx, contactID)
	s.record(ctx, domsync.EntityTypeContact, domsync.DirectionERPToClickUp, result)
	return result
}

func (s *Service) pushContact(ctx context.Context, contactID uuid.UUID) domsync.Result {
	contact, err := s.contacts.FindByID(ctx, contactID)
	if err != nil {
		return domsync.FailedResult(fmt.Errorf("load contact: %w", err))
	}

	listID := s.client.ContactListID()
	name := contact.DisplayName()

	var taskID string
	var action domsync.Action

	if contact.IsLinked() {
		taskID = *contact.ExternalID
		if s.detectConflict(ctx, taskID, contact.LastSyncedAt) {
			s.logger.Warn("contact push aborted, external task modified since last sync",
				zap.String("contact_id", contactID.String()),
				zap.String("task_id", taskID))
			return domsync.ConflictResult(contactID, taskID)
		}
		req := &clickup.UpdateTaskRequest{Name: &name}
		if _, err := s.client.UpdateTask(ctx, taskID, req); err != nil {
			return domsync.FailedResult(fmt.Errorf("update task: %w", err))
		}
		action = domsync.ActionUpdated
	} else {
		req := &clickup.CreateTaskRequest{Name: name}
		task, err := s.client.CreateTask(ctx, listID, req)
		if err != nil {
			return domsync.FailedResult(fmt.Errorf("create task: %w", err))
		}
		taskID = task.ID
		action = domsync.ActionCreated
	}

	var fields []domsync.FieldPushResult
	fields = s.pushField(ctx, listID, taskID, FieldPhone, contact.Phone, fields)
	fields = s.pushField(ctx, listID, taskID, FieldEmail, contact.Email, fields)
	fields = s.pushField(ctx, listID, taskID, FieldTitle, contact.Title, fields)
	fields = s.pushAccountRelation(ctx, listID, taskID, contact.CustomerID, fields)

	if err := s.contacts.UpdateSyncLink(ctx, contactID, taskID, time.Now()); err != nil {
		return domsync.FailedResult(fmt.Errorf("update sync link: %w", err))
	}

	result := domsync.SuccessResult(action, contactID, taskID)
	result.FieldResults = fields
	return result
}

// pushAccountRelation writes the customer relationship field using add
// semantics, so concurrent edits to the relation on the CRM side are not
// clobbered. A customer that is not linked yet cannot be referenced; the
// push is recorded as a failed field.
func (s *Service) pushAccountRelation(ctx context.Context, listID, taskID string, customerID uuid.UUID, results []domsync.FieldPushResult) []domsync.FieldPushResult {
	customer, err := s.customers.FindByID(ctx, customerID)
	if err != nil {
		return append(results, domsync.FieldPushResult{Field: FieldAccount, OK: false, Error: "load customer: " + err.Error()})
	}
	if !customer.IsLinked() {
		return append(results, domsync.FieldPushResult{Field: FieldAccount, OK: false, Error: "customer not linked to a CRM account"})
	}
	value := map[string]any{"add": []string{*customer.ExternalID}}
	return s.pushField(ctx, listID, taskID, FieldAccount, value, results)
}

// SyncTaskToContact applies one CRM contact task locally. A contact
// requires an owning customer: a brand-new task whose account relation
// cannot be resolved locally is skipped, not failed. An existing contact
// keeps its customer when the relation is absent from the task.
func (s *Service) SyncTaskToContact(ctx context.Context, task *clickup.Task) domsync.Result {
	result := s.applyContactTask(ctx, task)
	s.record(ctx, domsync.EntityTypeContact, domsync.DirectionClickUpToERP, result)
	return result
}

func (s *Service) applyContactTask(ctx context.Context, task *clickup.Task) domsync.Result {
	customerID, relationPresent := s.resolveAccountRelation(ctx, task)

	contact, err := s.contacts.FindByExternalID(ctx, task.ID)
	action := domsync.ActionUpdated
	switch {
	case err == nil:
		firstName, lastName := ParseFullName(task.Name)
		if firstName != "" {
			if err := contact.SetName(firstName, lastName); err != nil {
				return domsync.FailedResult(err)
			}
		}
		// An absent or unresolvable relation never detaches the contact
		// from its current customer.
		if relationPresent && customerID != uuid.Nil && customerID != contact.CustomerID {
			if err := contact.Reassign(customerID); err != nil {
				return domsync.FailedResult(err)
			}
		}
	case errors.Is(err, shared.ErrNotFound):
		if customerID == uuid.Nil {
			return domsync.SkippedResult("contact task " + task.ID + " has no resolvable account relation")
		}
		firstName, lastName := ParseFullName(task.Name)
		contact, err = crm.NewContact(customerID, firstName, lastName)
		if err != nil {
			return domsync.FailedResult(fmt.Errorf("create contact: %w", err))
		}
		action = domsync.ActionCreated
	default:
		return domsync.FailedResult(fmt.Errorf("load contact: %w", err))
	}

	email := contact.Email
	if v, err := DecodeText(task.Field(FieldEmail)); err == nil {
		email = v
	}
	phone := contact.Phone
	if v, err := DecodePhone(task.Field(FieldPhone)); err == nil {
		phone = v
	}
	title := contact.Title
	if v, err := DecodeText(task.Field(FieldTitle)); err == nil {
		title = v
	}
	if err := contact.SetDetails(email, phone, title); err != nil {
		return domsync.FailedResult(err)
	}

	if err := s.contacts.Save(ctx, contact); err != nil {
		return domsync.FailedResult(fmt.Errorf("save contact: %w", err))
	}
	if err := s.contacts.UpdateSyncLink(ctx, contact.ID, task.ID, time.Now()); err != nil {
		return domsync.FailedResult(fmt.Errorf("update sync link: %w", err))
	}
	return domsync.SuccessResult(action, contact.ID, task.ID)
}

// resolveAccountRelation maps the task's account relationship to a local
// customer ID. The second return reports whether the field carried a value
// at all, resolvable or not.
func (s *Service) resolveAccountRelation(ctx context.Context, task *clickup.Task) (uuid.UUID, bool) {
	taskIDs, err := DecodeRelationship(task.Field(FieldAccount))
	if err != nil || len(taskIDs) == 0 {
		return uuid.Nil, false
	}
	for _, externalID := range taskIDs {
		customer, err := s.customers.FindByExternalID(ctx, externalID)
		if err == nil {
			return customer.ID, true
		}
	}
	return uuid.Nil, true
}

// UnlinkContact handles an external-side deletion of a contact task
func (s *Service) UnlinkContact(ctx context.Context, externalID string) domsync.Result {
	result := s.unlinkContact(ctx, externalID)
	s.record(ctx, domsync.EntityTypeContact, domsync.DirectionClickUpToERP, result)
	return result
}

func (s *Service) unlinkContact(ctx context.Context, externalID string) domsync.Result {
	contact, err := s.contacts.FindByExternalID(ctx, externalID)
	if errors.Is(err, shared.ErrNotFound) {
		return domsync.SkippedResult("no contact linked to deleted task " + externalID)
	}
	if err != nil {
		return domsync.FailedResult(fmt.Errorf("load contact: %w", err))
	}
	if err := s.contacts.ClearSyncLink(ctx, contact.ID); err != nil {
		return domsync.FailedResult(fmt.Errorf("clear sync link: %w", err))
	}
	return domsync.SuccessResult(domsync.ActionUnlinked, contact.ID, externalID)
}
