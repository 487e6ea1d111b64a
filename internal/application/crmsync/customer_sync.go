package crmsync

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fenestra/backend/internal/domain/crm"
	"github.com/fenestra/backend/internal/domain/shared"
	domsync "github.com/fenestra/backend/internal/domain/sync"
	"github.com/fenestra/backend/internal/infrastructure/clickup"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SyncCustomerToClickUp pushes one customer to the CRM. An unlinked
// customer becomes a new task on the customer list; a linked one is
// updated in place after the conflict pre-check. Custom fields are pushed
// best-effort after the core write.
func (s *Service) SyncCustomerToClickUp(ctx context.Context, customerID uuid.UUID) domsync.Result {
	result := s.pushCustomer(ctx, customerID)
	s.record(ctx, domsync.EntityTypeCustomer, domsync.DirectionERPToClickUp, result)
	return result
}

func (s *Service) pushCustomer(ctx context.Context, customerID uuid.UUID) domsync.Result {
	customer, err := s.customers.FindByID(ctx, customerID)
	if err != nil {
		return domsync.FailedResult(fmt.Errorf("load customer: %w", err))
	}

	listID := s.client.CustomerListID()
	status := CustomerStatusForStatus(customer.Status)

	var taskID string
	var action domsync.Action

	if customer.IsLinked() {
		taskID = *customer.ExternalID
		if s.detectConflict(ctx, taskID, customer.LastSyncedAt) {
			s.logger.Warn("customer push aborted, external task modified since last sync",
				zap.String("customer_id", customerID.String()),
				zap.String("task_id", taskID))
			return domsync.ConflictResult(customerID, taskID)
		}
		req := &clickup.UpdateTaskRequest{
			Name:   &customer.Name,
			Status: &status,
		}
		if _, err := s.client.UpdateTask(ctx, taskID, req); err != nil {
			return domsync.FailedResult(fmt.Errorf("update task: %w", err))
		}
		action = domsync.ActionUpdated
	} else {
		req := &clickup.CreateTaskRequest{
			Name:   customer.Name,
			Status: status,
		}
		task, err := s.client.CreateTask(ctx, listID, req)
		if err != nil {
			return domsync.FailedResult(fmt.Errorf("create task: %w", err))
		}
		taskID = task.ID
		action = domsync.ActionCreated
	}

	var fields []domsync.FieldPushResult
	fields = s.pushField(ctx, listID, taskID, FieldPhone, customer.Phone, fields)
	fields = s.pushField(ctx, listID, taskID, FieldEmail, customer.Email, fields)
	fields = s.pushField(ctx, listID, taskID, FieldContactName, customer.ContactName, fields)
	fields = s.pushField(ctx, listID, taskID, FieldAddress, customer.Address, fields)

	if err := s.customers.UpdateSyncLink(ctx, customerID, taskID, time.Now()); err != nil {
		return domsync.FailedResult(fmt.Errorf("update sync link: %w", err))
	}

	result := domsync.SuccessResult(action, customerID, taskID)
	result.FieldResults = fields
	return result
}

// SyncTaskToCustomer applies one CRM account task locally. The task is
// matched by external ID; a miss creates a new customer with a generated
// code. Field values that are absent or malformed leave the local value
// untouched.
func (s *Service) SyncTaskToCustomer(ctx context.Context, task *clickup.Task) domsync.Result {
	result := s.applyCustomerTask(ctx, task)
	s.record(ctx, domsync.EntityTypeCustomer, domsync.DirectionClickUpToERP, result)
	return result
}

func (s *Service) applyCustomerTask(ctx context.Context, task *clickup.Task) domsync.Result {
	customer, err := s.customers.FindByExternalID(ctx, task.ID)
	action := domsync.ActionUpdated
	switch {
	case err == nil:
	case errors.Is(err, shared.ErrNotFound):
		customer, err = crm.NewCustomer(generatedCustomerCode(task.ID), task.Name)
		if err != nil {
			return domsync.FailedResult(fmt.Errorf("create customer: %w", err))
		}
		action = domsync.ActionCreated
	default:
		return domsync.FailedResult(fmt.Errorf("load customer: %w", err))
	}

	if action == domsync.ActionUpdated && task.Name != "" && task.Name != customer.Name {
		if err := customer.Update(task.Name); err != nil {
			return domsync.FailedResult(err)
		}
	}
	if err := customer.SetStatus(CustomerStatusFromStatus(task.Status.Status)); err != nil {
		return domsync.FailedResult(err)
	}

	contactName := customer.ContactName
	if v, err := DecodeText(task.Field(FieldContactName)); err == nil {
		contactName = v
	}
	phone := customer.Phone
	if v, err := DecodePhone(task.Field(FieldPhone)); err == nil {
		phone = v
	}
	email := customer.Email
	if v, err := DecodeText(task.Field(FieldEmail)); err == nil {
		email = v
	}
	if err := customer.SetContact(contactName, phone, email); err != nil {
		return domsync.FailedResult(err)
	}
	if v, err := DecodeText(task.Field(FieldAddress)); err == nil {
		if err := customer.SetAddress(v); err != nil {
			return domsync.FailedResult(err)
		}
	}

	if err := s.customers.Save(ctx, customer); err != nil {
		return domsync.FailedResult(fmt.Errorf("save customer: %w", err))
	}
	if err := s.customers.UpdateSyncLink(ctx, customer.ID, task.ID, time.Now()); err != nil {
		return domsync.FailedResult(fmt.Errorf("update sync link: %w", err))
	}
	return domsync.SuccessResult(action, customer.ID, task.ID)
}

// UnlinkCustomer handles an external-side deletion of an account task. The
// local customer survives; only the link is removed.
func (s *Service) UnlinkCustomer(ctx context.Context, externalID string) domsync.Result {
	result := s.unlinkCustomer(ctx, externalID)
	s.record(ctx, domsync.EntityTypeCustomer, domsync.DirectionClickUpToERP, result)
	return result
}

func (s *Service) unlinkCustomer(ctx context.Context, externalID string) domsync.Result {
	customer, err := s.customers.FindByExternalID(ctx, externalID)
	if errors.Is(err, shared.ErrNotFound) {
		return domsync.SkippedResult("no customer linked to deleted task " + externalID)
	}
	if err != nil {
		return domsync.FailedResult(fmt.Errorf("load customer: %w", err))
	}
	if err := s.customers.ClearSyncLink(ctx, customer.ID); err != nil {
		return domsync.FailedResult(fmt.Errorf("clear sync link: %w", err))
	}
	return domsync.SuccessResult(domsync.ActionUnlinked, customer.ID, externalID)
}

// generatedCustomerCode derives a unique customer code from the external
// task ID for inbound creations
func generatedCustomerCode(taskID string) string {
	return "CU-" + strings.ToUpper(taskID)
}
