package crmsync

import (
	"context"
	"fmt"

	domsync "github.com/fenestra/backend/internal/domain/sync"
	"go.uber.org/zap"
)

// PullTask fetches a task and applies it to whichever entity its list
// maps to. This is the inbound path behind webhook task events.
func (s *Service) PullTask(ctx context.Context, taskID string) domsync.Result {
	task, err := s.client.GetTask(ctx, taskID)
	if err != nil {
		// The task could not even be fetched, so its list is unknown.
		// Recorded against the customer type rather than inventing an
		// "unknown" entity type.
		result := domsync.FailedResult(fmt.Errorf("fetch task %s: %w", taskID, err))
		result.ExternalID = taskID
		s.record(ctx, domsync.EntityTypeCustomer, domsync.DirectionClickUpToERP, result)
		return result
	}

	switch task.List.ID {
	case s.client.CustomerListID():
		return s.SyncTaskToCustomer(ctx, task)
	case s.client.ContactListID():
		return s.SyncTaskToContact(ctx, task)
	case s.client.LeadListID():
		return s.SyncTaskToProject(ctx, task)
	default:
		s.logger.Debug("ignoring task from unmapped list",
			zap.String("task_id", taskID),
			zap.String("list_id", task.List.ID))
		return domsync.SkippedResult("task " + taskID + " belongs to an unmapped list")
	}
}

// HandleTaskDeleted reacts to an external task deletion. The deleted task
// cannot be fetched, so the linked entity is located by trying each entity
// type. Local data always survives an external deletion; only the link is
// cleared.
func (s *Service) HandleTaskDeleted(ctx context.Context, taskID string) domsync.Result {
	if _, err := s.customers.FindByExternalID(ctx, taskID); err == nil {
		return s.UnlinkCustomer(ctx, taskID)
	}
	if _, err := s.contacts.FindByExternalID(ctx, taskID); err == nil {
		return s.UnlinkContact(ctx, taskID)
	}
	if _, err := s.projects.FindByExternalID(ctx, taskID); err == nil {
		return s.UnlinkProject(ctx, taskID)
	}
	s.logger.Debug("deleted task was not linked to any local entity",
		zap.String("task_id", taskID))
	return domsync.SkippedResult("deleted task " + taskID + " was not linked")
}

// RequestTaskPull queues an inbound pull for one task
func (t *Trigger) RequestTaskPull(taskID string) {
	if taskID == "" || !t.service.Enabled() {
		return
	}
	t.dispatcher.enqueue(job{
		name:       "pull task " + taskID,
		entityType: domsync.EntityTypeCustomer,
		run: func(ctx context.Context) domsync.Result {
			return t.service.PullTask(ctx, taskID)
		},
	})
}

// RequestTaskUnlink queues the unlink reaction to an external deletion
func (t *Trigger) RequestTaskUnlink(taskID string) {
	if taskID == "" || !t.service.Enabled() {
		return
	}
	t.dispatcher.enqueue(job{
		name:       "unlink task " + taskID,
		entityType: domsync.EntityTypeCustomer,
		run: func(ctx context.Context) domsync.Result {
			return t.service.HandleTaskDeleted(ctx, taskID)
		},
	})
}
