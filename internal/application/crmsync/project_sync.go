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

// SyncProjectToClickUp pushes one project to the CRM lead list. The CRM
// status is derived from the project stage, the owner becomes the task
// assignee, and the linked account is pushed as a relationship field.
func (s *Service) SyncProjectToClickUp(ctx context.Context, projectID uuid.UUID) domsync.Result {
	result := s.pushProject(ctx, projectID)
	s.record(ctx, domsync.EntityTypeProject, domsync.DirectionERPToClickUp, result)
	return result
}

func (s *Service) pushProject(ctx context.Context, projectID uuid.UUID) domsync.Result {
	project, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return domsync.FailedResult(fmt.Errorf("load project: %w", err))
	}

	listID := s.client.LeadListID()
	status := LeadStatusForStage(project.Stage)
	assigneeID, hasAssignee := s.resolveAssignee(ctx, project.OwnerID)

	var taskID string
	var action domsync.Action

	if project.IsLinked() {
		taskID = *project.ExternalID
		if s.detectConflict(ctx, taskID, project.LastSyncedAt) {
			s.logger.Warn("project push aborted, external task modified since last sync",
				zap.String("project_id", projectID.String()),
				zap.String("task_id", taskID))
			return domsync.ConflictResult(projectID, taskID)
		}
		req := &clickup.UpdateTaskRequest{
			Name:   &project.Name,
			Status: &status,
		}
		if hasAssignee {
			req.Assignees = &clickup.AssigneesPatch{Add: []int64{assigneeID}}
		}
		if _, err := s.client.UpdateTask(ctx, taskID, req); err != nil {
			return domsync.FailedResult(fmt.Errorf("update task: %w", err))
		}
		action = domsync.ActionUpdated
	} else {
		req := &clickup.CreateTaskRequest{
			Name:   project.Name,
			Status: status,
		}
		if hasAssignee {
			req.Assignees = []int64{assigneeID}
		}
		task, err := s.client.CreateTask(ctx, listID, req)
		if err != nil {
			return domsync.FailedResult(fmt.Errorf("create task: %w", err))
		}
		taskID = task.ID
		action = domsync.ActionCreated
	}

	var fields []domsync.FieldPushResult
	fields = s.pushField(ctx, listID, taskID, FieldEstimatedValue, project.EstimatedValue.InexactFloat64(), fields)
	fields = s.pushField(ctx, listID, taskID, FieldSiteAddress, project.SiteAddress, fields)
	if project.TargetDate != nil {
		fields = s.pushField(ctx, listID, taskID, FieldTargetDate, project.TargetDate.UnixMilli(), fields)
	}
	if project.HasCustomer() {
		fields = s.pushAccountRelation(ctx, listID, taskID, *project.CustomerID, fields)
	}

	if err := s.projects.UpdateSyncLink(ctx, projectID, taskID, time.Now()); err != nil {
		return domsync.FailedResult(fmt.Errorf("update sync link: %w", err))
	}

	result := domsync.SuccessResult(action, projectID, taskID)
	result.FieldResults = fields
	return result
}

// SyncTaskToProject applies one CRM lead task locally. Leads without a
// resolvable account are still accepted: an early-stage lead may carry
// nothing but a name. A previously linked customer or owner is never
// cleared by an absent value.
func (s *Service) SyncTaskToProject(ctx context.Context, task *clickup.Task) domsync.Result {
	result := s.applyProjectTask(ctx, task)
	s.record(ctx, domsync.EntityTypeProject, domsync.DirectionClickUpToERP, result)
	return result
}

func (s *Service) applyProjectTask(ctx context.Context, task *clickup.Task) domsync.Result {
	project, err := s.projects.FindByExternalID(ctx, task.ID)
	action := domsync.ActionUpdated
	switch {
	case err == nil:
		if task.Name != "" && task.Name != project.Name {
			if err := project.Update(task.Name); err != nil {
				return domsync.FailedResult(err)
			}
		}
	case errors.Is(err, shared.ErrNotFound):
		project, err = crm.NewProject(generatedProjectNumber(task.ID), task.Name)
		if err != nil {
			return domsync.FailedResult(fmt.Errorf("create project: %w", err))
		}
		action = domsync.ActionCreated
	default:
		return domsync.FailedResult(fmt.Errorf("load project: %w", err))
	}

	if err := project.SetStage(LeadStageFromStatus(task.Status.Status)); err != nil {
		return domsync.FailedResult(err)
	}

	if customerID, present := s.resolveAccountRelation(ctx, task); present && customerID != uuid.Nil {
		if err := project.LinkCustomer(customerID); err != nil {
			return domsync.FailedResult(err)
		}
	}
	if owner := s.resolveOwner(ctx, task.Assignees); owner != nil {
		project.SetOwner(owner)
	}

	if v, err := DecodeCurrency(task.Field(FieldEstimatedValue)); err == nil {
		if err := project.SetEstimatedValue(v); err != nil {
			return domsync.FailedResult(err)
		}
	}
	if v, err := DecodeText(task.Field(FieldSiteAddress)); err == nil {
		if err := project.SetSiteAddress(v); err != nil {
			return domsync.FailedResult(err)
		}
	}
	if v, err := DecodeDate(task.Field(FieldTargetDate)); err == nil {
		project.SetTargetDate(&v)
	}

	if err := s.projects.Save(ctx, project); err != nil {
		return domsync.FailedResult(fmt.Errorf("save project: %w", err))
	}
	if err := s.projects.UpdateSyncLink(ctx, project.ID, task.ID, time.Now()); err != nil {
		return domsync.FailedResult(fmt.Errorf("update sync link: %w", err))
	}
	return domsync.SuccessResult(action, project.ID, task.ID)
}

// UnlinkProject handles an external-side deletion of a lead task
func (s *Service) UnlinkProject(ctx context.Context, externalID string) domsync.Result {
	result := s.unlinkProject(ctx, externalID)
	s.record(ctx, domsync.EntityTypeProject, domsync.DirectionClickUpToERP, result)
	return result
}

func (s *Service) unlinkProject(ctx context.Context, externalID string) domsync.Result {
	project, err := s.projects.FindByExternalID(ctx, externalID)
	if errors.Is(err, shared.ErrNotFound) {
		return domsync.SkippedResult("no project linked to deleted task " + externalID)
	}
	if err != nil {
		return domsync.FailedResult(fmt.Errorf("load project: %w", err))
	}
	if err := s.projects.ClearSyncLink(ctx, project.ID); err != nil {
		return domsync.FailedResult(fmt.Errorf("clear sync link: %w", err))
	}
	return domsync.SuccessResult(domsync.ActionUnlinked, project.ID, externalID)
}

// generatedProjectNumber derives a unique project number from the external
// task ID for inbound creations
func generatedProjectNumber(taskID string) string {
	return "PR-" + strings.ToUpper(taskID)
}
