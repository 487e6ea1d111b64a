package crmsync

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/fenestra/backend/internal/domain/crm"
	domsync "github.com/fenestra/backend/internal/domain/sync"
	"github.com/fenestra/backend/internal/infrastructure/clickup"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CRMClient is the slice of the ClickUp client the sync engine uses.
// Narrowed to an interface so entity sync can be tested against a fake.
type CRMClient interface {
	IsEnabled() bool
	CustomerListID() string
	ContactListID() string
	LeadListID() string
	GetTask(ctx context.Context, taskID string) (*clickup.Task, error)
	CreateTask(ctx context.Context, listID string, req *clickup.CreateTaskRequest) (*clickup.Task, error)
	UpdateTask(ctx context.Context, taskID string, req *clickup.UpdateTaskRequest) (*clickup.Task, error)
	DeleteTask(ctx context.Context, taskID string) error
	SetCustomField(ctx context.Context, taskID, fieldID string, value any) error
}

var _ CRMClient = (*clickup.Client)(nil)

// Service synchronizes customers, contacts and projects with the external
// CRM in both directions. All sync paths converge here: every attempt,
// whatever its outcome, produces exactly one sync log entry.
type Service struct {
	customers crm.CustomerRepository
	contacts  crm.ContactRepository
	projects  crm.ProjectRepository
	users     crm.UserMappingRepository
	logs      domsync.LogRepository
	client    CRMClient
	fields    clickup.FieldResolver

	// conflictBuffer is subtracted from the external modification time
	// before comparing against LastSyncedAt, absorbing clock skew and the
	// write that the last sync itself caused.
	conflictBuffer time.Duration

	logger *zap.Logger
}

// NewService wires the sync engine
func NewService(
	customers crm.CustomerRepository,
	contacts crm.ContactRepository,
	projects crm.ProjectRepository,
	users crm.UserMappingRepository,
	logs domsync.LogRepository,
	client CRMClient,
	fields clickup.FieldResolver,
	conflictBuffer time.Duration,
	logger *zap.Logger,
) *Service {
	if conflictBuffer <= 0 {
		conflictBuffer = 5 * time.Second
	}
	return &Service{
		customers:      customers,
		contacts:       contacts,
		projects:       projects,
		users:          users,
		logs:           logs,
		client:         client,
		fields:         fields,
		conflictBuffer: conflictBuffer,
		logger:         logger,
	}
}

// Enabled reports whether the CRM integration is turned on
func (s *Service) Enabled() bool {
	return s.client.IsEnabled()
}

// record appends one log entry for a completed attempt. A log write failure
// must never fail the sync it describes, so it is only logged.
func (s *Service) record(ctx context.Context, entityType domsync.EntityType, direction domsync.Direction, result domsync.Result) {
	entry := domsync.NewLogEntry(entityType, direction, result)
	if err := s.logs.Append(ctx, entry); err != nil {
		s.logger.Error("failed to append sync log entry",
			zap.String("entity_type", entityType.String()),
			zap.String("direction", direction.String()),
			zap.String("outcome", result.Outcome.String()),
			zap.Error(err))
	}
}

// detectConflict decides whether an outbound push for a linked entity must
// be aborted. The external task is fetched and its modification time
// compared against the entity's last successful sync:
//
//   - never synced: push without fetching
//   - external change within the buffer: push (it is the echo of our own
//     last write, or close enough to tolerate)
//   - external change after the buffer: conflict, the push is not made
//   - fetch failure: push optimistically, the write itself will surface a
//     real outage
func (s *Service) detectConflict(ctx context.Context, externalID string, lastSyncedAt *time.Time) bool {
	if lastSyncedAt == nil {
		return false
	}
	task, err := s.client.GetTask(ctx, externalID)
	if err != nil {
		s.logger.Debug("conflict pre-check fetch failed, pushing optimistically",
			zap.String("external_id", externalID),
			zap.Error(err))
		return false
	}
	return task.UpdatedAt().After(lastSyncedAt.Add(s.conflictBuffer))
}

// pushField writes one custom field best-effort and appends its outcome.
// Field resolution and the write itself can each fail without failing the
// surrounding sync.
func (s *Service) pushField(ctx context.Context, listID, taskID, name string, value any, results []domsync.FieldPushResult) []domsync.FieldPushResult {
	fieldID, err := s.fields.FieldID(ctx, listID, name)
	if err == nil {
		err = s.client.SetCustomField(ctx, taskID, fieldID, value)
	}
	if err != nil {
		s.logger.Warn("custom field push failed",
			zap.String("task_id", taskID),
			zap.String("field", name),
			zap.Error(err))
		return append(results, domsync.FieldPushResult{Field: name, OK: false, Error: err.Error()})
	}
	return append(results, domsync.FieldPushResult{Field: name, OK: true})
}

// resolveOwner translates a ClickUp assignee list to a local user ID using
// the first assignee that has a mapping
func (s *Service) resolveOwner(ctx context.Context, assignees []clickup.TaskUser) *uuid.UUID {
	for _, a := range assignees {
		mapping, err := s.users.FindByExternalUserID(ctx, formatExternalUserID(a.ID))
		if err != nil {
			continue
		}
		return &mapping.UserID
	}
	return nil
}

// resolveAssignee translates a local owner to a ClickUp user ID
func (s *Service) resolveAssignee(ctx context.Context, ownerID *uuid.UUID) (int64, bool) {
	if ownerID == nil {
		return 0, false
	}
	mapping, err := s.users.FindByUserID(ctx, *ownerID)
	if err != nil {
		return 0, false
	}
	return parseExternalUserID(mapping.ExternalUserID)
}

// ClickUp user IDs are numeric but stored as strings in the mapping table

func formatExternalUserID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func parseExternalUserID(id string) (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
