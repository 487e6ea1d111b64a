package crmsync

import (
	"context"
	"time"

	domsync "github.com/fenestra/backend/internal/domain/sync"
	"github.com/google/uuid"
)

// LogService exposes read-only views over the sync log for the HTTP
// interface
type LogService struct {
	logs domsync.LogRepository
}

// NewLogService creates a log read service
func NewLogService(logs domsync.LogRepository) *LogService {
	return &LogService{logs: logs}
}

// EntityHistory returns the newest sync attempts for one local entity
func (s *LogService) EntityHistory(ctx context.Context, entityType domsync.EntityType, entityID uuid.UUID, limit int) ([]*domsync.LogEntry, error) {
	return s.logs.FindRecentForEntity(ctx, entityType, entityID, limit)
}

// RecentFailures returns failed and conflicted attempts since the given
// time, newest first
func (s *LogService) RecentFailures(ctx context.Context, since time.Time, limit int) ([]*domsync.LogEntry, error) {
	return s.logs.FindFailed(ctx, since, limit)
}

// Recent returns the newest attempts across all entities
func (s *LogService) Recent(ctx context.Context, limit int) ([]*domsync.LogEntry, error) {
	return s.logs.FindRecent(ctx, limit)
}

// Summary aggregates attempt counts per outcome since the given time
func (s *LogService) Summary(ctx context.Context, since time.Time) (map[domsync.Outcome]int64, error) {
	return s.logs.CountByOutcome(ctx, since)
}
