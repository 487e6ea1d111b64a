package persistence

import (
	"context"
	"time"

	domsync "github.com/fenestra/backend/internal/domain/sync"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const defaultLogLimit = 50

// GormSyncLogRepository implements the append-only sync log using GORM.
// Entries are created with Create, never Save, so an existing row can
// never be overwritten by accident.
type GormSyncLogRepository struct {
	db *gorm.DB
}

// NewGormSyncLogRepository creates a new GormSyncLogRepository
func NewGormSyncLogRepository(db *gorm.DB) *GormSyncLogRepository {
	return &GormSyncLogRepository{db: db}
}

// Append stores a new entry
func (r *GormSyncLogRepository) Append(ctx context.Context, entry *domsync.LogEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// FindRecentForEntity returns the newest entries for one local entity, newest first
func (r *GormSyncLogRepository) FindRecentForEntity(ctx context.Context, entityType domsync.EntityType, entityID uuid.UUID, limit int) ([]*domsync.LogEntry, error) {
	if limit <= 0 {
		limit = defaultLogLimit
	}
	var entries []*domsync.LogEntry
	if err := r.db.WithContext(ctx).
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// FindFailed returns entries with failed or conflict outcomes since the given
// time, newest first
func (r *GormSyncLogRepository) FindFailed(ctx context.Context, since time.Time, limit int) ([]*domsync.LogEntry, error) {
	if limit <= 0 {
		limit = defaultLogLimit
	}
	var entries []*domsync.LogEntry
	if err := r.db.WithContext(ctx).
		Where("outcome IN ? AND created_at >= ?", []domsync.Outcome{domsync.OutcomeFailed, domsync.OutcomeConflict}, since).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// FindRecent returns the newest entries regardless of entity, newest first
func (r *GormSyncLogRepository) FindRecent(ctx context.Context, limit int) ([]*domsync.LogEntry, error) {
	if limit <= 0 {
		limit = defaultLogLimit
	}
	var entries []*domsync.LogEntry
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// CountByOutcome returns entry counts per outcome since the given time
func (r *GormSyncLogRepository) CountByOutcome(ctx context.Context, since time.Time) (map[domsync.Outcome]int64, error) {
	type outcomeCount struct {
		Outcome domsync.Outcome
		Count   int64
	}
	var rows []outcomeCount
	if err := r.db.WithContext(ctx).
		Model(&domsync.LogEntry{}).
		Select("outcome, COUNT(*) AS count").
		Where("created_at >= ?", since).
		Group("outcome").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[domsync.Outcome]int64, len(rows))
	for _, row := range rows {
		counts[row.Outcome] = row.Count
	}
	return counts, nil
}

// Ensure GormSyncLogRepository implements LogRepository
var _ domsync.LogRepository = (*GormSyncLogRepository)(nil)
