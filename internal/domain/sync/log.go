package sync

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// LogEntry is one immutable record of a sync attempt. Entries are only ever
// appended; there is no update or delete path.
type LogEntry struct {
	ID         uuid.UUID  `json:"id" gorm:"type:varchar(36);primaryKey"`
	EntityType EntityType `json:"entity_type" gorm:"type:varchar(32);index:idx_sync_log_entity"`
	EntityID   *uuid.UUID `json:"entity_id,omitempty" gorm:"type:varchar(36);index:idx_sync_log_entity"`
	ExternalID string     `json:"external_id,omitempty" gorm:"type:varchar(64);index"`
	Direction  Direction  `json:"direction" gorm:"type:varchar(32)"`
	Outcome    Outcome    `json:"outcome" gorm:"type:varchar(16);index"`
	Action     Action     `json:"action" gorm:"type:varchar(16)"`
	Message    string     `json:"message,omitempty" gorm:"type:text"`
	// FieldErrors summarizes best-effort field pushes that failed, one
	// "field: error" line per field
	FieldErrors string    `json:"field_errors,omitempty" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at" gorm:"index"`
}

// TableName returns the table name for GORM
func (LogEntry) TableName() string {
	return "sync_log"
}

// NewLogEntry builds a log entry from a sync Result
func NewLogEntry(entityType EntityType, direction Direction, result Result) *LogEntry {
	entry := &LogEntry{
		ID:         uuid.New(),
		EntityType: entityType,
		EntityID:   result.EntityID,
		ExternalID: result.ExternalID,
		Direction:  direction,
		Outcome:    result.Outcome,
		Action:     result.Action,
		Message:    result.Error,
		CreatedAt:  time.Now(),
	}
	for _, fr := range result.FailedFields() {
		if entry.FieldErrors != "" {
			entry.FieldErrors += "\n"
		}
		entry.FieldErrors += fr.Field + ": " + fr.Error
	}
	return entry
}

// LogRepository is the append-only persistence interface for sync log entries
type LogRepository interface {
	// Append stores a new entry. Existing entries are never modified.
	Append(ctx context.Context, entry *LogEntry) error
	// FindRecentForEntity returns the newest entries for one local entity,
	// newest first
	FindRecentForEntity(ctx context.Context, entityType EntityType, entityID uuid.UUID, limit int) ([]*LogEntry, error)
	// FindFailed returns entries with failed or conflict outcomes since the
	// given time, newest first
	FindFailed(ctx context.Context, since time.Time, limit int) ([]*LogEntry, error)
	// FindRecent returns the newest entries regardless of entity, newest first
	FindRecent(ctx context.Context, limit int) ([]*LogEntry, error)
	// CountByOutcome returns entry counts per outcome since the given time
	CountByOutcome(ctx context.Context, since time.Time) (map[Outcome]int64, error)
}
