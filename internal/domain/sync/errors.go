package sync

import "errors"

var (
	// ErrRateLimited indicates the external API rejected the call with a rate
	// limit response
	ErrRateLimited = errors.New("sync: external API rate limited")
	// ErrExternalAPI indicates the external API returned an error response
	ErrExternalAPI = errors.New("sync: external API error")
	// ErrAuthExpired indicates the stored credentials could not be refreshed
	// and reauthorization is required
	ErrAuthExpired = errors.New("sync: authorization expired, reconnect required")
	// ErrConflictDetected indicates the external record changed after the
	// last successful sync and the push was aborted
	ErrConflictDetected = errors.New("sync: external record modified since last sync")
	// ErrMissingRelation indicates an inbound record references a related
	// record that does not exist locally
	ErrMissingRelation = errors.New("sync: related record not found locally")
	// ErrSyncDisabled indicates the integration is disabled by configuration
	ErrSyncDisabled = errors.New("sync: integration disabled")
	// ErrNotLinked indicates the entity has no external identifier
	ErrNotLinked = errors.New("sync: entity not linked to external record")
)
