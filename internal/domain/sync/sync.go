package sync

import (
	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// Sync vocabulary
// ---------------------------------------------------------------------------

// Direction represents which way a sync attempt moved data
type Direction string

const (
	// DirectionERPToClickUp indicates a local record was pushed to the CRM
	DirectionERPToClickUp Direction = "erp_to_clickup"
	// DirectionClickUpToERP indicates a CRM task was applied locally
	DirectionClickUpToERP Direction = "clickup_to_erp"
	// DirectionERPToQuickBooks indicates a local record was pushed to accounting
	DirectionERPToQuickBooks Direction = "erp_to_quickbooks"
	// DirectionQuickBooksToERP indicates an accounting record was applied locally
	DirectionQuickBooksToERP Direction = "quickbooks_to_erp"
)

// IsValid returns true if the direction is a known value
func (d Direction) IsValid() bool {
	switch d {
	case DirectionERPToClickUp, DirectionClickUpToERP,
		DirectionERPToQuickBooks, DirectionQuickBooksToERP:
		return true
	default:
		return false
	}
}

// String returns the string representation of Direction
func (d Direction) String() string {
	return string(d)
}

// Outcome represents the result classification of a sync attempt
type Outcome string

const (
	// OutcomeSuccess indicates the attempt completed
	OutcomeSuccess Outcome = "success"
	// OutcomeFailed indicates the attempt was made and failed
	OutcomeFailed Outcome = "failed"
	// OutcomeConflict indicates the attempt was deliberately not made because
	// the external record was modified after the last successful sync
	OutcomeConflict Outcome = "conflict"
	// OutcomeSkipped indicates the attempt was not applicable (e.g. a
	// required relation could not be resolved)
	OutcomeSkipped Outcome = "skipped"
)

// IsValid returns true if the outcome is a known value
func (o Outcome) IsValid() bool {
	switch o {
	case OutcomeSuccess, OutcomeFailed, OutcomeConflict, OutcomeSkipped:
		return true
	default:
		return false
	}
}

// String returns the string representation of Outcome
func (o Outcome) String() string {
	return string(o)
}

// Action describes what a successful sync attempt did to its target
type Action string

const (
	ActionCreated  Action = "created"
	ActionUpdated  Action = "updated"
	ActionDeleted  Action = "deleted"
	ActionUnlinked Action = "unlinked"
	ActionSkipped  Action = "skipped"
	ActionNone     Action = "none"
)

// String returns the string representation of Action
func (a Action) String() string {
	return string(a)
}

// EntityType identifies the kind of business record being synced
type EntityType string

const (
	EntityTypeCustomer      EntityType = "customer"
	EntityTypeContact       EntityType = "contact"
	EntityTypeProject       EntityType = "project"
	EntityTypeInvoice       EntityType = "invoice"
	EntityTypePurchaseOrder EntityType = "purchase_order"
	EntityTypeVendor        EntityType = "vendor"
	EntityTypeItem          EntityType = "item"
	EntityTypeEstimate      EntityType = "estimate"
)

// IsValid returns true if the entity type is a known value
func (t EntityType) IsValid() bool {
	switch t {
	case EntityTypeCustomer, EntityTypeContact, EntityTypeProject,
		EntityTypeInvoice, EntityTypePurchaseOrder, EntityTypeVendor,
		EntityTypeItem, EntityTypeEstimate:
		return true
	default:
		return false
	}
}

// String returns the string representation of EntityType
func (t EntityType) String() string {
	return string(t)
}

// ---------------------------------------------------------------------------
// Results
// ---------------------------------------------------------------------------

// FieldPushResult records the outcome of one best-effort custom-field write
// during an outbound sync. A failed field push does not fail the sync.
type FieldPushResult struct {
	Field string `json:"field"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// Result represents the outcome of one entity sync attempt. Sync functions
// return a Result instead of raising: every failure is captured here and in
// the sync log.
type Result struct {
	// Success indicates the attempt completed without a fatal error
	Success bool
	// Outcome classifies the attempt for the audit log
	Outcome Outcome
	// Action describes what was done on success
	Action Action
	// EntityID is the local entity touched, when known
	EntityID *uuid.UUID
	// ExternalID is the external record touched, when known
	ExternalID string
	// Error carries the failure message when Success is false
	Error string
	// FieldResults carries per-field outcomes of best-effort custom-field
	// pushes (outbound only)
	FieldResults []FieldPushResult
}

// FailedFields returns the subset of field results that did not succeed
func (r *Result) FailedFields() []FieldPushResult {
	var failed []FieldPushResult
	for _, fr := range r.FieldResults {
		if !fr.OK {
			failed = append(failed, fr)
		}
	}
	return failed
}

// SuccessResult builds a success Result for the given action
func SuccessResult(action Action, entityID uuid.UUID, externalID string) Result {
	return Result{
		Success:    true,
		Outcome:    OutcomeSuccess,
		Action:     action,
		EntityID:   &entityID,
		ExternalID: externalID,
	}
}

// FailedResult builds a failed Result carrying the error message
func FailedResult(err error) Result {
	r := Result{
		Success: false,
		Outcome: OutcomeFailed,
		Action:  ActionNone,
	}
	if err != nil {
		r.Error = err.Error()
	}
	return r
}

// SkippedResult builds a skipped Result carrying the reason
func SkippedResult(reason string) Result {
	return Result{
		Success: false,
		Outcome: OutcomeSkipped,
		Action:  ActionSkipped,
		Error:   reason,
	}
}

// ConflictResult builds a conflict Result for the given entity
func ConflictResult(entityID uuid.UUID, externalID string) Result {
	return Result{
		Success:    false,
		Outcome:    OutcomeConflict,
		Action:     ActionNone,
		EntityID:   &entityID,
		ExternalID: externalID,
	}
}
