package persistence

import (
	"strings"
)

// sortFields builds the allow list a repository checks OrderBy values
// against before they are spliced into an ORDER BY clause.
func sortFields(names ...string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, name := range names {
		m[name] = true
	}
	return m
}

// ValidateSortOrder normalizes a client supplied direction, falling back to
// DESC for anything that is not ASC.
func ValidateSortOrder(orderDir string) string {
	if strings.EqualFold(strings.TrimSpace(orderDir), "asc") {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField returns sortField only when the allow list contains it,
// otherwise defaultField.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	if trimmed := strings.TrimSpace(sortField); allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// CustomerSortFields lists the sortable customer columns.
var CustomerSortFields = sortFields(
	"id", "created_at", "updated_at",
	"code", "name", "contact_name", "status", "last_synced_at",
)

// ContactSortFields lists the sortable contact columns.
var ContactSortFields = sortFields(
	"id", "created_at", "updated_at",
	"first_name", "last_name", "email", "title", "customer_id", "last_synced_at",
)

// ProjectSortFields lists the sortable project columns.
var ProjectSortFields = sortFields(
	"id", "created_at", "updated_at",
	"number", "name", "stage", "customer_id", "estimated_value", "target_date", "last_synced_at",
)
