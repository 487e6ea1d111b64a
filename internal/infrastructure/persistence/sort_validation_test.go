package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSortOrder(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"asc lowercase", "asc", "ASC"},
		{"ASC uppercase", "ASC", "ASC"},
		{"asc with spaces", "  asc  ", "ASC"},
		{"desc lowercase", "desc", "DESC"},
		{"empty defaults to DESC", "", "DESC"},
		{"garbage defaults to DESC", "ASC; DROP TABLE customers", "DESC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidateSortOrder(tt.input))
		})
	}
}

func TestValidateSortField(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		allowed  map[string]bool
		expected string
	}{
		{"allowed field passes", "name", CustomerSortFields, "name"},
		{"unknown field falls back", "secret_column", CustomerSortFields, "created_at"},
		{"empty falls back", "", CustomerSortFields, "created_at"},
		{"injection attempt falls back", "name; DELETE FROM projects", ProjectSortFields, "created_at"},
		{"contact field passes", "last_name", ContactSortFields, "last_name"},
		{"project field passes", "estimated_value", ProjectSortFields, "estimated_value"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidateSortField(tt.input, tt.allowed, "created_at"))
		})
	}
}
