package crmsync

import (
	"testing"
	"time"

	"github.com/fenestra/backend/internal/domain/crm"
	"github.com/fenestra/backend/internal/infrastructure/clickup"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeText(t *testing.T) {
	t.Run("string value", func(t *testing.T) {
		v, err := DecodeText(&clickup.CustomField{Name: "Email", Value: " a@b.com "})
		require.NoError(t, err)
		assert.Equal(t, "a@b.com", v)
	})

	t.Run("absent field", func(t *testing.T) {
		_, err := DecodeText(nil)
		var de *DecodeError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, KindText, de.Kind)
	})

	t.Run("nil value", func(t *testing.T) {
		_, err := DecodeText(&clickup.CustomField{Name: "Email"})
		assert.Error(t, err)
	})

	t.Run("wrong shape", func(t *testing.T) {
		_, err := DecodeText(&clickup.CustomField{Name: "Email", Value: 42.0})
		var de *DecodeError
		require.ErrorAs(t, err, &de)
		assert.Contains(t, de.Error(), "Email")
	})
}

func TestDecodeDate(t *testing.T) {
	want := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	ms := want.UnixMilli()

	t.Run("string millis", func(t *testing.T) {
		v, err := DecodeDate(&clickup.CustomField{Name: "Target Date", Value: "1773057600000"})
		require.NoError(t, err)
		assert.Equal(t, int64(1773057600000), v.UnixMilli())
	})

	t.Run("numeric millis", func(t *testing.T) {
		v, err := DecodeDate(&clickup.CustomField{Name: "Target Date", Value: float64(ms)})
		require.NoError(t, err)
		assert.True(t, want.Equal(v))
	})

	t.Run("garbage string", func(t *testing.T) {
		_, err := DecodeDate(&clickup.CustomField{Name: "Target Date", Value: "soon"})
		assert.Error(t, err)
	})
}

func TestDecodeCurrency(t *testing.T) {
	t.Run("string value", func(t *testing.T) {
		v, err := DecodeCurrency(&clickup.CustomField{Name: "Estimated Value", Value: "12500.50"})
		require.NoError(t, err)
		assert.True(t, decimal.NewFromFloat(12500.50).Equal(v))
	})

	t.Run("numeric value", func(t *testing.T) {
		v, err := DecodeCurrency(&clickup.CustomField{Name: "Estimated Value", Value: 980.0})
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(980).Equal(v))
	})

	t.Run("malformed string", func(t *testing.T) {
		_, err := DecodeCurrency(&clickup.CustomField{Name: "Estimated Value", Value: "lots"})
		assert.Error(t, err)
	})
}

func TestDecodeDropdown(t *testing.T) {
	field := &clickup.CustomField{
		Name: "Region",
		Conf: map[string]any{
			"options": []any{
				map[string]any{"id": "opt-1", "name": "North", "orderindex": float64(0)},
				map[string]any{"id": "opt-2", "name": "South", "orderindex": float64(1)},
			},
		},
	}

	t.Run("by option id", func(t *testing.T) {
		f := *field
		f.Value = "opt-2"
		v, err := DecodeDropdown(&f)
		require.NoError(t, err)
		assert.Equal(t, "South", v)
	})

	t.Run("by order index", func(t *testing.T) {
		f := *field
		f.Value = float64(0)
		v, err := DecodeDropdown(&f)
		require.NoError(t, err)
		assert.Equal(t, "North", v)
	})

	t.Run("unknown string passes through", func(t *testing.T) {
		f := *field
		f.Value = "Central"
		v, err := DecodeDropdown(&f)
		require.NoError(t, err)
		assert.Equal(t, "Central", v)
	})

	t.Run("unknown index fails", func(t *testing.T) {
		f := *field
		f.Value = float64(9)
		_, err := DecodeDropdown(&f)
		assert.Error(t, err)
	})
}

func TestDecodeRelationship(t *testing.T) {
	t.Run("linked tasks", func(t *testing.T) {
		f := &clickup.CustomField{
			Name: "Account",
			Value: []any{
				map[string]any{"id": "task_a", "name": "Acme"},
				map[string]any{"id": "task_b"},
			},
		}
		ids, err := DecodeRelationship(f)
		require.NoError(t, err)
		assert.Equal(t, []string{"task_a", "task_b"}, ids)
	})

	t.Run("empty list", func(t *testing.T) {
		ids, err := DecodeRelationship(&clickup.CustomField{Name: "Account", Value: []any{}})
		require.NoError(t, err)
		assert.Empty(t, ids)
	})

	t.Run("wrong shape", func(t *testing.T) {
		_, err := DecodeRelationship(&clickup.CustomField{Name: "Account", Value: "task_a"})
		assert.Error(t, err)
	})
}

func TestDecodeUsers(t *testing.T) {
	f := &clickup.CustomField{
		Name: "Owner",
		Value: []any{
			map[string]any{"id": float64(81234), "username": "sam"},
		},
	}
	ids, err := DecodeUsers(f)
	require.NoError(t, err)
	assert.Equal(t, []int64{81234}, ids)
}

func TestDecodeLabels(t *testing.T) {
	f := &clickup.CustomField{
		Name: "Tags",
		Value: []any{
			"glass",
			map[string]any{"label": "commercial"},
		},
	}
	labels, err := DecodeLabels(f)
	require.NoError(t, err)
	assert.Equal(t, []string{"glass", "commercial"}, labels)
}

func TestLeadStageMapping(t *testing.T) {
	t.Run("known statuses", func(t *testing.T) {
		assert.Equal(t, crm.ProjectStageQuoting, LeadStageFromStatus("Quoting"))
		assert.Equal(t, crm.ProjectStageQuoted, LeadStageFromStatus("QUOTE SENT"))
		assert.Equal(t, crm.ProjectStageWon, LeadStageFromStatus("  won  "))
		assert.Equal(t, crm.ProjectStageOnHold, LeadStageFromStatus("on hold"))
	})

	t.Run("unknown status falls back to new", func(t *testing.T) {
		assert.Equal(t, crm.ProjectStageNew, LeadStageFromStatus("bogus-status"))
		assert.Equal(t, crm.ProjectStageNew, LeadStageFromStatus(""))
	})

	t.Run("every stage round-trips", func(t *testing.T) {
		stages := []crm.ProjectStage{
			crm.ProjectStageNew, crm.ProjectStageQuoting, crm.ProjectStageQuoted,
			crm.ProjectStageWon, crm.ProjectStageLost, crm.ProjectStageOnHold,
		}
		for _, stage := range stages {
			assert.Equal(t, stage, LeadStageFromStatus(LeadStatusForStage(stage)))
		}
	})
}

func TestCustomerStatusMapping(t *testing.T) {
	t.Run("known statuses", func(t *testing.T) {
		assert.Equal(t, crm.CustomerStatusActive, CustomerStatusFromStatus("Active"))
		assert.Equal(t, crm.CustomerStatusInactive, CustomerStatusFromStatus("inactive"))
	})

	t.Run("unknown status falls back to prospect", func(t *testing.T) {
		assert.Equal(t, crm.CustomerStatusProspect, CustomerStatusFromStatus("bogus-status"))
		assert.Equal(t, crm.CustomerStatusProspect, CustomerStatusFromStatus(""))
	})

	t.Run("every status round-trips", func(t *testing.T) {
		statuses := []crm.CustomerStatus{
			crm.CustomerStatusActive, crm.CustomerStatusProspect, crm.CustomerStatusInactive,
		}
		for _, status := range statuses {
			assert.Equal(t, status, CustomerStatusFromStatus(CustomerStatusForStatus(status)))
		}
	})
}

func TestParseFullName(t *testing.T) {
	tests := []struct {
		full  string
		first string
		last  string
	}{
		{"Jane Doe", "Jane", "Doe"},
		{"Jane Mary Doe", "Jane", "Mary Doe"},
		{"Cher", "Cher", ""},
		{"  Jane   Doe  ", "Jane", "Doe"},
		{"", "", ""},
	}
	for _, tt := range tests {
		first, last := ParseFullName(tt.full)
		assert.Equal(t, tt.first, first, tt.full)
		assert.Equal(t, tt.last, last, tt.full)
	}
}

func TestCombineNames(t *testing.T) {
	assert.Equal(t, "Jane Doe", CombineNames("Jane", "Doe"))
	assert.Equal(t, "Jane", CombineNames("Jane", ""))
	assert.Equal(t, "Doe", CombineNames("", "Doe"))
	assert.Equal(t, "", CombineNames("", ""))
}

func TestNameRoundTrip(t *testing.T) {
	first, last := ParseFullName("Jane Mary Doe")
	assert.Equal(t, "Jane Mary Doe", CombineNames(first, last))
}
