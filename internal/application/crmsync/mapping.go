package crmsync

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fenestra/backend/internal/domain/crm"
	"github.com/fenestra/backend/internal/infrastructure/clickup"
	"github.com/shopspring/decimal"
)

// FieldKind classifies the shape of a ClickUp custom field value. The set is
// closed: every mapped field belongs to exactly one kind and is decoded by
// that kind's decoder.
type FieldKind string

const (
	KindText         FieldKind = "text"
	KindPhone        FieldKind = "phone"
	KindDate         FieldKind = "date"
	KindCurrency     FieldKind = "currency"
	KindDropdown     FieldKind = "dropdown"
	KindLabels       FieldKind = "labels"
	KindRelationship FieldKind = "relationship"
	KindUsers        FieldKind = "users"
)

// DecodeError reports a custom field value that was absent or did not match
// its kind's expected shape. Decoders return it instead of guessing; sync
// call sites decide whether to treat it as "no value" (they do).
type DecodeError struct {
	Field  string
	Kind   FieldKind
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("crmsync: field %q (%s): %s", e.Field, e.Kind, e.Reason)
}

func errAbsent(name string, kind FieldKind) *DecodeError {
	return &DecodeError{Field: name, Kind: kind, Reason: "value absent"}
}

func errMalformed(name string, kind FieldKind, got any) *DecodeError {
	return &DecodeError{Field: name, Kind: kind, Reason: fmt.Sprintf("unexpected shape %T", got)}
}

// ---------------------------------------------------------------------------
// Field decoders
// ---------------------------------------------------------------------------

// DecodeText extracts a plain string value
func DecodeText(f *clickup.CustomField) (string, error) {
	if f == nil || f.Value == nil {
		return "", errAbsent(fieldName(f), KindText)
	}
	s, ok := f.Value.(string)
	if !ok {
		return "", errMalformed(f.Name, KindText, f.Value)
	}
	return strings.TrimSpace(s), nil
}

// DecodePhone extracts a phone number string
func DecodePhone(f *clickup.CustomField) (string, error) {
	if f == nil || f.Value == nil {
		return "", errAbsent(fieldName(f), KindPhone)
	}
	s, ok := f.Value.(string)
	if !ok {
		return "", errMalformed(f.Name, KindPhone, f.Value)
	}
	return strings.TrimSpace(s), nil
}

// DecodeDate extracts a date value. ClickUp serializes dates as Unix
// milliseconds, either as a string or a number.
func DecodeDate(f *clickup.CustomField) (time.Time, error) {
	if f == nil || f.Value == nil {
		return time.Time{}, errAbsent(fieldName(f), KindDate)
	}
	switch v := f.Value.(type) {
	case string:
		ms, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return time.Time{}, errMalformed(f.Name, KindDate, f.Value)
		}
		return time.UnixMilli(ms), nil
	case float64:
		return time.UnixMilli(int64(v)), nil
	default:
		return time.Time{}, errMalformed(f.Name, KindDate, f.Value)
	}
}

// DecodeCurrency extracts a monetary value
func DecodeCurrency(f *clickup.CustomField) (decimal.Decimal, error) {
	if f == nil || f.Value == nil {
		return decimal.Zero, errAbsent(fieldName(f), KindCurrency)
	}
	switch v := f.Value.(type) {
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(v))
		if err != nil {
			return decimal.Zero, errMalformed(f.Name, KindCurrency, f.Value)
		}
		return d, nil
	case float64:
		return decimal.NewFromFloat(v), nil
	default:
		return decimal.Zero, errMalformed(f.Name, KindCurrency, f.Value)
	}
}

// DecodeDropdown extracts the selected option's name. The value is either
// the option's order index (number) or its ID (string); the field's
// type_config carries the option list.
func DecodeDropdown(f *clickup.CustomField) (string, error) {
	if f == nil || f.Value == nil {
		return "", errAbsent(fieldName(f), KindDropdown)
	}
	options := dropdownOptions(f)
	switch v := f.Value.(type) {
	case string:
		for _, opt := range options {
			if opt.id == v || opt.name == v {
				return opt.name, nil
			}
		}
		return v, nil
	case float64:
		idx := int(v)
		for _, opt := range options {
			if opt.orderindex == idx {
				return opt.name, nil
			}
		}
		return "", errMalformed(f.Name, KindDropdown, f.Value)
	default:
		return "", errMalformed(f.Name, KindDropdown, f.Value)
	}
}

// DecodeLabels extracts the selected label names
func DecodeLabels(f *clickup.CustomField) ([]string, error) {
	if f == nil || f.Value == nil {
		return nil, errAbsent(fieldName(f), KindLabels)
	}
	raw, ok := f.Value.([]any)
	if !ok {
		return nil, errMalformed(f.Name, KindLabels, f.Value)
	}
	labels := make([]string, 0, len(raw))
	for _, item := range raw {
		switch v := item.(type) {
		case string:
			labels = append(labels, v)
		case map[string]any:
			if name, ok := v["label"].(string); ok {
				labels = append(labels, name)
			}
		}
	}
	return labels, nil
}

// DecodeRelationship extracts the linked task IDs of a relationship field
func DecodeRelationship(f *clickup.CustomField) ([]string, error) {
	if f == nil || f.Value == nil {
		return nil, errAbsent(fieldName(f), KindRelationship)
	}
	raw, ok := f.Value.([]any)
	if !ok {
		return nil, errMalformed(f.Name, KindRelationship, f.Value)
	}
	ids := make([]string, 0, len(raw))
	for _, item := range raw {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if id, ok := entry["id"].(string); ok && id != "" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// DecodeUsers extracts the external user IDs of a users field
func DecodeUsers(f *clickup.CustomField) ([]int64, error) {
	if f == nil || f.Value == nil {
		return nil, errAbsent(fieldName(f), KindUsers)
	}
	raw, ok := f.Value.([]any)
	if !ok {
		return nil, errMalformed(f.Name, KindUsers, f.Value)
	}
	ids := make([]int64, 0, len(raw))
	for _, item := range raw {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if id, ok := entry["id"].(float64); ok {
			ids = append(ids, int64(id))
		}
	}
	return ids, nil
}

func fieldName(f *clickup.CustomField) string {
	if f == nil {
		return ""
	}
	return f.Name
}

type dropdownOption struct {
	id         string
	name       string
	orderindex int
}

func dropdownOptions(f *clickup.CustomField) []dropdownOption {
	raw, ok := f.Conf["options"].([]any)
	if !ok {
		return nil
	}
	options := make([]dropdownOption, 0, len(raw))
	for _, item := range raw {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		opt := dropdownOption{orderindex: -1}
		if id, ok := entry["id"].(string); ok {
			opt.id = id
		}
		if name, ok := entry["name"].(string); ok {
			opt.name = name
		}
		if idx, ok := entry["orderindex"].(float64); ok {
			opt.orderindex = int(idx)
		}
		options = append(options, opt)
	}
	return options
}

// ---------------------------------------------------------------------------
// Field mapping tables
// ---------------------------------------------------------------------------

// Custom field labels as configured on the ClickUp lists. The tables below
// are defined once at init and never mutated.
const (
	FieldPhone          = "Phone"
	FieldEmail          = "Email"
	FieldContactName    = "Contact Name"
	FieldAddress        = "Address"
	FieldTitle          = "Title"
	FieldAccount        = "Account"
	FieldEstimatedValue = "Estimated Value"
	FieldSiteAddress    = "Site Address"
	FieldTargetDate     = "Target Date"
)

// CustomerFieldKinds maps custom field labels on the customer list to kinds
var CustomerFieldKinds = map[string]FieldKind{
	FieldPhone:       KindPhone,
	FieldEmail:       KindText,
	FieldContactName: KindText,
	FieldAddress:     KindText,
}

// ContactFieldKinds maps custom field labels on the contact list to kinds
var ContactFieldKinds = map[string]FieldKind{
	FieldPhone:   KindPhone,
	FieldEmail:   KindText,
	FieldTitle:   KindText,
	FieldAccount: KindRelationship,
}

// LeadFieldKinds maps custom field labels on the lead list to kinds
var LeadFieldKinds = map[string]FieldKind{
	FieldAccount:        KindRelationship,
	FieldEstimatedValue: KindCurrency,
	FieldSiteAddress:    KindText,
	FieldTargetDate:     KindDate,
}

// ---------------------------------------------------------------------------
// Status mapping
// ---------------------------------------------------------------------------

// ClickUp status strings for the lead list
const (
	clickupLeadNew       = "new lead"
	clickupLeadQuoting   = "quoting"
	clickupLeadQuoteSent = "quote sent"
	clickupLeadWon       = "won"
	clickupLeadLost      = "lost"
	clickupLeadOnHold    = "on hold"
)

var leadStageFromClickUp = map[string]crm.ProjectStage{
	clickupLeadNew:       crm.ProjectStageNew,
	clickupLeadQuoting:   crm.ProjectStageQuoting,
	clickupLeadQuoteSent: crm.ProjectStageQuoted,
	clickupLeadWon:       crm.ProjectStageWon,
	clickupLeadLost:      crm.ProjectStageLost,
	clickupLeadOnHold:    crm.ProjectStageOnHold,
}

var leadStageToClickUp = map[crm.ProjectStage]string{
	crm.ProjectStageNew:     clickupLeadNew,
	crm.ProjectStageQuoting: clickupLeadQuoting,
	crm.ProjectStageQuoted:  clickupLeadQuoteSent,
	crm.ProjectStageWon:     clickupLeadWon,
	crm.ProjectStageLost:    clickupLeadLost,
	crm.ProjectStageOnHold:  clickupLeadOnHold,
}

// LeadStageFromStatus maps a ClickUp lead status string to a project stage.
// Input is case-folded and trimmed; unknown statuses map to StageNew.
func LeadStageFromStatus(status string) crm.ProjectStage {
	if stage, ok := leadStageFromClickUp[normalizeStatus(status)]; ok {
		return stage
	}
	return crm.ProjectStageNew
}

// LeadStatusForStage maps a project stage to its ClickUp status string
func LeadStatusForStage(stage crm.ProjectStage) string {
	if status, ok := leadStageToClickUp[stage]; ok {
		return status
	}
	return clickupLeadNew
}

// ClickUp status strings for the customer list
const (
	clickupAccountActive   = "active"
	clickupAccountProspect = "prospect"
	clickupAccountInactive = "inactive"
)

var customerStatusFromClickUp = map[string]crm.CustomerStatus{
	clickupAccountActive:   crm.CustomerStatusActive,
	clickupAccountProspect: crm.CustomerStatusProspect,
	clickupAccountInactive: crm.CustomerStatusInactive,
}

var customerStatusToClickUp = map[crm.CustomerStatus]string{
	crm.CustomerStatusActive:   clickupAccountActive,
	crm.CustomerStatusProspect: clickupAccountProspect,
	crm.CustomerStatusInactive: clickupAccountInactive,
}

// CustomerStatusFromStatus maps a ClickUp account status string to a
// customer status. Unknown statuses map to prospect.
func CustomerStatusFromStatus(status string) crm.CustomerStatus {
	if s, ok := customerStatusFromClickUp[normalizeStatus(status)]; ok {
		return s
	}
	return crm.CustomerStatusProspect
}

// CustomerStatusForStatus maps a customer status to its ClickUp status string
func CustomerStatusForStatus(status crm.CustomerStatus) string {
	if s, ok := customerStatusToClickUp[status]; ok {
		return s
	}
	return clickupAccountProspect
}

func normalizeStatus(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ---------------------------------------------------------------------------
// Name mapping
// ---------------------------------------------------------------------------

// ParseFullName splits a display name into first and last parts. The first
// token becomes the first name and the remainder the last name. Lossy for
// multi-part first names.
func ParseFullName(full string) (firstName, lastName string) {
	parts := strings.Fields(full)
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}

// CombineNames joins first and last name into a display name, filtering
// empty parts
func CombineNames(firstName, lastName string) string {
	parts := make([]string, 0, 2)
	if firstName != "" {
		parts = append(parts, firstName)
	}
	if lastName != "" {
		parts = append(parts, lastName)
	}
	return strings.Join(parts, " ")
}
