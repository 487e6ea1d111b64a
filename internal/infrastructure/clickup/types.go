package clickup

import (
	"strconv"
	"time"
)

// Millis is a Unix-millisecond timestamp that ClickUp serializes as a
// JSON string
type Millis string

// Time converts the millisecond string to a time.Time. Returns the zero
// time for empty or malformed values.
func (m Millis) Time() time.Time {
	if m == "" {
		return time.Time{}
	}
	ms, err := strconv.ParseInt(string(m), 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}

// NewMillis formats a time as a ClickUp millisecond string
func NewMillis(t time.Time) Millis {
	return Millis(strconv.FormatInt(t.UnixMilli(), 10))
}

// TaskStatus is the status block on a task
type TaskStatus struct {
	Status string `json:"status"`
	Color  string `json:"color,omitempty"`
	Type   string `json:"type,omitempty"`
}

// TaskUser is an assignee or watcher on a task
type TaskUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}

// TaskList identifies the list a task belongs to
type TaskList struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// CustomField is one custom field on a task, as returned by the API.
// Value is raw because its shape depends on the field type.
type CustomField struct {
	ID    string         `json:"id"`
	Name  string         `json:"name"`
	Type  string         `json:"type"`
	Value any            `json:"value,omitempty"`
	Conf  map[string]any `json:"type_config,omitempty"`
}

// Task is a ClickUp task
type Task struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Description  string        `json:"description,omitempty"`
	Status       TaskStatus    `json:"status"`
	DateCreated  Millis        `json:"date_created,omitempty"`
	DateUpdated  Millis        `json:"date_updated,omitempty"`
	DueDate      Millis        `json:"due_date,omitempty"`
	Assignees    []TaskUser    `json:"assignees,omitempty"`
	List         TaskList      `json:"list"`
	CustomFields []CustomField `json:"custom_fields,omitempty"`
}

// UpdatedAt returns the task's last-modified time
func (t *Task) UpdatedAt() time.Time {
	return t.DateUpdated.Time()
}

// Field returns the custom field with the given name, or nil
func (t *Task) Field(name string) *CustomField {
	for i := range t.CustomFields {
		if t.CustomFields[i].Name == name {
			return &t.CustomFields[i]
		}
	}
	return nil
}

// CreateTaskRequest creates a task in a list
type CreateTaskRequest struct {
	Name         string           `json:"name"`
	Description  string           `json:"description,omitempty"`
	Status       string           `json:"status,omitempty"`
	Assignees    []int64          `json:"assignees,omitempty"`
	DueDate      *int64           `json:"due_date,omitempty"`
	CustomFields []FieldValuePair `json:"custom_fields,omitempty"`
}

// UpdateTaskRequest updates core task properties. Nil fields are left
// untouched.
type UpdateTaskRequest struct {
	Name        *string         `json:"name,omitempty"`
	Description *string         `json:"description,omitempty"`
	Status      *string         `json:"status,omitempty"`
	DueDate     *int64          `json:"due_date,omitempty"`
	Assignees   *AssigneesPatch `json:"assignees,omitempty"`
}

// AssigneesPatch adds and removes assignees in one update
type AssigneesPatch struct {
	Add []int64 `json:"add,omitempty"`
	Rem []int64 `json:"rem,omitempty"`
}

// FieldValuePair sets one custom field at task creation
type FieldValuePair struct {
	ID    string `json:"id"`
	Value any    `json:"value"`
}

// FieldDefinition describes one custom field configured on a list
type FieldDefinition struct {
	ID   string         `json:"id"`
	Name string         `json:"name"`
	Type string         `json:"type"`
	Conf map[string]any `json:"type_config,omitempty"`
}

// Webhook is a registered webhook subscription
type Webhook struct {
	ID       string   `json:"id"`
	Endpoint string   `json:"endpoint"`
	Events   []string `json:"events"`
	Health   *struct {
		Status    string `json:"status"`
		FailCount int    `json:"fail_count"`
	} `json:"health,omitempty"`
}
