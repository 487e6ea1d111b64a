package clickup

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// ---------------------------------------------------------------------------
// Task Operations
// ---------------------------------------------------------------------------

// GetTask fetches one task by ID, including its custom field values
func (c *Client) GetTask(ctx context.Context, taskID string) (*Task, error) {
	var task Task
	path := fmt.Sprintf("/task/%s?include_subtasks=false", url.PathEscape(taskID))
	if err := c.request(ctx, http.MethodGet, path, nil, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// CreateTask creates a task in the given list
func (c *Client) CreateTask(ctx context.Context, listID string, req *CreateTaskRequest) (*Task, error) {
	var task Task
	path := fmt.Sprintf("/list/%s/task", url.PathEscape(listID))
	if err := c.request(ctx, http.MethodPost, path, req, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// UpdateTask applies a partial update to a task
func (c *Client) UpdateTask(ctx context.Context, taskID string, req *UpdateTaskRequest) (*Task, error) {
	var task Task
	path := fmt.Sprintf("/task/%s", url.PathEscape(taskID))
	if err := c.request(ctx, http.MethodPut, path, req, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// DeleteTask removes a task
func (c *Client) DeleteTask(ctx context.Context, taskID string) error {
	path := fmt.Sprintf("/task/%s", url.PathEscape(taskID))
	return c.request(ctx, http.MethodDelete, path, nil, nil)
}

// ListTasks pages through the tasks of a list. Page is 0-indexed.
func (c *Client) ListTasks(ctx context.Context, listID string, page int) ([]Task, error) {
	var resp struct {
		Tasks []Task `json:"tasks"`
	}
	path := fmt.Sprintf("/list/%s/task?page=%d&include_closed=true", url.PathEscape(listID), page)
	if err := c.request(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Tasks, nil
}

// AddComment posts a comment on a task
func (c *Client) AddComment(ctx context.Context, taskID, text string) error {
	body := map[string]any{"comment_text": text}
	path := fmt.Sprintf("/task/%s/comment", url.PathEscape(taskID))
	return c.request(ctx, http.MethodPost, path, body, nil)
}

// ---------------------------------------------------------------------------
// Custom Field Operations
// ---------------------------------------------------------------------------

// SetCustomField writes one custom field value on a task
func (c *Client) SetCustomField(ctx context.Context, taskID, fieldID string, value any) error {
	body := map[string]any{"value": value}
	path := fmt.Sprintf("/task/%s/field/%s", url.PathEscape(taskID), url.PathEscape(fieldID))
	return c.request(ctx, http.MethodPost, path, body, nil)
}

// RemoveCustomField clears one custom field value on a task
func (c *Client) RemoveCustomField(ctx context.Context, taskID, fieldID string) error {
	path := fmt.Sprintf("/task/%s/field/%s", url.PathEscape(taskID), url.PathEscape(fieldID))
	return c.request(ctx, http.MethodDelete, path, nil, nil)
}

// GetListCustomFields fetches the custom field definitions of a list
func (c *Client) GetListCustomFields(ctx context.Context, listID string) ([]FieldDefinition, error) {
	var resp struct {
		Fields []FieldDefinition `json:"fields"`
	}
	path := fmt.Sprintf("/list/%s/field", url.PathEscape(listID))
	if err := c.request(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Fields, nil
}

// ---------------------------------------------------------------------------
// Webhook Operations
// ---------------------------------------------------------------------------

// ListWebhooks fetches the webhooks registered for a team
func (c *Client) ListWebhooks(ctx context.Context, teamID string) ([]Webhook, error) {
	var resp struct {
		Webhooks []Webhook `json:"webhooks"`
	}
	path := fmt.Sprintf("/team/%s/webhook", url.PathEscape(teamID))
	if err := c.request(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Webhooks, nil
}

// CreateWebhook registers a webhook endpoint for the given events
func (c *Client) CreateWebhook(ctx context.Context, teamID, endpoint string, events []string) (*Webhook, error) {
	var resp struct {
		ID      string  `json:"id"`
		Webhook Webhook `json:"webhook"`
	}
	body := map[string]any{"endpoint": endpoint, "events": events}
	path := fmt.Sprintf("/team/%s/webhook", url.PathEscape(teamID))
	if err := c.request(ctx, http.MethodPost, path, body, &resp); err != nil {
		return nil, err
	}
	if resp.Webhook.ID == "" {
		resp.Webhook.ID = resp.ID
	}
	return &resp.Webhook, nil
}

// DeleteWebhook removes a webhook subscription
func (c *Client) DeleteWebhook(ctx context.Context, webhookID string) error {
	path := fmt.Sprintf("/webhook/%s", url.PathEscape(webhookID))
	return c.request(ctx, http.MethodDelete, path, nil, nil)
}
