package crmsync

import (
	"context"
	"fmt"
	gosync "sync"
	"time"

	"github.com/fenestra/backend/internal/domain/crm"
	"github.com/fenestra/backend/internal/domain/shared"
	domsync "github.com/fenestra/backend/internal/domain/sync"
	"github.com/fenestra/backend/internal/infrastructure/clickup"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ---------------------------------------------------------------------------
// In-memory fakes
// ---------------------------------------------------------------------------

type fakeCustomerRepo struct {
	mu    gosync.Mutex
	items map[uuid.UUID]*crm.Customer
}

func newFakeCustomerRepo() *fakeCustomerRepo {
	return &fakeCustomerRepo{items: make(map[uuid.UUID]*crm.Customer)}
}

func (r *fakeCustomerRepo) FindByID(_ context.Context, id uuid.UUID) (*crm.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.items[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCustomerRepo) FindByCode(_ context.Context, code string) (*crm.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.items {
		if c.Code == code {
			cp := *c
			return &cp, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeCustomerRepo) FindByExternalID(_ context.Context, externalID string) (*crm.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.items {
		if c.ExternalID != nil && *c.ExternalID == externalID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeCustomerRepo) FindByName(_ context.Context, name string) (*crm.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.items {
		if c.Name == name {
			cp := *c
			return &cp, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeCustomerRepo) FindAll(_ context.Context, _ shared.Filter) ([]crm.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]crm.Customer, 0, len(r.items))
	for _, c := range r.items {
		out = append(out, *c)
	}
	return out, nil
}

func (r *fakeCustomerRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.items)), nil
}

func (r *fakeCustomerRepo) Save(_ context.Context, customer *crm.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *customer
	r.items[customer.ID] = &cp
	return nil
}

func (r *fakeCustomerRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *fakeCustomerRepo) UpdateSyncLink(_ context.Context, id uuid.UUID, externalID string, syncedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.items[id]
	if !ok {
		return shared.ErrNotFound
	}
	c.ExternalID = &externalID
	c.LastSyncedAt = &syncedAt
	return nil
}

func (r *fakeCustomerRepo) ClearSyncLink(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.items[id]
	if !ok {
		return shared.ErrNotFound
	}
	c.ExternalID = nil
	c.LastSyncedAt = nil
	return nil
}

var _ crm.CustomerRepository = (*fakeCustomerRepo)(nil)

type fakeContactRepo struct {
	mu    gosync.Mutex
	items map[uuid.UUID]*crm.Contact
}

func newFakeContactRepo() *fakeContactRepo {
	return &fakeContactRepo{items: make(map[uuid.UUID]*crm.Contact)}
}

func (r *fakeContactRepo) FindByID(_ context.Context, id uuid.UUID) (*crm.Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.items[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeContactRepo) FindByExternalID(_ context.Context, externalID string) (*crm.Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.items {
		if c.ExternalID != nil && *c.ExternalID == externalID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeContactRepo) FindByCustomer(_ context.Context, customerID uuid.UUID, _ shared.Filter) ([]crm.Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []crm.Contact
	for _, c := range r.items {
		if c.CustomerID == customerID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *fakeContactRepo) FindAll(_ context.Context, _ shared.Filter) ([]crm.Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]crm.Contact, 0, len(r.items))
	for _, c := range r.items {
		out = append(out, *c)
	}
	return out, nil
}

func (r *fakeContactRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.items)), nil
}

func (r *fakeContactRepo) Save(_ context.Context, contact *crm.Contact) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *contact
	r.items[contact.ID] = &cp
	return nil
}

func (r *fakeContactRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *fakeContactRepo) UpdateSyncLink(_ context.Context, id uuid.UUID, externalID string, syncedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.items[id]
	if !ok {
		return shared.ErrNotFound
	}
	c.ExternalID = &externalID
	c.LastSyncedAt = &syncedAt
	return nil
}

func (r *fakeContactRepo) ClearSyncLink(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.items[id]
	if !ok {
		return shared.ErrNotFound
	}
	c.ExternalID = nil
	c.LastSyncedAt = nil
	return nil
}

var _ crm.ContactRepository = (*fakeContactRepo)(nil)

type fakeProjectRepo struct {
	mu    gosync.Mutex
	items map[uuid.UUID]*crm.Project
}

func newFakeProjectRepo() *fakeProjectRepo {
	return &fakeProjectRepo{items: make(map[uuid.UUID]*crm.Project)}
}

func (r *fakeProjectRepo) FindByID(_ context.Context, id uuid.UUID) (*crm.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProjectRepo) FindByNumber(_ context.Context, number string) (*crm.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.items {
		if p.Number == number {
			cp := *p
			return &cp, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeProjectRepo) FindByExternalID(_ context.Context, externalID string) (*crm.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.items {
		if p.ExternalID != nil && *p.ExternalID == externalID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeProjectRepo) FindByCustomer(_ context.Context, customerID uuid.UUID, _ shared.Filter) ([]crm.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []crm.Project
	for _, p := range r.items {
		if p.CustomerID != nil && *p.CustomerID == customerID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakeProjectRepo) FindAll(_ context.Context, _ shared.Filter) ([]crm.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]crm.Project, 0, len(r.items))
	for _, p := range r.items {
		out = append(out, *p)
	}
	return out, nil
}

func (r *fakeProjectRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.items)), nil
}

func (r *fakeProjectRepo) Save(_ context.Context, project *crm.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *project
	r.items[project.ID] = &cp
	return nil
}

func (r *fakeProjectRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *fakeProjectRepo) UpdateSyncLink(_ context.Context, id uuid.UUID, externalID string, syncedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[id]
	if !ok {
		return shared.ErrNotFound
	}
	p.ExternalID = &externalID
	p.LastSyncedAt = &syncedAt
	return nil
}

func (r *fakeProjectRepo) ClearSyncLink(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[id]
	if !ok {
		return shared.ErrNotFound
	}
	p.ExternalID = nil
	p.LastSyncedAt = nil
	return nil
}

var _ crm.ProjectRepository = (*fakeProjectRepo)(nil)

type fakeUserMappingRepo struct {
	mappings []*crm.UserMapping
}

func (r *fakeUserMappingRepo) FindByUserID(_ context.Context, userID uuid.UUID) (*crm.UserMapping, error) {
	for _, m := range r.mappings {
		if m.UserID == userID {
			return m, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeUserMappingRepo) FindByExternalUserID(_ context.Context, externalUserID string) (*crm.UserMapping, error) {
	for _, m := range r.mappings {
		if m.ExternalUserID == externalUserID {
			return m, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeUserMappingRepo) FindAll(_ context.Context) ([]crm.UserMapping, error) {
	out := make([]crm.UserMapping, 0, len(r.mappings))
	for _, m := range r.mappings {
		out = append(out, *m)
	}
	return out, nil
}

func (r *fakeUserMappingRepo) Save(_ context.Context, mapping *crm.UserMapping) error {
	r.mappings = append(r.mappings, mapping)
	return nil
}

func (r *fakeUserMappingRepo) Delete(_ context.Context, id uuid.UUID) error {
	for i, m := range r.mappings {
		if m.ID == id {
			r.mappings = append(r.mappings[:i], r.mappings[i+1:]...)
			return nil
		}
	}
	return shared.ErrNotFound
}

var _ crm.UserMappingRepository = (*fakeUserMappingRepo)(nil)

type fakeLogRepo struct {
	mu        gosync.Mutex
	entries   []*domsync.LogEntry
	appendErr error
}

func (r *fakeLogRepo) Append(_ context.Context, entry *domsync.LogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.appendErr != nil {
		return r.appendErr
	}
	r.entries = append(r.entries, entry)
	return nil
}

func (r *fakeLogRepo) FindRecentForEntity(_ context.Context, entityType domsync.EntityType, entityID uuid.UUID, _ int) ([]*domsync.LogEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domsync.LogEntry
	for _, e := range r.entries {
		if e.EntityType == entityType && e.EntityID != nil && *e.EntityID == entityID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeLogRepo) FindFailed(_ context.Context, _ time.Time, _ int) ([]*domsync.LogEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domsync.LogEntry
	for _, e := range r.entries {
		if e.Outcome == domsync.OutcomeFailed || e.Outcome == domsync.OutcomeConflict {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeLogRepo) FindRecent(_ context.Context, _ int) ([]*domsync.LogEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*domsync.LogEntry(nil), r.entries...), nil
}

func (r *fakeLogRepo) CountByOutcome(_ context.Context, _ time.Time) (map[domsync.Outcome]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[domsync.Outcome]int64)
	for _, e := range r.entries {
		counts[e.Outcome]++
	}
	return counts, nil
}

// all returns a snapshot of the recorded entries
func (r *fakeLogRepo) all() []*domsync.LogEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*domsync.LogEntry(nil), r.entries...)
}

var _ domsync.LogRepository = (*fakeLogRepo)(nil)

// fieldWrite is one recorded SetCustomField call
type fieldWrite struct {
	taskID  string
	fieldID string
	value   any
}

type createdTask struct {
	listID string
	req    *clickup.CreateTaskRequest
}

type fakeCRMClient struct {
	mu gosync.Mutex

	enabled bool
	tasks   map[string]*clickup.Task

	created     []createdTask
	updated     map[string]*clickup.UpdateTaskRequest
	fieldWrites []fieldWrite
	deleted     []string

	nextID    int
	getCalls  int
	getErr    error
	createErr error
	updateErr error
	deleteErr error
	fieldErr  error
}

func newFakeCRMClient() *fakeCRMClient {
	return &fakeCRMClient{
		enabled: true,
		tasks:   make(map[string]*clickup.Task),
		updated: make(map[string]*clickup.UpdateTaskRequest),
	}
}

func (c *fakeCRMClient) IsEnabled() bool        { return c.enabled }
func (c *fakeCRMClient) CustomerListID() string { return "list_customers" }
func (c *fakeCRMClient) ContactListID() string  { return "list_contacts" }
func (c *fakeCRMClient) LeadListID() string     { return "list_leads" }

func (c *fakeCRMClient) GetTask(_ context.Context, taskID string) (*clickup.Task, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.getCalls++
	if c.getErr != nil {
		return nil, c.getErr
	}
	task, ok := c.tasks[taskID]
	if !ok {
		return nil, &clickup.APIError{StatusCode: 404, Message: "task not found"}
	}
	return task, nil
}

func (c *fakeCRMClient) CreateTask(_ context.Context, listID string, req *clickup.CreateTaskRequest) (*clickup.Task, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.createErr != nil {
		return nil, c.createErr
	}
	c.nextID++
	task := &clickup.Task{
		ID:     fmt.Sprintf("task_%d", c.nextID),
		Name:   req.Name,
		Status: clickup.TaskStatus{Status: req.Status},
		List:   clickup.TaskList{ID: listID},
	}
	c.tasks[task.ID] = task
	c.created = append(c.created, createdTask{listID: listID, req: req})
	return task, nil
}

func (c *fakeCRMClient) UpdateTask(_ context.Context, taskID string, req *clickup.UpdateTaskRequest) (*clickup.Task, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.updateErr != nil {
		return nil, c.updateErr
	}
	c.updated[taskID] = req
	task, ok := c.tasks[taskID]
	if !ok {
		task = &clickup.Task{ID: taskID}
		c.tasks[taskID] = task
	}
	return task, nil
}

func (c *fakeCRMClient) DeleteTask(_ context.Context, taskID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.deleteErr != nil {
		return c.deleteErr
	}
	delete(c.tasks, taskID)
	c.deleted = append(c.deleted, taskID)
	return nil
}

func (c *fakeCRMClient) SetCustomField(_ context.Context, taskID, fieldID string, value any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fieldErr != nil {
		return c.fieldErr
	}
	c.fieldWrites = append(c.fieldWrites, fieldWrite{taskID: taskID, fieldID: fieldID, value: value})
	return nil
}

var _ CRMClient = (*fakeCRMClient)(nil)

// fakeFieldResolver maps names to synthetic IDs, failing for names in fail
type fakeFieldResolver struct {
	fail map[string]bool
}

func (r *fakeFieldResolver) FieldID(_ context.Context, _, name string) (string, error) {
	if r.fail[name] {
		return "", fmt.Errorf("field %q not found", name)
	}
	return "fid_" + name, nil
}

func (r *fakeFieldResolver) Invalidate() {}

var _ clickup.FieldResolver = (*fakeFieldResolver)(nil)

// ---------------------------------------------------------------------------
// Harness
// ---------------------------------------------------------------------------

type syncHarness struct {
	customers *fakeCustomerRepo
	contacts  *fakeContactRepo
	projects  *fakeProjectRepo
	users     *fakeUserMappingRepo
	logs      *fakeLogRepo
	client    *fakeCRMClient
	resolver  *fakeFieldResolver
	service   *Service
}

func newSyncHarness() *syncHarness {
	h := &syncHarness{
		customers: newFakeCustomerRepo(),
		contacts:  newFakeContactRepo(),
		projects:  newFakeProjectRepo(),
		users:     &fakeUserMappingRepo{},
		logs:      &fakeLogRepo{},
		client:    newFakeCRMClient(),
		resolver:  &fakeFieldResolver{fail: make(map[string]bool)},
	}
	h.service = NewService(
		h.customers, h.contacts, h.projects, h.users, h.logs,
		h.client, h.resolver, 5*time.Second, zap.NewNop(),
	)
	return h
}
