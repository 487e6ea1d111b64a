package handler

import (
	"context"
	"fmt"
	gosync "sync"
	"testing"
	"time"

	"github.com/fenestra/backend/internal/application/crmsync"
	"github.com/fenestra/backend/internal/domain/crm"
	"github.com/fenestra/backend/internal/domain/shared"
	domsync "github.com/fenestra/backend/internal/domain/sync"
	"github.com/fenestra/backend/internal/infrastructure/clickup"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ---------------------------------------------------------------------------
// In-memory fakes shared by the handler tests
// ---------------------------------------------------------------------------

type memCustomerRepo struct {
	mu    gosync.Mutex
	items map[uuid.UUID]*crm.Customer
}

var _ crm.CustomerRepository = (*memCustomerRepo)(nil)

func newMemCustomerRepo() *memCustomerRepo {
	return &memCustomerRepo{items: make(map[uuid.UUID]*crm.Customer)}
}

func (r *memCustomerRepo) FindByID(_ context.Context, id uuid.UUID) (*crm.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.items[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *memCustomerRepo) FindByCode(_ context.Context, code string) (*crm.Customer, error) {
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

func (r *memCustomerRepo) FindByExternalID(_ context.Context, externalID string) (*crm.Customer, error) {
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

func (r *memCustomerRepo) FindByName(_ context.Context, name string) (*crm.Customer, error) {
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

func (r *memCustomerRepo) FindAll(_ context.Context, filter shared.Filter) ([]crm.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]crm.Customer, 0, len(r.items))
	for _, c := range r.items {
		if status, ok := filter.Filters["status"]; ok && string(c.Status) != fmt.Sprint(status) {
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}

func (r *memCustomerRepo) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	items, err := r.FindAll(ctx, filter)
	return int64(len(items)), err
}

func (r *memCustomerRepo) Save(_ context.Context, customer *crm.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *customer
	r.items[customer.ID] = &cp
	return nil
}

func (r *memCustomerRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *memCustomerRepo) UpdateSyncLink(_ context.Context, id uuid.UUID, externalID string, syncedAt time.Time) error {
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

func (r *memCustomerRepo) ClearSyncLink(_ context.Context, id uuid.UUID) error {
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

type memContactRepo struct{}

var _ crm.ContactRepository = memContactRepo{}

func (memContactRepo) FindByID(context.Context, uuid.UUID) (*crm.Contact, error) {
	return nil, shared.ErrNotFound
}
func (memContactRepo) FindByExternalID(context.Context, string) (*crm.Contact, error) {
	return nil, shared.ErrNotFound
}
func (memContactRepo) FindByCustomer(context.Context, uuid.UUID, shared.Filter) ([]crm.Contact, error) {
	return nil, nil
}
func (memContactRepo) FindAll(context.Context, shared.Filter) ([]crm.Contact, error) {
	return nil, nil
}
func (memContactRepo) Count(context.Context, shared.Filter) (int64, error) { return 0, nil }
func (memContactRepo) Save(context.Context, *crm.Contact) error            { return nil }
func (memContactRepo) Delete(context.Context, uuid.UUID) error             { return nil }
func (memContactRepo) UpdateSyncLink(context.Context, uuid.UUID, string, time.Time) error {
	return nil
}
func (memContactRepo) ClearSyncLink(context.Context, uuid.UUID) error { return nil }

type memProjectRepo struct{}

var _ crm.ProjectRepository = memProjectRepo{}

func (memProjectRepo) FindByID(context.Context, uuid.UUID) (*crm.Project, error) {
	return nil, shared.ErrNotFound
}
func (memProjectRepo) FindByNumber(context.Context, string) (*crm.Project, error) {
	return nil, shared.ErrNotFound
}
func (memProjectRepo) FindByExternalID(context.Context, string) (*crm.Project, error) {
	return nil, shared.ErrNotFound
}
func (memProjectRepo) FindByCustomer(context.Context, uuid.UUID, shared.Filter) ([]crm.Project, error) {
	return nil, nil
}
func (memProjectRepo) FindAll(context.Context, shared.Filter) ([]crm.Project, error) {
	return nil, nil
}
func (memProjectRepo) Count(context.Context, shared.Filter) (int64, error) { return 0, nil }
func (memProjectRepo) Save(context.Context, *crm.Project) error            { return nil }
func (memProjectRepo) Delete(context.Context, uuid.UUID) error             { return nil }
func (memProjectRepo) UpdateSyncLink(context.Context, uuid.UUID, string, time.Time) error {
	return nil
}
func (memProjectRepo) ClearSyncLink(context.Context, uuid.UUID) error { return nil }

type memUserMappingRepo struct{}

var _ crm.UserMappingRepository = memUserMappingRepo{}

func (memUserMappingRepo) FindByUserID(context.Context, uuid.UUID) (*crm.UserMapping, error) {
	return nil, shared.ErrNotFound
}
func (memUserMappingRepo) FindByExternalUserID(context.Context, string) (*crm.UserMapping, error) {
	return nil, shared.ErrNotFound
}
func (memUserMappingRepo) FindAll(context.Context) ([]crm.UserMapping, error) { return nil, nil }
func (memUserMappingRepo) Save(context.Context, *crm.UserMapping) error       { return nil }
func (memUserMappingRepo) Delete(context.Context, uuid.UUID) error            { return nil }

type memLogRepo struct {
	mu      gosync.Mutex
	entries []*domsync.LogEntry
}

var _ domsync.LogRepository = (*memLogRepo)(nil)

func (r *memLogRepo) Append(_ context.Context, entry *domsync.LogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	return nil
}

func (r *memLogRepo) FindRecentForEntity(_ context.Context, entityType domsync.EntityType, entityID uuid.UUID, limit int) ([]*domsync.LogEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domsync.LogEntry
	for i := len(r.entries) - 1; i >= 0 && len(out) < limit; i-- {
		e := r.entries[i]
		if e.EntityType == entityType && e.EntityID != nil && *e.EntityID == entityID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *memLogRepo) FindFailed(_ context.Context, since time.Time, limit int) ([]*domsync.LogEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domsync.LogEntry
	for i := len(r.entries) - 1; i >= 0 && len(out) < limit; i-- {
		e := r.entries[i]
		if e.CreatedAt.Before(since) {
			continue
		}
		if e.Outcome == domsync.OutcomeFailed || e.Outcome == domsync.OutcomeConflict {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *memLogRepo) FindRecent(_ context.Context, limit int) ([]*domsync.LogEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domsync.LogEntry
	for i := len(r.entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.entries[i])
	}
	return out, nil
}

func (r *memLogRepo) CountByOutcome(_ context.Context, since time.Time) (map[domsync.Outcome]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[domsync.Outcome]int64)
	for _, e := range r.entries {
		if !e.CreatedAt.Before(since) {
			out[e.Outcome]++
		}
	}
	return out, nil
}

func (r *memLogRepo) all() []*domsync.LogEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*domsync.LogEntry(nil), r.entries...)
}

// crmStub is a minimal CRM client for wiring a real trigger in tests
type crmStub struct {
	mu      gosync.Mutex
	enabled bool
	tasks   map[string]*clickup.Task
	created int
	deleted []string
	pulled  []string
	seq     int
}

var _ crmsync.CRMClient = (*crmStub)(nil)

func newCRMStub(enabled bool) *crmStub {
	return &crmStub{enabled: enabled, tasks: make(map[string]*clickup.Task)}
}

func (s *crmStub) IsEnabled() bool        { return s.enabled }
func (s *crmStub) CustomerListID() string { return "list_customers" }
func (s *crmStub) ContactListID() string  { return "list_contacts" }
func (s *crmStub) LeadListID() string     { return "list_leads" }

func (s *crmStub) GetTask(_ context.Context, taskID string) (*clickup.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pulled = append(s.pulled, taskID)
	task, ok := s.tasks[taskID]
	if !ok {
		return nil, domsync.ErrExternalAPI
	}
	return task, nil
}

func (s *crmStub) CreateTask(_ context.Context, _ string, req *clickup.CreateTaskRequest) (*clickup.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.created++
	task := &clickup.Task{ID: fmt.Sprintf("task_%d", s.seq), Name: req.Name}
	s.tasks[task.ID] = task
	return task, nil
}

func (s *crmStub) UpdateTask(_ context.Context, taskID string, _ *clickup.UpdateTaskRequest) (*clickup.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	task, ok := s.tasks[taskID]
	if !ok {
		return nil, domsync.ErrExternalAPI
	}
	return task, nil
}

func (s *crmStub) DeleteTask(_ context.Context, taskID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, taskID)
	delete(s.tasks, taskID)
	return nil
}

func (s *crmStub) SetCustomField(context.Context, string, string, any) error { return nil }

func (s *crmStub) deletedTasks() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.deleted...)
}

func (s *crmStub) pulledTasks() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.pulled...)
}

type fieldStub struct{}

var _ clickup.FieldResolver = fieldStub{}

func (fieldStub) FieldID(context.Context, string, string) (string, error) { return "field_1", nil }
func (fieldStub) Invalidate()                                             {}

// memIdemStore remembers processed event keys without expiry
type memIdemStore struct {
	mu   gosync.Mutex
	seen map[string]bool
}

var _ shared.IdempotencyStore = (*memIdemStore)(nil)

func newMemIdemStore() *memIdemStore {
	return &memIdemStore{seen: make(map[string]bool)}
}

func (s *memIdemStore) MarkProcessed(_ context.Context, eventID string, _ time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seen[eventID] {
		return false, nil
	}
	s.seen[eventID] = true
	return true, nil
}

func (s *memIdemStore) IsProcessed(_ context.Context, eventID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seen[eventID], nil
}

func (s *memIdemStore) Close() error { return nil }

// ---------------------------------------------------------------------------
// Trigger wiring
// ---------------------------------------------------------------------------

type triggerEnv struct {
	trigger   *crmsync.Trigger
	customers *memCustomerRepo
	client    *crmStub
	logs      *memLogRepo
}

func newTriggerEnv(t *testing.T, enabled bool) *triggerEnv {
	t.Helper()
	customers := newMemCustomerRepo()
	client := newCRMStub(enabled)
	logs := &memLogRepo{}

	service := crmsync.NewService(customers, memContactRepo{}, memProjectRepo{},
		memUserMappingRepo{}, logs, client, fieldStub{}, 5*time.Second, zap.NewNop())
	dispatcher := crmsync.NewDispatcher(logs, 16, zap.NewNop())
	dispatcher.Start(1)
	t.Cleanup(dispatcher.Stop)

	return &triggerEnv{
		trigger:   crmsync.NewTrigger(service, dispatcher, zap.NewNop()),
		customers: customers,
		client:    client,
		logs:      logs,
	}
}
