package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"project-pulse/microservices/dashboard-service/models"
)

// MemoryStore is the in-process secondary store. It mirrors the durable
// store's repository contracts exactly, has no network failure modes,
// and hands out deep copies so callers can never mutate stored state.
type MemoryStore struct {
	mu            sync.RWMutex
	users         map[primitive.ObjectID]models.User
	projects      map[primitive.ObjectID]models.Project
	tasks         map[primitive.ObjectID]models.Task
	timeEntries   map[primitive.ObjectID]models.TimeEntry
	activity      []models.ActivityLogEntry
	notifications map[primitive.ObjectID]models.Notification
	emailJobs     map[string]models.EmailJob
	widgetConfigs map[primitive.ObjectID]models.WidgetConfig
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:         make(map[primitive.ObjectID]models.User),
		projects:      make(map[primitive.ObjectID]models.Project),
		tasks:         make(map[primitive.ObjectID]models.Task),
		timeEntries:   make(map[primitive.ObjectID]models.TimeEntry),
		notifications: make(map[primitive.ObjectID]models.Notification),
		emailJobs:     make(map[string]models.EmailJob),
		widgetConfigs: make(map[primitive.ObjectID]models.WidgetConfig),
	}
}

func (s *MemoryStore) Users() *MemoryUserRepository             { return &MemoryUserRepository{s: s} }
func (s *MemoryStore) Projects() *MemoryProjectRepository       { return &MemoryProjectRepository{s: s} }
func (s *MemoryStore) Tasks() *MemoryTaskRepository             { return &MemoryTaskRepository{s: s} }
func (s *MemoryStore) TimeEntries() *MemoryTimeEntryRepository  { return &MemoryTimeEntryRepository{s: s} }
func (s *MemoryStore) Activity() *MemoryActivityRepository      { return &MemoryActivityRepository{s: s} }
func (s *MemoryStore) Notifications() *MemoryNotificationRepository {
	return &MemoryNotificationRepository{s: s}
}
func (s *MemoryStore) EmailJobs() *MemoryEmailJobRepository { return &MemoryEmailJobRepository{s: s} }
func (s *MemoryStore) WidgetConfigs() *MemoryWidgetRepository {
	return &MemoryWidgetRepository{s: s}
}

func cloneProject(p models.Project) models.Project {
	c := p
	c.Team = append([]primitive.ObjectID(nil), p.Team...)
	return c
}

func cloneTask(t models.Task) models.Task {
	c := t
	if t.AssigneeID != nil {
		id := *t.AssigneeID
		c.AssigneeID = &id
	}
	return c
}

func cloneWidgetConfig(cfg models.WidgetConfig) models.WidgetConfig {
	c := cfg
	c.Widgets = make([]models.Widget, len(cfg.Widgets))
	for i, w := range cfg.Widgets {
		cw := w
		cw.Settings = make(map[string]interface{}, len(w.Settings))
		for k, v := range w.Settings {
			cw.Settings[k] = v
		}
		c.Widgets[i] = cw
	}
	return c
}

type MemoryUserRepository struct {
	s *MemoryStore
}

func (r *MemoryUserRepository) Get(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	user, ok := r.s.users[id]
	if !ok {
		return nil, &NotFoundError{Entity: "user", ID: id.Hex()}
	}
	return &user, nil
}

func (r *MemoryUserRepository) List(_ context.Context, filter UserFilter) ([]models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	users := make([]models.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		if filter.Role != nil && u.Role != *filter.Role {
			continue
		}
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return olderFirst(users[i].CreatedAt, users[i].ID, users[j].CreatedAt, users[j].ID) })
	return users, nil
}

func (r *MemoryUserRepository) Create(_ context.Context, user *models.User) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	created := *user
	if created.ID.IsZero() {
		created.ID = primitive.NewObjectID()
	}
	now := time.Now()
	created.CreatedAt = now
	created.UpdatedAt = now

	r.s.users[created.ID] = created
	return &created, nil
}

func (r *MemoryUserRepository) Update(_ context.Context, id primitive.ObjectID, patch models.UserPatch) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	user, ok := r.s.users[id]
	if !ok {
		return nil, &NotFoundError{Entity: "user", ID: id.Hex()}
	}
	patch.Apply(&user)
	user.UpdatedAt = time.Now()

	r.s.users[id] = user
	return &user, nil
}

func (r *MemoryUserRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[id]; !ok {
		return &NotFoundError{Entity: "user", ID: id.Hex()}
	}
	delete(r.s.users, id)
	return nil
}

type MemoryProjectRepository struct {
	s *MemoryStore
}

func (r *MemoryProjectRepository) Get(_ context.Context, id primitive.ObjectID) (*models.Project, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	project, ok := r.s.projects[id]
	if !ok {
		return nil, &NotFoundError{Entity: "project", ID: id.Hex()}
	}
	cloned := cloneProject(project)
	return &cloned, nil
}

func (r *MemoryProjectRepository) List(_ context.Context, filter ProjectFilter) ([]models.Project, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	projects := make([]models.Project, 0, len(r.s.projects))
	for _, p := range r.s.projects {
		if filter.Status != nil && p.Status != *filter.Status {
			continue
		}
		if filter.ClientID != nil && p.ClientID != *filter.ClientID {
			continue
		}
		if filter.MemberID != nil && !containsID(p.Team, *filter.MemberID) {
			continue
		}
		projects = append(projects, cloneProject(p))
	}
	sort.Slice(projects, func(i, j int) bool {
		return olderFirst(projects[i].CreatedAt, projects[i].ID, projects[j].CreatedAt, projects[j].ID)
	})
	return projects, nil
}

func (r *MemoryProjectRepository) Create(_ context.Context, project *models.Project) (*models.Project, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	created := cloneProject(*project)
	if created.ID.IsZero() {
		created.ID = primitive.NewObjectID()
	}
	if created.Team == nil {
		created.Team = []primitive.ObjectID{}
	}
	now := time.Now()
	created.CreatedAt = now
	created.UpdatedAt = now

	r.s.projects[created.ID] = cloneProject(created)
	return &created, nil
}

func (r *MemoryProjectRepository) Update(_ context.Context, id primitive.ObjectID, patch models.ProjectPatch) (*models.Project, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	project, ok := r.s.projects[id]
	if !ok {
		return nil, &NotFoundError{Entity: "project", ID: id.Hex()}
	}
	updated := cloneProject(project)
	patch.Apply(&updated)
	updated.UpdatedAt = time.Now()

	r.s.projects[id] = cloneProject(updated)
	return &updated, nil
}

func (r *MemoryProjectRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.projects[id]; !ok {
		return &NotFoundError{Entity: "project", ID: id.Hex()}
	}
	delete(r.s.projects, id)
	return nil
}

type MemoryTaskRepository struct {
	s *MemoryStore
}

func (r *MemoryTaskRepository) Get(_ context.Context, id primitive.ObjectID) (*models.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	task, ok := r.s.tasks[id]
	if !ok {
		return nil, &NotFoundError{Entity: "task", ID: id.Hex()}
	}
	cloned := cloneTask(task)
	return &cloned, nil
}

func (r *MemoryTaskRepository) List(_ context.Context, filter TaskFilter) ([]models.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	tasks := make([]models.Task, 0, len(r.s.tasks))
	for _, t := range r.s.tasks {
		if filter.ProjectID != nil && t.ProjectID != *filter.ProjectID {
			continue
		}
		if filter.AssigneeID != nil && (t.AssigneeID == nil || *t.AssigneeID != *filter.AssigneeID) {
			continue
		}
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		if filter.DueBefore != nil && (t.Deadline.IsZero() || t.Deadline.After(*filter.DueBefore)) {
			continue
		}
		tasks = append(tasks, cloneTask(t))
	}
	sort.Slice(tasks, func(i, j int) bool {
		return olderFirst(tasks[i].CreatedAt, tasks[i].ID, tasks[j].CreatedAt, tasks[j].ID)
	})
	return tasks, nil
}

func (r *MemoryTaskRepository) Create(_ context.Context, task *models.Task) (*models.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	created := cloneTask(*task)
	if created.ID.IsZero() {
		created.ID = primitive.NewObjectID()
	}
	if created.Status == "" {
		created.Status = models.StatusPending
	}
	now := time.Now()
	created.CreatedAt = now
	created.UpdatedAt = now

	r.s.tasks[created.ID] = cloneTask(created)
	return &created, nil
}

func (r *MemoryTaskRepository) Update(_ context.Context, id primitive.ObjectID, patch models.TaskPatch) (*models.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	task, ok := r.s.tasks[id]
	if !ok {
		return nil, &NotFoundError{Entity: "task", ID: id.Hex()}
	}
	updated := cloneTask(task)
	patch.Apply(&updated)
	updated.UpdatedAt = time.Now()

	r.s.tasks[id] = cloneTask(updated)
	return &updated, nil
}

func (r *MemoryTaskRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.tasks[id]; !ok {
		return &NotFoundError{Entity: "task", ID: id.Hex()}
	}
	delete(r.s.tasks, id)
	return nil
}

type MemoryTimeEntryRepository struct {
	s *MemoryStore
}

func (r *MemoryTimeEntryRepository) Get(_ context.Context, id primitive.ObjectID) (*models.TimeEntry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	entry, ok := r.s.timeEntries[id]
	if !ok {
		return nil, &NotFoundError{Entity: "time entry", ID: id.Hex()}
	}
	return &entry, nil
}

func (r *MemoryTimeEntryRepository) List(_ context.Context, filter TimeEntryFilter) ([]models.TimeEntry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	entries := make([]models.TimeEntry, 0, len(r.s.timeEntries))
	for _, e := range r.s.timeEntries {
		if filter.TaskID != nil && e.TaskID != *filter.TaskID {
			continue
		}
		if filter.UserID != nil && e.UserID != *filter.UserID {
			continue
		}
		if filter.From != nil && e.Date.Before(*filter.From) {
			continue
		}
		if filter.To != nil && e.Date.After(*filter.To) {
			continue
		}
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		return olderFirst(entries[i].CreatedAt, entries[i].ID, entries[j].CreatedAt, entries[j].ID)
	})
	return entries, nil
}

func (r *MemoryTimeEntryRepository) Create(_ context.Context, entry *models.TimeEntry) (*models.TimeEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	created := *entry
	if created.ID.IsZero() {
		created.ID = primitive.NewObjectID()
	}
	now := time.Now()
	created.CreatedAt = now
	created.UpdatedAt = now

	r.s.timeEntries[created.ID] = created
	return &created, nil
}

func (r *MemoryTimeEntryRepository) Update(_ context.Context, id primitive.ObjectID, patch models.TimeEntryPatch) (*models.TimeEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	entry, ok := r.s.timeEntries[id]
	if !ok {
		return nil, &NotFoundError{Entity: "time entry", ID: id.Hex()}
	}
	patch.Apply(&entry)
	entry.UpdatedAt = time.Now()

	r.s.timeEntries[id] = entry
	return &entry, nil
}

func (r *MemoryTimeEntryRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.timeEntries[id]; !ok {
		return &NotFoundError{Entity: "time entry", ID: id.Hex()}
	}
	delete(r.s.timeEntries, id)
	return nil
}

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

// olderFirst gives a deterministic oldest-first ordering: creation time,
// ties broken by id.
func olderFirst(t1 time.Time, id1 primitive.ObjectID, t2 time.Time, id2 primitive.ObjectID) bool {
	if !t1.Equal(t2) {
		return t1.Before(t2)
	}
	return id1.Hex() < id2.Hex()
}
