package repositories

import (
	"context"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"project-pulse/microservices/dashboard-service/models"
)

// MemoryActivityRepository appends to an ordered slice; insertion order
// is the tie-breaker the read contracts rely on.
type MemoryActivityRepository struct {
	s *MemoryStore
}

func (r *MemoryActivityRepository) Append(_ context.Context, entry *models.ActivityLogEntry) (*models.ActivityLogEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	created := *entry
	if created.ID.IsZero() {
		created.ID = primitive.NewObjectID()
	}
	if created.Timestamp.IsZero() {
		created.Timestamp = time.Now()
	}

	r.s.activity = append(r.s.activity, created)
	return &created, nil
}

func (r *MemoryActivityRepository) Recent(_ context.Context, limit int) ([]models.ActivityLogEntry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.collect(func(models.ActivityLogEntry) bool { return true }, limit), nil
}

func (r *MemoryActivityRepository) ByEntity(_ context.Context, entityType, entityID string, limit int) ([]models.ActivityLogEntry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.collect(func(e models.ActivityLogEntry) bool {
		return e.EntityType == entityType && e.EntityID == entityID
	}, limit), nil
}

func (r *MemoryActivityRepository) ByActor(_ context.Context, actorID primitive.ObjectID, limit int) ([]models.ActivityLogEntry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.collect(func(e models.ActivityLogEntry) bool { return e.ActorID == actorID }, limit), nil
}

// collect returns matching entries newest-first. Callers hold the lock.
func (r *MemoryActivityRepository) collect(match func(models.ActivityLogEntry) bool, limit int) []models.ActivityLogEntry {
	entries := make([]models.ActivityLogEntry, 0)
	for _, e := range r.s.activity {
		if match(e) {
			entries = append(entries, e)
		}
	}
	// Entries arrive in insertion order; reversing first and then doing a
	// stable sort by timestamp keeps later insertions first among equal
	// timestamps.
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Timestamp.After(entries[j].Timestamp) })

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

type MemoryNotificationRepository struct {
	s *MemoryStore
}

func (r *MemoryNotificationRepository) Get(_ context.Context, id primitive.ObjectID) (*models.Notification, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	n, ok := r.s.notifications[id]
	if !ok {
		return nil, &NotFoundError{Entity: "notification", ID: id.Hex()}
	}
	return &n, nil
}

func (r *MemoryNotificationRepository) Create(_ context.Context, n *models.Notification) (*models.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	created := *n
	if created.ID.IsZero() {
		created.ID = primitive.NewObjectID()
	}
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now()
	}

	// Mirrors the unique event key index on the durable store.
	if created.EventKey != "" {
		for _, existing := range r.s.notifications {
			if existing.EventKey == created.EventKey {
				return nil, &ConflictError{Reason: "notification event key already exists"}
			}
		}
	}

	r.s.notifications[created.ID] = created
	return &created, nil
}

func (r *MemoryNotificationRepository) ListByUser(_ context.Context, userID primitive.ObjectID) ([]models.Notification, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	notifications := make([]models.Notification, 0)
	for _, n := range r.s.notifications {
		if n.UserID == userID {
			notifications = append(notifications, n)
		}
	}
	sort.Slice(notifications, func(i, j int) bool {
		return olderFirst(notifications[j].CreatedAt, notifications[j].ID, notifications[i].CreatedAt, notifications[i].ID)
	})
	return notifications, nil
}

func (r *MemoryNotificationRepository) UnreadCount(_ context.Context, userID primitive.ObjectID) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var count int64
	for _, n := range r.s.notifications {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *MemoryNotificationRepository) MarkRead(_ context.Context, id primitive.ObjectID) (*models.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	n, ok := r.s.notifications[id]
	if !ok {
		return nil, &NotFoundError{Entity: "notification", ID: id.Hex()}
	}
	n.IsRead = true
	r.s.notifications[id] = n
	return &n, nil
}

func (r *MemoryNotificationRepository) MarkAllRead(_ context.Context, userID primitive.ObjectID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var flipped int64
	for id, n := range r.s.notifications {
		if n.UserID == userID && !n.IsRead {
			n.IsRead = true
			r.s.notifications[id] = n
			flipped++
		}
	}
	return flipped, nil
}

func (r *MemoryNotificationRepository) ExistsForEvent(_ context.Context, eventKey string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, n := range r.s.notifications {
		if n.EventKey == eventKey {
			return true, nil
		}
	}
	return false, nil
}

type MemoryEmailJobRepository struct {
	s *MemoryStore
}

func (r *MemoryEmailJobRepository) Get(_ context.Context, id string) (*models.EmailJob, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	job, ok := r.s.emailJobs[id]
	if !ok {
		return nil, &NotFoundError{Entity: "email job", ID: id}
	}
	return &job, nil
}

func (r *MemoryEmailJobRepository) Create(_ context.Context, job *models.EmailJob) (*models.EmailJob, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	created := *job
	now := time.Now()
	created.CreatedAt = now
	created.UpdatedAt = now
	if created.Status == "" {
		created.Status = models.EmailQueued
	}

	r.s.emailJobs[created.ID] = created
	return &created, nil
}

func (r *MemoryEmailJobRepository) SetStatus(_ context.Context, id string, status models.EmailJobStatus, attempts int, lastError string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	job, ok := r.s.emailJobs[id]
	if !ok || job.Terminal() {
		return &NotFoundError{Entity: "email job", ID: id}
	}
	job.Status = status
	job.Attempts = attempts
	if lastError != "" {
		job.LastError = lastError
	}
	job.UpdatedAt = time.Now()

	r.s.emailJobs[id] = job
	return nil
}

func (r *MemoryEmailJobRepository) ListByStatus(_ context.Context, status models.EmailJobStatus) ([]models.EmailJob, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	jobs := make([]models.EmailJob, 0)
	for _, job := range r.s.emailJobs {
		if job.Status == status {
			jobs = append(jobs, job)
		}
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].CreatedAt.Before(jobs[j].CreatedAt) })
	return jobs, nil
}

type MemoryWidgetRepository struct {
	s *MemoryStore
}

func (r *MemoryWidgetRepository) GetByUser(_ context.Context, userID primitive.ObjectID) (*models.WidgetConfig, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	cfg, ok := r.s.widgetConfigs[userID]
	if !ok {
		return nil, &NotFoundError{Entity: "widget config", ID: userID.Hex()}
	}
	cloned := cloneWidgetConfig(cfg)
	return &cloned, nil
}

func (r *MemoryWidgetRepository) Create(_ context.Context, cfg *models.WidgetConfig) (*models.WidgetConfig, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	created := cloneWidgetConfig(*cfg)
	if created.ID.IsZero() {
		created.ID = primitive.NewObjectID()
	}
	now := time.Now()
	created.CreatedAt = now
	created.UpdatedAt = now

	r.s.widgetConfigs[created.UserID] = cloneWidgetConfig(created)
	return &created, nil
}

func (r *MemoryWidgetRepository) Replace(_ context.Context, cfg *models.WidgetConfig) (*models.WidgetConfig, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.widgetConfigs[cfg.UserID]; !ok {
		return nil, &NotFoundError{Entity: "widget config", ID: cfg.UserID.Hex()}
	}
	replaced := cloneWidgetConfig(*cfg)
	replaced.UpdatedAt = time.Now()

	r.s.widgetConfigs[replaced.UserID] = cloneWidgetConfig(replaced)
	return &replaced, nil
}
