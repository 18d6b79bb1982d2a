package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"project-pulse/microservices/dashboard-service/models"
)

// The repository contracts below are implemented twice: once against
// MongoDB (the durable store) and once against an in-process store used
// when the durable store is unreachable. Both implementations return
// identical entity shapes so the fallback facade stays transparent to
// callers.

type UserFilter struct {
	Role *models.UserRole
}

type ProjectFilter struct {
	Status   *models.ProjectStatus
	ClientID *primitive.ObjectID
	MemberID *primitive.ObjectID
}

type TaskFilter struct {
	ProjectID  *primitive.ObjectID
	AssigneeID *primitive.ObjectID
	Status     *models.TaskStatus
	DueBefore  *time.Time
}

type TimeEntryFilter struct {
	TaskID *primitive.ObjectID
	UserID *primitive.ObjectID
	From   *time.Time
	To     *time.Time
}

type UserRepository interface {
	Get(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	List(ctx context.Context, filter UserFilter) ([]models.User, error)
	Create(ctx context.Context, user *models.User) (*models.User, error)
	Update(ctx context.Context, id primitive.ObjectID, patch models.UserPatch) (*models.User, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type ProjectRepository interface {
	Get(ctx context.Context, id primitive.ObjectID) (*models.Project, error)
	List(ctx context.Context, filter ProjectFilter) ([]models.Project, error)
	Create(ctx context.Context, project *models.Project) (*models.Project, error)
	Update(ctx context.Context, id primitive.ObjectID, patch models.ProjectPatch) (*models.Project, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type TaskRepository interface {
	Get(ctx context.Context, id primitive.ObjectID) (*models.Task, error)
	List(ctx context.Context, filter TaskFilter) ([]models.Task, error)
	Create(ctx context.Context, task *models.Task) (*models.Task, error)
	Update(ctx context.Context, id primitive.ObjectID, patch models.TaskPatch) (*models.Task, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type TimeEntryRepository interface {
	Get(ctx context.Context, id primitive.ObjectID) (*models.TimeEntry, error)
	List(ctx context.Context, filter TimeEntryFilter) ([]models.TimeEntry, error)
	Create(ctx context.Context, entry *models.TimeEntry) (*models.TimeEntry, error)
	Update(ctx context.Context, id primitive.ObjectID, patch models.TimeEntryPatch) (*models.TimeEntry, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// ActivityLogRepository is append-only by contract: no update or delete
// method exists. Reads return entries newest-first.
type ActivityLogRepository interface {
	Append(ctx context.Context, entry *models.ActivityLogEntry) (*models.ActivityLogEntry, error)
	Recent(ctx context.Context, limit int) ([]models.ActivityLogEntry, error)
	ByEntity(ctx context.Context, entityType, entityID string, limit int) ([]models.ActivityLogEntry, error)
	ByActor(ctx context.Context, actorID primitive.ObjectID, limit int) ([]models.ActivityLogEntry, error)
}

type NotificationRepository interface {
	Get(ctx context.Context, id primitive.ObjectID) (*models.Notification, error)
	Create(ctx context.Context, n *models.Notification) (*models.Notification, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, error)
	UnreadCount(ctx context.Context, userID primitive.ObjectID) (int64, error)
	MarkRead(ctx context.Context, id primitive.ObjectID) (*models.Notification, error)
	MarkAllRead(ctx context.Context, userID primitive.ObjectID) (int64, error)
	ExistsForEvent(ctx context.Context, eventKey string) (bool, error)
}

type EmailJobRepository interface {
	Get(ctx context.Context, id string) (*models.EmailJob, error)
	Create(ctx context.Context, job *models.EmailJob) (*models.EmailJob, error)
	SetStatus(ctx context.Context, id string, status models.EmailJobStatus, attempts int, lastError string) error
	ListByStatus(ctx context.Context, status models.EmailJobStatus) ([]models.EmailJob, error)
}

type WidgetConfigRepository interface {
	GetByUser(ctx context.Context, userID primitive.ObjectID) (*models.WidgetConfig, error)
	Create(ctx context.Context, cfg *models.WidgetConfig) (*models.WidgetConfig, error)
	Replace(ctx context.Context, cfg *models.WidgetConfig) (*models.WidgetConfig, error)
}
