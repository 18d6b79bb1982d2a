package repositories

import (
	"context"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"project-pulse/microservices/dashboard-service/models"
)

// Facades for the side-effect stores. Routing an append through the same
// facade as the mutation it documents keeps the audit entry co-located
// with the mutated row when the durable store is down.

type FallbackActivityRepository struct {
	primary   ActivityLogRepository
	secondary ActivityLogRepository
	logger    *logrus.Logger
}

func NewFallbackActivityRepository(primary, secondary ActivityLogRepository, logger *logrus.Logger) *FallbackActivityRepository {
	return &FallbackActivityRepository{primary: primary, secondary: secondary, logger: logger}
}

func (f *FallbackActivityRepository) Append(ctx context.Context, entry *models.ActivityLogEntry) (*models.ActivityLogEntry, error) {
	return failover(f.logger, "activity", "append",
		func() (*models.ActivityLogEntry, error) { return f.primary.Append(ctx, entry) },
		func() (*models.ActivityLogEntry, error) { return f.secondary.Append(ctx, entry) })
}

func (f *FallbackActivityRepository) Recent(ctx context.Context, limit int) ([]models.ActivityLogEntry, error) {
	return failover(f.logger, "activity", "recent",
		func() ([]models.ActivityLogEntry, error) { return f.primary.Recent(ctx, limit) },
		func() ([]models.ActivityLogEntry, error) { return f.secondary.Recent(ctx, limit) })
}

func (f *FallbackActivityRepository) ByEntity(ctx context.Context, entityType, entityID string, limit int) ([]models.ActivityLogEntry, error) {
	return failover(f.logger, "activity", "byEntity",
		func() ([]models.ActivityLogEntry, error) { return f.primary.ByEntity(ctx, entityType, entityID, limit) },
		func() ([]models.ActivityLogEntry, error) { return f.secondary.ByEntity(ctx, entityType, entityID, limit) })
}

func (f *FallbackActivityRepository) ByActor(ctx context.Context, actorID primitive.ObjectID, limit int) ([]models.ActivityLogEntry, error) {
	return failover(f.logger, "activity", "byActor",
		func() ([]models.ActivityLogEntry, error) { return f.primary.ByActor(ctx, actorID, limit) },
		func() ([]models.ActivityLogEntry, error) { return f.secondary.ByActor(ctx, actorID, limit) })
}

type FallbackNotificationRepository struct {
	primary   NotificationRepository
	secondary NotificationRepository
	logger    *logrus.Logger
}

func NewFallbackNotificationRepository(primary, secondary NotificationRepository, logger *logrus.Logger) *FallbackNotificationRepository {
	return &FallbackNotificationRepository{primary: primary, secondary: secondary, logger: logger}
}

func (f *FallbackNotificationRepository) Get(ctx context.Context, id primitive.ObjectID) (*models.Notification, error) {
	return failover(f.logger, "notification", "get",
		func() (*models.Notification, error) { return f.primary.Get(ctx, id) },
		func() (*models.Notification, error) { return f.secondary.Get(ctx, id) })
}

func (f *FallbackNotificationRepository) Create(ctx context.Context, n *models.Notification) (*models.Notification, error) {
	return failover(f.logger, "notification", "create",
		func() (*models.Notification, error) { return f.primary.Create(ctx, n) },
		func() (*models.Notification, error) { return f.secondary.Create(ctx, n) })
}

func (f *FallbackNotificationRepository) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, error) {
	return failover(f.logger, "notification", "listByUser",
		func() ([]models.Notification, error) { return f.primary.ListByUser(ctx, userID) },
		func() ([]models.Notification, error) { return f.secondary.ListByUser(ctx, userID) })
}

func (f *FallbackNotificationRepository) UnreadCount(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return failover(f.logger, "notification", "unreadCount",
		func() (int64, error) { return f.primary.UnreadCount(ctx, userID) },
		func() (int64, error) { return f.secondary.UnreadCount(ctx, userID) })
}

func (f *FallbackNotificationRepository) MarkRead(ctx context.Context, id primitive.ObjectID) (*models.Notification, error) {
	return failover(f.logger, "notification", "markRead",
		func() (*models.Notification, error) { return f.primary.MarkRead(ctx, id) },
		func() (*models.Notification, error) { return f.secondary.MarkRead(ctx, id) })
}

func (f *FallbackNotificationRepository) MarkAllRead(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return failover(f.logger, "notification", "markAllRead",
		func() (int64, error) { return f.primary.MarkAllRead(ctx, userID) },
		func() (int64, error) { return f.secondary.MarkAllRead(ctx, userID) })
}

func (f *FallbackNotificationRepository) ExistsForEvent(ctx context.Context, eventKey string) (bool, error) {
	return failover(f.logger, "notification", "existsForEvent",
		func() (bool, error) { return f.primary.ExistsForEvent(ctx, eventKey) },
		func() (bool, error) { return f.secondary.ExistsForEvent(ctx, eventKey) })
}

type FallbackEmailJobRepository struct {
	primary   EmailJobRepository
	secondary EmailJobRepository
	logger    *logrus.Logger
}

func NewFallbackEmailJobRepository(primary, secondary EmailJobRepository, logger *logrus.Logger) *FallbackEmailJobRepository {
	return &FallbackEmailJobRepository{primary: primary, secondary: secondary, logger: logger}
}

func (f *FallbackEmailJobRepository) Get(ctx context.Context, id string) (*models.EmailJob, error) {
	return failover(f.logger, "emailJob", "get",
		func() (*models.EmailJob, error) { return f.primary.Get(ctx, id) },
		func() (*models.EmailJob, error) { return f.secondary.Get(ctx, id) })
}

func (f *FallbackEmailJobRepository) Create(ctx context.Context, job *models.EmailJob) (*models.EmailJob, error) {
	return failover(f.logger, "emailJob", "create",
		func() (*models.EmailJob, error) { return f.primary.Create(ctx, job) },
		func() (*models.EmailJob, error) { return f.secondary.Create(ctx, job) })
}

func (f *FallbackEmailJobRepository) SetStatus(ctx context.Context, id string, status models.EmailJobStatus, attempts int, lastError string) error {
	return failoverErr(f.logger, "emailJob", "setStatus",
		func() error { return f.primary.SetStatus(ctx, id, status, attempts, lastError) },
		func() error { return f.secondary.SetStatus(ctx, id, status, attempts, lastError) })
}

func (f *FallbackEmailJobRepository) ListByStatus(ctx context.Context, status models.EmailJobStatus) ([]models.EmailJob, error) {
	return failover(f.logger, "emailJob", "listByStatus",
		func() ([]models.EmailJob, error) { return f.primary.ListByStatus(ctx, status) },
		func() ([]models.EmailJob, error) { return f.secondary.ListByStatus(ctx, status) })
}

type FallbackWidgetRepository struct {
	primary   WidgetConfigRepository
	secondary WidgetConfigRepository
	logger    *logrus.Logger
}

func NewFallbackWidgetRepository(primary, secondary WidgetConfigRepository, logger *logrus.Logger) *FallbackWidgetRepository {
	return &FallbackWidgetRepository{primary: primary, secondary: secondary, logger: logger}
}

func (f *FallbackWidgetRepository) GetByUser(ctx context.Context, userID primitive.ObjectID) (*models.WidgetConfig, error) {
	return failover(f.logger, "widgetConfig", "getByUser",
		func() (*models.WidgetConfig, error) { return f.primary.GetByUser(ctx, userID) },
		func() (*models.WidgetConfig, error) { return f.secondary.GetByUser(ctx, userID) })
}

func (f *FallbackWidgetRepository) Create(ctx context.Context, cfg *models.WidgetConfig) (*models.WidgetConfig, error) {
	return failover(f.logger, "widgetConfig", "create",
		func() (*models.WidgetConfig, error) { return f.primary.Create(ctx, cfg) },
		func() (*models.WidgetConfig, error) { return f.secondary.Create(ctx, cfg) })
}

func (f *FallbackWidgetRepository) Replace(ctx context.Context, cfg *models.WidgetConfig) (*models.WidgetConfig, error) {
	return failover(f.logger, "widgetConfig", "replace",
		func() (*models.WidgetConfig, error) { return f.primary.Replace(ctx, cfg) },
		func() (*models.WidgetConfig, error) { return f.secondary.Replace(ctx, cfg) })
}
