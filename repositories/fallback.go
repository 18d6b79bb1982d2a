package repositories

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"project-pulse/microservices/dashboard-service/models"
)

// The fallback facades present one repository contract per entity while
// transparently tolerating durable-store outages. Every call attempts
// the primary first; only a ConnectivityError redirects to the
// secondary. Business errors (validation, not-found, conflict) propagate
// unchanged. The decision is made fresh per call — there is no sticky
// routing state and no circuit breaker here.

// failover runs primary, classifies a failure, and redirects to
// secondary when the failure is transient. When both backends fail the
// secondary's error is wrapped with context saying both were attempted.
func failover[T any](logger *logrus.Logger, entity, method string, primary, secondary func() (T, error)) (T, error) {
	result, err := primary()
	if err == nil || !IsConnectivity(err) {
		return result, err
	}

	logger.WithFields(logrus.Fields{
		"entity":     entity,
		"method":     method,
		"errorClass": "connectivity",
	}).Warnf("Event ID: STORE_FALLBACK, Description: Primary store unavailable for %s.%s, serving from fallback store: %v", entity, method, err)

	result, err = secondary()
	if err != nil {
		var zero T
		return zero, fmt.Errorf("%s.%s: both primary and fallback stores failed: %w", entity, method, err)
	}
	return result, nil
}

// failoverErr is failover for methods that return only an error.
func failoverErr(logger *logrus.Logger, entity, method string, primary, secondary func() error) error {
	_, err := failover(logger, entity, method, func() (struct{}, error) {
		return struct{}{}, primary()
	}, func() (struct{}, error) {
		return struct{}{}, secondary()
	})
	return err
}

type FallbackUserRepository struct {
	primary   UserRepository
	secondary UserRepository
	logger    *logrus.Logger
}

func NewFallbackUserRepository(primary, secondary UserRepository, logger *logrus.Logger) *FallbackUserRepository {
	return &FallbackUserRepository{primary: primary, secondary: secondary, logger: logger}
}

func (f *FallbackUserRepository) Get(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return failover(f.logger, "user", "get",
		func() (*models.User, error) { return f.primary.Get(ctx, id) },
		func() (*models.User, error) { return f.secondary.Get(ctx, id) })
}

func (f *FallbackUserRepository) List(ctx context.Context, filter UserFilter) ([]models.User, error) {
	return failover(f.logger, "user", "list",
		func() ([]models.User, error) { return f.primary.List(ctx, filter) },
		func() ([]models.User, error) { return f.secondary.List(ctx, filter) })
}

func (f *FallbackUserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	return failover(f.logger, "user", "create",
		func() (*models.User, error) { return f.primary.Create(ctx, user) },
		func() (*models.User, error) { return f.secondary.Create(ctx, user) })
}

func (f *FallbackUserRepository) Update(ctx context.Context, id primitive.ObjectID, patch models.UserPatch) (*models.User, error) {
	return failover(f.logger, "user", "update",
		func() (*models.User, error) { return f.primary.Update(ctx, id, patch) },
		func() (*models.User, error) { return f.secondary.Update(ctx, id, patch) })
}

func (f *FallbackUserRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return failoverErr(f.logger, "user", "delete",
		func() error { return f.primary.Delete(ctx, id) },
		func() error { return f.secondary.Delete(ctx, id) })
}

type FallbackProjectRepository struct {
	primary   ProjectRepository
	secondary ProjectRepository
	logger    *logrus.Logger
}

func NewFallbackProjectRepository(primary, secondary ProjectRepository, logger *logrus.Logger) *FallbackProjectRepository {
	return &FallbackProjectRepository{primary: primary, secondary: secondary, logger: logger}
}

func (f *FallbackProjectRepository) Get(ctx context.Context, id primitive.ObjectID) (*models.Project, error) {
	return failover(f.logger, "project", "get",
		func() (*models.Project, error) { return f.primary.Get(ctx, id) },
		func() (*models.Project, error) { return f.secondary.Get(ctx, id) })
}

func (f *FallbackProjectRepository) List(ctx context.Context, filter ProjectFilter) ([]models.Project, error) {
	return failover(f.logger, "project", "list",
		func() ([]models.Project, error) { return f.primary.List(ctx, filter) },
		func() ([]models.Project, error) { return f.secondary.List(ctx, filter) })
}

func (f *FallbackProjectRepository) Create(ctx context.Context, project *models.Project) (*models.Project, error) {
	return failover(f.logger, "project", "create",
		func() (*models.Project, error) { return f.primary.Create(ctx, project) },
		func() (*models.Project, error) { return f.secondary.Create(ctx, project) })
}

func (f *FallbackProjectRepository) Update(ctx context.Context, id primitive.ObjectID, patch models.ProjectPatch) (*models.Project, error) {
	return failover(f.logger, "project", "update",
		func() (*models.Project, error) { return f.primary.Update(ctx, id, patch) },
		func() (*models.Project, error) { return f.secondary.Update(ctx, id, patch) })
}

func (f *FallbackProjectRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return failoverErr(f.logger, "project", "delete",
		func() error { return f.primary.Delete(ctx, id) },
		func() error { return f.secondary.Delete(ctx, id) })
}

type FallbackTaskRepository struct {
	primary   TaskRepository
	secondary TaskRepository
	logger    *logrus.Logger
}

func NewFallbackTaskRepository(primary, secondary TaskRepository, logger *logrus.Logger) *FallbackTaskRepository {
	return &FallbackTaskRepository{primary: primary, secondary: secondary, logger: logger}
}

func (f *FallbackTaskRepository) Get(ctx context.Context, id primitive.ObjectID) (*models.Task, error) {
	return failover(f.logger, "task", "get",
		func() (*models.Task, error) { return f.primary.Get(ctx, id) },
		func() (*models.Task, error) { return f.secondary.Get(ctx, id) })
}

func (f *FallbackTaskRepository) List(ctx context.Context, filter TaskFilter) ([]models.Task, error) {
	return failover(f.logger, "task", "list",
		func() ([]models.Task, error) { return f.primary.List(ctx, filter) },
		func() ([]models.Task, error) { return f.secondary.List(ctx, filter) })
}

func (f *FallbackTaskRepository) Create(ctx context.Context, task *models.Task) (*models.Task, error) {
	return failover(f.logger, "task", "create",
		func() (*models.Task, error) { return f.primary.Create(ctx, task) },
		func() (*models.Task, error) { return f.secondary.Create(ctx, task) })
}

func (f *FallbackTaskRepository) Update(ctx context.Context, id primitive.ObjectID, patch models.TaskPatch) (*models.Task, error) {
	return failover(f.logger, "task", "update",
		func() (*models.Task, error) { return f.primary.Update(ctx, id, patch) },
		func() (*models.Task, error) { return f.secondary.Update(ctx, id, patch) })
}

func (f *FallbackTaskRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return failoverErr(f.logger, "task", "delete",
		func() error { return f.primary.Delete(ctx, id) },
		func() error { return f.secondary.Delete(ctx, id) })
}

type FallbackTimeEntryRepository struct {
	primary   TimeEntryRepository
	secondary TimeEntryRepository
	logger    *logrus.Logger
}

func NewFallbackTimeEntryRepository(primary, secondary TimeEntryRepository, logger *logrus.Logger) *FallbackTimeEntryRepository {
	return &FallbackTimeEntryRepository{primary: primary, secondary: secondary, logger: logger}
}

func (f *FallbackTimeEntryRepository) Get(ctx context.Context, id primitive.ObjectID) (*models.TimeEntry, error) {
	return failover(f.logger, "timeEntry", "get",
		func() (*models.TimeEntry, error) { return f.primary.Get(ctx, id) },
		func() (*models.TimeEntry, error) { return f.secondary.Get(ctx, id) })
}

func (f *FallbackTimeEntryRepository) List(ctx context.Context, filter TimeEntryFilter) ([]models.TimeEntry, error) {
	return failover(f.logger, "timeEntry", "list",
		func() ([]models.TimeEntry, error) { return f.primary.List(ctx, filter) },
		func() ([]models.TimeEntry, error) { return f.secondary.List(ctx, filter) })
}

func (f *FallbackTimeEntryRepository) Create(ctx context.Context, entry *models.TimeEntry) (*models.TimeEntry, error) {
	return failover(f.logger, "timeEntry", "create",
		func() (*models.TimeEntry, error) { return f.primary.Create(ctx, entry) },
		func() (*models.TimeEntry, error) { return f.secondary.Create(ctx, entry) })
}

func (f *FallbackTimeEntryRepository) Update(ctx context.Context, id primitive.ObjectID, patch models.TimeEntryPatch) (*models.TimeEntry, error) {
	return failover(f.logger, "timeEntry", "update",
		func() (*models.TimeEntry, error) { return f.primary.Update(ctx, id, patch) },
		func() (*models.TimeEntry, error) { return f.secondary.Update(ctx, id, patch) })
}

func (f *FallbackTimeEntryRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return failoverErr(f.logger, "timeEntry", "delete",
		func() error { return f.primary.Delete(ctx, id) },
		func() error { return f.secondary.Delete(ctx, id) })
}
