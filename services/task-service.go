package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"project-pulse/microservices/dashboard-service/models"
	"project-pulse/microservices/dashboard-service/repositories"
)

const entityTask = "task"

// TaskService orchestrates task mutations: every successful write is
// followed by an activity entry and, where the event table calls for it,
// a notification fan-out. The three steps are separate operations with
// at-least-once semantics; a failed side effect is logged, never allowed
// to fail the already-applied mutation.
type TaskService struct {
	tasks    repositories.TaskRepository
	projects repositories.ProjectRepository
	users    repositories.UserRepository
	activity *ActivityService
	notifier *NotificationService
	logger   *logrus.Logger
}

func NewTaskService(tasks repositories.TaskRepository, projects repositories.ProjectRepository, users repositories.UserRepository, activity *ActivityService, notifier *NotificationService, logger *logrus.Logger) *TaskService {
	return &TaskService{
		tasks:    tasks,
		projects: projects,
		users:    users,
		activity: activity,
		notifier: notifier,
		logger:   logger,
	}
}

func (s *TaskService) GetTask(ctx context.Context, id primitive.ObjectID) (*models.Task, error) {
	return s.tasks.Get(ctx, id)
}

func (s *TaskService) ListTasks(ctx context.Context, filter repositories.TaskFilter) ([]models.Task, error) {
	return s.tasks.List(ctx, filter)
}

func (s *TaskService) CreateTask(ctx context.Context, actor models.User, task models.Task) (*models.Task, error) {
	if task.Title == "" {
		return nil, &repositories.ValidationError{Reason: "task title is required"}
	}
	if task.ProjectID.IsZero() {
		return nil, &repositories.ValidationError{Reason: "task project id is required"}
	}
	if err := s.checkProjectExists(ctx, task.ProjectID); err != nil {
		return nil, err
	}
	if task.AssigneeID != nil {
		if err := s.checkUserExists(ctx, *task.AssigneeID); err != nil {
			return nil, err
		}
	}

	task.CreatedBy = actor.ID
	created, err := s.tasks.Create(ctx, &task)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.recordActivity(ctx, actor, models.ActionCreated, created.ID.Hex(), created.Title, "")

	if created.AssigneeID != nil {
		s.dispatch(ctx, Event{
			Type:        models.NotificationTaskAssigned,
			EntityType:  entityTask,
			EntityID:    created.ID.Hex(),
			EntityName:  created.Title,
			ActorName:   actor.Name,
			Recipients:  []primitive.ObjectID{*created.AssigneeID},
			DedupSuffix: fmt.Sprintf("%d", created.UpdatedAt.UnixNano()),
		})
	}
	return created, nil
}

func (s *TaskService) UpdateTask(ctx context.Context, actor models.User, id primitive.ObjectID, patch models.TaskPatch) (*models.Task, error) {
	if patch.AssigneeID != nil && patch.ClearAssignee {
		return nil, &repositories.ValidationError{Reason: "cannot set and clear the assignee in one patch"}
	}
	if patch.Title != nil && *patch.Title == "" {
		return nil, &repositories.ValidationError{Reason: "task title cannot be empty"}
	}
	if patch.AssigneeID != nil {
		if err := s.checkUserExists(ctx, *patch.AssigneeID); err != nil {
			return nil, err
		}
	}

	prior, err := s.tasks.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updated, err := s.tasks.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	action := models.ActionUpdated
	assigneeChanged := patch.AssigneeID != nil && (prior.AssigneeID == nil || *prior.AssigneeID != *patch.AssigneeID)
	switch {
	case patch.Status != nil && *patch.Status == models.StatusCompleted && prior.Status != models.StatusCompleted:
		action = models.ActionCompleted
	case assigneeChanged:
		action = models.ActionAssigned
	}
	s.recordActivity(ctx, actor, action, updated.ID.Hex(), updated.Title, "")

	if assigneeChanged {
		s.dispatch(ctx, Event{
			Type:        models.NotificationTaskAssigned,
			EntityType:  entityTask,
			EntityID:    updated.ID.Hex(),
			EntityName:  updated.Title,
			ActorName:   actor.Name,
			Recipients:  []primitive.ObjectID{*patch.AssigneeID},
			DedupSuffix: fmt.Sprintf("%d", updated.UpdatedAt.UnixNano()),
		})
	}
	return updated, nil
}

func (s *TaskService) DeleteTask(ctx context.Context, actor models.User, id primitive.ObjectID) error {
	prior, err := s.tasks.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.tasks.Delete(ctx, id); err != nil {
		return err
	}

	s.recordActivity(ctx, actor, models.ActionDeleted, prior.ID.Hex(), prior.Title, "")
	return nil
}

// Comment records a comment on the task and notifies the current
// assignee unless the commenter is the assignee.
func (s *TaskService) Comment(ctx context.Context, actor models.User, id primitive.ObjectID, comment string) error {
	if comment == "" {
		return &repositories.ValidationError{Reason: "comment text is required"}
	}

	task, err := s.tasks.Get(ctx, id)
	if err != nil {
		return err
	}

	s.recordActivity(ctx, actor, models.ActionCommented, task.ID.Hex(), task.Title, comment)

	if task.AssigneeID != nil && *task.AssigneeID != actor.ID {
		s.dispatch(ctx, Event{
			Type:        models.NotificationCommentAdded,
			EntityType:  entityTask,
			EntityID:    task.ID.Hex(),
			EntityName:  task.Title,
			ActorName:   actor.Name,
			Recipients:  []primitive.ObjectID{*task.AssigneeID},
			Detail:      comment,
			DedupSuffix: fmt.Sprintf("%d", time.Now().UnixNano()),
		})
	}
	return nil
}

// CheckDeadlines notifies assignees of unfinished tasks due within one
// or three days. Each window dedups independently, so a task first
// reported at three days out is reported again when it is a day away.
func (s *TaskService) CheckDeadlines(ctx context.Context) error {
	now := time.Now()
	cutoff := now.Add(3 * 24 * time.Hour)

	candidates, err := s.tasks.List(ctx, repositories.TaskFilter{DueBefore: &cutoff})
	if err != nil {
		return fmt.Errorf("failed to list tasks for deadline check: %w", err)
	}

	for _, task := range candidates {
		if task.Status == models.StatusCompleted || task.AssigneeID == nil {
			continue
		}
		if task.Deadline.Before(now) {
			continue
		}

		window, due := "3d", "in 3 days"
		if task.Deadline.Before(now.Add(24 * time.Hour)) {
			window, due = "1d", "tomorrow"
		}

		s.dispatch(ctx, Event{
			Type:        models.NotificationTaskDeadline,
			EntityType:  entityTask,
			EntityID:    task.ID.Hex(),
			EntityName:  task.Title,
			Recipients:  []primitive.ObjectID{*task.AssigneeID},
			Detail:      due,
			DedupSuffix: window,
		})
	}
	return nil
}

// RunDeadlineScanner sweeps on a fixed interval until ctx is cancelled.
func (s *TaskService) RunDeadlineScanner(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.CheckDeadlines(ctx); err != nil {
				s.logger.Warnf("Event ID: DEADLINE_SWEEP_FAILED, Description: %v", err)
			}
		}
	}
}

// checkProjectExists turns a missing project into a validation error;
// connectivity failures pass through untouched so they keep their class.
func (s *TaskService) checkProjectExists(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.projects.Get(ctx, id)
	if repositories.IsNotFound(err) {
		return &repositories.ValidationError{Reason: fmt.Sprintf("project %s does not exist", id.Hex())}
	}
	return err
}

func (s *TaskService) checkUserExists(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.users.Get(ctx, id)
	if repositories.IsNotFound(err) {
		return &repositories.ValidationError{Reason: fmt.Sprintf("user %s does not exist", id.Hex())}
	}
	return err
}

func (s *TaskService) recordActivity(ctx context.Context, actor models.User, action models.ActivityAction, entityID, entityName, details string) {
	if _, err := s.activity.Record(ctx, actor, action, entityTask, entityID, entityName, details); err != nil {
		s.logger.Warnf("Event ID: ACTIVITY_RECORD_FAILED, Description: Could not record %s for task %s: %v", action, entityID, err)
	}
}

func (s *TaskService) dispatch(ctx context.Context, event Event) {
	if _, err := s.notifier.Notify(ctx, event); err != nil {
		s.logger.Warnf("Event ID: NOTIFY_FAILED, Description: Could not dispatch %s event for %s %s: %v", event.Type, event.EntityType, event.EntityID, err)
	}
}
