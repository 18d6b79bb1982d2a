package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"project-pulse/microservices/dashboard-service/models"
	"project-pulse/microservices/dashboard-service/repositories"
)

const entityTimeEntry = "time_entry"

type TimeEntryService struct {
	entries  repositories.TimeEntryRepository
	tasks    repositories.TaskRepository
	activity *ActivityService
	logger   *logrus.Logger
}

func NewTimeEntryService(entries repositories.TimeEntryRepository, tasks repositories.TaskRepository, activity *ActivityService, logger *logrus.Logger) *TimeEntryService {
	return &TimeEntryService{entries: entries, tasks: tasks, activity: activity, logger: logger}
}

func (s *TimeEntryService) GetEntry(ctx context.Context, id primitive.ObjectID) (*models.TimeEntry, error) {
	return s.entries.Get(ctx, id)
}

func (s *TimeEntryService) ListEntries(ctx context.Context, filter repositories.TimeEntryFilter) ([]models.TimeEntry, error) {
	return s.entries.List(ctx, filter)
}

// LogTime appends a time entry against an existing task.
func (s *TimeEntryService) LogTime(ctx context.Context, actor models.User, entry models.TimeEntry) (*models.TimeEntry, error) {
	if entry.Minutes <= 0 {
		return nil, &repositories.ValidationError{Reason: "minutes must be positive"}
	}
	if entry.UserID.IsZero() {
		return nil, &repositories.ValidationError{Reason: "time entry user id is required"}
	}

	task, err := s.tasks.Get(ctx, entry.TaskID)
	if repositories.IsNotFound(err) {
		return nil, &repositories.ValidationError{Reason: fmt.Sprintf("task %s does not exist", entry.TaskID.Hex())}
	}
	if err != nil {
		return nil, err
	}

	created, err := s.entries.Create(ctx, &entry)
	if err != nil {
		return nil, fmt.Errorf("failed to log time: %w", err)
	}

	details := fmt.Sprintf("%d minutes on %q", created.Minutes, task.Title)
	if _, err := s.activity.Record(ctx, actor, models.ActionCreated, entityTimeEntry, created.ID.Hex(), task.Title, details); err != nil {
		s.logger.Warnf("Event ID: ACTIVITY_RECORD_FAILED, Description: Could not record time entry %s: %v", created.ID.Hex(), err)
	}
	return created, nil
}

func (s *TimeEntryService) UpdateEntry(ctx context.Context, actor models.User, id primitive.ObjectID, patch models.TimeEntryPatch) (*models.TimeEntry, error) {
	if patch.Minutes != nil && *patch.Minutes <= 0 {
		return nil, &repositories.ValidationError{Reason: "minutes must be positive"}
	}

	updated, err := s.entries.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	if _, err := s.activity.Record(ctx, actor, models.ActionUpdated, entityTimeEntry, updated.ID.Hex(), "", ""); err != nil {
		s.logger.Warnf("Event ID: ACTIVITY_RECORD_FAILED, Description: Could not record update of time entry %s: %v", id.Hex(), err)
	}
	return updated, nil
}

func (s *TimeEntryService) DeleteEntry(ctx context.Context, actor models.User, id primitive.ObjectID) error {
	if err := s.entries.Delete(ctx, id); err != nil {
		return err
	}

	if _, err := s.activity.Record(ctx, actor, models.ActionDeleted, entityTimeEntry, id.Hex(), "", ""); err != nil {
		s.logger.Warnf("Event ID: ACTIVITY_RECORD_FAILED, Description: Could not record deletion of time entry %s: %v", id.Hex(), err)
	}
	return nil
}
