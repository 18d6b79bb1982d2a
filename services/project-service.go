package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"project-pulse/microservices/dashboard-service/models"
	"project-pulse/microservices/dashboard-service/repositories"
)

const entityProject = "project"

// ProjectService orchestrates project mutations and their side effects.
type ProjectService struct {
	projects repositories.ProjectRepository
	activity *ActivityService
	notifier *NotificationService
	logger   *logrus.Logger
}

func NewProjectService(projects repositories.ProjectRepository, activity *ActivityService, notifier *NotificationService, logger *logrus.Logger) *ProjectService {
	return &ProjectService{
		projects: projects,
		activity: activity,
		notifier: notifier,
		logger:   logger,
	}
}

func (s *ProjectService) GetProject(ctx context.Context, id primitive.ObjectID) (*models.Project, error) {
	return s.projects.Get(ctx, id)
}

func (s *ProjectService) ListProjects(ctx context.Context, filter repositories.ProjectFilter) ([]models.Project, error) {
	return s.projects.List(ctx, filter)
}

func (s *ProjectService) CreateProject(ctx context.Context, actor models.User, project models.Project) (*models.Project, error) {
	if project.Name == "" {
		return nil, &repositories.ValidationError{Reason: "project name is required"}
	}
	if project.Progress < 0 || project.Progress > 100 {
		return nil, &repositories.ValidationError{Reason: "project progress must be between 0 and 100"}
	}
	if project.Status == "" {
		project.Status = models.ProjectPlanning
	}

	project.CreatedBy = actor.ID
	created, err := s.projects.Create(ctx, &project)
	if err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	s.recordActivity(ctx, actor, models.ActionCreated, created.ID.Hex(), created.Name, "")
	return created, nil
}

// UpdateProject applies the patch and, when the caller names explicit
// recipients, broadcasts a project_update notification to them.
func (s *ProjectService) UpdateProject(ctx context.Context, actor models.User, id primitive.ObjectID, patch models.ProjectPatch, notify []primitive.ObjectID) (*models.Project, error) {
	if patch.Name != nil && *patch.Name == "" {
		return nil, &repositories.ValidationError{Reason: "project name cannot be empty"}
	}
	if patch.Progress != nil && (*patch.Progress < 0 || *patch.Progress > 100) {
		return nil, &repositories.ValidationError{Reason: "project progress must be between 0 and 100"}
	}

	updated, err := s.projects.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	action := models.ActionUpdated
	if patch.Status != nil && *patch.Status == models.ProjectCompleted {
		action = models.ActionCompleted
	}
	s.recordActivity(ctx, actor, action, updated.ID.Hex(), updated.Name, "")

	if len(notify) > 0 {
		if _, err := s.notifier.Notify(ctx, Event{
			Type:        models.NotificationProjectUpdate,
			EntityType:  entityProject,
			EntityID:    updated.ID.Hex(),
			EntityName:  updated.Name,
			ActorName:   actor.Name,
			Recipients:  notify,
			DedupSuffix: fmt.Sprintf("%d", updated.UpdatedAt.UnixNano()),
		}); err != nil {
			s.logger.Warnf("Event ID: NOTIFY_FAILED, Description: Could not broadcast update of project %s: %v", updated.ID.Hex(), err)
		}
	}
	return updated, nil
}

func (s *ProjectService) DeleteProject(ctx context.Context, actor models.User, id primitive.ObjectID) error {
	prior, err := s.projects.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.projects.Delete(ctx, id); err != nil {
		return err
	}

	s.recordActivity(ctx, actor, models.ActionDeleted, prior.ID.Hex(), prior.Name, "")
	return nil
}

func (s *ProjectService) recordActivity(ctx context.Context, actor models.User, action models.ActivityAction, entityID, entityName, details string) {
	if _, err := s.activity.Record(ctx, actor, action, entityProject, entityID, entityName, details); err != nil {
		s.logger.Warnf("Event ID: ACTIVITY_RECORD_FAILED, Description: Could not record %s for project %s: %v", action, entityID, err)
	}
}
