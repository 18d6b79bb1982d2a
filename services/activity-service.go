package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"project-pulse/microservices/dashboard-service/models"
	"project-pulse/microservices/dashboard-service/repositories"
)

// ActivityService records immutable audit entries for mutating
// operations. Entries are only ever appended; no edit or removal path
// exists through this service.
type ActivityService struct {
	repo   repositories.ActivityLogRepository
	logger *logrus.Logger
}

func NewActivityService(repo repositories.ActivityLogRepository, logger *logrus.Logger) *ActivityService {
	return &ActivityService{repo: repo, logger: logger}
}

// Record appends one audit entry. It is called synchronously right after
// a successful mutating repository call; the repo it writes through is
// the same facade that served the mutation, so the entry lands next to
// the mutated row.
func (s *ActivityService) Record(ctx context.Context, actor models.User, action models.ActivityAction, entityType, entityID, entityName, details string) (*models.ActivityLogEntry, error) {
	if actor.ID.IsZero() {
		return nil, &repositories.ValidationError{Reason: "actor id is required"}
	}
	if entityType == "" || entityID == "" {
		return nil, &repositories.ValidationError{Reason: "entity type and id are required"}
	}

	entry := &models.ActivityLogEntry{
		ActorID:    actor.ID,
		ActorName:  actor.Name,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		EntityName: entityName,
		Details:    details,
	}

	recorded, err := s.repo.Append(ctx, entry)
	if err != nil {
		return nil, fmt.Errorf("failed to record activity: %w", err)
	}
	s.logger.Infof("Event ID: ACTIVITY_RECORDED, Description: %s %s %s %q by %s", recorded.ActorName, recorded.Action, recorded.EntityType, recorded.EntityName, recorded.ActorID.Hex())
	return recorded, nil
}

func (s *ActivityService) Recent(ctx context.Context, limit int) ([]models.ActivityLogEntry, error) {
	return s.repo.Recent(ctx, normalizeLimit(limit))
}

func (s *ActivityService) ByEntity(ctx context.Context, entityType, entityID string, limit int) ([]models.ActivityLogEntry, error) {
	if entityType == "" || entityID == "" {
		return nil, &repositories.ValidationError{Reason: "entity type and id are required"}
	}
	return s.repo.ByEntity(ctx, entityType, entityID, normalizeLimit(limit))
}

func (s *ActivityService) ByActor(ctx context.Context, actorID primitive.ObjectID, limit int) ([]models.ActivityLogEntry, error) {
	if actorID.IsZero() {
		return nil, &repositories.ValidationError{Reason: "actor id is required"}
	}
	return s.repo.ByActor(ctx, actorID, normalizeLimit(limit))
}

func normalizeLimit(limit int) int {
	if limit <= 0 || limit > 200 {
		return 50
	}
	return limit
}
