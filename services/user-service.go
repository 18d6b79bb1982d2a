package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"project-pulse/microservices/dashboard-service/models"
	"project-pulse/microservices/dashboard-service/repositories"
)

const entityUser = "user"

type UserService struct {
	users    repositories.UserRepository
	activity *ActivityService
	logger   *logrus.Logger
}

func NewUserService(users repositories.UserRepository, activity *ActivityService, logger *logrus.Logger) *UserService {
	return &UserService{users: users, activity: activity, logger: logger}
}

func (s *UserService) GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.users.Get(ctx, id)
}

func (s *UserService) ListUsers(ctx context.Context, filter repositories.UserFilter) ([]models.User, error) {
	return s.users.List(ctx, filter)
}

func (s *UserService) CreateUser(ctx context.Context, actor models.User, user models.User) (*models.User, error) {
	if user.Name == "" {
		return nil, &repositories.ValidationError{Reason: "user name is required"}
	}
	if !strings.Contains(user.Email, "@") {
		return nil, &repositories.ValidationError{Reason: "a valid email address is required"}
	}
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	if !models.ValidRole(user.Role) {
		return nil, &repositories.ValidationError{Reason: fmt.Sprintf("unknown role %q", user.Role)}
	}

	created, err := s.users.Create(ctx, &user)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.recordActivity(ctx, actor, models.ActionCreated, created.ID.Hex(), created.Name)
	return created, nil
}

func (s *UserService) UpdateUser(ctx context.Context, actor models.User, id primitive.ObjectID, patch models.UserPatch) (*models.User, error) {
	if patch.Email != nil && !strings.Contains(*patch.Email, "@") {
		return nil, &repositories.ValidationError{Reason: "a valid email address is required"}
	}
	if patch.Role != nil && !models.ValidRole(*patch.Role) {
		return nil, &repositories.ValidationError{Reason: fmt.Sprintf("unknown role %q", *patch.Role)}
	}

	updated, err := s.users.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	s.recordActivity(ctx, actor, models.ActionUpdated, updated.ID.Hex(), updated.Name)
	return updated, nil
}

func (s *UserService) DeleteUser(ctx context.Context, actor models.User, id primitive.ObjectID) error {
	prior, err := s.users.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}

	s.recordActivity(ctx, actor, models.ActionDeleted, prior.ID.Hex(), prior.Name)
	return nil
}

func (s *UserService) recordActivity(ctx context.Context, actor models.User, action models.ActivityAction, entityID, entityName string) {
	if _, err := s.activity.Record(ctx, actor, action, entityUser, entityID, entityName, ""); err != nil {
		s.logger.Warnf("Event ID: ACTIVITY_RECORD_FAILED, Description: Could not record %s for user %s: %v", action, entityID, err)
	}
}
