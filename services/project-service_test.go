package services

import (
	"context"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"project-pulse/microservices/dashboard-service/models"
	"project-pulse/microservices/dashboard-service/repositories"
)

func newProjectFixture(t *testing.T) (*repositories.MemoryStore, *ProjectService, models.User) {
	t.Helper()
	store := repositories.NewMemoryStore()
	logger := quietLogger()

	emails := NewEmailService(store.EmailJobs(), &fakeMailer{}, logger, 1, 16, 3, time.Millisecond)
	activity := NewActivityService(store.Activity(), logger)
	notifier := NewNotificationService(store.Notifications(), store.Users(), emails, logger)
	service := NewProjectService(store.Projects(), activity, notifier, logger)

	actor, err := store.Users().Create(context.Background(), &models.User{Name: "Mila", Email: "mila@example.com", Role: models.RoleAdmin})
	if err != nil {
		t.Fatalf("Seeding actor failed: %v", err)
	}
	return store, service, *actor
}

func TestProjectService_CreateDefaultsAndValidation(t *testing.T) {
	_, svc, actor := newProjectFixture(t)
	ctx := context.Background()

	created, err := svc.CreateProject(ctx, actor, models.Project{Name: "Website"})
	if err != nil {
		t.Fatalf("CreateProject failed: %v", err)
	}
	if created.Status != models.ProjectPlanning {
		t.Errorf("Expected the planning default, got %s", created.Status)
	}
	if created.CreatedBy != actor.ID {
		t.Errorf("Expected CreatedBy to be the actor, got %s", created.CreatedBy.Hex())
	}

	if _, err := svc.CreateProject(ctx, actor, models.Project{}); !repositories.IsValidation(err) {
		t.Errorf("Expected ValidationError for a missing name, got %v", err)
	}
	if _, err := svc.CreateProject(ctx, actor, models.Project{Name: "x", Progress: 120}); !repositories.IsValidation(err) {
		t.Errorf("Expected ValidationError for out-of-range progress, got %v", err)
	}
}

func TestProjectService_UpdateBroadcastsToRecipients(t *testing.T) {
	store, svc, actor := newProjectFixture(t)
	ctx := context.Background()

	memberA, err := store.Users().Create(ctx, &models.User{Name: "Ana", Email: "ana@example.com"})
	if err != nil {
		t.Fatalf("Seeding user failed: %v", err)
	}
	memberB, err := store.Users().Create(ctx, &models.User{Name: "Ben", Email: "ben@example.com"})
	if err != nil {
		t.Fatalf("Seeding user failed: %v", err)
	}

	created, err := svc.CreateProject(ctx, actor, models.Project{Name: "Website"})
	if err != nil {
		t.Fatalf("CreateProject failed: %v", err)
	}

	progress := 40
	if _, err := svc.UpdateProject(ctx, actor, created.ID, models.ProjectPatch{Progress: &progress}, []primitive.ObjectID{memberA.ID, memberB.ID}); err != nil {
		t.Fatalf("UpdateProject failed: %v", err)
	}

	for _, member := range []primitive.ObjectID{memberA.ID, memberB.ID} {
		notifications, err := store.Notifications().ListByUser(ctx, member)
		if err != nil {
			t.Fatalf("ListByUser failed: %v", err)
		}
		if len(notifications) != 1 || notifications[0].Type != models.NotificationProjectUpdate {
			t.Errorf("Expected one project_update for %s, got %+v", member.Hex(), notifications)
		}
	}

	// An update with no recipients stays silent.
	progress = 50
	if _, err := svc.UpdateProject(ctx, actor, created.ID, models.ProjectPatch{Progress: &progress}, nil); err != nil {
		t.Fatalf("UpdateProject failed: %v", err)
	}
	notifications, err := store.Notifications().ListByUser(ctx, memberA.ID)
	if err != nil {
		t.Fatalf("ListByUser failed: %v", err)
	}
	if len(notifications) != 1 {
		t.Errorf("Expected no broadcast without recipients, got %d", len(notifications))
	}
}

func TestProjectService_CompletionRecordedAsCompleted(t *testing.T) {
	store, svc, actor := newProjectFixture(t)
	ctx := context.Background()

	created, err := svc.CreateProject(ctx, actor, models.Project{Name: "Website"})
	if err != nil {
		t.Fatalf("CreateProject failed: %v", err)
	}

	done := models.ProjectCompleted
	if _, err := svc.UpdateProject(ctx, actor, created.ID, models.ProjectPatch{Status: &done}, nil); err != nil {
		t.Fatalf("UpdateProject failed: %v", err)
	}

	entries, err := store.Activity().ByEntity(ctx, "project", created.ID.Hex(), 0)
	if err != nil {
		t.Fatalf("ByEntity failed: %v", err)
	}
	if entries[0].Action != models.ActionCompleted {
		t.Errorf("Expected a completed entry, got %s", entries[0].Action)
	}
}
