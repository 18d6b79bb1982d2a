package services

import (
	"context"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"project-pulse/microservices/dashboard-service/models"
	"project-pulse/microservices/dashboard-service/repositories"
)

func TestActivityService_RecordAndQuery(t *testing.T) {
	svc := NewActivityService(repositories.NewMemoryStore().Activity(), quietLogger())
	ctx := context.Background()
	actor := models.User{ID: primitive.NewObjectID(), Name: "Mila"}

	taskID := primitive.NewObjectID().Hex()
	recorded, err := svc.Record(ctx, actor, models.ActionCreated, "task", taskID, "Ship the release", "")
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if recorded.ID.IsZero() || recorded.Timestamp.IsZero() {
		t.Errorf("Expected id and timestamp on the recorded entry: %+v", recorded)
	}
	if recorded.ActorName != "Mila" || recorded.Action != models.ActionCreated {
		t.Errorf("Unexpected entry: %+v", recorded)
	}

	if _, err := svc.Record(ctx, actor, models.ActionCommented, "task", taskID, "Ship the release", "looks good"); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if _, err := svc.Record(ctx, actor, models.ActionDeleted, "project", primitive.NewObjectID().Hex(), "Website", ""); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	byEntity, err := svc.ByEntity(ctx, "task", taskID, 0)
	if err != nil {
		t.Fatalf("ByEntity failed: %v", err)
	}
	if len(byEntity) != 2 {
		t.Fatalf("Expected 2 entries for the task, got %d", len(byEntity))
	}
	// Newest first: the comment came after the creation.
	if byEntity[0].Action != models.ActionCommented || byEntity[1].Action != models.ActionCreated {
		t.Errorf("Expected newest-first order, got %s then %s", byEntity[0].Action, byEntity[1].Action)
	}

	byActor, err := svc.ByActor(ctx, actor.ID, 0)
	if err != nil {
		t.Fatalf("ByActor failed: %v", err)
	}
	if len(byActor) != 3 {
		t.Errorf("Expected 3 entries for the actor, got %d", len(byActor))
	}
}

func TestActivityService_EntriesSurviveEntityDeletion(t *testing.T) {
	store := repositories.NewMemoryStore()
	svc := NewActivityService(store.Activity(), quietLogger())
	ctx := context.Background()
	actor := models.User{ID: primitive.NewObjectID(), Name: "Mila"}

	task, err := store.Tasks().Create(ctx, &models.Task{Title: "t", ProjectID: primitive.NewObjectID()})
	if err != nil {
		t.Fatalf("Create task failed: %v", err)
	}
	if _, err := svc.Record(ctx, actor, models.ActionCreated, "task", task.ID.Hex(), task.Title, ""); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	if err := store.Tasks().Delete(ctx, task.ID); err != nil {
		t.Fatalf("Delete task failed: %v", err)
	}

	entries, err := svc.ByEntity(ctx, "task", task.ID.Hex(), 0)
	if err != nil {
		t.Fatalf("ByEntity failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("Expected the audit trail to outlive the task, got %d entries", len(entries))
	}
}

func TestActivityService_RecordValidation(t *testing.T) {
	svc := NewActivityService(repositories.NewMemoryStore().Activity(), quietLogger())
	ctx := context.Background()

	if _, err := svc.Record(ctx, models.User{}, models.ActionCreated, "task", "x", "", ""); !repositories.IsValidation(err) {
		t.Errorf("Expected ValidationError for a zero actor, got %v", err)
	}
	actor := models.User{ID: primitive.NewObjectID()}
	if _, err := svc.Record(ctx, actor, models.ActionCreated, "", "x", "", ""); !repositories.IsValidation(err) {
		t.Errorf("Expected ValidationError for a missing entity type, got %v", err)
	}
}

func TestActivityService_LimitIsNormalized(t *testing.T) {
	svc := NewActivityService(repositories.NewMemoryStore().Activity(), quietLogger())
	ctx := context.Background()
	actor := models.User{ID: primitive.NewObjectID(), Name: "Mila"}

	for i := 0; i < 60; i++ {
		if _, err := svc.Record(ctx, actor, models.ActionUpdated, "task", "same", "", ""); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	// Out-of-range limits collapse to the default page size.
	recent, err := svc.Recent(ctx, -5)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(recent) != 50 {
		t.Errorf("Expected the default limit of 50, got %d", len(recent))
	}

	capped, err := svc.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(capped) != 10 {
		t.Errorf("Expected 10 entries, got %d", len(capped))
	}
}
