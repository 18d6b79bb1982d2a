package services

import (
	"context"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"project-pulse/microservices/dashboard-service/models"
	"project-pulse/microservices/dashboard-service/repositories"
)

type taskFixture struct {
	store    *repositories.MemoryStore
	service  *TaskService
	actor    models.User
	assignee models.User
	project  models.Project
}

func newTaskFixture(t *testing.T) *taskFixture {
	t.Helper()
	ctx := context.Background()
	store := repositories.NewMemoryStore()
	logger := quietLogger()

	emails := NewEmailService(store.EmailJobs(), &fakeMailer{}, logger, 1, 16, 3, time.Millisecond)
	activity := NewActivityService(store.Activity(), logger)
	notifier := NewNotificationService(store.Notifications(), store.Users(), emails, logger)
	service := NewTaskService(store.Tasks(), store.Projects(), store.Users(), activity, notifier, logger)

	actor, err := store.Users().Create(ctx, &models.User{Name: "Mila", Email: "mila@example.com", Role: models.RoleAdmin})
	if err != nil {
		t.Fatalf("Seeding actor failed: %v", err)
	}
	assignee, err := store.Users().Create(ctx, &models.User{Name: "Ana", Email: "ana@example.com", Role: models.RoleTeam})
	if err != nil {
		t.Fatalf("Seeding assignee failed: %v", err)
	}
	project, err := store.Projects().Create(ctx, &models.Project{Name: "Website", Status: models.ProjectActive})
	if err != nil {
		t.Fatalf("Seeding project failed: %v", err)
	}

	return &taskFixture{store: store, service: service, actor: *actor, assignee: *assignee, project: *project}
}

func TestTaskService_CreateWithAssigneeFansOut(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()

	created, err := f.service.CreateTask(ctx, f.actor, models.Task{
		Title:      "Ship the release",
		ProjectID:  f.project.ID,
		AssigneeID: &f.assignee.ID,
	})
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	if created.CreatedBy != f.actor.ID {
		t.Errorf("Expected CreatedBy to be the actor, got %s", created.CreatedBy.Hex())
	}

	entries, err := f.store.Activity().ByEntity(ctx, "task", created.ID.Hex(), 0)
	if err != nil {
		t.Fatalf("ByEntity failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Action != models.ActionCreated {
		t.Errorf("Expected one created activity entry, got %+v", entries)
	}

	notifications, err := f.store.Notifications().ListByUser(ctx, f.assignee.ID)
	if err != nil {
		t.Fatalf("ListByUser failed: %v", err)
	}
	if len(notifications) != 1 || notifications[0].Type != models.NotificationTaskAssigned {
		t.Fatalf("Expected one task_assigned notification, got %+v", notifications)
	}

	jobs, err := f.store.EmailJobs().ListByStatus(ctx, models.EmailQueued)
	if err != nil {
		t.Fatalf("ListByStatus failed: %v", err)
	}
	if len(jobs) != 1 || jobs[0].Recipient != f.assignee.Email {
		t.Errorf("Expected one email job for the assignee, got %+v", jobs)
	}
}

func TestTaskService_CreateValidation(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()

	if _, err := f.service.CreateTask(ctx, f.actor, models.Task{ProjectID: f.project.ID}); !repositories.IsValidation(err) {
		t.Errorf("Expected ValidationError for a missing title, got %v", err)
	}
	if _, err := f.service.CreateTask(ctx, f.actor, models.Task{Title: "t"}); !repositories.IsValidation(err) {
		t.Errorf("Expected ValidationError for a missing project, got %v", err)
	}
	if _, err := f.service.CreateTask(ctx, f.actor, models.Task{Title: "t", ProjectID: primitive.NewObjectID()}); !repositories.IsValidation(err) {
		t.Errorf("Expected ValidationError for an unknown project, got %v", err)
	}
	ghost := primitive.NewObjectID()
	if _, err := f.service.CreateTask(ctx, f.actor, models.Task{Title: "t", ProjectID: f.project.ID, AssigneeID: &ghost}); !repositories.IsValidation(err) {
		t.Errorf("Expected ValidationError for an unknown assignee, got %v", err)
	}
}

func TestTaskService_ReassignNotifiesNewAssignee(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()

	created, err := f.service.CreateTask(ctx, f.actor, models.Task{Title: "t", ProjectID: f.project.ID})
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	updated, err := f.service.UpdateTask(ctx, f.actor, created.ID, models.TaskPatch{AssigneeID: &f.assignee.ID})
	if err != nil {
		t.Fatalf("UpdateTask failed: %v", err)
	}
	if updated.AssigneeID == nil || *updated.AssigneeID != f.assignee.ID {
		t.Errorf("Expected the assignee to be set, got %+v", updated.AssigneeID)
	}

	entries, err := f.store.Activity().ByEntity(ctx, "task", created.ID.Hex(), 0)
	if err != nil {
		t.Fatalf("ByEntity failed: %v", err)
	}
	if entries[0].Action != models.ActionAssigned {
		t.Errorf("Expected the latest entry to be assigned, got %s", entries[0].Action)
	}

	notifications, err := f.store.Notifications().ListByUser(ctx, f.assignee.ID)
	if err != nil {
		t.Fatalf("ListByUser failed: %v", err)
	}
	if len(notifications) != 1 {
		t.Errorf("Expected one assignment notification, got %d", len(notifications))
	}

	// Re-applying the same assignee is recorded as a plain update and
	// does not renotify.
	if _, err := f.service.UpdateTask(ctx, f.actor, created.ID, models.TaskPatch{AssigneeID: &f.assignee.ID}); err != nil {
		t.Fatalf("UpdateTask failed: %v", err)
	}
	notifications, err = f.store.Notifications().ListByUser(ctx, f.assignee.ID)
	if err != nil {
		t.Fatalf("ListByUser failed: %v", err)
	}
	if len(notifications) != 1 {
		t.Errorf("Expected no second notification for an unchanged assignee, got %d", len(notifications))
	}
}

func TestTaskService_ReassignBackNotifiesAgain(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()

	other, err := f.store.Users().Create(ctx, &models.User{Name: "Ivan", Email: "ivan@example.com", Role: models.RoleTeam})
	if err != nil {
		t.Fatalf("Seeding user failed: %v", err)
	}

	created, err := f.service.CreateTask(ctx, f.actor, models.Task{Title: "t", ProjectID: f.project.ID, AssigneeID: &f.assignee.ID})
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	if _, err := f.service.UpdateTask(ctx, f.actor, created.ID, models.TaskPatch{AssigneeID: &other.ID}); err != nil {
		t.Fatalf("UpdateTask failed: %v", err)
	}
	if _, err := f.service.UpdateTask(ctx, f.actor, created.ID, models.TaskPatch{AssigneeID: &f.assignee.ID}); err != nil {
		t.Fatalf("UpdateTask failed: %v", err)
	}

	// Each assignment change is its own event, so getting the task back
	// produces a fresh notification.
	notifications, err := f.store.Notifications().ListByUser(ctx, f.assignee.ID)
	if err != nil {
		t.Fatalf("ListByUser failed: %v", err)
	}
	if len(notifications) != 2 {
		t.Errorf("Expected two assignment notifications after being reassigned the task, got %d", len(notifications))
	}
}

func TestTaskService_CompletionOutranksAssignment(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()

	created, err := f.service.CreateTask(ctx, f.actor, models.Task{Title: "t", ProjectID: f.project.ID})
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	completed := models.StatusCompleted
	if _, err := f.service.UpdateTask(ctx, f.actor, created.ID, models.TaskPatch{
		Status:     &completed,
		AssigneeID: &f.assignee.ID,
	}); err != nil {
		t.Fatalf("UpdateTask failed: %v", err)
	}

	entries, err := f.store.Activity().ByEntity(ctx, "task", created.ID.Hex(), 0)
	if err != nil {
		t.Fatalf("ByEntity failed: %v", err)
	}
	if entries[0].Action != models.ActionCompleted {
		t.Errorf("Expected the completion to win the action, got %s", entries[0].Action)
	}
}

func TestTaskService_CommentNotifiesAssigneeButNotSelf(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()

	created, err := f.service.CreateTask(ctx, f.actor, models.Task{Title: "t", ProjectID: f.project.ID, AssigneeID: &f.assignee.ID})
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	if err := f.service.Comment(ctx, f.actor, created.ID, "looks good"); err != nil {
		t.Fatalf("Comment failed: %v", err)
	}

	notifications, err := f.store.Notifications().ListByUser(ctx, f.assignee.ID)
	if err != nil {
		t.Fatalf("ListByUser failed: %v", err)
	}
	// One from the assignment, one from the comment.
	if len(notifications) != 2 {
		t.Fatalf("Expected 2 notifications, got %d", len(notifications))
	}

	// The assignee commenting on their own task stays quiet.
	if err := f.service.Comment(ctx, f.assignee, created.ID, "on it"); err != nil {
		t.Fatalf("Comment failed: %v", err)
	}
	notifications, err = f.store.Notifications().ListByUser(ctx, f.assignee.ID)
	if err != nil {
		t.Fatalf("ListByUser failed: %v", err)
	}
	if len(notifications) != 2 {
		t.Errorf("Expected no self-notification, got %d", len(notifications))
	}

	entries, err := f.store.Activity().ByEntity(ctx, "task", created.ID.Hex(), 0)
	if err != nil {
		t.Fatalf("ByEntity failed: %v", err)
	}
	if entries[0].Action != models.ActionCommented || entries[0].Details != "on it" {
		t.Errorf("Expected the comment in the activity log, got %+v", entries[0])
	}
}

func TestTaskService_DeleteRecordsPriorName(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()

	created, err := f.service.CreateTask(ctx, f.actor, models.Task{Title: "Doomed", ProjectID: f.project.ID})
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	if err := f.service.DeleteTask(ctx, f.actor, created.ID); err != nil {
		t.Fatalf("DeleteTask failed: %v", err)
	}

	if _, err := f.service.GetTask(ctx, created.ID); !repositories.IsNotFound(err) {
		t.Errorf("Expected the task to be gone, got %v", err)
	}

	entries, err := f.store.Activity().ByEntity(ctx, "task", created.ID.Hex(), 0)
	if err != nil {
		t.Fatalf("ByEntity failed: %v", err)
	}
	if entries[0].Action != models.ActionDeleted || entries[0].EntityName != "Doomed" {
		t.Errorf("Expected a deleted entry carrying the task name, got %+v", entries[0])
	}
}

func TestTaskService_CheckDeadlinesWindows(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()

	soon := time.Now().Add(12 * time.Hour)
	later := time.Now().Add(60 * time.Hour)
	passed := time.Now().Add(-2 * time.Hour)
	far := time.Now().Add(10 * 24 * time.Hour)

	mk := func(title string, deadline time.Time, assignee *primitive.ObjectID, status models.TaskStatus) {
		t.Helper()
		_, err := f.service.CreateTask(ctx, f.actor, models.Task{
			Title:      title,
			ProjectID:  f.project.ID,
			AssigneeID: assignee,
			Deadline:   deadline,
			Status:     status,
		})
		if err != nil {
			t.Fatalf("CreateTask %s failed: %v", title, err)
		}
	}

	mk("due-tomorrow", soon, &f.assignee.ID, "")
	mk("due-later", later, &f.assignee.ID, "")
	mk("overdue", passed, &f.assignee.ID, "")
	mk("unassigned", soon, nil, "")
	mk("done", soon, &f.assignee.ID, models.StatusCompleted)
	mk("far-out", far, &f.assignee.ID, "")

	if err := f.service.CheckDeadlines(ctx); err != nil {
		t.Fatalf("CheckDeadlines failed: %v", err)
	}

	notifications, err := f.store.Notifications().ListByUser(ctx, f.assignee.ID)
	if err != nil {
		t.Fatalf("ListByUser failed: %v", err)
	}
	// Assignment fan-out also notified; count only deadline reminders.
	var reminders []models.Notification
	for _, n := range notifications {
		if n.Type == models.NotificationTaskDeadline {
			reminders = append(reminders, n)
		}
	}
	if len(reminders) != 2 {
		t.Fatalf("Expected reminders for the two upcoming tasks only, got %d", len(reminders))
	}

	// A second sweep inside the same windows adds nothing.
	if err := f.service.CheckDeadlines(ctx); err != nil {
		t.Fatalf("CheckDeadlines failed: %v", err)
	}
	notifications, err = f.store.Notifications().ListByUser(ctx, f.assignee.ID)
	if err != nil {
		t.Fatalf("ListByUser failed: %v", err)
	}
	var again []models.Notification
	for _, n := range notifications {
		if n.Type == models.NotificationTaskDeadline {
			again = append(again, n)
		}
	}
	if len(again) != 2 {
		t.Errorf("Expected the second sweep to be deduplicated, got %d reminders", len(again))
	}
}

func TestTaskService_PatchRejectsSetAndClearAssignee(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()

	created, err := f.service.CreateTask(ctx, f.actor, models.Task{Title: "t", ProjectID: f.project.ID})
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	_, err = f.service.UpdateTask(ctx, f.actor, created.ID, models.TaskPatch{AssigneeID: &f.assignee.ID, ClearAssignee: true})
	if !repositories.IsValidation(err) {
		t.Errorf("Expected ValidationError, got %v", err)
	}
}
