package repositories

import (
	"context"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"project-pulse/microservices/dashboard-service/models"
)

func TestMemoryUserRepository_CreateAndGet(t *testing.T) {
	repo := NewMemoryStore().Users()
	ctx := context.Background()

	created, err := repo.Create(ctx, &models.User{Name: "Mila", Email: "mila@example.com", Role: models.RoleTeam})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.ID.IsZero() {
		t.Error("Expected a generated id")
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Error("Expected timestamps to be set")
	}

	got, err := repo.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Name != "Mila" || got.Email != "mila@example.com" || got.Role != models.RoleTeam {
		t.Errorf("Unexpected user: %+v", got)
	}
}

func TestMemoryUserRepository_UpdateMergesOnlySetFields(t *testing.T) {
	repo := NewMemoryStore().Users()
	ctx := context.Background()

	created, err := repo.Create(ctx, &models.User{Name: "Mila", Email: "mila@example.com", Role: models.RoleTeam, Department: "Engineering"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	newName := "Mila K."
	updated, err := repo.Update(ctx, created.ID, models.UserPatch{Name: &newName})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Name != "Mila K." {
		t.Errorf("Expected name to change, got %q", updated.Name)
	}
	if updated.Email != "mila@example.com" || updated.Department != "Engineering" {
		t.Errorf("Unset fields must not change: %+v", updated)
	}
	if !updated.UpdatedAt.After(updated.CreatedAt) && !updated.UpdatedAt.Equal(updated.CreatedAt) {
		t.Error("Expected UpdatedAt to move forward")
	}
}

func TestMemoryUserRepository_DeleteThenGetNotFound(t *testing.T) {
	repo := NewMemoryStore().Users()
	ctx := context.Background()

	created, err := repo.Create(ctx, &models.User{Name: "Mila"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := repo.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if _, err := repo.Get(ctx, created.ID); !IsNotFound(err) {
		t.Errorf("Expected NotFoundError after delete, got %v", err)
	}
	if err := repo.Delete(ctx, created.ID); !IsNotFound(err) {
		t.Errorf("Expected NotFoundError on second delete, got %v", err)
	}
}

func TestMemoryProjectRepository_CloneIsolation(t *testing.T) {
	repo := NewMemoryStore().Projects()
	ctx := context.Background()

	member := primitive.NewObjectID()
	created, err := repo.Create(ctx, &models.Project{Name: "Website", Team: []primitive.ObjectID{member}})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Mutating the returned slice must not leak into the stored copy.
	created.Team[0] = primitive.NewObjectID()

	got, err := repo.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Team[0] != member {
		t.Error("Stored project was mutated through a returned copy")
	}
}

func TestMemoryTaskRepository_ListFilters(t *testing.T) {
	repo := NewMemoryStore().Tasks()
	ctx := context.Background()

	projectA := primitive.NewObjectID()
	projectB := primitive.NewObjectID()
	assignee := primitive.NewObjectID()
	deadline := time.Now().Add(24 * time.Hour)

	mustCreateTask(t, repo, models.Task{Title: "a1", ProjectID: projectA, AssigneeID: &assignee, Deadline: deadline})
	mustCreateTask(t, repo, models.Task{Title: "a2", ProjectID: projectA, Status: models.StatusCompleted})
	mustCreateTask(t, repo, models.Task{Title: "b1", ProjectID: projectB})

	byProject, err := repo.List(ctx, TaskFilter{ProjectID: &projectA})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(byProject) != 2 {
		t.Errorf("Expected 2 tasks in project A, got %d", len(byProject))
	}

	byAssignee, err := repo.List(ctx, TaskFilter{AssigneeID: &assignee})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(byAssignee) != 1 || byAssignee[0].Title != "a1" {
		t.Errorf("Unexpected assignee filter result: %+v", byAssignee)
	}

	completed := models.StatusCompleted
	byStatus, err := repo.List(ctx, TaskFilter{Status: &completed})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(byStatus) != 1 || byStatus[0].Title != "a2" {
		t.Errorf("Unexpected status filter result: %+v", byStatus)
	}

	cutoff := time.Now().Add(48 * time.Hour)
	due, err := repo.List(ctx, TaskFilter{DueBefore: &cutoff})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(due) != 1 || due[0].Title != "a1" {
		t.Errorf("Expected only the dated task before the cutoff, got %+v", due)
	}
}

func TestMemoryTaskRepository_ClearAssignee(t *testing.T) {
	repo := NewMemoryStore().Tasks()
	ctx := context.Background()

	assignee := primitive.NewObjectID()
	created := mustCreateTask(t, repo, models.Task{Title: "t", ProjectID: primitive.NewObjectID(), AssigneeID: &assignee})

	updated, err := repo.Update(ctx, created.ID, models.TaskPatch{ClearAssignee: true})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.AssigneeID != nil {
		t.Errorf("Expected assignee to be cleared, got %v", updated.AssigneeID)
	}
}

func TestMemoryEmailJobRepository_TerminalStateIsImmutable(t *testing.T) {
	repo := NewMemoryStore().EmailJobs()
	ctx := context.Background()

	created, err := repo.Create(ctx, &models.EmailJob{ID: "job-1", Recipient: "mila@example.com"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.Status != models.EmailQueued {
		t.Errorf("Expected new job to be queued, got %s", created.Status)
	}

	if err := repo.SetStatus(ctx, "job-1", models.EmailSent, 1, ""); err != nil {
		t.Fatalf("SetStatus to sent failed: %v", err)
	}
	if err := repo.SetStatus(ctx, "job-1", models.EmailFailed, 2, "boom"); err == nil {
		t.Error("Expected SetStatus on a terminal job to fail")
	}

	got, err := repo.Get(ctx, "job-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Status != models.EmailSent || got.Attempts != 1 {
		t.Errorf("Terminal job changed: %+v", got)
	}
}

func TestMemoryNotificationRepository_ListByUserNewestFirst(t *testing.T) {
	repo := NewMemoryStore().Notifications()
	ctx := context.Background()

	user := primitive.NewObjectID()
	base := time.Now()
	for i := 0; i < 3; i++ {
		_, err := repo.Create(ctx, &models.Notification{
			UserID:    user,
			Title:     string(rune('a' + i)),
			EventKey:  string(rune('a' + i)),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	notifications, err := repo.ListByUser(ctx, user)
	if err != nil {
		t.Fatalf("ListByUser failed: %v", err)
	}
	if len(notifications) != 3 {
		t.Fatalf("Expected 3 notifications, got %d", len(notifications))
	}
	for i := 1; i < len(notifications); i++ {
		if notifications[i].CreatedAt.After(notifications[i-1].CreatedAt) {
			t.Errorf("Expected newest-first ordering, got %v before %v", notifications[i-1].CreatedAt, notifications[i].CreatedAt)
		}
	}
}

func TestMemoryActivityRepository_NewestFirstWithLimit(t *testing.T) {
	repo := NewMemoryStore().Activity()
	ctx := context.Background()

	actor := primitive.NewObjectID()
	base := time.Now()
	for i := 0; i < 5; i++ {
		_, err := repo.Append(ctx, &models.ActivityLogEntry{
			ActorID:    actor,
			Action:     models.ActionCreated,
			EntityType: "task",
			EntityID:   primitive.NewObjectID().Hex(),
			EntityName: string(rune('a' + i)),
			Timestamp:  base.Add(time.Duration(i) * time.Second),
		})
		if err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	recent, err := repo.Recent(ctx, 3)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("Expected the limit to apply, got %d entries", len(recent))
	}
	if recent[0].EntityName != "e" || recent[2].EntityName != "c" {
		t.Errorf("Expected newest-first order, got %q .. %q", recent[0].EntityName, recent[2].EntityName)
	}

	byActor, err := repo.ByActor(ctx, actor, 0)
	if err != nil {
		t.Fatalf("ByActor failed: %v", err)
	}
	if len(byActor) != 5 {
		t.Errorf("Expected all 5 entries for the actor, got %d", len(byActor))
	}
}

func TestMemoryWidgetRepository_ReplaceRequiresExistingConfig(t *testing.T) {
	repo := NewMemoryStore().WidgetConfigs()
	ctx := context.Background()

	user := primitive.NewObjectID()
	if _, err := repo.Replace(ctx, &models.WidgetConfig{UserID: user}); !IsNotFound(err) {
		t.Errorf("Expected NotFoundError for a missing config, got %v", err)
	}

	created, err := repo.Create(ctx, &models.WidgetConfig{
		UserID:  user,
		Widgets: []models.Widget{{ID: "w1", Type: "my_tasks", Position: 0, Settings: map[string]interface{}{}}},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	created.Widgets[0].Title = "renamed"
	replaced, err := repo.Replace(ctx, created)
	if err != nil {
		t.Fatalf("Replace failed: %v", err)
	}
	if replaced.Widgets[0].Title != "renamed" {
		t.Errorf("Replace did not persist the change: %+v", replaced.Widgets[0])
	}
}

func TestMemoryTaskRepository_ListOldestFirst(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	projectID := primitive.NewObjectID()

	first := mustCreateTask(t, store.Tasks(), models.Task{Title: "first", ProjectID: projectID})
	second := mustCreateTask(t, store.Tasks(), models.Task{Title: "second", ProjectID: projectID})
	third := mustCreateTask(t, store.Tasks(), models.Task{Title: "third", ProjectID: projectID})

	listed, err := store.Tasks().List(ctx, TaskFilter{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(listed) != 3 {
		t.Fatalf("Expected 3 tasks, got %d", len(listed))
	}
	for i, want := range []primitive.ObjectID{first.ID, second.ID, third.ID} {
		if listed[i].ID != want {
			t.Errorf("Expected position %d to be %s, got %s", i, want.Hex(), listed[i].ID.Hex())
		}
	}
}

func mustCreateTask(t *testing.T, repo *MemoryTaskRepository, task models.Task) *models.Task {
	t.Helper()
	created, err := repo.Create(context.Background(), &task)
	if err != nil {
		t.Fatalf("Create task failed: %v", err)
	}
	return created
}
