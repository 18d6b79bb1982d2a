package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"project-pulse/microservices/dashboard-service/models"
	"project-pulse/microservices/dashboard-service/repositories"
)

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("Condition not met before deadline")
}

func testNotification() models.Notification {
	return models.Notification{
		ID:      primitive.NewObjectID(),
		UserID:  primitive.NewObjectID(),
		Title:   "New task assignment",
		Message: "Ana assigned you the task \"Ship the release\".",
		Type:    models.NotificationTaskAssigned,
	}
}

func TestEmailService_DeliversAndMarksSent(t *testing.T) {
	store := repositories.NewMemoryStore()
	mailer := &fakeMailer{}
	svc := NewEmailService(store.EmailJobs(), mailer, quietLogger(), 2, 16, 3, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(ctx)
	defer svc.Shutdown()

	job, err := svc.Enqueue(ctx, testNotification(), "mila@example.com")
	if err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	if job.Status != models.EmailQueued {
		t.Errorf("Expected the job to start queued, got %s", job.Status)
	}

	waitFor(t, 2*time.Second, func() bool {
		got, err := svc.JobStatus(ctx, job.ID)
		return err == nil && got.Status == models.EmailSent
	})

	got, err := svc.JobStatus(ctx, job.ID)
	if err != nil {
		t.Fatalf("JobStatus failed: %v", err)
	}
	if got.Attempts != 1 {
		t.Errorf("Expected 1 attempt for a clean send, got %d", got.Attempts)
	}
	if mailer.sentCount() != 1 {
		t.Errorf("Expected exactly 1 delivery, got %d", mailer.sentCount())
	}
}

func TestEmailService_ExhaustsRetriesThenFails(t *testing.T) {
	store := repositories.NewMemoryStore()
	mailer := &fakeMailer{fail: errors.New("smtp unreachable")}
	svc := NewEmailService(store.EmailJobs(), mailer, quietLogger(), 1, 16, 3, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(ctx)
	defer svc.Shutdown()

	job, err := svc.Enqueue(ctx, testNotification(), "mila@example.com")
	if err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	waitFor(t, 2*time.Second, func() bool {
		got, err := svc.JobStatus(ctx, job.ID)
		return err == nil && got.Status == models.EmailFailed
	})

	got, err := svc.JobStatus(ctx, job.ID)
	if err != nil {
		t.Fatalf("JobStatus failed: %v", err)
	}
	if got.Attempts != 3 {
		t.Errorf("Expected 3 attempts before giving up, got %d", got.Attempts)
	}
	if got.LastError == "" {
		t.Error("Expected the terminal job to carry the last delivery error")
	}
	if mailer.callCount() != 3 {
		t.Errorf("Expected 3 send attempts, got %d", mailer.callCount())
	}
}

func TestEmailService_RequeuePendingResumesDroppedJobs(t *testing.T) {
	store := repositories.NewMemoryStore()
	mailer := &fakeMailer{}
	// Capacity 1 with the workers not yet running: most offers are
	// dropped and the jobs stay persisted as queued.
	svc := NewEmailService(store.EmailJobs(), mailer, quietLogger(), 2, 1, 3, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for i := 0; i < 4; i++ {
		if _, err := svc.Enqueue(ctx, testNotification(), "mila@example.com"); err != nil {
			t.Fatalf("Enqueue %d failed: %v", i, err)
		}
	}

	svc.Start(ctx)
	defer svc.Shutdown()
	svc.RequeuePending(ctx)

	waitFor(t, 2*time.Second, func() bool {
		pending, err := store.EmailJobs().ListByStatus(ctx, models.EmailQueued)
		if err != nil {
			return false
		}
		if len(pending) > 0 {
			svc.RequeuePending(ctx)
			return false
		}
		return true
	})

	sent, err := store.EmailJobs().ListByStatus(ctx, models.EmailSent)
	if err != nil {
		t.Fatalf("ListByStatus failed: %v", err)
	}
	if len(sent) != 4 {
		t.Errorf("Expected all 4 jobs delivered after the sweep, got %d", len(sent))
	}
}

func TestEmailService_EnqueueRejectsEmptyRecipient(t *testing.T) {
	store := repositories.NewMemoryStore()
	svc := NewEmailService(store.EmailJobs(), &fakeMailer{}, quietLogger(), 1, 16, 3, time.Millisecond)

	_, err := svc.Enqueue(context.Background(), testNotification(), "")
	if !repositories.IsValidation(err) {
		t.Errorf("Expected ValidationError, got %v", err)
	}
}

func TestEmailService_ShutdownDrainsWorkers(t *testing.T) {
	store := repositories.NewMemoryStore()
	mailer := &fakeMailer{}
	svc := NewEmailService(store.EmailJobs(), mailer, quietLogger(), 2, 16, 3, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(ctx)

	job, err := svc.Enqueue(ctx, testNotification(), "mila@example.com")
	if err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	waitFor(t, 2*time.Second, func() bool {
		got, err := svc.JobStatus(ctx, job.ID)
		return err == nil && got.Terminal()
	})

	svc.Shutdown()
	// A second Shutdown is a no-op, not a panic.
	svc.Shutdown()
}

func TestEmailService_EnqueueRacingShutdownDoesNotPanic(t *testing.T) {
	store := repositories.NewMemoryStore()
	svc := NewEmailService(store.EmailJobs(), &fakeMailer{}, quietLogger(), 2, 4, 3, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(ctx)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				if _, err := svc.Enqueue(ctx, testNotification(), "mila@example.com"); err != nil {
					t.Errorf("Enqueue failed: %v", err)
					return
				}
			}
		}()
	}

	svc.Shutdown()
	wg.Wait()

	// Jobs offered after the close stay queued for the requeue sweep.
	queued, err := store.EmailJobs().ListByStatus(ctx, models.EmailQueued)
	if err != nil {
		t.Fatalf("ListByStatus failed: %v", err)
	}
	sent, err := store.EmailJobs().ListByStatus(ctx, models.EmailSent)
	if err != nil {
		t.Fatalf("ListByStatus failed: %v", err)
	}
	if len(queued)+len(sent) != 100 {
		t.Errorf("Expected all 100 jobs persisted as queued or sent, got %d", len(queued)+len(sent))
	}
}
