package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"gopkg.in/gomail.v2"

	"project-pulse/microservices/dashboard-service/models"
	"project-pulse/microservices/dashboard-service/repositories"
)

// Mailer is the outbound mail transport.
type Mailer interface {
	Send(to, subject, body string) error
}

// GomailSender delivers through SMTP.
type GomailSender struct {
	dialer *gomail.Dialer
	from   string
}

func NewGomailSender(host string, port int, username, password, from string) *GomailSender {
	return &GomailSender{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

func (s *GomailSender) Send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}

// DeliveryError marks a transport failure. It ends up on the EmailJob as
// its terminal Failed reason and is never surfaced to the caller that
// triggered the original mutation.
type DeliveryError struct {
	Recipient string
	Err       error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("delivery to %s failed: %v", e.Recipient, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// EmailService runs the at-least-once outbound email pipeline: jobs are
// persisted as Queued, picked up by a detached worker pool, retried with
// backoff, and moved to a terminal Sent or Failed state. No caller ever
// blocks on delivery.
type EmailService struct {
	jobs    repositories.EmailJobRepository
	mailer  Mailer
	breaker *gobreaker.CircuitBreaker
	logger  *logrus.Logger

	queue       chan string
	workers     int
	maxAttempts int
	baseBackoff time.Duration

	wg sync.WaitGroup

	// closeMu orders offers against the queue close: Shutdown takes the
	// write side, so no send can land on a closed channel.
	closeMu sync.RWMutex
	closed  bool
}

func NewEmailService(jobs repositories.EmailJobRepository, mailer Mailer, logger *logrus.Logger, workers, capacity, maxAttempts int, baseBackoff time.Duration) *EmailService {
	if workers <= 0 {
		workers = 2
	}
	if capacity <= 0 {
		capacity = 128
	}
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	if baseBackoff <= 0 {
		baseBackoff = time.Second
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "smtp-cb",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Infof("Event ID: CIRCUIT_BREAKER_STATE_CHANGE, Description: Circuit Breaker '%s' changed from '%s' to '%s'", name, from.String(), to.String())
		},
	})

	return &EmailService{
		jobs:        jobs,
		mailer:      mailer,
		breaker:     breaker,
		logger:      logger,
		queue:       make(chan string, capacity),
		workers:     workers,
		maxAttempts: maxAttempts,
		baseBackoff: baseBackoff,
	}
}

// Enqueue persists a job derived from the notification and offers it to
// the worker pool. The offer is non-blocking: a full queue leaves the
// job in Queued state for the requeue sweep to pick up.
func (s *EmailService) Enqueue(ctx context.Context, n models.Notification, recipient string) (*models.EmailJob, error) {
	if recipient == "" {
		return nil, &repositories.ValidationError{Reason: "email recipient is required"}
	}

	job := &models.EmailJob{
		ID:             uuid.New().String(),
		NotificationID: n.ID,
		Recipient:      recipient,
		Subject:        n.Title,
		Body:           n.Message,
		Status:         models.EmailQueued,
	}

	created, err := s.jobs.Create(ctx, job)
	if err != nil {
		return nil, fmt.Errorf("failed to persist email job: %w", err)
	}

	s.offer(created.ID)
	return created, nil
}

func (s *EmailService) offer(jobID string) {
	s.closeMu.RLock()
	defer s.closeMu.RUnlock()
	if s.closed {
		return
	}
	select {
	case s.queue <- jobID:
	default:
		s.logger.Warnf("Event ID: EMAIL_QUEUE_FULL, Description: Worker queue full, job %s stays queued until the next sweep.", jobID)
	}
}

// Start launches the worker pool and the requeue sweep. Both run until
// ctx is cancelled or Shutdown is called.
func (s *EmailService) Start(ctx context.Context) {
	for i := 0; i < s.workers; i++ {
		s.wg.Add(1)
		go s.worker(ctx, i)
	}
	go s.requeueLoop(ctx)
}

func (s *EmailService) worker(ctx context.Context, id int) {
	defer s.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case jobID, ok := <-s.queue:
			if !ok {
				return
			}
			s.process(ctx, jobID, id)
		}
	}
}

// process drives one job to a terminal state: up to maxAttempts sends
// with exponential backoff, then Failed.
func (s *EmailService) process(ctx context.Context, jobID string, workerID int) {
	job, err := s.jobs.Get(ctx, jobID)
	if err != nil {
		s.logger.Warnf("Event ID: EMAIL_JOB_LOOKUP_FAILED, Description: Worker %d could not load job %s: %v", workerID, jobID, err)
		return
	}
	if job.Terminal() {
		return
	}

	attempts := job.Attempts
	var lastErr error
	for attempts < s.maxAttempts {
		attempts++

		_, err := s.breaker.Execute(func() (interface{}, error) {
			return nil, s.mailer.Send(job.Recipient, job.Subject, job.Body)
		})
		if err == nil {
			if err := s.jobs.SetStatus(ctx, job.ID, models.EmailSent, attempts, ""); err != nil {
				s.logger.Errorf("Event ID: EMAIL_JOB_UPDATE_FAILED, Description: Could not mark job %s sent: %v", job.ID, err)
			}
			s.logger.Infof("Event ID: EMAIL_SENT, Description: Job %s delivered to %s after %d attempt(s).", job.ID, job.Recipient, attempts)
			return
		}

		lastErr = &DeliveryError{Recipient: job.Recipient, Err: err}
		s.logger.Warnf("Event ID: EMAIL_ATTEMPT_FAILED, Description: Job %s attempt %d/%d failed: %v", job.ID, attempts, s.maxAttempts, err)

		if attempts < s.maxAttempts {
			backoff := s.baseBackoff << (attempts - 1)
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
		}
	}

	if lastErr == nil {
		// A requeued job that already spent its attempts before the
		// terminal write landed.
		lastErr = &DeliveryError{Recipient: job.Recipient, Err: fmt.Errorf("retry budget exhausted")}
	}
	if err := s.jobs.SetStatus(ctx, job.ID, models.EmailFailed, attempts, lastErr.Error()); err != nil {
		s.logger.Errorf("Event ID: EMAIL_JOB_UPDATE_FAILED, Description: Could not mark job %s failed: %v", job.ID, err)
	}
	s.logger.Errorf("Event ID: EMAIL_FAILED, Description: Job %s exhausted %d attempts: %v", job.ID, attempts, lastErr)
}

// requeueLoop re-offers jobs that were persisted but never made it onto
// the channel (full queue, restart). Duplicate offers are harmless: the
// pipeline is at-least-once and terminal jobs are skipped.
func (s *EmailService) requeueLoop(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.RequeuePending(ctx)
		}
	}
}

// RequeuePending offers every still-Queued job to the workers. It is
// also called once at startup to resume jobs left over from a crash.
func (s *EmailService) RequeuePending(ctx context.Context) {
	pending, err := s.jobs.ListByStatus(ctx, models.EmailQueued)
	if err != nil {
		s.logger.Warnf("Event ID: EMAIL_REQUEUE_FAILED, Description: Could not list queued jobs: %v", err)
		return
	}
	for _, job := range pending {
		s.offer(job.ID)
	}
}

// JobStatus exposes the queryable state of one job.
func (s *EmailService) JobStatus(ctx context.Context, id string) (*models.EmailJob, error) {
	return s.jobs.Get(ctx, id)
}

// Shutdown stops accepting offers and waits for in-flight deliveries.
func (s *EmailService) Shutdown() {
	s.closeMu.Lock()
	if s.closed {
		s.closeMu.Unlock()
		return
	}
	s.closed = true
	close(s.queue)
	s.closeMu.Unlock()

	s.wg.Wait()
	s.logger.Info("Event ID: EMAIL_WORKER_STOPPED, Description: Email worker pool drained and stopped.")
}
