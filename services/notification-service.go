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

// Event is a domain event the dispatcher turns into notifications. The
// dedup key identifies the event; one notification exists per key and
// recipient no matter how often the same event is dispatched.
type Event struct {
	Type       models.NotificationType
	EntityType string
	EntityID   string
	EntityName string
	ActorName  string
	Recipients []primitive.ObjectID
	Detail     string
	// DedupSuffix distinguishes events that share type and entity,
	// e.g. the 3-day and 1-day deadline reminders for one task.
	DedupSuffix string
}

func (e Event) key(recipient primitive.ObjectID) string {
	parts := []string{string(e.Type), e.EntityType, e.EntityID, recipient.Hex()}
	if e.DedupSuffix != "" {
		parts = append(parts, e.DedupSuffix)
	}
	return strings.Join(parts, ":")
}

// NotificationService synthesizes Notification rows from domain events
// and queues one email job per created row. Notification creation is
// synchronous; email delivery is not.
type NotificationService struct {
	notifications repositories.NotificationRepository
	users         repositories.UserRepository
	emails        *EmailService
	logger        *logrus.Logger
}

func NewNotificationService(notifications repositories.NotificationRepository, users repositories.UserRepository, emails *EmailService, logger *logrus.Logger) *NotificationService {
	return &NotificationService{
		notifications: notifications,
		users:         users,
		emails:        emails,
		logger:        logger,
	}
}

// Notify creates exactly one notification per recipient for the event
// and enqueues exactly one email job per created notification. Already
// notified recipients are skipped, which makes redispatching the same
// event safe.
func (ns *NotificationService) Notify(ctx context.Context, event Event) ([]models.Notification, error) {
	if event.Type == "" {
		return nil, &repositories.ValidationError{Reason: "event type is required"}
	}

	title, message := composeContent(event)

	var created []models.Notification
	for _, recipient := range event.Recipients {
		if recipient.IsZero() {
			continue
		}

		eventKey := event.key(recipient)
		exists, err := ns.notifications.ExistsForEvent(ctx, eventKey)
		if err != nil {
			return created, fmt.Errorf("failed to check notification for event %s: %w", eventKey, err)
		}
		if exists {
			ns.logger.Debugf("Notification for event %s already exists, skipping.", eventKey)
			continue
		}

		notification, err := ns.notifications.Create(ctx, &models.Notification{
			UserID:     recipient,
			Title:      title,
			Message:    message,
			Type:       event.Type,
			EntityID:   event.EntityID,
			EntityType: event.EntityType,
			EventKey:   eventKey,
		})
		if repositories.IsConflict(err) {
			// A concurrent dispatch of the same event inserted first; the
			// unique event key index turned the double insert into a
			// conflict.
			ns.logger.Debugf("Notification for event %s inserted concurrently, skipping.", eventKey)
			continue
		}
		if err != nil {
			return created, fmt.Errorf("failed to create notification for user %s: %w", recipient.Hex(), err)
		}
		created = append(created, *notification)
		ns.logger.Infof("Event ID: NOTIFICATION_CREATED, Description: %s notification created for user %s (entity %s/%s).", notification.Type, recipient.Hex(), notification.EntityType, notification.EntityID)

		ns.enqueueEmail(ctx, *notification)
	}
	return created, nil
}

// enqueueEmail resolves the recipient address and queues the outbound
// job. Failures are logged, never propagated: the notification row is
// already in place and email is fire-and-forget for the caller.
func (ns *NotificationService) enqueueEmail(ctx context.Context, n models.Notification) {
	user, err := ns.users.Get(ctx, n.UserID)
	if err != nil {
		ns.logger.Warnf("Event ID: EMAIL_RECIPIENT_UNRESOLVED, Description: Could not resolve email for user %s: %v", n.UserID.Hex(), err)
		return
	}
	if user.Email == "" {
		ns.logger.Warnf("Event ID: EMAIL_RECIPIENT_EMPTY, Description: User %s has no email address, skipping email job.", n.UserID.Hex())
		return
	}
	if _, err := ns.emails.Enqueue(ctx, n, user.Email); err != nil {
		ns.logger.Warnf("Event ID: EMAIL_ENQUEUE_FAILED, Description: Could not enqueue email for notification %s: %v", n.ID.Hex(), err)
	}
}

func (ns *NotificationService) List(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, error) {
	if userID.IsZero() {
		return nil, &repositories.ValidationError{Reason: "user id is required"}
	}
	return ns.notifications.ListByUser(ctx, userID)
}

func (ns *NotificationService) UnreadCount(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	if userID.IsZero() {
		return 0, &repositories.ValidationError{Reason: "user id is required"}
	}
	return ns.notifications.UnreadCount(ctx, userID)
}

func (ns *NotificationService) MarkRead(ctx context.Context, id primitive.ObjectID) (*models.Notification, error) {
	return ns.notifications.MarkRead(ctx, id)
}

// MarkAllRead flips every unread row belonging to userID and returns how
// many were flipped. Rows of other users are untouched.
func (ns *NotificationService) MarkAllRead(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	if userID.IsZero() {
		return 0, &repositories.ValidationError{Reason: "user id is required"}
	}
	flipped, err := ns.notifications.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, err
	}
	ns.logger.Infof("Event ID: NOTIFICATIONS_READ, Description: Marked %d notifications read for user %s.", flipped, userID.Hex())
	return flipped, nil
}

func composeContent(event Event) (title, message string) {
	switch event.Type {
	case models.NotificationTaskAssigned:
		title = "New task assignment"
		message = fmt.Sprintf("%s assigned you the task %q.", event.ActorName, event.EntityName)
	case models.NotificationCommentAdded:
		title = "New comment on your task"
		message = fmt.Sprintf("%s commented on %q: %s", event.ActorName, event.EntityName, event.Detail)
	case models.NotificationTaskDeadline:
		title = "Task deadline approaching"
		message = fmt.Sprintf("The task %q is due %s.", event.EntityName, event.Detail)
	case models.NotificationProjectUpdate:
		title = "Project updated"
		message = fmt.Sprintf("%s updated the project %q. %s", event.ActorName, event.EntityName, event.Detail)
	default:
		title = "Notification"
		message = event.Detail
	}
	return title, strings.TrimSpace(message)
}
