package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationType string

const (
	NotificationTaskAssigned  NotificationType = "task_assigned"
	NotificationCommentAdded  NotificationType = "comment_added"
	NotificationTaskDeadline  NotificationType = "task_deadline"
	NotificationProjectUpdate NotificationType = "project_update"
)

// Notification rows are created by the dispatcher and mutated only by
// isRead flips. EventKey identifies the domain event that produced the
// row; the dispatcher uses it to guarantee one row per event+recipient.
type Notification struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID     primitive.ObjectID `bson:"userId" json:"userId"`
	Title      string             `bson:"title" json:"title"`
	Message    string             `bson:"message" json:"message"`
	Type       NotificationType   `bson:"type" json:"type"`
	EntityID   string             `bson:"entityId,omitempty" json:"entityId,omitempty"`
	EntityType string             `bson:"entityType,omitempty" json:"entityType,omitempty"`
	EventKey   string             `bson:"eventKey" json:"-"`
	IsRead     bool               `bson:"isRead" json:"isRead"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
}
