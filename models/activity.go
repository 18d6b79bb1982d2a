package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ActivityAction string

const (
	ActionCreated   ActivityAction = "created"
	ActionUpdated   ActivityAction = "updated"
	ActionDeleted   ActivityAction = "deleted"
	ActionCompleted ActivityAction = "completed"
	ActionAssigned  ActivityAction = "assigned"
	ActionCommented ActivityAction = "commented"
)

// ActivityLogEntry is an immutable audit record. The entity is referenced
// by type and id without a foreign key so entries survive deletion of
// their subject. Ordering is by timestamp, ties broken by insertion id.
type ActivityLogEntry struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ActorID    primitive.ObjectID `bson:"actorId" json:"actorId"`
	ActorName  string             `bson:"actorName" json:"actorName"`
	Action     ActivityAction     `bson:"action" json:"action"`
	EntityType string             `bson:"entityType" json:"entityType"`
	EntityID   string             `bson:"entityId" json:"entityId"`
	EntityName string             `bson:"entityName" json:"entityName"`
	Details    string             `bson:"details,omitempty" json:"details,omitempty"`
	Timestamp  time.Time          `bson:"timestamp" json:"timestamp"`
}
