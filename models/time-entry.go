package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TimeEntry is append-mostly; aggregation for cost reporting happens
// outside this service.
type TimeEntry struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TaskID    primitive.ObjectID `bson:"taskId" json:"taskId"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	Minutes   int                `bson:"minutes" json:"minutes"`
	Date      time.Time          `bson:"date" json:"date"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type TimeEntryPatch struct {
	Minutes *int       `json:"minutes,omitempty"`
	Date    *time.Time `json:"date,omitempty"`
}
