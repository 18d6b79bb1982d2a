package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type EmailJobStatus string

const (
	EmailQueued EmailJobStatus = "queued"
	EmailSent   EmailJobStatus = "sent"
	EmailFailed EmailJobStatus = "failed"
)

// EmailJob is derived 1:1 from a Notification plus a recipient address.
// Sent and Failed are terminal; a job never leaves a terminal state.
type EmailJob struct {
	ID             string             `bson:"_id" json:"id"`
	NotificationID primitive.ObjectID `bson:"notificationId" json:"notificationId"`
	Recipient      string             `bson:"recipient" json:"recipient"`
	Subject        string             `bson:"subject" json:"subject"`
	Body           string             `bson:"body" json:"body"`
	Status         EmailJobStatus     `bson:"status" json:"status"`
	Attempts       int                `bson:"attempts" json:"attempts"`
	LastError      string             `bson:"lastError,omitempty" json:"lastError,omitempty"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Terminal reports whether the job has reached a final state.
func (j *EmailJob) Terminal() bool {
	return j.Status == EmailSent || j.Status == EmailFailed
}
