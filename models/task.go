package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in progress"
	StatusCompleted  TaskStatus = "completed"
)

type Task struct {
	ID             primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Title          string              `bson:"title" json:"title"`
	Status         TaskStatus          `bson:"status" json:"status"`
	Priority       Priority            `bson:"priority" json:"priority"`
	ProjectID      primitive.ObjectID  `bson:"projectId" json:"projectId"`
	AssigneeID     *primitive.ObjectID `bson:"assigneeId,omitempty" json:"assigneeId,omitempty"`
	Deadline       time.Time           `bson:"deadline,omitempty" json:"deadline,omitempty"`
	EstimatedHours float64             `bson:"estimatedHours" json:"estimatedHours"`
	ActualHours    float64             `bson:"actualHours" json:"actualHours"`
	CreatedBy      primitive.ObjectID  `bson:"createdBy" json:"createdBy"`
	CreatedAt      time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// TaskPatch enumerates the mutable fields of a Task. Setting AssigneeID
// replaces the assignee; ClearAssignee removes it. The two are mutually
// exclusive.
type TaskPatch struct {
	Title          *string             `json:"title,omitempty"`
	Status         *TaskStatus         `json:"status,omitempty"`
	Priority       *Priority           `json:"priority,omitempty"`
	AssigneeID     *primitive.ObjectID `json:"assigneeId,omitempty"`
	ClearAssignee  bool                `json:"clearAssignee,omitempty"`
	Deadline       *time.Time          `json:"deadline,omitempty"`
	EstimatedHours *float64            `json:"estimatedHours,omitempty"`
	ActualHours    *float64            `json:"actualHours,omitempty"`
}
