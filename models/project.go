package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ProjectStatus string

const (
	ProjectPlanning  ProjectStatus = "planning"
	ProjectActive    ProjectStatus = "active"
	ProjectOnHold    ProjectStatus = "on hold"
	ProjectCompleted ProjectStatus = "completed"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

type Project struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name      string               `bson:"name" json:"name"`
	Status    ProjectStatus        `bson:"status" json:"status"`
	Progress  int                  `bson:"progress" json:"progress"`
	Budget    float64              `bson:"budget" json:"budget"`
	Spent     float64              `bson:"spent" json:"spent"`
	ClientID  primitive.ObjectID   `bson:"clientId,omitempty" json:"clientId,omitempty"`
	Team      []primitive.ObjectID `bson:"team" json:"team"`
	Priority  Priority             `bson:"priority" json:"priority"`
	CreatedBy primitive.ObjectID   `bson:"createdBy" json:"createdBy"`
	CreatedAt time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// ProjectPatch enumerates the mutable fields of a Project. Progress and
// Spent move independently of Status.
type ProjectPatch struct {
	Name     *string               `json:"name,omitempty"`
	Status   *ProjectStatus        `json:"status,omitempty"`
	Progress *int                  `json:"progress,omitempty"`
	Budget   *float64              `json:"budget,omitempty"`
	Spent    *float64              `json:"spent,omitempty"`
	ClientID *primitive.ObjectID   `json:"clientId,omitempty"`
	Team     *[]primitive.ObjectID `json:"team,omitempty"`
	Priority *Priority             `json:"priority,omitempty"`
}
