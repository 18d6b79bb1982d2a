package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type WidgetSize string

const (
	WidgetSmall  WidgetSize = "small"
	WidgetMedium WidgetSize = "medium"
	WidgetLarge  WidgetSize = "large"
)

type Widget struct {
	ID       string                 `bson:"id" json:"id"`
	Type     string                 `bson:"type" json:"type"`
	Title    string                 `bson:"title" json:"title"`
	Size     WidgetSize             `bson:"size" json:"size"`
	Position int                    `bson:"position" json:"position"`
	Settings map[string]interface{} `bson:"settings" json:"settings"`
}

// WidgetConfig holds a user's dashboard layout. Positions of Widgets
// form a contiguous 0..n-1 sequence after every mutation.
type WidgetConfig struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	Widgets   []Widget           `bson:"widgets" json:"widgets"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}
