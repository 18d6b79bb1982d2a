package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserRole string

const (
	RoleAdmin  UserRole = "admin"
	RoleTeam   UserRole = "team"
	RoleClient UserRole = "client"
	RoleUser   UserRole = "user"
)

// ValidRole reports whether r is one of the known roles.
func ValidRole(r UserRole) bool {
	switch r {
	case RoleAdmin, RoleTeam, RoleClient, RoleUser:
		return true
	}
	return false
}

type User struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name       string             `bson:"name" json:"name"`
	Email      string             `bson:"email" json:"email"`
	Role       UserRole           `bson:"role" json:"role"`
	Position   string             `bson:"position,omitempty" json:"position,omitempty"`
	Department string             `bson:"department,omitempty" json:"department,omitempty"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// UserPatch enumerates the mutable fields of a User. The id is immutable
// and therefore has no place here.
type UserPatch struct {
	Name       *string   `json:"name,omitempty"`
	Email      *string   `json:"email,omitempty"`
	Role       *UserRole `json:"role,omitempty"`
	Position   *string   `json:"position,omitempty"`
	Department *string   `json:"department,omitempty"`
}
