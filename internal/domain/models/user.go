// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is an account that can own projects, create tasks, and hold AI
// planning conversations.
//
// NOTE:
//   - Project membership is not embedded on User.
//     Use the project_members collection to discover a user's projects.
//   - Accounts are soft-disabled via Active; user documents are never
//     hard-deleted by the application.
type User struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email          string             `bson:"email" json:"email"`
	EmailCI        string             `bson:"email_ci" json:"-"` // lowercase, diacritics-stripped
	Name           string             `bson:"name" json:"name"`
	HashedPassword string             `bson:"hashed_password" json:"-"`
	AvatarURL      string             `bson:"avatar_url,omitempty" json:"avatar_url,omitempty"`
	Role           string             `bson:"role" json:"role"` // display attribute, e.g. "User", "Manager"
	Department     string             `bson:"department,omitempty" json:"department,omitempty"`
	Active         bool               `bson:"active" json:"active"`

	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time  `bson:"updated_at" json:"updated_at"`
	LastLogin *time.Time `bson:"last_login,omitempty" json:"last_login,omitempty"`
}
