// internal/domain/models/project.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Project is a collection of tasks owned by exactly one user.
//
// NOTE:
//   - The member list is not embedded on Project. All membership is stored
//     in the project_members collection; the owner is implicitly authorized
//     regardless of membership rows.
//   - TotalTasks, CompletedTasks, and Progress are derived on read by the
//     reconcile package and are never trusted from storage.
type Project struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Status      ProjectStatus      `bson:"status" json:"status"`
	DueDate     *time.Time         `bson:"due_date,omitempty" json:"due_date,omitempty"`
	OwnerID     primitive.ObjectID `bson:"owner_id" json:"owner_id"`

	// Derived, recomputed on every read. Stored values are a cache at best.
	TotalTasks     int `bson:"total_tasks,omitempty" json:"total_tasks"`
	CompletedTasks int `bson:"completed_tasks,omitempty" json:"completed_tasks"`
	Progress       int `bson:"progress,omitempty" json:"progress"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// ProjectMember is the authoritative join between users and projects.
// Exactly one document per (project_id, user_id). Membership grants read and
// task access inside the project, not ownership rights.
type ProjectMember struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProjectID primitive.ObjectID `bson:"project_id" json:"project_id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	AddedAt   time.Time          `bson:"added_at" json:"added_at"`
}
