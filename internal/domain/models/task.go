// internal/domain/models/task.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Task is a unit of work. A task without a project lives in the creator's
// inbox (IsInbox true); attaching a project forces IsInbox false.
//
// Invariants:
//   - CreatedBy is immutable after creation; AssigneeID may change.
//   - Moving to Completed stamps CompletedAt; no other status does.
//   - Overdue is assigned by reconcile.TaskStatus when the due date has
//     passed and the task is not Completed. A completed task is never
//     flipped back to Overdue.
type Task struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Title       string               `bson:"title" json:"title"`
	Description string               `bson:"description,omitempty" json:"description,omitempty"`
	Priority    Priority             `bson:"priority" json:"priority"`
	Status      TaskStatus           `bson:"status" json:"status"`
	DueDate     *time.Time           `bson:"due_date,omitempty" json:"due_date,omitempty"`
	ProjectID   *primitive.ObjectID  `bson:"project_id,omitempty" json:"project_id,omitempty"`
	AssigneeID  *primitive.ObjectID  `bson:"assignee_id,omitempty" json:"assignee_id,omitempty"`
	CreatedBy   primitive.ObjectID   `bson:"created_by_id" json:"created_by_id"`
	IsInbox     bool                 `bson:"is_inbox" json:"is_inbox"`
	TagIDs      []primitive.ObjectID `bson:"tag_ids,omitempty" json:"-"`

	CreatedAt   time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `bson:"updated_at" json:"updated_at"`
	CompletedAt *time.Time `bson:"completed_at,omitempty" json:"completed_at,omitempty"`
}

// Tag is a global label, unique by name, created lazily the first time any
// task references it.
type Tag struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name   string             `bson:"name" json:"name"`
	NameCI string             `bson:"name_ci" json:"-"`
	Color  string             `bson:"color" json:"color"`
}

// DefaultTagColor is applied to tags created lazily from task input.
const DefaultTagColor = "#6B7280"
