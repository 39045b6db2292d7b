// internal/domain/models/conversation.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message roles within a conversation.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Conversation is an AI planning chat owned by one user.
type Conversation struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID primitive.ObjectID `bson:"user_id" json:"user_id"`
	Title  string             `bson:"title,omitempty" json:"title,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Message is one ordered turn inside a conversation.
type Message struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ConversationID primitive.ObjectID `bson:"conversation_id" json:"conversation_id"`
	Role           string             `bson:"role" json:"role"` // RoleUser | RoleAssistant
	Content        string             `bson:"content" json:"content"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
}

// TaskSuggestion is an AI-proposed task attached to one assistant message.
//
// CreatedTaskID is monotonic: nil until the suggestion is materialized into a
// real task, then set exactly once and never reset. The claim happens in the
// same transaction as the task insert (see the planner feature).
type TaskSuggestion struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	MessageID primitive.ObjectID `bson:"message_id" json:"message_id"`

	Title             string   `bson:"title" json:"title"`
	Description       string   `bson:"description,omitempty" json:"description,omitempty"`
	Priority          Priority `bson:"priority" json:"priority"`
	EstimatedDuration string   `bson:"estimated_duration,omitempty" json:"estimated_duration,omitempty"`
	ProjectName       string   `bson:"project_name,omitempty" json:"project_name,omitempty"`

	CreatedTaskID *primitive.ObjectID `bson:"created_task_id,omitempty" json:"created_task_id,omitempty"`
}
