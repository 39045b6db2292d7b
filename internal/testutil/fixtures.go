// internal/testutil/fixtures.go
package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/taskhub/taskhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
// Repeated calls accumulate parameters on the same route context.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, ok := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if !ok {
		rctx = chi.NewRouteContext()
		r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
	}
	rctx.URLParams.Add(key, value)
	return r
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser creates an active test user.
func (f *Fixtures) CreateUser(ctx context.Context, name, email string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	user := models.User{
		ID:             primitive.NewObjectID(),
		Email:          email,
		EmailCI:        text.Fold(email),
		Name:           name,
		HashedPassword: "$2a$10$unusable-test-hash-0123456789",
		Role:           "User",
		Active:         true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if _, err := f.db.Collection("users").InsertOne(ctx, user); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateInactiveUser creates a deactivated test user.
func (f *Fixtures) CreateInactiveUser(ctx context.Context, name, email string) models.User {
	f.t.Helper()

	u := f.CreateUser(ctx, name, email)
	_, err := f.db.Collection("users").UpdateByID(ctx, u.ID,
		map[string]any{"$set": map[string]any{"active": false}})
	if err != nil {
		f.t.Fatalf("failed to deactivate test user: %v", err)
	}
	u.Active = false
	return u
}

// CreateProject creates a test project owned by ownerID, including the
// owner's membership row the way the projects feature does on create.
func (f *Fixtures) CreateProject(ctx context.Context, name string, ownerID primitive.ObjectID) models.Project {
	f.t.Helper()

	now := time.Now().UTC()
	p := models.Project{
		ID:        primitive.NewObjectID(),
		Name:      name,
		Status:    models.ProjectPlanning,
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("projects").InsertOne(ctx, p); err != nil {
		f.t.Fatalf("failed to create test project: %v", err)
	}
	f.AddMember(ctx, p.ID, ownerID)
	return p
}

// AddMember creates a membership row linking a user to a project.
func (f *Fixtures) AddMember(ctx context.Context, projectID, userID primitive.ObjectID) models.ProjectMember {
	f.t.Helper()

	m := models.ProjectMember{
		ID:        primitive.NewObjectID(),
		ProjectID: projectID,
		UserID:    userID,
		AddedAt:   time.Now().UTC(),
	}
	if _, err := f.db.Collection("project_members").InsertOne(ctx, m); err != nil {
		f.t.Fatalf("failed to create test membership: %v", err)
	}
	return m
}

// CreateTask inserts a task with the given creator. Mutate the returned
// value via TaskOption-style closures before insert by using CreateTaskWith.
func (f *Fixtures) CreateTask(ctx context.Context, title string, createdBy primitive.ObjectID) models.Task {
	f.t.Helper()
	return f.CreateTaskWith(ctx, title, createdBy, nil)
}

// CreateTaskWith inserts a task after applying mutate to the defaults.
func (f *Fixtures) CreateTaskWith(ctx context.Context, title string, createdBy primitive.ObjectID, mutate func(*models.Task)) models.Task {
	f.t.Helper()

	now := time.Now().UTC()
	task := models.Task{
		ID:        primitive.NewObjectID(),
		Title:     title,
		Priority:  models.PriorityMedium,
		Status:    models.TaskOpen,
		CreatedBy: createdBy,
		IsInbox:   true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if mutate != nil {
		mutate(&task)
	}
	if task.ProjectID != nil {
		task.IsInbox = false
	}

	if _, err := f.db.Collection("tasks").InsertOne(ctx, task); err != nil {
		f.t.Fatalf("failed to create test task: %v", err)
	}
	return task
}

// CreateConversation creates an AI planning conversation for userID.
func (f *Fixtures) CreateConversation(ctx context.Context, userID primitive.ObjectID, title string) models.Conversation {
	f.t.Helper()

	now := time.Now().UTC()
	c := models.Conversation{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("ai_conversations").InsertOne(ctx, c); err != nil {
		f.t.Fatalf("failed to create test conversation: %v", err)
	}
	return c
}

// CreateMessage appends a message to a conversation.
func (f *Fixtures) CreateMessage(ctx context.Context, conversationID primitive.ObjectID, role, content string) models.Message {
	f.t.Helper()

	m := models.Message{
		ID:             primitive.NewObjectID(),
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		CreatedAt:      time.Now().UTC(),
	}
	if _, err := f.db.Collection("ai_messages").InsertOne(ctx, m); err != nil {
		f.t.Fatalf("failed to create test message: %v", err)
	}
	return m
}

// CreateSuggestion attaches an unmaterialized task suggestion to a message.
func (f *Fixtures) CreateSuggestion(ctx context.Context, messageID primitive.ObjectID, title string) models.TaskSuggestion {
	f.t.Helper()

	s := models.TaskSuggestion{
		ID:        primitive.NewObjectID(),
		MessageID: messageID,
		Title:     title,
		Priority:  models.PriorityMedium,
	}
	if _, err := f.db.Collection("ai_task_suggestions").InsertOne(ctx, s); err != nil {
		f.t.Fatalf("failed to create test suggestion: %v", err)
	}
	return s
}
