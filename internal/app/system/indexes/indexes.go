// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup. Each ensure* function is idempotent.
We aggregate errors so any problem is visible and startup can fail fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database, log *zap.Logger) error {
	var problems []string

	if err := ensureUsers(ctx, db); err != nil {
		problems = append(problems, "users: "+err.Error())
	}
	if err := ensureProjects(ctx, db); err != nil {
		problems = append(problems, "projects: "+err.Error())
	}
	if err := ensureProjectMembers(ctx, db); err != nil {
		problems = append(problems, "project_members: "+err.Error())
	}
	if err := ensureTasks(ctx, db); err != nil {
		problems = append(problems, "tasks: "+err.Error())
	}
	if err := ensureTags(ctx, db); err != nil {
		problems = append(problems, "tags: "+err.Error())
	}
	if err := ensureSettings(ctx, db); err != nil {
		problems = append(problems, "user_settings: "+err.Error())
	}
	if err := ensureConversations(ctx, db); err != nil {
		problems = append(problems, "ai_conversations: "+err.Error())
	}
	if err := ensureMessages(ctx, db); err != nil {
		problems = append(problems, "ai_messages: "+err.Error())
	}
	if err := ensureSuggestions(ctx, db); err != nil {
		problems = append(problems, "ai_task_suggestions: "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}

	log.Info("database indexes ensured")
	return nil
}

// createAll creates the desired indexes for one collection. CreateMany is
// idempotent for identical definitions; an options conflict means an index
// with the same keys already exists under a different shape, which we
// surface instead of silently dropping data structures.
func createAll(ctx context.Context, db *mongo.Database, collection string, defs []mongo.IndexModel) error {
	_, err := db.Collection(collection).Indexes().CreateMany(ctx, defs)
	if err != nil {
		return fmt.Errorf("create indexes: %w", err)
	}
	return nil
}

func ensureUsers(ctx context.Context, db *mongo.Database) error {
	return createAll(ctx, db, "users", []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email_ci", Value: 1}},
			Options: options.Index().SetName("uniq_email_ci").SetUnique(true),
		},
	})
}

func ensureProjects(ctx context.Context, db *mongo.Database) error {
	return createAll(ctx, db, "projects", []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "owner_id", Value: 1}},
			Options: options.Index().SetName("by_owner"),
		},
	})
}

func ensureProjectMembers(ctx context.Context, db *mongo.Database) error {
	return createAll(ctx, db, "project_members", []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "project_id", Value: 1}, {Key: "user_id", Value: 1}},
			Options: options.Index().SetName("uniq_project_user").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetName("by_user"),
		},
	})
}

func ensureTasks(ctx context.Context, db *mongo.Database) error {
	return createAll(ctx, db, "tasks", []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "project_id", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("by_project_status"),
		},
		{
			Keys:    bson.D{{Key: "assignee_id", Value: 1}},
			Options: options.Index().SetName("by_assignee"),
		},
		{
			Keys:    bson.D{{Key: "created_by_id", Value: 1}},
			Options: options.Index().SetName("by_creator"),
		},
	})
}

func ensureTags(ctx context.Context, db *mongo.Database) error {
	return createAll(ctx, db, "tags", []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name_ci", Value: 1}},
			Options: options.Index().SetName("uniq_name_ci").SetUnique(true),
		},
	})
}

func ensureSettings(ctx context.Context, db *mongo.Database) error {
	return createAll(ctx, db, "user_settings", []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetName("uniq_user").SetUnique(true),
		},
	})
}

func ensureConversations(ctx context.Context, db *mongo.Database) error {
	return createAll(ctx, db, "ai_conversations", []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "updated_at", Value: -1}},
			Options: options.Index().SetName("by_user_recency"),
		},
	})
}

func ensureMessages(ctx context.Context, db *mongo.Database) error {
	return createAll(ctx, db, "ai_messages", []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "conversation_id", Value: 1}, {Key: "created_at", Value: 1}},
			Options: options.Index().SetName("by_conversation_order"),
		},
	})
}

func ensureSuggestions(ctx context.Context, db *mongo.Database) error {
	return createAll(ctx, db, "ai_task_suggestions", []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "message_id", Value: 1}},
			Options: options.Index().SetName("by_message"),
		},
	})
}
