// Package taskpolicy provides authorization policies for tasks.
//
// Authorization rules:
//   - A task is visible to its creator, its assignee, and every member
//     (or owner) of the project it belongs to
//   - The same set of people may mutate or delete the task
//   - Tasks outside that set do not exist as far as the caller can tell
package taskpolicy

import (
	"context"
	"errors"

	"github.com/taskhub/taskhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ListFilter carries the optional narrowing criteria for task listing.
// Zero values mean "no constraint".
type ListFilter struct {
	Status    models.TaskStatus
	Priority  models.Priority
	ProjectID *primitive.ObjectID
	InboxOnly bool
}

// VisibilityFilter builds the single query predicate covering everything the
// user may see: tasks they created, tasks assigned to them, and tasks in
// projects they belong to. Running one query keeps the result set deduped
// and lets the index on project_id do the heavy lifting.
func VisibilityFilter(userID primitive.ObjectID, memberProjectIDs []primitive.ObjectID, f ListFilter) bson.M {
	or := []bson.M{
		{"assignee_id": userID},
		{"created_by_id": userID},
	}
	if len(memberProjectIDs) > 0 {
		or = append(or, bson.M{"project_id": bson.M{"$in": memberProjectIDs}})
	}

	q := bson.M{"$or": or}
	if f.Status != "" {
		q["status"] = f.Status
	}
	if f.Priority != "" {
		q["priority"] = f.Priority
	}
	if f.ProjectID != nil {
		q["project_id"] = *f.ProjectID
	}
	if f.InboxOnly {
		q["is_inbox"] = true
	}
	return q
}

// CanAccess reports whether the user may view or mutate the task. Creator
// and assignee are decided without touching the database; only the project
// path needs a lookup.
func CanAccess(ctx context.Context, db *mongo.Database, t models.Task, userID primitive.ObjectID) (bool, error) {
	if t.CreatedBy == userID {
		return true, nil
	}
	if t.AssigneeID != nil && *t.AssigneeID == userID {
		return true, nil
	}
	if t.ProjectID == nil {
		return false, nil
	}

	var p struct {
		OwnerID primitive.ObjectID `bson:"owner_id"`
	}
	err := db.Collection("projects").
		FindOne(ctx, bson.M{"_id": *t.ProjectID}).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// Dangling project reference; fall back to membership.
			return hasMembership(ctx, db, *t.ProjectID, userID)
		}
		return false, err
	}
	if p.OwnerID == userID {
		return true, nil
	}
	return hasMembership(ctx, db, *t.ProjectID, userID)
}

func hasMembership(ctx context.Context, db *mongo.Database, projectID, userID primitive.ObjectID) (bool, error) {
	n, err := db.Collection("project_members").CountDocuments(ctx, bson.M{
		"project_id": projectID,
		"user_id":    userID,
	})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
