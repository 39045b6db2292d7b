// Package projectpolicy provides authorization policies for projects.
//
// Authorization rules:
//   - The project owner has full control: edit, delete, manage members
//   - Members can view the project, its members, and its tasks
//   - Everyone else has no access; existence is not revealed
package projectpolicy

import (
	"context"

	"github.com/taskhub/taskhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// AccessLevel is the caller's relationship to a project.
type AccessLevel int

const (
	AccessNone AccessLevel = iota
	AccessMember
	AccessOwner
)

// Access resolves the caller's access level for a project. Ownership wins
// without a membership lookup; otherwise membership is checked against the
// project_members collection.
func Access(ctx context.Context, db *mongo.Database, p models.Project, userID primitive.ObjectID) (AccessLevel, error) {
	if p.OwnerID == userID {
		return AccessOwner, nil
	}
	n, err := db.Collection("project_members").CountDocuments(ctx, bson.M{
		"project_id": p.ID,
		"user_id":    userID,
	})
	if err != nil {
		return AccessNone, err
	}
	if n > 0 {
		return AccessMember, nil
	}
	return AccessNone, nil
}

// CanView reports whether the access level permits reading the project.
func CanView(level AccessLevel) bool {
	return level >= AccessMember
}

// CanManage reports whether the access level permits editing or deleting the
// project and changing its member list.
func CanManage(level AccessLevel) bool {
	return level == AccessOwner
}
