// internal/app/store/members/memberstore.go

// Package memberstore owns the project_members collection, the
// authoritative join between users and projects. One document per
// (project_id, user_id), enforced by a unique index.
package memberstore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/taskhub/taskhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var ErrDuplicateMember = errors.New("user is already a member of this project")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("project_members")}
}

func (s *Store) Add(ctx context.Context, projectID, userID primitive.ObjectID) (models.ProjectMember, error) {
	m := models.ProjectMember{
		ID:        primitive.NewObjectID(),
		ProjectID: projectID,
		UserID:    userID,
		AddedAt:   time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, m); err != nil {
		if wafflemongo.IsDup(err) {
			return models.ProjectMember{}, ErrDuplicateMember
		}
		return models.ProjectMember{}, err
	}
	return m, nil
}

// Remove deletes one membership row. Returns the number deleted (0 or 1).
func (s *Store) Remove(ctx context.Context, projectID, userID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"project_id": projectID, "user_id": userID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// RemoveByProject deletes all membership rows for a project (project delete cleanup).
func (s *Store) RemoveByProject(ctx context.Context, projectID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"project_id": projectID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// IsMember reports whether a membership row exists for (project, user).
func (s *Store) IsMember(ctx context.Context, projectID, userID primitive.ObjectID) (bool, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{"project_id": projectID, "user_id": userID})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ProjectIDsForUser returns the ids of every project the user belongs to.
// This is the membership half of the task-visibility predicate.
func (s *Store) ProjectIDsForUser(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	cur, err := s.c.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []models.ProjectMember
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(rows))
	for _, m := range rows {
		ids = append(ids, m.ProjectID)
	}
	return ids, nil
}

// ListByProject returns the membership rows of one project.
func (s *Store) ListByProject(ctx context.Context, projectID primitive.ObjectID) ([]models.ProjectMember, error) {
	cur, err := s.c.Find(ctx, bson.M{"project_id": projectID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []models.ProjectMember
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}
