// internal/app/store/projects/projectstore.go
package projectstore

import (
	"context"
	"time"

	"github.com/taskhub/taskhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("projects")}
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Project, error) {
	var p models.Project
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return models.Project{}, err
	}
	return p, nil
}

// Insert writes a new project document. The owner's membership row is
// written by the caller in the same transaction (see the projects feature).
func (s *Store) Insert(ctx context.Context, p models.Project) (models.Project, error) {
	now := time.Now().UTC()
	p.ID = primitive.NewObjectID()
	if p.Status == "" {
		p.Status = models.ProjectPlanning
	}
	p.CreatedAt = now
	p.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, p); err != nil {
		return models.Project{}, err
	}
	return p, nil
}

// UpdateInfo applies the provided metadata patch. Nil patch fields are left
// untouched; Description may be cleared to empty.
func (s *Store) UpdateInfo(ctx context.Context, id primitive.ObjectID, name *string, description *string, status *models.ProjectStatus, dueDate *time.Time) error {
	set := bson.M{"updated_at": time.Now().UTC()}
	if name != nil {
		set["name"] = *name
	}
	if description != nil {
		set["description"] = *description
	}
	if status != nil {
		set["status"] = *status
	}
	if dueDate != nil {
		set["due_date"] = dueDate.UTC()
	}
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": set})
	return err
}

// Delete removes a project by ID. Returns the number of documents deleted (0 or 1).
// Task and membership cleanup happens alongside in the feature's transaction.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// ListForUser returns projects the user owns plus projects behind the given
// membership ids, deduplicated by project identity in a single query.
func (s *Store) ListForUser(ctx context.Context, userID primitive.ObjectID, memberProjectIDs []primitive.ObjectID) ([]models.Project, error) {
	filter := bson.M{"owner_id": userID}
	if len(memberProjectIDs) > 0 {
		filter = bson.M{"$or": bson.A{
			bson.M{"owner_id": userID},
			bson.M{"_id": bson.M{"$in": memberProjectIDs}},
		}}
	}

	cur, err := s.c.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var projects []models.Project
	if err := cur.All(ctx, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}
