// internal/app/store/tasks/taskstore.go
package taskstore

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
	return &Store{c: db.Collection("tasks")}
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Task, error) {
	var t models.Task
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&t); err != nil {
		return models.Task{}, err
	}
	return t, nil
}

// GetByIDs loads every task in ids. Callers needing all-or-nothing
// semantics compare the result length against len(ids).
func (s *Store) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Task, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var tasks []models.Task
	if err := cur.All(ctx, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (s *Store) Insert(ctx context.Context, t models.Task) (models.Task, error) {
	now := time.Now().UTC()
	if t.ID.IsZero() {
		t.ID = primitive.NewObjectID()
	}
	if t.Status == "" {
		t.Status = models.TaskOpen
	}
	if t.Priority == "" {
		t.Priority = models.PriorityMedium
	}
	t.CreatedAt = now
	t.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, t); err != nil {
		return models.Task{}, err
	}
	return t, nil
}

// Find runs an arbitrary visibility filter (built by taskpolicy) with a sort
// that is stable within a single response: due date ascending, then id.
func (s *Store) Find(ctx context.Context, filter bson.M) ([]models.Task, error) {
	sort := bson.D{{Key: "due_date", Value: 1}, {Key: "_id", Value: 1}}
	cur, err := s.c.Find(ctx, filter, options.Find().SetSort(sort))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var tasks []models.Task
	if err := cur.All(ctx, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// Update applies a $set patch to one task, stamping updated_at.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, set bson.M) error {
	set["updated_at"] = time.Now().UTC()
	update := bson.M{"$set": set}
	if unset := unsetFrom(set); len(unset) > 0 {
		update["$unset"] = unset
	}
	_, err := s.c.UpdateByID(ctx, id, update)
	return err
}

// UpdateMany applies one uniform $set patch to every task in ids.
// Authorization for every id must already have succeeded; this method does
// not re-check and writes the whole batch in one statement so overlapping
// bulk updates serialize per document at the storage layer.
func (s *Store) UpdateMany(ctx context.Context, ids []primitive.ObjectID, set bson.M) (int64, error) {
	set["updated_at"] = time.Now().UTC()
	update := bson.M{"$set": set}
	if unset := unsetFrom(set); len(unset) > 0 {
		update["$unset"] = unset
	}
	res, err := s.c.UpdateMany(ctx, bson.M{"_id": bson.M{"$in": ids}}, update)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteByProject removes all of a project's tasks (project delete cleanup).
func (s *Store) DeleteByProject(ctx context.Context, projectID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"project_id": projectID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// unsetFrom pulls sentinel nil values out of a $set patch into a $unset
// document, so callers can clear optional fields (due_date, project_id).
func unsetFrom(set bson.M) bson.M {
	unset := bson.M{}
	for k, v := range set {
		if v == nil {
			delete(set, k)
			unset[k] = ""
		}
	}
	return unset
}
