// internal/app/store/tags/tagstore.go
package tagstore

import (
	"context"

	"github.com/dalemusser/waffle/pantry/text"
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
	return &Store{c: db.Collection("tags")}
}

// EnsureByName resolves a tag by case-insensitive name, creating it with the
// default color on first use. The upsert races safely against concurrent
// callers because name_ci carries a unique index; whichever insert wins,
// everyone reads back the same document.
func (s *Store) EnsureByName(ctx context.Context, name string) (models.Tag, error) {
	folded := text.Fold(name)
	res := s.c.FindOneAndUpdate(ctx,
		bson.M{"name_ci": folded},
		bson.M{"$setOnInsert": bson.M{
			"name":    name,
			"name_ci": folded,
			"color":   models.DefaultTagColor,
		}},
		options.FindOneAndUpdate().
			SetUpsert(true).
			SetReturnDocument(options.After),
	)

	var t models.Tag
	if err := res.Decode(&t); err != nil {
		return models.Tag{}, err
	}
	return t, nil
}

func (s *Store) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Tag, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var tags []models.Tag
	if err := cur.All(ctx, &tags); err != nil {
		return nil, err
	}
	return tags, nil
}
