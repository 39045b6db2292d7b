// internal/app/store/settings/settingsstore.go
package settingsstore

import (
	"context"
	"errors"
	"time"

	"github.com/taskhub/taskhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("user_settings")}
}

// GetOrCreate returns the user's settings row, inserting the defaults on
// first access. The unique index on user_id absorbs the create race: if a
// concurrent request inserts first, we fall through to a re-read.
func (s *Store) GetOrCreate(ctx context.Context, userID primitive.ObjectID) (models.UserSettings, error) {
	var out models.UserSettings
	err := s.c.FindOne(ctx, bson.M{"user_id": userID}).Decode(&out)
	if err == nil {
		return out, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return models.UserSettings{}, err
	}

	out = models.DefaultSettings(userID)
	if _, err := s.c.InsertOne(ctx, out); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			err = s.c.FindOne(ctx, bson.M{"user_id": userID}).Decode(&out)
		}
		if err != nil {
			return models.UserSettings{}, err
		}
	}
	return out, nil
}

// Update persists a partial settings patch. API key fields arrive already
// sealed; an explicit empty string clears the stored ciphertext.
func (s *Store) Update(ctx context.Context, userID primitive.ObjectID, set bson.M) (models.UserSettings, error) {
	set["updated_at"] = time.Now().UTC()
	if _, err := s.c.UpdateOne(ctx, bson.M{"user_id": userID}, bson.M{"$set": set}); err != nil {
		return models.UserSettings{}, err
	}
	var out models.UserSettings
	if err := s.c.FindOne(ctx, bson.M{"user_id": userID}).Decode(&out); err != nil {
		return models.UserSettings{}, err
	}
	return out, nil
}
