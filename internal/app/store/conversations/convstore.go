// internal/app/store/conversations/convstore.go
package convstore

import (
	"context"
	"errors"
	"time"

	"github.com/taskhub/taskhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrAlreadyClaimed reports that a suggestion's created_task_id was set by
// an earlier (or concurrent) materialization.
var ErrAlreadyClaimed = errors.New("suggestion already materialized")

type Store struct {
	conversations *mongo.Collection
	messages      *mongo.Collection
	suggestions   *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		conversations: db.Collection("ai_conversations"),
		messages:      db.Collection("ai_messages"),
		suggestions:   db.Collection("ai_task_suggestions"),
	}
}

func (s *Store) GetConversation(ctx context.Context, id primitive.ObjectID) (models.Conversation, error) {
	var c models.Conversation
	if err := s.conversations.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return models.Conversation{}, err
	}
	return c, nil
}

func (s *Store) InsertConversation(ctx context.Context, userID primitive.ObjectID, title string) (models.Conversation, error) {
	now := time.Now().UTC()
	c := models.Conversation{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.conversations.InsertOne(ctx, c); err != nil {
		return models.Conversation{}, err
	}
	return c, nil
}

// ListConversations returns the user's conversations, most recent activity first.
func (s *Store) ListConversations(ctx context.Context, userID primitive.ObjectID) ([]models.Conversation, error) {
	cur, err := s.conversations.Find(ctx,
		bson.M{"user_id": userID},
		options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Conversation
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// TouchUpdatedAt bumps a conversation's recency after new messages land.
func (s *Store) TouchUpdatedAt(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.conversations.UpdateByID(ctx, id,
		bson.M{"$set": bson.M{"updated_at": time.Now().UTC()}})
	return err
}

func (s *Store) DeleteConversation(ctx context.Context, id primitive.ObjectID) error {
	msgFilter := bson.M{"conversation_id": id}
	cur, err := s.messages.Find(ctx, msgFilter, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return err
	}
	var ids []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cur.All(ctx, &ids); err != nil {
		return err
	}
	if len(ids) > 0 {
		msgIDs := make([]primitive.ObjectID, len(ids))
		for i, m := range ids {
			msgIDs[i] = m.ID
		}
		if _, err := s.suggestions.DeleteMany(ctx, bson.M{"message_id": bson.M{"$in": msgIDs}}); err != nil {
			return err
		}
	}
	if _, err := s.messages.DeleteMany(ctx, msgFilter); err != nil {
		return err
	}
	_, err = s.conversations.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (s *Store) InsertMessage(ctx context.Context, conversationID primitive.ObjectID, role, content string) (models.Message, error) {
	m := models.Message{
		ID:             primitive.NewObjectID(),
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		CreatedAt:      time.Now().UTC(),
	}
	if _, err := s.messages.InsertOne(ctx, m); err != nil {
		return models.Message{}, err
	}
	return m, nil
}

// ListMessages returns a conversation's messages in chronological order.
func (s *Store) ListMessages(ctx context.Context, conversationID primitive.ObjectID) ([]models.Message, error) {
	cur, err := s.messages.Find(ctx,
		bson.M{"conversation_id": conversationID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Message
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) InsertSuggestions(ctx context.Context, suggs []models.TaskSuggestion) error {
	if len(suggs) == 0 {
		return nil
	}
	docs := make([]any, len(suggs))
	for i := range suggs {
		docs[i] = suggs[i]
	}
	_, err := s.suggestions.InsertMany(ctx, docs)
	return err
}

func (s *Store) GetSuggestion(ctx context.Context, id primitive.ObjectID) (models.TaskSuggestion, error) {
	var sg models.TaskSuggestion
	if err := s.suggestions.FindOne(ctx, bson.M{"_id": id}).Decode(&sg); err != nil {
		return models.TaskSuggestion{}, err
	}
	return sg, nil
}

// ListSuggestionsByMessages returns suggestions attached to any of the
// given messages, keyed for response assembly by the caller.
func (s *Store) ListSuggestionsByMessages(ctx context.Context, messageIDs []primitive.ObjectID) ([]models.TaskSuggestion, error) {
	if len(messageIDs) == 0 {
		return nil, nil
	}
	cur, err := s.suggestions.Find(ctx, bson.M{"message_id": bson.M{"$in": messageIDs}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.TaskSuggestion
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ClaimSuggestion stamps created_task_id if and only if it is still unset.
// The conditional write is what makes materialization exactly-once even on
// deployments where multi-document transactions are unavailable: of two
// concurrent claims, exactly one matches.
func (s *Store) ClaimSuggestion(ctx context.Context, id, taskID primitive.ObjectID) error {
	res, err := s.suggestions.UpdateOne(ctx,
		bson.M{"_id": id, "created_task_id": nil},
		bson.M{"$set": bson.M{"created_task_id": taskID}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrAlreadyClaimed
	}
	return nil
}

// UnclaimSuggestion reverses a claim whose task insert failed. It only
// matches our own claim, so it cannot clobber a competing winner.
func (s *Store) UnclaimSuggestion(ctx context.Context, id, taskID primitive.ObjectID) error {
	_, err := s.suggestions.UpdateOne(ctx,
		bson.M{"_id": id, "created_task_id": taskID},
		bson.M{"$set": bson.M{"created_task_id": nil}},
	)
	return err
}
