// internal/app/features/planner/materialize.go
package planner

import (
	"context"
	"errors"
	"net/http"

	"github.com/taskhub/taskhub/internal/app/store/conversations"
	"github.com/taskhub/taskhub/internal/app/system/apierr"
	"github.com/taskhub/taskhub/internal/app/system/authz"
	"github.com/taskhub/taskhub/internal/app/system/httpjson"
	"github.com/taskhub/taskhub/internal/app/system/timeouts"
	"github.com/taskhub/taskhub/internal/app/system/txn"
	"github.com/taskhub/taskhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// HandleMaterialize handles POST /ai/suggestions/{id}/create-task. The
// checks run in a fixed order: missing suggestion, then ownership of the
// conversation it came from, then prior materialization. The task insert
// and the created_task_id claim commit together; with transactions
// unavailable, the conditional claim still makes the conversion
// exactly-once, and a failed insert releases the claim.
func (h *Handler) HandleMaterialize(w http.ResponseWriter, r *http.Request) {
	userID, ok := authz.UserID(r)
	if !ok {
		apierr.Write(w, h.Log, apierr.Unauthorized("sign in required"))
		return
	}

	sugID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		apierr.Write(w, h.Log, apierr.NotFound("suggestion not found"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	sug, err := h.Conversations.GetSuggestion(ctx, sugID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			apierr.Write(w, h.Log, apierr.NotFound("suggestion not found"))
			return
		}
		apierr.Write(w, h.Log, err)
		return
	}

	owner, err := h.suggestionOwner(ctx, sug)
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}
	if owner != userID {
		apierr.Write(w, h.Log, apierr.PermissionDenied("not your suggestion"))
		return
	}

	if sug.CreatedTaskID != nil {
		apierr.Write(w, h.Log, apierr.AlreadyMaterialized())
		return
	}

	priority := sug.Priority
	if !models.ValidPriority(priority) {
		priority = models.PriorityMedium
	}

	taskID := primitive.NewObjectID()
	var created models.Task
	err = txn.Run(ctx, h.DB, h.Log, func(ctx context.Context) error {
		if err := h.Conversations.ClaimSuggestion(ctx, sug.ID, taskID); err != nil {
			return err
		}
		t, err := h.Tasks.Insert(ctx, models.Task{
			ID:          taskID,
			Title:       sug.Title,
			Description: sug.Description,
			Priority:    priority,
			Status:      models.TaskOpen,
			AssigneeID:  &userID,
			CreatedBy:   userID,
			IsInbox:     true,
		})
		if err != nil {
			if unclaimErr := h.Conversations.UnclaimSuggestion(ctx, sug.ID, taskID); unclaimErr != nil {
				h.Log.Error("materialize: unclaim after failed insert",
					zap.String("suggestion_id", sug.ID.Hex()), zap.Error(unclaimErr))
			}
			return err
		}
		created = t
		return nil
	})
	if err != nil {
		if errors.Is(err, convstore.ErrAlreadyClaimed) {
			apierr.Write(w, h.Log, apierr.AlreadyMaterialized())
			return
		}
		apierr.Write(w, h.Log, err)
		return
	}

	h.Log.Info("suggestion materialized",
		zap.String("suggestion_id", sug.ID.Hex()),
		zap.String("task_id", created.ID.Hex()),
		zap.String("user_id", userID.Hex()))
	httpjson.Write(w, h.Log, http.StatusCreated, created)
}

// suggestionOwner walks suggestion -> message -> conversation to find who
// may materialize it.
func (h *Handler) suggestionOwner(ctx context.Context, sug models.TaskSuggestion) (primitive.ObjectID, error) {
	var msg models.Message
	err := h.DB.Collection("ai_messages").
		FindOne(ctx, bson.M{"_id": sug.MessageID}).Decode(&msg)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return primitive.NilObjectID, apierr.NotFound("suggestion not found")
		}
		return primitive.NilObjectID, err
	}

	conv, err := h.Conversations.GetConversation(ctx, msg.ConversationID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return primitive.NilObjectID, apierr.NotFound("suggestion not found")
		}
		return primitive.NilObjectID, err
	}
	return conv.UserID, nil
}
