// internal/app/features/planner/conversations.go
package planner

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/taskhub/taskhub/internal/app/system/apierr"
	"github.com/taskhub/taskhub/internal/app/system/authz"
	"github.com/taskhub/taskhub/internal/app/system/httpjson"
	"github.com/taskhub/taskhub/internal/app/system/timeouts"
	"github.com/taskhub/taskhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type conversationSummary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ServeConversations handles GET /ai/conversations: the caller's
// conversations, most recent activity first.
func (h *Handler) ServeConversations(w http.ResponseWriter, r *http.Request) {
	userID, ok := authz.UserID(r)
	if !ok {
		apierr.Write(w, h.Log, apierr.Unauthorized("sign in required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	convs, err := h.Conversations.ListConversations(ctx, userID)
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}

	out := make([]conversationSummary, 0, len(convs))
	for _, c := range convs {
		out = append(out, conversationSummary{
			ID:        c.ID.Hex(),
			Title:     c.Title,
			CreatedAt: c.CreatedAt,
			UpdatedAt: c.UpdatedAt,
		})
	}
	httpjson.Write(w, h.Log, http.StatusOK, out)
}

type conversationDetail struct {
	conversationSummary
	Messages    []messageResponse    `json:"messages"`
	Suggestions []suggestionResponse `json:"suggestions"`
}

// ServeConversation handles GET /ai/conversations/{id}: full history plus
// every suggestion attached to it.
func (h *Handler) ServeConversation(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	conv, err := h.loadOwned(ctx, r)
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}

	msgs, err := h.Conversations.ListMessages(ctx, conv.ID)
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}
	msgIDs := make([]primitive.ObjectID, 0, len(msgs))
	for _, m := range msgs {
		msgIDs = append(msgIDs, m.ID)
	}
	suggs, err := h.Conversations.ListSuggestionsByMessages(ctx, msgIDs)
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}

	out := conversationDetail{
		conversationSummary: conversationSummary{
			ID:        conv.ID.Hex(),
			Title:     conv.Title,
			CreatedAt: conv.CreatedAt,
			UpdatedAt: conv.UpdatedAt,
		},
		Messages:    make([]messageResponse, 0, len(msgs)),
		Suggestions: make([]suggestionResponse, 0, len(suggs)),
	}
	for _, m := range msgs {
		out.Messages = append(out.Messages, toMessageResponse(m))
	}
	for _, s := range suggs {
		out.Suggestions = append(out.Suggestions, toSuggestionResponse(s))
	}
	httpjson.Write(w, h.Log, http.StatusOK, out)
}

// HandleDeleteConversation handles DELETE /ai/conversations/{id}, taking
// the messages and suggestions with it.
func (h *Handler) HandleDeleteConversation(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	conv, err := h.loadOwned(ctx, r)
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}

	if err := h.Conversations.DeleteConversation(ctx, conv.ID); err != nil {
		apierr.Write(w, h.Log, err)
		return
	}
	httpjson.Write(w, h.Log, http.StatusOK, map[string]string{"message": "conversation deleted"})
}

// loadOwned resolves {id} and enforces conversation ownership. Missing and
// foreign conversations are indistinguishable.
func (h *Handler) loadOwned(ctx context.Context, r *http.Request) (models.Conversation, error) {
	userID, ok := authz.UserID(r)
	if !ok {
		return models.Conversation{}, apierr.Unauthorized("sign in required")
	}

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		return models.Conversation{}, apierr.NotFound("conversation not found")
	}
	conv, err := h.Conversations.GetConversation(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Conversation{}, apierr.NotFound("conversation not found")
		}
		return models.Conversation{}, err
	}
	if conv.UserID != userID {
		return models.Conversation{}, apierr.NotFound("conversation not found")
	}
	return conv, nil
}
