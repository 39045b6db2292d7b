// internal/app/features/planner/chat.go
package planner

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/taskhub/taskhub/internal/app/ai"
	"github.com/taskhub/taskhub/internal/app/features/settings"
	"github.com/taskhub/taskhub/internal/app/system/apierr"
	"github.com/taskhub/taskhub/internal/app/system/authz"
	"github.com/taskhub/taskhub/internal/app/system/httpjson"
	"github.com/taskhub/taskhub/internal/app/system/sanitize"
	"github.com/taskhub/taskhub/internal/app/system/timeouts"
	"github.com/taskhub/taskhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type chatRequest struct {
	Message        string  `json:"message"`
	ConversationID *string `json:"conversation_id"`
}

type chatResponse struct {
	ConversationID string               `json:"conversation_id"`
	Message        messageResponse      `json:"message"`
	Suggestions    []suggestionResponse `json:"suggestions"`
}

// providerErrorReply is recorded as the assistant turn when the upstream
// call fails, so the conversation stays coherent and the client still gets
// a 200 with something to render.
const providerErrorReply = "Sorry, I ran into a problem reaching the AI provider. Please check your API key in settings and try again."

// HandleChat handles POST /ai/chat. The user turn is stored before the
// provider is called, so a provider failure never loses what the user
// typed.
func (h *Handler) HandleChat(w http.ResponseWriter, r *http.Request) {
	userID, ok := authz.UserID(r)
	if !ok {
		apierr.Write(w, h.Log, apierr.Unauthorized("sign in required"))
		return
	}

	var req chatRequest
	if err := httpjson.Decode(r, &req); err != nil {
		apierr.Write(w, h.Log, apierr.Validation(err.Error()))
		return
	}
	text := strings.TrimSpace(sanitize.Body(req.Message))
	if text == "" {
		apierr.Write(w, h.Log, apierr.Validation("message is required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	conv, err := h.loadOrCreateConversation(ctx, userID, req.ConversationID, text)
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}

	if _, err := h.Conversations.InsertMessage(ctx, conv.ID, models.RoleUser, text); err != nil {
		apierr.Write(w, h.Log, err)
		return
	}

	history, err := h.Conversations.ListMessages(ctx, conv.ID)
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}
	turns := make([]ai.Turn, 0, len(history))
	for _, m := range history {
		turns = append(turns, ai.Turn{Role: m.Role, Content: m.Content})
	}

	reply, suggs, provErr := h.complete(ctx, userID, turns)
	if provErr != nil {
		var verr *apierr.Error
		if errors.As(provErr, &verr) {
			apierr.Write(w, h.Log, verr)
			return
		}
		h.Log.Warn("planner: provider call failed", zap.Error(provErr))
		reply, suggs = providerErrorReply, nil
	}

	assistantMsg, err := h.Conversations.InsertMessage(ctx, conv.ID, models.RoleAssistant, reply)
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}

	stored := make([]models.TaskSuggestion, 0, len(suggs))
	for _, s := range suggs {
		stored = append(stored, models.TaskSuggestion{
			ID:                primitive.NewObjectID(),
			MessageID:         assistantMsg.ID,
			Title:             sanitize.Text(s.Title),
			Description:       sanitize.Body(s.Description),
			Priority:          models.Priority(s.Priority),
			EstimatedDuration: sanitize.Text(s.EstimatedDuration),
			ProjectName:       sanitize.Text(s.ProjectName),
		})
	}
	if err := h.Conversations.InsertSuggestions(ctx, stored); err != nil {
		apierr.Write(w, h.Log, err)
		return
	}
	if err := h.Conversations.TouchUpdatedAt(ctx, conv.ID); err != nil {
		h.Log.Warn("planner: touch conversation failed", zap.Error(err))
	}

	out := chatResponse{
		ConversationID: conv.ID.Hex(),
		Message:        toMessageResponse(assistantMsg),
		Suggestions:    make([]suggestionResponse, 0, len(stored)),
	}
	for _, s := range stored {
		out.Suggestions = append(out.Suggestions, toSuggestionResponse(s))
	}
	httpjson.Write(w, h.Log, http.StatusOK, out)
}

// complete resolves credentials, builds the provider, and runs the call.
// Configuration problems (AI disabled, no key) come back as validation
// errors; transport and upstream failures come back as plain errors for the
// caller to absorb into the conversation.
func (h *Handler) complete(ctx context.Context, userID primitive.ObjectID, turns []ai.Turn) (string, []ai.Suggestion, error) {
	provider, key, err := h.Credentials.Credentials(ctx, userID)
	if err != nil {
		switch {
		case errors.Is(err, settings.ErrAIDisabled):
			return "", nil, apierr.Validation("ai features are disabled; enable them in settings")
		case errors.Is(err, settings.ErrNoAPIKey):
			return "", nil, apierr.Validation("no api key configured for your preferred provider")
		}
		return "", nil, err
	}

	client, err := h.NewProvider(provider, key)
	if err != nil {
		return "", nil, err
	}

	raw, err := client.Complete(ctx, turns)
	if err != nil {
		return "", nil, err
	}
	reply, suggs := ai.ParseReply(raw)
	return reply, suggs, nil
}

func (h *Handler) loadOrCreateConversation(ctx context.Context, userID primitive.ObjectID, rawID *string, firstMessage string) (models.Conversation, error) {
	if rawID == nil || *rawID == "" {
		return h.Conversations.InsertConversation(ctx, userID, titleFrom(firstMessage))
	}

	id, err := primitive.ObjectIDFromHex(*rawID)
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

// titleFrom derives a conversation title from the opening message.
func titleFrom(message string) string {
	const max = 60
	if utf8.RuneCountInString(message) <= max {
		return message
	}
	runes := []rune(message)
	return strings.TrimSpace(string(runes[:max])) + "…"
}
