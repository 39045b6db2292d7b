// internal/app/features/planner/handler.go
package planner

import (
	"context"
	"fmt"
	"time"

	"github.com/taskhub/taskhub/internal/app/ai"
	"github.com/taskhub/taskhub/internal/app/store/conversations"
	"github.com/taskhub/taskhub/internal/app/store/tasks"
	"github.com/taskhub/taskhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// CredentialSource yields the provider name and unsealed API key for a
// user. The settings feature implements it; the planner never reads sealed
// keys itself.
type CredentialSource interface {
	Credentials(ctx context.Context, userID primitive.ObjectID) (provider, key string, err error)
}

// ProviderFactory builds a client for a provider name. Swappable in tests.
type ProviderFactory func(provider, key string) (ai.Provider, error)

// Handler is the shared dependency container for the planning assistant.
type Handler struct {
	DB            *mongo.Database
	Conversations *convstore.Store
	Tasks         *taskstore.Store
	Credentials   CredentialSource
	NewProvider   ProviderFactory
	Log           *zap.Logger
}

func NewHandler(db *mongo.Database, creds CredentialSource, aiTimeout time.Duration, logger *zap.Logger) *Handler {
	return &Handler{
		DB:            db,
		Conversations: convstore.New(db),
		Tasks:         taskstore.New(db),
		Credentials:   creds,
		NewProvider:   defaultProviderFactory(aiTimeout),
		Log:           logger,
	}
}

func defaultProviderFactory(timeout time.Duration) ProviderFactory {
	return func(provider, key string) (ai.Provider, error) {
		switch provider {
		case models.ProviderOpenAI:
			return ai.NewOpenAIClient(key, timeout), nil
		case models.ProviderAnthropic:
			return ai.NewAnthropicClient(key, timeout), nil
		default:
			return nil, fmt.Errorf("unknown ai provider %q", provider)
		}
	}
}

type messageResponse struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	Role           string    `json:"role"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}

func toMessageResponse(m models.Message) messageResponse {
	return messageResponse{
		ID:             m.ID.Hex(),
		ConversationID: m.ConversationID.Hex(),
		Role:           m.Role,
		Content:        m.Content,
		CreatedAt:      m.CreatedAt,
	}
}

type suggestionResponse struct {
	ID                string  `json:"id"`
	MessageID         string  `json:"message_id"`
	Title             string  `json:"title"`
	Description       string  `json:"description,omitempty"`
	Priority          string  `json:"priority"`
	EstimatedDuration string  `json:"estimated_duration,omitempty"`
	ProjectName       string  `json:"project_name,omitempty"`
	CreatedTaskID     *string `json:"created_task_id,omitempty"`
}

func toSuggestionResponse(s models.TaskSuggestion) suggestionResponse {
	out := suggestionResponse{
		ID:                s.ID.Hex(),
		MessageID:         s.MessageID.Hex(),
		Title:             s.Title,
		Description:       s.Description,
		Priority:          string(s.Priority),
		EstimatedDuration: s.EstimatedDuration,
		ProjectName:       s.ProjectName,
	}
	if s.CreatedTaskID != nil {
		hex := s.CreatedTaskID.Hex()
		out.CreatedTaskID = &hex
	}
	return out
}
