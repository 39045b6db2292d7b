// internal/app/features/settings/handler.go
package settings

import (
	"context"
	"errors"

	"github.com/taskhub/taskhub/internal/app/store/settings"
	"github.com/taskhub/taskhub/internal/app/system/keyvault"
	"github.com/taskhub/taskhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Handler is the shared dependency container for the settings feature.
// Provider API keys are sealed with the vault before they touch the
// database and the plaintext is never echoed back to the client.
type Handler struct {
	Settings *settingsstore.Store
	Vault    *keyvault.Vault
	Log      *zap.Logger
}

func NewHandler(store *settingsstore.Store, vault *keyvault.Vault, logger *zap.Logger) *Handler {
	return &Handler{Settings: store, Vault: vault, Log: logger}
}

type settingsResponse struct {
	TextSize            string `json:"text_size"`
	DateFormat          string `json:"date_format"`
	TimeFormat          string `json:"time_format"`
	EnableAIFeatures    bool   `json:"enable_ai_features"`
	PreferredAIProvider string `json:"preferred_ai_provider"`
	HasOpenAIKey        bool   `json:"has_openai_key"`
	HasAnthropicKey     bool   `json:"has_anthropic_key"`
}

func toSettingsResponse(s models.UserSettings) settingsResponse {
	return settingsResponse{
		TextSize:            s.TextSize,
		DateFormat:          s.DateFormat,
		TimeFormat:          s.TimeFormat,
		EnableAIFeatures:    s.EnableAIFeatures,
		PreferredAIProvider: s.PreferredAIProvider,
		HasOpenAIKey:        s.OpenAIKeyEncrypted != "",
		HasAnthropicKey:     s.AnthropicKeyEncrypted != "",
	}
}

// ErrAIDisabled and ErrNoAPIKey are returned by Credentials; the planner
// maps them to validation errors on its own terms.
var (
	ErrAIDisabled = errors.New("ai features are disabled for this user")
	ErrNoAPIKey   = errors.New("no api key configured for the preferred provider")
)

// Credentials returns the user's preferred provider name and the unsealed
// API key for it. This is the only path that ever decrypts a stored key.
func (h *Handler) Credentials(ctx context.Context, userID primitive.ObjectID) (provider, key string, err error) {
	s, err := h.Settings.GetOrCreate(ctx, userID)
	if err != nil {
		return "", "", err
	}
	if !s.EnableAIFeatures {
		return "", "", ErrAIDisabled
	}

	sealed := s.OpenAIKeyEncrypted
	if s.PreferredAIProvider == models.ProviderAnthropic {
		sealed = s.AnthropicKeyEncrypted
	}
	if sealed == "" {
		return "", "", ErrNoAPIKey
	}

	key, err = h.Vault.Open(sealed)
	if err != nil {
		return "", "", err
	}
	return s.PreferredAIProvider, key, nil
}
