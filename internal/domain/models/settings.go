// internal/domain/models/settings.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AI provider choices for the planner.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// UserSettings holds per-user preferences, at most one document per user.
// Provider API keys are stored encrypted (see the keyvault package); the
// plaintext never appears in a response body.
type UserSettings struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID primitive.ObjectID `bson:"user_id" json:"user_id"`

	TextSize   string `bson:"text_size" json:"text_size"`
	DateFormat string `bson:"date_format" json:"date_format"`
	TimeFormat string `bson:"time_format" json:"time_format"`

	EnableAIFeatures     bool   `bson:"enable_ai_features" json:"enable_ai_features"`
	PreferredAIProvider  string `bson:"preferred_ai_provider" json:"preferred_ai_provider"`
	OpenAIKeyEncrypted   string `bson:"openai_key_encrypted,omitempty" json:"-"`
	AnthropicKeyEncrypted string `bson:"anthropic_key_encrypted,omitempty" json:"-"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// DefaultSettings returns the settings document created on first access.
func DefaultSettings(userID primitive.ObjectID) UserSettings {
	return UserSettings{
		UserID:              userID,
		TextSize:            "medium",
		DateFormat:          "MM/DD/YYYY",
		TimeFormat:          "12h",
		EnableAIFeatures:    false,
		PreferredAIProvider: ProviderOpenAI,
	}
}
