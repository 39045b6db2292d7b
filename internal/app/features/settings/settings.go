// internal/app/features/settings/settings.go
package settings

import (
	"context"
	"net/http"
	"strings"

	"github.com/taskhub/taskhub/internal/app/system/apierr"
	"github.com/taskhub/taskhub/internal/app/system/authz"
	"github.com/taskhub/taskhub/internal/app/system/httpjson"
	"github.com/taskhub/taskhub/internal/app/system/timeouts"
	"github.com/taskhub/taskhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
)

// ServeSettings handles GET /settings, creating the default row on first
// access.
func (h *Handler) ServeSettings(w http.ResponseWriter, r *http.Request) {
	userID, ok := authz.UserID(r)
	if !ok {
		apierr.Write(w, h.Log, apierr.Unauthorized("sign in required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	s, err := h.Settings.GetOrCreate(ctx, userID)
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}
	httpjson.Write(w, h.Log, http.StatusOK, toSettingsResponse(s))
}

type updateSettingsRequest struct {
	TextSize            *string `json:"text_size"`
	DateFormat          *string `json:"date_format"`
	TimeFormat          *string `json:"time_format"`
	EnableAIFeatures    *bool   `json:"enable_ai_features"`
	PreferredAIProvider *string `json:"preferred_ai_provider"`
	OpenAIAPIKey        *string `json:"openai_api_key"`
	AnthropicAPIKey     *string `json:"anthropic_api_key"`
}

// HandleUpdateSettings handles PUT /settings. Absent fields are untouched;
// an API key field with an empty string clears the stored key.
func (h *Handler) HandleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	userID, ok := authz.UserID(r)
	if !ok {
		apierr.Write(w, h.Log, apierr.Unauthorized("sign in required"))
		return
	}

	var req updateSettingsRequest
	if err := httpjson.Decode(r, &req); err != nil {
		apierr.Write(w, h.Log, apierr.Validation(err.Error()))
		return
	}

	set := bson.M{}
	if req.TextSize != nil {
		switch *req.TextSize {
		case "small", "medium", "large":
			set["text_size"] = *req.TextSize
		default:
			apierr.Write(w, h.Log, apierr.Validation("text_size must be small, medium, or large"))
			return
		}
	}
	if req.DateFormat != nil {
		set["date_format"] = strings.TrimSpace(*req.DateFormat)
	}
	if req.TimeFormat != nil {
		switch *req.TimeFormat {
		case "12h", "24h":
			set["time_format"] = *req.TimeFormat
		default:
			apierr.Write(w, h.Log, apierr.Validation("time_format must be 12h or 24h"))
			return
		}
	}
	if req.EnableAIFeatures != nil {
		set["enable_ai_features"] = *req.EnableAIFeatures
	}
	if req.PreferredAIProvider != nil {
		switch *req.PreferredAIProvider {
		case models.ProviderOpenAI, models.ProviderAnthropic:
			set["preferred_ai_provider"] = *req.PreferredAIProvider
		default:
			apierr.Write(w, h.Log, apierr.Validation("preferred_ai_provider must be openai or anthropic"))
			return
		}
	}
	if req.OpenAIAPIKey != nil {
		sealed, err := h.sealKey(*req.OpenAIAPIKey)
		if err != nil {
			apierr.Write(w, h.Log, err)
			return
		}
		set["openai_key_encrypted"] = sealed
	}
	if req.AnthropicAPIKey != nil {
		sealed, err := h.sealKey(*req.AnthropicAPIKey)
		if err != nil {
			apierr.Write(w, h.Log, err)
			return
		}
		set["anthropic_key_encrypted"] = sealed
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	// Make sure the row exists before patching it.
	if _, err := h.Settings.GetOrCreate(ctx, userID); err != nil {
		apierr.Write(w, h.Log, err)
		return
	}

	if len(set) == 0 {
		s, err := h.Settings.GetOrCreate(ctx, userID)
		if err != nil {
			apierr.Write(w, h.Log, err)
			return
		}
		httpjson.Write(w, h.Log, http.StatusOK, toSettingsResponse(s))
		return
	}

	s, err := h.Settings.Update(ctx, userID, set)
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}
	httpjson.Write(w, h.Log, http.StatusOK, toSettingsResponse(s))
}

func (h *Handler) sealKey(plaintext string) (string, error) {
	plaintext = strings.TrimSpace(plaintext)
	if plaintext == "" {
		return "", nil
	}
	return h.Vault.Seal(plaintext)
}
