// internal/app/features/auth/handler.go
package auth

import (
	"time"

	"github.com/taskhub/taskhub/internal/app/store/users"
	sysauth "github.com/taskhub/taskhub/internal/app/system/auth"
	"github.com/taskhub/taskhub/internal/app/system/ratelimit"
	"github.com/taskhub/taskhub/internal/domain/models"
	"go.uber.org/zap"
)

// Handler is the shared dependency container for signup and login.
type Handler struct {
	Users  *userstore.Store
	Tokens *sysauth.TokenManager
	Limits *ratelimit.LoginLimiter
	Log    *zap.Logger
}

func NewHandler(users *userstore.Store, tokens *sysauth.TokenManager, logger *zap.Logger) *Handler {
	return &Handler{
		Users:  users,
		Tokens: tokens,
		Limits: ratelimit.NewLoginLimiter(),
		Log:    logger,
	}
}

// tokenResponse is the body returned by both signup and login.
type tokenResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	User        userResponse `json:"user"`
}

type userResponse struct {
	ID         string     `json:"id"`
	Email      string     `json:"email"`
	Name       string     `json:"name"`
	AvatarURL  string     `json:"avatar_url,omitempty"`
	Role       string     `json:"role"`
	Department string     `json:"department,omitempty"`
	IsActive   bool       `json:"is_active"`
	CreatedAt  time.Time  `json:"created_at"`
	LastLogin  *time.Time `json:"last_login,omitempty"`
}

func toUserResponse(u models.User) userResponse {
	return userResponse{
		ID:         u.ID.Hex(),
		Email:      u.Email,
		Name:       u.Name,
		AvatarURL:  u.AvatarURL,
		Role:       u.Role,
		Department: u.Department,
		IsActive:   u.Active,
		CreatedAt:  u.CreatedAt,
		LastLogin:  u.LastLogin,
	}
}
