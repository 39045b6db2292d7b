// internal/app/features/users/handler.go
package users

import (
	"time"

	"github.com/taskhub/taskhub/internal/app/store/users"
	"github.com/taskhub/taskhub/internal/domain/models"
	"go.uber.org/zap"
)

// Handler is the shared dependency container for the users feature.
type Handler struct {
	Users *userstore.Store
	Log   *zap.Logger
}

func NewHandler(users *userstore.Store, logger *zap.Logger) *Handler {
	return &Handler{Users: users, Log: logger}
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
