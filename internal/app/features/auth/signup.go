// internal/app/features/auth/signup.go
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/taskhub/taskhub/internal/app/store/users"
	"github.com/taskhub/taskhub/internal/app/system/apierr"
	"github.com/taskhub/taskhub/internal/app/system/httpjson"
	"github.com/taskhub/taskhub/internal/app/system/sanitize"
	"github.com/taskhub/taskhub/internal/app/system/timeouts"
	"github.com/taskhub/taskhub/internal/domain/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type signupRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// HandleSignup handles POST /auth/signup: creates the account, hashes the
// password with bcrypt, and returns a bearer token so the client is signed
// in immediately.
func (h *Handler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := httpjson.Decode(r, &req); err != nil {
		apierr.Write(w, h.Log, apierr.Validation(err.Error()))
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.Name = sanitize.Text(req.Name)
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		apierr.Write(w, h.Log, apierr.Validation("a valid email is required"))
		return
	}
	if req.Name == "" {
		apierr.Write(w, h.Log, apierr.Validation("name is required"))
		return
	}
	if len(req.Password) < 8 {
		apierr.Write(w, h.Log, apierr.Validation("password must be at least 8 characters"))
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.Create(ctx, models.User{
		Email:          req.Email,
		Name:           req.Name,
		HashedPassword: string(hashed),
	})
	if err != nil {
		if errors.Is(err, userstore.ErrDuplicateEmail) {
			apierr.Write(w, h.Log, apierr.Validation("email already registered"))
			return
		}
		apierr.Write(w, h.Log, err)
		return
	}

	token, err := h.Tokens.Issue(u.ID.Hex())
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}

	h.Log.Info("user signed up", zap.String("user_id", u.ID.Hex()))
	httpjson.Write(w, h.Log, http.StatusCreated, tokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User:        toUserResponse(u),
	})
}
