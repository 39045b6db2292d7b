// internal/app/features/auth/login.go
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/taskhub/taskhub/internal/app/system/apierr"
	"github.com/taskhub/taskhub/internal/app/system/httpjson"
	"github.com/taskhub/taskhub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleLogin handles POST /auth/login. Bad email and bad password produce
// the same response, so the endpoint does not leak which accounts exist.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpjson.Decode(r, &req); err != nil {
		apierr.Write(w, h.Log, apierr.Validation(err.Error()))
		return
	}

	if !h.Limits.Check(r, req.Email) {
		apierr.Write(w, h.Log, apierr.RateLimited("too many login attempts, try again later"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// Burn a hash comparison anyway to keep timing flat.
			_ = bcrypt.CompareHashAndPassword([]byte("$2a$10$0123456789012345678901"), []byte(req.Password))
			apierr.Write(w, h.Log, apierr.Unauthorized("incorrect email or password"))
			return
		}
		apierr.Write(w, h.Log, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.HashedPassword), []byte(req.Password)); err != nil {
		apierr.Write(w, h.Log, apierr.Unauthorized("incorrect email or password"))
		return
	}
	if !u.Active {
		apierr.Write(w, h.Log, apierr.Validation("inactive user"))
		return
	}

	h.Limits.ResetEmail(req.Email)

	now := time.Now().UTC()
	if err := h.Users.SetLastLogin(ctx, u.ID, now); err != nil {
		h.Log.Warn("login: set last_login failed", zap.Error(err))
	}
	u.LastLogin = &now

	token, err := h.Tokens.Issue(u.ID.Hex())
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}

	httpjson.Write(w, h.Log, http.StatusOK, tokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User:        toUserResponse(u),
	})
}
