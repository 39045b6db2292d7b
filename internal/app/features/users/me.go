// internal/app/features/users/me.go
package users

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/taskhub/taskhub/internal/app/store/users"
	"github.com/taskhub/taskhub/internal/app/system/apierr"
	"github.com/taskhub/taskhub/internal/app/system/authz"
	"github.com/taskhub/taskhub/internal/app/system/httpjson"
	"github.com/taskhub/taskhub/internal/app/system/sanitize"
	"github.com/taskhub/taskhub/internal/app/system/timeouts"
	"golang.org/x/crypto/bcrypt"
)

// ServeMe handles GET /users/me.
func (h *Handler) ServeMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := authz.UserID(r)
	if !ok {
		apierr.Write(w, h.Log, apierr.Unauthorized("sign in required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}
	httpjson.Write(w, h.Log, http.StatusOK, toUserResponse(u))
}

type updateMeRequest struct {
	Name       *string `json:"name"`
	Email      *string `json:"email"`
	Department *string `json:"department"`
	AvatarURL  *string `json:"avatar_url"`
}

// HandleUpdateMe handles PUT /users/me. Absent fields are left untouched.
func (h *Handler) HandleUpdateMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := authz.UserID(r)
	if !ok {
		apierr.Write(w, h.Log, apierr.Unauthorized("sign in required"))
		return
	}

	var req updateMeRequest
	if err := httpjson.Decode(r, &req); err != nil {
		apierr.Write(w, h.Log, apierr.Validation(err.Error()))
		return
	}

	var name, email, department, avatarURL string
	if req.Name != nil {
		name = sanitize.Text(*req.Name)
		if name == "" {
			apierr.Write(w, h.Log, apierr.Validation("name cannot be empty"))
			return
		}
	}
	if req.Email != nil {
		email = strings.TrimSpace(strings.ToLower(*req.Email))
		if !strings.Contains(email, "@") {
			apierr.Write(w, h.Log, apierr.Validation("a valid email is required"))
			return
		}
	}
	if req.Department != nil {
		department = sanitize.Text(*req.Department)
	}
	if req.AvatarURL != nil {
		avatarURL = strings.TrimSpace(*req.AvatarURL)
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Users.UpdateProfile(ctx, userID, name, email, department, avatarURL); err != nil {
		if errors.Is(err, userstore.ErrDuplicateEmail) {
			apierr.Write(w, h.Log, apierr.Validation("email already registered"))
			return
		}
		apierr.Write(w, h.Log, err)
		return
	}

	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}
	httpjson.Write(w, h.Log, http.StatusOK, toUserResponse(u))
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// HandleChangePassword handles POST /users/me/change-password.
func (h *Handler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := authz.UserID(r)
	if !ok {
		apierr.Write(w, h.Log, apierr.Unauthorized("sign in required"))
		return
	}

	var req changePasswordRequest
	if err := httpjson.Decode(r, &req); err != nil {
		apierr.Write(w, h.Log, apierr.Validation(err.Error()))
		return
	}
	if len(req.NewPassword) < 8 {
		apierr.Write(w, h.Log, apierr.Validation("password must be at least 8 characters"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.HashedPassword), []byte(req.CurrentPassword)); err != nil {
		apierr.Write(w, h.Log, apierr.Validation("current password is incorrect"))
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}
	if err := h.Users.UpdatePassword(ctx, userID, string(hashed)); err != nil {
		apierr.Write(w, h.Log, err)
		return
	}

	httpjson.Write(w, h.Log, http.StatusOK, map[string]string{"message": "password updated"})
}
