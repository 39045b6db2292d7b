// internal/app/features/projects/members.go
package projects

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/taskhub/taskhub/internal/app/policy/projectpolicy"
	"github.com/taskhub/taskhub/internal/app/store/members"
	"github.com/taskhub/taskhub/internal/app/system/apierr"
	"github.com/taskhub/taskhub/internal/app/system/httpjson"
	"github.com/taskhub/taskhub/internal/app/system/timeouts"
	"github.com/taskhub/taskhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type memberResponse struct {
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	IsOwner   bool      `json:"is_owner"`
	AddedAt   time.Time `json:"added_at"`
}

// ServeMembers handles GET /projects/{id}/members: the member list joined
// with user profiles, owner flagged.
func (h *Handler) ServeMembers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	p, _, err := h.loadAuthorized(ctx, r, projectpolicy.AccessMember)
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}

	rows, err := h.Members.ListByProject(ctx, p.ID)
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}

	userIDs := make([]primitive.ObjectID, 0, len(rows))
	for _, m := range rows {
		userIDs = append(userIDs, m.UserID)
	}
	users, err := h.Users.GetByIDs(ctx, userIDs)
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}
	byID := make(map[primitive.ObjectID]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	out := make([]memberResponse, 0, len(rows))
	for _, m := range rows {
		u, ok := byID[m.UserID]
		if !ok {
			continue // membership row for a deleted account
		}
		out = append(out, memberResponse{
			UserID:    u.ID.Hex(),
			Name:      u.Name,
			Email:     u.Email,
			AvatarURL: u.AvatarURL,
			IsOwner:   u.ID == p.OwnerID,
			AddedAt:   m.AddedAt,
		})
	}
	httpjson.Write(w, h.Log, http.StatusOK, out)
}

type addMemberRequest struct {
	UserID string `json:"user_id"`
}

// HandleAddMember handles POST /projects/{id}/members. Owner only.
func (h *Handler) HandleAddMember(w http.ResponseWriter, r *http.Request) {
	var req addMemberRequest
	if err := httpjson.Decode(r, &req); err != nil {
		apierr.Write(w, h.Log, apierr.Validation(err.Error()))
		return
	}
	newUserID, err := primitive.ObjectIDFromHex(req.UserID)
	if err != nil {
		apierr.Write(w, h.Log, apierr.Validation("user_id is not a valid id"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, _, err := h.loadAuthorized(ctx, r, projectpolicy.AccessOwner)
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}

	u, err := h.Users.GetByID(ctx, newUserID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			apierr.Write(w, h.Log, apierr.NotFound("user not found"))
			return
		}
		apierr.Write(w, h.Log, err)
		return
	}
	if !u.Active {
		apierr.Write(w, h.Log, apierr.Validation("cannot add an inactive user"))
		return
	}

	m, err := h.Members.Add(ctx, p.ID, newUserID)
	if err != nil {
		if errors.Is(err, memberstore.ErrDuplicateMember) {
			apierr.Write(w, h.Log, apierr.Conflict("conflict", "user is already a member"))
			return
		}
		apierr.Write(w, h.Log, err)
		return
	}

	httpjson.Write(w, h.Log, http.StatusCreated, memberResponse{
		UserID:    u.ID.Hex(),
		Name:      u.Name,
		Email:     u.Email,
		AvatarURL: u.AvatarURL,
		IsOwner:   u.ID == p.OwnerID,
		AddedAt:   m.AddedAt,
	})
}

// HandleRemoveMember handles DELETE /projects/{id}/members/{userID}. Owner
// only; the owner's own membership row cannot be removed.
func (h *Handler) HandleRemoveMember(w http.ResponseWriter, r *http.Request) {
	targetID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "userID"))
	if err != nil {
		apierr.Write(w, h.Log, apierr.Validation("user id is not valid"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, _, err := h.loadAuthorized(ctx, r, projectpolicy.AccessOwner)
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}
	if targetID == p.OwnerID {
		apierr.Write(w, h.Log, apierr.Validation("the project owner cannot be removed"))
		return
	}

	n, err := h.Members.Remove(ctx, p.ID, targetID)
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}
	if n == 0 {
		apierr.Write(w, h.Log, apierr.NotFound("membership not found"))
		return
	}
	httpjson.Write(w, h.Log, http.StatusOK, map[string]string{"message": "member removed"})
}
