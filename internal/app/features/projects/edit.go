// internal/app/features/projects/edit.go
package projects

import (
	"context"
	"net/http"
	"time"

	"github.com/taskhub/taskhub/internal/app/policy/projectpolicy"
	"github.com/taskhub/taskhub/internal/app/system/apierr"
	"github.com/taskhub/taskhub/internal/app/system/httpjson"
	"github.com/taskhub/taskhub/internal/app/system/sanitize"
	"github.com/taskhub/taskhub/internal/app/system/timeouts"
	"github.com/taskhub/taskhub/internal/domain/models"
)

type updateProjectRequest struct {
	Name        *string    `json:"name"`
	Description *string    `json:"description"`
	Status      *string    `json:"status"`
	DueDate     *time.Time `json:"due_date"`
}

// HandleUpdate handles PUT /projects/{id}. Owner only; absent fields are
// left untouched.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateProjectRequest
	if err := httpjson.Decode(r, &req); err != nil {
		apierr.Write(w, h.Log, apierr.Validation(err.Error()))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, _, err := h.loadAuthorized(ctx, r, projectpolicy.AccessOwner)
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}

	var name, description *string
	var status *models.ProjectStatus
	if req.Name != nil {
		n := sanitize.Text(*req.Name)
		if n == "" {
			apierr.Write(w, h.Log, apierr.Validation("name cannot be empty"))
			return
		}
		name = &n
	}
	if req.Description != nil {
		d := sanitize.Body(*req.Description)
		description = &d
	}
	if req.Status != nil {
		s := models.ProjectStatus(*req.Status)
		if !models.ValidProjectStatus(s) {
			apierr.Write(w, h.Log, apierr.Validation("invalid project status"))
			return
		}
		status = &s
	}

	if err := h.Projects.UpdateInfo(ctx, p.ID, name, description, status, req.DueDate); err != nil {
		apierr.Write(w, h.Log, err)
		return
	}

	updated, err := h.Projects.GetByID(ctx, p.ID)
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}
	if err := h.withProgress(ctx, &updated); err != nil {
		apierr.Write(w, h.Log, err)
		return
	}
	httpjson.Write(w, h.Log, http.StatusOK, updated)
}
