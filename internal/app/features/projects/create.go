// internal/app/features/projects/create.go
package projects

import (
	"context"
	"net/http"
	"time"

	"github.com/taskhub/taskhub/internal/app/system/apierr"
	"github.com/taskhub/taskhub/internal/app/system/authz"
	"github.com/taskhub/taskhub/internal/app/system/httpjson"
	"github.com/taskhub/taskhub/internal/app/system/sanitize"
	"github.com/taskhub/taskhub/internal/app/system/timeouts"
	"github.com/taskhub/taskhub/internal/app/system/txn"
	"github.com/taskhub/taskhub/internal/domain/models"
)

type createProjectRequest struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	DueDate     *time.Time `json:"due_date"`
}

// HandleCreate handles POST /projects. The owner also gets a membership
// row, written in the same transaction so task visibility and project
// listing never observe a half-created project.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := authz.UserID(r)
	if !ok {
		apierr.Write(w, h.Log, apierr.Unauthorized("sign in required"))
		return
	}

	var req createProjectRequest
	if err := httpjson.Decode(r, &req); err != nil {
		apierr.Write(w, h.Log, apierr.Validation(err.Error()))
		return
	}

	name := sanitize.Text(req.Name)
	if name == "" {
		apierr.Write(w, h.Log, apierr.Validation("name is required"))
		return
	}
	status := models.ProjectPlanning
	if req.Status != "" {
		if !models.ValidProjectStatus(models.ProjectStatus(req.Status)) {
			apierr.Write(w, h.Log, apierr.Validation("invalid project status"))
			return
		}
		status = models.ProjectStatus(req.Status)
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	var created models.Project
	err := txn.Run(ctx, h.DB, h.Log, func(ctx context.Context) error {
		p, err := h.Projects.Insert(ctx, models.Project{
			Name:        name,
			Description: sanitize.Body(req.Description),
			Status:      status,
			DueDate:     req.DueDate,
			OwnerID:     userID,
		})
		if err != nil {
			return err
		}
		if _, err := h.Members.Add(ctx, p.ID, userID); err != nil {
			return err
		}
		created = p
		return nil
	})
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}

	httpjson.Write(w, h.Log, http.StatusCreated, created)
}
