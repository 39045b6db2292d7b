// internal/app/features/tasks/edit.go
package tasks

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
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type updateTaskRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Priority    *string    `json:"priority"`
	Status      *string    `json:"status"`
	DueDate     *time.Time `json:"due_date"`
	ProjectID   *string    `json:"project_id"`
	AssigneeID  *string    `json:"assignee_id"`
	Tags        *[]string  `json:"tags"`
}

// HandleUpdate handles PUT /tasks/{id}. Absent fields are untouched; an
// empty string for project_id or assignee_id clears the field (clearing
// the project moves the task back to the inbox). Moving to Completed
// stamps completed_at; leaving Completed clears it.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateTaskRequest
	if err := httpjson.Decode(r, &req); err != nil {
		apierr.Write(w, h.Log, apierr.Validation(err.Error()))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	t, userID, err := h.loadAuthorized(ctx, r)
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}

	set := bson.M{}
	if req.Title != nil {
		title := sanitize.Text(*req.Title)
		if title == "" {
			apierr.Write(w, h.Log, apierr.Validation("title cannot be empty"))
			return
		}
		set["title"] = title
	}
	if req.Description != nil {
		set["description"] = sanitize.Body(*req.Description)
	}
	if req.Priority != nil {
		p := models.Priority(*req.Priority)
		if !models.ValidPriority(p) {
			apierr.Write(w, h.Log, apierr.Validation("invalid priority"))
			return
		}
		set["priority"] = p
	}
	if req.Status != nil {
		s := models.TaskStatus(*req.Status)
		if !models.ValidTaskStatus(s) {
			apierr.Write(w, h.Log, apierr.Validation("invalid status"))
			return
		}
		set["status"] = s
		switch {
		case s == models.TaskCompleted && t.Status != models.TaskCompleted:
			set["completed_at"] = time.Now().UTC()
		case s != models.TaskCompleted && t.Status == models.TaskCompleted:
			set["completed_at"] = nil
		}
	}
	if req.DueDate != nil {
		set["due_date"] = req.DueDate.UTC()
	}
	if req.ProjectID != nil {
		if *req.ProjectID == "" {
			set["project_id"] = nil
			set["is_inbox"] = true
		} else {
			id, err := primitive.ObjectIDFromHex(*req.ProjectID)
			if err != nil {
				apierr.Write(w, h.Log, apierr.Validation("project_id is not a valid id"))
				return
			}
			p, err := h.loadProject(ctx, id)
			if err != nil {
				apierr.Write(w, h.Log, err)
				return
			}
			level, err := projectpolicy.Access(ctx, h.DB, p, userID)
			if err != nil {
				apierr.Write(w, h.Log, err)
				return
			}
			if !projectpolicy.CanView(level) {
				apierr.Write(w, h.Log, apierr.PermissionDenied("not a member of this project"))
				return
			}
			set["project_id"] = id
			set["is_inbox"] = false
		}
	}
	if req.AssigneeID != nil {
		if *req.AssigneeID == "" {
			set["assignee_id"] = nil
		} else {
			id, err := primitive.ObjectIDFromHex(*req.AssigneeID)
			if err != nil {
				apierr.Write(w, h.Log, apierr.Validation("assignee_id is not a valid id"))
				return
			}
			set["assignee_id"] = id
		}
	}
	if req.Tags != nil {
		tagIDs, err := h.resolveTags(ctx, *req.Tags)
		if err != nil {
			apierr.Write(w, h.Log, err)
			return
		}
		set["tag_ids"] = tagIDs
	}

	if len(set) > 0 {
		if err := h.Tasks.Update(ctx, t.ID, set); err != nil {
			apierr.Write(w, h.Log, err)
			return
		}
	}

	updated, err := h.Tasks.GetByID(ctx, t.ID)
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}
	out, err := h.expandTags(ctx, []models.Task{updated})
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}
	httpjson.Write(w, h.Log, http.StatusOK, out[0])
}
