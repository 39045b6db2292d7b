// internal/app/features/tasks/bulk.go
package tasks

import (
	"context"
	"net/http"
	"time"

	"github.com/taskhub/taskhub/internal/app/policy/projectpolicy"
	"github.com/taskhub/taskhub/internal/app/policy/taskpolicy"
	"github.com/taskhub/taskhub/internal/app/system/apierr"
	"github.com/taskhub/taskhub/internal/app/system/authz"
	"github.com/taskhub/taskhub/internal/app/system/httpjson"
	"github.com/taskhub/taskhub/internal/app/system/timeouts"
	"github.com/taskhub/taskhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type bulkUpdateRequest struct {
	TaskIDs []string        `json:"task_ids"`
	Update  bulkUpdateField `json:"update"`
}

type bulkUpdateField struct {
	Status     *string    `json:"status"`
	Priority   *string    `json:"priority"`
	AssigneeID *string    `json:"assignee_id"`
	ProjectID  *string    `json:"project_id"`
	DueDate    *time.Time `json:"due_date"`
}

type bulkUpdateResponse struct {
	UpdatedCount int64  `json:"updated_count"`
	Message      string `json:"message"`
}

// HandleBulkUpdate handles POST /tasks/bulk-update. The batch is
// all-or-nothing: any missing id fails the whole request with NotFound and
// any task the caller cannot access fails it with PermissionDenied, before
// a single write happens. Moving the batch to Completed stamps
// completed_at on every task; other statuses leave an existing stamp
// alone. Moving the batch into or out of a project flips is_inbox.
func (h *Handler) HandleBulkUpdate(w http.ResponseWriter, r *http.Request) {
	userID, ok := authz.UserID(r)
	if !ok {
		apierr.Write(w, h.Log, apierr.Unauthorized("sign in required"))
		return
	}

	var req bulkUpdateRequest
	if err := httpjson.Decode(r, &req); err != nil {
		apierr.Write(w, h.Log, apierr.Validation(err.Error()))
		return
	}
	if len(req.TaskIDs) == 0 {
		apierr.Write(w, h.Log, apierr.Validation("task_ids is required"))
		return
	}

	ids := make([]primitive.ObjectID, 0, len(req.TaskIDs))
	seen := make(map[primitive.ObjectID]struct{}, len(req.TaskIDs))
	for _, raw := range req.TaskIDs {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			apierr.Write(w, h.Log, apierr.NotFound("one or more tasks not found"))
			return
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	set := bson.M{}
	if req.Update.Status != nil {
		s := models.TaskStatus(*req.Update.Status)
		if !models.ValidTaskStatus(s) {
			apierr.Write(w, h.Log, apierr.Validation("invalid status"))
			return
		}
		set["status"] = s
		if s == models.TaskCompleted {
			set["completed_at"] = time.Now().UTC()
		}
	}
	if req.Update.Priority != nil {
		p := models.Priority(*req.Update.Priority)
		if !models.ValidPriority(p) {
			apierr.Write(w, h.Log, apierr.Validation("invalid priority"))
			return
		}
		set["priority"] = p
	}
	if req.Update.AssigneeID != nil {
		if *req.Update.AssigneeID == "" {
			set["assignee_id"] = nil
		} else {
			id, err := primitive.ObjectIDFromHex(*req.Update.AssigneeID)
			if err != nil {
				apierr.Write(w, h.Log, apierr.Validation("assignee_id is not a valid id"))
				return
			}
			set["assignee_id"] = id
		}
	}
	if req.Update.ProjectID != nil {
		if *req.Update.ProjectID == "" {
			set["project_id"] = nil
			set["is_inbox"] = true
		} else {
			id, err := primitive.ObjectIDFromHex(*req.Update.ProjectID)
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
	if req.Update.DueDate != nil {
		set["due_date"] = req.Update.DueDate.UTC()
	}
	if len(set) == 0 {
		apierr.Write(w, h.Log, apierr.Validation("update must set at least one field"))
		return
	}

	tasks, err := h.Tasks.GetByIDs(ctx, ids)
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}
	if len(tasks) != len(ids) {
		apierr.Write(w, h.Log, apierr.NotFound("one or more tasks not found"))
		return
	}

	for _, t := range tasks {
		allowed, err := taskpolicy.CanAccess(ctx, h.DB, t, userID)
		if err != nil {
			apierr.Write(w, h.Log, err)
			return
		}
		if !allowed {
			apierr.Write(w, h.Log, apierr.PermissionDenied("not authorized to update all of these tasks"))
			return
		}
	}

	n, err := h.Tasks.UpdateMany(ctx, ids, set)
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}

	httpjson.Write(w, h.Log, http.StatusOK, bulkUpdateResponse{
		UpdatedCount: n,
		Message:      "tasks updated",
	})
}
