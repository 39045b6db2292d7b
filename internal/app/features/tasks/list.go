// internal/app/features/tasks/list.go
package tasks

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/taskhub/taskhub/internal/app/policy/taskpolicy"
	"github.com/taskhub/taskhub/internal/app/system/apierr"
	"github.com/taskhub/taskhub/internal/app/system/authz"
	"github.com/taskhub/taskhub/internal/app/system/httpjson"
	"github.com/taskhub/taskhub/internal/app/system/reconcile"
	"github.com/taskhub/taskhub/internal/app/system/timeouts"
	"github.com/taskhub/taskhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ServeList handles GET /tasks with optional status, priority, project_id,
// and inbox_only query filters. Overdue flips are persisted before the
// response is written, so a task filtered as Open can come back Overdue.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	userID, ok := authz.UserID(r)
	if !ok {
		apierr.Write(w, h.Log, apierr.Unauthorized("sign in required"))
		return
	}

	var lf taskpolicy.ListFilter
	q := r.URL.Query()
	if v := q.Get("status"); v != "" {
		s := models.TaskStatus(v)
		if !models.ValidTaskStatus(s) {
			apierr.Write(w, h.Log, apierr.Validation("invalid status filter"))
			return
		}
		lf.Status = s
	}
	if v := q.Get("priority"); v != "" {
		p := models.Priority(v)
		if !models.ValidPriority(p) {
			apierr.Write(w, h.Log, apierr.Validation("invalid priority filter"))
			return
		}
		lf.Priority = p
	}
	if v := q.Get("project_id"); v != "" {
		id, err := primitive.ObjectIDFromHex(v)
		if err != nil {
			apierr.Write(w, h.Log, apierr.Validation("project_id is not a valid id"))
			return
		}
		lf.ProjectID = &id
	}
	if v := q.Get("inbox_only"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			apierr.Write(w, h.Log, apierr.Validation("inbox_only must be a boolean"))
			return
		}
		lf.InboxOnly = b
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	memberIDs, err := h.Members.ProjectIDsForUser(ctx, userID)
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}

	tasks, err := h.Tasks.Find(ctx, taskpolicy.VisibilityFilter(userID, memberIDs, lf))
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}

	if err := reconcile.Tasks(ctx, h.DB, tasks, time.Now().UTC()); err != nil {
		apierr.Write(w, h.Log, err)
		return
	}

	out, err := h.expandTags(ctx, tasks)
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}
	httpjson.Write(w, h.Log, http.StatusOK, out)
}
