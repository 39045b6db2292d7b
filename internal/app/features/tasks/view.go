// internal/app/features/tasks/view.go
package tasks

import (
	"context"
	"net/http"
	"time"

	"github.com/taskhub/taskhub/internal/app/system/apierr"
	"github.com/taskhub/taskhub/internal/app/system/httpjson"
	"github.com/taskhub/taskhub/internal/app/system/reconcile"
	"github.com/taskhub/taskhub/internal/app/system/timeouts"
	"github.com/taskhub/taskhub/internal/domain/models"
)

// ServeView handles GET /tasks/{id}. An overdue flip is persisted before
// the task is returned.
func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	t, _, err := h.loadAuthorized(ctx, r)
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}

	batch := []models.Task{t}
	if err := reconcile.Tasks(ctx, h.DB, batch, time.Now().UTC()); err != nil {
		apierr.Write(w, h.Log, err)
		return
	}

	out, err := h.expandTags(ctx, batch)
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}
	httpjson.Write(w, h.Log, http.StatusOK, out[0])
}
