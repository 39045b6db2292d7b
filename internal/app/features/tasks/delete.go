// internal/app/features/tasks/delete.go
package tasks

import (
	"context"
	"net/http"

	"github.com/taskhub/taskhub/internal/app/system/apierr"
	"github.com/taskhub/taskhub/internal/app/system/httpjson"
	"github.com/taskhub/taskhub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// HandleDelete handles DELETE /tasks/{id}. Anyone who can see the task can
// delete it.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	t, userID, err := h.loadAuthorized(ctx, r)
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}

	n, err := h.Tasks.Delete(ctx, t.ID)
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}
	if n == 0 {
		apierr.Write(w, h.Log, apierr.NotFound("task not found"))
		return
	}

	h.Log.Info("task deleted",
		zap.String("task_id", t.ID.Hex()),
		zap.String("user_id", userID.Hex()))
	httpjson.Write(w, h.Log, http.StatusOK, map[string]string{"message": "task deleted"})
}
