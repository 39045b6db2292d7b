// internal/app/features/projects/delete.go
package projects

import (
	"context"
	"net/http"

	"github.com/taskhub/taskhub/internal/app/policy/projectpolicy"
	"github.com/taskhub/taskhub/internal/app/system/apierr"
	"github.com/taskhub/taskhub/internal/app/system/httpjson"
	"github.com/taskhub/taskhub/internal/app/system/timeouts"
	"github.com/taskhub/taskhub/internal/app/system/txn"
	"go.uber.org/zap"
)

// HandleDelete handles DELETE /projects/{id}. Owner only. The project's
// tasks and membership rows go with it, in one transaction where the
// deployment supports them.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	p, userID, err := h.loadAuthorized(ctx, r, projectpolicy.AccessOwner)
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}

	err = txn.Run(ctx, h.DB, h.Log, func(ctx context.Context) error {
		if _, err := h.Tasks.DeleteByProject(ctx, p.ID); err != nil {
			return err
		}
		if _, err := h.Members.RemoveByProject(ctx, p.ID); err != nil {
			return err
		}
		_, err := h.Projects.Delete(ctx, p.ID)
		return err
	})
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}

	h.Log.Info("project deleted",
		zap.String("project_id", p.ID.Hex()),
		zap.String("user_id", userID.Hex()))
	httpjson.Write(w, h.Log, http.StatusOK, map[string]string{"message": "project deleted"})
}
