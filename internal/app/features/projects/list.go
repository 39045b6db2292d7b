// internal/app/features/projects/list.go
package projects

import (
	"context"
	"net/http"

	"github.com/taskhub/taskhub/internal/app/system/apierr"
	"github.com/taskhub/taskhub/internal/app/system/authz"
	"github.com/taskhub/taskhub/internal/app/system/httpjson"
	"github.com/taskhub/taskhub/internal/app/system/timeouts"
	"github.com/taskhub/taskhub/internal/domain/models"
)

// ServeList handles GET /projects: every project the caller owns or belongs
// to, most recently updated first, with derived progress counters.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	userID, ok := authz.UserID(r)
	if !ok {
		apierr.Write(w, h.Log, apierr.Unauthorized("sign in required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	memberIDs, err := h.Members.ProjectIDsForUser(ctx, userID)
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}

	projects, err := h.Projects.ListForUser(ctx, userID, memberIDs)
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}

	out := make([]models.Project, 0, len(projects))
	for i := range projects {
		if err := h.withProgress(ctx, &projects[i]); err != nil {
			apierr.Write(w, h.Log, err)
			return
		}
		out = append(out, projects[i])
	}
	httpjson.Write(w, h.Log, http.StatusOK, out)
}
