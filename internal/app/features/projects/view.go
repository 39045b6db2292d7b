// internal/app/features/projects/view.go
package projects

import (
	"context"
	"net/http"

	"github.com/taskhub/taskhub/internal/app/policy/projectpolicy"
	"github.com/taskhub/taskhub/internal/app/system/apierr"
	"github.com/taskhub/taskhub/internal/app/system/httpjson"
	"github.com/taskhub/taskhub/internal/app/system/timeouts"
)

// ServeView handles GET /projects/{id}.
func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, _, err := h.loadAuthorized(ctx, r, projectpolicy.AccessMember)
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}
	if err := h.withProgress(ctx, &p); err != nil {
		apierr.Write(w, h.Log, err)
		return
	}
	httpjson.Write(w, h.Log, http.StatusOK, p)
}
