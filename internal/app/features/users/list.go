// internal/app/features/users/list.go
package users

import (
	"context"
	"net/http"

	"github.com/taskhub/taskhub/internal/app/system/apierr"
	"github.com/taskhub/taskhub/internal/app/system/httpjson"
	"github.com/taskhub/taskhub/internal/app/system/timeouts"
)

// ServeList handles GET /users: active users for member and assignee
// pickers. Signed-in users only; the list never includes password material.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	users, err := h.Users.ListActive(ctx)
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}

	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	httpjson.Write(w, h.Log, http.StatusOK, out)
}
