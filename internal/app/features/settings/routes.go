// internal/app/features/settings/routes.go
package settings

import (
	"github.com/taskhub/taskhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, tm *auth.TokenManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(tm.RequireSignedIn)

		pr.Get("/", h.ServeSettings)
		pr.Put("/", h.HandleUpdateSettings)
	})

	return r
}
