// internal/app/features/planner/routes.go
package planner

import (
	"github.com/taskhub/taskhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, tm *auth.TokenManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(tm.RequireSignedIn)

		pr.Post("/chat", h.HandleChat)
		pr.Get("/conversations", h.ServeConversations)
		pr.Get("/conversations/{id}", h.ServeConversation)
		pr.Delete("/conversations/{id}", h.HandleDeleteConversation)
		pr.Post("/suggestions/{id}/create-task", h.HandleMaterialize)
	})

	return r
}
