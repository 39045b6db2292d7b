// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	authfeature "github.com/taskhub/taskhub/internal/app/features/auth"
	healthfeature "github.com/taskhub/taskhub/internal/app/features/health"
	plannerfeature "github.com/taskhub/taskhub/internal/app/features/planner"
	projectsfeature "github.com/taskhub/taskhub/internal/app/features/projects"
	settingsfeature "github.com/taskhub/taskhub/internal/app/features/settings"
	tasksfeature "github.com/taskhub/taskhub/internal/app/features/tasks"
	usersfeature "github.com/taskhub/taskhub/internal/app/features/users"
	settingsstore "github.com/taskhub/taskhub/internal/app/store/settings"
	userstore "github.com/taskhub/taskhub/internal/app/store/users"
	"github.com/taskhub/taskhub/internal/app/system/auth"
	"github.com/taskhub/taskhub/internal/app/system/keyvault"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. The API surface is JSON under /api/v1,
// with bearer-token auth loaded globally and enforced per feature router.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	tm, err := auth.NewTokenManager(appCfg.TokenSecret, appCfg.TokenTTL, logger)
	if err != nil {
		logger.Error("token manager init failed", zap.Error(err))
		return nil, err
	}

	// Fetch fresh user data on each request so deactivated accounts and
	// profile changes take effect immediately.
	tm.SetUserFetcher(userstore.NewFetcher(deps.MongoDatabase))

	vault, err := keyvault.New(appCfg.SettingsKey)
	if err != nil {
		logger.Error("settings vault init failed", zap.Error(err))
		return nil, err
	}

	db := deps.MongoDatabase
	users := userstore.New(db)

	r := chi.NewRouter()

	// Global auth middleware: resolves the bearer token into a SessionUser
	// when one is present; anonymous requests pass through untouched.
	r.Use(tm.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	r.Route("/api/v1", func(api chi.Router) {
		authHandler := authfeature.NewHandler(users, tm, logger)
		api.Mount("/auth", authfeature.Routes(authHandler))

		usersHandler := usersfeature.NewHandler(users, logger)
		api.Mount("/users", usersfeature.Routes(usersHandler, tm))

		settingsHandler := settingsfeature.NewHandler(settingsstore.New(db), vault, logger)
		api.Mount("/settings", settingsfeature.Routes(settingsHandler, tm))

		projectsHandler := projectsfeature.NewHandler(db, logger)
		api.Mount("/projects", projectsfeature.Routes(projectsHandler, tm))

		tasksHandler := tasksfeature.NewHandler(db, logger)
		api.Mount("/tasks", tasksfeature.Routes(tasksHandler, tm))

		plannerHandler := plannerfeature.NewHandler(db, settingsHandler, appCfg.AITimeout, logger)
		api.Mount("/ai", plannerfeature.Routes(plannerHandler, tm))
	})

	return r, nil
}
