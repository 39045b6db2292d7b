// internal/app/features/projects/handler.go
package projects

import (
	"context"
	"net/http"

	"github.com/taskhub/taskhub/internal/app/policy/projectpolicy"
	"github.com/taskhub/taskhub/internal/app/store/members"
	"github.com/taskhub/taskhub/internal/app/store/projects"
	"github.com/taskhub/taskhub/internal/app/store/tasks"
	"github.com/taskhub/taskhub/internal/app/store/users"
	"github.com/taskhub/taskhub/internal/app/system/apierr"
	"github.com/taskhub/taskhub/internal/app/system/authz"
	"github.com/taskhub/taskhub/internal/app/system/reconcile"
	"github.com/taskhub/taskhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler is the shared dependency container for the projects feature.
type Handler struct {
	DB       *mongo.Database
	Projects *projectstore.Store
	Members  *memberstore.Store
	Tasks    *taskstore.Store
	Users    *userstore.Store
	Log      *zap.Logger
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		Projects: projectstore.New(db),
		Members:  memberstore.New(db),
		Tasks:    taskstore.New(db),
		Users:    userstore.New(db),
		Log:      logger,
	}
}

// loadAuthorized resolves {id} from the URL, loads the project, and checks
// the caller's access level. Missing projects and denied access both come
// back as NotFound so outsiders cannot probe for existence.
func (h *Handler) loadAuthorized(ctx context.Context, r *http.Request, need projectpolicy.AccessLevel) (models.Project, primitive.ObjectID, error) {
	userID, ok := authz.UserID(r)
	if !ok {
		return models.Project{}, primitive.NilObjectID, apierr.Unauthorized("sign in required")
	}

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		return models.Project{}, userID, apierr.NotFound("project not found")
	}

	p, err := h.Projects.GetByID(ctx, id)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.Project{}, userID, apierr.NotFound("project not found")
		}
		return models.Project{}, userID, err
	}

	level, err := projectpolicy.Access(ctx, h.DB, p, userID)
	if err != nil {
		return models.Project{}, userID, err
	}
	if level < need {
		if level == projectpolicy.AccessNone {
			return models.Project{}, userID, apierr.NotFound("project not found")
		}
		return models.Project{}, userID, apierr.PermissionDenied("only the project owner can do that")
	}
	return p, userID, nil
}

// withProgress fills the derived counters before a project leaves the API.
func (h *Handler) withProgress(ctx context.Context, p *models.Project) error {
	return reconcile.Project(ctx, h.DB, p)
}
