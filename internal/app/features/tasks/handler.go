// internal/app/features/tasks/handler.go
package tasks

import (
	"context"
	"errors"
	"net/http"

	"github.com/taskhub/taskhub/internal/app/policy/taskpolicy"
	"github.com/taskhub/taskhub/internal/app/store/members"
	"github.com/taskhub/taskhub/internal/app/store/tags"
	"github.com/taskhub/taskhub/internal/app/store/tasks"
	"github.com/taskhub/taskhub/internal/app/system/apierr"
	"github.com/taskhub/taskhub/internal/app/system/authz"
	"github.com/taskhub/taskhub/internal/app/system/sanitize"
	"github.com/taskhub/taskhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler is the shared dependency container for the tasks feature.
type Handler struct {
	DB      *mongo.Database
	Tasks   *taskstore.Store
	Tags    *tagstore.Store
	Members *memberstore.Store
	Log     *zap.Logger
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		DB:      db,
		Tasks:   taskstore.New(db),
		Tags:    tagstore.New(db),
		Members: memberstore.New(db),
		Log:     logger,
	}
}

// taskResponse is a task plus its expanded tags.
type taskResponse struct {
	models.Task
	Tags []models.Tag `json:"tags"`
}

// expandTags builds responses with tag documents attached. One lookup
// covers the whole batch.
func (h *Handler) expandTags(ctx context.Context, tasks []models.Task) ([]taskResponse, error) {
	idSet := make(map[primitive.ObjectID]struct{})
	for _, t := range tasks {
		for _, id := range t.TagIDs {
			idSet[id] = struct{}{}
		}
	}
	ids := make([]primitive.ObjectID, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}

	tags, err := h.Tags.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]models.Tag, len(tags))
	for _, tg := range tags {
		byID[tg.ID] = tg
	}

	out := make([]taskResponse, 0, len(tasks))
	for _, t := range tasks {
		resp := taskResponse{Task: t, Tags: []models.Tag{}}
		for _, id := range t.TagIDs {
			if tg, ok := byID[id]; ok {
				resp.Tags = append(resp.Tags, tg)
			}
		}
		out = append(out, resp)
	}
	return out, nil
}

// resolveTags sanitizes tag names and resolves each to a tag id, creating
// missing tags on the way. Duplicate names collapse to one id.
func (h *Handler) resolveTags(ctx context.Context, names []string) ([]primitive.ObjectID, error) {
	var ids []primitive.ObjectID
	seen := make(map[primitive.ObjectID]struct{})
	for _, name := range names {
		name = sanitize.Text(name)
		if name == "" {
			continue
		}
		tg, err := h.Tags.EnsureByName(ctx, name)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[tg.ID]; dup {
			continue
		}
		seen[tg.ID] = struct{}{}
		ids = append(ids, tg.ID)
	}
	return ids, nil
}

// loadAuthorized resolves {id} from the URL and enforces task access.
// Missing tasks and invisible tasks are indistinguishable to the caller.
func (h *Handler) loadAuthorized(ctx context.Context, r *http.Request) (models.Task, primitive.ObjectID, error) {
	userID, ok := authz.UserID(r)
	if !ok {
		return models.Task{}, primitive.NilObjectID, apierr.Unauthorized("sign in required")
	}

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		return models.Task{}, userID, apierr.NotFound("task not found")
	}

	t, err := h.Tasks.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Task{}, userID, apierr.NotFound("task not found")
		}
		return models.Task{}, userID, err
	}

	allowed, err := taskpolicy.CanAccess(ctx, h.DB, t, userID)
	if err != nil {
		return models.Task{}, userID, err
	}
	if !allowed {
		return models.Task{}, userID, apierr.NotFound("task not found")
	}
	return t, userID, nil
}
