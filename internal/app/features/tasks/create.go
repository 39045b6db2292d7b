// internal/app/features/tasks/create.go
package tasks

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/taskhub/taskhub/internal/app/policy/projectpolicy"
	"github.com/taskhub/taskhub/internal/app/system/apierr"
	"github.com/taskhub/taskhub/internal/app/system/authz"
	"github.com/taskhub/taskhub/internal/app/system/httpjson"
	"github.com/taskhub/taskhub/internal/app/system/sanitize"
	"github.com/taskhub/taskhub/internal/app/system/timeouts"
	"github.com/taskhub/taskhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type createTaskRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    string     `json:"priority"`
	Status      string     `json:"status"`
	DueDate     *time.Time `json:"due_date"`
	ProjectID   *string    `json:"project_id"`
	AssigneeID  *string    `json:"assignee_id"`
	Tags        []string   `json:"tags"`
}

// HandleCreate handles POST /tasks. A task without a project lands in the
// caller's inbox; a project task requires the caller to be the owner or a
// member of that project. Tag names are resolved lazily, creating missing
// tags on the way.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := authz.UserID(r)
	if !ok {
		apierr.Write(w, h.Log, apierr.Unauthorized("sign in required"))
		return
	}

	var req createTaskRequest
	if err := httpjson.Decode(r, &req); err != nil {
		apierr.Write(w, h.Log, apierr.Validation(err.Error()))
		return
	}

	title := sanitize.Text(req.Title)
	if title == "" {
		apierr.Write(w, h.Log, apierr.Validation("title is required"))
		return
	}

	priority := models.PriorityMedium
	if req.Priority != "" {
		p := models.Priority(req.Priority)
		if !models.ValidPriority(p) {
			apierr.Write(w, h.Log, apierr.Validation("invalid priority"))
			return
		}
		priority = p
	}

	status := models.TaskOpen
	if req.Status != "" {
		s := models.TaskStatus(req.Status)
		if !models.ValidTaskStatus(s) {
			apierr.Write(w, h.Log, apierr.Validation("invalid status"))
			return
		}
		status = s
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	var projectID *primitive.ObjectID
	if req.ProjectID != nil && *req.ProjectID != "" {
		id, err := primitive.ObjectIDFromHex(*req.ProjectID)
		if err != nil {
			apierr.Write(w, h.Log, apierr.Validation("project_id is not a valid id"))
			return
		}
		p, err := h.loadProject(ctx, id)
		if err != nil {
			apierr.Write(w, h.Log, err)
			return
		}
		level, err := projectpolicy.Access(ctx, h.DB, p, userID)
		if err != nil {
			apierr.Write(w, h.Log, err)
			return
		}
		if !projectpolicy.CanView(level) {
			apierr.Write(w, h.Log, apierr.PermissionDenied("not a member of this project"))
			return
		}
		projectID = &id
	}

	// New tasks default to the creator as assignee.
	assigneeID := &userID
	if req.AssigneeID != nil && *req.AssigneeID != "" {
		id, err := primitive.ObjectIDFromHex(*req.AssigneeID)
		if err != nil {
			apierr.Write(w, h.Log, apierr.Validation("assignee_id is not a valid id"))
			return
		}
		assigneeID = &id
	}

	tagIDs, err := h.resolveTags(ctx, req.Tags)
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}

	t := models.Task{
		Title:       title,
		Description: sanitize.Body(req.Description),
		Priority:    priority,
		Status:      status,
		DueDate:     req.DueDate,
		ProjectID:   projectID,
		AssigneeID:  assigneeID,
		CreatedBy:   userID,
		IsInbox:     projectID == nil,
		TagIDs:      tagIDs,
	}
	if status == models.TaskCompleted {
		now := time.Now().UTC()
		t.CompletedAt = &now
	}

	created, err := h.Tasks.Insert(ctx, t)
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}

	out, err := h.expandTags(ctx, []models.Task{created})
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}
	httpjson.Write(w, h.Log, http.StatusCreated, out[0])
}

func (h *Handler) loadProject(ctx context.Context, id primitive.ObjectID) (models.Project, error) {
	var p models.Project
	err := h.DB.Collection("projects").FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Project{}, apierr.NotFound("project not found")
		}
		return models.Project{}, err
	}
	return p, nil
}
