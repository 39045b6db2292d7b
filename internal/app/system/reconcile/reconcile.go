// internal/app/system/reconcile/reconcile.go

// Package reconcile recomputes derived state on read: task overdue status
// and project completion counters. The store never holds the authoritative
// value for either; every read path runs these before responding.
//
// Overdue is persisted when detected (matching the user-visible behavior of
// always-accurate task lists). The write lives here, in one explicit step,
// so a future read-only call path can opt out without touching handlers.
package reconcile

import (
	"context"
	"time"

	"github.com/taskhub/taskhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// dateOnly truncates t to its calendar date in UTC.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// TaskStatus derives the status a task should have as of today. It returns
// the derived status and whether it differs from the stored one.
//
// A task whose due date has passed flips to Overdue unless it is Completed;
// a Completed task is never altered regardless of due date. Re-running is
// idempotent: an already-Overdue task reports no change.
func TaskStatus(t models.Task, today time.Time) (models.TaskStatus, bool) {
	if t.Status == models.TaskCompleted || t.DueDate == nil {
		return t.Status, false
	}
	if dateOnly(*t.DueDate).Before(dateOnly(today)) && t.Status != models.TaskOverdue {
		return models.TaskOverdue, true
	}
	return t.Status, false
}

// Tasks applies TaskStatus to each task in place and persists any flips.
// Only tasks that actually changed are written.
func Tasks(ctx context.Context, db *mongo.Database, tasks []models.Task, today time.Time) error {
	col := db.Collection("tasks")
	for i := range tasks {
		status, changed := TaskStatus(tasks[i], today)
		if !changed {
			continue
		}
		tasks[i].Status = status
		_, err := col.UpdateByID(ctx, tasks[i].ID, bson.M{"$set": bson.M{
			"status":     status,
			"updated_at": time.Now().UTC(),
		}})
		if err != nil {
			return err
		}
	}
	return nil
}

// Progress is the derived completion summary of one project.
type Progress struct {
	Total     int
	Completed int
	Percent   int
}

// ProjectProgress counts the project's tasks and derives the completion
// percentage: floor(completed/total*100), or 0 for an empty project.
// Recomputing without an intervening mutation yields the same value.
func ProjectProgress(ctx context.Context, db *mongo.Database, projectID primitive.ObjectID) (Progress, error) {
	col := db.Collection("tasks")

	total, err := col.CountDocuments(ctx, bson.M{"project_id": projectID})
	if err != nil {
		return Progress{}, err
	}
	completed, err := col.CountDocuments(ctx, bson.M{
		"project_id": projectID,
		"status":     models.TaskCompleted,
	})
	if err != nil {
		return Progress{}, err
	}

	p := Progress{Total: int(total), Completed: int(completed)}
	if total > 0 {
		p.Percent = int(completed * 100 / total)
	}
	return p, nil
}

// Project fills the derived counter fields on p from the live task counts.
func Project(ctx context.Context, db *mongo.Database, p *models.Project) error {
	prog, err := ProjectProgress(ctx, db, p.ID)
	if err != nil {
		return err
	}
	p.TotalTasks = prog.Total
	p.CompletedTasks = prog.Completed
	p.Progress = prog.Percent
	return nil
}
