package reconcile

import (
	"testing"
	"time"

	"github.com/taskhub/taskhub/internal/domain/models"
)

func datePtr(t time.Time) *time.Time { return &t }

func TestTaskStatus(t *testing.T) {
	today := time.Date(2025, 6, 15, 9, 30, 0, 0, time.UTC)
	yesterday := today.AddDate(0, 0, -1)
	tomorrow := today.AddDate(0, 0, 1)

	tests := []struct {
		name        string
		task        models.Task
		wantStatus  models.TaskStatus
		wantChanged bool
	}{
		{
			name:        "open past due flips to overdue",
			task:        models.Task{Status: models.TaskOpen, DueDate: datePtr(yesterday)},
			wantStatus:  models.TaskOverdue,
			wantChanged: true,
		},
		{
			name:        "in progress past due flips to overdue",
			task:        models.Task{Status: models.TaskInProgress, DueDate: datePtr(yesterday)},
			wantStatus:  models.TaskOverdue,
			wantChanged: true,
		},
		{
			name:        "completed past due is never altered",
			task:        models.Task{Status: models.TaskCompleted, DueDate: datePtr(yesterday)},
			wantStatus:  models.TaskCompleted,
			wantChanged: false,
		},
		{
			name:        "already overdue is a no-op",
			task:        models.Task{Status: models.TaskOverdue, DueDate: datePtr(yesterday)},
			wantStatus:  models.TaskOverdue,
			wantChanged: false,
		},
		{
			name:        "due today is not overdue",
			task:        models.Task{Status: models.TaskOpen, DueDate: datePtr(today)},
			wantStatus:  models.TaskOpen,
			wantChanged: false,
		},
		{
			name:        "due tomorrow is not overdue",
			task:        models.Task{Status: models.TaskOpen, DueDate: datePtr(tomorrow)},
			wantStatus:  models.TaskOpen,
			wantChanged: false,
		},
		{
			name:        "no due date is not overdue",
			task:        models.Task{Status: models.TaskOpen},
			wantStatus:  models.TaskOpen,
			wantChanged: false,
		},
		{
			name: "late evening due date compares by calendar date",
			task: models.Task{
				Status:  models.TaskOpen,
				DueDate: datePtr(time.Date(2025, 6, 14, 23, 59, 0, 0, time.UTC)),
			},
			wantStatus:  models.TaskOverdue,
			wantChanged: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, changed := TaskStatus(tt.task, today)
			if got != tt.wantStatus || changed != tt.wantChanged {
				t.Errorf("TaskStatus() = (%v, %v), want (%v, %v)", got, changed, tt.wantStatus, tt.wantChanged)
			}
		})
	}
}

func TestTaskStatus_Idempotent(t *testing.T) {
	today := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	task := models.Task{Status: models.TaskOpen, DueDate: datePtr(today.AddDate(0, 0, -3))}

	first, changed := TaskStatus(task, today)
	if !changed || first != models.TaskOverdue {
		t.Fatalf("first pass = (%v, %v), want (Overdue, true)", first, changed)
	}

	task.Status = first
	second, changed := TaskStatus(task, today)
	if changed || second != models.TaskOverdue {
		t.Errorf("second pass = (%v, %v), want (Overdue, false)", second, changed)
	}
}
