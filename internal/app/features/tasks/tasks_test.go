package tasks_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/taskhub/taskhub/internal/app/features/tasks"
	"github.com/taskhub/taskhub/internal/domain/models"
	"github.com/taskhub/taskhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func TestCreate_InboxWhenNoProject(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := testutil.NewFixtures(t, db)
	ctx := testutil.TestContext(t)
	h := tasks.NewHandler(db, zap.NewNop())

	alice := f.CreateUser(ctx, "Alice", "alice@test.com")

	req := testutil.AuthedJSONRequest(t, "POST", "/tasks", alice, map[string]any{
		"title": "Buy milk",
		"tags":  []string{"errand", "Errand", "home"},
	})
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		ID      string `json:"id"`
		IsInbox bool   `json:"is_inbox"`
		Status  string `json:"status"`
		Tags    []struct {
			Name  string `json:"name"`
			Color string `json:"color"`
		} `json:"tags"`
	}
	testutil.DecodeJSON(t, rec, &resp)

	if !resp.IsInbox {
		t.Error("task without project should be inbox")
	}
	if resp.Status != string(models.TaskOpen) {
		t.Errorf("status = %q, want Open", resp.Status)
	}
	// "errand" and "Errand" collapse to one tag.
	if len(resp.Tags) != 2 {
		t.Fatalf("tags = %+v, want 2", resp.Tags)
	}
	for _, tg := range resp.Tags {
		if tg.Color != models.DefaultTagColor {
			t.Errorf("tag color = %q, want default", tg.Color)
		}
	}
}

func TestCreate_ProjectTaskRequiresMembership(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := testutil.NewFixtures(t, db)
	ctx := testutil.TestContext(t)
	h := tasks.NewHandler(db, zap.NewNop())

	owner := f.CreateUser(ctx, "Owner", "owner@test.com")
	outsider := f.CreateUser(ctx, "Outsider", "outsider@test.com")
	p := f.CreateProject(ctx, "Launch", owner.ID)

	req := testutil.AuthedJSONRequest(t, "POST", "/tasks", outsider, map[string]any{
		"title":      "Sneaky",
		"project_id": p.ID.Hex(),
	})
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}

	// A project that does not exist at all is a 404, not a 403.
	req = testutil.AuthedJSONRequest(t, "POST", "/tasks", outsider, map[string]any{
		"title":      "Nowhere",
		"project_id": primitive.NewObjectID().Hex(),
	})
	rec = httptest.NewRecorder()
	h.HandleCreate(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404 for missing project", rec.Code)
	}
}

func TestCreate_AssigneeDefaultsToCreator(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := testutil.NewFixtures(t, db)
	ctx := testutil.TestContext(t)
	h := tasks.NewHandler(db, zap.NewNop())

	alice := f.CreateUser(ctx, "Alice", "alice@test.com")
	bob := f.CreateUser(ctx, "Bob", "bob@test.com")

	create := func(body map[string]any) models.Task {
		t.Helper()
		rec := httptest.NewRecorder()
		h.HandleCreate(rec, testutil.AuthedJSONRequest(t, "POST", "/tasks", alice, body))
		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
		}
		var resp struct {
			ID string `json:"id"`
		}
		testutil.DecodeJSON(t, rec, &resp)
		id, err := primitive.ObjectIDFromHex(resp.ID)
		if err != nil {
			t.Fatalf("task id: %v", err)
		}
		var stored models.Task
		if err := db.Collection("tasks").FindOne(ctx, bson.M{"_id": id}).Decode(&stored); err != nil {
			t.Fatalf("reload task: %v", err)
		}
		return stored
	}

	got := create(map[string]any{"title": "Unassigned"})
	if got.AssigneeID == nil || *got.AssigneeID != alice.ID {
		t.Errorf("assignee = %v, want creator %s", got.AssigneeID, alice.ID.Hex())
	}

	// An explicit assignee is kept as given.
	got = create(map[string]any{"title": "For Bob", "assignee_id": bob.ID.Hex()})
	if got.AssigneeID == nil || *got.AssigneeID != bob.ID {
		t.Errorf("assignee = %v, want %s", got.AssigneeID, bob.ID.Hex())
	}
}

func TestList_VisibilityUnion(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := testutil.NewFixtures(t, db)
	ctx := testutil.TestContext(t)
	h := tasks.NewHandler(db, zap.NewNop())

	owner := f.CreateUser(ctx, "Owner", "owner@test.com")
	member := f.CreateUser(ctx, "Member", "member@test.com")
	outsider := f.CreateUser(ctx, "Outsider", "outsider@test.com")

	p := f.CreateProject(ctx, "Launch", owner.ID)
	f.AddMember(ctx, p.ID, member.ID)

	projTask := f.CreateTaskWith(ctx, "Project task", owner.ID, func(t *models.Task) {
		t.ProjectID = &p.ID
	})
	// Assigned to member but created elsewhere, and also in the project:
	// must appear exactly once.
	assigned := f.CreateTaskWith(ctx, "Assigned too", owner.ID, func(t *models.Task) {
		t.ProjectID = &p.ID
		t.AssigneeID = &member.ID
	})
	f.CreateTask(ctx, "Owner inbox", owner.ID)

	list := func(u models.User) []struct {
		ID string `json:"id"`
	} {
		req := testutil.AuthedRequest("GET", "/tasks", u)
		rec := httptest.NewRecorder()
		h.ServeList(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
		}
		var out []struct {
			ID string `json:"id"`
		}
		testutil.DecodeJSON(t, rec, &out)
		return out
	}

	memberTasks := list(member)
	if len(memberTasks) != 2 {
		t.Fatalf("member sees %d tasks, want 2", len(memberTasks))
	}
	seen := map[string]int{}
	for _, item := range memberTasks {
		seen[item.ID]++
	}
	if seen[projTask.ID.Hex()] != 1 || seen[assigned.ID.Hex()] != 1 {
		t.Errorf("member task set wrong or duplicated: %v", seen)
	}

	if got := list(outsider); len(got) != 0 {
		t.Errorf("outsider sees %d tasks, want 0", len(got))
	}
}

func TestView_PersistsOverdueFlip(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := testutil.NewFixtures(t, db)
	ctx := testutil.TestContext(t)
	h := tasks.NewHandler(db, zap.NewNop())

	alice := f.CreateUser(ctx, "Alice", "alice@test.com")
	yesterday := time.Now().UTC().AddDate(0, 0, -1)
	task := f.CreateTaskWith(ctx, "Late", alice.ID, func(t *models.Task) {
		t.DueDate = &yesterday
	})

	req := testutil.WithChiURLParam(
		testutil.AuthedRequest("GET", "/tasks/"+task.ID.Hex(), alice), "id", task.ID.Hex())
	rec := httptest.NewRecorder()
	h.ServeView(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Status string `json:"status"`
	}
	testutil.DecodeJSON(t, rec, &resp)
	if resp.Status != string(models.TaskOverdue) {
		t.Errorf("response status = %q, want Overdue", resp.Status)
	}

	// The flip must be persisted, not just decorated on the response.
	var stored models.Task
	if err := db.Collection("tasks").FindOne(ctx, bson.M{"_id": task.ID}).Decode(&stored); err != nil {
		t.Fatalf("reload task: %v", err)
	}
	if stored.Status != models.TaskOverdue {
		t.Errorf("stored status = %q, want Overdue", stored.Status)
	}
}

func TestView_CompletedNeverFlips(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := testutil.NewFixtures(t, db)
	ctx := testutil.TestContext(t)
	h := tasks.NewHandler(db, zap.NewNop())

	alice := f.CreateUser(ctx, "Alice", "alice@test.com")
	lastWeek := time.Now().UTC().AddDate(0, 0, -7)
	task := f.CreateTaskWith(ctx, "Done late", alice.ID, func(t *models.Task) {
		t.DueDate = &lastWeek
		t.Status = models.TaskCompleted
	})

	req := testutil.WithChiURLParam(
		testutil.AuthedRequest("GET", "/tasks/"+task.ID.Hex(), alice), "id", task.ID.Hex())
	rec := httptest.NewRecorder()
	h.ServeView(rec, req)

	var resp struct {
		Status string `json:"status"`
	}
	testutil.DecodeJSON(t, rec, &resp)
	if resp.Status != string(models.TaskCompleted) {
		t.Errorf("status = %q, want Completed", resp.Status)
	}
}

func TestUpdate_CompletedStampsCompletedAt(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := testutil.NewFixtures(t, db)
	ctx := testutil.TestContext(t)
	h := tasks.NewHandler(db, zap.NewNop())

	alice := f.CreateUser(ctx, "Alice", "alice@test.com")
	task := f.CreateTask(ctx, "Finish me", alice.ID)

	req := testutil.WithChiURLParam(
		testutil.AuthedJSONRequest(t, "PUT", "/tasks/"+task.ID.Hex(), alice, map[string]any{
			"status": "Completed",
		}), "id", task.ID.Hex())
	rec := httptest.NewRecorder()
	h.HandleUpdate(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Status      string     `json:"status"`
		CompletedAt *time.Time `json:"completed_at"`
	}
	testutil.DecodeJSON(t, rec, &resp)
	if resp.Status != string(models.TaskCompleted) || resp.CompletedAt == nil {
		t.Fatalf("resp = %+v, want Completed with completed_at", resp)
	}

	// Reopening clears the stamp.
	req = testutil.WithChiURLParam(
		testutil.AuthedJSONRequest(t, "PUT", "/tasks/"+task.ID.Hex(), alice, map[string]any{
			"status": "Open",
		}), "id", task.ID.Hex())
	rec = httptest.NewRecorder()
	h.HandleUpdate(rec, req)

	testutil.DecodeJSON(t, rec, &resp)
	if resp.CompletedAt != nil {
		t.Errorf("completed_at = %v after reopening, want null", resp.CompletedAt)
	}
}

func TestUpdate_ProjectReassignmentRequiresMembership(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := testutil.NewFixtures(t, db)
	ctx := testutil.TestContext(t)
	h := tasks.NewHandler(db, zap.NewNop())

	alice := f.CreateUser(ctx, "Alice", "alice@test.com")
	bob := f.CreateUser(ctx, "Bob", "bob@test.com")
	theirProject := f.CreateProject(ctx, "Private", bob.ID)
	task := f.CreateTask(ctx, "Mine", alice.ID)

	req := testutil.WithChiURLParam(
		testutil.AuthedJSONRequest(t, "PUT", "/tasks/"+task.ID.Hex(), alice, map[string]any{
			"project_id": theirProject.ID.Hex(),
		}), "id", task.ID.Hex())
	rec := httptest.NewRecorder()
	h.HandleUpdate(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}

	var stored models.Task
	if err := db.Collection("tasks").FindOne(ctx, bson.M{"_id": task.ID}).Decode(&stored); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if stored.ProjectID != nil {
		t.Errorf("task moved into a forbidden project: %v", stored.ProjectID)
	}
}

func TestBulkUpdate_AllOrNothing(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := testutil.NewFixtures(t, db)
	ctx := testutil.TestContext(t)
	h := tasks.NewHandler(db, zap.NewNop())

	alice := f.CreateUser(ctx, "Alice", "alice@test.com")
	bob := f.CreateUser(ctx, "Bob", "bob@test.com")

	mine := f.CreateTask(ctx, "Mine", alice.ID)
	alsoMine := f.CreateTask(ctx, "Also mine", alice.ID)
	theirs := f.CreateTask(ctx, "Theirs", bob.ID)

	assertUnchanged := func() {
		t.Helper()
		for _, id := range []primitive.ObjectID{mine.ID, alsoMine.ID, theirs.ID} {
			var got models.Task
			if err := db.Collection("tasks").FindOne(ctx, bson.M{"_id": id}).Decode(&got); err != nil {
				t.Fatalf("reload: %v", err)
			}
			if got.Status != models.TaskOpen {
				t.Fatalf("task %s mutated to %q; batch must be all-or-nothing", id.Hex(), got.Status)
			}
		}
	}

	t.Run("missing id fails whole batch", func(t *testing.T) {
		req := testutil.AuthedJSONRequest(t, "POST", "/tasks/bulk-update", alice, map[string]any{
			"task_ids": []string{mine.ID.Hex(), primitive.NewObjectID().Hex()},
			"update":   map[string]any{"status": "Completed"},
		})
		rec := httptest.NewRecorder()
		h.HandleBulkUpdate(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", rec.Code)
		}
		assertUnchanged()
	})

	t.Run("unauthorized task fails whole batch", func(t *testing.T) {
		req := testutil.AuthedJSONRequest(t, "POST", "/tasks/bulk-update", alice, map[string]any{
			"task_ids": []string{mine.ID.Hex(), theirs.ID.Hex()},
			"update":   map[string]any{"status": "Completed"},
		})
		rec := httptest.NewRecorder()
		h.HandleBulkUpdate(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("status = %d, want 403", rec.Code)
		}
		assertUnchanged()
	})

	t.Run("project move flips is_inbox both ways", func(t *testing.T) {
		p := f.CreateProject(ctx, "Launch", alice.ID)

		bulk := func(body map[string]any, want int) {
			t.Helper()
			req := testutil.AuthedJSONRequest(t, "POST", "/tasks/bulk-update", alice, map[string]any{
				"task_ids": []string{mine.ID.Hex(), alsoMine.ID.Hex()},
				"update":   body,
			})
			rec := httptest.NewRecorder()
			h.HandleBulkUpdate(rec, req)
			if rec.Code != want {
				t.Fatalf("status = %d, want %d; body = %s", rec.Code, want, rec.Body.String())
			}
		}
		reload := func(id primitive.ObjectID) models.Task {
			t.Helper()
			var got models.Task
			if err := db.Collection("tasks").FindOne(ctx, bson.M{"_id": id}).Decode(&got); err != nil {
				t.Fatalf("reload: %v", err)
			}
			return got
		}

		bulk(map[string]any{"project_id": p.ID.Hex()}, http.StatusOK)
		for _, id := range []primitive.ObjectID{mine.ID, alsoMine.ID} {
			got := reload(id)
			if got.ProjectID == nil || *got.ProjectID != p.ID || got.IsInbox {
				t.Errorf("task %s = project %v inbox %v, want in project", id.Hex(), got.ProjectID, got.IsInbox)
			}
		}

		bulk(map[string]any{"project_id": ""}, http.StatusOK)
		for _, id := range []primitive.ObjectID{mine.ID, alsoMine.ID} {
			got := reload(id)
			if got.ProjectID != nil || !got.IsInbox {
				t.Errorf("task %s = project %v inbox %v, want back in inbox", id.Hex(), got.ProjectID, got.IsInbox)
			}
		}

		// A project the caller cannot access rejects the whole batch.
		theirProject := f.CreateProject(ctx, "Private", bob.ID)
		bulk(map[string]any{"project_id": theirProject.ID.Hex()}, http.StatusForbidden)
		if got := reload(mine.ID); got.ProjectID != nil {
			t.Errorf("task moved into a forbidden project: %v", got.ProjectID)
		}
	})

	t.Run("authorized batch completes and stamps", func(t *testing.T) {
		req := testutil.AuthedJSONRequest(t, "POST", "/tasks/bulk-update", alice, map[string]any{
			"task_ids": []string{mine.ID.Hex(), alsoMine.ID.Hex()},
			"update":   map[string]any{"status": "Completed"},
		})
		rec := httptest.NewRecorder()
		h.HandleBulkUpdate(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
		}

		for _, id := range []primitive.ObjectID{mine.ID, alsoMine.ID} {
			var got models.Task
			if err := db.Collection("tasks").FindOne(ctx, bson.M{"_id": id}).Decode(&got); err != nil {
				t.Fatalf("reload: %v", err)
			}
			if got.Status != models.TaskCompleted || got.CompletedAt == nil {
				t.Errorf("task %s = %q completed_at %v, want Completed with stamp", id.Hex(), got.Status, got.CompletedAt)
			}
		}
	})

	t.Run("bulk reopen keeps the completion stamp", func(t *testing.T) {
		req := testutil.AuthedJSONRequest(t, "POST", "/tasks/bulk-update", alice, map[string]any{
			"task_ids": []string{mine.ID.Hex()},
			"update":   map[string]any{"status": "Open"},
		})
		rec := httptest.NewRecorder()
		h.HandleBulkUpdate(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
		}

		var got models.Task
		if err := db.Collection("tasks").FindOne(ctx, bson.M{"_id": mine.ID}).Decode(&got); err != nil {
			t.Fatalf("reload: %v", err)
		}
		if got.Status != models.TaskOpen {
			t.Errorf("status = %q, want Open", got.Status)
		}
		if got.CompletedAt == nil {
			t.Error("completed_at cleared by bulk reopen; only single-task edit clears it")
		}
	})
}
