package planner_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/taskhub/taskhub/internal/app/ai"
	"github.com/taskhub/taskhub/internal/app/features/planner"
	"github.com/taskhub/taskhub/internal/domain/models"
	"github.com/taskhub/taskhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type stubCreds struct{ err error }

func (s stubCreds) Credentials(context.Context, primitive.ObjectID) (string, string, error) {
	if s.err != nil {
		return "", "", s.err
	}
	return models.ProviderOpenAI, "sk-test", nil
}

type stubProvider struct {
	reply string
	err   error
}

func (p stubProvider) Name() string { return "stub" }
func (p stubProvider) Complete(context.Context, []ai.Turn) (string, error) {
	return p.reply, p.err
}

func newTestHandler(t *testing.T, db *mongo.Database, p stubProvider) *planner.Handler {
	t.Helper()
	h := planner.NewHandler(db, stubCreds{}, 0, zap.NewNop())
	h.NewProvider = func(string, string) (ai.Provider, error) { return p, nil }
	return h
}

func TestChat_StoresBothTurnsAndSuggestions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := testutil.NewFixtures(t, db)
	ctx := testutil.TestContext(t)

	reply := "Here you go.\n```json\n" +
		`{"suggested_tasks": [{"title": "Draft plan", "priority": "High"}]}` + "\n```"
	h := newTestHandler(t, db, stubProvider{reply: reply})

	alice := f.CreateUser(ctx, "Alice", "alice@test.com")

	req := testutil.AuthedJSONRequest(t, "POST", "/ai/chat", alice, map[string]any{
		"message": "Help me plan a launch",
	})
	rec := httptest.NewRecorder()
	h.HandleChat(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		ConversationID string `json:"conversation_id"`
		Message        struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		Suggestions []struct {
			Title    string `json:"title"`
			Priority string `json:"priority"`
		} `json:"suggestions"`
	}
	testutil.DecodeJSON(t, rec, &resp)

	if resp.Message.Role != models.RoleAssistant {
		t.Errorf("message role = %q", resp.Message.Role)
	}
	if len(resp.Suggestions) != 1 || resp.Suggestions[0].Title != "Draft plan" {
		t.Fatalf("suggestions = %+v", resp.Suggestions)
	}

	convID, err := primitive.ObjectIDFromHex(resp.ConversationID)
	if err != nil {
		t.Fatalf("conversation id: %v", err)
	}
	n, err := db.Collection("ai_messages").CountDocuments(ctx, bson.M{"conversation_id": convID})
	if err != nil {
		t.Fatalf("count messages: %v", err)
	}
	if n != 2 {
		t.Errorf("stored messages = %d, want user + assistant", n)
	}
}

func TestChat_ProviderFailureBecomesAssistantMessage(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := testutil.NewFixtures(t, db)
	ctx := testutil.TestContext(t)

	h := newTestHandler(t, db, stubProvider{err: errors.New("upstream 500")})
	alice := f.CreateUser(ctx, "Alice", "alice@test.com")

	req := testutil.AuthedJSONRequest(t, "POST", "/ai/chat", alice, map[string]any{
		"message": "Hello?",
	})
	rec := httptest.NewRecorder()
	h.HandleChat(rec, req)

	// The call still succeeds; the failure is recorded as the assistant turn.
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body = %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		Suggestions []any `json:"suggestions"`
	}
	testutil.DecodeJSON(t, rec, &resp)
	if resp.Message.Role != models.RoleAssistant || resp.Message.Content == "" {
		t.Errorf("assistant error turn missing: %+v", resp.Message)
	}
	if len(resp.Suggestions) != 0 {
		t.Errorf("suggestions = %v, want none", resp.Suggestions)
	}
}

func TestChat_ForeignConversationHidden(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := testutil.NewFixtures(t, db)
	ctx := testutil.TestContext(t)

	h := newTestHandler(t, db, stubProvider{reply: "hi"})
	alice := f.CreateUser(ctx, "Alice", "alice@test.com")
	bob := f.CreateUser(ctx, "Bob", "bob@test.com")
	conv := f.CreateConversation(ctx, alice.ID, "private")

	hex := conv.ID.Hex()
	req := testutil.AuthedJSONRequest(t, "POST", "/ai/chat", bob, map[string]any{
		"message":         "let me in",
		"conversation_id": hex,
	})
	rec := httptest.NewRecorder()
	h.HandleChat(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestMaterialize_CheckOrderAndClaim(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := testutil.NewFixtures(t, db)
	ctx := testutil.TestContext(t)

	h := newTestHandler(t, db, stubProvider{})
	alice := f.CreateUser(ctx, "Alice", "alice@test.com")
	bob := f.CreateUser(ctx, "Bob", "bob@test.com")

	conv := f.CreateConversation(ctx, alice.ID, "plan")
	msg := f.CreateMessage(ctx, conv.ID, models.RoleAssistant, "reply")
	sug := f.CreateSuggestion(ctx, msg.ID, "Draft plan")

	materialize := func(u models.User, id string) *httptest.ResponseRecorder {
		req := testutil.WithChiURLParam(
			testutil.AuthedRequest("POST", "/ai/suggestions/"+id+"/create-task", u), "id", id)
		rec := httptest.NewRecorder()
		h.HandleMaterialize(rec, req)
		return rec
	}

	t.Run("missing suggestion is 404", func(t *testing.T) {
		rec := materialize(alice, primitive.NewObjectID().Hex())
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})

	t.Run("foreign suggestion is 403", func(t *testing.T) {
		rec := materialize(bob, sug.ID.Hex())
		if rec.Code != http.StatusForbidden {
			t.Errorf("status = %d, want 403", rec.Code)
		}
	})

	t.Run("first conversion creates an inbox task", func(t *testing.T) {
		rec := materialize(alice, sug.ID.Hex())
		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
		}
		var task models.Task
		testutil.DecodeJSON(t, rec, &task)
		if !task.IsInbox || task.CreatedBy != alice.ID {
			t.Errorf("task = %+v, want inbox task created by alice", task)
		}
		if task.AssigneeID == nil || *task.AssigneeID != alice.ID {
			t.Errorf("assignee = %v, want alice", task.AssigneeID)
		}

		var stored models.TaskSuggestion
		if err := db.Collection("ai_task_suggestions").FindOne(ctx, bson.M{"_id": sug.ID}).Decode(&stored); err != nil {
			t.Fatalf("reload suggestion: %v", err)
		}
		if stored.CreatedTaskID == nil || *stored.CreatedTaskID != task.ID {
			t.Errorf("created_task_id = %v, want %s", stored.CreatedTaskID, task.ID.Hex())
		}
	})

	t.Run("second conversion is 409 and creates nothing", func(t *testing.T) {
		before, _ := db.Collection("tasks").CountDocuments(ctx, bson.M{})
		rec := materialize(alice, sug.ID.Hex())
		if rec.Code != http.StatusConflict {
			t.Errorf("status = %d, want 409", rec.Code)
		}
		after, _ := db.Collection("tasks").CountDocuments(ctx, bson.M{})
		if after != before {
			t.Errorf("task count changed %d -> %d on repeat conversion", before, after)
		}
	})
}

func TestMaterialize_ConcurrentCallsCreateOneTask(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := testutil.NewFixtures(t, db)
	ctx := testutil.TestContext(t)

	h := newTestHandler(t, db, stubProvider{})
	alice := f.CreateUser(ctx, "Alice", "alice@test.com")
	conv := f.CreateConversation(ctx, alice.ID, "plan")
	msg := f.CreateMessage(ctx, conv.ID, models.RoleAssistant, "reply")
	sug := f.CreateSuggestion(ctx, msg.ID, "Race me")

	const callers = 8
	codes := make([]int, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := testutil.WithChiURLParam(
				testutil.AuthedRequest("POST", "/ai/suggestions/"+sug.ID.Hex()+"/create-task", alice),
				"id", sug.ID.Hex())
			rec := httptest.NewRecorder()
			h.HandleMaterialize(rec, req)
			codes[i] = rec.Code
		}(i)
	}
	wg.Wait()

	created := 0
	for _, c := range codes {
		if c == http.StatusCreated {
			created++
		} else if c != http.StatusConflict {
			t.Errorf("unexpected status %d", c)
		}
	}
	if created != 1 {
		t.Errorf("%d callers created a task, want exactly 1", created)
	}

	n, err := db.Collection("tasks").CountDocuments(ctx, bson.M{})
	if err != nil {
		t.Fatalf("count tasks: %v", err)
	}
	if n != 1 {
		t.Errorf("task count = %d, want 1", n)
	}
}

func TestConversationDetail_IncludesSuggestions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := testutil.NewFixtures(t, db)
	ctx := testutil.TestContext(t)

	h := newTestHandler(t, db, stubProvider{})
	alice := f.CreateUser(ctx, "Alice", "alice@test.com")
	conv := f.CreateConversation(ctx, alice.ID, "plan")
	f.CreateMessage(ctx, conv.ID, models.RoleUser, "hello")
	msg := f.CreateMessage(ctx, conv.ID, models.RoleAssistant, "reply")
	f.CreateSuggestion(ctx, msg.ID, "Task A")

	req := testutil.WithChiURLParam(
		testutil.AuthedRequest("GET", "/ai/conversations/"+conv.ID.Hex(), alice), "id", conv.ID.Hex())
	rec := httptest.NewRecorder()
	h.ServeConversation(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Messages []struct {
			Role string `json:"role"`
		} `json:"messages"`
		Suggestions []struct {
			Title string `json:"title"`
		} `json:"suggestions"`
	}
	testutil.DecodeJSON(t, rec, &resp)
	if len(resp.Messages) != 2 {
		t.Errorf("messages = %d, want 2", len(resp.Messages))
	}
	if len(resp.Suggestions) != 1 || resp.Suggestions[0].Title != "Task A" {
		t.Errorf("suggestions = %+v", resp.Suggestions)
	}
}
