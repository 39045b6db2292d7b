package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/taskhub/taskhub/internal/app/features/auth"
	userstore "github.com/taskhub/taskhub/internal/app/store/users"
	sysauth "github.com/taskhub/taskhub/internal/app/system/auth"
	"github.com/taskhub/taskhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T, db *mongo.Database) *auth.Handler {
	t.Helper()
	tm, err := sysauth.NewTokenManager("0123456789abcdef0123456789abcdef", time.Hour, zap.NewNop())
	if err != nil {
		t.Fatalf("token manager: %v", err)
	}
	return auth.NewHandler(userstore.New(db), tm, zap.NewNop())
}

type tokenBody struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	User        struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
	} `json:"user"`
}

func jsonRequest(t *testing.T, target string, body any) *http.Request {
	t.Helper()
	return testutil.JSONRequest(t, "POST", target, body)
}

func TestSignup(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newTestHandler(t, db)

	t.Run("creates the account and signs the caller in", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.HandleSignup(rec, jsonRequest(t, "/auth/signup", map[string]any{
			"email":    "Alice@Test.com",
			"name":     "Alice",
			"password": "hunter2hunter2",
		}))
		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
		}
		var body tokenBody
		testutil.DecodeJSON(t, rec, &body)
		if body.AccessToken == "" || body.TokenType != "bearer" {
			t.Errorf("token = %+v", body)
		}
		if body.User.Email != "alice@test.com" {
			t.Errorf("email = %q, want lowercased", body.User.Email)
		}
	})

	t.Run("duplicate email is rejected", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.HandleSignup(rec, jsonRequest(t, "/auth/signup", map[string]any{
			"email":    "ALICE@test.com",
			"name":     "Imposter",
			"password": "hunter2hunter2",
		}))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("short password is rejected", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.HandleSignup(rec, jsonRequest(t, "/auth/signup", map[string]any{
			"email":    "bob@test.com",
			"name":     "Bob",
			"password": "short",
		}))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("password hash is stored, not the password", func(t *testing.T) {
		ctx := testutil.TestContext(t)
		var doc struct {
			HashedPassword string `bson:"hashed_password"`
		}
		if err := db.Collection("users").FindOne(ctx, bson.M{"email": "alice@test.com"}).Decode(&doc); err != nil {
			t.Fatalf("reload user: %v", err)
		}
		if doc.HashedPassword == "" || doc.HashedPassword == "hunter2hunter2" {
			t.Errorf("hashed_password = %q", doc.HashedPassword)
		}
	})
}

func TestLogin(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newTestHandler(t, db)

	signup := func(email, password string) {
		rec := httptest.NewRecorder()
		h.HandleSignup(rec, jsonRequest(t, "/auth/signup", map[string]any{
			"email": email, "name": "Someone", "password": password,
		}))
		if rec.Code != http.StatusCreated {
			t.Fatalf("signup: status = %d, body = %s", rec.Code, rec.Body.String())
		}
	}
	login := func(email, password string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		h.HandleLogin(rec, jsonRequest(t, "/auth/login", map[string]any{
			"email": email, "password": password,
		}))
		return rec
	}

	signup("alice@test.com", "hunter2hunter2")

	t.Run("correct credentials", func(t *testing.T) {
		rec := login("alice@test.com", "hunter2hunter2")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
		}
		var body tokenBody
		testutil.DecodeJSON(t, rec, &body)
		if body.AccessToken == "" {
			t.Error("no access token")
		}
	})

	t.Run("wrong password and unknown email are indistinguishable", func(t *testing.T) {
		wrongPass := login("alice@test.com", "not-the-password")
		unknown := login("nobody@test.com", "whatever-password")
		if wrongPass.Code != http.StatusUnauthorized || unknown.Code != http.StatusUnauthorized {
			t.Fatalf("codes = %d, %d, want 401 for both", wrongPass.Code, unknown.Code)
		}
		if wrongPass.Body.String() != unknown.Body.String() {
			t.Errorf("bodies differ:\n%s\n%s", wrongPass.Body.String(), unknown.Body.String())
		}
	})

	t.Run("inactive user cannot sign in", func(t *testing.T) {
		ctx := testutil.TestContext(t)
		signup("carol@test.com", "hunter2hunter2")
		_, err := db.Collection("users").UpdateOne(ctx,
			bson.M{"email": "carol@test.com"}, bson.M{"$set": bson.M{"active": false}})
		if err != nil {
			t.Fatalf("deactivate: %v", err)
		}
		rec := login("carol@test.com", "hunter2hunter2")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("repeated failures for one account get throttled", func(t *testing.T) {
		for i := 0; i < 5; i++ {
			if rec := login("victim@test.com", "wrong-password"); rec.Code != http.StatusUnauthorized {
				t.Fatalf("attempt %d: status = %d, want 401", i+1, rec.Code)
			}
		}
		if rec := login("victim@test.com", "wrong-password"); rec.Code != http.StatusTooManyRequests {
			t.Errorf("status = %d, want 429 after window exhausted", rec.Code)
		}
	})

	t.Run("last_login is stamped", func(t *testing.T) {
		ctx := testutil.TestContext(t)
		var doc struct {
			LastLogin *time.Time `bson:"last_login"`
		}
		if err := db.Collection("users").FindOne(ctx, bson.M{"email": "alice@test.com"}).Decode(&doc); err != nil {
			t.Fatalf("reload user: %v", err)
		}
		if doc.LastLogin == nil {
			t.Error("last_login not set after login")
		}
	})
}
