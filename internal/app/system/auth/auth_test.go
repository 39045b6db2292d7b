package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestManager(t *testing.T, ttl time.Duration) *TokenManager {
	t.Helper()
	tm, err := NewTokenManager(testSecret, ttl, zap.NewNop())
	if err != nil {
		t.Fatalf("NewTokenManager: %v", err)
	}
	return tm
}

func TestNewTokenManager_RejectsShortSecret(t *testing.T) {
	if _, err := NewTokenManager("too-short", time.Hour, zap.NewNop()); err == nil {
		t.Fatal("expected error for short secret")
	}
}

func TestIssueParse_RoundTrip(t *testing.T) {
	tm := newTestManager(t, time.Hour)

	token, err := tm.Issue("user-123")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	subject, err := tm.Parse(token)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if subject != "user-123" {
		t.Errorf("subject = %q, want %q", subject, "user-123")
	}
}

func TestParse_RejectsTamperedToken(t *testing.T) {
	tm := newTestManager(t, time.Hour)

	token, err := tm.Issue("user-123")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	tampered := token[:len(token)-2] + "xx"
	if _, err := tm.Parse(tampered); err == nil {
		t.Fatal("expected error for tampered token")
	}
}

func TestParse_RejectsWrongSecret(t *testing.T) {
	tm := newTestManager(t, time.Hour)
	other, err := NewTokenManager(strings.Repeat("x", 32), time.Hour, zap.NewNop())
	if err != nil {
		t.Fatalf("NewTokenManager: %v", err)
	}

	token, err := other.Issue("user-123")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := tm.Parse(token); err == nil {
		t.Fatal("expected error for token signed with a different secret")
	}
}

func TestParse_RejectsExpiredToken(t *testing.T) {
	tm := newTestManager(t, time.Hour)
	tm.ttl = -time.Minute

	token, err := tm.Issue("user-123")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := tm.Parse(token); err == nil {
		t.Fatal("expected error for expired token")
	}
}

type staticFetcher struct {
	user *SessionUser
}

func (f staticFetcher) FetchSessionUser(_ context.Context, userID string) (*SessionUser, error) {
	if f.user != nil && f.user.ID == userID {
		return f.user, nil
	}
	return nil, nil
}

func TestLoadSessionUser_ValidToken(t *testing.T) {
	tm := newTestManager(t, time.Hour)
	tm.SetUserFetcher(staticFetcher{user: &SessionUser{ID: "u1", Name: "Ada"}})

	token, err := tm.Issue("u1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	var got *SessionUser
	handler := tm.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = CurrentUser(r)
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if got == nil || got.Name != "Ada" {
		t.Fatalf("CurrentUser = %+v, want Ada", got)
	}
}

func TestLoadSessionUser_AnonymousPassThrough(t *testing.T) {
	tm := newTestManager(t, time.Hour)
	tm.SetUserFetcher(staticFetcher{})

	for name, header := range map[string]string{
		"no header":     "",
		"garbage token": "Bearer not-a-token",
	} {
		t.Run(name, func(t *testing.T) {
			called := false
			handler := tm.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				if _, ok := CurrentUser(r); ok {
					t.Error("expected no user in context")
				}
			}))

			req := httptest.NewRequest("GET", "/", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			handler.ServeHTTP(httptest.NewRecorder(), req)
			if !called {
				t.Fatal("next handler not called")
			}
		})
	}
}

func TestRequireSignedIn(t *testing.T) {
	tm := newTestManager(t, time.Hour)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	t.Run("anonymous gets 401", func(t *testing.T) {
		rec := httptest.NewRecorder()
		tm.RequireSignedIn(next).ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("signed-in passes", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := WithUser(httptest.NewRequest("GET", "/", nil), &SessionUser{ID: "u1"})
		tm.RequireSignedIn(next).ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Errorf("status = %d, want 204", rec.Code)
		}
	})
}
