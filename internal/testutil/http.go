// internal/testutil/http.go
package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/taskhub/taskhub/internal/app/system/auth"
	"github.com/taskhub/taskhub/internal/domain/models"
)

// AuthedRequest creates a request with u injected as the signed-in user,
// bypassing the token middleware.
func AuthedRequest(method, target string, u models.User) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	return WithUser(req, u)
}

// JSONRequest creates an anonymous request with a JSON body, for endpoints
// that sit outside the auth middleware.
func JSONRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()

	buf, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal request body: %v", err)
	}
	req := httptest.NewRequest(method, target, bytes.NewReader(buf))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// AuthedJSONRequest is JSONRequest with u injected as the signed-in user.
func AuthedJSONRequest(t *testing.T, method, target string, u models.User, body any) *http.Request {
	t.Helper()
	return WithUser(JSONRequest(t, method, target, body), u)
}

// WithUser injects u into the request context the way LoadSessionUser
// would after validating a bearer token.
func WithUser(r *http.Request, u models.User) *http.Request {
	return auth.WithUser(r, &auth.SessionUser{
		ID:    u.ID.Hex(),
		Name:  u.Name,
		Email: u.Email,
		Role:  u.Role,
	})
}

// DecodeJSON unmarshals a recorded response body into dst.
func DecodeJSON(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("failed to parse response %q: %v", rec.Body.String(), err)
	}
}
