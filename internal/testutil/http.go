package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/liderplan/internal/app/system/auth"
	"github.com/dalemusser/liderplan/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AdminUser returns an authenticated ADMIN caller.
func AdminUser() *auth.User {
	return &auth.User{ID: primitive.NewObjectID(), SessionID: primitive.NewObjectID(), FullName: "Test Admin", Email: "admin@test.com", Role: models.RoleAdmin}
}

// LeaderUser returns an authenticated LEADER caller.
func LeaderUser() *auth.User {
	return &auth.User{ID: primitive.NewObjectID(), SessionID: primitive.NewObjectID(), FullName: "Test Leader", Email: "leader@test.com", Role: models.RoleLeader}
}

// TeamUser returns an authenticated TEAM caller.
func TeamUser() *auth.User {
	return &auth.User{ID: primitive.NewObjectID(), SessionID: primitive.NewObjectID(), FullName: "Test Team", Email: "team@test.com", Role: models.RoleTeam}
}

// AsUser returns the caller for a stored user.
func AsUser(u models.User) *auth.User {
	return &auth.User{ID: u.ID, SessionID: primitive.NewObjectID(), FullName: u.FullName, Email: u.Email, Role: u.Role}
}

// WithUser adds a caller to the request context, bypassing RequireAuth.
func WithUser(r *http.Request, u *auth.User) *http.Request {
	return r.WithContext(auth.WithUser(r.Context(), u))
}

// JSONRequest builds a request with body encoded as JSON. A nil body sends
// no body.
func JSONRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		rd = bytes.NewReader(b)
	}
	r := httptest.NewRequest(method, target, rd)
	r.Header.Set("Content-Type", "application/json")
	return r
}

// AuthedJSONRequest is JSONRequest with u in the context.
func AuthedJSONRequest(t *testing.T, method, target string, body any, u *auth.User) *http.Request {
	t.Helper()
	return WithUser(JSONRequest(t, method, target, body), u)
}

// DecodeJSON decodes a recorder body into v.
func DecodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}
