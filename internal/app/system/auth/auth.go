// Package auth authenticates API requests carrying a bearer token and puts
// the caller into the request context.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	sessionstore "github.com/dalemusser/liderplan/internal/app/store/sessions"
	userstore "github.com/dalemusser/liderplan/internal/app/store/users"
	"github.com/dalemusser/liderplan/internal/app/system/apperr"
	"github.com/dalemusser/liderplan/internal/app/system/httpx"
	"github.com/dalemusser/liderplan/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// touchInterval limits how often a session's last_active_at is written.
const touchInterval = time.Minute

// User is the authenticated caller.
type User struct {
	ID        primitive.ObjectID
	SessionID primitive.ObjectID
	Email     string
	FullName  string
	Role      string
}

// IsAdmin reports whether the caller has the ADMIN role.
func (u *User) IsAdmin() bool { return u != nil && u.Role == models.RoleAdmin }

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// WithUser returns a copy of ctx carrying u.
func WithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, currentUserKey, u)
}

// FromContext returns the caller stored by RequireAuth.
func FromContext(ctx context.Context) (*User, bool) {
	u, ok := ctx.Value(currentUserKey).(*User)
	return u, ok && u != nil
}

// CurrentUser returns the caller of r.
func CurrentUser(r *http.Request) (*User, bool) {
	return FromContext(r.Context())
}

// UserFinder loads users by ID.
type UserFinder interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

// SessionTracker loads and refreshes server-side sessions.
type SessionTracker interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Session, error)
	Touch(ctx context.Context, id primitive.ObjectID) error
}

// Authenticator resolves bearer tokens to users.
type Authenticator struct {
	Tokens   *TokenManager
	Users    UserFinder
	Sessions SessionTracker
	Log      *zap.Logger
	Now      func() time.Time
}

// NewAuthenticator wires an Authenticator.
func NewAuthenticator(tokens *TokenManager, users UserFinder, sessions SessionTracker, log *zap.Logger) *Authenticator {
	return &Authenticator{Tokens: tokens, Users: users, Sessions: sessions, Log: log, Now: time.Now}
}

// Authenticate verifies token, checks its session is still open and loads
// the user. The role comes from the stored user, not the token, so role
// changes apply to existing tokens.
func (a *Authenticator) Authenticate(ctx context.Context, token string) (*User, error) {
	if token == "" {
		return nil, apperr.Auth("Authentication required")
	}
	userID, sessionID, err := a.Tokens.Parse(token)
	if err != nil {
		return nil, apperr.Auth("Invalid or expired token")
	}

	sess, err := a.Sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sessionstore.ErrNotFound) {
			return nil, apperr.Auth("Invalid or expired token")
		}
		return nil, apperr.Storage("Failed to load session", err)
	}
	if sess.LogoutAt != nil || sess.UserID != userID {
		return nil, apperr.Auth("Session has ended")
	}

	u, err := a.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			return nil, apperr.Auth("User no longer exists")
		}
		return nil, apperr.Storage("Failed to load user", err)
	}

	now := a.now()
	if now.Sub(sess.LastActiveAt) > touchInterval {
		if err := a.Sessions.Touch(ctx, sessionID); err != nil && a.Log != nil {
			a.Log.Warn("failed to touch session", zap.String("session_id", sessionID.Hex()), zap.Error(err))
		}
	}

	return &User{
		ID:        u.ID,
		SessionID: sessionID,
		Email:     u.Email,
		FullName:  u.FullName,
		Role:      u.Role,
	}, nil
}

func (a *Authenticator) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

// RequireAuth rejects requests without a valid bearer token with 401 and
// stores the caller in the context otherwise.
func (a *Authenticator) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, err := a.Authenticate(r.Context(), BearerToken(r))
		if err != nil {
			httpx.WriteError(w, a.Log, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
	})
}

// RequireRole allows the request only when the caller has one of allowed.
// It must run after RequireAuth.
func RequireRole(allowed ...string) func(http.Handler) http.Handler {
	set := make(map[string]struct{}, len(allowed))
	for _, role := range allowed {
		set[strings.ToUpper(strings.TrimSpace(role))] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := CurrentUser(r)
			if !ok {
				httpx.WriteError(w, nil, apperr.Auth("Authentication required"))
				return
			}
			if _, has := set[u.Role]; !has {
				httpx.WriteError(w, nil, apperr.Forbidden("You do not have permission to perform this action"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(h) < 7 || !strings.EqualFold(h[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}
