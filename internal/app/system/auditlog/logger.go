// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"

	"github.com/dalemusser/liderplan/internal/app/store/audit"
	"github.com/dalemusser/liderplan/internal/app/system/ratelimit"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Destinations for a category of events.
const (
	ModeAll = "all" // MongoDB and zap
	ModeDB  = "db"  // MongoDB only
	ModeLog = "log" // zap only
	ModeOff = "off"
)

// Config selects where each category of events goes.
type Config struct {
	Auth  string
	Admin string
}

// Sink persists audit events. *audit.Store satisfies it.
type Sink interface {
	Log(ctx context.Context, event audit.Event) error
}

// Logger records audit events to a Sink and to zap according to Config.
// A nil *Logger is a no-op.
type Logger struct {
	sink   Sink
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(sink Sink, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{sink: sink, zapLog: zapLog, config: config}
}

func (l *Logger) mode(category string) string {
	switch category {
	case audit.CategoryAuth:
		return l.config.Auth
	case audit.CategoryAdmin:
		return l.config.Admin
	}
	return ModeAll
}

// Log records event according to the category's mode.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}
	mode := l.mode(event.Category)
	if mode == ModeOff {
		return
	}
	if mode == ModeAll || mode == ModeLog {
		l.logToZap(event)
	}
	if (mode == ModeAll || mode == ModeDB) && l.sink != nil {
		if err := l.sink.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType))
		}
	}
}

func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}
	if event.UserID != nil {
		fields = append(fields, zap.String("user_id", event.UserID.Hex()))
	}
	if event.ActorID != nil {
		fields = append(fields, zap.String("actor_id", event.ActorID.Hex()))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}
	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

func base(r *http.Request, category, eventType string, success bool) audit.Event {
	e := audit.Event{Category: category, EventType: eventType, Success: success}
	if r != nil {
		e.IP = ratelimit.ClientIP(r)
		e.UserAgent = r.UserAgent()
	}
	return e
}

// --- Authentication Events ---

// Registered logs a self-registration.
func (l *Logger) Registered(ctx context.Context, r *http.Request, userID primitive.ObjectID, role string) {
	e := base(r, audit.CategoryAuth, audit.EventUserRegistered, true)
	e.UserID = &userID
	e.Details = map[string]string{"role": role}
	l.Log(ctx, e)
}

// LoginSuccess logs a successful login.
func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, userID primitive.ObjectID) {
	e := base(r, audit.CategoryAuth, audit.EventLoginSuccess, true)
	e.UserID = &userID
	l.Log(ctx, e)
}

// LoginFailedUserNotFound logs a login for an unknown email.
func (l *Logger) LoginFailedUserNotFound(ctx context.Context, r *http.Request, email string) {
	e := base(r, audit.CategoryAuth, audit.EventLoginFailedUserNotFound, false)
	e.FailureReason = "user not found"
	e.Details = map[string]string{"attempted_email": email}
	l.Log(ctx, e)
}

// LoginFailedWrongPassword logs a login with a bad password.
func (l *Logger) LoginFailedWrongPassword(ctx context.Context, r *http.Request, userID primitive.ObjectID) {
	e := base(r, audit.CategoryAuth, audit.EventLoginFailedWrongPassword, false)
	e.UserID = &userID
	e.FailureReason = "wrong password"
	l.Log(ctx, e)
}

// LoginFailedRateLimit logs a throttled login attempt.
func (l *Logger) LoginFailedRateLimit(ctx context.Context, r *http.Request, email string) {
	e := base(r, audit.CategoryAuth, audit.EventLoginFailedRateLimit, false)
	e.FailureReason = "rate limited"
	e.Details = map[string]string{"attempted_email": email}
	l.Log(ctx, e)
}

// Logout logs the end of a session.
func (l *Logger) Logout(ctx context.Context, r *http.Request, userID, sessionID primitive.ObjectID) {
	e := base(r, audit.CategoryAuth, audit.EventLogout, true)
	e.UserID = &userID
	e.Details = map[string]string{"session_id": sessionID.Hex()}
	l.Log(ctx, e)
}

// PasswordChanged logs a password change by the user.
func (l *Logger) PasswordChanged(ctx context.Context, r *http.Request, userID primitive.ObjectID) {
	e := base(r, audit.CategoryAuth, audit.EventPasswordChanged, true)
	e.UserID = &userID
	l.Log(ctx, e)
}

// --- Admin Events ---

// UserCreated logs an admin creating a user.
func (l *Logger) UserCreated(ctx context.Context, r *http.Request, actorID, targetID primitive.ObjectID, role string) {
	e := base(r, audit.CategoryAdmin, audit.EventUserCreated, true)
	e.ActorID, e.UserID = &actorID, &targetID
	e.Details = map[string]string{"role": role}
	l.Log(ctx, e)
}

// UserUpdated logs a profile change made by the user or an admin.
func (l *Logger) UserUpdated(ctx context.Context, r *http.Request, actorID, targetID primitive.ObjectID, fieldsChanged string) {
	e := base(r, audit.CategoryAdmin, audit.EventUserUpdated, true)
	e.ActorID, e.UserID = &actorID, &targetID
	e.Details = map[string]string{"fields_changed": fieldsChanged}
	l.Log(ctx, e)
}

// UserRoleChanged logs a role change.
func (l *Logger) UserRoleChanged(ctx context.Context, r *http.Request, actorID, targetID primitive.ObjectID, previousRole, newRole string) {
	e := base(r, audit.CategoryAdmin, audit.EventUserRoleChanged, true)
	e.ActorID, e.UserID = &actorID, &targetID
	e.Details = map[string]string{"previous_role": previousRole, "new_role": newRole}
	l.Log(ctx, e)
}

// UserDeleted logs an admin deleting a user.
func (l *Logger) UserDeleted(ctx context.Context, r *http.Request, actorID, targetID primitive.ObjectID) {
	e := base(r, audit.CategoryAdmin, audit.EventUserDeleted, true)
	e.ActorID, e.UserID = &actorID, &targetID
	l.Log(ctx, e)
}

// AdminPromoted logs the startup promotion of the configured admin email.
func (l *Logger) AdminPromoted(ctx context.Context, email string) {
	e := base(nil, audit.CategoryAdmin, audit.EventAdminPromoted, true)
	e.Details = map[string]string{"email": email}
	l.Log(ctx, e)
}
