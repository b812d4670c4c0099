// Package authapi serves registration, login and logout.
package authapi

import (
	"context"
	"errors"
	"net/http"

	sessionstore "github.com/dalemusser/liderplan/internal/app/store/sessions"
	userstore "github.com/dalemusser/liderplan/internal/app/store/users"
	"github.com/dalemusser/liderplan/internal/app/system/apperr"
	"github.com/dalemusser/liderplan/internal/app/system/auditlog"
	"github.com/dalemusser/liderplan/internal/app/system/auth"
	"github.com/dalemusser/liderplan/internal/app/system/authutil"
	"github.com/dalemusser/liderplan/internal/app/system/httpx"
	"github.com/dalemusser/liderplan/internal/app/system/inputval"
	"github.com/dalemusser/liderplan/internal/app/system/metrics"
	"github.com/dalemusser/liderplan/internal/app/system/normalize"
	"github.com/dalemusser/liderplan/internal/app/system/ratelimit"
	"github.com/dalemusser/liderplan/internal/app/system/timeouts"
	"github.com/dalemusser/liderplan/internal/domain/models"
	"go.uber.org/zap"
)

const msgInvalidCredentials = "Invalid credentials"

type Handler struct {
	Users    *userstore.Store
	Sessions *sessionstore.Store
	Tokens   *auth.TokenManager
	Limiter  *ratelimit.LoginLimiter
	AuditLog *auditlog.Logger
	Log      *zap.Logger
}

func NewHandler(users *userstore.Store, sessions *sessionstore.Store, tokens *auth.TokenManager, limiter *ratelimit.LoginLimiter, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Users:    users,
		Sessions: sessions,
		Tokens:   tokens,
		Limiter:  limiter,
		AuditLog: audit,
		Log:      logger,
	}
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,appemail"`
	Password string `json:"password" validate:"required,password"`
	FullName string `json:"fullName" validate:"required"`
	Role     string `json:"role" validate:"omitempty,role"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// userJSON is the public part of a user returned with a token.
type userJSON struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Role     string `json:"role"`
}

type tokenResponse struct {
	Message string   `json:"message"`
	Token   string   `json:"token"`
	User    userJSON `json:"user"`
}

func publicUser(u models.User) userJSON {
	return userJSON{ID: u.ID.Hex(), Email: u.Email, FullName: u.FullName, Role: u.Role}
}

// Register handles POST /auth/register. New accounts default to LEADER.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, h.Log, err)
		return
	}
	req.Email = normalize.Email(req.Email)
	req.FullName = normalize.Name(req.FullName)
	if err := inputval.Validate(req); err != nil {
		httpx.WriteError(w, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "auth.register")
	defer cancel()

	hash, err := authutil.HashPassword(req.Password)
	if err != nil {
		httpx.WriteError(w, h.Log, apperr.Storage("Registration failed", err))
		return
	}
	u, err := h.Users.Create(ctx, models.User{
		Email:        req.Email,
		PasswordHash: hash,
		FullName:     req.FullName,
		Role:         req.Role,
	})
	if err != nil {
		switch {
		case errors.Is(err, userstore.ErrDuplicateEmail):
			httpx.WriteError(w, h.Log, apperr.ValidationFields("User already exists", map[string]string{"email": "is already registered"}))
		case errors.Is(err, userstore.ErrBadRole):
			httpx.WriteError(w, h.Log, apperr.ValidationFields("Invalid role", map[string]string{"role": "role must be one of ADMIN, LEADER, TEAM"}))
		default:
			httpx.WriteError(w, h.Log, apperr.Storage("Registration failed", err))
		}
		return
	}

	token, err := h.openSession(ctx, r, u)
	if err != nil {
		httpx.WriteError(w, h.Log, err)
		return
	}
	h.AuditLog.Registered(ctx, r, u.ID, u.Role)
	h.Log.Info("user registered", zap.String("user_id", u.ID.Hex()), zap.String("role", u.Role))

	httpx.WriteJSON(w, http.StatusCreated, tokenResponse{
		Message: "User registered successfully",
		Token:   token,
		User:    publicUser(u),
	})
}

// Login handles POST /auth/login. Unknown emails and wrong passwords get
// the same answer.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, h.Log, err)
		return
	}
	req.Email = normalize.Email(req.Email)
	if err := inputval.Validate(req); err != nil {
		httpx.WriteError(w, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "auth.login")
	defer cancel()

	if h.Limiter != nil {
		if ok, msg := h.Limiter.Check(r, req.Email); !ok {
			metrics.Logins.WithLabelValues("rate_limited").Inc()
			h.AuditLog.LoginFailedRateLimit(ctx, r, req.Email)
			httpx.WriteError(w, h.Log, apperr.RateLimited(msg))
			return
		}
	}

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			authutil.CheckNoUser(req.Password)
			metrics.Logins.WithLabelValues("failure").Inc()
			h.AuditLog.LoginFailedUserNotFound(ctx, r, req.Email)
			httpx.WriteError(w, h.Log, apperr.Auth(msgInvalidCredentials))
			return
		}
		httpx.WriteError(w, h.Log, apperr.Storage("Login failed", err))
		return
	}
	if !authutil.CheckPassword(req.Password, u.PasswordHash) {
		metrics.Logins.WithLabelValues("failure").Inc()
		h.AuditLog.LoginFailedWrongPassword(ctx, r, u.ID)
		httpx.WriteError(w, h.Log, apperr.Auth(msgInvalidCredentials))
		return
	}

	token, err := h.openSession(ctx, r, *u)
	if err != nil {
		httpx.WriteError(w, h.Log, err)
		return
	}
	if h.Limiter != nil {
		h.Limiter.ResetEmail(req.Email)
	}
	metrics.Logins.WithLabelValues("success").Inc()
	h.AuditLog.LoginSuccess(ctx, r, u.ID)

	httpx.WriteJSON(w, http.StatusOK, tokenResponse{
		Message: "Login successful",
		Token:   token,
		User:    publicUser(*u),
	})
}

// Logout handles POST /auth/logout. The caller's token stops working at
// once.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		httpx.WriteError(w, h.Log, apperr.Auth("Authentication required"))
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "auth.logout")
	defer cancel()

	if err := h.Sessions.Close(ctx, u.SessionID, "logout"); err != nil && !errors.Is(err, sessionstore.ErrNotFound) {
		httpx.WriteError(w, h.Log, apperr.Storage("Logout failed", err))
		return
	}
	h.AuditLog.Logout(ctx, r, u.ID, u.SessionID)
	httpx.WriteMessage(w, http.StatusOK, "Logged out")
}

func (h *Handler) openSession(ctx context.Context, r *http.Request, u models.User) (string, error) {
	sess, err := h.Sessions.Create(ctx, u.ID, ratelimit.ClientIP(r), r.UserAgent())
	if err != nil {
		return "", apperr.Storage("Failed to open session", err)
	}
	token, err := h.Tokens.Issue(u.ID, sess.ID)
	if err != nil {
		return "", apperr.Storage("Failed to issue token", err)
	}
	return token, nil
}
