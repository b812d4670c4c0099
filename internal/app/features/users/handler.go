// Package users serves profile and account administration endpoints.
package users

import (
	"errors"
	"net/http"
	"strings"

	sessionstore "github.com/dalemusser/liderplan/internal/app/store/sessions"
	userstore "github.com/dalemusser/liderplan/internal/app/store/users"
	"github.com/dalemusser/liderplan/internal/app/system/apperr"
	"github.com/dalemusser/liderplan/internal/app/system/auditlog"
	"github.com/dalemusser/liderplan/internal/app/system/auth"
	"github.com/dalemusser/liderplan/internal/app/system/authutil"
	"github.com/dalemusser/liderplan/internal/app/system/authz"
	"github.com/dalemusser/liderplan/internal/app/system/httpx"
	"github.com/dalemusser/liderplan/internal/app/system/inputval"
	"github.com/dalemusser/liderplan/internal/app/system/normalize"
	"github.com/dalemusser/liderplan/internal/app/system/timeouts"
	"github.com/dalemusser/liderplan/internal/domain/models"
	"go.uber.org/zap"
)

type Handler struct {
	Users    *userstore.Store
	Sessions *sessionstore.Store
	AuditLog *auditlog.Logger
	Log      *zap.Logger
}

func NewHandler(users *userstore.Store, sessions *sessionstore.Store, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{Users: users, Sessions: sessions, AuditLog: audit, Log: logger}
}

type updateRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email" validate:"omitempty,appemail"`
	Password string `json:"password" validate:"omitempty,password"`
	Role     string `json:"role" validate:"omitempty,role"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,password"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
}

// Me handles GET /users/me.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.CurrentUser(r)
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "users.me")
	defer cancel()

	u, err := h.Users.GetByID(ctx, caller.ID)
	if err != nil {
		httpx.WriteError(w, h.Log, storeErr("Failed to load user", err))
		return
	}
	httpx.WriteJSON(w, http.StatusOK, u)
}

// Update handles PUT /users/{id}. Users edit their own profile; an ADMIN
// edits anyone and is the only one whose role changes are applied.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.CurrentUser(r)
	id, err := httpx.PathID(r, "id", "User")
	if err != nil {
		httpx.WriteError(w, h.Log, err)
		return
	}
	if !authz.CanEditUser(caller.ID, caller.Role, id) {
		httpx.WriteError(w, h.Log, apperr.Forbidden("You do not have permission to update this user"))
		return
	}

	var req updateRequest
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

	var (
		upd     userstore.Update
		changed []string
	)
	if req.FullName != "" {
		upd.FullName = &req.FullName
		changed = append(changed, "fullName")
	}
	if req.Email != "" {
		upd.Email = &req.Email
		changed = append(changed, "email")
	}
	if req.Password != "" {
		hash, err := authutil.HashPassword(req.Password)
		if err != nil {
			httpx.WriteError(w, h.Log, apperr.Storage("Failed to update user", err))
			return
		}
		upd.PasswordHash = &hash
		changed = append(changed, "password")
	}
	if req.Role != "" && caller.IsAdmin() {
		role := normalize.Role(req.Role)
		upd.Role = &role
		changed = append(changed, "role")
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "users.update")
	defer cancel()

	u, err := h.Users.Update(ctx, id, upd)
	if err != nil {
		httpx.WriteError(w, h.Log, storeErr("Failed to update user", err))
		return
	}
	h.AuditLog.UserUpdated(ctx, r, caller.ID, id, strings.Join(changed, ","))
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"message": "User updated successfully",
		"user":    u,
	})
}

// ChangePassword handles PUT /users/change-password.
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.CurrentUser(r)
	var req changePasswordRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, h.Log, err)
		return
	}
	if err := inputval.Validate(req); err != nil {
		httpx.WriteError(w, h.Log, err)
		return
	}
	if req.NewPassword != req.ConfirmPassword {
		httpx.WriteError(w, h.Log, apperr.ValidationFields("Passwords do not match", map[string]string{
			"confirmPassword": "must match newPassword",
		}))
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "users.change_password")
	defer cancel()

	u, err := h.Users.GetByID(ctx, caller.ID)
	if err != nil {
		httpx.WriteError(w, h.Log, storeErr("Failed to load user", err))
		return
	}
	if !authutil.CheckPassword(req.CurrentPassword, u.PasswordHash) {
		httpx.WriteError(w, h.Log, apperr.Auth("Current password is incorrect"))
		return
	}
	hash, err := authutil.HashPassword(req.NewPassword)
	if err != nil {
		httpx.WriteError(w, h.Log, apperr.Storage("Failed to change password", err))
		return
	}
	if _, err := h.Users.Update(ctx, caller.ID, userstore.Update{PasswordHash: &hash}); err != nil {
		httpx.WriteError(w, h.Log, storeErr("Failed to change password", err))
		return
	}
	h.AuditLog.PasswordChanged(ctx, r, caller.ID)
	httpx.WriteMessage(w, http.StatusOK, "Password changed successfully")
}

// directoryEntry is what any signed-in user may see about another user.
type directoryEntry struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
	Role     string `json:"role"`
}

// Directory handles GET /users/directory, used to pick responsible users.
func (h *Handler) Directory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "users.directory")
	defer cancel()

	list, err := h.Users.List(ctx)
	if err != nil {
		httpx.WriteError(w, h.Log, apperr.Storage("Failed to load users", err))
		return
	}
	out := make([]directoryEntry, 0, len(list))
	for _, u := range list {
		out = append(out, directoryEntry{ID: u.ID.Hex(), FullName: u.FullName, Role: u.Role})
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// storeErr maps user store sentinels to apperr kinds.
func storeErr(msg string, err error) error {
	switch {
	case errors.Is(err, userstore.ErrNotFound):
		return apperr.NotFound("User not found")
	case errors.Is(err, userstore.ErrDuplicateEmail):
		return apperr.ValidationFields("Email is already in use", map[string]string{"email": "is already in use"})
	case errors.Is(err, userstore.ErrBadRole):
		return apperr.ValidationFields("Invalid role", map[string]string{"role": "role must be one of ADMIN, LEADER, TEAM"})
	}
	return apperr.Storage(msg, err)
}

func listBody(users []models.User) map[string]any {
	if users == nil {
		users = []models.User{}
	}
	return map[string]any{"total": len(users), "users": users}
}
