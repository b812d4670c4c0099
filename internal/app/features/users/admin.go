package users

import (
	"net/http"

	"github.com/dalemusser/liderplan/internal/app/system/apperr"
	"github.com/dalemusser/liderplan/internal/app/system/auth"
	"github.com/dalemusser/liderplan/internal/app/system/authutil"
	"github.com/dalemusser/liderplan/internal/app/system/httpx"
	"github.com/dalemusser/liderplan/internal/app/system/inputval"
	"github.com/dalemusser/liderplan/internal/app/system/normalize"
	"github.com/dalemusser/liderplan/internal/app/system/timeouts"
	"github.com/dalemusser/liderplan/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type createRequest struct {
	Email    string `json:"email" validate:"required,appemail"`
	Password string `json:"password" validate:"required,password"`
	FullName string `json:"fullName" validate:"required"`
	Role     string `json:"role" validate:"required,role"`
}

type roleRequest struct {
	NewRole string `json:"newRole" validate:"required,role"`
}

// Create handles POST /users/create (ADMIN).
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.CurrentUser(r)
	var req createRequest
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

	hash, err := authutil.HashPassword(req.Password)
	if err != nil {
		httpx.WriteError(w, h.Log, apperr.Storage("Failed to create user", err))
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "users.create")
	defer cancel()

	u, err := h.Users.Create(ctx, models.User{
		Email:        req.Email,
		PasswordHash: hash,
		FullName:     req.FullName,
		Role:         req.Role,
	})
	if err != nil {
		httpx.WriteError(w, h.Log, storeErr("Failed to create user", err))
		return
	}
	h.AuditLog.UserCreated(ctx, r, caller.ID, u.ID, u.Role)
	h.Log.Info("user created by admin",
		zap.String("user_id", u.ID.Hex()),
		zap.String("actor_id", caller.ID.Hex()),
		zap.String("role", u.Role))
	httpx.WriteJSON(w, http.StatusCreated, map[string]any{
		"message": "User created successfully",
		"user":    u,
	})
}

// All handles GET /users/all (ADMIN).
func (h *Handler) All(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "users.all")
	defer cancel()

	list, err := h.Users.List(ctx)
	if err != nil {
		httpx.WriteError(w, h.Log, apperr.Storage("Failed to load users", err))
		return
	}
	httpx.WriteJSON(w, http.StatusOK, listBody(list))
}

// ByRole handles GET /users/role/{role} (ADMIN).
func (h *Handler) ByRole(w http.ResponseWriter, r *http.Request) {
	role := normalize.Role(chi.URLParam(r, "role"))
	if !models.IsValidRole(role) {
		httpx.WriteError(w, h.Log, apperr.ValidationFields("Invalid role", map[string]string{
			"role": "role must be one of ADMIN, LEADER, TEAM",
		}))
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "users.by_role")
	defer cancel()

	list, err := h.Users.ListByRole(ctx, role)
	if err != nil {
		httpx.WriteError(w, h.Log, apperr.Storage("Failed to load users", err))
		return
	}
	body := listBody(list)
	body["role"] = role
	httpx.WriteJSON(w, http.StatusOK, body)
}

// Delete handles DELETE /users/{id} (ADMIN). The user's open sessions are
// closed so their tokens stop working.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.CurrentUser(r)
	id, err := httpx.PathID(r, "id", "User")
	if err != nil {
		httpx.WriteError(w, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "users.delete")
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		httpx.WriteError(w, h.Log, storeErr("Failed to load user", err))
		return
	}
	if err := h.Users.Delete(ctx, id); err != nil {
		httpx.WriteError(w, h.Log, storeErr("Failed to delete user", err))
		return
	}
	if _, err := h.Sessions.CloseAllForUser(ctx, id, "user_deleted"); err != nil {
		h.Log.Warn("failed to close sessions of deleted user", zap.String("user_id", id.Hex()), zap.Error(err))
	}
	h.AuditLog.UserDeleted(ctx, r, caller.ID, id)
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"message": "User deleted successfully",
		"user": map[string]string{
			"id":       u.ID.Hex(),
			"email":    u.Email,
			"fullName": u.FullName,
		},
	})
}

// ChangeRole handles PATCH /users/{id}/role (ADMIN).
func (h *Handler) ChangeRole(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.CurrentUser(r)
	id, err := httpx.PathID(r, "id", "User")
	if err != nil {
		httpx.WriteError(w, h.Log, err)
		return
	}
	var req roleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, h.Log, err)
		return
	}
	if err := inputval.Validate(req); err != nil {
		httpx.WriteError(w, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "users.change_role")
	defer cancel()

	newRole := normalize.Role(req.NewRole)
	prev, err := h.Users.SetRole(ctx, id, newRole)
	if err != nil {
		httpx.WriteError(w, h.Log, storeErr("Failed to change role", err))
		return
	}
	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		httpx.WriteError(w, h.Log, storeErr("Failed to load user", err))
		return
	}
	h.AuditLog.UserRoleChanged(ctx, r, caller.ID, id, prev, newRole)
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"message": "User role updated successfully",
		"user": map[string]any{
			"id":           u.ID.Hex(),
			"email":        u.Email,
			"fullName":     u.FullName,
			"previousRole": prev,
			"newRole":      u.Role,
			"updatedAt":    u.UpdatedAt,
		},
	})
}

