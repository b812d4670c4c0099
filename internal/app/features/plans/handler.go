// Package plans serves the plan endpoints on top of the planner service.
package plans

import (
	"net/http"

	"github.com/dalemusser/liderplan/internal/app/features/shared"
	"github.com/dalemusser/liderplan/internal/app/planner"
	"github.com/dalemusser/liderplan/internal/app/system/httpx"
	"github.com/dalemusser/liderplan/internal/app/system/timeouts"
	"go.uber.org/zap"
)

type Handler struct {
	Planner *planner.Service
	Log     *zap.Logger
}

func NewHandler(svc *planner.Service, logger *zap.Logger) *Handler {
	return &Handler{Planner: svc, Log: logger}
}

type planRequest struct {
	Name       string                   `json:"name"`
	Project    string                   `json:"project"`
	Goal       string                   `json:"goal"`
	Origin     string                   `json:"origin"`
	SubOrigin  string                   `json:"subOrigin"`
	Activities []shared.ActivityRequest `json:"activities"`
}

func (p planRequest) header() planner.PlanHeader {
	return planner.PlanHeader{
		Name:      p.Name,
		Project:   p.Project,
		Goal:      p.Goal,
		Origin:    p.Origin,
		SubOrigin: p.SubOrigin,
	}
}

type planResponse struct {
	Message string           `json:"message"`
	Plan    planner.PlanView `json:"plan"`
}

// Create handles POST /plans.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	caller, err := shared.Caller(r)
	if err != nil {
		httpx.WriteError(w, h.Log, err)
		return
	}
	var req planRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, h.Log, err)
		return
	}
	drafts, err := shared.Drafts(req.Activities)
	if err != nil {
		httpx.WriteError(w, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "plans.create")
	defer cancel()

	pv, err := h.Planner.CreatePlan(ctx, caller, req.header(), drafts)
	if err != nil {
		httpx.WriteError(w, h.Log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, planResponse{Message: "Plan and activities created successfully", Plan: pv})
}

// List handles GET /plans. Every caller, ADMIN included, sees only their
// own plans.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	caller, err := shared.Caller(r)
	if err != nil {
		httpx.WriteError(w, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "plans.list")
	defer cancel()

	list, err := h.Planner.ListPlans(ctx, caller)
	if err != nil {
		httpx.WriteError(w, h.Log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, list)
}

// Get handles GET /plans/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	caller, err := shared.Caller(r)
	if err != nil {
		httpx.WriteError(w, h.Log, err)
		return
	}
	id, err := httpx.PathID(r, "id", "Plan")
	if err != nil {
		httpx.WriteError(w, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "plans.get")
	defer cancel()

	pv, err := h.Planner.GetPlan(ctx, caller, id)
	if err != nil {
		httpx.WriteError(w, h.Log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, pv)
}

// Update handles PUT /plans/{id}. Without an activities list only the
// header changes.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	caller, err := shared.Caller(r)
	if err != nil {
		httpx.WriteError(w, h.Log, err)
		return
	}
	id, err := httpx.PathID(r, "id", "Plan")
	if err != nil {
		httpx.WriteError(w, h.Log, err)
		return
	}
	var req planRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, h.Log, err)
		return
	}
	drafts, err := shared.Drafts(req.Activities)
	if err != nil {
		httpx.WriteError(w, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "plans.update")
	defer cancel()

	pv, err := h.Planner.UpdatePlan(ctx, caller, id, req.header(), drafts)
	if err != nil {
		httpx.WriteError(w, h.Log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, planResponse{Message: "Plan updated successfully", Plan: pv})
}

// Delete handles DELETE /plans/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, err := shared.Caller(r)
	if err != nil {
		httpx.WriteError(w, h.Log, err)
		return
	}
	id, err := httpx.PathID(r, "id", "Plan")
	if err != nil {
		httpx.WriteError(w, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "plans.delete")
	defer cancel()

	if err := h.Planner.DeletePlan(ctx, caller, id); err != nil {
		httpx.WriteError(w, h.Log, err)
		return
	}
	httpx.WriteMessage(w, http.StatusOK, "Plan deleted successfully")
}
