// Package activities serves the activity endpoints: CRUD, status changes,
// comments and evidence.
package activities

import (
	"net/http"

	"github.com/dalemusser/liderplan/internal/app/features/shared"
	"github.com/dalemusser/liderplan/internal/app/planner"
	"github.com/dalemusser/liderplan/internal/app/system/apperr"
	"github.com/dalemusser/liderplan/internal/app/system/httpx"
	"github.com/dalemusser/liderplan/internal/app/system/timeouts"
	"github.com/dalemusser/liderplan/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type Handler struct {
	Planner *planner.Service
	Log     *zap.Logger
}

func NewHandler(svc *planner.Service, logger *zap.Logger) *Handler {
	return &Handler{Planner: svc, Log: logger}
}

// patchRequest carries a partial update. Absent fields stay nil.
type patchRequest struct {
	Description          *string   `json:"description"`
	Responsible          *string   `json:"responsible"`
	ResponsibleUserIDs   *[]string `json:"responsibleUserIds"`
	Area                 *string   `json:"area"`
	StartDate            *string   `json:"startDate"`
	EndDate              *string   `json:"endDate"`
	Resources            *string   `json:"resources"`
	Status               *string   `json:"status"`
	Priority             *string   `json:"priority"`
	CompletionPercentage *int      `json:"completionPercentage"`
}

func (p patchRequest) patch() (planner.ActivityPatch, error) {
	out := planner.ActivityPatch{
		Description:          p.Description,
		Responsible:          p.Responsible,
		Area:                 p.Area,
		StartDate:            p.StartDate,
		EndDate:              p.EndDate,
		Resources:            p.Resources,
		CompletionPercentage: p.CompletionPercentage,
	}
	if p.Status != nil {
		s := models.Status(*p.Status)
		out.Status = &s
	}
	if p.Priority != nil {
		pr := models.Priority(*p.Priority)
		out.Priority = &pr
	}
	if p.ResponsibleUserIDs != nil {
		ids, err := shared.ParseIDs(*p.ResponsibleUserIDs, "responsibleUserIds")
		if err != nil {
			return out, err
		}
		if ids == nil {
			ids = []primitive.ObjectID{}
		}
		out.ResponsibleUserIDs = &ids
	}
	return out, nil
}

type statusRequest struct {
	Status               string `json:"status"`
	CompletionPercentage *int   `json:"completionPercentage"`
}

type commentRequest struct {
	Text   string `json:"text"`
	Author string `json:"author"`
}

type evidenceRequest struct {
	FileName string `json:"fileName"`
	URL      string `json:"url"`
}

type activityResponse struct {
	Message  string               `json:"message"`
	Activity planner.ActivityView `json:"activity"`
}

// request bundles what every activity handler needs from r.
func (h *Handler) request(w http.ResponseWriter, r *http.Request, withID bool) (planner.Caller, primitive.ObjectID, bool) {
	caller, err := shared.Caller(r)
	if err != nil {
		httpx.WriteError(w, h.Log, err)
		return caller, primitive.NilObjectID, false
	}
	if !withID {
		return caller, primitive.NilObjectID, true
	}
	id, err := httpx.PathID(r, "id", "Activity")
	if err != nil {
		httpx.WriteError(w, h.Log, err)
		return caller, id, false
	}
	return caller, id, true
}

// Create handles POST /activities. The body names the plan with planId.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	caller, _, ok := h.request(w, r, false)
	if !ok {
		return
	}
	var req shared.ActivityRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, h.Log, err)
		return
	}
	planID, err := primitive.ObjectIDFromHex(req.PlanID)
	if err != nil {
		httpx.WriteError(w, h.Log, apperr.ValidationFields("planId is required", map[string]string{"planId": "must be a valid id"}))
		return
	}
	req.ID = ""
	d, err := req.Draft("")
	if err != nil {
		httpx.WriteError(w, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "activities.create")
	defer cancel()

	av, err := h.Planner.CreateActivity(ctx, caller, planID, d)
	if err != nil {
		httpx.WriteError(w, h.Log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, activityResponse{Message: "Activity created successfully", Activity: av})
}

// Get handles GET /activities/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	caller, id, ok := h.request(w, r, true)
	if !ok {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "activities.get")
	defer cancel()

	av, err := h.Planner.GetActivity(ctx, caller, id)
	if err != nil {
		httpx.WriteError(w, h.Log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, av)
}

// Assigned handles GET /activities/assigned: activities that list the
// caller as a responsible user.
func (h *Handler) Assigned(w http.ResponseWriter, r *http.Request) {
	caller, _, ok := h.request(w, r, false)
	if !ok {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "activities.assigned")
	defer cancel()

	list, err := h.Planner.ListAssigned(ctx, caller)
	if err != nil {
		httpx.WriteError(w, h.Log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, list)
}

// Update handles PUT /activities/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	caller, id, ok := h.request(w, r, true)
	if !ok {
		return
	}
	var req patchRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, h.Log, err)
		return
	}
	patch, err := req.patch()
	if err != nil {
		httpx.WriteError(w, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "activities.update")
	defer cancel()

	av, err := h.Planner.UpdateActivity(ctx, caller, id, patch)
	if err != nil {
		httpx.WriteError(w, h.Log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, activityResponse{Message: "Activity updated successfully", Activity: av})
}

// UpdateStatus handles PATCH /activities/{id}/status. When completionPercentage
// is present it decides the stored status, so 100 closes the activity. A
// status sent without it must agree with the stored completion or the
// request fails with 400.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	caller, id, ok := h.request(w, r, true)
	if !ok {
		return
	}
	var req statusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "activities.status")
	defer cancel()

	av, err := h.Planner.UpdateActivityStatus(ctx, caller, id, models.Status(req.Status), req.CompletionPercentage)
	if err != nil {
		httpx.WriteError(w, h.Log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, activityResponse{Message: "Activity status updated successfully", Activity: av})
}

// AddComment handles POST /activities/{id}/comments.
func (h *Handler) AddComment(w http.ResponseWriter, r *http.Request) {
	caller, id, ok := h.request(w, r, true)
	if !ok {
		return
	}
	var req commentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "activities.comment")
	defer cancel()

	av, err := h.Planner.AddComment(ctx, caller, id, req.Text, req.Author)
	if err != nil {
		httpx.WriteError(w, h.Log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, activityResponse{Message: "Comment added successfully", Activity: av})
}

// AddEvidence handles POST /activities/{id}/evidence.
func (h *Handler) AddEvidence(w http.ResponseWriter, r *http.Request) {
	caller, id, ok := h.request(w, r, true)
	if !ok {
		return
	}
	var req evidenceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "activities.evidence")
	defer cancel()

	av, err := h.Planner.AddEvidence(ctx, caller, id, req.FileName, req.URL)
	if err != nil {
		httpx.WriteError(w, h.Log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, activityResponse{Message: "Evidence added successfully", Activity: av})
}

// Delete handles DELETE /activities/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, id, ok := h.request(w, r, true)
	if !ok {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "activities.delete")
	defer cancel()

	if err := h.Planner.DeleteActivity(ctx, caller, id); err != nil {
		httpx.WriteError(w, h.Log, err)
		return
	}
	httpx.WriteMessage(w, http.StatusOK, "Activity deleted successfully")
}
