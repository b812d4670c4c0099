// Package dashboard serves the summary figures for the caller's plans.
package dashboard

import (
	"net/http"
	"time"

	"github.com/dalemusser/liderplan/internal/app/features/shared"
	metricsstore "github.com/dalemusser/liderplan/internal/app/store/metrics"
	"github.com/dalemusser/liderplan/internal/app/system/apperr"
	"github.com/dalemusser/liderplan/internal/app/system/httpx"
	"github.com/dalemusser/liderplan/internal/app/system/timeouts"
	"github.com/dalemusser/liderplan/internal/domain/progress"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	DB       *mongo.Database
	Log      *zap.Logger
	Location *time.Location
	Now      func() time.Time
}

func NewHandler(db *mongo.Database, loc *time.Location, logger *zap.Logger) *Handler {
	if loc == nil {
		loc = time.UTC
	}
	return &Handler{DB: db, Log: logger, Location: loc, Now: time.Now}
}

// Summary handles GET /dashboard/summary. Everyone sees their own plans;
// an ADMIN may pass ?scope=all for every plan.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	caller, err := shared.Caller(r)
	if err != nil {
		httpx.WriteError(w, h.Log, err)
		return
	}

	var owner *primitive.ObjectID
	if r.URL.Query().Get("scope") != "all" || !caller.IsAdmin() {
		id := caller.ID
		owner = &id
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "dashboard.summary")
	defer cancel()

	today := progress.Today(h.Now(), h.Location)
	s, err := metricsstore.FetchSummary(ctx, h.DB, owner, today)
	if err != nil {
		httpx.WriteError(w, h.Log, apperr.Storage("Failed to load dashboard", err))
		return
	}
	h.Log.Debug("dashboard served",
		zap.String("user_id", caller.ID.Hex()),
		zap.String("scope", s.Scope))
	httpx.WriteJSON(w, http.StatusOK, s)
}
