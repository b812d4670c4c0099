// Package catalog serves the fixed lists plan forms are built from.
package catalog

import (
	"net/http"

	"github.com/dalemusser/liderplan/internal/app/system/httpx"
	domcat "github.com/dalemusser/liderplan/internal/domain/catalog"
	"github.com/dalemusser/liderplan/internal/domain/models"
)

// Option is a selectable value with its display label.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type catalogResponse struct {
	Origins    []domcat.Origin `json:"origins"`
	Areas      []string        `json:"areas"`
	Statuses   []Option        `json:"statuses"`
	Priorities []Option        `json:"priorities"`
	Roles      []string        `json:"roles"`
}

type Handler struct {
	body catalogResponse
}

// NewHandler prepares the response once; the catalog never changes while
// the process runs.
func NewHandler(c *domcat.Catalog) *Handler {
	body := catalogResponse{
		Origins: c.Origins,
		Areas:   c.Areas,
		Roles:   models.Roles,
	}
	for _, s := range []models.Status{models.StatusNotStarted, models.StatusInProgress, models.StatusClosed} {
		body.Statuses = append(body.Statuses, Option{Value: string(s), Label: s.Label()})
	}
	for _, p := range []models.Priority{models.PriorityLow, models.PriorityMedium, models.PriorityHigh} {
		body.Priorities = append(body.Priorities, Option{Value: string(p), Label: p.Label()})
	}
	return &Handler{body: body}
}

// Serve handles GET /catalog.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "public, max-age=3600")
	httpx.WriteJSON(w, http.StatusOK, h.body)
}
