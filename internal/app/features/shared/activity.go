package shared

import (
	"fmt"

	"github.com/dalemusser/liderplan/internal/app/planner"
	"github.com/dalemusser/liderplan/internal/app/system/apperr"
	"github.com/dalemusser/liderplan/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ActivityRequest is an activity as it appears in request bodies.
// ResponsibleUserIDs wins over Responsible when both are given.
type ActivityRequest struct {
	ID                   string   `json:"id"`
	PlanID               string   `json:"planId"`
	Description          string   `json:"description"`
	Responsible          string   `json:"responsible"`
	ResponsibleUserIDs   []string `json:"responsibleUserIds"`
	Area                 string   `json:"area"`
	StartDate            string   `json:"startDate"`
	EndDate              string   `json:"endDate"`
	Resources            string   `json:"resources"`
	Status               string   `json:"status"`
	Priority             string   `json:"priority"`
	CompletionPercentage int      `json:"completionPercentage"`
}

// ParseIDs converts hex ids, reporting the first bad one under field.
func ParseIDs(hex []string, field string) ([]primitive.ObjectID, error) {
	if hex == nil {
		return nil, nil
	}
	out := make([]primitive.ObjectID, 0, len(hex))
	for _, h := range hex {
		id, err := primitive.ObjectIDFromHex(h)
		if err != nil {
			return nil, apperr.ValidationFields("Invalid id", map[string]string{field: fmt.Sprintf("%q is not a valid id", h)})
		}
		out = append(out, id)
	}
	return out, nil
}

// Draft converts the request into a planner draft. field prefixes the
// names reported for bad ids.
func (a ActivityRequest) Draft(field string) (planner.ActivityDraft, error) {
	d := planner.ActivityDraft{
		Description:          a.Description,
		Responsible:          a.Responsible,
		Area:                 a.Area,
		StartDate:            a.StartDate,
		EndDate:              a.EndDate,
		Resources:            a.Resources,
		Status:               models.Status(a.Status),
		Priority:             models.Priority(a.Priority),
		CompletionPercentage: a.CompletionPercentage,
	}
	if a.ID != "" {
		id, err := primitive.ObjectIDFromHex(a.ID)
		if err != nil {
			return d, apperr.ValidationFields("Invalid id", map[string]string{field + "id": "is not a valid id"})
		}
		d.ID = &id
	}
	ids, err := ParseIDs(a.ResponsibleUserIDs, field+"responsibleUserIds")
	if err != nil {
		return d, err
	}
	d.ResponsibleUserIDs = ids
	return d, nil
}

// Drafts converts a list of requests. A nil list stays nil so callers can
// tell "absent" from "empty".
func Drafts(reqs []ActivityRequest) ([]planner.ActivityDraft, error) {
	if reqs == nil {
		return nil, nil
	}
	out := make([]planner.ActivityDraft, 0, len(reqs))
	for i, r := range reqs {
		d, err := r.Draft(fmt.Sprintf("activities[%d].", i))
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}
