package planner

import (
	"context"

	"github.com/dalemusser/liderplan/internal/app/system/apperr"
	"github.com/dalemusser/liderplan/internal/domain/models"
	"github.com/dalemusser/liderplan/internal/domain/progress"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// names resolves the user references of acts in one query.
func (s *Service) names(ctx context.Context, acts []models.Activity) (map[primitive.ObjectID]string, error) {
	var ids []primitive.ObjectID
	for _, a := range acts {
		if a.Responsible.Kind == models.ResponsibleUsers {
			ids = append(ids, a.Responsible.UserIDs...)
		}
	}
	ids = uniqueIDs(ids)
	if len(ids) == 0 || s.Users == nil {
		return nil, nil
	}
	m, err := s.Users.NamesByID(ctx, ids)
	if err != nil {
		return nil, apperr.Storage("Failed to load responsible users", err)
	}
	return m, nil
}

func view(a models.Activity, names map[primitive.ObjectID]string, today string) ActivityView {
	if a.Comments == nil {
		a.Comments = []models.Comment{}
	}
	if a.Evidence == nil {
		a.Evidence = []models.Evidence{}
	}
	rn := a.Responsible.DisplayNames(names)
	if rn == nil {
		rn = []string{}
	}
	return ActivityView{
		Activity:         a,
		DisplayStatus:    progress.DeriveDisplayStatus(a.Status, a.StartDate, today),
		ResponsibleNames: rn,
		Overdue:          progress.IsOverdue(a, today),
	}
}

// viewActivities decorates acts for output, keeping their order.
func (s *Service) viewActivities(ctx context.Context, acts []models.Activity) ([]ActivityView, error) {
	names, err := s.names(ctx, acts)
	if err != nil {
		return nil, err
	}
	today := s.Today()
	out := make([]ActivityView, len(acts))
	for i, a := range acts {
		out[i] = view(a, names, today)
	}
	return out, nil
}

func (s *Service) viewActivity(ctx context.Context, a models.Activity) (ActivityView, error) {
	views, err := s.viewActivities(ctx, []models.Activity{a})
	if err != nil {
		return ActivityView{}, err
	}
	return views[0], nil
}

// viewPlans expands the activities of plans, ordered by each plan's list.
// IDs whose activity no longer exists are skipped.
func (s *Service) viewPlans(ctx context.Context, plans []models.Plan) ([]PlanView, error) {
	var ids []primitive.ObjectID
	for _, p := range plans {
		ids = append(ids, p.ActivityIDs...)
	}
	acts, err := s.Activities.ListByIDs(ctx, ids)
	if err != nil {
		return nil, apperr.Storage("Failed to load activities", err)
	}
	views, err := s.viewActivities(ctx, acts)
	if err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]ActivityView, len(views))
	for _, v := range views {
		byID[v.ID] = v
	}

	out := make([]PlanView, 0, len(plans))
	for _, p := range plans {
		if p.ActivityIDs == nil {
			p.ActivityIDs = []primitive.ObjectID{}
		}
		pv := PlanView{Plan: p, Activities: make([]ActivityView, 0, len(p.ActivityIDs))}
		for _, id := range p.ActivityIDs {
			if v, ok := byID[id]; ok && v.PlanID == p.ID {
				pv.Activities = append(pv.Activities, v)
			}
		}
		out = append(out, pv)
	}
	return out, nil
}

func (s *Service) viewPlan(ctx context.Context, p models.Plan) (PlanView, error) {
	views, err := s.viewPlans(ctx, []models.Plan{p})
	if err != nil {
		return PlanView{}, err
	}
	return views[0], nil
}
