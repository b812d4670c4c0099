package planner

import (
	"context"

	planstore "github.com/dalemusser/liderplan/internal/app/store/plans"
	"github.com/dalemusser/liderplan/internal/app/system/apperr"
	"github.com/dalemusser/liderplan/internal/app/system/metrics"
	"github.com/dalemusser/liderplan/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// CreatePlan stores a plan with its activities in draft order. Drafts
// without a description or a responsible party are dropped; at least one
// must remain.
func (s *Service) CreatePlan(ctx context.Context, caller Caller, h PlanHeader, drafts []ActivityDraft) (PlanView, error) {
	h = cleanHeader(h)
	if err := s.checkHeader(h); err != nil {
		return PlanView{}, err
	}

	fields := map[string]string{}
	var acts []models.Activity
	for i, d := range drafts {
		if isBlankDraft(d) {
			continue
		}
		acts = append(acts, buildActivity(d, draftPrefix(i), fields))
	}
	if len(acts) == 0 {
		return PlanView{}, apperr.ValidationFields("At least one activity is required", map[string]string{
			"activities": "must include an activity with a description and a responsible",
		})
	}
	if len(fields) > 0 {
		return PlanView{}, apperr.ValidationFields("Invalid activities", fields)
	}
	if err := s.checkUsersExist(ctx, acts); err != nil {
		return PlanView{}, err
	}

	var plan models.Plan
	err := s.UoW.Do(ctx, func(ctx context.Context) error {
		p, err := s.Plans.Insert(ctx, models.Plan{
			Name:      h.Name,
			Project:   h.Project,
			Goal:      h.Goal,
			Origin:    h.Origin,
			SubOrigin: h.SubOrigin,
			OwnerID:   caller.ID,
		})
		if err != nil {
			return err
		}
		ids := make([]primitive.ObjectID, 0, len(acts))
		for i := range acts {
			acts[i].PlanID = p.ID
			saved, err := s.Activities.Insert(ctx, acts[i])
			if err != nil {
				return err
			}
			acts[i] = saved
			ids = append(ids, saved.ID)
		}
		if err := s.Plans.SetActivities(ctx, p.ID, ids); err != nil {
			return err
		}
		p.ActivityIDs = ids
		plan = p
		return nil
	})
	if err != nil {
		return PlanView{}, classify("Failed to create plan", err)
	}

	metrics.Plans.WithLabelValues("create").Inc()
	s.Log.Info("plan created",
		zap.String("plan_id", plan.ID.Hex()),
		zap.String("owner_id", caller.ID.Hex()),
		zap.Int("activities", len(acts)))

	views, err := s.viewActivities(ctx, acts)
	if err != nil {
		return PlanView{}, err
	}
	return PlanView{Plan: plan, Activities: views}, nil
}

// ListPlans returns the caller's own plans, newest first.
func (s *Service) ListPlans(ctx context.Context, caller Caller) ([]PlanView, error) {
	plans, err := s.Plans.ListByOwner(ctx, caller.ID)
	if err != nil {
		return nil, apperr.Storage("Failed to load plans", err)
	}
	return s.viewPlans(ctx, plans)
}

// GetPlan returns one of the caller's plans. A plan owned by someone else
// is reported as not found, whatever the caller's role.
func (s *Service) GetPlan(ctx context.Context, caller Caller, planID primitive.ObjectID) (PlanView, error) {
	p, err := s.loadOwned(ctx, caller, planID)
	if err != nil {
		return PlanView{}, err
	}
	return s.viewPlan(ctx, p)
}

func (s *Service) loadOwned(ctx context.Context, caller Caller, planID primitive.ObjectID) (models.Plan, error) {
	p, err := s.Plans.GetOwned(ctx, planID, caller.ID)
	if err != nil {
		return models.Plan{}, classify("Failed to load plan", err)
	}
	return p, nil
}

type reconcileStep struct {
	activity models.Activity
	isNew    bool
}

// UpdatePlan changes the non-empty header fields. When drafts is non-nil
// the plan's activities are reconciled with it: drafts carrying the ID of
// one of the plan's activities update it in place (comments and evidence
// are kept), drafts without an ID are created, and activities missing from
// drafts are deleted. The plan's order becomes the draft order.
func (s *Service) UpdatePlan(ctx context.Context, caller Caller, planID primitive.ObjectID, h PlanHeader, drafts []ActivityDraft) (PlanView, error) {
	p, err := s.loadOwned(ctx, caller, planID)
	if err != nil {
		return PlanView{}, err
	}

	h = cleanHeader(h)
	fields := map[string]string{}
	hdr := s.headerPatch(p, h, fields)

	var (
		steps   []reconcileStep
		removed []primitive.ObjectID
	)
	if drafts != nil {
		steps, removed, err = s.reconcile(ctx, p, drafts, fields)
		if err != nil {
			return PlanView{}, err
		}
	}
	if len(fields) > 0 {
		return PlanView{}, apperr.ValidationFields("Invalid plan update", fields)
	}
	acts := make([]models.Activity, len(steps))
	for i, st := range steps {
		acts[i] = st.activity
	}
	if err := s.checkUsersExist(ctx, acts); err != nil {
		return PlanView{}, err
	}

	err = s.UoW.Do(ctx, func(ctx context.Context) error {
		if err := s.Plans.UpdateHeader(ctx, p.ID, hdr); err != nil {
			return err
		}
		if drafts == nil {
			return nil
		}
		ids := make([]primitive.ObjectID, 0, len(steps))
		for i := range steps {
			var (
				saved models.Activity
				err   error
			)
			if steps[i].isNew {
				saved, err = s.Activities.Insert(ctx, steps[i].activity)
			} else {
				saved, err = s.Activities.Save(ctx, steps[i].activity)
			}
			if err != nil {
				return err
			}
			steps[i].activity = saved
			ids = append(ids, saved.ID)
		}
		if err := s.Plans.SetActivities(ctx, p.ID, ids); err != nil {
			return err
		}
		_, err := s.Activities.DeleteMany(ctx, removed)
		return err
	})
	if err != nil {
		return PlanView{}, classify("Failed to update plan", err)
	}

	metrics.Plans.WithLabelValues("update").Inc()
	s.Log.Info("plan updated",
		zap.String("plan_id", p.ID.Hex()),
		zap.String("user_id", caller.ID.Hex()),
		zap.Int("activities", len(steps)),
		zap.Int("removed", len(removed)))

	updated, err := s.Plans.GetByID(ctx, p.ID)
	if err != nil {
		return PlanView{}, classify("Failed to load plan", err)
	}
	return s.viewPlan(ctx, updated)
}

// headerPatch builds the store update for the non-empty fields of h.
func (s *Service) headerPatch(p models.Plan, h PlanHeader, fields map[string]string) planstore.Header {
	var hdr planstore.Header
	if h.Name != "" {
		hdr.Name = &h.Name
	}
	if h.Project != "" {
		hdr.Project = &h.Project
	}
	if h.Goal != "" {
		hdr.Goal = &h.Goal
	}

	origin := p.Origin
	if h.Origin != "" {
		if !s.validOrigin(h.Origin) {
			fields["origin"] = "must be one of development, improvement"
			return hdr
		}
		origin = h.Origin
		hdr.Origin = &h.Origin
	}

	switch {
	case h.SubOrigin != "":
		if !s.validSubOrigin(origin, h.SubOrigin) {
			fields["subOrigin"] = "is not listed for this origin"
			return hdr
		}
		hdr.SubOrigin = &h.SubOrigin
	case !s.validSubOrigin(origin, p.SubOrigin):
		// The origin changed and the stored sub-origin does not belong to it.
		empty := ""
		hdr.SubOrigin = &empty
	}
	return hdr
}

// reconcile matches drafts against the plan's current activities.
func (s *Service) reconcile(ctx context.Context, p models.Plan, drafts []ActivityDraft, fields map[string]string) ([]reconcileStep, []primitive.ObjectID, error) {
	if len(drafts) == 0 {
		fields["activities"] = "must include at least one activity"
		return nil, nil, nil
	}

	current, err := s.Activities.ListByIDs(ctx, p.ActivityIDs)
	if err != nil {
		return nil, nil, apperr.Storage("Failed to load activities", err)
	}
	existing := make(map[primitive.ObjectID]models.Activity, len(current))
	for _, a := range current {
		if a.PlanID == p.ID {
			existing[a.ID] = a
		}
	}

	kept := make(map[primitive.ObjectID]bool, len(drafts))
	steps := make([]reconcileStep, 0, len(drafts))
	for i, d := range drafts {
		prefix := draftPrefix(i)
		a := buildActivity(d, prefix, fields)
		a.PlanID = p.ID

		if d.ID == nil || d.ID.IsZero() {
			steps = append(steps, reconcileStep{activity: a, isNew: true})
			continue
		}
		cur, ok := existing[*d.ID]
		if !ok {
			fields[prefix+"id"] = "does not belong to this plan"
			continue
		}
		if kept[cur.ID] {
			fields[prefix+"id"] = "is listed more than once"
			continue
		}
		kept[cur.ID] = true
		a.ID = cur.ID
		a.Comments = cur.Comments
		a.Evidence = cur.Evidence
		a.CreatedAt = cur.CreatedAt
		steps = append(steps, reconcileStep{activity: a})
	}

	var removed []primitive.ObjectID
	for _, id := range p.ActivityIDs {
		if _, ok := existing[id]; ok && !kept[id] {
			removed = append(removed, id)
		}
	}
	return steps, removed, nil
}

// DeletePlan removes a plan and every activity that belongs to it.
func (s *Service) DeletePlan(ctx context.Context, caller Caller, planID primitive.ObjectID) error {
	p, err := s.loadOwned(ctx, caller, planID)
	if err != nil {
		return err
	}

	var deleted int64
	err = s.UoW.Do(ctx, func(ctx context.Context) error {
		n, err := s.Activities.DeleteByPlan(ctx, p.ID)
		if err != nil {
			return err
		}
		deleted = n
		return s.Plans.Delete(ctx, p.ID)
	})
	if err != nil {
		return classify("Failed to delete plan", err)
	}

	metrics.Plans.WithLabelValues("delete").Inc()
	s.Log.Info("plan deleted",
		zap.String("plan_id", p.ID.Hex()),
		zap.String("user_id", caller.ID.Hex()),
		zap.Int64("activities", deleted))
	return nil
}
