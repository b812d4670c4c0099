package planner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	planstore "github.com/dalemusser/liderplan/internal/app/store/plans"
	"github.com/dalemusser/liderplan/internal/app/system/apperr"
	"github.com/dalemusser/liderplan/internal/app/system/authz"
	"github.com/dalemusser/liderplan/internal/app/system/htmlsanitize"
	"github.com/dalemusser/liderplan/internal/app/system/metrics"
	"github.com/dalemusser/liderplan/internal/app/system/normalize"
	"github.com/dalemusser/liderplan/internal/domain/models"
	"github.com/dalemusser/liderplan/internal/domain/progress"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// planOwner returns the owner of planID, or the zero ID when the plan is
// gone so that only an ADMIN passes ownership checks.
func (s *Service) planOwner(ctx context.Context, planID primitive.ObjectID) (primitive.ObjectID, error) {
	p, err := s.Plans.GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, planstore.ErrNotFound) {
			return primitive.NilObjectID, nil
		}
		return primitive.NilObjectID, apperr.Storage("Failed to load plan", err)
	}
	return p.OwnerID, nil
}

// loadActivity loads an activity the caller may read and edit.
func (s *Service) loadActivity(ctx context.Context, caller Caller, id primitive.ObjectID) (models.Activity, error) {
	a, err := s.Activities.GetByID(ctx, id)
	if err != nil {
		return models.Activity{}, classify("Failed to load activity", err)
	}
	owner, err := s.planOwner(ctx, a.PlanID)
	if err != nil {
		return models.Activity{}, err
	}
	if !authz.CanAccessActivity(caller.ID, owner, a.Responsible) {
		return models.Activity{}, apperr.Forbidden("You do not have access to this activity")
	}
	return a, nil
}

// CreateActivity adds an activity at the end of a plan. Only the plan owner
// or an ADMIN may add activities.
func (s *Service) CreateActivity(ctx context.Context, caller Caller, planID primitive.ObjectID, d ActivityDraft) (ActivityView, error) {
	p, err := s.Plans.GetByID(ctx, planID)
	if err != nil {
		return ActivityView{}, classify("Failed to load plan", err)
	}
	if !authz.CanManagePlan(caller.ID, p.OwnerID) {
		return ActivityView{}, apperr.Forbidden("Only the plan owner can add activities")
	}

	fields := map[string]string{}
	a := buildActivity(d, "", fields)
	if len(fields) > 0 {
		return ActivityView{}, apperr.ValidationFields("Invalid activity", fields)
	}
	if err := s.checkUsersExist(ctx, []models.Activity{a}); err != nil {
		return ActivityView{}, err
	}
	a.PlanID = p.ID

	err = s.UoW.Do(ctx, func(ctx context.Context) error {
		saved, err := s.Activities.Insert(ctx, a)
		if err != nil {
			return err
		}
		a = saved
		return s.Plans.AppendActivity(ctx, p.ID, saved.ID)
	})
	if err != nil {
		return ActivityView{}, classify("Failed to create activity", err)
	}

	metrics.Activities.WithLabelValues("create").Inc()
	s.Log.Info("activity created",
		zap.String("activity_id", a.ID.Hex()),
		zap.String("plan_id", p.ID.Hex()),
		zap.String("user_id", caller.ID.Hex()))
	return s.viewActivity(ctx, a)
}

// GetActivity returns one activity.
func (s *Service) GetActivity(ctx context.Context, caller Caller, id primitive.ObjectID) (ActivityView, error) {
	a, err := s.loadActivity(ctx, caller, id)
	if err != nil {
		return ActivityView{}, err
	}
	return s.viewActivity(ctx, a)
}

// ListAssigned returns the activities that name the caller as a
// responsible user.
func (s *Service) ListAssigned(ctx context.Context, caller Caller) ([]ActivityView, error) {
	acts, err := s.Activities.ListByResponsibleUser(ctx, caller.ID)
	if err != nil {
		return nil, apperr.Storage("Failed to load activities", err)
	}
	return s.viewActivities(ctx, acts)
}

// UpdateActivity merges the present fields of patch into the activity. The
// completion rule decides the stored status.
func (s *Service) UpdateActivity(ctx context.Context, caller Caller, id primitive.ObjectID, patch ActivityPatch) (ActivityView, error) {
	return s.patchActivity(ctx, caller, id, patch, "update")
}

// UpdateActivityStatus sets the status and, when given, the completion
// percentage. The completion rule still applies, so 100% always closes the
// activity whatever status accompanies it. A status sent alone must agree
// with the stored completion: CLOSED at 40% is rejected rather than
// silently stored as IN_PROGRESS.
func (s *Service) UpdateActivityStatus(ctx context.Context, caller Caller, id primitive.ObjectID, status models.Status, completion *int) (ActivityView, error) {
	patch := ActivityPatch{CompletionPercentage: completion}
	if status != "" {
		patch.Status = &status
	}
	if patch.Status == nil && patch.CompletionPercentage == nil {
		return ActivityView{}, apperr.ValidationFields("Status or completion is required", map[string]string{
			"status": msgRequired,
		})
	}
	return s.patchActivity(ctx, caller, id, patch, "status")
}

func (s *Service) patchActivity(ctx context.Context, caller Caller, id primitive.ObjectID, patch ActivityPatch, op string) (ActivityView, error) {
	a, err := s.loadActivity(ctx, caller, id)
	if err != nil {
		return ActivityView{}, err
	}
	before := a.Status
	responsibleChanged := applyPatch(&a, patch)

	fields := map[string]string{}
	checkActivity(a, "", fields)
	if _, bad := fields["status"]; !bad && patch.Status != nil && patch.CompletionPercentage == nil {
		if got := progress.ApplyCompletion(a.Status, a.CompletionPercentage); got != a.Status {
			fields["status"] = fmt.Sprintf(msgStatusConflict, a.CompletionPercentage, got)
		}
	}
	if len(fields) > 0 {
		return ActivityView{}, apperr.ValidationFields("Invalid activity", fields)
	}
	if responsibleChanged {
		if err := s.checkUsersExist(ctx, []models.Activity{a}); err != nil {
			return ActivityView{}, err
		}
	}
	a.Status = progress.ApplyCompletion(a.Status, a.CompletionPercentage)

	saved, err := s.Activities.Save(ctx, a)
	if err != nil {
		return ActivityView{}, classify("Failed to update activity", err)
	}

	metrics.Activities.WithLabelValues(op).Inc()
	if before != models.StatusClosed && saved.Status == models.StatusClosed {
		metrics.ActivitiesClosed.Inc()
	}
	s.Log.Info("activity updated",
		zap.String("activity_id", saved.ID.Hex()),
		zap.String("user_id", caller.ID.Hex()),
		zap.String("status", string(saved.Status)),
		zap.Int("completion", saved.CompletionPercentage))
	return s.viewActivity(ctx, saved)
}

// applyPatch merges p into a and reports whether the responsible party
// was replaced.
func applyPatch(a *models.Activity, p ActivityPatch) bool {
	if p.Description != nil {
		a.Description = htmlsanitize.PlainText(*p.Description)
	}
	if p.Area != nil {
		a.Area = htmlsanitize.PlainText(*p.Area)
	}
	if p.Resources != nil {
		a.Resources = htmlsanitize.PlainText(*p.Resources)
	}
	if p.StartDate != nil {
		a.StartDate = strings.TrimSpace(*p.StartDate)
	}
	if p.EndDate != nil {
		a.EndDate = strings.TrimSpace(*p.EndDate)
	}
	if p.Status != nil {
		a.Status = models.Status(normalize.Enum(string(*p.Status)))
	}
	if p.Priority != nil {
		a.Priority = models.Priority(normalize.Enum(string(*p.Priority)))
	}
	if p.CompletionPercentage != nil {
		a.CompletionPercentage = *p.CompletionPercentage
	}

	switch {
	case p.ResponsibleUserIDs != nil && len(uniqueIDs(*p.ResponsibleUserIDs)) > 0:
		a.Responsible = models.UserRefs(uniqueIDs(*p.ResponsibleUserIDs))
	case p.Responsible != nil:
		a.Responsible = models.FreeText(htmlsanitize.PlainText(*p.Responsible))
	case p.ResponsibleUserIDs != nil:
		a.Responsible = models.UserRefs(nil)
	default:
		return false
	}
	return true
}

// DeleteActivity removes an activity and drops it from its plan's list.
// Only the plan owner or an ADMIN may delete.
func (s *Service) DeleteActivity(ctx context.Context, caller Caller, id primitive.ObjectID) error {
	a, err := s.Activities.GetByID(ctx, id)
	if err != nil {
		return classify("Failed to load activity", err)
	}
	owner, err := s.planOwner(ctx, a.PlanID)
	if err != nil {
		return err
	}
	if !authz.CanManagePlan(caller.ID, owner) {
		return apperr.Forbidden("Only the plan owner can delete activities")
	}

	err = s.UoW.Do(ctx, func(ctx context.Context) error {
		if err := s.Activities.Delete(ctx, a.ID); err != nil {
			return err
		}
		if err := s.Plans.PullActivity(ctx, a.PlanID, a.ID); err != nil && !errors.Is(err, planstore.ErrNotFound) {
			return err
		}
		return nil
	})
	if err != nil {
		return classify("Failed to delete activity", err)
	}

	metrics.Activities.WithLabelValues("delete").Inc()
	s.Log.Info("activity deleted",
		zap.String("activity_id", a.ID.Hex()),
		zap.String("plan_id", a.PlanID.Hex()),
		zap.String("user_id", caller.ID.Hex()))
	return nil
}

// AddComment appends a comment. The author defaults to the caller's name.
func (s *Service) AddComment(ctx context.Context, caller Caller, id primitive.ObjectID, text, author string) (ActivityView, error) {
	a, err := s.loadActivity(ctx, caller, id)
	if err != nil {
		return ActivityView{}, err
	}
	text = htmlsanitize.PlainText(text)
	if text == "" {
		return ActivityView{}, apperr.ValidationFields("Comment text is required", map[string]string{"text": msgRequired})
	}
	author = htmlsanitize.PlainText(author)
	if author == "" {
		author = caller.FullName
	}

	c := models.Comment{ID: primitive.NewObjectID(), Text: text, Author: author, Date: s.now()}
	if err := s.Activities.PushComment(ctx, a.ID, c); err != nil {
		return ActivityView{}, classify("Failed to add comment", err)
	}
	metrics.Activities.WithLabelValues("comment").Inc()
	return s.reload(ctx, a.ID)
}

// AddEvidence appends a reference to an uploaded file.
func (s *Service) AddEvidence(ctx context.Context, caller Caller, id primitive.ObjectID, fileName, url string) (ActivityView, error) {
	a, err := s.loadActivity(ctx, caller, id)
	if err != nil {
		return ActivityView{}, err
	}
	fileName = htmlsanitize.PlainText(fileName)
	url = strings.TrimSpace(url)
	fields := map[string]string{}
	if fileName == "" {
		fields["fileName"] = msgRequired
	}
	if url == "" {
		fields["url"] = msgRequired
	}
	if len(fields) > 0 {
		return ActivityView{}, apperr.ValidationFields("fileName and url are required", fields)
	}

	e := models.Evidence{ID: primitive.NewObjectID(), FileName: fileName, URL: url, Date: s.now()}
	if err := s.Activities.PushEvidence(ctx, a.ID, e); err != nil {
		return ActivityView{}, classify("Failed to add evidence", err)
	}
	metrics.Activities.WithLabelValues("evidence").Inc()
	return s.reload(ctx, a.ID)
}

func (s *Service) reload(ctx context.Context, id primitive.ObjectID) (ActivityView, error) {
	a, err := s.Activities.GetByID(ctx, id)
	if err != nil {
		return ActivityView{}, classify("Failed to load activity", err)
	}
	return s.viewActivity(ctx, a)
}
