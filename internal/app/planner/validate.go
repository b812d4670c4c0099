package planner

import (
	"context"
	"fmt"
	"strings"

	"github.com/dalemusser/liderplan/internal/app/system/apperr"
	"github.com/dalemusser/liderplan/internal/app/system/htmlsanitize"
	"github.com/dalemusser/liderplan/internal/app/system/normalize"
	"github.com/dalemusser/liderplan/internal/domain/models"
	"github.com/dalemusser/liderplan/internal/domain/progress"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	msgRequired  = "is required"
	msgDate      = "must be a date in YYYY-MM-DD form"
	msgDateOrder = "must not be before startDate"
	msgPercent   = "must be between 0 and 100"

	msgStatusConflict = "conflicts with the stored completion of %d%%, which implies %s; send completionPercentage with it"
)

// cleanHeader sanitizes h and normalizes the origin.
func cleanHeader(h PlanHeader) PlanHeader {
	return PlanHeader{
		Name:      htmlsanitize.PlainText(h.Name),
		Project:   htmlsanitize.PlainText(h.Project),
		Goal:      htmlsanitize.PlainText(h.Goal),
		Origin:    normalize.Origin(h.Origin),
		SubOrigin: htmlsanitize.PlainText(h.SubOrigin),
	}
}

// checkHeader validates a complete header for a new plan.
func (s *Service) checkHeader(h PlanHeader) error {
	fields := map[string]string{}
	if h.Name == "" {
		fields["name"] = msgRequired
	}
	if h.Project == "" {
		fields["project"] = msgRequired
	}
	if h.Goal == "" {
		fields["goal"] = msgRequired
	}
	if h.Origin == "" {
		fields["origin"] = msgRequired
	} else if !s.validOrigin(h.Origin) {
		fields["origin"] = "must be one of development, improvement"
	} else if !s.validSubOrigin(h.Origin, h.SubOrigin) {
		fields["subOrigin"] = "is not listed for this origin"
	}
	if len(fields) > 0 {
		return apperr.ValidationFields("The fields name, project, goal and origin are required", fields)
	}
	return nil
}

func (s *Service) validOrigin(origin string) bool {
	if origin != models.OriginDevelopment && origin != models.OriginImprovement {
		return false
	}
	return s.Catalog == nil || s.Catalog.ValidOrigin(origin)
}

func (s *Service) validSubOrigin(origin, sub string) bool {
	if s.Catalog == nil {
		return true
	}
	return s.Catalog.ValidSubOrigin(origin, sub)
}

// isBlankDraft reports whether d lacks a description or a responsible
// party. Such drafts are dropped when a plan is created.
func isBlankDraft(d ActivityDraft) bool {
	return htmlsanitize.PlainText(d.Description) == "" || draftResponsible(d).IsZero()
}

func draftResponsible(d ActivityDraft) models.Responsible {
	if len(d.ResponsibleUserIDs) > 0 {
		return models.UserRefs(uniqueIDs(d.ResponsibleUserIDs))
	}
	return models.FreeText(htmlsanitize.PlainText(d.Responsible))
}

// buildActivity turns a draft into an activity, recording problems in
// fields under prefix.
func buildActivity(d ActivityDraft, prefix string, fields map[string]string) models.Activity {
	a := models.Activity{
		Description:          htmlsanitize.PlainText(d.Description),
		Responsible:          draftResponsible(d),
		Area:                 htmlsanitize.PlainText(d.Area),
		StartDate:            strings.TrimSpace(d.StartDate),
		EndDate:              strings.TrimSpace(d.EndDate),
		Resources:            htmlsanitize.PlainText(d.Resources),
		Status:               models.Status(normalize.Enum(string(d.Status))),
		Priority:             models.Priority(normalize.Enum(string(d.Priority))),
		CompletionPercentage: d.CompletionPercentage,
	}
	if a.Status == "" {
		a.Status = models.StatusNotStarted
	}
	if a.Priority == "" {
		a.Priority = models.PriorityMedium
	}
	checkActivity(a, prefix, fields)
	a.Status = progress.ApplyCompletion(a.Status, a.CompletionPercentage)
	return a
}

// checkActivity validates the stored fields of a.
func checkActivity(a models.Activity, prefix string, fields map[string]string) {
	if a.Description == "" {
		fields[prefix+"description"] = msgRequired
	}
	if a.Responsible.IsZero() {
		fields[prefix+"responsible"] = msgRequired
	}
	startOK := progress.ValidDate(a.StartDate)
	endOK := progress.ValidDate(a.EndDate)
	if !startOK {
		fields[prefix+"startDate"] = msgDate
	}
	if !endOK {
		fields[prefix+"endDate"] = msgDate
	}
	if startOK && endOK && a.EndDate < a.StartDate {
		fields[prefix+"endDate"] = msgDateOrder
	}
	if !a.Status.Valid() {
		fields[prefix+"status"] = "must be one of NOT_STARTED, IN_PROGRESS, CLOSED"
	}
	if !a.Priority.Valid() {
		fields[prefix+"priority"] = "must be one of LOW, MEDIUM, HIGH"
	}
	if !progress.ClampPercentage(a.CompletionPercentage) {
		fields[prefix+"completionPercentage"] = msgPercent
	}
}

func draftPrefix(i int) string {
	return fmt.Sprintf("activities[%d].", i)
}

// checkUsersExist fails when any referenced user is unknown.
func (s *Service) checkUsersExist(ctx context.Context, acts []models.Activity) error {
	var ids []primitive.ObjectID
	for _, a := range acts {
		if a.Responsible.Kind == models.ResponsibleUsers {
			ids = append(ids, a.Responsible.UserIDs...)
		}
	}
	ids = uniqueIDs(ids)
	if len(ids) == 0 || s.Users == nil {
		return nil
	}
	n, err := s.Users.CountExisting(ctx, ids)
	if err != nil {
		return apperr.Storage("Failed to check responsible users", err)
	}
	if int(n) != len(ids) {
		return apperr.ValidationFields("Unknown responsible user", map[string]string{
			"responsibleUserIds": "contains a user that does not exist",
		})
	}
	return nil
}

func uniqueIDs(ids []primitive.ObjectID) []primitive.ObjectID {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[primitive.ObjectID]bool, len(ids))
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if id.IsZero() || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
