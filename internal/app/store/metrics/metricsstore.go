// Package metricsstore computes the figures shown on the dashboard.
package metricsstore

import (
	"context"

	activitystore "github.com/dalemusser/liderplan/internal/app/store/activities"
	planstore "github.com/dalemusser/liderplan/internal/app/store/plans"
	"github.com/dalemusser/liderplan/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/sync/errgroup"
)

// PlanSummary is one row of the per-plan progress table.
type PlanSummary struct {
	PlanID            primitive.ObjectID `json:"planId"`
	Name              string             `json:"name"`
	Activities        int64              `json:"activities"`
	Closed            int64              `json:"closed"`
	AverageCompletion float64            `json:"averageCompletion"`
}

// Summary is the set of totals returned by the dashboard.
type Summary struct {
	Scope             string           `json:"scope"`
	Today             string           `json:"today"`
	Plans             int64            `json:"plans"`
	Activities        int64            `json:"activities"`
	AverageCompletion float64          `json:"averageCompletion"`
	Overdue           int64            `json:"overdue"`
	ByStatus          map[string]int64 `json:"byStatus"`
	ByPriority        map[string]int64 `json:"byPriority"`
	PlanProgress      []PlanSummary    `json:"planProgress"`

	// UsersByRole is only filled for the all-plans scope.
	UsersByRole map[string]int64 `json:"usersByRole,omitempty"`
}

// FetchSummary gathers dashboard figures for the plans owned by owner, or
// for every plan when owner is nil. today decides display status and
// overdue activities. The independent queries run concurrently; the
// first failure cancels the rest.
func FetchSummary(ctx context.Context, db *mongo.Database, owner *primitive.ObjectID, today string) (Summary, error) {
	plans := planstore.New(db)
	acts := activitystore.New(db)

	out := Summary{Scope: "own", Today: today}
	sc := activitystore.Scope{All: owner == nil}
	if owner == nil {
		out.Scope = "all"
	} else {
		ids, err := plans.IDsByOwner(ctx, *owner)
		if err != nil {
			return Summary{}, err
		}
		sc.PlanIDs = ids
	}

	var (
		completion activitystore.Completion
		progress   []activitystore.PlanProgress
	)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		out.Plans, err = plans.CountByOwner(gctx, owner)
		return err
	})
	g.Go(func() (err error) {
		out.ByStatus, err = acts.CountByDisplayStatus(gctx, sc, today)
		return err
	})
	g.Go(func() (err error) {
		out.ByPriority, err = acts.CountByPriority(gctx, sc)
		return err
	})
	g.Go(func() (err error) {
		completion, err = acts.AverageCompletion(gctx, sc)
		return err
	})
	g.Go(func() (err error) {
		out.Overdue, err = acts.CountOverdue(gctx, sc, today)
		return err
	})
	g.Go(func() (err error) {
		progress, err = acts.ProgressByPlan(gctx, sc)
		return err
	})

	var roleCounts []int64
	if owner == nil {
		roleCounts = make([]int64, len(models.Roles))
		users := db.Collection("users")
		for i, role := range models.Roles {
			g.Go(func() (err error) {
				roleCounts[i], err = users.CountDocuments(gctx, bson.M{"role": role})
				return err
			})
		}
	}

	if err := g.Wait(); err != nil {
		return Summary{}, err
	}

	out.Activities = completion.Total
	out.AverageCompletion = completion.Average
	out.ByStatus = withKeys(out.ByStatus, string(models.StatusNotStarted), string(models.StatusInProgress), string(models.StatusClosed))
	out.ByPriority = withKeys(out.ByPriority, string(models.PriorityLow), string(models.PriorityMedium), string(models.PriorityHigh))
	if roleCounts != nil {
		out.UsersByRole = make(map[string]int64, len(roleCounts))
		for i, role := range models.Roles {
			out.UsersByRole[role] = roleCounts[i]
		}
	}

	rows, err := planRows(ctx, plans, progress)
	if err != nil {
		return Summary{}, err
	}
	out.PlanProgress = rows
	return out, nil
}

// planRows attaches plan names to progress, newest plan first.
// Progress for plans deleted mid-request is dropped.
func planRows(ctx context.Context, plans *planstore.Store, progress []activitystore.PlanProgress) ([]PlanSummary, error) {
	rows := []PlanSummary{}
	if len(progress) == 0 {
		return rows, nil
	}
	byPlan := make(map[primitive.ObjectID]activitystore.PlanProgress, len(progress))
	ids := make([]primitive.ObjectID, 0, len(progress))
	for _, p := range progress {
		byPlan[p.PlanID] = p
		ids = append(ids, p.PlanID)
	}
	list, err := plans.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, p := range list {
		pp := byPlan[p.ID]
		rows = append(rows, PlanSummary{
			PlanID:            p.ID,
			Name:              p.Name,
			Activities:        pp.Activities,
			Closed:            pp.Closed,
			AverageCompletion: pp.AverageCompletion,
		})
	}
	return rows, nil
}

// withKeys makes sure every key in keys is present in m.
func withKeys(m map[string]int64, keys ...string) map[string]int64 {
	if m == nil {
		m = make(map[string]int64, len(keys))
	}
	for _, k := range keys {
		if _, ok := m[k]; !ok {
			m[k] = 0
		}
	}
	return m
}
