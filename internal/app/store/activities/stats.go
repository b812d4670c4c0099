package activitystore

import (
	"context"

	"github.com/dalemusser/liderplan/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Scope limits statistics to a set of plans, or to every plan when All.
type Scope struct {
	All     bool
	PlanIDs []primitive.ObjectID
}

func (sc Scope) filter() bson.M {
	if sc.All {
		return bson.M{}
	}
	ids := sc.PlanIDs
	if ids == nil {
		ids = []primitive.ObjectID{}
	}
	return bson.M{"plan_id": bson.M{"$in": ids}}
}

// displayStatusExpr mirrors progress.DeriveDisplayStatus inside an
// aggregation so counts agree with what the API returns per activity.
func displayStatusExpr(today string) bson.M {
	return bson.M{"$cond": bson.A{
		bson.M{"$and": bson.A{
			bson.M{"$eq": bson.A{"$status", string(models.StatusNotStarted)}},
			bson.M{"$ne": bson.A{"$start_date", ""}},
			bson.M{"$lte": bson.A{"$start_date", today}},
		}},
		string(models.StatusInProgress),
		"$status",
	}}
}

type keyCount struct {
	Key   string `bson:"_id"`
	Count int64  `bson:"count"`
}

func (s *Store) groupCount(ctx context.Context, pipeline mongo.Pipeline) (map[string]int64, error) {
	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []keyCount
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.Key] = r.Count
	}
	return out, nil
}

// CountByDisplayStatus counts activities by the status shown to users on
// the given day.
func (s *Store) CountByDisplayStatus(ctx context.Context, sc Scope, today string) (map[string]int64, error) {
	return s.groupCount(ctx, mongo.Pipeline{
		{{Key: "$match", Value: sc.filter()}},
		{{Key: "$group", Value: bson.M{"_id": displayStatusExpr(today), "count": bson.M{"$sum": 1}}}},
	})
}

// CountByPriority counts activities by priority.
func (s *Store) CountByPriority(ctx context.Context, sc Scope) (map[string]int64, error) {
	return s.groupCount(ctx, mongo.Pipeline{
		{{Key: "$match", Value: sc.filter()}},
		{{Key: "$group", Value: bson.M{"_id": "$priority", "count": bson.M{"$sum": 1}}}},
	})
}

// Completion summarizes completion percentages.
type Completion struct {
	Total   int64   `bson:"total"`
	Average float64 `bson:"average"`
}

// AverageCompletion returns the number of activities and their mean
// completion percentage. An empty scope yields zeros.
func (s *Store) AverageCompletion(ctx context.Context, sc Scope) (Completion, error) {
	cur, err := s.c.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: sc.filter()}},
		{{Key: "$group", Value: bson.M{
			"_id":     nil,
			"total":   bson.M{"$sum": 1},
			"average": bson.M{"$avg": "$completion_percentage"},
		}}},
	})
	if err != nil {
		return Completion{}, err
	}
	defer cur.Close(ctx)

	var rows []Completion
	if err := cur.All(ctx, &rows); err != nil {
		return Completion{}, err
	}
	if len(rows) == 0 {
		return Completion{}, nil
	}
	return rows[0], nil
}

// CountOverdue counts activities past their end date that are not closed.
func (s *Store) CountOverdue(ctx context.Context, sc Scope, today string) (int64, error) {
	f := sc.filter()
	f["status"] = bson.M{"$ne": models.StatusClosed}
	f["end_date"] = bson.M{"$lt": today, "$ne": ""}
	return s.c.CountDocuments(ctx, f)
}

// PlanProgress summarizes one plan's activities.
type PlanProgress struct {
	PlanID            primitive.ObjectID `bson:"_id" json:"planId"`
	Activities        int64              `bson:"activities" json:"activities"`
	Closed            int64              `bson:"closed" json:"closed"`
	AverageCompletion float64            `bson:"average" json:"averageCompletion"`
}

// ProgressByPlan returns per-plan activity counts and mean completion.
func (s *Store) ProgressByPlan(ctx context.Context, sc Scope) ([]PlanProgress, error) {
	cur, err := s.c.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: sc.filter()}},
		{{Key: "$group", Value: bson.M{
			"_id":        "$plan_id",
			"activities": bson.M{"$sum": 1},
			"closed": bson.M{"$sum": bson.M{"$cond": bson.A{
				bson.M{"$eq": bson.A{"$status", string(models.StatusClosed)}}, 1, 0,
			}}},
			"average": bson.M{"$avg": "$completion_percentage"},
		}}},
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []PlanProgress
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
