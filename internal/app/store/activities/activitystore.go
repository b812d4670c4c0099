package activitystore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/liderplan/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrNotFound is returned when no activity matches.
var ErrNotFound = errors.New("activity not found")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("activities")}
}

// Insert stores a new activity. The ID is assigned when zero; comment and
// evidence lists start empty.
func (s *Store) Insert(ctx context.Context, a models.Activity) (models.Activity, error) {
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	if a.Comments == nil {
		a.Comments = []models.Comment{}
	}
	if a.Evidence == nil {
		a.Evidence = []models.Evidence{}
	}
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, a); err != nil {
		return models.Activity{}, err
	}
	return a, nil
}

// GetByID loads one activity.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Activity, error) {
	var a models.Activity
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&a); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Activity{}, ErrNotFound
		}
		return models.Activity{}, err
	}
	return a, nil
}

// ListByIDs returns the activities whose IDs are in ids in no particular
// order. Callers order them by the plan's list.
func (s *Store) ListByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Activity, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return s.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

// ListByResponsibleUser returns the activities that reference userID.
func (s *Store) ListByResponsibleUser(ctx context.Context, userID primitive.ObjectID) ([]models.Activity, error) {
	return s.find(ctx, bson.M{"responsible.kind": models.ResponsibleUsers, "responsible.user_ids": userID})
}

func (s *Store) find(ctx context.Context, filter bson.M) ([]models.Activity, error) {
	cur, err := s.c.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Activity
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Save writes the editable fields of a. Comments and evidence are not
// touched.
func (s *Store) Save(ctx context.Context, a models.Activity) (models.Activity, error) {
	a.UpdatedAt = time.Now().UTC()
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": a.ID}, bson.M{"$set": bson.M{
		"description":           a.Description,
		"responsible":           a.Responsible,
		"area":                  a.Area,
		"start_date":            a.StartDate,
		"end_date":              a.EndDate,
		"resources":             a.Resources,
		"status":                a.Status,
		"priority":              a.Priority,
		"completion_percentage": a.CompletionPercentage,
		"updated_at":            a.UpdatedAt,
	}})
	if err != nil {
		return models.Activity{}, err
	}
	if res.MatchedCount == 0 {
		return models.Activity{}, ErrNotFound
	}
	return a, nil
}

// PushComment appends c to the activity's comments.
func (s *Store) PushComment(ctx context.Context, id primitive.ObjectID, c models.Comment) error {
	return s.push(ctx, id, "comments", c)
}

// PushEvidence appends e to the activity's evidence.
func (s *Store) PushEvidence(ctx context.Context, id primitive.ObjectID, e models.Evidence) error {
	return s.push(ctx, id, "evidence", e)
}

func (s *Store) push(ctx context.Context, id primitive.ObjectID, field string, v any) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$push": bson.M{field: v},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes one activity.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteMany removes the activities in ids.
func (s *Store) DeleteMany(ctx context.Context, ids []primitive.ObjectID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := s.c.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteByPlan removes every activity of a plan.
func (s *Store) DeleteByPlan(ctx context.Context, planID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"plan_id": planID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
