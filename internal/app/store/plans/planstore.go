package planstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/liderplan/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when no plan matches.
var ErrNotFound = errors.New("plan not found")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("plans")}
}

// Insert stores a new plan. The ID is assigned when zero.
func (s *Store) Insert(ctx context.Context, p models.Plan) (models.Plan, error) {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	if p.ActivityIDs == nil {
		p.ActivityIDs = []primitive.ObjectID{}
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, p); err != nil {
		return models.Plan{}, err
	}
	return p, nil
}

// GetByID loads a plan regardless of owner.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Plan, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

// GetOwned loads a plan only when ownerID owns it.
func (s *Store) GetOwned(ctx context.Context, id, ownerID primitive.ObjectID) (models.Plan, error) {
	return s.findOne(ctx, bson.M{"_id": id, "owner_id": ownerID})
}

func (s *Store) findOne(ctx context.Context, filter bson.M) (models.Plan, error) {
	var p models.Plan
	if err := s.c.FindOne(ctx, filter).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Plan{}, ErrNotFound
		}
		return models.Plan{}, err
	}
	return p, nil
}

// ListByOwner returns the owner's plans, newest first.
func (s *Store) ListByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]models.Plan, error) {
	return s.find(ctx, bson.M{"owner_id": ownerID})
}

// ListByIDs returns the plans whose IDs are in ids, newest first.
func (s *Store) ListByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Plan, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return s.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

func (s *Store) find(ctx context.Context, filter bson.M) ([]models.Plan, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Plan
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Header holds the editable plan fields. Nil fields are left untouched.
type Header struct {
	Name      *string
	Project   *string
	Goal      *string
	Origin    *string
	SubOrigin *string
}

// UpdateHeader applies h to the plan.
func (s *Store) UpdateHeader(ctx context.Context, id primitive.ObjectID, h Header) error {
	set := bson.M{"updated_at": time.Now().UTC()}
	if h.Name != nil {
		set["name"] = *h.Name
	}
	if h.Project != nil {
		set["project"] = *h.Project
	}
	if h.Goal != nil {
		set["goal"] = *h.Goal
	}
	if h.Origin != nil {
		set["origin"] = *h.Origin
	}
	if h.SubOrigin != nil {
		set["sub_origin"] = *h.SubOrigin
	}
	return s.update(ctx, id, bson.M{"$set": set})
}

// SetActivities replaces the ordered activity list.
func (s *Store) SetActivities(ctx context.Context, id primitive.ObjectID, ids []primitive.ObjectID) error {
	if ids == nil {
		ids = []primitive.ObjectID{}
	}
	return s.update(ctx, id, bson.M{"$set": bson.M{"activities": ids, "updated_at": time.Now().UTC()}})
}

// AppendActivity adds an activity ID at the end of the list.
func (s *Store) AppendActivity(ctx context.Context, id, activityID primitive.ObjectID) error {
	return s.update(ctx, id, bson.M{
		"$push": bson.M{"activities": activityID},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
}

// PullActivity removes an activity ID from the list.
func (s *Store) PullActivity(ctx context.Context, id, activityID primitive.ObjectID) error {
	return s.update(ctx, id, bson.M{
		"$pull": bson.M{"activities": activityID},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
}

func (s *Store) update(ctx context.Context, id primitive.ObjectID, upd bson.M) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, upd)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a plan.
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

// IDsByOwner returns the IDs of the owner's plans.
func (s *Store) IDsByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]primitive.ObjectID, error) {
	opts := options.Find().SetProjection(bson.M{"_id": 1})
	cur, err := s.c.Find(ctx, bson.M{"owner_id": ownerID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}
	return ids, nil
}

// CountByOwner counts the owner's plans. A nil owner counts all plans.
func (s *Store) CountByOwner(ctx context.Context, ownerID *primitive.ObjectID) (int64, error) {
	filter := bson.M{}
	if ownerID != nil {
		filter["owner_id"] = *ownerID
	}
	return s.c.CountDocuments(ctx, filter)
}
