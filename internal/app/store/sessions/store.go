// internal/app/store/sessions/store.go
package sessions

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

// ErrNotFound is returned when no session matches.
var ErrNotFound = errors.New("session not found")

// Store manages the server-side records behind issued tokens.
type Store struct {
	c *mongo.Collection
}

// New creates a new sessions Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("sessions")}
}

// Create opens a session for a user. Other open sessions of the same user
// stay open; a user may be signed in on several devices.
func (s *Store) Create(ctx context.Context, userID primitive.ObjectID, ip, userAgent string) (models.Session, error) {
	now := time.Now().UTC()
	sess := models.Session{
		ID:           primitive.NewObjectID(),
		UserID:       userID,
		LoginAt:      now,
		LastActiveAt: now,
		IP:           ip,
		UserAgent:    userAgent,
	}
	if _, err := s.c.InsertOne(ctx, sess); err != nil {
		return models.Session{}, err
	}
	return sess, nil
}

// GetByID retrieves a session by its ID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Session, error) {
	var sess models.Session
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&sess); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Session{}, ErrNotFound
		}
		return models.Session{}, err
	}
	return sess, nil
}

// Touch records activity on an open session.
func (s *Store) Touch(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "logout_at": nil},
		bson.M{"$set": bson.M{"last_active_at": time.Now().UTC()}},
	)
	return err
}

// Close ends a session. Closing an already closed session is a no-op.
func (s *Store) Close(ctx context.Context, id primitive.ObjectID, reason string) error {
	now := time.Now().UTC()
	_, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "logout_at": nil},
		bson.M{"$set": bson.M{"logout_at": now, "end_reason": reason}},
	)
	return err
}

// CloseAllForUser ends every open session of a user and returns how many
// were closed.
func (s *Store) CloseAllForUser(ctx context.Context, userID primitive.ObjectID, reason string) (int64, error) {
	now := time.Now().UTC()
	res, err := s.c.UpdateMany(ctx,
		bson.M{"user_id": userID, "logout_at": nil},
		bson.M{"$set": bson.M{"logout_at": now, "end_reason": reason}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// CloseInactive ends open sessions with no activity for longer than
// threshold and returns how many were closed.
func (s *Store) CloseInactive(ctx context.Context, threshold time.Duration) (int64, error) {
	now := time.Now().UTC()
	res, err := s.c.UpdateMany(ctx,
		bson.M{"logout_at": nil, "last_active_at": bson.M{"$lt": now.Add(-threshold)}},
		bson.M{"$set": bson.M{"logout_at": now, "end_reason": models.EndReasonInactive}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// ListActiveByUser returns a user's open sessions, newest first.
func (s *Store) ListActiveByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Session, error) {
	opts := options.Find().SetSort(bson.D{{Key: "login_at", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{"user_id": userID, "logout_at": nil}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Session
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
