package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/liderplan/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// TestPassword is the plaintext password of every fixture user.
const TestPassword = "secret123"

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, ok := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if !ok || rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser inserts a user whose password is TestPassword. The hash uses
// the minimum bcrypt cost to keep tests fast.
func (f *Fixtures) CreateUser(ctx context.Context, fullName, email, role string) models.User {
	f.t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		f.t.Fatalf("hash fixture password: %v", err)
	}
	now := time.Now().UTC()
	u := models.User{
		ID:           primitive.NewObjectID(),
		Email:        email,
		PasswordHash: string(hash),
		FullName:     fullName,
		FullNameCI:   text.Fold(fullName),
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

// CreatePlan inserts an empty development plan owned by ownerID.
func (f *Fixtures) CreatePlan(ctx context.Context, ownerID primitive.ObjectID, name string) models.Plan {
	f.t.Helper()

	now := time.Now().UTC()
	p := models.Plan{
		ID:          primitive.NewObjectID(),
		Name:        name,
		Project:     "Proyecto " + name,
		Goal:        "Meta " + name,
		Origin:      models.OriginDevelopment,
		ActivityIDs: []primitive.ObjectID{},
		OwnerID:     ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := f.db.Collection("plans").InsertOne(ctx, p); err != nil {
		f.t.Fatalf("failed to create test plan: %v", err)
	}
	return p
}

// CreateActivity inserts an activity and appends it to the plan's list.
func (f *Fixtures) CreateActivity(ctx context.Context, planID primitive.ObjectID, description, start, end string) models.Activity {
	f.t.Helper()

	now := time.Now().UTC()
	a := models.Activity{
		ID:          primitive.NewObjectID(),
		PlanID:      planID,
		Description: description,
		Responsible: models.FreeText("Equipo"),
		StartDate:   start,
		EndDate:     end,
		Status:      models.StatusNotStarted,
		Priority:    models.PriorityMedium,
		Comments:    []models.Comment{},
		Evidence:    []models.Evidence{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := f.db.Collection("activities").InsertOne(ctx, a); err != nil {
		f.t.Fatalf("failed to create test activity: %v", err)
	}
	if _, err := f.db.Collection("plans").UpdateByID(ctx, planID, bson.M{"$push": bson.M{"activities": a.ID}}); err != nil {
		f.t.Fatalf("failed to link test activity: %v", err)
	}
	return a
}
