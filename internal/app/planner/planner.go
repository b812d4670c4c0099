// Package planner implements plan and activity lifecycles on top of the
// plan, activity and user stores. Multi-document writes run inside a unit of
// work so a plan's activity list always matches its activities.
package planner

import (
	"context"
	"errors"
	"time"

	activitystore "github.com/dalemusser/liderplan/internal/app/store/activities"
	planstore "github.com/dalemusser/liderplan/internal/app/store/plans"
	"github.com/dalemusser/liderplan/internal/app/system/apperr"
	"github.com/dalemusser/liderplan/internal/domain/catalog"
	"github.com/dalemusser/liderplan/internal/domain/models"
	"github.com/dalemusser/liderplan/internal/domain/progress"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// PlanRepo persists plans.
type PlanRepo interface {
	Insert(ctx context.Context, p models.Plan) (models.Plan, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Plan, error)
	GetOwned(ctx context.Context, id, ownerID primitive.ObjectID) (models.Plan, error)
	ListByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]models.Plan, error)
	UpdateHeader(ctx context.Context, id primitive.ObjectID, h planstore.Header) error
	SetActivities(ctx context.Context, id primitive.ObjectID, ids []primitive.ObjectID) error
	AppendActivity(ctx context.Context, id, activityID primitive.ObjectID) error
	PullActivity(ctx context.Context, id, activityID primitive.ObjectID) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// ActivityRepo persists activities.
type ActivityRepo interface {
	Insert(ctx context.Context, a models.Activity) (models.Activity, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Activity, error)
	ListByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Activity, error)
	ListByResponsibleUser(ctx context.Context, userID primitive.ObjectID) ([]models.Activity, error)
	Save(ctx context.Context, a models.Activity) (models.Activity, error)
	PushComment(ctx context.Context, id primitive.ObjectID, c models.Comment) error
	PushEvidence(ctx context.Context, id primitive.ObjectID, e models.Evidence) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteMany(ctx context.Context, ids []primitive.ObjectID) (int64, error)
	DeleteByPlan(ctx context.Context, planID primitive.ObjectID) (int64, error)
}

// UserDirectory resolves user references.
type UserDirectory interface {
	NamesByID(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]string, error)
	CountExisting(ctx context.Context, ids []primitive.ObjectID) (int64, error)
}

// UnitOfWork runs fn so that its writes commit together or not at all.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Caller identifies who is performing an operation.
type Caller struct {
	ID       primitive.ObjectID
	Role     string
	FullName string
}

// IsAdmin reports whether the caller has the ADMIN role.
func (c Caller) IsAdmin() bool { return c.Role == models.RoleAdmin }

// Service implements the plan and activity operations.
type Service struct {
	Plans      PlanRepo
	Activities ActivityRepo
	Users      UserDirectory
	UoW        UnitOfWork
	Catalog    *catalog.Catalog
	Log        *zap.Logger

	// Location is the time zone that decides what "today" is.
	Location *time.Location
	Now      func() time.Time
}

// New wires a Service. loc defaults to UTC when nil.
func New(plans PlanRepo, activities ActivityRepo, users UserDirectory, uow UnitOfWork, cat *catalog.Catalog, loc *time.Location, log *zap.Logger) *Service {
	if loc == nil {
		loc = time.UTC
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		Plans:      plans,
		Activities: activities,
		Users:      users,
		UoW:        uow,
		Catalog:    cat,
		Log:        log,
		Location:   loc,
		Now:        time.Now,
	}
}

// Today returns the current calendar date in the service's time zone.
func (s *Service) Today() string {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	return progress.Today(now(), s.Location)
}

// classify turns store errors into apperr kinds. Already classified errors
// pass through unchanged.
func classify(msg string, err error) error {
	if err == nil {
		return nil
	}
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return err
	}
	switch {
	case errors.Is(err, planstore.ErrNotFound):
		return apperr.NotFound("Plan not found")
	case errors.Is(err, activitystore.ErrNotFound):
		return apperr.NotFound("Activity not found")
	}
	return apperr.Storage(msg, err)
}
