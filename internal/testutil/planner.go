package testutil

import (
	"testing"
	"time"

	"github.com/dalemusser/liderplan/internal/app/planner"
	activitystore "github.com/dalemusser/liderplan/internal/app/store/activities"
	planstore "github.com/dalemusser/liderplan/internal/app/store/plans"
	userstore "github.com/dalemusser/liderplan/internal/app/store/users"
	"github.com/dalemusser/liderplan/internal/app/system/txn"
	"github.com/dalemusser/liderplan/internal/domain/catalog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// NewPlanner wires a planner.Service over the stores of db with the
// embedded catalog and UTC as the time zone.
func NewPlanner(t *testing.T, db *mongo.Database) *planner.Service {
	t.Helper()
	cat, err := catalog.Default()
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	logger := zap.NewNop()
	return planner.New(
		planstore.New(db),
		activitystore.New(db),
		userstore.New(db),
		txn.NewRunner(db, logger),
		cat,
		time.UTC,
		logger,
	)
}
