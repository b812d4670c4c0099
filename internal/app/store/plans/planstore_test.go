package planstore_test

import (
	"errors"
	"testing"

	planstore "github.com/dalemusser/liderplan/internal/app/store/plans"
	"github.com/dalemusser/liderplan/internal/domain/models"
	"github.com/dalemusser/liderplan/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_InsertAndGet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := planstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := primitive.NewObjectID()
	p, err := store.Insert(ctx, models.Plan{
		Name: "Plan 2026", Project: "Convivencia", Goal: "Reducir conflictos",
		Origin: models.OriginImprovement, OwnerID: owner,
	})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if p.ID.IsZero() || p.CreatedAt.IsZero() {
		t.Fatal("expected ID and timestamps to be set")
	}
	if p.ActivityIDs == nil {
		t.Error("expected empty activity list, got nil")
	}

	got, err := store.GetOwned(ctx, p.ID, owner)
	if err != nil {
		t.Fatalf("GetOwned failed: %v", err)
	}
	if got.Name != "Plan 2026" || len(got.ActivityIDs) != 0 {
		t.Errorf("unexpected plan %+v", got)
	}

	if _, err := store.GetOwned(ctx, p.ID, primitive.NewObjectID()); !errors.Is(err, planstore.ErrNotFound) {
		t.Errorf("GetOwned by other owner: got %v, want ErrNotFound", err)
	}
	if _, err := store.GetByID(ctx, primitive.NewObjectID()); !errors.Is(err, planstore.ErrNotFound) {
		t.Errorf("GetByID unknown: got %v, want ErrNotFound", err)
	}
}

func TestStore_ListByOwner_NewestFirst(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := planstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := primitive.NewObjectID()
	first := fx.CreatePlan(ctx, owner, "Primero")
	second := fx.CreatePlan(ctx, owner, "Segundo")
	fx.CreatePlan(ctx, primitive.NewObjectID(), "Ajeno")

	plans, err := store.ListByOwner(ctx, owner)
	if err != nil {
		t.Fatalf("ListByOwner failed: %v", err)
	}
	if len(plans) != 2 {
		t.Fatalf("got %d plans, want 2", len(plans))
	}
	if plans[0].ID != second.ID || plans[1].ID != first.ID {
		t.Errorf("expected newest first, got %s then %s", plans[0].Name, plans[1].Name)
	}

	n, err := store.CountByOwner(ctx, &owner)
	if err != nil || n != 2 {
		t.Errorf("CountByOwner = %d, %v; want 2", n, err)
	}
	n, err = store.CountByOwner(ctx, nil)
	if err != nil || n != 3 {
		t.Errorf("CountByOwner(nil) = %d, %v; want 3", n, err)
	}

	ids, err := store.IDsByOwner(ctx, owner)
	if err != nil || len(ids) != 2 {
		t.Errorf("IDsByOwner = %v, %v", ids, err)
	}
}

func TestStore_UpdateHeader_OnlyGivenFields(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := planstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p := fx.CreatePlan(ctx, primitive.NewObjectID(), "Original")
	name := "Renombrado"
	if err := store.UpdateHeader(ctx, p.ID, planstore.Header{Name: &name}); err != nil {
		t.Fatalf("UpdateHeader failed: %v", err)
	}

	got, err := store.GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Name != "Renombrado" {
		t.Errorf("Name = %q", got.Name)
	}
	if got.Project != p.Project || got.Goal != p.Goal {
		t.Error("fields not in header should be unchanged")
	}

	if err := store.UpdateHeader(ctx, primitive.NewObjectID(), planstore.Header{Name: &name}); !errors.Is(err, planstore.ErrNotFound) {
		t.Errorf("UpdateHeader unknown: got %v", err)
	}
}

func TestStore_ActivityList(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := planstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p := fx.CreatePlan(ctx, primitive.NewObjectID(), "Lista")
	a, b, c := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()

	if err := store.SetActivities(ctx, p.ID, []primitive.ObjectID{b, a}); err != nil {
		t.Fatalf("SetActivities failed: %v", err)
	}
	if err := store.AppendActivity(ctx, p.ID, c); err != nil {
		t.Fatalf("AppendActivity failed: %v", err)
	}
	if err := store.PullActivity(ctx, p.ID, a); err != nil {
		t.Fatalf("PullActivity failed: %v", err)
	}

	got, err := store.GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	want := []primitive.ObjectID{b, c}
	if len(got.ActivityIDs) != len(want) {
		t.Fatalf("ActivityIDs = %v, want %v", got.ActivityIDs, want)
	}
	for i := range want {
		if got.ActivityIDs[i] != want[i] {
			t.Errorf("ActivityIDs[%d] = %s, want %s", i, got.ActivityIDs[i].Hex(), want[i].Hex())
		}
	}

	if err := store.SetActivities(ctx, p.ID, nil); err != nil {
		t.Fatalf("SetActivities(nil) failed: %v", err)
	}
	got, _ = store.GetByID(ctx, p.ID)
	if got.ActivityIDs == nil || len(got.ActivityIDs) != 0 {
		t.Errorf("expected empty list after SetActivities(nil), got %v", got.ActivityIDs)
	}
}

func TestStore_Delete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := planstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p := fx.CreatePlan(ctx, primitive.NewObjectID(), "Borrar")
	if err := store.Delete(ctx, p.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := store.Delete(ctx, p.ID); !errors.Is(err, planstore.ErrNotFound) {
		t.Errorf("second Delete: got %v, want ErrNotFound", err)
	}
}
