package activitystore_test

import (
	"errors"
	"testing"
	"time"

	activitystore "github.com/dalemusser/liderplan/internal/app/store/activities"
	"github.com/dalemusser/liderplan/internal/domain/models"
	"github.com/dalemusser/liderplan/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_InsertInitializesLists(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := activitystore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	a, err := store.Insert(ctx, models.Activity{
		PlanID:      primitive.NewObjectID(),
		Description: "Taller",
		Responsible: models.FreeText("Coordinación"),
		StartDate:   "2026-01-10",
		EndDate:     "2026-02-10",
		Status:      models.StatusNotStarted,
		Priority:    models.PriorityHigh,
	})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, err := store.GetByID(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Comments == nil || got.Evidence == nil {
		t.Error("expected empty comment and evidence lists, got nil")
	}
	if got.Responsible.Kind != models.ResponsibleFreeText || got.Responsible.Name != "Coordinación" {
		t.Errorf("Responsible = %+v", got.Responsible)
	}

	if _, err := store.GetByID(ctx, primitive.NewObjectID()); !errors.Is(err, activitystore.ErrNotFound) {
		t.Errorf("GetByID unknown: got %v", err)
	}
}

func TestStore_SaveKeepsCommentsAndEvidence(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := activitystore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p := fx.CreatePlan(ctx, primitive.NewObjectID(), "Plan")
	a := fx.CreateActivity(ctx, p.ID, "Original", "2026-01-01", "2026-01-31")

	c := models.Comment{ID: primitive.NewObjectID(), Text: "Avance", Author: "Ana", Date: time.Now().UTC()}
	if err := store.PushComment(ctx, a.ID, c); err != nil {
		t.Fatalf("PushComment failed: %v", err)
	}
	e := models.Evidence{ID: primitive.NewObjectID(), FileName: "acta.pdf", URL: "/files/download/x.pdf", Date: time.Now().UTC()}
	if err := store.PushEvidence(ctx, a.ID, e); err != nil {
		t.Fatalf("PushEvidence failed: %v", err)
	}

	a.Description = "Editada"
	a.CompletionPercentage = 40
	a.Status = models.StatusInProgress
	if _, err := store.Save(ctx, a); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := store.GetByID(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Description != "Editada" || got.CompletionPercentage != 40 {
		t.Errorf("edit not saved: %+v", got)
	}
	if len(got.Comments) != 1 || got.Comments[0].Text != "Avance" {
		t.Errorf("Comments = %+v", got.Comments)
	}
	if len(got.Evidence) != 1 || got.Evidence[0].FileName != "acta.pdf" {
		t.Errorf("Evidence = %+v", got.Evidence)
	}

	missing := a
	missing.ID = primitive.NewObjectID()
	if _, err := store.Save(ctx, missing); !errors.Is(err, activitystore.ErrNotFound) {
		t.Errorf("Save unknown: got %v", err)
	}
	if err := store.PushComment(ctx, missing.ID, c); !errors.Is(err, activitystore.ErrNotFound) {
		t.Errorf("PushComment unknown: got %v", err)
	}
}

func TestStore_ListAndDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := activitystore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p1 := fx.CreatePlan(ctx, primitive.NewObjectID(), "Uno")
	p2 := fx.CreatePlan(ctx, primitive.NewObjectID(), "Dos")
	a1 := fx.CreateActivity(ctx, p1.ID, "A1", "2026-01-01", "2026-01-02")
	a2 := fx.CreateActivity(ctx, p1.ID, "A2", "2026-01-01", "2026-01-02")
	fx.CreateActivity(ctx, p2.ID, "B1", "2026-01-01", "2026-01-02")

	byIDs, err := store.ListByIDs(ctx, []primitive.ObjectID{a2.ID})
	if err != nil || len(byIDs) != 1 || byIDs[0].ID != a2.ID {
		t.Fatalf("ListByIDs = %+v, %v", byIDs, err)
	}

	if err := store.Delete(ctx, a1.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := store.Delete(ctx, a1.ID); !errors.Is(err, activitystore.ErrNotFound) {
		t.Errorf("second Delete: got %v", err)
	}

	n, err := store.DeleteByPlan(ctx, p2.ID)
	if err != nil || n != 1 {
		t.Errorf("DeleteByPlan = %d, %v; want 1", n, err)
	}
	n, err = store.DeleteMany(ctx, []primitive.ObjectID{a2.ID})
	if err != nil || n != 1 {
		t.Errorf("DeleteMany = %d, %v; want 1", n, err)
	}
}

func TestStore_ListByResponsibleUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := activitystore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := primitive.NewObjectID()
	plan := primitive.NewObjectID()
	if _, err := store.Insert(ctx, models.Activity{PlanID: plan, Description: "Mía", Responsible: models.UserRefs([]primitive.ObjectID{u})}); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Insert(ctx, models.Activity{PlanID: plan, Description: "Otra", Responsible: models.FreeText("Alguien")}); err != nil {
		t.Fatal(err)
	}

	got, err := store.ListByResponsibleUser(ctx, u)
	if err != nil {
		t.Fatalf("ListByResponsibleUser failed: %v", err)
	}
	if len(got) != 1 || got[0].Description != "Mía" {
		t.Errorf("got %+v", got)
	}
}

func TestStore_Stats(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := activitystore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	planA := primitive.NewObjectID()
	planB := primitive.NewObjectID()
	insert := func(plan primitive.ObjectID, status models.Status, prio models.Priority, pct int, start, end string) {
		t.Helper()
		if _, err := store.Insert(ctx, models.Activity{
			PlanID: plan, Description: "x", Responsible: models.FreeText("y"),
			Status: status, Priority: prio, CompletionPercentage: pct,
			StartDate: start, EndDate: end,
		}); err != nil {
			t.Fatal(err)
		}
	}
	// today is 2026-03-01
	insert(planA, models.StatusNotStarted, models.PriorityHigh, 0, "2026-02-01", "2026-02-20") // shown IN_PROGRESS, overdue
	insert(planA, models.StatusNotStarted, models.PriorityLow, 0, "2026-04-01", "2026-04-30")  // future
	insert(planA, models.StatusClosed, models.PriorityHigh, 100, "2026-01-01", "2026-01-31")   // closed, not overdue
	insert(planB, models.StatusInProgress, models.PriorityMedium, 50, "2026-01-01", "2026-12-31")

	today := "2026-03-01"
	onlyA := activitystore.Scope{PlanIDs: []primitive.ObjectID{planA}}

	byStatus, err := store.CountByDisplayStatus(ctx, onlyA, today)
	if err != nil {
		t.Fatalf("CountByDisplayStatus failed: %v", err)
	}
	if byStatus["IN_PROGRESS"] != 1 || byStatus["NOT_STARTED"] != 1 || byStatus["CLOSED"] != 1 {
		t.Errorf("byStatus = %v", byStatus)
	}

	byPrio, err := store.CountByPriority(ctx, activitystore.Scope{All: true})
	if err != nil {
		t.Fatalf("CountByPriority failed: %v", err)
	}
	if byPrio["HIGH"] != 2 || byPrio["LOW"] != 1 || byPrio["MEDIUM"] != 1 {
		t.Errorf("byPrio = %v", byPrio)
	}

	comp, err := store.AverageCompletion(ctx, activitystore.Scope{All: true})
	if err != nil {
		t.Fatalf("AverageCompletion failed: %v", err)
	}
	if comp.Total != 4 || comp.Average != 37.5 {
		t.Errorf("completion = %+v, want 4 / 37.5", comp)
	}

	overdue, err := store.CountOverdue(ctx, onlyA, today)
	if err != nil || overdue != 1 {
		t.Errorf("CountOverdue = %d, %v; want 1", overdue, err)
	}

	empty, err := store.AverageCompletion(ctx, activitystore.Scope{})
	if err != nil || empty.Total != 0 {
		t.Errorf("empty scope = %+v, %v", empty, err)
	}

	progress, err := store.ProgressByPlan(ctx, onlyA)
	if err != nil {
		t.Fatalf("ProgressByPlan failed: %v", err)
	}
	if len(progress) != 1 || progress[0].PlanID != planA || progress[0].Activities != 3 || progress[0].Closed != 1 {
		t.Errorf("progress = %+v", progress)
	}
}
