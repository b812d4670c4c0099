package plans_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/liderplan/internal/app/features/plans"
	"github.com/dalemusser/liderplan/internal/app/system/auth"
	"github.com/dalemusser/liderplan/internal/domain/models"
	"github.com/dalemusser/liderplan/internal/testutil"
	"go.uber.org/zap"
)

type planJSON struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Origin     string `json:"origin"`
	Activities []struct {
		ID            string   `json:"id"`
		Description   string   `json:"description"`
		Status        string   `json:"status"`
		DisplayStatus string   `json:"displayStatus"`
		Names         []string `json:"responsibleNames"`
		Comments      []any    `json:"comments"`
	} `json:"activities"`
}

func newRouter(t *testing.T) (http.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	h := plans.NewHandler(testutil.NewPlanner(t, db), zap.NewNop())
	return plans.Routes(h), testutil.NewFixtures(t, db)
}

func serve(h http.Handler, r *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	return rec
}

func planBody(activities ...map[string]any) map[string]any {
	return map[string]any{
		"name":       "Plan Bienestar",
		"project":    "Permanencia",
		"goal":       "Reducir la deserción",
		"origin":     "development",
		"subOrigin":  "Ruta Sostenibilidad",
		"activities": activities,
	}
}

func activity(desc string) map[string]any {
	return map[string]any{
		"description": desc,
		"responsible": "Coordinación",
		"startDate":   "2020-01-01",
		"endDate":     "2099-12-31",
	}
}

func TestCreateAndGet(t *testing.T) {
	router, fx := newRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	owner := testutil.AsUser(fx.CreateUser(ctx, "Olga", "olga@example.com", models.RoleLeader))
	team := fx.CreateUser(ctx, "Tomás", "tomas@example.com", models.RoleTeam)

	withUsers := activity("Con equipo")
	withUsers["responsibleUserIds"] = []string{team.ID.Hex()}
	rec := serve(router, testutil.AuthedJSONRequest(t, http.MethodPost, "/", planBody(
		activity("Diagnóstico"),
		map[string]any{"description": "", "responsible": ""},
		withUsers,
	), owner))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status = %d (%s)", rec.Code, rec.Body.String())
	}
	var created struct {
		Message string   `json:"message"`
		Plan    planJSON `json:"plan"`
	}
	testutil.DecodeJSON(t, rec, &created)
	if len(created.Plan.Activities) != 2 {
		t.Fatalf("activities = %d, want 2 (blank draft dropped)", len(created.Plan.Activities))
	}
	first := created.Plan.Activities[0]
	if first.Status != "NOT_STARTED" || first.DisplayStatus != "IN_PROGRESS" {
		t.Errorf("status/displayStatus = %s/%s", first.Status, first.DisplayStatus)
	}
	if names := created.Plan.Activities[1].Names; len(names) != 1 || names[0] != "Tomás" {
		t.Errorf("responsibleNames = %v", names)
	}

	rec = serve(router, testutil.AuthedJSONRequest(t, http.MethodGet, "/"+created.Plan.ID, nil, owner))
	if rec.Code != http.StatusOK {
		t.Fatalf("get: status = %d", rec.Code)
	}

	stranger := testutil.LeaderUser()
	rec = serve(router, testutil.AuthedJSONRequest(t, http.MethodGet, "/"+created.Plan.ID, nil, stranger))
	if rec.Code != http.StatusNotFound {
		t.Errorf("stranger get: status = %d, want 404", rec.Code)
	}
	rec = serve(router, testutil.AuthedJSONRequest(t, http.MethodGet, "/not-an-id", nil, owner))
	if rec.Code != http.StatusNotFound {
		t.Errorf("malformed id: status = %d, want 404", rec.Code)
	}
}

func TestCreate_Validation(t *testing.T) {
	router, _ := newRouter(t)
	owner := testutil.LeaderUser()

	noActs := planBody()
	badOrigin := planBody(activity("a"))
	badOrigin["origin"] = "elsewhere"
	badDates := activity("a")
	badDates["endDate"] = "2019-01-01"
	badID := activity("a")
	badID["responsibleUserIds"] = []string{"zzz"}

	for name, body := range map[string]map[string]any{
		"no activities": noActs,
		"bad origin":    badOrigin,
		"bad dates":     planBody(badDates),
		"bad user id":   planBody(badID),
	} {
		rec := serve(router, testutil.AuthedJSONRequest(t, http.MethodPost, "/", body, owner))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400 (%s)", name, rec.Code, rec.Body.String())
		}
	}
}

func TestUpdate_ReconcilesAndDelete(t *testing.T) {
	router, fx := newRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	owner := testutil.AsUser(fx.CreateUser(ctx, "Olga", "olga@example.com", models.RoleLeader))

	rec := serve(router, testutil.AuthedJSONRequest(t, http.MethodPost, "/", planBody(activity("A"), activity("B")), owner))
	var created struct {
		Plan planJSON `json:"plan"`
	}
	testutil.DecodeJSON(t, rec, &created)
	a := created.Plan.Activities[0]

	keep := activity("A revisada")
	keep["id"] = a.ID
	rec = serve(router, testutil.AuthedJSONRequest(t, http.MethodPut, "/"+created.Plan.ID, map[string]any{
		"name":       "Plan renombrado",
		"activities": []map[string]any{activity("Nueva"), keep},
	}, owner))
	if rec.Code != http.StatusOK {
		t.Fatalf("update: status = %d (%s)", rec.Code, rec.Body.String())
	}
	var updated struct {
		Plan planJSON `json:"plan"`
	}
	testutil.DecodeJSON(t, rec, &updated)
	if updated.Plan.Name != "Plan renombrado" || updated.Plan.Origin != "development" {
		t.Errorf("header = %s/%s", updated.Plan.Name, updated.Plan.Origin)
	}
	if len(updated.Plan.Activities) != 2 ||
		updated.Plan.Activities[0].Description != "Nueva" ||
		updated.Plan.Activities[1].ID != a.ID {
		t.Errorf("activities after update = %+v", updated.Plan.Activities)
	}

	// An empty list is rejected instead of wiping the plan.
	rec = serve(router, testutil.AuthedJSONRequest(t, http.MethodPut, "/"+created.Plan.ID, map[string]any{
		"activities": []map[string]any{},
	}, owner))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty list: status = %d, want 400", rec.Code)
	}

	rec = serve(router, testutil.AuthedJSONRequest(t, http.MethodDelete, "/"+created.Plan.ID, nil, owner))
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: status = %d", rec.Code)
	}
	n, err := fx.DB().Collection("activities").CountDocuments(ctx, map[string]any{})
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Errorf("activities left after delete = %d", n)
	}
}

func TestOwnerOnly_EvenForAdmin(t *testing.T) {
	router, fx := newRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	ana := testutil.AsUser(fx.CreateUser(ctx, "Ana", "ana@example.com", models.RoleLeader))
	bob := testutil.AsUser(fx.CreateUser(ctx, "Bob", "bob@example.com", models.RoleLeader))
	admin := testutil.AsUser(fx.CreateUser(ctx, "Ada", "ada@example.com", models.RoleAdmin))

	rec := serve(router, testutil.AuthedJSONRequest(t, http.MethodPost, "/", planBody(activity("a")), ana))
	var created struct {
		Plan planJSON `json:"plan"`
	}
	testutil.DecodeJSON(t, rec, &created)
	serve(router, testutil.AuthedJSONRequest(t, http.MethodPost, "/", planBody(activity("b")), bob))

	count := func(target string, u *auth.User) int {
		var list []planJSON
		rec := serve(router, testutil.AuthedJSONRequest(t, http.MethodGet, target, nil, u))
		testutil.DecodeJSON(t, rec, &list)
		return len(list)
	}
	lists := []struct {
		target string
		user   *auth.User
		want   int
	}{
		{"/", ana, 1},
		{"/?scope=all", ana, 1},
		{"/", admin, 0},
		{"/?scope=all", admin, 0},
	}
	for _, tt := range lists {
		if n := count(tt.target, tt.user); n != tt.want {
			t.Errorf("%s as %s: %d plans, want %d", tt.target, tt.user.Role, n, tt.want)
		}
	}

	target := "/" + created.Plan.ID
	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		var body any
		if method == http.MethodPut {
			body = map[string]any{"name": "Tomado"}
		}
		rec := serve(router, testutil.AuthedJSONRequest(t, method, target, body, admin))
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s as ADMIN: status = %d, want 404", method, rec.Code)
		}
	}

	rec = serve(router, testutil.AuthedJSONRequest(t, http.MethodGet, target, nil, ana))
	if rec.Code != http.StatusOK {
		t.Fatalf("owner get after ADMIN attempts: status = %d", rec.Code)
	}
	var got planJSON
	testutil.DecodeJSON(t, rec, &got)
	if got.Name != "Plan Bienestar" || len(got.Activities) != 1 {
		t.Errorf("owner's plan changed: %+v", got)
	}
}
