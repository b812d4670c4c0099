package authz_test

import (
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/liderplan/internal/app/system/auth"
	"github.com/dalemusser/liderplan/internal/app/system/authz"
	"github.com/dalemusser/liderplan/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestAuthorize(t *testing.T) {
	tests := []struct {
		role    string
		allowed []string
		want    bool
	}{
		{"ADMIN", []string{"ADMIN"}, true},
		{"leader", []string{"ADMIN", "LEADER"}, true},
		{"TEAM", []string{"ADMIN", "LEADER"}, false},
		{"", []string{"ADMIN"}, false},
		{"ADMIN", nil, false},
	}
	for _, tt := range tests {
		if got := authz.Authorize(tt.role, tt.allowed...); got != tt.want {
			t.Errorf("Authorize(%q, %v) = %v, want %v", tt.role, tt.allowed, got, tt.want)
		}
	}
}

func TestIsAdmin(t *testing.T) {
	req := httptest.NewRequest("GET", "/test", nil)
	if authz.IsAdmin(req) {
		t.Error("expected false with no user")
	}

	req = req.WithContext(auth.WithUser(req.Context(), &auth.User{ID: primitive.NewObjectID(), Role: models.RoleAdmin}))
	if !authz.IsAdmin(req) {
		t.Error("expected true for ADMIN")
	}
}

func TestUserCtx(t *testing.T) {
	id := primitive.NewObjectID()
	req := httptest.NewRequest("GET", "/test", nil)
	req = req.WithContext(auth.WithUser(req.Context(), &auth.User{ID: id, FullName: "Ana", Role: models.RoleTeam}))

	role, name, uid, ok := authz.UserCtx(req)
	if !ok || role != models.RoleTeam || name != "Ana" || uid != id {
		t.Errorf("UserCtx = %q %q %v %v", role, name, uid, ok)
	}
}

func TestCanAccessActivity(t *testing.T) {
	owner := primitive.NewObjectID()
	helper := primitive.NewObjectID()
	stranger := primitive.NewObjectID()
	resp := models.UserRefs([]primitive.ObjectID{helper})

	tests := []struct {
		name   string
		caller primitive.ObjectID
		want   bool
	}{
		{"owner", owner, true},
		{"responsible", helper, true},
		{"stranger", stranger, false},
		{"nil caller", primitive.NilObjectID, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := authz.CanAccessActivity(tt.caller, owner, resp); got != tt.want {
				t.Errorf("CanAccessActivity = %v, want %v", got, tt.want)
			}
		})
	}

	if authz.CanManagePlan(helper, owner) {
		t.Error("responsible users must not manage the plan")
	}
}

func TestCanManagePlan_OwnerOnly(t *testing.T) {
	owner := primitive.NewObjectID()
	tests := []struct {
		name   string
		caller primitive.ObjectID
		owner  primitive.ObjectID
		want   bool
	}{
		{"owner", owner, owner, true},
		{"someone else", primitive.NewObjectID(), owner, false},
		{"nil caller", primitive.NilObjectID, owner, false},
		{"nil caller and owner", primitive.NilObjectID, primitive.NilObjectID, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := authz.CanManagePlan(tt.caller, tt.owner); got != tt.want {
				t.Errorf("CanManagePlan = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCanEditUser(t *testing.T) {
	a, b := primitive.NewObjectID(), primitive.NewObjectID()
	if !authz.CanEditUser(a, models.RoleTeam, a) {
		t.Error("users may edit themselves")
	}
	if authz.CanEditUser(a, models.RoleLeader, b) {
		t.Error("non-admins may not edit others")
	}
	if !authz.CanEditUser(a, models.RoleAdmin, b) {
		t.Error("admins may edit anyone")
	}
}
