package models

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestResponsible_IsZero(t *testing.T) {
	if !(Responsible{}).IsZero() {
		t.Error("empty Responsible should be zero")
	}
	if !FreeText("   ").IsZero() {
		t.Error("blank free-text name should be zero")
	}
	if FreeText("Alice").IsZero() {
		t.Error("named free-text should not be zero")
	}
	if !UserRefs(nil).IsZero() {
		t.Error("user refs without ids should be zero")
	}
	if UserRefs([]primitive.ObjectID{primitive.NewObjectID()}).IsZero() {
		t.Error("user refs with ids should not be zero")
	}
}

func TestResponsible_DisplayNames(t *testing.T) {
	a, b, missing := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()
	names := map[primitive.ObjectID]string{a: "Ana", b: "Beto"}

	got := UserRefs([]primitive.ObjectID{b, missing, a}).DisplayNames(names)
	if len(got) != 2 || got[0] != "Beto" || got[1] != "Ana" {
		t.Errorf("DisplayNames = %v, want [Beto Ana]", got)
	}

	got = FreeText("Alice").DisplayNames(names)
	if len(got) != 1 || got[0] != "Alice" {
		t.Errorf("DisplayNames(free text) = %v, want [Alice]", got)
	}
}

func TestResponsible_Includes(t *testing.T) {
	a := primitive.NewObjectID()
	if !UserRefs([]primitive.ObjectID{a}).Includes(a) {
		t.Error("expected Includes to find referenced user")
	}
	if FreeText("Alice").Includes(a) {
		t.Error("free-text responsible never includes a user id")
	}
}

func TestIsValidRole(t *testing.T) {
	for _, r := range []string{"ADMIN", "LEADER", "TEAM"} {
		if !IsValidRole(r) {
			t.Errorf("IsValidRole(%q) = false", r)
		}
	}
	for _, r := range []string{"", "admin", "SUPERADMIN"} {
		if IsValidRole(r) {
			t.Errorf("IsValidRole(%q) = true", r)
		}
	}
}
