// internal/app/system/authz/authz.go
package authz

import (
	"net/http"
	"strings"

	"github.com/dalemusser/liderplan/internal/app/system/auth"
	"github.com/dalemusser/liderplan/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Authorize reports whether role is one of allowed. Comparison ignores case
// and surrounding whitespace.
func Authorize(role string, allowed ...string) bool {
	role = strings.ToUpper(strings.TrimSpace(role))
	for _, want := range allowed {
		if role == strings.ToUpper(strings.TrimSpace(want)) {
			return true
		}
	}
	return false
}

// UserCtx returns the caller's role, name and ID. ok is false when no user
// is in the context.
func UserCtx(r *http.Request) (role string, name string, userID primitive.ObjectID, ok bool) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		return "", "", primitive.NilObjectID, false
	}
	return u.Role, u.FullName, u.ID, true
}

// IsAdmin reports whether the caller of r is an ADMIN.
func IsAdmin(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == models.RoleAdmin
}

// CanManagePlan reports whether the caller may read, change or delete a
// plan and add or remove its activities. Only the owner may; roles grant
// nothing here.
func CanManagePlan(callerID, ownerID primitive.ObjectID) bool {
	return !callerID.IsZero() && callerID == ownerID
}

// CanAccessActivity reports whether the caller may read or edit an
// activity: the plan owner or one of its responsible users.
func CanAccessActivity(callerID, ownerID primitive.ObjectID, r models.Responsible) bool {
	return CanManagePlan(callerID, ownerID) || (!callerID.IsZero() && r.Includes(callerID))
}

// CanEditUser reports whether the caller may edit the profile of target:
// themselves or, for an ADMIN, anyone.
func CanEditUser(callerID primitive.ObjectID, callerRole string, target primitive.ObjectID) bool {
	return callerRole == models.RoleAdmin || callerID == target
}
