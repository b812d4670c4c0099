// Package shared holds helpers used by more than one API feature.
package shared

import (
	"net/http"

	"github.com/dalemusser/liderplan/internal/app/planner"
	"github.com/dalemusser/liderplan/internal/app/system/apperr"
	"github.com/dalemusser/liderplan/internal/app/system/auth"
)

// Caller returns the authenticated caller of r for the planner. Routes are
// mounted behind RequireAuth, so a missing user is an AuthError.
func Caller(r *http.Request) (planner.Caller, error) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		return planner.Caller{}, apperr.Auth("Authentication required")
	}
	return planner.Caller{ID: u.ID, Role: u.Role, FullName: u.FullName}, nil
}
