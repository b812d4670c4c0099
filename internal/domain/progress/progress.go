// Package progress holds the status rules for activities. Every read and
// write path in the API goes through these functions so the server and any
// client renderer agree on what an activity's status is.
package progress

import (
	"time"

	"github.com/dalemusser/liderplan/internal/domain/models"
)

// DateLayout is the calendar-date format used for activity dates.
const DateLayout = "2006-01-02"

// Today returns the current calendar date in loc as YYYY-MM-DD.
func Today(now time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return now.In(loc).Format(DateLayout)
}

// ValidDate reports whether s is a real calendar date in YYYY-MM-DD form.
func ValidDate(s string) bool {
	if len(s) != len(DateLayout) {
		return false
	}
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// DeriveDisplayStatus promotes a NOT_STARTED activity to IN_PROGRESS once
// its start date has arrived. The result is for display only and is never
// written back.
func DeriveDisplayStatus(stored models.Status, startDate, today string) models.Status {
	if stored == models.StatusNotStarted && startDate != "" && today >= startDate {
		return models.StatusInProgress
	}
	return stored
}

// ApplyCompletion returns the status to persist when an activity is saved
// with the given completion percentage. At 0% the chosen status is kept.
func ApplyCompletion(chosen models.Status, pct int) models.Status {
	switch {
	case pct >= 100:
		return models.StatusClosed
	case pct > 0:
		return models.StatusInProgress
	}
	if chosen == "" {
		return models.StatusNotStarted
	}
	return chosen
}

// ClampPercentage reports whether pct is within [0,100].
func ClampPercentage(pct int) bool {
	return pct >= 0 && pct <= 100
}

// IsOverdue reports whether an activity has passed its end date without
// being closed.
func IsOverdue(a models.Activity, today string) bool {
	return a.Status != models.StatusClosed && a.EndDate != "" && a.EndDate < today
}
