package progress

import (
	"testing"
	"time"

	"github.com/dalemusser/liderplan/internal/domain/models"
)

func TestDeriveDisplayStatus(t *testing.T) {
	tests := []struct {
		name   string
		stored models.Status
		start  string
		today  string
		want   models.Status
	}{
		{"not started, before start", models.StatusNotStarted, "2025-01-10", "2025-01-09", models.StatusNotStarted},
		{"not started, on start day", models.StatusNotStarted, "2025-01-10", "2025-01-10", models.StatusInProgress},
		{"not started, after start", models.StatusNotStarted, "2025-01-10", "2025-02-01", models.StatusInProgress},
		{"closed stays closed", models.StatusClosed, "2025-01-10", "2025-02-01", models.StatusClosed},
		{"in progress before start", models.StatusInProgress, "2025-01-10", "2025-01-01", models.StatusInProgress},
		{"missing start date", models.StatusNotStarted, "", "2025-01-01", models.StatusNotStarted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveDisplayStatus(tt.stored, tt.start, tt.today)
			if got != tt.want {
				t.Errorf("DeriveDisplayStatus(%q, %q, %q) = %q, want %q", tt.stored, tt.start, tt.today, got, tt.want)
			}
		})
	}
}

func TestApplyCompletion(t *testing.T) {
	tests := []struct {
		chosen models.Status
		pct    int
		want   models.Status
	}{
		{models.StatusNotStarted, 100, models.StatusClosed},
		{models.StatusInProgress, 100, models.StatusClosed},
		{models.StatusNotStarted, 50, models.StatusInProgress},
		{models.StatusClosed, 99, models.StatusInProgress},
		{models.StatusClosed, 1, models.StatusInProgress},
		{models.StatusClosed, 0, models.StatusClosed},
		{models.StatusInProgress, 0, models.StatusInProgress},
		{"", 0, models.StatusNotStarted},
	}

	for _, tt := range tests {
		got := ApplyCompletion(tt.chosen, tt.pct)
		if got != tt.want {
			t.Errorf("ApplyCompletion(%q, %d) = %q, want %q", tt.chosen, tt.pct, got, tt.want)
		}
	}
}

func TestValidDate(t *testing.T) {
	valid := []string{"2025-01-01", "2024-02-29", "1999-12-31"}
	invalid := []string{"", "2025-1-1", "2025-13-01", "2023-02-29", "2025-01-01T00:00:00Z", "01/01/2025"}

	for _, s := range valid {
		if !ValidDate(s) {
			t.Errorf("ValidDate(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		if ValidDate(s) {
			t.Errorf("ValidDate(%q) = true, want false", s)
		}
	}
}

func TestToday_UsesLocation(t *testing.T) {
	// 03:00 UTC on Jan 2 is still Jan 1 in Bogotá (UTC-5).
	now := time.Date(2025, 1, 2, 3, 0, 0, 0, time.UTC)
	bogota := time.FixedZone("COT", -5*60*60)

	if got := Today(now, bogota); got != "2025-01-01" {
		t.Errorf("Today(bogota) = %q, want 2025-01-01", got)
	}
	if got := Today(now, nil); got != "2025-01-02" {
		t.Errorf("Today(nil) = %q, want 2025-01-02", got)
	}
}

func TestIsOverdue(t *testing.T) {
	a := models.Activity{EndDate: "2025-01-05", Status: models.StatusInProgress}
	if !IsOverdue(a, "2025-01-06") {
		t.Error("expected activity past its end date to be overdue")
	}
	if IsOverdue(a, "2025-01-05") {
		t.Error("activity on its end date should not be overdue")
	}
	a.Status = models.StatusClosed
	if IsOverdue(a, "2025-02-01") {
		t.Error("closed activity should never be overdue")
	}
}
