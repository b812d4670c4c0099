// internal/domain/models/activity.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Status is the persisted lifecycle state of an activity.
type Status string

const (
	StatusNotStarted Status = "NOT_STARTED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusClosed     Status = "CLOSED"
)

// Label returns the Spanish display label used by the frontend.
func (s Status) Label() string {
	switch s {
	case StatusNotStarted:
		return "No iniciada"
	case StatusInProgress:
		return "En ejecución"
	case StatusClosed:
		return "Cerrada"
	}
	return string(s)
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return s == StatusNotStarted || s == StatusInProgress || s == StatusClosed
}

// Priority ranks activities within a plan.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

// Label returns the Spanish display label.
func (p Priority) Label() string {
	switch p {
	case PriorityLow:
		return "BAJA"
	case PriorityMedium:
		return "MEDIA"
	case PriorityHigh:
		return "ALTA"
	}
	return string(p)
}

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// Activity is a unit of work inside a plan.
//
// StartDate and EndDate are calendar dates in YYYY-MM-DD form. They are
// compared as strings and never converted to time.Time for storage.
type Activity struct {
	ID                   primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PlanID               primitive.ObjectID `bson:"plan_id" json:"planId"`
	Description          string             `bson:"description" json:"description"`
	Responsible          Responsible        `bson:"responsible" json:"responsible"`
	Area                 string             `bson:"area" json:"area"`
	StartDate            string             `bson:"start_date" json:"startDate"`
	EndDate              string             `bson:"end_date" json:"endDate"`
	Resources            string             `bson:"resources" json:"resources"`
	Status               Status             `bson:"status" json:"status"`
	Priority             Priority           `bson:"priority" json:"priority"`
	CompletionPercentage int                `bson:"completion_percentage" json:"completionPercentage"`
	Comments             []Comment          `bson:"comments" json:"comments"`
	Evidence             []Evidence         `bson:"evidence" json:"evidence"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// Comment is an append-only note on an activity.
type Comment struct {
	ID     primitive.ObjectID `bson:"_id" json:"id"`
	Text   string             `bson:"text" json:"text"`
	Author string             `bson:"author" json:"author"`
	Date   time.Time          `bson:"date" json:"date"`
}

// Evidence references an uploaded file attached to an activity.
type Evidence struct {
	ID       primitive.ObjectID `bson:"_id" json:"id"`
	FileName string             `bson:"file_name" json:"fileName"`
	URL      string             `bson:"url" json:"url"`
	Date     time.Time          `bson:"date" json:"date"`
}
