package planner

import (
	"github.com/dalemusser/liderplan/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PlanHeader holds a plan's descriptive fields. On update, empty fields
// are left unchanged.
type PlanHeader struct {
	Name      string
	Project   string
	Goal      string
	Origin    string
	SubOrigin string
}

// ActivityDraft is an activity as submitted with a plan. ID is set only on
// plan update, to keep an existing activity.
//
// ResponsibleUserIDs takes precedence over the free-text Responsible.
type ActivityDraft struct {
	ID                   *primitive.ObjectID
	Description          string
	Responsible          string
	ResponsibleUserIDs   []primitive.ObjectID
	Area                 string
	StartDate            string
	EndDate              string
	Resources            string
	Status               models.Status
	Priority             models.Priority
	CompletionPercentage int
}

// ActivityPatch carries the fields of a partial activity update. Nil
// fields are left unchanged.
type ActivityPatch struct {
	Description          *string
	Responsible          *string
	ResponsibleUserIDs   *[]primitive.ObjectID
	Area                 *string
	StartDate            *string
	EndDate              *string
	Resources            *string
	Status               *models.Status
	Priority             *models.Priority
	CompletionPercentage *int
}

// ActivityView is an activity as returned to clients.
type ActivityView struct {
	models.Activity
	DisplayStatus    models.Status `json:"displayStatus"`
	ResponsibleNames []string      `json:"responsibleNames"`
	Overdue          bool          `json:"overdue"`
}

// PlanView is a plan with its activities expanded in plan order.
type PlanView struct {
	models.Plan
	Activities []ActivityView `json:"activities"`
}
