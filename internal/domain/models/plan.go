// internal/domain/models/plan.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Plan origins.
const (
	OriginDevelopment = "development"
	OriginImprovement = "improvement"
)

// Plan is the top-level record that owns an ordered list of activities.
//
// ActivityIDs is the authoritative ordering; every entry must point at an
// Activity whose PlanID equals this plan's ID.
type Plan struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name        string               `bson:"name" json:"name"`
	Project     string               `bson:"project" json:"project"`
	Goal        string               `bson:"goal" json:"goal"`
	Origin      string               `bson:"origin" json:"origin"`
	SubOrigin   string               `bson:"sub_origin,omitempty" json:"subOrigin,omitempty"`
	ActivityIDs []primitive.ObjectID `bson:"activities" json:"activityIds"`
	OwnerID     primitive.ObjectID   `bson:"owner_id" json:"ownerUserId"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}
