// internal/domain/models/session.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Session end reasons.
const (
	EndReasonLogout      = "logout"
	EndReasonUserDeleted = "user_deleted"
	EndReasonInactive    = "inactive"
)

// Session is the server-side record behind an issued bearer token.
// A token authenticates only while its session has no LogoutAt.
type Session struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	UserID       primitive.ObjectID `bson:"user_id"`
	LoginAt      time.Time          `bson:"login_at"`
	LastActiveAt time.Time          `bson:"last_active_at"`
	LogoutAt     *time.Time         `bson:"logout_at,omitempty"`
	EndReason    string             `bson:"end_reason,omitempty"`
	IP           string             `bson:"ip"`
	UserAgent    string             `bson:"user_agent,omitempty"`
}
