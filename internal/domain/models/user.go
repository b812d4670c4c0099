// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles recognised by the API.
const (
	RoleAdmin  = "ADMIN"
	RoleLeader = "LEADER"
	RoleTeam   = "TEAM"
)

// Roles lists every valid role in display order.
var Roles = []string{RoleAdmin, RoleLeader, RoleTeam}

// IsValidRole reports whether r is one of Roles.
func IsValidRole(r string) bool {
	for _, v := range Roles {
		if v == r {
			return true
		}
	}
	return false
}

// User is an account that can sign in and own plans.
//
// PasswordHash is never serialized to JSON.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password_hash" json:"-"`
	FullName     string             `bson:"full_name" json:"fullName"`
	FullNameCI   string             `bson:"full_name_ci" json:"-"` // lowercase, diacritics-stripped
	Role         string             `bson:"role" json:"role"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}
