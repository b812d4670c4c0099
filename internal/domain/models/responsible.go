// internal/domain/models/responsible.go
package models

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ResponsibleKind tags which form a Responsible value takes.
type ResponsibleKind string

const (
	ResponsibleFreeText ResponsibleKind = "free_text"
	ResponsibleUsers    ResponsibleKind = "users"
)

// Responsible names who carries out an activity: either a free-text name
// (legacy records) or a list of user references.
type Responsible struct {
	Kind    ResponsibleKind      `bson:"kind" json:"kind"`
	Name    string               `bson:"name,omitempty" json:"name,omitempty"`
	UserIDs []primitive.ObjectID `bson:"user_ids,omitempty" json:"userIds,omitempty"`
}

// FreeText builds a free-text Responsible.
func FreeText(name string) Responsible {
	return Responsible{Kind: ResponsibleFreeText, Name: strings.TrimSpace(name)}
}

// UserRefs builds a user-reference Responsible.
func UserRefs(ids []primitive.ObjectID) Responsible {
	return Responsible{Kind: ResponsibleUsers, UserIDs: ids}
}

// IsZero reports whether no responsible party is designated.
func (r Responsible) IsZero() bool {
	switch r.Kind {
	case ResponsibleFreeText:
		return r.Name == ""
	case ResponsibleUsers:
		return len(r.UserIDs) == 0
	}
	return true
}

// Includes reports whether userID is one of the referenced users.
func (r Responsible) Includes(userID primitive.ObjectID) bool {
	if r.Kind != ResponsibleUsers {
		return false
	}
	for _, id := range r.UserIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// DisplayNames resolves the responsible party to display strings.
// names maps user IDs to full names; unknown IDs are skipped.
func (r Responsible) DisplayNames(names map[primitive.ObjectID]string) []string {
	if r.Kind == ResponsibleFreeText {
		if r.Name == "" {
			return nil
		}
		return []string{r.Name}
	}
	out := make([]string, 0, len(r.UserIDs))
	for _, id := range r.UserIDs {
		if n, ok := names[id]; ok {
			out = append(out, n)
		}
	}
	return out
}
