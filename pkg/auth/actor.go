package auth

import (
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/poliutech/cotizador-backend/pkg/enums"
)

var titleCaser = cases.Title(language.Spanish)

// Actor identifies the authenticated user behind a request.
type Actor struct {
	UserID uuid.UUID
	Name   string
	Role   enums.UserRole
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == enums.UserRoleAdmin
}

// OwnerTag returns the representative tag stamped on records the actor
// creates: the first word of the name, title-cased.
func (a Actor) OwnerTag() string {
	fields := strings.Fields(strings.TrimSpace(a.Name))
	if len(fields) == 0 {
		return ""
	}
	return titleCaser.String(strings.ToLower(fields[0]))
}
