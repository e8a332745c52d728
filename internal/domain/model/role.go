package model

import (
	"strings"

	"snippetbox/internal/common"
)

// Role is the closed set of roles a user can hold.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Roles lists every valid role.
var Roles = []Role{RoleAdmin, RoleUser}

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleUser:
		return true
	}
	return false
}

func (r Role) String() string { return string(r) }

// ParseRole resolves a requested role name. An empty name means RoleUser;
// anything outside the enumeration is a validation error.
func ParseRole(name string) (Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return RoleUser, nil
	}
	role := Role(strings.ToLower(name))
	if !role.Valid() {
		return "", common.Validationf("unknown role %q", name)
	}
	return role, nil
}

// RoleRecord is a persisted role row. Rows are created lazily, one per Role.
type RoleRecord struct {
	ID   int64 `json:"id"`
	Name Role  `json:"name"`
}
