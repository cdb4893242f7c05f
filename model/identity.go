package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownRole is returned when a role name cannot be parsed.
var ErrUnknownRole = errors.New("unknown role")

// Role is the caller's dashboard role, resolved by the auth layer.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleTechnician Role = "technician"
	RoleViewer     Role = "viewer"
)

// ParseRole resolves a role by name. Empty input is treated as viewer.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "admin":
		return RoleAdmin, nil
	case "technician", "tech":
		return RoleTechnician, nil
	case "viewer", "":
		return RoleViewer, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
}

// CanControl reports whether the role may call mutating controls.
func (r Role) CanControl() bool {
	return r == RoleAdmin || r == RoleTechnician
}
