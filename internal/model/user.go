// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines domain models and types used throughout the
// application including the User role enumeration and event constants.
package model

// Role is a user capability level. The set is closed: persistence rejects
// anything outside the three values below.
type Role string

// User roles.
const (
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
	RoleCustomer  Role = "customer"
)

// Roles lists all valid user roles, in descending capability order.
var Roles = []Role{RoleAdmin, RoleModerator, RoleCustomer}

// Valid reports whether r is one of the three known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleModerator, RoleCustomer:
		return true
	}
	return false
}

// IsAdmin reports whether the role grants access to meal management.
// Moderator and customer are both non-admin: moderator exists as a distinct
// role but carries no extra capability on any current route.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

func (r Role) String() string {
	return string(r)
}

// ParseRole returns the Role for s, or RoleCustomer (the signup default)
// when s is empty. Unknown values are returned as-is and fail Valid().
func ParseRole(s string) Role {
	if s == "" {
		return RoleCustomer
	}
	return Role(s)
}
