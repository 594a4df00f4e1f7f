// Package service implements the attribute business rules on top of a
// repository: access control by project readers and writers, bookkeeping
// timestamps, optimistic lost-update detection and duplicate names.
package service

import "strings"

// RoleAdmin is the role name granting full access, compared ignoring case.
const RoleAdmin = "admin"

// Session identifies the caller of a service operation.
type Session struct {
	Login   string
	Roles   []string
	IsAdmin bool
}

// Admin reports whether the session has administrative rights, either
// through the flag or through an admin role.
func (s Session) Admin() bool {
	if s.IsAdmin {
		return true
	}
	for _, role := range s.Roles {
		if strings.EqualFold(strings.TrimSpace(role), RoleAdmin) {
			return true
		}
	}
	return false
}

// ParseRoles splits a comma separated role list, dropping blanks.
func ParseRoles(raw string) []string {
	var roles []string
	for _, role := range strings.Split(raw, ",") {
		if role = strings.TrimSpace(role); role != "" {
			roles = append(roles, role)
		}
	}
	return roles
}
