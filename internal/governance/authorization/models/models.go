package models

import (
	"slices"
	"sort"
	"strings"
	"time"

	id "veriledger/pkg/domain"
	dErrors "veriledger/pkg/domain-errors"
)

// Permission is a named capability held by a granted subject.
type Permission string

const (
	// PermissionIssuer allows writing credentials and DIDs.
	PermissionIssuer Permission = "issuer"
	// PermissionOperator allows driving onboarding sessions on a subject's behalf.
	PermissionOperator Permission = "operator"
	// PermissionRegistrar allows registering credential types.
	PermissionRegistrar Permission = "registrar"
)

var knownPermissions = map[Permission]struct{}{
	PermissionIssuer:    {},
	PermissionOperator:  {},
	PermissionRegistrar: {},
}

// ParsePermission validates a permission name.
func ParsePermission(s string) (Permission, error) {
	p := Permission(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := knownPermissions[p]; !ok {
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown permission: "+s)
	}
	return p, nil
}

// Grant records the permissions held by one subject.
type Grant struct {
	Subject     id.Identity
	Permissions []Permission
	GrantedBy   id.Identity
	GrantedAt   time.Time
	UpdatedAt   time.Time
}

// NewGrant creates a grant holding perms.
func NewGrant(subject, grantedBy id.Identity, perms []Permission, now time.Time) (*Grant, error) {
	if subject.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "grant subject required")
	}
	g := &Grant{Subject: subject, GrantedBy: grantedBy, GrantedAt: now, UpdatedAt: now}
	g.Add(perms...)
	return g, nil
}

// Has reports whether the grant carries p.
func (g *Grant) Has(p Permission) bool {
	return slices.Contains(g.Permissions, p)
}

// Add merges perms into the grant keeping the set sorted and unique.
func (g *Grant) Add(perms ...Permission) {
	for _, p := range perms {
		if !g.Has(p) {
			g.Permissions = append(g.Permissions, p)
		}
	}
	sort.Slice(g.Permissions, func(i, j int) bool { return g.Permissions[i] < g.Permissions[j] })
}

// Remove drops p and reports whether it was held.
func (g *Grant) Remove(p Permission) bool {
	idx := slices.Index(g.Permissions, p)
	if idx < 0 {
		return false
	}
	g.Permissions = slices.Delete(g.Permissions, idx, idx+1)
	return true
}

// Clone returns a deep copy.
func (g *Grant) Clone() *Grant {
	c := *g
	c.Permissions = slices.Clone(g.Permissions)
	return &c
}

// PermissionNames renders the permission set for audit details.
func (g *Grant) PermissionNames() string {
	names := make([]string, len(g.Permissions))
	for i, p := range g.Permissions {
		names[i] = string(p)
	}
	return strings.Join(names, ",")
}
