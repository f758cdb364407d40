package user

import (
	"context"
	"slices"
	"time"
)

type Role string

const (
	RoleAdministrador Role = "administrador" // Manages users, coordinations and settings
	RoleCoordenador   Role = "coordenador"   // Reviews members of their coordinations
	RoleColaborador   Role = "colaborador"   // Clocks in and files absences
)

// Roles lists every role in hierarchy order.
var Roles = []Role{RoleAdministrador, RoleCoordenador, RoleColaborador}

func (r Role) IsValid() bool {
	return slices.Contains(Roles, r)
}

// LandingPath is the default view a client opens for the role.
func (r Role) LandingPath() string {
	switch r {
	case RoleAdministrador:
		return "/admin"
	case RoleCoordenador:
		return "/coordenacao"
	default:
		return "/colaborador"
	}
}

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusPending  Status = "pending" // signed in but not yet approved by an administrator
)

func (s Status) IsValid() bool {
	return s == StatusActive || s == StatusInactive || s == StatusPending
}

type User struct {
	ID              string
	Email           string
	Name            string
	Roles           []Role
	ActiveRole      Role
	Status          Status
	IsTeacher       bool
	CoordinationIDs []string
	PasswordHash    *string
	GoogleID        *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (u *User) IsActive() bool {
	return u.Status == StatusActive
}

// HasRole reports whether role was assigned to u, regardless of the active role.
func (u *User) HasRole(role Role) bool {
	return slices.Contains(u.Roles, role)
}

// SwitchRole makes role the active role. Only assigned roles can be activated.
func (u *User) SwitchRole(role Role) error {
	if !role.IsValid() {
		return ErrInvalidRole
	}
	if !u.HasRole(role) {
		return ErrRoleNotAssigned
	}
	u.ActiveRole = role
	return nil
}

func (u *User) InCoordination(coordinationID string) bool {
	return slices.Contains(u.CoordinationIDs, coordinationID)
}

// HighestRole returns the most privileged assigned role. It is the active role
// given to a user whose current one was revoked.
func (u *User) HighestRole() Role {
	for _, r := range Roles {
		if u.HasRole(r) {
			return r
		}
	}
	return RoleColaborador
}

// Scope is the set of employees a viewer may see or act upon.
type Scope struct {
	All    bool
	Emails []string
}

func (s Scope) Includes(email string) bool {
	return s.All || slices.Contains(s.Emails, email)
}

// ScopeResolver computes the team visible to a viewer in its active role.
type ScopeResolver interface {
	TeamScope(ctx context.Context, viewer User) (Scope, error)
}

type contextKey struct{}

// NewContext returns a copy of ctx carrying the authenticated user.
func NewContext(ctx context.Context, u User) context.Context {
	return context.WithValue(ctx, contextKey{}, u)
}

// FromContext returns the user stored by NewContext.
func FromContext(ctx context.Context) (User, bool) {
	u, ok := ctx.Value(contextKey{}).(User)
	return u, ok
}
