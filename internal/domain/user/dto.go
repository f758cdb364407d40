package user

import (
	"slices"
	"time"

	"github.com/ponto-escolar/ponto-backend-go/internal/pkg/validator"
)

// UserResponse represents user data in API responses
type UserResponse struct {
	ID              string       `json:"id"`
	Email           string       `json:"email"`
	Name            string       `json:"name"`
	Roles           []Role       `json:"roles"`
	ActiveRole      Role         `json:"active_role"`
	Status          Status       `json:"status"`
	IsTeacher       bool         `json:"is_teacher"`
	CoordinationIDs []string     `json:"coordination_ids"`
	HasPassword     bool         `json:"has_password"`
	LandingPath     string       `json:"landing_path"`
	Permissions     []Permission `json:"permissions,omitempty"`
	CreatedAt       string       `json:"created_at"`
	UpdatedAt       string       `json:"updated_at"`
}

func ToResponse(u User) UserResponse {
	coordinationIDs := u.CoordinationIDs
	if coordinationIDs == nil {
		coordinationIDs = []string{}
	}
	return UserResponse{
		ID:              u.ID,
		Email:           u.Email,
		Name:            u.Name,
		Roles:           u.Roles,
		ActiveRole:      u.ActiveRole,
		Status:          u.Status,
		IsTeacher:       u.IsTeacher,
		CoordinationIDs: coordinationIDs,
		HasPassword:     u.PasswordHash != nil,
		LandingPath:     u.ActiveRole.LandingPath(),
		CreatedAt:       u.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       u.UpdatedAt.Format(time.RFC3339),
	}
}

// CreateUserRequest represents request to create a new user
type CreateUserRequest struct {
	Email           string   `json:"email"`
	Name            string   `json:"name"`
	Roles           []string `json:"roles"`
	IsTeacher       bool     `json:"is_teacher"`
	CoordinationIDs []string `json:"coordination_ids"`
	Password        *string  `json:"password,omitempty"`
}

func (r *CreateUserRequest) Validate() error {
	var errs validator.ValidationErrors

	r.Email = validator.NormalizeEmail(r.Email)
	if validator.IsEmpty(r.Email) {
		errs.Add("email", "email is required")
	} else if !validator.IsValidEmail(r.Email) {
		errs.Add("email", "invalid email format")
	}

	if validator.IsEmpty(r.Name) {
		errs.Add("name", "name is required")
	} else if len(r.Name) > 255 {
		errs.Add("name", "name must not exceed 255 characters")
	}

	validateRoles(&errs, r.Roles)
	validateCoordinationIDs(&errs, r.CoordinationIDs)

	if r.Password != nil && len(*r.Password) < 8 {
		errs.Add("password", "password must be at least 8 characters")
	}

	return errs.Err()
}

// UpdateUserRequest represents request to update user
type UpdateUserRequest struct {
	ID              string    `json:"-"`
	Name            *string   `json:"name,omitempty"`
	Roles           *[]string `json:"roles,omitempty"`
	IsTeacher       *bool     `json:"is_teacher,omitempty"`
	CoordinationIDs *[]string `json:"coordination_ids,omitempty"`
}

func (r *UpdateUserRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.ID) {
		errs.Add("id", "invalid user id")
	}
	if r.Name != nil && validator.IsEmpty(*r.Name) {
		errs.Add("name", "name must not be empty")
	}
	if r.Roles != nil {
		validateRoles(&errs, *r.Roles)
	}
	if r.CoordinationIDs != nil {
		validateCoordinationIDs(&errs, *r.CoordinationIDs)
	}

	return errs.Err()
}

type UpdateStatusRequest struct {
	ID     string `json:"-"`
	Status string `json:"status"`
}

func (r *UpdateStatusRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.ID) {
		errs.Add("id", "invalid user id")
	}
	if !Status(r.Status).IsValid() {
		errs.Add("status", "status must be one of active, inactive, pending")
	}

	return errs.Err()
}

type SetPasswordRequest struct {
	ID       string `json:"-"`
	Password string `json:"password"`
}

func (r *SetPasswordRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.ID) {
		errs.Add("id", "invalid user id")
	}
	if len(r.Password) < 8 {
		errs.Add("password", "password must be at least 8 characters")
	} else if len(r.Password) > 72 {
		errs.Add("password", "password must not exceed 72 characters")
	}

	return errs.Err()
}

type SwitchRoleRequest struct {
	Role string `json:"role"`
}

func (r *SwitchRoleRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Role) {
		errs.Add("role", "role is required")
	} else if !Role(r.Role).IsValid() {
		errs.Add("role", "invalid role")
	}

	return errs.Err()
}

type ListUsersFilter struct {
	Status         *string
	Role           *string
	CoordinationID *string
	Search         *string
	// Emails restricts the result to a team. Nil means everyone.
	Emails []string
	Page   int
	Limit  int
}

func (f *ListUsersFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Status != nil && !Status(*f.Status).IsValid() {
		errs.Add("status", "status must be one of active, inactive, pending")
	}
	if f.Role != nil && !Role(*f.Role).IsValid() {
		errs.Add("role", "invalid role")
	}
	if f.CoordinationID != nil && !validator.IsValidUUID(*f.CoordinationID) {
		errs.Add("coordination_id", "invalid coordination id")
	}
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}

	return errs.Err()
}

func validateRoles(errs *validator.ValidationErrors, roles []string) {
	if len(roles) == 0 {
		errs.Add("roles", "at least one role is required")
		return
	}
	for _, r := range roles {
		if !Role(r).IsValid() {
			errs.Add("roles", "invalid role: "+r)
			return
		}
	}
}

func validateCoordinationIDs(errs *validator.ValidationErrors, ids []string) {
	for _, id := range ids {
		if !validator.IsValidUUID(id) {
			errs.Add("coordination_ids", "invalid coordination id: "+id)
			return
		}
	}
}

// ToRoles converts validated role names, dropping duplicates.
func ToRoles(names []string) []Role {
	roles := make([]Role, 0, len(names))
	for _, n := range names {
		r := Role(n)
		if !slices.Contains(roles, r) {
			roles = append(roles, r)
		}
	}
	return roles
}

type ListUsersResponse struct {
	TotalCount int64          `json:"total_count"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	TotalPages int            `json:"total_pages"`
	Users      []UserResponse `json:"users"`
}
