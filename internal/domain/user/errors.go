package user

import "errors"

var (
	ErrUserNotFound            = errors.New("user not found")
	ErrUserEmailExists         = errors.New("email already registered")
	ErrInvalidRole             = errors.New("invalid role")
	ErrRoleNotAssigned         = errors.New("role is not assigned to this user")
	ErrUserInactive            = errors.New("user account is not active")
	ErrInsufficientPermissions = errors.New("insufficient permissions")
	ErrOutsideCoordination     = errors.New("employee is not a member of your coordinations")
	ErrCannotModifySelf        = errors.New("administrators cannot deactivate or demote themselves")
)
