package user

import (
	"context"
)

type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByID(ctx context.Context, id string) (User, error)
	Create(ctx context.Context, newUser User) (User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	LinkGoogleAccount(ctx context.Context, googleID string, email string) (User, error)
	// Update persists name, roles, active role, status, teacher flag and coordinations.
	Update(ctx context.Context, u User) (User, error)
	UpdateActiveRole(ctx context.Context, id string, role Role) error
	UpdatePassword(ctx context.Context, id string, passwordHash string) error
	List(ctx context.Context, filter ListUsersFilter) ([]User, int64, error)
	ListByCoordinations(ctx context.Context, coordinationIDs []string) ([]User, error)
	ListByEmails(ctx context.Context, emails []string) ([]User, error)
}
