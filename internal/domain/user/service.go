package user

import "context"

type UserService interface {
	Me(ctx context.Context, actor User) (UserResponse, error)
	SwitchRole(ctx context.Context, actor User, req SwitchRoleRequest) (UserResponse, error)

	Create(ctx context.Context, req CreateUserRequest) (UserResponse, error)
	Update(ctx context.Context, actor User, req UpdateUserRequest) (UserResponse, error)
	UpdateStatus(ctx context.Context, actor User, req UpdateStatusRequest) (UserResponse, error)
	SetPassword(ctx context.Context, req SetPasswordRequest) error

	// Get and List are scoped: coordinators only see members of their coordinations.
	Get(ctx context.Context, viewer User, id string) (UserResponse, error)
	List(ctx context.Context, viewer User, filter ListUsersFilter) (ListUsersResponse, error)
}
