package user

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"slices"

	"github.com/ponto-escolar/ponto-backend-go/internal/domain/coordination"
	"github.com/ponto-escolar/ponto-backend-go/internal/domain/user"
	"github.com/ponto-escolar/ponto-backend-go/internal/pkg/email"
	"golang.org/x/crypto/bcrypt"
)

type UserServiceImpl struct {
	user.UserRepository
	coordinationRepo coordination.CoordinationRepository
	scopeResolver    user.ScopeResolver
	emailService     email.EmailService
	loginURL         string
}

func NewUserService(
	userRepo user.UserRepository,
	coordinationRepo coordination.CoordinationRepository,
	scopeResolver user.ScopeResolver,
	emailService email.EmailService,
	loginURL string,
) user.UserService {
	return &UserServiceImpl{
		UserRepository:   userRepo,
		coordinationRepo: coordinationRepo,
		scopeResolver:    scopeResolver,
		emailService:     emailService,
		loginURL:         loginURL,
	}
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func withPermissions(u user.User) user.UserResponse {
	resp := user.ToResponse(u)
	resp.Permissions = user.Permissions(u)
	return resp
}

// Me implements user.UserService.
func (s *UserServiceImpl) Me(ctx context.Context, actor user.User) (user.UserResponse, error) {
	return withPermissions(actor), nil
}

// SwitchRole implements user.UserService.
func (s *UserServiceImpl) SwitchRole(ctx context.Context, actor user.User, req user.SwitchRoleRequest) (user.UserResponse, error) {
	if err := req.Validate(); err != nil {
		return user.UserResponse{}, err
	}
	if err := actor.SwitchRole(user.Role(req.Role)); err != nil {
		return user.UserResponse{}, err
	}
	if err := s.UserRepository.UpdateActiveRole(ctx, actor.ID, actor.ActiveRole); err != nil {
		return user.UserResponse{}, err
	}

	slog.Info("Active role switched", "email", actor.Email, "role", actor.ActiveRole)
	return withPermissions(actor), nil
}

func (s *UserServiceImpl) checkCoordinations(ctx context.Context, ids []string) error {
	for _, id := range ids {
		if _, err := s.coordinationRepo.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// Create implements user.UserService. Users created by an administrator are
// active immediately.
func (s *UserServiceImpl) Create(ctx context.Context, req user.CreateUserRequest) (user.UserResponse, error) {
	if err := req.Validate(); err != nil {
		return user.UserResponse{}, err
	}

	exists, err := s.UserRepository.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return user.UserResponse{}, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return user.UserResponse{}, user.ErrUserEmailExists
	}
	if err := s.checkCoordinations(ctx, req.CoordinationIDs); err != nil {
		return user.UserResponse{}, err
	}

	newUser := user.User{
		Email:           req.Email,
		Name:            req.Name,
		Roles:           user.ToRoles(req.Roles),
		Status:          user.StatusActive,
		IsTeacher:       req.IsTeacher,
		CoordinationIDs: req.CoordinationIDs,
	}
	newUser.ActiveRole = newUser.HighestRole()
	if req.Password != nil {
		hash, err := hashPassword(*req.Password)
		if err != nil {
			return user.UserResponse{}, err
		}
		newUser.PasswordHash = &hash
	}

	created, err := s.UserRepository.Create(ctx, newUser)
	if err != nil {
		return user.UserResponse{}, err
	}

	slog.Info("User created", "id", created.ID, "email", created.Email, "roles", created.Roles)
	return user.ToResponse(created), nil
}

// Update implements user.UserService.
func (s *UserServiceImpl) Update(ctx context.Context, actor user.User, req user.UpdateUserRequest) (user.UserResponse, error) {
	if err := req.Validate(); err != nil {
		return user.UserResponse{}, err
	}

	target, err := s.UserRepository.GetByID(ctx, req.ID)
	if err != nil {
		return user.UserResponse{}, err
	}

	if req.Name != nil {
		target.Name = *req.Name
	}
	if req.IsTeacher != nil {
		target.IsTeacher = *req.IsTeacher
	}
	if req.CoordinationIDs != nil {
		if err := s.checkCoordinations(ctx, *req.CoordinationIDs); err != nil {
			return user.UserResponse{}, err
		}
		target.CoordinationIDs = *req.CoordinationIDs
	}
	if req.Roles != nil {
		roles := user.ToRoles(*req.Roles)
		if target.ID == actor.ID && actor.HasRole(user.RoleAdministrador) && !slices.Contains(roles, user.RoleAdministrador) {
			return user.UserResponse{}, user.ErrCannotModifySelf
		}
		target.Roles = roles
		if !target.HasRole(target.ActiveRole) {
			target.ActiveRole = target.HighestRole()
		}
	}

	updated, err := s.UserRepository.Update(ctx, target)
	if err != nil {
		return user.UserResponse{}, err
	}
	return user.ToResponse(updated), nil
}

// UpdateStatus implements user.UserService. Activating an account notifies
// its owner by email.
func (s *UserServiceImpl) UpdateStatus(ctx context.Context, actor user.User, req user.UpdateStatusRequest) (user.UserResponse, error) {
	if err := req.Validate(); err != nil {
		return user.UserResponse{}, err
	}
	status := user.Status(req.Status)
	if req.ID == actor.ID && status != user.StatusActive {
		return user.UserResponse{}, user.ErrCannotModifySelf
	}

	target, err := s.UserRepository.GetByID(ctx, req.ID)
	if err != nil {
		return user.UserResponse{}, err
	}
	previous := target.Status
	target.Status = status

	updated, err := s.UserRepository.Update(ctx, target)
	if err != nil {
		return user.UserResponse{}, err
	}

	slog.Info("User status changed", "email", updated.Email, "from", previous, "to", updated.Status, "by", actor.Email)

	if previous != user.StatusActive && updated.IsActive() && s.emailService != nil {
		if err := s.emailService.SendAccountActivated(ctx, updated.Email, updated.Name, s.loginURL); err != nil {
			slog.Error("Failed to send activation email", "email", updated.Email, "error", err)
		}
	}
	return user.ToResponse(updated), nil
}

// SetPassword implements user.UserService.
func (s *UserServiceImpl) SetPassword(ctx context.Context, req user.SetPasswordRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	hash, err := hashPassword(req.Password)
	if err != nil {
		return err
	}
	return s.UserRepository.UpdatePassword(ctx, req.ID, hash)
}

// Get implements user.UserService.
func (s *UserServiceImpl) Get(ctx context.Context, viewer user.User, id string) (user.UserResponse, error) {
	target, err := s.UserRepository.GetByID(ctx, id)
	if err != nil {
		return user.UserResponse{}, err
	}

	scope, err := s.scopeResolver.TeamScope(ctx, viewer)
	if err != nil {
		return user.UserResponse{}, err
	}
	if !scope.Includes(target.Email) && target.ID != viewer.ID {
		return user.UserResponse{}, user.ErrOutsideCoordination
	}
	return user.ToResponse(target), nil
}

// List implements user.UserService.
func (s *UserServiceImpl) List(ctx context.Context, viewer user.User, filter user.ListUsersFilter) (user.ListUsersResponse, error) {
	if err := filter.Validate(); err != nil {
		return user.ListUsersResponse{}, err
	}

	scope, err := s.scopeResolver.TeamScope(ctx, viewer)
	if err != nil {
		return user.ListUsersResponse{}, err
	}
	if !scope.All {
		filter.Emails = scope.Emails
	}

	users, total, err := s.UserRepository.List(ctx, filter)
	if err != nil {
		return user.ListUsersResponse{}, fmt.Errorf("failed to list users: %w", err)
	}

	responses := make([]user.UserResponse, 0, len(users))
	for _, u := range users {
		responses = append(responses, user.ToResponse(u))
	}

	return user.ListUsersResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
		Users:      responses,
	}, nil
}
