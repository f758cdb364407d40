package coordination

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ponto-escolar/ponto-backend-go/internal/domain/coordination"
	"github.com/ponto-escolar/ponto-backend-go/internal/domain/user"
	"github.com/ponto-escolar/ponto-backend-go/internal/repository/postgresql"
)

type CoordinationServiceImpl struct {
	tx postgresql.Transactor
	coordination.CoordinationRepository
	userRepo user.UserRepository
}

func NewCoordinationService(tx postgresql.Transactor, coordinationRepo coordination.CoordinationRepository, userRepo user.UserRepository) coordination.CoordinationService {
	return &CoordinationServiceImpl{
		tx:                     tx,
		CoordinationRepository: coordinationRepo,
		userRepo:               userRepo,
	}
}

// TeamScope implements user.ScopeResolver. Administrators see everyone,
// coordinators the members of the coordinations they review, anyone else
// only themselves.
func (s *CoordinationServiceImpl) TeamScope(ctx context.Context, viewer user.User) (user.Scope, error) {
	if !viewer.IsActive() || !viewer.HasRole(viewer.ActiveRole) {
		return user.Scope{Emails: []string{}}, nil
	}

	switch viewer.ActiveRole {
	case user.RoleAdministrador:
		return user.Scope{All: true}, nil
	case user.RoleCoordenador:
		coordinations, err := s.CoordinationRepository.ListByCoordinator(ctx, viewer.Email)
		if err != nil {
			return user.Scope{}, fmt.Errorf("failed to load coordinations of %s: %w", viewer.Email, err)
		}
		emails := []string{}
		if len(coordinations) == 0 {
			return user.Scope{Emails: emails}, nil
		}

		ids := make([]string, 0, len(coordinations))
		for _, c := range coordinations {
			ids = append(ids, c.ID)
		}
		members, err := s.userRepo.ListByCoordinations(ctx, ids)
		if err != nil {
			return user.Scope{}, fmt.Errorf("failed to load coordination members: %w", err)
		}
		for _, m := range members {
			emails = append(emails, m.Email)
		}
		return user.Scope{Emails: emails}, nil
	default:
		return user.Scope{Emails: []string{viewer.Email}}, nil
	}
}

// checkCoordinators requires every email to belong to a user holding the
// coordenador role.
func (s *CoordinationServiceImpl) checkCoordinators(ctx context.Context, emails []string) error {
	if len(emails) == 0 {
		return nil
	}
	users, err := s.userRepo.ListByEmails(ctx, emails)
	if err != nil {
		return fmt.Errorf("failed to load coordinators: %w", err)
	}

	eligible := make(map[string]bool, len(users))
	for _, u := range users {
		eligible[u.Email] = u.HasRole(user.RoleCoordenador)
	}
	for _, e := range emails {
		if !eligible[e] {
			return fmt.Errorf("%w: %s", coordination.ErrCoordinatorRoleMissing, e)
		}
	}
	return nil
}

// Create implements coordination.CoordinationService.
func (s *CoordinationServiceImpl) Create(ctx context.Context, req coordination.CreateCoordinationRequest) (coordination.CoordinationResponse, error) {
	if err := req.Validate(); err != nil {
		return coordination.CoordinationResponse{}, err
	}
	if err := s.checkCoordinators(ctx, req.CoordinatorEmails); err != nil {
		return coordination.CoordinationResponse{}, err
	}

	created, err := s.CoordinationRepository.Create(ctx, coordination.Coordination{
		Name:              req.Name,
		Description:       req.Description,
		CoordinatorEmails: req.CoordinatorEmails,
	})
	if err != nil {
		return coordination.CoordinationResponse{}, err
	}

	slog.Info("Coordination created", "id", created.ID, "name", created.Name)
	return coordination.ToResponse(created), nil
}

// Update implements coordination.CoordinationService.
func (s *CoordinationServiceImpl) Update(ctx context.Context, req coordination.UpdateCoordinationRequest) (coordination.CoordinationResponse, error) {
	if err := req.Validate(); err != nil {
		return coordination.CoordinationResponse{}, err
	}

	current, err := s.CoordinationRepository.GetByID(ctx, req.ID)
	if err != nil {
		return coordination.CoordinationResponse{}, err
	}
	if req.Name != nil {
		current.Name = *req.Name
	}
	if req.Description != nil {
		current.Description = *req.Description
	}
	if req.CoordinatorEmails != nil {
		if err := s.checkCoordinators(ctx, *req.CoordinatorEmails); err != nil {
			return coordination.CoordinationResponse{}, err
		}
		current.CoordinatorEmails = *req.CoordinatorEmails
	}

	updated, err := s.CoordinationRepository.Update(ctx, current)
	if err != nil {
		return coordination.CoordinationResponse{}, err
	}
	return coordination.ToResponse(updated), nil
}

// Delete implements coordination.CoordinationService. Only coordinations
// without members can be deleted.
func (s *CoordinationServiceImpl) Delete(ctx context.Context, id string) error {
	return s.tx.WithinTx(ctx, func(txCtx context.Context) error {
		if _, err := s.CoordinationRepository.GetByID(txCtx, id); err != nil {
			return err
		}
		members, err := s.userRepo.ListByCoordinations(txCtx, []string{id})
		if err != nil {
			return fmt.Errorf("failed to load coordination members: %w", err)
		}
		if len(members) > 0 {
			return coordination.ErrCoordinationNotEmpty
		}
		if err := s.CoordinationRepository.Delete(txCtx, id); err != nil {
			return err
		}
		slog.Info("Coordination deleted", "id", id)
		return nil
	})
}

// visible loads a coordination the viewer may read.
func (s *CoordinationServiceImpl) visible(ctx context.Context, viewer user.User, id string) (coordination.Coordination, error) {
	c, err := s.CoordinationRepository.GetByID(ctx, id)
	if err != nil {
		return coordination.Coordination{}, err
	}
	if user.HasPermission(viewer, user.PermissionCoordinationManage) {
		return c, nil
	}
	if !c.IsCoordinator(viewer.Email) {
		return coordination.Coordination{}, user.ErrOutsideCoordination
	}
	return c, nil
}

// Get implements coordination.CoordinationService.
func (s *CoordinationServiceImpl) Get(ctx context.Context, viewer user.User, id string) (coordination.CoordinationResponse, error) {
	c, err := s.visible(ctx, viewer, id)
	if err != nil {
		return coordination.CoordinationResponse{}, err
	}
	return coordination.ToResponse(c), nil
}

// List implements coordination.CoordinationService.
func (s *CoordinationServiceImpl) List(ctx context.Context, viewer user.User) ([]coordination.CoordinationResponse, error) {
	var (
		coordinations []coordination.Coordination
		err           error
	)
	if user.HasPermission(viewer, user.PermissionCoordinationManage) {
		coordinations, err = s.CoordinationRepository.List(ctx)
	} else {
		coordinations, err = s.CoordinationRepository.ListByCoordinator(ctx, viewer.Email)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list coordinations: %w", err)
	}

	responses := make([]coordination.CoordinationResponse, 0, len(coordinations))
	for _, c := range coordinations {
		responses = append(responses, coordination.ToResponse(c))
	}
	return responses, nil
}

// Members implements coordination.CoordinationService.
func (s *CoordinationServiceImpl) Members(ctx context.Context, viewer user.User, id string) ([]user.UserResponse, error) {
	if _, err := s.visible(ctx, viewer, id); err != nil {
		return nil, err
	}

	members, err := s.userRepo.ListByCoordinations(ctx, []string{id})
	if err != nil {
		return nil, fmt.Errorf("failed to list coordination members: %w", err)
	}

	responses := make([]user.UserResponse, 0, len(members))
	for _, m := range members {
		responses = append(responses, user.ToResponse(m))
	}
	return responses, nil
}
