package coordination

import (
	"context"

	"github.com/ponto-escolar/ponto-backend-go/internal/domain/user"
)

type CoordinationService interface {
	Create(ctx context.Context, req CreateCoordinationRequest) (CoordinationResponse, error)
	Update(ctx context.Context, req UpdateCoordinationRequest) (CoordinationResponse, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, viewer user.User, id string) (CoordinationResponse, error)
	// List returns every coordination to administrators and the reviewed ones to coordinators.
	List(ctx context.Context, viewer user.User) ([]CoordinationResponse, error)
	Members(ctx context.Context, viewer user.User, id string) ([]user.UserResponse, error)

	user.ScopeResolver
}
