package coordination

import "context"

type CoordinationRepository interface {
	Create(ctx context.Context, c Coordination) (Coordination, error)
	GetByID(ctx context.Context, id string) (Coordination, error)
	Update(ctx context.Context, c Coordination) (Coordination, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]Coordination, error)
	// ListByCoordinator returns the coordinations email reviews.
	ListByCoordinator(ctx context.Context, email string) ([]Coordination, error)
}
