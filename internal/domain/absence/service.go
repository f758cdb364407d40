package absence

import (
	"context"

	"github.com/ponto-escolar/ponto-backend-go/internal/domain/user"
)

type AbsenceService interface {
	Submit(ctx context.Context, actor user.User, req SubmitRequest) (AbsenceResponse, error)
	Review(ctx context.Context, reviewer user.User, req ReviewRequest) (AbsenceResponse, error)
	// Get returns a request the viewer owns or may see through their team.
	Get(ctx context.Context, viewer user.User, id string) (AbsenceResponse, error)
	MyRequests(ctx context.Context, actor user.User, filter AbsenceFilter) (ListAbsenceResponse, error)
	List(ctx context.Context, viewer user.User, filter AbsenceFilter) (ListAbsenceResponse, error)
}
