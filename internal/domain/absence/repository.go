package absence

import "context"

type AbsenceRepository interface {
	// Create fails with ErrDuplicateForDate when the employee already has a
	// request for the date.
	Create(ctx context.Context, req Request) (Request, error)
	GetByID(ctx context.Context, id string) (Request, error)
	ExistsForDate(ctx context.Context, employeeEmail string, date string) (bool, error)
	// UpdateReview persists a review only while the stored request is still
	// pending; otherwise it returns ErrNotPending.
	UpdateReview(ctx context.Context, req Request) (Request, error)
	List(ctx context.Context, filter AbsenceFilter) ([]Request, int64, error)
}
