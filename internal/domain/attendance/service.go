package attendance

import (
	"context"

	"github.com/ponto-escolar/ponto-backend-go/internal/domain/user"
)

// AttendanceService defines business logic for attendance operations
type AttendanceService interface {
	// Record applies one clock action for the acting employee, now.
	Record(ctx context.Context, actor user.User, req RecordRequest) (RecordResult, error)

	// Today returns the actor's record for the current local date.
	Today(ctx context.Context, actor user.User) (TodayResponse, error)

	// MyHistory lists the actor's own records.
	MyHistory(ctx context.Context, actor user.User, filter AttendanceFilter) (ListAttendanceResponse, error)

	// List lists records visible to the viewer: everyone for administrators,
	// members of their coordinations for coordinators.
	List(ctx context.Context, viewer user.User, filter AttendanceFilter) (ListAttendanceResponse, error)

	// Export returns every record of the range visible to the viewer.
	Export(ctx context.Context, viewer user.User, filter ExportFilter) ([]Record, error)

	Delete(ctx context.Context, actor user.User, id string) error
}
