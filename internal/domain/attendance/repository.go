package attendance

import (
	"context"
)

// AttendanceRepository defines data access methods for attendance records.
type AttendanceRepository interface {
	// Create inserts the first record of an employee's day. A record already
	// present for (employee, date) yields ErrAlreadyRecorded.
	Create(ctx context.Context, record Record) (Record, error)

	// Update writes the checkpoints of record only if its stored version still
	// equals record.Version, and returns it with the next version. A lost
	// race yields ErrAlreadyRecorded.
	Update(ctx context.Context, record Record) (Record, error)

	GetByID(ctx context.Context, id string) (Record, error)

	// GetByEmployeeAndDate returns nil when the employee has no record that day.
	GetByEmployeeAndDate(ctx context.Context, employeeEmail string, date string) (*Record, error)

	// List applies the filter; a filter with Limit 0 returns every match.
	List(ctx context.Context, filter AttendanceFilter) ([]Record, int64, error)

	Delete(ctx context.Context, id string) error
}
