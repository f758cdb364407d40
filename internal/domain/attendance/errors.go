package attendance

import (
	"errors"
	"fmt"

	"github.com/ponto-escolar/ponto-backend-go/internal/pkg/geo"
)

// Attendance domain errors
var (
	ErrRecordNotFound     = errors.New("attendance record not found")
	ErrInvalidCheckpoint  = errors.New("invalid checkpoint")
	ErrAlreadyRecorded    = errors.New("this checkpoint has already been recorded today")
	ErrRecordClosed       = errors.New("you have already clocked out today")
	ErrPredecessorMissing = errors.New("a previous checkpoint is missing")
	ErrOutOfOrder         = errors.New("checkpoint is out of order")
	ErrHTPNotAllowed      = errors.New("only teachers may record HTP")

	ErrLocationRequired   = errors.New("a location is required to record attendance")
	ErrOutsideAllowedArea = errors.New("you are outside the allowed area")
)

// PredecessorError names the checkpoint that must be recorded first.
type PredecessorError struct {
	Checkpoint Checkpoint
	Missing    Checkpoint
}

func (e *PredecessorError) Error() string {
	switch e.Missing {
	case CheckpointEntry:
		return "you have not clocked in yet"
	case CheckpointLunchStart:
		return "your lunch break has not started"
	case CheckpointLunchEnd:
		return "your lunch break has not ended"
	case CheckpointHTPStart:
		return "your HTP has not started"
	case CheckpointHTPEnd:
		return "your HTP has not ended"
	}
	return fmt.Sprintf("%s requires %s first", e.Checkpoint, e.Missing)
}

func (e *PredecessorError) Is(target error) bool {
	return target == ErrPredecessorMissing
}

// GateError is a clock action refused by the geolocation gate. It matches
// ErrLocationRequired when no usable fix was available and
// ErrOutsideAllowedArea when the fix was too far from the workplace.
type GateError struct {
	Decision geo.Decision
}

func (e *GateError) Error() string {
	if e.Decision.Reason == geo.ReasonOutsideRadius && e.Decision.DistanceMeters != nil {
		return fmt.Sprintf("%s (%.0f m from the workplace)", ErrOutsideAllowedArea, *e.Decision.DistanceMeters)
	}
	return fmt.Sprintf("%s: %s", ErrLocationRequired, e.Decision.Reason)
}

func (e *GateError) Is(target error) bool {
	if e.Decision.Reason == geo.ReasonOutsideRadius {
		return target == ErrOutsideAllowedArea
	}
	return target == ErrLocationRequired
}
