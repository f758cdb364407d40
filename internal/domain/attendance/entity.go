package attendance

import (
	"time"
)

// Checkpoint names one of the six clock actions of a workday.
type Checkpoint string

const (
	CheckpointEntry      Checkpoint = "entry"
	CheckpointLunchStart Checkpoint = "lunch_start"
	CheckpointLunchEnd   Checkpoint = "lunch_end"
	CheckpointHTPStart   Checkpoint = "htp_start"
	CheckpointHTPEnd     Checkpoint = "htp_end"
	CheckpointExit       Checkpoint = "exit"
)

// Checkpoints in the order they are recorded during a day.
var Checkpoints = []Checkpoint{
	CheckpointEntry,
	CheckpointLunchStart,
	CheckpointLunchEnd,
	CheckpointHTPStart,
	CheckpointHTPEnd,
	CheckpointExit,
}

func (c Checkpoint) IsValid() bool {
	for _, cp := range Checkpoints {
		if cp == c {
			return true
		}
	}
	return false
}

// IsHTP reports whether the checkpoint belongs to the teacher-only HTP pair.
func (c Checkpoint) IsHTP() bool {
	return c == CheckpointHTPStart || c == CheckpointHTPEnd
}

// Location is the device fix captured with a checkpoint.
type Location struct {
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	AccuracyMeters float64 `json:"accuracy_meters"`
}

// Flag is a workday rule warning computed on exit.
type Flag string

const (
	FlagLunchTooShort       Flag = "lunch_too_short"
	FlagLunchTooLong        Flag = "lunch_too_long"
	FlagExceedsMaxWorkday   Flag = "exceeds_max_workday"
	FlagBelowDefaultWorkday Flag = "below_default_workday"
)

// Record is the attendance of one employee on one calendar day.
// Date is YYYY-MM-DD and checkpoint times are HH:MM, both in the workplace timezone.
type Record struct {
	ID                  string
	EmployeeEmail       string
	Date                string
	EntryTime           *string
	LunchStartTime      *string
	LunchEndTime        *string
	HTPStartTime        *string
	HTPEndTime          *string
	ExitTime            *string
	TotalWorkedDuration *string
	LunchDuration       *string
	Locations           map[Checkpoint]Location
	Flags               []Flag
	Version             int
	CreatedAt           time.Time
	UpdatedAt           time.Time

	// DTO / Join
	EmployeeName *string
}

// Time returns the value recorded for cp, or nil.
func (r *Record) Time(cp Checkpoint) *string {
	switch cp {
	case CheckpointEntry:
		return r.EntryTime
	case CheckpointLunchStart:
		return r.LunchStartTime
	case CheckpointLunchEnd:
		return r.LunchEndTime
	case CheckpointHTPStart:
		return r.HTPStartTime
	case CheckpointHTPEnd:
		return r.HTPEndTime
	case CheckpointExit:
		return r.ExitTime
	}
	return nil
}

func (r *Record) setTime(cp Checkpoint, at string) {
	v := at
	switch cp {
	case CheckpointEntry:
		r.EntryTime = &v
	case CheckpointLunchStart:
		r.LunchStartTime = &v
	case CheckpointLunchEnd:
		r.LunchEndTime = &v
	case CheckpointHTPStart:
		r.HTPStartTime = &v
	case CheckpointHTPEnd:
		r.HTPEndTime = &v
	case CheckpointExit:
		r.ExitTime = &v
	}
}

// IsNew reports whether the record has not been persisted yet.
func (r *Record) IsNew() bool {
	return r.ID == ""
}

// WorkdayRules are the workday limits a closed record is checked against.
type WorkdayRules struct {
	DefaultHours    int
	MaxHours        int
	LunchMinMinutes int
	LunchMaxMinutes int
}
