package attendance

import (
	"fmt"

	"github.com/ponto-escolar/ponto-backend-go/internal/pkg/worktime"
)

// State is the position of a record in the workday state machine.
type State string

const (
	StateNoRecord   State = "no_record"
	StateEntered    State = "entered"
	StateOnLunch    State = "on_lunch"
	StateAfterLunch State = "after_lunch"
	StateOnHTP      State = "on_htp"
	StateAfterHTP   State = "after_htp"
	StateExited     State = "exited"
)

// StateOf derives the state from the checkpoints set on r. A nil record is NoRecord.
func StateOf(r *Record) State {
	switch {
	case r == nil || r.EntryTime == nil:
		return StateNoRecord
	case r.ExitTime != nil:
		return StateExited
	case r.HTPStartTime != nil && r.HTPEndTime == nil:
		return StateOnHTP
	case r.HTPEndTime != nil:
		return StateAfterHTP
	case r.LunchStartTime != nil && r.LunchEndTime == nil:
		return StateOnLunch
	case r.LunchEndTime != nil:
		return StateAfterLunch
	default:
		return StateEntered
	}
}

// Check reports whether cp may be recorded next on r, without changing it.
// A nil record is treated as NoRecord.
func Check(r *Record, cp Checkpoint) error {
	if !cp.IsValid() {
		return ErrInvalidCheckpoint
	}
	if r == nil {
		r = &Record{}
	}
	if r.Time(cp) != nil {
		return ErrAlreadyRecorded
	}
	if r.ExitTime != nil {
		return ErrRecordClosed
	}

	missing := func(m Checkpoint) error {
		return &PredecessorError{Checkpoint: cp, Missing: m}
	}

	switch cp {
	case CheckpointLunchStart:
		if r.EntryTime == nil {
			return missing(CheckpointEntry)
		}
		// the lunch pair comes before the HTP pair
		if r.HTPStartTime != nil {
			return ErrOutOfOrder
		}
	case CheckpointLunchEnd:
		if r.LunchStartTime == nil {
			return missing(CheckpointLunchStart)
		}
	case CheckpointHTPStart:
		if r.EntryTime == nil {
			return missing(CheckpointEntry)
		}
		if r.LunchStartTime != nil && r.LunchEndTime == nil {
			return missing(CheckpointLunchEnd)
		}
	case CheckpointHTPEnd:
		if r.HTPStartTime == nil {
			return missing(CheckpointHTPStart)
		}
	case CheckpointExit:
		if r.EntryTime == nil {
			return missing(CheckpointEntry)
		}
		if r.LunchStartTime != nil && r.LunchEndTime == nil {
			return missing(CheckpointLunchEnd)
		}
		if r.HTPStartTime != nil && r.HTPEndTime == nil {
			return missing(CheckpointHTPEnd)
		}
	}
	return nil
}

// NextCheckpoints lists what may be recorded next. HTP is offered only when
// allowHTP is set.
func NextCheckpoints(r *Record, allowHTP bool) []Checkpoint {
	next := []Checkpoint{}
	for _, cp := range Checkpoints {
		if cp.IsHTP() && !allowHTP {
			continue
		}
		if Check(r, cp) == nil {
			next = append(next, cp)
		}
	}
	return next
}

// Apply records cp at the wall-clock time at ("HH:MM") on r. A new day starts
// from an empty Record. The record is left untouched when the transition is
// rejected. On exit the lunch and worked durations are derived.
func Apply(r *Record, cp Checkpoint, at string, loc *Location) error {
	if err := Check(r, cp); err != nil {
		return err
	}

	now, err := worktime.ParseClock(at)
	if err != nil {
		return err
	}
	for _, prev := range Checkpoints {
		t := r.Time(prev)
		if t == nil {
			continue
		}
		m, err := worktime.ParseClock(*t)
		if err != nil {
			return fmt.Errorf("stored %s time: %w", prev, err)
		}
		if now < m {
			return ErrOutOfOrder
		}
	}

	next := *r
	next.setTime(cp, at)
	if loc != nil {
		locations := make(map[Checkpoint]Location, len(r.Locations)+1)
		for k, v := range r.Locations {
			locations[k] = v
		}
		locations[cp] = *loc
		next.Locations = locations
	}

	if cp == CheckpointExit {
		if err := summarize(&next); err != nil {
			return err
		}
	}

	*r = next
	return nil
}

// summarize fills the derived durations of a record that has just been closed.
// HTP is paid time and stays inside the worked total.
func summarize(r *Record) error {
	gross, err := worktime.Elapsed(*r.EntryTime, *r.ExitTime)
	if err != nil {
		return err
	}

	worked := gross
	if r.LunchStartTime != nil && r.LunchEndTime != nil {
		lunch, err := worktime.Elapsed(*r.LunchStartTime, *r.LunchEndTime)
		if err != nil {
			return err
		}
		if worked, err = worktime.Subtract(gross, lunch); err != nil {
			return err
		}
		lunchStr := lunch.String()
		r.LunchDuration = &lunchStr
	}

	workedStr := worked.String()
	r.TotalWorkedDuration = &workedStr
	return nil
}

// EvaluateFlags checks a closed record against the workday rules. Open
// records have no flags.
func EvaluateFlags(r *Record, rules WorkdayRules) []Flag {
	flags := []Flag{}
	if r == nil || r.TotalWorkedDuration == nil {
		return flags
	}

	if r.LunchDuration != nil {
		if lunch, err := worktime.ParseDuration(*r.LunchDuration); err == nil {
			if rules.LunchMinMinutes > 0 && lunch.TotalMinutes() < rules.LunchMinMinutes {
				flags = append(flags, FlagLunchTooShort)
			}
			if rules.LunchMaxMinutes > 0 && lunch.TotalMinutes() > rules.LunchMaxMinutes {
				flags = append(flags, FlagLunchTooLong)
			}
		}
	}

	worked, err := worktime.ParseDuration(*r.TotalWorkedDuration)
	if err != nil {
		return flags
	}
	if rules.MaxHours > 0 && worked.TotalMinutes() > rules.MaxHours*60 {
		flags = append(flags, FlagExceedsMaxWorkday)
	}
	if rules.DefaultHours > 0 && worked.TotalMinutes() < rules.DefaultHours*60 {
		flags = append(flags, FlagBelowDefaultWorkday)
	}
	return flags
}
