// Package worktime does the wall-clock arithmetic of a workday: "HH:MM"
// checkpoints in, "Xh Ym" durations out. Everything here is pure.
package worktime

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const ClockLayout = "15:04"

var (
	ErrInvalidClock     = errors.New("time must be in HH:MM format")
	ErrInvalidDuration  = errors.New("duration must be in the form XhYm")
	ErrEndBeforeStart   = errors.New("end time is earlier than start time")
	ErrNegativeDuration = errors.New("duration would be negative")
)

// Duration is an elapsed span split into whole hours and minutes.
type Duration struct {
	Hours   int
	Minutes int
}

// FromMinutes normalizes a minute count into a Duration.
func FromMinutes(total int) Duration {
	return Duration{Hours: total / 60, Minutes: total % 60}
}

func (d Duration) TotalMinutes() int {
	return d.Hours*60 + d.Minutes
}

func (d Duration) String() string {
	return Format(d.Hours, d.Minutes)
}

// Format renders a duration as "Xh Ym".
func Format(hours, minutes int) string {
	return fmt.Sprintf("%dh %dm", hours, minutes)
}

// ParseClock returns the minutes since midnight of an "HH:MM" string.
func ParseClock(s string) (int, error) {
	t, err := time.Parse(ClockLayout, s)
	if err != nil {
		return 0, ErrInvalidClock
	}
	return t.Hour()*60 + t.Minute(), nil
}

// IsValidClock reports whether s is an "HH:MM" wall-clock time.
func IsValidClock(s string) bool {
	_, err := ParseClock(s)
	return err == nil
}

// FormatClock renders the wall-clock part of t as "HH:MM".
func FormatClock(t time.Time) string {
	return t.Format(ClockLayout)
}

// Elapsed returns the span between two same-day checkpoints. Overnight spans
// are not supported: end before start is an error.
func Elapsed(start, end string) (Duration, error) {
	s, err := ParseClock(start)
	if err != nil {
		return Duration{}, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return Duration{}, err
	}
	if e < s {
		return Duration{}, ErrEndBeforeStart
	}
	return FromMinutes(e - s), nil
}

// Subtract removes sub from total.
func Subtract(total, sub Duration) (Duration, error) {
	remainder := total.TotalMinutes() - sub.TotalMinutes()
	if remainder < 0 {
		return Duration{}, ErrNegativeDuration
	}
	return FromMinutes(remainder), nil
}

// ParseDuration reads back a Format string. "8h 0m" and "8h0m" are accepted.
func ParseDuration(s string) (Duration, error) {
	compact := strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	hPart, mPart, ok := strings.Cut(compact, "h")
	if !ok || !strings.HasSuffix(mPart, "m") {
		return Duration{}, ErrInvalidDuration
	}
	hours, err := strconv.Atoi(hPart)
	if err != nil || hours < 0 {
		return Duration{}, ErrInvalidDuration
	}
	minutes, err := strconv.Atoi(strings.TrimSuffix(mPart, "m"))
	if err != nil || minutes < 0 || minutes > 59 {
		return Duration{}, ErrInvalidDuration
	}
	return Duration{Hours: hours, Minutes: minutes}, nil
}
