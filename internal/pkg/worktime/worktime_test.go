package worktime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestElapsed(t *testing.T) {
	cases := []struct {
		start, end string
		want       Duration
	}{
		{"08:00", "17:00", Duration{9, 0}},
		{"12:00", "13:00", Duration{1, 0}},
		{"07:45", "12:10", Duration{4, 25}},
		{"10:00", "10:00", Duration{0, 0}},
	}
	for _, c := range cases {
		got, err := Elapsed(c.start, c.end)
		require.NoError(t, err)
		assert.Equal(t, c.want, got, "%s-%s", c.start, c.end)
	}
}

func TestElapsed_EndBeforeStart(t *testing.T) {
	_, err := Elapsed("22:00", "06:00")
	assert.ErrorIs(t, err, ErrEndBeforeStart)
}

func TestElapsed_InvalidClock(t *testing.T) {
	for _, bad := range []string{"", "8", "25:00", "08:60", "8am"} {
		_, err := Elapsed(bad, "10:00")
		assert.ErrorIs(t, err, ErrInvalidClock, bad)
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "9h 0m", Format(9, 0))
	assert.Equal(t, "0h 45m", Format(0, 45))
	assert.Equal(t, "8h 0m", Duration{Hours: 8}.String())
}

func TestSubtract(t *testing.T) {
	got, err := Subtract(Duration{9, 0}, Duration{1, 0})
	require.NoError(t, err)
	assert.Equal(t, Duration{8, 0}, got)

	got, err = Subtract(Duration{4, 10}, Duration{0, 25})
	require.NoError(t, err)
	assert.Equal(t, Duration{3, 45}, got)

	_, err = Subtract(Duration{0, 30}, Duration{1, 0})
	assert.ErrorIs(t, err, ErrNegativeDuration)
}

func TestParseDuration(t *testing.T) {
	for in, want := range map[string]Duration{
		"8h 0m":  {8, 0},
		"8h0m":   {8, 0},
		"0h 45m": {0, 45},
		"12h 5m": {12, 5},
	} {
		got, err := ParseDuration(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, bad := range []string{"", "8h", "45m", "xh ym", "1h 75m"} {
		_, err := ParseDuration(bad)
		assert.ErrorIs(t, err, ErrInvalidDuration, bad)
	}
}

func TestFormatClock(t *testing.T) {
	at := time.Date(2026, 3, 2, 7, 5, 59, 0, time.UTC)
	assert.Equal(t, "07:05", FormatClock(at))
	assert.True(t, IsValidClock("07:05"))
	assert.False(t, IsValidClock("7:5pm"))
}
