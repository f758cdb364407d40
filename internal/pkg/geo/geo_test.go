package geo

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistanceMeters_SamePointIsZero(t *testing.T) {
	points := [][2]float64{{0, 0}, {-23.5505, -46.6333}, {89.9, 179.9}, {-45, -120}}
	for _, p := range points {
		assert.Equal(t, 0.0, DistanceMeters(p[0], p[1], p[0], p[1]))
	}
}

func TestDistanceMeters_Symmetric(t *testing.T) {
	pairs := [][4]float64{
		{0, 0, 0.001, 0.001},
		{-23.5505, -46.6333, -22.9068, -43.1729},
		{51.5074, -0.1278, 40.7128, -74.0060},
	}
	for _, p := range pairs {
		ab := DistanceMeters(p[0], p[1], p[2], p[3])
		ba := DistanceMeters(p[2], p[3], p[0], p[1])
		assert.InDelta(t, ab, ba, 1e-6)
	}
}

func TestDistanceMeters_KnownDistance(t *testing.T) {
	// São Paulo to Rio de Janeiro, great-circle on a 6371 km sphere.
	d := DistanceMeters(-23.5505, -46.6333, -22.9068, -43.1729)
	assert.InDelta(t, 360748.8, d, 1)

	// One degree of latitude at the equator.
	oneDegree := EarthRadiusMeters * math.Pi / 180
	assert.InDelta(t, oneDegree, DistanceMeters(0, 0, 1, 0), 1e-6)
}

// offsetNorth returns a latitude that is meters north of the equator.
func offsetNorth(meters float64) float64 {
	return meters / EarthRadiusMeters * 180 / math.Pi
}

func workplace() GateConfig {
	return GateConfig{
		Enabled:      true,
		Latitude:     0,
		Longitude:    0,
		RadiusMeters: 100,
		Timeout:      10 * time.Second,
		MaxAge:       60 * time.Second,
	}
}

func TestEvaluate_Disabled(t *testing.T) {
	cfg := workplace()
	cfg.Enabled = false

	d := Evaluate(nil, cfg, time.Now())
	assert.True(t, d.Permitted)
	assert.Equal(t, ReasonNone, d.Reason)
}

func TestEvaluate_AtWorkplace(t *testing.T) {
	d := Evaluate(&Fix{Latitude: 0, Longitude: 0}, workplace(), time.Now())
	require.True(t, d.Permitted)
	require.NotNil(t, d.DistanceMeters)
	assert.Equal(t, 0.0, *d.DistanceMeters)
}

func TestEvaluate_OutsideRadius(t *testing.T) {
	fix := &Fix{Latitude: offsetNorth(150), Longitude: 0}

	d := Evaluate(fix, workplace(), time.Now())
	assert.False(t, d.Permitted)
	assert.Equal(t, ReasonOutsideRadius, d.Reason)
	require.NotNil(t, d.DistanceMeters)
	assert.InDelta(t, 150, *d.DistanceMeters, 0.01)
}

func TestEvaluate_OnTheBoundaryIsPermitted(t *testing.T) {
	fix := &Fix{Latitude: offsetNorth(99.999), Longitude: 0}
	assert.True(t, Evaluate(fix, workplace(), time.Now()).Permitted)
}

func TestEvaluate_NoFix(t *testing.T) {
	d := Evaluate(nil, workplace(), time.Now())
	assert.False(t, d.Permitted)
	assert.Equal(t, ReasonUnavailable, d.Reason)
}

func TestEvaluate_DeviceFailures(t *testing.T) {
	for _, reason := range []Reason{ReasonPermissionDenied, ReasonUnavailable, ReasonTimeout} {
		d := Evaluate(&Fix{Failure: reason}, workplace(), time.Now())
		assert.False(t, d.Permitted)
		assert.Equal(t, reason, d.Reason)
		assert.Nil(t, d.DistanceMeters)
	}
}

func TestEvaluate_CachedFix(t *testing.T) {
	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

	fresh := &Fix{CapturedAt: now.Add(-30 * time.Second)}
	assert.True(t, Evaluate(fresh, workplace(), now).Permitted)

	stale := &Fix{CapturedAt: now.Add(-2 * time.Minute)}
	d := Evaluate(stale, workplace(), now)
	assert.False(t, d.Permitted)
	assert.Equal(t, ReasonTimeout, d.Reason)
}

func TestValidCoordinates(t *testing.T) {
	assert.True(t, ValidCoordinates(-90, 180))
	assert.False(t, ValidCoordinates(91, 0))
	assert.False(t, ValidCoordinates(0, -181))
}
