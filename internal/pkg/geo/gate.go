package geo

import "time"

// Reason explains why a clock action was not permitted by the gate.
type Reason string

const (
	ReasonNone             Reason = ""
	ReasonPermissionDenied Reason = "permission_denied"
	ReasonUnavailable      Reason = "unavailable"
	ReasonTimeout          Reason = "timeout"
	ReasonOutsideRadius    Reason = "outside_radius"
)

// DeviceReasons are the failures a client may report instead of a fix.
var DeviceReasons = []string{
	string(ReasonPermissionDenied),
	string(ReasonUnavailable),
	string(ReasonTimeout),
}

// Fix is a position reported by the employee's device.
type Fix struct {
	Latitude       float64
	Longitude      float64
	AccuracyMeters float64
	// CapturedAt is when the device acquired the fix. Zero means "now".
	CapturedAt time.Time
	// Failure is set when the device could not produce a fix at all.
	Failure Reason
}

// GateConfig is the workplace geofence.
type GateConfig struct {
	Enabled      bool
	Latitude     float64
	Longitude    float64
	RadiusMeters float64
	// Timeout bounds the client's single sensor request.
	Timeout time.Duration
	// MaxAge is how old a cached fix may be and still be accepted.
	MaxAge time.Duration
}

// Decision is the outcome of Evaluate.
type Decision struct {
	Permitted      bool
	DistanceMeters *float64
	Reason         Reason
}

// Evaluate decides whether a clock action may proceed from the reported fix.
// It performs no retries; a nil fix counts as an unavailable sensor.
func Evaluate(fix *Fix, cfg GateConfig, now time.Time) Decision {
	if !cfg.Enabled {
		return Decision{Permitted: true}
	}

	if fix == nil {
		return Decision{Reason: ReasonUnavailable}
	}
	if fix.Failure != ReasonNone {
		return Decision{Reason: fix.Failure}
	}

	if cfg.MaxAge > 0 && !fix.CapturedAt.IsZero() && now.Sub(fix.CapturedAt) > cfg.MaxAge {
		return Decision{Reason: ReasonTimeout}
	}

	distance := DistanceMeters(fix.Latitude, fix.Longitude, cfg.Latitude, cfg.Longitude)
	if distance > cfg.RadiusMeters {
		return Decision{DistanceMeters: &distance, Reason: ReasonOutsideRadius}
	}

	return Decision{Permitted: true, DistanceMeters: &distance}
}
