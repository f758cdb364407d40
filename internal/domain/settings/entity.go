package settings

import (
	"time"

	"github.com/ponto-escolar/ponto-backend-go/internal/domain/attendance"
	"github.com/ponto-escolar/ponto-backend-go/internal/pkg/geo"
)

// Settings is the system configuration. A single row is kept; while it does
// not exist the environment defaults apply.
type Settings struct {
	GeolocationEnabled        bool
	WorkplaceLatitude         float64
	WorkplaceLongitude        float64
	AllowedRadiusMeters       float64
	GeolocationTimeoutSeconds int
	GeolocationMaxAgeSeconds  int
	WorkdayDefaultHours       int
	WorkdayMaxHours           int
	LunchDefaultMinutes       int
	LunchMinMinutes           int
	LunchMaxMinutes           int
	Timezone                  string
	UpdatedBy                 string
	UpdatedAt                 time.Time
}

func (s Settings) GateConfig() geo.GateConfig {
	return geo.GateConfig{
		Enabled:      s.GeolocationEnabled,
		Latitude:     s.WorkplaceLatitude,
		Longitude:    s.WorkplaceLongitude,
		RadiusMeters: s.AllowedRadiusMeters,
		Timeout:      time.Duration(s.GeolocationTimeoutSeconds) * time.Second,
		MaxAge:       time.Duration(s.GeolocationMaxAgeSeconds) * time.Second,
	}
}

func (s Settings) WorkdayRules() attendance.WorkdayRules {
	return attendance.WorkdayRules{
		DefaultHours:    s.WorkdayDefaultHours,
		MaxHours:        s.WorkdayMaxHours,
		LunchMinMinutes: s.LunchMinMinutes,
		LunchMaxMinutes: s.LunchMaxMinutes,
	}
}

// Location loads the workplace timezone, falling back to UTC for a name the
// host does not know.
func (s Settings) Location() *time.Location {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
