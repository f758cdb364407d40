package settings

import (
	"time"

	"github.com/ponto-escolar/ponto-backend-go/internal/pkg/geo"
	"github.com/ponto-escolar/ponto-backend-go/internal/pkg/validator"
)

type GeolocationSettings struct {
	Enabled        bool    `json:"enabled"`
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	RadiusMeters   float64 `json:"radius_meters"`
	TimeoutSeconds int     `json:"timeout_seconds"`
	MaxAgeSeconds  int     `json:"max_age_seconds"`
}

type WorkdaySettings struct {
	DefaultHours        int `json:"default_hours"`
	MaxHours            int `json:"max_hours"`
	LunchDefaultMinutes int `json:"lunch_default_minutes"`
	LunchMinMinutes     int `json:"lunch_min_minutes"`
	LunchMaxMinutes     int `json:"lunch_max_minutes"`
}

type SettingsResponse struct {
	Geolocation GeolocationSettings `json:"geolocation"`
	Workday     WorkdaySettings     `json:"workday"`
	Timezone    string              `json:"timezone"`
	UpdatedBy   string              `json:"updated_by,omitempty"`
	UpdatedAt   *string             `json:"updated_at,omitempty"`
}

func ToResponse(s Settings) SettingsResponse {
	resp := SettingsResponse{
		Geolocation: GeolocationSettings{
			Enabled:        s.GeolocationEnabled,
			Latitude:       s.WorkplaceLatitude,
			Longitude:      s.WorkplaceLongitude,
			RadiusMeters:   s.AllowedRadiusMeters,
			TimeoutSeconds: s.GeolocationTimeoutSeconds,
			MaxAgeSeconds:  s.GeolocationMaxAgeSeconds,
		},
		Workday: WorkdaySettings{
			DefaultHours:        s.WorkdayDefaultHours,
			MaxHours:            s.WorkdayMaxHours,
			LunchDefaultMinutes: s.LunchDefaultMinutes,
			LunchMinMinutes:     s.LunchMinMinutes,
			LunchMaxMinutes:     s.LunchMaxMinutes,
		},
		Timezone:  s.Timezone,
		UpdatedBy: s.UpdatedBy,
	}
	if !s.UpdatedAt.IsZero() {
		updatedAt := s.UpdatedAt.Format(time.RFC3339)
		resp.UpdatedAt = &updatedAt
	}
	return resp
}

// UpdateSettingsRequest replaces the whole configuration.
type UpdateSettingsRequest struct {
	Geolocation GeolocationSettings `json:"geolocation"`
	Workday     WorkdaySettings     `json:"workday"`
	Timezone    string              `json:"timezone"`
}

func (r *UpdateSettingsRequest) Validate() error {
	var errs validator.ValidationErrors

	g := r.Geolocation
	if !geo.ValidCoordinates(g.Latitude, g.Longitude) {
		errs.Add("geolocation", "latitude must be between -90 and 90 and longitude between -180 and 180")
	}
	if g.RadiusMeters <= 0 {
		errs.Add("geolocation.radius_meters", "radius_meters must be positive")
	}
	if g.TimeoutSeconds <= 0 || g.TimeoutSeconds > 120 {
		errs.Add("geolocation.timeout_seconds", "timeout_seconds must be between 1 and 120")
	}
	if g.MaxAgeSeconds < 0 || g.MaxAgeSeconds > 3600 {
		errs.Add("geolocation.max_age_seconds", "max_age_seconds must be between 0 and 3600")
	}

	w := r.Workday
	if w.DefaultHours <= 0 || w.DefaultHours > 24 {
		errs.Add("workday.default_hours", "default_hours must be between 1 and 24")
	}
	if w.MaxHours < w.DefaultHours || w.MaxHours > 24 {
		errs.Add("workday.max_hours", "max_hours must be between default_hours and 24")
	}
	if w.LunchMinMinutes < 0 {
		errs.Add("workday.lunch_min_minutes", "lunch_min_minutes must not be negative")
	}
	if w.LunchMaxMinutes < w.LunchMinMinutes {
		errs.Add("workday.lunch_max_minutes", "lunch_max_minutes must not be less than lunch_min_minutes")
	}
	if w.LunchDefaultMinutes < w.LunchMinMinutes || w.LunchDefaultMinutes > w.LunchMaxMinutes {
		errs.Add("workday.lunch_default_minutes", "lunch_default_minutes must be between the lunch minimum and maximum")
	}

	if validator.IsEmpty(r.Timezone) {
		errs.Add("timezone", "timezone is required")
	} else if _, err := time.LoadLocation(r.Timezone); err != nil {
		errs.Add("timezone", "unknown timezone")
	}

	return errs.Err()
}

// Settings converts a validated request.
func (r *UpdateSettingsRequest) Settings() Settings {
	return Settings{
		GeolocationEnabled:        r.Geolocation.Enabled,
		WorkplaceLatitude:         r.Geolocation.Latitude,
		WorkplaceLongitude:        r.Geolocation.Longitude,
		AllowedRadiusMeters:       r.Geolocation.RadiusMeters,
		GeolocationTimeoutSeconds: r.Geolocation.TimeoutSeconds,
		GeolocationMaxAgeSeconds:  r.Geolocation.MaxAgeSeconds,
		WorkdayDefaultHours:       r.Workday.DefaultHours,
		WorkdayMaxHours:           r.Workday.MaxHours,
		LunchDefaultMinutes:       r.Workday.LunchDefaultMinutes,
		LunchMinMinutes:           r.Workday.LunchMinMinutes,
		LunchMaxMinutes:           r.Workday.LunchMaxMinutes,
		Timezone:                  r.Timezone,
	}
}
