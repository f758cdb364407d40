package postgresql

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/ponto-escolar/ponto-backend-go/internal/domain/settings"
	"github.com/ponto-escolar/ponto-backend-go/internal/pkg/database"
)

const settingsColumns = `geolocation_enabled, workplace_latitude, workplace_longitude, allowed_radius_meters,
	geolocation_timeout_seconds, geolocation_max_age_seconds,
	workday_default_hours, workday_max_hours,
	lunch_default_minutes, lunch_min_minutes, lunch_max_minutes,
	timezone, updated_by, updated_at`

type settingsRepositoryImpl struct {
	db *database.DB
}

func NewSettingsRepository(db *database.DB) settings.SettingsRepository {
	return &settingsRepositoryImpl{db: db}
}

func scanSettings(row pgx.Row) (settings.Settings, error) {
	var s settings.Settings
	err := row.Scan(
		&s.GeolocationEnabled,
		&s.WorkplaceLatitude,
		&s.WorkplaceLongitude,
		&s.AllowedRadiusMeters,
		&s.GeolocationTimeoutSeconds,
		&s.GeolocationMaxAgeSeconds,
		&s.WorkdayDefaultHours,
		&s.WorkdayMaxHours,
		&s.LunchDefaultMinutes,
		&s.LunchMinMinutes,
		&s.LunchMaxMinutes,
		&s.Timezone,
		&s.UpdatedBy,
		&s.UpdatedAt,
	)
	return s, err
}

func (r *settingsRepositoryImpl) Get(ctx context.Context) (*settings.Settings, error) {
	q := GetQuerier(ctx, r.db)

	s, err := scanSettings(q.QueryRow(ctx, `SELECT `+settingsColumns+` FROM system_settings WHERE id = 1`))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, storeErr("get settings", err)
	}
	return &s, nil
}

func (r *settingsRepositoryImpl) Save(ctx context.Context, s settings.Settings) (settings.Settings, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO system_settings (id, ` + settingsColumns + `)
		VALUES (1, $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW())
		ON CONFLICT (id) DO UPDATE SET
			geolocation_enabled = EXCLUDED.geolocation_enabled,
			workplace_latitude = EXCLUDED.workplace_latitude,
			workplace_longitude = EXCLUDED.workplace_longitude,
			allowed_radius_meters = EXCLUDED.allowed_radius_meters,
			geolocation_timeout_seconds = EXCLUDED.geolocation_timeout_seconds,
			geolocation_max_age_seconds = EXCLUDED.geolocation_max_age_seconds,
			workday_default_hours = EXCLUDED.workday_default_hours,
			workday_max_hours = EXCLUDED.workday_max_hours,
			lunch_default_minutes = EXCLUDED.lunch_default_minutes,
			lunch_min_minutes = EXCLUDED.lunch_min_minutes,
			lunch_max_minutes = EXCLUDED.lunch_max_minutes,
			timezone = EXCLUDED.timezone,
			updated_by = EXCLUDED.updated_by,
			updated_at = NOW()
		RETURNING ` + settingsColumns

	saved, err := scanSettings(q.QueryRow(ctx, query,
		s.GeolocationEnabled,
		s.WorkplaceLatitude,
		s.WorkplaceLongitude,
		s.AllowedRadiusMeters,
		s.GeolocationTimeoutSeconds,
		s.GeolocationMaxAgeSeconds,
		s.WorkdayDefaultHours,
		s.WorkdayMaxHours,
		s.LunchDefaultMinutes,
		s.LunchMinMinutes,
		s.LunchMaxMinutes,
		s.Timezone,
		s.UpdatedBy,
	))
	if err != nil {
		return settings.Settings{}, storeErr("save settings", err)
	}
	return saved, nil
}
