package settings

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ponto-escolar/ponto-backend-go/internal/config"
	"github.com/ponto-escolar/ponto-backend-go/internal/domain/settings"
	"github.com/ponto-escolar/ponto-backend-go/internal/domain/user"
)

type SettingsServiceImpl struct {
	settings.SettingsRepository
	defaults settings.Settings
}

func NewSettingsService(repo settings.SettingsRepository, defaults settings.Settings) settings.SettingsService {
	return &SettingsServiceImpl{
		SettingsRepository: repo,
		defaults:           defaults,
	}
}

// Defaults converts the environment configuration into the settings used
// until an administrator saves their own.
func Defaults(cfg config.AttendanceConfig) settings.Settings {
	return settings.Settings{
		GeolocationEnabled:        cfg.GeolocationEnabled,
		WorkplaceLatitude:         cfg.WorkplaceLatitude,
		WorkplaceLongitude:        cfg.WorkplaceLongitude,
		AllowedRadiusMeters:       cfg.AllowedRadiusMeters,
		GeolocationTimeoutSeconds: int(cfg.GeolocationTimeout.Seconds()),
		GeolocationMaxAgeSeconds:  int(cfg.GeolocationMaxAge.Seconds()),
		WorkdayDefaultHours:       cfg.WorkdayDefaultHours,
		WorkdayMaxHours:           cfg.WorkdayMaxHours,
		LunchDefaultMinutes:       cfg.LunchDefaultMinutes,
		LunchMinMinutes:           cfg.LunchMinMinutes,
		LunchMaxMinutes:           cfg.LunchMaxMinutes,
		Timezone:                  cfg.Timezone,
	}
}

// Current implements settings.SettingsService.
func (s *SettingsServiceImpl) Current(ctx context.Context) (settings.Settings, error) {
	saved, err := s.SettingsRepository.Get(ctx)
	if err != nil {
		return settings.Settings{}, fmt.Errorf("failed to load settings: %w", err)
	}
	if saved == nil {
		return s.defaults, nil
	}
	return *saved, nil
}

// Update implements settings.SettingsService.
func (s *SettingsServiceImpl) Update(ctx context.Context, actor user.User, req settings.UpdateSettingsRequest) (settings.Settings, error) {
	if !user.HasPermission(actor, user.PermissionSettingsManage) {
		return settings.Settings{}, user.ErrInsufficientPermissions
	}
	if err := req.Validate(); err != nil {
		return settings.Settings{}, err
	}

	next := req.Settings()
	next.UpdatedBy = actor.Email

	saved, err := s.SettingsRepository.Save(ctx, next)
	if err != nil {
		return settings.Settings{}, fmt.Errorf("failed to save settings: %w", err)
	}

	slog.Info("System settings updated",
		"by", actor.Email,
		"geolocation_enabled", saved.GeolocationEnabled,
		"radius_meters", saved.AllowedRadiusMeters,
		"timezone", saved.Timezone,
	)
	return saved, nil
}
