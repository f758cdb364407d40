package settings

import "context"

type SettingsRepository interface {
	// Get returns nil when no configuration was ever saved.
	Get(ctx context.Context) (*Settings, error)
	Save(ctx context.Context, s Settings) (Settings, error)
}
