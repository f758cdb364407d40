package settings

import (
	"context"

	"github.com/ponto-escolar/ponto-backend-go/internal/domain/user"
)

type SettingsService interface {
	// Current returns the saved configuration or the defaults.
	Current(ctx context.Context) (Settings, error)
	Update(ctx context.Context, actor user.User, req UpdateSettingsRequest) (Settings, error)
}
