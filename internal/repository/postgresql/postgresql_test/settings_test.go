package postgresql_test

import (
	"context"
	"testing"

	"github.com/ponto-escolar/ponto-backend-go/internal/domain/settings"
	"github.com/ponto-escolar/ponto-backend-go/internal/repository/postgresql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsRepository_SingleRow(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	repo := postgresql.NewSettingsRepository(db)

	current, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, current)

	s := settings.Settings{
		GeolocationEnabled:        true,
		WorkplaceLatitude:         -23.5505,
		WorkplaceLongitude:        -46.6333,
		AllowedRadiusMeters:       150,
		GeolocationTimeoutSeconds: 10,
		GeolocationMaxAgeSeconds:  60,
		WorkdayDefaultHours:       8,
		WorkdayMaxHours:           10,
		LunchDefaultMinutes:       60,
		LunchMinMinutes:           30,
		LunchMaxMinutes:           120,
		Timezone:                  "America/Sao_Paulo",
		UpdatedBy:                 "admin@escola.edu.br",
	}
	saved, err := repo.Save(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, 150.0, saved.AllowedRadiusMeters)
	assert.False(t, saved.UpdatedAt.IsZero())

	s.AllowedRadiusMeters = 300
	_, err = repo.Save(ctx, s)
	require.NoError(t, err)

	current, err = repo.Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, 300.0, current.AllowedRadiusMeters)

	var rows int
	require.NoError(t, db.QueryRow(ctx, `SELECT COUNT(*) FROM system_settings`).Scan(&rows))
	assert.Equal(t, 1, rows)
}
