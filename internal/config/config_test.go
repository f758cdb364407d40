package config

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("JWT_SECRET_KEY", "jwt-secret")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.App.AllowedOrigins)
	assert.Equal(t, "local", cfg.Storage.Type)
	assert.Len(t, cfg.OAuth2Google.Scopes, 2)

	a := cfg.Attendance
	assert.False(t, a.GeolocationEnabled)
	assert.Equal(t, 100.0, a.AllowedRadiusMeters)
	assert.Equal(t, 10*time.Second, a.GeolocationTimeout)
	assert.Equal(t, 60*time.Second, a.GeolocationMaxAge)
	assert.Equal(t, 8, a.WorkdayDefaultHours)
	assert.Equal(t, 10, a.WorkdayMaxHours)
	assert.Equal(t, 30, a.LunchMinMinutes)
	assert.Equal(t, 120, a.LunchMaxMinutes)
	assert.Equal(t, "America/Sao_Paulo", a.Timezone)
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("GEOLOCATION_ENABLED", "true")
	t.Setenv("WORKPLACE_LATITUDE", "-23.5505")
	t.Setenv("WORKPLACE_LONGITUDE", "-46.6333")
	t.Setenv("ALLOWED_RADIUS_METERS", "250")
	t.Setenv("ALLOWED_ORIGINS", "https://ponto.escola.edu.br, https://admin.escola.edu.br")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.Attendance.GeolocationEnabled)
	assert.InDelta(t, -23.5505, cfg.Attendance.WorkplaceLatitude, 1e-9)
	assert.Equal(t, 250.0, cfg.Attendance.AllowedRadiusMeters)
	assert.Equal(t, []string{"https://ponto.escola.edu.br", "https://admin.escola.edu.br"}, cfg.App.AllowedOrigins)
}

func TestLoad_Rejects(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing jwt secret", map[string]string{"JWT_SECRET_KEY": ""}},
		{"bad port", map[string]string{"APP_PORT": "http"}},
		{"bad timezone", map[string]string{"TIMEZONE": "Mars/Olympus"}},
		{"latitude out of range", map[string]string{"WORKPLACE_LATITUDE": "91"}},
		{"zero radius", map[string]string{"ALLOWED_RADIUS_METERS": "0"}},
		{"lunch min above max", map[string]string{"LUNCH_MIN_MINUTES": "90", "LUNCH_MAX_MINUTES": "60"}},
		{"bad duration", map[string]string{"GEOLOCATION_TIMEOUT": "ten"}},
		{"unknown storage", map[string]string{"STORAGE_TYPE": "ftp"}},
		{"drive without folder", map[string]string{"STORAGE_TYPE": "gdrive"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestDatabaseURL(t *testing.T) {
	cfg := Config{Database: DatabaseConfig{Host: "db", Port: 5432, User: "ponto", Password: "pw", Name: "ponto", SSLMode: "disable"}}
	assert.Equal(t, "postgres://ponto:pw@db:5432/ponto?sslmode=disable", cfg.DatabaseURL())
}
