package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database     DatabaseConfig
	JWT          JWTConfig
	App          AppConfig
	OAuth2Google OAuth2GoogleConfig
	Storage      StorageConfig
	SMTP         SMTPConfig
	Attendance   AttendanceConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret            string
	RefreshExpiration string
	AccessExpiration  string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port           int
	Env            string
	LogLevel       string
	FrontendURL    string
	AllowedOrigins []string
}

type OAuth2GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
}

// StorageConfig selects where absence documents are kept.
type StorageConfig struct {
	Type            string // local, gdrive
	BasePath        string
	BaseURL         string
	DriveFolderID   string
	CredentialsFile string
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

// AttendanceConfig holds the defaults of the system configuration. An
// administrator can override them at runtime through the settings API.
type AttendanceConfig struct {
	GeolocationEnabled  bool
	WorkplaceLatitude   float64
	WorkplaceLongitude  float64
	AllowedRadiusMeters float64
	GeolocationTimeout  time.Duration
	GeolocationMaxAge   time.Duration
	WorkdayDefaultHours int
	WorkdayMaxHours     int
	LunchDefaultMinutes int
	LunchMinMinutes     int
	LunchMaxMinutes     int
	Timezone            string
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	config := &Config{}
	var err error

	// Database configuration
	dbPort, err := getEnvInt("DB_PORT", 5432)
	if err != nil {
		return nil, err
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "ponto"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	// Application configuration
	appPort, err := getEnvInt("APP_PORT", 8080)
	if err != nil {
		return nil, err
	}

	config.App = AppConfig{
		Port:           appPort,
		Env:            getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		FrontendURL:    getEnv("FRONTEND_URL", "http://localhost:3000"),
		AllowedOrigins: getEnvSlice("ALLOWED_ORIGINS"),
	}
	if len(config.App.AllowedOrigins) == 0 {
		config.App.AllowedOrigins = []string{config.App.FrontendURL}
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:            getEnv("JWT_SECRET_KEY", ""),
		RefreshExpiration: getEnv("JWT_REFRESH_EXPIRATION_TIME", "168h"),
		AccessExpiration:  getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	// OAuth2 Google Configuration
	config.OAuth2Google = OAuth2GoogleConfig{
		ClientID:     getEnv("CLIENT_ID", ""),
		ClientSecret: getEnv("CLIENT_SECRET", ""),
		RedirectURL:  getEnv("REDIRECT_URL", ""),
		Scopes:       getEnvSlice("SCOPES"),
	}
	if len(config.OAuth2Google.Scopes) == 0 {
		config.OAuth2Google.Scopes = []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		}
	}

	config.Storage = StorageConfig{
		Type:            getEnv("STORAGE_TYPE", "local"),
		BasePath:        getEnv("STORAGE_BASE_PATH", "./uploads"),
		BaseURL:         getEnv("STORAGE_BASE_URL", "http://localhost:8080/uploads"),
		DriveFolderID:   getEnv("GDRIVE_FOLDER_ID", ""),
		CredentialsFile: getEnv("GOOGLE_APPLICATION_CREDENTIALS", ""),
	}

	smtpPort, err := getEnvInt("SMTP_PORT", 587)
	if err != nil {
		return nil, err
	}
	config.SMTP = SMTPConfig{
		Host:     getEnv("SMTP_HOST", ""),
		Port:     smtpPort,
		Username: getEnv("SMTP_USERNAME", ""),
		Password: getEnv("SMTP_PASSWORD", ""),
		From:     getEnv("SMTP_FROM", "no-reply@localhost"),
		FromName: getEnv("SMTP_FROM_NAME", "Ponto Escolar"),
	}

	if config.Attendance, err = loadAttendance(); err != nil {
		return nil, err
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

func loadAttendance() (AttendanceConfig, error) {
	var (
		a   AttendanceConfig
		err error
	)

	if a.GeolocationEnabled, err = getEnvBool("GEOLOCATION_ENABLED", false); err != nil {
		return a, err
	}
	if a.WorkplaceLatitude, err = getEnvFloat("WORKPLACE_LATITUDE", 0); err != nil {
		return a, err
	}
	if a.WorkplaceLongitude, err = getEnvFloat("WORKPLACE_LONGITUDE", 0); err != nil {
		return a, err
	}
	if a.AllowedRadiusMeters, err = getEnvFloat("ALLOWED_RADIUS_METERS", 100); err != nil {
		return a, err
	}
	if a.GeolocationTimeout, err = getEnvDuration("GEOLOCATION_TIMEOUT", 10*time.Second); err != nil {
		return a, err
	}
	if a.GeolocationMaxAge, err = getEnvDuration("GEOLOCATION_MAX_AGE", 60*time.Second); err != nil {
		return a, err
	}
	if a.WorkdayDefaultHours, err = getEnvInt("WORKDAY_DEFAULT_HOURS", 8); err != nil {
		return a, err
	}
	if a.WorkdayMaxHours, err = getEnvInt("WORKDAY_MAX_HOURS", 10); err != nil {
		return a, err
	}
	if a.LunchDefaultMinutes, err = getEnvInt("LUNCH_DEFAULT_MINUTES", 60); err != nil {
		return a, err
	}
	if a.LunchMinMinutes, err = getEnvInt("LUNCH_MIN_MINUTES", 30); err != nil {
		return a, err
	}
	if a.LunchMaxMinutes, err = getEnvInt("LUNCH_MAX_MINUTES", 120); err != nil {
		return a, err
	}
	a.Timezone = getEnv("TIMEZONE", "America/Sao_Paulo")

	return a, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if _, err := time.ParseDuration(c.JWT.AccessExpiration); err != nil {
		return fmt.Errorf("invalid JWT_ACCESS_EXPIRATION_TIME: %w", err)
	}
	if _, err := time.ParseDuration(c.JWT.RefreshExpiration); err != nil {
		return fmt.Errorf("invalid JWT_REFRESH_EXPIRATION_TIME: %w", err)
	}

	switch c.Storage.Type {
	case "local":
	case "gdrive":
		if c.Storage.DriveFolderID == "" {
			return fmt.Errorf("GDRIVE_FOLDER_ID is required when STORAGE_TYPE=gdrive")
		}
	default:
		return fmt.Errorf("unsupported STORAGE_TYPE %q", c.Storage.Type)
	}

	a := c.Attendance
	if _, err := time.LoadLocation(a.Timezone); err != nil {
		return fmt.Errorf("invalid TIMEZONE: %w", err)
	}
	if a.WorkplaceLatitude < -90 || a.WorkplaceLatitude > 90 {
		return fmt.Errorf("WORKPLACE_LATITUDE must be between -90 and 90")
	}
	if a.WorkplaceLongitude < -180 || a.WorkplaceLongitude > 180 {
		return fmt.Errorf("WORKPLACE_LONGITUDE must be between -180 and 180")
	}
	if a.AllowedRadiusMeters <= 0 {
		return fmt.Errorf("ALLOWED_RADIUS_METERS must be positive")
	}
	if a.LunchMinMinutes > a.LunchMaxMinutes {
		return fmt.Errorf("LUNCH_MIN_MINUTES must not exceed LUNCH_MAX_MINUTES")
	}
	if a.WorkdayDefaultHours > a.WorkdayMaxHours {
		return fmt.Errorf("WORKDAY_DEFAULT_HOURS must not exceed WORKDAY_MAX_HOURS")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getEnvSlice(env string) []string {
	value := getEnv(env, "")
	if value == "" {
		return []string{}
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
