package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "time/tzdata"

	"github.com/ponto-escolar/ponto-backend-go/internal/config"
	appHTTP "github.com/ponto-escolar/ponto-backend-go/internal/handler/http"
	"github.com/ponto-escolar/ponto-backend-go/internal/pkg/cron"
	"github.com/ponto-escolar/ponto-backend-go/internal/pkg/database"
	"github.com/ponto-escolar/ponto-backend-go/internal/pkg/email"
	"github.com/ponto-escolar/ponto-backend-go/internal/pkg/jwt"
	"github.com/ponto-escolar/ponto-backend-go/internal/pkg/oauth"
	"github.com/ponto-escolar/ponto-backend-go/internal/pkg/sse"
	"github.com/ponto-escolar/ponto-backend-go/internal/pkg/storage"
	"github.com/ponto-escolar/ponto-backend-go/internal/repository/postgresql"
	absenceService "github.com/ponto-escolar/ponto-backend-go/internal/service/absence"
	attendanceService "github.com/ponto-escolar/ponto-backend-go/internal/service/attendance"
	serviceAuth "github.com/ponto-escolar/ponto-backend-go/internal/service/auth"
	coordinationService "github.com/ponto-escolar/ponto-backend-go/internal/service/coordination"
	"github.com/ponto-escolar/ponto-backend-go/internal/service/file"
	reportService "github.com/ponto-escolar/ponto-backend-go/internal/service/report"
	settingsService "github.com/ponto-escolar/ponto-backend-go/internal/service/settings"
	userService "github.com/ponto-escolar/ponto-backend-go/internal/service/user"
)

var version = "dev"

func main() {
	migrateOnly := flag.Bool("migrate", false, "apply the database schema and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Error loading config: ", err)
	}

	level := parseLevel(cfg.App.LogLevel)
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
	if err != nil {
		log.Fatal("Error connecting to database: ", err)
	}
	defer db.Close()

	if *migrateOnly {
		if err := database.Migrate(ctx, db); err != nil {
			log.Fatal("Migration failed: ", err)
		}
		slog.Info("Database schema applied")
		return
	}

	txManager := postgresql.NewTxManager(db)
	userRepo := postgresql.NewUserRepository(db)
	coordinationRepo := postgresql.NewCoordinationRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	absenceRepo := postgresql.NewAbsenceRepository(db)
	settingsRepo := postgresql.NewSettingsRepository(db)
	JWTRepository := postgresql.NewJWTRepository(db)

	secureCookies := cfg.App.Env == "production"
	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration, cfg.JWT.RefreshExpiration, secureCookies)
	GoogleService := oauth.NewGoogleService(cfg.OAuth2Google.ClientID, cfg.OAuth2Google.ClientSecret, cfg.OAuth2Google.RedirectURL, cfg.OAuth2Google.Scopes, secureCookies)

	fileStorage, err := storage.New(ctx, cfg.Storage.Type, cfg.Storage.BasePath, cfg.Storage.BaseURL, cfg.Storage.DriveFolderID, cfg.Storage.CredentialsFile)
	if err != nil {
		log.Fatal("Failed to initialize storage: ", err)
	}
	fileService := file.NewFileService(fileStorage)

	emailService, err := email.NewEmailService(cfg.SMTP)
	if err != nil {
		log.Fatal("Failed to initialize email service: ", err)
	}

	settingsSvc := settingsService.NewSettingsService(settingsRepo, settingsService.Defaults(cfg.Attendance))
	coordinationSvc := coordinationService.NewCoordinationService(txManager, coordinationRepo, userRepo)
	userSvc := userService.NewUserService(userRepo, coordinationRepo, coordinationSvc, emailService, cfg.App.FrontendURL+"/login")
	authSvc := serviceAuth.NewAuthService(txManager, userRepo, JWTService, JWTRepository)
	attendanceSvc := attendanceService.NewAttendanceService(attendanceRepo, settingsSvc, coordinationSvc)
	hub := sse.NewHub()
	absenceSvc := absenceService.NewAbsenceService(absenceRepo, coordinationSvc, fileService, emailService, hub)
	reportSvc := reportService.NewReportService(attendanceSvc)

	handlers := appHTTP.Handlers{
		Auth:         appHTTP.NewAuthHandler(JWTService, authSvc, userSvc, GoogleService, cfg.App.FrontendURL),
		Attendance:   appHTTP.NewAttendanceHandler(attendanceSvc, reportSvc),
		Absence:      appHTTP.NewAbsenceHandler(absenceSvc),
		User:         appHTTP.NewUserHandler(userSvc),
		Coordination: appHTTP.NewCoordinationHandler(coordinationSvc),
		Settings:     appHTTP.NewSettingsHandler(settingsSvc),
		Events:       appHTTP.NewEventsHandler(JWTService, userRepo, hub),
	}

	opts := appHTTP.RouterOptions{
		Env:            cfg.App.Env,
		Version:        version,
		AllowedOrigins: cfg.App.AllowedOrigins,
		LogLevel:       level,
	}
	if cfg.Storage.Type == "local" {
		opts.UploadsDir = cfg.Storage.BasePath
	}
	router := appHTTP.NewRouter(opts, JWTService, userRepo, handlers)

	scheduler := cron.NewScheduler()
	cron.NewSessionJobs(JWTRepository, JWTService).RegisterJobs(scheduler)
	if err := scheduler.Start(ctx); err != nil {
		log.Fatal("Failed to start scheduler: ", err)
	}
	defer scheduler.Stop()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Server running", "addr", server.Addr, "env", cfg.App.Env, "version", version)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Graceful shutdown failed", "error", err)
	}
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
