package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/teamtrack/teamtrack-backend-go/internal/config"
	appHTTP "github.com/teamtrack/teamtrack-backend-go/internal/handler/http"
	"github.com/teamtrack/teamtrack-backend-go/internal/pkg/clock"
	"github.com/teamtrack/teamtrack-backend-go/internal/pkg/cron"
	"github.com/teamtrack/teamtrack-backend-go/internal/pkg/database"
	"github.com/teamtrack/teamtrack-backend-go/internal/pkg/jwt"
	"github.com/teamtrack/teamtrack-backend-go/internal/pkg/oauth"
	"github.com/teamtrack/teamtrack-backend-go/internal/pkg/sse"
	"github.com/teamtrack/teamtrack-backend-go/internal/repository/postgresql"
	"github.com/teamtrack/teamtrack-backend-go/internal/service/access"
	activityService "github.com/teamtrack/teamtrack-backend-go/internal/service/activity"
	attendanceService "github.com/teamtrack/teamtrack-backend-go/internal/service/attendance"
	authService "github.com/teamtrack/teamtrack-backend-go/internal/service/auth"
	projectService "github.com/teamtrack/teamtrack-backend-go/internal/service/project"
	taskService "github.com/teamtrack/teamtrack-backend-go/internal/service/task"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	userRepo := postgresql.NewUserRepository(db)
	workspaceRepo := postgresql.NewWorkspaceRepository(db)
	jwtRepo := postgresql.NewJWTRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	correctionRepo := postgresql.NewCorrectionRepository(db)
	settingsRepo := postgresql.NewSettingsRepository(db)
	projectRepo := postgresql.NewProjectRepository(db)
	taskRepo := postgresql.NewTaskRepository(db)
	activityRepo := postgresql.NewActivityRepository(db)
	txManager := postgresql.NewTxManager(db)

	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration, cfg.JWT.RefreshExpiration)
	googleService := oauth.NewGoogleService(cfg.OAuth2Google.ClientID, cfg.OAuth2Google.ClientSecret, cfg.OAuth2Google.RedirectURL, cfg.OAuth2Google.Scopes)
	hub := sse.NewHub()
	systemClock := clock.NewSystemClock()

	audit := activityService.NewSink(activityRepo)
	resolver := access.NewResolver(projectRepo)

	authSvc := authService.NewAuthService(txManager, userRepo, workspaceRepo, jwtService, jwtRepo, googleService)
	attendanceSvc := attendanceService.NewAttendanceService(
		txManager,
		systemClock,
		cfg.Attendance,
		attendanceRepo,
		correctionRepo,
		settingsRepo,
		audit,
		hub,
	)
	projectSvc := projectService.NewProjectService(projectRepo, userRepo, resolver, audit)
	taskSvc := taskService.NewTaskService(taskRepo, projectRepo, resolver, audit)
	activitySvc := activityService.NewActivityService(activityRepo)

	authHandler := appHTTP.NewAuthHandler(jwtService, authSvc, googleService, cfg.App.FrontendURL)
	attendanceHandler := appHTTP.NewAttendanceHandler(attendanceSvc)
	projectHandler := appHTTP.NewProjectHandler(projectSvc)
	taskHandler := appHTTP.NewTaskHandler(taskSvc)
	activityHandler := appHTTP.NewActivityHandler(activitySvc)
	eventsHandler := appHTTP.NewEventsHandler(jwtService, hub)

	sweepInterval, err := time.ParseDuration(cfg.Attendance.SweepInterval)
	if err != nil {
		slog.Error("invalid attendance sweep interval", "value", cfg.Attendance.SweepInterval, "error", err)
		os.Exit(1)
	}
	jobs := attendanceService.NewJobs(userRepo, settingsRepo, attendanceRepo, attendanceSvc, hub, systemClock, sweepInterval)

	scheduler := cron.NewScheduler()
	scheduler.AddJob("attendance-auto-checkout", sweepInterval, jobs.RunAutoCheckoutSweep)
	scheduler.AddJob("attendance-check-in-reminder", sweepInterval, jobs.RunCheckInReminders)
	scheduler.Start()
	defer scheduler.Stop()

	router := appHTTP.NewRouter(
		cfg,
		jwtService,
		authHandler,
		attendanceHandler,
		projectHandler,
		taskHandler,
		activityHandler,
		eventsHandler,
	)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.App.Port),
		Handler: router,
	}

	go func() {
		slog.Info("server listening", "port", cfg.App.Port, "env", cfg.App.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}
}
