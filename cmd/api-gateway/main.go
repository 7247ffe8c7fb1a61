package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	_ "github.com/noah-isme/placement-api/api/swagger"
	"github.com/noah-isme/placement-api/internal/handler"
	"github.com/noah-isme/placement-api/internal/models"
	"github.com/noah-isme/placement-api/internal/repository"
	"github.com/noah-isme/placement-api/internal/service"
	"github.com/noah-isme/placement-api/pkg/cache"
	"github.com/noah-isme/placement-api/pkg/config"
	"github.com/noah-isme/placement-api/pkg/database"
	"github.com/noah-isme/placement-api/pkg/jobs"
	"github.com/noah-isme/placement-api/pkg/logger"
)

// @title Placement Portal Interview API
// @version 1.0.0
// @description Interview scheduling, approval and notification pipeline for the campus placement portal.
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if err := run(cfg, logr); err != nil {
		logr.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logr *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, job cache disabled", zap.Error(err))
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	location, err := time.LoadLocation(cfg.Mail.DisplayTZ)
	if err != nil {
		logr.Warn("unknown display time zone, using UTC", zap.String("zone", cfg.Mail.DisplayTZ), zap.Error(err))
		location = time.UTC
	}

	metrics := service.NewMetricsService()

	interviewRepo := repository.NewInterviewRepository(db)
	applicationRepo := repository.NewApplicationRepository(db)
	jobRepo := repository.NewJobRepository(db)
	directoryRepo := repository.NewDirectoryRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, "placement")

	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Interviews.JobCacheTTL, logr, redisClient != nil)
	jobDirectory := service.NewJobDirectory(jobRepo, cacheSvc, cfg.Interviews.JobCacheTTL, logr)

	composer, err := service.NewNotificationComposer(service.ComposerConfig{
		Location:     location,
		PortalURL:    cfg.Mail.PortalURL,
		SupportEmail: cfg.Mail.SupportEmail,
		ReminderLead: cfg.Interviews.ReminderLead,
	})
	if err != nil {
		return fmt.Errorf("build notification templates: %w", err)
	}

	var mailer service.Mailer = service.NewLogMailer(logr)
	if cfg.Mail.Enabled {
		mailer = service.NewSMTPMailer(service.SMTPConfig{
			Host:      cfg.Mail.Host,
			Port:      cfg.Mail.Port,
			Username:  cfg.Mail.Username,
			Password:  cfg.Mail.Password,
			TLSPolicy: cfg.Mail.TLSPolicy,
			Timeout:   cfg.Mail.SendTimeout,
		})
	}
	dispatcher := service.NewNotificationDispatcher(mailer, service.DispatcherConfig{
		SendTimeout: cfg.Mail.SendTimeout,
		MaxParallel: cfg.Mail.MaxParallel,
	}, metrics, logr)
	defaultSender := models.SenderIdentity{Address: cfg.Mail.FromAddress, Name: cfg.Mail.FromName}
	notifier := service.NewInterviewNotifier(jobDirectory, directoryRepo, composer, dispatcher, defaultSender, metrics, logr)

	interviewSvc := service.NewInterviewService(interviewRepo, applicationRepo, jobDirectory, notifier, validator.New(), logr,
		service.WithDisplayLocation(location),
	)
	reminderSvc := service.NewReminderService(interviewRepo, notifier, metrics, logr, service.ReminderConfig{
		Lead:      cfg.Interviews.ReminderLead,
		Tolerance: cfg.Interviews.ReminderWindow,
	})
	tokenSvc := service.NewTokenService(service.TokenConfig{
		Secret:   cfg.JWT.Secret,
		Issuer:   cfg.JWT.Issuer,
		Audience: cfg.JWT.Audience,
	})

	checks := map[string]handler.Pinger{"postgres": db}
	if redisClient != nil {
		checks["redis"] = handler.PingFunc(func(ctx context.Context) error { return redisClient.Ping(ctx).Err() })
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	interviewHandler := handler.NewInterviewHandler(interviewSvc, nil)
	if cfg.Interviews.RemindersEnabled {
		interviewHandler = handler.NewInterviewHandler(interviewSvc, reminderSvc)
	}
	router := newRouter(cfg, logr, routerDeps{
		tokens:     tokenSvc,
		metrics:    metrics,
		interviews: interviewHandler,
		health:     handler.NewMetricsHandler(metrics, checks),
	})

	var reminders *jobs.Periodic
	if cfg.Interviews.RemindersEnabled {
		reminders = jobs.NewPeriodic("interview-reminders", reminderSvc.Run, jobs.PeriodicConfig{
			Interval:   cfg.Interviews.TickInterval,
			RunOnStart: true,
			Logger:     logr,
		})
		reminders.Start(ctx)
	} else {
		logr.Info("interview reminders disabled")
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", server.Addr), zap.String("env", cfg.Env))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
		logr.Info("shutdown signal received")
	case err := <-serveErr:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logr.Error("http shutdown failed", zap.Error(err))
	}
	if reminders != nil {
		reminders.Stop()
	}
	logr.Info("server stopped")
	return nil
}
