package app

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/vivabem/vivabem-server/internal/api"
	"github.com/vivabem/vivabem-server/internal/config"
	"github.com/vivabem/vivabem-server/internal/consent"
	"github.com/vivabem/vivabem-server/internal/email"
	"github.com/vivabem/vivabem-server/internal/gemini"
	"github.com/vivabem/vivabem-server/internal/medication"
	"github.com/vivabem/vivabem-server/internal/metrics"
	"github.com/vivabem/vivabem-server/internal/report"
	"github.com/vivabem/vivabem-server/internal/scheduler"
	"github.com/vivabem/vivabem-server/internal/store"
	"go.uber.org/zap"
)

type App struct {
	Config  *config.Config
	Store   *store.Store
	Logger  *zap.Logger
	Version string
}

func New(cfg *config.Config, st *store.Store, logger *zap.Logger, version string) *App {
	return &App{
		Config:  cfg,
		Store:   st,
		Logger:  logger,
		Version: version,
	}
}

func (app *App) RunServer() {
	geminiClient := gemini.NewClient(app.Config.Gemini, app.Logger)

	medicationService := medication.NewService(app.Store, app.Logger)
	consentService := consent.NewService(app.Store, app.Logger)
	aggregator := report.NewAggregator(app.Store, medicationService, app.Logger)

	var mailer email.Mailer
	if app.Config.MailConfigured() {
		smtpMailer, err := email.NewSMTPMailer(app.Config.SMTP, app.Logger)
		if err != nil {
			app.Logger.Warn("SMTP mailer unavailable, caregiver e-mails disabled", zap.Error(err))
		} else {
			mailer = smtpMailer
			app.Logger.Info("SMTP mailer configured", zap.String("host", app.Config.SMTP.Host))
		}
	} else {
		app.Logger.Info("SMTP not configured, caregiver e-mails disabled")
	}

	notifier := consent.NewCaregiverNotifier(consentService, app.Store, mailer, app.Logger)
	reportService := report.NewService(aggregator, geminiClient, notifier, app.Logger)

	var runner *scheduler.Runner
	if app.Config.Scheduler.Enabled {
		runner = scheduler.NewRunner(app.Config.Scheduler.DailySpec, app.Store, reportService, consentService, app.Logger)
		if err := runner.Start(); err != nil {
			app.Logger.Error("Failed to start report scheduler", zap.Error(err))
		} else {
			app.Logger.Info("Report scheduler started", zap.String("spec", app.Config.Scheduler.DailySpec))
		}
	}

	if app.Config.Metrics.Enabled {
		go func() {
			app.Logger.Info("Starting metrics endpoint", zap.Int("port", app.Config.Metrics.Port))
			if err := metrics.Serve(app.Config.Metrics.Port); err != nil {
				app.Logger.Error("Metrics endpoint error", zap.Error(err))
			}
		}()
	}

	server := api.New(app.Config, medicationService, reportService, consentService, app.Logger)

	go func() {
		if err := server.Start(); err != nil {
			app.Logger.Fatal("Server error", zap.Error(err))
		}
	}()

	app.Logger.Info("Server started",
		zap.String("address", app.Config.Server.Address),
		zap.Int("port", app.Config.Server.Port),
		zap.String("url", fmt.Sprintf("http://localhost:%d", app.Config.Server.Port)),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	app.Logger.Info("Shutting down...")

	if runner != nil {
		runner.Stop()
	}

	if err := server.Shutdown(); err != nil {
		app.Logger.Error("Server shutdown error", zap.Error(err))
	}
}
