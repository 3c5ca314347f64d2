package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/openshelf/openshelf-backend/internal/data/repos"
	"github.com/openshelf/openshelf-backend/internal/db"
	"github.com/openshelf/openshelf-backend/internal/http/handlers"
	"github.com/openshelf/openshelf-backend/internal/observability"
	"github.com/openshelf/openshelf-backend/internal/platform/config"
	"github.com/openshelf/openshelf-backend/internal/platform/envutil"
	"github.com/openshelf/openshelf-backend/internal/platform/logger"
	"github.com/openshelf/openshelf-backend/internal/platform/sendgrid"
	"github.com/openshelf/openshelf-backend/internal/scheduler"
	"github.com/openshelf/openshelf-backend/internal/server"
	"github.com/openshelf/openshelf-backend/internal/services"
)

const serviceName = "openshelf-backend"

func main() {
	cfg, cfgErr := config.Load(envutil.String("CONFIG_FILE", "config.yaml"))

	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	if cfgErr != nil {
		log.Fatal("Failed to load config", "error", cfgErr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Tracing (no-op unless OTEL_ENABLED)
	if shutdown := observability.InitTracing(ctx, log, observability.OtelConfig{
		ServiceName: serviceName,
		Environment: envutil.String("ENVIRONMENT", "development"),
		Version:     envutil.String("SERVICE_VERSION", "dev"),
	}); shutdown != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdown(shutdownCtx)
		}()
	}

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Fatal("Postgres init failed", "error", err)
	}
	if err := postgresService.AutoMigrateAll(); err != nil {
		log.Fatal("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	// Repos
	bookRepo := repos.NewBookRepo(thePG, log)
	loanRepo := repos.NewLoanRepo(thePG, log)
	notificationRunRepo := repos.NewNotificationRunRepo(thePG, log)

	// Mail sender; without a SendGrid key we still run, logging instead of
	// sending.
	var mailer services.MailSender
	if sgClient, sgErr := sendgrid.NewFromEnv(log); sgErr != nil {
		log.Warn("SendGrid init failed, overdue mails will only be logged", "error", sgErr)
		mailer = services.NewLogMailer(log)
	} else {
		mailer = services.NewSendGridMailer(log, sgClient)
	}

	// Services
	bookService := services.NewBookService(thePG, log, bookRepo)
	loanService := services.NewLoanService(thePG, log, loanRepo)
	overdueNotifier := services.NewOverdueNotifier(
		log,
		loanService,
		mailer,
		notificationRunRepo,
		cfg.Overdue.ThresholdDays,
		cfg.Overdue.Message,
	)

	// Scheduler
	sched := scheduler.New(log)
	if err := sched.AddJob(cfg.Overdue.Cron, "overdue-notifier", func() {
		if runErr := overdueNotifier.Run(context.Background()); runErr != nil {
			log.Error("overdue notifier run failed", "error", runErr)
		}
	}); err != nil {
		log.Fatal("Failed to schedule overdue notifier", "error", err)
	}
	sched.Start()
	defer sched.Stop()

	// Handlers + router
	router := server.NewRouter(server.RouterConfig{
		ServiceName:   serviceName,
		HealthHandler: handlers.NewHealthHandler(),
		BookHandler:   handlers.NewBookHandler(bookService, loanService),
		LoanHandler:   handlers.NewLoanHandler(loanService, bookService),
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("Server listening", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
	log.Info("Server stopped")
}
