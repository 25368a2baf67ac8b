package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/trialbridge/lead-api/internal/config"
	"github.com/trialbridge/lead-api/internal/email"
	"github.com/trialbridge/lead-api/internal/repository/postgres"
	notificationService "github.com/trialbridge/lead-api/internal/service/notification"
	internalworker "github.com/trialbridge/lead-api/internal/worker"
	"github.com/trialbridge/lead-api/pkg/logger"
	"github.com/trialbridge/lead-api/pkg/messaging/redis"
	"github.com/trialbridge/lead-api/pkg/metrics"
	"github.com/trialbridge/lead-api/pkg/worker"
)

func setupHealthCheck(lg *logger.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	go func() {
		if err := http.ListenAndServe(":8081", mux); err != nil {
			lg.ZL.Error().Err(err).Msg("Health check server failed")
			os.Exit(1)
		}
	}()
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	lg := &logger.Logger{ZL: log.Logger}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	broker, err := redis.NewRedisBroker(cfg.Redis.ToBrokerConfig(), &log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer broker.Close()

	base := postgres.NewBaseRepository(db)
	outboxRepo := postgres.NewOutboxRepository(base)
	partnerRepo := postgres.NewPartnerRepository(base)
	notificationRepo := postgres.NewNotificationRepository(base)
	messageRepo := postgres.NewMessageRepository(base)

	m := metrics.New("leadworker")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	setupHealthCheck(lg)

	// Outbox processor: polls pending events and publishes them.
	processor := worker.NewOutboxProcessor(outboxRepo, broker, cfg.Outbox.ToWorkerConfig(), lg, m)
	go processor.Start(ctx)

	// Notifier: consumes published events into partner notifications.
	var emailSvc email.Service = email.NoopService{}
	if cfg.SMTP.Host != "" {
		emailSvc = email.NewSMTPService(cfg.SMTP)
	}
	notifier := notificationService.NewNotifier(broker, notificationRepo, messageRepo, partnerRepo, emailSvc)
	if err := notifier.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to start notifier")
	}

	// Quota reconciler: repairs lead counter drift.
	reconciler := internalworker.NewQuotaReconciler(partnerRepo, cfg.Quota.ReconcileInterval, m)
	go reconciler.Start(ctx)

	log.Info().Msg("Worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down worker...")
	cancel()
}
