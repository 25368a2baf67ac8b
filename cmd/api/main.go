package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/trialbridge/lead-api/internal/ai"
	"github.com/trialbridge/lead-api/internal/config"
	"github.com/trialbridge/lead-api/internal/geo"
	"github.com/trialbridge/lead-api/internal/handler"
	assignmenthandler "github.com/trialbridge/lead-api/internal/handler/assignment"
	authhandler "github.com/trialbridge/lead-api/internal/handler/auth"
	billinghandler "github.com/trialbridge/lead-api/internal/handler/billing"
	leadhandler "github.com/trialbridge/lead-api/internal/handler/lead"
	notificationhandler "github.com/trialbridge/lead-api/internal/handler/notification"
	partnerhandler "github.com/trialbridge/lead-api/internal/handler/partner"
	screenerhandler "github.com/trialbridge/lead-api/internal/handler/screener"
	"github.com/trialbridge/lead-api/internal/middleware"
	"github.com/trialbridge/lead-api/internal/repository/postgres"
	"github.com/trialbridge/lead-api/internal/router"
	assignmentService "github.com/trialbridge/lead-api/internal/service/assignment"
	authService "github.com/trialbridge/lead-api/internal/service/auth"
	billingService "github.com/trialbridge/lead-api/internal/service/billing"
	eventService "github.com/trialbridge/lead-api/internal/service/event"
	leadService "github.com/trialbridge/lead-api/internal/service/lead"
	notificationService "github.com/trialbridge/lead-api/internal/service/notification"
	partnerService "github.com/trialbridge/lead-api/internal/service/partner"
	screenerService "github.com/trialbridge/lead-api/internal/service/screener"
	"github.com/trialbridge/lead-api/pkg/auth"
	"github.com/trialbridge/lead-api/pkg/metrics"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	m := metrics.New("leadapi")

	// Repositories
	base := postgres.NewBaseRepository(db)
	partnerRepo := postgres.NewPartnerRepository(base)
	leadRepo := postgres.NewLeadRepository(base)
	screenerRepo := postgres.NewScreenerRepository(base)
	notificationRepo := postgres.NewNotificationRepository(base)
	messageRepo := postgres.NewMessageRepository(base)
	outboxRepo := postgres.NewOutboxRepository(base)
	userRepo := postgres.NewUserRepository(base)

	// Services
	jwtSvc := auth.NewJWTService(cfg.JWT.ToAuthConfig())
	emitter := eventService.NewEmitter(outboxRepo)
	resolver := geo.NewResolver()
	matcher := geo.NewMatcher(resolver, cfg.Assignment.DefaultRadiusMiles)

	authSvc := authService.NewService(userRepo, partnerRepo, jwtSvc)
	partnerSvc := partnerService.NewService(partnerRepo, cfg.Quota.WarningThreshold, cfg.Quota.CriticalThreshold)
	leadSvc := leadService.NewService(leadRepo, partnerRepo, emitter, m)
	assignmentSvc := assignmentService.NewService(partnerRepo, matcher, cfg.Quota.WarningThreshold, cfg.Quota.CriticalThreshold)
	screenerSvc := screenerService.NewService(screenerRepo, ai.NewClient(cfg.AI))
	billingSvc := billingService.NewService(partnerRepo, cfg.Stripe, cfg.Billing.Plans)
	notificationSvc := notificationService.NewService(notificationRepo, messageRepo)

	// Handlers
	handler.RegisterValidators()
	authMiddleware := middleware.NewAuthMiddleware(jwtSvc)

	handlers := router.Handlers{
		Base:         handler.NewHandler(db),
		Auth:         authhandler.NewHandler(authSvc),
		Partner:      partnerhandler.NewHandler(partnerSvc),
		Lead:         leadhandler.NewHandler(leadSvc, assignmentSvc, cfg.Assignment.AutoAssign),
		Assignment:   assignmenthandler.NewHandler(assignmentSvc),
		Screener:     screenerhandler.NewHandler(screenerSvc),
		Billing:      billinghandler.NewHandler(billingSvc),
		Notification: notificationhandler.NewHandler(notificationSvc),
	}

	r := router.NewRouter(authMiddleware, handlers, router.Config{
		RateLimit:     rate.Limit(cfg.RateLimit.RequestsPerSecond),
		RateBurst:     cfg.RateLimit.Burst,
		Timeout:       time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
		CORSConfig:    middleware.DefaultCORSConfig(),
		MetricsPrefix: "leadapi",
	})
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting API server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
