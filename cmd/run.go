package cmd

import (
	"context"
	"fmt"
	"time"

	"tapown/application"
	"tapown/config"
	"tapown/database"
	"tapown/domain/entities"
	"tapown/domain/interfaces"
	"tapown/domain/services"
	"tapown/infrastructure"
	"tapown/repository"

	log "github.com/sirupsen/logrus"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Info("Starting tapown reward service...")

	cfg := config.Get()

	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Info("Database connection established")

	// Event publishing: NATS when configured, otherwise a no-op publisher
	var basePublisher interfaces.EventPublisher
	var natsClient *infrastructure.NATSClient

	if cfg.NATSServers != "" {
		log.Info("Connecting to NATS...")
		natsClient = infrastructure.NewNATSClient(cfg.NATSServers)
		if err := natsClient.Connect(ctx); err != nil {
			return fmt.Errorf("failed to connect to NATS: %w", err)
		}

		natsPublisher := infrastructure.NewNATSEventPublisher(natsClient, infrastructure.NewEventSubjectMapper())
		if err := natsPublisher.EnsureDomainEventStream(); err != nil {
			return fmt.Errorf("failed to ensure domain event stream: %w", err)
		}
		basePublisher = natsPublisher
	} else {
		log.Warn("NATS not configured, domain events will not be published")
		basePublisher = infrastructure.NewNoopEventPublisher()
	}

	uowFactory := repository.NewUnitOfWorkFactory(db, func() application.TransactionalEventPublisher {
		return infrastructure.NewTransactionalPublisher(basePublisher)
	})

	// Membership verification through the Telegram Bot API
	var verifier interfaces.MembershipVerifier
	if cfg.TelegramToken != "" {
		verifier, err = infrastructure.NewTelegramVerifier(cfg.TelegramToken, cfg.VerifierTimeout)
		if err != nil {
			return fmt.Errorf("failed to initialize telegram verifier: %w", err)
		}
	} else {
		log.Warn("Telegram token not configured, membership checks are assumed satisfied")
		verifier = infrastructure.NewAssumeVerifier()
	}

	catalog := entities.DefaultMissionCatalog()
	rewardEngine := services.NewRewardEngine(cfg)
	engine := application.NewEngine(uowFactory, verifier, catalog, rewardEngine, cfg)

	// Player actions arrive over the bus from the chat frontend
	if natsClient != nil {
		consumer := infrastructure.NewActionConsumer(natsClient, engine)
		if err := consumer.Start(ctx); err != nil {
			return fmt.Errorf("failed to start action consumer: %w", err)
		}
	}

	sweepWorker := application.NewMissionSweepWorker(uowFactory, verifier, catalog, cfg)
	stopSweep := sweepWorker.Start(ctx)

	log.WithField("environment", cfg.Environment).Info("Service is running")
	<-ctx.Done()

	log.Info("Shutting down...")
	stopSweep()

	if natsClient != nil {
		if err := natsClient.Close(); err != nil {
			log.WithError(err).Error("Error closing NATS connection")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	log.Info("Closing database connection...")
	db.Close()

	select {
	case <-shutdownCtx.Done():
		log.Warn("Shutdown timeout exceeded")
	case <-time.After(1 * time.Second):
		log.Info("Shutdown completed")
	}

	return nil
}
