package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/adapters/broadcaster"
	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/adapters/catalog"
	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/adapters/db"
	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/adapters/payments"
	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/adapters/redis"
	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/adapters/scheduler"
	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/adapters/verification"
	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/adapters/ws"
	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/app"
	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/config"
	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/domain/shared"
)

func main() {

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	initLogging(cfg)

	log.Info().Msg("Starting Bidding Engine...")

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection
	dbConn, err := db.NewConnection(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer dbConn.Close()

	log.Info().Msg("Database connection established")

	// Create repositories
	repoFactory := db.NewRepositoryFactory(dbConn)
	auctionRepo := repoFactory.GetAuctionRepository()
	bidRepo := repoFactory.GetBidRepository()
	depositRepo := repoFactory.GetDepositRepository()
	alertRepo := repoFactory.GetAlertRepository()
	fingerprintRepo := repoFactory.GetFingerprintRepository()
	itemRepo := repoFactory.GetItemRepository()
	userRepo := repoFactory.GetUserRepository()

	log.Info().Msg("Database repositories initialized")

	// Create Redis client
	redisClient := redis.NewClient(cfg)
	if err := redis.PingRedis(redisClient); err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	log.Info().Msg("Redis connection established")

	// Create Redis broadcaster
	redisBroadcaster := broadcaster.NewBroadcaster(broadcaster.RedisBroadcasterParams{
		RedisClient: redisClient,
		Logger:      log.Logger,
	})

	// External collaborators
	verificationSvc := verification.NewRedisVerification(redisClient, log.Logger)
	itemCatalog := catalog.NewItemCatalog(itemRepo)
	paymentGateway := payments.NewLedgerGateway(log.Logger)

	clock := shared.SystemClock{}

	// Create business services
	depositManager := app.NewDepositManager(app.DepositManagerParams{
		DepositRepo: depositRepo,
		AuctionRepo: auctionRepo,
		Catalog:     itemCatalog,
		Payments:    paymentGateway,
		Clock:       clock,
		Rate:        cfg.Bidding.DepositRate,
		Logger:      log.Logger,
	})
	fraudScorer := app.NewFraudScorer(app.FraudScorerParams{
		BidRepo:      bidRepo,
		Fingerprints: fingerprintRepo,
		Policy:       cfg.Fraud,
		Logger:       log.Logger,
	})
	moderationService := app.NewModerationService(app.ModerationServiceParams{
		AlertRepo: alertRepo,
		Clock:     clock,
		Logger:    log.Logger,
	})
	engine := app.NewEngine(app.EngineParams{
		AuctionRepo:  auctionRepo,
		BidRepo:      bidRepo,
		ItemRepo:     itemRepo,
		UserRepo:     userRepo,
		AlertRepo:    alertRepo,
		Fingerprints: fingerprintRepo,
		Verification: verificationSvc,
		Catalog:      itemCatalog,
		Deposits:     depositManager,
		Scorer:       fraudScorer,
		Broadcaster:  redisBroadcaster,
		Clock:        clock,
		Policy:       cfg.Bidding,
		Logger:       log.Logger,
	})

	log.Info().Msg("Business services initialized")

	// Create auction scheduler
	auctionScheduler := scheduler.NewAuctionScheduler(
		scheduler.AuctionSchedulerParams{
			RedisClient: redisClient,
			Engine:      engine,
			Logger:      log.Logger,
		},
	)

	auctionScheduler.Start()
	log.Info().Msg("Auction scheduler started")

	engine.SetTimekeeper(auctionScheduler)

	wsServer := ws.NewServer(ws.ServerParams{
		Config:      cfg,
		Engine:      engine,
		Moderation:  moderationService,
		Deposits:    depositManager,
		Broadcaster: redisBroadcaster,
		Logger:      log.Logger,
	})

	log.Info().Msg("WebSocket server initialized")

	// Start WebSocket server
	go func() {
		if err := wsServer.Start(); err != nil {
			log.Error().Err(err).Msg("Failed to start WebSocket server")
			cancel()
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
	case <-ctx.Done():
		log.Info().Msg("Context cancelled")
	}

	// Graceful shutdown
	log.Info().Msg("Starting graceful shutdown...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	auctionScheduler.Stop()
	log.Info().Msg("Auction scheduler stopped")

	if err := wsServer.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping WebSocket server")
	}

	log.Info().Msg("Graceful shutdown completed")
}

func initLogging(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Logging.Format == "json" {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	} else {
		output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		log.Logger = zerolog.New(output).With().Timestamp().Logger()
	}

	zerolog.DefaultContextLogger = &log.Logger
}
