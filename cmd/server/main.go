package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/popmap/popmap/internal/api"
	"github.com/popmap/popmap/internal/auth"
	"github.com/popmap/popmap/internal/config"
	"github.com/popmap/popmap/internal/database"
	"github.com/popmap/popmap/internal/extraction"
	"github.com/popmap/popmap/internal/geocoding"
	"github.com/popmap/popmap/internal/importer"
	"github.com/popmap/popmap/internal/instagram"
	"github.com/popmap/popmap/internal/logging"
	"github.com/popmap/popmap/internal/media"
	"github.com/popmap/popmap/internal/metrics"
	"github.com/popmap/popmap/internal/scheduler"
	"github.com/popmap/popmap/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).Error("failed to init logger", "error", err)
		os.Exit(1)
	}

	logger.Info("starting popmap")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dbCfg := database.DefaultConfig()
	dbCfg.URL = cfg.Database.URL

	logger.Info("connecting to database")
	db, err := database.Connect(ctx, dbCfg)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	logger.Info("database connected")

	if err := database.RunMigrations(db, "./migrations", logger); err != nil {
		logger.Warn("failed to run migrations, continuing anyway", "error", err)
	}

	// Repositories
	businessRepo := database.NewPostgresBusinessRepository(db)
	eventRepo := database.NewPostgresEventRepository(db)
	ledger := database.NewPostgresImportLedger(db)
	userRepo := database.NewPostgresUserRepository(db)

	// Instagram source. The scraper fails fast per run when the key is
	// missing, so the real client is always used.
	source := instagram.NewScraperClient(cfg.Instagram.RapidAPIKey, logger)

	// Caption extractor
	var extractor extraction.Extractor
	if cfg.OpenAI.APIKey == "" {
		logger.Warn("OPENAI_API_KEY not configured, using mock extractor")
		extractor = extraction.NewMockExtractor()
	} else {
		extractorCfg := extraction.DefaultOpenAIConfig()
		extractorCfg.APIKey = cfg.OpenAI.APIKey
		if cfg.OpenAI.Model != "" {
			extractorCfg.Model = cfg.OpenAI.Model
		}
		if cfg.OpenAI.ConfidenceThreshold > 0 {
			extractorCfg.ConfidenceThreshold = cfg.OpenAI.ConfidenceThreshold
		}
		extractor = extraction.NewOpenAIExtractor(extractorCfg, logger)
		logger.Info("using OpenAI extractor", "model", extractorCfg.Model)
	}

	// Geocoder
	var geocoder geocoding.Geocoder
	if cfg.Geocoding.APIKey == "" {
		logger.Warn("GOOGLE_MAPS_API_KEY not configured, coordinates will default to zero")
		geocoder = geocoding.Noop{}
	} else {
		geocoder = geocoding.NewGoogleGeocoder(cfg.Geocoding.APIKey, logger)
	}

	// Media storage for post images
	sink, err := media.NewDiskSink(cfg.Media.Dir, cfg.Media.BaseURL)
	if err != nil {
		logger.Error("failed to init media storage", "error", err)
		os.Exit(1)
	}

	collector := metrics.NewCollector()
	factory := importer.NewDraftFactory(geocoder, sink, logger)
	runner := importer.New(
		source,
		extractor,
		factory,
		ledger,
		eventRepo,
		businessRepo,
		collector,
		logger,
		cfg.Importer.Hashtag,
		cfg.Importer.FetchLimit,
	)

	authConfig := auth.LoadConfigFromEnv()

	mux := http.NewServeMux()
	api.SetupRoutes(mux, api.Dependencies{
		DB:         db,
		Businesses: businessRepo,
		Events:     eventRepo,
		History:    ledger,
		Runner:     runner,
		Users:      userRepo,
		AuthConfig: authConfig,
		Collector:  collector,
		MediaDir:   cfg.Media.Dir,
		Logger:     logger,
	})

	importScheduler := scheduler.NewImportScheduler(businessRepo, runner, cfg.Importer.SweepInterval, logger)
	go importScheduler.Start(ctx)

	srv := server.New(cfg.Server, mux, logger)
	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("received shutdown signal", "signal", sig.String())
	case err := <-errChan:
		if err != nil {
			logger.Error("server error", "error", err)
		}
	}

	importScheduler.Stop()
	cancel()

	if err := srv.Shutdown(context.Background()); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}

	logger.Info("popmap stopped")
}
