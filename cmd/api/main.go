package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"google.golang.org/grpc"

	"shadowcleaner/internal/api"
	"shadowcleaner/internal/api/handlers"
	"shadowcleaner/internal/config"
	"shadowcleaner/internal/domain/services/ai"
	"shadowcleaner/internal/domain/services/classifier"
	"shadowcleaner/internal/domain/services/darkweb"
	"shadowcleaner/internal/domain/services/exposure"
	"shadowcleaner/internal/domain/services/history"
	"shadowcleaner/internal/domain/services/scan"
	"shadowcleaner/internal/domain/services/waitlist"
	"shadowcleaner/internal/grpc/health"
	"shadowcleaner/internal/infrastructure/cache"
	"shadowcleaner/internal/infrastructure/database"
	"shadowcleaner/internal/infrastructure/database/repository"
	"shadowcleaner/internal/streaming"
	"shadowcleaner/pkg/logger"
)

func main() {
	// A missing .env is fine; real deployments use the environment.
	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("SHADOW_CONFIG_FILE"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewForEnvironment(cfg.App.Environment, cfg.Logger.Level)

	log.Info().
		Str("app", cfg.App.Name).
		Str("env", cfg.App.Environment).
		Str("version", cfg.App.Version).
		Msg("starting Shadow Cleaner")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, redisCache, err := initInfrastructure(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize infrastructure")
	}
	defer func() {
		if db != nil {
			db.Close()
		}
		if redisCache != nil {
			redisCache.Close()
		}
	}()

	var repos *repository.Repositories
	if db != nil {
		repos = repository.NewRepositories(db)
	}

	// Breach lookups: provider, paced, then cached when redis is available
	provider := newBreachProvider(cfg, redisCache, log)
	exposures := exposure.NewScanner(provider, log)
	passwords := exposure.NewPasswordChecker(exposure.PasswordConfig{
		BaseURL:   cfg.Passwords.BaseURL,
		UserAgent: cfg.Passwords.UserAgent,
		Timeout:   cfg.Passwords.Timeout,
	}, log)

	// Message classification
	inner, err := ai.New(ctx, ai.Config{
		Mode:         cfg.Classifier.Mode,
		Provider:     cfg.Classifier.Provider,
		GeminiAPIKey: cfg.Classifier.GeminiAPIKey,
		ClaudeAPIKey: cfg.Classifier.ClaudeAPIKey,
		OpenAIAPIKey: cfg.Classifier.OpenAIAPIKey,
		Model:        cfg.Classifier.Model,
		Temperature:  cfg.Classifier.Temperature,
		MaxTokens:    cfg.Classifier.MaxTokens,
		Timeout:      cfg.Classifier.Timeout,
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize message classifier")
	}
	messages := ai.NewFallback(inner, cfg.Classifier.RequestInterval, log)

	var classifierOpts []classifier.Option
	if cfg.Classifier.Mode == "ai" {
		classifierOpts = append(classifierOpts, classifier.WithAdvisor(messages))
	}
	threats := classifier.New(log, classifierOpts...)
	log.Info().
		Str("mode", cfg.Classifier.Mode).
		Str("classifier", messages.Name()).
		Msg("threat classifier initialized")

	// Persistence
	historyBackend, err := newHistoryBackend(ctx, cfg.History, redisCache, repos)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize scan history")
	}
	if closer, ok := historyBackend.(io.Closer); ok {
		defer closer.Close()
	}
	historyStore := history.NewStore(historyBackend, cfg.History.MaxEntries, log)

	waitlistRepo, err := newWaitlistRepository(cfg.Waitlist, repos)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize waitlist")
	}
	waitlistStore := waitlist.NewStore(waitlistRepo, time.Now, log)

	// Streaming
	var natsPublisher *streaming.NATSPublisher
	if cfg.NATS.Enabled {
		natsPublisher, err = streaming.NewNATSPublisher(ctx, cfg.NATS, log)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to NATS, continuing without event streaming")
			natsPublisher = nil
		}
	}
	eventBus := streaming.NewEventBus(natsPublisher, log)
	defer eventBus.Close()

	wsHub := streaming.NewWebSocketHub(log)
	go wsHub.Run(ctx)

	// Scan orchestration
	scanOpts := []scan.Option{
		scan.WithHistory(historyStore),
		scan.WithPublisher(streaming.NewEventBusPublisher(eventBus, wsHub)),
	}
	if cfg.DarkWeb.Enabled {
		scanOpts = append(scanOpts, scan.WithDarkWeb(darkweb.NewChecker(provider, log)))
	}
	scanService := scan.NewService(exposures, threats, log, scanOpts...)

	// Readiness backends; only configured ones are listed
	backends := map[string]handlers.Pinger{}
	if db != nil {
		backends["postgres"] = db
	}
	if redisCache != nil {
		backends["redis"] = redisCache
	}

	h := handlers.NewHandlers(handlers.Dependencies{
		Version:    cfg.App.Version,
		Scanner:    scanService,
		Exposures:  exposures,
		Passwords:  passwords,
		Classifier: threats,
		Messages:   messages,
		History:    historyStore,
		Waitlist:   waitlistStore,
		Backends:   backends,
		Logger:     log,
	})

	router := api.NewRouter(*cfg, h, redisCache, wsHub, log)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.HTTPPort),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info().Str("addr", httpServer.Addr).Msg("starting HTTP server")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	var grpcServer *grpc.Server
	if cfg.Server.GRPCEnabled {
		grpcServer = grpc.NewServer()

		grpcBackends := make(map[string]health.Pinger, len(backends))
		for name, b := range backends {
			grpcBackends[name] = b
		}
		checker := health.NewChecker(grpcBackends, log)
		checker.Register(grpcServer)
		go checker.Run(ctx, health.DefaultInterval)

		go func() {
			addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.GRPCPort)
			lis, err := net.Listen("tcp", addr)
			if err != nil {
				log.Error().Err(err).Str("addr", addr).Msg("failed to listen for gRPC")
				return
			}
			log.Info().Str("addr", addr).Msg("starting gRPC server")
			if err := grpcServer.Serve(lis); err != nil {
				log.Error().Err(err).Msg("gRPC server failed")
			}
		}()
	}

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if grpcServer != nil {
		grpcServer.GracefulStop()
	}

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	if natsPublisher != nil {
		natsPublisher.Close()
	}

	log.Info().Msg("shutdown complete")
}

// initInfrastructure connects the optional PostgreSQL and Redis backends.
// A backend that is enabled but unreachable is fatal.
func initInfrastructure(ctx context.Context, cfg *config.Config, log *logger.Logger) (*database.PostgresDB, *cache.RedisCache, error) {
	var db *database.PostgresDB
	if cfg.Database.Enabled {
		var err error
		db, err = database.NewPostgres(ctx, cfg.Database, log)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		if cfg.Database.AutoMigrate {
			if err := db.Migrate(ctx); err != nil {
				db.Close()
				return nil, nil, fmt.Errorf("failed to migrate database: %w", err)
			}
		}
	}

	var redisCache *cache.RedisCache
	if cfg.Redis.Enabled {
		var err error
		redisCache, err = cache.NewRedis(ctx, cfg.Redis, log)
		if err != nil {
			if db != nil {
				db.Close()
			}
			return nil, nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
	}

	return db, redisCache, nil
}

func newBreachProvider(cfg *config.Config, redisCache *cache.RedisCache, log *logger.Logger) exposure.BreachProvider {
	var provider exposure.BreachProvider
	switch cfg.Breach.Provider {
	case "hibp":
		provider = exposure.NewHIBPProvider(exposure.HIBPConfig{
			APIKey:    cfg.Breach.HIBPAPIKey,
			BaseURL:   cfg.Breach.HIBPBaseURL,
			UserAgent: cfg.Breach.UserAgent,
			Timeout:   cfg.Breach.Timeout,
		}, log)
	default:
		provider = exposure.NewBreachDirectoryProvider(exposure.BreachDirectoryConfig{
			APIKey:    cfg.Breach.RapidAPIKey,
			Host:      cfg.Breach.RapidAPIHost,
			BaseURL:   cfg.Breach.BaseURL,
			UserAgent: cfg.Breach.UserAgent,
			Timeout:   cfg.Breach.Timeout,
		}, log)
	}

	provider = exposure.NewPacedProvider(provider, cfg.Breach.RequestInterval)
	if redisCache != nil {
		provider = exposure.NewCachedProvider(provider, redisCache, cfg.Breach.CacheTTL, log)
	}

	log.Info().Str("provider", provider.Name()).Bool("cached", redisCache != nil).Msg("breach provider initialized")
	return provider
}

func newHistoryBackend(ctx context.Context, cfg config.HistoryConfig, redisCache *cache.RedisCache, repos *repository.Repositories) (history.Backend, error) {
	switch cfg.Backend {
	case "redis":
		if redisCache == nil {
			return nil, errors.New("history backend redis requires redis.enabled")
		}
		return history.NewRedisBackend(redisCache), nil
	case "postgres":
		if repos == nil {
			return nil, errors.New("history backend postgres requires database.enabled")
		}
		return repos.ScanHistory, nil
	case "sqlite":
		b, err := history.OpenSQLiteBackend(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return b, nil
	default:
		return history.NewMemoryBackend(), nil
	}
}

func newWaitlistRepository(cfg config.WaitlistConfig, repos *repository.Repositories) (waitlist.Repository, error) {
	if cfg.Backend == "postgres" {
		if repos == nil {
			return nil, errors.New("waitlist backend postgres requires database.enabled")
		}
		return repos.Waitlist, nil
	}
	return waitlist.NewMemoryRepository(), nil
}
