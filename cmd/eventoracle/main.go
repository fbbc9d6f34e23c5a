package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rewired-gh/eventoracle/internal/config"
	"github.com/rewired-gh/eventoracle/internal/feed"
	"github.com/rewired-gh/eventoracle/internal/logger"
	"github.com/rewired-gh/eventoracle/internal/models"
	"github.com/rewired-gh/eventoracle/internal/recommend"
	"github.com/rewired-gh/eventoracle/internal/storage"
	"github.com/rewired-gh/eventoracle/internal/telegram"
)

var (
	configPath = flag.String("config", "configs/config.yaml", "Path to configuration file")
	once       = flag.Bool("once", false, "Run a single recommendation cycle and exit")
	userID     = flag.String("user", "", "Only recommend for this user id")
)

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	logger.Info("Configuration loaded from %s", *configPath)

	rec, err := recommend.New(cfg.Recommend.Options())
	if err != nil {
		logger.Fatal("Failed to initialize recommender: %v", err)
	}

	var telegramClient *telegram.Client
	if cfg.Telegram.Enabled {
		telegramClient, err = telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Telegram.MaxRetries, cfg.Telegram.RetryDelayBase)
		if err != nil {
			logger.Fatal("Failed to initialize Telegram client: %v", err)
		}
		logger.Info("Telegram client initialized successfully")
	} else {
		logger.Debug("Telegram notifications disabled")
	}

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, cleaning up...")
		cancel()
	}()

	if cfg.Metrics.ListenAddr != "" {
		srv := startMetricsServer(cfg.Metrics)
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("Failed to stop metrics server: %v", err)
			}
		}()
	}

	sources := newCatalogSource(cfg.Source)
	defer sources.Close()

	if *once {
		if err := runCycle(ctx, sources, rec, telegramClient, cfg); err != nil {
			logger.Error("Recommendation cycle failed: %v", err)
			os.Exit(1)
		}
		return
	}

	logger.Info("Starting recommendation service (source: %s, interval: %v, limit: %d, workers: %d, nearby: %v)",
		cfg.Source.Kind,
		cfg.Source.RefreshInterval,
		cfg.Recommend.Limit,
		cfg.Recommend.Workers,
		cfg.Recommend.NearbyEnabled,
	)

	ticker := time.NewTicker(cfg.Source.RefreshInterval)
	defer ticker.Stop()

	consecutiveFailures := 0

	handleCycleResult := func(err error) {
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			consecutiveFailures++
			logger.Error("Recommendation cycle failed: %v", err)
			if consecutiveFailures == 1 && telegramClient != nil {
				if sendErr := telegramClient.SendError(err); sendErr != nil {
					logger.Warn("Failed to send error notification to Telegram: %v", sendErr)
				}
			}
			return
		}
		if consecutiveFailures > 0 && telegramClient != nil {
			if sendErr := telegramClient.SendRecovery(consecutiveFailures); sendErr != nil {
				logger.Warn("Failed to send recovery notification to Telegram: %v", sendErr)
			}
		}
		consecutiveFailures = 0
	}

	logger.Debug("Running initial recommendation cycle")
	handleCycleResult(runCycle(ctx, sources, rec, telegramClient, cfg))

	for {
		select {
		case <-ctx.Done():
			logger.Info("Service stopped")
			return

		case <-ticker.C:
			logger.Debug("Starting scheduled recommendation cycle")
			handleCycleResult(runCycle(ctx, sources, rec, telegramClient, cfg))
		}
	}
}

func startMetricsServer(cfg config.MetricsConfig) *http.Server {
	mux := http.NewServeMux()
	mux.Handle(cfg.Path, promhttp.Handler())

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("Serving metrics on %s%s", cfg.ListenAddr, cfg.Path)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server failed: %v", err)
		}
	}()
	return srv
}

// runCycle loads a fresh catalog, recommends for the selected users and
// delivers the digests.
func runCycle(
	ctx context.Context,
	sources *catalogSource,
	rec *recommend.Recommender,
	telegramClient *telegram.Client,
	cfg *config.Config,
) error {
	startTime := time.Now()

	catalog, err := sources.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	logger.Info("Loaded catalog: %d events, %d users, %d similarity entries",
		len(catalog.Events), len(catalog.Users), len(catalog.Similarity))

	users, err := selectUsers(catalog, *userID)
	if err != nil {
		return err
	}

	results, userErrs, err := rec.RecommendUsers(ctx, catalog, users, cfg.Recommend.BatchOptions())
	if err != nil {
		return err
	}
	for _, ue := range userErrs {
		logger.Warn("Failed to recommend for user %s: %v", ue.UserID, ue.Err)
	}

	delivered := 0
	for i, res := range results {
		if res == nil {
			continue
		}
		logger.Info("User %s: %d events after %d passes (radius %.1fkm, %v)",
			res.UserID, len(res.Events), res.Passes, res.FinalRadius, res.Duration)
		for rank, e := range res.Events {
			logger.Debug("  %d. %s (%s)", rank+1, e.ID, e.Title)
		}

		if telegramClient == nil || len(res.Events) == 0 {
			continue
		}
		if err := telegramClient.SendRecommendations(users[i], res); err != nil {
			logger.Error("Failed to send Telegram digest for user %s: %v", res.UserID, err)
			continue
		}
		delivered++
	}
	if telegramClient != nil {
		logger.Info("Sent %d Telegram digests", delivered)
	}

	logger.Info("Recommendation cycle completed in %v (%d users, %d failed)",
		time.Since(startTime), len(users), len(userErrs))
	return nil
}

// selectUsers returns every catalog user, or only the one named by id.
func selectUsers(catalog *models.Catalog, id string) ([]*models.User, error) {
	if id != "" {
		u, ok := catalog.User(id)
		if !ok {
			return nil, fmt.Errorf("user %s: %w", id, storage.ErrNotFound)
		}
		return []*models.User{u}, nil
	}

	users := make([]*models.User, len(catalog.Users))
	for i := range catalog.Users {
		users[i] = &catalog.Users[i]
	}
	return users, nil
}

// catalogSource loads catalogs from the configured backend. The SQLite
// handle is opened lazily and kept across cycles.
type catalogSource struct {
	cfg    config.SourceConfig
	db     *storage.SQLite
	client *feed.Client
}

func newCatalogSource(cfg config.SourceConfig) *catalogSource {
	s := &catalogSource{cfg: cfg}
	if cfg.Kind == config.SourceHTTP {
		s.client = feed.NewClient(cfg.URL, cfg.Timeout, cfg.MaxRetries, cfg.RetryDelayBase)
	}
	return s
}

func (s *catalogSource) Load(ctx context.Context) (*models.Catalog, error) {
	switch s.cfg.Kind {
	case config.SourceFile:
		return storage.LoadFile(s.cfg.Path)
	case config.SourceSQLite:
		if s.db == nil {
			db, err := storage.Open(s.cfg.Path)
			if err != nil {
				return nil, err
			}
			s.db = db
		}
		return s.db.LoadCatalog(ctx)
	case config.SourceHTTP:
		return s.client.FetchCatalog(ctx)
	default:
		return nil, fmt.Errorf("unknown source kind %q", s.cfg.Kind)
	}
}

func (s *catalogSource) Close() {
	if s.db == nil {
		return
	}
	if err := s.db.Close(); err != nil {
		logger.Error("Failed to close database: %v", err)
	}
}
