package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"amsvault/internal/bot"
	"amsvault/internal/catalog"
	"amsvault/internal/config"
	"amsvault/internal/cron"
	"amsvault/internal/db"
	"amsvault/internal/kvstore"
	"amsvault/internal/library"
	"amsvault/internal/logger"
	"amsvault/internal/notify"
	"amsvault/internal/store"
	"amsvault/internal/updater"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}
	if err := logger.InitLogger(cfg.LogDir); err != nil {
		log.Fatalf("Error initializing logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg)
	if err != nil {
		logger.LogMsg(logger.LogError, "Failed to open local store: %v", err)
		os.Exit(1)
	}
	defer func() {
		if err := st.Close(); err != nil {
			logger.LogMsg(logger.LogError, "Failed to close local store: %v", err)
		}
	}()

	if cfg.SeedOnStart {
		seeded, err := store.SeedInitialData(ctx, st)
		if err != nil {
			logger.LogMsg(logger.LogError, "Failed to seed initial data: %v", err)
		} else if seeded {
			logger.LogMsg(logger.LogInfo, "Seeded initial data")
		}
	}

	aggregator := newAggregator(cfg)

	api, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		logger.LogMsg(logger.LogError, "Failed to initialize Telegram bot: %v", err)
		return
	}
	logger.LogMsg(logger.LogInfo, "Authorized on account %s", api.Self.UserName)

	appBot := bot.New(api, st, aggregator, cfg, library.WithSearchTimeout(cfg.SearchTimeout))

	scheduler := cron.NewScheduler(updater.New(st, aggregator), notify.NewTelegramNotifier(api), appBot, cfg.ReleaseCheckSchedule)
	if err := scheduler.Start(ctx); err != nil {
		logger.LogMsg(logger.LogError, "Release checks disabled: %v", err)
	}
	defer scheduler.Stop()

	appBot.Start(ctx)
	logger.LogMsg(logger.LogInfo, "Shutting down")
}

func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.StoreBackend {
	case config.BackendKV:
		var engine kvstore.Engine = kvstore.NewMemoryEngine()
		if cfg.RedisURL != "" {
			re, err := kvstore.NewRedisEngine(ctx, cfg.RedisURL, cfg.RedisPrefix)
			if err != nil {
				return nil, err
			}
			engine = re
		} else {
			logger.LogMsg(logger.LogWarning, "REDIS_URL is not set, data is kept in memory only")
		}
		kv, err := kvstore.Open(ctx, engine)
		if err != nil {
			_ = engine.Close()
			return nil, err
		}
		return kv, nil
	default:
		if dir := filepath.Dir(cfg.DatabasePath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create database folder: %w", err)
			}
		}
		database, err := db.Open(cfg.DatabasePath)
		if err != nil {
			return nil, err
		}
		return database, nil
	}
}

func newAggregator(cfg *config.Config) *catalog.Aggregator {
	jikan := catalog.NewClient(cfg.JikanBaseURL, catalog.JikanRateLimit)

	// Series search needs a TMDB key; without one the category stays empty.
	var series catalog.Provider
	if cfg.TMDBAPIKey != "" {
		series = &catalog.TMDB{
			Client:       catalog.NewClient(cfg.TMDBBaseURL, catalog.TMDBRateLimit),
			APIKey:       cfg.TMDBAPIKey,
			Language:     cfg.TMDBLanguage,
			ImageBaseURL: cfg.TMDBImageBaseURL,
		}
	} else {
		logger.LogMsg(logger.LogWarning, "TMDB_API_KEY is not set, series search is disabled")
	}

	return catalog.NewAggregator(
		&catalog.JikanAnime{Client: jikan},
		&catalog.JikanManga{Client: jikan},
		series,
		catalog.Options{
			Limit:     cfg.ProviderResultLimit,
			CacheSize: cfg.SearchCacheSize,
			CacheTTL:  cfg.SearchCacheTTL,
			// Providers give up before the search does, so local results can still be merged.
			ProviderTimeout: cfg.SearchTimeout * 4 / 5,
		},
	)
}
