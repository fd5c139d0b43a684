package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	BackendSQLite = "sqlite"
	BackendKV     = "kv"
)

// Config holds the application configuration.
type Config struct {
	// Local store
	StoreBackend string `env:"STORE_BACKEND" envDefault:"sqlite"`
	DatabasePath string `env:"DATABASE_PATH" envDefault:"database/amsvault.db"`
	// RedisURL selects the Redis engine for the kv backend; empty keeps data in memory.
	RedisURL    string `env:"REDIS_URL"`
	RedisPrefix string `env:"REDIS_PREFIX" envDefault:"amsvault:"`
	SeedOnStart bool   `env:"SEED_ON_START" envDefault:"false"`

	// Catalog providers
	JikanBaseURL        string        `env:"JIKAN_BASE_URL" envDefault:"https://api.jikan.moe/v4"`
	TMDBBaseURL         string        `env:"TMDB_BASE_URL" envDefault:"https://api.themoviedb.org/3"`
	TMDBImageBaseURL    string        `env:"TMDB_IMAGE_BASE_URL" envDefault:"https://image.tmdb.org/t/p"`
	TMDBAPIKey          string        `env:"TMDB_API_KEY"`
	TMDBLanguage        string        `env:"TMDB_LANGUAGE" envDefault:"en-US"`
	ProviderResultLimit int           `env:"PROVIDER_RESULT_LIMIT" envDefault:"10"`
	SearchTimeout       time.Duration `env:"SEARCH_TIMEOUT" envDefault:"10s"`
	SearchCacheSize     int           `env:"SEARCH_CACHE_SIZE" envDefault:"128"`
	SearchCacheTTL      time.Duration `env:"SEARCH_CACHE_TTL" envDefault:"10m"`

	// Telegram front end
	TelegramBotToken     string  `env:"TELEGRAM_BOT_TOKEN,required,notEmpty"`
	AllowedUsers         []int64 `env:"TELEGRAM_ALLOWED_USERS" envSeparator:","`
	ReleaseCheckSchedule string  `env:"RELEASE_CHECK_SCHEDULE" envDefault:"@every 6h"`

	LogDir string `env:"LOG_DIR" envDefault:"."`
}

// Load reads .env when present, then parses the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.StoreBackend {
	case BackendSQLite, BackendKV:
	default:
		return fmt.Errorf("config: STORE_BACKEND must be %q or %q, got %q", BackendSQLite, BackendKV, c.StoreBackend)
	}
	if c.ProviderResultLimit <= 0 {
		return fmt.Errorf("config: PROVIDER_RESULT_LIMIT must be positive")
	}
	if c.SearchTimeout <= 0 {
		return fmt.Errorf("config: SEARCH_TIMEOUT must be positive")
	}
	return nil
}

// IsUserAllowed reports whether a Telegram user may use the bot. An empty
// allow-list admits everyone.
func (c *Config) IsUserAllowed(userID int64) bool {
	if len(c.AllowedUsers) == 0 {
		return true
	}
	for _, id := range c.AllowedUsers {
		if id == userID {
			return true
		}
	}
	return false
}
