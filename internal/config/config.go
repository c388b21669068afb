package config

import (
	"fmt"
	"os"
	"time"
)

// Position store backends.
const (
	StoreMemory    = "memory"
	StoreFile      = "file"
	StorePathstore = "pathstore"
)

type Config struct {
	Port string

	// Slide content
	ContentDir string
	ExportPath string

	// Where clients fetch the slide document from
	BaseURL      string
	FetchTimeout time.Duration

	// Shared navigation position
	PositionStore string
	PositionKey   string
	PositionDir   string
	PollInterval  time.Duration

	// Pathstore connection, used when PositionStore is "pathstore"
	PathstoreURL    string
	PathstoreAPIKey string

	// Optional bearer key required to move the position over HTTP
	DeckAPIKey string
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		ContentDir: envOr("DECK_CONTENT_DIR", "content/slides"),
		ExportPath: envOr("DECK_EXPORT_PATH", "public/data/slides.json"),

		BaseURL:      envOr("DECK_BASE_URL", "http://localhost:8090"),
		FetchTimeout: envDuration("FETCH_TIMEOUT", 10*time.Second),

		PositionStore: envOr("POSITION_STORE", StoreFile),
		PositionKey:   envOr("POSITION_KEY", "currentSlide"),
		PositionDir:   envOr("POSITION_DIR", ".deck/state"),
		PollInterval:  envDuration("POLL_INTERVAL", 100*time.Millisecond),

		PathstoreURL:    envOr("PATHSTORE_URL", "http://localhost:8080"),
		PathstoreAPIKey: os.Getenv("PATHSTORE_API_KEY"),

		DeckAPIKey: os.Getenv("DECK_API_KEY"),
	}

	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 10 * time.Second
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 100 * time.Millisecond
	}

	return cfg
}

func (c Config) Validate() error {
	switch c.PositionStore {
	case StoreMemory, StoreFile:
	case StorePathstore:
		if c.PathstoreAPIKey == "" {
			return fmt.Errorf("PATHSTORE_API_KEY is required when POSITION_STORE=pathstore")
		}
	default:
		return fmt.Errorf("POSITION_STORE must be one of memory, file, pathstore; got %q", c.PositionStore)
	}
	if c.PositionKey == "" {
		return fmt.Errorf("POSITION_KEY must not be empty")
	}
	if c.PositionStore == StoreFile && c.PositionDir == "" {
		return fmt.Errorf("POSITION_DIR is required when POSITION_STORE=file")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
