package position

import (
	"fmt"
	"log/slog"

	"github.com/dgallion1/slidedeck/internal/config"
	"github.com/dgallion1/slidedeck/internal/pathstore"
)

// Open builds the store selected by cfg.PositionStore.
func Open(cfg config.Config, log *slog.Logger) (Store, error) {
	switch cfg.PositionStore {
	case config.StoreMemory:
		return NewMemoryStore(), nil
	case config.StoreFile:
		return NewFileStore(cfg.PositionDir, log)
	case config.StorePathstore:
		return NewRemoteStore(pathstore.NewClient(cfg.PathstoreURL, cfg.PathstoreAPIKey)), nil
	default:
		return nil, fmt.Errorf("unknown position store %q", cfg.PositionStore)
	}
}
