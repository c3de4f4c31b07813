package store

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/JonMunkholm/csvtree/internal/config"
)

// Open creates the store selected by cfg.Driver, wrapped in an LRU cache when
// cfg.CacheSize is positive.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	var (
		s   Store
		err error
	)
	switch strings.ToLower(cfg.Driver) {
	case "", config.DriverMemory:
		s = NewMemory()
	case config.DriverSQLite:
		s, err = NewSQLite(ctx, cfg.SQLitePath)
	case config.DriverPostgres:
		s, err = OpenPostgres(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	slog.Info("project store opened", "driver", cfg.Driver, "cache_size", cfg.CacheSize)

	if cfg.CacheSize <= 0 {
		return s, nil
	}
	cached, err := NewCached(s, cfg.CacheSize)
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	return cached, nil
}
