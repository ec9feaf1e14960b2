package main

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/MuntasirSZN/d2o/internal/cache"
	"github.com/MuntasirSZN/d2o/internal/config"
	"github.com/MuntasirSZN/d2o/internal/log"
)

// openCache opens the configured store.
func openCache(ctx context.Context, cfg *config.Config, logger *log.Logger) (*cache.Cache, error) {
	var store cache.Store
	switch cfg.Cache.Backend {
	case config.BackendMemory:
		store = cache.NewMemoryStore()
	default:
		s, err := cache.OpenSQLite(ctx, cfg.Cache.Path)
		if err != nil {
			return nil, err
		}
		store = s
	}
	return cache.New(store, cache.WithTTL(cfg.Cache.TTL), cache.WithLogger(logger)), nil
}

// maintainCache runs --cache-clear, --cache-prune and --cache-stats, in that
// order.
func maintainCache(ctx context.Context, cfg *config.Config, logger *log.Logger) error {
	c, err := openCache(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("could not open cache: %w", err)
	}
	defer c.Close()

	if flagCacheClear {
		if err := c.Clear(ctx); err != nil {
			return fmt.Errorf("could not clear cache: %w", err)
		}
		logger.Info("cache cleared")
	}
	if flagCachePrune {
		n, err := c.Prune(ctx)
		if err != nil {
			return fmt.Errorf("could not prune cache: %w", err)
		}
		logger.Info("removed %d expired cache entries", n)
	}
	if flagCacheStats {
		stats, err := c.Stats(ctx)
		if err != nil {
			return fmt.Errorf("could not read cache: %w", err)
		}
		fmt.Printf("Backend:   %s\n", stats.Backend)
		fmt.Printf("Location:  %s\n", stats.Location)
		fmt.Printf("Entries:   %d (%d valid, %d expired)\n", stats.Total, stats.Valid, stats.Expired)
		fmt.Printf("Size:      %s\n", humanize.Bytes(uint64(stats.Bytes)))
		fmt.Printf("TTL:       %s\n", cfg.Cache.TTL)
	}
	return nil
}
