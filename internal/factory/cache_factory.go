package factory

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mikey/file-warden/internal/adapters/cache"
	"github.com/mikey/file-warden/internal/config"
	"github.com/mikey/file-warden/internal/core"
	"go.uber.org/zap"
)

// CacheFactory creates verdict caches based on configuration
type CacheFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewCacheFactory creates a new cache factory
func NewCacheFactory(cfg *config.Config, logger *zap.Logger) *CacheFactory {
	return &CacheFactory{cfg: cfg, logger: logger}
}

// CreateVerdictCache creates a verdict cache based on the configuration
func (f *CacheFactory) CreateVerdictCache() (core.VerdictCache, error) {
	cacheCfg := f.cfg.GetCache()
	cleanupFreq, err := time.ParseDuration(cacheCfg.CleanupFrequency)
	if err != nil {
		return nil, fmt.Errorf("invalid cache cleanup frequency: %w", err)
	}

	switch cacheCfg.Type {
	case "memory":
		return cache.NewMemoryCache(f.logger, cleanupFreq), nil
	case "sqlite":
		// Ensure directory exists
		if err := os.MkdirAll(filepath.Dir(cacheCfg.SQLitePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create SQLite directory: %w", err)
		}
		return cache.NewSQLiteCache(cacheCfg.SQLitePath, f.logger, cleanupFreq)
	case "mysql":
		return cache.NewMySQLCache(cacheCfg.MySQLDSN, f.logger, cleanupFreq)
	default:
		return nil, fmt.Errorf("unsupported cache type: %s", cacheCfg.Type)
	}
}

// GetCacheTTL returns the configured cache TTL
func (f *CacheFactory) GetCacheTTL() (time.Duration, error) {
	return f.cfg.GetDuration("cache.ttl")
}

// IsCacheEnabled returns whether verdict caching is enabled
func (f *CacheFactory) IsCacheEnabled() bool {
	return f.cfg.GetBool("cache.enabled")
}
