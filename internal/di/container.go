package di

import (
	"github.com/spf13/afero"
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/file-warden/internal/adapters/sniff"
	"github.com/mikey/file-warden/internal/config"
	"github.com/mikey/file-warden/internal/core"
	"github.com/mikey/file-warden/internal/factory"
	"github.com/mikey/file-warden/internal/logging"
	"github.com/mikey/file-warden/internal/ports"
	"github.com/mikey/file-warden/internal/quarantine"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register filesystem
	if err := container.Provide(func() afero.Fs {
		return afero.NewOsFs()
	}); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewScannerFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewCacheFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewNotifierFactory); err != nil {
		return nil, err
	}

	// Register scanner
	if err := container.Provide(func(f *factory.ScannerFactory) (core.FileScanner, error) {
		return f.CreateScanner()
	}); err != nil {
		return nil, err
	}

	// Register verdict cache
	if err := container.Provide(func(f *factory.CacheFactory) (core.VerdictCache, error) {
		return f.CreateVerdictCache()
	}); err != nil {
		return nil, err
	}

	// Register content detector
	if err := container.Provide(func(logger *zap.Logger) core.ContentDetector {
		return sniff.NewDetector(logger)
	}); err != nil {
		return nil, err
	}

	// Register quarantine store
	if err := container.Provide(func(fs afero.Fs, cfg *config.Config, logger *zap.Logger) (*quarantine.Store, error) {
		return quarantine.NewStore(fs, cfg.GetQuarantine().Dir, logger)
	}); err != nil {
		return nil, err
	}

	// Register organizer options
	if err := container.Provide(func(cfg *config.Config, f *factory.CacheFactory) (core.OrganizerOptions, error) {
		ttl, err := f.GetCacheTTL()
		if err != nil {
			return core.OrganizerOptions{}, err
		}
		return core.OrganizerOptions{
			SecurityEnabled: cfg.GetSecurity().Enabled,
			CacheEnabled:    f.IsCacheEnabled(),
			CacheTTL:        ttl,
		}, nil
	}); err != nil {
		return nil, err
	}

	// Register organizer service
	if err := container.Provide(func(
		fs afero.Fs,
		scanner core.FileScanner,
		cache core.VerdictCache,
		store *quarantine.Store,
		logger *zap.Logger,
		opts core.OrganizerOptions,
	) *core.OrganizerService {
		return core.NewOrganizerService(fs, scanner, cache, store, logger, opts)
	}); err != nil {
		return nil, err
	}

	// Register security scan service
	if err := container.Provide(func(
		fs afero.Fs,
		scanner core.FileScanner,
		detector core.ContentDetector,
		store *quarantine.Store,
		cfg *config.Config,
		logger *zap.Logger,
	) *core.SecurityScanService {
		return core.NewSecurityScanService(fs, scanner, detector, store, logger,
			cfg.GetOrganizer().MimeExpectations)
	}); err != nil {
		return nil, err
	}

	// Register notifier
	if err := container.Provide(func(f *factory.NotifierFactory) (ports.Notifier, error) {
		return f.CreateNotifier()
	}); err != nil {
		return nil, err
	}

	return container, nil
}
