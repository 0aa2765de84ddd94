package factory

import (
	"fmt"

	"github.com/mikey/file-warden/internal/adapters/clamav"
	"github.com/mikey/file-warden/internal/config"
	"github.com/mikey/file-warden/internal/core"
	"go.uber.org/zap"
)

// ScannerFactory creates threat scanners based on configuration
type ScannerFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewScannerFactory creates a new scanner factory
func NewScannerFactory(cfg *config.Config, logger *zap.Logger) *ScannerFactory {
	return &ScannerFactory{cfg: cfg, logger: logger}
}

// CreateScanner creates a scanner for the configured engine.
// "auto" prefers the clamd daemon and falls back to clamscan.
func (f *ScannerFactory) CreateScanner() (core.FileScanner, error) {
	secCfg := f.cfg.GetSecurity()
	timeout, err := f.cfg.GetDuration("security.scan_timeout")
	if err != nil {
		return nil, fmt.Errorf("invalid scan timeout: %w", err)
	}

	switch secCfg.Engine {
	case "clamd":
		daemon := clamav.NewClamdClient(secCfg.ClamdAddress, timeout, f.logger)
		return clamav.NewScanner(daemon, nil, f.logger)
	case "clamscan":
		cli := clamav.NewClamscanScanner(secCfg.ClamscanPath, timeout, f.logger)
		return clamav.NewScanner(nil, cli, f.logger)
	case "auto":
		daemon := clamav.NewClamdClient(secCfg.ClamdAddress, timeout, f.logger)
		cli := clamav.NewClamscanScanner(secCfg.ClamscanPath, timeout, f.logger)
		return clamav.NewScanner(daemon, cli, f.logger)
	default:
		return nil, fmt.Errorf("unsupported scan engine: %s", secCfg.Engine)
	}
}
