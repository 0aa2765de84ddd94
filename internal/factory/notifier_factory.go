package factory

import (
	"github.com/mikey/file-warden/internal/adapters/notify"
	"github.com/mikey/file-warden/internal/config"
	"github.com/mikey/file-warden/internal/ports"
	"go.uber.org/zap"
)

// NotifierFactory creates report notifiers based on configuration
type NotifierFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewNotifierFactory creates a new notifier factory
func NewNotifierFactory(cfg *config.Config, logger *zap.Logger) *NotifierFactory {
	return &NotifierFactory{cfg: cfg, logger: logger}
}

// CreateNotifier creates the configured notifier. Disabled notification
// yields a no-op notifier so callers never branch on the flag.
func (f *NotifierFactory) CreateNotifier() (ports.Notifier, error) {
	notifyCfg := f.cfg.GetNotify()
	if !notifyCfg.Enabled {
		return notify.NewNoopNotifier(f.logger), nil
	}
	return notify.NewSMTPNotifier(notifyCfg, f.logger)
}
