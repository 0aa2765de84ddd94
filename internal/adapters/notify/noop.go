package notify

import (
	"context"

	"go.uber.org/zap"

	"github.com/mikey/file-warden/internal/ports"
)

// NoopNotifier drops reports; used when notifications are disabled
type NoopNotifier struct {
	logger *zap.Logger
}

// NewNoopNotifier creates a notifier that discards every report
func NewNoopNotifier(logger *zap.Logger) *NoopNotifier {
	return &NoopNotifier{logger: logger}
}

// Send logs and discards the report
func (n *NoopNotifier) Send(ctx context.Context, report *ports.Report) error {
	n.logger.Debug("Notifications disabled, report dropped",
		zap.String("subject", report.Subject))
	return nil
}
