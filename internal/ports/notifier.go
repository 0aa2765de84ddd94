package ports

import (
	"context"
)

// Report is a composed notification ready for delivery
type Report struct {
	Subject string
	Body    string
}

// Notifier defines the interface for delivering a report over an
// external channel. Delivery failures stay inside the adapter's error
// return; they are never raised into the pipeline.
type Notifier interface {
	// Send delivers the report
	Send(ctx context.Context, report *Report) error
}
