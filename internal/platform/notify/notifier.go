// Package notify delivers outbound SMS messages. Delivery is best-effort:
// callers log failures and never roll back state because of them.
package notify

import (
	"context"
	"log/slog"
	"time"

	"ishemalink/pkg/requestcontext"
)

// Notifier sends a text message to a destination contact.
type Notifier interface {
	Send(ctx context.Context, destination, message string) error
}

// LogNotifier simulates an SMS gateway by logging the message after a fixed
// latency. It honours context cancellation while waiting.
type LogNotifier struct {
	logger  *slog.Logger
	latency time.Duration
}

func NewLogNotifier(logger *slog.Logger, latency time.Duration) *LogNotifier {
	return &LogNotifier{logger: logger, latency: latency}
}

func (n *LogNotifier) Send(ctx context.Context, destination, message string) error {
	if n.latency > 0 {
		timer := time.NewTimer(n.latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	n.logger.InfoContext(ctx, "sms sent",
		"request_id", requestcontext.RequestID(ctx),
		"to", MaskDestination(destination),
		"message", message,
	)
	return nil
}

// MaskDestination hides all but the last three digits of a phone number.
func MaskDestination(destination string) string {
	if len(destination) <= 3 {
		return "***"
	}
	return "***" + destination[len(destination)-3:]
}
