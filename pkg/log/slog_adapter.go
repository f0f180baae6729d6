package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes protocol events to an slog.Logger.
// Useful for development when you want to see gateway traffic in console.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter that writes to the given slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger at Debug level.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("direction", event.Direction.String()),
		slog.String("category", event.Category.String()),
	}

	if event.ExchangeID != "" {
		attrs = append(attrs, slog.String("exchange_id", event.ExchangeID))
	}
	if event.Gateway != "" {
		attrs = append(attrs, slog.String("gateway", event.Gateway))
	}
	if event.Action != "" {
		attrs = append(attrs, slog.String("action", event.Action))
	}

	// Add type-specific attributes
	switch {
	case event.Discovery != nil:
		attrs = append(attrs, slog.String("location", event.Discovery.Location))
		if event.Discovery.ControlURL != "" {
			attrs = append(attrs, slog.String("control_url", event.Discovery.ControlURL))
		}
	case event.Exchange != nil:
		attrs = append(attrs,
			slog.String("endpoint", event.Exchange.Endpoint),
			slog.Int("size", event.Exchange.Size),
		)
		if event.Exchange.Truncated {
			attrs = append(attrs, slog.Bool("truncated", true))
		}
	case event.Fault != nil:
		attrs = append(attrs,
			slog.Int("fault_code", event.Fault.Code),
			slog.String("fault_description", event.Fault.Description),
		)
	case event.Error != nil:
		attrs = append(attrs, slog.String("error_msg", event.Error.Message))
		if event.Error.Context != "" {
			attrs = append(attrs, slog.String("error_context", event.Error.Context))
		}
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "gateway", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
