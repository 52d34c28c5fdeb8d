package requestid

import (
	"context"
	"log/slog"
)

// LogKey is the attribute key used by LoggerExtractor.
const LogKey = "request_id"

// LoggerExtractor returns a logger.ContextExtractor adding the request ID.
func LoggerExtractor() func(ctx context.Context) (slog.Attr, bool) {
	return func(ctx context.Context) (slog.Attr, bool) {
		if id := FromContext(ctx); id != "" {
			return slog.String(LogKey, id), true
		}
		return slog.Attr{}, false
	}
}
