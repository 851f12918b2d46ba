package dashboard

import (
	"context"

	"go.uber.org/zap"
)

// Telemetry records dashboard events for observability.
type Telemetry interface {
	Record(ctx context.Context, event string, payload map[string]any)
}

type noopTelemetry struct{}

func (noopTelemetry) Record(context.Context, string, map[string]any) {}

func normalizeTelemetry(t Telemetry) Telemetry {
	if t == nil {
		return noopTelemetry{}
	}
	return t
}

// ZapTelemetry writes events as debug-level structured log entries.
type ZapTelemetry struct {
	logger *zap.Logger
}

// NewZapTelemetry wraps logger. A nil logger records nothing.
func NewZapTelemetry(logger *zap.Logger) *ZapTelemetry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapTelemetry{logger: logger}
}

// Record logs the event with its payload flattened into fields.
func (t *ZapTelemetry) Record(_ context.Context, event string, payload map[string]any) {
	fields := make([]zap.Field, 0, len(payload))
	for key, value := range payload {
		fields = append(fields, zap.Any(key, value))
	}
	t.logger.Debug(event, fields...)
}
