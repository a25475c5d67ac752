package observability

import (
	"context"
	"fmt"
	"strings"

	"github.com/kursadbilgin/hipchat-notifier/internal/domain"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const serviceName = "hipchat-notifier"

type correlationIDKey struct{}

// NewLogger builds the JSON production logger tagged with the service name.
func NewLogger(level string) (*zap.Logger, error) {
	parsedLevel, err := parseLevel(level)
	if err != nil {
		return nil, err
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(parsedLevel)
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.DisableStacktrace = true
	cfg.InitialFields = map[string]interface{}{"service": serviceName}

	logger, err := cfg.Build(zap.AddCaller())
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	return logger, nil
}

func parseLevel(level string) (zapcore.Level, error) {
	normalized := strings.ToLower(strings.TrimSpace(level))
	if normalized == "" {
		return zapcore.InfoLevel, nil
	}

	var parsed zapcore.Level
	if err := parsed.UnmarshalText([]byte(normalized)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return parsed, nil
}

// DestinationFields describes one room or user for a log entry.
func DestinationFields(dest domain.Destination) []zap.Field {
	return []zap.Field{
		zap.String("destinationKind", dest.Kind.String()),
		zap.String("destination", dest.ID),
	}
}

// WithDestination scopes logger to a single destination attempt.
func WithDestination(logger *zap.Logger, dest domain.Destination) *zap.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(DestinationFields(dest)...)
}

// RequestFields describes a notification without its message text.
func RequestFields(req domain.NotificationRequest) []zap.Field {
	return []zap.Field{
		zap.String("color", req.Color.String()),
		zap.String("messageFormat", req.Format().String()),
		zap.Bool("notify", req.Notify),
	}
}

func WithCorrelationID(ctx context.Context, correlationID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}

	return context.WithValue(ctx, correlationIDKey{}, correlationID)
}

func CorrelationIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}

	correlationID, ok := ctx.Value(correlationIDKey{}).(string)
	if !ok || correlationID == "" {
		return "", false
	}

	return correlationID, true
}

// WithContextLogger tags logger with the correlation id carried by ctx.
func WithContextLogger(logger *zap.Logger, ctx context.Context) *zap.Logger {
	if logger == nil {
		return nil
	}

	correlationID, ok := CorrelationIDFromContext(ctx)
	if !ok {
		return logger
	}

	return logger.With(zap.String("correlationId", correlationID))
}
