package observability

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log formats accepted by NewLogger.
const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

type loggerKey struct{}

var noopLogger = zap.NewNop()

// LoggerOption adjusts the zap config before the logger is built.
type LoggerOption func(*zap.Config)

// WithFormat selects JSON (Cloud Logging field names) or colored console output.
// Unknown formats keep JSON.
func WithFormat(format string) LoggerOption {
	return func(cfg *zap.Config) {
		if strings.EqualFold(strings.TrimSpace(format), FormatConsole) {
			cfg.Encoding = FormatConsole
			cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
			cfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
		}
	}
}

// WithOutput replaces stdout as the log sink.
func WithOutput(paths ...string) LoggerOption {
	return func(cfg *zap.Config) { cfg.OutputPaths = paths }
}

// NewLogger builds the process logger. A blank or unparsable level means info.
func NewLogger(level string, opts ...LoggerOption) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.Sampling = nil
	cfg.DisableStacktrace = true
	cfg.EncoderConfig.MessageKey = "message"
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.LevelKey = "severity"
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.EncoderConfig.EncodeTime = zapcore.RFC3339NanoTimeEncoder
	cfg.EncoderConfig.EncodeDuration = zapcore.MillisDurationEncoder
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg.Build()
}

// WithLogger attaches a request-scoped logger.
func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	if logger == nil {
		logger = noopLogger
	}
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromContext returns the request logger, or a no-op logger outside a request.
func FromContext(ctx context.Context) *zap.Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(loggerKey{}).(*zap.Logger); ok {
			return logger
		}
	}
	return noopLogger
}
