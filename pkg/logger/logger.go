package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

type contextKey string

const (
	JSONLoggingFormat    = "json"
	ConsoleLoggingFormat = "console"

	LogLevelDebug   = "debug"
	LogLevelInfo    = "info"
	LogLevelWarn    = "warn"
	LogLevelWarning = "warning"
	LogLevelError   = "error"
	LogLevelFatal   = "fatal"
	LogLevelPanic   = "panic"

	ContextKeyRequestID contextKey = "requestID"
)

type (
	Logger struct {
		zerolog.Logger
	}

	Option func(*options)

	options struct {
		writer  io.Writer
		service string
		version string
	}
)

// WithWriter redirects the output, stdout is used otherwise.
func WithWriter(w io.Writer) Option {
	return func(o *options) {
		o.writer = w
	}
}

// WithService stamps every entry with the service name and version.
func WithService(name, version string) Option {
	return func(o *options) {
		o.service = name
		o.version = version
	}
}

func New(level, format string, opts ...Option) Logger {
	cfg := &options{writer: os.Stdout}
	for _, opt := range opts {
		opt(cfg)
	}

	var base zerolog.Logger

	if strings.EqualFold(format, JSONLoggingFormat) {
		base = zerolog.New(cfg.writer)
	} else {
		base = zerolog.New(zerolog.ConsoleWriter{Out: cfg.writer, TimeFormat: time.RFC3339})
	}

	builder := base.Level(ParseLevel(level)).With().Timestamp()

	if cfg.service != "" {
		builder = builder.Str("service", cfg.service)
	}

	if cfg.version != "" {
		builder = builder.Str("version", cfg.version)
	}

	return Logger{Logger: builder.Logger()}
}

// ParseLevel maps a configured level name to zerolog, unknown names fall back to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case LogLevelDebug:
		return zerolog.DebugLevel
	case LogLevelWarn, LogLevelWarning:
		return zerolog.WarnLevel
	case LogLevelError:
		return zerolog.ErrorLevel
	case LogLevelFatal:
		return zerolog.FatalLevel
	case LogLevelPanic:
		return zerolog.PanicLevel
	default:
		return zerolog.InfoLevel
	}
}

// ContextWithRequestID stores the request id picked up by WithContext.
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

func RequestIDFromContext(ctx context.Context) string {
	requestID, _ := ctx.Value(ContextKeyRequestID).(string)

	return requestID
}

func (l Logger) WithContext(ctx context.Context) zerolog.Logger {
	logger := l.Logger

	if requestID := RequestIDFromContext(ctx); requestID != "" {
		logger = logger.With().Str("request_id", requestID).Logger()
	}

	if spanCtx := trace.SpanContextFromContext(ctx); spanCtx.IsValid() {
		logger = logger.With().
			Str("trace_id", spanCtx.TraceID().String()).
			Str("span_id", spanCtx.SpanID().String()).
			Logger()
	}

	return logger
}
