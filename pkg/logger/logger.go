package logger

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/trace"
)

var Logger zerolog.Logger

// Init initializes the global logger
func Init(serviceName string, isDevelopment bool) {
	InitWithWriter(serviceName, isDevelopment, os.Stdout)
}

// InitWithWriter initializes the global logger on out. Development output is human readable.
func InitWithWriter(serviceName string, isDevelopment bool, out io.Writer) {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	w := out
	if isDevelopment {
		w = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	}

	Logger = zerolog.New(w).
		Level(zerolog.TraceLevel).
		With().
		Timestamp().
		Str("service", serviceName).
		Logger()
	log.Logger = Logger
}

type unitKey struct{}

// unit tags log lines with the unit of work they belong to
type unit struct {
	action string
	txID   string
	actor  string
}

// WithUnit returns ctx tagged with a unit of work. Lines logged through the
// ctx helpers below then carry action, transaction_id and actor_uid.
func WithUnit(ctx context.Context, action, txID, actorUID string) context.Context {
	return context.WithValue(ctx, unitKey{}, unit{action: action, txID: txID, actor: actorUID})
}

// WithContext returns a logger carrying the trace and unit of work found in ctx
func WithContext(ctx context.Context) *zerolog.Logger {
	c := Logger.With()

	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		c = c.Str("trace_id", sc.TraceID().String()).
			Str("span_id", sc.SpanID().String())
	}
	if u, ok := ctx.Value(unitKey{}).(unit); ok {
		c = c.Str("action", u.action).Str("transaction_id", u.txID)
		if u.actor != "" {
			c = c.Str("actor_uid", u.actor)
		}
	}

	l := c.Logger()
	return &l
}

// Info logs at info level with context
func Info(ctx context.Context) *zerolog.Event {
	return WithContext(ctx).Info()
}

// Error logs at error level with context
func Error(ctx context.Context) *zerolog.Event {
	return WithContext(ctx).Error()
}

// Debug logs at debug level with context
func Debug(ctx context.Context) *zerolog.Event {
	return WithContext(ctx).Debug()
}

// Warn logs at warn level with context
func Warn(ctx context.Context) *zerolog.Event {
	return WithContext(ctx).Warn()
}

// SetLevel sets the global log level. Unknown levels fall back to info.
func SetLevel(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}
