package observability

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/trace"
)

type patientKey struct{}

// InitLogger initializes the global zerolog logger. Development gets a
// console writer; everything else gets JSON with timestamp and caller.
func InitLogger(serviceName, env string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	if env == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}).With().
			Str("service", serviceName).
			Str("env", env).
			Logger()
		return
	}

	log.Logger = zerolog.New(os.Stdout).
		With().
		Timestamp().
		Caller().
		Str("service", serviceName).
		Str("env", env).
		Logger()
}

// ComponentLogger derives a child of the global logger tagged with component,
// e.g. "ai" for the model invoker sink or "reminders" for background jobs
func ComponentLogger(component string) zerolog.Logger {
	return log.Logger.With().Str("component", component).Logger()
}

// WithPatientID tags ctx so LoggerFromContext includes the patient id
func WithPatientID(ctx context.Context, patientID string) context.Context {
	return context.WithValue(ctx, patientKey{}, patientID)
}

// LoggerFromContext returns a logger with trace context and, for
// authenticated requests, the patient id
func LoggerFromContext(ctx context.Context) *zerolog.Logger {
	lc := log.With()

	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		lc = lc.
			Str("trace_id", span.SpanContext().TraceID().String()).
			Str("span_id", span.SpanContext().SpanID().String())
	}
	if id, ok := ctx.Value(patientKey{}).(string); ok && id != "" {
		lc = lc.Str("patient_id", id)
	}

	logger := lc.Logger()
	return &logger
}
