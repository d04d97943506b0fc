package middleware

import (
	"errors"
	"log"
	"strconv"
	"time"

	"github.com/KirkDiggler/sheet-bot/internal/discord/v2/core"
	"github.com/KirkDiggler/sheet-bot/internal/uuid"
)

// LogConfig configures logging behavior
type LogConfig struct {
	// LogRequests logs incoming interactions
	LogRequests bool

	// LogDuration logs handler execution time
	LogDuration bool

	// LogErrors logs errors (if not using ErrorMiddleware)
	LogErrors bool

	// Logf defaults to log.Printf
	Logf func(format string, args ...any)
}

// DefaultLogConfig returns sensible defaults
func DefaultLogConfig() *LogConfig {
	return &LogConfig{
		LogRequests: true,
		LogDuration: true,
		LogErrors:   true,
		Logf:        log.Printf,
	}
}

// LoggingMiddleware provides request/response logging
func LoggingMiddleware(config *LogConfig) core.Middleware {
	if config == nil {
		config = DefaultLogConfig()
	}
	logf := config.Logf
	if logf == nil {
		logf = log.Printf
	}

	return func(next core.Handler) core.Handler {
		return core.HandlerFunc(func(ctx *core.InteractionContext) (*core.HandlerResult, error) {
			name := interactionName(ctx)
			requestID := core.RequestID(ctx)

			if config.LogRequests {
				logf("[Discord] [%s] Command: %s, User: %s, Guild: %s", requestID, name, ctx.UserID, ctx.GuildID)
			}

			start := time.Now()
			result, err := next.Handle(ctx)
			duration := time.Since(start)

			if err != nil && config.LogErrors {
				logf("[Discord] [%s] Error in %s: %v", requestID, name, err)
			}
			if config.LogDuration {
				logf("[Discord] [%s] %s completed in %v", requestID, name, duration)
			}

			return result, err
		})
	}
}

// MetricsCollector collects metrics
type MetricsCollector interface {
	IncrementCounter(name string, labels map[string]string)
	ObserveHistogram(name string, value float64, labels map[string]string)
}

// Metric names recorded by MetricsMiddleware
const (
	MetricInteractions        = "discord_interactions_total"
	MetricInteractionDuration = "discord_interaction_duration_seconds"
	MetricInteractionErrors   = "discord_interactions_errors_total"
)

// MetricsMiddleware tracks handler metrics
func MetricsMiddleware(collector MetricsCollector) core.Middleware {
	return func(next core.Handler) core.Handler {
		return core.HandlerFunc(func(ctx *core.InteractionContext) (*core.HandlerResult, error) {
			labels := extractLabels(ctx)
			collector.IncrementCounter(MetricInteractions, labels)

			start := time.Now()
			result, err := next.Handle(ctx)
			collector.ObserveHistogram(MetricInteractionDuration, time.Since(start).Seconds(), labels)

			if err != nil {
				errorLabels := make(map[string]string, len(labels)+1)
				for k, v := range labels {
					errorLabels[k] = v
				}

				code := core.ErrorCodeInternal
				var handlerErr *core.HandlerError
				if errors.As(err, &handlerErr) {
					code = handlerErr.Code
				}
				errorLabels["error_code"] = strconv.Itoa(code)

				collector.IncrementCounter(MetricInteractionErrors, errorLabels)
			}

			return result, err
		})
	}
}

// extractLabels keeps label cardinality bounded: no user or guild IDs
func extractLabels(ctx *core.InteractionContext) map[string]string {
	return map[string]string{
		"command":    ctx.GetCommandName(),
		"subcommand": ctx.GetSubcommand(),
	}
}

func interactionName(ctx *core.InteractionContext) string {
	name := ctx.GetCommandName()
	if name == "" {
		return "unknown"
	}
	if sub := ctx.GetSubcommand(); sub != "" {
		name += "/" + sub
	}
	return name
}

// RequestIDMiddleware adds a unique request ID to the context
func RequestIDMiddleware(generator uuid.Generator) core.Middleware {
	if generator == nil {
		generator = uuid.NewGoogleUUIDGenerator()
	}

	return func(next core.Handler) core.Handler {
		return core.HandlerFunc(func(ctx *core.InteractionContext) (*core.HandlerResult, error) {
			ctx.WithValue(core.RequestIDKey, generator.New())
			return next.Handle(ctx)
		})
	}
}
