package middleware

import (
	"errors"
	"fmt"
	"log"
	"runtime/debug"

	"github.com/KirkDiggler/sheet-bot/internal/discord/v2/builders"
	"github.com/KirkDiggler/sheet-bot/internal/discord/v2/core"
)

// ErrorConfig configures error handling behavior
type ErrorConfig struct {
	// LogErrors controls whether errors are logged
	LogErrors bool

	// DefaultUserMessage is shown when no user-friendly message exists
	DefaultUserMessage string

	// ErrorFormatter turns an error into user text; "" falls back to DefaultUserMessage
	ErrorFormatter ErrorFormatter

	// EmbedTitle, when set, answers with an error embed under this title instead of plain text
	EmbedTitle string
}

// ErrorFormatter formats errors for user display
type ErrorFormatter func(err error) string

// DefaultErrorConfig returns sensible defaults
func DefaultErrorConfig() *ErrorConfig {
	return &ErrorConfig{
		LogErrors:          true,
		DefaultUserMessage: "An error occurred while processing your request.",
	}
}

// ErrorMiddleware turns handler errors into ephemeral replies
func ErrorMiddleware(config *ErrorConfig) core.Middleware {
	if config == nil {
		config = DefaultErrorConfig()
	}

	return func(next core.Handler) core.Handler {
		return core.HandlerFunc(func(ctx *core.InteractionContext) (*core.HandlerResult, error) {
			result, err := next.Handle(ctx)
			if err == nil {
				return result, nil
			}

			if config.LogErrors {
				log.Printf("[Discord] [%s] Handler error: %v, user: %s, guild: %s, command: %s/%s",
					core.RequestID(ctx), err, ctx.UserID, ctx.GuildID, ctx.GetCommandName(), ctx.GetSubcommand())
			}

			// the error is answered here, not propagated
			msg := userMessage(err, config)
			response := core.NewEphemeralResponse(msg)
			if config.EmbedTitle != "" {
				response = core.NewEmbedResponse(builders.ErrorEmbed(config.EmbedTitle, msg).Build()).AsEphemeral()
			}

			return &core.HandlerResult{
				Response: response,
				Context: map[string]any{
					"error": err,
				},
			}, nil
		})
	}
}

func userMessage(err error, config *ErrorConfig) string {
	var handlerErr *core.HandlerError
	if errors.As(err, &handlerErr) && handlerErr.ShowToUser {
		return handlerErr.UserMessage
	}
	if config.ErrorFormatter != nil {
		if msg := config.ErrorFormatter(err); msg != "" {
			return msg
		}
	}
	return config.DefaultUserMessage
}

// RecoveryMiddleware recovers from panics
func RecoveryMiddleware() core.Middleware {
	return func(next core.Handler) core.Handler {
		return core.HandlerFunc(func(ctx *core.InteractionContext) (result *core.HandlerResult, err error) {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("[Discord] Panic recovered in handler: %v\n%s", r, debug.Stack())

					result = &core.HandlerResult{
						Response: core.NewEphemeralResponse("An unexpected error occurred. Please try again later."),
					}
					err = nil
					if e, ok := r.(error); ok {
						result.Context = map[string]any{"error": e}
					} else {
						result.Context = map[string]any{"error": fmt.Errorf("panic: %v", r)}
					}
				}
			}()

			return next.Handle(ctx)
		})
	}
}
