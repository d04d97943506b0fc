package middleware

import (
	"log"
	"time"

	"github.com/KirkDiggler/sheet-bot/internal/discord/v2/core"
)

// DeferConfig configures the defer middleware
type DeferConfig struct {
	// AlwaysDefer forces deferred response for all interactions
	AlwaysDefer bool

	// EphemeralByDefault makes deferred responses ephemeral by default
	EphemeralByDefault bool

	// DeferAfter defers if handler doesn't respond within this duration
	// Set to 0 to disable auto-defer
	DeferAfter time.Duration

	// SkipSubcommands never defer, they answer from memory
	SkipSubcommands []string
}

// DefaultDeferConfig returns a sensible default configuration
func DefaultDeferConfig() *DeferConfig {
	return &DeferConfig{
		DeferAfter: 2 * time.Second, // Discord requires response within 3s
	}
}

// DeferMiddleware automatically handles Discord's 3-second response requirement
func DeferMiddleware(config *DeferConfig) core.Middleware {
	if config == nil {
		config = DefaultDeferConfig()
	}

	return func(next core.Handler) core.Handler {
		return core.HandlerFunc(func(ctx *core.InteractionContext) (*core.HandlerResult, error) {
			responder, ok := core.ResponderFrom(ctx)
			if !ok || shouldSkipDefer(ctx, config) {
				return next.Handle(ctx)
			}

			if config.AlwaysDefer {
				if err := responder.Defer(config.EphemeralByDefault); err != nil {
					log.Printf("[Discord] Failed to defer interaction: %v", err)
				}
				result, err := next.Handle(ctx)
				if result != nil {
					result.Deferred = true
				}
				return result, err
			}

			if config.DeferAfter <= 0 {
				return next.Handle(ctx)
			}

			type handlerResponse struct {
				result *core.HandlerResult
				err    error
			}
			responseChan := make(chan handlerResponse, 1)

			go func() {
				result, err := next.Handle(ctx)
				responseChan <- handlerResponse{result, err}
			}()

			timer := time.NewTimer(config.DeferAfter)
			defer timer.Stop()

			select {
			case resp := <-responseChan:
				return resp.result, resp.err

			case <-timer.C:
				if err := responder.Defer(config.EphemeralByDefault); err != nil {
					log.Printf("[Discord] Failed to defer interaction after timeout: %v", err)
				}

				resp := <-responseChan
				if resp.result != nil {
					resp.result.Deferred = true
				}
				return resp.result, resp.err
			}
		})
	}
}

func shouldSkipDefer(ctx *core.InteractionContext, config *DeferConfig) bool {
	sub := ctx.GetSubcommand()
	for _, skip := range config.SkipSubcommands {
		if skip == sub {
			return true
		}
	}
	return false
}

// SmartDeferMiddleware defers after 2 seconds if handler hasn't responded
func SmartDeferMiddleware() core.Middleware {
	return DeferMiddleware(DefaultDeferConfig())
}
