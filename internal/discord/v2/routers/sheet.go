package routers

import (
	"time"

	"github.com/KirkDiggler/sheet-bot/internal/discord/v2/core"
	"github.com/KirkDiggler/sheet-bot/internal/discord/v2/handlers"
	"github.com/KirkDiggler/sheet-bot/internal/discord/v2/middleware"
)

// SheetRouter routes the /sheet subcommands
type SheetRouter struct {
	router  *core.Router
	handler *handlers.SheetHandler
}

// NewSheetRouter creates the /sheet router and registers it with the pipeline
func NewSheetRouter(pipeline *core.Pipeline, handler *handlers.SheetHandler) *SheetRouter {
	router := core.NewRouter(handlers.CommandName, pipeline)

	sr := &SheetRouter{
		router:  router,
		handler: handler,
	}

	// Claims write to the store; keep them slower than rolls
	claimLimit := middleware.UserRateLimitMiddleware(5, time.Minute)

	router.SubcommandFunc("roll", handler.HandleRoll)
	router.SubcommandFunc("whoami", handler.HandleWhoAmI)
	router.SubcommandFunc("claims", handler.HandleClaims)
	router.SubcommandFunc("help", handler.HandleHelp)
	router.Subcommand("claim", claimLimit(core.HandlerFunc(handler.HandleClaim)))

	router.Register()

	return sr
}

// Handler returns the combined handler for all /sheet routes
func (r *SheetRouter) Handler() core.Handler {
	return r.router.Build()
}
