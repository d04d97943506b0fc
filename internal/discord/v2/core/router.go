package core

import (
	"fmt"
)

// Router manages the handlers of one slash command
type Router struct {
	// Command name (e.g. "sheet")
	domain string

	handlers   map[string]Handler
	middleware []Middleware
	pipeline   *Pipeline
}

// NewRouter creates a new command router
func NewRouter(domain string, pipeline *Pipeline) *Router {
	return &Router{
		domain:   domain,
		handlers: make(map[string]Handler),
		pipeline: pipeline,
	}
}

// Use adds middleware to this router; it applies to routes registered afterwards
func (r *Router) Use(middleware ...Middleware) *Router {
	r.middleware = append(r.middleware, middleware...)
	return r
}

// Handle registers a handler for a routing pattern
func (r *Router) Handle(pattern string, handler Handler) *Router {
	wrapped := handler
	for i := len(r.middleware) - 1; i >= 0; i-- {
		wrapped = r.middleware[i](wrapped)
	}

	r.handlers[pattern] = wrapped
	return r
}

// Command registers a handler for the bare command
func (r *Router) Command(handler Handler) *Router {
	return r.Handle(fmt.Sprintf("cmd:%s", r.domain), handler)
}

// CommandFunc registers a handler function for the bare command
func (r *Router) CommandFunc(fn func(*InteractionContext) (*HandlerResult, error)) *Router {
	return r.Command(HandlerFunc(fn))
}

// Subcommand registers a subcommand handler
func (r *Router) Subcommand(sub string, handler Handler) *Router {
	return r.Handle(fmt.Sprintf("cmd:%s:%s", r.domain, sub), handler)
}

// SubcommandFunc registers a subcommand handler function
func (r *Router) SubcommandFunc(sub string, fn func(*InteractionContext) (*HandlerResult, error)) *Router {
	return r.Subcommand(sub, HandlerFunc(fn))
}

// Build creates a single handler from all registered routes
func (r *Router) Build() Handler {
	return &routerHandler{
		domain:   r.domain,
		handlers: r.handlers,
	}
}

// Register registers this router with the pipeline
func (r *Router) Register() {
	if r.pipeline != nil {
		r.pipeline.Register(r.Build())
	}
}

type routerHandler struct {
	domain   string
	handlers map[string]Handler
}

func (h *routerHandler) CanHandle(ctx *InteractionContext) bool {
	pattern := h.extractPattern(ctx)
	if pattern == "" {
		return false
	}
	_, ok := h.handlers[pattern]
	return ok
}

func (h *routerHandler) Handle(ctx *InteractionContext) (*HandlerResult, error) {
	handler, ok := h.handlers[h.extractPattern(ctx)]
	if !ok {
		return nil, NewNotFoundError("handler")
	}
	return handler.Handle(ctx)
}

func (h *routerHandler) extractPattern(ctx *InteractionContext) string {
	if !ctx.IsCommand() || ctx.GetCommandName() != h.domain {
		return ""
	}

	if sub := ctx.GetSubcommand(); sub != "" {
		return fmt.Sprintf("cmd:%s:%s", h.domain, sub)
	}
	return fmt.Sprintf("cmd:%s", h.domain)
}
