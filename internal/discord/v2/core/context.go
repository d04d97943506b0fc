package core

import (
	"context"
	"strconv"

	"github.com/bwmarrin/discordgo"

	dnderr "github.com/KirkDiggler/sheet-bot/internal/errors"
)

// InteractionContext wraps a Discord interaction with useful helpers and context
type InteractionContext struct {
	// Core Discord objects
	Session     *discordgo.Session
	Interaction *discordgo.InteractionCreate

	// Extracted common fields for convenience
	UserID    string
	GuildID   string
	ChannelID string
	Member    *discordgo.Member

	// Context for cancellation and values
	Context context.Context

	// Parsed interaction data
	params map[string]any
}

// NewInteractionContext creates a new InteractionContext from a Discord interaction
func NewInteractionContext(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) *InteractionContext {
	ic := &InteractionContext{
		Session:     s,
		Interaction: i,
		Context:     ctx,
		GuildID:     i.GuildID,
		ChannelID:   i.ChannelID,
		params:      make(map[string]any),
	}

	if i.Member != nil && i.Member.User != nil {
		ic.Member = i.Member
		ic.UserID = i.Member.User.ID
	} else if i.User != nil {
		ic.UserID = i.User.ID
	}

	if i.Type == discordgo.InteractionApplicationCommand {
		ic.parseOptions(i.ApplicationCommandData().Options)
	}

	return ic
}

// parseOptions flattens subcommands and their options into params
func (ic *InteractionContext) parseOptions(options []*discordgo.ApplicationCommandInteractionDataOption) {
	for _, opt := range options {
		switch opt.Type {
		case discordgo.ApplicationCommandOptionSubCommand, discordgo.ApplicationCommandOptionSubCommandGroup:
			ic.params["subcommand"] = opt.Name
			ic.parseOptions(opt.Options)
		default:
			ic.params[opt.Name] = opt.Value
		}
	}
}

// GetParam retrieves a parameter by name
func (ic *InteractionContext) GetParam(name string) any {
	return ic.params[name]
}

// GetStringParam retrieves a string parameter or returns empty string
func (ic *InteractionContext) GetStringParam(name string) string {
	strVal, _ := ic.GetParam(name).(string)
	return strVal
}

// IsCommand checks if this is a slash command interaction
func (ic *InteractionContext) IsCommand() bool {
	return ic.Interaction != nil && ic.Interaction.Type == discordgo.InteractionApplicationCommand
}

// GetCommandName returns the command name for slash commands
func (ic *InteractionContext) GetCommandName() string {
	if ic.IsCommand() {
		return ic.Interaction.ApplicationCommandData().Name
	}
	return ""
}

// GetSubcommand returns the subcommand name if present
func (ic *InteractionContext) GetSubcommand() string {
	return ic.GetStringParam("subcommand")
}

// CommunityID returns the guild snowflake as an integer
func (ic *InteractionContext) CommunityID() (uint64, error) {
	return parseSnowflake("guild", ic.GuildID)
}

// MemberID returns the user snowflake as an integer
func (ic *InteractionContext) MemberID() (uint64, error) {
	return parseSnowflake("user", ic.UserID)
}

func parseSnowflake(kind, id string) (uint64, error) {
	if id == "" {
		return 0, dnderr.InvalidArgument(kind + " id is required")
	}
	v, err := strconv.ParseUint(id, 10, 64)
	if err != nil {
		return 0, dnderr.WrapWithCode(err, dnderr.CodeInvalidArgument, "invalid "+kind+" id").
			WithMeta(kind+"_id", id)
	}
	return v, nil
}

// WithValue adds a value to the context
func (ic *InteractionContext) WithValue(key, val any) {
	ic.Context = context.WithValue(ic.Context, key, val)
}

// Value retrieves a value from the context
func (ic *InteractionContext) Value(key any) any {
	return ic.Context.Value(key)
}

type contextKey string

const (
	// ResponderKey holds the InteractionResponder for the current interaction
	ResponderKey contextKey = "responder"

	// RequestIDKey holds the ID assigned by the request ID middleware
	RequestIDKey contextKey = "request_id"
)

// ResponderFrom returns the responder stored on ctx, if any
func ResponderFrom(ctx *InteractionContext) (InteractionResponder, bool) {
	r, ok := ctx.Value(ResponderKey).(InteractionResponder)
	return r, ok
}

// RequestID returns the request ID stored on ctx, or an empty string
func RequestID(ctx *InteractionContext) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}
