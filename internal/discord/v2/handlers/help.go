package handlers

import (
	"github.com/KirkDiggler/sheet-bot/internal/discord/v2/builders"
	"github.com/KirkDiggler/sheet-bot/internal/discord/v2/core"
)

// HandleHelp explains the /sheet subcommands
func (h *SheetHandler) HandleHelp(ctx *core.InteractionContext) (*core.HandlerResult, error) {
	embed := builders.InfoEmbed("Character sheets",
		"Abilities are read from your character's tab in the shared spreadsheet. "+
			"Ability names can be abbreviated as long as only one ability matches.").
		Field("/sheet roll ability:<name> [ability2:<name>] [character:<name>]",
			"Roll 2d10 and add the named abilities. Uses your claimed character unless one is given.", false).
		Field("/sheet claim character:<name>",
			"Claim a character for yourself in this server. Claiming again replaces your previous character.", false).
		Field("/sheet whoami", "Show the character you have claimed.", false).
		Field("/sheet claims", "List every claimed character in this server.", false).
		Build()

	return &core.HandlerResult{
		Response: core.NewEmbedResponse(embed).AsEphemeral(),
	}, nil
}
