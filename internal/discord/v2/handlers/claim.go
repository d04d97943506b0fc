package handlers

import (
	"fmt"
	"strings"

	"github.com/KirkDiggler/sheet-bot/internal/discord/v2/builders"
	"github.com/KirkDiggler/sheet-bot/internal/discord/v2/core"
	dnderr "github.com/KirkDiggler/sheet-bot/internal/errors"
)

// HandleClaim binds the caller to a character sheet
func (h *SheetHandler) HandleClaim(ctx *core.InteractionContext) (*core.HandlerResult, error) {
	character := strings.TrimSpace(ctx.GetStringParam("character"))
	if character == "" {
		return nil, core.NewValidationError("A character name is required, e.g. `/sheet claim character:Ada`.")
	}

	communityID, memberID, err := callerIDs(ctx)
	if err != nil {
		return nil, err
	}

	if err := h.claims.Claim(ctx.Context, communityID, memberID, character); err != nil {
		if dnderr.IsAlreadyExists(err) {
			return nil, core.NewHandlerError(err,
				fmt.Sprintf("**%s** has already been claimed by someone else in this server.", character),
				core.ErrorCodeConflict)
		}
		return nil, core.NewInternalError(err)
	}

	return &core.HandlerResult{
		Response: core.NewEmbedResponse(
			builders.SuccessEmbed("Character claimed", fmt.Sprintf("You are now playing **%s**.", character)).Build(),
		).AsEphemeral(),
	}, nil
}

// HandleWhoAmI reports the caller's claimed character
func (h *SheetHandler) HandleWhoAmI(ctx *core.InteractionContext) (*core.HandlerResult, error) {
	communityID, memberID, err := callerIDs(ctx)
	if err != nil {
		return nil, err
	}

	sheet, ok, err := h.claims.Lookup(ctx.Context, communityID, memberID)
	if err != nil {
		return nil, core.NewInternalError(err)
	}
	if !ok {
		return &core.HandlerResult{
			Response: core.NewEphemeralResponse(noClaimMessage),
		}, nil
	}

	return &core.HandlerResult{
		Response: core.NewEphemeralResponse(fmt.Sprintf("You are playing **%s**.", sheet)),
	}, nil
}

// HandleClaims lists every claim in the server
func (h *SheetHandler) HandleClaims(ctx *core.InteractionContext) (*core.HandlerResult, error) {
	communityID, _, err := callerIDs(ctx)
	if err != nil {
		return nil, err
	}

	list, err := h.claims.ListByCommunity(ctx.Context, communityID)
	if err != nil {
		return nil, core.NewInternalError(err)
	}

	embed := builders.NewListEmbed("Claimed characters")
	if len(list) == 0 {
		embed.Description("Nobody has claimed a character yet. Use `/sheet claim` to claim one.")
	}
	for _, c := range list {
		embed.AddItem(c.SheetName, fmt.Sprintf("<@%d>", c.MemberID))
	}

	return &core.HandlerResult{
		Response: core.NewEmbedResponse(embed.Build()).WithoutMentions(),
	}, nil
}
