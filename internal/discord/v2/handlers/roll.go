package handlers

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/KirkDiggler/sheet-bot/internal/discord/v2/builders"
	"github.com/KirkDiggler/sheet-bot/internal/discord/v2/core"
	"github.com/KirkDiggler/sheet-bot/internal/services/roll"
)

// HandleRoll rolls 2d10 plus one or two abilities from a character sheet
func (h *SheetHandler) HandleRoll(ctx *core.InteractionContext) (*core.HandlerResult, error) {
	first := strings.TrimSpace(ctx.GetStringParam("ability"))
	if first == "" {
		return nil, core.NewValidationError("An ability is required, e.g. `/sheet roll ability:str`.")
	}

	abilities := []string{first}
	if second := strings.TrimSpace(ctx.GetStringParam("ability2")); second != "" {
		abilities = append(abilities, second)
	}

	communityID, memberID, err := callerIDs(ctx)
	if err != nil {
		return nil, err
	}

	result, err := h.rollService.Roll(ctx.Context, &roll.Input{
		CommunityID: communityID,
		MemberID:    memberID,
		Character:   strings.TrimSpace(ctx.GetStringParam("character")),
		Abilities:   abilities,
	})
	if err != nil {
		return nil, resolveHandlerError(err)
	}

	return &core.HandlerResult{
		Response: core.NewEmbedResponse(rollEmbed(result)),
	}, nil
}

func rollEmbed(result *roll.Result) *discordgo.MessageEmbed {
	titleCase := cases.Title(language.English)
	names := make([]string, len(result.Abilities))
	for i, m := range result.Abilities {
		names[i] = titleCase.String(m.Name)
	}

	embed := builders.NewEmbed().
		Title(fmt.Sprintf("🎲 %s rolls %s", result.Character, strings.Join(names, " + "))).
		Description(fmt.Sprintf("**%d**", result.Total)).
		Color(builders.ColorPrimary)

	for i, m := range result.Abilities {
		embed.Field(names[i], fmt.Sprintf("%d", m.Value), true)
	}
	embed.Field(fmt.Sprintf("%dd%d", result.Dice.Count, result.Dice.Sides), diceFaces(result.Dice.Rolls), true)

	return embed.Build()
}

func diceFaces(rolls []int) string {
	faces := make([]string, len(rolls))
	for i, r := range rolls {
		faces[i] = fmt.Sprintf("%d", r)
	}
	return strings.Join(faces, " + ")
}
