package handlers

import (
	"github.com/bwmarrin/discordgo"
)

// CommandName is the slash command every subcommand hangs off
const CommandName = "sheet"

// Commands returns the application commands to register with Discord
func Commands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        CommandName,
			Description: "Roll against and claim character sheets",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "roll",
					Description: "Roll 2d10 plus one or two abilities",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "ability",
							Description: "Ability name or unambiguous prefix",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "ability2",
							Description: "Second ability to add",
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "character",
							Description: "Character sheet to roll for (defaults to your claim)",
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "claim",
					Description: "Claim a character sheet in this server",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "character",
							Description: "Name of the character's sheet tab",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "whoami",
					Description: "Show the character you have claimed",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "claims",
					Description: "List claimed characters in this server",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "help",
					Description: "How to use the character sheet commands",
				},
			},
		},
	}
}
