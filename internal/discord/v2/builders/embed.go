package builders

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// EmbedBuilder provides a fluent API for building Discord embeds
type EmbedBuilder struct {
	embed *discordgo.MessageEmbed
}

// NewEmbed creates a new embed builder
func NewEmbed() *EmbedBuilder {
	return &EmbedBuilder{
		embed: &discordgo.MessageEmbed{
			Type:   discordgo.EmbedTypeRich,
			Fields: make([]*discordgo.MessageEmbedField, 0),
		},
	}
}

// Title sets the embed title
func (b *EmbedBuilder) Title(title string) *EmbedBuilder {
	b.embed.Title = title
	return b
}

// Description sets the embed description
func (b *EmbedBuilder) Description(description string) *EmbedBuilder {
	b.embed.Description = description
	return b
}

// Color sets the embed color
func (b *EmbedBuilder) Color(color int) *EmbedBuilder {
	b.embed.Color = color
	return b
}

// Footer sets the embed footer
func (b *EmbedBuilder) Footer(text string) *EmbedBuilder {
	b.embed.Footer = &discordgo.MessageEmbedFooter{
		Text: text,
	}
	return b
}

// Field adds a field to the embed
func (b *EmbedBuilder) Field(name, value string, inline bool) *EmbedBuilder {
	b.embed.Fields = append(b.embed.Fields, &discordgo.MessageEmbedField{
		Name:   name,
		Value:  value,
		Inline: inline,
	})
	return b
}

// Build returns the constructed embed
func (b *EmbedBuilder) Build() *discordgo.MessageEmbed {
	return b.embed
}

// Common embed colors
const (
	ColorSuccess = 0x00ff00 // Green
	ColorError   = 0xff0000 // Red
	ColorInfo    = 0x0099ff // Blue
	ColorPrimary = 0x7289da // Discord Blurple
)

// SuccessEmbed creates a pre-styled success embed
func SuccessEmbed(title, description string) *EmbedBuilder {
	return NewEmbed().
		Title("✅ " + title).
		Description(description).
		Color(ColorSuccess)
}

// ErrorEmbed creates a pre-styled error embed
func ErrorEmbed(title, description string) *EmbedBuilder {
	return NewEmbed().
		Title("❌ " + title).
		Description(description).
		Color(ColorError)
}

// InfoEmbed creates a pre-styled info embed
func InfoEmbed(title, description string) *EmbedBuilder {
	return NewEmbed().
		Title("ℹ️ " + title).
		Description(description).
		Color(ColorInfo)
}

// MaxFields is Discord's limit on fields per embed
const MaxFields = 25

// ListEmbedBuilder lists items as fields, truncating past MaxFields
type ListEmbedBuilder struct {
	*EmbedBuilder
	total int
}

// NewListEmbed creates a new list embed builder
func NewListEmbed(title string) *ListEmbedBuilder {
	return &ListEmbedBuilder{
		EmbedBuilder: NewEmbed().Title(title).Color(ColorPrimary),
	}
}

// AddItem adds an item to the list
func (b *ListEmbedBuilder) AddItem(name, value string) *ListEmbedBuilder {
	b.total++
	if len(b.embed.Fields) < MaxFields {
		b.Field(name, value, true)
	}
	return b
}

// Build sets the footer to the item count and returns the embed
func (b *ListEmbedBuilder) Build() *discordgo.MessageEmbed {
	if b.total > len(b.embed.Fields) {
		b.Footer(fmt.Sprintf("Showing %d of %d", len(b.embed.Fields), b.total))
	} else {
		b.Footer(fmt.Sprintf("Total: %d", b.total))
	}
	return b.embed
}
