package discord

import (
	"time"

	"github.com/bwmarrin/discordgo"
)

// Embed colors, matching the Discord brand palette for severity.
const (
	ColorError      = 0xED4245
	ColorSuccess    = 0x57F287
	ColorInfo       = 0x3498DB
	ColorWarn       = 0xFEE75C
	ColorSuspicious = 0x992D22
)

// NewEmbed builds a timestamped embed.
func NewEmbed(title, description string, color int) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       title,
		Description: description,
		Color:       color,
		Timestamp:   time.Now().Format(time.RFC3339),
	}
}

// SetAuthor attaches an author line for the user an event concerns.
func SetAuthor(e *discordgo.MessageEmbed, name, iconURL string) *discordgo.MessageEmbed {
	e.Author = &discordgo.MessageEmbedAuthor{Name: name, IconURL: iconURL}
	return e
}

// SetFooter sets the footer text, typically entity IDs for moderators.
func SetFooter(e *discordgo.MessageEmbed, text string) *discordgo.MessageEmbed {
	e.Footer = &discordgo.MessageEmbedFooter{Text: text}
	return e
}

// AddField appends a field.
func AddField(e *discordgo.MessageEmbed, name, value string, inline bool) *discordgo.MessageEmbed {
	if value == "" {
		return e
	}
	e.Fields = append(e.Fields, &discordgo.MessageEmbedField{Name: name, Value: value, Inline: inline})
	return e
}

// MarkSuspicious restyles an embed that tripped the burst detector so it
// stands out in the escalation channel.
func MarkSuspicious(e *discordgo.MessageEmbed) *discordgo.MessageEmbed {
	e.Color = ColorSuspicious
	e.Title = "⚠️ Suspicious Activity: " + e.Title
	return e
}

// AnnotateFallback returns a copy of the embed marked as delivered through
// the fallback webhook tier. The original is left untouched so a later
// channel-tier retry sends the clean payload.
func AnnotateFallback(e *discordgo.MessageEmbed) *discordgo.MessageEmbed {
	copied := *e
	note := "Sent via fallback"
	if e.Footer != nil && e.Footer.Text != "" {
		copied.Footer = &discordgo.MessageEmbedFooter{Text: e.Footer.Text + " | " + note, IconURL: e.Footer.IconURL}
	} else {
		copied.Footer = &discordgo.MessageEmbedFooter{Text: note}
	}
	return &copied
}

// Truncate keeps embed field values inside Discord limits.
func Truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
