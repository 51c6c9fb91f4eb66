package modules

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/chromium-bot/chromium/src/components/router"
	"github.com/chromium-bot/chromium/src/components/suspicious"
	dc "github.com/chromium-bot/chromium/src/discord"
)

const contentLimit = 1500

// OnMessageDelete logs single deletions. Content and author come from the
// session state cache; an uncached message still logs with IDs only.
func (h *Handlers) OnMessageDelete(s *discordgo.Session, e *discordgo.MessageDelete) {
	if e.GuildID == "" {
		return
	}

	cached := e.BeforeDelete
	var author *discordgo.User
	if cached != nil {
		author = cached.Author
	}
	actorID := ""
	if author != nil {
		actorID = author.ID
	}

	sub := subject(s, e.GuildID, actorID, e.ChannelID)
	if !h.Dispatcher.EvaluatePolicy(e.GuildID, sub.ActorID, sub.RoleIDs, sub.ChannelID) {
		return
	}

	flagged := false
	if actorID != "" {
		flagged = h.Detector.Record(suspicious.CategoryDelete, e.GuildID, actorID)
	}

	desc := fmt.Sprintf("**Message deleted in <#%s>**", e.ChannelID)
	if author != nil {
		desc = fmt.Sprintf("**Message sent by %s deleted in <#%s>**", author.Mention(), e.ChannelID)
	}
	if cached != nil && cached.Content != "" {
		desc += "\n\n**Content:**\n" + dc.Truncate(cached.Content, contentLimit)
	}
	if cached != nil && len(cached.Attachments) > 0 {
		desc += "\n\n**Attachments:**"
		for _, a := range cached.Attachments {
			desc += fmt.Sprintf("\n- `%s` (%.2f KB)\n%s", a.Filename, float64(a.Size)/1024, a.URL)
		}
	}

	embed := dc.NewEmbed("Message Deleted", desc, dc.ColorError)
	dc.SetFooter(embed, fmt.Sprintf("Message ID: %s", e.ID))
	if author != nil {
		dc.SetAuthor(embed, author.Username, avatarURL(author))
		dc.SetFooter(embed, fmt.Sprintf("User ID: %s | Message ID: %s", author.ID, e.ID))
	}

	h.Dispatcher.Dispatch(e.GuildID, router.ModuleMessageDelete, embed, flagged)
}

// OnMessageDeleteBulk logs purges, with the executor pulled from the audit
// log when visible.
func (h *Handlers) OnMessageDeleteBulk(s *discordgo.Session, e *discordgo.MessageDeleteBulk) {
	if e.GuildID == "" {
		return
	}

	count := len(e.Messages)
	embed := dc.NewEmbed("Bulk Message Delete",
		fmt.Sprintf("**%d messages were bulk deleted in <#%s>**", count, e.ChannelID),
		dc.ColorError)
	dc.SetFooter(embed, "Channel ID: "+e.ChannelID)

	if entry := dc.FindAuditEntry(s, e.GuildID, discordgo.AuditLogActionMessageBulkDelete, e.ChannelID, 1); entry != nil {
		dc.AddField(embed, "Purged By", "<@"+entry.UserID+">", true)
		dc.AddField(embed, "Reason", entry.Reason, true)
	}

	h.Dispatcher.Dispatch(e.GuildID, router.ModuleMessageBulkDelete, embed, false)
}

// OnMessageUpdate logs edits, diffing against the state-cached original.
// Embed-only updates (link unfurls) carry no content change and are
// skipped.
func (h *Handlers) OnMessageUpdate(s *discordgo.Session, e *discordgo.MessageUpdate) {
	if e.GuildID == "" || e.Author == nil || e.Author.Bot {
		return
	}

	before := e.BeforeUpdate
	if before != nil && before.Content == e.Content {
		return
	}

	sub := subject(s, e.GuildID, e.Author.ID, e.ChannelID)
	if !h.Dispatcher.EvaluatePolicy(e.GuildID, sub.ActorID, sub.RoleIDs, sub.ChannelID) {
		return
	}

	flagged := h.Detector.Record(suspicious.CategoryEdit, e.GuildID, e.Author.ID)

	desc := fmt.Sprintf("**Message by %s edited in <#%s>**", e.Author.Mention(), e.ChannelID)
	embed := dc.NewEmbed("Message Edited", desc, dc.ColorWarn)
	if before != nil && before.Content != "" {
		dc.AddField(embed, "Before", dc.Truncate(before.Content, 1024), false)
	}
	if e.Content != "" {
		dc.AddField(embed, "After", dc.Truncate(e.Content, 1024), false)
	}
	dc.SetAuthor(embed, e.Author.Username, avatarURL(e.Author))
	dc.SetFooter(embed, fmt.Sprintf("User ID: %s | Message ID: %s", e.Author.ID, e.ID))

	h.Dispatcher.Dispatch(e.GuildID, router.ModuleMessageEdit, embed, flagged)
}
