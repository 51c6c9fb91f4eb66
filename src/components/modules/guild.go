package modules

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/chromium-bot/chromium/src/components/router"
	dc "github.com/chromium-bot/chromium/src/discord"
)

func (h *Handlers) OnGuildRoleCreate(s *discordgo.Session, e *discordgo.GuildRoleCreate) {
	if e.Role == nil {
		return
	}
	embed := dc.NewEmbed("Role Created", fmt.Sprintf("Role **%s** was created.", e.Role.Name), dc.ColorSuccess)
	dc.SetFooter(embed, "Role ID: "+e.Role.ID)
	h.Dispatcher.Dispatch(e.GuildID, router.ModuleRoleUpdate, embed, false)
}

func (h *Handlers) OnGuildRoleUpdate(s *discordgo.Session, e *discordgo.GuildRoleUpdate) {
	if e.Role == nil {
		return
	}
	embed := dc.NewEmbed("Role Updated", fmt.Sprintf("Role **%s** was updated.", e.Role.Name), dc.ColorInfo)
	dc.AddField(embed, "Permissions", fmt.Sprintf("`%d`", e.Role.Permissions), true)
	dc.SetFooter(embed, "Role ID: "+e.Role.ID)
	h.Dispatcher.Dispatch(e.GuildID, router.ModuleRoleUpdate, embed, false)
}

func (h *Handlers) OnGuildRoleDelete(s *discordgo.Session, e *discordgo.GuildRoleDelete) {
	embed := dc.NewEmbed("Role Deleted", "A role was deleted.", dc.ColorError)
	dc.SetFooter(embed, "Role ID: "+e.RoleID)
	h.Dispatcher.Dispatch(e.GuildID, router.ModuleRoleUpdate, embed, false)
}

func (h *Handlers) OnChannelCreate(s *discordgo.Session, e *discordgo.ChannelCreate) {
	if e.GuildID == "" {
		return
	}
	embed := dc.NewEmbed("Channel Created", fmt.Sprintf("Channel **%s** (<#%s>) was created.", e.Name, e.ID), dc.ColorSuccess)
	dc.SetFooter(embed, "Channel ID: "+e.ID)
	h.Dispatcher.Dispatch(e.GuildID, router.ModuleChannelUpdate, embed, false)
}

func (h *Handlers) OnChannelUpdate(s *discordgo.Session, e *discordgo.ChannelUpdate) {
	if e.GuildID == "" {
		return
	}
	embed := dc.NewEmbed("Channel Updated", fmt.Sprintf("Channel <#%s> was updated.", e.ID), dc.ColorInfo)
	if e.BeforeUpdate != nil && e.BeforeUpdate.Name != e.Name {
		dc.AddField(embed, "Before", e.BeforeUpdate.Name, true)
		dc.AddField(embed, "After", e.Name, true)
	}
	dc.SetFooter(embed, "Channel ID: "+e.ID)
	h.Dispatcher.Dispatch(e.GuildID, router.ModuleChannelUpdate, embed, false)
}

func (h *Handlers) OnChannelDelete(s *discordgo.Session, e *discordgo.ChannelDelete) {
	if e.GuildID == "" {
		return
	}
	embed := dc.NewEmbed("Channel Deleted", fmt.Sprintf("Channel **%s** was deleted.", e.Name), dc.ColorError)
	dc.SetFooter(embed, "Channel ID: "+e.ID)
	h.Dispatcher.Dispatch(e.GuildID, router.ModuleChannelUpdate, embed, false)
}

func (h *Handlers) OnGuildUpdate(s *discordgo.Session, e *discordgo.GuildUpdate) {
	if e.Guild == nil {
		return
	}
	embed := dc.NewEmbed("Server Updated", fmt.Sprintf("Server settings for **%s** were updated.", e.Name), dc.ColorInfo)
	dc.SetFooter(embed, "Guild ID: "+e.ID)
	h.Dispatcher.Dispatch(e.ID, router.ModuleGuildUpdate, embed, false)
}

func (h *Handlers) OnGuildEmojisUpdate(s *discordgo.Session, e *discordgo.GuildEmojisUpdate) {
	embed := dc.NewEmbed("Emojis Updated", fmt.Sprintf("The server emoji set changed (%d emojis).", len(e.Emojis)), dc.ColorInfo)
	h.Dispatcher.Dispatch(e.GuildID, router.ModuleEmojiUpdate, embed, false)
}

// OnWebhooksUpdate fires when any webhook in a channel changes; the
// gateway does not say which, so the log points at the channel.
func (h *Handlers) OnWebhooksUpdate(s *discordgo.Session, e *discordgo.WebhooksUpdate) {
	embed := dc.NewEmbed("Webhooks Updated", fmt.Sprintf("Webhooks changed in <#%s>.", e.ChannelID), dc.ColorWarn)
	dc.SetFooter(embed, "Channel ID: "+e.ChannelID)
	h.Dispatcher.Dispatch(e.GuildID, router.ModuleWebhookUpdate, embed, false)
}

func (h *Handlers) OnInviteCreate(s *discordgo.Session, e *discordgo.InviteCreate) {
	embed := dc.NewEmbed("Invite Created", fmt.Sprintf("Invite `%s` created for <#%s>.", e.Code, e.ChannelID), dc.ColorSuccess)
	if e.Inviter != nil {
		dc.AddField(embed, "By", e.Inviter.Mention(), true)
	}
	if e.MaxUses > 0 {
		dc.AddField(embed, "Max Uses", fmt.Sprintf("%d", e.MaxUses), true)
	}
	h.Dispatcher.Dispatch(e.GuildID, router.ModuleInviteUpdate, embed, false)
}

func (h *Handlers) OnInviteDelete(s *discordgo.Session, e *discordgo.InviteDelete) {
	embed := dc.NewEmbed("Invite Deleted", fmt.Sprintf("Invite `%s` for <#%s> was deleted.", e.Code, e.ChannelID), dc.ColorError)
	h.Dispatcher.Dispatch(e.GuildID, router.ModuleInviteUpdate, embed, false)
}
