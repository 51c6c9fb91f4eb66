package modules

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/chromium-bot/chromium/src/components/router"
	"github.com/chromium-bot/chromium/src/components/suspicious"
	dc "github.com/chromium-bot/chromium/src/discord"
)

// kickAuditWindow bounds how old a kick audit entry may be and still be
// attributed to the member-remove event that just fired.
const kickAuditWindow = 10 * time.Second

func (h *Handlers) OnGuildMemberAdd(s *discordgo.Session, e *discordgo.GuildMemberAdd) {
	if e.User == nil {
		return
	}

	sub := subject(s, e.GuildID, e.User.ID, "")
	if !h.Dispatcher.EvaluatePolicy(e.GuildID, sub.ActorID, sub.RoleIDs, "") {
		return
	}

	// Raids are detected per guild, not per joiner.
	flagged := h.Detector.Record(suspicious.CategoryJoin, e.GuildID, "")

	embed := dc.NewEmbed("Member Joined", userLabel(e.User)+" joined the server.", dc.ColorSuccess)
	if created, err := discordgo.SnowflakeTimestamp(e.User.ID); err == nil {
		dc.AddField(embed, "Account Created", fmt.Sprintf("<t:%d:R>", created.Unix()), true)
	}
	dc.SetAuthor(embed, e.User.Username, avatarURL(e.User))
	dc.SetFooter(embed, "User ID: "+e.User.ID)

	h.Dispatcher.Dispatch(e.GuildID, router.ModuleMemberJoin, embed, flagged)
}

// OnGuildMemberRemove distinguishes kicks from voluntary leaves by probing
// the audit log for a fresh kick entry targeting the member.
func (h *Handlers) OnGuildMemberRemove(s *discordgo.Session, e *discordgo.GuildMemberRemove) {
	if e.User == nil {
		return
	}

	sub := subject(s, e.GuildID, e.User.ID, "")
	if !h.Dispatcher.EvaluatePolicy(e.GuildID, sub.ActorID, sub.RoleIDs, "") {
		return
	}

	if entry := dc.FindRecentAuditEntry(s, e.GuildID, discordgo.AuditLogActionMemberKick, e.User.ID, 5, kickAuditWindow); entry != nil {
		flagged := h.Detector.Record(suspicious.CategoryKick, e.GuildID, entry.UserID)

		embed := dc.NewEmbed("Member Kicked", userLabel(e.User)+" was kicked.", dc.ColorError)
		dc.AddField(embed, "By", "<@"+entry.UserID+">", true)
		reason := entry.Reason
		if reason == "" {
			reason = "No reason provided"
		}
		dc.AddField(embed, "Reason", reason, false)
		dc.SetFooter(embed, "User ID: "+e.User.ID)

		h.Dispatcher.Dispatch(e.GuildID, router.ModuleMemberKick, embed, flagged)
		return
	}

	embed := dc.NewEmbed("Member Left", userLabel(e.User)+" left the server.", dc.ColorWarn)
	dc.SetAuthor(embed, e.User.Username, avatarURL(e.User))
	dc.SetFooter(embed, "User ID: "+e.User.ID)

	h.Dispatcher.Dispatch(e.GuildID, router.ModuleMemberLeave, embed, false)
}

func (h *Handlers) OnGuildBanAdd(s *discordgo.Session, e *discordgo.GuildBanAdd) {
	if e.User == nil {
		return
	}

	embed := dc.NewEmbed("Member Banned", userLabel(e.User)+" has been banned.", dc.ColorError)
	dc.SetAuthor(embed, e.User.Username, avatarURL(e.User))
	dc.SetFooter(embed, "User ID: "+e.User.ID)

	flagged := false
	if entry := dc.FindAuditEntry(s, e.GuildID, discordgo.AuditLogActionMemberBanAdd, e.User.ID, 1); entry != nil {
		reason := entry.Reason
		if reason == "" {
			reason = "No reason provided"
		}
		dc.AddField(embed, "Reason", reason, false)
		dc.AddField(embed, "Banned By", "<@"+entry.UserID+">", true)
		flagged = h.Detector.Record(suspicious.CategoryBan, e.GuildID, entry.UserID)
	}

	h.Dispatcher.Dispatch(e.GuildID, router.ModuleMemberBan, embed, flagged)
}

func (h *Handlers) OnGuildBanRemove(s *discordgo.Session, e *discordgo.GuildBanRemove) {
	if e.User == nil {
		return
	}

	embed := dc.NewEmbed("Member Unbanned", userLabel(e.User)+" has been unbanned.", dc.ColorSuccess)
	dc.SetAuthor(embed, e.User.Username, avatarURL(e.User))
	dc.SetFooter(embed, "User ID: "+e.User.ID)

	if entry := dc.FindAuditEntry(s, e.GuildID, discordgo.AuditLogActionMemberBanRemove, e.User.ID, 1); entry != nil {
		dc.AddField(embed, "Unbanned By", "<@"+entry.UserID+">", true)
	}

	h.Dispatcher.Dispatch(e.GuildID, router.ModuleMemberUnban, embed, false)
}

// OnGuildMemberUpdate covers nickname changes and timeouts; both arrive as
// member updates on the gateway.
func (h *Handlers) OnGuildMemberUpdate(s *discordgo.Session, e *discordgo.GuildMemberUpdate) {
	if e.User == nil {
		return
	}
	before := e.BeforeUpdate

	if before != nil && before.Nick != e.Nick {
		sub := subject(s, e.GuildID, e.User.ID, "")
		if !h.Dispatcher.EvaluatePolicy(e.GuildID, sub.ActorID, sub.RoleIDs, "") {
			return
		}

		embed := dc.NewEmbed("Nickname Changed", userLabel(e.User)+" changed nickname.", dc.ColorInfo)
		dc.AddField(embed, "Before", displayNick(before.Nick), true)
		dc.AddField(embed, "After", displayNick(e.Nick), true)
		dc.SetFooter(embed, "User ID: "+e.User.ID)

		h.Dispatcher.Dispatch(e.GuildID, router.ModuleNicknameUpdate, embed, false)
	}

	if timeoutChanged(before, e.Member) {
		embed := dc.NewEmbed("Member Timeout Updated", userLabel(e.User), dc.ColorWarn)
		if e.CommunicationDisabledUntil != nil && e.CommunicationDisabledUntil.After(time.Now()) {
			dc.AddField(embed, "Timed Out Until", fmt.Sprintf("<t:%d:f>", e.CommunicationDisabledUntil.Unix()), true)
		} else {
			embed.Description = userLabel(e.User) + " timeout removed."
		}
		if entry := dc.FindRecentAuditEntry(s, e.GuildID, discordgo.AuditLogActionMemberUpdate, e.User.ID, 5, kickAuditWindow); entry != nil {
			dc.AddField(embed, "By", "<@"+entry.UserID+">", true)
			dc.AddField(embed, "Reason", entry.Reason, false)
		}
		dc.SetFooter(embed, "User ID: "+e.User.ID)

		h.Dispatcher.Dispatch(e.GuildID, router.ModuleMemberTimeout, embed, false)
	}
}

func (h *Handlers) OnVoiceStateUpdate(s *discordgo.Session, e *discordgo.VoiceStateUpdate) {
	if e.GuildID == "" || e.UserID == "" {
		return
	}

	before := e.BeforeUpdate
	var title, desc string
	switch {
	case (before == nil || before.ChannelID == "") && e.ChannelID != "":
		title, desc = "Voice Channel Joined", fmt.Sprintf("<@%s> joined <#%s>", e.UserID, e.ChannelID)
	case before != nil && before.ChannelID != "" && e.ChannelID == "":
		title, desc = "Voice Channel Left", fmt.Sprintf("<@%s> left <#%s>", e.UserID, before.ChannelID)
	case before != nil && before.ChannelID != "" && e.ChannelID != "" && before.ChannelID != e.ChannelID:
		title, desc = "Voice Channel Moved", fmt.Sprintf("<@%s> moved from <#%s> to <#%s>", e.UserID, before.ChannelID, e.ChannelID)
	default:
		return // mute/deafen toggles are noise
	}

	sub := subject(s, e.GuildID, e.UserID, e.ChannelID)
	if !h.Dispatcher.EvaluatePolicy(e.GuildID, sub.ActorID, sub.RoleIDs, sub.ChannelID) {
		return
	}

	embed := dc.NewEmbed(title, desc, dc.ColorInfo)
	dc.SetFooter(embed, "User ID: "+e.UserID)

	h.Dispatcher.Dispatch(e.GuildID, router.ModuleVoiceState, embed, false)
}

func displayNick(nick string) string {
	if nick == "" {
		return "*none*"
	}
	return nick
}

func timeoutChanged(before, after *discordgo.Member) bool {
	if after == nil {
		return false
	}
	b, a := (*time.Time)(nil), after.CommunicationDisabledUntil
	if before != nil {
		b = before.CommunicationDisabledUntil
	}
	switch {
	case b == nil && a == nil:
		return false
	case b == nil || a == nil:
		return true
	default:
		return !b.Equal(*a)
	}
}
