package router

import (
	"github.com/chromium-bot/chromium/src/data"
)

// Module enumerates the loggable event classes. Routing is driven by the
// static category table below rather than by name matching.
type Module int

const (
	ModuleMessageDelete Module = iota
	ModuleMessageBulkDelete
	ModuleMessageEdit
	ModuleMemberJoin
	ModuleMemberLeave
	ModuleMemberBan
	ModuleMemberUnban
	ModuleMemberKick
	ModuleMemberTimeout
	ModuleNicknameUpdate
	ModuleVoiceState
	ModuleRoleUpdate
	ModuleChannelUpdate
	ModuleGuildUpdate
	ModuleEmojiUpdate
	ModuleWebhookUpdate
	ModuleInviteUpdate
)

var moduleNames = map[Module]string{
	ModuleMessageDelete:     "MessageDelete",
	ModuleMessageBulkDelete: "MessageBulkDelete",
	ModuleMessageEdit:       "MessageEdit",
	ModuleMemberJoin:        "MemberJoin",
	ModuleMemberLeave:       "MemberLeave",
	ModuleMemberBan:         "MemberBan",
	ModuleMemberUnban:       "MemberUnban",
	ModuleMemberKick:        "MemberKick",
	ModuleMemberTimeout:     "MemberTimeout",
	ModuleNicknameUpdate:    "NicknameUpdate",
	ModuleVoiceState:        "VoiceState",
	ModuleRoleUpdate:        "RoleUpdate",
	ModuleChannelUpdate:     "ChannelUpdate",
	ModuleGuildUpdate:       "GuildUpdate",
	ModuleEmojiUpdate:       "EmojiUpdate",
	ModuleWebhookUpdate:     "WebhookUpdate",
	ModuleInviteUpdate:      "InviteUpdate",
}

func (m Module) String() string {
	if name, ok := moduleNames[m]; ok {
		return name
	}
	return "Unknown"
}

// All returns every known module, for setup commands that enable the lot.
func All() []Module {
	out := make([]Module, 0, len(moduleNames))
	for m := ModuleMessageDelete; m <= ModuleInviteUpdate; m++ {
		out = append(out, m)
	}
	return out
}

// Category groups modules by which configured destination they prefer.
type Category int

const (
	CategoryGeneral Category = iota
	CategoryMessage
	CategoryMember
)

// Kicks and timeouts are membership events and route to the member channel.
var categories = map[Module]Category{
	ModuleMessageDelete:     CategoryMessage,
	ModuleMessageBulkDelete: CategoryMessage,
	ModuleMessageEdit:       CategoryMessage,
	ModuleMemberJoin:        CategoryMember,
	ModuleMemberLeave:       CategoryMember,
	ModuleMemberBan:         CategoryMember,
	ModuleMemberUnban:       CategoryMember,
	ModuleMemberKick:        CategoryMember,
	ModuleMemberTimeout:     CategoryMember,
	ModuleNicknameUpdate:    CategoryMember,
	ModuleVoiceState:        CategoryMember,
}

func (m Module) Category() Category {
	if c, ok := categories[m]; ok {
		return c
	}
	return CategoryGeneral
}

// Destination is where a formatted event summary should be sent. The
// fallback webhook, when present, is tried once after the preferred webhook
// fails, with a fallback annotation on the payload.
type Destination struct {
	ChannelID          string
	WebhookURL         string
	FallbackWebhookURL string
}

// Resolve picks the destination for a module under a guild configuration.
// Returns ok=false when the guild is not configured or the module is
// disabled, in which case delivery is skipped entirely.
//
// Unset category channels and webhooks fall back to the primary fields at
// read time. A suspicious event overrides the category mapping: it targets
// the suspicious channel when configured (else the primary channel) and is
// sent directly to the channel for visibility, bypassing webhooks.
func Resolve(cfg *data.GuildConfig, m Module, suspicious bool) (Destination, bool) {
	if cfg == nil || !cfg.ModuleEnabled(m.String()) {
		return Destination{}, false
	}

	if suspicious {
		ch := cfg.SuspiciousChannelID
		if ch == "" {
			ch = cfg.LogChannelID
		}
		if ch == "" {
			return Destination{}, false
		}
		return Destination{ChannelID: ch}, true
	}

	channel := cfg.LogChannelID
	webhook := cfg.LogWebhookURL
	switch m.Category() {
	case CategoryMessage:
		if cfg.MessageChannelID != "" {
			channel = cfg.MessageChannelID
		}
		if cfg.MessageWebhookURL != "" {
			webhook = cfg.MessageWebhookURL
		}
	case CategoryMember:
		if cfg.MemberChannelID != "" {
			channel = cfg.MemberChannelID
		}
		if cfg.MemberWebhookURL != "" {
			webhook = cfg.MemberWebhookURL
		}
	}

	if channel == "" && webhook == "" {
		return Destination{}, false
	}

	dest := Destination{ChannelID: channel, WebhookURL: webhook}
	if cfg.LogWebhookURL != "" && cfg.LogWebhookURL != webhook {
		dest.FallbackWebhookURL = cfg.LogWebhookURL
	}
	return dest, true
}
