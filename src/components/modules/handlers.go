package modules

import (
	"github.com/bwmarrin/discordgo"

	"github.com/chromium-bot/chromium/src/components/dispatch"
	"github.com/chromium-bot/chromium/src/components/policy"
	"github.com/chromium-bot/chromium/src/components/suspicious"
)

// Handlers maps gateway events onto the logging pipeline. One instance is
// registered on the session for all event classes.
type Handlers struct {
	Dispatcher *dispatch.Dispatcher
	Detector   *suspicious.Detector
}

func New(d *dispatch.Dispatcher, det *suspicious.Detector) *Handlers {
	return &Handlers{Dispatcher: d, Detector: det}
}

// subject builds the policy subject for an event. Role IDs come from the
// session state cache; an uncached member just evaluates without roles.
func subject(s *discordgo.Session, guildID, userID, channelID string) policy.Subject {
	sub := policy.Subject{ActorID: userID, ChannelID: channelID}
	if guildID == "" || userID == "" {
		return sub
	}
	if member, err := s.State.Member(guildID, userID); err == nil && member != nil {
		sub.RoleIDs = member.Roles
	}
	return sub
}

func userLabel(u *discordgo.User) string {
	if u == nil {
		return "unknown user"
	}
	return u.Mention() + " (`" + u.Username + "`)"
}

func avatarURL(u *discordgo.User) string {
	if u == nil {
		return ""
	}
	return u.AvatarURL("")
}
