package policy

import (
	"log"

	"github.com/chromium-bot/chromium/src/data"
)

// EntrySource supplies the policy entries for a guild. *data.ListStore
// satisfies it; tests inject a stub.
type EntrySource interface {
	All(guildID string) ([]data.PolicyEntry, error)
}

// Subject is the actor/channel pair an event is evaluated against. Actor
// and channel are both optional.
type Subject struct {
	ActorID   string
	RoleIDs   []string
	ChannelID string
}

// Engine decides whether an event is logged at all. The bot is opt-out by
// design: with no matching rule, and on any lookup failure, the answer is
// log.
type Engine struct {
	source EntrySource
}

func New(source EntrySource) *Engine {
	return &Engine{source: source}
}

// ShouldLog evaluates the layered allow/deny lists with fixed precedence,
// first match wins:
//
//  1. actor on the allow list        -> log
//  2. actor on the deny list         -> skip
//  3. channel on the allow list      -> log
//  4. any actor role on the allow list -> log
//  5. channel on the deny list       -> skip
//  6. any actor role on the deny list  -> skip
//  7. nothing matched                -> log
//
// Malformed entries and entries for a foreign guild are ignored.
func (e *Engine) ShouldLog(guildID string, sub Subject) bool {
	entries, err := e.source.All(guildID)
	if err != nil {
		log.Printf("policy: lookup failed for guild %s, defaulting to log: %v", guildID, err)
		return true
	}
	if len(entries) == 0 {
		return true
	}

	type key struct {
		list   data.ListType
		entity data.EntityType
	}
	sets := make(map[key]map[string]struct{})
	add := func(entry data.PolicyEntry) {
		k := key{entry.ListType, entry.EntityType}
		if sets[k] == nil {
			sets[k] = make(map[string]struct{})
		}
		sets[k][entry.EntityID] = struct{}{}
	}
	for _, entry := range entries {
		if entry.GuildID != guildID || entry.EntityID == "" {
			continue
		}
		switch entry.EntityType {
		case data.EntityUser, data.EntityRole, data.EntityChannel:
		default:
			continue
		}
		switch entry.ListType {
		case data.ListAllow, data.ListDeny:
		default:
			continue
		}
		add(entry)
	}

	has := func(list data.ListType, entity data.EntityType, id string) bool {
		if id == "" {
			return false
		}
		_, ok := sets[key{list, entity}][id]
		return ok
	}
	anyRole := func(list data.ListType) bool {
		for _, roleID := range sub.RoleIDs {
			if has(list, data.EntityRole, roleID) {
				return true
			}
		}
		return false
	}

	switch {
	case has(data.ListAllow, data.EntityUser, sub.ActorID):
		return true
	case has(data.ListDeny, data.EntityUser, sub.ActorID):
		return false
	case has(data.ListAllow, data.EntityChannel, sub.ChannelID):
		return true
	case anyRole(data.ListAllow):
		return true
	case has(data.ListDeny, data.EntityChannel, sub.ChannelID):
		return false
	case anyRole(data.ListDeny):
		return false
	}
	return true
}
