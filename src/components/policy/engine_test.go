package policy

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chromium-bot/chromium/src/data"
)

type stubSource struct {
	entries []data.PolicyEntry
	err     error
}

func (s stubSource) All(guildID string) ([]data.PolicyEntry, error) {
	return s.entries, s.err
}

func entry(guildID string, list data.ListType, entity data.EntityType, id string) data.PolicyEntry {
	return data.PolicyEntry{GuildID: guildID, ListType: list, EntityType: entity, EntityID: id}
}

func TestShouldLogDefaultsToLog(t *testing.T) {
	e := New(stubSource{})
	assert.True(t, e.ShouldLog("g1", Subject{ActorID: "u1"}))
}

func TestShouldLogFailsOpenOnLookupError(t *testing.T) {
	e := New(stubSource{err: errors.New("db down")})
	assert.True(t, e.ShouldLog("g1", Subject{ActorID: "u1"}))
}

func TestShouldLogPrecedence(t *testing.T) {
	const g = "g1"
	sub := Subject{ActorID: "u1", RoleIDs: []string{"r1", "r2"}, ChannelID: "c1"}

	tests := []struct {
		name    string
		entries []data.PolicyEntry
		want    bool
	}{
		{
			name:    "user deny",
			entries: []data.PolicyEntry{entry(g, data.ListDeny, data.EntityUser, "u1")},
			want:    false,
		},
		{
			name: "user allow beats user deny",
			entries: []data.PolicyEntry{
				entry(g, data.ListDeny, data.EntityUser, "u1"),
				entry(g, data.ListAllow, data.EntityUser, "u1"),
			},
			want: true,
		},
		{
			name: "user deny beats channel allow",
			entries: []data.PolicyEntry{
				entry(g, data.ListAllow, data.EntityChannel, "c1"),
				entry(g, data.ListDeny, data.EntityUser, "u1"),
			},
			want: false,
		},
		{
			name: "channel allow beats role deny",
			entries: []data.PolicyEntry{
				entry(g, data.ListDeny, data.EntityRole, "r1"),
				entry(g, data.ListAllow, data.EntityChannel, "c1"),
			},
			want: true,
		},
		{
			name: "role allow beats channel deny",
			entries: []data.PolicyEntry{
				entry(g, data.ListDeny, data.EntityChannel, "c1"),
				entry(g, data.ListAllow, data.EntityRole, "r2"),
			},
			want: true,
		},
		{
			name:    "channel deny",
			entries: []data.PolicyEntry{entry(g, data.ListDeny, data.EntityChannel, "c1")},
			want:    false,
		},
		{
			name:    "role deny",
			entries: []data.PolicyEntry{entry(g, data.ListDeny, data.EntityRole, "r2")},
			want:    false,
		},
		{
			name:    "unrelated entries leave the default",
			entries: []data.PolicyEntry{entry(g, data.ListDeny, data.EntityUser, "someone-else")},
			want:    true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := New(stubSource{entries: tc.entries})
			assert.Equal(t, tc.want, e.ShouldLog(g, sub))
		})
	}
}

func TestShouldLogIgnoresMalformedEntries(t *testing.T) {
	entries := []data.PolicyEntry{
		entry("other-guild", data.ListDeny, data.EntityUser, "u1"),
		entry("g1", data.ListDeny, data.EntityUser, ""),
		{GuildID: "g1", ListType: "blocklist", EntityType: data.EntityUser, EntityID: "u1"},
		{GuildID: "g1", ListType: data.ListDeny, EntityType: "webhook", EntityID: "u1"},
	}
	e := New(stubSource{entries: entries})
	assert.True(t, e.ShouldLog("g1", Subject{ActorID: "u1"}))
}

func TestShouldLogEmptySubjectFieldsNeverMatch(t *testing.T) {
	// An entry with a blank ID must not match a subject with no channel.
	entries := []data.PolicyEntry{entry("g1", data.ListDeny, data.EntityChannel, "c9")}
	e := New(stubSource{entries: entries})
	assert.True(t, e.ShouldLog("g1", Subject{ActorID: "u1"}))
}
