package data

import (
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// The in-memory database lives per connection; pin the pool to one.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, Migrate(db))
	return db
}

func TestListStoreAddUpsert(t *testing.T) {
	s := NewListStore(newTestDB(t))

	require.NoError(t, s.Add(PolicyEntry{
		GuildID: "g1", ListType: ListDeny, EntityType: EntityUser,
		EntityID: "u1", EntityName: "spammer",
	}))
	// Re-adding the same (guild, list, entity) replaces name and type
	// instead of duplicating.
	require.NoError(t, s.Add(PolicyEntry{
		GuildID: "g1", ListType: ListDeny, EntityType: EntityRole,
		EntityID: "u1", EntityName: "spam role",
	}))

	entries, err := s.List("g1", ListDeny)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "spam role", entries[0].EntityName)
	assert.Equal(t, EntityRole, entries[0].EntityType)

	// The same entity on the other list is a distinct entry.
	require.NoError(t, s.Add(PolicyEntry{
		GuildID: "g1", ListType: ListAllow, EntityType: EntityUser,
		EntityID: "u1", EntityName: "spammer",
	}))
	all, err := s.All("g1")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestListStoreRemove(t *testing.T) {
	s := NewListStore(newTestDB(t))

	require.NoError(t, s.Add(PolicyEntry{
		GuildID: "g1", ListType: ListDeny, EntityType: EntityUser, EntityID: "u1",
	}))
	require.NoError(t, s.Remove("g1", ListDeny, "u1"))
	// Removing a missing entry stays a no-op.
	require.NoError(t, s.Remove("g1", ListDeny, "u1"))

	entries, err := s.List("g1", ListDeny)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestListStoreListNewestFirst(t *testing.T) {
	s := NewListStore(newTestDB(t))

	for i := 0; i < 3; i++ {
		require.NoError(t, s.Add(PolicyEntry{
			GuildID: "g1", ListType: ListAllow, EntityType: EntityUser,
			EntityID: fmt.Sprintf("u%d", i), EntityName: fmt.Sprintf("user %d", i),
		}))
	}

	entries, err := s.List("g1", ListAllow)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "u2", entries[0].EntityID)
	assert.Equal(t, "u0", entries[2].EntityID)
}

func TestListStoreSearchCaseInsensitive(t *testing.T) {
	s := NewListStore(newTestDB(t))

	require.NoError(t, s.Add(PolicyEntry{
		GuildID: "g1", ListType: ListDeny, EntityType: EntityUser,
		EntityID: "u1", EntityName: "Spam Bot",
	}))
	require.NoError(t, s.Add(PolicyEntry{
		GuildID: "g1", ListType: ListDeny, EntityType: EntityUser,
		EntityID: "u2", EntityName: "helper",
	}))

	found, err := s.Search("g1", ListDeny, "SPAM")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "u1", found[0].EntityID)
}

func TestLogStoreRetentionCap(t *testing.T) {
	s := NewLogStore(newTestDB(t))

	for i := 0; i < logRetention+5; i++ {
		require.NoError(t, s.Add("g1", "MessageDelete", fmt.Sprintf("event %d", i)))
	}

	records, err := s.Recent("g1", 0)
	require.NoError(t, err)
	require.Len(t, records, logRetention)

	// Newest first; the five oldest rows were trimmed on insert.
	assert.Equal(t, fmt.Sprintf("event %d", logRetention+4), records[0].Content)
	assert.Equal(t, "event 5", records[len(records)-1].Content)
}

func TestLogStoreCapIsPerGuild(t *testing.T) {
	s := NewLogStore(newTestDB(t))

	for i := 0; i < logRetention+1; i++ {
		require.NoError(t, s.Add("g1", "MessageDelete", "a"))
	}
	require.NoError(t, s.Add("g2", "MemberBan", "b"))

	g2, err := s.Recent("g2", 0)
	require.NoError(t, err)
	assert.Len(t, g2, 1)
}

func TestGuildStoreUpsertPreservesUnsetFields(t *testing.T) {
	s := NewGuildStore(newTestDB(t))

	logCh := "log-ch"
	_, err := s.Upsert("g1", GuildConfigPatch{
		LogChannelID:   &logCh,
		EnabledModules: map[string]bool{"MessageDelete": true},
	})
	require.NoError(t, err)

	msgCh := "msg-ch"
	cfg, err := s.Upsert("g1", GuildConfigPatch{
		MessageChannelID: &msgCh,
		EnabledModules:   map[string]bool{"MemberBan": true},
	})
	require.NoError(t, err)

	assert.Equal(t, "log-ch", cfg.LogChannelID)
	assert.Equal(t, "msg-ch", cfg.MessageChannelID)
	// Module flags merge rather than replace.
	assert.True(t, cfg.ModuleEnabled("MessageDelete"))
	assert.True(t, cfg.ModuleEnabled("MemberBan"))
}

func TestGuildStoreSoftDeleteLifecycle(t *testing.T) {
	s := NewGuildStore(newTestDB(t))

	logCh := "log-ch"
	_, err := s.Upsert("g1", GuildConfigPatch{LogChannelID: &logCh})
	require.NoError(t, err)

	require.NoError(t, s.SoftDelete("g1"))

	// Soft-deleted reads as not configured.
	cfg, err := s.Get("g1")
	require.NoError(t, err)
	assert.Nil(t, cfg)

	deleted, err := s.IsSoftDeleted("g1")
	require.NoError(t, err)
	assert.True(t, deleted)

	// Restore brings the old settings back intact.
	require.NoError(t, s.Restore("g1"))
	cfg, err = s.Get("g1")
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, "log-ch", cfg.LogChannelID)
}

func TestGuildStorePurgeExpired(t *testing.T) {
	db := newTestDB(t)
	s := NewGuildStore(db)
	logs := NewLogStore(db)
	lists := NewListStore(db)

	logCh := "log-ch"
	_, err := s.Upsert("g1", GuildConfigPatch{LogChannelID: &logCh})
	require.NoError(t, err)
	require.NoError(t, logs.Add("g1", "MemberBan", "Member Banned"))
	require.NoError(t, lists.Add(PolicyEntry{
		GuildID: "g1", ListType: ListDeny, EntityType: EntityUser, EntityID: "u1",
	}))

	require.NoError(t, s.SoftDelete("g1"))
	stale := time.Now().Add(-61 * 24 * time.Hour)
	require.NoError(t, db.Model(&GuildConfig{}).
		Where("guild_id = ?", "g1").
		Update("deleted_at", &stale).Error)

	purged, err := s.PurgeExpired(60 * 24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, purged)

	// Config, logs and policy entries are all gone.
	cfg, err := s.Get("g1")
	require.NoError(t, err)
	assert.Nil(t, cfg)
	records, err := logs.Recent("g1", 0)
	require.NoError(t, err)
	assert.Empty(t, records)
	entries, err := lists.All("g1")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestGuildStorePurgeKeepsRecentSoftDeletes(t *testing.T) {
	s := NewGuildStore(newTestDB(t))

	logCh := "log-ch"
	_, err := s.Upsert("g1", GuildConfigPatch{LogChannelID: &logCh})
	require.NoError(t, err)
	require.NoError(t, s.SoftDelete("g1"))

	purged, err := s.PurgeExpired(60 * 24 * time.Hour)
	require.NoError(t, err)
	assert.Zero(t, purged)

	deleted, err := s.IsSoftDeleted("g1")
	require.NoError(t, err)
	assert.True(t, deleted)
}

func TestGuildStoreRestoreActive(t *testing.T) {
	s := NewGuildStore(newTestDB(t))

	logCh := "log-ch"
	for _, g := range []string{"g1", "g2"} {
		_, err := s.Upsert(g, GuildConfigPatch{LogChannelID: &logCh})
		require.NoError(t, err)
		require.NoError(t, s.SoftDelete(g))
	}

	// Only guilds the bot is actually in get their stale flags cleared.
	n, err := s.RestoreActive([]string{"g1", "g3"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	cfg, err := s.Get("g1")
	require.NoError(t, err)
	assert.NotNil(t, cfg)
	cfg, err = s.Get("g2")
	require.NoError(t, err)
	assert.Nil(t, cfg)
}
