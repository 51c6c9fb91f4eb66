package data

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// ListType selects which policy list an entry belongs to.
type ListType string

const (
	ListAllow ListType = "allow"
	ListDeny  ListType = "deny"
)

// EntityType identifies what a policy entry targets.
type EntityType string

const (
	EntityUser    EntityType = "user"
	EntityRole    EntityType = "role"
	EntityChannel EntityType = "channel"
)

// Setting represents a configuration setting stored in the database
type Setting struct {
	ID     uint8  `gorm:"primaryKey"`
	Name   string `gorm:"size:32;not null"`
	Value  string `gorm:"type:text;not null"`
	Active uint8  `gorm:"not null"`
}

// GuildConfig holds the per-guild logging configuration. Channel and webhook
// fields other than the primary ones are optional; resolution falls back to
// the primary at read time, never at write time.
type GuildConfig struct {
	GuildID             string `gorm:"primaryKey;size:64"`
	LogChannelID        string `gorm:"size:64"`
	MessageChannelID    string `gorm:"size:64"`
	MemberChannelID     string `gorm:"size:64"`
	SuspiciousChannelID string `gorm:"size:64"`
	LogWebhookURL       string `gorm:"size:512"`
	MessageWebhookURL   string `gorm:"size:512"`
	MemberWebhookURL    string `gorm:"size:512"`
	EnabledModules      string `gorm:"type:text"`
	DeletedAt           *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// Modules decodes the enabled-module map. A module absent from the map is
// disabled.
func (g *GuildConfig) Modules() map[string]bool {
	out := make(map[string]bool)
	if g == nil || g.EnabledModules == "" {
		return out
	}
	if err := json.Unmarshal([]byte(g.EnabledModules), &out); err != nil {
		return make(map[string]bool)
	}
	return out
}

// ModuleEnabled reports whether a named module is switched on for the guild.
func (g *GuildConfig) ModuleEnabled(name string) bool {
	return g.Modules()[name]
}

// SetModules replaces the enabled-module map.
func (g *GuildConfig) SetModules(m map[string]bool) {
	raw, err := json.Marshal(m)
	if err != nil {
		return
	}
	g.EnabledModules = string(raw)
}

// PolicyEntry is one allow/deny list row. Unique per
// (guild, list_type, entity_id); re-adding updates name and entity type.
type PolicyEntry struct {
	ID         uint64     `gorm:"primaryKey;autoIncrement"`
	GuildID    string     `gorm:"size:64;uniqueIndex:idx_guild_list_entity;index"`
	ListType   ListType   `gorm:"size:16;uniqueIndex:idx_guild_list_entity"`
	EntityType EntityType `gorm:"size:16"`
	EntityID   string     `gorm:"size:64;uniqueIndex:idx_guild_list_entity"`
	EntityName string     `gorm:"size:128"`
	AddedAt    time.Time  `gorm:"autoCreateTime"`
}

// LogRecord is one persisted event summary. Retention is capped at the most
// recent 50 rows per guild, enforced on insert.
type LogRecord struct {
	ID         uint64    `gorm:"primaryKey;autoIncrement"`
	GuildID    string    `gorm:"size:64;index"`
	ModuleName string    `gorm:"size:48"`
	Content    string    `gorm:"type:text"`
	Timestamp  time.Time `gorm:"autoCreateTime"`
}

// Migrate creates or updates the schema for all persisted models.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Setting{}, &GuildConfig{}, &PolicyEntry{}, &LogRecord{})
}
