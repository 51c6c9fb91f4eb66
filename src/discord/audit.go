package discord

import (
	"time"

	"github.com/bwmarrin/discordgo"
)

// FindAuditEntry scans the newest audit-log entries of one action type for
// a matching target. Returns nil when nothing matches or the bot lacks the
// View Audit Log permission.
func FindAuditEntry(s *discordgo.Session, guildID string, action discordgo.AuditLogAction, targetID string, limit int) *discordgo.AuditLogEntry {
	if limit <= 0 {
		limit = 5
	}
	audit, err := s.GuildAuditLog(guildID, "", "", int(action), limit)
	if err != nil {
		return nil
	}
	for _, entry := range audit.AuditLogEntries {
		if entry.TargetID == targetID {
			return entry
		}
	}
	return nil
}

// FindRecentAuditEntry additionally requires the entry to be newer than
// maxAge, so stale moderation actions are not mistaken for the event that
// just fired (a leave is only a kick if the kick entry is fresh).
func FindRecentAuditEntry(s *discordgo.Session, guildID string, action discordgo.AuditLogAction, targetID string, limit int, maxAge time.Duration) *discordgo.AuditLogEntry {
	entry := FindAuditEntry(s, guildID, action, targetID, limit)
	if entry == nil {
		return nil
	}
	created, err := discordgo.SnowflakeTimestamp(entry.ID)
	if err != nil || time.Since(created) > maxAge {
		return nil
	}
	return entry
}
