package data

import (
	"errors"

	"gorm.io/gorm"
)

const logRetention = 50

// LogStore appends delivered-event summaries with ring-buffer semantics:
// inserting beyond the per-guild cap deletes the oldest rows.
type LogStore struct {
	db *gorm.DB
}

func NewLogStore(db *gorm.DB) *LogStore {
	return &LogStore{db: db}
}

// Add inserts a record and trims the guild to the newest rows within the
// retention cap.
func (s *LogStore) Add(guildID, moduleName, content string) error {
	if s == nil || s.db == nil {
		return errors.New("log store unavailable")
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		rec := LogRecord{GuildID: guildID, ModuleName: moduleName, Content: content}
		if err := tx.Create(&rec).Error; err != nil {
			return err
		}
		// MySQL cannot delete from a table referenced in its own subquery,
		// hence the nested derived-table alias.
		return tx.Exec(`
			DELETE FROM log_records
			WHERE guild_id = ?
			AND id NOT IN (
				SELECT id FROM (
					SELECT id FROM log_records
					WHERE guild_id = ?
					ORDER BY id DESC
					LIMIT ?
				) keep
			)`, guildID, guildID, logRetention).Error
	})
}

// Recent returns up to limit newest records for a guild.
func (s *LogStore) Recent(guildID string, limit int) ([]LogRecord, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("log store unavailable")
	}
	if limit <= 0 || limit > logRetention {
		limit = logRetention
	}
	var records []LogRecord
	err := s.db.Where("guild_id = ?", guildID).
		Order("id DESC").
		Limit(limit).
		Find(&records).Error
	return records, err
}
