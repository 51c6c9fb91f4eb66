package data

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// GuildStore persists per-guild configuration. A guild moves through
// Active -> SoftDeleted -> {Active, Purged}; every transition is a single
// store call.
type GuildStore struct {
	db *gorm.DB
}

func NewGuildStore(db *gorm.DB) *GuildStore {
	return &GuildStore{db: db}
}

// GuildConfigPatch carries partial updates. Nil fields leave the stored
// value untouched; EnabledModules entries are merged into the existing map.
type GuildConfigPatch struct {
	LogChannelID        *string
	MessageChannelID    *string
	MemberChannelID     *string
	SuspiciousChannelID *string
	LogWebhookURL       *string
	MessageWebhookURL   *string
	MemberWebhookURL    *string
	EnabledModules      map[string]bool
}

// Upsert creates the guild row on first use and applies the patch on top of
// whatever is already stored.
func (s *GuildStore) Upsert(guildID string, patch GuildConfigPatch) (*GuildConfig, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("guild store unavailable")
	}

	var cfg GuildConfig
	err := s.db.Transaction(func(tx *gorm.DB) error {
		err := tx.First(&cfg, "guild_id = ?", guildID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			cfg = GuildConfig{GuildID: guildID, EnabledModules: "{}"}
		} else if err != nil {
			return err
		}

		applyString := func(dst *string, src *string) {
			if src != nil {
				*dst = *src
			}
		}
		applyString(&cfg.LogChannelID, patch.LogChannelID)
		applyString(&cfg.MessageChannelID, patch.MessageChannelID)
		applyString(&cfg.MemberChannelID, patch.MemberChannelID)
		applyString(&cfg.SuspiciousChannelID, patch.SuspiciousChannelID)
		applyString(&cfg.LogWebhookURL, patch.LogWebhookURL)
		applyString(&cfg.MessageWebhookURL, patch.MessageWebhookURL)
		applyString(&cfg.MemberWebhookURL, patch.MemberWebhookURL)

		if len(patch.EnabledModules) > 0 {
			modules := cfg.Modules()
			for name, on := range patch.EnabledModules {
				modules[name] = on
			}
			cfg.SetModules(modules)
		}

		return tx.Save(&cfg).Error
	})
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Get returns the active configuration for a guild. A missing or
// soft-deleted row reads as not configured (nil, nil).
func (s *GuildStore) Get(guildID string) (*GuildConfig, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("guild store unavailable")
	}

	var cfg GuildConfig
	err := s.db.First(&cfg, "guild_id = ?", guildID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if cfg.DeletedAt != nil {
		return nil, nil
	}
	return &cfg, nil
}

// SoftDelete flags the configuration for later purge without destroying it.
func (s *GuildStore) SoftDelete(guildID string) error {
	if s == nil || s.db == nil {
		return errors.New("guild store unavailable")
	}
	now := time.Now()
	return s.db.Model(&GuildConfig{}).
		Where("guild_id = ?", guildID).
		Update("deleted_at", &now).Error
}

// Restore clears the soft-delete flag, bringing settings back intact.
func (s *GuildStore) Restore(guildID string) error {
	if s == nil || s.db == nil {
		return errors.New("guild store unavailable")
	}
	return s.db.Model(&GuildConfig{}).
		Where("guild_id = ?", guildID).
		Update("deleted_at", nil).Error
}

// IsSoftDeleted reports whether the guild has a soft-deleted configuration.
func (s *GuildStore) IsSoftDeleted(guildID string) (bool, error) {
	if s == nil || s.db == nil {
		return false, errors.New("guild store unavailable")
	}
	var count int64
	err := s.db.Model(&GuildConfig{}).
		Where("guild_id = ? AND deleted_at IS NOT NULL", guildID).
		Count(&count).Error
	return count > 0, err
}

// HardDelete permanently removes the configuration together with the
// guild's logs and policy entries.
func (s *GuildStore) HardDelete(guildID string) error {
	if s == nil || s.db == nil {
		return errors.New("guild store unavailable")
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&GuildConfig{}, "guild_id = ?", guildID).Error; err != nil {
			return err
		}
		if err := tx.Delete(&LogRecord{}, "guild_id = ?", guildID).Error; err != nil {
			return err
		}
		return tx.Delete(&PolicyEntry{}, "guild_id = ?", guildID).Error
	})
}

// PurgeExpired hard-deletes configurations soft-deleted longer ago than the
// retention window. Returns the number of guilds purged.
func (s *GuildStore) PurgeExpired(retention time.Duration) (int, error) {
	if s == nil || s.db == nil {
		return 0, errors.New("guild store unavailable")
	}

	cutoff := time.Now().Add(-retention)
	var expired []GuildConfig
	if err := s.db.Where("deleted_at IS NOT NULL AND deleted_at < ?", cutoff).Find(&expired).Error; err != nil {
		return 0, err
	}

	purged := 0
	for _, cfg := range expired {
		if err := s.HardDelete(cfg.GuildID); err != nil {
			return purged, err
		}
		purged++
	}
	return purged, nil
}

// RestoreActive clears stale soft-delete flags for guilds the bot is
// currently in. Handles databases restored from backup with old flags set.
// Returns the number of guilds restored.
func (s *GuildStore) RestoreActive(guildIDs []string) (int64, error) {
	if s == nil || s.db == nil || len(guildIDs) == 0 {
		return 0, nil
	}
	res := s.db.Model(&GuildConfig{}).
		Where("guild_id IN ? AND deleted_at IS NOT NULL", guildIDs).
		Update("deleted_at", nil)
	return res.RowsAffected, res.Error
}
