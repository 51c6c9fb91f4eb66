package data

import (
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const searchResultCap = 25

// ListStore persists allow/deny policy entries.
type ListStore struct {
	db *gorm.DB
}

func NewListStore(db *gorm.DB) *ListStore {
	return &ListStore{db: db}
}

// Add upserts an entry keyed by (guild, list, entity id). A conflicting
// insert replaces the entity type and display name instead of duplicating.
func (s *ListStore) Add(entry PolicyEntry) error {
	if s == nil || s.db == nil {
		return errors.New("list store unavailable")
	}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "guild_id"}, {Name: "list_type"}, {Name: "entity_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"entity_type", "entity_name"}),
	}).Create(&entry).Error
}

// Remove deletes an entry. Removing a missing entry is a no-op.
func (s *ListStore) Remove(guildID string, list ListType, entityID string) error {
	if s == nil || s.db == nil {
		return errors.New("list store unavailable")
	}
	return s.db.Delete(&PolicyEntry{},
		"guild_id = ? AND list_type = ? AND entity_id = ?", guildID, list, entityID).Error
}

// List returns all entries of one list, most recently added first.
func (s *ListStore) List(guildID string, list ListType) ([]PolicyEntry, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("list store unavailable")
	}
	var entries []PolicyEntry
	err := s.db.Where("guild_id = ? AND list_type = ?", guildID, list).
		Order("added_at DESC, id DESC").
		Find(&entries).Error
	return entries, err
}

// Search returns entries whose display name contains the query,
// case-insensitive, capped for UI affordances.
func (s *ListStore) Search(guildID string, list ListType, query string) ([]PolicyEntry, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("list store unavailable")
	}
	var entries []PolicyEntry
	pattern := "%" + strings.ToLower(query) + "%"
	err := s.db.Where("guild_id = ? AND list_type = ? AND LOWER(entity_name) LIKE ?", guildID, list, pattern).
		Limit(searchResultCap).
		Find(&entries).Error
	return entries, err
}

// All returns every policy entry for a guild, both lists. Read on each
// decision evaluation.
func (s *ListStore) All(guildID string) ([]PolicyEntry, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("list store unavailable")
	}
	var entries []PolicyEntry
	err := s.db.Where("guild_id = ?", guildID).Find(&entries).Error
	return entries, err
}
