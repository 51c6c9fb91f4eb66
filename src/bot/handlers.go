package bot

import (
	"log"

	"github.com/bwmarrin/discordgo"
)

func (b *Bot) handleReady(s *discordgo.Session, event *discordgo.Ready) {
	log.Printf("Discord bot logged in as %s", event.User.Username)

	// A database restored from backup can carry stale soft-delete flags for
	// guilds the bot never actually left.
	ids := make([]string, 0, len(event.Guilds))
	for _, g := range event.Guilds {
		ids = append(ids, g.ID)
	}
	if n, err := b.guilds.RestoreActive(ids); err != nil {
		log.Printf("Failed to restore active guilds: %v", err)
	} else if n > 0 {
		log.Printf("Restored settings for %d active guild(s)", n)
	}

	// Start the delivery worker and housekeeping loops. Ready fires again
	// whenever the session re-identifies after a failed resume; the single
	// queue worker must not be duplicated.
	b.startOnce.Do(func() {
		b.wg.Add(2)
		go func() {
			defer b.wg.Done()
			b.queue.Run(b.ctx)
		}()
		go func() {
			defer b.wg.Done()
			b.cleaner.Run(b.ctx)
		}()
	})
}

// handleGuildCreate fires on startup for every current guild and when the
// bot is added to one. Re-adding while soft-deleted restores the old
// configuration.
func (b *Bot) handleGuildCreate(s *discordgo.Session, e *discordgo.GuildCreate) {
	deleted, err := b.guilds.IsSoftDeleted(e.ID)
	if err != nil {
		log.Printf("Guild create check failed for %s: %v", e.ID, err)
		return
	}
	if deleted {
		if err := b.guilds.Restore(e.ID); err != nil {
			log.Printf("Failed to restore settings for guild %s: %v", e.ID, err)
			return
		}
		log.Printf("Restored soft-deleted settings for guild %s", e.ID)
	}
}

// handleGuildDelete soft-deletes configuration when the bot is removed.
// Outages deliver unavailable-guild events, which are not removals.
func (b *Bot) handleGuildDelete(s *discordgo.Session, e *discordgo.GuildDelete) {
	if e.Unavailable {
		return
	}
	if err := b.guilds.SoftDelete(e.ID); err != nil {
		log.Printf("Failed to soft-delete settings for guild %s: %v", e.ID, err)
		return
	}
	log.Printf("Soft-deleted settings for guild %s", e.ID)
}
