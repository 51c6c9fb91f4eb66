package data

import (
	"context"
	"log"

	"github.com/redis/go-redis/v9"
)

const streamEvents = "chromium.events"

// MustRedis connects or exits the process.
func MustRedis(url string) *redis.Client {
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	return redis.NewClient(opt)
}

// PublishLogEvent appends a delivered-event summary to the event stream so
// external consumers can follow what the bot has logged.
func PublishLogEvent(ctx context.Context, rdb *redis.Client, guildID, module, content string, suspicious bool) error {
	_, err := rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: streamEvents,
		Values: map[string]interface{}{
			"guild_id":   guildID,
			"module":     module,
			"content":    content,
			"suspicious": suspicious,
		},
	}).Result()
	return err
}
