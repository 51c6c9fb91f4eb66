package dispatch

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/redis/go-redis/v9"

	"github.com/chromium-bot/chromium/src/components/delivery"
	"github.com/chromium-bot/chromium/src/components/policy"
	"github.com/chromium-bot/chromium/src/components/router"
	"github.com/chromium-bot/chromium/src/data"
	dc "github.com/chromium-bot/chromium/src/discord"
)

// Dispatcher wires the pipeline: decision engine -> router -> delivery ->
// persistence. Event modules hand it a finished embed; everything after
// that is policy.
type Dispatcher struct {
	Engine    *policy.Engine
	Guilds    *data.GuildStore
	Lists     *data.ListStore
	Logs      *data.LogStore
	Deliverer *delivery.Deliverer
	Queue     *delivery.Queue
	Redis     *redis.Client
}

type Config struct {
	Engine    *policy.Engine
	Guilds    *data.GuildStore
	Lists     *data.ListStore
	Logs      *data.LogStore
	Deliverer *delivery.Deliverer
	Queue     *delivery.Queue
	Redis     *redis.Client
}

func New(cfg Config) *Dispatcher {
	d := &Dispatcher{
		Engine:    cfg.Engine,
		Guilds:    cfg.Guilds,
		Lists:     cfg.Lists,
		Logs:      cfg.Logs,
		Deliverer: cfg.Deliverer,
		Queue:     cfg.Queue,
		Redis:     cfg.Redis,
	}
	if d.Queue != nil {
		d.Queue.OnResult = d.onQueueResult
	}
	return d
}

// Dispatch runs one event through the pipeline. Modules evaluate the
// allow/deny policy before calling and pass the suspicious flag already
// computed; the flag reroutes and restyles the event but never forces or
// suppresses logging on its own. All failure paths end in a log line,
// never an error back to the gateway handler.
func (d *Dispatcher) Dispatch(guildID string, m router.Module, embed *discordgo.MessageEmbed, suspicious bool) {
	cfg, err := d.Guilds.Get(guildID)
	if err != nil {
		log.Printf("dispatch: config lookup failed for guild %s: %v", guildID, err)
		return
	}
	if cfg == nil {
		return
	}

	if suspicious {
		embed = dc.MarkSuspicious(embed)
	}

	dest, ok := router.Resolve(cfg, m, suspicious)
	if !ok {
		return
	}

	d.Queue.Enqueue(guildID, m, dest, embed, suspicious)
}

// DispatchSync bypasses the queue for callers that need the outcome, such
// as interactive test commands.
func (d *Dispatcher) DispatchSync(ctx context.Context, guildID string, m router.Module, embed *discordgo.MessageEmbed, suspicious bool) delivery.Outcome {
	cfg, err := d.Guilds.Get(guildID)
	if err != nil || cfg == nil {
		return delivery.Outcome{Err: err}
	}
	if suspicious {
		embed = dc.MarkSuspicious(embed)
	}
	dest, ok := router.Resolve(cfg, m, suspicious)
	if !ok {
		return delivery.Outcome{}
	}
	out := d.Deliverer.Deliver(ctx, delivery.Request{GuildID: guildID, Dest: dest, Embed: embed})
	if out.Sent {
		d.persist(guildID, m, embed, suspicious)
	}
	return out
}

func (d *Dispatcher) onQueueResult(ev delivery.QueuedEvent, out delivery.Outcome) {
	if !out.Sent {
		return
	}
	d.persist(ev.GuildID, ev.Module, ev.Embed, ev.Suspicious)
}

// persist is best-effort secondary to delivery: storage failures are
// logged and the delivered message stands.
func (d *Dispatcher) persist(guildID string, m router.Module, embed *discordgo.MessageEmbed, suspicious bool) {
	content := Summarize(embed)
	if err := d.Logs.Add(guildID, m.String(), content); err != nil {
		log.Printf("dispatch: persist failed for guild %s: %v", guildID, err)
	}
	if d.Redis != nil {
		if err := data.PublishLogEvent(context.Background(), d.Redis, guildID, m.String(), content, suspicious); err != nil {
			log.Printf("dispatch: stream publish failed for guild %s: %v", guildID, err)
		}
	}
}

// EvaluatePolicy exposes the decision engine to command handlers.
func (d *Dispatcher) EvaluatePolicy(guildID, actorID string, roleIDs []string, channelID string) bool {
	return d.Engine.ShouldLog(guildID, policy.Subject{ActorID: actorID, RoleIDs: roleIDs, ChannelID: channelID})
}

// RecordEvent persists a rendered summary without going through delivery.
func (d *Dispatcher) RecordEvent(guildID string, m router.Module, summary string) error {
	return d.Logs.Add(guildID, m.String(), summary)
}

// GetConfig returns the active configuration, nil when not configured.
func (d *Dispatcher) GetConfig(guildID string) (*data.GuildConfig, error) {
	return d.Guilds.Get(guildID)
}

// UpsertConfig applies a configuration patch. Reconfigured webhooks are
// cleared from the dead-webhook set so they get a fresh chance.
func (d *Dispatcher) UpsertConfig(guildID string, patch data.GuildConfigPatch) (*data.GuildConfig, error) {
	cfg, err := d.Guilds.Upsert(guildID, patch)
	if err != nil {
		return nil, err
	}
	for _, url := range []*string{patch.LogWebhookURL, patch.MessageWebhookURL, patch.MemberWebhookURL} {
		if url != nil && *url != "" {
			d.Deliverer.ClearBad(*url)
		}
	}
	return cfg, nil
}

// AddPolicyEntry upserts a list entry.
func (d *Dispatcher) AddPolicyEntry(entry data.PolicyEntry) error {
	return d.Lists.Add(entry)
}

// RemovePolicyEntry deletes a list entry.
func (d *Dispatcher) RemovePolicyEntry(guildID string, list data.ListType, entityID string) error {
	return d.Lists.Remove(guildID, list, entityID)
}

// Summarize flattens an embed into the text stored in the capped log table.
func Summarize(embed *discordgo.MessageEmbed) string {
	if embed == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(embed.Title)
	if embed.Description != "" {
		b.WriteString(": ")
		b.WriteString(embed.Description)
	}
	for _, f := range embed.Fields {
		fmt.Fprintf(&b, " | %s: %s", f.Name, f.Value)
	}
	return b.String()
}
