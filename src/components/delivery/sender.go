package delivery

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/chromium-bot/chromium/src/components/router"
	dc "github.com/chromium-bot/chromium/src/discord"
	"github.com/chromium-bot/chromium/src/logging"
)

// Sender abstracts the two Discord delivery surfaces so the retry logic can
// be exercised without a live session.
type Sender interface {
	SendWebhook(ctx context.Context, url string, embed *discordgo.MessageEmbed) error
	SendChannel(ctx context.Context, channelID string, embed *discordgo.MessageEmbed) error
}

// SessionSender sends through a discordgo session.
type SessionSender struct {
	Session *discordgo.Session
}

func (s *SessionSender) SendWebhook(ctx context.Context, url string, embed *discordgo.MessageEmbed) error {
	id, token, err := parseWebhookURL(url)
	if err != nil {
		return err
	}
	_, err = s.Session.WebhookExecute(id, token, true, &discordgo.WebhookParams{
		Embeds: []*discordgo.MessageEmbed{embed},
	}, discordgo.WithContext(ctx))
	return err
}

func (s *SessionSender) SendChannel(ctx context.Context, channelID string, embed *discordgo.MessageEmbed) error {
	_, err := s.Session.ChannelMessageSendEmbed(channelID, embed, discordgo.WithContext(ctx))
	return err
}

// parseWebhookURL extracts the id and token from a Discord webhook URL of
// the form .../api/webhooks/{id}/{token}.
func parseWebhookURL(url string) (id, token string, err error) {
	const marker = "/webhooks/"
	i := strings.Index(url, marker)
	if i < 0 {
		return "", "", fmt.Errorf("not a webhook URL: %q", url)
	}
	rest := strings.Trim(url[i+len(marker):], "/")
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("malformed webhook URL: %q", url)
	}
	token = parts[1]
	if j := strings.IndexAny(token, "?/"); j >= 0 {
		token = token[:j]
	}
	return parts[0], token, nil
}

// Request is one delivery of a formatted event summary.
type Request struct {
	GuildID string
	Dest    router.Destination
	Embed   *discordgo.MessageEmbed
}

// Outcome reports how a delivery ended. Attempts counts backoff attempts
// only; rate-limit waits never consume the budget.
type Outcome struct {
	Sent        bool
	ViaWebhook  bool
	ViaFallback bool
	Attempts    int
	Err         error
}

// Deliverer implements webhook-first delivery with channel fallback,
// exponential backoff on transient failures, mandatory rate-limit waits and
// permanent tracking of dead webhooks.
type Deliverer struct {
	sender Sender

	mu  sync.Mutex
	bad map[string]struct{}

	rateLimitMargin   time.Duration
	maxRateLimitWaits int
	newBackoff        func() *Backoff
	sleep             func(ctx context.Context, d time.Duration) error
}

func NewDeliverer(sender Sender) *Deliverer {
	return &Deliverer{
		sender:            sender,
		bad:               make(map[string]struct{}),
		rateLimitMargin:   250 * time.Millisecond,
		maxRateLimitWaits: 3,
		newBackoff:        NewBackoff,
		sleep:             sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// MarkBad blacklists a webhook URL. Never auto-cleared; only operator
// reconfiguration removes entries.
func (d *Deliverer) MarkBad(url string) {
	if url == "" {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.bad[url] = struct{}{}
}

// ClearBad removes a webhook from the blacklist after reconfiguration.
func (d *Deliverer) ClearBad(url string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.bad, url)
}

// IsBad reports whether a webhook is known dead.
func (d *Deliverer) IsBad(url string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.bad[url]
	return ok
}

type tierResult int

const (
	tierSent tierResult = iota
	tierNext            // move to the next delivery tier
	tierAbort
)

// Deliver walks the delivery tiers: preferred webhook, fallback webhook
// (one attempt, payload annotated), then direct channel send. Failure after
// all tiers is returned to the caller as a non-fatal outcome, never a
// panic.
func (d *Deliverer) Deliver(ctx context.Context, req Request) Outcome {
	out := Outcome{}

	if url := req.Dest.WebhookURL; url != "" && !d.IsBad(url) {
		res := d.attemptTier(ctx, &out, url, false, func(ctx context.Context) error {
			return d.sender.SendWebhook(ctx, url, req.Embed)
		})
		switch res {
		case tierSent:
			out.Sent = true
			out.ViaWebhook = true
			return out
		case tierAbort:
			return out
		}
	}

	if url := req.Dest.FallbackWebhookURL; url != "" && url != req.Dest.WebhookURL && !d.IsBad(url) {
		annotated := dc.AnnotateFallback(req.Embed)
		res := d.attemptTier(ctx, &out, url, true, func(ctx context.Context) error {
			return d.sender.SendWebhook(ctx, url, annotated)
		})
		switch res {
		case tierSent:
			out.Sent = true
			out.ViaWebhook = true
			out.ViaFallback = true
			return out
		case tierAbort:
			return out
		}
	}

	if req.Dest.ChannelID != "" {
		res := d.attemptTier(ctx, &out, "", false, func(ctx context.Context) error {
			return d.sender.SendChannel(ctx, req.Dest.ChannelID, req.Embed)
		})
		if res == tierSent {
			out.Sent = true
			return out
		}
	}

	return out
}

// attemptTier runs one delivery tier under the backoff policy. webhookURL
// is non-empty for webhook tiers so gone/fatal responses can blacklist it.
// singleAttempt restricts the tier to one send with no backoff retries.
func (d *Deliverer) attemptTier(ctx context.Context, out *Outcome, webhookURL string, singleAttempt bool, send func(context.Context) error) tierResult {
	backoff := d.newBackoff()
	rateLimitWaits := 0

	for !backoff.Exhausted() {
		err := send(ctx)
		if err == nil {
			return tierSent
		}
		out.Err = err

		kind, retryAfter := logging.Classify(err)
		switch kind {
		case logging.ErrRateLimited:
			// Mandatory pause: wait what the server asked plus a safety
			// margin, then retry the same attempt without touching the
			// backoff budget.
			if rateLimitWaits >= d.maxRateLimitWaits {
				log.Printf("delivery: giving up after %d rate-limit waits", rateLimitWaits)
				return tierNext
			}
			rateLimitWaits++
			if d.sleep(ctx, retryAfter+d.rateLimitMargin) != nil {
				return tierAbort
			}

		case logging.ErrGone:
			if webhookURL != "" {
				d.MarkBad(webhookURL)
				log.Printf("delivery: webhook marked dead: %s", redactWebhook(webhookURL))
			}
			return tierNext

		case logging.ErrFatal:
			if webhookURL != "" {
				d.MarkBad(webhookURL)
				return tierNext
			}
			log.Printf("delivery: fatal error, aborting: %v", err)
			return tierAbort

		default: // transient
			if singleAttempt {
				return tierNext
			}
			delay := backoff.Next()
			out.Attempts++
			if backoff.Exhausted() {
				return tierNext
			}
			if d.sleep(ctx, delay) != nil {
				return tierAbort
			}
		}
	}
	return tierNext
}

func redactWebhook(url string) string {
	if len(url) > 50 {
		return url[:50] + "..."
	}
	return url
}
