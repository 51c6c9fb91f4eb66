package delivery

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"

	"github.com/chromium-bot/chromium/src/components/router"
)

// QueuedEvent is one pending delivery held in the in-memory queue.
type QueuedEvent struct {
	ID         string
	GuildID    string
	Module     router.Module
	Dest       router.Destination
	Embed      *discordgo.MessageEmbed
	Suspicious bool
	CreatedAt  time.Time
}

// Queue batches deliveries through a single worker with a small inter-send
// delay so bursts of gateway events do not burst against the Discord API.
// FIFO, bounded; the oldest event is silently dropped on overflow.
type Queue struct {
	deliverer *Deliverer

	mu    sync.Mutex
	items []QueuedEvent
	max   int
	wake  chan struct{}

	interSendDelay time.Duration

	// OnResult, when set, observes every finished delivery. The dispatcher
	// hooks persistence in here.
	OnResult func(ev QueuedEvent, out Outcome)
}

func NewQueue(deliverer *Deliverer, maxSize int) *Queue {
	if maxSize <= 0 {
		maxSize = 512
	}
	return &Queue{
		deliverer:      deliverer,
		max:            maxSize,
		wake:           make(chan struct{}, 1),
		interSendDelay: 100 * time.Millisecond,
	}
}

// Enqueue adds an event without blocking. Safe to call from any handler.
func (q *Queue) Enqueue(guildID string, m router.Module, dest router.Destination, embed *discordgo.MessageEmbed, suspicious bool) {
	ev := QueuedEvent{
		ID:         uuid.NewString(),
		GuildID:    guildID,
		Module:     m,
		Dest:       dest,
		Embed:      embed,
		Suspicious: suspicious,
		CreatedAt:  time.Now(),
	}

	q.mu.Lock()
	if len(q.items) >= q.max {
		dropped := q.items[0]
		q.items = q.items[1:]
		log.Printf("queue: full, dropped oldest event %s (guild %s)", dropped.ID, dropped.GuildID)
	}
	q.items = append(q.items, ev)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Len reports the current queue depth.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

func (q *Queue) pop() (QueuedEvent, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return QueuedEvent{}, false
	}
	ev := q.items[0]
	q.items = q.items[1:]
	return ev, true
}

// Run processes the queue until the context is cancelled. One event at a
// time; the worker sleeps when empty and wakes on enqueue. Cancellation
// loses at most the event currently in flight.
func (q *Queue) Run(ctx context.Context) {
	log.Println("queue: worker started")
	for {
		ev, ok := q.pop()
		if !ok {
			select {
			case <-ctx.Done():
				log.Println("queue: worker stopped")
				return
			case <-q.wake:
			}
			continue
		}

		out := q.deliverer.Deliver(ctx, Request{GuildID: ev.GuildID, Dest: ev.Dest, Embed: ev.Embed})
		if q.OnResult != nil {
			q.OnResult(ev, out)
		}
		if !out.Sent && out.Err != nil {
			log.Printf("queue: delivery failed for guild %s after %d attempts: %v", ev.GuildID, out.Attempts, out.Err)
		}

		select {
		case <-ctx.Done():
			log.Println("queue: worker stopped")
			return
		case <-time.After(q.interSendDelay):
		}
	}
}
