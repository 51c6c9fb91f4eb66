package suspicious

import (
	"sync"
	"time"
)

// Category is a tracked burst class.
type Category int

const (
	CategoryDelete Category = iota
	CategoryEdit
	CategoryJoin
	CategoryBan
	CategoryKick
)

// Threshold flags a burst once Count events land inside Window.
type Threshold struct {
	Count  int
	Window time.Duration
}

// Config holds per-category burst thresholds. Joins are tracked per guild;
// everything else per (guild, actor).
type Config struct {
	Delete Threshold
	Edit   Threshold
	Join   Threshold
	Ban    Threshold
	Kick   Threshold

	// MaxTracked bounds each timestamp queue; the oldest entry is evicted
	// past the cap.
	MaxTracked int
}

func DefaultConfig() Config {
	return Config{
		Delete:     Threshold{Count: 5, Window: 10 * time.Second},
		Edit:       Threshold{Count: 5, Window: 10 * time.Second},
		Join:       Threshold{Count: 10, Window: 20 * time.Second},
		Ban:        Threshold{Count: 4, Window: 10 * time.Second},
		Kick:       Threshold{Count: 4, Window: 10 * time.Second},
		MaxTracked: 20,
	}
}

func (c Config) threshold(cat Category) Threshold {
	switch cat {
	case CategoryDelete:
		return c.Delete
	case CategoryEdit:
		return c.Edit
	case CategoryJoin:
		return c.Join
	case CategoryBan:
		return c.Ban
	case CategoryKick:
		return c.Kick
	}
	return Threshold{}
}

type actorTracker struct {
	queues map[Category][]time.Time
}

type guildState struct {
	actors map[string]*actorTracker
	joins  []time.Time
}

// Detector keeps sliding-window activity counters and flags bursts of
// deletes, edits, joins, bans and kicks. State is process-local and never
// persisted; empty trackers are garbage-collected by CleanupExpired.
type Detector struct {
	mu     sync.Mutex
	cfg    Config
	guilds map[string]*guildState
	now    func() time.Time
}

func New(cfg Config) *Detector {
	if cfg.MaxTracked <= 0 {
		cfg.MaxTracked = 20
	}
	return &Detector{
		cfg:    cfg,
		guilds: make(map[string]*guildState),
		now:    time.Now,
	}
}

// Record appends the current timestamp to the relevant queue and reports
// whether the event completes a burst. For CategoryJoin the actor is
// ignored and the per-guild queue is used.
func (d *Detector) Record(cat Category, guildID, actorID string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	g := d.guilds[guildID]
	if g == nil {
		g = &guildState{actors: make(map[string]*actorTracker)}
		d.guilds[guildID] = g
	}

	now := d.now()
	th := d.cfg.threshold(cat)

	if cat == CategoryJoin {
		g.joins = appendBounded(g.joins, now, d.cfg.MaxTracked)
		return isBurst(g.joins, th, now)
	}

	t := g.actors[actorID]
	if t == nil {
		t = &actorTracker{queues: make(map[Category][]time.Time)}
		g.actors[actorID] = t
	}
	t.queues[cat] = appendBounded(t.queues[cat], now, d.cfg.MaxTracked)
	return isBurst(t.queues[cat], th, now)
}

// CleanupExpired prunes entries older than maxAge, drops actor trackers
// whose queues are all empty, then drops guilds with nothing left.
func (d *Detector) CleanupExpired(maxAge time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()

	cutoff := d.now().Add(-maxAge)
	for guildID, g := range d.guilds {
		g.joins = pruneBefore(g.joins, cutoff)

		for actorID, t := range g.actors {
			empty := true
			for cat, q := range t.queues {
				q = pruneBefore(q, cutoff)
				if len(q) == 0 {
					delete(t.queues, cat)
					continue
				}
				t.queues[cat] = q
				empty = false
			}
			if empty {
				delete(g.actors, actorID)
			}
		}

		if len(g.actors) == 0 && len(g.joins) == 0 {
			delete(d.guilds, guildID)
		}
	}
}

// TrackedGuilds reports how many guilds currently hold state.
func (d *Detector) TrackedGuilds() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.guilds)
}

func appendBounded(q []time.Time, t time.Time, max int) []time.Time {
	if len(q) >= max {
		copy(q, q[1:])
		q = q[:len(q)-1]
	}
	return append(q, t)
}

// isBurst is true iff the queue holds at least Count entries and at least
// Count of them fall within Window of now. Short queues short-circuit
// without scanning.
func isBurst(q []time.Time, th Threshold, now time.Time) bool {
	if th.Count <= 0 || len(q) < th.Count {
		return false
	}
	recent := 0
	for _, t := range q {
		if now.Sub(t) < th.Window {
			recent++
		}
	}
	return recent >= th.Count
}

// pruneBefore pops stale entries from the front; queues are time-ordered by
// construction.
func pruneBefore(q []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(q) && q[i].Before(cutoff) {
		i++
	}
	if i == 0 {
		return q
	}
	return append(q[:0], q[i:]...)
}
