package delivery

import "time"

// Backoff tracks exponential retry delays: base doubling per attempt up to
// the cap, with a bounded attempt budget. Rate-limit waits do not go
// through here; they are mandatory pauses, not optional retries.
type Backoff struct {
	Base        time.Duration
	Max         time.Duration
	MaxAttempts int

	attempt int
}

func NewBackoff() *Backoff {
	return &Backoff{Base: time.Second, Max: 32 * time.Second, MaxAttempts: 5}
}

// Next consumes an attempt and returns the delay to wait before retrying.
func (b *Backoff) Next() time.Duration {
	delay := b.Base << b.attempt
	if delay > b.Max || delay <= 0 {
		delay = b.Max
	}
	b.attempt++
	return delay
}

// Exhausted reports whether the attempt budget is spent.
func (b *Backoff) Exhausted() bool {
	return b.attempt >= b.MaxAttempts
}

// Attempts returns how many attempts have been consumed.
func (b *Backoff) Attempts() int {
	return b.attempt
}

func (b *Backoff) Reset() {
	b.attempt = 0
}
