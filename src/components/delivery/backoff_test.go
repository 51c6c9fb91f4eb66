package delivery

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBackoffProgression(t *testing.T) {
	b := NewBackoff()

	want := []time.Duration{1, 2, 4, 8, 16}
	for _, w := range want {
		assert.False(t, b.Exhausted())
		assert.Equal(t, w*time.Second, b.Next())
	}
	assert.True(t, b.Exhausted())
	assert.Equal(t, 5, b.Attempts())
}

func TestBackoffCap(t *testing.T) {
	b := &Backoff{Base: time.Second, Max: 32 * time.Second, MaxAttempts: 10}

	var last time.Duration
	for i := 0; i < 10; i++ {
		last = b.Next()
		assert.LessOrEqual(t, last, 32*time.Second)
	}
	assert.Equal(t, 32*time.Second, last)
}

func TestBackoffReset(t *testing.T) {
	b := NewBackoff()
	for !b.Exhausted() {
		b.Next()
	}
	b.Reset()
	assert.False(t, b.Exhausted())
	assert.Equal(t, time.Second, b.Next())
}
