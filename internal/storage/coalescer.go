package storage

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultSaveDelay is how long the coalescer waits after the last
// change notification before it saves.
const DefaultSaveDelay = 1500 * time.Millisecond

// Coalescer debounces save requests: every Notify resets the timer and
// the save function runs once the notifications stop for the configured
// delay. This keeps rapid edit bursts from writing the document on
// every keystroke.
type Coalescer struct {
	save  func() error
	delay time.Duration

	mu    sync.Mutex
	timer *time.Timer
}

// NewCoalescer creates a coalescer around a save function. A delay of 0
// uses DefaultSaveDelay.
func NewCoalescer(save func() error, delay time.Duration) *Coalescer {
	if delay == 0 {
		delay = DefaultSaveDelay
	}
	return &Coalescer{save: save, delay: delay}
}

// Notify schedules a save after the delay, replacing any pending one.
func (c *Coalescer) Notify() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.delay, func() {
		if err := c.save(); err != nil {
			log.Error().Err(err).Msg("coalesced save failed")
		}
	})
}

// Flush cancels any pending timer and saves immediately. Used on
// shutdown so a pending change is not lost.
func (c *Coalescer) Flush() error {
	c.mu.Lock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.mu.Unlock()

	return c.save()
}

// Stop cancels any pending save without running it.
func (c *Coalescer) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}
