package storage_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/budgetplanner/backend/internal/storage"
	"github.com/stretchr/testify/assert"
)

func TestCoalescerDebounces(t *testing.T) {
	var saves atomic.Int32
	c := storage.NewCoalescer(func() error {
		saves.Add(1)
		return nil
	}, 50*time.Millisecond)
	defer c.Stop()

	// A burst of notifications collapses into one save.
	c.Notify()
	c.Notify()
	c.Notify()

	assert.Eventually(t, func() bool {
		return saves.Load() == 1
	}, time.Second, 10*time.Millisecond)

	// It stays at one save once the burst is over.
	time.Sleep(100 * time.Millisecond)
	assert.EqualValues(t, 1, saves.Load())
}

func TestCoalescerFlush(t *testing.T) {
	var saves atomic.Int32
	c := storage.NewCoalescer(func() error {
		saves.Add(1)
		return nil
	}, time.Hour)

	c.Notify()
	assert.NoError(t, c.Flush())
	assert.EqualValues(t, 1, saves.Load())

	// The pending timer was cancelled, nothing fires later.
	time.Sleep(50 * time.Millisecond)
	assert.EqualValues(t, 1, saves.Load())
}

func TestCoalescerStop(t *testing.T) {
	var saves atomic.Int32
	c := storage.NewCoalescer(func() error {
		saves.Add(1)
		return nil
	}, 20*time.Millisecond)

	c.Notify()
	c.Stop()

	time.Sleep(60 * time.Millisecond)
	assert.Zero(t, saves.Load())
}
