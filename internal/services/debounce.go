package services

import (
	"context"
	"sync"
	"time"
)

// SearchDebouncer coalesces rapid searches per key. Each call waits for the
// quiet period; only the most recent call for a key proceeds, earlier ones
// return ErrSearchSuperseded.
type SearchDebouncer struct {
	delay time.Duration
	mu    sync.Mutex
	seq   map[string]uint64
}

// NewSearchDebouncer creates a debouncer with the given quiet period.
func NewSearchDebouncer(delay time.Duration) *SearchDebouncer {
	return &SearchDebouncer{delay: delay, seq: make(map[string]uint64)}
}

// Wait blocks for the quiet period and reports whether this call is still
// the latest for key.
func (d *SearchDebouncer) Wait(ctx context.Context, key string) error {
	d.mu.Lock()
	d.seq[key]++
	mine := d.seq[key]
	d.mu.Unlock()

	if d.delay > 0 {
		timer := time.NewTimer(d.delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.seq[key] != mine {
		return ErrSearchSuperseded
	}
	delete(d.seq, key)
	return nil
}
