package engine

import "sync/atomic"

// Clock is a monotonic logical clock for trace ordering.
//
// Every staged operation is stamped with a strictly increasing seq from
// this clock, so traces replay in staging order without wall-clock races.
//
// Thread-safety: safe for concurrent use, though a session's single-threaded
// design means only one goroutine typically calls Next.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a clock starting at 0; the first Next returns 1.
func NewClock() *Clock {
	return &Clock{}
}

// Next returns the next sequence number and increments the clock.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current sequence number without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
