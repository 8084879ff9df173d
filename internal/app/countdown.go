package app

import (
	"context"
	"sync"
	"time"
)

// TickSource yields ticks at the given interval until stop is called.
type TickSource func(interval time.Duration) (ticks <-chan time.Time, stop func())

// RealTicks is the TickSource backed by time.Ticker.
func RealTicks(interval time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(interval)
	return t.C, t.Stop
}

// Countdown tracks the seconds left on one question.
// It only ever counts down; reaching zero ends the loop but never advances the session.
type Countdown struct {
	mu        sync.Mutex
	limit     int
	remaining int
	cancel    context.CancelFunc
	done      chan struct{}
}

// NewCountdown returns a stopped countdown seeded with limit seconds.
func NewCountdown(limit int) *Countdown {
	if limit < 0 {
		limit = 0
	}
	return &Countdown{
		limit:     limit,
		remaining: limit,
		done:      make(chan struct{}),
	}
}

// Limit is the value the countdown started from.
func (c *Countdown) Limit() int {
	return c.limit
}

// Remaining returns the seconds left.
func (c *Countdown) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

// Tick decrements the countdown by one and returns the new value. It never goes below zero.
func (c *Countdown) Tick() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.remaining > 0 {
		c.remaining--
	}
	return c.remaining
}

// Start consumes ticks from src in a goroutine, calling onTick after every decrement.
// The loop exits by itself once the countdown reaches zero, or when Stop is called.
func (c *Countdown) Start(src TickSource, interval time.Duration, onTick func(remaining int)) {
	ctx, cancel := context.WithCancel(context.Background())

	c.mu.Lock()
	if c.cancel != nil {
		c.mu.Unlock()
		cancel()
		return
	}
	c.cancel = cancel
	if c.remaining == 0 {
		c.mu.Unlock()
		close(c.done)
		return
	}
	c.mu.Unlock()

	ticks, stop := src(interval)
	go func() {
		defer close(c.done)
		defer stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticks:
				remaining := c.Tick()
				onTick(remaining)
				if remaining == 0 {
					return
				}
			}
		}
	}()
}

// Stop cancels a running countdown. It is safe to call more than once.
func (c *Countdown) Stop() {
	c.mu.Lock()
	cancel := c.cancel
	c.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Done is closed when the countdown loop has exited.
func (c *Countdown) Done() <-chan struct{} {
	return c.done
}
