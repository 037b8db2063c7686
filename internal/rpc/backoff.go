package rpc

import (
	"context"
	"time"
)

// Backoff yields exponentially growing delays: base, 2*base, 4*base, ...
type Backoff struct {
	base    time.Duration
	attempt int
}

// NewBackoff returns a backoff starting at base.
func NewBackoff(base time.Duration) *Backoff {
	return &Backoff{base: base}
}

// Next returns the delay for the current attempt and advances the counter.
func (b *Backoff) Next() time.Duration {
	d := b.Delay(b.attempt)
	b.attempt++
	return d
}

// Delay is base * 2^attempt, saturating instead of overflowing.
func (b *Backoff) Delay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt > 30 {
		attempt = 30
	}
	return b.base * time.Duration(1<<attempt)
}

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// ContextSleep is the production SleepFunc.
func ContextSleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
