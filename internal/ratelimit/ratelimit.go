// Package ratelimit throttles the background event producer.
package ratelimit

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter paces event emission. The zero rate means unlimited.
type Limiter struct {
	limiter *rate.Limiter
}

// New returns a limiter admitting eventsPerSecond events with the given burst.
// Zero or negative rates disable limiting; a burst below 1 is raised to 1.
func New(eventsPerSecond float64, burst int) *Limiter {
	if burst < 1 {
		burst = 1
	}
	if eventsPerSecond <= 0 {
		return &Limiter{limiter: rate.NewLimiter(rate.Inf, burst)}
	}
	return &Limiter{limiter: rate.NewLimiter(rate.Limit(eventsPerSecond), burst)}
}

// Wait blocks until one event may be emitted or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	if l.Unlimited() {
		return nil
	}
	return l.limiter.Wait(ctx)
}

// Allow is non-blocking.
func (l *Limiter) Allow() bool {
	return l.limiter.Allow()
}

// Unlimited reports whether the limiter never delays.
func (l *Limiter) Unlimited() bool {
	return l.limiter.Limit() == rate.Inf
}

// Limit returns the configured rate, 0 when unlimited.
func (l *Limiter) Limit() float64 {
	if l.Unlimited() {
		return 0
	}
	return float64(l.limiter.Limit())
}

// Burst returns the number of events admitted without waiting.
func (l *Limiter) Burst() int {
	return l.limiter.Burst()
}
