// Package parallel bounds how many translation requests run at once. A
// fixed controller holds a constant ceiling; a ramp controller starts low
// and raises the ceiling on a timer until it reaches its maximum, which
// keeps a fresh job from slamming a rate-limited endpoint with its full
// concurrency from the first second.
package parallel

import (
	"context"
	"sync"
	"time"
)

// Controller is a concurrency gate. Acquire blocks until a slot is free or
// the context is cancelled; every successful Acquire must be paired with
// exactly one Release.
type Controller interface {
	Acquire(ctx context.Context) error
	Release()
	// Limit reports the current ceiling.
	Limit() int
}

// Fixed returns a controller with a constant ceiling of n. Values below 1
// are treated as 1.
func Fixed(n int) Controller {
	if n < 1 {
		n = 1
	}
	return &limiter{limit: n, max: n}
}

// RampConfig describes a rising ceiling: start at Initial, add Step every
// Delay until Max is reached.
type RampConfig struct {
	Initial int
	Max     int
	Step    int
	Delay   time.Duration
}

// NewRamp returns a controller whose ceiling follows cfg.
func NewRamp(cfg RampConfig) Controller {
	return newRamp(cfg, time.Now)
}

func newRamp(cfg RampConfig, now func() time.Time) *limiter {
	if cfg.Initial < 1 {
		cfg.Initial = 1
	}
	if cfg.Max < cfg.Initial {
		cfg.Max = cfg.Initial
	}
	if cfg.Step < 1 {
		cfg.Step = 1
	}
	return &limiter{
		limit:   cfg.Initial,
		initial: cfg.Initial,
		max:     cfg.Max,
		step:    cfg.Step,
		delay:   cfg.Delay,
		started: now(),
		now:     now,
	}
}

// limiter implements both flavors. A fixed controller is a limiter whose
// ramp fields are zero, so advance is a no-op for it. Waiters queue in
// FIFO order and are handed their slot on Release.
type limiter struct {
	mu      sync.Mutex
	active  int
	limit   int
	waiters []chan struct{}

	initial int
	max     int
	step    int
	delay   time.Duration
	started time.Time
	now     func() time.Time
}

func (l *limiter) Acquire(ctx context.Context) error {
	l.mu.Lock()
	l.advance()
	if l.active < l.limit {
		l.active++
		l.mu.Unlock()
		return nil
	}

	ch := make(chan struct{})
	l.waiters = append(l.waiters, ch)
	l.mu.Unlock()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		l.mu.Lock()
		for i, w := range l.waiters {
			if w == ch {
				l.waiters = append(l.waiters[:i], l.waiters[i+1:]...)
				l.mu.Unlock()
				return ctx.Err()
			}
		}
		l.mu.Unlock()
		// The slot was already handed over, give it back.
		l.Release()
		return ctx.Err()
	}
}

func (l *limiter) Release() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.active--
	l.advance()
	l.dispatch()
}

func (l *limiter) Limit() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.advance()
	return l.limit
}

// advance raises the ceiling according to elapsed ramp time. Callers hold
// the mutex.
func (l *limiter) advance() {
	if l.delay <= 0 || l.limit >= l.max {
		return
	}
	steps := int(l.now().Sub(l.started) / l.delay)
	limit := l.initial + steps*l.step
	if limit > l.max {
		limit = l.max
	}
	if limit > l.limit {
		l.limit = limit
		l.dispatch()
	}
}

// dispatch hands free slots to queued waiters in arrival order. Callers
// hold the mutex.
func (l *limiter) dispatch() {
	for l.active < l.limit && len(l.waiters) > 0 {
		ch := l.waiters[0]
		l.waiters = l.waiters[1:]
		l.active++
		close(ch)
	}
}
