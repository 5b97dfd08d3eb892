package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// DefaultMinInterval - 4 секунды между запросами, это 15 в минуту на бесплатном тарифе
const DefaultMinInterval = 4 * time.Second

type Config struct {
	MinInterval time.Duration
	Clock       func() time.Time
}

// Throttle keeps a minimum spacing between consecutive dispatches.
// Concurrent callers queue up: every reservation pushes the next slot back.
type Throttle struct {
	limiter  *rate.Limiter
	interval time.Duration
	clock    func() time.Time
}

func New(cfg Config) *Throttle {
	interval := cfg.MinInterval
	if interval <= 0 {
		interval = DefaultMinInterval
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}

	return &Throttle{
		limiter:  rate.NewLimiter(rate.Every(interval), 1),
		interval: interval,
		clock:    clock,
	}
}

func (t *Throttle) Interval() time.Duration {
	return t.interval
}

// TryAcquire reserves the next dispatch slot as of now and returns how long
// the caller has to wait before dispatching. Zero means go right away.
func (t *Throttle) TryAcquire(now time.Time) time.Duration {
	return t.limiter.ReserveN(now, 1).DelayFrom(now)
}

// Wait reserves a slot and blocks until it comes up. If ctx is done first the
// slot is handed back and ctx.Err() is returned.
func (t *Throttle) Wait(ctx context.Context) (time.Duration, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	now := t.clock()
	r := t.limiter.ReserveN(now, 1)
	delay := r.DelayFrom(now)
	if delay <= 0 {
		return 0, nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		r.CancelAt(t.clock())
		return 0, ctx.Err()
	case <-timer.C:
		return delay, nil
	}
}
