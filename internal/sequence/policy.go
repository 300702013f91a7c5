package sequence

import (
	"context"
	"errors"
	"time"
)

// ErrExhausted is returned by a Fail-on-exhaustion wait that ran out of
// attempts.
var ErrExhausted = errors.New("wait attempts exhausted")

// OnExhaust decides what an exhausted wait does.
type OnExhaust uint8

const (
	// Degrade proceeds with a warning; downstream polling stays observable.
	Degrade OnExhaust = iota + 1
	// Fail aborts the sequencer.
	Fail
)

// RetryPolicy declares one wait step: how often to poll, how long to keep
// trying (MaxAttempts 0 = unbounded) and whether exhaustion degrades or
// fails. Declaring the degrade-vs-fail decision here keeps it testable
// apart from the loop mechanics.
type RetryPolicy struct {
	Interval    time.Duration
	MaxAttempts int
	OnExhaust   OnExhaust
}

// Wait polls fn every Interval until it reports true. The first attempt
// runs immediately. Returns (true, nil) when satisfied; (false, nil) when
// exhausted under Degrade; (false, ErrExhausted) when exhausted under Fail;
// and (false, ctx.Err()) on cancellation.
func (p RetryPolicy) Wait(ctx context.Context, fn func(context.Context) bool) (bool, error) {
	ticker := time.NewTicker(p.Interval)
	defer ticker.Stop()

	for attempt := 1; ; attempt++ {
		if fn(ctx) {
			return true, nil
		}
		if p.MaxAttempts > 0 && attempt >= p.MaxAttempts {
			if p.OnExhaust == Fail {
				return false, ErrExhausted
			}
			return false, nil
		}
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-ticker.C:
		}
	}
}

// sleep waits d or until the context is cancelled.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
