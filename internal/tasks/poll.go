package tasks

import (
	"context"
	"errors"
	"time"
)

// PollPolicy bounds how long and how often a job status is polled.
type PollPolicy struct {
	Interval    time.Duration // First wait between attempts (default: 2s)
	MaxInterval time.Duration // Cap on the backed-off wait (default: 10s)
	Multiplier  float64       // Growth factor applied after each attempt (default: 1.5)
	MaxAttempts int           // Status calls before giving up (default: 60)
	Timeout     time.Duration // Overall deadline (default: 3m)
}

// DefaultPollPolicy returns the social post polling policy.
func DefaultPollPolicy() PollPolicy {
	return PollPolicy{}.withDefaults()
}

func (p PollPolicy) withDefaults() PollPolicy {
	if p.Interval <= 0 {
		p.Interval = 2 * time.Second
	}
	if p.MaxInterval <= 0 {
		p.MaxInterval = 10 * time.Second
	}
	if p.MaxInterval < p.Interval {
		p.MaxInterval = p.Interval
	}
	if p.Multiplier < 1 {
		p.Multiplier = 1.5
	}
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 60
	}
	if p.Timeout <= 0 {
		p.Timeout = 3 * time.Minute
	}
	return p
}

// next returns the wait after d.
func (p PollPolicy) next(d time.Duration) time.Duration {
	n := time.Duration(float64(d) * p.Multiplier)
	return min(n, p.MaxInterval)
}

// errPollExhausted is returned by [poll] when attempts or the deadline run out.
var errPollExhausted = errors.New("polling exhausted")

// poll calls check until it reports done, returns an error, or the policy runs out.
//
// The first check happens after one interval. Cancellation of ctx is returned as ctx.Err().
func poll(ctx context.Context, p PollPolicy, check func(attempt int) (done bool, err error)) error {
	deadline := time.NewTimer(p.Timeout)
	defer deadline.Stop()

	wait := p.Interval
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-deadline.C:
			t.Stop()
			return errPollExhausted
		case <-t.C:
		}

		done, err := check(attempt)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		wait = p.next(wait)
	}
	return errPollExhausted
}
