package utils

import (
	"context"
	"fmt"
	"time"
)

// PollOptions configures WaitFor
type PollOptions struct {
	Timeout  time.Duration
	Interval time.Duration
}

// PollTimeoutError is returned when the condition never held within budget.
// Failures counts attempts whose check itself errored; LastErr is the most
// recent such error.
type PollTimeoutError struct {
	Elapsed  time.Duration
	Attempts int
	Failures int
	LastErr  error
}

func (e *PollTimeoutError) Error() string {
	return fmt.Sprintf("condition not met after %s (%d attempts, %d failed)", e.Elapsed, e.Attempts, e.Failures)
}

// ChannelFailed reports whether every attempt failed to check at all, which
// means the outcome is unknown rather than negative.
func (e *PollTimeoutError) ChannelFailed() bool {
	return e.Attempts > 0 && e.Failures == e.Attempts
}

// Condition is one check of observable state
type Condition func(ctx context.Context) (bool, error)

// WaitFor evaluates cond every opts.Interval until it reports true, the
// timeout elapses or ctx is done. Check errors do not stop the loop. The last
// check runs at the deadline, so WaitFor returns within Timeout plus one check.
func WaitFor(ctx context.Context, opts PollOptions, cond Condition) error {
	start := time.Now()
	deadline := start.Add(opts.Timeout)
	timeoutErr := &PollTimeoutError{}

	timer := time.NewTimer(0)
	defer timer.Stop()
	<-timer.C

	for {
		ok, err := cond(ctx)
		timeoutErr.Attempts++
		if err != nil {
			timeoutErr.Failures++
			timeoutErr.LastErr = err
		} else if ok {
			return nil
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			timeoutErr.Elapsed = time.Since(start)
			return timeoutErr
		}

		wait := opts.Interval
		if wait <= 0 || wait > remaining {
			wait = remaining
		}
		timer.Reset(wait)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
}
