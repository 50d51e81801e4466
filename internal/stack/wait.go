package stack

import (
	"context"
	"time"
)

// Waiter polls a status function on a fixed interval until the stack
// reaches a terminal state or the wait budget is exhausted. Elapsed time is
// tracked explicitly from the configured interval so tests can inject a
// no-op sleep.
type Waiter struct {
	// Interval is the delay between consecutive polls.
	Interval time.Duration
	// Budget is the maximum total time spent waiting.
	Budget time.Duration
	// Sleep suspends between polls; defaults to time.Sleep.
	Sleep func(time.Duration)
	// OnPoll, when set, observes every status returned by a poll.
	OnPoll func(Status)
}

// Wait runs the poll loop. The final observed status is returned alongside
// the error so callers can report the last known state. A TimeoutError does
// not mean the operation failed: the stack may still be converging.
func (w Waiter) Wait(ctx context.Context, action string, poll func(context.Context) (Status, error)) (Status, error) {
	interval := w.Interval
	if interval <= 0 {
		interval = 15 * time.Second
	}
	budget := w.Budget
	if budget <= 0 {
		budget = 40 * time.Minute
	}
	sleep := w.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	var elapsed time.Duration
	var last Status

	for {
		st, err := poll(ctx)
		if err != nil {
			return last, err
		}
		last = st

		if w.OnPoll != nil {
			w.OnPoll(st)
		}
		if st.State.Terminal() {
			return st, nil
		}

		if elapsed+interval > budget {
			return st, &TimeoutError{
				Action:    action,
				StackName: st.Name,
				LastState: st.State,
				Waited:    elapsed,
			}
		}

		sleep(interval)
		elapsed += interval

		if err := ctx.Err(); err != nil {
			return st, err
		}
	}
}
