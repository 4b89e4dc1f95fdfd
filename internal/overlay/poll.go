package overlay

import (
	"context"
	"errors"
	"time"
)

// Polling budget: 30 attempts at 500ms, a 15 second ceiling. Exceeding
// it means the daemon itself failed to initialize, which is fatal.
const (
	DefaultPollAttempts = 30
	DefaultPollInterval = 500 * time.Millisecond
)

// ErrTimeout is returned when the readiness predicate never held within
// the attempt budget.
var ErrTimeout = errors.New("readiness poll timed out")

// PollResult reports how polling ended.
type PollResult struct {
	State    State
	Attempts int
}

// Poll invokes probe up to attempts times, sleeping interval between
// tries, until the probe reports ready. Always terminates: ready state,
// context cancellation, or ErrTimeout after the final attempt.
func Poll(ctx context.Context, attempts int, interval time.Duration, probe func(context.Context) (State, bool)) (PollResult, error) {
	if attempts <= 0 {
		attempts = DefaultPollAttempts
	}
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	var last State
	for i := 1; i <= attempts; i++ {
		state, ready := probe(ctx)
		last = state
		if ready {
			return PollResult{State: state, Attempts: i}, nil
		}
		if i == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return PollResult{State: last, Attempts: i}, ctx.Err()
		case <-time.After(interval):
		}
	}
	return PollResult{State: last, Attempts: attempts}, ErrTimeout
}
