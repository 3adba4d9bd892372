package mailcheck

import (
	"context"
	"fmt"
	"time"

	"mailprobe/internal/config"
)

// PollOptions bound Wait. Zero fields fall back to the resolver defaults.
type PollOptions struct {
	Timeout  time.Duration
	Interval time.Duration
}

func DefaultPollOptions() PollOptions {
	return PollOptions{Timeout: config.DefaultPollTimeout, Interval: config.DefaultPollInterval}
}

func (o PollOptions) orDefault(base PollOptions) PollOptions {
	if o.Timeout <= 0 {
		o.Timeout = base.Timeout
	}
	if o.Interval <= 0 {
		o.Interval = base.Interval
	}
	if o.Timeout <= 0 {
		o.Timeout = config.DefaultPollTimeout
	}
	if o.Interval <= 0 {
		o.Interval = config.DefaultPollInterval
	}
	return o
}

// Wait searches until a message whose decoded subject contains subject
// shows up. Attempts continue until opts.Timeout has elapsed; the last
// attempt runs at the deadline. A miss is reported and returns ErrTimeout.
// Cancelling ctx ends the wait with ctx.Err() and nothing is reported.
func (r *Resolver) Wait(ctx context.Context, subject string, opts PollOptions) (Ref, error) {
	opts = opts.orDefault(r.Poll)
	start := time.Now()

	for attempt := 1; ; attempt++ {
		ref, found, err := r.Search(subject)
		if err != nil {
			return Ref{}, err
		}
		if found {
			r.logger().Debug("mail found", "subject", subject, "seq", ref.Seq, "attempt", attempt)
			return ref, nil
		}

		elapsed := time.Since(start)
		if elapsed >= opts.Timeout {
			break
		}
		pause := min(opts.Interval, opts.Timeout-elapsed)
		r.logger().Debug("mail not found yet", "subject", subject, "attempt", attempt, "retry_in", pause)
		if err := sleep(ctx, pause); err != nil {
			return Ref{}, err
		}
	}

	report(r.Session.Reporter, fmt.Sprintf("Searching for mail with subject '%s' timed out", subject))
	return Ref{}, fmt.Errorf("%w: subject %q after %v", ErrTimeout, subject, opts.Timeout)
}

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
