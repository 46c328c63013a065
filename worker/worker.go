// Package worker runs a function in a loop until its context is cancelled, pausing
// between runs as directed by a backoff policy.
package worker

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/circleci/setupwiz/o11y"
)

type Config struct {
	Name string
	// Pause is consulted after every run. A negative (backoff.Stop) value ends the loop.
	// Defaults to a constant ten seconds.
	Pause backoff.BackOff
	// MaxWorkTime bounds each run of WorkFunc, defaults to one second
	MaxWorkTime time.Duration
	WorkFunc    func(ctx context.Context) error

	waiter func(ctx context.Context, delay time.Duration)
}

// Run calls WorkFunc in a loop and returns when ctx is cancelled or Pause says stop.
// Each run gets its own span and a context bounded by MaxWorkTime. Errors and panics
// are recorded on the span and do not stop the loop.
func Run(ctx context.Context, cfg Config) {
	if cfg.Pause == nil {
		cfg.Pause = backoff.NewConstantBackOff(10 * time.Second)
	}
	if cfg.MaxWorkTime == 0 {
		cfg.MaxWorkTime = time.Second
	}
	if cfg.waiter == nil {
		cfg.waiter = wait
	}
	cfg.Pause.Reset()

	for ctx.Err() == nil {
		runOnce(ctx, cfg)

		pause := cfg.Pause.NextBackOff()
		if pause == backoff.Stop {
			return
		}
		cfg.waiter(ctx, pause)
	}
}

func runOnce(ctx context.Context, cfg Config) {
	ctx, cancel := context.WithTimeout(ctx, cfg.MaxWorkTime)
	defer cancel()

	ctx, span := o11y.StartSpan(ctx, "worker loop: "+cfg.Name)
	span.AddRawField("loop_name", cfg.Name)
	span.RecordMetric(o11y.Timing("worker_loop", "loop_name", "result"))
	var err error
	defer o11y.End(span, &err)

	defer func() {
		if r := recover(); r != nil {
			err = o11y.HandlePanic(ctx, span, r, nil)
		}
	}()

	err = cfg.WorkFunc(ctx)
}

func wait(ctx context.Context, delay time.Duration) {
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
