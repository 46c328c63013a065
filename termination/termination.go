// Package termination turns process signals into an error that ends a system run.
package termination

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/circleci/setupwiz/o11y"
)

var ErrTerminated = errors.New("terminated")

// Handle blocks until an interrupt or terminate signal arrives, or ctx is done.
// After a signal it waits delay, so load balancers can drain, then returns ErrTerminated.
func Handle(ctx context.Context, delay time.Duration) error {
	return handle(ctx, delay, notify())
}

func notify() <-chan os.Signal {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	return quit
}

func handle(ctx context.Context, delay time.Duration, quit <-chan os.Signal) error {
	select {
	case sig := <-quit:
		o11y.Log(ctx, "termination: signal received",
			o11y.Field("signal", sig.String()),
			o11y.Field("delay", delay.String()),
		)
	case <-ctx.Done():
		return nil
	}

	select {
	case <-time.After(delay):
	case <-ctx.Done():
	}
	return ErrTerminated
}
