// Package recontext derives contexts that keep the values of a parent but not its
// cancellation, for work that has to outlive the request or service that started it.
package recontext

import (
	"context"
	"time"
)

// detached keeps the parent's values while reporting no deadline and never being done.
type detached struct{ context.Context }

func (detached) Deadline() (time.Time, bool) { return time.Time{}, false }
func (detached) Done() <-chan struct{}       { return nil }
func (detached) Err() error                  { return nil }

// WithNewTimeout returns a context carrying parent's values that is bounded only by
// timeout. The o11y provider and any active span stay reachable, so shutdown work is
// still traced after the parent has been cancelled.
func WithNewTimeout(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(detached{parent}, timeout)
}
