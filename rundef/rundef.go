// Package rundef sizes the go runtime to the container the service is scheduled into.
package rundef

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/circleci/setupwiz/o11y"
)

// DefaultMemRatio leaves a tenth of the memory limit for everything outside the go heap.
const DefaultMemRatio = 0.9

type Config struct {
	// MemRatio is the share of the detected memory limit given to GOMEMLIMIT.
	MemRatio float64
}

// Apply sets GOMEMLIMIT and GOMAXPROCS from the cgroup limits, falling back to the host.
func Apply(ctx context.Context, cfg Config) (err error) {
	ctx, span := o11y.StartSpan(ctx, "rundef: apply")
	defer o11y.End(span, &err)

	if cfg.MemRatio <= 0 || cfg.MemRatio > 1 {
		cfg.MemRatio = DefaultMemRatio
	}

	var g errgroup.Group
	g.Go(func() error {
		return MemLimit(ctx, cfg.MemRatio)
	})
	g.Go(func() error {
		return MaxProcs(ctx)
	})
	return g.Wait()
}
