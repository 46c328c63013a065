//go:build go1.25

package rundef

import (
	"context"
	"runtime"

	"github.com/circleci/setupwiz/o11y"
)

// MaxProcs only records the limit, the runtime reads the cgroup quota itself from 1.25.
func MaxProcs(ctx context.Context) (err error) {
	_, span := o11y.StartSpan(ctx, "rundef: max procs")
	defer o11y.End(span, &err)

	span.AddField("limit", runtime.GOMAXPROCS(0))
	return nil
}
