package rundef

import (
	"context"

	"github.com/KimMachineGun/automemlimit/memlimit"

	"github.com/circleci/setupwiz/o11y"
)

// MemLimit sets GOMEMLIMIT to ratio of the cgroup memory limit, or of the total system
// memory when there is no cgroup limit.
func MemLimit(ctx context.Context, ratio float64) (err error) {
	_, span := o11y.StartSpan(ctx, "rundef: mem limit")
	defer o11y.End(span, &err)

	limit, err := memlimit.SetGoMemLimitWithOpts(
		memlimit.WithRatio(ratio),
		memlimit.WithProvider(memlimit.ApplyFallback(memlimit.FromCgroup, memlimit.FromSystem)),
	)
	if err != nil {
		return err
	}
	span.AddField("ratio", ratio)
	span.AddField("limit", limit)
	return nil
}
