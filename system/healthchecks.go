package system

import "context"

type HealthChecker interface {
	// HealthChecks returns a name for the check along with readiness and liveness
	// functions. Either function may be nil.
	HealthChecks() (name string, ready, live func(ctx context.Context) error)
}
