package mongo

import (
	"context"

	"github.com/circleci/setupwiz/system"
)

// Load connects both handles and registers their shutdown, readiness check and pool
// metrics with sys.
func Load(ctx context.Context, cfg Config, sys *system.System) (*Manager, error) {
	return load(ctx, New(cfg), sys)
}

func load(ctx context.Context, m *Manager, sys *system.System) (*Manager, error) {
	if err := m.Connect(ctx); err != nil {
		return nil, err
	}

	sys.AddCleanup(func(ctx context.Context) error {
		m.Shutdown(ctx)
		return nil
	})
	sys.AddHealthCheck(m)
	sys.AddMetrics(m.native.pool)
	sys.AddMetrics(m.mapped.pool)
	return m, nil
}
