package mongo

import (
	"context"
	"fmt"
)

// HealthChecks satisfies system.HealthChecker. Readiness pings both handles, unlike
// HealthStatus which only reads cached state.
func (m *Manager) HealthChecks() (name string, ready, live func(ctx context.Context) error) {
	ready = func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, selectionTimeout)
		defer cancel()

		for _, h := range []*handle{m.native, m.mapped} {
			if err := h.ping(ctx); err != nil {
				return fmt.Errorf("mongo %s health check failed on ping: %w", h.name, err)
			}
		}
		return nil
	}
	return "mongo", ready, nil
}
