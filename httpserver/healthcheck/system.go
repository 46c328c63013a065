package healthcheck

import (
	"context"
	"fmt"

	"github.com/circleci/setupwiz/httpserver"
	"github.com/circleci/setupwiz/system"
)

// Load serves the admin API on addr. Call it after every health check has been added to sys.
func Load(ctx context.Context, addr string, sys *system.System) (*httpserver.HTTPServer, error) {
	api, err := New(ctx, sys.HealthChecks())
	if err != nil {
		return nil, fmt.Errorf("error creating health check API: %w", err)
	}

	return httpserver.Load(ctx, httpserver.Config{
		Name:    "admin",
		Addr:    addr,
		Handler: api.Handler(),
	}, sys)
}
