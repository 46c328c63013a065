// Package testcontext provides a context for tests that carries a working o11y
// provider, so spans and logs from code under test show up in the test output.
package testcontext

import (
	"context"
	"os"

	"github.com/circleci/setupwiz/o11y"
	"github.com/circleci/setupwiz/o11y/logprovider"
)

var ctx = newContext()

// Background returns a context for use in tests which contains a working o11y, so you get logs.
func Background() context.Context {
	return ctx
}

func newContext() context.Context {
	p := logprovider.New(logprovider.Config{
		Writer: os.Stderr,
		Format: "text",
	})
	p.AddGlobalField("service", "test-service")
	return o11y.WithProvider(context.Background(), p)
}
