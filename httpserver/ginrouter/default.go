// Package ginrouter builds gin engines with the middleware every server in the service shares.
package ginrouter

import (
	"context"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/circleci/setupwiz/o11y"
)

var once sync.Once

// Default returns a gin engine in release mode that traces every request, turns
// panics into 500 responses and marks requests abandoned by the client with 499.
func Default(ctx context.Context, serverName string) *gin.Engine {
	once.Do(func() {
		gin.SetMode(gin.ReleaseMode)
	})

	r := gin.New()
	r.Use(
		Middleware(o11y.FromContext(ctx), serverName),
		Recovery(),
		ClientCancelled(),
	)

	r.UseRawPath = true

	return r
}
