// Package api serves the public HTTP routes of the service.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/circleci/setupwiz/config"
	"github.com/circleci/setupwiz/httpserver/ginrouter"
	"github.com/circleci/setupwiz/mongo"
	"github.com/circleci/setupwiz/o11y"
)

// Database is the part of the connection manager the routes use.
type Database interface {
	HealthStatus() mongo.Health
	ListUsers(ctx context.Context) ([]bson.M, error)
}

type API struct {
	router *gin.Engine
	cfg    config.Config
	db     Database
	now    func() time.Time
}

type Options struct {
	Config config.Config
	DB     Database

	// Now defaults to time.Now
	Now func() time.Time
}

func New(ctx context.Context, opts Options) *API {
	r := ginrouter.Default(ctx, "api")
	a := &API{
		router: r,
		cfg:    opts.Config,
		db:     opts.DB,
		now:    opts.Now,
	}
	if a.now == nil {
		a.now = time.Now
	}

	r.SetHTMLTemplate(indexTemplate)
	r.Use(handleErrors)
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	r.GET("/", a.getIndex)
	r.GET("/health", a.getHealth)
	r.GET("/users", a.getUsers)

	return a
}

func (a *API) Handler() http.Handler {
	return a.router
}

// handleErrors answers any request whose handler recorded an error with a 500 and the
// error's message.
func handleErrors(c *gin.Context) {
	c.Next()
	if len(c.Errors) == 0 || c.Writer.Written() {
		return
	}
	err := c.Errors.Last().Err
	ctx := c.Request.Context()
	if span := o11y.FromContext(ctx).GetSpan(ctx); span != nil {
		o11y.AddResultToSpan(span, err)
		span.RecordMetric(o11y.Incr("api.errors", "http.route"))
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
