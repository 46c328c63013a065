package ginrouter

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/circleci/setupwiz/o11y"
)

const contextCancelledKey = "o11y-context-cancelled-key"

// Middleware starts a span for each request and records a handler timing when it completes.
func Middleware(provider o11y.Provider, serverName string) gin.HandlerFunc {
	m := provider.MetricsProvider()
	return func(c *gin.Context) {
		before := time.Now()

		route := c.FullPath()
		if route == "" {
			route = "not-found"
		}
		c.Header("X-Route", route)

		ctx := o11y.WithProvider(c.Request.Context(), provider)
		ctx, span := provider.StartSpan(ctx, fmt.Sprintf("%s %s", c.Request.Method, route))
		defer span.End()
		c.Request = c.Request.WithContext(ctx)
		// database spans started by the handler carry the route that caused them
		o11y.AddFieldToTrace(ctx, "route", route)

		for _, param := range c.Params {
			span.AddRawField("handler.vars."+param.Key, param.Value)
		}
		span.AddRawField("meta.type", "http_server")
		span.AddRawField("http.server_name", serverName)
		span.AddRawField("http.route", route)
		span.AddRawField("http.client_ip", c.ClientIP())
		span.AddRawField("http.method", c.Request.Method)
		span.AddRawField("http.url", c.Request.URL.String())
		span.AddRawField("http.user_agent", c.Request.UserAgent())

		defer func() {
			status := c.Writer.Status()
			if c.GetBool(contextCancelledKey) {
				status = 499
			}
			span.AddRawField("http.status_code", status)
			span.AddRawField("http.response_content_length", c.Writer.Size())
			if status >= http.StatusInternalServerError {
				span.AddRawField("result", "error")
			}

			_ = m.TimeInMilliseconds("handler",
				float64(time.Since(before).Nanoseconds())/1000000.0,
				[]string{
					"http.server_name:" + serverName,
					"http.method:" + c.Request.Method,
					"http.route:" + route,
					"http.status_code:" + strconv.Itoa(status),
				},
				1,
			)
		}()

		c.Next()
	}
}

// ClientCancelled is a gin middleware that will trap a request context cancellation
// and return a 499 (a.la. nginx).
// If the response has already been written to, for example setting a status code, then
// that code will be honoured.
func ClientCancelled() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		defer func() {
			if errors.Is(ctx.Err(), context.Canceled) {
				c.Set(contextCancelledKey, true)
				if !c.Writer.Written() {
					c.Status(499)
				}
				return
			}
			if len(c.Errors) > 0 {
				o11y.AddField(ctx, "gin_internal_error", c.Errors.String())
			}
		}()
		c.Next()
	}
}

// Recovery turns a handler panic into a 500 response with a JSON error body, and
// reports it through o11y.HandlePanic.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, recovered interface{}) {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprint(recovered)})
		ctx := c.Request.Context()
		span := o11y.FromContext(ctx).GetSpan(ctx)
		if span == nil {
			return
		}

		// Most likely caused by one side of the proxy disappearing. Not really a panic
		// https://github.com/golang/go/issues/28239
		if err, ok := recovered.(error); ok && errors.Is(err, http.ErrAbortHandler) {
			o11y.AddResultToSpan(span, err)
			return
		}

		_ = o11y.HandlePanic(ctx, span, recovered, c.Request)
	})
}
