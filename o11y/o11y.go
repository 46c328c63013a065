// Package o11y is the single surface the service logs, traces and measures through.
//
// A Provider travels on the context. Work is wrapped in spans, and each finished span
// becomes one structured event that may also emit metrics:
//
//	ctx, span := o11y.StartSpan(ctx, "mongo: connect")
//	defer o11y.End(span, &err)
//
// Without a provider on the context every call is a no-op.
package o11y

import (
	"context"
)

type Provider interface {
	// AddGlobalField sets a field on every span the provider emits, such as service or version.
	AddGlobalField(key string, val interface{})

	// StartSpan opens a child of the span in ctx, or a new trace when there is none.
	// The name should be short and distinguish the work, e.g. "GET /users".
	StartSpan(ctx context.Context, name string) (context.Context, Span)

	// GetSpan is the span in ctx, or nil.
	GetSpan(ctx context.Context) Span

	// AddField sets an "app." prefixed field on the span in ctx.
	AddField(ctx context.Context, key string, val interface{})

	// AddFieldToTrace sets an "app." prefixed field on every span of the trace in ctx,
	// including those already open.
	AddFieldToTrace(ctx context.Context, key string, val interface{})

	// Log emits an event with no duration.
	Log(ctx context.Context, name string, fields ...Pair)

	// MetricsProvider is the client spans send their metrics to, for gauges published
	// outside of any span.
	MetricsProvider() MetricsProvider

	Close(ctx context.Context)
}

type Span interface {
	// AddField sets an "app." prefixed field.
	AddField(key string, val interface{})
	// AddRawField sets a field as named, for plumbing such as result, db.* or http.*.
	AddRawField(key string, val interface{})
	// RecordMetric emits m from the span's fields when the span ends.
	RecordMetric(m Metric)
	// End emits the span. It must not be used afterwards.
	End()
}

// Pair is a field passed to Log or LogError.
type Pair struct {
	Key   string
	Value interface{}
}

func Field(key string, value interface{}) Pair {
	return Pair{Key: key, Value: value}
}

type providerKey struct{}

func WithProvider(ctx context.Context, p Provider) context.Context {
	return context.WithValue(ctx, providerKey{}, p)
}

// FromContext returns the provider on ctx, falling back to one that does nothing.
func FromContext(ctx context.Context) Provider {
	if p, ok := ctx.Value(providerKey{}).(Provider); ok {
		return p
	}
	return defaultProvider
}

func StartSpan(ctx context.Context, name string) (context.Context, Span) {
	return FromContext(ctx).StartSpan(ctx, name)
}

func AddField(ctx context.Context, key string, val interface{}) {
	FromContext(ctx).AddField(ctx, key, val)
}

func AddFieldToTrace(ctx context.Context, key string, val interface{}) {
	FromContext(ctx).AddFieldToTrace(ctx, key, val)
}

func Log(ctx context.Context, name string, fields ...Pair) {
	FromContext(ctx).Log(ctx, name, fields...)
}
