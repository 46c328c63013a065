package o11y

import (
	"context"
	"errors"
)

// End records the outcome held in *err and ends the span. Taking a pointer lets it be
// deferred straight after StartSpan against a named error return:
//
//	defer o11y.End(span, &err)
func End(span Span, err *error) {
	var final error
	if err != nil {
		final = *err
	}
	AddResultToSpan(span, final)
	span.End()
}

// AddResultToSpan sets result to success, error or canceled. Cancellation and deadlines
// are normal during shutdown and client disconnects, so they are kept out of error.
func AddResultToSpan(span Span, err error) {
	if err == nil {
		span.AddRawField("result", "success")
		return
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		span.AddRawField("result", "canceled")
		span.AddRawField("warning", err.Error())
		return
	}
	span.AddRawField("result", "error")
	span.AddRawField("error", err.Error())
}

// LogError emits an event for err, such as a failed close that nothing returns.
func LogError(ctx context.Context, name string, err error, fields ...Pair) {
	_, span := StartSpan(ctx, name)
	for _, f := range fields {
		span.AddField(f.Key, f.Value)
	}
	End(span, &err)
}
