package o11y

import (
	"context"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/rollbar/rollbar-go"
)

// RollbarAble is a provider that reports to rollbar.
type RollbarAble interface {
	RollBarClient() *rollbar.Client
}

// HandlePanic marks span as panicked with the recovered value and stack, counts it, and
// sends it to rollbar when the provider on ctx has a client. r is the request being
// served, if any. The returned error wraps the recovered value.
func HandlePanic(ctx context.Context, span Span, recovered interface{}, r *http.Request) error {
	err := fmt.Errorf("panic handled: %+v", recovered)
	span.AddRawField("panic", recovered)
	span.AddRawField("has_panicked", "true")
	span.AddRawField("stack", string(debug.Stack()))
	span.RecordMetric(Incr("panics", "name"))

	rb, ok := FromContext(ctx).(RollbarAble)
	if !ok {
		return err
	}
	if r != nil {
		rb.RollBarClient().RequestError(rollbar.CRIT, r, err)
	} else {
		rb.RollBarClient().LogPanic(recovered, true)
	}
	return err
}
