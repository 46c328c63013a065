package mongo

import (
	"context"
	"fmt"

	"github.com/circleci/setupwiz/o11y"
)

// span starts an o11y span so database queries are reported consistently.
func span(ctx context.Context, handle, entity, queryName string) (context.Context, o11y.Span) {
	ctx, span := o11y.StartSpan(ctx, fmt.Sprintf("db: %s.%s", entity, queryName))
	span.RecordMetric(o11y.Timing("db.query", "db.handle", "db.entity", "db.query_name", "result"))
	span.AddRawField("db.system", "mongo")
	span.AddRawField("db.handle", handle)
	span.AddRawField("db.entity", entity)
	span.AddRawField("db.query_name", queryName)
	return ctx, span
}
