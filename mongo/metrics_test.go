package mongo

import (
	"testing"

	"go.mongodb.org/mongo-driver/event"
	"gotest.tools/v3/assert"
	"gotest.tools/v3/assert/cmp"

	"github.com/circleci/setupwiz/testing/testcontext"
)

func TestPoolMetrics(t *testing.T) {
	p := newPoolMetrics("mongo-native")
	mon := p.monitor()

	mon.Event(&event.PoolEvent{
		Type: event.PoolCreated,
		PoolOptions: &event.MonitorPoolOptions{
			MaxPoolSize:        100,
			MinPoolSize:        2,
			WaitQueueTimeoutMS: 500,
		},
	})
	for _, typ := range []string{
		event.ConnectionCreated, event.ConnectionCreated, event.ConnectionCreated,
		event.GetSucceeded, event.GetSucceeded, event.ConnectionReturned,
		event.GetFailed, event.ConnectionClosed, event.PoolCleared,
	} {
		mon.Event(&event.PoolEvent{Type: typ})
	}

	assert.Check(t, cmp.Equal(p.MetricName(), "mongo-native"))
	assert.Check(t, cmp.DeepEqual(p.Gauges(testcontext.Background()), map[string]float64{
		"connection_created":    3,
		"connection_closed":     1,
		"connection_open":       2,
		"connection_in_use":     1,
		"get_succeeded":         2,
		"get_failed":            1,
		"connection_returned":   1,
		"pool_cleared":          1,
		"max_pool_size":         100,
		"min_pool_size":         2,
		"wait_queue_timeout_ms": 500,
	}))
}
