package mongo

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/event"
)

// poolMetrics counts connection pool events for one handle. It is a system.MetricProducer.
type poolMetrics struct {
	name string

	mu                 sync.RWMutex
	connCreated        int64
	connClosed         int64
	checkedOut         int64
	checkedIn          int64
	checkOutFailed     int64
	poolCleared        int64
	maxPoolSize        uint64
	minPoolSize        uint64
	waitQueueTimeoutMS uint64
}

func newPoolMetrics(name string) *poolMetrics {
	return &poolMetrics{name: name}
}

func (p *poolMetrics) MetricName() string {
	return p.name
}

func (p *poolMetrics) Gauges(_ context.Context) map[string]float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return map[string]float64{
		"connection_created":    float64(p.connCreated),
		"connection_closed":     float64(p.connClosed),
		"connection_open":       float64(p.connCreated - p.connClosed),
		"connection_in_use":     float64(p.checkedOut - p.checkedIn),
		"get_succeeded":         float64(p.checkedOut),
		"get_failed":            float64(p.checkOutFailed),
		"connection_returned":   float64(p.checkedIn),
		"pool_cleared":          float64(p.poolCleared),
		"max_pool_size":         float64(p.maxPoolSize),
		"min_pool_size":         float64(p.minPoolSize),
		"wait_queue_timeout_ms": float64(p.waitQueueTimeoutMS),
	}
}

func (p *poolMetrics) monitor() *event.PoolMonitor {
	return &event.PoolMonitor{Event: p.record}
}

func (p *poolMetrics) record(e *event.PoolEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch e.Type {
	case event.ConnectionCreated:
		p.connCreated++
	case event.ConnectionClosed:
		p.connClosed++
	case event.GetSucceeded:
		p.checkedOut++
	case event.ConnectionReturned:
		p.checkedIn++
	case event.GetFailed:
		p.checkOutFailed++
	case event.PoolCleared:
		p.poolCleared++
	}

	if e.PoolOptions != nil {
		p.maxPoolSize = e.PoolOptions.MaxPoolSize
		p.minPoolSize = e.PoolOptions.MinPoolSize
		p.waitQueueTimeoutMS = e.PoolOptions.WaitQueueTimeoutMS
	}
}
