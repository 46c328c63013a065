package mongo

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/event"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/description"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/circleci/setupwiz/o11y"
)

const (
	nativeHandle = "native"
	mappedHandle = "mapped"
)

// clientDeps are the driver calls a handle makes, swapped out in tests.
type clientDeps struct {
	connect    func(ctx context.Context, opts *options.ClientOptions) (*mongo.Client, error)
	ping       func(ctx context.Context, client *mongo.Client) error
	disconnect func(ctx context.Context, client *mongo.Client) error
}

var driverDeps = clientDeps{
	connect: func(ctx context.Context, opts *options.ClientOptions) (*mongo.Client, error) {
		return mongo.Connect(ctx, opts)
	},
	ping: func(ctx context.Context, client *mongo.Client) error {
		return client.Ping(ctx, readpref.Primary())
	},
	disconnect: func(ctx context.Context, client *mongo.Client) error {
		return client.Disconnect(ctx)
	},
}

type handle struct {
	name  string
	db    string
	deps  clientDeps
	state atomicState
	pool  *poolMetrics

	mu     sync.RWMutex
	client *mongo.Client
}

func newHandle(name, db string, deps clientDeps) *handle {
	return &handle{
		name: name,
		db:   db,
		deps: deps,
		pool: newPoolMetrics("mongo-" + name),
	}
}

// open connects the client and pings it. The handle is Connected only once the ping succeeds.
func (h *handle) open(ctx context.Context, opts *options.ClientOptions) error {
	opts.SetPoolMonitor(h.pool.monitor())
	opts.SetServerMonitor(&event.ServerMonitor{
		TopologyDescriptionChanged: h.topologyChanged,
	})

	client, err := h.deps.connect(ctx, opts)
	if err != nil {
		return err
	}

	pingCtx, cancel := context.WithTimeout(ctx, selectionTimeout)
	defer cancel()
	if err := h.deps.ping(pingCtx, client); err != nil {
		if cerr := h.deps.disconnect(ctx, client); cerr != nil {
			o11y.LogError(ctx, "mongo: close after failed ping", &CloseError{Handle: h.name, Err: cerr})
		}
		return err
	}

	h.mu.Lock()
	h.client = client
	h.mu.Unlock()
	h.state.swap(Connecting, Connected)
	return nil
}

// close marks the handle Closed and disconnects its client, if it has one.
func (h *handle) close(ctx context.Context) error {
	h.mu.Lock()
	client := h.client
	h.client = nil
	h.state.store(Closed)
	h.mu.Unlock()

	if client == nil {
		return nil
	}
	return h.deps.disconnect(ctx, client)
}

func (h *handle) connected() bool {
	return h.state.load() == Connected
}

// database returns the configured database, or ErrNotConnected.
func (h *handle) database() (*mongo.Database, error) {
	if !h.connected() {
		return nil, ErrNotConnected
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.client == nil {
		return nil, ErrNotConnected
	}
	return h.client.Database(h.db), nil
}

func (h *handle) ping(ctx context.Context) error {
	if !h.connected() {
		return ErrNotConnected
	}
	h.mu.RLock()
	client := h.client
	h.mu.RUnlock()
	if client == nil {
		return ErrNotConnected
	}
	return h.deps.ping(ctx, client)
}

// topologyChanged flips the handle between Connected and Disconnected as the driver's
// heartbeats find its servers reachable or not. Other states are left alone.
func (h *handle) topologyChanged(e *event.TopologyDescriptionChangedEvent) {
	if reachable(e.NewDescription) {
		h.state.swap(Disconnected, Connected)
		return
	}
	h.state.swap(Connected, Disconnected)
}

func reachable(t description.Topology) bool {
	var unknown description.ServerKind
	for _, s := range t.Servers {
		if s.Kind != unknown {
			return true
		}
	}
	return false
}
