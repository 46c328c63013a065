package mongo

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/gwatts/rootcerts"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/circleci/setupwiz/config/secret"
	"github.com/circleci/setupwiz/o11y"
)

// selectionTimeout bounds server selection, the initial connection and the ping that
// proves a handle can reach the database.
const selectionTimeout = 5 * time.Second

const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

type Config struct {
	URI      secret.String
	Database string
	// AppName is reported to the server, suffixed with the handle name.
	AppName string
	UseTLS  bool
}

// Database is what request handlers need from the connection manager.
type Database interface {
	HealthStatus() Health
	ListUsers(ctx context.Context) ([]bson.M, error)
	Shutdown(ctx context.Context)
}

var _ Database = (*Manager)(nil)

// Health is a snapshot of both handles. Native and Mapped are "connected" or "disconnected".
type Health struct {
	Status string
	Native string
	Mapped string
}

func (h Health) Healthy() bool {
	return h.Status == StatusHealthy
}

// Manager owns the native and mapped handles for the lifetime of the process.
type Manager struct {
	cfg    Config
	native *handle
	mapped *handle

	shutdownOnce sync.Once
}

func New(cfg Config) *Manager {
	return newManager(cfg, driverDeps)
}

func newManager(cfg Config, deps clientDeps) *Manager {
	return &Manager{
		cfg:    cfg,
		native: newHandle(nativeHandle, cfg.Database, deps),
		mapped: newHandle(mappedHandle, cfg.Database, deps),
	}
}

// Connect creates a manager and opens both handles. Nothing is left open on error.
func Connect(ctx context.Context, cfg Config) (*Manager, error) {
	m := New(cfg)
	if err := m.Connect(ctx); err != nil {
		return nil, err
	}
	return m, nil
}

// Connect opens the native handle and then the mapped handle. Any failure is returned as
// a *ConnectionError after closing whatever was opened, and the manager cannot be used again.
func (m *Manager) Connect(ctx context.Context) (err error) {
	ctx, span := o11y.StartSpan(ctx, "mongo: connect")
	defer o11y.End(span, &err)
	span.AddField("database", m.cfg.Database)
	span.AddField("tls", m.cfg.UseTLS)

	if !m.native.state.swap(Unconnected, Connecting) {
		if m.native.state.load() == Closed {
			return ErrClosed
		}
		return errors.New("database manager is already connected")
	}
	m.mapped.state.store(Connecting)

	if err := checkURI(m.cfg.URI.Raw()); err != nil {
		m.closeAfterFailure(ctx)
		return &ConnectionError{Handle: nativeHandle, Err: err}
	}

	for _, h := range []*handle{m.native, m.mapped} {
		if err := h.open(ctx, m.clientOptions(h.name)); err != nil {
			m.closeAfterFailure(ctx)
			return &ConnectionError{Handle: h.name, Err: err}
		}
		o11y.Log(ctx, "mongo: handle connected", o11y.Field("handle", h.name))
	}
	return nil
}

func (m *Manager) closeAfterFailure(ctx context.Context) {
	for _, h := range []*handle{m.native, m.mapped} {
		if err := h.close(ctx); err != nil {
			o11y.LogError(ctx, "mongo: close after failed connect", &CloseError{Handle: h.name, Err: err})
		}
	}
}

func (m *Manager) clientOptions(handleName string) *options.ClientOptions {
	opts := options.Client().
		ApplyURI(m.cfg.URI.Raw()).
		SetServerSelectionTimeout(selectionTimeout).
		SetConnectTimeout(selectionTimeout)

	if m.cfg.AppName != "" {
		opts.SetAppName(m.cfg.AppName + "-" + handleName)
	}
	if m.cfg.UseTLS {
		opts.SetTLSConfig(&tls.Config{
			MinVersion: tls.VersionTLS12,
			RootCAs:    rootcerts.ServerCertPool(),
		})
	}
	return opts
}

// checkURI parses uri without letting the error repeat the uri, since it holds the password.
func checkURI(uri string) error {
	_, err := url.Parse(uri)
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("failed to parse URI: %w", urlErr.Err)
	}
	return err
}

// HealthStatus reports healthy only when both handles are connected. It reads the cached
// handle states and never waits on the network.
func (m *Manager) HealthStatus() Health {
	native, mapped := m.native.connected(), m.mapped.connected()
	h := Health{
		Status: StatusUnhealthy,
		Native: connectedString(native),
		Mapped: connectedString(mapped),
	}
	if native && mapped {
		h.Status = StatusHealthy
	}
	return h
}

func connectedString(connected bool) string {
	if connected {
		return "connected"
	}
	return "disconnected"
}

func (m *Manager) NativeState() State {
	return m.native.state.load()
}

func (m *Manager) MappedState() State {
	return m.mapped.state.load()
}

// Shutdown closes the native handle and then the mapped handle. Close failures are logged.
// Calls after the first do nothing.
func (m *Manager) Shutdown(ctx context.Context) {
	m.shutdownOnce.Do(func() {
		ctx, span := o11y.StartSpan(ctx, "mongo: shutdown")
		defer span.End()

		failed := 0
		for _, h := range []*handle{m.native, m.mapped} {
			if err := h.close(ctx); err != nil {
				failed++
				o11y.LogError(ctx, "mongo: close error", &CloseError{Handle: h.name, Err: err})
			}
		}
		span.AddField("close_failures", failed)
	})
}
