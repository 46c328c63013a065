package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/circleci/setupwiz/o11y"
	"github.com/circleci/setupwiz/recontext"
	"github.com/circleci/setupwiz/system"
)

// ShutdownTimeout bounds how long in flight requests get to finish once serving stops.
const ShutdownTimeout = 10 * time.Second

type HTTPServer struct {
	name     string
	listener *trackedListener
	server   *http.Server
}

type Config struct {
	// Name is the name of the server in o11y
	Name string
	// Addr is the address to listen on
	Addr string
	// Handler is the HTTP handler to delegate requests to.
	Handler http.Handler

	// Optional
	// Network must be "tcp", "tcp4", "tcp6", "unix", "unixpacket" or "" (which defaults to tcp).
	Network string
}

// New binds the listener straight away, so an address already in use is reported here
// rather than once serving starts.
func New(ctx context.Context, cfg Config) (s *HTTPServer, err error) {
	_, span := o11y.StartSpan(ctx, "server: new-server "+cfg.Name)
	defer o11y.End(span, &err)
	if cfg.Network == "" {
		cfg.Network = "tcp"
	}
	span.AddField("server_name", cfg.Name)
	span.AddField("network", cfg.Network)

	ln, err := net.Listen(cfg.Network, cfg.Addr)
	if err != nil {
		return nil, err
	}
	span.AddField("address", ln.Addr().String())

	return &HTTPServer{
		name:     cfg.Name,
		listener: &trackedListener{Listener: ln, name: cfg.Name},
		server: &http.Server{
			Addr:              cfg.Addr,
			Handler:           cfg.Handler,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       55 * time.Second,
			WriteTimeout:      55 * time.Second,
		},
	}, nil
}

// Serve the http server. On context cancellation the server is shutdown giving some time
// for the in flight requests to be handled.
func (s *HTTPServer) Serve(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		<-ctx.Done()
		o11y.Log(ctx, "server: shutting down", o11y.Field("server_name", s.name))
		cctx, cancel := recontext.WithNewTimeout(ctx, ShutdownTimeout)
		defer cancel()
		if err := s.server.Shutdown(cctx); err != nil {
			return fmt.Errorf("%s server shutdown failed: %w", s.name, err)
		}
		return nil
	})

	g.Go(func() error {
		o11y.Log(ctx, "server: listening",
			o11y.Field("server_name", s.name),
			o11y.Field("address", s.Addr()),
		)
		err := s.server.Serve(s.listener)
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	return g.Wait()
}

// MetricsProducer returns the connection gauges for the server, for system.AddMetrics.
func (s *HTTPServer) MetricsProducer() system.MetricProducer {
	return s.listener
}

func (s *HTTPServer) Addr() string {
	return s.listener.Addr().String()
}
