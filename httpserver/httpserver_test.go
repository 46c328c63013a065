package httpserver

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"
	"gotest.tools/v3/assert"
	"gotest.tools/v3/assert/cmp"
	"gotest.tools/v3/poll"

	"github.com/circleci/setupwiz/system"
	"github.com/circleci/setupwiz/testing/testcontext"
)

func helloHandler() http.Handler {
	r := http.NewServeMux()
	r.HandleFunc("/test", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "hello world!")
	})
	return r
}

func serve(ctx context.Context, t *testing.T, srv *HTTPServer) {
	t.Helper()
	g, ctx := errgroup.WithContext(ctx)
	t.Cleanup(func() {
		assert.Check(t, g.Wait())
	})
	g.Go(func() error {
		return srv.Serve(ctx)
	})
}

func TestNew(t *testing.T) {
	ctx, cancel := context.WithCancel(testcontext.Background())
	defer cancel()

	srv, err := New(ctx, Config{
		Name:    "test server",
		Addr:    "localhost:0",
		Handler: helloHandler(),
	})
	assert.Assert(t, err)
	serve(ctx, t, srv)

	body, status := get(t, http.DefaultClient, srv.Addr(), "test")
	assert.Check(t, cmp.Equal(status, http.StatusOK))
	assert.Check(t, cmp.Equal(body, "hello world!"))
}

func TestNew_AddressInUse(t *testing.T) {
	ctx := testcontext.Background()
	ln, err := net.Listen("tcp", "localhost:0")
	assert.Assert(t, err)
	defer ln.Close()

	_, err = New(ctx, Config{Name: "clash", Addr: ln.Addr().String(), Handler: helloHandler()})
	assert.Check(t, cmp.ErrorContains(err, "address already in use"))
}

func TestNew_unix(t *testing.T) {
	ctx, cancel := context.WithCancel(testcontext.Background())
	defer cancel()

	socket := filepath.Join(t.TempDir(), "httpserver-test.sock")
	if len(socket) > 100 {
		socket = filepath.Join(os.TempDir(), fmt.Sprintf("setupwiz-%d.sock", time.Now().UnixNano()))
		t.Cleanup(func() { _ = os.Remove(socket) })
	}

	srv, err := New(ctx, Config{
		Name:    "test server",
		Addr:    socket,
		Handler: helloHandler(),
		Network: "unix",
	})
	assert.Assert(t, err)
	serve(ctx, t, srv)

	c := &http.Client{
		Transport: &http.Transport{
			DialContext: func(_ context.Context, _, _ string) (net.Conn, error) {
				return net.Dial("unix", socket)
			},
		},
	}

	body, status := get(t, c, "localhost", "test")
	assert.Check(t, cmp.Equal(status, http.StatusOK))
	assert.Check(t, cmp.Equal(body, "hello world!"))
}

func TestTrackedListener(t *testing.T) {
	ctx, cancel := context.WithCancel(testcontext.Background())
	defer cancel()

	srv, err := New(ctx, Config{Name: "tracked", Addr: "localhost:0", Handler: helloHandler()})
	assert.Assert(t, err)
	serve(ctx, t, srv)

	tr := http.DefaultTransport.(*http.Transport).Clone()
	c := &http.Client{Transport: tr}
	for i := 0; i < 3; i++ {
		_, status := get(t, c, srv.Addr(), "test")
		assert.Check(t, cmp.Equal(status, http.StatusOK))
	}

	producer := srv.MetricsProducer()
	assert.Check(t, cmp.Equal(producer.MetricName(), "tracked-listener"))

	// keep alive means one connection served all three requests
	gauges := producer.Gauges(ctx)
	assert.Check(t, cmp.Equal(gauges["total_connections"], float64(1)))
	assert.Check(t, cmp.Equal(gauges["active_connections"], float64(1)))
	assert.Check(t, cmp.Equal(gauges["number_of_remotes"], float64(1)))
	assert.Check(t, cmp.Equal(gauges["max_connections_per_remote"], float64(1)))

	tr.CloseIdleConnections()
	poll.WaitOn(t, func(t poll.LogT) poll.Result {
		g := producer.Gauges(ctx)
		if g["active_connections"] != 0 {
			return poll.Continue("still %v active", g["active_connections"])
		}
		return poll.Success()
	})
	gauges = producer.Gauges(ctx)
	assert.Check(t, cmp.Equal(gauges["number_of_remotes"], float64(0)))
	assert.Check(t, cmp.Equal(gauges["min_connections_per_remote"], float64(0)))
}

func TestLoad(t *testing.T) {
	ctx := testcontext.Background()
	sys := system.New(ctx)

	srv, err := Load(ctx, Config{Name: "loaded", Addr: "localhost:0", Handler: helloHandler()}, sys)
	assert.Assert(t, err)
	assert.Check(t, srv.Addr() != "")

	_, err = Load(ctx, Config{Name: "bad", Addr: "localhost:-1", Handler: helloHandler()}, sys)
	assert.Check(t, cmp.ErrorContains(err, `error starting "bad" server`))
}

func get(t *testing.T, c *http.Client, baseurl, path string) (string, int) {
	t.Helper()

	r, err := c.Get(fmt.Sprintf("http://%s/%s", baseurl, path))
	assert.Assert(t, err)

	defer func() {
		assert.Assert(t, r.Body.Close())
	}()

	b, err := io.ReadAll(r.Body)
	assert.Assert(t, err)

	return string(b), r.StatusCode
}
