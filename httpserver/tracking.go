package httpserver

import (
	"context"
	"net"
	"sync"
)

// trackedListener counts the connections it accepts, and which remote hosts hold
// them, until they are closed.
type trackedListener struct {
	net.Listener
	name string

	mu       sync.RWMutex
	accepted int
	active   int
	remotes  map[string]int
}

func (l *trackedListener) Accept() (net.Conn, error) {
	con, err := l.Listener.Accept()
	if err != nil {
		return con, err
	}
	tc := &trackedConn{Conn: con, l: l, host: remoteHost(con)}
	l.opened(tc.host)
	return tc, nil
}

// MetricName satisfies system.MetricProducer
func (l *trackedListener) MetricName() string {
	return l.name + "-listener"
}

// Gauges satisfies system.MetricProducer
func (l *trackedListener) Gauges(_ context.Context) map[string]float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()

	most, least := 0, 0
	for _, n := range l.remotes {
		if n > most {
			most = n
		}
		if least == 0 || n < least {
			least = n
		}
	}
	return map[string]float64{
		"number_of_remotes":  float64(len(l.remotes)),
		"total_connections":  float64(l.accepted),
		"active_connections": float64(l.active),
		// shows how evenly clients are balanced across us
		"max_connections_per_remote": float64(most),
		"min_connections_per_remote": float64(least),
	}
}

func (l *trackedListener) opened(host string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.remotes == nil {
		l.remotes = make(map[string]int)
	}
	l.accepted++
	l.active++
	l.remotes[host]++
}

func (l *trackedListener) closed(host string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.active--
	l.remotes[host]--
	if l.remotes[host] <= 0 {
		delete(l.remotes, host)
	}
}

func remoteHost(c net.Conn) string {
	addr := c.RemoteAddr().String()
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}

type trackedConn struct {
	net.Conn
	l    *trackedListener
	host string
	once sync.Once
}

// Close may be called more than once by net/http, only the first is counted.
func (c *trackedConn) Close() error {
	c.once.Do(func() { c.l.closed(c.host) })
	return c.Conn.Close()
}
