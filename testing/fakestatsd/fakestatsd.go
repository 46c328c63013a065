// Package fakestatsd is a UDP listener that parses the statsd lines it receives, for
// tests that exercise a real statsd client.
package fakestatsd

import (
	"errors"
	"net"
	"strings"
	"sync"
	"testing"

	"gotest.tools/v3/assert"
)

type Metric struct {
	Name  string
	Value string
	Tags  []string
}

type FakeStatsd struct {
	conn *net.UDPConn

	mu      sync.Mutex
	metrics []Metric
}

// New starts a listener on a free local port, closed when the test ends.
func New(t testing.TB) *FakeStatsd {
	t.Helper()

	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	assert.Assert(t, err)

	s := &FakeStatsd{conn: conn}
	go s.listen()
	t.Cleanup(func() {
		_ = conn.Close()
	})
	return s
}

func (s *FakeStatsd) Addr() string {
	return s.conn.LocalAddr().String()
}

func (s *FakeStatsd) Metrics() []Metric {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Metric(nil), s.metrics...)
}

// Named returns the metrics received with the given name.
func (s *FakeStatsd) Named(name string) []Metric {
	var found []Metric
	for _, m := range s.Metrics() {
		if m.Name == name {
			found = append(found, m)
		}
	}
	return found
}

func (s *FakeStatsd) listen() {
	buf := make([]byte, 65535)
	for {
		n, err := s.conn.Read(buf)
		if errors.Is(err, net.ErrClosed) {
			return
		}
		if err != nil {
			continue
		}
		for _, line := range strings.Split(string(buf[:n]), "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if m, ok := parse(line); ok {
				s.mu.Lock()
				s.metrics = append(s.metrics, m)
				s.mu.Unlock()
			}
		}
	}
}

// parse reads the dogstatsd form name:value|type|@rate|#tag1,tag2.
func parse(line string) (Metric, bool) {
	name, rest, ok := strings.Cut(line, ":")
	if !ok {
		return Metric{}, false
	}
	m := Metric{Name: name}
	parts := strings.Split(rest, "|")
	m.Value = parts[0]
	for _, p := range parts[1:] {
		if tags, ok := strings.CutPrefix(p, "#"); ok {
			m.Tags = strings.Split(tags, ",")
		}
	}
	return m, true
}
