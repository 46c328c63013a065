// Package fakemetrics records metric calls in memory so tests can assert on what a
// component published.
package fakemetrics

import (
	"sort"
	"sync"
)

type Call struct {
	Kind  string
	Name  string
	Value float64
	Tags  []string
}

// Provider satisfies o11y.ClosableMetricsProvider.
type Provider struct {
	mu     sync.Mutex
	calls  []Call
	closed bool
}

func (p *Provider) record(kind, name string, value float64, tags []string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, Call{Kind: kind, Name: name, Value: value, Tags: tags})
	return nil
}

func (p *Provider) TimeInMilliseconds(name string, value float64, tags []string, _ float64) error {
	return p.record("timer", name, value, tags)
}

func (p *Provider) Gauge(name string, value float64, tags []string, _ float64) error {
	return p.record("gauge", name, value, tags)
}

func (p *Provider) Count(name string, value int64, tags []string, _ float64) error {
	return p.record("count", name, float64(value), tags)
}

func (p *Provider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

// Calls returns every call so far, in the order they were made.
func (p *Provider) Calls() []Call {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Call(nil), p.calls...)
}

// Gauges returns the latest value of each gauge, by name.
func (p *Provider) Gauges() map[string]float64 {
	gauges := map[string]float64{}
	for _, c := range p.Calls() {
		if c.Kind == "gauge" {
			gauges[c.Name] = c.Value
		}
	}
	return gauges
}

// Names returns the kind and name of every call, sorted, as "kind:name".
func (p *Provider) Names() []string {
	var names []string
	for _, c := range p.Calls() {
		names = append(names, c.Kind+":"+c.Name)
	}
	sort.Strings(names)
	return names
}

func (p *Provider) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}
