// Package logprovider implements an o11y.Provider that writes every finished span as one
// structured event to a writer (stderr by default). Span metrics are forwarded to the
// configured metrics provider when the span ends.
package logprovider

import (
	"context"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/DataDog/datadog-go/statsd"
	"github.com/google/uuid"

	"github.com/circleci/setupwiz/o11y"
)

type Config struct {
	// Writer defaults to os.Stderr
	Writer io.Writer
	// Format is one of json, text, color (or colour). Anything else is treated as json.
	Format string
	// Level is one of debug, info, warn, error. Empty means info.
	Level string
	// Metrics defaults to a no-op statsd client
	Metrics o11y.ClosableMetricsProvider
}

type Provider struct {
	format  string
	level   level
	metrics o11y.ClosableMetricsProvider

	wmu sync.Mutex
	w   io.Writer

	gmu    sync.RWMutex
	global map[string]interface{}
}

func New(cfg Config) *Provider {
	if cfg.Writer == nil {
		cfg.Writer = os.Stderr
	}
	if cfg.Metrics == nil {
		cfg.Metrics = &statsd.NoOpClient{}
	}
	return &Provider{
		format:  strings.ToLower(cfg.Format),
		level:   parseLevel(cfg.Level),
		metrics: cfg.Metrics,
		w:       cfg.Writer,
		global:  map[string]interface{}{},
	}
}

type spanKey struct{}

type trace struct {
	id uuid.UUID

	mu     sync.Mutex
	fields map[string]interface{}
}

func (p *Provider) AddGlobalField(key string, val interface{}) {
	p.gmu.Lock()
	defer p.gmu.Unlock()
	p.global[key] = val
}

func (p *Provider) StartSpan(ctx context.Context, name string) (context.Context, o11y.Span) {
	parent := p.getSpan(ctx)
	s := &span{
		provider: p,
		name:     name,
		id:       uuid.New(),
		started:  time.Now(),
		fields:   map[string]interface{}{},
	}
	if parent == nil {
		s.trace = &trace{
			id:     uuid.New(),
			fields: map[string]interface{}{},
		}
	} else {
		s.parentID = parent.id.String()
		s.trace = parent.trace
	}
	return context.WithValue(ctx, spanKey{}, s), s
}

func (p *Provider) GetSpan(ctx context.Context) o11y.Span {
	s := p.getSpan(ctx)
	if s == nil {
		return nil
	}
	return s
}

func (p *Provider) getSpan(ctx context.Context) *span {
	if s, ok := ctx.Value(spanKey{}).(*span); ok {
		return s
	}
	return nil
}

func (p *Provider) AddField(ctx context.Context, key string, val interface{}) {
	if s := p.getSpan(ctx); s != nil {
		s.AddField(key, val)
	}
}

func (p *Provider) AddFieldToTrace(ctx context.Context, key string, val interface{}) {
	s := p.getSpan(ctx)
	if s == nil {
		return
	}
	s.trace.mu.Lock()
	defer s.trace.mu.Unlock()
	s.trace.fields["app."+key] = val
}

func (p *Provider) Log(ctx context.Context, name string, fields ...o11y.Pair) {
	_, s := p.StartSpan(ctx, name)
	for _, f := range fields {
		s.AddField(f.Key, f.Value)
	}
	s.(*span).event = true
	s.End()
}

func (p *Provider) Close(_ context.Context) {
	_ = p.metrics.Close()
}

func (p *Provider) MetricsProvider() o11y.MetricsProvider {
	return p.metrics
}

func (p *Provider) send(data map[string]interface{}) {
	if !p.level.allows(data) {
		return
	}
	var line []byte
	switch p.format {
	case "text":
		line = formatText(data, false)
	case "color", "colour":
		line = formatText(data, true)
	default:
		line = formatJSON(data)
	}

	p.wmu.Lock()
	defer p.wmu.Unlock()
	_, _ = p.w.Write(line)
}

func (p *Provider) globals() map[string]interface{} {
	p.gmu.RLock()
	defer p.gmu.RUnlock()
	g := make(map[string]interface{}, len(p.global))
	for k, v := range p.global {
		g[k] = v
	}
	return g
}
