package logprovider

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/circleci/setupwiz/o11y"
)

type span struct {
	provider *Provider
	name     string
	trace    *trace
	id       uuid.UUID
	parentID string
	started  time.Time
	// event marks zero duration log events
	event bool

	mu      sync.Mutex
	ended   bool
	fields  map[string]interface{}
	metrics []o11y.Metric
}

func (s *span) AddField(key string, val interface{}) {
	s.AddRawField("app."+key, val)
}

func (s *span) AddRawField(key string, val interface{}) {
	if err, ok := val.(error); ok {
		val = err.Error()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fields[key] = val
}

func (s *span) RecordMetric(metric o11y.Metric) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metrics = append(s.metrics, metric)
}

func (s *span) End() {
	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		return
	}
	s.ended = true
	data := s.provider.globals()
	s.trace.mu.Lock()
	for k, v := range s.trace.fields {
		data[k] = v
	}
	s.trace.mu.Unlock()
	for k, v := range s.fields {
		data[k] = v
	}
	metrics := s.metrics
	s.mu.Unlock()

	data["name"] = s.name
	data["timestamp"] = s.started
	data["trace.trace_id"] = s.trace.id.String()
	data["trace.span_id"] = s.id.String()
	if s.parentID != "" {
		data["trace.parent_id"] = s.parentID
	}
	if s.event {
		data["meta.type"] = "event"
	} else {
		data["duration_ms"] = float64(time.Since(s.started).Microseconds()) / 1000
	}

	sendMetrics(s.provider.metrics, metrics, data)
	s.provider.send(data)
}

func sendMetrics(mp o11y.MetricsProvider, metrics []o11y.Metric, fields map[string]interface{}) {
	for _, m := range metrics {
		tags := tagsFromFields(m.TagFields, fields)
		switch m.Type {
		case o11y.MetricTimer:
			val, ok := toFloat(lookup(m.Field, fields))
			if !ok {
				continue
			}
			_ = mp.TimeInMilliseconds(m.Name, val, tags, 1)
		case o11y.MetricCount:
			var count int64 = 1
			if m.Field != "" {
				val, ok := toFloat(lookup(m.Field, fields))
				if !ok {
					continue
				}
				count = int64(val)
			}
			_ = mp.Count(m.Name, count, tags, 1)
		case o11y.MetricGauge:
			val, ok := toFloat(lookup(m.Field, fields))
			if !ok {
				continue
			}
			_ = mp.Gauge(m.Name, val, tags, 1)
		}
	}
}

// lookup prefers the raw field name and falls back to the app. prefixed one
func lookup(name string, fields map[string]interface{}) interface{} {
	if v, ok := fields[name]; ok {
		return v
	}
	return fields["app."+name]
}

func tagsFromFields(names []string, fields map[string]interface{}) []string {
	tags := make([]string, 0, len(names))
	for _, name := range names {
		v := lookup(name, fields)
		if v == nil {
			continue
		}
		tags = append(tags, fmt.Sprintf("%s:%v", strings.ReplaceAll(name, ".", "_"), v))
	}
	return tags
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case time.Duration:
		return float64(n.Microseconds()) / 1000, true
	}
	return 0, false
}
