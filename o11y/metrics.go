package o11y

type MetricType string

const (
	MetricTimer MetricType = "timer"
	MetricGauge MetricType = "gauge"
	MetricCount MetricType = "count"
)

// Metric describes a value a span emits when it ends. Field names the span field that
// holds the value and TagFields the span fields turned into tags.
type Metric struct {
	Type      MetricType
	Name      string
	Field     string
	TagFields []string
}

// Timing emits the span duration in milliseconds.
func Timing(name string, tagFields ...string) Metric {
	return Metric{Type: MetricTimer, Name: name, Field: "duration_ms", TagFields: tagFields}
}

// Incr counts one per span.
func Incr(name string, tagFields ...string) Metric {
	return Metric{Type: MetricCount, Name: name, TagFields: tagFields}
}

// Gauge emits the value of valueField as it was when the span ended.
func Gauge(name, valueField string, tagFields ...string) Metric {
	return Metric{Type: MetricGauge, Name: name, Field: valueField, TagFields: tagFields}
}

// MetricsProvider is the subset of the statsd client the service sends through.
type MetricsProvider interface {
	TimeInMilliseconds(name string, value float64, tags []string, rate float64) error
	Gauge(name string, value float64, tags []string, rate float64) error
	Count(name string, value int64, tags []string, rate float64) error
}

type ClosableMetricsProvider interface {
	MetricsProvider
	Close() error
}
