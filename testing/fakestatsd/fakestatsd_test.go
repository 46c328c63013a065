package fakestatsd

import (
	"testing"

	"github.com/DataDog/datadog-go/statsd"
	"gotest.tools/v3/assert"
	"gotest.tools/v3/assert/cmp"
	"gotest.tools/v3/poll"
)

func TestParse(t *testing.T) {
	m, ok := parse("setupwiz.gauge.api.active:2|g|#service:setupwiz,version:1.0.0")
	assert.Assert(t, ok)
	assert.Check(t, cmp.DeepEqual(m, Metric{
		Name:  "setupwiz.gauge.api.active",
		Value: "2",
		Tags:  []string{"service:setupwiz", "version:1.0.0"},
	}))

	_, ok = parse("garbage")
	assert.Check(t, !ok)
}

func TestFakeStatsd(t *testing.T) {
	s := New(t)

	client, err := statsd.New(s.Addr(), statsd.WithNamespace("setupwiz."), statsd.WithoutTelemetry())
	assert.Assert(t, err)

	assert.Check(t, client.Count("requests", 3, []string{"route:/users"}, 1))
	assert.Check(t, client.Close())

	poll.WaitOn(t, func(poll.LogT) poll.Result {
		if len(s.Named("setupwiz.requests")) == 0 {
			return poll.Continue("waiting for the count")
		}
		return poll.Success()
	})
	m := s.Named("setupwiz.requests")[0]
	assert.Check(t, cmp.Equal(m.Value, "3"))
	assert.Check(t, cmp.DeepEqual(m.Tags, []string{"route:/users"}))
}
