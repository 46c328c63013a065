package system

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/circleci/setupwiz/o11y"
	"github.com/circleci/setupwiz/termination"
)

type System struct {
	ctx context.Context

	services []func(context.Context) error
	checks   []HealthChecker
	gauges   []MetricProducer
	cleanups []func(context.Context) error
}

// New returns an empty System. ctx carries the o11y provider given to every service.
func New(ctx context.Context) *System {
	return &System{ctx: ctx}
}

// AddService registers a long running function. It should return nil once its context
// is done, any error stops the whole system.
func (s *System) AddService(svc func(ctx context.Context) error) {
	s.services = append(s.services, svc)
}

func (s *System) AddHealthCheck(h HealthChecker) {
	s.checks = append(s.checks, h)
}

// AddMetrics registers gauges to publish while the system runs.
func (s *System) AddMetrics(m MetricProducer) {
	s.gauges = append(s.gauges, m)
}

func (s *System) AddCleanup(c func(ctx context.Context) error) {
	s.cleanups = append(s.cleanups, c)
}

func (s *System) HealthChecks() []HealthChecker {
	return append([]HealthChecker(nil), s.checks...)
}

var terminationTestHook = termination.Handle

// Run runs every service alongside the termination handler and the metrics reporter.
// The first error from any of them cancels the rest and is returned, which is
// termination.ErrTerminated on a signal.
func (s *System) Run(delay time.Duration) (err error) {
	_, span := o11y.StartSpan(s.ctx, "system: run")
	defer o11y.End(span, &err)
	span.AddField("services", len(s.services))
	span.RecordMetric(o11y.Timing("system.run", "result"))

	g, ctx := errgroup.WithContext(s.ctx)
	g.Go(func() error {
		return terminationTestHook(ctx, delay)
	})
	for _, svc := range s.services {
		svc := svc
		g.Go(func() error {
			return svc(ctx)
		})
	}
	if len(s.gauges) > 0 {
		g.Go(metricsReporter(ctx, s.gauges))
	}
	return g.Wait()
}

// Cleanup runs the cleanups newest first. Failures are logged and the rest still run.
func (s *System) Cleanup(ctx context.Context) {
	ctx, span := o11y.StartSpan(ctx, "system: cleanup")
	defer span.End()

	failed := 0
	for i := len(s.cleanups) - 1; i >= 0; i-- {
		if err := s.cleanups[i](ctx); err != nil {
			failed++
			o11y.LogError(ctx, "system: cleanup error", err)
		}
	}
	span.AddField("cleanups", len(s.cleanups))
	span.AddField("failed", failed)
}
