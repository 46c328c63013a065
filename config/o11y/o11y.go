// Package o11y wires the process wide o11y provider from configuration.
package o11y

import (
	"context"
	"io"
	"os"

	"github.com/DataDog/datadog-go/statsd"
	"github.com/rollbar/rollbar-go"

	"github.com/circleci/setupwiz/config/secret"
	"github.com/circleci/setupwiz/o11y"
	"github.com/circleci/setupwiz/o11y/logprovider"
)

type Config struct {
	Statsd            string
	RollbarToken      secret.String
	RollbarEnv        string
	RollbarServerRoot string
	Format            string
	Level             string
	Version           string
	Service           string
	StatsNamespace    string

	// Optional
	Mode                    string
	Writer                  io.Writer
	RollbarDisabled         bool
	StatsdTelemetryDisabled bool
}

// Setup is the primary entrypoint to initialise the o11y system. The returned func
// flushes and closes the provider and should be deferred by the caller.
func Setup(ctx context.Context, o Config) (context.Context, func(context.Context), error) {
	hostname, _ := os.Hostname()

	metrics, err := metricsClient(o, hostname)
	if err != nil {
		return nil, nil, err
	}

	var provider o11y.Provider = logprovider.New(logprovider.Config{
		Writer:  o.Writer,
		Format:  o.Format,
		Level:   o.Level,
		Metrics: metrics,
	})
	provider.AddGlobalField("service", o.Service)
	provider.AddGlobalField("version", o.Version)
	if o.Mode != "" {
		provider.AddGlobalField("mode", o.Mode)
	}

	if o.RollbarToken.Set() {
		client := rollbar.NewAsync(o.RollbarToken.Raw(), o.RollbarEnv, o.Version, hostname, o.RollbarServerRoot)
		client.SetEnabled(!o.RollbarDisabled)
		client.Message(rollbar.INFO, "Deployment")
		provider = rollbarProvider{
			Provider:      provider,
			rollbarClient: client,
		}
	}

	return o11y.WithProvider(ctx, provider), provider.Close, nil
}

func metricsClient(o Config, hostname string) (o11y.ClosableMetricsProvider, error) {
	if o.Statsd == "" {
		return &statsd.NoOpClient{}, nil
	}
	tags := []string{
		"service:" + o.Service,
		"version:" + o.Version,
		"hostname:" + hostname,
	}
	if o.Mode != "" {
		tags = append(tags, "mode:"+o.Mode)
	}

	opts := []statsd.Option{
		statsd.WithNamespace(o.StatsNamespace),
		statsd.WithTags(tags),
	}
	if o.StatsdTelemetryDisabled {
		opts = append(opts, statsd.WithoutTelemetry())
	}
	return statsd.New(o.Statsd, opts...)
}

type rollbarProvider struct {
	o11y.Provider
	rollbarClient *rollbar.Client
}

func (p rollbarProvider) Close(ctx context.Context) {
	p.Provider.Close(ctx)
	_ = p.rollbarClient.Close()
}

func (p rollbarProvider) RollBarClient() *rollbar.Client {
	return p.rollbarClient
}
