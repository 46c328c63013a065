package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log" //nolint:depguard // non-o11y log is allowed for a top-level fatal
	"os"
	"strconv"
	"time"

	"github.com/alecthomas/kong"

	"github.com/circleci/setupwiz/api"
	"github.com/circleci/setupwiz/cmd"
	"github.com/circleci/setupwiz/cmd/setup"
	"github.com/circleci/setupwiz/config"
	"github.com/circleci/setupwiz/httpserver"
	"github.com/circleci/setupwiz/httpserver/healthcheck"
	"github.com/circleci/setupwiz/o11y"
	"github.com/circleci/setupwiz/rundef"
	"github.com/circleci/setupwiz/system"
	"github.com/circleci/setupwiz/termination"
)

type cli struct {
	setup.CLI

	ShutdownDelay time.Duration `env:"SHUTDOWN_DELAY" default:"0s" help:"Delay shutdown by this amount"`
	PrintEnv      bool          `name:"print-env" help:"List the environment variables the service reads, then exit"`
}

const description = `Serves the setup wizard API backed by MongoDB.

The application is configured from environment variables, read from .env (or the file
named by ENV_FILE) when present. Run with --print-env to list them.`

func main() {
	err := run(cmd.Version, cmd.Date, os.Args[1:])
	if err != nil && !errors.Is(err, termination.ErrTerminated) {
		log.Fatal("Unexpected Error: ", err)
	}
	log.Println("exited 0")
}

func run(version, date string, args []string) (err error) {
	if err = setup.LoadEnvFile(); err != nil {
		return err
	}

	cli := cli{}
	parser, err := kong.New(&cli, kong.Name("setupwiz"), kong.Description(description))
	if err != nil {
		return err
	}
	if _, err = parser.Parse(args); err != nil {
		return err
	}

	if cli.PrintEnv {
		printEnv(os.Stdout)
		return nil
	}

	// Fails before anything connects when required variables are missing.
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, o11yCleanup, err := setup.LoadO11y(version, "server", cli.CLI, cfg)
	if err != nil {
		return err
	}
	defer o11yCleanup(ctx)
	o11y.FromContext(ctx).AddGlobalField("environment", cfg.Environment)

	ctx, runSpan := o11y.StartSpan(ctx, "main: run")
	defer o11y.End(runSpan, &err)

	o11y.Log(ctx, "starting setupwiz",
		o11y.Field("version", version),
		o11y.Field("date", date),
		o11y.Field("port", cfg.Port),
		o11y.Field("database", cfg.Mongo.Database),
		o11y.Field("mongo_uri", cfg.Mongo.RedactedURI()),
		o11y.Field("enable_pm2", cfg.EnablePM2),
	)

	// A runtime that cannot be tuned still serves, so this only logs.
	if err := rundef.Apply(ctx, rundef.Config{MemRatio: cli.MemRatio}); err != nil {
		o11y.LogError(ctx, "rundef: could not size runtime", err)
	}

	sys := system.New(ctx)
	defer sys.Cleanup(ctx)

	err = loadAPI(ctx, cli, cfg, sys)
	if err != nil {
		return err
	}

	// Should be last so it collects all the health checks
	_, err = healthcheck.Load(ctx, cli.AdminAddr, sys)
	if err != nil {
		return err
	}

	return sys.Run(cli.ShutdownDelay)
}

// loadAPI connects to the database before the listener binds, so requests are only
// served once both handles are connected.
func loadAPI(ctx context.Context, cli cli, cfg config.Config, sys *system.System) error {
	db, err := setup.LoadMongo(ctx, cli.CLI, cfg, sys)
	if err != nil {
		return err
	}

	a := api.New(ctx, api.Options{
		Config: cfg,
		DB:     db,
	})

	_, err = httpserver.Load(ctx, httpserver.Config{
		Name:    "api",
		Addr:    ":" + strconv.Itoa(cfg.Port),
		Handler: a.Handler(),
	}, sys)
	return err
}

func printEnv(w io.Writer) {
	for _, v := range config.Vars() {
		_, _ = fmt.Fprintln(w, v.String())
	}
}
